// Package secrets fetches flat key/value secrets by name and exports them into the
// process environment.
package secrets

import (
	"context"
	"errors"
)

var (
	ErrNoSecretName    = errors.New("secret name is empty")
	ErrMalformedSecret = errors.New("secret value is not a JSON object")
)

// Fetcher returns the key/value pairs stored under a secret name.
type Fetcher interface {
	GetSecret(ctx context.Context, name string) (map[string]string, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, name string) (map[string]string, error)

func (f FetcherFunc) GetSecret(ctx context.Context, name string) (map[string]string, error) {
	return f(ctx, name)
}
