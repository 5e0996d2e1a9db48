package secrets

import (
	"context"
	"os"
	"sort"
	"strings"
)

type Loader struct {
	fetcher Fetcher
	setenv  func(key, value string) error
	lookup  func(key string) (string, bool)
}

func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{
		fetcher: fetcher,
		setenv:  os.Setenv,
		lookup:  os.LookupEnv,
	}
}

func (l *Loader) Load(ctx context.Context, name string) (map[string]string, error) {
	if name == "" {
		return nil, ErrNoSecretName
	}
	return l.fetcher.GetSecret(ctx, name)
}

// SeedEnv exports every key of the secret into the environment. Variables that
// are already set win over the secret. The exported keys are returned sorted.
func (l *Loader) SeedEnv(ctx context.Context, name string) ([]string, error) {
	values, err := l.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	var exported []string
	for k, v := range values {
		if _, exists := l.lookup(k); exists {
			continue
		}
		if err := l.setenv(k, v); err != nil {
			return exported, err
		}
		exported = append(exported, k)
	}
	sort.Strings(exported)
	return exported, nil
}

// Mask hides all but the first and last two characters of every value.
func Mask(values map[string]string) map[string]string {
	masked := make(map[string]string, len(values))
	for k, v := range values {
		masked[k] = MaskValue(v)
	}
	return masked
}

func MaskValue(v string) string {
	r := []rune(v)
	if len(r) <= 4 {
		return "***"
	}
	return string(r[:2]) + strings.Repeat("*", len(r)-4) + string(r[len(r)-2:])
}

// Keys returns the secret's key names in sorted order.
func Keys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
