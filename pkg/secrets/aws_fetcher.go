package secrets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManagerAPI is the slice of the Secrets Manager client the fetcher needs.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type AWSFetcher struct {
	client SecretsManagerAPI
}

func NewAWSFetcher(client SecretsManagerAPI) *AWSFetcher {
	return &AWSFetcher{client: client}
}

// NewAWSFetcherFromEnv resolves credentials through the default AWS chain.
func NewAWSFetcherFromEnv(ctx context.Context, region string) (*AWSFetcher, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewAWSFetcher(secretsmanager.NewFromConfig(cfg)), nil
}

func (f *AWSFetcher) GetSecret(ctx context.Context, name string) (map[string]string, error) {
	if name == "" {
		return nil, ErrNoSecretName
	}

	out, err := f.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret %q: %w", name, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("secret %q: %w", name, ErrMalformedSecret)
	}

	return decodeSecret(*out.SecretString)
}

// decodeSecret flattens a JSON object into strings. Non-string scalars keep their
// JSON text, nested values are re-encoded.
func decodeSecret(raw string) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewBufferString(raw))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, ErrMalformedSecret
	}

	result := make(map[string]string, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			result[k] = val
		case json.Number:
			result[k] = val.String()
		case bool:
			result[k] = fmt.Sprintf("%t", val)
		case nil:
			result[k] = ""
		default:
			encoded, err := json.Marshal(val)
			if err != nil {
				return nil, ErrMalformedSecret
			}
			result[k] = string(encoded)
		}
	}
	return result, nil
}
