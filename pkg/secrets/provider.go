package secrets

import "context"

// Credentials is an API key pair for the relayer's auth server.
type Credentials struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

// Provider defines a generic secrets source. Concrete implementations
// (env, AWS Secrets Manager) satisfy this.
type Provider interface {
	// GetSecret retrieves a secret by key/path and returns a key-value map.
	GetSecret(ctx context.Context, key string) (map[string]string, error)
}

// ResolveCredentials fetches and decodes relayer credentials from a
// provider. The secret must be a JSON map with "api_key" and "api_secret".
func ResolveCredentials(ctx context.Context, p Provider, name string) (*Credentials, error) {
	values, err := p.GetSecret(ctx, name)
	if err != nil {
		return nil, err
	}
	creds := &Credentials{
		APIKey:    values["api_key"],
		APISecret: values["api_secret"],
	}
	return creds, nil
}
