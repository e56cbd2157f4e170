package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider implements Provider over process environment variables. The
// secret name becomes a variable prefix: secret "renegade" with key
// "api_key" reads RENEGADE_API_KEY.
type EnvProvider struct{}

// NewEnvProvider creates an environment-backed provider.
func NewEnvProvider() Provider {
	return &EnvProvider{}
}

// GetSecret reads every known credential key under the given prefix.
func (p *EnvProvider) GetSecret(_ context.Context, key string) (map[string]string, error) {
	prefix := strings.ToUpper(key) + "_"
	result := map[string]string{
		"api_key":    os.Getenv(prefix + "API_KEY"),
		"api_secret": os.Getenv(prefix + "API_SECRET"),
	}
	if result["api_key"] == "" && result["api_secret"] == "" {
		return nil, fmt.Errorf("no environment credentials under prefix %s", prefix)
	}
	return result, nil
}
