package secrets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvProvider_ReadsPrefixedVariables(t *testing.T) {
	t.Setenv("RENEGADE_API_KEY", "key-id")
	t.Setenv("RENEGADE_API_SECRET", "c2VjcmV0")

	creds, err := ResolveCredentials(context.Background(), NewEnvProvider(), "renegade")
	require.NoError(t, err)
	assert.Equal(t, "key-id", creds.APIKey)
	assert.Equal(t, "c2VjcmV0", creds.APISecret)
}

func TestEnvProvider_MissingCredentials(t *testing.T) {
	_, err := ResolveCredentials(context.Background(), NewEnvProvider(), "definitely_not_set")
	assert.Error(t, err)
}

func TestCache_PutGet(t *testing.T) {
	c := NewCache[*Credentials](time.Minute)

	_, ok := c.Get("renegade")
	assert.False(t, ok)

	c.Put("renegade", &Credentials{APIKey: "k"})
	got, ok := c.Get("renegade")
	require.True(t, ok)
	assert.Equal(t, "k", got.APIKey)
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache[string](time.Millisecond)
	c.Put("k", "v")
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_Bust(t *testing.T) {
	c := NewCache[string](time.Minute)
	c.Put("k", "v")
	c.Bust("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}
