package auth

import (
	"encoding/base64"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey = "0f5a9e7c-6d3b-4a21-9f0e-1c2d3e4f5a6b"
	// 32 bytes of 0x01, base64 with padding.
	testAPISecret = "AQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQE="
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(testAPISecret)
	require.NoError(t, err)
	return key
}

func TestNewSigner_RejectsEmptyCredentials(t *testing.T) {
	_, err := NewSigner("", testAPISecret)
	assert.Error(t, err)

	_, err = NewSigner(testAPIKey, "")
	assert.Error(t, err)

	_, err = NewSigner(testAPIKey, "not base64 !!!")
	assert.Error(t, err)
}

func TestNewSigner_AcceptsUnpaddedSecret(t *testing.T) {
	unpadded := "AQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQE"
	s, err := NewSigner(testAPIKey, unpadded)
	require.NoError(t, err)

	hdr := http.Header{}
	s.SignRequest(http.MethodPost, "/v0/matching-engine/quote", hdr, []byte(`{}`))
	err = Verify(testKey(t), http.MethodPost, "/v0/matching-engine/quote", hdr, []byte(`{}`), time.Now())
	assert.NoError(t, err)
}

func TestSignRequest_RoundTripsThroughVerify(t *testing.T) {
	s, err := NewSigner(testAPIKey, testAPISecret)
	require.NoError(t, err)

	body := []byte(`{"external_order":{}}`)
	hdr := http.Header{}
	s.SignRequest(http.MethodPost, "/v0/matching-engine/quote?disable_gas_sponsorship=true", hdr, body)

	assert.Equal(t, testAPIKey, hdr.Get(APIKeyHeader))
	assert.NotEmpty(t, hdr.Get(ExpirationHeader))
	assert.NotEmpty(t, hdr.Get(AuthHeader))
	// The MAC is base64 without padding.
	assert.NotContains(t, hdr.Get(AuthHeader), "=")

	err = Verify(testKey(t), http.MethodPost, "/v0/matching-engine/quote?disable_gas_sponsorship=true", hdr, body, time.Now())
	assert.NoError(t, err)
}

func TestVerify_RejectsTamperedBody(t *testing.T) {
	s, err := NewSigner(testAPIKey, testAPISecret)
	require.NoError(t, err)

	body := []byte(`{"amount":1}`)
	hdr := http.Header{}
	s.SignRequest(http.MethodPost, "/v0/path", hdr, body)

	err = Verify(testKey(t), http.MethodPost, "/v0/path", hdr, []byte(`{"amount":2}`), time.Now())
	assert.Error(t, err)
}

func TestVerify_PathIncludesQuery(t *testing.T) {
	s, err := NewSigner(testAPIKey, testAPISecret)
	require.NoError(t, err)

	hdr := http.Header{}
	s.SignRequest(http.MethodPost, "/v0/path?a=1", hdr, nil)

	err = Verify(testKey(t), http.MethodPost, "/v0/path?a=2", hdr, nil, time.Now())
	assert.Error(t, err)
}

func TestVerify_MethodIsSigned(t *testing.T) {
	s, err := NewSigner(testAPIKey, testAPISecret)
	require.NoError(t, err)

	hdr := http.Header{}
	s.SignRequest(http.MethodPost, "/v0/path", hdr, nil)

	err = Verify(testKey(t), http.MethodGet, "/v0/path", hdr, nil, time.Now())
	assert.Error(t, err)
}

func TestVerify_NamespacedHeadersAreSigned(t *testing.T) {
	s, err := NewSigner(testAPIKey, testAPISecret)
	require.NoError(t, err)

	hdr := http.Header{}
	hdr.Set("x-renegade-extra", "original")
	s.SignRequest(http.MethodPost, "/v0/path", hdr, nil)

	require.NoError(t, Verify(testKey(t), http.MethodPost, "/v0/path", hdr, nil, time.Now()))

	hdr.Set("x-renegade-extra", "tampered")
	assert.Error(t, Verify(testKey(t), http.MethodPost, "/v0/path", hdr, nil, time.Now()))
}

func TestVerify_IgnoresUnrelatedHeaders(t *testing.T) {
	s, err := NewSigner(testAPIKey, testAPISecret)
	require.NoError(t, err)

	hdr := http.Header{}
	s.SignRequest(http.MethodPost, "/v0/path", hdr, nil)

	hdr.Set("Content-Type", "application/json")
	hdr.Set("User-Agent", "test")
	assert.NoError(t, Verify(testKey(t), http.MethodPost, "/v0/path", hdr, nil, time.Now()))
}

func TestVerify_HeaderCasingIsCanonical(t *testing.T) {
	s, err := NewSigner(testAPIKey, testAPISecret)
	require.NoError(t, err)

	// Sign with a non-canonically cased extra header, verify against the
	// canonical casing an intermediary would normalize to.
	hdr := http.Header{}
	hdr["x-renegade-extra"] = []string{"value"}
	s.SignRequest(http.MethodPost, "/v0/path", hdr, nil)

	recased := http.Header{}
	recased.Set("X-Renegade-Extra", "value")
	for _, key := range []string{APIKeyHeader, ExpirationHeader, AuthHeader} {
		recased.Set(key, hdr.Get(key))
	}
	assert.NoError(t, Verify(testKey(t), http.MethodPost, "/v0/path", recased, nil, time.Now()))
}

func TestVerify_RejectsExpiredSignature(t *testing.T) {
	s, err := NewSigner(testAPIKey, testAPISecret)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Now().Add(-time.Minute) }

	hdr := http.Header{}
	s.SignRequest(http.MethodPost, "/v0/path", hdr, nil)

	err = Verify(testKey(t), http.MethodPost, "/v0/path", hdr, nil, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestVerify_RejectsMissingHeaders(t *testing.T) {
	err := Verify(testKey(t), http.MethodPost, "/v0/path", http.Header{}, nil, time.Now())
	assert.Error(t, err)

	hdr := http.Header{}
	hdr.Set(ExpirationHeader, "not a number")
	assert.Error(t, Verify(testKey(t), http.MethodPost, "/v0/path", hdr, nil, time.Now()))
}

func TestVerify_WrongKeyFails(t *testing.T) {
	s, err := NewSigner(testAPIKey, testAPISecret)
	require.NoError(t, err)

	hdr := http.Header{}
	s.SignRequest(http.MethodPost, "/v0/path", hdr, nil)

	other := make([]byte, 32)
	assert.Error(t, Verify(other, http.MethodPost, "/v0/path", hdr, nil, time.Now()))
}
