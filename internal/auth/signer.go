// Package auth implements the relayer's HMAC request authentication scheme.
//
// Every request carries three headers: the API key id, a millisecond
// expiration timestamp, and an HMAC-SHA256 over a canonical concatenation of
// the request. The canonical form is, in order and with no separators:
//
//	method ‖ path-with-query ‖ sorted(x-renegade-* headers, key‖value) ‖ body
//
// where the auth header itself is excluded from the header set and header
// keys are lowercased before sorting. The verifier reproduces the exact same
// byte string, so ordering and casing here are load-bearing.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// HeaderNamespace prefixes every header included in the signature.
	HeaderNamespace = "x-renegade"
	// APIKeyHeader carries the key id; the secret is never transmitted.
	APIKeyHeader = "x-renegade-api-key"
	// AuthHeader carries the MAC, base64 with padding stripped.
	AuthHeader = "x-renegade-auth"
	// ExpirationHeader carries the unix-ms instant after which the
	// signature is stale. It is part of the signed material, so a replayed
	// request outside the window fails verification server-side.
	ExpirationHeader = "x-renegade-auth-expiration"

	// SignatureTTL is how long a signature stays fresh. The client only
	// supplies an accurate clock; acceptance is enforced by the server.
	SignatureTTL = 10 * time.Second
)

// Signer produces authentication headers for outbound relayer requests.
type Signer struct {
	apiKey string
	key    []byte
	now    func() time.Time
}

// NewSigner builds a Signer from an API key id and a base64-encoded secret.
// Missing credentials fail here, before any network call is attempted.
func NewSigner(apiKey, apiSecret string) (*Signer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is empty")
	}
	if apiSecret == "" {
		return nil, fmt.Errorf("api secret is empty")
	}
	key, err := decodeKey(apiSecret)
	if err != nil {
		return nil, fmt.Errorf("api secret is not valid base64: %w", err)
	}
	return &Signer{apiKey: apiKey, key: key, now: time.Now}, nil
}

// decodeKey accepts standard base64 with or without padding.
func decodeKey(s string) ([]byte, error) {
	if key, err := base64.StdEncoding.DecodeString(s); err == nil {
		return key, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// APIKey returns the key id the signer authenticates as.
func (s *Signer) APIKey() string {
	return s.apiKey
}

// SignRequest stamps hdr with the key id, expiration, and MAC for the given
// request line and body. path must include the query string when present.
func (s *Signer) SignRequest(method, path string, hdr http.Header, body []byte) {
	expiry := s.now().Add(SignatureTTL).UnixMilli()
	hdr.Set(APIKeyHeader, s.apiKey)
	hdr.Set(ExpirationHeader, strconv.FormatInt(expiry, 10))

	mac := computeMAC(s.key, method, path, hdr, body)
	hdr.Set(AuthHeader, mac)
}

// computeMAC produces the unpadded-base64 HMAC over the canonical request
// representation.
func computeMAC(key []byte, method, path string, hdr http.Header, body []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(canonicalHeaderBytes(hdr))
	h.Write(body)
	sum := h.Sum(nil)
	return base64.RawStdEncoding.EncodeToString(sum)
}

// canonicalHeaderBytes concatenates the namespaced headers, sorted by
// lowercased key, each key immediately followed by its value.
func canonicalHeaderBytes(hdr http.Header) []byte {
	type kv struct{ key, value string }
	var pairs []kv
	for key, values := range hdr {
		lower := strings.ToLower(key)
		if !strings.HasPrefix(lower, HeaderNamespace) || lower == AuthHeader {
			continue
		}
		if len(values) == 0 {
			continue
		}
		pairs = append(pairs, kv{lower, values[0]})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(p.key)
		b.WriteString(p.value)
	}
	return []byte(b.String())
}

// Verify checks a request's authentication headers against the given key.
// Used by the sandbox relayer; the production verifier lives server-side.
func Verify(key []byte, method, path string, hdr http.Header, body []byte, now time.Time) error {
	expStr := hdr.Get(ExpirationHeader)
	if expStr == "" {
		return fmt.Errorf("missing %s header", ExpirationHeader)
	}
	expiry, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s header: %w", ExpirationHeader, err)
	}
	if now.UnixMilli() > expiry {
		return fmt.Errorf("signature expired at %d", expiry)
	}

	got := hdr.Get(AuthHeader)
	if got == "" {
		return fmt.Errorf("missing %s header", AuthHeader)
	}
	want := computeMAC(key, method, path, hdr, body)
	if !hmac.Equal([]byte(got), []byte(want)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
