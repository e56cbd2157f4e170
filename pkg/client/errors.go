package client

import "fmt"

// ConfigurationError reports missing or contradictory client configuration.
// It is raised before any network call is made.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// TransportError reports a failed exchange with the relayer: a network
// failure, a timeout, or a non-2xx response with no recognized business
// meaning. A timeout means "unknown outcome" — the caller must not assume
// the request was or was not processed.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: relayer returned %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RateLimitScope distinguishes which of the relayer's two rolling-window
// counters rejected the request.
type RateLimitScope string

const (
	// RateLimitQuote is the quote-request window (100 per minute).
	RateLimitQuote RateLimitScope = "quote"
	// RateLimitAssemble is the unsettled-bundle window (5 per minute,
	// credited back when a bundle settles on-chain).
	RateLimitAssemble RateLimitScope = "assemble"
)

// RateLimitError reports a server-side quota rejection. The client keeps no
// local replica of the counters — it cannot observe on-chain settlement —
// so the server's detail is passed through verbatim for the caller to back
// off on.
type RateLimitError struct {
	Scope  RateLimitScope
	Detail string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited [%s window]: %s", e.Scope, e.Detail)
}
