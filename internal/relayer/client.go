// Package relayer is the signed HTTP transport to the venue's auth server.
// It performs network I/O only: business interpretation of status codes
// belongs to the caller. Requests are never retried here — assemble calls
// consume scarce per-minute allowance, so retry policy is the integrator's.
package relayer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/renegade-fi/external-match-client/internal/auth"
	"github.com/renegade-fi/external-match-client/internal/metrics"
)

// DefaultTimeout bounds a single relayer exchange. A timed-out request
// surfaces as an error, never as a silent hang.
const DefaultTimeout = 30 * time.Second

// Response is the raw outcome of one exchange.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client issues signed requests against a single base URL.
type Client struct {
	logger  *zap.Logger
	http    *http.Client
	baseURL string
	signer  *auth.Signer
}

// New creates a transport client. A nil httpClient gets a timeout-bounded
// default.
func New(logger *zap.Logger, baseURL string, signer *auth.Signer, httpClient *http.Client) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		logger:  logger,
		http:    httpClient,
		baseURL: baseURL,
		signer:  signer,
	}
}

// Post marshals body, signs, and executes a POST against path (which may
// carry a query string). The returned Response holds the raw status and
// body; a nil Response means the exchange never completed.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}
	return c.do(ctx, http.MethodPost, path, payload)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.signer.SignRequest(method, path, req.Header, payload)

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	route := trimQuery(path)
	if err != nil {
		metrics.IncRelayerRequest(route, method, "transport_error")
		c.logger.Warn("relayer.http_failed",
			zap.String("request_id", requestID),
			zap.String("route", route),
			zap.Duration("latency", elapsed),
			zap.Error(err))
		return nil, fmt.Errorf("relayer request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.IncRelayerRequest(route, method, "read_error")
		return nil, fmt.Errorf("read relayer response: %w", err)
	}

	metrics.IncRelayerRequest(route, method, strconv.Itoa(resp.StatusCode))
	metrics.ObserveRelayerLatency(route, method, elapsed.Seconds())
	c.logger.Debug("relayer.http_done",
		zap.String("request_id", requestID),
		zap.String("route", route),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", elapsed))

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// trimQuery strips the query string for logging and metric labels, keeping
// label cardinality bounded.
func trimQuery(path string) string {
	for i := 0; i < len(path); i++ {
		if path[i] == '?' {
			return path[:i]
		}
	}
	return path
}
