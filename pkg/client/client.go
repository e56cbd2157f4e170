// Package client implements the external match lifecycle against a
// Renegade-style darkpool relayer:
//
//	UNREQUESTED --RequestQuote--> QUOTED --AssembleQuote--> ASSEMBLED
//	QUOTED --(expired / no match)--> UNREQUESTED
//
// The client is a stateless request/response façade: it holds only immutable
// credentials, so a single instance is safe for any number of concurrent
// callers without locking. "No liquidity right now" is an expected outcome
// and is returned as a nil result, never as an error.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/renegade-fi/external-match-client/internal/auth"
	"github.com/renegade-fi/external-match-client/internal/metrics"
	"github.com/renegade-fi/external-match-client/internal/relayer"
	"github.com/renegade-fi/external-match-client/pkg/model"
)

// Network endpoints, selected at construction time.
const (
	SepoliaBaseURL = "https://testnet.auth-server.renegade.fi"
	MainnetBaseURL = "https://mainnet.auth-server.renegade.fi"
)

// Matching engine routes.
const (
	RequestQuoteRoute          = "/v0/matching-engine/quote"
	AssembleExternalMatchRoute = "/v0/matching-engine/assemble-external-match"
	RequestExternalMatchRoute  = "/v0/matching-engine/request-external-match"
)

// Client talks to the relayer's external matching API.
type Client struct {
	logger   *zap.Logger
	relayer  *relayer.Client
	baseURL  string
	httpOpts httpOptions
}

type httpOptions struct {
	client  *http.Client
	timeout time.Duration
}

// Option customizes client construction.
type Option func(*Client)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpOpts.client = hc }
}

// WithTimeout bounds each relayer exchange. Ignored when WithHTTPClient is
// also supplied.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpOpts.timeout = d }
}

// New creates a client for the given base URL. Credentials are validated
// here: a missing or malformed key pair fails before any network call.
func New(apiKey, apiSecret, baseURL string, opts ...Option) (*Client, error) {
	signer, err := auth.NewSigner(apiKey, apiSecret)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	if baseURL == "" {
		return nil, &ConfigurationError{Reason: "base URL is empty"}
	}

	c := &Client{logger: zap.NewNop(), baseURL: baseURL}
	for _, opt := range opts {
		opt(c)
	}
	hc := c.httpOpts.client
	if hc == nil && c.httpOpts.timeout > 0 {
		hc = &http.Client{Timeout: c.httpOpts.timeout}
	}
	c.relayer = relayer.New(c.logger, baseURL, signer, hc)
	return c, nil
}

// NewSepoliaClient creates a client against the Sepolia testnet relayer.
func NewSepoliaClient(apiKey, apiSecret string, opts ...Option) (*Client, error) {
	return New(apiKey, apiSecret, SepoliaBaseURL, opts...)
}

// NewMainnetClient creates a client against the mainnet relayer.
func NewMainnetClient(apiKey, apiSecret string, opts ...Option) (*Client, error) {
	return New(apiKey, apiSecret, MainnetBaseURL, opts...)
}

// RequestQuote requests a quote for order under the default sponsorship
// policy. A nil quote means no internal liquidity currently crosses the
// order.
func (c *Client) RequestQuote(ctx context.Context, order *model.ExternalOrder) (*model.SignedQuote, error) {
	return c.RequestQuoteWithOptions(ctx, order, RequestQuoteOptions{})
}

// RequestQuoteWithOptions requests a quote with explicit sponsorship
// options. The returned quote has already passed local validation.
func (c *Client) RequestQuoteWithOptions(
	ctx context.Context,
	order *model.ExternalOrder,
	opts RequestQuoteOptions,
) (*model.SignedQuote, error) {
	const op = "request_quote"
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	path := RequestQuoteRoute + opts.queryString()
	resp, err := c.relayer.Post(ctx, path, &model.QuoteRequest{ExternalOrder: order})
	body, empty, err := c.mapResponse(op, RateLimitQuote, resp, err)
	if err != nil {
		metrics.IncLifecycle(op, "error")
		return nil, err
	}
	if empty {
		metrics.IncLifecycle(op, "no_match")
		c.logger.Debug("client.no_match_found")
		return nil, nil
	}

	var quoteResp model.QuoteResponse
	if err := json.Unmarshal(body, &quoteResp); err != nil {
		metrics.IncLifecycle(op, "error")
		return nil, &TransportError{Op: op, Err: err}
	}
	signed := quoteResp.SignedQuote
	if signed.GasSponsorshipInfo == nil {
		signed.GasSponsorshipInfo = quoteResp.GasSponsorshipInfo
	}

	if err := c.validateQuote(op, &signed); err != nil {
		return nil, err
	}
	metrics.IncLifecycle(op, "quoted")
	c.logger.Debug("client.quote_received",
		zap.String("send_mint", signed.Quote.Send.Mint),
		zap.String("receive_mint", signed.Quote.Receive.Mint),
		zap.String("price", signed.Quote.Price.Price))
	return &signed, nil
}

// AssembleQuote assembles a signed quote with default options and returns
// the settlement-ready bundle with any in-kind rebate applied. A nil bundle
// means the relayer can no longer honor the quote (expired or already
// consumed); the caller must request a fresh quote.
func (c *Client) AssembleQuote(ctx context.Context, quote *model.SignedQuote) (*model.MatchBundle, error) {
	resp, err := c.AssembleQuoteWithOptions(ctx, quote, AssembleOptions{})
	if err != nil || resp == nil {
		return nil, err
	}
	bundle := resp.EffectiveBundle()
	return &bundle, nil
}

// AssembleQuoteWithOptions assembles a signed quote into a match bundle.
// The quote is re-validated locally first — an inconsistent quote must never
// reach assembly. Assembly is never retried internally: each call consumes
// the relayer's unsettled-bundle allowance, and a transparent retry could
// exhaust it invisibly.
func (c *Client) AssembleQuoteWithOptions(
	ctx context.Context,
	quote *model.SignedQuote,
	opts AssembleOptions,
) (*model.MatchResponse, error) {
	const op = "assemble_quote"
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := c.validateQuote(op, quote); err != nil {
		return nil, err
	}

	req := &model.AssembleMatchRequest{
		DoGasEstimation: opts.DoGasEstimation,
		ReceiverAddress: opts.ReceiverAddress,
		SignedQuote:     quote,
		UpdatedOrder:    opts.UpdatedOrder,
	}
	path := AssembleExternalMatchRoute + opts.queryString()
	resp, err := c.relayer.Post(ctx, path, req)
	body, empty, err := c.mapResponse(op, RateLimitAssemble, resp, err)
	if err != nil {
		metrics.IncLifecycle(op, "error")
		return nil, err
	}
	if empty {
		metrics.IncLifecycle(op, "expired")
		c.logger.Debug("client.quote_not_honored")
		return nil, nil
	}

	var matchResp model.MatchResponse
	if err := json.Unmarshal(body, &matchResp); err != nil {
		metrics.IncLifecycle(op, "error")
		return nil, &TransportError{Op: op, Err: err}
	}
	metrics.IncLifecycle(op, "assembled")
	return &matchResp, nil
}

// RequestExternalMatch composes quote and assembly in one relayer round
// trip. It is not atomic: a failure between the two steps leaves no side
// effect, the intermediate quote simply expires unused. UpdatedOrder is not
// applicable here — there is no intermediate quote to update against.
func (c *Client) RequestExternalMatch(
	ctx context.Context,
	order *model.ExternalOrder,
	opts AssembleOptions,
) (*model.MatchResponse, error) {
	const op = "request_external_match"
	if opts.UpdatedOrder != nil {
		return nil, &ConfigurationError{Reason: "updated order is only valid when assembling an existing quote"}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	req := &model.ExternalMatchRequest{
		DoGasEstimation: opts.DoGasEstimation,
		ReceiverAddress: opts.ReceiverAddress,
		ExternalOrder:   order,
	}
	path := RequestExternalMatchRoute + opts.queryString()
	resp, err := c.relayer.Post(ctx, path, req)
	body, empty, err := c.mapResponse(op, RateLimitAssemble, resp, err)
	if err != nil {
		metrics.IncLifecycle(op, "error")
		return nil, err
	}
	if empty {
		metrics.IncLifecycle(op, "no_match")
		return nil, nil
	}

	var matchResp model.MatchResponse
	if err := json.Unmarshal(body, &matchResp); err != nil {
		metrics.IncLifecycle(op, "error")
		return nil, &TransportError{Op: op, Err: err}
	}
	metrics.IncLifecycle(op, "assembled")
	return &matchResp, nil
}

// validateQuote runs local validation, counting failures by invariant.
func (c *Client) validateQuote(op string, quote *model.SignedQuote) error {
	if err := model.ValidateQuote(quote); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			metrics.IncValidationFailure(verr.Invariant)
		}
		c.logger.Warn("client.quote_validation_failed",
			zap.String("operation", op),
			zap.Error(err))
		return err
	}
	return nil
}

// mapResponse maps a raw transport outcome onto the error taxonomy.
// empty=true stands for the relayer's 204: no match found or quote no
// longer honored, both expected outcomes.
func (c *Client) mapResponse(op string, scope RateLimitScope, resp *relayer.Response, err error) (body []byte, empty bool, _ error) {
	if err != nil {
		return nil, false, &TransportError{Op: op, Err: err}
	}
	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, true, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp.Body, false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, false, &RateLimitError{Scope: scope, Detail: string(resp.Body)}
	default:
		return nil, false, &TransportError{Op: op, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
}
