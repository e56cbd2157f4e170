// Package mockrelayer is an in-process stand-in for the venue's auth
// server, used by integration tests and local development. It reproduces
// the pieces of server behavior the client contract depends on: request
// signature verification, single-use time-bounded quotes, the two
// rolling-window rate limits, and gas sponsorship grants.
package mockrelayer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/renegade-fi/external-match-client/internal/auth"
	"github.com/renegade-fi/external-match-client/internal/rate"
	"github.com/renegade-fi/external-match-client/pkg/model"
)

// Matching engine routes, mirrored from the production relayer.
const (
	quoteRoute    = "/v0/matching-engine/quote"
	assembleRoute = "/v0/matching-engine/assemble-external-match"
	directRoute   = "/v0/matching-engine/request-external-match"
	settleRoute   = "/sandbox/settle"
)

// Sponsorship query parameters.
const (
	disableSponsorshipParam = "disable_gas_sponsorship"
	refundAddressParam      = "refund_address"
)

// darkpoolAddress is the settlement contract the sandbox points bundles at.
const darkpoolAddress = "0x30b930269806d4d49b1c3c1ea0ab0f2dc2e0c47a"

// Config parameterizes the sandbox.
type Config struct {
	APIKey        string // key id clients must present
	APISecret     string // base64 shared secret for request signatures
	QuoteTTL      time.Duration
	QuoteLimit    int // quote requests per rolling minute
	AssembleLimit int // unsettled bundles per rolling minute
}

// Server is the sandbox relayer.
type Server struct {
	logger *zap.Logger
	cfg    Config

	key        []byte // request auth key, shared with clients
	signingKey []byte // quote signing key, server-private

	book           *Book
	store          *quoteStore
	quoteWindow    *rate.Window
	assembleWindow *rate.Window
	now            func() time.Time
}

// NewServer builds a sandbox relayer. The quote signing key is derived from
// the shared secret; only the server ever signs with it.
func NewServer(logger *zap.Logger, cfg Config) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("mock relayer config: api key and secret are required")
	}

	key, err := base64.StdEncoding.DecodeString(cfg.APISecret)
	if err != nil {
		key, err = base64.RawStdEncoding.DecodeString(cfg.APISecret)
		if err != nil {
			return nil, fmt.Errorf("mock relayer config: %w", err)
		}
	}

	derived := sha256.Sum256(append([]byte("quote-signing:"), key...))
	return &Server{
		logger:         logger,
		cfg:            cfg,
		key:            key,
		signingKey:     derived[:],
		book:           NewBook(),
		store:          newQuoteStore(cfg.QuoteTTL),
		quoteWindow:    rate.NewWindow(cfg.QuoteLimit, time.Minute),
		assembleWindow: rate.NewWindow(cfg.AssembleLimit, time.Minute),
		now:            time.Now,
	}, nil
}

// Book exposes the liquidity table for seeding.
func (s *Server) Book() *Book {
	return s.book
}

// App builds the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	engine := app.Group("/v0", s.requireAuth)
	engine.Post("/matching-engine/quote", s.handleQuote)
	engine.Post("/matching-engine/assemble-external-match", s.handleAssemble)
	engine.Post("/matching-engine/request-external-match", s.handleDirectMatch)

	app.Post(settleRoute, s.handleSettle)
	return app
}

// requireAuth verifies the key id and the request signature before any
// handler runs.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	hdr := http.Header{}
	for key, values := range c.GetReqHeaders() {
		for _, v := range values {
			hdr.Add(key, v)
		}
	}

	if hdr.Get(auth.APIKeyHeader) != s.cfg.APIKey {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unknown api key"})
	}
	if err := auth.Verify(s.key, c.Method(), c.OriginalURL(), hdr, c.Body(), s.now()); err != nil {
		s.logger.Warn("mockrelayer.auth_failed",
			zap.String("path", c.OriginalURL()),
			zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Next()
}

func (s *Server) handleQuote(c *fiber.Ctx) error {
	var req model.QuoteRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.ExternalOrder == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed quote request"})
	}
	if err := req.ExternalOrder.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	now := s.now()
	if !s.quoteWindow.Allow(now) {
		return c.Status(fiber.StatusTooManyRequests).
			SendString("quote rate limit exceeded: 100 requests per minute")
	}

	quote, ok := s.book.MatchOrder(req.ExternalOrder, now)
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}

	signed := model.SignedQuote{
		Quote:     *quote,
		Signature: s.signQuote(quote),
	}
	sponsorship := s.grantSponsorship(c, quote.Receive.Amount)
	signed.GasSponsorshipInfo = sponsorship
	s.store.put(signed, now)

	s.logger.Debug("mockrelayer.quote_issued",
		zap.String("signature", signed.Signature),
		zap.String("price", quote.Price.Price))
	return c.JSON(model.QuoteResponse{
		SignedQuote:        signed,
		GasSponsorshipInfo: sponsorship,
	})
}

func (s *Server) handleAssemble(c *fiber.Ctx) error {
	var req model.AssembleMatchRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.SignedQuote == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed assemble request"})
	}

	// A tampered quote fails before it consumes assembly allowance.
	if s.signQuote(&req.SignedQuote.Quote) != req.SignedQuote.Signature {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid quote signature"})
	}
	if req.UpdatedOrder != nil {
		if err := validateUpdatedOrder(req.UpdatedOrder, &req.SignedQuote.Quote.Order); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	now := s.now()
	if !s.assembleWindow.Allow(now) {
		return c.Status(fiber.StatusTooManyRequests).
			SendString("assemble rate limit exceeded: 5 unsettled bundles per minute")
	}

	stored, ok := s.store.consume(req.SignedQuote.Signature, now)
	if !ok {
		// Unknown, expired, or already consumed — same empty outcome.
		s.assembleWindow.Credit()
		return c.SendStatus(fiber.StatusNoContent)
	}

	resp := s.buildMatchResponse(c, &stored.Quote)
	return c.JSON(resp)
}

func (s *Server) handleDirectMatch(c *fiber.Ctx) error {
	var req model.ExternalMatchRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.ExternalOrder == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed match request"})
	}
	if err := req.ExternalOrder.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	now := s.now()
	if !s.assembleWindow.Allow(now) {
		return c.Status(fiber.StatusTooManyRequests).
			SendString("assemble rate limit exceeded: 5 unsettled bundles per minute")
	}

	quote, ok := s.book.MatchOrder(req.ExternalOrder, now)
	if !ok {
		s.assembleWindow.Credit()
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(s.buildMatchResponse(c, quote))
}

// handleSettle simulates on-chain settlement being observed: allowance is
// credited back to the assemble window.
func (s *Server) handleSettle(c *fiber.Ctx) error {
	s.assembleWindow.Credit()
	return c.JSON(fiber.Map{"status": "settled"})
}

// buildMatchResponse turns a matched quote into a settlement-ready bundle.
// The bundle's numbers are returned unadjusted; in-kind rebates travel in
// gas_sponsorship_info for the client-side adjuster.
func (s *Server) buildMatchResponse(c *fiber.Ctx, quote *model.Quote) model.MatchResponse {
	calldata := make([]byte, 0, 68)
	calldata = append(calldata, []byte{0x1b, 0xb3, 0x3f, 0xab}...) // selector stand-in
	id := uuid.New()
	calldata = append(calldata, id[:]...)

	bundle := model.MatchBundle{
		MatchResult: quote.MatchResult,
		Fees:        quote.Fees,
		Receive:     quote.Receive,
		Send:        quote.Send,
		SettlementTx: model.SettlementTransaction{
			TxType: "0x02",
			To:     darkpoolAddress,
			Data:   "0x" + hex.EncodeToString(calldata),
			Value:  "0x0",
		},
	}

	sponsorship := s.grantSponsorship(c, quote.Receive.Amount)
	resp := model.MatchResponse{
		MatchBundle:  bundle,
		GasSponsored: sponsorship != nil,
	}
	if sponsorship != nil {
		resp.GasSponsorshipInfo = &sponsorship.GasSponsorshipInfo
	}
	return resp
}

// grantSponsorship applies the sponsorship query parameters: disabled means
// no grant, a refund address means a fixed native-ETH rebate, otherwise an
// in-kind rebate proportional to the receive amount.
func (s *Server) grantSponsorship(c *fiber.Ctx, receive model.Amount) *model.SignedGasSponsorshipInfo {
	if c.Query(disableSponsorshipParam) == "true" {
		return nil
	}

	var info model.GasSponsorshipInfo
	if addr := c.Query(refundAddressParam); addr != "" {
		info = model.GasSponsorshipInfo{
			RefundAmount:    nativeRefundWei,
			RefundNativeEth: true,
			RefundAddress:   addr,
		}
	} else {
		info = model.GasSponsorshipInfo{
			RefundAmount: floorMul(receive, sponsorshipRebateRate),
		}
	}
	return &model.SignedGasSponsorshipInfo{
		GasSponsorshipInfo: info,
		Signature:          s.signJSON(info),
	}
}

// signQuote produces the venue signature over a quote's canonical JSON.
func (s *Server) signQuote(q *model.Quote) string {
	return s.signJSON(q)
}

func (s *Server) signJSON(v any) string {
	payload, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write(payload)
	return base64.RawStdEncoding.EncodeToString(mac.Sum(nil))
}

// validateUpdatedOrder allows resizing within the quoted match but never a
// different pair or direction.
func validateUpdatedOrder(updated, original *model.ExternalOrder) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	if model.NormalizeMint(updated.BaseMint) != model.NormalizeMint(original.BaseMint) ||
		model.NormalizeMint(updated.QuoteMint) != model.NormalizeMint(original.QuoteMint) {
		return fmt.Errorf("updated order must keep the quoted pair")
	}
	if updated.Side != original.Side {
		return fmt.Errorf("updated order must keep the quoted side")
	}
	return nil
}
