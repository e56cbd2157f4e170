// Command mock-relayer serves the sandbox venue: a local stand-in for the
// relayer's auth server with deterministic liquidity, signed single-use
// quotes, and the production rate-limit windows.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/renegade-fi/external-match-client/internal/mockrelayer"
	"github.com/renegade-fi/external-match-client/pkg/config"
	"github.com/renegade-fi/external-match-client/pkg/logger"
	"github.com/renegade-fi/external-match-client/pkg/model"
	"github.com/renegade-fi/external-match-client/pkg/utils"
)

// Testnet mints, matching the public sandbox deployments.
const (
	testnetWETH = "0xc3414a7ef14aaaa9c4522dfc00a4e66e74e9c25a"
	testnetUSDC = "0xdf8d259c04020562717557f2b5a3cf28e92707d1"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	cfg.ServiceName = "mock-relayer"

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [mock-relayer]...")

	if cfg.APIKey == "" || cfg.APISecret == "" {
		logg.Fatal("RENEGADE_API_KEY and RENEGADE_API_SECRET must be set")
	}
	logg.Infow("serving credentials", "api_key", utils.MaskSecret(cfg.APIKey))

	srv, err := mockrelayer.NewServer(logger.L(), mockrelayer.Config{
		APIKey:        cfg.APIKey,
		APISecret:     cfg.APISecret,
		QuoteTTL:      cfg.QuoteTTL,
		QuoteLimit:    cfg.QuoteLimit,
		AssembleLimit: cfg.AssembleLimit,
	})
	if err != nil {
		logg.Fatalw("failed to build mock relayer", "error", err)
	}

	// WETH/USDC at $3000: USDC has 6 decimals, WETH 18, so the base-unit
	// price is 3000e6 / 1e18. 500 WETH of depth.
	depth, _ := model.NewAmountFromString("500000000000000000000")
	srv.Book().AddListing(testnetWETH, testnetUSDC,
		decimal.RequireFromString("0.000000003"), depth)

	app := srv.App()

	go func() {
		<-ctx.Done()
		logg.Info("shutting down mock-relayer...")
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logg.Infow("mock relayer listening", "addr", addr)
	if err := app.Listen(addr); err != nil {
		logg.Fatalw("server exited", "error", err)
	}
}
