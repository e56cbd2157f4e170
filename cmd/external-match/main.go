// Command external-match walks one order through the external match
// lifecycle: request a quote, validate it, print the economics, and
// optionally assemble it into a settlement bundle. Submitting the bundle
// on-chain is out of scope; the settlement transaction is printed verbatim.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/renegade-fi/external-match-client/pkg/client"
	"github.com/renegade-fi/external-match-client/pkg/config"
	"github.com/renegade-fi/external-match-client/pkg/logger"
	"github.com/renegade-fi/external-match-client/pkg/model"
	"github.com/renegade-fi/external-match-client/pkg/secrets"
	"github.com/renegade-fi/external-match-client/pkg/utils"
)

func main() {
	var (
		baseMint    = flag.String("base", "", "base token mint (hex address)")
		quoteMint   = flag.String("quote", "", "quote token mint (hex address)")
		side        = flag.String("side", "sell", "order side: buy or sell")
		baseAmount  = flag.String("base-amount", "", "order size in base units of the base token")
		quoteAmount = flag.String("quote-amount", "", "order size in base units of the quote token")
		minFill     = flag.String("min-fill", "0", "minimum acceptable fill in the sized token")
		assemble    = flag.Bool("assemble", false, "assemble the quote into a settlement bundle")
		refundAddr  = flag.String("refund-address", "", "direct the gas rebate to this address")
		noSponsor   = flag.Bool("no-sponsorship", false, "disable gas sponsorship")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()

	creds, err := resolveCredentials(ctx, cfg)
	if err != nil {
		logg.Fatalw("failed to resolve relayer credentials", "error", err)
	}
	logg.Infow("credentials resolved", "api_key", utils.MaskSecret(creds.APIKey))

	c, err := buildClient(cfg, creds)
	if err != nil {
		logg.Fatalw("failed to construct client", "error", err)
	}

	order, err := buildOrder(*baseMint, *quoteMint, *side, *baseAmount, *quoteAmount, *minFill)
	if err != nil {
		logg.Fatalw("invalid order", "error", err)
	}

	opts := client.RequestQuoteOptions{
		DisableGasSponsorship: *noSponsor || cfg.DisableGasSponsorship,
		RefundAddress:         *refundAddr,
	}
	quote, err := c.RequestQuoteWithOptions(ctx, order, opts)
	if err != nil {
		logg.Fatalw("quote request failed", "error", err)
	}
	if quote == nil {
		logg.Info("no internal liquidity crosses this order right now")
		return
	}

	econ := quote.EffectiveEconomics()
	logg.Infow("quote received",
		"send_mint", econ.Send.Mint,
		"send_amount", econ.Send.Amount.String(),
		"receive_mint", econ.Receive.Mint,
		"receive_amount", econ.Receive.Amount.String(),
		"price", econ.Price.Price,
		"relayer_fee", econ.Fees.RelayerFee.String(),
		"protocol_fee", econ.Fees.ProtocolFee.String(),
	)

	if !*assemble {
		return
	}

	bundle, err := c.AssembleQuote(ctx, quote)
	if err != nil {
		logg.Fatalw("assembly failed", "error", err)
	}
	if bundle == nil {
		logg.Info("quote no longer honored by the relayer; request a fresh one")
		return
	}

	out, _ := json.MarshalIndent(bundle, "", "  ")
	fmt.Println(string(out))
	logg.Info("bundle ready; approve the send token and submit settlement_tx verbatim")
}

// credsCache spans resolveCredentials calls within one process, so repeated
// lookups of the same secret hit AWS once per TTL.
var credsCache *secrets.Cache[*secrets.Credentials]

// resolveCredentials prefers explicit env credentials and falls back to AWS
// Secrets Manager when a secret name is configured.
func resolveCredentials(ctx context.Context, cfg *config.Config) (*secrets.Credentials, error) {
	if cfg.APIKey != "" && cfg.APISecret != "" {
		return &secrets.Credentials{APIKey: cfg.APIKey, APISecret: cfg.APISecret}, nil
	}
	if cfg.CredentialsSecret == "" {
		return nil, fmt.Errorf("set RENEGADE_API_KEY/RENEGADE_API_SECRET or RENEGADE_CREDENTIALS_SECRET")
	}

	if credsCache == nil {
		credsCache = secrets.NewCache[*secrets.Credentials](cfg.CacheTTL)
	}
	if creds, ok := credsCache.Get(cfg.CredentialsSecret); ok {
		return creds, nil
	}
	provider, err := secrets.NewAWSProvider(cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	creds, err := secrets.ResolveCredentials(ctx, provider, cfg.CredentialsSecret)
	if err != nil {
		return nil, err
	}
	credsCache.Put(cfg.CredentialsSecret, creds)
	return creds, nil
}

func buildClient(cfg *config.Config, creds *secrets.Credentials) (*client.Client, error) {
	opts := []client.Option{
		client.WithLogger(logger.L()),
		client.WithTimeout(cfg.HTTPTimeout),
	}
	if cfg.BaseURL != "" {
		return client.New(creds.APIKey, creds.APISecret, cfg.BaseURL, opts...)
	}
	switch cfg.Network {
	case "mainnet":
		return client.NewMainnetClient(creds.APIKey, creds.APISecret, opts...)
	default:
		return client.NewSepoliaClient(creds.APIKey, creds.APISecret, opts...)
	}
}

func buildOrder(base, quote, side, baseAmt, quoteAmt, minFill string) (*model.ExternalOrder, error) {
	order := &model.ExternalOrder{
		BaseMint:  base,
		QuoteMint: quote,
	}
	switch side {
	case "buy":
		order.Side = model.Buy
	case "sell":
		order.Side = model.Sell
	default:
		return nil, fmt.Errorf("side must be buy or sell, got %q", side)
	}

	if baseAmt != "" {
		amt, err := model.NewAmountFromString(baseAmt)
		if err != nil {
			return nil, err
		}
		order.BaseAmount = &amt
	}
	if quoteAmt != "" {
		amt, err := model.NewAmountFromString(quoteAmt)
		if err != nil {
			return nil, err
		}
		order.QuoteAmount = &amt
	}
	if minFill != "" {
		amt, err := model.NewAmountFromString(minFill)
		if err != nil {
			return nil, err
		}
		order.MinFillSize = amt
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}
