package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the example binaries. The core
// client takes credentials as explicit constructor parameters; environment
// lookup lives here, outside the library surface.
type Config struct {
	ServiceName string // e.g. "external-match"
	Env         string // "dev" or "prod"
	LogLevel    string // "debug", "info", etc.

	// Relayer connection
	Network     string        // "sepolia" or "mainnet"
	BaseURL     string        // overrides the network default when set
	HTTPTimeout time.Duration // per-exchange bound
	// DisableGasSponsorship opts the binaries out of sponsorship by default;
	// the CLI flag can still opt out per invocation.
	DisableGasSponsorship bool

	// Credentials. Either plain env vars, or resolved from AWS Secrets
	// Manager when CredentialsSecret is set (see pkg/secrets).
	APIKey            string
	APISecret         string
	CredentialsSecret string // AWS SM secret name, optional
	AWSRegion         string
	CacheTTL          time.Duration // TTL for the credential cache

	// Mock relayer settings
	Port          int           // mock relayer listen port
	QuoteTTL      time.Duration // mock relayer quote validity window
	QuoteLimit    int           // quote requests per rolling minute
	AssembleLimit int           // unsettled bundles per rolling minute
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName: GetEnv("SERVICE_NAME", "external-match"),
		Env:         GetEnv("ENV", "dev"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),

		Network:               GetEnv("RENEGADE_NETWORK", "sepolia"),
		BaseURL:               GetEnv("RENEGADE_BASE_URL", ""),
		HTTPTimeout:           GetEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		DisableGasSponsorship: GetEnvBool("RENEGADE_DISABLE_GAS_SPONSORSHIP", false),

		APIKey:            GetEnv("RENEGADE_API_KEY", ""),
		APISecret:         GetEnv("RENEGADE_API_SECRET", ""),
		CredentialsSecret: GetEnv("RENEGADE_CREDENTIALS_SECRET", ""),
		AWSRegion:         GetEnv("AWS_REGION", "us-east-2"),
		CacheTTL:          GetEnvDuration("CACHE_TTL", 1*time.Hour),

		Port:          GetEnvInt("MOCK_RELAYER_PORT", 9020),
		QuoteTTL:      GetEnvDuration("MOCK_QUOTE_TTL", 30*time.Second),
		QuoteLimit:    GetEnvInt("MOCK_QUOTE_LIMIT", 100),
		AssembleLimit: GetEnvInt("MOCK_ASSEMBLE_LIMIT", 5),
	}
}
