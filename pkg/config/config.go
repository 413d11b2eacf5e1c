package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// API token auth for the v1 group. Either the plain token or a
	// bcrypt hash of it; the hash wins when both are set.
	APIToken     string
	APITokenHash string

	// Remote balance-of-record service. HTTP wins when both are set.
	BalanceServiceURL   string
	BalanceServiceToken string
	NATSURL             string
	RemoteCallTimeout   time.Duration
	RetryBackoff        time.Duration

	// Payment provider (checkout top-ups).
	StripeAPIKey     string
	StripeSuccessURL string
	StripeCancelURL  string
	ProviderName     string
	Currency         string

	// Rate limiting, ulule formatted string such as "100-M".
	RateLimit string

	CORSAllowOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("API_TOKEN", "")
	viper.SetDefault("API_TOKEN_HASH", "")
	viper.SetDefault("BALANCE_SERVICE_URL", "")
	viper.SetDefault("BALANCE_SERVICE_TOKEN", "")
	viper.SetDefault("NATS_URL", "")
	viper.SetDefault("REMOTE_CALL_TIMEOUT", "3s")
	viper.SetDefault("RETRY_BACKOFF", "200ms")
	viper.SetDefault("STRIPE_API_KEY", "")
	viper.SetDefault("STRIPE_SUCCESS_URL", "http://localhost:3000/topup/success")
	viper.SetDefault("STRIPE_CANCEL_URL", "http://localhost:3000/topup/cancelled")
	viper.SetDefault("PROVIDER_NAME", "Stripe")
	viper.SetDefault("CURRENCY", "sgd")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.APIToken = viper.GetString("API_TOKEN")
	cfg.APITokenHash = viper.GetString("API_TOKEN_HASH")
	if cfg.APIToken == "" && cfg.APITokenHash == "" {
		log.Println("Warning: neither API_TOKEN nor API_TOKEN_HASH set. All /api/v1 requests will be rejected.")
	}

	cfg.BalanceServiceURL = viper.GetString("BALANCE_SERVICE_URL")
	cfg.BalanceServiceToken = viper.GetString("BALANCE_SERVICE_TOKEN")
	cfg.NATSURL = viper.GetString("NATS_URL")

	timeoutStr := viper.GetString("REMOTE_CALL_TIMEOUT")
	remoteTimeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		remoteTimeout = 3 * time.Second
		log.Printf("Warning: Invalid value for REMOTE_CALL_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, remoteTimeout.String())
	}
	cfg.RemoteCallTimeout = remoteTimeout

	backoffStr := viper.GetString("RETRY_BACKOFF")
	retryBackoff, err := time.ParseDuration(backoffStr)
	if err != nil {
		retryBackoff = 200 * time.Millisecond
		log.Printf("Warning: Invalid value for RETRY_BACKOFF ('%s'). Defaulting to %s.\n", backoffStr, retryBackoff.String())
	}
	cfg.RetryBackoff = retryBackoff

	cfg.StripeAPIKey = viper.GetString("STRIPE_API_KEY")
	if cfg.StripeAPIKey == "" {
		log.Println("Warning: STRIPE_API_KEY not set. Checkout session creation will be unavailable.")
	}
	cfg.StripeSuccessURL = viper.GetString("STRIPE_SUCCESS_URL")
	cfg.StripeCancelURL = viper.GetString("STRIPE_CANCEL_URL")
	cfg.ProviderName = viper.GetString("PROVIDER_NAME")
	cfg.Currency = viper.GetString("CURRENCY")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowOrigins = viper.GetStringSlice("CORS_ALLOW_ORIGINS")

	return cfg, nil
}
