package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	// DatabaseURL selects the storage backend at startup: when set, all state
	// lives in Postgres; when empty, the process falls back to the in-memory
	// store (useful for local development and tests).
	DatabaseURL string `envconfig:"DATABASE_URL"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Upload handling
	TempDir     string `envconfig:"TEMP_DIR" default:"temp"`
	MaxUploadMB int64  `envconfig:"MAX_UPLOAD_MB" default:"100"`

	// Quota settings
	FreeDailyConversions int  `envconfig:"FREE_DAILY_CONVERSIONS" default:"5"`
	QuotaRefundOnFailure bool `envconfig:"QUOTA_REFUND_ON_FAILURE" default:"false"`
	QuotaResetSweepMin   int  `envconfig:"QUOTA_RESET_SWEEP_MIN" default:"60"`

	// Stripe settings
	StripeSecretKey       string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret   string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripePriceMonthly    string `envconfig:"STRIPE_PRICE_MONTHLY"`
	StripePriceAnnual     string `envconfig:"STRIPE_PRICE_ANNUAL"`
	StripePortalReturnURL string `envconfig:"STRIPE_PORTAL_RETURN_URL" default:"http://localhost:8080/dashboard/subscription"`

	// Google OAuth settings
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL" default:"http://localhost:8080/auth/google/callback"`
	OAuthSuccessURL    string `envconfig:"OAUTH_SUCCESS_URL" default:"/"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
