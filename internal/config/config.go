// Package config assembles the settings of the storefront and notifier
// processes from the environment.
package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/storefront/internal/idem"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/search"
	shared "github.com/Skotchmaster/storefront/pkg/config"
)

type Storefront struct {
	shared.Config

	AutoMigrate bool
	CSRFEnabled bool

	RedisAddr string
	IdemTTL   time.Duration

	Search search.Config
	Stripe payment.StripeConfig
	SMTP   notify.SMTPConfig
	Admins []string

	// AppBaseURL prefixes verification and password reset links.
	AppBaseURL           string
	RequireVerifiedEmail bool
}

type Notifier struct {
	shared.Config

	KafkaGroupID string
	SMTP         notify.SMTPConfig
	Admins       []string
}

func loadDotEnv() {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info("notice: .env file not found, using process environment", "error", err)
	}
}

// LoadStorefront reads the HTTP service settings and exits when a required
// variable is missing.
func LoadStorefront() Storefront {
	loadDotEnv()
	cfg := storefrontFromEnv()

	var req shared.Required
	req.NonEmpty(cfg.DatabaseURL, "DATABASE_URL").
		NonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET").
		NonEmptyBytes(cfg.JWTRefreshSecret, "JWT_REFRESH_SECRET").
		NonEmpty(cfg.Stripe.SecretKey, "STRIPE_SECRET_KEY").
		MustBeSet()
	return cfg
}

func LoadNotifier() Notifier {
	loadDotEnv()
	cfg := notifierFromEnv()

	var req shared.Required
	req.NonEmptyList(cfg.KafkaBrokers, "KAFKA_BROKERS").
		NonEmpty(cfg.SMTP.Addr, "SMTP_ADDR").
		NonEmpty(cfg.SMTP.From, "MAIL_FROM").
		MustBeSet()
	return cfg
}

func storefrontFromEnv() Storefront {
	return Storefront{
		Config: shared.Load(),

		AutoMigrate: shared.EnvBoolDefault("AUTO_MIGRATE", false),
		CSRFEnabled: shared.EnvBoolDefault("CSRF_ENABLED", false),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		IdemTTL:   shared.EnvDurationDefault("IDEM_TTL", idem.DefaultTTL),

		Search: search.Config{
			URL:      os.Getenv("ES_URL"),
			User:     os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    shared.EnvDefault("ES_INDEX", "products"),
		},
		Stripe: payment.StripeConfig{
			SecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
			BaseURL:    os.Getenv("STRIPE_API_URL"),
			SuccessURL: os.Getenv("CHECKOUT_SUCCESS_URL"),
			CancelURL:  os.Getenv("CHECKOUT_CANCEL_URL"),
			Currency:   shared.EnvDefault("CURRENCY", "usd"),
		},
		SMTP:   smtpFromEnv(),
		Admins: shared.CSV(os.Getenv("ADMIN_EMAILS")),

		AppBaseURL:           shared.EnvDefault("APP_BASE_URL", "http://localhost:8080"),
		RequireVerifiedEmail: shared.EnvBoolDefault("AUTH_REQUIRE_VERIFIED_EMAIL", false),
	}
}

func notifierFromEnv() Notifier {
	base := shared.Load()
	if os.Getenv("SERVICE_NAME") == "" {
		base.ServiceName = "notifier"
	}
	return Notifier{
		Config:       base,
		KafkaGroupID: shared.EnvDefault("KAFKA_GROUP_ID", "order-notifier"),
		SMTP:         smtpFromEnv(),
		Admins:       shared.CSV(os.Getenv("ADMIN_EMAILS")),
	}
}

func smtpFromEnv() notify.SMTPConfig {
	return notify.SMTPConfig{
		Addr:     os.Getenv("SMTP_ADDR"),
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("MAIL_FROM"),
	}
}
