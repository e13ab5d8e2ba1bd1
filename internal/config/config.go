package config

import (
	"errors"
	"flag"
	"net/url"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

type Config struct {
	Address                 string  `env:"RUN_ADDRESS" envDefault:":8080"`
	DatabaseURI             string  `env:"DATABASE_URI"`
	MPAPIAddress            string  `env:"MP_API_ADDRESS" envDefault:"https://api.mercadopago.com"`
	MPAuthAddress           string  `env:"MP_AUTH_ADDRESS" envDefault:"https://auth.mercadopago.com"`
	MPClientID              string  `env:"MP_CLIENT_ID"`
	MPClientSecret          string  `env:"MP_CLIENT_SECRET"`
	MPRedirectURI           string  `env:"MP_REDIRECT_URI"`
	WebhookSecret           string  `env:"WEBHOOK_SECRET"`
	WebhookRequireSignature bool    `env:"WEBHOOK_REQUIRE_SIGNATURE" envDefault:"false"`
	CommissionPercentage    float64 `env:"MARKETPLACE_COMMISSION_PERCENTAGE" envDefault:"5"`
	PublicAppURL            string  `env:"PUBLIC_APP_URL"`
	PublicWebhookURL        string  `env:"PUBLIC_WEBHOOK_URL"`
	StateCookieSecret       string  `env:"STATE_COOKIE_SECRET"`
}

func NewConfig() (Config, error) {
	config := Config{}

	// Local development convenience, a missing .env is fine.
	_ = godotenv.Load()

	config.parseFlags()

	if err := env.Parse(&config); err != nil {
		return Config{}, err
	}

	if err := config.validateConfig(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c *Config) parseFlags() {
	flag.StringVar(&c.Address, "a", c.Address, "Service address")
	flag.StringVar(&c.DatabaseURI, "d", c.DatabaseURI, "Database URI")
	flag.StringVar(&c.MPAPIAddress, "r", c.MPAPIAddress, "Payment processor API address")

	flag.Parse()
}

func (c *Config) validateConfig() error {
	if c.DatabaseURI == "" {
		return errors.New("database URI is required")
	}

	for _, URI := range []string{c.MPAPIAddress, c.MPAuthAddress} {
		_, err := url.ParseRequestURI(URI)
		if err != nil {
			return err
		}
	}

	return nil
}

// WebhookURL returns the notification URL registered with created payment
// intents.
func (c *Config) WebhookURL() string {
	if c.PublicWebhookURL != "" {
		return c.PublicWebhookURL
	}

	return c.PublicAppURL + "/webhook"
}
