package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Notifier drivers.
const (
	NotifierLog   = "log"
	NotifierKafka = "kafka"
)

// Config holds the complete application configuration, loadable from
// environment variables (CHECKOUT_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (CHECKOUT_DATABASE_URL or DATABASE_URL); in-memory storage when empty" flag:"database-url"`
	Gateway     GatewayConfig
	Notifier    NotifierConfig
	Graceful    GracefulConfig
}

// GatewayConfig controls the decline rules of the sandbox payment gateway.
type GatewayConfig struct {
	DeclineTokens []string `usage:"Payment tokens that are always declined"`
	BlocklistFile string   `usage:"File with one declined token per line, optionally .gz" flag:"blocklist-file"`
	MaxAmount     string   `default:"0" usage:"Decline charges above this amount (0 disables)" flag:"max-amount"`
}

// NotifierConfig selects how approval emails are delivered.
type NotifierConfig struct {
	Driver string `default:"log" usage:"Notifier driver: log or kafka"`
	Kafka  KafkaConfig
}

// KafkaConfig configures the kafka notifier driver.
type KafkaConfig struct {
	Brokers      []string      `usage:"Kafka broker addresses"`
	Topic        string        `default:"checkout.emails" usage:"Topic for email requests"`
	WriteTimeout time.Duration `default:"5s" usage:"Per-message write timeout"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, flags and YAML
// config files, applies platform defaults and validates the result.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "CHECKOUT",
		Files:     []string{"config.yaml", "/etc/checkout/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return &cfg, nil
}

// MaxChargeAmount returns the parsed gateway charge limit.
func (c *Config) MaxChargeAmount() decimal.Decimal {
	v, err := decimal.NewFromString(c.Gateway.MaxAmount)
	if err != nil {
		return decimal.Zero
	}
	return v
}

func (c *Config) validate() error {
	if c.Gateway.MaxAmount != "" {
		v, err := decimal.NewFromString(c.Gateway.MaxAmount)
		if err != nil {
			return errors.Wrap(err, "gateway max amount")
		}
		if v.IsNegative() {
			return errors.New("gateway max amount must not be negative")
		}
	}

	switch c.Notifier.Driver {
	case NotifierLog:
	case NotifierKafka:
		if len(c.Notifier.Kafka.Brokers) == 0 {
			return errors.New("kafka notifier requires brokers")
		}
	default:
		return errors.Errorf("unknown notifier driver %q", c.Notifier.Driver)
	}
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's CHECKOUT_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
