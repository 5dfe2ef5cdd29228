package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	// Housekeeping cadence. When TRIGGER_CRON is set it wins over the
	// fixed interval.
	PassIntervalSec int    `env:"PASS_INTERVAL_SEC" envDefault:"60" validate:"min=5,max=3600"`
	TriggerCron     string `env:"TRIGGER_CRON"`

	// Business hours window used by the SLA clock.
	BusinessOpenHour  int `env:"BUSINESS_OPEN_HOUR"  envDefault:"8"  validate:"min=0,max=23"`
	BusinessCloseHour int `env:"BUSINESS_CLOSE_HOUR" envDefault:"17" validate:"min=1,max=24"`

	OpsPort     string `env:"OPS_PORT"     envDefault:"8080"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	OpsToken    string `env:"OPS_TOKEN" validate:"required_if=Env production,required_if=Env staging"`

	ZulipSite     string `env:"ZULIP_SITE"`
	ZulipBotEmail string `env:"ZULIP_BOT_EMAIL" validate:"required_with=ZulipSite"`
	ZulipAPIKey   string `env:"ZULIP_API_KEY"   validate:"required_with=ZulipSite"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	ResendFrom   string `env:"RESEND_FROM" validate:"required_with=ResendAPIKey"`

	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
