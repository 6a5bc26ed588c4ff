package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Global singleton so the inference layer can reach the provider secret
// without threading config through every call site.
var globalConfig *Config

// Config holds all environment backed configuration for the evaluator service.
type Config struct {
	// HTTP Server
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8000"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"9091"`
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// Model providers
	ProviderSecret        string        `env:"PROVIDER_SECRET" envDefault:"llm-evaluator-provider-secret"`
	ProviderTimeout       time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"120s"`
	ProviderBootstrapFile string        `env:"PROVIDER_BOOTSTRAP_FILE"`

	// Model sync
	ModelSyncEnabled         bool `env:"MODEL_SYNC_ENABLED" envDefault:"false"`
	ModelSyncIntervalMinutes int  `env:"MODEL_SYNC_INTERVAL_MINUTES" envDefault:"60"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"llm-evaluator"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"evaluator"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`

	// Features
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.ProviderTimeout <= 0 {
		return nil, fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", cfg.ProviderTimeout)
	}
	if cfg.ModelSyncEnabled && cfg.ModelSyncIntervalMinutes <= 0 {
		return nil, fmt.Errorf("MODEL_SYNC_INTERVAL_MINUTES must be positive, got %d", cfg.ModelSyncIntervalMinutes)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	globalConfig = cfg
	return cfg, nil
}

// GetGlobal returns the global config instance.
func GetGlobal() *Config {
	return globalConfig
}

var Version = "dev"

func IsDev() bool {
	return strings.HasPrefix(Version, "dev")
}
