package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the relay server.
type Config struct {
	// HTTP Server
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"mistralhub"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort     int           `env:"METRICS_PORT" envDefault:"9091"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	EnableSwagger   bool          `env:"ENABLE_SWAGGER" envDefault:"true"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:8080,http://127.0.0.1:3000"`

	// Upstream
	MistralAPIKey  string        `env:"MISTRAL_API_KEY,notEmpty"`
	MistralBaseURL string        `env:"MISTRAL_BASE_URL" envDefault:"https://api.mistral.ai/v1"`
	// UpstreamTimeout bounds single-shot vision and document calls.
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"60s"`
	// RelayStreamTimeout bounds one streaming relay; zero disables the limit.
	RelayStreamTimeout time.Duration `env:"RELAY_STREAM_TIMEOUT" envDefault:"120s"`
	StrictModelCatalog bool          `env:"STRICT_MODEL_CATALOG" envDefault:"false"`

	// Observability / Logging
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"console"`
	LogFile       string `env:"LOG_FILE"`
	EnableTracing bool   `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load parses environment variables into Config.
//
// Configuration Loading Order (highest to lowest priority):
// 1. Environment variables
// 2. .env file (if present, loaded by the binary before Load)
// 3. Default values from struct tags
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("METRICS_PORT out of range: %d", c.MetricsPort)
	}
	if c.MetricsPort != 0 && c.MetricsPort == c.HTTPPort {
		return fmt.Errorf("METRICS_PORT must differ from HTTP_PORT")
	}
	if !strings.HasPrefix(c.MistralBaseURL, "http://") && !strings.HasPrefix(c.MistralBaseURL, "https://") {
		return fmt.Errorf("MISTRAL_BASE_URL must be an http(s) URL")
	}
	if c.RelayStreamTimeout < 0 || c.UpstreamTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// MetricsAddr returns the metrics listen address, empty when disabled.
func (c *Config) MetricsAddr() string {
	if c.MetricsPort == 0 {
		return ""
	}
	return fmt.Sprintf(":%d", c.MetricsPort)
}
