// Package config loads runtime settings for the sales dashboard from the
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/goliatone/go-sales-dashboard/components/sales"
	"github.com/goliatone/go-sales-dashboard/pkg/salesapi"
)

// Config holds runtime configuration for the dashboard.
type Config struct {
	AppAddr     string `envconfig:"APP_ADDR" default:":8090"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
	Transport   string `envconfig:"APP_TRANSPORT" default:"fiber"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"pretty"`

	SalesAPIURL     string        `envconfig:"SALES_API_URL" default:"http://localhost:8080"`
	SalesAPIKey     string        `envconfig:"SALES_API_KEY"`
	SalesAPITimeout time.Duration `envconfig:"SALES_API_TIMEOUT" default:"10s"`
	SalesMock       bool          `envconfig:"SALES_MOCK" default:"false"`

	CutoverDate    string `envconfig:"SALES_CUTOVER_DATE" default:"2025-05-24"`
	FailurePolicy  string `envconfig:"SALES_FAILURE_POLICY" default:"fail_fast"`
	MaxConcurrency int    `envconfig:"SALES_MAX_CONCURRENCY" default:"8"`
	RetryAttempts  uint64 `envconfig:"SALES_RETRY_ATTEMPTS" default:"0"`

	CatalogPath   string        `envconfig:"CATALOG_PATH"`
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	ChartCacheTTL time.Duration `envconfig:"CHART_CACHE_TTL" default:"5m"`
	RateLimit     int           `envconfig:"API_RATE_LIMIT" default:"120"`

	SessionTTL  time.Duration `envconfig:"SALES_SESSION_TTL" default:"30m"`
	MaxSessions int           `envconfig:"SALES_MAX_SESSIONS" default:"10000"`
}

// Load reads the given .env files (missing files are skipped) and then the
// process environment. Variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SalesAPIURL == "" && !c.SalesMock {
		return errors.New("config: SALES_API_URL must be provided")
	}
	switch c.Transport {
	case "fiber", "http":
	default:
		return fmt.Errorf("config: unknown transport %q", c.Transport)
	}
	if _, err := sales.ParseFailurePolicy(c.FailurePolicy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := sales.ParseCutover(c.CutoverDate, nil); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// AggregatorOptions builds the aggregator options for the configured cutover
// and failure policy.
func (c *Config) AggregatorOptions(analytics sales.AnalyticsSource, predictions sales.PredictionSource, telemetry sales.Telemetry) (sales.Options, error) {
	cutover, err := sales.ParseCutover(c.CutoverDate, time.Now)
	if err != nil {
		return sales.Options{}, fmt.Errorf("config: %w", err)
	}
	policy, err := sales.ParseFailurePolicy(c.FailurePolicy)
	if err != nil {
		return sales.Options{}, fmt.Errorf("config: %w", err)
	}
	return sales.Options{
		Analytics:      analytics,
		Predictions:    predictions,
		Cutover:        cutover,
		FailurePolicy:  policy,
		MaxConcurrency: c.MaxConcurrency,
		Telemetry:      telemetry,
	}, nil
}

// HTTPConfig returns the sales backend client settings.
func (c *Config) HTTPConfig() salesapi.HTTPConfig {
	return salesapi.HTTPConfig{
		BaseURL: c.SalesAPIURL,
		APIKey:  c.SalesAPIKey,
		Timeout: c.SalesAPITimeout,
	}
}

// RetryPolicy returns the retry policy for backend calls. Retries are off
// unless SALES_RETRY_ATTEMPTS is set.
func (c *Config) RetryPolicy() salesapi.RetryPolicy {
	policy := salesapi.DefaultRetryPolicy
	policy.Retries = c.RetryAttempts
	return policy
}

// NewLogger returns a configured slog.Logger based on configuration.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
}
