package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Fetcher FetcherConfig `yaml:"fetcher"`
	Markets MarketsConfig `yaml:"markets"`
	History HistoryConfig `yaml:"history"`

	// Optional CoinGecko demo API key, sent as x_cg_demo_api_key
	APIKey string `yaml:"api_key"`

	OverrideCoingeckoPublicURL string `yaml:"override_coingecko_public_url"`
}

// FetcherConfig defines HTTP client behavior for upstream requests
type FetcherConfig struct {
	// RequestTimeout is the total per-request timeout including reading the body
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// RetryBackoff is the fixed wait before the single retry after a 429
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// RateLimitPerMinute throttles outgoing requests; 0 disables the limiter
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

// MarketsConfig defines the market listing request and its cache policy
type MarketsConfig struct {
	// TTL for the cached market snapshot
	TTL time.Duration `yaml:"ttl"`

	// PerPage is the number of coins requested (CoinGecko per_page)
	PerPage int `yaml:"per_page"`

	// Currency is the vs_currency parameter
	Currency string `yaml:"currency"`
}

// HistoryConfig defines which historical windows are assembled
type HistoryConfig struct {
	// Windows to assemble, subset of: 1h, 24h, 7d, 30d, 180d, 365d
	Windows []string `yaml:"windows"`
}

func (c *FetcherConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeout > 0 {
		return c.RequestTimeout
	}
	return 10 * time.Second
}

func (c *FetcherConfig) GetRetryBackoff() time.Duration {
	if c.RetryBackoff > 0 {
		return c.RetryBackoff
	}
	return 10 * time.Second
}

func (c *MarketsConfig) GetTTL() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return 5 * time.Minute
}

func (c *MarketsConfig) GetPerPage() int {
	if c.PerPage > 0 {
		return c.PerPage
	}
	return 50
}

func (c *MarketsConfig) GetCurrency() string {
	if c.Currency != "" {
		return c.Currency
	}
	return "usd"
}

// GetWindows returns configured window names, defaulting to all known windows
func (c *HistoryConfig) GetWindows() []string {
	if len(c.Windows) > 0 {
		return c.Windows
	}
	return []string{"1h", "24h", "7d", "30d", "180d", "365d"}
}

// Validate checks bounds that would otherwise fail at request time
func (c *Config) Validate() error {
	if c.Markets.PerPage < 0 || c.Markets.PerPage > 250 {
		return fmt.Errorf("markets.per_page must be in range 0..250, got %d", c.Markets.PerPage)
	}
	if c.Fetcher.RateLimitPerMinute < 0 {
		return fmt.Errorf("fetcher.rate_limit_per_minute cannot be negative, got %d", c.Fetcher.RateLimitPerMinute)
	}
	return nil
}

// LoadConfig reads and validates a YAML config file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
