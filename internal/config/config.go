package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Translation strategy names accepted by TRANSLATION_MODE.
const (
	ModeBatch = "batch"
	ModeLines = "lines"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Provider   string `envconfig:"TRANSLATION_PROVIDER" default:"baidu"`
	SourceLang string `envconfig:"SOURCE_LANG" default:"auto"`
	TargetLang string `envconfig:"TARGET_LANG" default:"zh"`

	BilingualMode   bool   `envconfig:"BILINGUAL_MODE" default:"true"`
	TranslationMode string `envconfig:"TRANSLATION_MODE" default:"batch"`
	OutputSuffix    string `envconfig:"OUTPUT_SUFFIX" default:""`

	BatchLimitBytes         int `envconfig:"BATCH_LIMIT_BYTES" default:"6000"`
	FallbackBatchLimitBytes int `envconfig:"FALLBACK_BATCH_LIMIT_BYTES" default:"1000"`

	MaxWorkers int `envconfig:"MAX_WORKERS" default:"10"`
	MaxRetries int `envconfig:"MAX_RETRIES" default:"5"`

	RequestDelaySeconds  float64 `envconfig:"REQUEST_DELAY_SECONDS" default:"0.1"`
	RetryMaxDelaySeconds float64 `envconfig:"RETRY_MAX_DELAY_SECONDS" default:"1.0"`

	RateLimitCapacity        int     `envconfig:"RATE_LIMIT_CAPACITY" default:"10"`
	RateLimitIntervalSeconds float64 `envconfig:"RATE_LIMIT_INTERVAL_SECONDS" default:"1.0"`

	RequestTimeoutSeconds float64 `envconfig:"REQUEST_TIMEOUT_SECONDS" default:"10"`

	CredentialsFile string `envconfig:"CREDENTIALS_FILE" default:"srt-transfer-credentials.json"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.TranslationMode)) {
	case ModeBatch, ModeLines:
	default:
		return fmt.Errorf("TRANSLATION_MODE must be %q or %q", ModeBatch, ModeLines)
	}
	if strings.TrimSpace(c.TargetLang) == "" {
		return fmt.Errorf("TARGET_LANG is required")
	}
	if c.BatchLimitBytes < 1 {
		return fmt.Errorf("BATCH_LIMIT_BYTES must be >= 1")
	}
	if c.FallbackBatchLimitBytes < 1 {
		return fmt.Errorf("FALLBACK_BATCH_LIMIT_BYTES must be >= 1")
	}
	if c.FallbackBatchLimitBytes > c.BatchLimitBytes {
		return fmt.Errorf("FALLBACK_BATCH_LIMIT_BYTES (%d) cannot exceed BATCH_LIMIT_BYTES (%d)", c.FallbackBatchLimitBytes, c.BatchLimitBytes)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("MAX_WORKERS must be >= 1")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be >= 1")
	}
	if c.RequestDelaySeconds <= 0 {
		return fmt.Errorf("REQUEST_DELAY_SECONDS must be > 0")
	}
	if c.RetryMaxDelaySeconds < c.RequestDelaySeconds {
		return fmt.Errorf("RETRY_MAX_DELAY_SECONDS must be >= REQUEST_DELAY_SECONDS")
	}
	if c.RateLimitCapacity < 1 {
		return fmt.Errorf("RATE_LIMIT_CAPACITY must be >= 1")
	}
	if c.RateLimitIntervalSeconds <= 0 {
		return fmt.Errorf("RATE_LIMIT_INTERVAL_SECONDS must be > 0")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be > 0")
	}
	return nil
}

// NormalizedMode returns the translation mode in canonical form.
func (c *Config) NormalizedMode() string {
	return strings.ToLower(strings.TrimSpace(c.TranslationMode))
}

func (c *Config) RequestDelay() time.Duration {
	return secondsToDuration(c.RequestDelaySeconds)
}

func (c *Config) RetryMaxDelay() time.Duration {
	return secondsToDuration(c.RetryMaxDelaySeconds)
}

func (c *Config) RateLimitInterval() time.Duration {
	return secondsToDuration(c.RateLimitIntervalSeconds)
}

func (c *Config) RequestTimeout() time.Duration {
	return secondsToDuration(c.RequestTimeoutSeconds)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
