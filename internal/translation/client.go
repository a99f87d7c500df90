package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sayaxia/srt-transfer/internal/ratelimit"
)

// ErrAttemptsExhausted marks a request that failed every allowed attempt.
// Callers treat it as a terminal per-batch failure.
var ErrAttemptsExhausted = errors.New("translation attempts exhausted")

// ClientOptions tunes throttling and retry for a Client.
type ClientOptions struct {
	// MaxAttempts bounds network attempts per logical request.
	MaxAttempts int
	// DelayStep is the initial retry delay; each failed attempt adds one
	// more step until MaxDelay.
	DelayStep time.Duration
	// MaxDelay caps the retry delay.
	MaxDelay time.Duration
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 5
	}
	if o.DelayStep <= 0 {
		o.DelayStep = 100 * time.Millisecond
	}
	if o.MaxDelay < o.DelayStep {
		o.MaxDelay = time.Second
	}
	return o
}

// Client wraps a Provider with the shared rate bucket, bounded additive
// backoff and the per-run cache. Every network attempt, including retries,
// consumes exactly one rate token.
type Client struct {
	provider Provider
	bucket   *ratelimit.Bucket
	cache    *Cache
	logger   zerolog.Logger
	opts     ClientOptions
}

func NewClient(provider Provider, bucket *ratelimit.Bucket, cache *Cache, logger zerolog.Logger, opts ClientOptions) *Client {
	return &Client{
		provider: provider,
		bucket:   bucket,
		cache:    cache,
		logger:   logger,
		opts:     opts.withDefaults(),
	}
}

func (c *Client) ProviderName() string {
	if c == nil || c.provider == nil {
		return ""
	}
	return c.provider.Name()
}

// Translate issues one logical translation request. On transport failures,
// bad statuses and provider-reported error codes it waits and retries with
// an additively growing delay; after MaxAttempts it surfaces
// ErrAttemptsExhausted wrapping the last cause.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if c == nil || c.provider == nil {
		return "", fmt.Errorf("translation client is not initialized")
	}
	if text == "" {
		return "", fmt.Errorf("text is required")
	}

	if cached, ok := c.cache.Get(sourceLang, targetLang, text); ok {
		return cached, nil
	}

	delay := c.opts.DelayStep
	var lastErr error

	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		if err := c.bucket.Acquire(ctx); err != nil {
			return "", fmt.Errorf("acquire rate token: %w", err)
		}
		if err := ctx.Err(); err != nil {
			c.bucket.Release()
			return "", err
		}

		resp, err := c.provider.Translate(ctx, TranslateRequest{
			Text:       text,
			SourceLang: sourceLang,
			TargetLang: targetLang,
		})
		if err == nil {
			c.cache.Put(sourceLang, targetLang, text, resp.Text)
			return resp.Text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		var providerErr *ProviderError
		event := c.logger.Warn().
			Str("provider", c.provider.Name()).
			Int("attempt", attempt).
			Int("max_attempts", c.opts.MaxAttempts).
			Dur("retry_delay", delay)
		if errors.As(err, &providerErr) {
			event.Str("error_code", providerErr.Code).Msg("provider reported translation error")
		} else {
			event.Err(err).Msg("translation request failed")
		}

		if attempt == c.opts.MaxAttempts {
			break
		}
		if err := sleepContext(ctx, delay); err != nil {
			return "", err
		}
		delay += c.opts.DelayStep
		if delay > c.opts.MaxDelay {
			delay = c.opts.MaxDelay
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrAttemptsExhausted, c.opts.MaxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
