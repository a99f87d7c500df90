package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/sayaxia/srt-transfer/internal/cli"
	"github.com/sayaxia/srt-transfer/internal/config"
	"github.com/sayaxia/srt-transfer/internal/engine"
	"github.com/sayaxia/srt-transfer/internal/logging"
	"github.com/sayaxia/srt-transfer/internal/ratelimit"
	"github.com/sayaxia/srt-transfer/internal/translation"
)

// runtime holds everything one command run needs. Close releases the shared
// rate bucket.
type runtime struct {
	cfg          *config.Config
	logger       zerolog.Logger
	bucket       *ratelimit.Bucket
	orchestrator *engine.Orchestrator
	providerName string
}

func (r *runtime) Close() {
	if r != nil && r.bucket != nil {
		r.bucket.Shutdown()
	}
}

// buildRuntime loads configuration and wires the provider, rate bucket,
// client and orchestrator for one run. mutate, when non-nil, applies flag
// overrides to the loaded config before validation of the wiring.
func buildRuntime(envLoader *cli.EnvLoader, mutate func(*config.Config)) (*runtime, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if mutate != nil {
		mutate(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	creds, credsErr := config.LoadCredentials(cfg.CredentialsFile)
	if credsErr != nil {
		logger.Debug().Err(credsErr).Msg("provider credentials not loaded")
		creds = nil
	}

	registry := translation.NewRegistryFromConfig(cfg, creds)
	provider, err := registry.Provider(cfg.Provider)
	if err != nil {
		if credsErr != nil {
			return nil, fmt.Errorf("%w (run \"srt-transfer setup\" to write %s)", err, cfg.CredentialsFile)
		}
		return nil, err
	}

	bucket := ratelimit.NewBucket(cfg.RateLimitCapacity, cfg.RateLimitInterval())
	client := translation.NewClient(provider, bucket, translation.NewCache(), logger, translation.ClientOptions{
		MaxAttempts: cfg.MaxRetries,
		DelayStep:   cfg.RequestDelay(),
		MaxDelay:    cfg.RetryMaxDelay(),
	})

	orchestrator := engine.NewOrchestrator(client, logger, engine.Options{
		Strategy:           cfg.NormalizedMode(),
		BatchLimitBytes:    cfg.BatchLimitBytes,
		FallbackLimitBytes: cfg.FallbackBatchLimitBytes,
		MaxWorkers:         cfg.MaxWorkers,
		BilingualMode:      cfg.BilingualMode,
		SourceLang:         cfg.SourceLang,
		TargetLang:         cfg.TargetLang,
		OutputSuffix:       cfg.OutputSuffix,
	})

	return &runtime{
		cfg:          cfg,
		logger:       logger,
		bucket:       bucket,
		orchestrator: orchestrator,
		providerName: provider.Name(),
	}, nil
}
