package config

import (
	"github.com/spf13/viper"

	"github.com/flakeradar/flakeradar/internal/constants"
)

// DefaultConfig returns a new IngestionConfig with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
//
// Repository and Artifacts have no defaults: they are the caller's required
// inputs.
func DefaultConfig() *IngestionConfig {
	return &IngestionConfig{
		// MaxFileSizeBytes: 100 MB accommodates large monorepo test runs
		// while still bounding a runaway transfer.
		MaxFileSizeBytes: constants.DefaultMaxFileSizeBytes,

		// Timeout: 5 minutes of silence on a download is a dead transfer.
		Timeout: constants.DefaultTimeout,

		// Concurrency: 3 keeps memory bounded without serializing the batch.
		Concurrency: constants.DefaultConcurrency,

		Retry: DefaultRetryConfig(),

		// StreamingEnabled: on by default; artifacts can contain tens of
		// thousands of test cases and must not be buffered whole.
		StreamingEnabled: true,
	}
}

// DefaultRetryConfig returns the default download retry policy:
// 3 attempts, 1s base delay, 30s cap, x2 backoff, jitter on.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       constants.DefaultRetryMaxAttempts,
		BaseDelay:         constants.DefaultRetryBaseDelay,
		MaxDelay:          constants.DefaultRetryMaxDelay,
		BackoffMultiplier: constants.DefaultRetryBackoffMultiplier,
		Jitter:            true,
	}
}

// setDefaults registers all default values on a viper instance so that
// partial config files and env vars merge over a complete base layer.
func setDefaults(v *viper.Viper) {
	v.SetDefault("max_file_size_bytes", constants.DefaultMaxFileSizeBytes)
	v.SetDefault("timeout", constants.DefaultTimeout)
	v.SetDefault("concurrency", constants.DefaultConcurrency)
	v.SetDefault("streaming_enabled", true)
	v.SetDefault("retry.max_attempts", constants.DefaultRetryMaxAttempts)
	v.SetDefault("retry.base_delay", constants.DefaultRetryBaseDelay)
	v.SetDefault("retry.max_delay", constants.DefaultRetryMaxDelay)
	v.SetDefault("retry.backoff_multiplier", constants.DefaultRetryBackoffMultiplier)
	v.SetDefault("retry.jitter", true)
}
