// Package config provides configuration management for flakeradar with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (FLAKERADAR_* prefix)
//  3. Config file (flakeradar.yaml)
//  4. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants, internal/domain and
// internal/errors, but MUST NOT import other internal packages.
package config

import (
	"time"

	"github.com/flakeradar/flakeradar/internal/domain"
)

// IngestionConfig is the root configuration for one ingestion run.
type IngestionConfig struct {
	// Repository correlates the batch to its originating CI run.
	Repository domain.RepositoryContext `yaml:"repository" mapstructure:"repository"`

	// Artifacts is the batch of remote artifacts to ingest.
	Artifacts []domain.ArtifactSource `yaml:"artifacts" mapstructure:"artifacts"`

	// ExpectedFormat, when set, skips format auto-detection and forces one
	// of the six dialects for every file in the batch.
	ExpectedFormat domain.ReportFormat `yaml:"expected_format,omitempty" mapstructure:"expected_format"`

	// FormatConfig carries dialect-specific parser knobs (attribute
	// aliases), keyed by option name. Opaque to the orchestrator.
	FormatConfig map[string]string `yaml:"format_config,omitempty" mapstructure:"format_config"`

	// MaxFileSizeBytes bounds each artifact download. Transfers exceeding
	// it abort mid-stream. Default: 100 MB.
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes" mapstructure:"max_file_size_bytes"`

	// Timeout bounds each artifact download: a transfer receiving no data
	// for this long is aborted. Default: 5 minutes.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Concurrency is the number of artifacts processed in flight at once.
	// Valid range 1..10. Default: 3.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`

	// Retry configures download retry behavior.
	Retry RetryConfig `yaml:"retry" mapstructure:"retry"`

	// StreamingEnabled selects the streaming parser path. When false the
	// pipeline buffers each report fully before parsing; both paths
	// produce identical results, only the memory profile differs.
	StreamingEnabled bool `yaml:"streaming_enabled" mapstructure:"streaming_enabled"`
}

// RetryConfig controls download retry and backoff behavior.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration `yaml:"base_delay" mapstructure:"base_delay"`

	// MaxDelay caps the computed backoff delay.
	MaxDelay time.Duration `yaml:"max_delay" mapstructure:"max_delay"`

	// BackoffMultiplier is applied to the delay after each attempt.
	BackoffMultiplier float64 `yaml:"backoff_multiplier" mapstructure:"backoff_multiplier"`

	// Jitter enables uniform random jitter on top of the computed delay.
	Jitter bool `yaml:"jitter" mapstructure:"jitter"`
}
