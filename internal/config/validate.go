package config

import (
	stderrors "errors"
	"fmt"

	"github.com/flakeradar/flakeradar/internal/constants"
	"github.com/flakeradar/flakeradar/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// Unlike per-field fail-fast validation, every violation is collected so the
// caller sees the complete list in one aggregated error. A non-nil return
// wraps errors.ErrValidationFailed and must abort the run before any I/O.
//
// Validation rules:
//   - repository owner and repo must be present
//   - at least one artifact must be listed
//   - max_file_size_bytes and timeout must be positive
//   - concurrency must lie in [1,10]
//   - expected_format, when set, must name a recognized dialect
//   - retry attempts, delays and multiplier must be sane
func Validate(cfg *IngestionConfig) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	var violations []error

	if cfg.Repository.Owner == "" || cfg.Repository.Repo == "" {
		violations = append(violations,
			fmt.Errorf("repository owner and repo are required, got %q/%q",
				cfg.Repository.Owner, cfg.Repository.Repo))
	}

	if len(cfg.Artifacts) == 0 {
		violations = append(violations,
			stderrors.New("at least one artifact is required"))
	}

	if cfg.MaxFileSizeBytes <= 0 {
		violations = append(violations,
			fmt.Errorf("max_file_size_bytes must be positive, got %d", cfg.MaxFileSizeBytes))
	}

	if cfg.Timeout <= 0 {
		violations = append(violations,
			fmt.Errorf("timeout must be positive, got %s", cfg.Timeout))
	}

	if cfg.Concurrency < constants.MinConcurrency || cfg.Concurrency > constants.MaxConcurrency {
		violations = append(violations,
			fmt.Errorf("concurrency must be between %d and %d, got %d",
				constants.MinConcurrency, constants.MaxConcurrency, cfg.Concurrency))
	}

	if cfg.ExpectedFormat != "" && !cfg.ExpectedFormat.IsValid() {
		violations = append(violations,
			fmt.Errorf("expected_format %q is not one of: %s",
				cfg.ExpectedFormat, knownFormatNames()))
	}

	violations = append(violations, validateRetryConfig(&cfg.Retry)...)

	if len(violations) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", errors.ErrValidationFailed, stderrors.Join(violations...))
}

// validateRetryConfig checks retry-specific configuration values.
func validateRetryConfig(cfg *RetryConfig) []error {
	var violations []error

	if cfg.MaxAttempts < 1 {
		violations = append(violations,
			fmt.Errorf("retry.max_attempts must be at least 1, got %d", cfg.MaxAttempts))
	}
	if cfg.BaseDelay < 0 {
		violations = append(violations,
			fmt.Errorf("retry.base_delay must not be negative, got %s", cfg.BaseDelay))
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		violations = append(violations,
			fmt.Errorf("retry.max_delay %s must not be below retry.base_delay %s",
				cfg.MaxDelay, cfg.BaseDelay))
	}
	if cfg.BackoffMultiplier < 1 {
		violations = append(violations,
			fmt.Errorf("retry.backoff_multiplier must be at least 1, got %g", cfg.BackoffMultiplier))
	}

	return violations
}
