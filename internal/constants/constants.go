// Package constants provides centralized constant values used throughout flakeradar.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Application metadata.
const (
	// AppName is the canonical binary and log-source name.
	AppName = "flakeradar"

	// EnvPrefix is the environment variable prefix for configuration
	// (e.g. FLAKERADAR_INGEST_CONCURRENCY).
	EnvPrefix = "FLAKERADAR"
)

// Download and processing limits.
const (
	// DefaultMaxFileSizeBytes is the default maximum size of a single
	// artifact download (100 MB). Transfers exceeding it are aborted
	// mid-stream rather than buffered.
	DefaultMaxFileSizeBytes = int64(100 * 1024 * 1024)

	// DefaultTimeout is the default per-artifact download timeout. A
	// transfer that receives no data for this long is aborted.
	DefaultTimeout = 5 * time.Minute

	// DefaultConcurrency is the default number of artifacts processed in
	// flight at once.
	DefaultConcurrency = 3

	// MinConcurrency and MaxConcurrency bound the configurable concurrency.
	MinConcurrency = 1
	MaxConcurrency = 10
)

// Retry configuration defaults for artifact downloads.
const (
	// DefaultRetryMaxAttempts is the default number of download attempts
	// before giving up on an artifact.
	DefaultRetryMaxAttempts = 3

	// DefaultRetryBaseDelay is the initial delay before the first retry.
	DefaultRetryBaseDelay = 1 * time.Second

	// DefaultRetryMaxDelay caps the exponential backoff delay.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultRetryBackoffMultiplier is the exponential backoff multiplier.
	DefaultRetryBackoffMultiplier = 2.0
)

// Format detection tuning.
const (
	// DetectionPrefixBytes is the maximum number of leading content bytes
	// inspected when scoring report dialects.
	DetectionPrefixBytes = 8 * 1024

	// DetectionFloor is the minimum normalized score a dialect must reach
	// to beat the generic fallback.
	DetectionFloor = 0.2
)

// Temporary file management.
const (
	// TempFilePrefix prefixes every temporary file created by the
	// downloader and extractor, so stray files are attributable.
	TempFilePrefix = "flakeradar-"
)

// Log file rotation settings.
const (
	// FlakeradarHome is the default home directory name under $HOME.
	FlakeradarHome = ".flakeradar"

	// LogsDir is the log directory name under the flakeradar home.
	LogsDir = "logs"

	// LogFileName is the rotating CLI log file name.
	LogFileName = "flakeradar.log"

	// LogMaxSizeMB is the maximum size of the log file before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to retain.
	LogMaxBackups = 5

	// LogMaxAgeDays is the maximum age of rotated log files.
	LogMaxAgeDays = 30
)
