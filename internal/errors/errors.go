// Package errors provides centralized error handling for flakeradar.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the ingestion pipeline. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrValidationFailed indicates that the ingestion configuration is
	// malformed. Validation failures are fatal and abort before any I/O.
	ErrValidationFailed = errors.New("validation failed")

	// ErrDownloadFailed indicates that an artifact could not be downloaded
	// after exhausting all retry attempts.
	ErrDownloadFailed = errors.New("download failed")

	// ErrExtractionFailed indicates that a downloaded archive could not be
	// opened or one of its entries could not be extracted.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrParsingFailed indicates structurally broken XML: unterminated tags,
	// a truncated stream, invalid control characters, or an empty document.
	ErrParsingFailed = errors.New("parsing failed")

	// ErrTimeout indicates that a download stalled past the configured
	// timeout without receiving data.
	ErrTimeout = errors.New("operation timed out")

	// ErrNetwork indicates a transport-level network failure (connection
	// refused, DNS, reset) during download.
	ErrNetwork = errors.New("network error")

	// ErrFileTooLarge indicates that a transfer exceeded the configured
	// maximum file size and was aborted mid-stream.
	ErrFileTooLarge = errors.New("file too large")

	// ErrArtifactExpired indicates that an artifact's download URL expired
	// before a download attempt could be made.
	ErrArtifactExpired = errors.New("artifact url expired")

	// ErrArtifactRejected indicates that an artifact descriptor failed
	// validation or filtering and was skipped before download.
	ErrArtifactRejected = errors.New("artifact rejected")

	// ErrUnsupportedExtension indicates a downloaded file whose extension is
	// neither a report document nor a supported archive format.
	ErrUnsupportedExtension = errors.New("unsupported file extension")

	// ErrEmptyDocument indicates that a report document contained no XML
	// content at all.
	ErrEmptyDocument = errors.New("empty document")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigNotFound indicates that the configuration file was not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidFormat indicates an unrecognized report format name.
	ErrInvalidFormat = errors.New("invalid report format")

	// ErrNegativeCount indicates a declared suite counter that parsed to a
	// negative value while strict validation was requested.
	ErrNegativeCount = errors.New("negative count attribute")

	// ErrManifestInvalid indicates that an artifact manifest file could not
	// be decoded.
	ErrManifestInvalid = errors.New("invalid artifact manifest")
)
