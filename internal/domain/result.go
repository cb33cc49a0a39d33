package domain

import "time"

// IngestionErrorType categorizes ingestion failures for programmatic handling.
type IngestionErrorType string

// Ingestion error taxonomy. ValidationFailed is the only fatal type: it
// aborts the call before any I/O. Every other type is captured at the
// narrowest scope (one artifact or one extracted file) and the pipeline
// continues past it.
const (
	ErrTypeValidationFailed IngestionErrorType = "VALIDATION_FAILED"
	ErrTypeDownloadFailed   IngestionErrorType = "DOWNLOAD_FAILED"
	ErrTypeExtractionFailed IngestionErrorType = "EXTRACTION_FAILED"
	ErrTypeParsingFailed    IngestionErrorType = "PARSING_FAILED"
	ErrTypeTimeout          IngestionErrorType = "TIMEOUT"
	ErrTypeNetworkError     IngestionErrorType = "NETWORK_ERROR"
	ErrTypeFileTooLarge     IngestionErrorType = "FILE_TOO_LARGE"
	ErrTypeUnknown          IngestionErrorType = "UNKNOWN"
)

// IngestionError is one typed failure captured during an ingestion run.
type IngestionError struct {
	Type      IngestionErrorType `json:"type"`
	Message   string             `json:"message"`
	FileName  string             `json:"file_name,omitempty"`
	Details   string             `json:"details,omitempty"`
	Cause     error              `json:"-"`
	Timestamp time.Time          `json:"timestamp"`
}

// Error implements the error interface.
func (e *IngestionError) Error() string {
	if e.FileName != "" {
		return string(e.Type) + " [" + e.FileName + "]: " + e.Message
	}
	return string(e.Type) + ": " + e.Message
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *IngestionError) Unwrap() error {
	return e.Cause
}

// FileProcessingResult is the normalized outcome of parsing one report file.
type FileProcessingResult struct {
	FileName       string        `json:"file_name"`
	Format         ReportFormat  `json:"format"`
	TestSuites     *TestSuites   `json:"test_suites"`
	ProcessingTime time.Duration `json:"processing_time_ms"`
	FileSizeBytes  int64         `json:"file_size_bytes"`
	Warnings       []string      `json:"warnings,omitempty"`
}

// IngestionStats aggregates counters across an entire ingestion run.
type IngestionStats struct {
	TotalFiles     int           `json:"total_files"`
	ProcessedFiles int           `json:"processed_files"`
	FailedFiles    int           `json:"failed_files"`
	TotalTests     int           `json:"total_tests"`
	TotalFailures  int           `json:"total_failures"`
	TotalErrors    int           `json:"total_errors"`
	TotalSkipped   int           `json:"total_skipped"`
	ProcessingTime time.Duration `json:"processing_time_ms"`
	DownloadTime   time.Duration `json:"download_time_ms"`
}

// IngestionResult is the complete outcome of one Ingest call. It is
// constructed once per invocation and immutable once returned.
//
// Success is strictly "zero errors occurred and at least one file parsed":
// a batch with any artifact-level error reports Success == false even when
// other artifacts fully succeeded. Results is authoritative for what
// succeeded; callers that only check Success will silently discard partial
// output.
type IngestionResult struct {
	Success       bool                   `json:"success"`
	Results       []FileProcessingResult `json:"results"`
	Stats         IngestionStats         `json:"stats"`
	Errors        []IngestionError       `json:"errors,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
}
