// Package domain provides shared data types for the flakeradar ingestion core.
//
// This file defines the normalized test-report model that every dialect
// parses into. The shapes are persisted as JSON by downstream collaborators,
// so all fields carry json tags.
package domain

import "time"

// TestStatus is the outcome of a single test case.
type TestStatus string

// Test case outcomes. Status is derived structurally from child elements,
// never from a declared attribute: failure beats error beats skipped.
const (
	TestStatusPassed  TestStatus = "passed"
	TestStatusFailed  TestStatus = "failed"
	TestStatusError   TestStatus = "error"
	TestStatusSkipped TestStatus = "skipped"
)

// ReportFormat identifies one of the recognized XML test-report dialects.
type ReportFormat string

// Recognized report dialects. FormatGeneric is the dialect-agnostic
// fallback grammar used when detection finds no stronger signal.
const (
	FormatSurefire ReportFormat = "surefire"
	FormatGradle   ReportFormat = "gradle"
	FormatJest     ReportFormat = "jest"
	FormatPytest   ReportFormat = "pytest"
	FormatPHPUnit  ReportFormat = "phpunit"
	FormatGeneric  ReportFormat = "generic"
)

// KnownFormats lists every recognized dialect, generic last.
func KnownFormats() []ReportFormat {
	return []ReportFormat{
		FormatSurefire,
		FormatGradle,
		FormatJest,
		FormatPytest,
		FormatPHPUnit,
		FormatGeneric,
	}
}

// IsValid reports whether f names a recognized dialect.
func (f ReportFormat) IsValid() bool {
	switch f {
	case FormatSurefire, FormatGradle, FormatJest, FormatPytest, FormatPHPUnit, FormatGeneric:
		return true
	default:
		return false
	}
}

// FailureDetail captures a <failure> or <error> child element of a test case:
// the declared type and message attributes plus all descendant text
// (CDATA unwrapped, entities decoded) as the stack trace.
type FailureDetail struct {
	Type       string `json:"type,omitempty"`
	Message    string `json:"message,omitempty"`
	StackTrace string `json:"stack_trace,omitempty"`
}

// SkipDetail captures a <skipped> child element of a test case.
type SkipDetail struct {
	Message string `json:"message,omitempty"`
}

// TestCase is one normalized test execution.
//
// Exactly one of Failure, Error, Skipped is non-nil, consistent with Status;
// all three nil implies TestStatusPassed.
type TestCase struct {
	// Name is the test method or spec name.
	Name string `json:"name"`
	// ClassName is the owning class, module, or file, when the dialect
	// provides one.
	ClassName string `json:"class_name,omitempty"`
	// Time is the execution duration in seconds, never negative.
	Time float64 `json:"time"`
	// Status is the derived outcome.
	Status TestStatus `json:"status"`

	Failure *FailureDetail `json:"failure,omitempty"`
	Error   *FailureDetail `json:"error,omitempty"`
	Skipped *SkipDetail    `json:"skipped,omitempty"`

	SystemOut string `json:"system_out,omitempty"`
	SystemErr string `json:"system_err,omitempty"`
}

// TestSuite is a named collection of test cases with aggregate counters.
//
// Declared counters (Tests, Failures, ...) are preserved exactly as parsed
// from attributes even when they diverge from the actual case list; callers
// that need ground truth should count TestCases.
type TestSuite struct {
	Name     string `json:"name"`
	Package  string `json:"package,omitempty"`
	Hostname string `json:"hostname,omitempty"`
	ID       string `json:"id,omitempty"`

	Tests    int     `json:"tests"`
	Failures int     `json:"failures"`
	Errors   int     `json:"errors"`
	Skipped  int     `json:"skipped"`
	Time     float64 `json:"time"`

	// Timestamp is the suite's declared start time, when present.
	Timestamp string `json:"timestamp,omitempty"`

	// Properties holds <property name value> pairs declared on the suite.
	Properties map[string]string `json:"properties,omitempty"`

	SystemOut string `json:"system_out,omitempty"`
	SystemErr string `json:"system_err,omitempty"`

	TestCases []TestCase `json:"test_cases"`
}

// TestSuites is the root aggregate of a parsed report document.
//
// Counters come from the <testsuites> element's attributes when the document
// has one, or are summed across child suites when the root is a bare
// <testsuite>.
type TestSuites struct {
	Name     string  `json:"name,omitempty"`
	Tests    int     `json:"tests"`
	Failures int     `json:"failures"`
	Errors   int     `json:"errors"`
	Skipped  int     `json:"skipped"`
	Time     float64 `json:"time"`

	Timestamp string `json:"timestamp,omitempty"`

	Suites []TestSuite `json:"suites"`
}

// TotalCases counts the test cases actually present across all suites.
func (ts *TestSuites) TotalCases() int {
	total := 0
	for i := range ts.Suites {
		total += len(ts.Suites[i].TestCases)
	}
	return total
}

// FormatDetectionResult is the outcome of dialect detection on a document.
type FormatDetectionResult struct {
	// Format is the best-guess dialect; FormatGeneric when no signal
	// cleared the detection floor.
	Format ReportFormat `json:"format"`
	// Confidence is the normalized score in [0,1].
	Confidence float64 `json:"confidence"`
	// Indicators lists, verbatim, every matched signal that contributed to
	// the score. Required for explaining why a dialect was chosen.
	Indicators []string `json:"indicators"`
}

// RepositoryContext correlates an ingestion batch to its originating CI run.
// It is opaque to parsing and carried through for persistence.
type RepositoryContext struct {
	Owner string `json:"owner" yaml:"owner"`
	Repo  string `json:"repo" yaml:"repo"`
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	SHA   string `json:"sha,omitempty" yaml:"sha,omitempty"`
}

// ArtifactSource identifies one remote artifact to download.
type ArtifactSource struct {
	// URL is the artifact's canonical location.
	URL string `json:"url" yaml:"url"`
	// Name is the artifact's display name, used for temp-file naming and
	// error attribution.
	Name string `json:"name" yaml:"name"`
	// DownloadURL, when set, is preferred over URL for the actual transfer
	// (pre-signed URLs).
	DownloadURL string `json:"download_url,omitempty" yaml:"download_url,omitempty"`
	// SizeInBytes is the declared size, when the source reports one.
	SizeInBytes *int64 `json:"size_in_bytes,omitempty" yaml:"size_in_bytes,omitempty"`
	// ExpiresAt, when set, renders the source unusable past that instant.
	// Checked immediately before each download attempt.
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// ResolvedURL returns the URL to actually fetch: DownloadURL when present,
// otherwise URL.
func (a ArtifactSource) ResolvedURL() string {
	if a.DownloadURL != "" {
		return a.DownloadURL
	}
	return a.URL
}
