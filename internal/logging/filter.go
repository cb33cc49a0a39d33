// Package logging provides zerolog setup and sensitive-data filtering for
// flakeradar. Artifact downloads use pre-signed URLs whose query strings
// embed short-lived credentials; this package makes sure those never reach
// the console or the log file.
package logging

import (
	"io"
	"net/url"
	"regexp"
	"strings"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// sensitivePatterns matches credential material that can appear in log
// output: pre-signed URL query parameters, repository tokens, and generic
// secret assignments.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // package-level patterns for reuse
	// Pre-signed URL query parameters (S3, generic).
	regexp.MustCompile(`(?i)(X-Amz-Signature|X-Amz-Credential|X-Amz-Security-Token|access_token|signature|token)=[^&\s"']+`),

	// Azure SAS short parameter names, which need a query delimiter to
	// avoid matching ordinary words.
	regexp.MustCompile(`(?i)[?&](sig|se|sv|st|sp|sr|spr)=[^&\s"']+`),

	// GitHub tokens (ghp_, gho_, ghu_, ghs_, ghr_).
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),

	// Bearer tokens in headers echoed into messages.
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_.-]{20,}`),

	// Generic secret assignments.
	regexp.MustCompile(`(?i)(secret|password|credential|passwd|api[_-]?key)\s*[:=]\s*["']?[^\s"']{8,}["']?`),
}

// sensitiveFieldNames lists field names whose values are always redacted,
// matched case-insensitively.
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // package-level patterns for reuse
	"token",
	"api_key",
	"apikey",
	"password",
	"secret",
	"credential",
	"credentials",
	"authorization",
	"github_token",
	"access_token",
	"signature",
}

// FilterSensitiveValue replaces every sensitive pattern match in value with
// a redaction marker preserving the parameter name where one exists.
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllStringFunc(result, func(m string) string {
			if i := strings.IndexAny(m, "=:"); i >= 0 {
				return m[:i+1] + RedactedValue
			}
			return RedactedValue
		})
	}
	return result
}

// ContainsSensitiveData reports whether s matches any sensitive pattern.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// IsSensitiveFieldName reports whether a log field name indicates sensitive
// data.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if lowerName == sensitive || strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// RedactIfSensitive returns the redaction marker when the field name is
// sensitive, otherwise the pattern-filtered value.
func RedactIfSensitive(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// RedactURL strips the entire query string from a URL, which is where
// pre-signed credentials live. Unparseable input falls back to pattern
// filtering so something sensible is still logged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return FilterSensitiveValue(raw)
	}
	if u.RawQuery != "" {
		u.RawQuery = RedactedValue
	}
	u.User = nil
	return u.String()
}

// FilteringWriter wraps an io.Writer and redacts sensitive data from every
// write. It is used around the log file so credentials never reach disk
// even when a message interpolates a raw URL.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a FilteringWriter over w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer, filtering before writing. The original length
// is returned so callers do not observe a short write after redaction.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err = fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}
