// Package artifact validates and filters artifact descriptors before any
// network call is made. Rejections are per-artifact warnings, never batch
// failures: filtering must not abort the batch.
package artifact

import (
	"fmt"

	"github.com/flakeradar/flakeradar/internal/config"
	"github.com/flakeradar/flakeradar/internal/domain"
)

// Validate checks one artifact descriptor for structural problems and
// returns every violation found. An empty slice means the artifact is
// well-formed.
//
// Rules: the name must be non-empty, the URL must be non-empty, and a
// declared size, when provided, must be positive.
func Validate(a domain.ArtifactSource) []error {
	var violations []error

	if a.Name == "" {
		violations = append(violations, fmt.Errorf("artifact name is empty"))
	}
	if a.URL == "" && a.DownloadURL == "" {
		violations = append(violations, fmt.Errorf("artifact %q has no url", a.Name))
	}
	if a.SizeInBytes != nil && *a.SizeInBytes <= 0 {
		violations = append(violations,
			fmt.Errorf("artifact %q declares non-positive size %d", a.Name, *a.SizeInBytes))
	}

	return violations
}

// Filter returns a predicate that decides whether an artifact should be
// downloaded under the given config. The second return value is a
// human-readable rejection reason for the warning event, empty when the
// artifact is accepted.
//
// Filtering applies Validate plus the configured size bound. Declared sizes
// above MaxFileSizeBytes are rejected up front so no bytes are transferred
// for a file the size limiter would abort anyway.
func Filter(cfg *config.IngestionConfig) func(a domain.ArtifactSource) (bool, string) {
	return func(a domain.ArtifactSource) (bool, string) {
		if violations := Validate(a); len(violations) > 0 {
			return false, violations[0].Error()
		}
		if a.SizeInBytes != nil && *a.SizeInBytes > cfg.MaxFileSizeBytes {
			return false, fmt.Sprintf("artifact %q declared size %d exceeds limit %d",
				a.Name, *a.SizeInBytes, cfg.MaxFileSizeBytes)
		}
		return true, ""
	}
}
