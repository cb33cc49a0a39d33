package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flakeradar/flakeradar/internal/config"
	"github.com/flakeradar/flakeradar/internal/domain"
)

func int64Ptr(v int64) *int64 { return &v }

// TestValidate_WellFormedArtifact tests the happy path
func TestValidate_WellFormedArtifact(t *testing.T) {
	t.Parallel()

	a := domain.ArtifactSource{
		Name:        "junit-results",
		URL:         "https://ci.example.com/artifacts/1",
		SizeInBytes: int64Ptr(1024),
	}

	assert.Empty(t, Validate(a))
}

// TestValidate_Violations tests each rejection rule
func TestValidate_Violations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		artifact domain.ArtifactSource
		want     int
	}{
		{
			name:     "empty name",
			artifact: domain.ArtifactSource{URL: "https://x"},
			want:     1,
		},
		{
			name:     "empty url",
			artifact: domain.ArtifactSource{Name: "a"},
			want:     1,
		},
		{
			name:     "zero declared size",
			artifact: domain.ArtifactSource{Name: "a", URL: "https://x", SizeInBytes: int64Ptr(0)},
			want:     1,
		},
		{
			name:     "negative declared size",
			artifact: domain.ArtifactSource{Name: "a", URL: "https://x", SizeInBytes: int64Ptr(-7)},
			want:     1,
		},
		{
			name:     "everything wrong",
			artifact: domain.ArtifactSource{SizeInBytes: int64Ptr(-1)},
			want:     3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Len(t, Validate(tt.artifact), tt.want)
		})
	}
}

// TestValidate_DownloadURLSatisfiesURLRule tests pre-signed URL descriptors
func TestValidate_DownloadURLSatisfiesURLRule(t *testing.T) {
	t.Parallel()

	a := domain.ArtifactSource{Name: "a", DownloadURL: "https://signed.example.com/x"}

	assert.Empty(t, Validate(a))
}

// TestFilter_SizeBound tests declared-size filtering against the config limit
func TestFilter_SizeBound(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.MaxFileSizeBytes = 1000
	predicate := Filter(cfg)

	ok, reason := predicate(domain.ArtifactSource{
		Name: "small", URL: "https://x", SizeInBytes: int64Ptr(999),
	})
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, reason = predicate(domain.ArtifactSource{
		Name: "big", URL: "https://x", SizeInBytes: int64Ptr(1001),
	})
	assert.False(t, ok)
	assert.Contains(t, reason, "exceeds limit")
}

// TestFilter_UndeclaredSizePasses tests that missing size defers to the
// streaming limiter
func TestFilter_UndeclaredSizePasses(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.MaxFileSizeBytes = 10
	predicate := Filter(cfg)

	ok, _ := predicate(domain.ArtifactSource{Name: "unknown-size", URL: "https://x"})
	require.True(t, ok)
}

// TestFilter_InvalidArtifactRejectedWithReason tests rejection reporting
func TestFilter_InvalidArtifactRejectedWithReason(t *testing.T) {
	t.Parallel()

	predicate := Filter(config.DefaultConfig())

	ok, reason := predicate(domain.ArtifactSource{})
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
}
