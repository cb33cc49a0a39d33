package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSentinelErrors_AreDistinct verifies that sentinel errors do not alias each other
func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrValidationFailed,
		ErrDownloadFailed,
		ErrExtractionFailed,
		ErrParsingFailed,
		ErrTimeout,
		ErrNetwork,
		ErrFileTooLarge,
		ErrArtifactExpired,
		ErrArtifactRejected,
		ErrUnsupportedExtension,
		ErrEmptyDocument,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, stderrors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

// TestWrap_PreservesChain verifies errors.Is works through Wrap
func TestWrap_PreservesChain(t *testing.T) {
	t.Parallel()

	err := Wrap(ErrDownloadFailed, "artifact junit-results.zip")

	require.Error(t, err)
	require.ErrorIs(t, err, ErrDownloadFailed)
	assert.Equal(t, "artifact junit-results.zip: download failed", err.Error())
}

// TestWrap_NilError verifies nil passthrough for inline usage
func TestWrap_NilError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Wrap(nil, "context"))
	assert.NoError(t, Wrapf(nil, "context %d", 1))
}

// TestWrapf_FormatsMessage verifies interpolation and chain preservation
func TestWrapf_FormatsMessage(t *testing.T) {
	t.Parallel()

	inner := fmt.Errorf("status 503: %w", ErrNetwork)
	err := Wrapf(inner, "failed to download artifact %q", "reports.zip")

	require.ErrorIs(t, err, ErrNetwork)
	assert.Contains(t, err.Error(), `failed to download artifact "reports.zip"`)
}
