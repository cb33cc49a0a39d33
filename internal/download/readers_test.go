package download

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	frerrors "github.com/flakeradar/flakeradar/internal/errors"
)

// TestLimitedReader_UnderLimit tests a transfer within bounds passes through
func TestLimitedReader_UnderLimit(t *testing.T) {
	t.Parallel()

	r := newLimitedReader(strings.NewReader("hello"), 10)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

// TestLimitedReader_ExceedsLimit tests the mid-stream abort
func TestLimitedReader_ExceedsLimit(t *testing.T) {
	t.Parallel()

	r := newLimitedReader(strings.NewReader(strings.Repeat("x", 100)), 10)

	_, err := io.ReadAll(r)
	require.ErrorIs(t, err, frerrors.ErrFileTooLarge)
}

// blockingReader never returns data.
type blockingReader struct{ done chan struct{} }

func (b *blockingReader) Read([]byte) (int, error) {
	<-b.done
	return 0, io.EOF
}

// TestIdleTimeoutReader_StalledStream tests the no-data abort
func TestIdleTimeoutReader_StalledStream(t *testing.T) {
	t.Parallel()

	blocked := &blockingReader{done: make(chan struct{})}
	defer close(blocked.done)

	r := newIdleTimeoutReader(blocked, 20*time.Millisecond)

	buf := make([]byte, 16)
	_, err := r.Read(buf)
	require.ErrorIs(t, err, frerrors.ErrTimeout)
}

// TestIdleTimeoutReader_FlowingStream tests normal data passes untouched
func TestIdleTimeoutReader_FlowingStream(t *testing.T) {
	t.Parallel()

	r := newIdleTimeoutReader(strings.NewReader("streamed content"), time.Second)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "streamed content", string(data))
}
