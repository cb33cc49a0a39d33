package download

import (
	"fmt"
	"io"
	"time"

	"github.com/flakeradar/flakeradar/internal/errors"
)

// limitedReader is a composable stream transform that aborts the transfer
// with ErrFileTooLarge once more than max bytes have been received.
type limitedReader struct {
	r        io.Reader
	max      int64
	received int64
}

func newLimitedReader(r io.Reader, max int64) *limitedReader {
	return &limitedReader{r: r, max: max}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.received += int64(n)
	if l.received > l.max {
		return n, errors.Wrapf(errors.ErrFileTooLarge,
			"received %d bytes, limit %d", l.received, l.max)
	}
	return n, err
}

// idleTimeoutReader is a composable stream transform that aborts the
// transfer when no data arrives within the timeout. Each Read runs in its
// own goroutine against a private buffer, so an abandoned slow read cannot
// race the caller's buffer.
type idleTimeoutReader struct {
	r       io.Reader
	timeout time.Duration
}

func newIdleTimeoutReader(r io.Reader, timeout time.Duration) *idleTimeoutReader {
	return &idleTimeoutReader{r: r, timeout: timeout}
}

type readResult struct {
	buf []byte
	err error
}

func (t *idleTimeoutReader) Read(p []byte) (int, error) {
	ch := make(chan readResult, 1)
	buf := make([]byte, len(p))
	go func() {
		n, err := t.r.Read(buf)
		ch <- readResult{buf: buf[:n], err: err}
	}()

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		copy(p, res.buf)
		return len(res.buf), res.err
	case <-timer.C:
		return 0, fmt.Errorf("%w: no data received within %s", errors.ErrTimeout, t.timeout)
	}
}
