package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealClock_Now(t *testing.T) {
	c := RealClock{}

	before := time.Now()
	got := c.Now()
	after := time.Now()

	assert.False(t, got.Before(before), "clock.Now() should not return time before actual time.Now()")
	assert.False(t, got.After(after), "clock.Now() should not return time after actual time.Now()")
}

func TestRealClock_SleepRespectsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RealClock{}.Sleep(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRealClock_SleepZeroDuration(t *testing.T) {
	t.Parallel()

	require.NoError(t, RealClock{}.Sleep(context.Background(), 0))
}
