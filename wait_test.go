package slidecrawler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cboone/slidecrawler/a11y"
)

func TestPollImmediate(t *testing.T) {
	calls := 0
	err := poll(context.Background(), "ready", time.Second, time.Hour, func(context.Context) (bool, error) {
		calls++
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPollEventually(t *testing.T) {
	calls := 0
	err := poll(context.Background(), "third call", time.Second, time.Millisecond, func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPollTimeout(t *testing.T) {
	start := time.Now()
	err := poll(context.Background(), "never", 50*time.Millisecond, 10*time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	elapsed := time.Since(start)

	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "never", te.What)
	assert.Equal(t, 50*time.Millisecond, te.Timeout)
	assert.NoError(t, te.Last)
	assert.ErrorIs(t, err, ErrSyncTimeout)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestPollRemembersNotFound(t *testing.T) {
	notFound := fmt.Errorf("%w: role=%q", a11y.ErrNotFound, "alert")
	err := poll(context.Background(), "alert", 30*time.Millisecond, 10*time.Millisecond, func(context.Context) (bool, error) {
		return false, notFound
	})

	assert.ErrorIs(t, err, ErrSyncTimeout)
	assert.ErrorIs(t, err, a11y.ErrNotFound)
	assert.Contains(t, err.Error(), `(last: a11y: no matching object: role="alert")`)
}

func TestPollAbortsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := poll(context.Background(), "boom", time.Second, time.Millisecond, func(context.Context) (bool, error) {
		calls++
		return false, boom
	})
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestPollCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := poll(ctx, "cancelled", time.Minute, 10*time.Millisecond, func(context.Context) (bool, error) {
		cancel()
		return false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollZeroTimeoutEvaluatesOnce(t *testing.T) {
	calls := 0
	err := poll(context.Background(), "once", 0, 10*time.Millisecond, func(context.Context) (bool, error) {
		calls++
		return false, nil
	})
	assert.ErrorIs(t, err, ErrSyncTimeout)
	assert.Equal(t, 1, calls)
}
