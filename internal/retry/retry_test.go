package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoStopsAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	var calls int
	err := Fixed(3, time.Millisecond).Do(context.Background(), func() error {
		calls++
		return errors.New("still failing")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoSucceedsMidway(t *testing.T) {
	t.Parallel()

	var calls int
	err := Fixed(3, time.Millisecond).Do(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoPermanentStopsImmediately(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("bad request")
	var calls int
	err := Fixed(3, time.Millisecond).Do(context.Background(), func() error {
		calls++
		return Permanent(sentinel)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestDoRespectsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	err := Fixed(10, 50*time.Millisecond).Do(ctx, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExponentialShape(t *testing.T) {
	t.Parallel()

	p := Exponential(3, 2*time.Second, 10*time.Second, 2)
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 2*time.Second, p.InitialInterval)
	assert.Equal(t, 10*time.Second, p.MaxInterval)
	assert.Equal(t, 2.0, p.Multiplier)
}
