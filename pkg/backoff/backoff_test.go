package backoff_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/actionhost/pkg/backoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_CyclicMultiset(t *testing.T) {
	sched := backoff.New(nil, 0)

	var got []time.Duration
	for i := 0; i < 20; i++ {
		got = append(got, sched.Next())
	}

	want := []time.Duration{}
	for i := 0; i < 6; i++ {
		want = append(want, time.Second)
	}
	for i := 0; i < 6; i++ {
		want = append(want, 3*time.Second)
	}
	for i := 0; i < 6; i++ {
		want = append(want, 10*time.Second)
	}
	for i := 0; i < 2; i++ {
		want = append(want, time.Second)
	}

	assert.Equal(t, want, got)
}

func TestSchedule_Reset(t *testing.T) {
	sched := backoff.New([]time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, 2)
	sched.Next()
	sched.Next()
	sched.Next() // advances to second step

	sched.Reset()
	assert.Equal(t, 100*time.Millisecond, sched.Next())
}

func TestRetry_StopsOnSuccess(t *testing.T) {
	sched := backoff.New([]time.Duration{1 * time.Millisecond}, 1)
	attempts := 0

	cancel, err := backoff.Retry(context.Background(), sched, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("still failing")
		}
		return nil
	})
	defer cancel()

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_StopsOnContextCancel(t *testing.T) {
	sched := backoff.New([]time.Duration{50 * time.Millisecond}, 100)
	ctx, cancelCtx := context.WithCancel(context.Background())

	attempts := 0
	done := make(chan error, 1)
	go func() {
		_, err := backoff.Retry(ctx, sched, func(ctx context.Context) error {
			attempts++
			return errors.New("always fails")
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancelCtx()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Retry never returned after context cancellation")
	}
}
