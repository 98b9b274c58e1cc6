package loading_test

import (
	"context"
	"testing"

	"github.com/aretw0/actionhost/pkg/loading"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestReporter_Start_InitializesItemsCompleted(t *testing.T) {
	var got loading.State
	sent := 0
	send := func(ctx context.Context, txID string, state loading.State) error {
		sent++
		got = state
		return nil
	}
	r := loading.New(send, "tx1", nil)

	r.Start(context.Background(), loading.Options{Title: strPtr("crunching"), ItemsInQueue: intPtr(10)})

	require.Equal(t, 1, sent)
	require.NotNil(t, got.ItemsCompleted)
	assert.Equal(t, 0, *got.ItemsCompleted)
	assert.Equal(t, 10, *got.ItemsInQueue)
}

func TestReporter_CompleteOne_Increments(t *testing.T) {
	var got loading.State
	send := func(ctx context.Context, txID string, state loading.State) error {
		got = state
		return nil
	}
	r := loading.New(send, "tx1", nil)
	r.Start(context.Background(), loading.Options{ItemsInQueue: intPtr(3)})

	r.CompleteOne(context.Background())
	r.CompleteOne(context.Background())

	require.NotNil(t, got.ItemsCompleted)
	assert.Equal(t, 2, *got.ItemsCompleted)
}

func TestReporter_CompleteOne_NoOpWithoutItemsInQueue(t *testing.T) {
	calls := 0
	send := func(ctx context.Context, txID string, state loading.State) error {
		calls++
		return nil
	}
	r := loading.New(send, "tx1", nil)
	r.Start(context.Background(), loading.Options{Title: strPtr("working")})

	r.CompleteOne(context.Background())

	assert.Equal(t, 1, calls) // only the Start call, CompleteOne was a no-op
}

func TestReporter_Update_BeforeStart_Redirects(t *testing.T) {
	var got loading.State
	send := func(ctx context.Context, txID string, state loading.State) error {
		got = state
		return nil
	}
	r := loading.New(send, "tx1", nil)

	r.Update(context.Background(), loading.Options{Title: strPtr("late start")})

	require.NotNil(t, got.Title)
	assert.Equal(t, "late start", *got.Title)
}

func TestReporter_Transmit_FailureIsNotFatal(t *testing.T) {
	send := func(ctx context.Context, txID string, state loading.State) error {
		return assert.AnError
	}
	r := loading.New(send, "tx1", nil)

	assert.NotPanics(t, func() {
		r.Start(context.Background(), loading.Options{})
	})
}
