package host

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/actionhost/internal/logging"
	"github.com/aretw0/actionhost/pkg/actiontable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Close_ReturnsImmediatelyWhenIdle(t *testing.T) {
	c, err := New(Config{
		APIKey:  "k",
		Actions: actiontable.New(),
		Logger:  logging.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, c.Close(ctx))
}

func TestController_Close_TimesOutWhileTransactionActive(t *testing.T) {
	c, err := New(Config{
		APIKey:  "k",
		Actions: actiontable.New(),
		Logger:  logging.NewNop(),
	})
	require.NoError(t, err)

	c.mu.Lock()
	c.transactions["tx-1"] = &transaction{actionName: "stuck", startedAt: time.Now()}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = c.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
