package host

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ListenForShutdown returns a context canceled on SIGINT/SIGTERM, and its
// stop function, following pkg/runner/signal_manager.go's
// signal.NotifyContext wiring generalized from a CLI input loop to a
// process-lifecycle listener. When this context is the one passed to Run,
// a shutdown signal stops Run from making any further reconnect attempt;
// Close takes its own context, which bounds the drain (SPEC_FULL §4).
func ListenForShutdown() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Close waits for every in-flight transaction to finish, up to ctx's
// deadline. Call it after canceling the context passed to Run, so no new
// transactions arrive while draining; Run's own ctx.Done() path already
// closes the socket with a clean "shutdown" close code.
func (c *Controller) Close(ctx context.Context) error {
	for {
		if c.ActiveTransactions() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
