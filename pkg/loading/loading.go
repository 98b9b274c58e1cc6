// Package loading implements the Transaction Loading State side channel
// described in spec.md §4.7: a best-effort progress indicator an action
// can push while it runs non-interactively, distinct from the render
// loop's IO components. Transmit failures are logged, never thrown.
package loading

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/actionhost/internal/logging"
)

// State is the wire shape of one loading update (spec.md §4.7).
type State struct {
	Title          *string `json:"title,omitempty"`
	Description    *string `json:"description,omitempty"`
	ItemsInQueue   *int    `json:"itemsInQueue,omitempty"`
	ItemsCompleted *int    `json:"itemsCompleted,omitempty"`
}

// Sender transmits a loading update for a transaction. Implementations
// wrap the Host Controller's outbound SEND_LOADING_STATE call.
type Sender func(ctx context.Context, txID string, state State) error

// Options configures a single start/update call; all fields are optional.
type Options struct {
	Title        *string
	Description  *string
	ItemsInQueue *int
}

// Reporter is the per-transaction handle an action uses to push loading
// updates. It is not safe to share across transactions; the Host
// Controller constructs one per transaction.
type Reporter struct {
	send   Sender
	txID   string
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	state   State
}

// New constructs a Reporter bound to one transaction's Sender.
func New(send Sender, txID string, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reporter{send: send, txID: txID, logger: logger}
}

// Start establishes a fresh loading state. If opts.ItemsInQueue is set,
// ItemsCompleted initializes to 0.
func (r *Reporter) Start(ctx context.Context, opts Options) {
	r.mu.Lock()
	state := State{
		Title:        opts.Title,
		Description:  opts.Description,
		ItemsInQueue: opts.ItemsInQueue,
	}
	if opts.ItemsInQueue != nil {
		zero := 0
		state.ItemsCompleted = &zero
	}
	r.state = state
	r.started = true
	snapshot := r.state
	r.mu.Unlock()

	r.transmit(ctx, snapshot)
}

// Update merges opts into the existing state. If Start was never called,
// it logs a warning and redirects to Start.
func (r *Reporter) Update(ctx context.Context, opts Options) {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		r.logger.Warn("loading: update called before start, redirecting", "txId", r.txID)
		r.Start(ctx, opts)
		return
	}
	if opts.Title != nil {
		r.state.Title = opts.Title
	}
	if opts.Description != nil {
		r.state.Description = opts.Description
	}
	if opts.ItemsInQueue != nil {
		r.state.ItemsInQueue = opts.ItemsInQueue
		if r.state.ItemsCompleted == nil {
			zero := 0
			r.state.ItemsCompleted = &zero
		}
	}
	snapshot := r.state
	r.mu.Unlock()

	r.transmit(ctx, snapshot)
}

// CompleteOne increments ItemsCompleted by one. It is only meaningful
// once ItemsInQueue has been set by Start/Update; otherwise it logs a
// warning and returns without sending (spec.md §8 "monotone progress").
func (r *Reporter) CompleteOne(ctx context.Context) {
	r.mu.Lock()
	if !r.started || r.state.ItemsInQueue == nil {
		r.mu.Unlock()
		r.logger.Warn("loading: completeOne called with no itemsInQueue set", "txId", r.txID)
		return
	}
	next := *r.state.ItemsCompleted + 1
	r.state.ItemsCompleted = &next
	snapshot := r.state
	r.mu.Unlock()

	r.transmit(ctx, snapshot)
}

func (r *Reporter) transmit(ctx context.Context, state State) {
	if r.send == nil {
		return
	}
	if err := r.send(ctx, r.txID, state); err != nil {
		r.logger.Warn("loading: transmit failed", "txId", r.txID, "err", err)
	}
}
