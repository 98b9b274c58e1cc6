package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/actionhost/internal/logging"
	"github.com/aretw0/actionhost/pkg/hosterror"
	"github.com/aretw0/actionhost/pkg/ports"
)

// actionSlot tracks one action name's in-process concurrency count.
type actionSlot struct {
	mu     sync.Mutex
	active int
	max    int // 0 means unbounded
}

// Guard bounds how many transactions of each action name may run
// concurrently. A zero-value Guard (via NewGuard) imposes no limits
// until SetLimit is called for a given action name.
type Guard struct {
	mu    sync.Mutex
	slots map[string]*actionSlot

	limiter ports.DistributedLimiter
	logger  *slog.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithDistributedLimiter adds a cross-replica bound on top of the
// in-process one: a transaction must clear both before it starts.
func WithDistributedLimiter(limiter ports.DistributedLimiter) Option {
	return func(g *Guard) { g.limiter = limiter }
}

// WithLogger attaches a structured logger; defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

// NewGuard creates an empty concurrency guard.
func NewGuard(opts ...Option) *Guard {
	g := &Guard{
		slots:  make(map[string]*actionSlot),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetLimit bounds actionName to at most max concurrent transactions
// in this process. max <= 0 means unbounded.
func (g *Guard) SetLimit(actionName string, max int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	slot, ok := g.slots[actionName]
	if !ok {
		slot = &actionSlot{}
		g.slots[actionName] = slot
	}
	slot.mu.Lock()
	slot.max = max
	slot.mu.Unlock()
}

func (g *Guard) slotFor(actionName string) *actionSlot {
	g.mu.Lock()
	defer g.mu.Unlock()
	slot, ok := g.slots[actionName]
	if !ok {
		slot = &actionSlot{}
		g.slots[actionName] = slot
	}
	return slot
}

// Acquire reserves one concurrency slot for actionName, checking the
// in-process bound first and, if configured, the distributed bound
// second. The returned release must be called exactly once, regardless
// of whether the transaction that follows succeeds or fails.
func (g *Guard) Acquire(ctx context.Context, actionName string) (release func(), err error) {
	slot := g.slotFor(actionName)

	slot.mu.Lock()
	if slot.max > 0 && slot.active >= slot.max {
		slot.mu.Unlock()
		return nil, fmt.Errorf("%w: action %q at local limit %d", hosterror.ErrConcurrencyLimitExceeded, actionName, slot.max)
	}
	slot.active++
	slot.mu.Unlock()

	releaseLocal := func() {
		slot.mu.Lock()
		slot.active--
		slot.mu.Unlock()
	}

	if g.limiter == nil {
		return releaseLocal, nil
	}

	distRelease, ok, err := g.limiter.TryAcquire(ctx, actionName, slot.effectiveDistributedMax())
	if err != nil {
		releaseLocal()
		return nil, fmt.Errorf("session: distributed limiter: %w", err)
	}
	if !ok {
		releaseLocal()
		return nil, fmt.Errorf("%w: action %q at distributed limit", hosterror.ErrConcurrencyLimitExceeded, actionName)
	}

	return func() {
		releaseLocal()
		if err := distRelease(context.Background()); err != nil {
			g.logger.Warn("session: releasing distributed limiter slot", "action", actionName, "err", err)
		}
	}, nil
}

// effectiveDistributedMax falls back to a generous default when no
// local limit was configured, since a distributed limiter still needs
// a concrete bound to enforce.
func (s *actionSlot) effectiveDistributedMax() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 {
		return s.max
	}
	return 1 << 20
}
