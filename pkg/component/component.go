// Package component implements the IO component object described in the
// render loop: a schema-typed props/state cell paired with a single-shot
// return value and an observer hookup, so external state changes (§4.3)
// can trigger a fresh render without the render loop polling anything.
package component

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/actionhost/internal/logging"
	"github.com/aretw0/actionhost/pkg/schema"
)

// StateHandler reshapes a component's props in response to an incoming
// SET_STATE. It is the "component definition" hook mentioned in spec.md
// §4.6 — e.g. a search box receiving a new query string recomputes its
// results prop. Returning an error aborts the SET_STATE without
// mutating props.
type StateHandler func(ctx context.Context, state map[string]any) (map[string]any, error)

// Observer is notified whenever props or state change. The render loop
// registers itself as the sole observer of every component in a batch;
// registration replaces, it does not accumulate (spec.md §4.3, §9).
type Observer func()

// Instance is one IO method's live component: a method name, a label,
// validated props, validated state, and a return cell that resolves
// exactly once.
type Instance struct {
	methodName schema.MethodName
	label      string
	registry   *schema.Registry
	onState    StateHandler
	logger     *slog.Logger

	mu       sync.Mutex
	props    map[string]any
	state    map[string]any
	observer Observer

	returnOnce sync.Once
	returnCh   chan returnResult
	returned   bool
	returnVal  any
}

type returnResult struct {
	value any
	err   error
}

// New constructs a component instance, validating initialProps against
// the registry's props schema for methodName if one is present.
func New(registry *schema.Registry, methodName schema.MethodName, label string, initialProps map[string]any, onState StateHandler, logger *slog.Logger) (*Instance, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if initialProps != nil {
		if err := registry.ValidateProps(methodName, initialProps); err != nil {
			return nil, fmt.Errorf("component: invalid props for %s: %w", methodName, err)
		}
	}
	return &Instance{
		methodName: methodName,
		label:      label,
		registry:   registry,
		onState:    onState,
		logger:     logger,
		props:      initialProps,
		returnCh:   make(chan returnResult, 1),
	}, nil
}

// MethodName returns the component's method name.
func (i *Instance) MethodName() schema.MethodName { return i.methodName }

// RenderInfo is the minimal payload the remote side needs to render one
// component, as described in spec.md §4.3.
type RenderInfo struct {
	MethodName schema.MethodName
	Label      string
	Props      map[string]any
}

// GetRenderInfo returns the current {methodName, label, props}.
func (i *Instance) GetRenderInfo() RenderInfo {
	i.mu.Lock()
	defer i.mu.Unlock()
	return RenderInfo{MethodName: i.methodName, Label: i.label, Props: i.props}
}

// State returns the component's current validated state (nil until the
// first SET_STATE).
func (i *Instance) State() map[string]any {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// SetObserver installs the sole observer callback, replacing any prior one.
func (i *Instance) SetObserver(obs Observer) {
	i.mu.Lock()
	i.observer = obs
	i.mu.Unlock()
}

func (i *Instance) notify() {
	i.mu.Lock()
	obs := i.observer
	i.mu.Unlock()
	if obs != nil {
		obs()
	}
}

// SetState validates newState against the registry, applies the
// component's StateHandler (if any) to recompute props, and notifies the
// observer. A non-null state with no StateHandler is logged as a
// diagnostic but does not fail (spec.md §4.3).
func (i *Instance) SetState(ctx context.Context, newState map[string]any) error {
	if err := i.registry.ValidateState(i.methodName, newState); err != nil {
		return fmt.Errorf("component: invalid state for %s: %w", i.methodName, err)
	}

	i.mu.Lock()
	if i.returned {
		i.mu.Unlock()
		return nil // late SET_STATE after RETURN: dropped (spec.md §4.6 edge cases)
	}
	i.state = newState
	handler := i.onState
	i.mu.Unlock()

	if handler == nil {
		if newState != nil {
			i.logger.Warn("component received non-null state with no state handler",
				"method", i.methodName, "label", i.label)
		}
		i.notify()
		return nil
	}

	newProps, err := handler(ctx, newState)
	if err != nil {
		return fmt.Errorf("component: state handler for %s: %w", i.methodName, err)
	}

	i.mu.Lock()
	i.props = newProps
	i.mu.Unlock()

	i.notify()
	return nil
}

// SetProps replaces props directly and notifies the observer. Used by
// callers outside the render loop (e.g. an action recomputing a
// component's display after some external event).
func (i *Instance) SetProps(newProps map[string]any) {
	i.mu.Lock()
	i.props = newProps
	i.mu.Unlock()
	i.notify()
}

// SetReturnValue validates raw against the registry's returns schema and
// resolves the return cell exactly once. Subsequent calls are no-ops —
// this is the single-resolve invariant spec.md §8 tests for.
func (i *Instance) SetReturnValue(raw any) error {
	var validationErr error
	i.returnOnce.Do(func() {
		if err := i.registry.ValidateReturn(i.methodName, raw); err != nil {
			validationErr = fmt.Errorf("component: invalid return for %s: %w", i.methodName, err)
			return
		}
		i.mu.Lock()
		i.returned = true
		i.returnVal = raw
		i.mu.Unlock()
		i.returnCh <- returnResult{value: raw}
	})
	return validationErr
}

// Await blocks until SetReturnValue resolves this component's return cell,
// or ctx is canceled.
func (i *Instance) Await(ctx context.Context) (any, error) {
	select {
	case res := <-i.returnCh:
		// Re-deliver so a second Await (should not normally happen) still
		// observes the resolved value rather than blocking forever.
		i.returnCh <- res
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
