// Package io is the action-facing namespace described in spec.md §4.6: a
// set of methods that each produce an IOPromise (or IOGroupPromise) for
// one built-in component kind. An action drives a transaction purely by
// calling these and awaiting the result — the IO Client and Socket
// underneath are never touched directly.
package io

import (
	"context"

	"github.com/aretw0/actionhost/pkg/component"
	"github.com/aretw0/actionhost/pkg/ioclient"
	"github.com/aretw0/actionhost/pkg/loading"
	"github.com/aretw0/actionhost/pkg/schema"
)

// IO is the namespace object passed into every action. One IO is created
// per transaction, bound to that transaction's IO Client.
type IO struct {
	client   *ioclient.Client
	registry *schema.Registry

	Input        Input
	Select       Select
	Display      Display
	Experimental Experimental

	// Loading is the transaction's loading-state side channel
	// (spec.md §4.7). It is nil unless the Host Controller attached
	// one via WithLoading.
	Loading *loading.Reporter
}

// Option configures an IO namespace at construction.
type Option func(*IO)

// WithLoading attaches the transaction's loading-state reporter.
func WithLoading(r *loading.Reporter) Option {
	return func(io *IO) { io.Loading = r }
}

// New builds the io namespace for one transaction.
func New(client *ioclient.Client, registry *schema.Registry, opts ...Option) *IO {
	ns := &IO{client: client, registry: registry}
	ns.Input = Input{io: ns}
	ns.Select = Select{io: ns}
	ns.Display = Display{io: ns}
	ns.Experimental = Experimental{io: ns, Input: ExperimentalInput{io: ns}}
	for _, opt := range opts {
		opt(ns)
	}
	return ns
}

func (io *IO) newPromise(method schema.MethodName, label string, props map[string]any, getValue ioclient.GetValueFunc) *ioclient.Promise {
	comp, err := component.New(io.registry, method, label, props, nil, nil)
	if err != nil {
		return failedPromise(io.client, err)
	}
	return ioclient.NewPromise(io.client, comp, getValue)
}

func (io *IO) newStatefulPromise(method schema.MethodName, label string, props map[string]any, onState component.StateHandler, getValue ioclient.GetValueFunc) *ioclient.Promise {
	comp, err := component.New(io.registry, method, label, props, onState, nil)
	if err != nil {
		return failedPromise(io.client, err)
	}
	return ioclient.NewPromise(io.client, comp, getValue)
}

// failedPromise produces a Promise whose Await immediately returns err,
// so a construction-time schema error (e.g. malformed default props)
// surfaces the same way an await-time error would, instead of panicking
// the caller mid-action.
func failedPromise(client *ioclient.Client, err error) *ioclient.Promise {
	return ioclient.NewFailed(client, err)
}

// Group batches sibling promises into one render (spec.md §4.5). It
// fails fast with ErrGroupContainsExclusive if any member is exclusive.
func Group(promises ...*ioclient.Promise) (*ioclient.GroupPromise, error) {
	return ioclient.NewGroup(promises...)
}

// Confirm renders an exclusive yes/no component; it can never join a
// group.
func (io *IO) Confirm(label, body string) *ioclient.Promise {
	return io.newPromise(MethodConfirm, label, map[string]any{"body": body}, nil).Exclusive()
}

// Search renders a query box whose results prop is recomputed by
// onQuery each time the operator types, via the component's state
// handler hook (spec.md §4.6's "component definition").
func (io *IO) Search(label string, onQuery func(ctx context.Context, query string) (map[string]any, error)) *ioclient.Promise {
	onState := func(ctx context.Context, state map[string]any) (map[string]any, error) {
		query, _ := state["query"].(string)
		return onQuery(ctx, query)
	}
	return io.newStatefulPromise(MethodSearch, label, map[string]any{"placeholder": ""}, onState, nil)
}
