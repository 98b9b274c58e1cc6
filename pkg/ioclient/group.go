package ioclient

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/actionhost/pkg/hosterror"
)

// GroupPromise is an ordered, non-empty tuple of Promises, none of them
// exclusive. Awaiting it drives one render for the whole batch and
// resolves with the typed tuple in the order the promises were supplied
// (spec.md §4.5, §8 property 5).
type GroupPromise struct {
	client    *Client
	promises  []*Promise
	validator GroupValidatorFunc
	consumed  atomic.Bool
}

// NewGroup constructs a group from promises, all of which must share the
// same Client and none of which may be exclusive. Mixing an exclusive
// promise in fails fast with ErrGroupContainsExclusive and produces no
// socket traffic (spec.md §8 property 4).
func NewGroup(promises ...*Promise) (*GroupPromise, error) {
	if len(promises) == 0 {
		return nil, hosterror.ErrEmptyGroup
	}
	var client *Client
	for _, p := range promises {
		if p.IsExclusive() {
			return nil, hosterror.ErrGroupContainsExclusive
		}
		if client == nil {
			client = p.client
		}
	}
	return &GroupPromise{client: client, promises: promises}, nil
}

// Validate attaches a group-level validator, run after every
// per-promise validator passes.
func (g *GroupPromise) Validate(fn GroupValidatorFunc) *GroupPromise {
	g.validator = fn
	return g
}

// Await drives one render for every component in the group and maps
// each raw return through its own promise's getValue.
func (g *GroupPromise) Await(ctx context.Context) ([]any, error) {
	if !g.consumed.CompareAndSwap(false, true) {
		return nil, hosterror.ErrAlreadyAwaited
	}
	for _, p := range g.promises {
		if p.constructErr != nil {
			return nil, p.constructErr
		}
	}

	bindings := make([]binding, len(g.promises))
	for i, p := range g.promises {
		bindings[i] = binding{comp: p.Component(), getValue: p.getValue, validator: p.validator}
	}

	raw, err := g.client.renderComponents(ctx, bindings, g.validator)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(g.promises))
	for i, p := range g.promises {
		out[i] = p.getValue(raw[i])
	}
	return out, nil
}
