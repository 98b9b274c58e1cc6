package ioclient

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/actionhost/pkg/component"
	"github.com/aretw0/actionhost/pkg/hosterror"
)

// Promise wraps one IO component. It is created by an io.* method and
// consumed by exactly one Await — either directly or folded into a
// GroupPromise. Awaiting it twice returns ErrAlreadyAwaited (spec.md
// §4.4's "must not be awaited twice").
type Promise struct {
	client    *Client
	comp      *component.Instance
	getValue  GetValueFunc
	validator ValidatorFunc
	exclusive    bool
	consumed     atomic.Bool
	constructErr error
}

// NewPromise wraps comp in a Promise bound to client. getValue maps the
// component's raw return value to the typed value the action sees; pass
// nil for the identity mapping.
func NewPromise(client *Client, comp *component.Instance, getValue GetValueFunc) *Promise {
	if getValue == nil {
		getValue = identity
	}
	return &Promise{client: client, comp: comp, getValue: getValue}
}

func identity(raw any) any { return raw }

// NewFailed builds a Promise whose Await immediately returns err without
// ever rendering. Used by the io namespace to surface a construction-time
// schema error (e.g. invalid default props) through the same Await path
// a runtime error would take, instead of panicking the caller.
func NewFailed(client *Client, err error) *Promise {
	p := &Promise{client: client, getValue: identity, constructErr: err}
	return p
}

// Exclusive marks the promise as exclusive — it can never join a group
// (spec.md §4.4's confirm()-style components).
func (p *Promise) Exclusive() *Promise {
	p.exclusive = true
	return p
}

// IsExclusive reports whether Exclusive was called.
func (p *Promise) IsExclusive() bool { return p.exclusive }

// Validate attaches a post-return validator. If fn returns a non-empty
// message, the batch is rejected and re-rendered with that message
// surfaced as validationErrorMessage.
func (p *Promise) Validate(fn ValidatorFunc) *Promise {
	p.validator = fn
	return p
}

// Component exposes the underlying component instance, used by
// GroupPromise to extract components in order.
func (p *Promise) Component() *component.Instance { return p.comp }

// Await drives a single-element render through the IO Client and
// resolves with getValue applied to the raw return.
func (p *Promise) Await(ctx context.Context) (any, error) {
	if !p.consumed.CompareAndSwap(false, true) {
		return nil, hosterror.ErrAlreadyAwaited
	}
	if p.constructErr != nil {
		return nil, p.constructErr
	}
	results, err := p.client.renderComponents(ctx, []binding{{
		comp:      p.comp,
		getValue:  p.getValue,
		validator: p.validator,
	}}, nil)
	if err != nil {
		return nil, err
	}
	return p.getValue(results[0]), nil
}
