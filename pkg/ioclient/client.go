// Package ioclient implements the per-transaction render loop: batching
// one or more IO components into a single render, reconciling incremental
// SET_STATE/RETURN/CANCELED responses from the coordinator, running
// validators, and resolving each component's return value.
package ioclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/actionhost/internal/logging"
	"github.com/aretw0/actionhost/pkg/codec"
	"github.com/aretw0/actionhost/pkg/component"
	"github.com/aretw0/actionhost/pkg/hosterror"
	"github.com/google/uuid"
)

// Sender transmits one render packet, already serialized to its wire
// string form, upstream. The Host Controller supplies this, wrapping the
// transactionId around whatever the IO Client hands it (spec.md §4.8's
// SEND_IO_CALL envelope).
type Sender func(ctx context.Context, ioCall string) error

// GetValueFunc maps a component's raw, codec-deserialized return value to
// the typed value an action sees. Most IO methods use the identity
// mapping; a few (e.g. input.boolean coercing the raw value to a bool)
// do not.
type GetValueFunc func(raw any) any

// ValidatorFunc inspects a typed value post-return and returns a
// non-empty message to reject the batch, or "" to accept it.
type ValidatorFunc func(typed any) string

// GroupValidatorFunc is the group-level analogue of ValidatorFunc: it
// sees the whole typed tuple at once.
type GroupValidatorFunc func(typed []any) string

type renderPacket struct {
	ID                     string        `json:"id"`
	InputGroupKey          string        `json:"inputGroupKey"`
	ToRender               []renderEntry `json:"toRender"`
	ValidationErrorMessage string        `json:"validationErrorMessage,omitempty"`
	Kind                   string        `json:"kind"`
}

type renderEntry struct {
	MethodName string     `json:"methodName"`
	Label      string     `json:"label"`
	Props      any        `json:"props,omitempty"`
	PropsMeta  codec.Meta `json:"propsMeta,omitempty"`
}

// ResponsePacket is the decoded form of an IO_RESPONSE's value field
// (spec.md §6). The Host Controller unmarshals the envelope and forwards
// the packet to whichever Client owns the matching transaction.
type ResponsePacket struct {
	InputGroupKey string     `json:"inputGroupKey,omitempty"`
	Kind          string     `json:"kind"`
	Values        []any      `json:"values"`
	ValuesMeta    codec.Meta `json:"valuesMeta,omitempty"`
}

// binding pairs one component with the functions its owning Promise (or
// GroupPromise element) needs applied during a render.
type binding struct {
	comp      *component.Instance
	getValue  GetValueFunc
	validator ValidatorFunc
}

// Client owns the render loop for exactly one transaction. Per spec.md
// §4.6, exactly one render is active at a time; a second concurrent
// attempt is rejected with ErrRenderBusy rather than racing the first.
type Client struct {
	send   Sender
	logger *slog.Logger

	mu                sync.Mutex
	isCanceled        bool
	active            bool
	onResponseHandler func(ResponsePacket)
}

// New builds an IO Client that transmits render packets via send.
func New(send Sender, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{send: send, logger: logger}
}

// HandleResponse delivers one IO_RESPONSE packet to whichever render is
// currently in flight. Responses arriving with no render in flight (or
// for a stale inputGroupKey) are dropped silently, per spec.md §4.6.
func (c *Client) HandleResponse(pkt ResponsePacket) {
	c.mu.Lock()
	handler := c.onResponseHandler
	c.mu.Unlock()
	if handler != nil {
		handler(pkt)
	}
}

// IsCanceled reports whether a CANCELED response has ever been received
// on this client. Once true, every future render rejects immediately.
func (c *Client) IsCanceled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCanceled
}

// renderComponents is the algorithm from spec.md §4.6. bindings supplies,
// per component in order, the getValue/validator pair its owning promise
// attached; groupValidator is optional (nil for a lone promise).
func (c *Client) renderComponents(ctx context.Context, bindings []binding, groupValidator GroupValidatorFunc) ([]any, error) {
	c.mu.Lock()
	if c.isCanceled {
		c.mu.Unlock()
		return nil, hosterror.ErrTransactionClosed
	}
	if c.active {
		c.mu.Unlock()
		return nil, hosterror.ErrRenderBusy
	}
	c.active = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.active = false
		c.onResponseHandler = nil
		c.mu.Unlock()
	}()

	groupKey := uuid.NewString()
	validationErrorMessage := ""
	batchReturned := false

	errCh := make(chan error, 1)
	doneCh := make(chan []any, 1)

	components := make([]*component.Instance, len(bindings))
	for i, b := range bindings {
		components[i] = b.comp
	}

	render := func() error {
		entries := make([]renderEntry, len(components))
		for i, comp := range components {
			info := comp.GetRenderInfo()
			cleaned := stripUndefined(info.Props)
			jsonProps, meta, err := codec.Serialize(cleaned)
			if err != nil {
				return fmt.Errorf("ioclient: serializing props for %s: %w", info.MethodName, err)
			}
			entries[i] = renderEntry{
				MethodName: string(info.MethodName),
				Label:      info.Label,
				Props:      jsonProps,
				PropsMeta:  meta,
			}
		}
		pkt := renderPacket{
			ID:                     uuid.NewString(),
			InputGroupKey:          groupKey,
			ToRender:               entries,
			ValidationErrorMessage: validationErrorMessage,
			Kind:                   "RENDER",
		}
		data, err := json.Marshal(pkt)
		if err != nil {
			return fmt.Errorf("ioclient: marshaling render packet: %w", err)
		}
		return c.send(ctx, string(data))
	}

	handleResponse := func(resp ResponsePacket) {
		if resp.InputGroupKey != "" && resp.InputGroupKey != groupKey {
			return // stale batch
		}
		c.mu.Lock()
		canceled := c.isCanceled
		c.mu.Unlock()
		if canceled || batchReturned {
			return
		}

		if resp.Kind == "CANCELED" {
			c.mu.Lock()
			c.isCanceled = true
			c.mu.Unlock()
			select {
			case errCh <- hosterror.ErrCanceled:
			default:
			}
			return
		}

		if len(resp.Values) != len(components) {
			select {
			case errCh <- fmt.Errorf("%w: expected %d values, got %d", hosterror.ErrProtocolMismatch, len(components), len(resp.Values)):
			default:
			}
			return
		}

		values := make([]any, len(resp.Values))
		for i, raw := range resp.Values {
			v, err := codec.Deserialize(raw, metaForIndex(resp.ValuesMeta, i))
			if err != nil {
				select {
				case errCh <- fmt.Errorf("%w: %v", hosterror.ErrProtocolMismatch, err):
				default:
				}
				return
			}
			values[i] = v
		}

		switch resp.Kind {
		case "SET_STATE":
			for i, comp := range components {
				newState, _ := values[i].(map[string]any)
				if statesEqual(comp.State(), newState) {
					continue
				}
				if err := comp.SetState(ctx, newState); err != nil {
					c.logger.Warn("ioclient: SET_STATE rejected", "err", err)
				}
			}
			if err := render(); err != nil {
				select {
				case errCh <- err:
				default:
				}
			}
		case "RETURN":
			typed := make([]any, len(values))
			msgs := make([]string, len(bindings))
			var wg sync.WaitGroup
			for i, b := range bindings {
				i, b := i, b
				typed[i] = b.getValue(values[i])
				if b.validator == nil {
					continue
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					msgs[i] = b.validator(typed[i])
				}()
			}
			wg.Wait()

			firstMsg := ""
			for _, m := range msgs {
				if m != "" {
					firstMsg = m
					break
				}
			}
			if firstMsg == "" && groupValidator != nil {
				firstMsg = groupValidator(typed)
			}
			if firstMsg != "" {
				validationErrorMessage = firstMsg
				if err := render(); err != nil {
					select {
					case errCh <- err:
					default:
					}
				}
				return
			}

			batchReturned = true
			for i, comp := range components {
				if err := comp.SetReturnValue(values[i]); err != nil {
					select {
					case errCh <- err:
					default:
					}
					return
				}
			}
		default:
			select {
			case errCh <- fmt.Errorf("%w: unknown response kind %q", hosterror.ErrProtocolMismatch, resp.Kind):
			default:
			}
		}
	}

	c.mu.Lock()
	c.onResponseHandler = handleResponse
	c.mu.Unlock()

	for _, comp := range components {
		comp.SetObserver(func() {
			if err := render(); err != nil {
				c.logger.Warn("ioclient: re-render on observer notify failed", "err", err)
			}
		})
	}

	if err := render(); err != nil {
		return nil, err
	}

	awaitCtx, cancelAwait := context.WithCancel(ctx)
	defer cancelAwait()

	go func() {
		results := make([]any, len(components))
		for i, comp := range components {
			v, err := comp.Await(awaitCtx)
			if err != nil {
				select {
				case errCh <- err:
				default:
				}
				return
			}
			results[i] = v
		}
		select {
		case doneCh <- results:
		default:
		}
	}()

	select {
	case err := <-errCh:
		return nil, err
	case results := <-doneCh:
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func metaForIndex(meta codec.Meta, i int) codec.Meta {
	if len(meta) == 0 {
		return nil
	}
	prefix := fmt.Sprintf("[%d]", i)
	out := codec.Meta{}
	for path, kind := range meta {
		if path == prefix {
			out[""] = kind
			continue
		}
		if rest, ok := stripPrefix(path, prefix); ok {
			rest = strings.TrimPrefix(rest, ".")
			out[rest] = kind
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stripPrefix(path, prefix string) (string, bool) {
	if len(path) <= len(prefix) || path[:len(prefix)] != prefix {
		return "", false
	}
	return path[len(prefix):], true
}

// stripUndefined removes any map entry whose value is codec.Undefined,
// so an explicitly-undefined prop never reaches the wire as a key at
// all (spec.md §4.6 step 3).
func stripUndefined(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		if _, ok := v.(codec.Undefined); ok {
			continue
		}
		out[k] = v
	}
	return out
}

func statesEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(aj) == string(bj)
}
