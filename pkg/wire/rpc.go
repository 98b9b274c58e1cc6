package wire

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/actionhost/internal/logging"
	"github.com/aretw0/actionhost/pkg/hosterror"
	"github.com/aretw0/actionhost/pkg/schema"
	"github.com/google/uuid"
)

// MethodSchema is the {inputs, returns} validator pair for one RPC method,
// following the per-component {props, state, returns} shape used elsewhere
// in the host SDK but scoped to a single call. Inputs validates the
// request's params (always object-shaped: map[string]any); Returns
// validates the single result value. Either may be nil to skip validation.
type MethodSchema struct {
	Inputs  schema.Schema
	Returns schema.Type
}

// Handler answers an inbound call. Returning an error causes DuplexRPC to
// send back an error envelope instead of crashing.
type Handler func(ctx context.Context, inputs map[string]any) (any, error)

// Transport is what DuplexRPC needs from its underlying channel: Socket
// satisfies it directly.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	OnMessage(func([]byte))
	OnClose(func(code int, reason string))
}

type pendingCall struct {
	resultCh chan callResult
}

type callResult struct {
	value any
	err   error
}

// DuplexRPC multiplexes many concurrent request/response pairs over one
// Transport. canCall describes methods this side may invoke outbound;
// canRespondTo describes methods the other side may invoke on this side,
// each dispatched to the matching Handler.
type DuplexRPC struct {
	transport    Transport
	canCall      map[string]MethodSchema
	canRespondTo map[string]MethodSchema
	handlers     map[string]Handler
	logger       *slog.Logger
	callTimeout  time.Duration

	mu      sync.Mutex
	pending map[string]*pendingCall
}

// Option configures a DuplexRPC at construction.
type Option func(*DuplexRPC)

// WithLogger attaches a structured logger; defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *DuplexRPC) { r.logger = logger }
}

// WithCallTimeout bounds how long Call waits for a response. Zero (the
// default) means wait indefinitely (bounded only by ctx).
func WithCallTimeout(d time.Duration) Option {
	return func(r *DuplexRPC) { r.callTimeout = d }
}

// New constructs a DuplexRPC wired to transport. handlers must cover every
// method in canRespondTo; a method present in canRespondTo with no handler
// is a programmer error caught at construction.
func New(
	transport Transport,
	canCall map[string]MethodSchema,
	canRespondTo map[string]MethodSchema,
	handlers map[string]Handler,
	opts ...Option,
) (*DuplexRPC, error) {
	for method := range canRespondTo {
		if _, ok := handlers[method]; !ok {
			return nil, fmt.Errorf("wire: no handler registered for respondable method %q", method)
		}
	}

	r := &DuplexRPC{
		transport:    transport,
		canCall:      canCall,
		canRespondTo: canRespondTo,
		handlers:     handlers,
		logger:       logging.NewNop(),
		pending:      make(map[string]*pendingCall),
	}
	for _, opt := range opts {
		opt(r)
	}

	transport.OnMessage(r.dispatch)
	transport.OnClose(r.onTransportClose)
	return r, nil
}

// Call validates inputs, sends a call envelope, and waits for the matching
// response. It rejects with ErrRPCSchema if inputs or the eventual result
// fail validation, ErrRPCTimeout if a configured timeout elapses first,
// and ErrTransportClosed if the channel closes while the call is pending.
func (r *DuplexRPC) Call(ctx context.Context, method string, inputs map[string]any) (any, error) {
	ms, ok := r.canCall[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not in canCall", hosterror.ErrRPCSchema, method)
	}
	if ms.Inputs != nil {
		if err := schema.Validate(ms.Inputs, inputs); err != nil {
			return nil, fmt.Errorf("%w: %v", hosterror.ErrRPCSchema, err)
		}
	}

	params, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("wire: marshaling call params: %w", err)
	}

	callID := uuid.NewString()
	pc := &pendingCall{resultCh: make(chan callResult, 1)}
	r.mu.Lock()
	r.pending[callID] = pc
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.pending, callID)
		r.mu.Unlock()
	}()

	data, err := json.Marshal(frame{CallID: callID, Kind: kindCall, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("wire: marshaling call frame: %w", err)
	}
	if err := r.transport.Send(ctx, data); err != nil {
		return nil, err
	}

	var timeoutCh <-chan time.Time
	if r.callTimeout > 0 {
		timer := time.NewTimer(r.callTimeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case res := <-pc.resultCh:
		if res.err != nil {
			return nil, res.err
		}
		if ms.Returns != nil {
			if err := ms.Returns.Validate(res.value); err != nil {
				return nil, fmt.Errorf("%w: %v", hosterror.ErrRPCSchema, err)
			}
		}
		return res.value, nil
	case <-timeoutCh:
		return nil, hosterror.ErrRPCTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *DuplexRPC) dispatch(data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		r.logger.Warn("wire: malformed frame", "err", err)
		return
	}

	switch f.Kind {
	case kindResponse, kindError:
		r.resolve(f)
	case kindCall:
		r.handleInboundCall(f)
	default:
		r.logger.Warn("wire: unknown frame kind", "kind", f.Kind)
	}
}

func (r *DuplexRPC) resolve(f frame) {
	r.mu.Lock()
	pc, ok := r.pending[f.CallID]
	r.mu.Unlock()
	if !ok {
		return // stale or unknown callId; drop silently
	}

	if f.Kind == kindError {
		msg := "rpc error"
		if f.Error != nil {
			msg = f.Error.Message
		}
		pc.resultCh <- callResult{err: fmt.Errorf("wire: %s", msg)}
		return
	}

	var value any
	if len(f.Result) > 0 {
		if err := json.Unmarshal(f.Result, &value); err != nil {
			pc.resultCh <- callResult{err: fmt.Errorf("%w: decoding result: %v", hosterror.ErrRPCSchema, err)}
			return
		}
	}
	pc.resultCh <- callResult{value: value}
}

func (r *DuplexRPC) handleInboundCall(f frame) {
	ctx := context.Background()

	ms, ok := r.canRespondTo[f.Method]
	if !ok {
		r.sendError(ctx, f.CallID, "UNKNOWN_METHOD", fmt.Sprintf("unknown method %q", f.Method))
		return
	}

	var inputs map[string]any
	if len(f.Params) > 0 {
		if err := json.Unmarshal(f.Params, &inputs); err != nil {
			r.sendError(ctx, f.CallID, "RPC_SCHEMA", fmt.Sprintf("malformed params: %v", err))
			return
		}
	}
	if ms.Inputs != nil {
		if err := schema.Validate(ms.Inputs, inputs); err != nil {
			r.sendError(ctx, f.CallID, "RPC_SCHEMA", err.Error())
			return
		}
	}

	handler := r.handlers[f.Method]
	result, err := handler(ctx, inputs)
	if err != nil {
		r.sendError(ctx, f.CallID, "HANDLER_ERROR", err.Error())
		return
	}
	if ms.Returns != nil {
		if err := ms.Returns.Validate(result); err != nil {
			r.sendError(ctx, f.CallID, "RPC_SCHEMA", err.Error())
			return
		}
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		r.sendError(ctx, f.CallID, "RPC_SCHEMA", fmt.Sprintf("marshaling result: %v", err))
		return
	}
	data, err := json.Marshal(frame{CallID: f.CallID, Kind: kindResponse, Result: resultJSON})
	if err != nil {
		r.logger.Error("wire: marshaling response frame", "err", err)
		return
	}
	if err := r.transport.Send(ctx, data); err != nil {
		r.logger.Warn("wire: sending response", "err", err)
	}
}

func (r *DuplexRPC) sendError(ctx context.Context, callID, code, message string) {
	data, err := json.Marshal(frame{CallID: callID, Kind: kindError, Error: &frameError{Code: code, Message: message}})
	if err != nil {
		r.logger.Error("wire: marshaling error frame", "err", err)
		return
	}
	if err := r.transport.Send(ctx, data); err != nil {
		r.logger.Warn("wire: sending error frame", "err", err)
	}
}

func (r *DuplexRPC) onTransportClose(code int, reason string) {
	r.mu.Lock()
	pending := make([]*pendingCall, 0, len(r.pending))
	for _, pc := range r.pending {
		pending = append(pending, pc)
	}
	r.pending = make(map[string]*pendingCall)
	r.mu.Unlock()

	for _, pc := range pending {
		pc.resultCh <- callResult{err: fmt.Errorf("%w: %s", hosterror.ErrTransportClosed, reason)}
	}
}
