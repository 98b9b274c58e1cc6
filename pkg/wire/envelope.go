package wire

import "encoding/json"

// envelopeKind distinguishes the three frame shapes DuplexRPC exchanges.
type envelopeKind string

const (
	kindCall     envelopeKind = "call"
	kindResponse envelopeKind = "response"
	kindError    envelopeKind = "error"
)

// frame is the wire shape for every message DuplexRPC sends or receives.
// CallID correlates a call with its eventual response/error; it is
// independent in each direction — there is no shared sequence space.
type frame struct {
	CallID string          `json:"callId"`
	Kind   envelopeKind    `json:"kind"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *frameError     `json:"error,omitempty"`
}

type frameError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
