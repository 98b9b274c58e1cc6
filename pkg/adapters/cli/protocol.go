package cli

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/actionhost/pkg/codec"
)

// renderPacket mirrors the wire shape ioclient.Client serializes into its
// SEND_IO_CALL envelope. ioclient keeps its own copy private, so the
// terminal adapter — playing the coordinator's part for a dry run —
// decodes the same JSON shape independently rather than importing it.
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

func decodeRenderPacket(ioCall string) (renderPacket, error) {
	var pkt renderPacket
	if err := json.Unmarshal([]byte(ioCall), &pkt); err != nil {
		return pkt, fmt.Errorf("cli: decoding render packet: %w", err)
	}
	return pkt, nil
}

// props deserializes one entry's props back to their rich Go form.
func (e renderEntry) props() (map[string]any, error) {
	v, err := codec.Deserialize(e.Props, e.PropsMeta)
	if err != nil {
		return nil, fmt.Errorf("cli: deserializing props for %s: %w", e.MethodName, err)
	}
	m, _ := v.(map[string]any)
	return m, nil
}
