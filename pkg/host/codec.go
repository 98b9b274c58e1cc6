package host

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/actionhost/pkg/ioclient"
)

// decodeResponsePacket re-marshals the generically-decoded IO_RESPONSE
// value back to JSON and into ioclient.ResponsePacket's typed shape,
// since wire.Handler hands inputs as map[string]any.
func decodeResponsePacket(value map[string]any) (ioclient.ResponsePacket, error) {
	var pkt ioclient.ResponsePacket
	data, err := json.Marshal(value)
	if err != nil {
		return pkt, fmt.Errorf("host: marshaling IO_RESPONSE value: %w", err)
	}
	if err := json.Unmarshal(data, &pkt); err != nil {
		return pkt, fmt.Errorf("host: decoding ResponsePacket: %w", err)
	}
	return pkt, nil
}
