package host

import (
	"github.com/aretw0/actionhost/pkg/schema"
	"github.com/aretw0/actionhost/pkg/wire"
)

// canCallSchema describes the envelopes the Host Controller sends
// (spec.md §6's "Outbound (host -> server)"), plus SEND_LOADING_STATE —
// a SPEC_FULL addition carrying the Transaction Loading State side
// channel (§4.7) the distilled wire contract left unenveloped.
var canCallSchema = map[string]wire.MethodSchema{
	"INITIALIZE_HOST": {
		Inputs:  schema.Schema{"apiKey": schema.String(), "callableActionNames": schema.Slice(schema.String())},
		Returns: schema.Any(),
	},
	"SEND_IO_CALL": {
		Inputs:  schema.Schema{"transactionId": schema.String(), "ioCall": schema.String()},
		Returns: schema.Any(),
	},
	"MARK_TRANSACTION_COMPLETE": {
		Inputs:  schema.Schema{"transactionId": schema.String()},
		Returns: schema.Any(),
	},
	"SEND_LOADING_STATE": {
		Inputs:  schema.Schema{"transactionId": schema.String(), "state": schema.Any()},
		Returns: schema.Any(),
	},
}

// canRespondToSchema describes the envelopes the coordinator sends the
// Host Controller (spec.md §6's "Inbound (server -> host)").
var canRespondToSchema = map[string]wire.MethodSchema{
	"START_TRANSACTION": {
		Inputs:  schema.Schema{"transactionId": schema.String(), "actionName": schema.String()},
		Returns: schema.Any(),
	},
	"IO_RESPONSE": {
		Inputs:  schema.Schema{"transactionId": schema.String(), "value": schema.Any()},
		Returns: schema.Any(),
	},
}
