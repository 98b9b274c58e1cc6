// Package wire implements the transport layer of the host SDK: Socket, a
// thin event-source wrapper over a persistent duplex byte channel, and
// DuplexRPC, a schema-validated request/response multiplexer built on top
// of it. Neither type interprets the coordinator's higher-level protocol
// (INITIALIZE_HOST, START_TRANSACTION, ...) — that vocabulary lives in
// pkg/host, which configures a DuplexRPC instance with the concrete
// canCall/canRespondTo schemas and handlers.
package wire
