// Package hosterror defines the sentinel error values shared across the
// host SDK. Call sites wrap these with context via fmt.Errorf("...: %w", ...)
// so errors.Is keeps working through the transport, render loop, and
// controller layers.
package hosterror

import "errors"

var (
	// ErrAuthInvalid is returned when INITIALIZE_HOST is rejected by the coordinator.
	ErrAuthInvalid = errors.New("auth invalid")

	// ErrConnectionFailed is returned when the initial Socket connect fails.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrTransportClosed is returned when the Socket closes while calls are in flight.
	ErrTransportClosed = errors.New("transport closed")

	// ErrSendFailed is returned when Socket.Send is attempted on a closed channel.
	ErrSendFailed = errors.New("send failed")

	// ErrRPCSchema is returned when RPC inputs or a response fail schema validation.
	ErrRPCSchema = errors.New("rpc schema validation failed")

	// ErrRPCTimeout is returned when a configured RPC call timeout elapses.
	ErrRPCTimeout = errors.New("rpc timeout")

	// ErrProtocolMismatch is returned when a response's shape violates the wire contract
	// (e.g. a values array length mismatch). It is fatal to the current transaction.
	ErrProtocolMismatch = errors.New("protocol mismatch")

	// ErrCanceled is returned to the render awaiting at the moment a CANCELED
	// response arrives.
	ErrCanceled = errors.New("transaction canceled")

	// ErrTransactionClosed is returned to any render attempted after the
	// transaction has already been canceled.
	ErrTransactionClosed = errors.New("transaction closed")

	// ErrGroupContainsExclusive is returned at IOGroupPromise construction
	// time when one of its members is exclusive.
	ErrGroupContainsExclusive = errors.New("group contains exclusive promise")

	// ErrEmptyGroup is returned at IOGroupPromise construction time when
	// given zero promises.
	ErrEmptyGroup = errors.New("group must be non-empty")

	// ErrRenderBusy is returned when a second render is attempted on an
	// IOClient while one is already in flight.
	ErrRenderBusy = errors.New("render already in progress")

	// ErrAlreadyAwaited is returned when an IOPromise is awaited more than once.
	ErrAlreadyAwaited = errors.New("promise already awaited")

	// ErrActionNotFound names the case of a START_TRANSACTION for an
	// unregistered action. The Host Controller logs that case and answers
	// without an error, so no package in this module returns it.
	ErrActionNotFound = errors.New("action not found")

	// ErrConcurrencyLimitExceeded is returned when an action's concurrency
	// guard rejects a new transaction.
	ErrConcurrencyLimitExceeded = errors.New("action concurrency limit exceeded")
)
