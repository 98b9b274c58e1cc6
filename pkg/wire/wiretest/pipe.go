// Package wiretest provides an in-memory duplex pipe for exercising
// Socket and DuplexRPC without a real network connection, following the
// shape of the teacher pack's contract-test helpers: a small fixture the
// unit tests share instead of each hand-rolling a mock transport.
package wiretest

import (
	"context"
	"io"

	"github.com/aretw0/actionhost/internal/logging"
	"github.com/aretw0/actionhost/pkg/wire"
)

// Pipe wires two Sockets together over in-memory io.Pipe connections, so
// a Call made on one side is fully serviced by the other, round-trip,
// without any networking involved.
type Pipe struct {
	Client *wire.Socket
	Server *wire.Socket
}

// NewPipe builds a connected pair. Both sockets are already Connect()-ed
// when this returns.
func NewPipe(ctx context.Context) (*Pipe, error) {
	clientRead, serverWrite := io.Pipe()
	serverRead, clientWrite := io.Pipe()

	clientConn := &pipeConn{r: clientRead, w: clientWrite}
	serverConn := &pipeConn{r: serverRead, w: serverWrite}

	logger := logging.NewNop()

	clientSocket := wire.NewSocket("pipe://client", func(context.Context, string) (wire.Conn, error) {
		return clientConn, nil
	}, logger)
	serverSocket := wire.NewSocket("pipe://server", func(context.Context, string) (wire.Conn, error) {
		return serverConn, nil
	}, logger)

	if err := clientSocket.Connect(ctx); err != nil {
		return nil, err
	}
	if err := serverSocket.Connect(ctx); err != nil {
		return nil, err
	}

	return &Pipe{Client: clientSocket, Server: serverSocket}, nil
}

// Close tears down both ends.
func (p *Pipe) Close() {
	p.Client.Close(1000, "test teardown")
	p.Server.Close(1000, "test teardown")
}

type pipeConn struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (c *pipeConn) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *pipeConn) Write(p []byte) (int, error) { return c.w.Write(p) }
func (c *pipeConn) Close() error {
	_ = c.r.Close()
	return c.w.Close()
}
