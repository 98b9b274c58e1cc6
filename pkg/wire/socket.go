package wire

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"sync"

	"github.com/aretw0/actionhost/internal/logging"
	"github.com/aretw0/actionhost/pkg/hosterror"
)

// Conn is the minimal duplex byte channel Socket wraps. A net.Conn
// satisfies it directly; tests use an in-memory pipe (see pkg/wire/wiretest).
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
}

// Dialer opens a fresh Conn to endpoint. The production dialer opens a
// TLS connection; tests substitute an in-memory pipe.
type Dialer func(ctx context.Context, endpoint string) (Conn, error)

// DialTLS is the default production Dialer: it expects endpoint to be a
// "host:port" URL (scheme is ignored beyond selecting TLS) and returns a
// TLS connection framed the same way any other Conn is.
func DialTLS(ctx context.Context, endpoint string) (Conn, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("wire: invalid endpoint %q: %w", endpoint, err)
	}
	host := u.Host
	if host == "" {
		host = u.Path
	}
	d := &net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", hosterror.ErrConnectionFailed, err)
	}
	tlsConn := tls.Client(conn, &tls.Config{ServerName: u.Hostname()})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: tls handshake: %v", hosterror.ErrConnectionFailed, err)
	}
	return tlsConn, nil
}

// Socket converts a raw duplex channel into an event source: open, close,
// message, and a send operation. It does not interpret payloads — each
// message is one newline-delimited frame of opaque bytes.
type Socket struct {
	dial     Dialer
	endpoint string
	logger   *slog.Logger

	mu      sync.Mutex
	conn    Conn
	open    bool
	writeMu sync.Mutex

	onOpen    func()
	onClose   func(code int, reason string)
	onMessage func([]byte)

	readDone chan struct{}
}

// NewSocket creates a Socket bound to endpoint, dialed via dial.
func NewSocket(endpoint string, dial Dialer, logger *slog.Logger) *Socket {
	if dial == nil {
		dial = DialTLS
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Socket{dial: dial, endpoint: endpoint, logger: logger}
}

// OnOpen registers the callback fired once Connect succeeds.
func (s *Socket) OnOpen(fn func()) { s.onOpen = fn }

// OnClose adds a callback fired when the channel closes, for any reason.
// Callbacks registered earlier are kept and run first, so a Host and the
// DuplexRPC layered on the same Socket both observe the close.
func (s *Socket) OnClose(fn func(code int, reason string)) {
	prev := s.onClose
	s.onClose = func(code int, reason string) {
		if prev != nil {
			prev(code, reason)
		}
		fn(code, reason)
	}
}

// OnMessage registers the callback fired for each inbound frame.
func (s *Socket) OnMessage(fn func([]byte)) { s.onMessage = fn }

// Connect dials the endpoint and starts the read loop. It resolves once
// the underlying channel is open; it fails with ErrConnectionFailed otherwise.
func (s *Socket) Connect(ctx context.Context) error {
	conn, err := s.dial(ctx, s.endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", hosterror.ErrConnectionFailed, err)
	}

	s.mu.Lock()
	s.conn = conn
	s.open = true
	s.readDone = make(chan struct{})
	s.mu.Unlock()

	if s.onOpen != nil {
		s.onOpen()
	}

	go s.readLoop(conn)
	return nil
}

func (s *Socket) readLoop(conn Conn) {
	defer close(s.readDone)
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		frame := make([]byte, len(line))
		copy(frame, line)
		if s.onMessage != nil {
			s.onMessage(frame)
		}
	}
	reason := "eof"
	if err := scanner.Err(); err != nil {
		reason = err.Error()
	}
	s.Close(1006, reason)
}

// Send writes one frame. It fails with ErrSendFailed if the channel is
// not open. Writes are serialized: only one Send is in flight at a time.
func (s *Socket) Send(_ context.Context, data []byte) error {
	s.mu.Lock()
	conn := s.conn
	open := s.open
	s.mu.Unlock()

	if !open || conn == nil {
		return hosterror.ErrSendFailed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("%w: %v", hosterror.ErrSendFailed, err)
	}
	return nil
}

// Close closes the underlying channel and fires OnClose exactly once.
func (s *Socket) Close(code int, reason string) {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return
	}
	s.open = false
	conn := s.conn
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	s.logger.Debug("socket closed", "code", code, "reason", reason)
	if s.onClose != nil {
		s.onClose(code, reason)
	}
}

// IsOpen reports whether the channel currently believes itself open.
func (s *Socket) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}
