package host

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/actionhost/internal/logging"
	"github.com/aretw0/actionhost/pkg/actiontable"
	actionio "github.com/aretw0/actionhost/pkg/io"
	"github.com/aretw0/actionhost/pkg/ports"
	"github.com/aretw0/actionhost/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLocker is a single-process stand-in for a Redis-backed
// ports.DistributedLocker, rejecting a second Lock for a key already held.
type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: make(map[string]bool)} }

func (l *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, errors.New("fakeLocker: already held")
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
		return nil
	}, nil
}

// testConn is a minimal io.Pipe-backed wire.Conn, independent of
// wiretest.Pipe because this test needs a bare Conn (for Config.Dial),
// not a pair of already-connected Sockets.
type testConn struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (c *testConn) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *testConn) Write(p []byte) (int, error) { return c.w.Write(p) }
func (c *testConn) Close() error {
	_ = c.r.Close()
	return c.w.Close()
}

func newConnPair() (client, server wire.Conn) {
	clientRead, serverWrite := io.Pipe()
	serverRead, clientWrite := io.Pipe()
	return &testConn{r: clientRead, w: clientWrite}, &testConn{r: serverRead, w: serverWrite}
}

// TestController_S1_SingleInputSuccess drives the full Host Controller
// against a fake coordinator speaking the wire protocol directly:
// handshake, START_TRANSACTION, one SEND_IO_CALL/IO_RESPONSE round trip,
// then MARK_TRANSACTION_COMPLETE (spec.md §8 scenario S1).
func TestController_S1_SingleInputSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientConn, serverConn := newConnPair()
	logger := logging.NewNop()

	serverSocket := wire.NewSocket("test://server", func(context.Context, string) (wire.Conn, error) {
		return serverConn, nil
	}, logger)
	require.NoError(t, serverSocket.Connect(ctx))

	markComplete := make(chan struct{}, 1)

	var serverRPC *wire.DuplexRPC
	serverHandlers := map[string]wire.Handler{
		"INITIALIZE_HOST": func(ctx context.Context, inputs map[string]any) (any, error) {
			return map[string]any{"dashboardUrl": "http://test.invalid/dashboard"}, nil
		},
		"SEND_IO_CALL": func(ctx context.Context, inputs map[string]any) (any, error) {
			txID, _ := inputs["transactionId"].(string)
			ioCall, _ := inputs["ioCall"].(string)

			var packet map[string]any
			if err := json.Unmarshal([]byte(ioCall), &packet); err != nil {
				t.Errorf("server: malformed ioCall: %v", err)
				return nil, nil
			}
			inputGroupKey, _ := packet["inputGroupKey"].(string)

			go func() {
				_, err := serverRPC.Call(context.Background(), "IO_RESPONSE", map[string]any{
					"transactionId": txID,
					"value": map[string]any{
						"inputGroupKey": inputGroupKey,
						"kind":          "RETURN",
						"values":        []any{42.0},
					},
				})
				if err != nil {
					t.Errorf("server: sending IO_RESPONSE: %v", err)
				}
			}()
			return nil, nil
		},
		"MARK_TRANSACTION_COMPLETE": func(ctx context.Context, inputs map[string]any) (any, error) {
			select {
			case markComplete <- struct{}{}:
			default:
			}
			return nil, nil
		},
		"SEND_LOADING_STATE": func(ctx context.Context, inputs map[string]any) (any, error) {
			return nil, nil
		},
	}

	r, err := wire.New(serverSocket, canRespondToSchema, canCallSchema, serverHandlers, wire.WithLogger(logger))
	require.NoError(t, err)
	serverRPC = r

	var gotAge any
	table := actiontable.New()
	require.NoError(t, table.Register("greet", func(ctx context.Context, ns *actionio.IO) (any, error) {
		age, err := ns.Input.Number("age").Await(ctx)
		if err != nil {
			return nil, err
		}
		gotAge = age
		return age, nil
	}))

	controller, err := New(Config{
		APIKey:  "test-key",
		Actions: table,
		Logger:  logger,
		Dial: func(context.Context, string) (wire.Conn, error) {
			return clientConn, nil
		},
	})
	require.NoError(t, err)

	runErr := make(chan error, 1)
	go func() { runErr <- controller.Run(ctx) }()

	// Give the handshake a beat to complete before the coordinator
	// starts a transaction.
	time.Sleep(50 * time.Millisecond)

	_, err = serverRPC.Call(ctx, "START_TRANSACTION", map[string]any{
		"transactionId": "tx-1",
		"actionName":    "greet",
	})
	require.NoError(t, err)

	select {
	case <-markComplete:
	case <-time.After(2 * time.Second):
		t.Fatal("MARK_TRANSACTION_COMPLETE never arrived")
	}

	assert.Equal(t, 42.0, gotAge)

	cancel()
	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Controller.Run never returned after cancel")
	}
}

// TestController_UnregisteredAction_NoTransactionCreated covers
// START_TRANSACTION naming an action the host never registered: spec.md
// §4.8 says to log and respond without creating a transaction.
func TestController_UnregisteredAction_NoTransactionCreated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientConn, serverConn := newConnPair()
	logger := logging.NewNop()

	serverSocket := wire.NewSocket("test://server", func(context.Context, string) (wire.Conn, error) {
		return serverConn, nil
	}, logger)
	require.NoError(t, serverSocket.Connect(ctx))

	serverHandlers := map[string]wire.Handler{
		"INITIALIZE_HOST": func(ctx context.Context, inputs map[string]any) (any, error) {
			return map[string]any{"dashboardUrl": "http://test.invalid"}, nil
		},
		"SEND_IO_CALL":              func(ctx context.Context, inputs map[string]any) (any, error) { return nil, nil },
		"MARK_TRANSACTION_COMPLETE": func(ctx context.Context, inputs map[string]any) (any, error) { return nil, nil },
		"SEND_LOADING_STATE":        func(ctx context.Context, inputs map[string]any) (any, error) { return nil, nil },
	}
	serverRPC, err := wire.New(serverSocket, canRespondToSchema, canCallSchema, serverHandlers, wire.WithLogger(logger))
	require.NoError(t, err)

	controller, err := New(Config{
		APIKey:  "test-key",
		Actions: actiontable.New(),
		Logger:  logger,
		Dial: func(context.Context, string) (wire.Conn, error) {
			return clientConn, nil
		},
	})
	require.NoError(t, err)

	go func() { _ = controller.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	_, err = serverRPC.Call(ctx, "START_TRANSACTION", map[string]any{
		"transactionId": "tx-missing",
		"actionName":    "does-not-exist",
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, controller.ActiveTransactions())
}

// TestController_Locker_RejectsAlreadyClaimedTransaction covers the
// distributed-lock dedup path: a transactionId another replica already
// holds the lock for never creates a local transaction.
func TestController_Locker_RejectsAlreadyClaimedTransaction(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientConn, serverConn := newConnPair()
	logger := logging.NewNop()

	serverSocket := wire.NewSocket("test://server", func(context.Context, string) (wire.Conn, error) {
		return serverConn, nil
	}, logger)
	require.NoError(t, serverSocket.Connect(ctx))

	serverHandlers := map[string]wire.Handler{
		"INITIALIZE_HOST": func(ctx context.Context, inputs map[string]any) (any, error) {
			return map[string]any{"dashboardUrl": "http://test.invalid"}, nil
		},
		"SEND_IO_CALL":              func(ctx context.Context, inputs map[string]any) (any, error) { return nil, nil },
		"MARK_TRANSACTION_COMPLETE": func(ctx context.Context, inputs map[string]any) (any, error) { return nil, nil },
		"SEND_LOADING_STATE":        func(ctx context.Context, inputs map[string]any) (any, error) { return nil, nil },
	}
	serverRPC, err := wire.New(serverSocket, canRespondToSchema, canCallSchema, serverHandlers, wire.WithLogger(logger))
	require.NoError(t, err)

	table := actiontable.New()
	require.NoError(t, table.Register("greet", func(ctx context.Context, ns *actionio.IO) (any, error) {
		return nil, nil
	}))

	locker := newFakeLocker()
	unlock, err := locker.Lock(ctx, "tx-claimed", time.Minute)
	require.NoError(t, err)
	defer unlock(ctx)

	controller, err := New(Config{
		APIKey:             "test-key",
		Actions:            table,
		Logger:             logger,
		Locker:             locker,
		LockAttemptTimeout: 100 * time.Millisecond,
		Dial: func(context.Context, string) (wire.Conn, error) {
			return clientConn, nil
		},
	})
	require.NoError(t, err)

	go func() { _ = controller.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	_, err = serverRPC.Call(ctx, "START_TRANSACTION", map[string]any{
		"transactionId": "tx-claimed",
		"actionName":    "greet",
	})
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, controller.ActiveTransactions())
}
