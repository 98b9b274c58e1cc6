// Package host implements the Host Controller (spec.md §4.8): it owns
// the Socket, performs the INITIALIZE_HOST handshake, dispatches
// START_TRANSACTION/IO_RESPONSE to per-transaction IO Clients, and
// supervises reconnection with the bounded backoff schedule.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/actionhost/internal/logging"
	"github.com/aretw0/actionhost/pkg/actiontable"
	"github.com/aretw0/actionhost/pkg/hosterror"
	actionio "github.com/aretw0/actionhost/pkg/io"
	"github.com/aretw0/actionhost/pkg/ioclient"
	"github.com/aretw0/actionhost/pkg/loading"
	"github.com/aretw0/actionhost/pkg/schema"
	"github.com/aretw0/actionhost/pkg/wire"
)

// transaction is the Host Controller's bookkeeping for one in-flight
// START_TRANSACTION: the IO Client driving its render loop, its loading
// side channel, and the concurrency-guard release to call on completion.
type transaction struct {
	ioClient   *ioclient.Client
	loading    *loading.Reporter
	release    func()
	actionName string
	startedAt  time.Time
}

// TransactionInfo is the read-only bookkeeping exposed for one
// transaction, consumed by the debug dashboard (pkg/adapters/http).
type TransactionInfo struct {
	ID         string    `json:"id"`
	ActionName string    `json:"actionName"`
	StartedAt  time.Time `json:"startedAt"`
}

// Controller is one running host process. Construct with New, run with
// Run; Run blocks until ctx is canceled or a fatal AUTH_INVALID occurs.
type Controller struct {
	cfg      Config
	logger   *slog.Logger
	registry *schema.Registry

	mu           sync.Mutex
	transactions map[string]*transaction
}

// New validates cfg and constructs a Controller.
func New(cfg Config) (*Controller, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("host: APIKey is required")
	}
	if cfg.Actions == nil {
		return nil, errors.New("host: Actions is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New(cfg.logLevel())
	}
	return &Controller{
		cfg:          cfg,
		logger:       logger,
		registry:     cfg.registry(),
		transactions: make(map[string]*transaction),
	}, nil
}

// Run connects, performs the handshake, and serves inbound transactions
// until ctx is canceled. A transport-level disconnect is retried via the
// configured backoff schedule; an AUTH_INVALID handshake rejection is
// fatal and returned immediately, matching spec.md §7.
func (c *Controller) Run(ctx context.Context) error {
	sched := c.cfg.schedule()

	for {
		err := c.connectAndServe(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, hosterror.ErrAuthInvalid) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := sched.Next()
		c.logger.Warn("host: disconnected, backing off before reconnect", "err", err, "delay", delay)
		if c.cfg.Metrics != nil {
			c.cfg.Metrics.Reconnects.Inc()
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

func (c *Controller) connectAndServe(ctx context.Context) error {
	dial := c.cfg.Dial
	if dial == nil {
		dial = wire.DialTLS
	}
	socket := wire.NewSocket(c.cfg.endpoint(), dial, c.logger)

	closed := make(chan string, 1)
	socket.OnClose(func(code int, reason string) {
		select {
		case closed <- reason:
		default:
		}
	})

	if err := socket.Connect(ctx); err != nil {
		return err
	}

	var rpc *wire.DuplexRPC
	handlers := map[string]wire.Handler{
		"START_TRANSACTION": func(ctx context.Context, inputs map[string]any) (any, error) {
			return c.handleStartTransaction(ctx, inputs, rpc)
		},
		"IO_RESPONSE": func(ctx context.Context, inputs map[string]any) (any, error) {
			return c.handleIOResponse(ctx, inputs)
		},
	}

	r, err := wire.New(socket, canCallSchema, canRespondToSchema, handlers, wire.WithLogger(c.logger))
	if err != nil {
		socket.Close(1011, "rpc setup failed")
		return fmt.Errorf("host: wiring duplex rpc: %w", err)
	}
	rpc = r

	if err := c.handshake(ctx, rpc); err != nil {
		socket.Close(4001, "auth invalid")
		return err
	}

	select {
	case reason := <-closed:
		return fmt.Errorf("%w: %s", hosterror.ErrTransportClosed, reason)
	case <-ctx.Done():
		socket.Close(1000, "shutdown")
		return nil
	}
}

func (c *Controller) handshake(ctx context.Context, rpc *wire.DuplexRPC) error {
	result, err := rpc.Call(ctx, "INITIALIZE_HOST", map[string]any{
		"apiKey":              c.cfg.APIKey,
		"callableActionNames": toAnySlice(c.cfg.Actions.Names()),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", hosterror.ErrAuthInvalid, err)
	}

	switch v := result.(type) {
	case bool:
		if !v {
			return hosterror.ErrAuthInvalid
		}
	case map[string]any:
		c.logger.Info("host: handshake complete", "dashboardUrl", v["dashboardUrl"])
	case nil:
		return hosterror.ErrAuthInvalid
	}
	return nil
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func (c *Controller) handleStartTransaction(ctx context.Context, inputs map[string]any, rpc *wire.DuplexRPC) (any, error) {
	txID, _ := inputs["transactionId"].(string)
	actionName, _ := inputs["actionName"].(string)

	action, ok := c.cfg.Actions.Lookup(actionName)
	if !ok {
		c.logger.Warn("host: START_TRANSACTION for unregistered action", "txId", txID, "action", actionName)
		return nil, nil
	}

	var release func()
	if c.cfg.Guard != nil {
		r, err := c.cfg.Guard.Acquire(ctx, actionName)
		if err != nil {
			c.logger.Warn("host: concurrency guard rejected transaction", "txId", txID, "action", actionName, "err", err)
			return nil, nil
		}
		release = r
	}

	if c.cfg.Locker != nil {
		lockCtx, cancel := context.WithTimeout(ctx, c.cfg.lockAttemptTimeout())
		unlock, err := c.cfg.Locker.Lock(lockCtx, txID, c.cfg.lockTTL())
		cancel()
		if err != nil {
			c.logger.Warn("host: distributed lock did not claim transaction, assuming another replica owns it", "txId", txID, "err", err)
			if release != nil {
				release()
			}
			return nil, nil
		}
		local := release
		release = func() {
			if local != nil {
				local()
			}
			if err := unlock(context.Background()); err != nil {
				c.logger.Warn("host: releasing distributed lock", "txId", txID, "err", err)
			}
		}
	}

	send := func(ctx context.Context, ioCall string) error {
		_, err := rpc.Call(ctx, "SEND_IO_CALL", map[string]any{
			"transactionId": txID,
			"ioCall":        ioCall,
		})
		if err != nil && c.cfg.Metrics != nil {
			c.cfg.Metrics.RPCErrors.WithLabelValues("SEND_IO_CALL").Inc()
		}
		return err
	}
	ioClient := ioclient.New(send, c.logger)

	loadingSend := func(ctx context.Context, txID string, state loading.State) error {
		_, err := rpc.Call(ctx, "SEND_LOADING_STATE", map[string]any{
			"transactionId": txID,
			"state":         state,
		})
		return err
	}
	reporter := loading.New(loadingSend, txID, c.logger)

	tx := &transaction{
		ioClient:   ioClient,
		loading:    reporter,
		release:    release,
		actionName: actionName,
		startedAt:  time.Now(),
	}
	c.mu.Lock()
	c.transactions[txID] = tx
	c.mu.Unlock()

	if c.cfg.Metrics != nil {
		c.cfg.Metrics.TransactionsActive.Inc()
	}

	go c.runAction(ctx, txID, actionName, action, ioClient, reporter, rpc)

	return nil, nil
}

func (c *Controller) runAction(ctx context.Context, txID, actionName string, action actiontable.Action, ioClient *ioclient.Client, reporter *loading.Reporter, rpc *wire.DuplexRPC) {
	defer c.dropTransaction(txID)

	ns := actionio.New(ioClient, c.registry, actionio.WithLoading(reporter))
	_, err := action(ctx, ns)

	if err != nil {
		c.logger.Error("host: action failed", "txId", txID, "action", actionName, "err", err)
		return // no MARK_TRANSACTION_COMPLETE: coordinator must time it out (spec.md §7)
	}

	if _, err := rpc.Call(ctx, "MARK_TRANSACTION_COMPLETE", map[string]any{"transactionId": txID}); err != nil {
		c.logger.Warn("host: marking transaction complete", "txId", txID, "err", err)
	}
}

func (c *Controller) dropTransaction(txID string) {
	c.mu.Lock()
	tx, ok := c.transactions[txID]
	delete(c.transactions, txID)
	c.mu.Unlock()

	if !ok {
		return
	}
	if tx.release != nil {
		tx.release()
	}
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.TransactionsActive.Dec()
	}
}

func (c *Controller) handleIOResponse(ctx context.Context, inputs map[string]any) (any, error) {
	txID, _ := inputs["transactionId"].(string)

	c.mu.Lock()
	tx, ok := c.transactions[txID]
	c.mu.Unlock()
	if !ok {
		return nil, nil // stale; drop silently (spec.md §4.8)
	}

	value, _ := inputs["value"].(map[string]any)
	pkt, err := decodeResponsePacket(value)
	if err != nil {
		c.logger.Warn("host: malformed IO_RESPONSE value", "txId", txID, "err", err)
		return nil, nil
	}

	tx.ioClient.HandleResponse(pkt)
	return nil, nil
}

// ActiveTransactions returns the number of transactions currently
// tracked, for the debug dashboard (pkg/adapters/http).
func (c *Controller) ActiveTransactions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.transactions)
}

// TransactionIDs returns the IDs of every transaction currently tracked,
// for the debug dashboard (pkg/adapters/http).
func (c *Controller) TransactionIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.transactions))
	for id := range c.transactions {
		ids = append(ids, id)
	}
	return ids
}

// Transactions returns a snapshot of every transaction currently
// tracked, for the debug dashboard's GET /transactions.
func (c *Controller) Transactions() []TransactionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]TransactionInfo, 0, len(c.transactions))
	for id, tx := range c.transactions {
		out = append(out, TransactionInfo{ID: id, ActionName: tx.actionName, StartedAt: tx.startedAt})
	}
	return out
}

// Transaction returns one transaction's snapshot, for the debug
// dashboard's GET /transactions/{id}.
func (c *Controller) Transaction(id string) (TransactionInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, ok := c.transactions[id]
	if !ok {
		return TransactionInfo{}, false
	}
	return TransactionInfo{ID: id, ActionName: tx.actionName, StartedAt: tx.startedAt}, true
}
