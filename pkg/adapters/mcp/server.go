// Package mcp exposes the Host's action table over the Model Context
// Protocol (SPEC_FULL §3.2): an alternate local transport for exercising
// actions from an MCP-speaking client — an editor integration or a test
// harness — without standing up the production coordinator.
//
// start_transaction builds a real ioclient.Client and drives it exactly
// like the production Host Controller does; respond feeds a response
// packet in place of what IO_RESPONSE would deliver over the duplex
// socket. This is a genuine second binding of the render loop, not a mock.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/actionhost"
	"github.com/aretw0/actionhost/internal/logging"
	"github.com/aretw0/actionhost/pkg/actiontable"
	actionio "github.com/aretw0/actionhost/pkg/io"
	"github.com/aretw0/actionhost/pkg/ioclient"
	"github.com/aretw0/actionhost/pkg/schema"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// TransactionEvent is returned by both start_transaction and respond: it
// carries either the next batch of components to render, or the action's
// final result once it has returned.
type TransactionEvent struct {
	TransactionID string `json:"transactionId" jsonschema_description:"The transaction this event belongs to"`
	Render        string `json:"render,omitempty" jsonschema_description:"The pending render packet's JSON, if the action is waiting on input"`
	Done          bool   `json:"done" jsonschema_description:"True once the action has returned; render is empty in that case"`
	Result        any    `json:"result,omitempty" jsonschema_description:"The action's return value, present only when done is true"`
	Error         string `json:"error,omitempty" jsonschema_description:"The action's error, present only when done is true and it failed"`
}

// ActionList is returned by list_actions.
type ActionList struct {
	Actions []string `json:"actions" jsonschema_description:"Every action name registered with the Host"`
}

// transaction is one in-flight MCP-driven run of an action.
type transaction struct {
	client   *ioclient.Client
	renderCh chan string
	doneCh   chan struct{}
	result   any
	err      error
}

// Server wraps a Host's action table and registry and exposes them as
// MCP tools.
type Server struct {
	actions   *actiontable.Table
	registry  *schema.Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer

	mu           sync.Mutex
	transactions map[string]*transaction
}

// NewServer creates a new MCP Server instance bound to actions.
func NewServer(actions *actiontable.Table, registry *schema.Registry, logger *slog.Logger) *Server {
	if registry == nil {
		registry = actionio.DefaultRegistry()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		actions:      actions,
		registry:     registry,
		logger:       logger,
		mcpServer:    server.NewMCPServer("actionhost-mcp", actionhost.Version),
		transactions: make(map[string]*transaction),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp: listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("mcp: shutdown signal received")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("mcp: shutting down gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	listTool := mcp.NewTool("list_actions",
		mcp.WithDescription("List every action name registered with the Host."),
		mcp.WithOutputSchema[ActionList](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListActions))

	startTool := mcp.NewTool("start_transaction",
		mcp.WithDescription("Start running a registered action, returning its first render (or its result if it needs no input)."),
		mcp.WithString("action_name", mcp.Required(), mcp.Description("The action to run")),
		mcp.WithOutputSchema[TransactionEvent](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStartTransaction))

	respondTool := mcp.NewTool("respond",
		mcp.WithDescription("Deliver an IO_RESPONSE-shaped value to a transaction waiting on input, returning its next render or final result."),
		mcp.WithString("transaction_id", mcp.Required(), mcp.Description("The transaction to respond to")),
		mcp.WithString("value", mcp.Required(), mcp.Description("The response packet's value field, as a JSON object string: {inputGroupKey, kind, values}")),
		mcp.WithOutputSchema[TransactionEvent](),
	)
	s.mcpServer.AddTool(respondTool, mcp.NewStructuredToolHandler(s.handleRespond))
}

func (s *Server) handleListActions(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ActionList, error) {
	return ActionList{Actions: s.actions.Names()}, nil
}

func (s *Server) handleStartTransaction(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TransactionEvent, error) {
	actionName, _ := args["action_name"].(string)
	action, ok := s.actions.Lookup(actionName)
	if !ok {
		return TransactionEvent{}, fmt.Errorf("mcp: unregistered action %q", actionName)
	}

	txID := uuid.NewString()
	tx := &transaction{
		renderCh: make(chan string, 1),
		doneCh:   make(chan struct{}),
	}
	tx.client = ioclient.New(func(_ context.Context, ioCall string) error {
		select {
		case <-tx.renderCh:
		default:
		}
		tx.renderCh <- ioCall
		return nil
	}, s.logger)

	s.mu.Lock()
	s.transactions[txID] = tx
	s.mu.Unlock()

	go s.runAction(ctx, txID, action, tx)

	return s.waitForEvent(ctx, txID, tx)
}

func (s *Server) runAction(ctx context.Context, txID string, action actiontable.Action, tx *transaction) {
	ns := actionio.New(tx.client, s.registry)
	result, err := action(ctx, ns)
	tx.result, tx.err = result, err
	close(tx.doneCh)
}

func (s *Server) handleRespond(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TransactionEvent, error) {
	txID, _ := args["transaction_id"].(string)

	s.mu.Lock()
	tx, ok := s.transactions[txID]
	s.mu.Unlock()
	if !ok {
		return TransactionEvent{}, fmt.Errorf("mcp: unknown transaction %q", txID)
	}

	valueStr, _ := args["value"].(string)
	var value map[string]any
	if err := json.Unmarshal([]byte(valueStr), &value); err != nil {
		return TransactionEvent{}, fmt.Errorf("mcp: decoding value: %w", err)
	}

	var pkt ioclient.ResponsePacket
	data, err := json.Marshal(value)
	if err != nil {
		return TransactionEvent{}, fmt.Errorf("mcp: re-marshaling value: %w", err)
	}
	if err := json.Unmarshal(data, &pkt); err != nil {
		return TransactionEvent{}, fmt.Errorf("mcp: decoding ResponsePacket: %w", err)
	}

	tx.client.HandleResponse(pkt)

	return s.waitForEvent(ctx, txID, tx)
}

// waitForEvent blocks until the action either requests another render or
// returns, dropping the transaction from the map once it is done.
func (s *Server) waitForEvent(ctx context.Context, txID string, tx *transaction) (TransactionEvent, error) {
	select {
	case ioCall := <-tx.renderCh:
		return TransactionEvent{TransactionID: txID, Render: ioCall}, nil
	case <-tx.doneCh:
		s.mu.Lock()
		delete(s.transactions, txID)
		s.mu.Unlock()
		ev := TransactionEvent{TransactionID: txID, Done: true, Result: tx.result}
		if tx.err != nil {
			ev.Error = tx.err.Error()
		}
		return ev, nil
	case <-ctx.Done():
		return TransactionEvent{}, ctx.Err()
	}
}
