package ioclient_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/actionhost/pkg/component"
	"github.com/aretw0/actionhost/pkg/hosterror"
	"github.com/aretw0/actionhost/pkg/ioclient"
	"github.com/aretw0/actionhost/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *schema.Registry {
	r := schema.NewRegistry()
	r.Register("INPUT_TEXT", schema.ComponentSchema{Returns: schema.String()})
	r.Register("INPUT_NUMBER", schema.ComponentSchema{Returns: schema.Int()})
	r.Register("SEARCH", schema.ComponentSchema{Returns: schema.Any()})
	r.Register("CONFIRM", schema.ComponentSchema{Returns: schema.Bool()})
	r.MarkExclusive("CONFIRM")
	return r
}

type capturedSend struct {
	mu    sync.Mutex
	calls []string
}

func (c *capturedSend) sender() ioclient.Sender {
	return func(_ context.Context, ioCall string) error {
		c.mu.Lock()
		c.calls = append(c.calls, ioCall)
		c.mu.Unlock()
		return nil
	}
}

func (c *capturedSend) last() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	var v map[string]any
	_ = json.Unmarshal([]byte(c.calls[len(c.calls)-1]), &v)
	return v
}

func (c *capturedSend) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// S1: single input, success.
func TestClient_SingleInput_Success(t *testing.T) {
	reg := testRegistry()
	sent := &capturedSend{}
	client := ioclient.New(sent.sender(), nil)

	comp, err := component.New(reg, "INPUT_NUMBER", "age", nil, nil, nil)
	require.NoError(t, err)
	promise := ioclient.NewPromise(client, comp, nil)

	resultCh := make(chan any, 1)
	errCh := make(chan error, 1)
	go func() {
		v, err := promise.Await(context.Background())
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- v
	}()

	waitForSend(t, sent, 1)
	pkt := sent.last()
	groupKey := pkt["inputGroupKey"].(string)

	client.HandleResponse(ioclient.ResponsePacket{
		InputGroupKey: groupKey,
		Kind:          "RETURN",
		Values:        []any{float64(42)},
	})

	select {
	case v := <-resultCh:
		assert.InDelta(t, 42, v, 0.001)
	case err := <-errCh:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(time.Second):
		t.Fatal("promise never resolved")
	}
	assert.Equal(t, 1, sent.count())
}

// S2: validation retry keeps the same inputGroupKey and surfaces the message.
func TestClient_ValidationRetry(t *testing.T) {
	reg := testRegistry()
	sent := &capturedSend{}
	client := ioclient.New(sent.sender(), nil)

	comp, err := component.New(reg, "INPUT_TEXT", "name", nil, nil, nil)
	require.NoError(t, err)
	promise := ioclient.NewPromise(client, comp, nil).Validate(func(typed any) string {
		s, _ := typed.(string)
		if len(s) < 2 {
			return "too short"
		}
		return ""
	})

	resultCh := make(chan any, 1)
	go func() {
		v, _ := promise.Await(context.Background())
		resultCh <- v
	}()

	waitForSend(t, sent, 1)
	firstKey := sent.last()["inputGroupKey"].(string)

	client.HandleResponse(ioclient.ResponsePacket{InputGroupKey: firstKey, Kind: "RETURN", Values: []any{""}})

	waitForSend(t, sent, 2)
	retryPkt := sent.last()
	assert.Equal(t, firstKey, retryPkt["inputGroupKey"])
	assert.Equal(t, "too short", retryPkt["validationErrorMessage"])

	client.HandleResponse(ioclient.ResponsePacket{InputGroupKey: firstKey, Kind: "RETURN", Values: []any{"ok"}})

	select {
	case v := <-resultCh:
		assert.Equal(t, "ok", v)
	case <-time.After(time.Second):
		t.Fatal("promise never resolved")
	}
}

// S3: group of two resolves an ordered tuple.
func TestClient_GroupOfTwo(t *testing.T) {
	reg := testRegistry()
	sent := &capturedSend{}
	client := ioclient.New(sent.sender(), nil)

	compA, err := component.New(reg, "INPUT_TEXT", "a", nil, nil, nil)
	require.NoError(t, err)
	compB, err := component.New(reg, "INPUT_NUMBER", "b", nil, nil, nil)
	require.NoError(t, err)

	group, err := ioclient.NewGroup(ioclient.NewPromise(client, compA, nil), ioclient.NewPromise(client, compB, nil))
	require.NoError(t, err)

	resultCh := make(chan []any, 1)
	go func() {
		v, _ := group.Await(context.Background())
		resultCh <- v
	}()

	waitForSend(t, sent, 1)
	groupKey := sent.last()["inputGroupKey"].(string)

	client.HandleResponse(ioclient.ResponsePacket{
		InputGroupKey: groupKey,
		Kind:          "RETURN",
		Values:        []any{"x", float64(7)},
	})

	select {
	case v := <-resultCh:
		assert.Equal(t, []any{"x", float64(7)}, v)
	case <-time.After(time.Second):
		t.Fatal("group never resolved")
	}
}

// S4: SET_STATE drives a state handler and a re-render before RETURN.
func TestClient_StateDrivenRerender(t *testing.T) {
	reg := testRegistry()
	sent := &capturedSend{}
	client := ioclient.New(sent.sender(), nil)

	onState := func(_ context.Context, state map[string]any) (map[string]any, error) {
		return map[string]any{"query": state["query"], "results": []any{"r1"}}, nil
	}
	comp, err := component.New(reg, "SEARCH", "who", nil, onState, nil)
	require.NoError(t, err)
	promise := ioclient.NewPromise(client, comp, nil)

	resultCh := make(chan any, 1)
	go func() {
		v, _ := promise.Await(context.Background())
		resultCh <- v
	}()

	waitForSend(t, sent, 1)
	groupKey := sent.last()["inputGroupKey"].(string)

	client.HandleResponse(ioclient.ResponsePacket{
		InputGroupKey: groupKey,
		Kind:          "SET_STATE",
		Values:        []any{map[string]any{"query": "abc"}},
	})

	waitForSend(t, sent, 2)
	rerendered := sent.last()
	toRender := rerendered["toRender"].([]any)
	props := toRender[0].(map[string]any)["props"].(map[string]any)
	assert.Equal(t, "abc", props["query"])

	client.HandleResponse(ioclient.ResponsePacket{
		InputGroupKey: groupKey,
		Kind:          "RETURN",
		Values:        []any{map[string]any{"id": "u1"}},
	})

	select {
	case v := <-resultCh:
		assert.Equal(t, map[string]any{"id": "u1"}, v)
	case <-time.After(time.Second):
		t.Fatal("promise never resolved")
	}
}

// S5: CANCELED terminates the current render and poisons future ones.
func TestClient_Cancel(t *testing.T) {
	reg := testRegistry()
	sent := &capturedSend{}
	client := ioclient.New(sent.sender(), nil)

	comp, err := component.New(reg, "INPUT_TEXT", "a", nil, nil, nil)
	require.NoError(t, err)
	promise := ioclient.NewPromise(client, comp, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := promise.Await(context.Background())
		errCh <- err
	}()

	waitForSend(t, sent, 1)
	groupKey := sent.last()["inputGroupKey"].(string)

	client.HandleResponse(ioclient.ResponsePacket{InputGroupKey: groupKey, Kind: "CANCELED"})

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, hosterror.ErrCanceled)
	case <-time.After(time.Second):
		t.Fatal("promise never rejected")
	}

	comp2, err := component.New(reg, "INPUT_TEXT", "b", nil, nil, nil)
	require.NoError(t, err)
	_, err = ioclient.NewPromise(client, comp2, nil).Await(context.Background())
	assert.ErrorIs(t, err, hosterror.ErrTransactionClosed)
}

// S6: a group with an exclusive promise fails at construction with no socket traffic.
func TestGroup_ExclusiveConstructionError(t *testing.T) {
	reg := testRegistry()
	sent := &capturedSend{}
	client := ioclient.New(sent.sender(), nil)

	compA, err := component.New(reg, "INPUT_TEXT", "a", nil, nil, nil)
	require.NoError(t, err)
	compConfirm, err := component.New(reg, "CONFIRM", "ok?", nil, nil, nil)
	require.NoError(t, err)

	_, err = ioclient.NewGroup(ioclient.NewPromise(client, compA, nil), ioclient.NewPromise(client, compConfirm, nil).Exclusive())
	assert.ErrorIs(t, err, hosterror.ErrGroupContainsExclusive)
	assert.Equal(t, 0, sent.count())
}

func waitForSend(t *testing.T, sent *capturedSend, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if sent.count() >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d sends, got %d", n, sent.count())
}
