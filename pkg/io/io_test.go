package io_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	actionio "github.com/aretw0/actionhost/pkg/io"
	"github.com/aretw0/actionhost/pkg/ioclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputText_RoundTrip(t *testing.T) {
	var sent string
	sender := func(_ context.Context, ioCall string) error { sent = ioCall; return nil }
	client := ioclient.New(sender, nil)
	ns := actionio.New(client, actionio.DefaultRegistry())

	promise := ns.Input.Text("name", actionio.WithPlaceholder("Ada"))

	resultCh := make(chan any, 1)
	go func() {
		v, err := promise.Await(context.Background())
		require.NoError(t, err)
		resultCh <- v
	}()

	deadline := time.Now().Add(time.Second)
	for sent == "" && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.NotEmpty(t, sent)

	var pkt map[string]any
	require.NoError(t, json.Unmarshal([]byte(sent), &pkt))
	groupKey := pkt["inputGroupKey"].(string)

	client.HandleResponse(ioclient.ResponsePacket{
		InputGroupKey: groupKey,
		Kind:          "RETURN",
		Values:        []any{"Ada Lovelace"},
	})

	select {
	case v := <-resultCh:
		assert.Equal(t, "Ada Lovelace", v)
	case <-time.After(time.Second):
		t.Fatal("promise never resolved")
	}
}

func TestConfirm_IsExclusive_RejectsGroup(t *testing.T) {
	client := ioclient.New(func(context.Context, string) error { return nil }, nil)
	ns := actionio.New(client, actionio.DefaultRegistry())

	confirm := ns.Confirm("proceed?", "Are you sure?")
	other := ns.Input.Text("note")

	_, err := actionio.Group(other, confirm)
	require.Error(t, err)
}
