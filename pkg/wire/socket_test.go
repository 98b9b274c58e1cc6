package wire_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/actionhost/pkg/hosterror"
	"github.com/aretw0/actionhost/pkg/wire/wiretest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocket_SendAndReceive(t *testing.T) {
	ctx := context.Background()
	pipe, err := wiretest.NewPipe(ctx)
	require.NoError(t, err)
	defer pipe.Close()

	received := make(chan []byte, 1)
	pipe.Server.OnMessage(func(b []byte) { received <- b })

	require.NoError(t, pipe.Client.Send(ctx, []byte(`{"hello":"world"}`)))

	select {
	case msg := <-received:
		assert.JSONEq(t, `{"hello":"world"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("message never arrived")
	}
}

func TestSocket_SendAfterClose_Fails(t *testing.T) {
	ctx := context.Background()
	pipe, err := wiretest.NewPipe(ctx)
	require.NoError(t, err)

	pipe.Client.Close(1000, "done")

	err = pipe.Client.Send(ctx, []byte("anything"))
	require.Error(t, err)
	assert.ErrorIs(t, err, hosterror.ErrSendFailed)
}

func TestSocket_CloseFiresOnCloseOnce(t *testing.T) {
	ctx := context.Background()
	pipe, err := wiretest.NewPipe(ctx)
	require.NoError(t, err)

	calls := 0
	pipe.Client.OnClose(func(code int, reason string) { calls++ })

	pipe.Client.Close(1000, "first")
	pipe.Client.Close(1000, "second")

	assert.Equal(t, 1, calls)
}
