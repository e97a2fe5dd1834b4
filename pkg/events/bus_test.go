package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusRoundTrip(t *testing.T) {
	bus := NewBus("test.events")
	t.Cleanup(func() { bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	messages, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, New(LanguageCreated, map[string]interface{}{"name": "Towns"})))

	select {
	case msg := <-messages:
		msg.Ack()
		event, err := Decode(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, LanguageCreated, event.EventType())
		assert.Equal(t, "Towns", event.Payload()["name"])
		assert.False(t, event.Timestamp().IsZero())
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}

func TestDecodeRejectsUntyped(t *testing.T) {
	_, err := Decode([]byte(`{"data":{}}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
