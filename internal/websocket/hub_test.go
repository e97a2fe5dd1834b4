package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pattern-sphere-be/internal/pkg/logger"
	"pattern-sphere-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHubPublishReachesClients(t *testing.T) {
	hub := runHub(t)
	a := &Client{Subject: "a", Send: make(chan []byte, 1)}
	b := &Client{Subject: "b", Send: make(chan []byte, 1)}
	hub.register <- a
	hub.register <- b
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), events.New(events.TemplateCreated, map[string]interface{}{"name": "Basic"})))

	for _, c := range []*Client{a, b} {
		select {
		case data := <-c.Send:
			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, events.TemplateCreated, got["type"])
		case <-time.After(time.Second):
			t.Fatalf("client %s received nothing", c.Subject)
		}
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := runHub(t)
	slow := &Client{Subject: "slow", Send: make(chan []byte)}
	hub.register <- slow
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), events.New(events.PatternDeleted, nil)))

	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-slow.Send
	assert.False(t, open)
}

func TestHubUnregisterTwice(t *testing.T) {
	hub := runHub(t)
	c := &Client{Subject: "c", Send: make(chan []byte, 1)}
	hub.register <- c
	hub.unregister <- c
	hub.unregister <- c

	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubDropReturnsAfterRunStops(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	returned := make(chan struct{})
	go func() {
		hub.drop(&Client{Subject: "late", Send: make(chan []byte)})
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("drop blocked after the hub stopped")
	}
}

func TestHubReceiveHandsRelayedEventsOn(t *testing.T) {
	hub := runHub(t)
	relayed := &events.Recorder{}
	hub.OnRelay(relayed)
	c := &Client{Subject: "c", Send: make(chan []byte, 2)}
	hub.register <- c
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	data, err := events.Marshal(events.New(events.FeatureDeleted, map[string]interface{}{"name": "body"}))
	require.NoError(t, err)

	own, err := json.Marshal(relayMessage{Origin: hub.origin, Message: data})
	require.NoError(t, err)
	hub.receive(context.Background(), own)
	assert.Empty(t, relayed.Types())

	other, err := json.Marshal(relayMessage{Origin: "elsewhere", Message: data})
	require.NoError(t, err)
	hub.receive(context.Background(), other)
	assert.Equal(t, []string{events.FeatureDeleted}, relayed.Types())
	assert.Len(t, c.Send, 1)

	hub.receive(context.Background(), []byte("not json"))
	assert.Len(t, relayed.Types(), 1)
}
