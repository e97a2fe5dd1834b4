// FILE: internal/service/consumer_service.go
package service

import (
	"context"

	"pattern-sphere-be/internal/pkg/logger"
	"pattern-sphere-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process bus into the delivery sinks
// (NATS, the websocket feed).
type consumerService struct {
	bus    *events.Bus
	sinks  events.Publisher
	logger logger.ILogger
}

func NewConsumerService(bus *events.Bus, sinks events.Publisher, log logger.ILogger) IConsumerService {
	return &consumerService{
		bus:    bus,
		sinks:  sinks,
		logger: log,
	}
}

// Consume subscribes and returns; delivery runs until ctx ends.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Ack regardless: a failed sink must not stall the bus.
	defer msg.Ack()

	event, err := events.Decode(msg.Payload)
	if err != nil {
		cs.logger.Error("CONSUMER", "Malformed event on bus", map[string]interface{}{"message_id": msg.UUID, "error": err.Error()})
		return
	}
	if cs.sinks == nil {
		return
	}
	if err := cs.sinks.Publish(ctx, event); err != nil {
		cs.logger.Warn("CONSUMER", "Event delivery failed", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
	}
}
