package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Bus is the in-process event channel between the services and the
// delivery sinks. Publish does not wait for subscribers, so events may
// reach a sink out of order; occurred_at is authoritative.
type Bus struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewBus(topic string) *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			watermill.NewStdLogger(false, false),
		),
		topic: topic,
	}
}

func (b *Bus) Publish(_ context.Context, event Event) error {
	data, err := Marshal(event)
	if err != nil {
		return err
	}
	return b.pubSub.Publish(b.topic, message.NewMessage(watermill.NewUUID(), data))
}

// Subscribe returns the bus messages; the channel closes with ctx.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, b.topic)
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
