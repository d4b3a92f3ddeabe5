package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// GoChannelEventPublisher is the in-process publisher used when no Kafka
// brokers are configured (local development, single-node deployments).
type GoChannelEventPublisher struct {
	pubsub *gochannel.GoChannel
	topic  string
	logger *slog.Logger
}

func NewGoChannelEventPublisher(topic string, logger *slog.Logger) *GoChannelEventPublisher {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)

	return &GoChannelEventPublisher{
		pubsub: pubsub,
		topic:  topic,
		logger: logger,
	}
}

// Subscribe exposes the underlying channel so in-process consumers can drain
// the event stream.
func (p *GoChannelEventPublisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return p.pubsub.Subscribe(ctx, p.topic)
}

func (p *GoChannelEventPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.Type)

	if err := p.pubsub.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	return nil
}

func (p *GoChannelEventPublisher) Close() error {
	return p.pubsub.Close()
}
