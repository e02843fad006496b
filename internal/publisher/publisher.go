package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/logger"
	"github.com/subledger/subledger/internal/types"
)

// Publisher is the billing event bus. Events are emitted after the owning
// transaction commits; consumers must tolerate at-least-once delivery.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

type eventBus struct {
	pubsub *gochannel.GoChannel
	log    *logger.Logger
}

// NewPublisher creates an in-process event bus backed by watermill's
// gochannel pub/sub.
func NewPublisher(log *logger.Logger) Publisher {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NopLogger{},
	)
	return &eventBus{
		pubsub: pubsub,
		log:    log,
	}
}

func (b *eventBus) Publish(ctx context.Context, topic string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal event payload").
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT), body)
	msg.Metadata.Set("tenant_id", types.GetTenantID(ctx))
	msg.Metadata.Set("environment_id", types.GetEnvironmentID(ctx))

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish event").
			WithReportableDetails(map[string]any{
				"topic": topic,
			}).
			Mark(ierr.ErrSystem)
	}

	b.log.Debugw("published event", "topic", topic, "message_id", msg.UUID)
	return nil
}

func (b *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to subscribe to topic").
			WithReportableDetails(map[string]any{
				"topic": topic,
			}).
			Mark(ierr.ErrSystem)
	}
	return messages, nil
}

func (b *eventBus) Close() error {
	return b.pubsub.Close()
}
