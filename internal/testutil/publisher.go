package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/subledger/subledger/internal/publisher"
	"github.com/subledger/subledger/internal/types"
)

// PublishedEvent captures one event emitted during a test.
type PublishedEvent struct {
	Topic   string
	Payload []byte
}

// InMemoryPublisher records published events and feeds any subscribed
// channels, implementing publisher.Publisher without a broker.
type InMemoryPublisher struct {
	mu          sync.Mutex
	events      []PublishedEvent
	subscribers map[string][]chan *message.Message
}

var _ publisher.Publisher = (*InMemoryPublisher)(nil)

func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{
		subscribers: make(map[string][]chan *message.Message),
	}
}

func (p *InMemoryPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, PublishedEvent{Topic: topic, Payload: body})

	for _, ch := range p.subscribers[topic] {
		msg := message.NewMessage(types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT), body)
		msg.Metadata.Set("tenant_id", types.GetTenantID(ctx))
		msg.Metadata.Set("environment_id", types.GetEnvironmentID(ctx))
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (p *InMemoryPublisher) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan *message.Message, 16)
	p.subscribers[topic] = append(p.subscribers[topic], ch)
	return ch, nil
}

func (p *InMemoryPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, channels := range p.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	p.subscribers = make(map[string][]chan *message.Message)
	return nil
}

// Events returns the events published on topic, in order.
func (p *InMemoryPublisher) Events(topic string) []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result []PublishedEvent
	for _, event := range p.events {
		if event.Topic == topic {
			result = append(result, event)
		}
	}
	return result
}

func (p *InMemoryPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
