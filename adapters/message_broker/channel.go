package message_broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/playground/domain"
	"github.com/satriahrh/cocoa-fruit/playground/utils/log"
)

const subscriberBuffer = 100

type subscription struct {
	topic      string
	routingKey string
	ch         chan domain.Message
}

func (s *subscription) matches(topic, routingKey string) bool {
	return s.topic == topic && (s.routingKey == "" || s.routingKey == routingKey)
}

// ChannelMessageBroker implements MessageBroker using Go channels. Every
// subscriber gets its own buffered channel; a subscriber that does not keep
// up loses messages instead of blocking publishers.
type ChannelMessageBroker struct {
	mu     sync.RWMutex
	subs   map[*subscription]struct{}
	closed bool
}

// NewChannelMessageBroker creates a new channel-based message broker
func NewChannelMessageBroker() *ChannelMessageBroker {
	return &ChannelMessageBroker{
		subs: make(map[*subscription]struct{}),
	}
}

// Publish delivers a message to every matching subscriber.
func (b *ChannelMessageBroker) Publish(ctx context.Context, topic string, routingKey string, message []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("message broker is closed")
	}

	msg := domain.Message{
		Topic:      topic,
		RoutingKey: routingKey,
		Payload:    message,
		Timestamp:  time.Now(),
	}

	delivered, dropped := 0, 0
	for sub := range b.subs {
		if !sub.matches(topic, routingKey) {
			continue
		}
		select {
		case sub.ch <- msg:
			delivered++
		case <-ctx.Done():
			return ctx.Err()
		default:
			dropped++
		}
	}

	log.WithCtx(ctx).Debug("message published",
		zap.String("topic", topic),
		zap.String("routing_key", routingKey),
		zap.Int("payload_size", len(message)),
		zap.Int("delivered", delivered))
	if dropped > 0 {
		return fmt.Errorf("%d subscriber(s) of %s:%s are full", dropped, topic, routingKey)
	}
	return nil
}

// Subscribe listens on a topic until ctx is done. An empty routingKey
// receives every routing key of the topic.
func (b *ChannelMessageBroker) Subscribe(ctx context.Context, topic string, routingKey string) (<-chan domain.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("message broker is closed")
	}

	sub := &subscription{topic: topic, routingKey: routingKey, ch: make(chan domain.Message, subscriberBuffer)}
	b.subs[sub] = struct{}{}

	go func() {
		<-ctx.Done()
		b.unsubscribe(sub)
	}()

	log.WithCtx(ctx).Debug("subscribed to topic", zap.String("topic", topic), zap.String("routing_key", routingKey))
	return sub.ch, nil
}

func (b *ChannelMessageBroker) unsubscribe(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// Close closes the message broker and all subscriber channels
func (b *ChannelMessageBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for sub := range b.subs {
		close(sub.ch)
	}
	b.subs = make(map[*subscription]struct{})

	log.WithCtx(context.Background()).Info("message broker closed")
	return nil
}

// SubscriberCount returns the number of live subscriptions (useful for monitoring)
func (b *ChannelMessageBroker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// IsClosed returns whether the broker is closed
func (b *ChannelMessageBroker) IsClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}
