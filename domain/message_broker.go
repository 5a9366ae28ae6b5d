package domain

import (
	"context"
	"time"
)

// SessionTopic carries SessionEvent payloads, routed by session id.
const SessionTopic = "playground.session"

// MessageBroker defines the interface for message broker operations
type MessageBroker interface {
	// Publish sends a message to a topic with a routing key
	Publish(ctx context.Context, topic string, routingKey string, message []byte) error

	// Subscribe returns a channel receiving the messages of a topic. An empty
	// routing key receives every routing key of the topic.
	Subscribe(ctx context.Context, topic string, routingKey string) (<-chan Message, error)

	// Close closes the message broker connection
	Close() error
}

// Message represents a message received from the broker
type Message struct {
	Topic      string
	RoutingKey string
	Payload    []byte
	Timestamp  time.Time
}
