package nats_common

//go:generate mockgen -destination=mocks/mock_messaging.go -source=messaging.go MessagingPort

import (
	"context"
)

// Subscription represents a subscription to a subject
type Subscription interface {
	Unsubscribe() error
}

// MessagingPort defines the interface for messaging systems
type MessagingPort interface {
	// Connection management
	Connect() error
	Close() error
	IsConnected() bool

	// Basic pub/sub
	Publish(subject string, data []byte) error
	PublishMessage(ctx context.Context, subject string, data interface{}) error
	Subscribe(subject string, callback func([]byte)) (Subscription, error)

	// EnsureStream makes sure a JetStream stream captures the given subjects
	EnsureStream(ctx context.Context, name string, subjects []string) error
}
