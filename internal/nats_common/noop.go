package nats_common

import "context"

// NoopMessaging drops every message. It is used when NATS is disabled.
type NoopMessaging struct{}

var _ MessagingPort = NoopMessaging{}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() error { return nil }

func (NoopMessaging) Connect() error    { return nil }
func (NoopMessaging) Close() error      { return nil }
func (NoopMessaging) IsConnected() bool { return false }

func (NoopMessaging) Publish(string, []byte) error { return nil }

func (NoopMessaging) PublishMessage(context.Context, string, interface{}) error { return nil }

func (NoopMessaging) Subscribe(string, func([]byte)) (Subscription, error) {
	return noopSubscription{}, nil
}

func (NoopMessaging) EnsureStream(context.Context, string, []string) error { return nil }
