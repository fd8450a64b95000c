package nats_common

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
)

const connectTimeout = 5 * time.Second

// NATSAdapter implements MessagingPort on a NATS connection, publishing
// through JetStream when a stream is configured
type NATSAdapter struct {
	Conn   *nats.Conn
	JS     jetstream.JetStream
	Config NATSConfig
	Logger *internal.Logger

	mu      sync.RWMutex
	streams map[string]jetstream.Stream
}

var _ MessagingPort = (*NATSAdapter)(nil)

// NewNATSAdapter creates an adapter; call Connect before publishing
func NewNATSAdapter(config NATSConfig, logger *internal.Logger) *NATSAdapter {
	if logger == nil {
		logger = internal.GetLogger()
	}
	return &NATSAdapter{
		Config:  config,
		Logger:  logger,
		streams: make(map[string]jetstream.Stream),
	}
}

// Connect dials the server and, when configured, ensures the event stream
func (a *NATSAdapter) Connect() error {
	a.Logger.Debug(internal.ComponentNATS, "Connecting to NATS at %s as %s", a.Config.ServerURL, a.Config.ClientID)

	opts := []nats.Option{
		nats.Name(a.Config.ClientID),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			a.Logger.Error(internal.ComponentNATS, "NATS error: %v", err)
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				a.Logger.Warn(internal.ComponentNATS, "Disconnected from NATS server: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			a.Logger.Info(internal.ComponentNATS, "Reconnected to NATS server %s", nc.ConnectedUrl())
		}),
	}
	opts = append(opts, ApplyNATSAuthOptions(a.Config.Username, a.Config.Password, a.Config.Token)...)

	nc, err := nats.Connect(a.Config.ServerURL, opts...)
	if err != nil {
		a.Logger.Error(internal.ComponentNATS, "Connection failed: %v", err)
		return fmt.Errorf("NATS connection failed: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	a.mu.Lock()
	a.Conn = nc
	a.JS = js
	a.mu.Unlock()
	a.Logger.Info(internal.ComponentNATS, "Successfully connected to NATS server")

	if a.Config.StreamName != "" {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := a.EnsureStream(ctx, a.Config.StreamName, a.Config.Subjects); err != nil {
			nc.Close()
			return err
		}
	}
	return nil
}

// Close drains and closes the connection
func (a *NATSAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.Conn == nil {
		return nil
	}
	err := a.Conn.Drain()
	if err != nil {
		a.Conn.Close()
	}
	a.Conn = nil
	return err
}

// IsConnected reports whether the connection is up
func (a *NATSAdapter) IsConnected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Conn != nil && a.Conn.IsConnected()
}

// EnsureStream creates the stream or updates its subjects
func (a *NATSAdapter) EnsureStream(ctx context.Context, name string, subjects []string) error {
	a.mu.RLock()
	js := a.JS
	a.mu.RUnlock()
	if js == nil {
		return fmt.Errorf("not connected to NATS")
	}

	a.Logger.Debug(internal.ComponentNATS, "Ensuring stream %s exists with subjects: %v", name, subjects)
	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      name,
		Subjects:  subjects,
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure stream %s: %w", name, err)
	}

	a.mu.Lock()
	a.streams[name] = stream
	a.mu.Unlock()
	return nil
}

// Publish publishes raw data on a core NATS subject
func (a *NATSAdapter) Publish(subject string, data []byte) error {
	a.mu.RLock()
	nc := a.Conn
	a.mu.RUnlock()
	if nc == nil {
		return fmt.Errorf("not connected to NATS")
	}

	a.Logger.Debug(internal.ComponentNATS, "Publishing message to subject: %s (size: %d bytes)", subject, len(data))
	if err := nc.Publish(subject, data); err != nil {
		a.Logger.Error(internal.ComponentNATS, "Failed to publish message to %s: %v", subject, err)
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// PublishMessage publishes data as JSON. With a stream configured the
// message goes through JetStream and waits for the stream ack.
func (a *NATSAdapter) PublishMessage(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal message data: %w", err)
	}

	a.mu.RLock()
	js := a.JS
	_, streamReady := a.streams[a.Config.StreamName]
	a.mu.RUnlock()

	if js == nil || !streamReady {
		return a.Publish(subject, payload)
	}

	ack, err := js.Publish(ctx, subject, payload)
	if err != nil {
		a.Logger.Error(internal.ComponentNATS, "Failed to publish to stream subject %s: %v", subject, err)
		return fmt.Errorf("failed to publish to stream subject %s: %w", subject, err)
	}
	a.Logger.Debug(internal.ComponentNATS, "Published to %s with sequence %d", subject, ack.Sequence)
	return nil
}

// Subscribe subscribes to a core NATS subject
func (a *NATSAdapter) Subscribe(subject string, callback func([]byte)) (Subscription, error) {
	a.mu.RLock()
	nc := a.Conn
	a.mu.RUnlock()
	if nc == nil {
		return nil, fmt.Errorf("not connected to NATS")
	}

	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		callback(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	a.Logger.Debug(internal.ComponentNATS, "Subscribed to subject: %s", subject)
	return sub, nil
}
