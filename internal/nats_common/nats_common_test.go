package nats_common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
)

func TestMatchSubject(t *testing.T) {
	tests := []struct {
		pattern string
		subject string
		want    bool
	}{
		{"firedragon.ledger.record", "firedragon.ledger.record", true},
		{"firedragon.>", "firedragon.ledger.record.appended", true},
		{"firedragon.>", "firedragon", false},
		{"firedragon.*.record", "firedragon.ledger.record", true},
		{"firedragon.*.record", "firedragon.ledger.deposit", false},
		{"firedragon.*", "firedragon.ledger.record", false},
		{">", "anything.at.all", true},
		{"bank.>", "firedragon.bank", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"~"+tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchSubject(tt.pattern, tt.subject))
		})
	}
}

func TestNewNATSConfig(t *testing.T) {
	cfg := &internal.Config{}
	cfg.NATS.URL = "nats://example:4222"
	cfg.NATS.Subject = "firedragon"
	cfg.NATS.Token = "secret"

	plain := NewNATSConfig(cfg)
	assert.Equal(t, "nats://example:4222", plain.ServerURL)
	assert.Empty(t, plain.Subjects)
	assert.NotEmpty(t, plain.ClientID)

	cfg.NATS.Stream = "LEDGER"
	streamed := NewNATSConfig(cfg)
	assert.Equal(t, "LEDGER", streamed.StreamName)
	assert.Equal(t, []string{"firedragon.>"}, streamed.Subjects)
}

func TestNATSAdapter_ConnectFailure(t *testing.T) {
	adapter := NewNATSAdapter(NATSConfig{ServerURL: "nats://127.0.0.1:1", ClientID: "test"}, nil)

	err := adapter.Connect()
	require.Error(t, err)
	assert.False(t, adapter.IsConnected())
	assert.Error(t, adapter.Publish("firedragon.test", []byte("x")))
	assert.NoError(t, adapter.Close())
}

func TestNoopMessaging(t *testing.T) {
	var m MessagingPort = NoopMessaging{}
	require.NoError(t, m.Connect())
	assert.False(t, m.IsConnected())
	assert.NoError(t, m.PublishMessage(context.Background(), "s", map[string]int{"a": 1}))
	sub, err := m.Subscribe("s", func([]byte) {})
	require.NoError(t, err)
	assert.NoError(t, sub.Unsubscribe())
}
