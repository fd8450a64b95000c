// Package nats_common connects the ledger to a NATS server for event publishing.
package nats_common

import (
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
)

type NATSConfig struct {
	ServerURL  string
	StreamName string   // empty publishes on core NATS
	Subjects   []string // subjects captured by the stream
	ClientID   string
	Username   string
	Password   string
	Token      string
}

// NewNATSConfig builds the adapter configuration from the application config.
// The stream, if any, captures every subject below the configured prefix.
func NewNATSConfig(cfg *internal.Config) NATSConfig {
	c := NATSConfig{
		ServerURL:  cfg.NATS.URL,
		StreamName: cfg.NATS.Stream,
		ClientID:   internal.GenerateClientID(),
		Username:   cfg.NATS.Username,
		Password:   cfg.NATS.Password,
		Token:      cfg.NATS.Token,
	}
	if c.StreamName != "" {
		c.Subjects = []string{cfg.NATS.Subject + ".>"}
	}
	return c
}

// MatchSubject returns whether a subject matches a pattern with wildcard support.
// "*" matches exactly one token and a trailing ">" matches one or more.
func MatchSubject(pattern, subject string) bool {
	if pattern == subject {
		return true
	}

	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, p := range pt {
		if p == ">" {
			return i == len(pt)-1 && len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if p != "*" && p != st[i] {
			return false
		}
	}
	return len(pt) == len(st)
}

// ApplyNATSAuthOptions returns the connect options for the configured credentials
func ApplyNATSAuthOptions(username, password, token string) []nats.Option {
	opts := []nats.Option{}
	logger := internal.GetLogger()
	if username != "" && password != "" {
		opts = append(opts, nats.UserInfo(username, password))
		logger.Info(internal.ComponentNATS, "Using username/password authentication for NATS")
	} else if token != "" {
		opts = append(opts, nats.Token(token))
		logger.Info(internal.ComponentNATS, "Using token authentication for NATS")
	} else {
		logger.Debug(internal.ComponentNATS, "No authentication provided for NATS connection")
	}
	return opts
}
