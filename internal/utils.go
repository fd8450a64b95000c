package internal

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// GenerateClientID names this process towards the message broker
func GenerateClientID() string {
	hostname, err := os.Hostname()
	if err != nil {
		GetLogger().Warn(ComponentGeneral, "Error getting hostname: %v", err)
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%s-%s", DefaultAppName, hostname, uuid.New().String()[:8])
}
