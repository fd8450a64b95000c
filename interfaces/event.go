package interfaces

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// Ledger events
	EventTypeRecordAppended EventType = "ledger.record.appended"

	// Bank events
	EventTypeAtmDeposit EventType = "bank.atm.deposit"

	// System events
	EventTypeStatus EventType = "system.status"
)

// Event is the envelope published for every ledger change
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	ClientID  string                 `json:"client_id,omitempty"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, source string) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      make(map[string]interface{}),
	}
}

// WithClientID sets the publishing client
func (e *Event) WithClientID(clientID string) *Event {
	e.ClientID = clientID
	return e
}

// WithData adds data to the event
func (e *Event) WithData(key string, value interface{}) *Event {
	e.Data[key] = value
	return e
}

// Subject returns the subject the event is published on below prefix
func (e *Event) Subject(prefix string) string {
	if prefix == "" {
		return string(e.Type)
	}
	return prefix + "." + string(e.Type)
}

func (e *Event) String() string {
	jsonData, err := json.Marshal(e)
	if err != nil {
		return "Error serializing event"
	}
	return string(jsonData)
}
