package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDatasetSeeded   EventType = "dataset_seeded"
	EventDatasetReloaded EventType = "dataset_reloaded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// DatasetSeededPayload describes a completed bulk load.
type DatasetSeededPayload struct {
	Source        string `json:"source"`
	Customers     int    `json:"customers"`
	Employees     int    `json:"employees"`
	IncidentTypes int    `json:"incident_types"`
	Tickets       int    `json:"tickets"`
	Contacts      int    `json:"contacts"`
	BackFilled    int64  `json:"back_filled"`
}

// DatasetReloadedPayload describes a fresh in-memory snapshot.
type DatasetReloadedPayload struct {
	Tickets  int       `json:"tickets"`
	Flagged  int       `json:"flagged"`
	LoadedAt time.Time `json:"loaded_at"`
}
