package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type names a domain event.
type Type string

const (
	OrderCreated   Type = "order.created"
	OrderUpdated   Type = "order.updated"
	OrderCancelled Type = "order.cancelled"
)

// Envelope is the stable message body written to the orders topic.
type Envelope struct {
	Version     int             `json:"version"`
	EventID     uuid.UUID       `json:"eventId"`
	Type        Type            `json:"type"`
	AggregateID uuid.UUID       `json:"aggregateId"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Data        json.RawMessage `json:"data"`
}

// NewEnvelope marshals data into a version 1 envelope.
func NewEnvelope(eventType Type, aggregateID uuid.UUID, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Version:     1,
		EventID:     uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now().UTC(),
		Data:        raw,
	}, nil
}
