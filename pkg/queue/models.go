package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/game"
)

// RequestType identifies the type of request in the queue
type RequestType string

const (
	// RequestTypeGameEvent is a gameplay event to apply to a session
	RequestTypeGameEvent RequestType = "game_event"

	// RequestTypeSweep asks the worker to expire stale encounters for a session
	RequestTypeSweep RequestType = "sweep"
)

// Request represents a unified request in the queue
type Request struct {
	RequestID string      `json:"request_id"`
	Type      RequestType `json:"type"`
	SessionID uuid.UUID   `json:"session_id"`

	// Game event-specific payload
	Event *game.Envelope `json:"event,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewGameEventRequest wraps a gameplay event for queueing.
func NewGameEventRequest(sessionID uuid.UUID, env game.Envelope) *Request {
	return &Request{
		RequestID:  uuid.NewString(),
		Type:       RequestTypeGameEvent,
		SessionID:  sessionID,
		Event:      &env,
		EnqueuedAt: time.Now(),
	}
}

// MarshalJSON serializes the request to JSON for Redis storage
func (r *Request) MarshalJSON() ([]byte, error) {
	type Alias Request
	return json.Marshal(&struct {
		SessionID string `json:"session_id"`
		*Alias
	}{
		SessionID: r.SessionID.String(),
		Alias:     (*Alias)(r),
	})
}

// UnmarshalJSON deserializes the request from JSON in Redis
func (r *Request) UnmarshalJSON(data []byte) error {
	type Alias Request
	aux := &struct {
		SessionID string `json:"session_id"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	sessionID, err := uuid.Parse(aux.SessionID)
	if err != nil {
		return err
	}

	r.SessionID = sessionID
	return nil
}

// ToJSON converts the request to JSON bytes for Redis
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
