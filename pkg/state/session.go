// Package state defines the persisted shape of a game session: the
// reputation ledger snapshot plus the encounter scheduler snapshot.
package state

import (
	"time"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/reputation"
	"github.com/google/uuid"
)

// SessionState is one game session's persisted state. It round-trips
// exactly through save and load.
type SessionState struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// GameMinutes and ClockSpeed restore the game clock's reading.
	GameMinutes float64 `json:"game_minutes"`
	ClockSpeed  float64 `json:"clock_speed"`

	Reputation reputation.State `json:"reputation"`
	Encounters encounter.State  `json:"encounters"`
}

// NewSessionState returns the new-game state for a fresh session.
func NewSessionState() *SessionState {
	now := time.Now()
	return &SessionState{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		ClockSpeed: 1,
		Reputation: reputation.NewState(),
	}
}

// Normalize substitutes defaults for anything missing in a loaded state.
func (s *SessionState) Normalize() {
	s.Reputation.Normalize()
	if s.ClockSpeed < 0 {
		s.ClockSpeed = 0
	}
	if s.GameMinutes < 0 {
		s.GameMinutes = 0
	}
}
