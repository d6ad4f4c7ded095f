package reputation

import "time"

// HistoryEntry records one applied reputation action.
type HistoryEntry struct {
	ActionID   string    `json:"action_id"`
	Delta      int       `json:"delta"`
	NewTotal   int       `json:"new_total"`
	Timestamp  time.Time `json:"timestamp"`
	LocationID string    `json:"location_id,omitempty"`
}

// BountyRecord is one accumulated bounty debt.
type BountyRecord struct {
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryLimit bounds the ledger history FIFO.
const HistoryLimit = 100

// State is the ledger's persisted shape. It round-trips exactly through
// save and load.
type State struct {
	Reputation         int            `json:"reputation"`
	Bounty             int            `json:"bounty"`
	History            []HistoryEntry `json:"history,omitempty"`
	LocationReputation map[string]int `json:"location_reputation,omitempty"`
	ActiveBounties     []BountyRecord `json:"active_bounties,omitempty"`
}

// Normalize substitutes per-field defaults for anything missing or
// malformed in a loaded state, so a partial save never aborts a load.
func (s *State) Normalize() {
	if s.Bounty < 0 {
		s.Bounty = 0
	}
	if s.History == nil {
		s.History = []HistoryEntry{}
	}
	if len(s.History) > HistoryLimit {
		s.History = s.History[len(s.History)-HistoryLimit:]
	}
	if s.LocationReputation == nil {
		s.LocationReputation = map[string]int{}
	}
	if s.ActiveBounties == nil {
		s.ActiveBounties = []BountyRecord{}
	}
}

// NewState returns the new-game state: score 0, no bounty, empty history.
func NewState() State {
	return State{
		History:            []HistoryEntry{},
		LocationReputation: map[string]int{},
		ActiveBounties:     []BountyRecord{},
	}
}
