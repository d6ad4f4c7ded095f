package encounter

import (
	"math"
	"time"
)

// ScoreFloorAny marks a table entry with no reputation requirement.
const ScoreFloorAny = math.MinInt32

// InventoryItem is one stack in a generated NPC's trade inventory.
type InventoryItem struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// NPCData is a generated, disposable encounter NPC. It lives only as long
// as its encounter plus the bounded encounter log; there is no cross-session
// identity.
type NPCData struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Archetype     string          `json:"archetype"`
	Personality   string          `json:"personality"`
	SpeakingStyle string          `json:"speaking_style"`
	CanTrade      bool            `json:"can_trade"`
	Inventory     []InventoryItem `json:"inventory,omitempty"`
	Gold          int             `json:"gold,omitempty"`
}

// ContextKind names which scheduler entry point produced an encounter.
type ContextKind string

const (
	ContextTravel     ContextKind = "travel"
	ContextArrival    ContextKind = "arrival"
	ContextWorldEvent ContextKind = "world_event"
)

// Context describes the circumstances an encounter was generated under.
type Context struct {
	Kind       ContextKind `json:"kind"`
	From       string      `json:"from,omitempty"`
	To         string      `json:"to,omitempty"`
	LocationID string      `json:"location_id,omitempty"`
	EventKind  string      `json:"event_kind,omitempty"`
	Danger     float64     `json:"danger,omitempty"`
}

// Status tracks an encounter through its state machine:
// none → active → {dismissed | ended | expired}.
type Status string

const (
	StatusActive    Status = "active"
	StatusDismissed Status = "dismissed"
	StatusEnded     Status = "ended"
	StatusExpired   Status = "expired"
)

// Resolution is the presentation collaborator's answer for an encounter.
type Resolution string

const (
	ResolutionTalk   Resolution = "talk"
	ResolutionTrade  Resolution = "trade"
	ResolutionIgnore Resolution = "ignore"
)

// ValidResolution reports whether r is one of talk, trade, or ignore.
func ValidResolution(r Resolution) bool {
	return r == ResolutionTalk || r == ResolutionTrade || r == ResolutionIgnore
}

// ActiveEncounter is a presented, not-yet-resolved encounter.
type ActiveEncounter struct {
	ID        string    `json:"id"`
	NPC       NPCData   `json:"npc"`
	Context   Context   `json:"context"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`

	// PriorClockSpeed is the game-clock speed to restore when this
	// encounter leaves the active state, so a game that was already
	// paused is not silently resumed.
	PriorClockSpeed float64 `json:"prior_clock_speed"`
}

// StaleAfter is the age at which the sweep expires an active encounter.
const StaleAfter = time.Hour

// LogLimit bounds the encounter history log.
const LogLimit = 50

// LogEntry is one line of the bounded encounter history.
type LogEntry struct {
	EncounterID string     `json:"encounter_id"`
	NPCName     string     `json:"npc_name"`
	Archetype   string     `json:"archetype"`
	Context     Context    `json:"context"`
	Timestamp   time.Time  `json:"timestamp"`
	Resolution  Resolution `json:"resolution,omitempty"`
}
