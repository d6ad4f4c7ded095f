// Package game defines the closed set of game events the engine consumes.
package game

import (
	"encoding/json"
	"fmt"
)

// EventType tags the concrete event carried by an Envelope.
type EventType string

const (
	EventQuestCompleted     EventType = "quest_completed"
	EventQuestFailed        EventType = "quest_failed"
	EventCombatVictory      EventType = "combat_victory"
	EventLocationDiscovered EventType = "location_discovered"
	EventLocationEntered    EventType = "location_entered"
	EventNPCInteracted      EventType = "npc_interacted"
	EventTravelCompleted    EventType = "travel_completed"
	EventWorldEvent         EventType = "world_event"
)

// Event is the closed union of game events. Only types in this package
// implement it.
type Event interface {
	Type() EventType
}

// QuestCompleted carries the quest's difficulty multiplier applied to the
// reputation gain.
type QuestCompleted struct {
	Multiplier float64 `json:"multiplier"`
}

func (QuestCompleted) Type() EventType { return EventQuestCompleted }

type QuestFailed struct{}

func (QuestFailed) Type() EventType { return EventQuestFailed }

// CombatVictory reports the defeated enemy's archetype. The archetype
// decides whether the victory helps or harms the player's standing.
type CombatVictory struct {
	EnemyArchetype string `json:"enemy_archetype"`
}

func (CombatVictory) Type() EventType { return EventCombatVictory }

type LocationDiscovered struct {
	LocationID string `json:"location_id"`
}

func (LocationDiscovered) Type() EventType { return EventLocationDiscovered }

type LocationEntered struct {
	LocationID string `json:"location_id"`
}

func (LocationEntered) Type() EventType { return EventLocationEntered }

type NPCInteracted struct {
	NPCID string `json:"npc_id"`
}

func (NPCInteracted) Type() EventType { return EventNPCInteracted }

type TravelCompleted struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (TravelCompleted) Type() EventType { return EventTravelCompleted }

// WorldEvent reports an ambient world happening (festival, execution,
// caravan arrival) at a location.
type WorldEvent struct {
	LocationID string `json:"location_id"`
	EventKind  string `json:"event_kind"`
}

func (WorldEvent) Type() EventType { return EventWorldEvent }

// Envelope is the wire form of an Event: a type tag plus the event's own
// fields as payload. It is what handlers decode and the queue stores.
type Envelope struct {
	EventType EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Wrap serializes an event into an Envelope.
func Wrap(ev Event) (Envelope, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return Envelope{EventType: ev.Type(), Payload: payload}, nil
}

// Unwrap decodes the envelope back into its concrete event.
func (e Envelope) Unwrap() (Event, error) {
	var ev Event
	switch e.EventType {
	case EventQuestCompleted:
		ev = &QuestCompleted{}
	case EventQuestFailed:
		ev = &QuestFailed{}
	case EventCombatVictory:
		ev = &CombatVictory{}
	case EventLocationDiscovered:
		ev = &LocationDiscovered{}
	case EventLocationEntered:
		ev = &LocationEntered{}
	case EventNPCInteracted:
		ev = &NPCInteracted{}
	case EventTravelCompleted:
		ev = &TravelCompleted{}
	case EventWorldEvent:
		ev = &WorldEvent{}
	default:
		return nil, fmt.Errorf("unknown event type: %q", e.EventType)
	}

	if len(e.Payload) > 0 {
		if err := json.Unmarshal(e.Payload, ev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s payload: %w", e.EventType, err)
		}
	}

	// Return by value type, not pointer, so callers can type-switch on
	// the concrete structs.
	switch v := ev.(type) {
	case *QuestCompleted:
		return *v, nil
	case *QuestFailed:
		return *v, nil
	case *CombatVictory:
		return *v, nil
	case *LocationDiscovered:
		return *v, nil
	case *LocationEntered:
		return *v, nil
	case *NPCInteracted:
		return *v, nil
	case *TravelCompleted:
		return *v, nil
	case *WorldEvent:
		return *v, nil
	}
	return nil, fmt.Errorf("unhandled event type: %q", e.EventType)
}
