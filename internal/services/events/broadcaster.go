package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeReputationChanged EventType = "reputation.changed"
	EventTypeTierChanged       EventType = "reputation.tier_changed"
	EventTypeAccessUnlocked    EventType = "reputation.access_unlocked"
	EventTypeEncounterStarted  EventType = "encounter.presented"
	EventTypeEncounterEnded    EventType = "encounter.ended"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishReputationChanged publishes a reputation.changed event
func (b *Broadcaster) PublishReputationChanged(ctx context.Context, sessionID uuid.UUID, actionID string, delta int, newTotal int) error {
	event := Event{
		Type:      EventTypeReputationChanged,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"action":    actionID,
			"delta":     delta,
			"new_total": newTotal,
		},
	}
	return b.publishToSession(ctx, sessionID, event)
}

// PublishTierChanged publishes a reputation.tier_changed event
func (b *Broadcaster) PublishTierChanged(ctx context.Context, sessionID uuid.UUID, oldTier, newTier string, promotion bool) error {
	event := Event{
		Type:      EventTypeTierChanged,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"old_tier":  oldTier,
			"new_tier":  newTier,
			"promotion": promotion,
		},
	}
	return b.publishToSession(ctx, sessionID, event)
}

// PublishAccessUnlocked publishes a reputation.access_unlocked event
func (b *Broadcaster) PublishAccessUnlocked(ctx context.Context, sessionID uuid.UUID, accessTag string) error {
	event := Event{
		Type:      EventTypeAccessUnlocked,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"access": accessTag,
		},
	}
	return b.publishToSession(ctx, sessionID, event)
}

// PublishEncounterStarted publishes an encounter.presented event
func (b *Broadcaster) PublishEncounterStarted(ctx context.Context, sessionID uuid.UUID, encounterID string, npcName string, kind string) error {
	event := Event{
		Type:      EventTypeEncounterStarted,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"encounter_id": encounterID,
			"npc_name":     npcName,
			"kind":         kind,
		},
	}
	return b.publishToSession(ctx, sessionID, event)
}

// PublishEncounterEnded publishes an encounter.ended event
func (b *Broadcaster) PublishEncounterEnded(ctx context.Context, sessionID uuid.UUID, encounterID string, status string) error {
	event := Event{
		Type:      EventTypeEncounterEnded,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"encounter_id": encounterID,
			"status":       status,
		},
	}
	return b.publishToSession(ctx, sessionID, event)
}

// publishToSession publishes an event to the session-specific channel
func (b *Broadcaster) publishToSession(ctx context.Context, sessionID uuid.UUID, event Event) error {
	channel := fmt.Sprintf("session-events:%s", sessionID.String())

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}
