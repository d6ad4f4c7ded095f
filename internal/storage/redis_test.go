package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/state"
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	rs := NewRedisStorage(mr.Addr(), "./data", logger)
	t.Cleanup(func() {
		_ = rs.Close()
	})
	return rs, mr
}

func TestRedisStorage_SaveAndLoadSession(t *testing.T) {
	rs, _ := setupTestRedis(t)
	ctx := context.Background()

	ss := state.NewSessionState()
	ss.Reputation.Reputation = 42
	ss.GameMinutes = 90.5

	if err := rs.SaveSession(ctx, ss.ID, ss); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := rs.LoadSession(ctx, ss.ID)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil session")
	}
	if loaded.ID != ss.ID {
		t.Errorf("Expected ID %v, got %v", ss.ID, loaded.ID)
	}
	if loaded.Reputation.Reputation != 42 {
		t.Errorf("Expected reputation 42, got %d", loaded.Reputation.Reputation)
	}
	if loaded.GameMinutes != 90.5 {
		t.Errorf("Expected game minutes 90.5, got %v", loaded.GameMinutes)
	}
	if loaded.Reputation.History == nil {
		t.Error("Expected history to be normalized to non-nil")
	}
}

func TestRedisStorage_LoadNonExistentSession(t *testing.T) {
	rs, _ := setupTestRedis(t)

	loaded, err := rs.LoadSession(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error for missing session, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for missing session")
	}
}

func TestRedisStorage_DeleteSession(t *testing.T) {
	rs, _ := setupTestRedis(t)
	ctx := context.Background()

	ss := state.NewSessionState()
	if err := rs.SaveSession(ctx, ss.ID, ss); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	if err := rs.DeleteSession(ctx, ss.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}

	loaded, err := rs.LoadSession(ctx, ss.ID)
	if err != nil {
		t.Fatalf("Unexpected error after delete: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil after delete")
	}
}

func TestRedisStorage_ListSessions(t *testing.T) {
	rs, _ := setupTestRedis(t)
	ctx := context.Background()

	want := map[uuid.UUID]bool{}
	for i := 0; i < 3; i++ {
		ss := state.NewSessionState()
		if err := rs.SaveSession(ctx, ss.ID, ss); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}
		want[ss.ID] = true
	}

	ids, err := rs.ListSessions(ctx)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("Expected 3 session ids, got %d", len(ids))
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("Unexpected session id %v", id)
		}
	}
}

func TestRedisStorage_CatalogsFallBackToDefaults(t *testing.T) {
	rs, _ := setupTestRedis(t)
	ctx := context.Background()

	tiers, err := rs.GetTierCatalog(ctx)
	if err != nil {
		t.Fatalf("Failed to load tier catalog: %v", err)
	}
	if len(tiers.Tiers) != 9 {
		t.Errorf("Expected 9 tiers, got %d", len(tiers.Tiers))
	}

	actions, err := rs.GetActionCatalog(ctx)
	if err != nil {
		t.Fatalf("Failed to load action catalog: %v", err)
	}
	if _, ok := actions.Lookup("quest_completed"); !ok {
		t.Error("Expected quest_completed in default action catalog")
	}

	enc, err := rs.GetEncounterCatalog(ctx)
	if err != nil {
		t.Fatalf("Failed to load encounter catalog: %v", err)
	}
	if len(enc.Travel) == 0 {
		t.Error("Expected travel encounter tables in default catalog")
	}
}
