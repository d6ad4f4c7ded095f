package storage

import (
	"context"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/reputation"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/state"
	"github.com/google/uuid"
)

// Storage defines a unified interface for persistence: session state in
// the configured backend, catalogs from the filesystem data directory
// with compiled-in defaults.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session operations (backend-specific)
	SaveSession(ctx context.Context, id uuid.UUID, ss *state.SessionState) error
	LoadSession(ctx context.Context, id uuid.UUID) (*state.SessionState, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	ListSessions(ctx context.Context) ([]uuid.UUID, error)

	// Catalog operations (filesystem-backed, with built-in defaults)
	GetTierCatalog(ctx context.Context) (*reputation.TierCatalog, error)
	GetActionCatalog(ctx context.Context) (*reputation.ActionCatalog, error)
	GetEncounterCatalog(ctx context.Context) (*encounter.Catalog, error)
}
