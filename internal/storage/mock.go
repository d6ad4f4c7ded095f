package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/reputation"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/state"
	"github.com/google/uuid"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*state.SessionState
	tiers     *reputation.TierCatalog
	actions   *reputation.ActionCatalog
	catalog   *encounter.Catalog
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage backed by the compiled-in
// default catalogs.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID]*state.SessionState),
		tiers:    reputation.DefaultTierCatalog(),
		actions:  reputation.DefaultActionCatalog(),
		catalog:  encounter.DefaultCatalog(),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on SaveSession with the given error
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveSession mocks saving a session
func (m *MockStorage) SaveSession(ctx context.Context, id uuid.UUID, ss *state.SessionState) error {
	if ss == nil {
		return errors.New("session state cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[id] = ss
	return nil
}

// LoadSession mocks loading a session
func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*state.SessionState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ss, exists := m.sessions[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return ss, nil
}

// DeleteSession mocks deleting a session
func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// ListSessions mocks listing session IDs
func (m *MockStorage) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

// SetTierCatalog replaces the tier catalog returned by the mock (for testing)
func (m *MockStorage) SetTierCatalog(c *reputation.TierCatalog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiers = c
}

// GetTierCatalog mocks loading the tier catalog
func (m *MockStorage) GetTierCatalog(ctx context.Context) (*reputation.TierCatalog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tiers, nil
}

// GetActionCatalog mocks loading the action catalog
func (m *MockStorage) GetActionCatalog(ctx context.Context) (*reputation.ActionCatalog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.actions, nil
}

// GetEncounterCatalog mocks loading the encounter catalog
func (m *MockStorage) GetEncounterCatalog(ctx context.Context) (*encounter.Catalog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.catalog, nil
}
