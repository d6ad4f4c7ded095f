package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Unity-Lab-AI/Trader-sub008/internal/services/events"
	"github.com/Unity-Lab-AI/Trader-sub008/internal/storage"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/game"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/random"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/reputation"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/state"
)

// ErrSessionNotFound is returned when a session id has no stored state.
var ErrSessionNotFound = fmt.Errorf("session not found")

// Manager loads sessions, runs events through a per-session Engine, and
// persists the result. Calls for the same session are serialized.
type Manager struct {
	storage     storage.Storage
	broadcaster *events.Broadcaster
	logger      *slog.Logger

	encounterCfg encounter.Config
	clockRate    float64
	world        map[string]encounter.Location

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewManager creates a session manager. broadcaster may be nil.
func NewManager(st storage.Storage, broadcaster *events.Broadcaster, cfg encounter.Config, clockRate float64, logger *slog.Logger) *Manager {
	return &Manager{
		storage:      st,
		broadcaster:  broadcaster,
		logger:       logger,
		encounterCfg: cfg,
		clockRate:    clockRate,
		world:        encounter.DefaultWorld(),
		locks:        make(map[uuid.UUID]*sync.Mutex),
	}
}

func (m *Manager) sessionLock(id uuid.UUID) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// CreateSession stores and returns a fresh session.
func (m *Manager) CreateSession(ctx context.Context) (*state.SessionState, error) {
	ss := state.NewSessionState()
	if err := m.storage.SaveSession(ctx, ss.ID, ss); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	m.logger.Info("Session created", "session_id", ss.ID)
	return ss, nil
}

// GetSession loads a session by id.
func (m *Manager) GetSession(ctx context.Context, id uuid.UUID) (*state.SessionState, error) {
	ss, err := m.storage.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if ss == nil {
		return nil, ErrSessionNotFound
	}
	return ss, nil
}

// DeleteSession removes a session and its lock.
func (m *Manager) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := m.storage.DeleteSession(ctx, id); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()
	return nil
}

// buildEngine assembles an Engine for a loaded session.
func (m *Manager) buildEngine(ctx context.Context, ss *state.SessionState, currency reputation.CurrencyLedger) (*Engine, error) {
	tiers, err := m.storage.GetTierCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tier catalog: %w", err)
	}
	actions, err := m.storage.GetActionCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load action catalog: %w", err)
	}
	catalog, err := m.storage.GetEncounterCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load encounter catalog: %w", err)
	}

	deps := EngineDeps{
		Tiers:     tiers,
		Actions:   actions,
		Catalog:   catalog,
		Config:    m.encounterCfg,
		ClockRate: m.clockRate,
		World:     m.world,
		RNG:       random.NewSource(time.Now().UnixNano()),
		Logger:    m.logger,
		Currency:  currency,
	}
	if m.broadcaster != nil {
		deps.Notifier = &broadcastNotifier{
			broadcaster: m.broadcaster,
			sessionID:   ss.ID,
			ctx:         ctx,
		}
	}
	return NewEngine(ss, deps), nil
}

// withSession runs fn against a locked, loaded session and persists the
// engine snapshot afterwards.
func (m *Manager) withSession(ctx context.Context, id uuid.UUID, currency reputation.CurrencyLedger, fn func(*Engine) error) (*state.SessionState, error) {
	lock := m.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	ss, err := m.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	eng, err := m.buildEngine(ctx, ss, currency)
	if err != nil {
		return nil, err
	}

	if err := fn(eng); err != nil {
		return nil, err
	}

	eng.Snapshot(ss)
	if err := m.storage.SaveSession(ctx, id, ss); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return ss, nil
}

// ApplyEvent applies one wrapped game event to a session.
func (m *Manager) ApplyEvent(ctx context.Context, id uuid.UUID, env game.Envelope) (*EventOutcome, *state.SessionState, error) {
	ev, err := env.Unwrap()
	if err != nil {
		return nil, nil, err
	}

	var out *EventOutcome
	ss, err := m.withSession(ctx, id, nil, func(eng *Engine) error {
		out, err = eng.HandleEvent(ev)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if m.broadcaster != nil && out.Encounter != nil {
		_ = m.broadcaster.PublishEncounterStarted(ctx, id,
			out.Encounter.ID, out.Encounter.NPC.Name, string(out.Encounter.Context.Kind))
	}
	return out, ss, nil
}

// ResolveEncounter ends an active encounter with a player resolution.
func (m *Manager) ResolveEncounter(ctx context.Context, id uuid.UUID, encounterID string, resolution encounter.Resolution) (*state.SessionState, error) {
	ss, err := m.withSession(ctx, id, nil, func(eng *Engine) error {
		return eng.ResolveEncounter(encounterID, resolution)
	})
	if err != nil {
		return nil, err
	}
	if m.broadcaster != nil {
		_ = m.broadcaster.PublishEncounterEnded(ctx, id, encounterID, string(resolution))
	}
	return ss, nil
}

// DismissEncounter removes an active encounter.
func (m *Manager) DismissEncounter(ctx context.Context, id uuid.UUID, encounterID string) (*state.SessionState, error) {
	ss, err := m.withSession(ctx, id, nil, func(eng *Engine) error {
		return eng.DismissEncounter(encounterID)
	})
	if err != nil {
		return nil, err
	}
	if m.broadcaster != nil {
		_ = m.broadcaster.PublishEncounterEnded(ctx, id, encounterID, string(encounter.StatusDismissed))
	}
	return ss, nil
}

// PayBounty pays down a session's bounty from the caller-supplied wallet.
// The engine does not own currency; the caller states what it can spend.
func (m *Manager) PayBounty(ctx context.Context, id uuid.UUID, amount int, wallet int) (*state.SessionState, int, error) {
	w := &walletCurrency{balance: wallet}
	ss, err := m.withSession(ctx, id, w, func(eng *Engine) error {
		return eng.PayBounty(amount)
	})
	if err != nil {
		return nil, wallet, err
	}
	return ss, w.balance, nil
}

// ExpireStale removes stale encounters for one session and returns their ids.
func (m *Manager) ExpireStale(ctx context.Context, id uuid.UUID) ([]string, error) {
	var expired []string
	_, err := m.withSession(ctx, id, nil, func(eng *Engine) error {
		expired = eng.ExpireStale()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}

// SweepAll expires stale encounters across every stored session.
func (m *Manager) SweepAll(ctx context.Context) error {
	ids, err := m.storage.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions for sweep: %w", err)
	}
	for _, id := range ids {
		expired, err := m.ExpireStale(ctx, id)
		if err != nil {
			m.logger.Error("Sweep failed for session", "session_id", id, "error", err)
			continue
		}
		if len(expired) > 0 {
			m.logger.Info("Expired stale encounters", "session_id", id, "count", len(expired))
		}
	}
	return nil
}

// walletCurrency is a one-shot currency ledger seeded from a request.
type walletCurrency struct {
	balance int
}

func (w *walletCurrency) CanAfford(amount int) bool { return w.balance >= amount }

func (w *walletCurrency) Debit(amount int) error {
	if amount > w.balance {
		return reputation.ErrInsufficientFunds
	}
	w.balance -= amount
	return nil
}

// broadcastNotifier adapts the event broadcaster to the ledger's
// Notifier interface.
type broadcastNotifier struct {
	broadcaster *events.Broadcaster
	sessionID   uuid.UUID
	ctx         context.Context
}

func (n *broadcastNotifier) ReputationChanged(actionID string, delta, newTotal int, tierID string) {
	_ = n.broadcaster.PublishReputationChanged(n.ctx, n.sessionID, actionID, delta, newTotal)
}

func (n *broadcastNotifier) TierChanged(previous, next reputation.Tier, isPromotion bool) {
	_ = n.broadcaster.PublishTierChanged(n.ctx, n.sessionID, previous.ID, next.ID, isPromotion)
}

func (n *broadcastNotifier) AccessUnlocked(tag string) {
	_ = n.broadcaster.PublishAccessUnlocked(n.ctx, n.sessionID, tag)
}
