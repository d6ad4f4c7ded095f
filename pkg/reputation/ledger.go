package reputation

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/random"
)

// ErrInsufficientFunds is returned by PayBounty when the currency
// collaborator cannot cover the payment. Nothing is mutated in that case.
var ErrInsufficientFunds = errors.New("insufficient funds to pay bounty")

// Notifier receives the ledger's output events. All methods are
// fire-and-forget from the ledger's point of view.
type Notifier interface {
	ReputationChanged(actionID string, delta, newTotal int, tierID string)
	TierChanged(previous, next Tier, isPromotion bool)
	AccessUnlocked(tag string)
}

// CurrencyLedger is the external economy collaborator consulted for
// bounty payments.
type CurrencyLedger interface {
	CanAfford(amount int) bool
	Debit(amount int) error
}

// Ledger holds the player's reputation standing: current score, bounded
// history, per-location deltas, and bounty. All mutation goes through its
// methods; callers never touch the score directly, or the history and
// tier-change invariants break.
type Ledger struct {
	tiers   *TierCatalog
	actions *ActionCatalog
	rng     random.Source
	logger  *slog.Logger

	// Optional collaborators. Nil means the capability is absent.
	notifier Notifier
	currency CurrencyLedger

	state State
	now   func() time.Time
}

// NewLedger creates a ledger at the new-game state.
func NewLedger(tiers *TierCatalog, actions *ActionCatalog, rng random.Source, logger *slog.Logger) *Ledger {
	return &Ledger{
		tiers:   tiers,
		actions: actions,
		rng:     rng,
		logger:  logger,
		state:   NewState(),
		now:     time.Now,
	}
}

// WithNotifier sets the output-event collaborator.
// Returns the Ledger for method chaining.
func (l *Ledger) WithNotifier(n Notifier) *Ledger {
	l.notifier = n
	return l
}

// WithCurrency sets the economy collaborator used for bounty payments.
// Returns the Ledger for method chaining.
func (l *Ledger) WithCurrency(c CurrencyLedger) *Ledger {
	l.currency = c
	return l
}

// Restore replaces the ledger's state with a loaded snapshot,
// substituting defaults for missing fields.
func (l *Ledger) Restore(s State) {
	s.Normalize()
	l.state = s
}

// Snapshot returns a deep copy of the persisted state.
func (l *Ledger) Snapshot() State {
	s := State{
		Reputation:         l.state.Reputation,
		Bounty:             l.state.Bounty,
		History:            make([]HistoryEntry, len(l.state.History)),
		LocationReputation: make(map[string]int, len(l.state.LocationReputation)),
		ActiveBounties:     make([]BountyRecord, len(l.state.ActiveBounties)),
	}
	copy(s.History, l.state.History)
	copy(s.ActiveBounties, l.state.ActiveBounties)
	for k, v := range l.state.LocationReputation {
		s.LocationReputation[k] = v
	}
	return s
}

// Score returns the current global reputation score.
func (l *Ledger) Score() int {
	return l.state.Reputation
}

// Bounty returns the current bounty total.
func (l *Ledger) Bounty() int {
	return l.state.Bounty
}

// LocationScore returns the accumulated local delta for a location.
func (l *Ledger) LocationScore(locationID string) int {
	return l.state.LocationReputation[locationID]
}

// CurrentTier returns the tier containing the current score.
func (l *Ledger) CurrentTier() Tier {
	return l.tiers.TierForScore(l.state.Reputation)
}

// ModifyReputation applies a catalog action to the score. The delta is
// baseDelta × multiplier, amplified by the current (pre-mutation) tier's
// faction coefficients: positive deltas by (1+FactionBonus), negative by
// (1+|FactionPenalty|), rounded to the nearest integer.
//
// If locationID is non-empty the delta also accrues to that location's
// local reputation. The applied delta is returned. An unknown actionID
// logs a warning and mutates nothing.
func (l *Ledger) ModifyReputation(actionID string, multiplier float64, locationID string) int {
	action, ok := l.actions.Lookup(actionID)
	if !ok {
		l.logger.Warn("Unknown reputation action", "action_id", actionID)
		return 0
	}
	if multiplier == 0 {
		multiplier = 1
	}

	oldTier := l.CurrentTier()

	raw := float64(action.BaseDelta) * multiplier
	if raw > 0 {
		raw *= 1 + oldTier.Effects.FactionBonus
	} else if raw < 0 {
		raw *= 1 + math.Abs(oldTier.Effects.FactionPenalty)
	}
	delta := int(math.Round(raw))

	l.state.Reputation += delta
	if locationID != "" {
		l.state.LocationReputation[locationID] += delta
	}

	l.state.History = append(l.state.History, HistoryEntry{
		ActionID:   actionID,
		Delta:      delta,
		NewTotal:   l.state.Reputation,
		Timestamp:  l.now(),
		LocationID: locationID,
	})
	if len(l.state.History) > HistoryLimit {
		l.state.History = l.state.History[len(l.state.History)-HistoryLimit:]
	}

	newTier := l.CurrentTier()

	if l.notifier != nil {
		l.notifier.ReputationChanged(actionID, delta, l.state.Reputation, newTier.ID)
	}

	if newTier.ID != oldTier.ID {
		isPromotion := newTier.MinScore > oldTier.MinScore
		l.logger.Info("Reputation tier changed",
			"previous", oldTier.ID,
			"new", newTier.ID,
			"promotion", isPromotion,
			"score", l.state.Reputation)
		if l.notifier != nil {
			l.notifier.TierChanged(oldTier, newTier, isPromotion)
			for _, tag := range newTier.Effects.SpecialAccess {
				if !oldTier.HasAccess(tag) {
					l.notifier.AccessUnlocked(tag)
				}
			}
		}
	}

	return delta
}

// PriceModifier returns the tier's base price modifier composed with a
// location-specific adjustment from the local reputation delta.
func (l *Ledger) PriceModifier(locationID string) float64 {
	mod := l.CurrentTier().Effects.PriceModifier
	if locationID == "" {
		return mod
	}

	local := l.state.LocationReputation[locationID]
	switch {
	case local > 250:
		mod *= 0.90
	case local > 100:
		mod *= 0.95
	case local < -250:
		mod *= 1.20
	case local < -100:
		mod *= 1.10
	}
	return mod
}

// AddBounty accrues a bounty debt, scaled by the current tier's bounty
// multiplier and rounded. Returns the scaled amount added.
func (l *Ledger) AddBounty(amount int, reason string) int {
	if amount <= 0 {
		return 0
	}

	scaled := int(math.Round(float64(amount) * l.CurrentTier().Effects.BountyMultiplier))
	l.state.Bounty += scaled
	l.state.ActiveBounties = append(l.state.ActiveBounties, BountyRecord{
		Amount:    scaled,
		Reason:    reason,
		Timestamp: l.now(),
	})

	l.logger.Info("Bounty added", "amount", scaled, "reason", reason, "total", l.state.Bounty)
	return scaled
}

// PayBounty pays down the bounty by amount. The external currency
// collaborator must confirm and debit the funds; on insufficient funds
// (or absent collaborator) nothing is mutated.
func (l *Ledger) PayBounty(amount int) error {
	if amount <= 0 {
		return nil
	}
	if l.currency == nil {
		l.logger.Warn("No currency ledger configured, cannot pay bounty")
		return ErrInsufficientFunds
	}
	if !l.currency.CanAfford(amount) {
		return ErrInsufficientFunds
	}
	if err := l.currency.Debit(amount); err != nil {
		return err
	}

	l.state.Bounty -= amount
	if l.state.Bounty <= 0 {
		l.state.Bounty = 0
		l.state.ActiveBounties = l.state.ActiveBounties[:0]
	}

	l.logger.Info("Bounty paid", "amount", amount, "remaining", l.state.Bounty)
	return nil
}
