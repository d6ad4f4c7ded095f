package reputation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/random"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingNotifier struct {
	changed  []string
	tierFrom []string
	tierTo   []string
	promoted []bool
	unlocked []string
}

func (n *recordingNotifier) ReputationChanged(actionID string, delta, newTotal int, tierID string) {
	n.changed = append(n.changed, fmt.Sprintf("%s:%d:%d:%s", actionID, delta, newTotal, tierID))
}

func (n *recordingNotifier) TierChanged(previous, next Tier, isPromotion bool) {
	n.tierFrom = append(n.tierFrom, previous.ID)
	n.tierTo = append(n.tierTo, next.ID)
	n.promoted = append(n.promoted, isPromotion)
}

func (n *recordingNotifier) AccessUnlocked(tag string) {
	n.unlocked = append(n.unlocked, tag)
}

type fakeCurrency struct {
	balance int
}

func (c *fakeCurrency) CanAfford(amount int) bool { return c.balance >= amount }

func (c *fakeCurrency) Debit(amount int) error {
	if c.balance < amount {
		return errors.New("overdrawn")
	}
	c.balance -= amount
	return nil
}

func newTestLedger() (*Ledger, *recordingNotifier) {
	n := &recordingNotifier{}
	l := NewLedger(DefaultTierCatalog(), DefaultActionCatalog(), random.NewSource(1), testLogger()).
		WithNotifier(n)
	return l, n
}

func TestModifyReputation_WithinTier(t *testing.T) {
	// Scenario: deep in the villain tier, a small positive action does
	// not cross the boundary and no tier-change event fires.
	l, n := newTestLedger()
	l.Restore(State{Reputation: -600})

	delta := l.ModifyReputation("quest_completed", 1, "")
	if delta != 15 {
		t.Errorf("expected delta 15, got %d", delta)
	}
	if l.Score() != -585 {
		t.Errorf("expected score -585, got %d", l.Score())
	}
	if l.CurrentTier().ID != "villain" {
		t.Errorf("expected villain tier, got %s", l.CurrentTier().ID)
	}
	if len(n.tierTo) != 0 {
		t.Errorf("expected no tier-change event, got %v", n.tierTo)
	}
	if len(n.changed) != 1 {
		t.Errorf("expected one reputation-changed event, got %d", len(n.changed))
	}
}

func TestModifyReputation_CrossesTierBoundary(t *testing.T) {
	// Scenario: one point inside villain, the same action promotes into
	// criminal and the tier-change event carries isPromotion=true.
	l, n := newTestLedger()
	l.Restore(State{Reputation: -501})

	l.ModifyReputation("quest_completed", 1, "")
	if l.Score() != -486 {
		t.Errorf("expected score -486, got %d", l.Score())
	}
	if l.CurrentTier().ID != "criminal" {
		t.Errorf("expected criminal tier, got %s", l.CurrentTier().ID)
	}
	if len(n.tierTo) != 1 || n.tierTo[0] != "criminal" || n.tierFrom[0] != "villain" {
		t.Fatalf("expected villain->criminal tier change, got from=%v to=%v", n.tierFrom, n.tierTo)
	}
	if !n.promoted[0] {
		t.Error("expected isPromotion=true")
	}
}

func TestModifyReputation_FactionAmplification(t *testing.T) {
	l, _ := newTestLedger()

	// Legendary tier has faction bonus 0.30: +15 becomes round(19.5) = 20.
	l.Restore(State{Reputation: 600})
	if delta := l.ModifyReputation("quest_completed", 1, ""); delta != 20 {
		t.Errorf("expected amplified delta 20, got %d", delta)
	}

	// Villain tier has faction penalty 0.50: -10 becomes -15. The
	// pre-mutation tier decides the amplification.
	l.Restore(State{Reputation: -600})
	if delta := l.ModifyReputation("quest_failed", 1, ""); delta != -15 {
		t.Errorf("expected amplified delta -15, got %d", delta)
	}
}

func TestModifyReputation_UnknownAction(t *testing.T) {
	l, n := newTestLedger()
	l.Restore(State{Reputation: 50})

	delta := l.ModifyReputation("stole_the_moon", 1, "")
	if delta != 0 {
		t.Errorf("expected zero delta, got %d", delta)
	}
	if l.Score() != 50 {
		t.Errorf("expected unchanged score, got %d", l.Score())
	}
	if len(n.changed) != 0 {
		t.Error("unknown action must not emit events")
	}
	if len(l.Snapshot().History) != 0 {
		t.Error("unknown action must not append history")
	}
}

func TestModifyReputation_LocationDelta(t *testing.T) {
	l, _ := newTestLedger()

	l.ModifyReputation("quest_completed", 1, "riverstead")
	l.ModifyReputation("theft", 1, "thornmoor")

	if got := l.LocationScore("riverstead"); got != 15 {
		t.Errorf("expected riverstead delta 15, got %d", got)
	}
	if got := l.LocationScore("thornmoor"); got != -15 {
		t.Errorf("expected thornmoor delta -15, got %d", got)
	}
}

func TestHistory_FIFOBound(t *testing.T) {
	l, _ := newTestLedger()

	for i := 0; i < 120; i++ {
		l.ModifyReputation("npc_interacted", 1, "")
	}

	hist := l.Snapshot().History
	if len(hist) != HistoryLimit {
		t.Fatalf("expected history capped at %d, got %d", HistoryLimit, len(hist))
	}
	// The oldest 20 entries were evicted; the first surviving entry is
	// the 21st applied, whose running total reflects 21 applications.
	if hist[0].NewTotal != 21 {
		t.Errorf("expected oldest surviving entry total 21, got %d", hist[0].NewTotal)
	}
	if hist[len(hist)-1].NewTotal != l.Score() {
		t.Errorf("expected newest entry total %d, got %d", l.Score(), hist[len(hist)-1].NewTotal)
	}
}

func TestPriceModifier_LocalAdjustment(t *testing.T) {
	l, _ := newTestLedger()
	l.Restore(State{
		Reputation: 0,
		LocationReputation: map[string]int{
			"beloved":  300,
			"friendly": 150,
			"vilified": -300,
			"wary":     -150,
			"plain":    10,
		},
	})

	base := l.CurrentTier().Effects.PriceModifier

	if got := l.PriceModifier("beloved"); got != base*0.90 {
		t.Errorf("beloved: expected %.4f, got %.4f", base*0.90, got)
	}
	if got := l.PriceModifier("friendly"); got != base*0.95 {
		t.Errorf("friendly: expected %.4f, got %.4f", base*0.95, got)
	}
	if l.PriceModifier("beloved") >= l.PriceModifier("friendly") {
		t.Error("a >250 location must price strictly below a (100,250] location")
	}
	if got := l.PriceModifier("vilified"); got != base*1.20 {
		t.Errorf("vilified: expected %.4f, got %.4f", base*1.20, got)
	}
	if got := l.PriceModifier("wary"); got != base*1.10 {
		t.Errorf("wary: expected %.4f, got %.4f", base*1.10, got)
	}
	if got := l.PriceModifier("plain"); got != base {
		t.Errorf("plain: expected %.4f, got %.4f", base, got)
	}
}

func TestAddBounty_ScaledByTier(t *testing.T) {
	l, _ := newTestLedger()

	// Villain tier doubles bounties.
	l.Restore(State{Reputation: -600})
	added := l.AddBounty(50, "assault on a guard")
	if added != 100 {
		t.Errorf("expected scaled bounty 100, got %d", added)
	}
	if l.Bounty() != 100 {
		t.Errorf("expected total 100, got %d", l.Bounty())
	}

	records := l.Snapshot().ActiveBounties
	if len(records) != 1 || records[0].Amount != 100 {
		t.Errorf("expected one record of 100, got %+v", records)
	}
}

func TestPayBounty_InsufficientFunds(t *testing.T) {
	l, _ := newTestLedger()
	wallet := &fakeCurrency{balance: 10}
	l.WithCurrency(wallet)
	l.Restore(State{Reputation: 0, Bounty: 30})

	err := l.PayBounty(50)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if l.Bounty() != 30 {
		t.Errorf("bounty must be unchanged on failure, got %d", l.Bounty())
	}
	if wallet.balance != 10 {
		t.Errorf("wallet must be unchanged on failure, got %d", wallet.balance)
	}
}

func TestPayBounty_Success(t *testing.T) {
	l, _ := newTestLedger()
	wallet := &fakeCurrency{balance: 100}
	l.WithCurrency(wallet)
	l.Restore(State{Reputation: 0, Bounty: 30, ActiveBounties: []BountyRecord{{Amount: 30, Reason: "theft"}}})

	if err := l.PayBounty(50); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if l.Bounty() != 0 {
		t.Errorf("expected bounty floored at 0, got %d", l.Bounty())
	}
	if wallet.balance != 50 {
		t.Errorf("expected wallet debited to 50, got %d", wallet.balance)
	}
	if len(l.Snapshot().ActiveBounties) != 0 {
		t.Error("expected bounty records cleared when fully paid")
	}
}

func TestAccessUnlocked_OnPromotion(t *testing.T) {
	l, n := newTestLedger()
	l.Restore(State{Reputation: 95})

	// liked -> respected unlocks guild_hall (market_stalls already held).
	l.ModifyReputation("quest_completed", 1, "")
	if l.CurrentTier().ID != "respected" {
		t.Fatalf("expected respected tier, got %s", l.CurrentTier().ID)
	}
	if len(n.unlocked) != 1 || n.unlocked[0] != "guild_hall" {
		t.Errorf("expected only guild_hall unlocked, got %v", n.unlocked)
	}
}

func TestState_RoundTrip(t *testing.T) {
	l, _ := newTestLedger()
	l.ModifyReputation("quest_completed", 2, "riverstead")
	l.ModifyReputation("theft", 1, "thornmoor")
	l.AddBounty(40, "caught stealing")

	data, err := json.Marshal(l.Snapshot())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var restored State
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	l2, _ := newTestLedger()
	l2.Restore(restored)

	if l2.Score() != l.Score() {
		t.Errorf("score mismatch: %d vs %d", l2.Score(), l.Score())
	}
	if l2.Bounty() != l.Bounty() {
		t.Errorf("bounty mismatch: %d vs %d", l2.Bounty(), l.Bounty())
	}
	if len(l2.Snapshot().History) != len(l.Snapshot().History) {
		t.Error("history length mismatch after round trip")
	}
	if l2.LocationScore("riverstead") != l.LocationScore("riverstead") {
		t.Error("location reputation mismatch after round trip")
	}
}

func TestRestore_PartialState(t *testing.T) {
	l, _ := newTestLedger()
	l.Restore(State{Reputation: 42, Bounty: -5})

	if l.Score() != 42 {
		t.Errorf("expected score 42, got %d", l.Score())
	}
	if l.Bounty() != 0 {
		t.Errorf("negative bounty should default to 0, got %d", l.Bounty())
	}

	// Missing maps and slices come back usable.
	l.ModifyReputation("quest_completed", 1, "riverstead")
	if l.LocationScore("riverstead") != 15 {
		t.Error("location map should be usable after partial restore")
	}
}
