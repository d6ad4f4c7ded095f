package encounter

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/random"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// manualClock is a hand-advanced GameClock for deterministic tests.
type manualClock struct {
	minutes float64
	speed   float64
}

func newManualClock() *manualClock { return &manualClock{speed: 1} }

func (c *manualClock) Minutes() float64       { return c.minutes }
func (c *manualClock) Speed() float64         { return c.speed }
func (c *manualClock) SetSpeed(speed float64) { c.speed = speed }
func (c *manualClock) Advance(m float64)      { c.minutes += m }

type fixedScore struct {
	score int
}

func (f fixedScore) Score() int { return f.score }

// alwaysSource forces every Bernoulli gate open and makes weighted picks
// deterministic.
type alwaysSource struct{}

func (alwaysSource) Float64() float64 { return 0.0 }
func (alwaysSource) Intn(n int) int   { return 0 }

type capturingPresenter struct {
	npcs []NPCData
	ctxs []Context
}

func (p *capturingPresenter) PresentEncounter(npc NPCData, ctx Context) {
	p.npcs = append(p.npcs, npc)
	p.ctxs = append(p.ctxs, ctx)
}

func newTestScheduler(score int, clock GameClock) *Scheduler {
	cfg := DefaultConfig()
	gen := NewGenerator(random.NewSource(9), testLogger(), nil)
	return NewScheduler(cfg, DefaultCatalog(), gen, fixedScore{score: score}, clock, alwaysSource{}, testLogger())
}

func TestCanTrigger_CooldownUsesGameTime(t *testing.T) {
	clock := newManualClock()
	s := newTestScheduler(0, clock)

	if !s.CanTriggerEncounter() {
		t.Fatal("fresh session should allow an encounter")
	}

	from := DefaultWorld()["riverstead"]
	to := DefaultWorld()["thornmoor"]
	enc := s.CheckTravelEncounter(from, to)
	if enc == nil {
		t.Fatal("expected an encounter with forced gates")
	}

	if s.CanTriggerEncounter() {
		t.Error("cooldown must block immediately after a trigger")
	}

	// The active-encounter cap also blocks; clear it first.
	if err := s.Dismiss(enc.ID); err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}

	clock.Advance(29)
	if s.CanTriggerEncounter() {
		t.Error("cooldown must still block at 29 game minutes")
	}

	clock.Advance(1)
	if !s.CanTriggerEncounter() {
		t.Error("cooldown must lift at exactly 30 game minutes")
	}
}

func TestCanTrigger_MaxActiveCap(t *testing.T) {
	clock := newManualClock()
	s := newTestScheduler(0, clock)

	from := DefaultWorld()["riverstead"]
	to := DefaultWorld()["thornmoor"]
	if enc := s.CheckTravelEncounter(from, to); enc == nil {
		t.Fatal("expected an encounter")
	}

	// Cooldown elapsed but the single active slot is taken.
	clock.Advance(100)
	if s.CanTriggerEncounter() {
		t.Error("active cap must block while an encounter is open")
	}
}

func TestTravelEncounter_DangerBandSelection(t *testing.T) {
	world := DefaultWorld()

	// Riverstead -> Highpass: long route into the mountains.
	danger := RouteDanger(world["riverstead"], world["highpass"])
	if danger <= 0.7 {
		t.Errorf("expected hostile-band danger, got %.2f", danger)
	}
	if BandForDanger(danger) != BandHostile {
		t.Errorf("expected hostile band for danger %.2f", danger)
	}

	// Riverstead -> Thornmoor: short and tame.
	danger = RouteDanger(world["riverstead"], world["thornmoor"])
	if BandForDanger(danger) != BandFriendly {
		t.Errorf("expected friendly band for danger %.2f", danger)
	}
}

func TestEligibility_ReputationFloor(t *testing.T) {
	table := []Definition{
		{Type: "a", Weight: 10, MinReputation: -100},
		{Type: "b", Weight: 5, MinReputation: -100},
		{Type: "c", Weight: 20, MinReputation: 200},
	}

	eligible := Eligible(table, -10)
	if len(eligible) != 2 {
		t.Fatalf("expected both floor -100 entries eligible at score -10, got %d", len(eligible))
	}

	var total float64
	for _, d := range eligible {
		total += d.Weight
	}
	if total != 15 {
		t.Errorf("expected total weight 15, got %v", total)
	}
}

func TestCheckEncounter_EmptyEligibleSetIsNormal(t *testing.T) {
	clock := newManualClock()
	s := newTestScheduler(0, clock)
	s.catalog = &Catalog{
		Location: map[string][]Definition{
			"town": {{Type: "noble", Weight: 10, MinReputation: 500}},
		},
	}

	loc := Location{ID: "riverstead", Type: "town"}
	if enc := s.CheckLocationArrivalEncounter(loc); enc != nil {
		t.Error("expected no selection when every entry is reputation-gated away")
	}
	if !s.CanTriggerEncounter() {
		t.Error("a no-selection outcome must not stamp the cooldown")
	}
}

func TestCheckEncounter_UnknownContext(t *testing.T) {
	clock := newManualClock()
	s := newTestScheduler(0, clock)

	if enc := s.CheckEventEncounter("riverstead", "dragon_migration"); enc != nil {
		t.Error("unknown world event kind must yield no encounter")
	}
	if enc := s.CheckLocationArrivalEncounter(Location{ID: "x", Type: "fortress"}); enc != nil {
		t.Error("unknown location type must yield no encounter")
	}
}

func TestTrigger_PausesAndRestoresClock(t *testing.T) {
	clock := newManualClock()
	clock.SetSpeed(3)
	s := newTestScheduler(0, clock)
	presenter := &capturingPresenter{}
	s.WithPresenter(presenter)

	world := DefaultWorld()
	enc := s.CheckTravelEncounter(world["riverstead"], world["goldspire"])
	if enc == nil {
		t.Fatal("expected an encounter")
	}

	if clock.Speed() != 0 {
		t.Errorf("clock must be paused while encounter is presented, speed=%v", clock.Speed())
	}
	if len(presenter.npcs) != 1 {
		t.Fatalf("expected one presentation, got %d", len(presenter.npcs))
	}
	if presenter.ctxs[0].Kind != ContextTravel {
		t.Errorf("expected travel context, got %s", presenter.ctxs[0].Kind)
	}

	if err := s.Resolve(enc.ID, ResolutionTalk); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if clock.Speed() != 3 {
		t.Errorf("clock must return to the pre-encounter speed, got %v", clock.Speed())
	}
}

func TestConclude_DoesNotResumeAPausedGame(t *testing.T) {
	clock := newManualClock()
	clock.SetSpeed(0) // game already paused before the encounter
	s := newTestScheduler(0, clock)

	world := DefaultWorld()
	enc := s.CheckTravelEncounter(world["riverstead"], world["thornmoor"])
	if enc == nil {
		t.Fatal("expected an encounter")
	}

	if err := s.Dismiss(enc.ID); err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}
	if clock.Speed() != 0 {
		t.Errorf("a game paused before the encounter must stay paused, got %v", clock.Speed())
	}
}

func TestResolve_InvalidResolution(t *testing.T) {
	clock := newManualClock()
	s := newTestScheduler(0, clock)

	if err := s.Resolve("nope", Resolution("wave")); err == nil {
		t.Error("expected error for invalid resolution")
	}
}

func TestDismiss_UnknownEncounter(t *testing.T) {
	clock := newManualClock()
	s := newTestScheduler(0, clock)

	if err := s.Dismiss("encounter_missing"); err == nil {
		t.Error("expected error for unknown encounter id")
	}
}

func TestExpireStale_RemovesOldEncounters(t *testing.T) {
	clock := newManualClock()
	s := newTestScheduler(0, clock)

	world := DefaultWorld()
	enc := s.CheckTravelEncounter(world["riverstead"], world["thornmoor"])
	if enc == nil {
		t.Fatal("expected an encounter")
	}

	// Nothing is stale yet.
	if expired := s.ExpireStale(); len(expired) != 0 {
		t.Fatalf("expected nothing stale, got %v", expired)
	}

	// Jump the sweep's wall clock past the staleness cutoff.
	s.now = func() time.Time { return time.Now().Add(StaleAfter + time.Minute) }
	expired := s.ExpireStale()
	if len(expired) != 1 || expired[0] != enc.ID {
		t.Fatalf("expected the encounter expired, got %v", expired)
	}
	if len(s.ActiveEncounters()) != 0 {
		t.Error("expired encounter must leave the active list")
	}
	if clock.Speed() != 1 {
		t.Errorf("expiry must restore the pre-encounter clock speed, got %v", clock.Speed())
	}
}

func TestEncounterLog_Bounded(t *testing.T) {
	clock := newManualClock()
	s := newTestScheduler(0, clock)
	s.cfg.CooldownMinutes = 0

	world := DefaultWorld()
	for i := 0; i < LogLimit+10; i++ {
		enc := s.CheckTravelEncounter(world["riverstead"], world["thornmoor"])
		if enc == nil {
			t.Fatal("expected an encounter")
		}
		if err := s.Dismiss(enc.ID); err != nil {
			t.Fatalf("dismiss failed: %v", err)
		}
	}

	if got := len(s.History()); got != LogLimit {
		t.Errorf("expected log capped at %d, got %d", LogLimit, got)
	}
}

func TestScheduler_StateRoundTrip(t *testing.T) {
	clock := newManualClock()
	s := newTestScheduler(0, clock)

	world := DefaultWorld()
	enc := s.CheckTravelEncounter(world["riverstead"], world["thornmoor"])
	if enc == nil {
		t.Fatal("expected an encounter")
	}

	snap := s.Snapshot()

	s2 := newTestScheduler(0, clock)
	s2.Restore(snap)

	if len(s2.ActiveEncounters()) != 1 {
		t.Fatalf("expected one active encounter after restore")
	}
	if s2.ActiveEncounters()[0].ID != enc.ID {
		t.Error("active encounter id mismatch after restore")
	}
	if s2.CanTriggerEncounter() {
		t.Error("restored state must preserve the cooldown stamp and cap")
	}
	if err := s2.Dismiss(enc.ID); err != nil {
		t.Fatalf("dismiss after restore failed: %v", err)
	}
}
