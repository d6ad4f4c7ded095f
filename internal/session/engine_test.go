package session

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/game"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/reputation"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/state"
)

// fixedSource always returns the same draw, making chance gates
// deterministic in tests.
type fixedSource struct {
	f float64
}

func (s fixedSource) Float64() float64 { return s.f }
func (s fixedSource) Intn(n int) int   { return 0 }

func testDeps(rng fixedSource) EngineDeps {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return EngineDeps{
		Tiers:     reputation.DefaultTierCatalog(),
		Actions:   reputation.DefaultActionCatalog(),
		Catalog:   encounter.DefaultCatalog(),
		Config:    encounter.DefaultConfig(),
		ClockRate: 1,
		RNG:       rng,
		Logger:    logger,
	}
}

func TestEngine_QuestCompletedAppliesMultiplier(t *testing.T) {
	ss := state.NewSessionState()
	eng := NewEngine(ss, testDeps(fixedSource{0.99}))

	out, err := eng.HandleEvent(game.QuestCompleted{Multiplier: 2})
	require.NoError(t, err)

	assert.Equal(t, "quest_completed", out.Action)
	assert.Equal(t, 30, out.Delta)
	assert.Equal(t, 30, out.NewTotal)
	assert.Equal(t, "liked", out.Tier)
}

func TestEngine_CombatVictoryRoutesByArchetype(t *testing.T) {
	ss := state.NewSessionState()
	eng := NewEngine(ss, testDeps(fixedSource{0.99}))

	out, err := eng.HandleEvent(game.CombatVictory{EnemyArchetype: "guard"})
	require.NoError(t, err)

	assert.Equal(t, "combat_victory_guard", out.Action)
	assert.Equal(t, -25, out.Delta)
	assert.Equal(t, "disliked", out.Tier)

	// The kill lands in the disliked tier, whose 1.25 multiplier scales
	// the base 50 bounty.
	assert.Equal(t, 63, out.BountyAdded)
	assert.Equal(t, 63, eng.Ledger().Bounty())
}

func TestEngine_TravelCompletedCanTriggerEncounter(t *testing.T) {
	ss := state.NewSessionState()
	// A draw of 0 passes every chance gate and picks the first weighted
	// entry, so travel always produces an encounter.
	eng := NewEngine(ss, testDeps(fixedSource{0}))

	out, err := eng.HandleEvent(game.TravelCompleted{From: "riverstead", To: "thornmoor"})
	require.NoError(t, err)

	assert.Equal(t, "travel_completed", out.Action)
	require.NotNil(t, out.Encounter)
	assert.Equal(t, encounter.ContextTravel, out.Encounter.Context.Kind)
	assert.Equal(t, "riverstead", out.Encounter.Context.From)
	assert.Equal(t, "thornmoor", out.Encounter.Context.To)
}

func TestEngine_UnknownLocationStillRolls(t *testing.T) {
	ss := state.NewSessionState()
	eng := NewEngine(ss, testDeps(fixedSource{0}))

	out, err := eng.HandleEvent(game.TravelCompleted{From: "riverstead", To: "nowhere_known"})
	require.NoError(t, err)
	require.NotNil(t, out.Encounter)
}

func TestEngine_LocationEnteredDispatchesTriggers(t *testing.T) {
	ss := state.NewSessionState()
	ss.Reputation.Reputation = -600 // villain

	deps := testDeps(fixedSource{0})
	var fired []string
	deps.Effects = map[string]reputation.EffectHandler{
		"guard_ambush": func(effectID, subjectID string) {
			fired = append(fired, effectID+":"+subjectID)
		},
	}
	eng := NewEngine(ss, deps)

	out, err := eng.HandleEvent(game.LocationEntered{LocationID: "goldspire"})
	require.NoError(t, err)

	require.NotEmpty(t, out.FiredTriggers)
	assert.Contains(t, fired, "guard_ambush:goldspire")
}

func TestEngine_SnapshotRoundTrip(t *testing.T) {
	ss := state.NewSessionState()
	eng := NewEngine(ss, testDeps(fixedSource{0}))

	out, err := eng.HandleEvent(game.TravelCompleted{From: "riverstead", To: "goldspire"})
	require.NoError(t, err)
	require.NotNil(t, out.Encounter)

	eng.Snapshot(ss)
	require.Len(t, ss.Encounters.Active, 1)
	require.NotNil(t, ss.Encounters.LastEncounterMinutes)
	assert.Equal(t, float64(0), ss.ClockSpeed) // clock paused by the encounter

	// A second engine restored from the snapshot sees the same encounter
	// and can resolve it.
	eng2 := NewEngine(ss, testDeps(fixedSource{0.99}))
	active := eng2.ActiveEncounters()
	require.Len(t, active, 1)
	require.NoError(t, eng2.ResolveEncounter(active[0].ID, encounter.ResolutionTalk))

	eng2.Snapshot(ss)
	assert.Empty(t, ss.Encounters.Active)
	assert.Equal(t, float64(1), ss.ClockSpeed) // prior speed restored
}

func TestEngine_WorldEventNoReputationChange(t *testing.T) {
	ss := state.NewSessionState()
	eng := NewEngine(ss, testDeps(fixedSource{0.99}))

	out, err := eng.HandleEvent(game.WorldEvent{LocationID: "goldspire", EventKind: "festival"})
	require.NoError(t, err)
	assert.Empty(t, out.Action)
	assert.Equal(t, 0, out.Delta)
	assert.Nil(t, out.Encounter)
}
