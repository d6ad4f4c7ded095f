package session

import (
	"fmt"
	"log/slog"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/encounter"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/game"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/random"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/reputation"
	"github.com/Unity-Lab-AI/Trader-sub008/pkg/state"
)

// EventOutcome reports what applying one game event changed.
type EventOutcome struct {
	Action        string                     `json:"action,omitempty"`
	Delta         int                        `json:"delta"`
	NewTotal      int                        `json:"new_total"`
	BountyAdded   int                        `json:"bounty_added,omitempty"`
	Tier          string                     `json:"tier"`
	FiredTriggers []reputation.FiredTrigger  `json:"fired_triggers,omitempty"`
	Encounter     *encounter.ActiveEncounter `json:"encounter,omitempty"`
}

// Engine applies game events to one session: reputation mutation, tier
// trigger dispatch, and encounter scheduling, against a restored snapshot.
// It is not safe for concurrent use; the Manager serializes per session.
type Engine struct {
	ledger     *reputation.Ledger
	dispatcher *reputation.TriggerDispatcher
	scheduler  *encounter.Scheduler
	clock      *encounter.SimClock
	world      map[string]encounter.Location
	logger     *slog.Logger
}

// EngineDeps carries the shared collaborators an Engine is built from.
type EngineDeps struct {
	Tiers     *reputation.TierCatalog
	Actions   *reputation.ActionCatalog
	Catalog   *encounter.Catalog
	Config    encounter.Config
	ClockRate float64
	World     map[string]encounter.Location
	RNG       random.Source
	Logger    *slog.Logger

	// Optional collaborators. Nil means the capability is absent.
	Notifier  reputation.Notifier
	Currency  reputation.CurrencyLedger
	Presenter encounter.Presenter
	Effects   map[string]reputation.EffectHandler
	Personas  encounter.PersonaSource
}

// NewEngine builds an engine and restores the session snapshot into it.
func NewEngine(ss *state.SessionState, deps EngineDeps) *Engine {
	logger := deps.Logger.With("session_id", ss.ID.String())

	clock := encounter.NewSimClock(deps.ClockRate)
	clock.Restore(ss.GameMinutes)
	clock.SetSpeed(ss.ClockSpeed)

	ledger := reputation.NewLedger(deps.Tiers, deps.Actions, deps.RNG, logger)
	if deps.Notifier != nil {
		ledger = ledger.WithNotifier(deps.Notifier)
	}
	if deps.Currency != nil {
		ledger = ledger.WithCurrency(deps.Currency)
	}
	ledger.Restore(ss.Reputation)

	dispatcher := reputation.NewTriggerDispatcher(ledger, deps.RNG, logger)
	for id, h := range deps.Effects {
		dispatcher.RegisterEffect(id, h)
	}

	gen := encounter.NewGenerator(deps.RNG, logger, deps.Personas)
	sched := encounter.NewScheduler(deps.Config, deps.Catalog, gen, ledger, clock, deps.RNG, logger)
	if deps.Presenter != nil {
		sched = sched.WithPresenter(deps.Presenter)
	}
	sched.Restore(ss.Encounters)

	world := deps.World
	if world == nil {
		world = encounter.DefaultWorld()
	}

	return &Engine{
		ledger:     ledger,
		dispatcher: dispatcher,
		scheduler:  sched,
		clock:      clock,
		world:      world,
		logger:     logger,
	}
}

// HandleEvent routes one game event through the reputation ledger, the
// tier trigger dispatcher, and the encounter scheduler.
func (e *Engine) HandleEvent(ev game.Event) (*EventOutcome, error) {
	out := &EventOutcome{}

	switch v := ev.(type) {
	case game.QuestCompleted:
		e.modify(out, "quest_completed", v.Multiplier, "")

	case game.QuestFailed:
		e.modify(out, "quest_failed", 1, "")

	case game.CombatVictory:
		e.modify(out, "combat_victory_"+v.EnemyArchetype, 1, "")

	case game.LocationDiscovered:
		e.modify(out, "location_discovered", 1, v.LocationID)

	case game.LocationEntered:
		out.FiredTriggers = e.dispatcher.CheckLocationTriggers(v.LocationID)
		out.Encounter = e.scheduler.CheckLocationArrivalEncounter(e.location(v.LocationID))

	case game.NPCInteracted:
		e.modify(out, "npc_interacted", 1, "")
		out.FiredTriggers = e.dispatcher.CheckNPCTriggers(v.NPCID)

	case game.TravelCompleted:
		e.modify(out, "travel_completed", 1, v.To)
		out.Encounter = e.scheduler.CheckTravelEncounter(e.location(v.From), e.location(v.To))

	case game.WorldEvent:
		out.Encounter = e.scheduler.CheckEventEncounter(v.LocationID, v.EventKind)

	default:
		return nil, fmt.Errorf("unhandled game event: %T", ev)
	}

	out.NewTotal = e.ledger.Score()
	out.Tier = e.ledger.CurrentTier().ID
	return out, nil
}

// bountyBase is the unscaled bounty debt a witnessed crime accrues. The
// ledger scales it by the current tier's bounty multiplier.
var bountyBase = map[string]int{
	"combat_victory_guard":   50,
	"combat_victory_citizen": 80,
	"murder":                 100,
	"assault":                40,
	"smuggling":              30,
	"theft":                  20,
}

func (e *Engine) modify(out *EventOutcome, actionID string, multiplier float64, locationID string) {
	out.Action = actionID
	out.Delta = e.ledger.ModifyReputation(actionID, multiplier, locationID)
	if base, ok := bountyBase[actionID]; ok && out.Delta != 0 {
		out.BountyAdded = e.ledger.AddBounty(base, actionID)
	}
}

// location resolves an id against the gazetteer. Unknown ids get a
// zero-coordinate placeholder so travel rolls still work.
func (e *Engine) location(id string) encounter.Location {
	if loc, ok := e.world[id]; ok {
		return loc
	}
	e.logger.Warn("Unknown location id", "location_id", id)
	return encounter.Location{ID: id, Type: "outpost", Terrain: "plains"}
}

// ResolveEncounter ends an active encounter with the given resolution.
func (e *Engine) ResolveEncounter(encounterID string, resolution encounter.Resolution) error {
	return e.scheduler.Resolve(encounterID, resolution)
}

// DismissEncounter removes an active encounter without a resolution.
func (e *Engine) DismissEncounter(encounterID string) error {
	return e.scheduler.Dismiss(encounterID)
}

// ExpireStale removes active encounters past the staleness cutoff.
func (e *Engine) ExpireStale() []string {
	return e.scheduler.ExpireStale()
}

// PayBounty pays down the bounty through the ledger's currency collaborator.
func (e *Engine) PayBounty(amount int) error {
	return e.ledger.PayBounty(amount)
}

// Ledger exposes the reputation ledger for read-side queries.
func (e *Engine) Ledger() *reputation.Ledger {
	return e.ledger
}

// ActiveEncounters returns the session's active encounters.
func (e *Engine) ActiveEncounters() []encounter.ActiveEncounter {
	return e.scheduler.ActiveEncounters()
}

// Snapshot writes the engine's state back into the session snapshot.
func (e *Engine) Snapshot(ss *state.SessionState) {
	ss.Reputation = e.ledger.Snapshot()
	ss.Encounters = e.scheduler.Snapshot()
	ss.GameMinutes = e.clock.Minutes()
	ss.ClockSpeed = e.clock.Speed()
}
