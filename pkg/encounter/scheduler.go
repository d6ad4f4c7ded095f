package encounter

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/random"
)

// ScoreSource exposes the reputation score the scheduler filters
// eligibility against. The reputation ledger satisfies it.
type ScoreSource interface {
	Score() int
}

// Presenter is the external presentation collaborator an encounter is
// handed to. Nil means no presentation surface is wired in.
type Presenter interface {
	PresentEncounter(npc NPCData, ctx Context)
}

// Config holds the scheduler's numeric knobs.
type Config struct {
	CooldownMinutes float64 `json:"cooldown_minutes"`
	TravelChance    float64 `json:"travel_encounter_chance"`
	ArrivalChance   float64 `json:"location_arrival_chance"`
	EventChance     float64 `json:"random_event_chance"`
	MaxActive       int     `json:"max_active_encounters"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		CooldownMinutes: 30,
		TravelChance:    0.30,
		ArrivalChance:   0.20,
		EventChance:     0.15,
		MaxActive:       1,
	}
}

// State is the scheduler's persisted shape.
type State struct {
	LastEncounterMinutes *float64          `json:"last_encounter_minutes,omitempty"`
	Active               []ActiveEncounter `json:"active,omitempty"`
	Log                  []LogEntry        `json:"log,omitempty"`
}

// Scheduler decides whether and which encounter fires, applying the
// cooldown, concurrency cap, and reputation-filtered weighted sampling.
type Scheduler struct {
	cfg       Config
	catalog   *Catalog
	generator *Generator
	score     ScoreSource
	clock     GameClock
	rng       random.Source
	logger    *slog.Logger
	presenter Presenter

	lastEncounter *float64
	active        []ActiveEncounter
	log           []LogEntry
	now           func() time.Time
}

// NewScheduler wires a scheduler. presenter may be nil.
func NewScheduler(cfg Config, catalog *Catalog, gen *Generator, score ScoreSource, clock GameClock, rng random.Source, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		catalog:   catalog,
		generator: gen,
		score:     score,
		clock:     clock,
		rng:       rng,
		logger:    logger,
		now:       time.Now,
	}
}

// WithPresenter sets the presentation collaborator.
// Returns the Scheduler for method chaining.
func (s *Scheduler) WithPresenter(p Presenter) *Scheduler {
	s.presenter = p
	return s
}

// Restore replaces the scheduler's state with a loaded snapshot.
func (s *Scheduler) Restore(st State) {
	s.lastEncounter = st.LastEncounterMinutes
	s.active = append([]ActiveEncounter(nil), st.Active...)
	s.log = append([]LogEntry(nil), st.Log...)
	if len(s.log) > LogLimit {
		s.log = s.log[len(s.log)-LogLimit:]
	}
}

// Snapshot returns a copy of the persisted state.
func (s *Scheduler) Snapshot() State {
	st := State{
		Active: append([]ActiveEncounter(nil), s.active...),
		Log:    append([]LogEntry(nil), s.log...),
	}
	if s.lastEncounter != nil {
		v := *s.lastEncounter
		st.LastEncounterMinutes = &v
	}
	return st
}

// ActiveEncounters returns the currently active encounters.
func (s *Scheduler) ActiveEncounters() []ActiveEncounter {
	return append([]ActiveEncounter(nil), s.active...)
}

// History returns the bounded encounter log.
func (s *Scheduler) History() []LogEntry {
	return append([]LogEntry(nil), s.log...)
}

// CanTriggerEncounter reports whether the cooldown (in game minutes) has
// elapsed and the active-encounter cap is not reached. A session with no
// prior encounter is never cooldown-blocked.
func (s *Scheduler) CanTriggerEncounter() bool {
	if len(s.active) >= s.cfg.MaxActive {
		return false
	}
	if s.lastEncounter == nil {
		return true
	}
	return s.clock.Minutes()-*s.lastEncounter >= s.cfg.CooldownMinutes
}

// CheckTravelEncounter rolls for an encounter on the route from one
// location to another. Returns nil when nothing fires, which is the
// common case.
func (s *Scheduler) CheckTravelEncounter(from, to Location) *ActiveEncounter {
	if !s.CanTriggerEncounter() {
		return nil
	}
	if !random.Bernoulli(s.cfg.TravelChance, s.rng) {
		return nil
	}

	danger := RouteDanger(from, to)
	band := BandForDanger(danger)

	def, ok := s.pick(s.catalog.Travel[band])
	if !ok {
		return nil
	}

	return s.trigger(def, Context{
		Kind:   ContextTravel,
		From:   from.ID,
		To:     to.ID,
		Danger: danger,
	})
}

// CheckLocationArrivalEncounter rolls for an encounter on arriving at a
// location, keyed by its type.
func (s *Scheduler) CheckLocationArrivalEncounter(loc Location) *ActiveEncounter {
	if !s.CanTriggerEncounter() {
		return nil
	}
	if !random.Bernoulli(s.cfg.ArrivalChance, s.rng) {
		return nil
	}

	table, ok := s.catalog.Location[loc.Type]
	if !ok {
		s.logger.Warn("No encounter table for location type", "location_type", loc.Type)
		return nil
	}

	def, picked := s.pick(table)
	if !picked {
		return nil
	}

	return s.trigger(def, Context{
		Kind:       ContextArrival,
		LocationID: loc.ID,
	})
}

// CheckEventEncounter rolls for an encounter tied to a world event at a
// location, keyed by the event kind.
func (s *Scheduler) CheckEventEncounter(locationID, eventKind string) *ActiveEncounter {
	if !s.CanTriggerEncounter() {
		return nil
	}
	if !random.Bernoulli(s.cfg.EventChance, s.rng) {
		return nil
	}

	table, ok := s.catalog.WorldEvent[eventKind]
	if !ok {
		s.logger.Warn("No encounter table for world event", "event_kind", eventKind)
		return nil
	}

	def, picked := s.pick(table)
	if !picked {
		return nil
	}

	return s.trigger(def, Context{
		Kind:       ContextWorldEvent,
		LocationID: locationID,
		EventKind:  eventKind,
	})
}

// pick applies the reputation eligibility floor then the shared weighted
// sampling primitive.
func (s *Scheduler) pick(table []Definition) (Definition, bool) {
	eligible := Eligible(table, s.score.Score())
	return random.WeightedPick(eligible, func(d Definition) float64 { return d.Weight }, s.rng)
}

// trigger instantiates the encounter: pauses the game clock (recording
// its prior speed), stamps the cooldown, generates the NPC, records the
// encounter, and hands it to the presenter.
func (s *Scheduler) trigger(def Definition, ctx Context) *ActiveEncounter {
	priorSpeed := s.clock.Speed()
	s.clock.SetSpeed(0)

	minutes := s.clock.Minutes()
	s.lastEncounter = &minutes

	npc := s.generator.GenerateEncounterNPC(def.Type, ctx)
	enc := ActiveEncounter{
		ID:              fmt.Sprintf("encounter_%d", s.now().UnixNano()),
		NPC:             npc,
		Context:         ctx,
		Timestamp:       s.now(),
		Status:          StatusActive,
		PriorClockSpeed: priorSpeed,
	}
	s.active = append(s.active, enc)

	s.appendLog(LogEntry{
		EncounterID: enc.ID,
		NPCName:     npc.Name,
		Archetype:   npc.Archetype,
		Context:     ctx,
		Timestamp:   enc.Timestamp,
	})

	s.logger.Info("Encounter triggered",
		"encounter_id", enc.ID,
		"archetype", npc.Archetype,
		"npc", npc.Name,
		"context", string(ctx.Kind))

	if s.presenter != nil {
		s.presenter.PresentEncounter(npc, ctx)
	}
	return &enc
}

func (s *Scheduler) appendLog(entry LogEntry) {
	s.log = append(s.log, entry)
	if len(s.log) > LogLimit {
		s.log = s.log[len(s.log)-LogLimit:]
	}
}

// Dismiss removes an active encounter on explicit player dismissal.
func (s *Scheduler) Dismiss(encounterID string) error {
	return s.conclude(encounterID, StatusDismissed, "")
}

// Resolve ends an active encounter with the presenter's resolution.
func (s *Scheduler) Resolve(encounterID string, resolution Resolution) error {
	if !ValidResolution(resolution) {
		return fmt.Errorf("invalid resolution: %q", resolution)
	}
	if resolution == ResolutionIgnore {
		return s.conclude(encounterID, StatusDismissed, resolution)
	}
	return s.conclude(encounterID, StatusEnded, resolution)
}

// ExpireStale removes active encounters older than StaleAfter and returns
// their ids. Called by the periodic sweep.
func (s *Scheduler) ExpireStale() []string {
	cutoff := s.now().Add(-StaleAfter)

	var expired []string
	for _, enc := range s.active {
		if enc.Timestamp.Before(cutoff) {
			expired = append(expired, enc.ID)
		}
	}
	for _, id := range expired {
		if err := s.conclude(id, StatusExpired, ""); err != nil {
			s.logger.Error("Failed to expire encounter", "encounter_id", id, "error", err)
		}
	}
	return expired
}

// conclude transitions an encounter out of the active state and restores
// the game clock to the speed recorded when the encounter began.
func (s *Scheduler) conclude(encounterID string, status Status, resolution Resolution) error {
	for i, enc := range s.active {
		if enc.ID != encounterID {
			continue
		}

		s.active = append(s.active[:i], s.active[i+1:]...)
		s.clock.SetSpeed(enc.PriorClockSpeed)

		for j := range s.log {
			if s.log[j].EncounterID == encounterID {
				s.log[j].Resolution = resolution
			}
		}

		s.logger.Info("Encounter concluded",
			"encounter_id", encounterID,
			"status", string(status),
			"resolution", string(resolution))
		return nil
	}
	return fmt.Errorf("no active encounter with id %q", encounterID)
}
