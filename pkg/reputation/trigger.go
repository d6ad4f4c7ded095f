package reputation

import (
	"log/slog"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/random"
)

// EffectHandler performs the side effect of a fired tier trigger, e.g.
// spawning hostile combat or showing a message. subjectID is the location
// or NPC the firing event referred to.
type EffectHandler func(effectID, subjectID string)

// FiredTrigger reports one trigger that fired during a dispatch.
type FiredTrigger struct {
	EffectID   string            `json:"effect_id"`
	EventClass TriggerEventClass `json:"event_class"`
	SubjectID  string            `json:"subject_id"`
	TierID     string            `json:"tier_id"`
}

// TriggerDispatcher samples the current tier's triggers on qualifying game
// events. Each matching trigger is an independent Bernoulli draw, so several
// can fire from a single event.
type TriggerDispatcher struct {
	ledger   *Ledger
	rng      random.Source
	logger   *slog.Logger
	handlers map[string]EffectHandler
}

// NewTriggerDispatcher creates a dispatcher bound to a ledger.
func NewTriggerDispatcher(ledger *Ledger, rng random.Source, logger *slog.Logger) *TriggerDispatcher {
	return &TriggerDispatcher{
		ledger:   ledger,
		rng:      rng,
		logger:   logger,
		handlers: make(map[string]EffectHandler),
	}
}

// RegisterEffect binds a handler to an effect id. Triggers whose effect
// has no handler still count as fired; only the side effect is skipped.
func (d *TriggerDispatcher) RegisterEffect(effectID string, h EffectHandler) {
	d.handlers[effectID] = h
}

// CheckLocationTriggers samples the current tier's location-class triggers
// for entering locationID.
func (d *TriggerDispatcher) CheckLocationTriggers(locationID string) []FiredTrigger {
	return d.dispatch(TriggerClassLocation, locationID)
}

// CheckNPCTriggers samples the current tier's npc-class triggers for an
// interaction with npcID.
func (d *TriggerDispatcher) CheckNPCTriggers(npcID string) []FiredTrigger {
	return d.dispatch(TriggerClassNPC, npcID)
}

func (d *TriggerDispatcher) dispatch(class TriggerEventClass, subjectID string) []FiredTrigger {
	tier := d.ledger.CurrentTier()

	var fired []FiredTrigger
	for _, tr := range tier.Triggers {
		if tr.EventClass != class {
			continue
		}
		if !random.Bernoulli(tr.Chance, d.rng) {
			continue
		}

		fired = append(fired, FiredTrigger{
			EffectID:   tr.EffectID,
			EventClass: class,
			SubjectID:  subjectID,
			TierID:     tier.ID,
		})
		d.logger.Debug("Tier trigger fired",
			"tier", tier.ID,
			"effect", tr.EffectID,
			"subject", subjectID)

		d.invoke(tr.EffectID, subjectID)
	}
	return fired
}

// invoke runs the registered handler for an effect. A panicking handler is
// recovered and logged so the remaining triggers still get sampled.
func (d *TriggerDispatcher) invoke(effectID, subjectID string) {
	h, ok := d.handlers[effectID]
	if !ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Trigger effect handler panicked",
				"effect", effectID,
				"subject", subjectID,
				"panic", r)
		}
	}()
	h(effectID, subjectID)
}
