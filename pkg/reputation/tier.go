package reputation

import (
	"fmt"
	"math"
)

// TriggerEventClass names the kind of game event a tier trigger reacts to.
type TriggerEventClass string

const (
	// TriggerClassLocation triggers fire when the player enters a location.
	TriggerClassLocation TriggerEventClass = "location"
	// TriggerClassNPC triggers fire when the player interacts with an NPC.
	TriggerClassNPC TriggerEventClass = "npc"
)

// TierTrigger is a probabilistic world reaction bound to a tier. Each
// qualifying event samples every matching trigger independently, so more
// than one can fire at once.
type TierTrigger struct {
	EventClass TriggerEventClass `json:"event_class"`
	Chance     float64           `json:"chance"`
	EffectID   string            `json:"effect_id"`
}

// TierEffects are the gameplay coefficients a tier applies while the
// player's score sits inside its range.
type TierEffects struct {
	PriceModifier    float64  `json:"price_modifier"`
	NPCTrust         float64  `json:"npc_trust"`
	BountyMultiplier float64  `json:"bounty_multiplier"`
	GuardHostility   bool     `json:"guard_hostility"`
	FactionBonus     float64  `json:"faction_bonus,omitempty"`
	FactionPenalty   float64  `json:"faction_penalty,omitempty"`
	SpecialAccess    []string `json:"special_access,omitempty"`
}

// Tier is a named, inclusive range of reputation scores.
type Tier struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	MinScore int           `json:"min_score"`
	MaxScore int           `json:"max_score"`
	Effects  TierEffects   `json:"effects"`
	Triggers []TierTrigger `json:"triggers,omitempty"`
}

// Contains reports whether the score falls inside the tier's inclusive range.
func (t Tier) Contains(score int) bool {
	return score >= t.MinScore && score <= t.MaxScore
}

// HasAccess reports whether the tier grants the given special-access tag.
func (t Tier) HasAccess(tag string) bool {
	for _, a := range t.Effects.SpecialAccess {
		if a == tag {
			return true
		}
	}
	return false
}

// TierCatalog is the ordered, gapless partition of the score line.
type TierCatalog struct {
	Tiers []Tier `json:"tiers"`
}

// Boundary sentinels for the open-ended bottom and top tiers.
const (
	ScoreFloor   = math.MinInt32
	ScoreCeiling = math.MaxInt32
)

// defaultTier is returned if the catalog is ever misconfigured so that no
// range matches. It carries neutral coefficients.
var defaultTier = Tier{
	ID:       "neutral",
	Name:     "Neutral",
	MinScore: ScoreFloor,
	MaxScore: ScoreCeiling,
	Effects: TierEffects{
		PriceModifier:    1.0,
		NPCTrust:         0.5,
		BountyMultiplier: 1.0,
	},
}

// TierForScore returns the tier whose range contains the score. Catalog
// well-formedness guarantees exactly one match; a neutral default covers a
// misconfigured catalog.
func (c *TierCatalog) TierForScore(score int) Tier {
	for _, t := range c.Tiers {
		if t.Contains(score) {
			return t
		}
	}
	return defaultTier
}

// ByID looks up a tier by identifier.
func (c *TierCatalog) ByID(id string) (Tier, bool) {
	for _, t := range c.Tiers {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}

// DefaultTierCatalog returns the nine standing tiers, from the deeply
// negative villain classification to the extreme positive legendary one.
// Boundaries are contiguous by construction; effects grow strictly more
// generous as score increases.
func DefaultTierCatalog() *TierCatalog {
	return &TierCatalog{Tiers: []Tier{
		{
			ID: "villain", Name: "Villain", MinScore: ScoreFloor, MaxScore: -500,
			Effects: TierEffects{
				PriceModifier:    1.50,
				NPCTrust:         0.05,
				BountyMultiplier: 2.00,
				GuardHostility:   true,
				FactionPenalty:   0.50,
			},
			Triggers: []TierTrigger{
				{EventClass: TriggerClassLocation, Chance: 0.25, EffectID: "guard_ambush"},
				{EventClass: TriggerClassLocation, Chance: 0.10, EffectID: "bounty_hunter"},
				{EventClass: TriggerClassNPC, Chance: 0.30, EffectID: "npc_flees"},
			},
		},
		{
			ID: "criminal", Name: "Criminal", MinScore: -499, MaxScore: -250,
			Effects: TierEffects{
				PriceModifier:    1.35,
				NPCTrust:         0.15,
				BountyMultiplier: 1.75,
				GuardHostility:   true,
				FactionPenalty:   0.30,
			},
			Triggers: []TierTrigger{
				{EventClass: TriggerClassLocation, Chance: 0.15, EffectID: "guard_ambush"},
				{EventClass: TriggerClassNPC, Chance: 0.20, EffectID: "npc_flees"},
			},
		},
		{
			ID: "outcast", Name: "Outcast", MinScore: -249, MaxScore: -100,
			Effects: TierEffects{
				PriceModifier:    1.20,
				NPCTrust:         0.25,
				BountyMultiplier: 1.50,
				FactionPenalty:   0.15,
			},
			Triggers: []TierTrigger{
				{EventClass: TriggerClassNPC, Chance: 0.10, EffectID: "npc_insult"},
			},
		},
		{
			ID: "disliked", Name: "Disliked", MinScore: -99, MaxScore: -20,
			Effects: TierEffects{
				PriceModifier:    1.10,
				NPCTrust:         0.40,
				BountyMultiplier: 1.25,
				FactionPenalty:   0.05,
			},
			Triggers: []TierTrigger{
				{EventClass: TriggerClassNPC, Chance: 0.05, EffectID: "cold_shoulder"},
			},
		},
		{
			ID: "neutral", Name: "Neutral", MinScore: -19, MaxScore: 19,
			Effects: TierEffects{
				PriceModifier:    1.00,
				NPCTrust:         0.50,
				BountyMultiplier: 1.00,
			},
		},
		{
			ID: "liked", Name: "Liked", MinScore: 20, MaxScore: 99,
			Effects: TierEffects{
				PriceModifier:    0.95,
				NPCTrust:         0.60,
				BountyMultiplier: 0.90,
				FactionBonus:     0.05,
				SpecialAccess:    []string{"market_stalls"},
			},
			Triggers: []TierTrigger{
				{EventClass: TriggerClassNPC, Chance: 0.05, EffectID: "friendly_greeting"},
			},
		},
		{
			ID: "respected", Name: "Respected", MinScore: 100, MaxScore: 249,
			Effects: TierEffects{
				PriceModifier:    0.90,
				NPCTrust:         0.75,
				BountyMultiplier: 0.80,
				FactionBonus:     0.10,
				SpecialAccess:    []string{"market_stalls", "guild_hall"},
			},
			Triggers: []TierTrigger{
				{EventClass: TriggerClassNPC, Chance: 0.10, EffectID: "friendly_greeting"},
			},
		},
		{
			ID: "honored", Name: "Honored", MinScore: 250, MaxScore: 499,
			Effects: TierEffects{
				PriceModifier:    0.85,
				NPCTrust:         0.85,
				BountyMultiplier: 0.70,
				FactionBonus:     0.20,
				SpecialAccess:    []string{"market_stalls", "guild_hall", "noble_quarter"},
			},
			Triggers: []TierTrigger{
				{EventClass: TriggerClassLocation, Chance: 0.10, EffectID: "admirer_gift"},
				{EventClass: TriggerClassNPC, Chance: 0.15, EffectID: "friendly_greeting"},
			},
		},
		{
			ID: "legendary", Name: "Legendary", MinScore: 500, MaxScore: ScoreCeiling,
			Effects: TierEffects{
				PriceModifier:    0.75,
				NPCTrust:         0.95,
				BountyMultiplier: 0.50,
				FactionBonus:     0.30,
				SpecialAccess:    []string{"market_stalls", "guild_hall", "noble_quarter", "royal_court"},
			},
			Triggers: []TierTrigger{
				{EventClass: TriggerClassLocation, Chance: 0.20, EffectID: "admirer_gift"},
				{EventClass: TriggerClassNPC, Chance: 0.25, EffectID: "crowd_gathers"},
			},
		},
	}}
}

// Validate checks the catalog's structural invariants: at least one tier,
// contiguous non-overlapping ranges covering the full score line, and
// chances inside [0,1].
func (c *TierCatalog) Validate() []string {
	var problems []string
	if len(c.Tiers) == 0 {
		return []string{"catalog has no tiers"}
	}

	if c.Tiers[0].MinScore != ScoreFloor {
		problems = append(problems, "first tier does not start at the score floor")
	}
	if c.Tiers[len(c.Tiers)-1].MaxScore != ScoreCeiling {
		problems = append(problems, "last tier does not end at the score ceiling")
	}

	for i, t := range c.Tiers {
		if t.ID == "" {
			problems = append(problems, fmt.Sprintf("tier at index %d has no id", i))
		}
		if t.MinScore > t.MaxScore {
			problems = append(problems, "tier "+t.ID+" has min_score above max_score")
		}
		if i > 0 && t.MinScore != c.Tiers[i-1].MaxScore+1 {
			problems = append(problems, "gap or overlap between "+c.Tiers[i-1].ID+" and "+t.ID)
		}
		for _, tr := range t.Triggers {
			if tr.Chance < 0 || tr.Chance > 1 {
				problems = append(problems, "tier "+t.ID+" trigger "+tr.EffectID+" chance outside [0,1]")
			}
		}
		if t.Effects.NPCTrust < 0 || t.Effects.NPCTrust > 1 {
			problems = append(problems, "tier "+t.ID+" npc_trust outside [0,1]")
		}
	}
	return problems
}
