package encounter

import "fmt"

// Definition is one encounter archetype entry in a weighted table. An
// entry is eligible only when its MinReputation floor does not exceed
// the player's current score.
type Definition struct {
	Type          string  `json:"type"`
	Weight        float64 `json:"weight"`
	MinReputation int     `json:"min_reputation"`
}

// DangerBand selects which travel sub-table a route's danger score maps to.
type DangerBand string

const (
	BandHostile  DangerBand = "hostile"
	BandNeutral  DangerBand = "neutral"
	BandFriendly DangerBand = "friendly"
)

// BandForDanger maps a route danger score in [0,1] to its sub-table.
func BandForDanger(danger float64) DangerBand {
	switch {
	case danger > 0.7:
		return BandHostile
	case danger > 0.4:
		return BandNeutral
	default:
		return BandFriendly
	}
}

// Catalog holds the weighted encounter tables keyed by context: road
// danger band for travel, location type for arrivals, and event kind for
// world events.
type Catalog struct {
	Travel     map[DangerBand][]Definition `json:"travel"`
	Location   map[string][]Definition     `json:"location"`
	WorldEvent map[string][]Definition     `json:"world_event"`
}

// Eligible filters a table down to entries whose reputation floor admits
// the given score. An empty result is a normal outcome, not an error.
func Eligible(defs []Definition, score int) []Definition {
	var out []Definition
	for _, d := range defs {
		if d.MinReputation <= score {
			out = append(out, d)
		}
	}
	return out
}

// Validate reports structural problems: empty types, non-positive weights.
func (c *Catalog) Validate() []string {
	var problems []string
	check := func(context string, defs []Definition) {
		for _, d := range defs {
			if d.Type == "" {
				problems = append(problems, fmt.Sprintf("%s: entry with empty type", context))
			}
			if d.Weight <= 0 {
				problems = append(problems, fmt.Sprintf("%s: entry %q has non-positive weight", context, d.Type))
			}
		}
	}
	for band, defs := range c.Travel {
		check("travel/"+string(band), defs)
	}
	for typ, defs := range c.Location {
		check("location/"+typ, defs)
	}
	for kind, defs := range c.WorldEvent {
		check("world_event/"+kind, defs)
	}
	return problems
}

// DefaultCatalog returns the built-in encounter tables.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Travel: map[DangerBand][]Definition{
			BandHostile: {
				{Type: "bandit", Weight: 40, MinReputation: ScoreFloorAny},
				{Type: "highwayman", Weight: 25, MinReputation: ScoreFloorAny},
				{Type: "bounty_hunter", Weight: 15, MinReputation: ScoreFloorAny},
				{Type: "mercenary", Weight: 15, MinReputation: -250},
				{Type: "guard_patrol", Weight: 5, MinReputation: -100},
			},
			BandNeutral: {
				{Type: "peddler", Weight: 30, MinReputation: -250},
				{Type: "pilgrim", Weight: 25, MinReputation: ScoreFloorAny},
				{Type: "hunter", Weight: 20, MinReputation: ScoreFloorAny},
				{Type: "courier", Weight: 15, MinReputation: -100},
				{Type: "guard_patrol", Weight: 10, MinReputation: -100},
			},
			BandFriendly: {
				{Type: "merchant", Weight: 35, MinReputation: -100},
				{Type: "peddler", Weight: 25, MinReputation: -250},
				{Type: "minstrel", Weight: 20, MinReputation: ScoreFloorAny},
				{Type: "pilgrim", Weight: 15, MinReputation: ScoreFloorAny},
				{Type: "noble", Weight: 5, MinReputation: 100},
			},
		},
		Location: map[string][]Definition{
			"city": {
				{Type: "merchant", Weight: 30, MinReputation: -100},
				{Type: "beggar", Weight: 20, MinReputation: ScoreFloorAny},
				{Type: "tax_collector", Weight: 15, MinReputation: -250},
				{Type: "noble", Weight: 15, MinReputation: 100},
				{Type: "smuggler", Weight: 10, MinReputation: ScoreFloorAny},
				{Type: "guard_patrol", Weight: 10, MinReputation: -100},
			},
			"town": {
				{Type: "merchant", Weight: 30, MinReputation: -100},
				{Type: "peddler", Weight: 25, MinReputation: -250},
				{Type: "drunk", Weight: 20, MinReputation: ScoreFloorAny},
				{Type: "minstrel", Weight: 15, MinReputation: ScoreFloorAny},
				{Type: "tax_collector", Weight: 10, MinReputation: -250},
			},
			"village": {
				{Type: "farmer", Weight: 40, MinReputation: ScoreFloorAny},
				{Type: "peddler", Weight: 25, MinReputation: -250},
				{Type: "pilgrim", Weight: 20, MinReputation: ScoreFloorAny},
				{Type: "hunter", Weight: 15, MinReputation: ScoreFloorAny},
			},
			"outpost": {
				{Type: "mercenary", Weight: 35, MinReputation: -250},
				{Type: "hunter", Weight: 25, MinReputation: ScoreFloorAny},
				{Type: "smuggler", Weight: 25, MinReputation: ScoreFloorAny},
				{Type: "courier", Weight: 15, MinReputation: -100},
			},
			"ruin": {
				{Type: "bandit", Weight: 40, MinReputation: ScoreFloorAny},
				{Type: "smuggler", Weight: 30, MinReputation: ScoreFloorAny},
				{Type: "hunter", Weight: 20, MinReputation: ScoreFloorAny},
				{Type: "witch", Weight: 10, MinReputation: ScoreFloorAny},
			},
		},
		WorldEvent: map[string][]Definition{
			"festival": {
				{Type: "minstrel", Weight: 35, MinReputation: ScoreFloorAny},
				{Type: "merchant", Weight: 30, MinReputation: -100},
				{Type: "drunk", Weight: 25, MinReputation: ScoreFloorAny},
				{Type: "noble", Weight: 10, MinReputation: 100},
			},
			"execution": {
				{Type: "guard_patrol", Weight: 40, MinReputation: -100},
				{Type: "beggar", Weight: 30, MinReputation: ScoreFloorAny},
				{Type: "bounty_hunter", Weight: 30, MinReputation: ScoreFloorAny},
			},
			"caravan": {
				{Type: "merchant", Weight: 40, MinReputation: -100},
				{Type: "peddler", Weight: 30, MinReputation: -250},
				{Type: "mercenary", Weight: 20, MinReputation: -250},
				{Type: "smuggler", Weight: 10, MinReputation: ScoreFloorAny},
			},
			"plague": {
				{Type: "beggar", Weight: 45, MinReputation: ScoreFloorAny},
				{Type: "witch", Weight: 30, MinReputation: ScoreFloorAny},
				{Type: "pilgrim", Weight: 25, MinReputation: ScoreFloorAny},
			},
		},
	}
}
