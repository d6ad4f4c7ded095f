package encounter

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/random"
)

// Persona is optional flavor metadata for an archetype, supplied by an
// external persona database when one is wired in.
type Persona struct {
	Personality   string `json:"personality"`
	SpeakingStyle string `json:"speaking_style"`
}

// PersonaSource is the optional persona collaborator. A nil source, or a
// miss for an archetype, degrades to the archetype's built-in defaults.
type PersonaSource interface {
	Persona(archetype string) (Persona, bool)
}

// archetypeProfile drives name, trade, and gold generation per archetype.
type archetypeProfile struct {
	title    string
	maleBias float64
	canTrade bool
	goldMin  int
	goldMax  int
	persona  Persona
}

var fallbackProfile = archetypeProfile{
	maleBias: 0.5,
	persona:  Persona{Personality: "guarded", SpeakingStyle: "plain"},
}

// Trade capability is a fixed allow-list: only these archetypes carry an
// inventory and gold.
var archetypeProfiles = map[string]archetypeProfile{
	"merchant": {
		title: "the Merchant", maleBias: 0.5, canTrade: true, goldMin: 40, goldMax: 120,
		persona: Persona{Personality: "shrewd", SpeakingStyle: "persuasive"},
	},
	"peddler": {
		title: "the Peddler", maleBias: 0.5, canTrade: true, goldMin: 10, goldMax: 40,
		persona: Persona{Personality: "chatty", SpeakingStyle: "rambling"},
	},
	"smuggler": {
		maleBias: 0.7, canTrade: true, goldMin: 30, goldMax: 90,
		persona: Persona{Personality: "evasive", SpeakingStyle: "clipped"},
	},
	"bandit": {
		maleBias: 0.7,
		persona:  Persona{Personality: "menacing", SpeakingStyle: "crude"},
	},
	"highwayman": {
		title: "the Highwayman", maleBias: 0.7,
		persona: Persona{Personality: "theatrical", SpeakingStyle: "mocking"},
	},
	"bounty_hunter": {
		maleBias: 0.7,
		persona:  Persona{Personality: "cold", SpeakingStyle: "terse"},
	},
	"mercenary": {
		maleBias: 0.7,
		persona:  Persona{Personality: "pragmatic", SpeakingStyle: "blunt"},
	},
	"guard_patrol": {
		title: "of the Watch", maleBias: 0.7,
		persona: Persona{Personality: "officious", SpeakingStyle: "formal"},
	},
	"pilgrim": {
		maleBias: 0.5,
		persona:  Persona{Personality: "serene", SpeakingStyle: "gentle"},
	},
	"minstrel": {
		title: "the Minstrel", maleBias: 0.5,
		persona: Persona{Personality: "flamboyant", SpeakingStyle: "lyrical"},
	},
	"beggar": {
		maleBias: 0.5,
		persona:  Persona{Personality: "desperate", SpeakingStyle: "pleading"},
	},
	"noble": {
		maleBias: 0.5,
		persona:  Persona{Personality: "haughty", SpeakingStyle: "refined"},
	},
	"courier": {
		maleBias: 0.5,
		persona:  Persona{Personality: "hurried", SpeakingStyle: "breathless"},
	},
	"tax_collector": {
		title: "the Tax Collector", maleBias: 0.5,
		persona: Persona{Personality: "meticulous", SpeakingStyle: "dry"},
	},
	"drunk": {
		maleBias: 0.7,
		persona:  Persona{Personality: "maudlin", SpeakingStyle: "slurred"},
	},
	"farmer": {
		maleBias: 0.5,
		persona:  Persona{Personality: "plainspoken", SpeakingStyle: "slow"},
	},
	"hunter": {
		maleBias: 0.7,
		persona:  Persona{Personality: "watchful", SpeakingStyle: "quiet"},
	},
	"witch": {
		maleBias: 0.3,
		persona:  Persona{Personality: "cryptic", SpeakingStyle: "riddling"},
	},
}

var maleNames = []string{
	"Aldric", "Bram", "Cedric", "Dorn", "Edwin", "Falk", "Garrick", "Hale",
	"Ivo", "Jorah", "Kellan", "Leofric", "Merek", "Nils", "Osric", "Piers",
	"Quentin", "Roderic", "Stellan", "Tobias", "Ulric", "Wendel",
}

var femaleNames = []string{
	"Adela", "Brynn", "Cerys", "Delia", "Elswyth", "Freya", "Giselle", "Hilde",
	"Isolde", "Johanna", "Katrin", "Linnea", "Maren", "Nerys", "Ottilie",
	"Petra", "Rhoswen", "Sigrid", "Thea", "Una", "Verena", "Wren",
}

var commonItems = []string{
	"bread_loaf", "dried_meat", "waterskin", "rope_coil", "tallow_candle",
	"wool_cloth", "iron_nails", "salt_pouch", "apples", "firewood_bundle",
}

var uncommonItems = []string{
	"healing_salve", "spiced_wine", "silver_buckle", "fine_parchment",
	"lantern_oil", "dyed_silk", "steel_dagger",
}

var rareItems = []string{
	"moonstone_ring", "masterwork_compass", "enchanted_talisman", "sealed_map",
}

// Generator synthesizes ephemeral NPC data for selected archetypes.
type Generator struct {
	rng      random.Source
	logger   *slog.Logger
	personas PersonaSource
	now      func() time.Time
}

// NewGenerator creates a generator. personas may be nil.
func NewGenerator(rng random.Source, logger *slog.Logger, personas PersonaSource) *Generator {
	return &Generator{
		rng:      rng,
		logger:   logger,
		personas: personas,
		now:      time.Now,
	}
}

// GenerateEncounterNPC synthesizes a disposable NPC for the archetype.
// Identifiers are timestamp-derived and unique only within the session.
func (g *Generator) GenerateEncounterNPC(archetype string, ctx Context) NPCData {
	profile, ok := archetypeProfiles[archetype]
	if !ok {
		g.logger.Warn("Unknown encounter archetype, using fallback profile", "archetype", archetype)
		profile = fallbackProfile
	}

	npc := NPCData{
		ID:        fmt.Sprintf("enc_%d", g.now().UnixNano()),
		Name:      g.generateName(profile),
		Archetype: archetype,
		CanTrade:  profile.canTrade,
	}

	persona := profile.persona
	if persona.Personality == "" {
		persona = fallbackProfile.persona
	}
	if g.personas != nil {
		if p, found := g.personas.Persona(archetype); found {
			persona = p
		}
	}
	npc.Personality = persona.Personality
	npc.SpeakingStyle = persona.SpeakingStyle

	if profile.canTrade {
		npc.Inventory = g.generateInventory()
		npc.Gold = random.IntBetween(profile.goldMin, profile.goldMax, g.rng)
	}

	return npc
}

func (g *Generator) generateName(profile archetypeProfile) string {
	table := femaleNames
	if random.Bernoulli(profile.maleBias, g.rng) {
		table = maleNames
	}
	name := table[g.rng.Intn(len(table))]
	if profile.title != "" {
		name += " " + profile.title
	}
	return name
}

// generateInventory rolls 2-4 common items, 0-2 uncommon items behind a
// 70% inclusion gate, and exactly one rare item with 20% probability.
func (g *Generator) generateInventory() []InventoryItem {
	var inv []InventoryItem

	nCommon := random.IntBetween(2, 4, g.rng)
	for _, id := range pickDistinct(commonItems, nCommon, g.rng) {
		inv = append(inv, InventoryItem{ItemID: id, Quantity: random.IntBetween(1, 3, g.rng)})
	}

	if random.Bernoulli(0.7, g.rng) {
		nUncommon := random.IntBetween(1, 2, g.rng)
		for _, id := range pickDistinct(uncommonItems, nUncommon, g.rng) {
			inv = append(inv, InventoryItem{ItemID: id, Quantity: 1})
		}
	}

	if random.Bernoulli(0.2, g.rng) {
		inv = append(inv, InventoryItem{ItemID: rareItems[g.rng.Intn(len(rareItems))], Quantity: 1})
	}

	return inv
}

// pickDistinct draws n distinct entries from table.
func pickDistinct(table []string, n int, rng random.Source) []string {
	if n >= len(table) {
		out := make([]string, len(table))
		copy(out, table)
		return out
	}

	picked := make([]string, 0, n)
	used := make(map[int]bool, n)
	for len(picked) < n {
		i := rng.Intn(len(table))
		if used[i] {
			continue
		}
		used[i] = true
		picked = append(picked, table[i])
	}
	return picked
}
