package encounter

import (
	"strings"
	"testing"
	"time"

	"github.com/Unity-Lab-AI/Trader-sub008/pkg/random"
)

type mapPersonas map[string]Persona

func (m mapPersonas) Persona(archetype string) (Persona, bool) {
	p, ok := m[archetype]
	return p, ok
}

func TestGenerateNPC_TradeCapableGetsInventoryAndGold(t *testing.T) {
	gen := NewGenerator(random.NewSource(3), testLogger(), nil)

	for i := 0; i < 200; i++ {
		npc := gen.GenerateEncounterNPC("merchant", Context{Kind: ContextArrival})
		if !npc.CanTrade {
			t.Fatal("merchant must be trade-capable")
		}
		if npc.Gold < 40 || npc.Gold > 120 {
			t.Fatalf("merchant gold %d outside [40,120]", npc.Gold)
		}

		var common, uncommon, rare int
		for _, item := range npc.Inventory {
			switch {
			case contains(commonItems, item.ItemID):
				common++
			case contains(uncommonItems, item.ItemID):
				uncommon++
			case contains(rareItems, item.ItemID):
				rare++
			default:
				t.Fatalf("unknown item id %q", item.ItemID)
			}
		}
		if common < 2 || common > 4 {
			t.Fatalf("common item count %d outside [2,4]", common)
		}
		if uncommon > 2 {
			t.Fatalf("uncommon item count %d above 2", uncommon)
		}
		if rare > 1 {
			t.Fatalf("rare item count %d above 1", rare)
		}
	}
}

func TestGenerateNPC_NonTraderHasNoInventory(t *testing.T) {
	gen := NewGenerator(random.NewSource(5), testLogger(), nil)

	npc := gen.GenerateEncounterNPC("bandit", Context{Kind: ContextTravel})
	if npc.CanTrade {
		t.Error("bandit must not be trade-capable")
	}
	if len(npc.Inventory) != 0 || npc.Gold != 0 {
		t.Errorf("non-trader must have no inventory or gold, got %d items, %d gold",
			len(npc.Inventory), npc.Gold)
	}
}

func TestGenerateNPC_TitleSuffix(t *testing.T) {
	gen := NewGenerator(random.NewSource(8), testLogger(), nil)

	npc := gen.GenerateEncounterNPC("merchant", Context{})
	if !strings.HasSuffix(npc.Name, " the Merchant") {
		t.Errorf("expected merchant title suffix, got %q", npc.Name)
	}

	npc = gen.GenerateEncounterNPC("bandit", Context{})
	if strings.Contains(npc.Name, " the ") {
		t.Errorf("bandit has no title, got %q", npc.Name)
	}
}

func TestGenerateNPC_GenderBias(t *testing.T) {
	gen := NewGenerator(random.NewSource(12), testLogger(), nil)

	male := 0
	const draws = 5000
	for i := 0; i < draws; i++ {
		npc := gen.GenerateEncounterNPC("bandit", Context{})
		if contains(maleNames, npc.Name) {
			male++
		}
	}

	ratio := float64(male) / draws
	if ratio < 0.65 || ratio > 0.75 {
		t.Errorf("bandit gender bias should be near 0.70 male, got %.3f", ratio)
	}
}

func TestGenerateNPC_PersonaSourceOverridesDefaults(t *testing.T) {
	personas := mapPersonas{
		"merchant": {Personality: "jovial", SpeakingStyle: "booming"},
	}
	gen := NewGenerator(random.NewSource(2), testLogger(), personas)

	npc := gen.GenerateEncounterNPC("merchant", Context{})
	if npc.Personality != "jovial" || npc.SpeakingStyle != "booming" {
		t.Errorf("expected persona source values, got %s/%s", npc.Personality, npc.SpeakingStyle)
	}

	// A miss falls back to the archetype default.
	npc = gen.GenerateEncounterNPC("bandit", Context{})
	if npc.Personality != "menacing" {
		t.Errorf("expected default bandit personality, got %s", npc.Personality)
	}
}

func TestGenerateNPC_UnknownArchetypeFallsBack(t *testing.T) {
	gen := NewGenerator(random.NewSource(4), testLogger(), nil)

	npc := gen.GenerateEncounterNPC("kraken_cultist", Context{})
	if npc.Name == "" {
		t.Error("fallback profile must still yield a name")
	}
	if npc.CanTrade {
		t.Error("fallback profile must not trade")
	}
	if npc.Personality != "guarded" {
		t.Errorf("expected fallback personality, got %s", npc.Personality)
	}
}

func TestGenerateNPC_TimestampDerivedIDs(t *testing.T) {
	gen := NewGenerator(random.NewSource(6), testLogger(), nil)

	ts := time.Date(2026, 3, 14, 9, 26, 53, 589793, time.UTC)
	gen.now = func() time.Time { return ts }

	npc := gen.GenerateEncounterNPC("pilgrim", Context{})
	if !strings.HasPrefix(npc.ID, "enc_") {
		t.Errorf("expected enc_ prefix, got %q", npc.ID)
	}
	if !strings.Contains(npc.ID, "589793") {
		t.Errorf("expected timestamp-derived id, got %q", npc.ID)
	}
}

func contains(table []string, s string) bool {
	for _, v := range table {
		if v == s {
			return true
		}
	}
	return false
}
