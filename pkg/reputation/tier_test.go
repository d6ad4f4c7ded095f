package reputation

import "testing"

func TestTierCatalog_PartitionCompleteness(t *testing.T) {
	catalog := DefaultTierCatalog()

	for s := -2000; s <= 2000; s++ {
		matches := 0
		for _, tier := range catalog.Tiers {
			if tier.Contains(s) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("score %d matched %d tiers, want exactly 1", s, matches)
		}
	}
}

func TestTierCatalog_Validate(t *testing.T) {
	if problems := DefaultTierCatalog().Validate(); len(problems) > 0 {
		t.Errorf("default catalog should validate cleanly, got: %v", problems)
	}

	broken := &TierCatalog{Tiers: []Tier{
		{ID: "low", MinScore: ScoreFloor, MaxScore: -10},
		{ID: "high", MinScore: 0, MaxScore: ScoreCeiling}, // gap at [-9,-1]
	}}
	if problems := broken.Validate(); len(problems) == 0 {
		t.Error("expected validation problems for gapped catalog")
	}
}

func TestTierCatalog_EffectsMonotonic(t *testing.T) {
	catalog := DefaultTierCatalog()

	for i := 1; i < len(catalog.Tiers); i++ {
		prev := catalog.Tiers[i-1].Effects
		cur := catalog.Tiers[i].Effects

		if cur.PriceModifier >= prev.PriceModifier {
			t.Errorf("price modifier must strictly decrease: %s=%.2f then %s=%.2f",
				catalog.Tiers[i-1].ID, prev.PriceModifier, catalog.Tiers[i].ID, cur.PriceModifier)
		}
		if cur.NPCTrust <= prev.NPCTrust {
			t.Errorf("npc trust must strictly increase: %s then %s",
				catalog.Tiers[i-1].ID, catalog.Tiers[i].ID)
		}
		if cur.BountyMultiplier >= prev.BountyMultiplier {
			t.Errorf("bounty multiplier must strictly decrease: %s then %s",
				catalog.Tiers[i-1].ID, catalog.Tiers[i].ID)
		}
		if len(cur.SpecialAccess) < len(prev.SpecialAccess) {
			t.Errorf("special access set must not shrink: %s then %s",
				catalog.Tiers[i-1].ID, catalog.Tiers[i].ID)
		}
	}
}

func TestTierForScore_DefensiveDefault(t *testing.T) {
	broken := &TierCatalog{Tiers: []Tier{
		{ID: "only", MinScore: 0, MaxScore: 10},
	}}

	tier := broken.TierForScore(-50)
	if tier.ID != "neutral" {
		t.Errorf("expected neutral default tier, got %q", tier.ID)
	}
	if tier.Effects.PriceModifier != 1.0 {
		t.Errorf("default tier should carry neutral price modifier, got %v", tier.Effects.PriceModifier)
	}
}

func TestTierCatalog_ByID(t *testing.T) {
	catalog := DefaultTierCatalog()

	tier, ok := catalog.ByID("villain")
	if !ok {
		t.Fatal("expected villain tier to exist")
	}
	if !tier.Effects.GuardHostility {
		t.Error("villain tier should have hostile guards")
	}

	if _, ok := catalog.ByID("saint"); ok {
		t.Error("expected lookup miss for unknown tier id")
	}
}
