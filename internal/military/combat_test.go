package military

import (
	"errors"
	"testing"

	"github.com/ferrum-mmo/engine/internal/balance"
	"github.com/ferrum-mmo/engine/internal/entropy"
	"github.com/ferrum-mmo/engine/internal/resource"
)

func combatTable() *balance.Table {
	return &balance.Table{
		GameSpeed: 1.0,
		Units: map[string]balance.Unit{
			"spearman": {Cost: resource.Amounts{Wood: 50}, RecruitSeconds: 60, Speed: 4, Weight: 10, Population: 1},
			"cavalry":  {Cost: resource.Amounts{Wood: 100}, RecruitSeconds: 150, Speed: 9, Weight: 25, Population: 1},
			"ram":      {Cost: resource.Amounts{Wood: 150}, RecruitSeconds: 200, Speed: 2, Weight: 5, Population: 1},
			"catapult": {Cost: resource.Amounts{Wood: 200}, RecruitSeconds: 250, Speed: 2, Weight: 15, Population: 1},
		},
	}
}

func TestPower(t *testing.T) {
	tbl := combatTable()
	got, err := Power(tbl, map[string]int64{"spearman": 4, "cavalry": 2, "ram": 2})
	if err != nil {
		t.Fatal(err)
	}
	if got != 4*10+2*25+2*5 {
		t.Fatalf("power = %v", got)
	}

	if _, err := Power(tbl, map[string]int64{"dragon": 1}); !errors.Is(err, balance.ErrUnknownKind) {
		t.Fatalf("err = %v", err)
	}
}

func TestResolveCounterBattle(t *testing.T) {
	// 100 power vs 100 power, attacker Klin counters defender Mur Tarcz,
	// wall 0 → attacker power 120. Forced win draw: attacker loses 30%,
	// defender 70%.
	tbl := combatTable()
	attacker := map[string]int64{"spearman": 10} // power 100
	defender := map[string]int64{"spearman": 10}

	rng := &entropy.Scripted{Floats: []float64{0.0}} // below win probability
	out, err := Resolve(tbl, attacker, defender, TacticKlin, TacticMurTarcz, 0, rng)
	if err != nil {
		t.Fatal(err)
	}

	if out.AttackerPower != 120 {
		t.Fatalf("attacker power = %v, want 120", out.AttackerPower)
	}
	if out.DefenderPower != 100 {
		t.Fatalf("defender power = %v, want 100", out.DefenderPower)
	}
	if out.Winner != SideAttacker {
		t.Fatal("forced draw below winProbability must yield attacker win")
	}
	if out.AttackerLosses["spearman"] != 3 {
		t.Fatalf("attacker losses = %d, want 3", out.AttackerLosses["spearman"])
	}
	if out.DefenderLosses["spearman"] != 7 {
		t.Fatalf("defender losses = %d, want 7", out.DefenderLosses["spearman"])
	}
	if out.LoyaltyDelta != -25 {
		t.Fatalf("loyalty delta = %d, want -25", out.LoyaltyDelta)
	}
	if out.Desertion != 0 {
		t.Fatal("winner never deserts")
	}
	if len(out.Narrative) != 1 {
		t.Fatalf("narrative = %v", out.Narrative)
	}
}

func TestResolveReverseCounter(t *testing.T) {
	tbl := combatTable()
	units := map[string]int64{"spearman": 10}

	rng := &entropy.Scripted{Floats: []float64{0.99, 0.99}} // defender wins, no desertion
	out, err := Resolve(tbl, units, units, TacticMurTarcz, TacticKlin, 0, rng)
	if err != nil {
		t.Fatal(err)
	}
	if out.DefenderPower != 120 {
		t.Fatalf("defender power = %v, want 120", out.DefenderPower)
	}
	if out.Winner != SideDefender {
		t.Fatal("expected defender win")
	}
	if out.LoyaltyDelta != 0 {
		t.Fatalf("loyalty delta = %d, defender win must not cost loyalty", out.LoyaltyDelta)
	}
}

func TestResolveNoBonusOnTieOrNonAdjacent(t *testing.T) {
	tbl := combatTable()
	units := map[string]int64{"spearman": 10}
	rng := &entropy.Scripted{Floats: []float64{0.99}}

	// Same tactic: no bonus either way.
	out, _ := Resolve(tbl, units, units, TacticKlin, TacticKlin, 0, rng)
	if out.AttackerPower != 100 || out.DefenderPower != 100 {
		t.Fatalf("tie bonus applied: %v vs %v", out.AttackerPower, out.DefenderPower)
	}

	// Opposite corners of the cycle: Klin vs Deszcz Strzał, neither counters.
	out, _ = Resolve(tbl, units, units, TacticKlin, TacticDeszczStrzal, 0, &entropy.Scripted{Floats: []float64{0.99}})
	if out.AttackerPower != 100 || out.DefenderPower != 100 {
		t.Fatalf("non-adjacent bonus applied: %v vs %v", out.AttackerPower, out.DefenderPower)
	}
}

func TestResolveWallBonus(t *testing.T) {
	tbl := combatTable()
	units := map[string]int64{"spearman": 10}
	rng := &entropy.Scripted{Floats: []float64{0.99}}

	out, _ := Resolve(tbl, units, units, TacticKlin, TacticKlin, 5, rng)
	if out.DefenderPower != 150 {
		t.Fatalf("wall 5 defender power = %v, want 150", out.DefenderPower)
	}
}

func TestResolveDesertion(t *testing.T) {
	tbl := combatTable()
	attacker := map[string]int64{"spearman": 20}
	defender := map[string]int64{"spearman": 20}

	// First draw 0.99 → defender wins; second draw 0.1 < 0.5 → desertion.
	rng := &entropy.Scripted{Floats: []float64{0.99, 0.1}}
	out, err := Resolve(tbl, attacker, defender, TacticKlin, TacticKlin, 0, rng)
	if err != nil {
		t.Fatal(err)
	}
	if out.Desertion != 2 { // 10% of 20
		t.Fatalf("desertion = %d, want 2", out.Desertion)
	}

	// Failing the coin flip yields zero desertion.
	rng = &entropy.Scripted{Floats: []float64{0.99, 0.9}}
	out, _ = Resolve(tbl, attacker, defender, TacticKlin, TacticKlin, 0, rng)
	if out.Desertion != 0 {
		t.Fatalf("desertion = %d, want 0", out.Desertion)
	}
}

func TestResolveEmptyForces(t *testing.T) {
	tbl := combatTable()
	out, err := Resolve(tbl, map[string]int64{}, map[string]int64{}, TacticKlin, TacticKlin, 0, &entropy.Scripted{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Winner != SideDefender {
		t.Fatal("empty battle defaults to defender")
	}
}

func TestResolveSeededDeterminism(t *testing.T) {
	tbl := combatTable()
	attacker := map[string]int64{"spearman": 30, "cavalry": 5}
	defender := map[string]int64{"spearman": 25, "catapult": 2}

	a, err := Resolve(tbl, attacker, defender, TacticZasadzka, TacticMurTarcz, 2, entropy.Seeded(99))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Resolve(tbl, attacker, defender, TacticZasadzka, TacticMurTarcz, 2, entropy.Seeded(99))
	if a.Winner != b.Winner || a.Desertion != b.Desertion {
		t.Fatal("same seed must give identical outcomes")
	}
}
