package persistence

import (
	"path/filepath"
	"testing"

	"github.com/ferrum-mmo/engine/internal/dynasty"
	"github.com/ferrum-mmo/engine/internal/economy"
	"github.com/ferrum-mmo/engine/internal/engine"
	"github.com/ferrum-mmo/engine/internal/military"
	"github.com/ferrum-mmo/engine/internal/resource"
	"github.com/ferrum-mmo/engine/internal/village"
	"github.com/ferrum-mmo/engine/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "world.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestVillageRoundTrip(t *testing.T) {
	db := openTestDB(t)

	owner := "player-1"
	in := &village.Village{
		ID:         "v-1",
		Name:       "Gniezno",
		OwnerID:    &owner,
		Kind:       village.KindPlayer,
		Position:   world.Coord{X: 12, Y: 34},
		Resources:  resource.Amounts{Wood: 900, Stone: 450, Iron: 120, Grain: 1300},
		LastUpdate: 123456,
		Buildings:  map[string]int{"woodcutter": 2, "wall": 1},
		BuildQueue: []village.BuildTask{
			{Building: "farm", Level: 1, StartTime: 1000, EndTime: 2000},
		},
		RecruitQueue: []village.RecruitTask{
			{Unit: "spearman", Count: 5, StartTime: 1000, EndTime: 6000},
		},
		Garrison:   map[string]int64{"spearman": 25},
		Population: 30,
		Loyalty:    80,
	}
	if err := db.SaveVillages([]*village.Village{in}); err != nil {
		t.Fatal(err)
	}

	loaded, err := db.LoadVillages()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded %d villages", len(loaded))
	}
	got := loaded[0]
	if got.ID != in.ID || got.Name != in.Name || got.Position != in.Position {
		t.Fatalf("identity mismatch: %+v", got)
	}
	if got.OwnerID == nil || *got.OwnerID != owner {
		t.Fatalf("owner = %v", got.OwnerID)
	}
	if got.Resources != in.Resources || got.LastUpdate != in.LastUpdate {
		t.Fatalf("ledger mismatch: %+v", got.Resources)
	}
	if got.Buildings["woodcutter"] != 2 || got.Garrison["spearman"] != 25 {
		t.Fatalf("buildings/garrison mismatch: %+v / %+v", got.Buildings, got.Garrison)
	}
	if len(got.BuildQueue) != 1 || got.BuildQueue[0].EndTime != 2000 {
		t.Fatalf("build queue mismatch: %+v", got.BuildQueue)
	}
	if len(got.RecruitQueue) != 1 || got.RecruitQueue[0].Count != 5 {
		t.Fatalf("recruit queue mismatch: %+v", got.RecruitQueue)
	}

	// Full replace: a second save with no villages empties the table.
	if err := db.SaveVillages(nil); err != nil {
		t.Fatal(err)
	}
	loaded, err = db.LoadVillages()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 0 {
		t.Fatalf("table not replaced: %d rows", len(loaded))
	}
}

func TestArmyRoundTrip(t *testing.T) {
	db := openTestDB(t)

	arrival := int64(99999)
	target := world.Coord{X: 5, Y: 6}
	in := &military.Army{
		ID:        "a-1",
		VillageID: "v-1",
		Units:     map[string]int64{"spearman": 10, "cavalry": 2},
		Origin:    world.Coord{X: 1, Y: 2},
		Target:    &target,
		Arrival:   &arrival,
		Status:    military.StatusMarching,
		Tactic:    military.TacticZasadzka,
		TravelMs:  3600000,
	}
	idle := &military.Army{
		ID:        "a-2",
		VillageID: "v-1",
		Units:     map[string]int64{"ram": 1},
		Origin:    world.Coord{X: 1, Y: 2},
		Status:    military.StatusIdle,
		Tactic:    military.TacticKlin,
	}
	if err := db.SaveArmies([]*military.Army{in, idle}); err != nil {
		t.Fatal(err)
	}

	loaded, err := db.LoadArmies()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d armies", len(loaded))
	}
	byID := map[string]*military.Army{loaded[0].ID: loaded[0], loaded[1].ID: loaded[1]}

	got := byID["a-1"]
	if got.Target == nil || *got.Target != target {
		t.Fatalf("target = %v", got.Target)
	}
	if got.Arrival == nil || *got.Arrival != arrival {
		t.Fatalf("arrival = %v", got.Arrival)
	}
	if got.Tactic != military.TacticZasadzka || got.Units["spearman"] != 10 {
		t.Fatalf("army mismatch: %+v", got)
	}

	if byID["a-2"].Target != nil || byID["a-2"].Arrival != nil {
		t.Fatal("idle army grew a target on reload")
	}
}

func TestLordAndVassalageRoundTrip(t *testing.T) {
	db := openTestDB(t)

	lords := map[string]*dynasty.Lord{
		"player-1": {
			Name:      "Mieszko Piast",
			DNA:       "A1B2C3D4E5F6G",
			Traits:    []string{"strategist", "scholar"},
			Flaws:     []string{"sickly"},
			BirthDate: 1000,
			DeathDate: 2000,
		},
	}
	if err := db.SaveLords(lords); err != nil {
		t.Fatal(err)
	}
	gotLords, err := db.LoadLords()
	if err != nil {
		t.Fatal(err)
	}
	lord := gotLords["player-1"]
	if lord == nil || lord.DNA != "A1B2C3D4E5F6G" || len(lord.Traits) != 2 || lord.Flaws[0] != "sickly" {
		t.Fatalf("lord mismatch: %+v", lord)
	}

	vs := economy.NewVassalage("v-1", "v-2", 2400)
	vs.PaidRansom = 300
	if err := db.SaveVassalages([]*economy.Vassalage{vs}); err != nil {
		t.Fatal(err)
	}
	gotVs, err := db.LoadVassalages()
	if err != nil {
		t.Fatal(err)
	}
	if len(gotVs) != 1 || gotVs[0].PaidRansom != 300 || gotVs[0].Status != economy.VassalActive {
		t.Fatalf("vassalage mismatch: %+v", gotVs)
	}
}

func TestReportsAppendOnly(t *testing.T) {
	db := openTestDB(t)

	report := &engine.BattleReport{
		ID:                "r-1",
		AttackerVillageID: "v-1",
		DefenderVillageID: "v-2",
		Winner:            military.SideAttacker,
		AttackerTactic:    military.TacticKlin,
		DefenderTactic:    military.TacticMurTarcz,
		AttackerLosses:    map[string]int64{"spearman": 3},
		DefenderLosses:    map[string]int64{"spearman": 7},
		Plunder:           resource.Amounts{Wood: 250},
		LoyaltyDelta:      -25,
		Narrative:         []string{"Atakujący skontrował taktykę obrońcy! (+20% siły)"},
		CreatedAt:         5000,
	}
	if err := db.SaveReports([]*engine.BattleReport{report}); err != nil {
		t.Fatal(err)
	}
	// Saving the same report again must not duplicate it.
	if err := db.SaveReports([]*engine.BattleReport{report}); err != nil {
		t.Fatal(err)
	}

	got, err := db.LoadReports(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("reports = %d, want 1", len(got))
	}
	if got[0].Plunder.Wood != 250 || got[0].AttackerLosses["spearman"] != 3 {
		t.Fatalf("report mismatch: %+v", got[0])
	}
}

func TestMetaAndEvents(t *testing.T) {
	db := openTestDB(t)

	if err := db.SaveMeta("seed", "42"); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveMeta("seed", "43"); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetMeta("seed")
	if err != nil {
		t.Fatal(err)
	}
	if got != "43" {
		t.Fatalf("meta = %q", got)
	}

	events := []engine.Event{
		{Time: 1, Description: "pierwsze", Category: "build"},
		{Time: 2, Description: "drugie", Category: "battle"},
	}
	if err := db.SaveEvents(events); err != nil {
		t.Fatal(err)
	}
	recent, err := db.RecentEvents(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].Description != "drugie" {
		t.Fatalf("recent = %+v", recent)
	}
}
