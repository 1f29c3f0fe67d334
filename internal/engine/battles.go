package engine

import (
	"sort"

	"github.com/google/uuid"

	"github.com/ferrum-mmo/engine/internal/economy"
	"github.com/ferrum-mmo/engine/internal/military"
	"github.com/ferrum-mmo/engine/internal/village"
)

// plunderRate is the share of the defender's stock the attacker carries
// off after a won battle.
const plunderRate = 0.25

// ransomHours sizes a new vassal's ransom at this many hours of its own
// production.
const ransomHours = 24

// victoryExperience accrues to the winning attacker's lord per battle.
const victoryExperience = 10

// AdvanceArmies moves every army along its march and resolves arrivals.
// An army reaching its target fights; an army reaching home merges back
// into the garrison and is removed. Runs as one critical section, so a
// battle's writes to both villages land atomically from any reader's
// point of view.
func (o *Orchestrator) AdvanceArmies(now int64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	armies := make([]*military.Army, 0, len(o.state.Armies))
	for _, a := range o.state.Armies {
		armies = append(armies, a)
	}
	// Deterministic order regardless of map iteration.
	sort.Slice(armies, func(i, j int) bool { return armies[i].ID < armies[j].ID })

	for _, a := range armies {
		if !military.Advance(a, now) {
			continue
		}
		switch a.Status {
		case military.StatusAttacking:
			o.resolveArrival(a, now)
		case military.StatusIdle:
			o.returnHome(a, now)
		}
	}
}

// resolveArrival fights the battle at the army's target coordinate.
// Caller holds the write lock.
func (o *Orchestrator) resolveArrival(a *military.Army, now int64) {
	defender := o.state.VillageAt(*a.Target)
	attackerHome := o.state.Villages[a.VillageID]

	if defender == nil {
		o.record(now, "battle", "armia z %s nie zastała nikogo u celu", a.VillageID)
		military.BeginReturn(a, now)
		return
	}
	if defender.ID == a.VillageID {
		// Marched home on purpose; treat as a reinforcement transfer.
		o.returnHome(a, now)
		return
	}

	// Catch the defender up so plunder sees current stock.
	o.reconcileLocked(defender, now)

	defenderTactic := military.Tactics()[o.RNG.IntN(len(military.Tactics()))]
	out, err := military.Resolve(o.Balance, a.Units, defender.Garrison, a.Tactic, defenderTactic, defender.WallLevel(), o.RNG)
	if err != nil {
		o.record(now, "battle", "bitwa pod %s nie doszła do skutku: %v", defender.Name, err)
		military.BeginReturn(a, now)
		return
	}

	o.applyGarrisonLosses(defender, out.DefenderLosses)
	survivors := a.ApplyLosses(out.AttackerLosses)
	if out.Desertion > 0 {
		survivors = o.applyDesertion(a, out.Desertion)
	}
	if attackerHome != nil {
		o.debitPopulation(attackerHome, out.AttackerLosses)
	}

	report := &BattleReport{
		ID:                uuid.NewString(),
		AttackerVillageID: a.VillageID,
		DefenderVillageID: defender.ID,
		Winner:            out.Winner,
		AttackerTactic:    out.AttackerTactic,
		DefenderTactic:    out.DefenderTactic,
		AttackerLosses:    out.AttackerLosses,
		DefenderLosses:    out.DefenderLosses,
		Desertion:         out.Desertion,
		LoyaltyDelta:      out.LoyaltyDelta,
		Prisoners:         economy.CapturePrisoners(out.AttackerLosses, out.DefenderLosses),
		Narrative:         out.Narrative,
		CreatedAt:         now,
	}

	if out.Winner == military.SideAttacker {
		report.Plunder = defender.Resources.Scale(plunderRate)
		defender.Resources = defender.Resources.Sub(report.Plunder)
		if attackerHome != nil {
			attackerHome.Resources = attackerHome.Resources.Add(report.Plunder)
		}
		defender.AdjustLoyalty(out.LoyaltyDelta)
		if defender.Loyalty == 0 {
			if defender.Kind == village.KindBarbarian {
				o.razeCamp(defender, now)
			} else {
				o.subjugate(attackerHome, defender, now)
			}
		}
		o.creditLordExperience(attackerHome, victoryExperience)
		o.record(now, "battle", "armia z %s zwyciężyła pod %s (łup: %d surowców)", a.VillageID, defender.Name, report.Plunder.Total())
	} else {
		o.record(now, "battle", "%s odparła atak z %s", defender.Name, a.VillageID)
	}

	o.state.Reports = append(o.state.Reports, report)

	if !survivors {
		o.record(now, "battle", "armia z %s została wybita do nogi", a.VillageID)
		delete(o.state.Armies, a.ID)
		return
	}
	military.BeginReturn(a, now)
}

// returnHome merges a homecoming army back into its garrison. Caller
// holds the write lock.
func (o *Orchestrator) returnHome(a *military.Army, now int64) {
	if home := o.state.Villages[a.VillageID]; home != nil {
		for kind, n := range a.Units {
			home.Garrison[kind] += n
		}
		o.record(now, "battle", "armia wróciła do %s (%d jednostek)", home.Name, a.TotalUnits())
	}
	delete(o.state.Armies, a.ID)
}

// subjugate creates a vassalage when a player defender's loyalty bottoms
// out. Caller holds the write lock.
func (o *Orchestrator) subjugate(attackerHome, defender *village.Village, now int64) {
	if attackerHome == nil {
		return
	}
	for _, vs := range o.state.Vassals {
		if vs.VassalID == defender.ID && vs.Status == economy.VassalActive {
			return
		}
	}

	ransom := village.Production(defender, o.Balance).Total() * ransomHours
	vs := economy.NewVassalage(attackerHome.ID, defender.ID, ransom)
	o.state.Vassals = append(o.state.Vassals, vs)
	o.record(now, "economy", "%s złożyła hołd lenny %s (okup: %d)", defender.Name, attackerHome.Name, ransom)
}

// razeCamp removes a broken barbarian camp from the world. Camps are
// never vassalized; a camp beaten down to zero loyalty is destroyed and
// its tile freed. Caller holds the write lock.
func (o *Orchestrator) razeCamp(camp *village.Village, now int64) {
	delete(o.state.Villages, camp.ID)
	delete(o.state.coordIndex, camp.Position)
	o.record(now, "battle", "obóz %s został zrównany z ziemią", camp.Name)
}

// creditLordExperience rewards the ruling lord of a victorious village.
// Caller holds the write lock.
func (o *Orchestrator) creditLordExperience(home *village.Village, xp int64) {
	if home == nil || home.OwnerID == nil {
		return
	}
	if lord := o.state.Lords[*home.OwnerID]; lord != nil {
		lord.AddExperience(xp)
	}
}

// applyGarrisonLosses subtracts battle losses from a village garrison and
// its fed population.
func (o *Orchestrator) applyGarrisonLosses(v *village.Village, losses map[string]int64) {
	for kind, n := range losses {
		v.Garrison[kind] -= n
		if v.Garrison[kind] <= 0 {
			delete(v.Garrison, kind)
		}
	}
	o.debitPopulation(v, losses)
}

// debitPopulation frees farm capacity for units that died.
func (o *Orchestrator) debitPopulation(v *village.Village, losses map[string]int64) {
	for kind, n := range losses {
		pop, err := o.Balance.UnitPopulation(kind)
		if err != nil {
			continue
		}
		v.Population -= pop * n
	}
	if v.Population < 0 {
		v.Population = 0
	}
}

// applyDesertion strips deserting heads from the army, largest stacks
// first, and reports whether anyone is left.
func (o *Orchestrator) applyDesertion(a *military.Army, count int64) bool {
	kinds := make([]string, 0, len(a.Units))
	for kind := range a.Units {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if a.Units[kinds[i]] != a.Units[kinds[j]] {
			return a.Units[kinds[i]] > a.Units[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})
	for _, kind := range kinds {
		if count <= 0 {
			break
		}
		take := a.Units[kind]
		if take > count {
			take = count
		}
		a.Units[kind] -= take
		if a.Units[kind] == 0 {
			delete(a.Units, kind)
		}
		count -= take
	}
	return a.TotalUnits() > 0
}
