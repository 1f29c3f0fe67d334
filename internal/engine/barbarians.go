package engine

import (
	"sort"

	"github.com/ferrum-mmo/engine/internal/barbarian"
	"github.com/ferrum-mmo/engine/internal/military"
	"github.com/ferrum-mmo/engine/internal/village"
)

// raidMinGarrison is the smallest camp garrison that will march out.
const raidMinGarrison = 20

// SeedBarbarians places camps on empty map tiles and registers them as
// villages. Idempotent per world: callers seed once at generation time.
func (o *Orchestrator) SeedBarbarians(count int, now int64) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	w := barbarian.Seed(o.state.Map, count, o.RNG)
	placed := 0
	for _, camp := range w.Villages {
		if _, occupied := o.state.coordIndex[camp.Position]; occupied {
			continue
		}
		camp.LastUpdate = now
		o.state.AddVillage(camp)
		placed++
	}
	return placed
}

// TickBarbarians runs the camp AI for every barbarian village. Camps act
// at most once per cooldown window; a camp that acted may additionally
// mount a raid against a random player village.
func (o *Orchestrator) TickBarbarians(now int64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	camps := make([]*village.Village, 0)
	players := make([]*village.Village, 0)
	for _, v := range o.state.Villages {
		switch v.Kind {
		case village.KindBarbarian:
			camps = append(camps, v)
		case village.KindPlayer:
			players = append(players, v)
		}
	}
	sort.Slice(camps, func(i, j int) bool { return camps[i].ID < camps[j].ID })
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	for _, camp := range camps {
		action := barbarian.Tick(camp, o.Balance, now, o.RNG)
		if action == barbarian.ActionNone {
			continue
		}
		if camp.GarrisonCount() >= raidMinGarrison {
			if target := barbarian.SelectAttackTarget(players, o.RNG); target != nil {
				o.launchRaid(camp, target, now)
			}
		}
	}
}

// launchRaid sends half the camp garrison at the target with a random
// tactic. Caller holds the write lock.
func (o *Orchestrator) launchRaid(camp, target *village.Village, now int64) {
	units := make(map[string]int64)
	for kind, n := range camp.Garrison {
		if half := n / 2; half > 0 {
			units[kind] = half
		}
	}
	if len(units) == 0 {
		return
	}

	tactic := military.Tactics()[o.RNG.IntN(len(military.Tactics()))]
	if _, err := o.dispatchLocked(camp.ID, target.Position, units, tactic, now); err != nil {
		return
	}
	o.record(now, "barbarian", "%s ruszył na %s", camp.Name, target.Name)
}
