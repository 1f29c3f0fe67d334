// Package barbarian drives the autonomous non-player villages. Barbarians
// deliberately bypass the player economy: no build queue, no recruitment
// queue, just direct mutation on an independent 30-second action timer.
// All state lives in a World value owned by the orchestrator — there are no
// package-level maps and no free-running timers here.
package barbarian

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ferrum-mmo/engine/internal/balance"
	"github.com/ferrum-mmo/engine/internal/entropy"
	"github.com/ferrum-mmo/engine/internal/resource"
	"github.com/ferrum-mmo/engine/internal/village"
	"github.com/ferrum-mmo/engine/internal/world"
)

const (
	// ActionCooldownMs is the minimum gap between two actions of one camp.
	ActionCooldownMs = 30_000

	// ResourceCap bounds each barbarian resource stockpile.
	ResourceCap = 5000

	gatherChance       = 0.5
	recruitChance      = 0.3
	attackSelectChance = 0.3
)

// recruitable is the restricted unit subset barbarians may train.
var recruitable = []string{"spearman", "archer", "cavalry"}

// Action reports what a camp did on one tick.
type Action uint8

const (
	ActionNone    Action = iota // cooldown not elapsed
	ActionGather
	ActionRecruit
	ActionIdle // cooldown elapsed, camp chose to do nothing
)

// World holds every barbarian camp. The orchestrator owns the value and
// advances it with explicit Tick calls.
type World struct {
	Villages []*village.Village
}

// Seed places count barbarian camps on defensible terrain. Camp level and
// garrison scale with the draw; stronger camps sit on higher ground purely
// because BarbarianSites favors it.
func Seed(m *world.Map, count int, rng entropy.Source) *World {
	sites := world.BarbarianSites(m, count, rng)
	w := &World{Villages: make([]*village.Village, 0, len(sites))}

	for i, site := range sites {
		level := 1 + rng.IntN(5)
		v := &village.Village{
			ID:       uuid.NewString(),
			Name:     fmt.Sprintf("Obóz Barbarzyńców %d", i+1),
			Kind:     village.KindBarbarian,
			Position: site,
			Level:    level,
			Loyalty:  100,
			Resources: resource.Amounts{
				Wood:  int64(rng.Float64() * 1000),
				Stone: int64(rng.Float64() * 800),
				Iron:  int64(rng.Float64() * 600),
				Grain: int64(rng.Float64() * 1200),
			},
			Garrison: map[string]int64{
				"spearman": int64(20 + rng.IntN(50)),
				"archer":   int64(10 + rng.IntN(30)),
				"cavalry":  int64(5 + rng.IntN(10)),
			},
		}
		w.Villages = append(w.Villages, v)
	}
	return w
}

// Tick advances one camp. If the cooldown has elapsed the camp performs
// exactly one stochastic action — 50% gather, 30% recruit, 20% nothing —
// and stamps LastAction to now.
func Tick(v *village.Village, tbl *balance.Table, now int64, rng entropy.Source) Action {
	if now-v.LastAction <= ActionCooldownMs {
		return ActionNone
	}
	v.LastAction = now

	roll := rng.Float64()
	switch {
	case roll < gatherChance:
		gather(v)
		return ActionGather
	case roll < gatherChance+recruitChance:
		if recruit(v, tbl, rng) {
			return ActionRecruit
		}
		return ActionIdle
	default:
		return ActionIdle
	}
}

// gather applies one level-scaled haul split across the four resources,
// capped per resource.
func gather(v *village.Village) {
	rate := float64(v.Level * 10)
	haul := resource.Amounts{
		Wood:  int64(rate * 0.3),
		Stone: int64(rate * 0.25),
		Iron:  int64(rate * 0.2),
		Grain: int64(rate * 0.25),
	}
	v.Resources = v.Resources.Add(haul).Clamp(ResourceCap)
}

// recruit trains a single unit of a random restricted kind when the
// stockpile affords it.
func recruit(v *village.Village, tbl *balance.Table, rng entropy.Source) bool {
	kind := recruitable[rng.IntN(len(recruitable))]
	cost, err := tbl.UnitCost(kind, 1)
	if err != nil {
		return false
	}
	if !v.Resources.Covers(cost) {
		return false
	}
	v.Resources = v.Resources.Sub(cost)
	if v.Garrison == nil {
		v.Garrison = make(map[string]int64)
	}
	v.Garrison[kind]++
	return true
}

// SelectAttackTarget picks a player village to raid, or nil. The 30% raid
// chance and the uniform pick are both drawn from rng.
func SelectAttackTarget(playerVillages []*village.Village, rng entropy.Source) *village.Village {
	if len(playerVillages) == 0 {
		return nil
	}
	if rng.Float64() >= attackSelectChance {
		return nil
	}
	return playerVillages[rng.IntN(len(playerVillages))]
}
