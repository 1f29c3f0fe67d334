package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ferrum-mmo/engine/internal/balance"
	"github.com/ferrum-mmo/engine/internal/entropy"
	"github.com/ferrum-mmo/engine/internal/military"
	"github.com/ferrum-mmo/engine/internal/village"
	"github.com/ferrum-mmo/engine/internal/world"
)

// maxEvents caps the in-memory event log.
const maxEvents = 1000

// ErrVillageNotFound is returned when an operation names an unknown village.
var ErrVillageNotFound = fmt.Errorf("village not found")

// ErrNotEnoughTroops is returned when a dispatch asks for more units than
// the garrison holds.
var ErrNotEnoughTroops = fmt.Errorf("not enough troops in garrison")

// Orchestrator applies game actions to the shared State. One RWMutex
// guards the whole world: every mutating operation holds the write lock
// for its full critical section, readers snapshot under the read lock
// via View. Mutators therefore serialize with each other (which covers
// the per-village requirement) and never interleave with a reader
// walking village maps.
type Orchestrator struct {
	Balance *balance.Table
	RNG     entropy.Source

	mu    sync.RWMutex // guards state and everything reachable from it
	state *State

	eventsMu sync.Mutex // guards events and pending, independent of mu
	events   []Event
	pending  []Event // events recorded since the last DrainEvents
}

// NewOrchestrator wires an orchestrator around an existing world state.
func NewOrchestrator(tbl *balance.Table, rng entropy.Source, st *State) *Orchestrator {
	return &Orchestrator{
		Balance: tbl,
		RNG:     rng,
		state:   st,
	}
}

// State exposes the world aggregate. Concurrent callers must go through
// View instead; direct access is for single-threaded setup and tests.
func (o *Orchestrator) State() *State {
	return o.state
}

// View runs fn while holding the read lock. No mutator runs during fn,
// so the snapshot it sees is consistent across villages.
func (o *Orchestrator) View(fn func(st *State)) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	fn(o.state)
}

// record appends an event, trimming the log when it grows past the cap.
// Events have their own mutex so mutators can record while holding the
// world lock.
func (o *Orchestrator) record(now int64, category, format string, args ...any) {
	e := Event{Time: now, Description: fmt.Sprintf(format, args...), Category: category}
	o.eventsMu.Lock()
	o.events = append(o.events, e)
	if len(o.events) > maxEvents {
		o.events = o.events[len(o.events)-maxEvents:]
	}
	o.pending = append(o.pending, e)
	o.eventsMu.Unlock()
}

// DrainEvents hands back everything recorded since the previous drain, for
// persistence. The in-memory log for API readers is unaffected.
func (o *Orchestrator) DrainEvents() []Event {
	o.eventsMu.Lock()
	defer o.eventsMu.Unlock()
	out := o.pending
	o.pending = nil
	return out
}

// RecentEvents returns up to n events, newest last.
func (o *Orchestrator) RecentEvents(n int) []Event {
	o.eventsMu.Lock()
	defer o.eventsMu.Unlock()
	start := 0
	if len(o.events) > n {
		start = len(o.events) - n
	}
	out := make([]Event, len(o.events)-start)
	copy(out, o.events[start:])
	return out
}

// ReconcileVillage catches a single village up to now: resource ledger
// first, then build completions, then recruitment completions. Safe to
// call repeatedly with the same timestamp.
func (o *Orchestrator) ReconcileVillage(id string, now int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	v, ok := o.state.Villages[id]
	if !ok {
		return fmt.Errorf("reconcile %s: %w", id, ErrVillageNotFound)
	}
	o.reconcileLocked(v, now)
	return nil
}

// reconcileLocked runs the reconcile pipeline. Caller holds the write lock.
func (o *Orchestrator) reconcileLocked(v *village.Village, now int64) {
	village.Reconcile(v, o.Balance, now)

	for _, t := range v.BuildQueue {
		if t.EndTime <= now {
			o.record(now, "build", "%s ukończono %s (poziom %d)", v.Name, t.Building, t.Level)
		}
	}
	village.ProcessBuildQueue(v, now)

	for _, t := range v.RecruitQueue {
		if t.EndTime <= now {
			o.record(now, "recruit", "%s wyszkolono %d × %s", v.Name, t.Count, t.Unit)
		}
	}
	village.ProcessRecruitmentQueue(v, o.Balance, now)
}

// ReconcileAll catches every village up to now.
func (o *Orchestrator) ReconcileAll(now int64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, id := range o.sortedVillageIDs() {
		o.reconcileLocked(o.state.Villages[id], now)
	}
}

// sortedVillageIDs returns village IDs in a stable order so ticks process
// the world deterministically. Caller holds a lock.
func (o *Orchestrator) sortedVillageIDs() []string {
	ids := make([]string, 0, len(o.state.Villages))
	for id := range o.state.Villages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EnqueueBuild reconciles the village and appends a construction task.
func (o *Orchestrator) EnqueueBuild(villageID, building string, now int64, bonus village.Bonus) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	v, ok := o.state.Villages[villageID]
	if !ok {
		return fmt.Errorf("build in %s: %w", villageID, ErrVillageNotFound)
	}
	o.reconcileLocked(v, now)
	if err := village.EnqueueBuild(v, o.Balance, building, now, bonus); err != nil {
		return err
	}
	task := v.BuildQueue[len(v.BuildQueue)-1]
	o.record(now, "build", "%s rozpoczęto budowę %s (poziom %d)", v.Name, task.Building, task.Level)
	return nil
}

// EnqueueRecruitment reconciles the village and appends a training task.
func (o *Orchestrator) EnqueueRecruitment(villageID, unit string, count int, now int64, bonus village.Bonus) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	v, ok := o.state.Villages[villageID]
	if !ok {
		return fmt.Errorf("recruit in %s: %w", villageID, ErrVillageNotFound)
	}
	o.reconcileLocked(v, now)
	if err := village.EnqueueRecruitment(v, o.Balance, unit, count, now, bonus); err != nil {
		return err
	}
	task := v.RecruitQueue[len(v.RecruitQueue)-1]
	o.record(now, "recruit", "%s rozpoczęto szkolenie %d × %s", v.Name, task.Count, task.Unit)
	return nil
}

// DispatchArmy debits units from the garrison and sends them toward the
// target coordinate. The army resolves on arrival.
func (o *Orchestrator) DispatchArmy(villageID string, target world.Coord, units map[string]int64, tactic military.Tactic, now int64) (*military.Army, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dispatchLocked(villageID, target, units, tactic, now)
}

// dispatchLocked is DispatchArmy's body. Caller holds the write lock.
func (o *Orchestrator) dispatchLocked(villageID string, target world.Coord, units map[string]int64, tactic military.Tactic, now int64) (*military.Army, error) {
	v, ok := o.state.Villages[villageID]
	if !ok {
		return nil, fmt.Errorf("dispatch from %s: %w", villageID, ErrVillageNotFound)
	}
	o.reconcileLocked(v, now)

	for kind, n := range units {
		if n <= 0 {
			continue
		}
		if v.Garrison[kind] < n {
			return nil, fmt.Errorf("dispatch %d × %s from %s: %w", n, kind, v.Name, ErrNotEnoughTroops)
		}
	}

	army, err := military.Dispatch(o.Balance, villageID, v.Position, target, units, tactic, now)
	if err != nil {
		return nil, err
	}
	for kind, n := range army.Units {
		v.Garrison[kind] -= n
		if v.Garrison[kind] == 0 {
			delete(v.Garrison, kind)
		}
	}

	o.state.Armies[army.ID] = army
	o.record(now, "battle", "%s wyruszyła armia (%d jednostek) w kierunku (%d,%d)", v.Name, army.TotalUnits(), target.X, target.Y)
	return army, nil
}
