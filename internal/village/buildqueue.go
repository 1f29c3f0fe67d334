package village

import (
	"github.com/ferrum-mmo/engine/internal/balance"
)

// EnqueueBuild appends a construction task for the next level of a building
// kind. Validation happens before any state is written: capacity first,
// then level cap (counting levels already pending in the queue), then cost.
// The new task starts when the queue tail ends, or immediately on an empty
// queue.
func EnqueueBuild(v *Village, tbl *balance.Table, kind string, now int64, bonus Bonus) error {
	if len(v.BuildQueue) >= bonus.slots() {
		return ErrCapacityExceeded
	}

	maxLevel, err := tbl.MaxLevel(kind)
	if err != nil {
		return err
	}
	targetLevel := v.BuildingLevel(kind) + v.pendingLevels(kind) + 1
	if targetLevel > maxLevel {
		return ErrAlreadyMaxLevel
	}

	cost, err := tbl.BuildingCost(kind, targetLevel)
	if err != nil {
		return err
	}
	durationMs, err := tbl.BuildingTime(kind, targetLevel)
	if err != nil {
		return err
	}
	if bonus.BuildSpeed > 0 {
		durationMs = int64(float64(durationMs) / (1 + bonus.BuildSpeed))
	}

	if err := SpendResources(v, cost); err != nil {
		return err
	}

	start := now
	if n := len(v.BuildQueue); n > 0 {
		start = v.BuildQueue[n-1].EndTime
	}
	v.BuildQueue = append(v.BuildQueue, BuildTask{
		Building:  kind,
		Level:     targetLevel,
		StartTime: start,
		EndTime:   start + durationMs,
	})
	return nil
}

// ProcessBuildQueue promotes every task whose end time has passed into the
// building map and, if anything completed, rechains the remaining tasks
// from now. Rechaining models the next queued job starting the instant a
// slot frees, regardless of its stale scheduled start. Idempotent: a second
// call with the same now promotes nothing further.
func ProcessBuildQueue(v *Village, now int64) bool {
	changed := false
	remaining := v.BuildQueue[:0:0]
	for _, t := range v.BuildQueue {
		if t.EndTime <= now {
			if v.Buildings == nil {
				v.Buildings = make(map[string]int)
			}
			v.Buildings[t.Building] = t.Level
			changed = true
			continue
		}
		remaining = append(remaining, t)
	}

	if changed {
		v.BuildQueue = rechainBuild(remaining, now)
	}
	return changed
}

// rechainBuild returns a fresh queue whose head starts at now and whose
// tasks follow back to back, each keeping its original duration. The input
// slice is not aliased by the result.
func rechainBuild(tasks []BuildTask, now int64) []BuildTask {
	out := make([]BuildTask, len(tasks))
	start := now
	for i, t := range tasks {
		duration := t.EndTime - t.StartTime
		out[i] = BuildTask{
			Building:  t.Building,
			Level:     t.Level,
			StartTime: start,
			EndTime:   start + duration,
		}
		start = out[i].EndTime
	}
	return out
}
