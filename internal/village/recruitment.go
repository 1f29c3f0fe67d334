package village

import (
	"fmt"

	"github.com/ferrum-mmo/engine/internal/balance"
)

// EnqueueRecruitment appends a training task for count units of one kind.
// Beyond the build-queue checks, recruitment is gated by farm capacity:
// current population plus every head already queued plus this order must
// fit under the farm's ceiling. Duration scales linearly with count.
func EnqueueRecruitment(v *Village, tbl *balance.Table, unit string, count int, now int64, bonus Bonus) error {
	if count <= 0 {
		return fmt.Errorf("recruit count must be positive, got %d", count)
	}
	if len(v.RecruitQueue) >= bonus.slots() {
		return ErrCapacityExceeded
	}

	popPerUnit, err := tbl.UnitPopulation(unit)
	if err != nil {
		return err
	}
	farmCap := tbl.FarmCapacity(v.BuildingLevel("farm"))
	needed := popPerUnit * int64(count)
	if v.Population+pendingPopulation(v, tbl)+needed > farmCap {
		return ErrPopulationCapacityExceeded
	}

	cost, err := tbl.UnitCost(unit, count)
	if err != nil {
		return err
	}
	durationMs, err := tbl.RecruitTime(unit, count)
	if err != nil {
		return err
	}
	if bonus.RecruitSpeed > 0 {
		durationMs = int64(float64(durationMs) / (1 + bonus.RecruitSpeed))
	}

	if err := SpendResources(v, cost); err != nil {
		return err
	}

	start := now
	if n := len(v.RecruitQueue); n > 0 {
		start = v.RecruitQueue[n-1].EndTime
	}
	v.RecruitQueue = append(v.RecruitQueue, RecruitTask{
		Unit:      unit,
		Count:     count,
		StartTime: start,
		EndTime:   start + durationMs,
	})
	return nil
}

// pendingPopulation is the farm capacity the queued tasks will consume,
// weighted by each unit kind's population cost.
func pendingPopulation(v *Village, tbl *balance.Table) int64 {
	var n int64
	for _, t := range v.RecruitQueue {
		if pop, err := tbl.UnitPopulation(t.Unit); err == nil {
			n += pop * int64(t.Count)
		}
	}
	return n
}

// ProcessRecruitmentQueue promotes finished training into the garrison and
// population, then rechains the remaining tasks from now if anything
// completed. Mirrors ProcessBuildQueue, including idempotence.
func ProcessRecruitmentQueue(v *Village, tbl *balance.Table, now int64) bool {
	changed := false
	remaining := v.RecruitQueue[:0:0]
	for _, t := range v.RecruitQueue {
		if t.EndTime <= now {
			if v.Garrison == nil {
				v.Garrison = make(map[string]int64)
			}
			v.Garrison[t.Unit] += int64(t.Count)
			if pop, err := tbl.UnitPopulation(t.Unit); err == nil {
				v.Population += pop * int64(t.Count)
			}
			changed = true
			continue
		}
		remaining = append(remaining, t)
	}

	if changed {
		v.RecruitQueue = rechainRecruit(remaining, now)
	}
	return changed
}

func rechainRecruit(tasks []RecruitTask, now int64) []RecruitTask {
	out := make([]RecruitTask, len(tasks))
	start := now
	for i, t := range tasks {
		duration := t.EndTime - t.StartTime
		out[i] = RecruitTask{
			Unit:      t.Unit,
			Count:     t.Count,
			StartTime: start,
			EndTime:   start + duration,
		}
		start = out[i].EndTime
	}
	return out
}
