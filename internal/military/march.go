package military

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/ferrum-mmo/engine/internal/balance"
	"github.com/ferrum-mmo/engine/internal/world"
)

// ErrInvalidTarget is returned when a march target lies off the grid.
var ErrInvalidTarget = errors.New("march target out of bounds")

// ErrEmptyForce is returned when a dispatch carries no units.
var ErrEmptyForce = errors.New("army has no units")

const msPerHour = 3_600_000

// TravelTime computes the one-way march duration in milliseconds. The
// slowest unit kind in the force governs the whole formation.
func TravelTime(tbl *balance.Table, from, to world.Coord, units map[string]int64) (int64, error) {
	slowest := math.MaxFloat64
	any := false
	for kind, count := range units {
		if count <= 0 {
			continue
		}
		speed, err := tbl.UnitSpeed(kind)
		if err != nil {
			return 0, err
		}
		if speed < slowest {
			slowest = speed
		}
		any = true
	}
	if !any {
		return 0, ErrEmptyForce
	}

	dist := world.Distance(from, to)
	return int64(dist / slowest * msPerHour), nil
}

// Dispatch creates a marching army bound for target. It validates the
// target and the force but does not touch the origin village; debiting the
// garrison is the caller's job, done under the same per-village lock.
func Dispatch(tbl *balance.Table, villageID string, origin, target world.Coord, units map[string]int64, tactic Tactic, now int64) (*Army, error) {
	if !target.InBounds() {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrInvalidTarget, target.X, target.Y)
	}
	if !tactic.Valid() {
		return nil, fmt.Errorf("unknown tactic %q", tactic)
	}

	travel, err := TravelTime(tbl, origin, target, units)
	if err != nil {
		return nil, err
	}

	force := make(map[string]int64, len(units))
	for kind, count := range units {
		if count > 0 {
			force[kind] = count
		}
	}

	arrival := now + travel
	tgt := target
	return &Army{
		ID:        uuid.NewString(),
		VillageID: villageID,
		Units:     force,
		Origin:    origin,
		Target:    &tgt,
		Arrival:   &arrival,
		Status:    StatusMarching,
		Tactic:    tactic,
		TravelMs:  travel,
	}, nil
}

// Advance moves the army state machine forward for the current time.
// Returns true when a transition happened. The marching → attacking edge is
// the engagement point: the caller resolves the battle there and then calls
// BeginReturn. The returning → idle edge means the survivors are home; the
// caller merges them back into the garrison.
func Advance(a *Army, now int64) bool {
	if a.Arrival == nil || *a.Arrival > now {
		return false
	}
	switch a.Status {
	case StatusMarching:
		a.Status = StatusAttacking
		return true
	case StatusReturning:
		a.Status = StatusIdle
		a.Target = nil
		a.Arrival = nil
		return true
	}
	return false
}

// BeginReturn turns the army around after an engagement. The return leg
// takes as long as the outbound march.
func BeginReturn(a *Army, now int64) {
	home := a.Origin
	arrival := now + a.TravelMs
	a.Status = StatusReturning
	a.Target = &home
	a.Arrival = &arrival
}
