// Package military provides armies, the march planner, the tactics cycle,
// and the combat resolver. Everything here is a pure transform: the
// resolver in particular mutates no stored state and draws exactly one
// random value per battle.
package military

import (
	"github.com/ferrum-mmo/engine/internal/world"
)

// Status is the army state machine position. Transitions run one way:
// idle → marching → attacking → returning → idle. An army that loses every
// unit is deleted by the caller instead of transitioning.
type Status uint8

const (
	StatusIdle Status = iota
	StatusMarching
	StatusAttacking
	StatusReturning
)

// StatusName returns the lowercase identifier for a status.
func StatusName(s Status) string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusMarching:
		return "marching"
	case StatusAttacking:
		return "attacking"
	case StatusReturning:
		return "returning"
	}
	return "unknown"
}

// Army is a force in the field. Target and ArrivalTime are both set while
// the army is moving and both nil while it is idle.
type Army struct {
	ID        string           `json:"id"`
	VillageID string           `json:"village_id"`
	Units     map[string]int64 `json:"units"`
	Origin    world.Coord      `json:"origin"`
	Target    *world.Coord     `json:"target,omitempty"`
	Arrival   *int64           `json:"arrival_time,omitempty"` // epoch ms
	Status    Status           `json:"status"`
	Tactic    Tactic           `json:"tactic"`

	// TravelMs is the one-way march duration, kept so the return leg takes
	// exactly as long as the outbound one.
	TravelMs int64 `json:"travel_ms"`
}

// TotalUnits returns the army's head count.
func (a *Army) TotalUnits() int64 {
	var total int64
	for _, n := range a.Units {
		total += n
	}
	return total
}

// ApplyLosses subtracts per-kind losses, flooring at zero and dropping
// emptied entries. Returns true if any unit survives.
func (a *Army) ApplyLosses(losses map[string]int64) bool {
	for kind, n := range losses {
		left := a.Units[kind] - n
		if left <= 0 {
			delete(a.Units, kind)
			continue
		}
		a.Units[kind] = left
	}
	return a.TotalUnits() > 0
}
