// Package village provides the village state model and the three systems
// that advance it: the resource ledger, the build scheduler, and the
// recruitment scheduler. All functions are transforms of (state, now,
// inputs); none reads the system clock or a global RNG, and none partially
// applies a mutation before failing.
package village

import (
	"errors"

	"github.com/ferrum-mmo/engine/internal/resource"
	"github.com/ferrum-mmo/engine/internal/world"
)

// MaxBuildSlots is the base number of concurrent queue slots for both the
// build and recruitment queues. Premium accounts get one more.
const MaxBuildSlots = 3

// Recoverable scheduler errors. All are caller-surfaced; none is fatal.
var (
	ErrInsufficientResources      = errors.New("insufficient resources")
	ErrCapacityExceeded           = errors.New("queue capacity exceeded")
	ErrAlreadyMaxLevel            = errors.New("building already at max level")
	ErrPopulationCapacityExceeded = errors.New("population capacity exceeded")
)

// Kind distinguishes player villages from autonomous ones.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindBarbarian
)

// Village is a production and defense site on the world grid. The engine
// operates on transient copies supplied by the caller; persistence owns the
// canonical record.
type Village struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	OwnerID  *string     `json:"owner_id,omitempty"` // nil for barbarian/neutral
	Kind     Kind        `json:"kind"`
	Position world.Coord `json:"position"`

	Resources  resource.Amounts `json:"resources"`
	LastUpdate int64            `json:"last_update"` // epoch ms of last ledger reconcile

	Buildings    map[string]int `json:"buildings"` // building kind → level
	BuildQueue   []BuildTask    `json:"build_queue"`
	RecruitQueue []RecruitTask  `json:"recruit_queue"`

	Garrison   map[string]int64 `json:"garrison"` // unit kind → count
	Population int64            `json:"population"`
	Loyalty    int              `json:"loyalty"` // 0–100

	// Barbarian bookkeeping; unused for player villages.
	Level      int   `json:"level,omitempty"`
	LastAction int64 `json:"last_action,omitempty"`
}

// BuildTask is one queued construction job. Start/end times shift only via
// the chain recompute in ProcessBuildQueue; the duration never changes.
type BuildTask struct {
	Building  string `json:"building"`
	Level     int    `json:"level"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
}

// RecruitTask is one queued training job.
type RecruitTask struct {
	Unit      string `json:"unit"`
	Count     int    `json:"count"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
}

// Bonus carries premium multipliers into the schedulers. The engine has no
// notion of billing; callers pass whatever their entitlement system grants.
type Bonus struct {
	BuildSpeed      float64 `json:"build_speed"`      // 0.2 = 20% faster builds
	RecruitSpeed    float64 `json:"recruit_speed"`    // 0.2 = 20% faster training
	ExtraBuildSlots int     `json:"extra_build_slots"`
}

// slots returns the effective queue capacity under a bonus.
func (b Bonus) slots() int {
	n := MaxBuildSlots + b.ExtraBuildSlots
	if n < MaxBuildSlots {
		n = MaxBuildSlots
	}
	return n
}

// Level returns the current level of a building kind.
func (v *Village) BuildingLevel(kind string) int {
	return v.Buildings[kind]
}

// WallLevel returns the wall building level, which scales defender power.
func (v *Village) WallLevel() int {
	return v.Buildings["wall"]
}

// GarrisonCount returns the total units stationed in the village.
func (v *Village) GarrisonCount() int64 {
	var total int64
	for _, n := range v.Garrison {
		total += n
	}
	return total
}

// AdjustLoyalty applies a loyalty delta, clamped to [0, 100].
func (v *Village) AdjustLoyalty(delta int) {
	v.Loyalty += delta
	if v.Loyalty < 0 {
		v.Loyalty = 0
	}
	if v.Loyalty > 100 {
		v.Loyalty = 100
	}
}

// pendingLevels counts queued level-ups for one building kind.
func (v *Village) pendingLevels(kind string) int {
	n := 0
	for _, t := range v.BuildQueue {
		if t.Building == kind {
			n++
		}
	}
	return n
}
