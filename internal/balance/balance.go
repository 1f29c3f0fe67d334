// Package balance holds the static cost/time/production tables for buildings
// and units. The tables are loaded once at process start (embedded defaults
// or a YAML override) and are read-only afterwards; the rest of the engine
// treats a *Table as immutable data.
package balance

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ferrum-mmo/engine/internal/resource"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrUnknownKind is returned for building or unit ids absent from the tables.
var ErrUnknownKind = fmt.Errorf("balance: unknown entity kind")

// Building is the balance record for one building kind.
type Building struct {
	BaseCost          resource.Amounts `yaml:"base_cost"`
	CostMultiplier    float64          `yaml:"cost_multiplier"`
	BaseTimeSeconds   float64          `yaml:"base_time_seconds"`
	TimeMultiplier    float64          `yaml:"time_multiplier"`
	MaxLevel          int              `yaml:"max_level"`
	ProductionPerHour int64            `yaml:"production_per_hour"` // linear per level
	Produces          string           `yaml:"produces"`            // resource kind name, empty for non-producers
	PopCapPerLevel    int64            `yaml:"population_capacity_per_level"`
	StorageCapPerLvl  int64            `yaml:"storage_capacity_per_level"`
}

// Unit is the balance record for one unit kind.
type Unit struct {
	Cost           resource.Amounts `yaml:"cost"`
	RecruitSeconds float64          `yaml:"recruit_seconds"` // per single unit
	Speed          float64          `yaml:"speed"`           // tiles per hour
	Weight         int64            `yaml:"weight"`          // combat power per unit
	Population     int64            `yaml:"population"`      // farm capacity consumed
}

// Table is the full balance sheet. GameSpeed shortens every duration and
// raises production by the same factor.
type Table struct {
	GameSpeed         float64             `yaml:"game_speed"`
	StartingResources resource.Amounts    `yaml:"starting_resources"`
	StartingProd      resource.Amounts    `yaml:"starting_production"`
	Buildings         map[string]Building `yaml:"buildings"`
	Units             map[string]Unit     `yaml:"units"`
}

// Default returns the embedded balance sheet. Panics only on a corrupt
// embed, which is a build defect rather than a runtime condition.
func Default() *Table {
	t, err := parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("balance: embedded defaults: %v", err))
	}
	return t
}

// LoadFile reads a YAML balance sheet from disk.
func LoadFile(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read balance file: %w", err)
	}
	t, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func parse(raw []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	if t.GameSpeed <= 0 {
		t.GameSpeed = 1.0
	}
	for id, b := range t.Buildings {
		if b.CostMultiplier <= 0 || b.TimeMultiplier <= 0 || b.MaxLevel <= 0 {
			return nil, fmt.Errorf("building %q: non-positive multiplier or max level", id)
		}
	}
	for id, u := range t.Units {
		if u.Speed <= 0 || u.Weight <= 0 {
			return nil, fmt.Errorf("unit %q: non-positive speed or weight", id)
		}
	}
	return &t, nil
}

func (t *Table) building(kind string) (Building, error) {
	b, ok := t.Buildings[kind]
	if !ok {
		return Building{}, fmt.Errorf("%w: building %q", ErrUnknownKind, kind)
	}
	return b, nil
}

func (t *Table) unit(kind string) (Unit, error) {
	u, ok := t.Units[kind]
	if !ok {
		return Unit{}, fmt.Errorf("%w: unit %q", ErrUnknownKind, kind)
	}
	return u, nil
}

// BuildingCost returns the cost to raise a building to the given level.
// Cost = base × costMultiplier^(level−1), floored per resource.
func (t *Table) BuildingCost(kind string, level int) (resource.Amounts, error) {
	b, err := t.building(kind)
	if err != nil {
		return resource.Amounts{}, err
	}
	return b.BaseCost.Scale(math.Pow(b.CostMultiplier, float64(level-1))), nil
}

// BuildingTime returns the build duration in milliseconds for the given
// level. Time = base × timeMultiplier^(level−1), divided by game speed.
func (t *Table) BuildingTime(kind string, level int) (int64, error) {
	b, err := t.building(kind)
	if err != nil {
		return 0, err
	}
	secs := b.BaseTimeSeconds * math.Pow(b.TimeMultiplier, float64(level-1))
	return int64(secs * 1000 / t.GameSpeed), nil
}

// MaxLevel returns the level cap for a building kind.
func (t *Table) MaxLevel(kind string) (int, error) {
	b, err := t.building(kind)
	if err != nil {
		return 0, err
	}
	return b.MaxLevel, nil
}

// ProductionPerHour returns hourly output of one producing building at the
// given level. Production scales linearly with level and with game speed.
// Non-producers yield zero.
func (t *Table) ProductionPerHour(kind string, level int) (resource.Kind, int64, error) {
	b, err := t.building(kind)
	if err != nil {
		return 0, 0, err
	}
	if b.Produces == "" || level <= 0 {
		return 0, 0, nil
	}
	var rk resource.Kind
	found := false
	for _, k := range resource.Kinds() {
		if k.Name() == b.Produces {
			rk, found = k, true
			break
		}
	}
	if !found {
		return 0, 0, fmt.Errorf("%w: resource %q", ErrUnknownKind, b.Produces)
	}
	return rk, int64(float64(b.ProductionPerHour*int64(level)) * t.GameSpeed), nil
}

// Production computes the total hourly production vector for a village's
// building levels.
func (t *Table) Production(levels map[string]int) resource.Amounts {
	var out resource.Amounts
	for kind, level := range levels {
		rk, perHour, err := t.ProductionPerHour(kind, level)
		if err != nil || perHour == 0 {
			continue
		}
		out.Set(rk, out.Get(rk)+perHour)
	}
	return out
}

// FarmCapacity returns the population ceiling granted by a farm level.
func (t *Table) FarmCapacity(level int) int64 {
	b, ok := t.Buildings["farm"]
	if !ok {
		return 0
	}
	return b.PopCapPerLevel * int64(level)
}

// StorageCapacity returns the per-resource warehouse cap for a storage
// level. Zero means unbounded (no storage built).
func (t *Table) StorageCapacity(level int) int64 {
	b, ok := t.Buildings["storage"]
	if !ok || level <= 0 {
		return 0
	}
	return b.StorageCapPerLvl * int64(level)
}

// UnitCost returns the cost of recruiting count units.
func (t *Table) UnitCost(kind string, count int) (resource.Amounts, error) {
	u, err := t.unit(kind)
	if err != nil {
		return resource.Amounts{}, err
	}
	return u.Cost.Scale(float64(count)), nil
}

// RecruitTime returns the training duration in milliseconds for count
// units. Recruitment scales linearly with count, not geometrically.
func (t *Table) RecruitTime(kind string, count int) (int64, error) {
	u, err := t.unit(kind)
	if err != nil {
		return 0, err
	}
	return int64(u.RecruitSeconds * float64(count) * 1000 / t.GameSpeed), nil
}

// UnitWeight returns the combat power of one unit.
func (t *Table) UnitWeight(kind string) (int64, error) {
	u, err := t.unit(kind)
	if err != nil {
		return 0, err
	}
	return u.Weight, nil
}

// UnitSpeed returns movement speed in tiles per hour.
func (t *Table) UnitSpeed(kind string) (float64, error) {
	u, err := t.unit(kind)
	if err != nil {
		return 0, err
	}
	return u.Speed * t.GameSpeed, nil
}

// UnitPopulation returns the farm capacity one unit consumes.
func (t *Table) UnitPopulation(kind string) (int64, error) {
	u, err := t.unit(kind)
	if err != nil {
		return 0, err
	}
	return u.Population, nil
}
