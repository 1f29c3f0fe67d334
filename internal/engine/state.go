// Package engine wires the domain systems together and applies game
// actions to the shared world state.
package engine

import (
	"github.com/ferrum-mmo/engine/internal/dynasty"
	"github.com/ferrum-mmo/engine/internal/economy"
	"github.com/ferrum-mmo/engine/internal/military"
	"github.com/ferrum-mmo/engine/internal/resource"
	"github.com/ferrum-mmo/engine/internal/village"
	"github.com/ferrum-mmo/engine/internal/world"
)

// State holds the complete game world: the map, every village, every
// army in flight, ruling lords and the diplomacy ledger.
type State struct {
	Map       *world.Map
	Villages  map[string]*village.Village
	Armies    map[string]*military.Army
	Lords     map[string]*dynasty.Lord // keyed by owner (player) ID
	Vassals   []*economy.Vassalage
	Reports   []*BattleReport
	Paused    bool

	// Reverse index: grid coordinate → village ID.
	coordIndex map[world.Coord]string
}

// NewState builds a State from generated components and indexes villages
// by coordinate for army arrival lookups.
func NewState(m *world.Map, villages []*village.Village) *State {
	st := &State{
		Map:        m,
		Villages:   make(map[string]*village.Village, len(villages)),
		Armies:     make(map[string]*military.Army),
		Lords:      make(map[string]*dynasty.Lord),
		coordIndex: make(map[world.Coord]string, len(villages)),
	}
	for _, v := range villages {
		st.AddVillage(v)
	}
	return st
}

// AddVillage registers a village and its coordinate in the indexes.
func (st *State) AddVillage(v *village.Village) {
	st.Villages[v.ID] = v
	st.coordIndex[v.Position] = v.ID
}

// VillageAt returns the village occupying the given coordinate, or nil.
func (st *State) VillageAt(c world.Coord) *village.Village {
	id, ok := st.coordIndex[c]
	if !ok {
		return nil
	}
	return st.Villages[id]
}

// Event is a notable occurrence in the world.
type Event struct {
	Time        int64  `json:"time"`
	Description string `json:"description"`
	Category    string `json:"category"` // "build", "recruit", "battle", "dynasty", "economy", "barbarian"
}

// BattleReport is the permanent record of a resolved engagement.
type BattleReport struct {
	ID                string           `json:"id"`
	AttackerVillageID string           `json:"attacker_village_id"`
	DefenderVillageID string           `json:"defender_village_id"`
	Winner            military.Side    `json:"winner"`
	AttackerTactic    military.Tactic  `json:"attacker_tactic"`
	DefenderTactic    military.Tactic  `json:"defender_tactic"`
	AttackerLosses    map[string]int64 `json:"attacker_losses"`
	DefenderLosses    map[string]int64 `json:"defender_losses"`
	Desertion         int64            `json:"desertion"`
	Plunder           resource.Amounts `json:"plunder"`
	LoyaltyDelta      int              `json:"loyalty_delta"`
	Prisoners         int64            `json:"prisoners"`
	Narrative         []string         `json:"narrative"`
	CreatedAt         int64            `json:"created_at"`
}
