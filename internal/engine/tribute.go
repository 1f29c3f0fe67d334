package engine

import (
	"github.com/ferrum-mmo/engine/internal/economy"
	"github.com/ferrum-mmo/engine/internal/village"
)

// CollectTribute moves one hour's tribute from every active vassal to its
// suzerain. Callers invoke it on an hourly cadence; the transfer is capped
// at whatever the vassal actually holds.
func (o *Orchestrator) CollectTribute(now int64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, vs := range o.state.Vassals {
		if vs.Status != economy.VassalActive {
			continue
		}
		vassal := o.state.Villages[vs.VassalID]
		suzerain := o.state.Villages[vs.SuzerainID]
		if vassal == nil || suzerain == nil {
			continue
		}

		o.reconcileLocked(vassal, now)
		due := economy.Tribute(village.Production(vassal, o.Balance))
		due = due.Min(vassal.Resources)
		vassal.Resources = vassal.Resources.Sub(due)
		suzerain.Resources = suzerain.Resources.Add(due)

		if !due.IsZero() {
			o.record(now, "economy", "%s odprowadziła trybut do %s (%d surowców)", vassal.Name, suzerain.Name, due.Total())
		}
	}
}

// PayRansom credits a ransom payment on the vassal's behalf and frees it
// once the full amount is covered.
func (o *Orchestrator) PayRansom(vassalID string, amount int64, now int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var match *economy.Vassalage
	for _, vs := range o.state.Vassals {
		if vs.VassalID == vassalID && vs.Status == economy.VassalActive {
			match = vs
			break
		}
	}
	if match == nil {
		return ErrVillageNotFound
	}

	if economy.PayRansom(match, amount) {
		o.record(now, "economy", "wasal %s wykupił się z lenna", vassalID)
	}
	return nil
}
