package village

import (
	"github.com/ferrum-mmo/engine/internal/balance"
	"github.com/ferrum-mmo/engine/internal/resource"
)

const msPerHour = 3_600_000

// Reconcile credits offline resource production for the interval
// [LastUpdate, now] and stamps LastUpdate to now. Resource state is a
// function of (lastUpdate, now), never of call count: reconciling twice
// with the same now credits nothing the second time, which is what lets
// the orchestrator re-run reconciliation after a partial failure.
//
// Gains are floored to integers before storing so repeated small intervals
// cannot drift from one large one by more than the flooring itself. A
// warehouse caps every resource when one is built; without storage the
// stock is unbounded.
func Reconcile(v *Village, tbl *balance.Table, now int64) {
	if now <= v.LastUpdate {
		return // clock going backwards is a caller bug; never un-credit
	}

	elapsedHours := float64(now-v.LastUpdate) / msPerHour
	prod := Production(v, tbl)

	for _, k := range resource.Kinds() {
		gained := int64(float64(prod.Get(k)) * elapsedHours)
		v.Resources.Set(k, v.Resources.Get(k)+gained)
	}

	if cap := tbl.StorageCapacity(v.BuildingLevel("storage")); cap > 0 {
		v.Resources = v.Resources.Clamp(cap)
	}

	v.LastUpdate = now
}

// Production derives the hourly production vector from building levels.
// Player villages with no producing buildings fall back to the starting
// production baseline so a fresh village is never fully stalled. Barbarian
// camps produce nothing passively; their stock grows only through the
// capped gather action.
func Production(v *Village, tbl *balance.Table) resource.Amounts {
	if v.Kind == KindBarbarian {
		return resource.Amounts{}
	}
	prod := tbl.Production(v.Buildings)
	if prod.IsZero() {
		return tbl.StartingProd
	}
	return prod
}

// SpendResources debits a cost after checking affordability. The debit is
// all-or-nothing; on failure the stock is untouched.
func SpendResources(v *Village, cost resource.Amounts) error {
	if !v.Resources.Covers(cost) {
		return ErrInsufficientResources
	}
	v.Resources = v.Resources.Sub(cost)
	return nil
}
