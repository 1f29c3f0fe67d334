// Package economy provides vassalage, tribute, ransom, and prisoner
// bookkeeping. Everything here is plain arithmetic over the records the
// caller supplies; there is no hidden state.
package economy

import (
	"github.com/google/uuid"

	"github.com/ferrum-mmo/engine/internal/resource"
)

// TributeRate is the fraction of a vassal's hourly production owed to the
// suzerain.
const TributeRate = 0.10

// PrisonerRate is the fraction of total battle losses taken prisoner.
const PrisonerRate = 0.05

// VassalStatus tracks whether a vassalage still binds.
type VassalStatus string

const (
	VassalActive VassalStatus = "active"
	VassalFree   VassalStatus = "free"
)

// Vassalage is a subordination created by a decisive battle. PaidRansom
// only grows; the active → free flip happens exactly once.
type Vassalage struct {
	ID          string       `json:"id"`
	SuzerainID  string       `json:"suzerain_id"`
	VassalID    string       `json:"vassal_id"`
	TributeRate float64      `json:"tribute_rate"`
	TotalRansom int64        `json:"total_ransom"`
	PaidRansom  int64        `json:"paid_ransom"`
	Status      VassalStatus `json:"status"`
}

// NewVassalage binds a defeated ruler to the winner until the ransom is
// paid in full.
func NewVassalage(suzerainID, vassalID string, ransom int64) *Vassalage {
	return &Vassalage{
		ID:          uuid.NewString(),
		SuzerainID:  suzerainID,
		VassalID:    vassalID,
		TributeRate: TributeRate,
		TotalRansom: ransom,
		Status:      VassalActive,
	}
}

// Tribute computes the suzerain's cut of a vassal's hourly production,
// floored per resource.
func Tribute(production resource.Amounts) resource.Amounts {
	return production.Scale(TributeRate)
}

// PayRansom records an installment and reports whether this payment freed
// the vassal. Payments past the total are accepted and kept; the excess is
// not refunded.
func PayRansom(v *Vassalage, amount int64) bool {
	if amount <= 0 {
		return false
	}
	v.PaidRansom += amount
	if v.Status == VassalActive && v.PaidRansom >= v.TotalRansom {
		v.Status = VassalFree
		return true
	}
	return false
}

// CapturePrisoners derives prisoner head count from both sides' losses.
func CapturePrisoners(attackerLosses, defenderLosses map[string]int64) int64 {
	var total int64
	for _, n := range attackerLosses {
		total += n
	}
	for _, n := range defenderLosses {
		total += n
	}
	return int64(float64(total) * PrisonerRate)
}
