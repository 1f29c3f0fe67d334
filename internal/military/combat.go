package military

import (
	"github.com/ferrum-mmo/engine/internal/balance"
	"github.com/ferrum-mmo/engine/internal/entropy"
)

// Combat tuning. Loss rates are fixed per side; the stochastic element is
// the single win-probability draw plus the desertion coin flip.
const (
	wallBonusPerLevel = 0.10
	tacticBonus       = 0.20
	winnerLossRate    = 0.3
	loserLossRate     = 0.7
	desertionRate     = 0.10
	desertionChance   = 0.5
	loyaltyHit        = -25
)

// Side names a battle participant.
type Side uint8

const (
	SideAttacker Side = iota
	SideDefender
)

// Outcome is the immutable result of one resolved battle. The resolver
// only computes it; applying losses to armies and villages, transferring
// plunder, and persisting a report all belong to the caller.
type Outcome struct {
	Winner          Side             `json:"winner"`
	AttackerPower   float64          `json:"attacker_power"`
	DefenderPower   float64          `json:"defender_power"`
	WinProbability  float64          `json:"win_probability"`
	AttackerLosses  map[string]int64 `json:"attacker_losses"`
	DefenderLosses  map[string]int64 `json:"defender_losses"`
	Desertion       int64            `json:"desertion"` // extra attacker attrition, beyond losses
	LoyaltyDelta    int              `json:"loyalty_delta"`
	AttackerTactic  Tactic           `json:"attacker_tactic"`
	DefenderTactic  Tactic           `json:"defender_tactic"`
	Narrative       []string         `json:"narrative"`
}

// Power sums per-unit combat weight over a force.
func Power(tbl *balance.Table, units map[string]int64) (float64, error) {
	var total int64
	for kind, count := range units {
		w, err := tbl.UnitWeight(kind)
		if err != nil {
			return 0, err
		}
		total += w * count
	}
	return float64(total), nil
}

// Resolve runs one battle. Defender power scales with the wall; a tactic
// that counters the opponent's adds 20% to its side. Win probability is
// attacker power over total power, decided by one draw from rng. The
// winner loses 30% of each unit kind, the loser 70%, floored. A defeated
// attacker additionally risks desertion: 50% chance that 10% of its
// pre-battle head count walks away.
func Resolve(tbl *balance.Table, attacker, defender map[string]int64, attackerTactic, defenderTactic Tactic, wallLevel int, rng entropy.Source) (Outcome, error) {
	atkPower, err := Power(tbl, attacker)
	if err != nil {
		return Outcome{}, err
	}
	defPower, err := Power(tbl, defender)
	if err != nil {
		return Outcome{}, err
	}

	defPower *= 1 + wallBonusPerLevel*float64(wallLevel)

	out := Outcome{
		AttackerTactic: attackerTactic,
		DefenderTactic: defenderTactic,
	}
	if attackerTactic.Counters() == defenderTactic {
		atkPower *= 1 + tacticBonus
		out.Narrative = append(out.Narrative, "Atakujący skontrował taktykę obrońcy! (+20% siły)")
	} else if defenderTactic.Counters() == attackerTactic {
		defPower *= 1 + tacticBonus
		out.Narrative = append(out.Narrative, "Obrońca skontrował taktykę atakującego! (+20% siły)")
	}

	out.AttackerPower = atkPower
	out.DefenderPower = defPower

	total := atkPower + defPower
	if total <= 0 {
		// Two empty forces met; call it for the defender with no losses.
		out.Winner = SideDefender
		out.AttackerLosses = map[string]int64{}
		out.DefenderLosses = map[string]int64{}
		return out, nil
	}
	out.WinProbability = atkPower / total

	if rng.Float64() < out.WinProbability {
		out.Winner = SideAttacker
	} else {
		out.Winner = SideDefender
	}

	atkRate, defRate := loserLossRate, winnerLossRate
	if out.Winner == SideAttacker {
		atkRate, defRate = winnerLossRate, loserLossRate
	}
	out.AttackerLosses = scaleLosses(attacker, atkRate)
	out.DefenderLosses = scaleLosses(defender, defRate)

	if out.Winner == SideDefender && rng.Float64() < desertionChance {
		var preBattle int64
		for _, n := range attacker {
			preBattle += n
		}
		out.Desertion = int64(float64(preBattle) * desertionRate)
	}

	if out.Winner == SideAttacker {
		out.LoyaltyDelta = loyaltyHit
	}
	return out, nil
}

// scaleLosses computes floor(count × rate) per unit kind.
func scaleLosses(units map[string]int64, rate float64) map[string]int64 {
	losses := make(map[string]int64, len(units))
	for kind, count := range units {
		losses[kind] = int64(float64(count) * rate)
	}
	return losses
}
