package dynasty

import (
	"github.com/ferrum-mmo/engine/internal/entropy"
)

const (
	baseLifespanDays = 60
	dayMs            = 24 * 3_600_000

	flawChance       = 0.4
	mutationChance   = 0.10
	flawInheritance  = 0.5
	minLifespanMs    = dayMs // even the sickliest Lord survives one day
)

// Lord is a ruler. Traits and flaws hold catalog ids only; look effects up
// via TraitByID/FlawByID. Experience is the single mutable field.
type Lord struct {
	Name       string   `json:"name"`
	DNA        string   `json:"dna_id"`
	Traits     []string `json:"traits"`
	Flaws      []string `json:"flaws"`
	BirthDate  int64    `json:"birth_date"` // epoch ms
	DeathDate  int64    `json:"death_date"`
	Experience int64    `json:"experience"`
}

// HasTrait reports whether the Lord carries a trait id.
func (l *Lord) HasTrait(id string) bool {
	for _, t := range l.Traits {
		if t == id {
			return true
		}
	}
	return false
}

// Dead reports whether the Lord's time has come. Succession is triggered by
// the caller; the engine never polls for this itself.
func (l *Lord) Dead(now int64) bool {
	return now >= l.DeathDate
}

// AddExperience accrues experience, amplified by the scholar trait.
func (l *Lord) AddExperience(xp int64) {
	if t, ok := TraitByID("scholar"); ok && l.HasTrait("scholar") {
		xp = int64(float64(xp) * (1 + t.Value))
	}
	l.Experience += xp
}

// NewLord creates a first-generation Lord: one trait drawn uniformly from
// the catalog and, with 40% probability, one flaw. Lifespan starts at 60
// game-days and every life-span flaw scales it multiplicatively.
func NewLord(name, dna string, now int64, rng entropy.Source) *Lord {
	if dna == "" {
		dna = generateDNA(rng)
	}
	l := &Lord{
		Name:      name,
		DNA:       dna,
		Traits:    []string{Traits[rng.IntN(len(Traits))].ID},
		BirthDate: now,
	}
	if rng.Float64() < flawChance {
		l.Flaws = []string{Flaws[rng.IntN(len(Flaws))].ID}
	}
	l.DeathDate = now + lifespanMs(l.Flaws)
	return l
}

// Inherit creates the successor of a dying Lord. The heir keeps the
// parent's DNA, one uniformly chosen parent trait, and one extra trait:
// with 10% probability any catalog trait (mutation), otherwise a uniform
// pick among traits the parent lacks. The parent's first flaw carries over
// with 50% probability, replacing whatever the fresh roll produced.
func Inherit(parent *Lord, successorName string, now int64, rng entropy.Source) *Lord {
	successor := NewLord(successorName, parent.DNA, now, rng)

	inherited := parent.Traits[rng.IntN(len(parent.Traits))]

	var extra string
	if rng.Float64() < mutationChance {
		extra = Traits[rng.IntN(len(Traits))].ID
	} else {
		available := make([]string, 0, len(Traits))
		for _, t := range Traits {
			if !parent.HasTrait(t.ID) {
				available = append(available, t.ID)
			}
		}
		if len(available) == 0 {
			// Parent holds the whole catalog; fall back to any trait.
			extra = Traits[rng.IntN(len(Traits))].ID
		} else {
			extra = available[rng.IntN(len(available))]
		}
	}
	successor.Traits = []string{inherited, extra}

	if len(parent.Flaws) > 0 && rng.Float64() < flawInheritance {
		successor.Flaws = []string{parent.Flaws[0]}
	}
	successor.DeathDate = now + lifespanMs(successor.Flaws)
	return successor
}

// lifespanMs computes a lifespan from the base span and life-span flaws.
func lifespanMs(flawIDs []string) int64 {
	span := float64(baseLifespanDays * dayMs)
	for _, id := range flawIDs {
		if f, ok := FlawByID(id); ok && f.Effect == EffectLifespan {
			span *= 1 + f.Value
		}
	}
	if span < minLifespanMs {
		span = minLifespanMs
	}
	return int64(span)
}

const dnaAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// generateDNA mints an opaque 13-character inheritance key.
func generateDNA(rng entropy.Source) string {
	buf := make([]byte, 13)
	for i := range buf {
		buf[i] = dnaAlphabet[rng.IntN(len(dnaAlphabet))]
	}
	return string(buf)
}
