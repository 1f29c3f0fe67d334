// Package dynasty provides Lord generation, trait and flaw inheritance,
// and succession. A Lord is immutable once created except for experience
// accrual; succession always mints a fresh record.
package dynasty

// Trait is a catalog entry: a named bonus (or, for flaws, a named penalty)
// with an effect kind and a numeric magnitude. Effects are consumed by the
// systems they name; the dynasty engine only carries them.
type Trait struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"` // in-world (Polish) display name
	Effect string  `json:"effect"`
	Value  float64 `json:"value"`
}

// EffectLifespan is the flaw effect kind that shortens a Lord's life.
const EffectLifespan = "life_span"

// Traits is the fixed trait catalog.
var Traits = []Trait{
	{ID: "engineer", Name: "Inżynier", Effect: "building_speed", Value: 0.15},
	{ID: "tax_collector", Name: "Poborca", Effect: "tax_bonus", Value: 0.15},
	{ID: "tactician", Name: "Taktyk", Effect: "combat_bonus", Value: 0.10},
	{ID: "architect", Name: "Architekt", Effect: "wall_bonus", Value: 0.20},
	{ID: "merchant", Name: "Kupiec", Effect: "trade_efficiency", Value: 0.15},
	{ID: "farmer", Name: "Rolnik", Effect: "grain_production", Value: 0.20},
	{ID: "miner", Name: "Górnik", Effect: "stone_iron_production", Value: 0.15},
	{ID: "forester", Name: "Leśniczy", Effect: "wood_production", Value: 0.15},
	{ID: "builder", Name: "Budowniczy", Effect: "construction_cost_reduction", Value: 0.10},
	{ID: "commander", Name: "Dowódca", Effect: "unit_attack", Value: 0.10},
	{ID: "defender", Name: "Obrońca", Effect: "unit_defense", Value: 0.10},
	{ID: "trainer", Name: "Trener", Effect: "recruitment_speed", Value: 0.15},
	{ID: "siege_master", Name: "Mistrz Oblężeń", Effect: "siege_effectiveness", Value: 0.20},
	{ID: "scout_master", Name: "Mistrz Zwiadu", Effect: "scout_speed", Value: 0.25},
	{ID: "diplomat", Name: "Dyplomata", Effect: "vassal_tribute", Value: 0.05},
	{ID: "charismatic", Name: "Charyzmatyczny", Effect: "loyalty_gain", Value: 0.10},
	{ID: "negotiator", Name: "Negocjator", Effect: "ransom_reduction", Value: 0.15},
	{ID: "inventor", Name: "Wynalazca", Effect: "research_speed", Value: 0.10},
	{ID: "healer", Name: "Uzdrowiciel", Effect: "unit_recovery", Value: 0.15},
	{ID: "scholar", Name: "Uczony", Effect: "exp_gain", Value: 0.20},
}

// Flaws is the fixed flaw catalog. Values are negative-framed: a positive
// value on a penalty effect (e.g. unit_losses) still works against the Lord.
var Flaws = []Trait{
	{ID: "sickly", Name: "Chorowity", Effect: EffectLifespan, Value: -0.20},
	{ID: "greedy", Name: "Chciwy", Effect: "morale_penalty", Value: -0.10},
	{ID: "spendthrift", Name: "Rozrzutny", Effect: "resource_income", Value: -0.10},
	{ID: "lazy", Name: "Leniwy", Effect: "production_speed", Value: -0.15},
	{ID: "corrupt", Name: "Zkorumpowany", Effect: "tax_penalty", Value: -0.15},
	{ID: "cowardly", Name: "Tchórzliwy", Effect: "unit_morale", Value: -0.20},
	{ID: "rash", Name: "Porywczy", Effect: "unit_losses", Value: 0.10},
	{ID: "slow", Name: "Powolny", Effect: "unit_speed", Value: -0.10},
	{ID: "tyrant", Name: "Tyran", Effect: "loyalty_penalty", Value: -0.15},
	{ID: "weak_willed", Name: "Słaba Wola", Effect: "vassal_rebellion_chance", Value: 0.10},
	{ID: "unlucky", Name: "Pechowiec", Effect: "event_luck", Value: -0.20},
}

// TraitByID looks up a catalog trait.
func TraitByID(id string) (Trait, bool) {
	for _, t := range Traits {
		if t.ID == id {
			return t, true
		}
	}
	return Trait{}, false
}

// FlawByID looks up a catalog flaw.
func FlawByID(id string) (Trait, bool) {
	for _, f := range Flaws {
		if f.ID == id {
			return f, true
		}
	}
	return Trait{}, false
}
