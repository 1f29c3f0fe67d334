package military

// Tactic is one of the four battle stances. They form a closed counter
// cycle with no fixed points: every tactic beats exactly one other and is
// beaten by exactly one other.
type Tactic string

const (
	TacticKlin         Tactic = "klin"          // wedge
	TacticMurTarcz     Tactic = "mur_tarcz"     // shield wall
	TacticDeszczStrzal Tactic = "deszcz_strzal" // arrow rain
	TacticZasadzka     Tactic = "zasadzka"      // ambush
)

// Tactics lists all stances in cycle order.
func Tactics() [4]Tactic {
	return [4]Tactic{TacticKlin, TacticMurTarcz, TacticDeszczStrzal, TacticZasadzka}
}

// Counters returns the tactic this one beats:
// Klin → MurTarcz → DeszczStrzal → Zasadzka → Klin.
func (t Tactic) Counters() Tactic {
	switch t {
	case TacticKlin:
		return TacticMurTarcz
	case TacticMurTarcz:
		return TacticDeszczStrzal
	case TacticDeszczStrzal:
		return TacticZasadzka
	case TacticZasadzka:
		return TacticKlin
	}
	return ""
}

// Valid reports whether t is a known stance.
func (t Tactic) Valid() bool {
	switch t {
	case TacticKlin, TacticMurTarcz, TacticDeszczStrzal, TacticZasadzka:
		return true
	}
	return false
}

// DisplayName returns the in-world (Polish) name of the stance.
func (t Tactic) DisplayName() string {
	switch t {
	case TacticKlin:
		return "Klin"
	case TacticMurTarcz:
		return "Mur Tarcz"
	case TacticDeszczStrzal:
		return "Deszcz Strzał"
	case TacticZasadzka:
		return "Zasadzka"
	}
	return string(t)
}
