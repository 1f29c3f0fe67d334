// Package resource provides the fixed four-resource vector used across the
// engine. Every quantity is an integer; accrual math floors before storing
// so repeated reconciliation never drifts.
package resource

// Kind enumerates the four village resources.
type Kind uint8

const (
	Wood Kind = iota
	Stone
	Iron
	Grain
)

// Kinds returns all resource kinds in canonical order.
func Kinds() [4]Kind {
	return [4]Kind{Wood, Stone, Iron, Grain}
}

// Name returns the lowercase identifier for a kind.
func (k Kind) Name() string {
	switch k {
	case Wood:
		return "wood"
	case Stone:
		return "stone"
	case Iron:
		return "iron"
	case Grain:
		return "grain"
	}
	return "unknown"
}

// Amounts is a resource vector. The fixed fields (rather than a string-keyed
// map) give exhaustive handling of every resource kind at compile time.
type Amounts struct {
	Wood  int64 `json:"wood" yaml:"wood"`
	Stone int64 `json:"stone" yaml:"stone"`
	Iron  int64 `json:"iron" yaml:"iron"`
	Grain int64 `json:"grain" yaml:"grain"`
}

// Get returns the amount of one kind.
func (a Amounts) Get(k Kind) int64 {
	switch k {
	case Wood:
		return a.Wood
	case Stone:
		return a.Stone
	case Iron:
		return a.Iron
	case Grain:
		return a.Grain
	}
	return 0
}

// Set replaces the amount of one kind.
func (a *Amounts) Set(k Kind, v int64) {
	switch k {
	case Wood:
		a.Wood = v
	case Stone:
		a.Stone = v
	case Iron:
		a.Iron = v
	case Grain:
		a.Grain = v
	}
}

// Add returns a + b.
func (a Amounts) Add(b Amounts) Amounts {
	return Amounts{
		Wood:  a.Wood + b.Wood,
		Stone: a.Stone + b.Stone,
		Iron:  a.Iron + b.Iron,
		Grain: a.Grain + b.Grain,
	}
}

// Sub returns a - b. Callers are expected to check Covers first; Sub does
// not clamp.
func (a Amounts) Sub(b Amounts) Amounts {
	return Amounts{
		Wood:  a.Wood - b.Wood,
		Stone: a.Stone - b.Stone,
		Iron:  a.Iron - b.Iron,
		Grain: a.Grain - b.Grain,
	}
}

// Scale returns a with every field multiplied by f and floored.
func (a Amounts) Scale(f float64) Amounts {
	return Amounts{
		Wood:  int64(float64(a.Wood) * f),
		Stone: int64(float64(a.Stone) * f),
		Iron:  int64(float64(a.Iron) * f),
		Grain: int64(float64(a.Grain) * f),
	}
}

// Covers reports whether a has at least b of every resource.
func (a Amounts) Covers(b Amounts) bool {
	return a.Wood >= b.Wood && a.Stone >= b.Stone && a.Iron >= b.Iron && a.Grain >= b.Grain
}

// Min returns the per-field minimum of a and b.
func (a Amounts) Min(b Amounts) Amounts {
	m := a
	if b.Wood < m.Wood {
		m.Wood = b.Wood
	}
	if b.Stone < m.Stone {
		m.Stone = b.Stone
	}
	if b.Iron < m.Iron {
		m.Iron = b.Iron
	}
	if b.Grain < m.Grain {
		m.Grain = b.Grain
	}
	return m
}

// Clamp caps every field at cap and floors negatives at zero.
func (a Amounts) Clamp(cap int64) Amounts {
	c := a
	for _, k := range Kinds() {
		v := c.Get(k)
		if v < 0 {
			v = 0
		}
		if cap > 0 && v > cap {
			v = cap
		}
		c.Set(k, v)
	}
	return c
}

// Total returns the sum of all four fields.
func (a Amounts) Total() int64 {
	return a.Wood + a.Stone + a.Iron + a.Grain
}

// IsZero reports whether every field is zero.
func (a Amounts) IsZero() bool {
	return a == Amounts{}
}
