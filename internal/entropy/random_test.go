package entropy

import "testing"

func TestSeededIsDeterministic(t *testing.T) {
	a, b := Seeded(42), Seeded(42)
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("streams diverged at draw %d", i)
		}
		if a.IntN(10) != b.IntN(10) {
			t.Fatalf("int streams diverged at draw %d", i)
		}
	}
}

func TestScriptedReplaysAndRepeats(t *testing.T) {
	s := &Scripted{Floats: []float64{0.1, 0.9}, Ints: []int{3}}

	if got := s.Float64(); got != 0.1 {
		t.Fatalf("first draw = %v", got)
	}
	if got := s.Float64(); got != 0.9 {
		t.Fatalf("second draw = %v", got)
	}
	// Exhausted scripts repeat their last value.
	if got := s.Float64(); got != 0.9 {
		t.Fatalf("repeated draw = %v", got)
	}

	if got := s.IntN(10); got != 3 {
		t.Fatalf("IntN = %d", got)
	}
	// Scripted ints are reduced modulo n.
	if got := s.IntN(2); got != 1 {
		t.Fatalf("IntN(2) = %d", got)
	}
}

func TestScriptedEmptyDefaultsToZero(t *testing.T) {
	s := &Scripted{}
	if s.Float64() != 0 || s.IntN(5) != 0 {
		t.Fatal("empty script should draw zeros")
	}
}

func TestCryptoBounds(t *testing.T) {
	var c Crypto
	for i := 0; i < 1000; i++ {
		if f := c.Float64(); f < 0 || f >= 1 {
			t.Fatalf("Float64 out of [0,1): %v", f)
		}
		if n := c.IntN(7); n < 0 || n >= 7 {
			t.Fatalf("IntN out of range: %d", n)
		}
	}
	if c.IntN(0) != 0 {
		t.Fatal("IntN(0) should be 0")
	}
}

func TestSystemDraws(t *testing.T) {
	src := System()
	if f := src.Float64(); f < 0 || f >= 1 {
		t.Fatalf("Float64 out of [0,1): %v", f)
	}
}
