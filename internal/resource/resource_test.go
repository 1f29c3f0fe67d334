package resource

import "testing"

func TestAddSub(t *testing.T) {
	a := Amounts{Wood: 100, Stone: 50, Iron: 25, Grain: 10}
	b := Amounts{Wood: 10, Stone: 5, Iron: 5, Grain: 10}

	sum := a.Add(b)
	if sum != (Amounts{Wood: 110, Stone: 55, Iron: 30, Grain: 20}) {
		t.Fatalf("Add = %+v", sum)
	}
	if diff := sum.Sub(b); diff != a {
		t.Fatalf("Sub = %+v, want %+v", diff, a)
	}
}

func TestCovers(t *testing.T) {
	stock := Amounts{Wood: 100, Stone: 100, Iron: 50, Grain: 75}

	if !stock.Covers(Amounts{Wood: 100, Stone: 100, Iron: 50, Grain: 75}) {
		t.Error("exact stock should cover")
	}
	if stock.Covers(Amounts{Iron: 51}) {
		t.Error("insufficient iron should not cover")
	}
	if !stock.Covers(Amounts{}) {
		t.Error("zero cost is always covered")
	}
}

func TestScaleFloors(t *testing.T) {
	a := Amounts{Wood: 10, Stone: 3, Iron: 1, Grain: 99}
	got := a.Scale(0.5)
	want := Amounts{Wood: 5, Stone: 1, Iron: 0, Grain: 49}
	if got != want {
		t.Fatalf("Scale(0.5) = %+v, want %+v", got, want)
	}
}

func TestClamp(t *testing.T) {
	a := Amounts{Wood: 6000, Stone: -5, Iron: 5000, Grain: 10}
	got := a.Clamp(5000)
	want := Amounts{Wood: 5000, Stone: 0, Iron: 5000, Grain: 10}
	if got != want {
		t.Fatalf("Clamp = %+v, want %+v", got, want)
	}

	// Zero cap means uncapped, negatives still floored.
	if got := a.Clamp(0); got.Wood != 6000 || got.Stone != 0 {
		t.Fatalf("Clamp(0) = %+v", got)
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	var a Amounts
	for i, k := range Kinds() {
		a.Set(k, int64(i+1))
	}
	if a != (Amounts{Wood: 1, Stone: 2, Iron: 3, Grain: 4}) {
		t.Fatalf("Set sequence = %+v", a)
	}
	if a.Total() != 10 {
		t.Fatalf("Total = %d", a.Total())
	}
}
