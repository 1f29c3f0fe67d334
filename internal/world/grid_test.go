package world

import (
	"testing"

	"github.com/ferrum-mmo/engine/internal/entropy"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b Coord
		want float64
	}{
		{Coord{0, 0}, Coord{0, 0}, 0},
		{Coord{0, 0}, Coord{3, 4}, 5},
		{Coord{10, 10}, Coord{10, 17}, 7},
		{Coord{5, 5}, Coord{2, 1}, 5},
	}
	for _, tc := range tests {
		if got := Distance(tc.a, tc.b); got != tc.want {
			t.Errorf("Distance(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestInBounds(t *testing.T) {
	if !(Coord{0, 0}).InBounds() || !(Coord{GridSize - 1, GridSize - 1}).InBounds() {
		t.Error("grid corners must be in bounds")
	}
	for _, c := range []Coord{{-1, 0}, {0, -1}, {GridSize, 0}, {0, GridSize}} {
		if c.InBounds() {
			t.Errorf("%v should be out of bounds", c)
		}
	}
}

func TestStartZoneCorners(t *testing.T) {
	if !InStartZone(Coord{5, 5}) {
		t.Error("top-left corner is a start zone")
	}
	if !InStartZone(Coord{95, 95}) {
		t.Error("bottom-right corner is a start zone")
	}
	if InStartZone(Coord{50, 50}) {
		t.Error("map center is not a start zone")
	}
	if InStartZone(Coord{50, 5}) {
		t.Error("edge midpoints are not start zones")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(42)
	b := Generate(42)
	if a.Tiles != b.Tiles {
		t.Fatal("same seed must produce identical maps")
	}
	c := Generate(43)
	if a.Tiles == c.Tiles {
		t.Fatal("different seeds should diverge")
	}
}

func TestBarbarianSites(t *testing.T) {
	m := Generate(42)
	sites := BarbarianSites(m, 10, entropy.Seeded(7))

	if len(sites) == 0 {
		t.Fatal("no barbarian sites placed")
	}
	for i, s := range sites {
		if !s.InBounds() {
			t.Errorf("site %v out of bounds", s)
		}
		if InStartZone(s) {
			t.Errorf("site %v inside a start zone", s)
		}
		for j := i + 1; j < len(sites); j++ {
			if Distance(s, sites[j]) < 12 {
				t.Errorf("sites %v and %v too close", s, sites[j])
			}
		}
	}
}
