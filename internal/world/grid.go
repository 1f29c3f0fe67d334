// Package world provides the 100×100 map grid, terrain generation, and the
// spatial math behind army movement.
package world

import "math"

// GridSize is the side length of the square world map. Valid coordinates
// are in [0, GridSize) on both axes.
const GridSize = 100

// startZoneMargin bounds the corner regions where new players spawn.
const startZoneMargin = 20

// Coord is a position on the world grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds reports whether the coordinate lies on the map.
func (c Coord) InBounds() bool {
	return c.X >= 0 && c.X < GridSize && c.Y >= 0 && c.Y < GridSize
}

// Distance returns the euclidean distance between two coordinates.
func Distance(a, b Coord) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// InStartZone reports whether a coordinate falls in one of the four corner
// regions reserved for new player villages.
func InStartZone(c Coord) bool {
	nearLeft := c.X < startZoneMargin
	nearRight := c.X > GridSize-startZoneMargin
	nearTop := c.Y < startZoneMargin
	nearBottom := c.Y > GridSize-startZoneMargin
	return (nearLeft || nearRight) && (nearTop || nearBottom)
}
