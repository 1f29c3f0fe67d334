// Map generation using layered simplex noise. Terrain has no effect on the
// economy itself; it drives barbarian stronghold placement and gives the map
// view something other than a flat plain.
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/ferrum-mmo/engine/internal/entropy"
)

// Terrain classifies a map tile.
type Terrain uint8

const (
	TerrainPlains Terrain = iota
	TerrainForest
	TerrainHills
	TerrainMountain
)

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlains:
		return "Plains"
	case TerrainForest:
		return "Forest"
	case TerrainHills:
		return "Hills"
	case TerrainMountain:
		return "Mountain"
	default:
		return "Unknown"
	}
}

// Tile is one grid cell.
type Tile struct {
	Terrain   Terrain `json:"terrain"`
	Elevation float64 `json:"elevation"` // 0.0–1.0
	Fertility float64 `json:"fertility"` // 0.0–1.0, from the rainfall layer
}

// Map is the generated world terrain, indexed [y][x].
type Map struct {
	Seed  int64              `json:"seed"`
	Tiles [GridSize][GridSize]Tile `json:"-"`
}

// At returns the tile at a coordinate. Out-of-bounds coordinates yield a
// zero tile.
func (m *Map) At(c Coord) Tile {
	if !c.InBounds() {
		return Tile{}
	}
	return m.Tiles[c.Y][c.X]
}

// Generate creates the world terrain deterministically from a seed.
func Generate(seed int64) *Map {
	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)

	m := &Map{Seed: seed}
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			fx, fy := float64(x), float64(y)
			elev := octaveNoise(elevNoise, fx, fy, 4, 0.04, 0.5)
			rain := octaveNoise(rainNoise, fx, fy, 3, 0.03, 0.5)

			m.Tiles[y][x] = Tile{
				Terrain:   deriveTerrain(elev, rain),
				Elevation: elev,
				Fertility: rain,
			}
		}
	}
	return m
}

func deriveTerrain(elev, rain float64) Terrain {
	switch {
	case elev > 0.72:
		return TerrainMountain
	case elev > 0.58:
		return TerrainHills
	case rain > 0.55:
		return TerrainForest
	default:
		return TerrainPlains
	}
}

// BarbarianSites picks count stronghold coordinates for barbarian villages.
// Strongholds favor high ground, avoid the player start zones, and keep a
// minimum spacing so one player neighborhood is never ringed by camps.
func BarbarianSites(m *Map, count int, rng entropy.Source) []Coord {
	const minSpacing = 12.0

	sites := make([]Coord, 0, count)
	// Bounded draw budget; a pathological seed yields fewer sites rather
	// than spinning forever.
	for attempts := 0; len(sites) < count && attempts < count*200; attempts++ {
		c := Coord{X: rng.IntN(GridSize), Y: rng.IntN(GridSize)}
		if InStartZone(c) {
			continue
		}
		tile := m.At(c)
		// Elevation gates the draw: high ground usually accepted, lowland rarely.
		if rng.Float64() > 0.2+tile.Elevation {
			continue
		}
		tooClose := false
		for _, s := range sites {
			if Distance(s, c) < minSpacing {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		sites = append(sites, c)
	}
	return sites
}

// TerrainCounts returns the terrain distribution, for startup logging.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			counts[m.Tiles[y][x].Terrain]++
		}
	}
	return counts
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
