package realm

import (
	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/mathx"
	"gridrealm.ai/internal/sim/tuning"
)

type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Terrain produces the material grid and spawn positions. Both must be pure
// functions of (cfg, seed).
type Terrain interface {
	Generate(cfg tuning.Config, seed int64) [][]catalogs.Material
	SpawnPoints(cfg tuning.Config, seed int64, n int) []Point
}

// HashTerrain scatters materials with a per-cell hash. Cells outside the
// border are Void and the first interior ring is Grass so spawns are safe.
type HashTerrain struct{}

// cumulative percent thresholds over the interior
var hashMaterials = []struct {
	upTo int
	m    catalogs.Material
}{
	{50, catalogs.Grass},
	{58, catalogs.Foliage},
	{63, catalogs.Scrub},
	{71, catalogs.Water},
	{78, catalogs.Stone},
	{85, catalogs.Tree},
	{88, catalogs.Ore},
	{90, catalogs.Crystal},
	{92, catalogs.Fish},
	{96, catalogs.Weeds},
	{98, catalogs.Slag},
	{100, catalogs.Lava},
}

func (HashTerrain) Generate(cfg tuning.Config, seed int64) [][]catalogs.Material {
	n, b := cfg.MapSize, cfg.MapBorder
	grid := make([][]catalogs.Material, n)
	for r := range grid {
		grid[r] = make([]catalogs.Material, n)
		for c := range grid[r] {
			grid[r][c] = hashMaterial(seed, r, c, n, b)
		}
	}
	return grid
}

func hashMaterial(seed int64, r, c, n, b int) catalogs.Material {
	if r < b || c < b || r >= n-b || c >= n-b {
		return catalogs.Void
	}
	if r == b || c == b || r == n-b-1 || c == n-b-1 {
		return catalogs.Grass
	}
	p := mathx.Percent(mathx.Hash2(seed, r, c))
	for _, hm := range hashMaterials {
		if p < hm.upTo {
			return hm.m
		}
	}
	return catalogs.Grass
}

// SpawnPoints spreads n agents evenly around the first interior ring,
// starting at a seed-dependent offset.
func (HashTerrain) SpawnPoints(cfg tuning.Config, seed int64, n int) []Point {
	ring := borderRing(cfg.MapSize, cfg.MapBorder)
	out := make([]Point, n)
	if len(ring) == 0 {
		return out
	}
	offset := int(mathx.Hash2(seed, n, len(ring)) % uint64(len(ring)))
	for i := range out {
		out[i] = ring[(offset+i*len(ring)/n)%len(ring)]
	}
	return out
}

// borderRing lists the first interior ring clockwise from its top-left corner.
func borderRing(n, b int) []Point {
	lo, hi := b, n-b-1
	if hi <= lo {
		return nil
	}
	var out []Point
	for c := lo; c < hi; c++ {
		out = append(out, Point{lo, c})
	}
	for r := lo; r < hi; r++ {
		out = append(out, Point{r, hi})
	}
	for c := hi; c > lo; c-- {
		out = append(out, Point{hi, c})
	}
	for r := hi; r > lo; r-- {
		out = append(out, Point{r, lo})
	}
	return out
}
