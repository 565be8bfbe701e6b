package realm

import (
	"testing"

	"gridrealm.ai/internal/sim/action"
	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/state"
)

func tileMaterial(t *testing.T, r *Realm, row, col int) catalogs.Material {
	t.Helper()
	tile, ok := r.Tile(row, col)
	if !ok {
		t.Fatalf("no tile at (%d,%d)", row, col)
	}
	stored, ok := state.TileByID(r.Datastore(), tile.RecordID())
	if !ok {
		t.Fatalf("tile row (%d,%d) missing", row, col)
	}
	if stored[state.TileMaterial] != tile.Material.Val() {
		t.Fatalf("tile row %v, attribute %v", stored[state.TileMaterial], tile.Material.Val())
	}
	return catalogs.Material(tile.Material.Int())
}

func TestForageDrinkAndRegrow(t *testing.T) {
	cfg := smallConfig(1)
	cfg.Resources.RegrowChance = 0
	r := newTestRealm(t, cfg, fixedTerrain{
		spawns: []Point{{5, 5}},
		overrides: map[Point]catalogs.Material{
			{5, 5}: catalogs.Foliage,
			{4, 5}: catalogs.Water,
		},
	})
	e := mustPlayer(t, r, 1)
	e.Food.Update(20)
	e.Water.Update(20)

	r.Step(nil)
	want := 20 - cfg.Resources.FoodDecay + cfg.Resources.ForageFood
	if e.Food.Val() != want {
		t.Fatalf("food %v, want %v", e.Food.Val(), want)
	}
	if e.Water.Val() != 20-cfg.Resources.WaterDecay+cfg.Resources.DrinkWater {
		t.Fatalf("water %v", e.Water.Val())
	}
	if m := tileMaterial(t, r, 5, 5); m != catalogs.Scrub {
		t.Fatalf("foraged tile is %v", m)
	}
	if tile, _ := r.Tile(5, 5); tile.Base() != catalogs.Foliage {
		t.Fatalf("base %v", tile.Base())
	}
	o, _ := r.Observe(1)
	if under, ok := o.Tile(0, 0); !ok || under[state.TileMaterial] != float32(catalogs.Scrub) {
		t.Fatalf("observed tile %v", under)
	}
	if got := r.Depleted(); len(got) != 1 || got[0] != (Point{5, 5}) {
		t.Fatalf("depleted %v", got)
	}

	// scrub gives nothing and never regrows at chance 0
	r.Step(act(1, action.Move, map[action.Arg]int{action.Direction: 1}))
	if e.Food.Val() != want-cfg.Resources.FoodDecay {
		t.Fatalf("food %v after scrub", e.Food.Val())
	}
	if m := tileMaterial(t, r, 5, 5); m != catalogs.Scrub {
		t.Fatalf("tile regrew at chance 0: %v", m)
	}

	r.cfg.Resources.RegrowChance = 1
	r.Step(nil)
	if m := tileMaterial(t, r, 5, 5); m != catalogs.Foliage {
		t.Fatalf("tile did not regrow: %v", m)
	}
	if got := r.Depleted(); len(got) != 0 {
		t.Fatalf("depleted %v after regrow", got)
	}
}

func TestForageOneAgentPerTile(t *testing.T) {
	cfg := smallConfig(2)
	r := newTestRealm(t, cfg, fixedTerrain{
		spawns:    []Point{{5, 5}, {5, 5}},
		overrides: map[Point]catalogs.Material{{5, 5}: catalogs.Foliage},
	})
	a, b := mustPlayer(t, r, 1), mustPlayer(t, r, 2)
	a.Food.Update(20)
	b.Food.Update(20)

	r.Step(nil)
	if a.Food.Val() <= b.Food.Val() {
		t.Fatalf("lower id forages first: %v vs %v", a.Food.Val(), b.Food.Val())
	}
	if got := r.Depleted(); len(got) != 1 {
		t.Fatalf("depleted %v", got)
	}
}

func TestRegrowIsSeeded(t *testing.T) {
	cfg := smallConfig(1)
	cfg.Resources.RegrowChance = 0.3
	terrain := fixedTerrain{spawns: []Point{{5, 5}}}
	a, b := newTestRealm(t, cfg, terrain), newTestRealm(t, cfg, terrain)
	for _, r := range []*Realm{a, b} {
		for col := 3; col <= 12; col++ {
			tile, _ := r.Tile(9, col)
			tile.base = catalogs.Foliage
			r.depleted = append(r.depleted, tile)
		}
	}
	for i := 0; i < 5; i++ {
		ea, eb := a.Step(nil), b.Step(nil)
		if ea.Digest != eb.Digest {
			t.Fatalf("tick %d: digests differ", i)
		}
	}
	if len(a.Depleted()) == 10 || len(a.Depleted()) != len(b.Depleted()) {
		t.Fatalf("regrowth: %d vs %d", len(a.Depleted()), len(b.Depleted()))
	}
}
