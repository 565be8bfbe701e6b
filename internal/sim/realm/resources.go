package realm

import (
	"gridrealm.ai/internal/sim/action"
	"gridrealm.ai/internal/sim/catalogs"
)

// forage harvests the tile under e. A harvested tile takes its depleted
// material until it regrows.
func (r *Realm) forage(e *Entity) {
	row, col := e.Pos()
	t := r.tiles[row][col]
	d, ok := catalogs.Material(t.Material.Int()).Depleted()
	if !ok {
		return
	}
	t.Material.Update(float32(d))
	r.depleted = append(r.depleted, t)
	e.Food.Increment(r.cfg.Resources.ForageFood)
}

// drink refills water when any of the four neighbours is Water.
func (r *Realm) drink(e *Entity) {
	row, col := e.Pos()
	for _, d := range action.Directions {
		t, ok := r.Tile(row+d.DRow, col+d.DCol)
		if ok && t.Material.Eq(float32(catalogs.Water)) {
			e.Water.Increment(r.cfg.Resources.DrinkWater)
			return
		}
	}
}

// regrow rolls every depleted tile once, in the order they were harvested.
func (r *Realm) regrow() {
	kept := r.depleted[:0]
	for _, t := range r.depleted {
		if r.rng.Float64() < r.cfg.Resources.RegrowChance {
			t.Material.Update(float32(t.base))
			continue
		}
		kept = append(kept, t)
	}
	r.depleted = kept
}

// Depleted lists the harvested tiles waiting to regrow.
func (r *Realm) Depleted() []Point {
	out := make([]Point, len(r.depleted))
	for i, t := range r.depleted {
		out[i] = Point{Row: t.Row.Int(), Col: t.Col.Int()}
	}
	return out
}
