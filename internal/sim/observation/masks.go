package observation

import (
	"gridrealm.ai/internal/sim/action"
	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/state"
)

// Masks maps each enabled action to one legality vector per argument. Every
// vector has length action.ArgN.
type Masks map[action.Kind]map[action.Arg][]bool

// vec is a boolean column over a batch's live rows.
type vec []bool

func where(col []float32, pred func(float32) bool) vec {
	out := make(vec, len(col))
	for i, v := range col {
		out[i] = pred(v)
	}
	return out
}

func fill(n int, v bool) vec {
	out := make(vec, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func (v vec) and(others ...vec) vec {
	out := make(vec, len(v))
	copy(out, v)
	for _, o := range others {
		for i := range out {
			out[i] = out[i] && o[i]
		}
	}
	return out
}

func (v vec) or(o vec) vec {
	out := make(vec, len(v))
	for i := range out {
		out[i] = v[i] || o[i]
	}
	return out
}

// pad extends or truncates to n; the tail is illegal.
func (v vec) pad(n int) []bool {
	out := make([]bool, n)
	copy(out, v)
	return out
}

func eq(x float32) func(float32) bool { return func(v float32) bool { return v == x } }
func ne(x float32) func(float32) bool { return func(v float32) bool { return v != x } }
func lt(x float32) func(float32) bool { return func(v float32) bool { return v < x } }
func le(x float32) func(float32) bool { return func(v float32) bool { return v <= x } }
func gt(x float32) func(float32) bool { return func(v float32) bool { return v > x } }

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// ActionTargets computes the legality masks for every enabled action. An
// agent missing from its own observation gets all-false masks.
func (o *Observation) ActionTargets() Masks {
	agent, alive := o.Agent()
	out := Masks{}
	for _, k := range action.Edges(o.cfg) {
		m := map[action.Arg][]bool{}
		for _, a := range k.Args() {
			n := action.ArgN(a, o.cfg)
			if !alive {
				m[a] = make([]bool, n)
				continue
			}
			m[a] = o.mask(agent, k, a).pad(n)
		}
		out[k] = m
	}
	return out
}

func (o *Observation) mask(agent []float32, k action.Kind, a action.Arg) vec {
	switch a {
	case action.Direction:
		return o.moveMask()
	case action.Style:
		return fill(len(action.Styles), true)
	case action.Target:
		if k == action.Attack {
			return o.attackMask(agent)
		}
		return o.giveTargetMask(agent)
	case action.InventoryItem:
		switch k {
		case action.Use:
			return o.useMask(agent)
		case action.Destroy:
			return o.destroyMask()
		default:
			return o.tradeMask()
		}
	case action.MarketItem:
		return o.buyMask(agent)
	case action.Price:
		if k == action.GiveGold {
			gold := agent[state.EntityGold]
			n := o.cfg.PriceN
			out := make(vec, n)
			for i := range out {
				out[i] = float32(action.PriceOf(i)) <= gold
			}
			return out
		}
		return fill(o.cfg.PriceN, true)
	}
	return nil
}

func (o *Observation) moveMask() vec {
	out := make(vec, len(action.Directions))
	for i, d := range action.Directions {
		if t, ok := o.Tile(d.DRow, d.DCol); ok {
			out[i] = catalogs.IsHabitable(t[state.TileMaterial])
		}
	}
	return out
}

func (o *Observation) attackMask(agent []float32) vec {
	ents := o.Entities.Values()
	reach := float32(o.cfg.MaxAttackRange())
	rows, cols := ents.Column(state.EntityRow), ents.Column(state.EntityCol)
	inRange := make(vec, len(rows))
	for i := range inRange {
		dr := absf(rows[i] - agent[state.EntityRow])
		dc := absf(cols[i] - agent[state.EntityCol])
		inRange[i] = dr <= reach && dc <= reach
	}
	ids := ents.Column(state.EntityID)
	notMe := where(ids, ne(float32(o.AgentID)))
	present := where(ids, ne(0))
	pop := ents.Column(state.EntityPopulation)
	hostile := where(pop, ne(agent[state.EntityPopulation]))
	if o.cfg.Combat.FriendlyFire {
		hostile = fill(len(pop), true)
	}
	immune := fill(len(ids), true)
	imm := float32(o.cfg.Combat.SpawnImmunity)
	if imm > 0 && imm < agent[state.EntityTimeAlive] {
		immune = where(ents.Column(state.EntityTimeAlive), gt(imm))
	}
	// NPCs carry negative ids and no spawn immunity.
	immune = immune.or(where(ids, lt(0)))
	return inRange.and(notMe, present, hostile, immune)
}

func (o *Observation) giveTargetMask(agent []float32) vec {
	ents := o.Entities.Values()
	ids := ents.Column(state.EntityID)
	return where(ids, gt(0)).and(
		where(ids, ne(float32(o.AgentID))),
		where(ents.Column(state.EntityPopulation), eq(agent[state.EntityPopulation])),
		where(ents.Column(state.EntityRow), eq(agent[state.EntityRow])),
		where(ents.Column(state.EntityCol), eq(agent[state.EntityCol])),
	)
}

func (o *Observation) useMask(agent []float32) vec {
	inv := o.Inventory.Values()
	levels := state.LevelsOf(agent)
	types := inv.Column(state.ItemType)
	itemLevels := inv.Column(state.ItemLevel)
	gated := make(vec, len(types))
	for i, t := range types {
		gated[i] = itemLevels[i] <= catalogs.RequiredLevel(catalogs.ItemType(t), levels)
	}
	return where(inv.Column(state.ItemListedPrice), eq(0)).and(gated)
}

func (o *Observation) destroyMask() vec {
	return where(o.Inventory.Values().Column(state.ItemEquipped), eq(0))
}

// tradeMask covers Sell and Give: the item must be neither equipped nor listed.
func (o *Observation) tradeMask() vec {
	inv := o.Inventory.Values()
	return where(inv.Column(state.ItemEquipped), eq(0)).and(where(inv.Column(state.ItemListedPrice), eq(0)))
}

func (o *Observation) buyMask(agent []float32) vec {
	mkt := o.Market.Values()
	types := mkt.Column(state.ItemType)
	levels := mkt.Column(state.ItemLevel)
	qty := mkt.Column(state.ItemQuantity)

	held := make(vec, len(types))
	for i, t := range types {
		kind, ok := catalogs.Kind(catalogs.ItemType(t))
		if !ok || !kind.Stackable {
			continue
		}
		_, held[i] = o.Inventory.Stack(int(t), int(levels[i]), qty[i])
	}
	space := fill(len(types), o.Inventory.Len() < o.cfg.InventoryCapacity)

	return where(mkt.Column(state.ItemListedPrice), le(agent[state.EntityGold])).and(
		where(mkt.Column(state.ItemOwner), ne(float32(o.AgentID))),
		where(mkt.Column(state.ItemEquipped), eq(0)),
		space.or(held),
	)
}
