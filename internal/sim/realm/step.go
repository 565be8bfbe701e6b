package realm

import (
	"sort"

	"gridrealm.ai/internal/sim/action"
	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/mathx"
	"gridrealm.ai/internal/sim/observation"
	"gridrealm.ai/internal/sim/state"
)

// RecordedAction is one agent action as submitted.
type RecordedAction struct {
	AgentID int                `json:"agent_id"`
	Kind    action.Kind        `json:"kind"`
	Args    map[action.Arg]int `json:"args"`
	Applied bool               `json:"applied"`
}

// TickLogEntry summarizes one executed tick.
type TickLogEntry struct {
	Tick    int              `json:"tick"`
	Actions []RecordedAction `json:"actions"`
	Deaths  []int            `json:"deaths,omitempty"`
	Expired int              `json:"expired,omitempty"`
	Digest  string           `json:"digest"`
}

// Step executes one tick. Actions refer to objects by their index in the
// agent's current observation; unresolvable or illegal actions are dropped.
func (r *Realm) Step(actions Actions) TickLogEntry {
	tick := r.tick
	for _, e := range r.players {
		e.Damage.Update(0)
	}
	for _, n := range r.npcs {
		n.Damage.Update(0)
	}

	agents := make([]int, 0, len(actions))
	for id := range actions {
		agents = append(agents, id)
	}
	sort.Ints(agents)

	var recorded []RecordedAction
	for _, kind := range action.Edges(r.cfg) {
		for _, id := range agents {
			args, ok := actions[id][kind]
			if !ok {
				continue
			}
			applied := r.apply(id, kind, args)
			if !applied {
				r.log.Debug().Int("tick", tick).Int("agent", id).Stringer("action", kind).
					Interface("args", args).Msg("action dropped")
			}
			recorded = append(recorded, RecordedAction{AgentID: id, Kind: kind, Args: args, Applied: applied})
		}
	}

	r.advance()
	deaths := r.cull()
	r.spawnNPCs()
	expired := 0
	if r.cfg.ExchangeEnabled {
		expired = r.Exchange.Sweep(tick)
	}
	r.tick++
	r.observe()

	return TickLogEntry{Tick: tick, Actions: recorded, Deaths: deaths, Expired: expired, Digest: r.Digest()}
}

func (r *Realm) apply(id int, kind action.Kind, args map[action.Arg]int) bool {
	e, ok := r.entity(id)
	if !ok {
		return false
	}
	obs, _ := r.Observe(id)
	masks, ok := r.Masks(id)
	if !ok {
		return false
	}
	for _, a := range kind.Args() {
		v, ok := args[a]
		if !ok || v < 0 || v >= len(masks[kind][a]) || !masks[kind][a][v] {
			return false
		}
	}

	switch kind {
	case action.Move:
		return r.move(e, args[action.Direction])
	case action.Attack:
		target, ok := r.entityAt(obs.Entities, args[action.Target])
		return ok && r.attack(e, target, args[action.Style])
	case action.Use:
		it, ok := r.ownedAt(e, obs.Inventory, args[action.InventoryItem])
		return ok && r.use(e, it)
	case action.Destroy:
		it, ok := r.ownedAt(e, obs.Inventory, args[action.InventoryItem])
		if !ok || it.Equipped.Gt(0) {
			return false
		}
		r.destroyItem(it)
		return true
	case action.Give:
		it, ok := r.ownedAt(e, obs.Inventory, args[action.InventoryItem])
		if !ok {
			return false
		}
		target, ok := r.entityAt(obs.Entities, args[action.Target])
		return ok && r.give(e, target, it)
	case action.Sell:
		it, ok := r.ownedAt(e, obs.Inventory, args[action.InventoryItem])
		return ok && r.Exchange.List(e, it, action.PriceOf(args[action.Price]))
	case action.Buy:
		itemID, ok := obs.Market.ID(args[action.MarketItem])
		return ok && r.Exchange.Buy(e, itemID)
	case action.GiveGold:
		target, ok := r.entityAt(obs.Entities, args[action.Target])
		return ok && r.giveGold(e, target, action.PriceOf(args[action.Price]))
	}
	return false
}

func (r *Realm) entityAt(b *observation.Batch, i int) (*Entity, bool) {
	id, ok := b.ID(i)
	if !ok {
		return nil, false
	}
	return r.entity(id)
}

// ownedAt resolves an inventory index to an item the agent still holds.
func (r *Realm) ownedAt(e *Entity, b *observation.Batch, i int) (*state.Item, bool) {
	id, ok := b.ID(i)
	if !ok {
		return nil, false
	}
	it, ok := r.items[id]
	if !ok || !e.Inventory.Has(id) {
		return nil, false
	}
	return it, true
}

func (r *Realm) move(e *Entity, dir int) bool {
	if e.Freeze.Gt(0) {
		return false
	}
	d := action.Directions[dir]
	row, col := e.Pos()
	dst, ok := r.Tile(row+d.DRow, col+d.DCol)
	if !ok || !dst.Habitable() {
		return false
	}
	r.tiles[row][col].leave(e.ID.Int())
	e.Row.Update(dst.Row.Val())
	e.Col.Update(dst.Col.Val())
	dst.enter(e.ID.Int())
	return true
}

func (r *Realm) attack(e, target *Entity, style int) bool {
	if target == e || !target.Alive() {
		return false
	}
	if !r.cfg.Combat.FriendlyFire && target.Population() == e.Population() {
		return false
	}
	er, ec := e.Pos()
	tr, tc := target.Pos()
	if mathx.Chebyshev(er, ec, tr, tc) > r.cfg.AttackRange(style) {
		return false
	}
	dmg := r.combat.Damage(r.cfg, r.combatant(e), r.combatant(target), style)
	target.Health.Decrement(dmg)
	target.Damage.Increment(dmg)
	target.AttackerID.Update(e.ID.Val())
	if style == int(catalogs.Mage) {
		target.Freeze.Update(float32(r.cfg.Combat.FreezeTicks))
	}
	r.spendAmmunition(e)
	return true
}

// spendAmmunition uses one unit of the equipped ammunition, if any.
func (r *Realm) spendAmmunition(e *Entity) {
	id := e.Inventory.Equipped(catalogs.SlotAmmunition)
	if id == 0 {
		return
	}
	it := r.items[id]
	if it.Quantity.Le(0) {
		panic("realm: equipped ammunition with zero quantity")
	}
	it.Quantity.Decrement(1)
	if it.Quantity.Empty() {
		r.destroyItem(it)
	}
}

func (r *Realm) use(e *Entity, it *state.Item) bool {
	if it.Listed() || it.Level.Val() > catalogs.RequiredLevel(it.Kind().Type, e.Levels()) {
		return false
	}
	kind := it.Kind()
	switch {
	case kind.Equipable():
		if it.Equipped.Gt(0) {
			r.unequip(e, it)
			return true
		}
		return r.equip(e, it)
	case kind.Consumable():
		if it.Quantity.Le(0) {
			panic("realm: consuming an item with zero quantity")
		}
		e.Health.Increment(it.HealthRestore.Val())
		e.Food.Increment(it.ResourceRestore.Val())
		e.Water.Increment(it.ResourceRestore.Val())
		it.Quantity.Decrement(1)
		if it.Quantity.Empty() {
			r.destroyItem(it)
		}
		return true
	}
	return false
}

func (r *Realm) give(e, target *Entity, it *state.Item) bool {
	switch {
	case target == e,
		target.Population() != e.Population(),
		it.Equipped.Gt(0),
		it.Listed(),
		!samePos(e, target),
		!r.canReceive(target, it):
		return false
	}
	r.release(e, it)
	return r.receive(target, it)
}

func (r *Realm) giveGold(e, target *Entity, amount int) bool {
	gold := float32(amount)
	if target == e || target.Population() != e.Population() || !samePos(e, target) || e.Gold.Lt(gold) {
		return false
	}
	e.Gold.Decrement(gold)
	target.Gold.Increment(gold)
	return true
}

func samePos(a, b *Entity) bool {
	ar, ac := a.Pos()
	br, bc := b.Pos()
	return ar == br && ac == bc
}

// advance regrows depleted tiles, then runs per-tick survival for every
// agent in id order and ages the NPCs.
func (r *Realm) advance() {
	res := r.cfg.Resources
	r.regrow()
	for _, id := range r.Players() {
		e := r.players[id]
		if !e.Alive() {
			continue
		}
		e.TimeAlive.Increment(1)
		e.Freeze.Decrement(1)
		e.Food.Decrement(res.FoodDecay)
		e.Water.Decrement(res.WaterDecay)
		r.forage(e)
		r.drink(e)
		switch {
		case e.Food.Empty() || e.Water.Empty():
			if e.Food.Empty() {
				e.Health.Decrement(res.StarveDamage)
			}
			if e.Water.Empty() {
				e.Health.Decrement(res.StarveDamage)
			}
		case e.Food.Ge(res.MaxFood/2) && e.Water.Ge(res.MaxWater/2):
			e.Health.Increment(res.Regen)
		}
		row, col := e.Pos()
		if r.tiles[row][col].Material.Eq(float32(catalogs.Lava)) {
			e.Health.Update(0)
		}
	}
	r.advanceNPCs()
}

// cull removes dead agents and everything they own, then dead NPCs.
func (r *Realm) cull() []int {
	var dead []int
	for _, id := range r.Players() {
		e := r.players[id]
		if e.Alive() {
			continue
		}
		for _, itemID := range e.Inventory.Items() {
			r.destroyItem(r.items[itemID])
		}
		row, col := e.Pos()
		r.tiles[row][col].leave(id)
		e.Delete()
		delete(r.players, id)
		dead = append(dead, id)
		r.log.Info().Int("tick", r.tick).Int("agent", id).Int("attacker", e.AttackerID.Int()).Msg("agent died")
	}
	return append(dead, r.cullNPCs()...)
}
