// Package realm runs the tick loop over the state store: it spawns agents
// and NPCs, applies their actions in priority order, advances survival and
// resource regrowth, culls the dead, and rebuilds per-entity observations.
package realm

import (
	"math/rand/v2"
	"sort"

	"github.com/rs/zerolog"

	"gridrealm.ai/internal/sim/action"
	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/datastore"
	"gridrealm.ai/internal/sim/observation"
	"gridrealm.ai/internal/sim/state"
	"gridrealm.ai/internal/sim/tuning"
)

// Actions maps agent id to the arguments chosen for each action kind.
type Actions map[int]map[action.Kind]map[action.Arg]int

// Tile is a map cell and the ids of the entities standing on it. base is
// the generated material a depleted tile regrows into.
type Tile struct {
	*state.Tile
	base      catalogs.Material
	occupants []int
}

func (t *Tile) Base() catalogs.Material { return t.base }

func (t *Tile) Occupants() []int { return append([]int(nil), t.occupants...) }

func (t *Tile) enter(id int) {
	i := sort.SearchInts(t.occupants, id)
	t.occupants = append(t.occupants, 0)
	copy(t.occupants[i+1:], t.occupants[i:])
	t.occupants[i] = id
}

func (t *Tile) leave(id int) {
	i := sort.SearchInts(t.occupants, id)
	if i == len(t.occupants) || t.occupants[i] != id {
		panic("realm: entity not on tile")
	}
	t.occupants = append(t.occupants[:i], t.occupants[i+1:]...)
}

type Option func(*Realm)

func WithLogger(l zerolog.Logger) Option { return func(r *Realm) { r.log = l } }
func WithTerrain(t Terrain) Option       { return func(r *Realm) { r.terrain = t } }
func WithCombat(c Combat) Option         { return func(r *Realm) { r.combat = c } }

type Realm struct {
	cfg     tuning.Config
	seed    int64
	log     zerolog.Logger
	terrain Terrain
	combat  Combat
	rng     *rand.Rand

	ds       *datastore.Datastore
	tiles    [][]*Tile
	players  map[int]*Entity
	npcs     map[int]*NPC
	nextNPC  int
	drops    DropTable
	depleted []*Tile
	items    map[int]*state.Item
	Exchange *Exchange

	tick  int
	obs   map[int]*observation.Observation
	masks map[int]observation.Masks
}

// New builds the map, spawns cfg.PlayerN agents with ids 1..PlayerN, makes
// a first round of NPC spawns and computes the first observations.
func New(cfg tuning.Config, seed int64, opts ...Option) *Realm {
	r := &Realm{
		cfg:     cfg,
		seed:    seed,
		log:     zerolog.Nop(),
		terrain: HashTerrain{},
		combat:  FlatCombat{},
		rng:     rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x5eed)),
		ds:      state.NewStore(cfg),
		players: map[int]*Entity{},
		npcs:    map[int]*NPC{},
		drops:   DefaultDrops,
		items:   map[int]*state.Item{},
	}
	for _, o := range opts {
		o(r)
	}
	r.Exchange = &Exchange{r: r}

	grid := r.terrain.Generate(cfg, seed)
	r.tiles = make([][]*Tile, cfg.MapSize)
	for row := range r.tiles {
		r.tiles[row] = make([]*Tile, cfg.MapSize)
		for col := range r.tiles[row] {
			m := grid[row][col]
			r.tiles[row][col] = &Tile{Tile: state.NewTile(r.ds, cfg, row, col, m), base: m}
		}
	}
	for i, p := range r.terrain.SpawnPoints(cfg, seed, cfg.PlayerN) {
		r.spawn(i+1, p)
	}
	r.spawnNPCs()
	r.log.Info().Int64("seed", seed).Int("players", len(r.players)).Int("npcs", len(r.npcs)).
		Int("map_size", cfg.MapSize).Msg("realm ready")
	r.observe()
	return r
}

var starterKit = []catalogs.ItemType{
	catalogs.Hat, catalogs.Top, catalogs.Bottom, catalogs.Sword, catalogs.Bow, catalogs.Wand,
	catalogs.Rod, catalogs.Gloves, catalogs.Pickaxe, catalogs.Chisel, catalogs.Arcane,
	catalogs.Scrap, catalogs.Shaving, catalogs.Shard,
}

func (r *Realm) spawn(id int, p Point) {
	pop := (id-1)%r.cfg.Populations + 1
	e := &Entity{
		Entity:    state.NewEntity(r.ds, r.cfg, id, pop, p.Row, p.Col),
		Inventory: newInventory(r.cfg.InventoryCapacity),
	}
	e.Gold.Update(float32(r.cfg.StartingGold))
	r.players[id] = e
	r.tiles[p.Row][p.Col].enter(id)
	if !r.cfg.ItemsEnabled {
		return
	}
	r.receive(e, r.createItem(catalogs.Ration, 0, 1))
	r.receive(e, r.createItem(catalogs.Poultice, 0, 1))
	extra := starterKit[r.rng.IntN(len(starterKit))]
	r.receive(e, r.createItem(extra, 0, 1+r.rng.IntN(5)))
}

func (r *Realm) Config() tuning.Config           { return r.cfg }
func (r *Realm) Seed() int64                     { return r.seed }
func (r *Realm) Tick() int                       { return r.tick }
func (r *Realm) Datastore() *datastore.Datastore { return r.ds }

func (r *Realm) Tile(row, col int) (*Tile, bool) {
	if row < 0 || col < 0 || row >= r.cfg.MapSize || col >= r.cfg.MapSize {
		return nil, false
	}
	return r.tiles[row][col], true
}

// Players returns the live agent ids in ascending order.
func (r *Realm) Players() []int {
	ids := make([]int, 0, len(r.players))
	for id := range r.players {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (r *Realm) Player(id int) (*Entity, bool) {
	e, ok := r.players[id]
	return e, ok
}

func (r *Realm) Item(id int) (*state.Item, bool) {
	it, ok := r.items[id]
	return it, ok
}

// Observations are the player views built at the end of the last tick.
func (r *Realm) Observations() map[int]*observation.Observation {
	out := make(map[int]*observation.Observation, len(r.players))
	for id := range r.players {
		out[id] = r.obs[id]
	}
	return out
}

func (r *Realm) Observe(id int) (*observation.Observation, bool) {
	o, ok := r.obs[id]
	return o, ok
}

// Masks computes (once per tick) the action masks of an agent's observation.
func (r *Realm) Masks(id int) (observation.Masks, bool) {
	if m, ok := r.masks[id]; ok {
		return m, true
	}
	o, ok := r.obs[id]
	if !ok {
		return nil, false
	}
	m := o.ActionTargets()
	r.masks[id] = m
	return m, true
}

// observe builds a view for every player and every NPC.
func (r *Realm) observe() {
	n := len(r.players) + len(r.npcs)
	r.obs = make(map[int]*observation.Observation, n)
	r.masks = make(map[int]observation.Masks, n)
	empty := datastore.NewRows(state.ItemSchema.Width(), 0)
	for _, id := range append(r.NPCs(), r.Players()...) {
		e, _ := r.entity(id)
		row, col := e.Pos()
		inv, mkt := empty, empty
		if r.cfg.ItemsEnabled {
			inv = state.ItemsOwnedBy(r.ds, id)
		}
		if r.cfg.ExchangeEnabled {
			mkt = state.ItemsForSale(r.ds)
		}
		r.obs[id] = observation.New(r.cfg, id,
			state.TileWindow(r.ds, row, col, r.cfg.VisionRadius),
			state.EntityWindow(r.ds, row, col, r.cfg.VisionRadius),
			inv, mkt)
	}
}

func (r *Realm) createItem(typ catalogs.ItemType, level, quantity int) *state.Item {
	it := state.NewItem(r.ds, r.cfg, typ, level, quantity)
	r.items[it.ID.Int()] = it
	return it
}

// destroyItem removes an item from its owner, the exchange, and the table.
func (r *Realm) destroyItem(it *state.Item) {
	if owner, ok := r.entity(it.OwnerID.Int()); ok && owner.Inventory.Has(it.ID.Int()) {
		if it.Equipped.Gt(0) {
			r.unequip(owner, it)
		}
		owner.Inventory.remove(it.ID.Int())
	}
	delete(r.items, it.ID.Int())
	it.Delete()
}

// receive gives an unowned item to e, merging it into a matching stack when
// possible. It reports false when e has no room.
func (r *Realm) receive(e *Entity, it *state.Item) bool {
	if it.Kind().Stackable {
		if stack := r.stackFor(e, it.Signature(), it.Quantity.Val()); stack != nil {
			stack.Quantity.Increment(it.Quantity.Val())
			delete(r.items, it.ID.Int())
			it.Delete()
			return true
		}
	}
	if !e.Inventory.Space() {
		return false
	}
	it.OwnerID.Update(e.ID.Val())
	e.Inventory.add(it.ID.Int())
	return true
}

// stackFor finds the held stack that units of sig would merge into: unlisted
// and with room for qty more.
func (r *Realm) stackFor(e *Entity, sig state.Signature, qty float32) *state.Item {
	for _, id := range e.Inventory.items {
		if held := r.items[id]; held.Signature() == sig && !held.Listed() && held.Room() >= qty {
			return held
		}
	}
	return nil
}

func (r *Realm) canReceive(e *Entity, it *state.Item) bool {
	if e.Inventory.Space() {
		return true
	}
	return it.Kind().Stackable && r.stackFor(e, it.Signature(), it.Quantity.Val()) != nil
}

// release detaches an item from its owner so it can be received by another.
func (r *Realm) release(owner *Entity, it *state.Item) {
	if it.Equipped.Gt(0) {
		r.unequip(owner, it)
	}
	owner.Inventory.remove(it.ID.Int())
	it.OwnerID.Update(0)
}

// equip puts it in its catalog slot, displacing whatever was there.
func (r *Realm) equip(e *Entity, it *state.Item) bool {
	kind := it.Kind()
	if !kind.Equipable() {
		return false
	}
	if it.Level.Val() > catalogs.RequiredLevel(kind.Type, e.Levels()) {
		return false
	}
	if prev := e.Inventory.slots[kind.Slot]; prev != 0 {
		r.unequip(e, r.items[prev])
	}
	e.Inventory.slots[kind.Slot] = it.ID.Int()
	it.Equipped.Update(1)
	r.refreshItemLevel(e)
	return true
}

func (r *Realm) unequip(e *Entity, it *state.Item) {
	slot := it.Kind().Slot
	if e.Inventory.slots[slot] != it.ID.Int() {
		panic("realm: unequip of an item not in its slot")
	}
	e.Inventory.slots[slot] = 0
	it.Equipped.Update(0)
	r.refreshItemLevel(e)
}

func (r *Realm) refreshItemLevel(e *Entity) {
	var sum float32
	for _, id := range e.Inventory.slots {
		if id != 0 {
			sum += r.items[id].Level.Val()
		}
	}
	e.ItemLevel.Update(sum)
}

func (r *Realm) combatant(e *Entity) Combatant {
	c := Combatant{Levels: e.Levels()}
	for _, id := range e.Inventory.slots {
		if id == 0 {
			continue
		}
		it := r.items[id]
		for s := range c.Attack {
			c.Attack[s] += it.Attack[s].Val()
			c.Defense[s] += it.Defense[s].Val()
		}
	}
	return c
}
