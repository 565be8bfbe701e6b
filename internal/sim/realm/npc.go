package realm

import (
	"math/rand/v2"
	"sort"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/mathx"
	"gridrealm.ai/internal/sim/state"
)

// NPCKind is an NPC's temperament. Each kind is its own negative population.
type NPCKind int

const (
	Passive NPCKind = iota
	Neutral
	Hostile
)

var npcKindNames = [...]string{"passive", "neutral", "hostile"}

func (k NPCKind) String() string { return npcKindNames[k] }

func (k NPCKind) Population() int { return -1 - int(k) }

// NPC is a non-player entity. Its id is negative and its row lives in the
// Entity table next to the players'.
type NPC struct {
	*Entity
	Kind  NPCKind
	Level int
	Style catalogs.Skill
}

// Drop is one line of a drop table: with probability Chance, Min..Max units
// of Type at the NPC's level.
type Drop struct {
	Type   catalogs.ItemType
	Min    int
	Max    int
	Chance float64
}

type DropTable []Drop

// DefaultDrops is rolled for every NPC killed by a player.
var DefaultDrops = DropTable{
	{Type: catalogs.Ration, Min: 1, Max: 2, Chance: 0.5},
	{Type: catalogs.Poultice, Min: 1, Max: 1, Chance: 0.3},
	{Type: catalogs.Scrap, Min: 1, Max: 3, Chance: 0.2},
	{Type: catalogs.Shaving, Min: 1, Max: 3, Chance: 0.2},
	{Type: catalogs.Shard, Min: 1, Max: 3, Chance: 0.2},
	{Type: catalogs.Hat, Min: 1, Max: 1, Chance: 0.05},
	{Type: catalogs.Top, Min: 1, Max: 1, Chance: 0.05},
	{Type: catalogs.Bottom, Min: 1, Max: 1, Chance: 0.05},
}

// Loot is one rolled drop.
type Loot struct {
	Type     catalogs.ItemType
	Quantity int
}

// Roll draws every line in table order; one draw per line, plus one for the
// quantity when the line hits with Min < Max.
func (t DropTable) Roll(rng *rand.Rand) []Loot {
	var out []Loot
	for _, d := range t {
		if rng.Float64() >= d.Chance {
			continue
		}
		n := d.Min
		if d.Max > d.Min {
			n += rng.IntN(d.Max - d.Min + 1)
		}
		if n > 0 {
			out = append(out, Loot{Type: d.Type, Quantity: n})
		}
	}
	return out
}

func WithDropTable(t DropTable) Option { return func(r *Realm) { r.drops = t } }

// NPCs returns the live NPC ids in ascending order, most recent first.
func (r *Realm) NPCs() []int {
	ids := make([]int, 0, len(r.npcs))
	for id := range r.npcs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (r *Realm) NPC(id int) (*NPC, bool) {
	n, ok := r.npcs[id]
	return n, ok
}

// entity resolves a player or an NPC.
func (r *Realm) entity(id int) (*Entity, bool) {
	if id < 0 {
		n, ok := r.npcs[id]
		if !ok {
			return nil, false
		}
		return n.Entity, true
	}
	e, ok := r.players[id]
	return e, ok
}

func (r *Realm) npcsEnabled() bool { return r.cfg.CombatEnabled && r.cfg.NPC.N > 0 }

// danger is 0 on the first interior ring and 1 at the map center.
func (r *Realm) danger(p Point) float64 {
	center := r.cfg.MapSize / 2
	half := center - r.cfg.MapBorder
	if half <= 0 {
		return 0
	}
	d := 1 - float64(mathx.Chebyshev(p.Row, p.Col, center, center))/float64(half)
	return min(max(d, 0), 1)
}

// spawnNPCs tops the NPC population up to cfg.NPC.N, trying at most
// SpawnAttempts random interior cells per tick.
func (r *Realm) spawnNPCs() {
	if !r.npcsEnabled() {
		return
	}
	lo, span := r.cfg.MapBorder, r.cfg.MapSize-2*r.cfg.MapBorder
	for i := 0; i < r.cfg.NPC.SpawnAttempts && len(r.npcs) < r.cfg.NPC.N; i++ {
		p := Point{Row: lo + r.rng.IntN(span), Col: lo + r.rng.IntN(span)}
		t := r.tiles[p.Row][p.Col]
		if !t.Habitable() || t.Material.Eq(float32(catalogs.Lava)) {
			continue
		}
		r.spawnNPC(p)
	}
}

func (r *Realm) spawnNPC(p Point) *NPC {
	cfg := r.cfg.NPC
	danger := r.danger(p)
	kind := Passive
	switch {
	case danger >= cfg.HostileDanger:
		kind = Hostile
	case danger >= cfg.NeutralDanger:
		kind = Neutral
	}
	level := cfg.LevelMin + int(danger*float64(cfg.LevelMax-cfg.LevelMin))
	style := catalogs.Skill(r.rng.IntN(3))

	r.nextNPC--
	id := r.nextNPC
	n := &NPC{
		Entity: &Entity{
			Entity:    state.NewEntity(r.ds, r.cfg, id, kind.Population(), p.Row, p.Col),
			Inventory: newInventory(r.cfg.InventoryCapacity),
		},
		Kind:  kind,
		Level: level,
		Style: style,
	}
	n.Skills[style].Update(float32(level))
	n.Health.Update(float32(level) * cfg.HealthPerLevel)
	n.Gold.Update(float32(level))
	r.npcs[id] = n
	r.tiles[p.Row][p.Col].enter(id)
	r.log.Debug().Int("tick", r.tick).Int("npc", id).Stringer("kind", kind).Int("level", level).Msg("npc spawned")
	return n
}

// advanceNPCs ages NPCs. They neither eat nor drink and regenerate a flat
// amount per tick.
func (r *Realm) advanceNPCs() {
	for _, id := range r.NPCs() {
		n := r.npcs[id]
		if !n.Alive() {
			continue
		}
		n.TimeAlive.Increment(1)
		n.Freeze.Decrement(1)
		n.Health.Increment(r.cfg.NPC.Regen)
		row, col := n.Pos()
		if r.tiles[row][col].Material.Eq(float32(catalogs.Lava)) {
			n.Health.Update(0)
		}
	}
}

// cullNPCs removes dead NPCs. A player that landed the last hit and is still
// alive takes the NPC's gold and a roll of the drop table.
func (r *Realm) cullNPCs() []int {
	var dead []int
	for _, id := range r.NPCs() {
		n := r.npcs[id]
		if n.Alive() {
			continue
		}
		killer, ok := r.players[n.AttackerID.Int()]
		if ok && killer.Alive() {
			r.yieldDrops(n, killer)
		}
		for _, itemID := range n.Inventory.Items() {
			r.destroyItem(r.items[itemID])
		}
		row, col := n.Pos()
		r.tiles[row][col].leave(id)
		n.Delete()
		delete(r.npcs, id)
		dead = append(dead, id)
		r.log.Debug().Int("tick", r.tick).Int("npc", id).Int("attacker", n.AttackerID.Int()).Msg("npc died")
	}
	return dead
}

func (r *Realm) yieldDrops(n *NPC, killer *Entity) {
	killer.Gold.Increment(n.Gold.Val())
	n.Gold.Update(0)
	if !r.cfg.ItemsEnabled {
		return
	}
	for _, l := range r.drops.Roll(r.rng) {
		it := r.createItem(l.Type, n.Level, l.Quantity)
		if !r.receive(killer, it) {
			delete(r.items, it.ID.Int())
			it.Delete()
		}
	}
}
