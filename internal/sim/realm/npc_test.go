package realm

import (
	"math/rand/v2"
	"testing"

	"gridrealm.ai/internal/sim/action"
	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/state"
)

func TestNPCSpawnsFillPopulation(t *testing.T) {
	cfg := smallConfig(1)
	cfg.NPC.N = 3
	r := newTestRealm(t, cfg, fixedTerrain{spawns: []Point{{5, 5}}})

	ids := r.NPCs()
	if len(ids) != 3 || ids[0] != -3 || ids[2] != -1 {
		t.Fatalf("npcs %v", ids)
	}
	if got := r.Players(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("players %v", got)
	}
	if len(r.Observations()) != 1 {
		t.Fatalf("player observations: %d", len(r.Observations()))
	}
	for _, id := range ids {
		n, _ := r.NPC(id)
		row, ok := state.EntityByID(r.Datastore(), id)
		if !ok {
			t.Fatalf("npc %d has no row", id)
		}
		if int(row[state.EntityPopulation]) != n.Kind.Population() || n.Kind.Population() >= 0 {
			t.Fatalf("npc %d population %v kind %v", id, row[state.EntityPopulation], n.Kind)
		}
		if n.Level < cfg.NPC.LevelMin || n.Level > cfg.NPC.LevelMax {
			t.Fatalf("npc %d level %d", id, n.Level)
		}
		if n.Skills[n.Style].Int() != n.Level || n.Health.Val() != float32(n.Level)*cfg.NPC.HealthPerLevel {
			t.Fatalf("npc %d stats: skill %d health %v", id, n.Skills[n.Style].Int(), n.Health.Val())
		}
		if _, ok := r.Observe(id); !ok {
			t.Fatalf("npc %d not observed", id)
		}
		nr, nc := n.Pos()
		tile, _ := r.Tile(nr, nc)
		if !tile.Habitable() {
			t.Fatalf("npc %d on %v", id, catalogs.Material(tile.Material.Int()))
		}
	}

	// full population: stepping spawns nothing new
	r.Step(nil)
	if got := r.NPCs(); len(got) != 3 || got[0] != -3 {
		t.Fatalf("npcs after step %v", got)
	}
}

func TestNPCKindFollowsDanger(t *testing.T) {
	cfg := smallConfig(1)
	r := newTestRealm(t, cfg, fixedTerrain{spawns: []Point{{5, 5}}})

	edge := r.spawnNPC(Point{2, 2})
	center := r.spawnNPC(Point{8, 8})
	if edge.Kind != Passive || edge.Level != cfg.NPC.LevelMin {
		t.Fatalf("edge npc %v level %d", edge.Kind, edge.Level)
	}
	if center.Kind != Hostile || center.Level != cfg.NPC.LevelMax {
		t.Fatalf("center npc %v level %d", center.Kind, center.Level)
	}
	if edge.ID.Int() != -1 || center.ID.Int() != -2 {
		t.Fatalf("ids %d %d", edge.ID.Int(), center.ID.Int())
	}
}

func TestNPCKilledByPlayerYieldsDrops(t *testing.T) {
	cfg := smallConfig(1)
	r := New(cfg, 7,
		WithTerrain(fixedTerrain{spawns: []Point{{5, 5}}}),
		WithDropTable(DropTable{{Type: catalogs.Ration, Min: 2, Max: 2, Chance: 1}}))
	n := r.spawnNPC(Point{5, 6})
	r.observe()
	id := n.ID.Int()
	n.Health.Update(1)

	e := mustPlayer(t, r, 1)
	gold := e.Gold.Val()
	held := e.Inventory.Len()

	entry := r.Step(act(1, action.Attack, map[action.Arg]int{
		action.Style:  int(catalogs.Melee),
		action.Target: entIndex(t, r, 1, id),
	}))
	if len(entry.Deaths) != 1 || entry.Deaths[0] != id {
		t.Fatalf("deaths %v", entry.Deaths)
	}
	if _, ok := r.NPC(id); ok {
		t.Fatalf("npc survived")
	}
	if _, ok := state.EntityByID(r.Datastore(), id); ok {
		t.Fatalf("npc row still live")
	}
	if tile, _ := r.Tile(5, 6); len(tile.Occupants()) != 0 {
		t.Fatalf("occupants %v", tile.Occupants())
	}
	if e.Gold.Val() != gold+float32(n.Level) {
		t.Fatalf("gold %v, want %v", e.Gold.Val(), gold+float32(n.Level))
	}
	if e.Inventory.Len() != held+1 {
		t.Fatalf("inventory %d, want %d", e.Inventory.Len(), held+1)
	}
	loot := r.items[e.Inventory.Items()[held]]
	if loot.Signature() != (state.Signature{Type: catalogs.Ration, Level: n.Level}) || loot.Quantity.Int() != 2 {
		t.Fatalf("loot %+v qty %d", loot.Signature(), loot.Quantity.Int())
	}
}

func TestNPCDeathWithoutPlayerKillerDropsNothing(t *testing.T) {
	cfg := smallConfig(1)
	r := newTestRealm(t, cfg, fixedTerrain{
		spawns:    []Point{{5, 5}},
		overrides: map[Point]catalogs.Material{{9, 9}: catalogs.Lava},
	})
	n := r.spawnNPC(Point{9, 9})
	e := mustPlayer(t, r, 1)
	gold, held := e.Gold.Val(), e.Inventory.Len()

	entry := r.Step(nil)
	if len(entry.Deaths) != 1 || entry.Deaths[0] != n.ID.Int() {
		t.Fatalf("deaths %v", entry.Deaths)
	}
	if e.Gold.Val() != gold || e.Inventory.Len() != held {
		t.Fatalf("player paid for a lava death")
	}
}

func TestNPCActsAndCannotReceive(t *testing.T) {
	cfg := smallConfig(1)
	r := newTestRealm(t, cfg, fixedTerrain{spawns: []Point{{5, 5}}})
	n := r.spawnNPC(Point{5, 5})
	r.observe()
	id := n.ID.Int()

	masks, ok := r.Masks(1)
	if !ok {
		t.Fatalf("no masks")
	}
	ni := entIndex(t, r, 1, id)
	if !masks[action.Attack][action.Target][ni] {
		t.Fatalf("npc not attackable")
	}
	if masks[action.Give][action.Target][ni] || masks[action.GiveGold][action.Target][ni] {
		t.Fatalf("npc offered as a give target")
	}

	entry := r.Step(Actions{
		id: {action.Attack: {action.Style: int(n.Style), action.Target: entIndex(t, r, id, 1)}},
		1:  {action.GiveGold: {action.Target: ni, action.Price: 0}},
	})
	var npcApplied, giveApplied bool
	for _, a := range entry.Actions {
		switch a.AgentID {
		case id:
			npcApplied = a.Applied
		case 1:
			giveApplied = a.Applied
		}
	}
	if !npcApplied || giveApplied {
		t.Fatalf("actions %+v", entry.Actions)
	}
	e := mustPlayer(t, r, 1)
	if e.AttackerID.Int() != id || e.Damage.Val() == 0 {
		t.Fatalf("attacker %d damage %v", e.AttackerID.Int(), e.Damage.Val())
	}
}

func TestDropTableRoll(t *testing.T) {
	table := DropTable{
		{Type: catalogs.Scrap, Min: 1, Max: 3, Chance: 1},
		{Type: catalogs.Hat, Min: 1, Max: 1, Chance: 0},
	}
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		loot := table.Roll(rng)
		if len(loot) != 1 || loot[0].Type != catalogs.Scrap || loot[0].Quantity < 1 || loot[0].Quantity > 3 {
			t.Fatalf("roll %d: %+v", i, loot)
		}
	}
}
