package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/datastore"
	"gridrealm.ai/internal/sim/serialized"
	"gridrealm.ai/internal/sim/tuning"
)

func TestColumnConstantsMatchSchemas(t *testing.T) {
	check := func(s *serialized.Schema, cols map[string]int) {
		t.Helper()
		assert.Len(t, cols, s.Width(), s.Kind())
		for name, col := range cols {
			assert.Equal(t, s.Col(name), col, "%s.%s", s.Kind(), name)
		}
	}
	check(TileSchema, map[string]int{"id": TileID, "row": TileRow, "col": TileCol, "material_id": TileMaterial})
	check(EntitySchema, map[string]int{
		"id": EntityID, "population_id": EntityPopulation, "row": EntityRow, "col": EntityCol,
		"damage": EntityDamage, "time_alive": EntityTimeAlive, "freeze": EntityFreeze,
		"item_level": EntityItemLevel, "attacker_id": EntityAttackerID, "gold": EntityGold,
		"health": EntityHealth, "food": EntityFood, "water": EntityWater,
		"melee_level": EntityMeleeLevel, "range_level": EntityRangeLevel, "mage_level": EntityMageLevel,
		"fishing_level": EntityFishingLevel, "herbalism_level": EntityHerbalismLevel,
		"prospecting_level": EntityProspectingLevel, "carving_level": EntityCarvingLevel,
		"alchemy_level": EntityAlchemyLevel,
	})
	check(ItemSchema, map[string]int{
		"id": ItemID, "type_id": ItemType, "owner_id": ItemOwner, "level": ItemLevel,
		"capacity": ItemCapacity, "quantity": ItemQuantity, "tradable": ItemTradable,
		"melee_attack": ItemMeleeAttack, "range_attack": ItemRangeAttack, "mage_attack": ItemMageAttack,
		"melee_defense": ItemMeleeDefense, "range_defense": ItemRangeDefense, "mage_defense": ItemMageDefense,
		"health_restore": ItemHealthRestore, "resource_restore": ItemResourceRestore,
		"equipped": ItemEquipped, "listed_price": ItemListedPrice, "listed_expiry": ItemListedExpiry,
	})
	assert.Equal(t, "melee_level", EntitySchema.Name(EntityMeleeLevel+int(catalogs.Melee)))
	assert.Equal(t, "alchemy_level", EntitySchema.Name(EntityMeleeLevel+int(catalogs.Alchemy)))
}

func testStore(t *testing.T) (*datastore.Datastore, tuning.Config) {
	t.Helper()
	cfg := tuning.Defaults()
	cfg.MapSize = 32
	cfg.MapBorder = 4
	return NewStore(cfg), cfg
}

func ids(rows datastore.Rows, col int) []int {
	out := make([]int, rows.Len())
	for i := range out {
		out[i] = int(rows.At(i, col))
	}
	return out
}

func TestEntityWindow(t *testing.T) {
	ds, cfg := testStore(t)
	NewEntity(ds, cfg, 5, 1, 10, 10)
	NewEntity(ds, cfg, 6, 1, 10, 11)
	NewEntity(ds, cfg, 7, 2, 12, 12)

	got := EntityWindow(ds, 10, 10, 1)
	assert.ElementsMatch(t, []int{5, 6}, ids(got, EntityID))
}

func TestEntityWindowNearOriginIgnoresEmptyRows(t *testing.T) {
	ds, cfg := testStore(t)
	e := NewEntity(ds, cfg, 3, 1, 1, 0)

	got := EntityWindow(ds, 0, 0, 2)
	assert.Equal(t, []int{3}, ids(got, EntityID))

	e.Delete()
	assert.Equal(t, 0, EntityWindow(ds, 0, 0, 2).Len())
	_, ok := EntityByID(ds, 3)
	assert.False(t, ok)
}

func TestTileWindowIncludesOriginTile(t *testing.T) {
	ds, cfg := testStore(t)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			NewTile(ds, cfg, r, c, catalogs.Grass)
		}
	}
	got := TileWindow(ds, 0, 0, 1)
	require.Equal(t, 4, got.Len())
	assert.Equal(t, float32(0), got.At(0, TileRow))
	assert.Equal(t, float32(0), got.At(0, TileCol))
	assert.Equal(t, float32(catalogs.Grass), got.At(0, TileMaterial))
}

func TestTileByID(t *testing.T) {
	ds, cfg := testStore(t)
	tile := NewTile(ds, cfg, 4, 5, catalogs.Water)
	row, ok := TileByID(ds, tile.RecordID())
	require.True(t, ok)
	assert.Equal(t, float32(5), row[TileCol])
	assert.False(t, tile.Habitable())

	_, ok = TileByID(ds, 999)
	assert.False(t, ok)
}

func TestEntityAttributesClampToConfig(t *testing.T) {
	ds, cfg := testStore(t)
	e := NewEntity(ds, cfg, 1, 1, 500, -3)
	r, c := e.Pos()
	assert.Equal(t, 31, r)
	assert.Equal(t, 0, c)
	assert.Equal(t, cfg.Resources.MaxHealth, e.Health.Val())

	e.Health.Decrement(1000)
	assert.Equal(t, float32(0), e.Health.Val())
	e.Skills[catalogs.Mage].Update(99)
	assert.Equal(t, float32(cfg.MaxLevel), e.Levels()[catalogs.Mage])

	row, ok := EntityByID(ds, 1)
	require.True(t, ok)
	assert.Equal(t, e.Levels(), LevelsOf(row))
	assert.Panics(t, func() { NewEntity(ds, cfg, 0, 1, 1, 1) })
}

func TestItemQueries(t *testing.T) {
	ds, cfg := testStore(t)
	sword := NewItem(ds, cfg, catalogs.Sword, 3, 5)
	scrap := NewItem(ds, cfg, catalogs.Scrap, 0, 20)
	hat := NewItem(ds, cfg, catalogs.Hat, 1, 1)

	assert.Equal(t, float32(1), sword.Quantity.Val(), "non-stackable quantity is 1")
	assert.Equal(t, float32(20), scrap.Quantity.Val())
	assert.Equal(t, float32(35), sword.Attack[catalogs.Melee].Val())
	assert.Equal(t, float32(10), hat.Defense[catalogs.Range].Val())
	assert.Equal(t, Signature{Type: catalogs.Scrap, Level: 0}, scrap.Signature())

	sword.OwnerID.Update(7)
	scrap.OwnerID.Update(7)
	hat.OwnerID.Update(8)
	assert.Equal(t, []int{sword.ID.Int(), scrap.ID.Int()}, ids(ItemsOwnedBy(ds, 7), ItemID))

	hat.ListedPrice.Update(4)
	hat.ListedExpiry.Update(10)
	assert.True(t, hat.Listed())
	assert.Equal(t, []int{hat.ID.Int()}, ids(ItemsForSale(ds), ItemID))
	assert.Empty(t, ExpiredListings(ds, 9))
	assert.Equal(t, []int{hat.ID.Int()}, ExpiredListings(ds, 10))

	row, ok := ItemByID(ds, scrap.ID.Int())
	require.True(t, ok)
	assert.Equal(t, float32(catalogs.Scrap), row[ItemType])

	scrap.Delete()
	_, ok = ItemByID(ds, scrap.ID.Int())
	assert.False(t, ok)
	assert.Equal(t, []int{sword.ID.Int()}, ids(ItemsOwnedBy(ds, 7), ItemID))
}

func TestItemCapacityFromCatalog(t *testing.T) {
	ds, cfg := testStore(t)
	sword := NewItem(ds, cfg, catalogs.Sword, 0, 1)
	scrap := NewItem(ds, cfg, catalogs.Scrap, 0, 30)
	heap := NewItem(ds, cfg, catalogs.Shard, 0, catalogs.StackCapacity+50)

	assert.Equal(t, float32(1), sword.Capacity.Val())
	assert.Equal(t, float32(0), sword.Room())
	assert.Equal(t, float32(catalogs.StackCapacity), scrap.Capacity.Val())
	assert.Equal(t, float32(catalogs.StackCapacity-30), scrap.Room())
	assert.Equal(t, float32(catalogs.StackCapacity), heap.Quantity.Val(), "quantity is capped by capacity")

	row, ok := ItemByID(ds, scrap.ID.Int())
	require.True(t, ok)
	assert.Equal(t, float32(catalogs.StackCapacity), row[ItemCapacity])
}
