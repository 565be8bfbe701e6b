package state

import (
	"math"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/datastore"
	"gridrealm.ai/internal/sim/serialized"
	"gridrealm.ai/internal/sim/tuning"
)

const ItemKind = "Item"

// Item columns.
const (
	ItemID = iota
	ItemType
	ItemOwner
	ItemLevel
	ItemCapacity
	ItemQuantity
	ItemTradable
	ItemMeleeAttack
	ItemRangeAttack
	ItemMageAttack
	ItemMeleeDefense
	ItemRangeDefense
	ItemMageDefense
	ItemHealthRestore
	ItemResourceRestore
	ItemEquipped
	ItemListedPrice
	ItemListedExpiry
)

var ItemSchema = serialized.NewSchema(ItemKind,
	"id",
	"type_id",
	"owner_id",
	"level",
	"capacity",
	"quantity",
	"tradable",
	"melee_attack",
	"range_attack",
	"mage_attack",
	"melee_defense",
	"range_defense",
	"mage_defense",
	"health_restore",
	"resource_restore",
	"equipped",
	"listed_price",
	"listed_expiry",
)

func ItemLimits(cfg tuning.Config) serialized.Limits {
	return serialized.Limits{
		"type_id":       {Min: 0, Max: float32(catalogs.NumItemTypes - 1)},
		"level":         {Min: 0, Max: float32(cfg.MaxLevel)},
		"capacity":      {Min: 0, Max: catalogs.StackCapacity},
		"quantity":      {Min: 0, Max: math.MaxFloat32},
		"tradable":      {Min: 0, Max: 1},
		"equipped":      {Min: 0, Max: 1},
		"listed_price":  {Min: 0, Max: math.MaxFloat32},
		"listed_expiry": {Min: 0, Max: math.MaxFloat32},
	}
}

type Item struct {
	rec  *datastore.Record
	kind catalogs.ItemKind

	ID              *serialized.Attribute
	TypeID          *serialized.Attribute
	OwnerID         *serialized.Attribute
	Level           *serialized.Attribute
	Capacity        *serialized.Attribute
	Quantity        *serialized.Attribute
	Tradable        *serialized.Attribute
	Attack          [3]*serialized.Attribute
	Defense         [3]*serialized.Attribute
	HealthRestore   *serialized.Attribute
	ResourceRestore *serialized.Attribute
	Equipped        *serialized.Attribute
	ListedPrice     *serialized.Attribute
	ListedExpiry    *serialized.Attribute
}

// NewItem creates an unowned item row; the item id is its row slot. Stats
// come from the catalog entry for typ at the given level.
func NewItem(ds *datastore.Datastore, cfg tuning.Config, typ catalogs.ItemType, level, quantity int) *Item {
	kind := catalogs.MustKind(typ)
	rec := ds.CreateRecord(ItemKind)
	a := serialized.Bind(rec, ItemSchema, ItemLimits(cfg))
	it := &Item{
		rec:             rec,
		kind:            kind,
		ID:              a[ItemID],
		TypeID:          a[ItemType],
		OwnerID:         a[ItemOwner],
		Level:           a[ItemLevel],
		Capacity:        a[ItemCapacity],
		Quantity:        a[ItemQuantity],
		Tradable:        a[ItemTradable],
		Attack:          [3]*serialized.Attribute{a[ItemMeleeAttack], a[ItemRangeAttack], a[ItemMageAttack]},
		Defense:         [3]*serialized.Attribute{a[ItemMeleeDefense], a[ItemRangeDefense], a[ItemMageDefense]},
		HealthRestore:   a[ItemHealthRestore],
		ResourceRestore: a[ItemResourceRestore],
		Equipped:        a[ItemEquipped],
		ListedPrice:     a[ItemListedPrice],
		ListedExpiry:    a[ItemListedExpiry],
	}
	it.TypeID.Update(float32(typ))
	it.Level.Update(float32(level))
	lvl := it.Level.Val()
	it.Capacity.Update(float32(kind.Capacity()))
	it.Quantity.Update(float32(min(quantity, kind.Capacity())))
	if kind.Tradable {
		it.Tradable.Update(1)
	}
	for i := range it.Attack {
		it.Attack[i].Update(kind.Attack[i].At(lvl))
		it.Defense[i].Update(kind.Defense[i].At(lvl))
	}
	if kind.Consumable() {
		it.HealthRestore.Update(kind.HealthRestore.At(lvl))
		it.ResourceRestore.Update(kind.ResourceRestore.At(lvl))
	}
	return it
}

func (it *Item) Kind() catalogs.ItemKind { return it.kind }
func (it *Item) Delete()                 { it.rec.Delete() }
func (it *Item) Alive() bool             { return it.rec.Alive() }

// Signature identifies interchangeable stacks.
func (it *Item) Signature() Signature {
	return Signature{Type: catalogs.ItemType(it.TypeID.Int()), Level: it.Level.Int()}
}

func (it *Item) Listed() bool { return it.ListedPrice.Gt(0) }

// Room is how many more units this row can take.
func (it *Item) Room() float32 { return it.Capacity.Val() - it.Quantity.Val() }

type Signature struct {
	Type  catalogs.ItemType
	Level int
}

func ItemsOwnedBy(ds *datastore.Datastore, owner int) datastore.Rows {
	return ds.Table(ItemKind).WhereEq(ItemOwner, float32(owner))
}

func ItemsForSale(ds *datastore.Datastore) datastore.Rows {
	return ds.Table(ItemKind).WhereNeq(ItemListedPrice, 0)
}

func ItemByID(ds *datastore.Datastore, id int) ([]float32, bool) {
	return gather(ds.Table(ItemKind), id)
}

// ExpiredListings returns the ids of listings whose expiry tick has passed.
func ExpiredListings(ds *datastore.Datastore, tick int) []int {
	listed := ItemsForSale(ds)
	var out []int
	for i := 0; i < listed.Len(); i++ {
		if int(listed.At(i, ItemListedExpiry)) <= tick {
			out = append(out, int(listed.At(i, ItemID)))
		}
	}
	return out
}
