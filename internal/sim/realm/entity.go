package realm

import (
	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/state"
)

// Entity is a player: its table row plus an inventory of item ids.
type Entity struct {
	*state.Entity
	Inventory *Inventory
}

func (e *Entity) Alive() bool { return e.Health.Gt(0) }

func (e *Entity) Population() int { return e.PopulationID.Int() }

// Inventory holds item ids in acquisition order and the equipped id per slot.
type Inventory struct {
	capacity int
	items    []int
	slots    [catalogs.NumSlots]int
}

func newInventory(capacity int) *Inventory {
	return &Inventory{capacity: capacity}
}

func (inv *Inventory) Len() int      { return len(inv.items) }
func (inv *Inventory) Space() bool   { return len(inv.items) < inv.capacity }
func (inv *Inventory) Items() []int  { return append([]int(nil), inv.items...) }
func (inv *Inventory) Capacity() int { return inv.capacity }

func (inv *Inventory) Has(id int) bool {
	for _, v := range inv.items {
		if v == id {
			return true
		}
	}
	return false
}

// Equipped returns the item id in slot, or 0.
func (inv *Inventory) Equipped(slot catalogs.Slot) int { return inv.slots[slot] }

func (inv *Inventory) add(id int) {
	if inv.Has(id) {
		panic("realm: item already in inventory")
	}
	inv.items = append(inv.items, id)
}

func (inv *Inventory) remove(id int) {
	for i, v := range inv.items {
		if v == id {
			inv.items = append(inv.items[:i], inv.items[i+1:]...)
			for s := range inv.slots {
				if inv.slots[s] == id {
					inv.slots[s] = 0
				}
			}
			return
		}
	}
	panic("realm: item not in inventory")
}
