package realm

import (
	"gridrealm.ai/internal/sim/state"
)

// Exchange is the market over the item table: a listing is an item row with
// a nonzero listed_price and the tick at which it lapses in listed_expiry.
// Listed items stay in their seller's inventory until bought.
type Exchange struct {
	r *Realm
}

// List puts an owned, unequipped item up for sale.
func (x *Exchange) List(seller *Entity, it *state.Item, price int) bool {
	switch {
	case price < 1,
		!it.Alive(),
		it.Listed(),
		it.Equipped.Gt(0),
		!it.Kind().Tradable,
		!seller.Inventory.Has(it.ID.Int()):
		return false
	}
	it.ListedPrice.Update(float32(price))
	it.ListedExpiry.Update(float32(x.r.tick + x.r.cfg.ListingDuration))
	return true
}

func (x *Exchange) Unlist(it *state.Item) {
	it.ListedPrice.Update(0)
	it.ListedExpiry.Update(0)
}

// Buy moves a listing into the buyer's inventory and pays the seller.
func (x *Exchange) Buy(buyer *Entity, itemID int) bool {
	it, ok := x.r.items[itemID]
	if !ok || !it.Listed() || it.Equipped.Gt(0) {
		return false
	}
	price := it.ListedPrice.Val()
	if it.OwnerID.Int() == buyer.ID.Int() || buyer.Gold.Lt(price) || !x.r.canReceive(buyer, it) {
		return false
	}
	seller, ok := x.r.entity(it.OwnerID.Int())
	if !ok {
		panic("realm: listing without a live seller")
	}
	x.Unlist(it)
	x.r.release(seller, it)
	buyer.Gold.Decrement(price)
	seller.Gold.Increment(price)
	if !x.r.receive(buyer, it) {
		panic("realm: buyer could not receive a checked item")
	}
	x.r.log.Debug().Int("buyer", buyer.ID.Int()).Int("seller", seller.ID.Int()).
		Int("item", itemID).Float32("price", price).Msg("exchange trade")
	return true
}

// Sweep delists every listing whose expiry tick has been reached.
func (x *Exchange) Sweep(tick int) int {
	expired := state.ExpiredListings(x.r.ds, tick)
	for _, id := range expired {
		x.Unlist(x.r.items[id])
	}
	return len(expired)
}
