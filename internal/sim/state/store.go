package state

import (
	"gridrealm.ai/internal/sim/datastore"
	"gridrealm.ai/internal/sim/serialized"
	"gridrealm.ai/internal/sim/tuning"
)

// Schemas lists every record kind in registration order.
var Schemas = []*serialized.Schema{TileSchema, EntitySchema, ItemSchema}

// NewStore registers a table per record kind. The tile table is sized to hold
// the whole map without growing.
func NewStore(cfg tuning.Config) *datastore.Datastore {
	ds := datastore.New()
	TileSchema.Register(ds, cfg.MapSize*cfg.MapSize+1)
	EntitySchema.Register(ds, cfg.InitialTableRows)
	ItemSchema.Register(ds, cfg.InitialTableRows)
	return ds
}
