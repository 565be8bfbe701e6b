// Package observation builds the per-agent, per-tick view of the store: four
// capped row batches, their fixed-shape tensors, and the legal-action masks.
//
// An Observation must not outlive the tick that produced it; ids are recycled.
package observation

import (
	"gridrealm.ai/internal/sim/datastore"
	"gridrealm.ai/internal/sim/state"
	"gridrealm.ai/internal/sim/tuning"
)

// Tensor names.
const (
	TileTensor      = "Tile"
	EntityTensor    = "Entity"
	InventoryTensor = "Inventory"
	MarketTensor    = "Market"
)

type Observation struct {
	cfg     tuning.Config
	AgentID int

	Tiles     *Batch
	Entities  *Batch
	Inventory *Batch
	Market    *Batch

	tileIndex map[[2]int]int
}

func New(cfg tuning.Config, agentID int, tiles, entities, inventory, market datastore.Rows) *Observation {
	return &Observation{
		cfg:       cfg,
		AgentID:   agentID,
		Tiles:     newBatch(tiles, cfg.MapNObs()),
		Entities:  newBatch(entities, cfg.PlayerNObs),
		Inventory: newBatch(inventory, cfg.InventoryNObs),
		Market:    newBatch(market, cfg.MarketNObs),
	}
}

func (o *Observation) Config() tuning.Config { return o.cfg }

func (o *Observation) Entity(id int) ([]float32, bool) {
	i, ok := o.Entities.Index(id)
	if !ok {
		return nil, false
	}
	return o.Entities.Row(i), true
}

func (o *Observation) Agent() ([]float32, bool) { return o.Entity(o.AgentID) }

// Tile returns the tile at an offset from the agent.
func (o *Observation) Tile(dr, dc int) ([]float32, bool) {
	agent, ok := o.Agent()
	if !ok {
		return nil, false
	}
	if o.tileIndex == nil {
		o.tileIndex = make(map[[2]int]int, o.Tiles.Len())
		for i := 0; i < o.Tiles.Len(); i++ {
			k := [2]int{int(o.Tiles.values.At(i, state.TileRow)), int(o.Tiles.values.At(i, state.TileCol))}
			if _, dup := o.tileIndex[k]; !dup {
				o.tileIndex[k] = i
			}
		}
	}
	i, ok := o.tileIndex[[2]int{int(agent[state.EntityRow]) + dr, int(agent[state.EntityCol]) + dc}]
	if !ok {
		return nil, false
	}
	return o.Tiles.Row(i), true
}

// Tensors exports every enabled batch zero-padded to its cap.
func (o *Observation) Tensors() map[string]datastore.Rows {
	out := map[string]datastore.Rows{
		TileTensor:   o.Tiles.Tensor(),
		EntityTensor: o.Entities.Tensor(),
	}
	if o.cfg.ItemsEnabled {
		out[InventoryTensor] = o.Inventory.Tensor()
	}
	if o.cfg.ExchangeEnabled {
		out[MarketTensor] = o.Market.Tensor()
	}
	return out
}
