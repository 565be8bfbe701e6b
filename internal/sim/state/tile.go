package state

import (
	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/datastore"
	"gridrealm.ai/internal/sim/serialized"
	"gridrealm.ai/internal/sim/tuning"
)

const TileKind = "Tile"

// Tile columns.
const (
	TileID = iota
	TileRow
	TileCol
	TileMaterial
)

var TileSchema = serialized.NewSchema(TileKind, "id", "row", "col", "material_id")

func TileLimits(cfg tuning.Config) serialized.Limits {
	edge := float32(cfg.MapSize - 1)
	return serialized.Limits{
		"row":         {Min: 0, Max: edge},
		"col":         {Min: 0, Max: edge},
		"material_id": {Min: 0, Max: float32(catalogs.NumMaterials - 1)},
	}
}

type Tile struct {
	rec *datastore.Record

	ID       *serialized.Attribute
	Row      *serialized.Attribute
	Col      *serialized.Attribute
	Material *serialized.Attribute
}

func NewTile(ds *datastore.Datastore, cfg tuning.Config, r, c int, m catalogs.Material) *Tile {
	rec := ds.CreateRecord(TileKind)
	a := serialized.Bind(rec, TileSchema, TileLimits(cfg))
	t := &Tile{rec: rec, ID: a[TileID], Row: a[TileRow], Col: a[TileCol], Material: a[TileMaterial]}
	t.Row.Update(float32(r))
	t.Col.Update(float32(c))
	t.Material.Update(float32(m))
	return t
}

func (t *Tile) RecordID() int { return t.rec.ID() }
func (t *Tile) Delete()       { t.rec.Delete() }

func (t *Tile) Habitable() bool { return catalogs.IsHabitable(t.Material.Val()) }

func TileWindow(ds *datastore.Datastore, r, c, radius int) datastore.Rows {
	return ds.Table(TileKind).Window(TileRow, TileCol, r, c, radius)
}

func TileByID(ds *datastore.Datastore, id int) ([]float32, bool) {
	return gather(ds.Table(TileKind), id)
}

// gather fetches the row stored at slot id; a zeroed row means the object is gone.
func gather(t *datastore.Table, id int) ([]float32, bool) {
	row := t.Get([]int{id}).Row(0)
	if row[datastore.IDCol] == 0 {
		return nil, false
	}
	return row, true
}
