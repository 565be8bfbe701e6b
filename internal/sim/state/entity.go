package state

import (
	"math"

	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/datastore"
	"gridrealm.ai/internal/sim/serialized"
	"gridrealm.ai/internal/sim/tuning"
)

const EntityKind = "Entity"

// Entity columns. The skill levels are contiguous and ordered like catalogs.Skill.
const (
	EntityID = iota
	EntityPopulation
	EntityRow
	EntityCol
	EntityDamage
	EntityTimeAlive
	EntityFreeze
	EntityItemLevel
	EntityAttackerID
	EntityGold
	EntityHealth
	EntityFood
	EntityWater
	EntityMeleeLevel
	EntityRangeLevel
	EntityMageLevel
	EntityFishingLevel
	EntityHerbalismLevel
	EntityProspectingLevel
	EntityCarvingLevel
	EntityAlchemyLevel
)

var EntitySchema = serialized.NewSchema(EntityKind,
	"id",
	"population_id",
	"row",
	"col",
	"damage",
	"time_alive",
	"freeze",
	"item_level",
	"attacker_id",
	"gold",
	"health",
	"food",
	"water",
	"melee_level",
	"range_level",
	"mage_level",
	"fishing_level",
	"herbalism_level",
	"prospecting_level",
	"carving_level",
	"alchemy_level",
)

func EntityLimits(cfg tuning.Config) serialized.Limits {
	edge := float32(cfg.MapSize - 1)
	maxLevel := float32(cfg.MaxLevel)
	l := serialized.Limits{
		"row":        {Min: 0, Max: edge},
		"col":        {Min: 0, Max: edge},
		"damage":     {Min: 0, Max: math.MaxFloat32},
		"time_alive": {Min: 0, Max: math.MaxFloat32},
		"freeze":     {Min: 0, Max: float32(cfg.Combat.FreezeTicks)},
		"item_level": {Min: 0, Max: math.MaxFloat32},
		"gold":       {Min: 0, Max: math.MaxFloat32},
		"health":     {Min: 0, Max: cfg.Resources.MaxHealth},
		"food":       {Min: 0, Max: cfg.Resources.MaxFood},
		"water":      {Min: 0, Max: cfg.Resources.MaxWater},
	}
	for s := 0; s < catalogs.NumSkills; s++ {
		l[EntitySchema.Name(EntityMeleeLevel+s)] = serialized.Bounds{Min: 0, Max: maxLevel}
	}
	return l
}

type Entity struct {
	rec *datastore.Record

	ID           *serialized.Attribute
	PopulationID *serialized.Attribute
	Row          *serialized.Attribute
	Col          *serialized.Attribute
	Damage       *serialized.Attribute
	TimeAlive    *serialized.Attribute
	Freeze       *serialized.Attribute
	ItemLevel    *serialized.Attribute
	AttackerID   *serialized.Attribute
	Gold         *serialized.Attribute
	Health       *serialized.Attribute
	Food         *serialized.Attribute
	Water        *serialized.Attribute
	Skills       [catalogs.NumSkills]*serialized.Attribute
}

// NewEntity creates the entity's row. id must be nonzero: a zero id column
// marks an empty row.
func NewEntity(ds *datastore.Datastore, cfg tuning.Config, id, population, r, c int) *Entity {
	if id == 0 {
		panic("state: entity id 0 is reserved")
	}
	rec := ds.CreateRecord(EntityKind)
	a := serialized.Bind(rec, EntitySchema, EntityLimits(cfg))
	e := &Entity{
		rec:          rec,
		ID:           a[EntityID],
		PopulationID: a[EntityPopulation],
		Row:          a[EntityRow],
		Col:          a[EntityCol],
		Damage:       a[EntityDamage],
		TimeAlive:    a[EntityTimeAlive],
		Freeze:       a[EntityFreeze],
		ItemLevel:    a[EntityItemLevel],
		AttackerID:   a[EntityAttackerID],
		Gold:         a[EntityGold],
		Health:       a[EntityHealth],
		Food:         a[EntityFood],
		Water:        a[EntityWater],
	}
	for s := range e.Skills {
		e.Skills[s] = a[EntityMeleeLevel+s]
	}
	e.ID.Update(float32(id))
	e.PopulationID.Update(float32(population))
	e.Row.Update(float32(r))
	e.Col.Update(float32(c))
	e.Health.Update(cfg.Resources.MaxHealth)
	e.Food.Update(cfg.Resources.MaxFood)
	e.Water.Update(cfg.Resources.MaxWater)
	for _, s := range e.Skills {
		s.Update(1)
	}
	return e
}

func (e *Entity) RecordID() int { return e.rec.ID() }
func (e *Entity) Delete()       { e.rec.Delete() }

func (e *Entity) Pos() (int, int) { return e.Row.Int(), e.Col.Int() }

func (e *Entity) Levels() [catalogs.NumSkills]float32 {
	var out [catalogs.NumSkills]float32
	for i, s := range e.Skills {
		out[i] = s.Val()
	}
	return out
}

// LevelsOf reads the skill levels out of a raw entity row.
func LevelsOf(row []float32) [catalogs.NumSkills]float32 {
	var out [catalogs.NumSkills]float32
	copy(out[:], row[EntityMeleeLevel:EntityMeleeLevel+catalogs.NumSkills])
	return out
}

func EntityWindow(ds *datastore.Datastore, r, c, radius int) datastore.Rows {
	return ds.Table(EntityKind).Window(EntityRow, EntityCol, r, c, radius)
}

// EntityByID scans for the entity's row. Entity ids are logical ids, not row
// slots, so this is an equality scan rather than a gather.
func EntityByID(ds *datastore.Datastore, id int) ([]float32, bool) {
	if id == 0 {
		return nil, false
	}
	rows := ds.Table(EntityKind).WhereEq(EntityID, float32(id))
	if rows.Len() == 0 {
		return nil, false
	}
	return rows.Row(0), true
}
