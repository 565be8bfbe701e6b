package catalogs

type Skill int

const (
	Melee Skill = iota
	Range
	Mage
	Fishing
	Herbalism
	Prospecting
	Carving
	Alchemy

	NumSkills = int(Alchemy) + 1
)

var skillNames = [...]string{"melee", "range", "mage", "fishing", "herbalism", "prospecting", "carving", "alchemy"}

func (s Skill) String() string { return skillNames[s] }

type ItemType int

// Ids are part of the row format; do not renumber.
const (
	Gold ItemType = iota + 1
	Hat
	Top
	Bottom
	Sword
	Bow
	Wand
	Rod
	Gloves
	Pickaxe
	Chisel
	Arcane
	Scrap
	Shaving
	Shard
	Ration
	Poultice

	NumItemTypes = int(Poultice) + 1
)

type Class int

const (
	Currency Class = iota
	Armor
	Weapon
	Tool
	Ammunition
	Consumable
)

type Slot int

const (
	SlotNone Slot = iota
	SlotHat
	SlotTop
	SlotBottom
	SlotHeld
	SlotAmmunition

	NumSlots = int(SlotAmmunition) + 1
)

// Coef is a stat that scales linearly with item level.
type Coef struct {
	Base     float32
	PerLevel float32
}

func (c Coef) At(level float32) float32 { return c.Base + c.PerLevel*level }

// Requirement picks the agent level an item is gated on.
type Requirement int

const (
	// RequireSkill gates on ItemKind.Skill.
	RequireSkill Requirement = iota
	// RequireAny gates on the agent's highest skill.
	RequireAny
)

type ItemKind struct {
	Type      ItemType
	Name      string
	Class     Class
	Slot      Slot
	Require   Requirement
	Skill     Skill
	Stackable bool
	Tradable  bool

	Attack          [3]Coef // melee, range, mage
	Defense         [3]Coef
	HealthRestore   Coef
	ResourceRestore Coef
}

// StackCapacity is the most units one stackable item row can hold.
const StackCapacity = 100

func (k ItemKind) Equipable() bool { return k.Slot != SlotNone }

// Capacity is the most units one row of this kind holds.
func (k ItemKind) Capacity() int {
	if k.Stackable {
		return StackCapacity
	}
	return 1
}

func (k ItemKind) Consumable() bool { return k.Class == Consumable }

var (
	armorDefense  = [3]Coef{{0, 10}, {0, 10}, {0, 10}}
	toolDefense   = [3]Coef{{0, 2}, {0, 2}, {0, 2}}
	consumeRestor = Coef{Base: 50, PerLevel: 5}
)

func weapon(style Skill) [3]Coef {
	var out [3]Coef
	out[style] = Coef{Base: 5, PerLevel: 10}
	return out
}

func ammo(style Skill) [3]Coef {
	var out [3]Coef
	out[style] = Coef{Base: 0, PerLevel: 10}
	return out
}

var kinds = [NumItemTypes]ItemKind{
	Gold:     {Type: Gold, Name: "Gold", Class: Currency},
	Hat:      {Type: Hat, Name: "Hat", Class: Armor, Slot: SlotHat, Require: RequireAny, Tradable: true, Defense: armorDefense},
	Top:      {Type: Top, Name: "Top", Class: Armor, Slot: SlotTop, Require: RequireAny, Tradable: true, Defense: armorDefense},
	Bottom:   {Type: Bottom, Name: "Bottom", Class: Armor, Slot: SlotBottom, Require: RequireAny, Tradable: true, Defense: armorDefense},
	Sword:    {Type: Sword, Name: "Sword", Class: Weapon, Slot: SlotHeld, Skill: Melee, Tradable: true, Attack: weapon(Melee)},
	Bow:      {Type: Bow, Name: "Bow", Class: Weapon, Slot: SlotHeld, Skill: Range, Tradable: true, Attack: weapon(Range)},
	Wand:     {Type: Wand, Name: "Wand", Class: Weapon, Slot: SlotHeld, Skill: Mage, Tradable: true, Attack: weapon(Mage)},
	Rod:      {Type: Rod, Name: "Rod", Class: Tool, Slot: SlotHeld, Skill: Fishing, Tradable: true, Defense: toolDefense},
	Gloves:   {Type: Gloves, Name: "Gloves", Class: Tool, Slot: SlotHeld, Skill: Herbalism, Tradable: true, Defense: toolDefense},
	Pickaxe:  {Type: Pickaxe, Name: "Pickaxe", Class: Tool, Slot: SlotHeld, Skill: Prospecting, Tradable: true, Defense: toolDefense},
	Chisel:   {Type: Chisel, Name: "Chisel", Class: Tool, Slot: SlotHeld, Skill: Carving, Tradable: true, Defense: toolDefense},
	Arcane:   {Type: Arcane, Name: "Arcane", Class: Tool, Slot: SlotHeld, Skill: Alchemy, Tradable: true, Defense: toolDefense},
	Scrap:    {Type: Scrap, Name: "Scrap", Class: Ammunition, Slot: SlotAmmunition, Skill: Prospecting, Stackable: true, Tradable: true, Attack: ammo(Melee)},
	Shaving:  {Type: Shaving, Name: "Shaving", Class: Ammunition, Slot: SlotAmmunition, Skill: Carving, Stackable: true, Tradable: true, Attack: ammo(Range)},
	Shard:    {Type: Shard, Name: "Shard", Class: Ammunition, Slot: SlotAmmunition, Skill: Alchemy, Stackable: true, Tradable: true, Attack: ammo(Mage)},
	Ration:   {Type: Ration, Name: "Ration", Class: Consumable, Require: RequireAny, Tradable: true, ResourceRestore: consumeRestor},
	Poultice: {Type: Poultice, Name: "Poultice", Class: Consumable, Require: RequireAny, Tradable: true, HealthRestore: consumeRestor},
}

func Kind(t ItemType) (ItemKind, bool) {
	if t <= 0 || int(t) >= NumItemTypes {
		return ItemKind{}, false
	}
	return kinds[t], true
}

// MustKind panics on an unknown type id; callers pass ids they created.
func MustKind(t ItemType) ItemKind {
	k, ok := Kind(t)
	if !ok {
		panic("catalogs: unknown item type")
	}
	return k
}

func (t ItemType) String() string {
	if k, ok := Kind(t); ok {
		return k.Name
	}
	return "Unknown"
}

func ParseItemType(name string) (ItemType, bool) {
	for _, k := range kinds {
		if k.Name == name && k.Type != 0 {
			return k.Type, true
		}
	}
	return 0, false
}

// RequiredLevel is the agent level an item of type t is gated on, never
// below 1. Unknown types gate on the highest skill.
func RequiredLevel(t ItemType, levels [NumSkills]float32) float32 {
	k, ok := Kind(t)
	var lvl float32
	if ok && k.Require == RequireSkill {
		lvl = levels[k.Skill]
	} else {
		for _, l := range levels {
			if l > lvl {
				lvl = l
			}
		}
	}
	if lvl < 1 {
		lvl = 1
	}
	return lvl
}
