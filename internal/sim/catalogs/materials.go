package catalogs

type Material int

const (
	Void Material = iota
	Water
	Grass
	Scrub
	Foliage
	Stone
	Slag
	Ore
	Stump
	Tree
	Fragment
	Crystal
	Weeds
	Ocean
	Fish
	Lava

	NumMaterials = int(Lava) + 1
)

var materialNames = [...]string{
	Void:     "Void",
	Water:    "Water",
	Grass:    "Grass",
	Scrub:    "Scrub",
	Foliage:  "Foliage",
	Stone:    "Stone",
	Slag:     "Slag",
	Ore:      "Ore",
	Stump:    "Stump",
	Tree:     "Tree",
	Fragment: "Fragment",
	Crystal:  "Crystal",
	Weeds:    "Weeds",
	Ocean:    "Ocean",
	Fish:     "Fish",
	Lava:     "Lava",
}

func (m Material) String() string {
	if m < 0 || int(m) >= len(materialNames) {
		return "Unknown"
	}
	return materialNames[m]
}

// Habitable materials can be stood on. Lava is habitable and lethal.
var Habitable = []Material{Grass, Scrub, Foliage, Slag, Stump, Weeds, Lava}

var Impassible = []Material{Void, Water, Stone, Ore, Tree, Fragment, Crystal, Ocean, Fish}

var habitable = func() [NumMaterials]bool {
	var out [NumMaterials]bool
	for _, m := range Habitable {
		out[m] = true
	}
	return out
}()

func IsHabitable(id float32) bool {
	i := int(id)
	return float32(i) == id && i >= 0 && i < NumMaterials && habitable[i]
}

// depletes maps a harvestable material to what it leaves behind.
var depletes = map[Material]Material{
	Foliage: Scrub,
}

// Depleted reports what m turns into once harvested.
func (m Material) Depleted() (Material, bool) {
	d, ok := depletes[m]
	return d, ok
}
