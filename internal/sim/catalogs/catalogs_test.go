package catalogs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemTypeIDsAreStable(t *testing.T) {
	assert.Equal(t, ItemType(5), Sword)
	assert.Equal(t, ItemType(13), Scrap)
	assert.Equal(t, 18, NumItemTypes)
	for i := 1; i < NumItemTypes; i++ {
		k, ok := Kind(ItemType(i))
		require.True(t, ok, "type %d", i)
		assert.Equal(t, ItemType(i), k.Type)

		parsed, ok := ParseItemType(k.Name)
		require.True(t, ok)
		assert.Equal(t, k.Type, parsed)
	}
	_, ok := Kind(0)
	assert.False(t, ok)
	_, ok = Kind(ItemType(NumItemTypes))
	assert.False(t, ok)
}

func TestOnlyAmmunitionStacks(t *testing.T) {
	for i := 1; i < NumItemTypes; i++ {
		k := MustKind(ItemType(i))
		assert.Equal(t, k.Class == Ammunition, k.Stackable, k.Name)
	}
}

func TestCapacity(t *testing.T) {
	assert.Equal(t, StackCapacity, MustKind(Shard).Capacity())
	assert.Equal(t, 1, MustKind(Sword).Capacity())
	assert.Equal(t, 1, MustKind(Ration).Capacity())
}

func TestRequiredLevel(t *testing.T) {
	var levels [NumSkills]float32
	assert.Equal(t, float32(1), RequiredLevel(Sword, levels), "floor of 1")
	assert.Equal(t, float32(1), RequiredLevel(Hat, levels))

	levels[Melee] = 4
	levels[Carving] = 7
	assert.Equal(t, float32(4), RequiredLevel(Sword, levels))
	assert.Equal(t, float32(1), RequiredLevel(Bow, levels))
	assert.Equal(t, float32(7), RequiredLevel(Shaving, levels))
	assert.Equal(t, float32(7), RequiredLevel(Top, levels))
	assert.Equal(t, float32(7), RequiredLevel(Ration, levels))
}

func TestHabitable(t *testing.T) {
	assert.True(t, IsHabitable(float32(Grass)))
	assert.True(t, IsHabitable(float32(Lava)))
	assert.False(t, IsHabitable(float32(Water)))
	assert.False(t, IsHabitable(float32(Stone)))
	assert.False(t, IsHabitable(-1))
	assert.False(t, IsHabitable(2.5))
	assert.False(t, IsHabitable(float32(NumMaterials)))
	for _, m := range Impassible {
		assert.False(t, IsHabitable(float32(m)), m.String())
	}
}

func TestDepleted(t *testing.T) {
	d, ok := Foliage.Depleted()
	assert.True(t, ok)
	assert.Equal(t, Scrub, d)
	assert.True(t, IsHabitable(float32(d)))
	_, ok = Grass.Depleted()
	assert.False(t, ok)
	_, ok = Water.Depleted()
	assert.False(t, ok)
}

func TestCoef(t *testing.T) {
	k := MustKind(Sword)
	assert.Equal(t, float32(35), k.Attack[Melee].At(3))
	assert.Equal(t, float32(0), k.Attack[Range].At(3))
}
