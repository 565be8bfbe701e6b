package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	c := Defaults()
	require.NoError(t, c.Validate())
	assert.Equal(t, 225, c.MapNObs())
	assert.Equal(t, 3, c.MaxAttackRange())
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
map_size: 32
map_border: 4
vision_radius: 2
combat:
  mage_reach: 5
  friendly_fire: false
`))
	require.NoError(t, err)
	assert.Equal(t, 32, c.MapSize)
	assert.Equal(t, 25, c.MapNObs())
	assert.Equal(t, 5, c.AttackRange(2))
	assert.Equal(t, 3, c.AttackRange(0))
	assert.Equal(t, 5, c.MaxAttackRange())
	assert.False(t, c.Combat.FriendlyFire)
	// untouched keys keep their defaults
	assert.Equal(t, float32(100), c.Resources.MaxHealth)
	assert.Equal(t, 12, c.InventoryCapacity)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"border":    "map_size: 10\nmap_border: 5\n",
		"vision":    "vision_radius: 0\n",
		"inventory": "inventory_capacity: 20\ninventory_n_obs: 10\n",
		"yaml":      "map_size: [",
		"regrow":    "resources:\n  regrow_chance: 1.5\n",
		"forage":    "resources:\n  forage_food: -1\n",
		"npc n":     "npc:\n  n: -1\n",
		"npc level": "npc:\n  level_max: 11\n",
		"npc range": "npc:\n  level_min: 4\n  level_max: 3\n",
		"npc anger": "npc:\n  neutral_danger: 0.8\n  hostile_danger: 0.5\n",
	}
	for name, raw := range cases {
		_, err := Parse([]byte(raw))
		assert.Error(t, err, name)
	}
}

func TestParseNPCsOff(t *testing.T) {
	// with no npcs the rest of the block is not checked
	c, err := Parse([]byte("npc:\n  n: 0\n  level_min: 0\n"))
	require.NoError(t, err)
	assert.Zero(t, c.NPC.N)
	assert.Equal(t, 0.025, c.Resources.RegrowChance)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("player_n: 3\nmap_n_obs: 9\n"), 0o644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.PlayerN)
	assert.Equal(t, 9, c.MapNObs())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
