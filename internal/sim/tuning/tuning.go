package tuning

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Config is fixed for the lifetime of a run and recorded into replay bundles.
type Config struct {
	MapSize          int `yaml:"map_size" json:"map_size"`
	MapBorder        int `yaml:"map_border" json:"map_border"`
	VisionRadius     int `yaml:"vision_radius" json:"vision_radius"`
	PlayerN          int `yaml:"player_n" json:"player_n"`
	Populations      int `yaml:"populations" json:"populations"`
	StartingGold     int `yaml:"starting_gold" json:"starting_gold"`
	InitialTableRows int `yaml:"initial_table_rows" json:"initial_table_rows"`

	// Observation caps. MapNObsOverride of 0 derives the cap from the vision radius.
	MapNObsOverride int `yaml:"map_n_obs" json:"map_n_obs"`
	PlayerNObs      int `yaml:"player_n_obs" json:"player_n_obs"`
	InventoryNObs   int `yaml:"inventory_n_obs" json:"inventory_n_obs"`
	MarketNObs      int `yaml:"market_n_obs" json:"market_n_obs"`

	InventoryCapacity int `yaml:"inventory_capacity" json:"inventory_capacity"`
	PriceN            int `yaml:"price_n" json:"price_n"`

	Combat    Combat    `yaml:"combat" json:"combat"`
	Resources Resources `yaml:"resources" json:"resources"`
	NPC       NPC       `yaml:"npc" json:"npc"`
	MaxLevel  int       `yaml:"max_level" json:"max_level"`

	ListingDuration int `yaml:"listing_duration" json:"listing_duration"`

	CombatEnabled   bool `yaml:"combat_enabled" json:"combat_enabled"`
	ItemsEnabled    bool `yaml:"items_enabled" json:"items_enabled"`
	ExchangeEnabled bool `yaml:"exchange_enabled" json:"exchange_enabled"`
}

type Combat struct {
	MeleeReach    int     `yaml:"melee_reach" json:"melee_reach"`
	RangeReach    int     `yaml:"range_reach" json:"range_reach"`
	MageReach     int     `yaml:"mage_reach" json:"mage_reach"`
	FriendlyFire  bool    `yaml:"friendly_fire" json:"friendly_fire"`
	SpawnImmunity int     `yaml:"spawn_immunity" json:"spawn_immunity"`
	BaseDamage    float32 `yaml:"base_damage" json:"base_damage"`
	FreezeTicks   int     `yaml:"freeze_ticks" json:"freeze_ticks"`
}

type Resources struct {
	MaxHealth    float32 `yaml:"max_health" json:"max_health"`
	MaxFood      float32 `yaml:"max_food" json:"max_food"`
	MaxWater     float32 `yaml:"max_water" json:"max_water"`
	FoodDecay    float32 `yaml:"food_decay" json:"food_decay"`
	WaterDecay   float32 `yaml:"water_decay" json:"water_decay"`
	StarveDamage float32 `yaml:"starve_damage" json:"starve_damage"`
	Regen        float32 `yaml:"regen" json:"regen"`

	// Foraging a Foliage tile restores ForageFood and leaves Scrub behind;
	// each depleted tile regrows with RegrowChance per tick.
	ForageFood   float32 `yaml:"forage_food" json:"forage_food"`
	DrinkWater   float32 `yaml:"drink_water" json:"drink_water"`
	RegrowChance float64 `yaml:"regrow_chance" json:"regrow_chance"`
}

// NPC tunes the non-player population. Danger rises from 0 at the interior
// edge to 1 at the map center and picks both level and temperament.
type NPC struct {
	N              int     `yaml:"n" json:"n"`
	SpawnAttempts  int     `yaml:"spawn_attempts" json:"spawn_attempts"`
	LevelMin       int     `yaml:"level_min" json:"level_min"`
	LevelMax       int     `yaml:"level_max" json:"level_max"`
	NeutralDanger  float64 `yaml:"neutral_danger" json:"neutral_danger"`
	HostileDanger  float64 `yaml:"hostile_danger" json:"hostile_danger"`
	HealthPerLevel float32 `yaml:"health_per_level" json:"health_per_level"`
	Regen          float32 `yaml:"regen" json:"regen"`
}

func Defaults() Config {
	return Config{
		MapSize:           64,
		MapBorder:         8,
		VisionRadius:      7,
		PlayerN:           8,
		Populations:       4,
		StartingGold:      10,
		InitialTableRows:  100,
		PlayerNObs:        100,
		InventoryNObs:     12,
		MarketNObs:        256,
		InventoryCapacity: 12,
		PriceN:            100,
		Combat: Combat{
			MeleeReach:    3,
			RangeReach:    3,
			MageReach:     3,
			FriendlyFire:  true,
			SpawnImmunity: 20,
			BaseDamage:    5,
			FreezeTicks:   3,
		},
		Resources: Resources{
			MaxHealth:    100,
			MaxFood:      100,
			MaxWater:     100,
			FoodDecay:    5,
			WaterDecay:   5,
			StarveDamage: 10,
			Regen:        10,
			ForageFood:   50,
			DrinkWater:   50,
			RegrowChance: 0.025,
		},
		NPC: NPC{
			N:              8,
			SpawnAttempts:  4,
			LevelMin:       1,
			LevelMax:       8,
			NeutralDanger:  0.33,
			HostileDanger:  0.66,
			HealthPerLevel: 10,
			Regen:          1,
		},
		MaxLevel:        10,
		ListingDuration: 5,
		CombatEnabled:   true,
		ItemsEnabled:    true,
		ExchangeEnabled: true,
	}
}

// Load reads a yaml file over Defaults; keys absent from the file keep their defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "read tuning %s", path)
	}
	return Parse(raw)
}

func Parse(raw []byte) (Config, error) {
	c := Defaults()
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, eris.Wrap(err, "tuning.yaml")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch {
	case c.MapSize <= 2*c.MapBorder:
		return eris.Errorf("map_size %d must exceed twice map_border %d", c.MapSize, c.MapBorder)
	case c.VisionRadius < 1:
		return eris.Errorf("vision_radius must be positive, got %d", c.VisionRadius)
	case c.PlayerN < 1:
		return eris.Errorf("player_n must be positive, got %d", c.PlayerN)
	case c.Populations < 1:
		return eris.Errorf("populations must be positive, got %d", c.Populations)
	case c.StartingGold < 0:
		return eris.Errorf("starting_gold cannot be negative, got %d", c.StartingGold)
	case c.InitialTableRows < 2:
		return eris.Errorf("initial_table_rows must be at least 2, got %d", c.InitialTableRows)
	case c.MapNObs() < 1 || c.PlayerNObs < 1 || c.InventoryNObs < 1 || c.MarketNObs < 1:
		return eris.New("observation caps must be positive")
	case c.InventoryCapacity < 1:
		return eris.Errorf("inventory_capacity must be positive, got %d", c.InventoryCapacity)
	case c.InventoryNObs < c.InventoryCapacity:
		return eris.Errorf("inventory_n_obs %d cannot hold inventory_capacity %d", c.InventoryNObs, c.InventoryCapacity)
	case c.PriceN < 1:
		return eris.Errorf("price_n must be positive, got %d", c.PriceN)
	case c.MaxLevel < 1:
		return eris.Errorf("max_level must be positive, got %d", c.MaxLevel)
	case c.ListingDuration < 1:
		return eris.Errorf("listing_duration must be positive, got %d", c.ListingDuration)
	case c.Resources.ForageFood < 0 || c.Resources.DrinkWater < 0:
		return eris.New("forage_food and drink_water cannot be negative")
	case !(c.Resources.RegrowChance >= 0 && c.Resources.RegrowChance <= 1):
		return eris.Errorf("regrow_chance must lie in [0, 1], got %v", c.Resources.RegrowChance)
	}
	return c.NPC.validate(c.MaxLevel)
}

func (n NPC) validate(maxLevel int) error {
	switch {
	case n.N < 0:
		return eris.Errorf("npc.n cannot be negative, got %d", n.N)
	case n.N == 0:
		return nil
	case n.SpawnAttempts < 1:
		return eris.Errorf("npc.spawn_attempts must be positive, got %d", n.SpawnAttempts)
	case n.LevelMin < 1 || n.LevelMax < n.LevelMin || n.LevelMax > maxLevel:
		return eris.Errorf("npc levels [%d, %d] must lie within [1, max_level %d]", n.LevelMin, n.LevelMax, maxLevel)
	case !(n.NeutralDanger >= 0 && n.NeutralDanger <= n.HostileDanger && n.HostileDanger <= 1):
		return eris.Errorf("npc dangers need 0 <= neutral %v <= hostile %v <= 1", n.NeutralDanger, n.HostileDanger)
	case n.HealthPerLevel <= 0:
		return eris.Errorf("npc.health_per_level must be positive, got %v", n.HealthPerLevel)
	}
	return nil
}

func (c Config) MapNObs() int {
	if c.MapNObsOverride > 0 {
		return c.MapNObsOverride
	}
	side := 2*c.VisionRadius + 1
	return side * side
}

// AttackRange is the reach of a style: 0 melee, 1 range, 2 mage.
func (c Config) AttackRange(style int) int {
	switch style {
	case 0:
		return c.Combat.MeleeReach
	case 1:
		return c.Combat.RangeReach
	default:
		return c.Combat.MageReach
	}
}

// MaxAttackRange is the widest reach over all styles; the attack target mask
// uses it because style and target are chosen independently.
func (c Config) MaxAttackRange() int {
	r := c.Combat.MeleeReach
	if c.Combat.RangeReach > r {
		r = c.Combat.RangeReach
	}
	if c.Combat.MageReach > r {
		r = c.Combat.MageReach
	}
	return r
}
