package realm

import (
	"gridrealm.ai/internal/sim/catalogs"
	"gridrealm.ai/internal/sim/tuning"
)

// Combatant is the attacker or defender view a Combat sees.
type Combatant struct {
	Levels  [catalogs.NumSkills]float32
	Attack  [3]float32
	Defense [3]float32
}

// Combat computes the damage of one attack. style indexes Melee, Range, Mage.
type Combat interface {
	Damage(cfg tuning.Config, attacker, target Combatant, style int) float32
}

// FlatCombat: base damage plus the style's skill level and equipment attack,
// less the target's equipment defense for that style.
type FlatCombat struct{}

func (FlatCombat) Damage(cfg tuning.Config, attacker, target Combatant, style int) float32 {
	dmg := cfg.Combat.BaseDamage + attacker.Levels[style] + attacker.Attack[style] - target.Defense[style]
	if dmg < 0 {
		return 0
	}
	return dmg
}
