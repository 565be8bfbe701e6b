package scripted

import (
	"math/rand/v2"

	"gridrealm.ai/internal/sim/action"
	"gridrealm.ai/internal/sim/mathx"
	"gridrealm.ai/internal/sim/observation"
	"gridrealm.ai/internal/sim/realm"
	"gridrealm.ai/internal/sim/state"
)

// NPCPolicy drives a realm's NPCs. Passive NPCs wander, neutral ones strike
// back at their last attacker when it is in reach, and hostile ones attack
// the nearest player in reach. Anything without a target wanders.
type NPCPolicy struct {
	// Wander is the chance an idle NPC takes a random legal step.
	Wander float64
	rng    *rand.Rand
}

func NewNPCPolicy(seed uint64, wander float64) *NPCPolicy {
	return &NPCPolicy{Wander: wander, rng: rand.New(rand.NewPCG(seed, seed^0x6e7063))}
}

func (p *NPCPolicy) Act(r *realm.Realm) realm.Actions {
	out := realm.Actions{}
	for _, id := range r.NPCs() {
		npc, _ := r.NPC(id)
		o, ok := r.Observe(id)
		if !ok {
			continue
		}
		masks, _ := r.Masks(id)
		if masks[action.Attack] != nil {
			if i, ok := p.target(r, npc, o, masks[action.Attack][action.Target]); ok {
				out[id] = map[action.Kind]map[action.Arg]int{
					action.Attack: {action.Style: int(npc.Style), action.Target: i},
				}
				continue
			}
		}
		if p.rng.Float64() >= p.Wander {
			continue
		}
		if dir, ok := p.step(masks[action.Move][action.Direction]); ok {
			out[id] = map[action.Kind]map[action.Arg]int{action.Move: {action.Direction: dir}}
		}
	}
	return out
}

// target picks the entity row to attack, if the NPC's temperament wants one.
func (p *NPCPolicy) target(r *realm.Realm, npc *realm.NPC, o *observation.Observation, legal []bool) (int, bool) {
	reach := r.Config().AttackRange(int(npc.Style))
	row, col := npc.Pos()
	inReach := func(i int) bool {
		if i >= len(legal) || !legal[i] {
			return false
		}
		e := o.Entities.Row(i)
		return mathx.Chebyshev(row, col, int(e[state.EntityRow]), int(e[state.EntityCol])) <= reach
	}

	switch npc.Kind {
	case realm.Neutral:
		attacker := npc.AttackerID.Int()
		if attacker == 0 {
			return 0, false
		}
		i, ok := o.Entities.Index(attacker)
		return i, ok && inReach(i)
	case realm.Hostile:
		best, bestDist := -1, 0
		for i, id := range o.Entities.IDs() {
			if id <= 0 || !inReach(i) {
				continue
			}
			e := o.Entities.Row(i)
			d := mathx.Chebyshev(row, col, int(e[state.EntityRow]), int(e[state.EntityCol]))
			if best < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}
		return best, best >= 0
	}
	return 0, false
}

func (p *NPCPolicy) step(legal []bool) (int, bool) {
	var dirs []int
	for i, ok := range legal {
		if ok {
			dirs = append(dirs, i)
		}
	}
	if len(dirs) == 0 {
		return 0, false
	}
	return dirs[p.rng.IntN(len(dirs))], true
}

// Merge folds b into a; b wins on agents present in both.
func Merge(a, b realm.Actions) realm.Actions {
	if a == nil {
		a = realm.Actions{}
	}
	for id, acts := range b {
		a[id] = acts
	}
	return a
}
