// Package scripted holds simple action sources for driving a realm without a
// learned policy.
package scripted

import (
	"math/rand/v2"

	"gridrealm.ai/internal/sim/action"
	"gridrealm.ai/internal/sim/realm"
)

// Monkey picks uniformly among legal arguments. Each enabled action is
// attempted with probability Rate. The same seed over the same realm
// history yields the same actions.
type Monkey struct {
	Rate float64
	rng  *rand.Rand
}

func NewMonkey(seed uint64, rate float64) *Monkey {
	return &Monkey{Rate: rate, rng: rand.New(rand.NewPCG(seed, seed^0x6d6f6e6b))}
}

func (m *Monkey) Act(r *realm.Realm) realm.Actions {
	out := realm.Actions{}
	for _, id := range r.Players() {
		masks, ok := r.Masks(id)
		if !ok {
			continue
		}
		for _, kind := range action.Edges(r.Config()) {
			if m.rng.Float64() >= m.Rate {
				continue
			}
			args, ok := m.pick(kind, masks[kind])
			if !ok {
				continue
			}
			if out[id] == nil {
				out[id] = map[action.Kind]map[action.Arg]int{}
			}
			out[id][kind] = args
		}
	}
	return out
}

func (m *Monkey) pick(kind action.Kind, masks map[action.Arg][]bool) (map[action.Arg]int, bool) {
	args := map[action.Arg]int{}
	for _, a := range kind.Args() {
		var legal []int
		for i, ok := range masks[a] {
			if ok {
				legal = append(legal, i)
			}
		}
		if len(legal) == 0 {
			return nil, false
		}
		args[a] = legal[m.rng.IntN(len(legal))]
	}
	return args, true
}
