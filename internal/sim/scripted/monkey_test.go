package scripted

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridrealm.ai/internal/sim/realm"
	"gridrealm.ai/internal/sim/tuning"
)

func testConfig() tuning.Config {
	cfg := tuning.Defaults()
	cfg.MapSize = 24
	cfg.MapBorder = 3
	cfg.PlayerN = 6
	return cfg
}

func TestMonkeyOnlyPicksLegalArgs(t *testing.T) {
	r := realm.New(testConfig(), 11)
	acts := NewMonkey(5, 1).Act(r)
	require.NotEmpty(t, acts)
	for id, kinds := range acts {
		masks, ok := r.Masks(id)
		require.True(t, ok)
		for kind, args := range kinds {
			assert.Len(t, args, len(kind.Args()))
			for a, v := range args {
				assert.True(t, masks[kind][a][v], "%d %s/%s=%d", id, kind, a, v)
			}
		}
	}
}

func TestMonkeyRateZeroIsIdle(t *testing.T) {
	r := realm.New(testConfig(), 11)
	assert.Empty(t, NewMonkey(5, 0).Act(r))
}

// Two realms with the same seed fed the same action stream must produce the
// same observations and digests every tick.
func TestDeterministicRuns(t *testing.T) {
	cfg := testConfig()
	a, b := realm.New(cfg, 99), realm.New(cfg, 99)
	monkey := NewMonkey(3, 0.5)

	for tick := 0; tick < 60; tick++ {
		acts := monkey.Act(a)
		ea, eb := a.Step(acts), b.Step(acts)
		require.Equal(t, ea.Digest, eb.Digest, "tick %d", tick)
		require.Equal(t, ea.Actions, eb.Actions, "tick %d", tick)

		require.Equal(t, a.Players(), b.Players(), "tick %d", tick)
		for _, id := range a.Players() {
			oa, _ := a.Observe(id)
			ob, _ := b.Observe(id)
			require.Equal(t, oa.Tensors(), ob.Tensors(), "tick %d agent %d", tick, id)
			ma, _ := a.Masks(id)
			mb, _ := b.Masks(id)
			require.Equal(t, ma, mb, "tick %d agent %d", tick, id)
		}
	}
	for _, kind := range a.Datastore().Kinds() {
		assert.Equal(t, a.Datastore().Table(kind).Rows(), b.Datastore().Table(kind).Rows(), kind)
	}
}
