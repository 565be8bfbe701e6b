package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridrealm.ai/internal/sim/tuning"
)

func TestEdgesFollowToggles(t *testing.T) {
	cfg := tuning.Defaults()
	assert.Equal(t, []Kind{Use, Buy, Give, GiveGold, Destroy, Attack, Move, Sell}, Edges(cfg))

	cfg.CombatEnabled = false
	cfg.ExchangeEnabled = false
	assert.Equal(t, []Kind{Use, Give, Destroy, Move}, Edges(cfg))
}

func TestNamesRoundTrip(t *testing.T) {
	for k := Move; k <= GiveGold; k++ {
		got, ok := ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	for a := Direction; a <= Price; a++ {
		got, ok := ParseArg(a.String())
		require.True(t, ok, a.String())
		assert.Equal(t, a, got)
	}
	_, ok := ParseKind("Dance")
	assert.False(t, ok)
}

func TestTextMarshaling(t *testing.T) {
	b, err := Sell.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Sell", string(b))

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("GiveGold")))
	assert.Equal(t, GiveGold, k)
	assert.Error(t, k.UnmarshalText([]byte("Dance")))

	var a Arg
	require.NoError(t, a.UnmarshalText([]byte("MarketItem")))
	assert.Equal(t, MarketItem, a)
	_, err = Arg(99).MarshalText()
	assert.Error(t, err)
}

func TestArgN(t *testing.T) {
	cfg := tuning.Defaults()
	assert.Equal(t, 4, ArgN(Direction, cfg))
	assert.Equal(t, 3, ArgN(Style, cfg))
	assert.Equal(t, cfg.PlayerNObs, ArgN(Target, cfg))
	assert.Equal(t, cfg.InventoryNObs, ArgN(InventoryItem, cfg))
	assert.Equal(t, cfg.MarketNObs, ArgN(MarketItem, cfg))
	assert.Equal(t, cfg.PriceN, ArgN(Price, cfg))
	assert.Equal(t, 1, PriceOf(0))
}
