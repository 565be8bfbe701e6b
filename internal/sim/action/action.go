// Package action names the structured actions agents submit and the
// arguments each one takes.
package action

import (
	"sort"

	"github.com/rotisserie/eris"

	"gridrealm.ai/internal/sim/tuning"
)

type Kind int

const (
	Move Kind = iota + 1
	Attack
	Use
	Destroy
	Give
	Sell
	Buy
	GiveGold
)

var kindNames = map[Kind]string{
	Move:     "Move",
	Attack:   "Attack",
	Use:      "Use",
	Destroy:  "Destroy",
	Give:     "Give",
	Sell:     "Sell",
	Buy:      "Buy",
	GiveGold: "GiveGold",
}

// Priority orders execution within a tick: lower runs first.
var priority = map[Kind]int{
	Use:      10,
	Buy:      20,
	Give:     30,
	GiveGold: 30,
	Destroy:  40,
	Attack:   50,
	Move:     60,
	Sell:     70,
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

func (k Kind) Priority() int { return priority[k] }

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, eris.Errorf("unknown action kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, ok := ParseKind(string(b))
	if !ok {
		return eris.Errorf("unknown action kind %q", b)
	}
	*k = v
	return nil
}

func ParseKind(s string) (Kind, bool) {
	for k, n := range kindNames {
		if n == s {
			return k, true
		}
	}
	return 0, false
}

type Arg int

const (
	Direction Arg = iota + 1
	Style
	Target
	InventoryItem
	MarketItem
	Price
)

var argNames = map[Arg]string{
	Direction:     "Direction",
	Style:         "Style",
	Target:        "Target",
	InventoryItem: "InventoryItem",
	MarketItem:    "MarketItem",
	Price:         "Price",
}

func (a Arg) String() string {
	if n, ok := argNames[a]; ok {
		return n
	}
	return "Unknown"
}

func (a Arg) MarshalText() ([]byte, error) {
	if _, ok := argNames[a]; !ok {
		return nil, eris.Errorf("unknown action arg %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Arg) UnmarshalText(b []byte) error {
	v, ok := ParseArg(string(b))
	if !ok {
		return eris.Errorf("unknown action arg %q", b)
	}
	*a = v
	return nil
}

func ParseArg(s string) (Arg, bool) {
	for a, n := range argNames {
		if n == s {
			return a, true
		}
	}
	return 0, false
}

var args = map[Kind][]Arg{
	Move:     {Direction},
	Attack:   {Style, Target},
	Use:      {InventoryItem},
	Destroy:  {InventoryItem},
	Give:     {InventoryItem, Target},
	Sell:     {InventoryItem, Price},
	Buy:      {MarketItem},
	GiveGold: {Target, Price},
}

func (k Kind) Args() []Arg { return args[k] }

// Edges lists the actions enabled by cfg, in priority order.
func Edges(cfg tuning.Config) []Kind {
	out := []Kind{Move}
	if cfg.CombatEnabled {
		out = append(out, Attack)
	}
	if cfg.ItemsEnabled {
		out = append(out, Use, Destroy, Give)
	}
	if cfg.ExchangeEnabled {
		out = append(out, Sell, Buy, GiveGold)
	}
	SortByPriority(out)
	return out
}

// SortByPriority sorts kinds by priority, ties broken by kind.
func SortByPriority(kinds []Kind) {
	sort.Slice(kinds, func(i, j int) bool {
		pi, pj := kinds[i].Priority(), kinds[j].Priority()
		if pi != pj {
			return pi < pj
		}
		return kinds[i] < kinds[j]
	})
}

// ArgN is the number of values an argument can take.
func ArgN(a Arg, cfg tuning.Config) int {
	switch a {
	case Direction:
		return len(Directions)
	case Style:
		return len(Styles)
	case Target:
		return cfg.PlayerNObs
	case InventoryItem:
		return cfg.InventoryNObs
	case MarketItem:
		return cfg.MarketNObs
	case Price:
		return cfg.PriceN
	}
	return 0
}

type Dir struct {
	Name string
	DRow int
	DCol int
}

// Directions is indexed by the Direction argument value.
var Directions = [...]Dir{
	{Name: "North", DRow: -1, DCol: 0},
	{Name: "South", DRow: 1, DCol: 0},
	{Name: "East", DRow: 0, DCol: 1},
	{Name: "West", DRow: 0, DCol: -1},
}

// Styles is indexed by the Style argument value and matches catalogs.Melee..Mage.
var Styles = [...]string{"Melee", "Range", "Mage"}

// PriceOf maps a Price argument index to a gold amount; prices start at 1.
func PriceOf(index int) int { return index + 1 }
