package serialized

import (
	"math"

	"gridrealm.ai/internal/sim/datastore"
)

type Bounds struct {
	Min float32
	Max float32
}

var Unbounded = Bounds{Min: -math.MaxFloat32, Max: math.MaxFloat32}

// Clamp maps v into [Min, Max]. NaN maps to Min.
func (b Bounds) Clamp(v float32) float32 {
	if math.IsNaN(float64(v)) || v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

type Limits map[string]Bounds

// Attribute is one bounded column of a record. Reads hit the cached value;
// writes clamp and go through to the row.
type Attribute struct {
	name   string
	rec    *datastore.Record
	col    int
	bounds Bounds
	val    float32
}

func (a *Attribute) Name() string { return a.name }
func (a *Attribute) Col() int     { return a.col }
func (a *Attribute) Val() float32 { return a.val }
func (a *Attribute) Int() int     { return int(a.val) }
func (a *Attribute) Min() float32 { return a.bounds.Min }
func (a *Attribute) Max() float32 { return a.bounds.Max }

func (a *Attribute) Update(v float32) {
	v = a.bounds.Clamp(v)
	a.rec.Update(a.col, v)
	a.val = v
}

// Increment adds d, optionally capped by maxV before the declared bounds apply.
func (a *Attribute) Increment(d float32, maxV ...float32) *Attribute {
	v := a.val + d
	if len(maxV) > 0 && v > maxV[0] {
		v = maxV[0]
	}
	a.Update(v)
	return a
}

// Decrement subtracts d, optionally floored by minV before the declared bounds apply.
func (a *Attribute) Decrement(d float32, minV ...float32) *Attribute {
	v := a.val - d
	if len(minV) > 0 && v < minV[0] {
		v = minV[0]
	}
	a.Update(v)
	return a
}

func (a *Attribute) Empty() bool { return a.val == 0 }

func (a *Attribute) Eq(v float32) bool { return a.val == v }
func (a *Attribute) Ne(v float32) bool { return a.val != v }
func (a *Attribute) Lt(v float32) bool { return a.val < v }
func (a *Attribute) Le(v float32) bool { return a.val <= v }
func (a *Attribute) Gt(v float32) bool { return a.val > v }
func (a *Attribute) Ge(v float32) bool { return a.val >= v }

// Bind builds one attribute per schema column on rec. The id column is seeded
// from the row's current value so the cache matches the row from the start.
func Bind(rec *datastore.Record, s *Schema, limits Limits) []*Attribute {
	out := make([]*Attribute, s.Width())
	for col, name := range s.cols {
		b, ok := limits[name]
		if !ok {
			b = Unbounded
		}
		out[col] = &Attribute{
			name:   name,
			rec:    rec,
			col:    col,
			bounds: b,
			val:    rec.Value(col),
		}
	}
	return out
}
