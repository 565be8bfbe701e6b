package observation

import (
	"gridrealm.ai/internal/sim/datastore"
	"gridrealm.ai/internal/sim/state"
)

// Batch is one truncated row batch of an observation. Lookups are built on
// first use and live as long as the observation.
type Batch struct {
	values   datastore.Rows
	capacity int

	ids   []int
	index map[int]int
}

func newBatch(rows datastore.Rows, n int) *Batch {
	return &Batch{values: rows.Head(n), capacity: n}
}

func (b *Batch) Len() int               { return b.values.Len() }
func (b *Batch) Cap() int               { return b.capacity }
func (b *Batch) Values() datastore.Rows { return b.values }
func (b *Batch) Row(i int) []float32    { return b.values.Row(i) }

// Tensor is the batch zero-padded to its cap.
func (b *Batch) Tensor() datastore.Rows { return b.values.Padded(b.capacity) }

func (b *Batch) IDs() []int {
	if b.ids == nil {
		b.ids = make([]int, b.Len())
		for i := range b.ids {
			b.ids[i] = int(b.values.At(i, datastore.IDCol))
		}
	}
	return b.ids
}

// ID resolves a row index; indices past the live count are not objects.
func (b *Batch) ID(i int) (int, bool) {
	if i < 0 || i >= b.Len() {
		return 0, false
	}
	return b.IDs()[i], true
}

// Index resolves an id to its first row index.
func (b *Batch) Index(id int) (int, bool) {
	if b.index == nil {
		b.index = make(map[int]int, b.Len())
		for i, v := range b.IDs() {
			if _, dup := b.index[v]; !dup {
				b.index[v] = i
			}
		}
	}
	i, ok := b.index[id]
	return i, ok
}

// Stack finds the first unlisted item row with the given type and level that
// has room for qty more units, the row a received stack would merge into.
func (b *Batch) Stack(typ, level int, qty float32) (int, bool) {
	for i := 0; i < b.Len(); i++ {
		if b.values.At(i, state.ItemListedPrice) != 0 {
			continue
		}
		if b.values.At(i, state.ItemCapacity)-b.values.At(i, state.ItemQuantity) < qty {
			continue
		}
		if int(b.values.At(i, state.ItemType)) == typ && int(b.values.At(i, state.ItemLevel)) == level {
			return i, true
		}
	}
	return 0, false
}
