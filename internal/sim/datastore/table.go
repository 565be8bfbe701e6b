package datastore

import (
	"fmt"
	"math"
)

// IDCol is the column every table reserves for the row's id. A row whose id
// column is 0 is unallocated and never returned by a scan.
const IDCol = 0

// Table is a dense maxRows x numCols float32 array indexed by row id.
type Table struct {
	numCols int
	maxRows int
	data    []float32
	ids     *IDAllocator
}

func NewTable(numCols, initialRows int) *Table {
	if numCols <= 0 {
		panic("datastore: table needs at least the id column")
	}
	if initialRows < 2 {
		initialRows = 2
	}
	t := &Table{numCols: numCols, ids: NewIDAllocator(1)}
	t.expand(initialRows)
	return t
}

func (t *Table) Width() int    { return t.numCols }
func (t *Table) Capacity() int { return t.maxRows }

// Len is the number of live rows.
func (t *Table) Len() int { return t.maxRows - 1 - t.ids.Available() }

func (t *Table) Live(id int) bool { return t.ids.InUse(id) }

// AddRow returns a fresh id, doubling capacity first when the pool is empty.
// The new row's id column is set to the id.
func (t *Table) AddRow() int {
	if t.ids.Full() {
		t.expand(t.maxRows * 2)
	}
	id := t.ids.Allocate()
	t.data[id*t.numCols+IDCol] = float32(id)
	return id
}

func (t *Table) RemoveRow(id int) {
	if !t.ids.InUse(id) {
		panic(fmt.Sprintf("datastore: remove of unallocated row %d", id))
	}
	clear(t.row(id))
	t.ids.Free(id)
}

func (t *Table) Update(id, col int, v float32) {
	if !t.ids.InUse(id) {
		panic(fmt.Sprintf("datastore: update of unallocated row %d", id))
	}
	if col < 0 || col >= t.numCols {
		panic(fmt.Sprintf("datastore: column %d out of range [0,%d)", col, t.numCols))
	}
	t.data[id*t.numCols+col] = v
}

func (t *Table) Value(id, col int) float32 {
	if id <= 0 || id >= t.maxRows {
		return 0
	}
	return t.data[id*t.numCols+col]
}

// Get gathers rows in the order given. Ids out of range or not allocated
// gather as zero rows so callers see "gone" rather than an error.
func (t *Table) Get(ids []int) Rows {
	out := NewRows(t.numCols, len(ids))
	for i, id := range ids {
		if id <= 0 || id >= t.maxRows {
			continue
		}
		copy(out.Row(i), t.row(id))
	}
	return out
}

func (t *Table) WhereEq(col int, v float32) Rows {
	return t.scan(func(row []float32) bool { return row[col] == v })
}

func (t *Table) WhereNeq(col int, v float32) Rows {
	return t.scan(func(row []float32) bool { return row[col] != v })
}

func (t *Table) WhereIn(col int, vs []float32) Rows {
	set := make(map[float32]struct{}, len(vs))
	for _, v := range vs {
		set[v] = struct{}{}
	}
	return t.scan(func(row []float32) bool {
		_, ok := set[row[col]]
		return ok
	})
}

// Window returns live rows whose (rowCol, colCol) lie within Chebyshev
// distance radius of (r, c).
func (t *Table) Window(rowCol, colCol, r, c, radius int) Rows {
	fr, fc, fradius := float64(r), float64(c), float64(radius)
	return t.scan(func(row []float32) bool {
		return math.Abs(float64(row[rowCol])-fr) <= fradius &&
			math.Abs(float64(row[colCol])-fc) <= fradius
	})
}

// Rows copies every live row in id order.
func (t *Table) Rows() Rows {
	return t.scan(func([]float32) bool { return true })
}

func (t *Table) scan(keep func(row []float32) bool) Rows {
	out := Rows{Width: t.numCols}
	for id := 1; id < t.maxRows; id++ {
		row := t.row(id)
		if row[IDCol] == 0 || !keep(row) {
			continue
		}
		out.appendRow(row)
	}
	return out
}

func (t *Table) row(id int) []float32 {
	return t.data[id*t.numCols : (id+1)*t.numCols : (id+1)*t.numCols]
}

func (t *Table) expand(maxRows int) {
	if maxRows <= t.maxRows {
		panic(fmt.Sprintf("datastore: table cannot shrink from %d to %d rows", t.maxRows, maxRows))
	}
	data := make([]float32, maxRows*t.numCols)
	copy(data, t.data)
	t.data = data
	t.maxRows = maxRows
	t.ids.Expand(maxRows)
}
