package datastore

// Rows is a dense row-major block of table rows. It is a copy: writes to the
// table after a query do not show through.
type Rows struct {
	Width int
	Data  []float32
}

func NewRows(width, n int) Rows {
	return Rows{Width: width, Data: make([]float32, width*n)}
}

func (r Rows) Len() int {
	if r.Width == 0 {
		return 0
	}
	return len(r.Data) / r.Width
}

func (r Rows) Row(i int) []float32 {
	return r.Data[i*r.Width : (i+1)*r.Width : (i+1)*r.Width]
}

func (r Rows) At(i, col int) float32 { return r.Data[i*r.Width+col] }

func (r Rows) Column(col int) []float32 {
	n := r.Len()
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = r.Data[i*r.Width+col]
	}
	return out
}

// Head keeps the first n rows (all of them when n exceeds Len).
func (r Rows) Head(n int) Rows {
	if n < 0 {
		n = 0
	}
	if n >= r.Len() {
		return r
	}
	return Rows{Width: r.Width, Data: r.Data[: n*r.Width : n*r.Width]}
}

// Padded returns exactly n rows: the first n rows of r followed by zero rows.
func (r Rows) Padded(n int) Rows {
	out := NewRows(r.Width, n)
	copy(out.Data, r.Head(n).Data)
	return out
}

// Slices exports the block as one slice per row.
func (r Rows) Slices() [][]float32 {
	n := r.Len()
	out := make([][]float32, n)
	for i := 0; i < n; i++ {
		row := make([]float32, r.Width)
		copy(row, r.Row(i))
		out[i] = row
	}
	return out
}

func (r *Rows) appendRow(row []float32) {
	r.Data = append(r.Data, row...)
}
