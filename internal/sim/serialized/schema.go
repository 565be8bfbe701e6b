// Package serialized maps record kinds onto fixed-width table rows.
//
// A Schema is declared once per kind at init time and is the column layout
// every other subsystem reads; it must not change during a run.
package serialized

import (
	"fmt"

	"gridrealm.ai/internal/sim/datastore"
)

type Schema struct {
	kind  string
	cols  []string
	index map[string]int
}

// NewSchema panics on an invalid declaration: the first column must be the id
// column and names must be unique.
func NewSchema(kind string, cols ...string) *Schema {
	if len(cols) == 0 || cols[datastore.IDCol] != "id" {
		panic(fmt.Sprintf("serialized: schema %q must start with the id column", kind))
	}
	s := &Schema{kind: kind, cols: cols, index: make(map[string]int, len(cols))}
	for i, name := range cols {
		if name == "" {
			panic(fmt.Sprintf("serialized: schema %q has an empty column name at %d", kind, i))
		}
		if _, dup := s.index[name]; dup {
			panic(fmt.Sprintf("serialized: schema %q declares %q twice", kind, name))
		}
		s.index[name] = i
	}
	return s
}

func (s *Schema) Kind() string { return s.kind }
func (s *Schema) Width() int   { return len(s.cols) }

func (s *Schema) Names() []string {
	out := make([]string, len(s.cols))
	copy(out, s.cols)
	return out
}

func (s *Schema) Name(col int) string { return s.cols[col] }

func (s *Schema) Col(name string) int {
	col, ok := s.index[name]
	if !ok {
		panic(fmt.Sprintf("serialized: schema %q has no column %q", s.kind, name))
	}
	return col
}

func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Parse names the values of one row.
func (s *Schema) Parse(row []float32) map[string]float32 {
	if len(row) != len(s.cols) {
		panic(fmt.Sprintf("serialized: %s row has %d values, want %d", s.kind, len(row), len(s.cols)))
	}
	out := make(map[string]float32, len(row))
	for i, name := range s.cols {
		out[name] = row[i]
	}
	return out
}

// Register creates the backing table for this kind.
func (s *Schema) Register(ds *datastore.Datastore, initialRows int) *datastore.Table {
	return ds.RegisterTable(s.kind, s.Width(), initialRows)
}
