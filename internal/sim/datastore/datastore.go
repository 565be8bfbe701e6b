package datastore

import (
	"fmt"
	"sort"
)

// Datastore owns one Table per record kind. It is not safe for concurrent use;
// the tick loop is the only caller.
type Datastore struct {
	tables map[string]*Table
}

func New() *Datastore {
	return &Datastore{tables: map[string]*Table{}}
}

func (d *Datastore) RegisterTable(kind string, numCols, initialRows int) *Table {
	if _, ok := d.tables[kind]; ok {
		panic(fmt.Sprintf("datastore: table %q already registered", kind))
	}
	t := NewTable(numCols, initialRows)
	d.tables[kind] = t
	return t
}

func (d *Datastore) Table(kind string) *Table {
	t, ok := d.tables[kind]
	if !ok {
		panic(fmt.Sprintf("datastore: unknown table %q", kind))
	}
	return t
}

func (d *Datastore) Kinds() []string {
	out := make([]string, 0, len(d.tables))
	for k := range d.tables {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (d *Datastore) CreateRecord(kind string) *Record {
	t := d.Table(kind)
	return &Record{table: t, id: t.AddRow()}
}

// Record is a non-owning handle on one table row.
type Record struct {
	table   *Table
	id      int
	deleted bool
}

func (r *Record) ID() int { return r.id }

func (r *Record) Alive() bool { return !r.deleted }

func (r *Record) Update(col int, v float32) {
	if r.deleted {
		panic(fmt.Sprintf("datastore: write to deleted record %d", r.id))
	}
	r.table.Update(r.id, col, v)
}

func (r *Record) Value(col int) float32 {
	if r.deleted {
		return 0
	}
	return r.table.Value(r.id, col)
}

func (r *Record) Delete() {
	if r.deleted {
		panic(fmt.Sprintf("datastore: record %d deleted twice", r.id))
	}
	r.table.RemoveRow(r.id)
	r.deleted = true
}
