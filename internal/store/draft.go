package store

import (
	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/idgen"
)

// Draft is an edit session on a private copy of a table. Nothing reaches the
// store until the caller commits Table() through Store.UpdateTable.
type Draft struct {
	table diagram.Table
	ids   idgen.Generator
}

func newDraft(t diagram.Table, ids idgen.Generator) *Draft {
	return &Draft{table: t.Clone(), ids: ids}
}

// Table returns a copy of the edited table.
func (d *Draft) Table() diagram.Table { return d.table.Clone() }

// ID returns the table id.
func (d *Draft) ID() string { return d.table.ID }

// SetName renames the table.
func (d *Draft) SetName(name string) { d.table.Name = name }

// AddColumn appends a varchar column with a fresh id and returns it.
func (d *Draft) AddColumn() diagram.Column {
	c := diagram.Column{
		ID:       d.ids.Next("col"),
		Name:     DefaultColumnName,
		DataType: diagram.TypeVarchar,
	}
	d.table.Columns = append(d.table.Columns, c)
	return c
}

// UpdateColumn applies fn to the column with the given id. fn must not
// change the column id.
func (d *Draft) UpdateColumn(id string, fn func(*diagram.Column)) error {
	c := d.table.Column(id)
	if c == nil {
		return alerr.New(alerr.ErrColumnNotFound, "column not found").
			WithTable(d.table.ID).
			WithColumn(id)
	}
	fn(c)
	c.ID = id
	return nil
}

// DeleteColumn removes a column. Removing the last column is refused
// silently: it reports false and the draft is unchanged.
func (d *Draft) DeleteColumn(id string) bool {
	if len(d.table.Columns) <= 1 {
		return false
	}
	i := d.table.ColumnIndex(id)
	if i < 0 {
		return false
	}
	d.table.Columns = append(d.table.Columns[:i], d.table.Columns[i+1:]...)
	return true
}
