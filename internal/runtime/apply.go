package runtime

import (
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/store"
)

// Target is what a script result is committed into. *store.Store satisfies it.
type Target interface {
	CreateTable() *store.Draft
	UpdateTable(t diagram.Table)
}

// Apply commits the declared tables through drafts, in declaration order,
// and returns the new table ids. Tables holding foreign keys are committed
// a second time so references to tables declared after them resolve.
func Apply(target Target, specs []TableSpec) []string {
	ids := make([]string, 0, len(specs))
	committed := make([]diagram.Table, 0, len(specs))

	for _, spec := range specs {
		t := draftTable(target.CreateTable(), spec)
		target.UpdateTable(t)
		ids = append(ids, t.ID)
		committed = append(committed, t)
	}

	for _, t := range committed {
		if len(t.ForeignKeys()) > 0 {
			target.UpdateTable(t)
		}
	}

	return ids
}

// draftTable fills a fresh draft from spec. The seeded key column is dropped
// once the script declares columns of its own.
func draftTable(d *store.Draft, spec TableSpec) diagram.Table {
	d.SetName(spec.Name)

	seed := d.Table().Columns[0].ID
	for _, cs := range spec.Columns {
		c := d.AddColumn()
		_ = d.UpdateColumn(c.ID, func(col *diagram.Column) {
			col.Name = cs.Name
			col.DataType = cs.Type
			col.IsPrimaryKey = cs.PrimaryKey
			col.IsForeignKey = cs.Reference != ""
			col.ForeignKeyReference = cs.Reference
			col.IsAutoIncrement = cs.AutoIncrement
			col.IsGuidGenerated = cs.GUID
		})
	}
	if len(spec.Columns) > 0 {
		d.DeleteColumn(seed)
	}

	t := d.Table()
	if spec.HasPosition {
		t.Position = spec.Position
	}
	return t
}
