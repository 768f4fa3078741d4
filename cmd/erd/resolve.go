package main

import (
	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/pkg/erdpad"
)

// findTable looks a table up by id, then by name.
func findTable(d *erdpad.Designer, ref string) (erdpad.Table, error) {
	if t, ok := d.Table(ref); ok {
		return t, nil
	}
	g := d.Graph()
	if t := g.TableByName(ref); t != nil {
		return *t, nil
	}
	err := alerr.New(alerr.ErrTableNotFound, "table not found").With("table", ref)
	if hint := alerr.DidYouMean(ref, g.TableNames()); hint != "" {
		err.WithHelp(hint)
	} else {
		err.WithHelp("run `erd table ls` to list tables")
	}
	return erdpad.Table{}, err
}

// findColumn looks a column of t up by id, then by name.
func findColumn(t erdpad.Table, ref string) (erdpad.Column, error) {
	if c := t.Column(ref); c != nil {
		return *c, nil
	}
	if c := t.ColumnByName(ref); c != nil {
		return *c, nil
	}
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	err := alerr.New(alerr.ErrColumnNotFound, "column not found").
		WithTable(t.Name).
		WithColumn(ref)
	if hint := alerr.DidYouMean(ref, names); hint != "" {
		err.WithHelp(hint)
	}
	return erdpad.Column{}, err
}
