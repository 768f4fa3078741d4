// Package registry resolves foreign-key references to the tables and columns
// they point at. Resolution sits behind the Resolver interface so the
// name-based lookup can be swapped for an id-based one without touching
// inference.
package registry

import (
	"strings"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/diagram"
)

// Reference Resolution Rules (NameResolver):
//
// | Reference            | Table segment | Column segment | Resolves                |
// |----------------------|---------------|----------------|-------------------------|
// | Customers.Id         | Customers     | Id             | yes, if both names exist |
// | Customers.Id.Extra   | Customers     | Id             | trailing segments ignored |
// | Customers            | Customers     | (none)         | never                   |
// | .Id                  | (empty)       | Id             | only a table named ""   |
//
// Names are compared exactly. The first table in stored order wins, then the
// first column in that table.

// Target is a resolved reference.
type Target struct {
	Table  *diagram.Table
	Column *diagram.Column
}

// Resolver maps a foreign-key reference onto the graph.
// ok is false when the reference does not resolve; that is not an error.
type Resolver interface {
	Resolve(ref string, tables []diagram.Table) (Target, bool)
}

// ParseReference splits "Table.Column" into its first two segments.
// hasColumn is false when there is no '.' at all.
//
// Examples:
//   - "Customers.Id"   -> ("Customers", "Id", true)
//   - "a.b.c"          -> ("a", "b", true)
//   - "Customers"      -> ("Customers", "", false)
func ParseReference(ref string) (table, column string, hasColumn bool) {
	parts := strings.Split(ref, ".")
	if len(parts) < 2 {
		return parts[0], "", false
	}
	return parts[0], parts[1], true
}

// FormatReference builds a "Table.Column" reference.
func FormatReference(table, column string) string {
	return table + "." + column
}

// ValidateReference checks that ref has the "Table.Column" shape with both
// segments present. Inference does not require this; editors use it for hints.
func ValidateReference(ref string) error {
	table, column, ok := ParseReference(ref)
	if !ok || table == "" || column == "" {
		return alerr.New(alerr.ErrInvalidReference, "foreign key reference must look like Table.Column").
			With("ref", ref)
	}
	return nil
}

// NameResolver resolves references by table and column name.
type NameResolver struct{}

// Resolve implements Resolver.
func (NameResolver) Resolve(ref string, tables []diagram.Table) (Target, bool) {
	tableName, columnName, ok := ParseReference(ref)
	if !ok {
		return Target{}, false
	}
	for i := range tables {
		if tables[i].Name != tableName {
			continue
		}
		col := tables[i].ColumnByName(columnName)
		if col == nil {
			return Target{}, false
		}
		return Target{Table: &tables[i], Column: col}, true
	}
	return Target{}, false
}

// IDResolver resolves "<tableId>.<columnId>" references, which survive renames.
type IDResolver struct{}

// Resolve implements Resolver.
func (IDResolver) Resolve(ref string, tables []diagram.Table) (Target, bool) {
	tableID, columnID, ok := ParseReference(ref)
	if !ok {
		return Target{}, false
	}
	for i := range tables {
		if tables[i].ID != tableID {
			continue
		}
		col := tables[i].Column(columnID)
		if col == nil {
			return Target{}, false
		}
		return Target{Table: &tables[i], Column: col}, true
	}
	return Target{}, false
}

// Explain describes why ref does not resolve under NameResolver, with a
// "did you mean" hint when a near name exists. It returns nil when ref resolves.
func Explain(ref string, tables []diagram.Table) *alerr.Error {
	if err := ValidateReference(ref); err != nil {
		return err.(*alerr.Error)
	}
	if _, ok := (NameResolver{}).Resolve(ref, tables); ok {
		return nil
	}

	tableName, columnName, _ := ParseReference(ref)
	names := make([]string, len(tables))
	var target *diagram.Table
	for i := range tables {
		names[i] = tables[i].Name
		if target == nil && tables[i].Name == tableName {
			target = &tables[i]
		}
	}

	if target == nil {
		err := alerr.New(alerr.ErrTableNotFound, "referenced table not found").
			With("ref", ref)
		if hint := alerr.DidYouMean(tableName, names); hint != "" {
			err.WithHelp(hint)
		}
		return err
	}

	cols := make([]string, len(target.Columns))
	for i, c := range target.Columns {
		cols[i] = c.Name
	}
	err := alerr.New(alerr.ErrColumnNotFound, "referenced column not found").
		With("ref", ref).
		WithTable(target.ID)
	if hint := alerr.DidYouMean(columnName, cols); hint != "" {
		err.WithHelp(hint)
	}
	return err
}
