// Package diagram defines the entity-relationship graph: tables with ordered
// columns, canvas positions, and relationships derived from foreign keys.
//
// Values in this package are plain data. Tables and relationships refer to each
// other by id, so a Graph can hold dangling references; readers must tolerate
// them rather than fail.
package diagram

import "strings"

// Column is a named, typed field within a table.
type Column struct {
	ID           string
	Name         string
	DataType     DataType
	IsPrimaryKey bool
	IsForeignKey bool
	// ForeignKeyReference names the target as "TableName.ColumnName".
	// It is matched by name, not id, on every inference pass.
	ForeignKeyReference string
	IsAutoIncrement     bool
	IsGuidGenerated     bool
}

// Table is a named entity with an ordered list of columns and a canvas position.
type Table struct {
	ID       string
	Name     string
	Position Point
	Columns  []Column
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	t.Columns = append([]Column(nil), t.Columns...)
	return t
}

// ColumnIndex returns the position of the column with the given id, or -1.
func (t *Table) ColumnIndex(id string) int {
	for i := range t.Columns {
		if t.Columns[i].ID == id {
			return i
		}
	}
	return -1
}

// Column returns the column with the given id, or nil if not found.
func (t *Table) Column(id string) *Column {
	if i := t.ColumnIndex(id); i >= 0 {
		return &t.Columns[i]
	}
	return nil
}

// ColumnByName returns the first column with the given name, or nil.
func (t *Table) ColumnByName(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// PrimaryKey returns the first primary-key column, or nil if none.
func (t *Table) PrimaryKey() *Column {
	for i := range t.Columns {
		if t.Columns[i].IsPrimaryKey {
			return &t.Columns[i]
		}
	}
	return nil
}

// ForeignKeys returns the columns that declare a non-empty foreign-key reference.
func (t *Table) ForeignKeys() []Column {
	var fks []Column
	for _, c := range t.Columns {
		if c.IsForeignKey && c.ForeignKeyReference != "" {
			fks = append(fks, c)
		}
	}
	return fks
}

// Relationship is a derived, directed link from a foreign-key column to the
// column it references.
type Relationship struct {
	ID           string
	FromTableID  string
	FromColumnID string
	ToTableID    string
	ToColumnID   string
	Cardinality  Cardinality
	Direction    Direction
}

// Touches reports whether either endpoint of r is the given table.
func (r Relationship) Touches(tableID string) bool {
	return r.FromTableID == tableID || r.ToTableID == tableID
}

// Graph is the full diagram: tables and relationships in stored order.
type Graph struct {
	Tables        []Table
	Relationships []Relationship
}

// Empty returns a graph with non-nil, empty collections.
func Empty() Graph {
	return Graph{Tables: []Table{}, Relationships: []Relationship{}}
}

// Clone returns a deep copy of g. Collections in the copy are never nil.
func (g Graph) Clone() Graph {
	out := Graph{
		Tables:        make([]Table, len(g.Tables)),
		Relationships: make([]Relationship, len(g.Relationships)),
	}
	for i, t := range g.Tables {
		out.Tables[i] = t.Clone()
	}
	copy(out.Relationships, g.Relationships)
	return out
}

// TableIndex returns the position of the table with the given id, or -1.
func (g *Graph) TableIndex(id string) int {
	for i := range g.Tables {
		if g.Tables[i].ID == id {
			return i
		}
	}
	return -1
}

// Table returns the table with the given id, or nil if not found.
func (g *Graph) Table(id string) *Table {
	if i := g.TableIndex(id); i >= 0 {
		return &g.Tables[i]
	}
	return nil
}

// TableByName returns the first table in stored order with the given name, or nil.
func (g *Graph) TableByName(name string) *Table {
	for i := range g.Tables {
		if g.Tables[i].Name == name {
			return &g.Tables[i]
		}
	}
	return nil
}

// Relationship returns the relationship with the given id, or nil.
func (g *Graph) Relationship(id string) *Relationship {
	for i := range g.Relationships {
		if g.Relationships[i].ID == id {
			return &g.Relationships[i]
		}
	}
	return nil
}

// Endpoints resolves both ends of r. ok is false when any of the four ids dangles.
func (g *Graph) Endpoints(r Relationship) (from, to *Table, fromCol, toCol int, ok bool) {
	from, to = g.Table(r.FromTableID), g.Table(r.ToTableID)
	if from == nil || to == nil {
		return nil, nil, -1, -1, false
	}
	fromCol, toCol = from.ColumnIndex(r.FromColumnID), to.ColumnIndex(r.ToColumnID)
	if fromCol < 0 || toCol < 0 {
		return nil, nil, -1, -1, false
	}
	return from, to, fromCol, toCol, true
}

// TableNames returns table names in stored order.
func (g *Graph) TableNames() []string {
	names := make([]string, len(g.Tables))
	for i, t := range g.Tables {
		names[i] = t.Name
	}
	return names
}

// Describe renders a relationship as "Orders.CustomerId -> Customers.Id",
// falling back to ids for dangling ends.
func (g *Graph) Describe(r Relationship) string {
	end := func(tableID, colID string) string {
		t := g.Table(tableID)
		if t == nil {
			return tableID + "." + colID
		}
		if c := t.Column(colID); c != nil {
			return t.Name + "." + c.Name
		}
		return t.Name + "." + colID
	}
	var b strings.Builder
	b.WriteString(end(r.FromTableID, r.FromColumnID))
	if r.Direction == Bidirectional {
		b.WriteString(" <-> ")
	} else {
		b.WriteString(" -> ")
	}
	b.WriteString(end(r.ToTableID, r.ToColumnID))
	return b.String()
}
