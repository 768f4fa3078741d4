// Package codec converts diagrams to and from the JSON document format.
//
// Two decoding paths exist. Deserialize is lenient and never fails: hosts use
// it to hydrate, and anything unreadable becomes an empty diagram. Import is
// strict and all-or-nothing: it backs explicit "load diagram" actions and
// reports what is wrong.
package codec

import (
	"github.com/hlop3z/erdpad/internal/diagram"
)

// Document is the serialized form of a diagram.
type Document struct {
	Tables        []TableDoc        `json:"tables" yaml:"tables"`
	Relationships []RelationshipDoc `json:"relationships" yaml:"relationships"`
}

// TableDoc is a serialized table. Position is flattened into x and y.
type TableDoc struct {
	ID      string      `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	X       float64     `json:"x" yaml:"x"`
	Y       float64     `json:"y" yaml:"y"`
	Columns []ColumnDoc `json:"columns" yaml:"columns"`
}

// ColumnDoc is a serialized column.
type ColumnDoc struct {
	ID                  string `json:"id" yaml:"id"`
	Name                string `json:"name" yaml:"name"`
	Type                string `json:"type" yaml:"type"`
	IsPrimaryKey        bool   `json:"isPrimaryKey" yaml:"isPrimaryKey"`
	IsForeignKey        bool   `json:"isForeignKey" yaml:"isForeignKey"`
	ForeignKeyReference string `json:"foreignKeyReference,omitempty" yaml:"foreignKeyReference,omitempty"`
	IsAutoIncrement     bool   `json:"isAutoIncrement,omitempty" yaml:"isAutoIncrement,omitempty"`
	IsGuid              bool   `json:"isGuid,omitempty" yaml:"isGuid,omitempty"`
}

// RelationshipDoc is a serialized relationship. Documents written before
// annotations existed omit relationshipType and direction.
type RelationshipDoc struct {
	ID               string `json:"id" yaml:"id"`
	FromTableID      string `json:"fromTableId" yaml:"fromTableId"`
	FromColumnID     string `json:"fromColumnId" yaml:"fromColumnId"`
	ToTableID        string `json:"toTableId" yaml:"toTableId"`
	ToColumnID       string `json:"toColumnId" yaml:"toColumnId"`
	RelationshipType string `json:"relationshipType" yaml:"relationshipType"`
	Direction        string `json:"direction" yaml:"direction"`
}

// FromGraph converts g to its document form. Collections are never nil, so
// empty ones encode as [].
func FromGraph(g diagram.Graph) Document {
	doc := Document{
		Tables:        make([]TableDoc, len(g.Tables)),
		Relationships: make([]RelationshipDoc, len(g.Relationships)),
	}
	for i, t := range g.Tables {
		td := TableDoc{
			ID:      t.ID,
			Name:    t.Name,
			X:       t.Position.X,
			Y:       t.Position.Y,
			Columns: make([]ColumnDoc, len(t.Columns)),
		}
		for j, c := range t.Columns {
			td.Columns[j] = ColumnDoc{
				ID:                  c.ID,
				Name:                c.Name,
				Type:                string(c.DataType),
				IsPrimaryKey:        c.IsPrimaryKey,
				IsForeignKey:        c.IsForeignKey,
				ForeignKeyReference: c.ForeignKeyReference,
				IsAutoIncrement:     c.IsAutoIncrement,
				IsGuid:              c.IsGuidGenerated,
			}
		}
		doc.Tables[i] = td
	}
	for i, r := range g.Relationships {
		doc.Relationships[i] = RelationshipDoc{
			ID:               r.ID,
			FromTableID:      r.FromTableID,
			FromColumnID:     r.FromColumnID,
			ToTableID:        r.ToTableID,
			ToColumnID:       r.ToColumnID,
			RelationshipType: string(r.Cardinality),
			Direction:        string(r.Direction),
		}
	}
	return doc
}

// Graph converts the document to a diagram. Missing annotations default to
// many-to-one and unidirectional. Values are not validated.
func (d Document) Graph() diagram.Graph {
	g := diagram.Graph{
		Tables:        make([]diagram.Table, len(d.Tables)),
		Relationships: make([]diagram.Relationship, len(d.Relationships)),
	}
	for i, td := range d.Tables {
		t := diagram.Table{
			ID:       td.ID,
			Name:     td.Name,
			Position: diagram.Point{X: td.X, Y: td.Y},
			Columns:  make([]diagram.Column, len(td.Columns)),
		}
		for j, cd := range td.Columns {
			t.Columns[j] = diagram.Column{
				ID:                  cd.ID,
				Name:                cd.Name,
				DataType:            diagram.DataType(cd.Type),
				IsPrimaryKey:        cd.IsPrimaryKey,
				IsForeignKey:        cd.IsForeignKey,
				ForeignKeyReference: cd.ForeignKeyReference,
				IsAutoIncrement:     cd.IsAutoIncrement,
				IsGuidGenerated:     cd.IsGuid,
			}
		}
		g.Tables[i] = t
	}
	for i, rd := range d.Relationships {
		card := diagram.Cardinality(rd.RelationshipType)
		if card == "" {
			card = diagram.ManyToOne
		}
		dir := diagram.Direction(rd.Direction)
		if dir == "" {
			dir = diagram.Unidirectional
		}
		g.Relationships[i] = diagram.Relationship{
			ID:           rd.ID,
			FromTableID:  rd.FromTableID,
			FromColumnID: rd.FromColumnID,
			ToTableID:    rd.ToTableID,
			ToColumnID:   rd.ToColumnID,
			Cardinality:  card,
			Direction:    dir,
		}
	}
	return g
}
