// Package cache provides a local autosave of diagrams.
// The cache is stored in .erd/cache.db (SQLite) and is gitignored.
// It is optional: the diagram file on disk is always the source of truth.
package cache

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/diagram"
)

// payloadVersion is bumped whenever the mirror structs change shape.
const payloadVersion = 1

// -----------------------------------------------------------------------------
// msgpack-serializable diagram structures
// These mirror the diagram types so that renaming a Go field never silently
// breaks stored payloads.
// -----------------------------------------------------------------------------

type graphPack struct {
	Version       int            `msgpack:"v"`
	Tables        []tablePack    `msgpack:"tables"`
	Relationships []relationPack `msgpack:"rels"`
}

type tablePack struct {
	ID      string       `msgpack:"id"`
	Name    string       `msgpack:"name"`
	X       float64      `msgpack:"x"`
	Y       float64      `msgpack:"y"`
	Columns []columnPack `msgpack:"cols"`
}

type columnPack struct {
	ID        string `msgpack:"id"`
	Name      string `msgpack:"name"`
	Type      string `msgpack:"type"`
	PK        bool   `msgpack:"pk,omitempty"`
	FK        bool   `msgpack:"fk,omitempty"`
	Reference string `msgpack:"ref,omitempty"`
	AutoInc   bool   `msgpack:"ai,omitempty"`
	GUID      bool   `msgpack:"guid,omitempty"`
}

type relationPack struct {
	ID           string `msgpack:"id"`
	FromTableID  string `msgpack:"ft"`
	FromColumnID string `msgpack:"fc"`
	ToTableID    string `msgpack:"tt"`
	ToColumnID   string `msgpack:"tc"`
	Cardinality  string `msgpack:"card"`
	Direction    string `msgpack:"dir"`
}

// SerializeGraph encodes a diagram for storage.
func SerializeGraph(g diagram.Graph) ([]byte, error) {
	data, err := msgpack.Marshal(graphToPack(g))
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheWrite, err, "failed to encode diagram")
	}
	return data, nil
}

// DeserializeGraph decodes a stored diagram.
func DeserializeGraph(data []byte) (diagram.Graph, error) {
	var p graphPack
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return diagram.Empty(), alerr.Wrap(alerr.ErrCacheCorrupt, err, "failed to decode cached diagram")
	}
	if p.Version != payloadVersion {
		return diagram.Empty(), alerr.New(alerr.ErrCacheCorrupt, "cached diagram has an unknown payload version").
			With("version", p.Version)
	}
	return graphFromPack(p), nil
}

// -----------------------------------------------------------------------------
// Conversion functions
// -----------------------------------------------------------------------------

func graphToPack(g diagram.Graph) graphPack {
	p := graphPack{
		Version:       payloadVersion,
		Tables:        make([]tablePack, len(g.Tables)),
		Relationships: make([]relationPack, len(g.Relationships)),
	}
	for i, t := range g.Tables {
		tp := tablePack{
			ID:      t.ID,
			Name:    t.Name,
			X:       t.Position.X,
			Y:       t.Position.Y,
			Columns: make([]columnPack, len(t.Columns)),
		}
		for j, c := range t.Columns {
			tp.Columns[j] = columnPack{
				ID:        c.ID,
				Name:      c.Name,
				Type:      string(c.DataType),
				PK:        c.IsPrimaryKey,
				FK:        c.IsForeignKey,
				Reference: c.ForeignKeyReference,
				AutoInc:   c.IsAutoIncrement,
				GUID:      c.IsGuidGenerated,
			}
		}
		p.Tables[i] = tp
	}
	for i, r := range g.Relationships {
		p.Relationships[i] = relationPack{
			ID:           r.ID,
			FromTableID:  r.FromTableID,
			FromColumnID: r.FromColumnID,
			ToTableID:    r.ToTableID,
			ToColumnID:   r.ToColumnID,
			Cardinality:  string(r.Cardinality),
			Direction:    string(r.Direction),
		}
	}
	return p
}

func graphFromPack(p graphPack) diagram.Graph {
	g := diagram.Graph{
		Tables:        make([]diagram.Table, len(p.Tables)),
		Relationships: make([]diagram.Relationship, len(p.Relationships)),
	}
	for i, tp := range p.Tables {
		t := diagram.Table{
			ID:       tp.ID,
			Name:     tp.Name,
			Position: diagram.Point{X: tp.X, Y: tp.Y},
			Columns:  make([]diagram.Column, len(tp.Columns)),
		}
		for j, cp := range tp.Columns {
			t.Columns[j] = diagram.Column{
				ID:                  cp.ID,
				Name:                cp.Name,
				DataType:            diagram.DataType(cp.Type),
				IsPrimaryKey:        cp.PK,
				IsForeignKey:        cp.FK,
				ForeignKeyReference: cp.Reference,
				IsAutoIncrement:     cp.AutoInc,
				IsGuidGenerated:     cp.GUID,
			}
		}
		g.Tables[i] = t
	}
	for i, rp := range p.Relationships {
		g.Relationships[i] = diagram.Relationship{
			ID:           rp.ID,
			FromTableID:  rp.FromTableID,
			FromColumnID: rp.FromColumnID,
			ToTableID:    rp.ToTableID,
			ToColumnID:   rp.ToColumnID,
			Cardinality:  diagram.Cardinality(rp.Cardinality),
			Direction:    diagram.Direction(rp.Direction),
		}
	}
	return g
}
