// Package inference derives relationship edges from foreign-key columns.
//
// Relationships are recomputed per committed table: every edge leaving the
// table is discarded and rebuilt from its foreign-key columns. Edges are
// rebuilt with the default annotations (many-to-one, unidirectional), so any
// cardinality or direction the user set on them earlier does not survive a
// commit. Edges pointing into the table are left alone and may go stale.
package inference

import (
	"log/slog"

	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/idgen"
	"github.com/hlop3z/erdpad/internal/registry"
)

// Engine recomputes outgoing relationships for committed tables.
type Engine struct {
	resolver registry.Resolver
	ids      idgen.Generator
	logger   *slog.Logger
}

// New returns an Engine. A nil resolver means registry.NameResolver and a nil
// logger means slog.Default().
func New(resolver registry.Resolver, ids idgen.Generator, logger *slog.Logger) *Engine {
	if resolver == nil {
		resolver = registry.NameResolver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{resolver: resolver, ids: ids, logger: logger}
}

// Infer returns the relationship set after committing table. tables is the
// full table list, already including the committed version of table.
// existing is not modified.
func (e *Engine) Infer(table diagram.Table, tables []diagram.Table, existing []diagram.Relationship) []diagram.Relationship {
	out := make([]diagram.Relationship, 0, len(existing))
	for _, r := range existing {
		if r.FromTableID != table.ID {
			out = append(out, r)
		}
	}

	for _, col := range table.ForeignKeys() {
		target, ok := e.resolver.Resolve(col.ForeignKeyReference, tables)
		if !ok {
			e.logger.Debug("inference: foreign key does not resolve",
				"table", table.Name,
				"column", col.Name,
				"ref", col.ForeignKeyReference)
			continue
		}
		out = append(out, diagram.Relationship{
			ID:           e.ids.Next("rel"),
			FromTableID:  table.ID,
			FromColumnID: col.ID,
			ToTableID:    target.Table.ID,
			ToColumnID:   target.Column.ID,
			Cardinality:  diagram.ManyToOne,
			Direction:    diagram.Unidirectional,
		})
	}
	return out
}
