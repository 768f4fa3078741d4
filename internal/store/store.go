// Package store owns the canonical diagram graph.
//
// Every mutation goes through a Store method. Committing a table runs
// relationship inference for that table; repositioning never does. Each
// committed mutation notifies subscribers exactly once with a copy of the
// resulting graph.
//
// A Store is not safe for concurrent use. Hosts that receive input from
// several goroutines must serialize calls themselves.
package store

import (
	"log/slog"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/idgen"
	"github.com/hlop3z/erdpad/internal/inference"
	"github.com/hlop3z/erdpad/internal/registry"
)

// Defaults for tables and columns created by the editor.
const (
	DefaultTableName  = "NewTable"
	DefaultColumnName = "NewColumn"
	SeedColumnName    = "Id"
)

// DefaultTablePosition is where new tables are placed.
var DefaultTablePosition = diagram.Point{X: 100, Y: 100}

// Store holds the graph and notifies subscribers on change.
type Store struct {
	graph    diagram.Graph
	ids      idgen.Generator
	resolver registry.Resolver
	engine   *inference.Engine
	logger   *slog.Logger

	batchPositions bool
	dirty          bool

	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(diagram.Graph)
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the generator for table, column and relationship ids.
func WithIDGenerator(g idgen.Generator) Option {
	return func(s *Store) { s.ids = g }
}

// WithResolver sets how foreign-key references are resolved.
func WithResolver(r registry.Resolver) Option {
	return func(s *Store) { s.resolver = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithPositionBatching makes SetTablePosition mark the store dirty instead of
// notifying; FlushPositions then notifies once.
func WithPositionBatching(on bool) Option {
	return func(s *Store) { s.batchPositions = on }
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{graph: diagram.Empty()}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = idgen.NewCounter(nil)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.engine = inference.New(s.resolver, s.ids, s.logger)
	return s
}

// Subscribe registers fn to receive the graph after each committed mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(diagram.Graph)) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) emit() {
	s.dirty = false
	for _, sub := range s.subs {
		sub.fn(s.graph.Clone())
	}
}

// Graph returns a copy of the current graph.
func (s *Store) Graph() diagram.Graph {
	return s.graph.Clone()
}

// Table returns a copy of the table with the given id.
func (s *Store) Table(id string) (diagram.Table, bool) {
	t := s.graph.Table(id)
	if t == nil {
		return diagram.Table{}, false
	}
	return t.Clone(), true
}

// Relationships returns a copy of the relationship list.
func (s *Store) Relationships() []diagram.Relationship {
	return append([]diagram.Relationship{}, s.graph.Relationships...)
}

// NewTable builds a table with the editor defaults: a fresh id, the default
// name and position, and one int primary-key column. It is not added.
func (s *Store) NewTable() diagram.Table {
	return diagram.Table{
		ID:       s.ids.Next("table"),
		Name:     DefaultTableName,
		Position: DefaultTablePosition,
		Columns: []diagram.Column{{
			ID:           s.ids.Next("col"),
			Name:         SeedColumnName,
			DataType:     diagram.TypeInt,
			IsPrimaryKey: true,
		}},
	}
}

// CreateTable adds a default table and opens a draft on it.
func (s *Store) CreateTable() *Draft {
	t := s.NewTable()
	s.AddTable(t)
	return newDraft(t, s.ids)
}

// AddTable appends t as-is. Names are not checked for uniqueness and no
// inference runs.
func (s *Store) AddTable(t diagram.Table) {
	s.graph.Tables = append(s.graph.Tables, t.Clone())
	s.logger.Debug("table added", "table", t.ID, "name", t.Name)
	s.emit()
}

// UpdateTable replaces the table with t's id, or appends t if absent, then
// recomputes t's outgoing relationships.
func (s *Store) UpdateTable(t diagram.Table) {
	t = t.Clone()
	if i := s.graph.TableIndex(t.ID); i >= 0 {
		s.graph.Tables[i] = t
	} else {
		s.graph.Tables = append(s.graph.Tables, t)
	}
	s.graph.Relationships = s.engine.Infer(t, s.graph.Tables, s.graph.Relationships)
	s.logger.Debug("table committed",
		"table", t.ID,
		"name", t.Name,
		"relationships", len(s.graph.Relationships))
	s.emit()
}

// DeleteTable removes the table and every relationship touching it.
// It reports false, without notifying, when no such table exists.
func (s *Store) DeleteTable(id string) bool {
	i := s.graph.TableIndex(id)
	if i < 0 {
		return false
	}
	s.graph.Tables = append(s.graph.Tables[:i], s.graph.Tables[i+1:]...)

	kept := s.graph.Relationships[:0]
	for _, r := range s.graph.Relationships {
		if !r.Touches(id) {
			kept = append(kept, r)
		}
	}
	s.graph.Relationships = kept
	s.logger.Debug("table deleted", "table", id)
	s.emit()
	return true
}

// Edit opens a draft on a copy of the table.
func (s *Store) Edit(id string) (*Draft, error) {
	t, ok := s.Table(id)
	if !ok {
		return nil, alerr.New(alerr.ErrTableNotFound, "table not found").WithTable(id)
	}
	return newDraft(t, s.ids), nil
}

// SetTablePosition moves a table. It never runs inference. It reports false,
// changing nothing, when no such table exists or the position is not finite.
func (s *Store) SetTablePosition(id string, x, y float64) bool {
	pos := diagram.Point{X: x, Y: y}
	if !pos.Finite() {
		s.logger.Warn("ignoring non-finite table position", "table", id, "x", x, "y", y)
		return false
	}
	t := s.graph.Table(id)
	if t == nil {
		return false
	}
	t.Position = pos
	if s.batchPositions {
		s.dirty = true
		return true
	}
	s.emit()
	return true
}

// FlushPositions notifies once if positions changed since the last
// notification. It reports whether it notified.
func (s *Store) FlushPositions() bool {
	if !s.dirty {
		return false
	}
	s.emit()
	return true
}

// Dirty reports whether batched position changes are pending.
func (s *Store) Dirty() bool { return s.dirty }

// SetRelationshipKind sets a relationship's cardinality and direction.
// The change lasts until the owning table is next committed.
func (s *Store) SetRelationshipKind(id string, c diagram.Cardinality, d diagram.Direction) error {
	if _, err := diagram.ParseCardinality(string(c)); err != nil {
		return err
	}
	if _, err := diagram.ParseDirection(string(d)); err != nil {
		return err
	}
	r := s.graph.Relationship(id)
	if r == nil {
		return alerr.New(alerr.ErrRelationshipNotFound, "relationship not found").With("relationship", id)
	}
	r.Cardinality, r.Direction = c, d
	s.emit()
	return nil
}

// Replace swaps in g wholesale and notifies.
func (s *Store) Replace(g diagram.Graph) {
	s.Load(g)
	s.emit()
}

// Load swaps in g wholesale without notifying. Hosts use it to hydrate.
func (s *Store) Load(g diagram.Graph) {
	s.graph = g.Clone()
	s.dirty = false
}
