package erdpad

import (
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/drag"
	"github.com/hlop3z/erdpad/internal/idgen"
	"github.com/hlop3z/erdpad/internal/registry"
	"github.com/hlop3z/erdpad/internal/render"
	"github.com/hlop3z/erdpad/internal/store"
)

// Diagram model.
type (
	Graph        = diagram.Graph
	Table        = diagram.Table
	Column       = diagram.Column
	Relationship = diagram.Relationship
	Point        = diagram.Point
	DataType     = diagram.DataType
	Cardinality  = diagram.Cardinality
	Direction    = diagram.Direction
)

// Editing and drawing.
type (
	// Draft is a private copy of a table being edited.
	Draft = store.Draft
	// Connector is the drawable form of one relationship.
	Connector = render.Connector
	// Layout holds the table box metrics.
	Layout = render.Layout
	// SVGOptions controls SVG output.
	SVGOptions = render.SVGOptions
	// Transform maps screen coordinates to canvas-local coordinates.
	Transform = drag.Transform
	// Viewport is a pan-and-zoom Transform.
	Viewport = drag.Viewport
)

// Injection points.
type (
	// IDGenerator mints table, column and relationship ids.
	IDGenerator = idgen.Generator
	// Resolver matches a foreign-key reference to a target column.
	Resolver = registry.Resolver
)

// Relationship kinds.
const (
	OneToOne   = diagram.OneToOne
	OneToMany  = diagram.OneToMany
	ManyToOne  = diagram.ManyToOne
	ManyToMany = diagram.ManyToMany

	Unidirectional = diagram.Unidirectional
	Bidirectional  = diagram.Bidirectional
)

// Built-in resolvers.
var (
	// ByName resolves "Table.Column" references by name.
	ByName Resolver = registry.NameResolver{}
	// ByID resolves references written with table and column ids.
	ByID Resolver = registry.IDResolver{}
)

// CounterIDs mints "prefix_<unixMillis>_<n>" ids. It is the default.
func CounterIDs() IDGenerator { return idgen.NewCounter(nil) }

// SequenceIDs mints "prefix_<n>" ids, for deterministic output.
func SequenceIDs() IDGenerator { return idgen.NewSequence() }

// UUIDIDs mints "prefix_<uuid v7>" ids.
func UUIDIDs() IDGenerator { return idgen.UUID{} }

// DefaultLayout returns the standard box metrics.
func DefaultLayout() Layout { return render.DefaultLayout() }
