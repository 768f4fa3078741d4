// Package erdpad is the embeddable core of an entity-relationship diagram
// designer.
//
// A Designer owns one diagram. Hosts feed it user intents (add or edit a
// table, drag a header, change a relationship's kind) and receive the
// serialized document after every committed change. Relationships are never
// edited directly: they are inferred from foreign-key columns whenever a
// table is committed.
//
// Example:
//
//	d := erdpad.New(savedDoc, func(doc string) {
//	    os.WriteFile("shop.uml.json", []byte(doc), 0o644)
//	})
//	draft := d.AddTable()
//	draft.SetName("Customers")
//	if err := d.SaveDraft(); err != nil {
//	    log.Fatal(err)
//	}
//
// A Designer is not safe for concurrent use. Hosts receiving input from
// several goroutines must serialize calls.
package erdpad

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/codec"
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/drag"
	"github.com/hlop3z/erdpad/internal/drift"
	"github.com/hlop3z/erdpad/internal/render"
	"github.com/hlop3z/erdpad/internal/runtime"
	"github.com/hlop3z/erdpad/internal/store"
)

// FileSuffix is the extension of saved diagram files.
const FileSuffix = codec.FileSuffix

// Designer is the main entry point: a diagram plus the editing state around
// it (the open draft, the drag in progress, the selection).
type Designer struct {
	config   *Config
	store    *store.Store
	drag     *drag.Controller
	draft    *store.Draft
	onChange func(doc string)

	unsubscribe func()
}

// New creates a Designer hydrated from initialDoc. An empty or unreadable
// document starts an empty diagram; the latter is logged at warn level.
// Hydration does not call onChange. Every later committed change does, with
// the serialized document. A nil onChange is allowed.
func New(initialDoc string, onChange func(doc string), opts ...Option) *Designer {
	cfg := &Config{
		Layout:        render.DefaultLayout(),
		ScriptTimeout: runtime.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = CounterIDs()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = ByName
	}

	s := store.New(
		store.WithIDGenerator(cfg.IDGenerator),
		store.WithResolver(cfg.Resolver),
		store.WithLogger(cfg.Logger),
		store.WithPositionBatching(cfg.BatchPositions),
	)
	s.Load(codec.Deserialize([]byte(initialDoc), cfg.Logger))

	d := &Designer{
		config:   cfg,
		store:    s,
		drag:     drag.New(s, cfg.Transform, cfg.Logger),
		onChange: onChange,
	}
	d.unsubscribe = s.Subscribe(d.publish)
	return d
}

func (d *Designer) publish(g diagram.Graph) {
	if d.onChange == nil {
		return
	}
	doc, err := codec.Serialize(g)
	if err != nil {
		d.config.Logger.Error("failed to serialize diagram", "error", err)
		return
	}
	d.onChange(string(doc))
}

// Close stops change notifications. The Designer stays readable.
func (d *Designer) Close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
}

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// Graph returns a copy of the diagram.
func (d *Designer) Graph() Graph { return d.store.Graph() }

// Table returns a copy of one table.
func (d *Designer) Table(id string) (Table, bool) { return d.store.Table(id) }

// Relationships returns a copy of the relationship list.
func (d *Designer) Relationships() []Relationship { return d.store.Relationships() }

// Document returns the serialized diagram.
func (d *Designer) Document() (string, error) {
	doc, err := codec.Serialize(d.store.Graph())
	if err != nil {
		return "", err
	}
	return string(doc), nil
}

// Fingerprint returns the merkle root of the diagram. Equal diagrams have
// equal fingerprints.
func (d *Designer) Fingerprint() (string, error) {
	return drift.Fingerprint(d.store.Graph())
}

// Layout returns the box metrics in use.
func (d *Designer) Layout() Layout { return d.config.Layout }

// ---------------------------------------------------------------------------
// Editing
// ---------------------------------------------------------------------------

// AddTable appends a default table ("NewTable" at (100,100) with an int
// primary key "Id") and opens a draft on it. The table is visible at once;
// its name and columns reach the diagram on SaveDraft.
func (d *Designer) AddTable() *Draft {
	d.draft = d.store.CreateTable()
	d.drag.Select(d.draft.ID())
	return d.draft
}

// EditTable opens a draft on a copy of the table.
func (d *Designer) EditTable(id string) (*Draft, error) {
	draft, err := d.store.Edit(id)
	if err != nil {
		return nil, err
	}
	d.draft = draft
	return draft, nil
}

// Draft returns the open draft, or nil.
func (d *Designer) Draft() *Draft { return d.draft }

// SaveDraft commits the open draft: the table replaces its stored version
// and its outgoing relationships are recomputed.
func (d *Designer) SaveDraft() error {
	if d.draft == nil {
		return alerr.New(alerr.ErrNoDraft, "no table is open for editing").
			WithHelp("open one with AddTable or EditTable")
	}
	t := d.draft.Table()
	d.draft = nil
	d.store.UpdateTable(t)
	return nil
}

// CancelDraft discards the open draft. A table added by AddTable stays with
// its defaults.
func (d *Designer) CancelDraft() { d.draft = nil }

// CommitTable commits t directly, as SaveDraft would. Tables with unknown
// ids are appended.
func (d *Designer) CommitTable(t Table) { d.store.UpdateTable(t) }

// DeleteTable removes a table and every relationship touching it. An open
// draft on the table is discarded. It reports false when no such table
// exists.
func (d *Designer) DeleteTable(id string) bool {
	if d.draft != nil && d.draft.ID() == id {
		d.draft = nil
	}
	if d.drag.Selected() == id {
		d.drag.CanvasClick()
	}
	return d.store.DeleteTable(id)
}

// MoveTable sets a table's position without running inference. It reports
// false for an unknown table or a NaN or infinite coordinate.
func (d *Designer) MoveTable(id string, x, y float64) bool {
	if !d.store.SetTablePosition(id, x, y) {
		return false
	}
	d.store.FlushPositions()
	return true
}

// SetRelationshipKind changes a relationship's cardinality and direction.
// The change lasts until the owning table is next committed, which resets
// it to many-to-one, unidirectional.
func (d *Designer) SetRelationshipKind(id string, c Cardinality, dir Direction) error {
	return d.store.SetRelationshipKind(id, c, dir)
}

// ---------------------------------------------------------------------------
// Pointer input
// ---------------------------------------------------------------------------

// PointerDown handles a press at screen position p. A press on a table
// header selects the table and starts a drag; a press on a table body
// selects it; a press on empty canvas clears the selection. It reports
// whether a drag started.
func (d *Designer) PointerDown(p Point) bool {
	hit := drag.HitTest(d.store.Graph(), d.config.Layout, d.screenToLocal(p))
	switch hit.Region {
	case drag.Header:
		return d.drag.PointerDown(p, hit)
	case drag.Body:
		d.drag.Select(hit.TableID)
	default:
		d.drag.CanvasClick()
	}
	return false
}

// PointerMove repositions the dragged table, if any.
func (d *Designer) PointerMove(p Point) { d.drag.PointerMove(p) }

// PointerUp ends any drag.
func (d *Designer) PointerUp(p Point) { d.drag.PointerUp(p) }

// Dragging returns the id of the table being dragged.
func (d *Designer) Dragging() (string, bool) { return d.drag.Dragged() }

// Selected returns the selected table id, or "".
func (d *Designer) Selected() string { return d.drag.Selected() }

// SetTransform replaces the screen-to-canvas transform, e.g. after a pan.
func (d *Designer) SetTransform(t Transform) {
	d.config.Transform = t
	d.drag.SetTransform(t)
}

func (d *Designer) screenToLocal(p Point) Point {
	if d.config.Transform == nil {
		return p
	}
	return d.config.Transform.ScreenToLocal(p)
}

// ---------------------------------------------------------------------------
// Drawing
// ---------------------------------------------------------------------------

// Connectors returns one connector per relationship whose endpoints exist.
func (d *Designer) Connectors() []Connector {
	return render.Connectors(d.store.Graph(), d.config.Layout)
}

// WriteSVG draws the diagram as a standalone SVG document, highlighting the
// selected table.
func (d *Designer) WriteSVG(w io.Writer) error {
	return render.WriteSVG(w, d.store.Graph(), d.config.Layout, SVGOptions{Selected: d.drag.Selected()})
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

// SaveDiagram writes the serialized document to w.
func (d *Designer) SaveDiagram(w io.Writer) error {
	doc, err := codec.Serialize(d.store.Graph())
	if err != nil {
		return err
	}
	if _, err := w.Write(doc); err != nil {
		return alerr.Wrap(alerr.ErrDocumentWrite, err, "failed to write diagram")
	}
	return nil
}

// LoadDiagram replaces the diagram with the document read from r. The
// document is validated strictly; on any error the current diagram, draft
// and selection are kept and nothing is notified.
func (d *Designer) LoadDiagram(r io.Reader) error {
	g, err := codec.ImportReader(r)
	if err != nil {
		return err
	}
	d.draft = nil
	d.drag.CanvasClick()
	d.store.Replace(g)
	return nil
}

// LoadDocument is LoadDiagram for a document already in memory.
func (d *Designer) LoadDocument(doc string) error {
	return d.LoadDiagram(strings.NewReader(doc))
}

// DiagramFileName returns base with the diagram suffix, adding it only when
// missing: "shop" and "shop.uml.json" both give "shop.uml.json", and
// "shop.json" gives "shop.uml.json".
func DiagramFileName(base string) string {
	if strings.HasSuffix(base, FileSuffix) {
		return base
	}
	base = strings.TrimSuffix(base, ".json")
	if base == "" {
		base = "diagram"
	}
	return base + FileSuffix
}

// ---------------------------------------------------------------------------
// Scripts
// ---------------------------------------------------------------------------

// RunScript evaluates a diagram script and commits the tables it declares,
// in order, returning their ids. Tables holding foreign keys are committed
// again at the end so forward references resolve. The name is used in
// error locations. On a script error nothing is committed.
func (d *Designer) RunScript(name, code string) ([]string, error) {
	sb := runtime.NewSandbox(d.config.Logger)
	sb.SetTimeout(d.config.ScriptTimeout)
	sb.SetCurrentFile(name)

	specs, err := sb.Eval(code)
	if err != nil {
		return nil, err
	}
	return runtime.Apply(d.store, specs), nil
}

// RunScriptReader is RunScript for a script read from r.
func (d *Designer) RunScriptReader(name string, r io.Reader) ([]string, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, alerr.Wrap(alerr.ErrDocumentRead, err, "failed to read script").WithFile(name)
	}
	return d.RunScript(name, buf.String())
}
