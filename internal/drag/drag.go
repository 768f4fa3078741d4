// Package drag implements direct manipulation of table positions.
//
// The Controller is a two-state machine. A pointer-down on a table header
// starts a drag; every pointer-move while dragging repositions that table,
// whatever lies under the pointer; any pointer-up ends it. Pointer-downs on
// table bodies, rows, or empty canvas never start a drag.
package drag

import (
	"log/slog"

	"github.com/hlop3z/erdpad/internal/diagram"
)

// State is the controller state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Region classifies what lies under the pointer.
type Region int

const (
	Canvas Region = iota
	Header
	Body
)

func (r Region) String() string {
	switch r {
	case Header:
		return "header"
	case Body:
		return "body"
	}
	return "canvas"
}

// Hit is the result of hit-testing a pointer position.
type Hit struct {
	Region  Region
	TableID string
}

// Transform maps screen coordinates to canvas-local coordinates.
// It is queried on every event, so pans and zooms apply immediately.
type Transform interface {
	ScreenToLocal(screen diagram.Point) diagram.Point
}

// TransformFunc adapts a function to Transform.
type TransformFunc func(diagram.Point) diagram.Point

// ScreenToLocal implements Transform.
func (f TransformFunc) ScreenToLocal(p diagram.Point) diagram.Point { return f(p) }

// Identity treats screen and local coordinates as the same.
var Identity = TransformFunc(func(p diagram.Point) diagram.Point { return p })

// Positioner is the part of the store the controller drives.
type Positioner interface {
	Table(id string) (diagram.Table, bool)
	SetTablePosition(id string, x, y float64) bool
	FlushPositions() bool
}

// Controller tracks an in-progress drag and the current selection.
type Controller struct {
	store     Positioner
	transform Transform
	logger    *slog.Logger

	state    State
	tableID  string
	offset   diagram.Point
	selected string
}

// New returns an idle Controller. A nil transform means Identity and a nil
// logger means slog.Default().
func New(store Positioner, transform Transform, logger *slog.Logger) *Controller {
	if transform == nil {
		transform = Identity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{store: store, transform: transform, logger: logger}
}

// SetTransform replaces the screen-to-local transform.
func (c *Controller) SetTransform(t Transform) {
	if t == nil {
		t = Identity
	}
	c.transform = t
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Dragged returns the id of the table being dragged.
func (c *Controller) Dragged() (string, bool) {
	return c.tableID, c.state == Dragging
}

// Selected returns the selected table id, or "" when nothing is selected.
func (c *Controller) Selected() string { return c.selected }

// Select sets the selection without touching drag state.
func (c *Controller) Select(tableID string) { c.selected = tableID }

// PointerDown handles a press at screen position p over hit.
// It reports whether a drag started.
func (c *Controller) PointerDown(p diagram.Point, hit Hit) bool {
	if c.state == Dragging || hit.Region != Header {
		return false
	}
	t, ok := c.store.Table(hit.TableID)
	if !ok {
		return false
	}
	local := c.transform.ScreenToLocal(p)
	c.state = Dragging
	c.tableID = t.ID
	c.offset = local.Sub(t.Position)
	c.selected = t.ID
	c.logger.Debug("drag started", "table", t.ID, "offset_x", c.offset.X, "offset_y", c.offset.Y)
	return true
}

// PointerMove repositions the dragged table so the grab point stays under
// the pointer. It does nothing when idle.
func (c *Controller) PointerMove(p diagram.Point) {
	if c.state != Dragging {
		return
	}
	pos := c.transform.ScreenToLocal(p).Sub(c.offset)
	if !c.store.SetTablePosition(c.tableID, pos.X, pos.Y) {
		// The table was deleted mid-drag, or the transform produced a
		// non-finite position.
		c.reset()
	}
}

// PointerUp ends any drag and flushes batched positions.
func (c *Controller) PointerUp(diagram.Point) {
	if c.state != Dragging {
		return
	}
	c.logger.Debug("drag ended", "table", c.tableID)
	c.reset()
	c.store.FlushPositions()
}

// CanvasClick clears the selection. Drag state is unchanged.
func (c *Controller) CanvasClick() {
	c.selected = ""
}

func (c *Controller) reset() {
	c.state = Idle
	c.tableID = ""
	c.offset = diagram.Point{}
}
