// Package ui implements the terminal diagram editor.
//
// Tables are drawn as boxes at one cell per CellWidth by CellHeight canvas
// units, so a table at (100, 100) sits at column 10, row 4 before panning.
// Connectors are plotted by sampling their curves. Mouse input is
// hit-tested at cell centres and fed to a drag.Controller, so dragging a
// header in the terminal follows the same rules as any other host.
package ui

import (
	"log/slog"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/drag"
	"github.com/hlop3z/erdpad/internal/render"
	"github.com/hlop3z/erdpad/internal/store"
)

// Canvas is a tview primitive that draws the store's graph and turns mouse
// events into drags.
type Canvas struct {
	*tview.Box

	store  *store.Store
	drag   *drag.Controller
	layout render.Layout
	view   drag.Viewport

	onSelect func(tableID string)
}

// NewCanvas returns a canvas over s.
func NewCanvas(s *store.Store, layout render.Layout, logger *slog.Logger) *Canvas {
	c := &Canvas{
		Box:    tview.NewBox(),
		store:  s,
		layout: layout,
		view:   drag.Viewport{Zoom: 1},
	}
	c.drag = drag.New(s, c, logger)

	c.SetBorder(true).
		SetTitle(PanelCanvas).
		SetTitleColor(Theme.Accent).
		SetBorderColor(Theme.Border).
		SetBackgroundColor(Theme.Background)
	return c
}

// ScreenToLocal implements drag.Transform. Screen points are cell centres
// scaled to canvas units, relative to the canvas' inner rectangle.
func (c *Canvas) ScreenToLocal(p diagram.Point) diagram.Point {
	return c.view.ScreenToLocal(p)
}

// Controller returns the drag controller driving this canvas.
func (c *Canvas) Controller() *drag.Controller { return c.drag }

// Selected returns the selected table id.
func (c *Canvas) Selected() string { return c.drag.Selected() }

// Select selects a table and notifies the selection callback.
func (c *Canvas) Select(tableID string) {
	c.drag.Select(tableID)
	if c.onSelect != nil {
		c.onSelect(tableID)
	}
}

// SetSelectedFunc sets a callback for selection changes.
func (c *Canvas) SetSelectedFunc(fn func(tableID string)) *Canvas {
	c.onSelect = fn
	return c
}

// Pan shifts the view by whole cells.
func (c *Canvas) Pan(dx, dy int) {
	c.view.Pan.X += float64(dx * CellWidth)
	c.view.Pan.Y += float64(dy * CellHeight)
}

// SelectNext moves the selection to the next table in stored order.
func (c *Canvas) SelectNext() {
	g := c.store.Graph()
	if len(g.Tables) == 0 {
		return
	}
	next := 0
	if i := g.TableIndex(c.drag.Selected()); i >= 0 {
		next = (i + 1) % len(g.Tables)
	}
	c.Select(g.Tables[next].ID)
}

// cellPoint returns the screen point at the centre of the cell at absolute
// terminal position (x, y).
func (c *Canvas) cellPoint(x, y int) diagram.Point {
	ix, iy, _, _ := c.GetInnerRect()
	return diagram.Point{
		X: float64((x-ix)*CellWidth) + CellWidth/2.0,
		Y: float64((y-iy)*CellHeight) + CellHeight/2.0,
	}
}

// toCell maps a canvas-local point to an absolute terminal cell.
func (c *Canvas) toCell(p diagram.Point) (int, int) {
	ix, iy, _, _ := c.GetInnerRect()
	s := c.view.LocalToScreen(p)
	return ix + int(math.Floor(s.X/CellWidth)), iy + int(math.Floor(s.Y/CellHeight))
}

// boxWidth is the table width in cells.
func (c *Canvas) boxWidth() int {
	w := int(math.Round(c.layout.TableWidth / CellWidth))
	return max(w, 4)
}

// Draw implements tview.Primitive.
func (c *Canvas) Draw(screen tcell.Screen) {
	c.Box.DrawForSubclass(screen, c)
	g := c.store.Graph()

	for _, conn := range render.Connectors(g, c.layout) {
		c.drawConnector(screen, conn)
	}
	for i := range g.Tables {
		c.drawTable(screen, &g.Tables[i])
	}
}

func (c *Canvas) set(screen tcell.Screen, x, y int, r rune, style tcell.Style) {
	ix, iy, w, h := c.GetInnerRect()
	if x < ix || y < iy || x >= ix+w || y >= iy+h {
		return
	}
	screen.SetContent(x, y, r, nil, style)
}

func (c *Canvas) print(screen tcell.Screen, x, y int, text string, maxWidth int, style tcell.Style) {
	for _, r := range text {
		if maxWidth <= 0 {
			return
		}
		c.set(screen, x, y, r, style)
		x++
		maxWidth--
	}
}

func (c *Canvas) drawConnector(screen tcell.Screen, conn render.Connector) {
	style := tcell.StyleDefault.Background(Theme.Background).Foreground(CardinalityColor(conn.Cardinality))

	span := math.Abs(conn.To.X-conn.From.X)/CellWidth + math.Abs(conn.To.Y-conn.From.Y)/CellHeight
	for _, p := range conn.Sample(int(span) + 4) {
		x, y := c.toCell(p)
		c.set(screen, x, y, GlyphPath, style)
	}

	for _, m := range conn.Markers {
		x, y := c.toCell(m.At)
		switch m.Kind {
		case render.EndArrow:
			c.set(screen, x-1, y, GlyphEndArrow, style)
		case render.StartArrow:
			c.set(screen, x, y, GlyphStartArrow, style)
		case render.MidCircle:
			c.set(screen, x, y, GlyphMidCircle, style)
		}
	}
}

// drawTable draws t as a box: a title row and a rule (the header), one row
// per column, and a bottom border.
func (c *Canvas) drawTable(screen tcell.Screen, t *diagram.Table) {
	x0, y0 := c.toCell(t.Position)
	w := c.boxWidth()
	bottom := y0 + 2 + len(t.Columns)

	border := Theme.Border
	if t.ID == c.drag.Selected() {
		border = Theme.Selection
	}
	frame := tcell.StyleDefault.Background(Theme.Background).Foreground(border)
	header := tcell.StyleDefault.Background(Theme.Header).Foreground(Theme.Text).Bold(true)
	body := tcell.StyleDefault.Background(Theme.Background).Foreground(Theme.Text)

	for y := y0; y <= bottom; y++ {
		left, fill, right := '│', ' ', '│'
		style := body
		switch y {
		case y0:
			left, fill, right = '┌', ' ', '┐'
			style = header
		case y0 + 1:
			left, fill, right = '├', '─', '┤'
			style = frame
		case bottom:
			left, fill, right = '└', '─', '┘'
			style = frame
		}
		c.set(screen, x0, y, left, frame)
		for x := x0 + 1; x < x0+w-1; x++ {
			c.set(screen, x, y, fill, style)
		}
		c.set(screen, x0+w-1, y, right, frame)
	}

	c.print(screen, x0+1, y0, t.Name, w-2, header)

	for i, col := range t.Columns {
		y := y0 + 2 + i
		x := x0 + 1
		switch {
		case col.IsPrimaryKey:
			c.set(screen, x, y, GlyphKey, body.Foreground(Theme.Key))
		case col.IsForeignKey:
			c.set(screen, x, y, GlyphEndArrow, body.Foreground(Theme.Accent))
		}
		c.print(screen, x+1, y, col.Name+" "+string(col.DataType), w-3, body)
	}
}

// MouseHandler implements tview.Primitive.
func (c *Canvas) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return c.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		x, y := event.Position()
		_, dragging := c.drag.Dragged()
		if !dragging && !c.InRect(x, y) {
			return false, nil
		}
		p := c.cellPoint(x, y)

		switch action {
		case tview.MouseLeftDown:
			setFocus(c)
			hit := drag.HitTest(c.store.Graph(), c.layout, c.ScreenToLocal(p))
			switch hit.Region {
			case drag.Header:
				if c.drag.PointerDown(p, hit) {
					c.Select(hit.TableID)
					return true, c
				}
			case drag.Body:
				c.Select(hit.TableID)
			default:
				c.drag.CanvasClick()
				if c.onSelect != nil {
					c.onSelect("")
				}
			}
			return true, nil
		case tview.MouseMove:
			if dragging {
				c.drag.PointerMove(p)
				return true, c
			}
		case tview.MouseLeftUp:
			if dragging {
				c.drag.PointerUp(p)
				return true, nil
			}
		}
		return false, nil
	})
}

// InputHandler implements tview.Primitive: arrows pan, Tab cycles selection.
func (c *Canvas) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return c.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		switch event.Key() {
		case tcell.KeyLeft:
			c.Pan(1, 0)
		case tcell.KeyRight:
			c.Pan(-1, 0)
		case tcell.KeyUp:
			c.Pan(0, 1)
		case tcell.KeyDown:
			c.Pan(0, -1)
		case tcell.KeyTab:
			c.SelectNext()
		}
	})
}
