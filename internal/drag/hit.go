package drag

import (
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/render"
)

// HitTest finds what lies at canvas-local point p. Tables later in stored
// order are drawn on top and win.
func HitTest(g diagram.Graph, l render.Layout, p diagram.Point) Hit {
	for i := len(g.Tables) - 1; i >= 0; i-- {
		t := &g.Tables[i]
		x, y := p.X-t.Position.X, p.Y-t.Position.Y
		if x < 0 || x > l.TableWidth || y < 0 || y > l.TableHeight(t) {
			continue
		}
		if y <= l.HeaderHeight {
			return Hit{Region: Header, TableID: t.ID}
		}
		return Hit{Region: Body, TableID: t.ID}
	}
	return Hit{Region: Canvas}
}

// Viewport is a pan-and-zoom Transform: local = (screen - Pan) / Zoom.
// A zero Zoom is treated as 1.
type Viewport struct {
	Pan  diagram.Point
	Zoom float64
}

// ScreenToLocal implements Transform.
func (v Viewport) ScreenToLocal(p diagram.Point) diagram.Point {
	z := v.Zoom
	if z == 0 {
		z = 1
	}
	d := p.Sub(v.Pan)
	return diagram.Point{X: d.X / z, Y: d.Y / z}
}

// LocalToScreen is the inverse of ScreenToLocal.
func (v Viewport) LocalToScreen(p diagram.Point) diagram.Point {
	z := v.Zoom
	if z == 0 {
		z = 1
	}
	return diagram.Point{X: p.X*z + v.Pan.X, Y: p.Y*z + v.Pan.Y}
}
