// Package render computes connector geometry between table rows and writes
// diagrams as SVG.
//
// Geometry is pure: the same graph and layout always yield the same
// connectors. Relationships whose endpoints do not resolve are skipped.
package render

import (
	"strconv"
	"strings"

	"github.com/hlop3z/erdpad/internal/diagram"
)

// Layout holds the box metrics used to place row anchors.
type Layout struct {
	TableWidth   float64
	HeaderHeight float64
	RowHeight    float64
}

// DefaultLayout returns the editor's box metrics.
func DefaultLayout() Layout {
	return Layout{TableWidth: 150, HeaderHeight: 40, RowHeight: 25}
}

// rowY is the vertical center of column idx.
func (l Layout) rowY(t *diagram.Table, idx int) float64 {
	return t.Position.Y + l.HeaderHeight + float64(idx)*l.RowHeight + l.RowHeight/2
}

// OutAnchor is where a connector leaves column idx: the right edge of its row.
func (l Layout) OutAnchor(t *diagram.Table, idx int) diagram.Point {
	return diagram.Point{X: t.Position.X + l.TableWidth, Y: l.rowY(t, idx)}
}

// InAnchor is where a connector enters column idx: the left edge of its row.
func (l Layout) InAnchor(t *diagram.Table, idx int) diagram.Point {
	return diagram.Point{X: t.Position.X, Y: l.rowY(t, idx)}
}

// TableHeight is the full box height of t.
func (l Layout) TableHeight(t *diagram.Table) float64 {
	return l.HeaderHeight + float64(len(t.Columns))*l.RowHeight
}

// MarkerKind identifies a decoration drawn on a connector.
type MarkerKind string

const (
	EndArrow   MarkerKind = "end-arrow"
	StartArrow MarkerKind = "start-arrow"
	MidCircle  MarkerKind = "mid-circle"
)

// Marker is a decoration placed at a point on a connector.
type Marker struct {
	Kind  MarkerKind
	At    diagram.Point
	Color string
}

// Colors for each cardinality.
var cardinalityColors = map[diagram.Cardinality]string{
	diagram.OneToOne:   "#2196F3",
	diagram.OneToMany:  "#FF9800",
	diagram.ManyToOne:  "#4CAF50",
	diagram.ManyToMany: "#9C27B0",
}

// DefaultColor is used for cardinalities outside the known set.
const DefaultColor = "#666666"

// Color returns the stroke and marker color for c.
func Color(c diagram.Cardinality) string {
	if color, ok := cardinalityColors[c]; ok {
		return color
	}
	return DefaultColor
}

// Connector is the drawable form of one relationship.
//
// The curve is two quadratic segments joined at Mid: from From with control
// point (Mid.X, From.Y), then a smooth continuation to To whose control point
// is the reflection (Mid.X, To.Y).
type Connector struct {
	RelationshipID string
	FromTableID    string
	ToTableID      string
	Cardinality    diagram.Cardinality
	Direction      diagram.Direction
	From           diagram.Point
	To             diagram.Point
	Mid            diagram.Point
	Color          string
	Markers        []Marker
}

// Controls returns the control points of the two segments.
func (c Connector) Controls() (first, second diagram.Point) {
	first = diagram.Point{X: c.Mid.X, Y: c.From.Y}
	second = diagram.Point{X: 2*c.Mid.X - first.X, Y: 2*c.Mid.Y - first.Y}
	return first, second
}

// Path returns the SVG path data: "M A Q C M T B".
func (c Connector) Path() string {
	ctrl, _ := c.Controls()
	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, c.From)
	b.WriteString(" Q ")
	writePoint(&b, ctrl)
	b.WriteString(", ")
	writePoint(&b, c.Mid)
	b.WriteString(" T ")
	writePoint(&b, c.To)
	return b.String()
}

// Sample evaluates the curve at n evenly spaced parameters per segment and
// returns 2n+1 points from From to To. n below 1 is treated as 1.
func (c Connector) Sample(n int) []diagram.Point {
	if n < 1 {
		n = 1
	}
	c1, c2 := c.Controls()
	pts := make([]diagram.Point, 0, 2*n+1)
	for i := 0; i < n; i++ {
		pts = append(pts, quad(c.From, c1, c.Mid, float64(i)/float64(n)))
	}
	for i := 0; i <= n; i++ {
		pts = append(pts, quad(c.Mid, c2, c.To, float64(i)/float64(n)))
	}
	return pts
}

// Has reports whether the connector carries a marker of kind k.
func (c Connector) Has(k MarkerKind) bool {
	for _, m := range c.Markers {
		if m.Kind == k {
			return true
		}
	}
	return false
}

func quad(p0, p1, p2 diagram.Point, t float64) diagram.Point {
	u := 1 - t
	return diagram.Point{
		X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
		Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func writePoint(b *strings.Builder, p diagram.Point) {
	b.WriteString(formatNumber(p.X))
	b.WriteByte(' ')
	b.WriteString(formatNumber(p.Y))
}

// Connectors computes a connector for every resolvable relationship, in
// relationship order.
func Connectors(g diagram.Graph, l Layout) []Connector {
	out := make([]Connector, 0, len(g.Relationships))
	for _, r := range g.Relationships {
		c, ok := connector(&g, l, r)
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// ConnectorFor computes the connector for one relationship.
func ConnectorFor(g diagram.Graph, l Layout, r diagram.Relationship) (Connector, bool) {
	return connector(&g, l, r)
}

func connector(g *diagram.Graph, l Layout, r diagram.Relationship) (Connector, bool) {
	from, to, fromCol, toCol, ok := g.Endpoints(r)
	if !ok {
		return Connector{}, false
	}
	a := l.OutAnchor(from, fromCol)
	b := l.InAnchor(to, toCol)
	mid := diagram.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	color := Color(r.Cardinality)

	markers := []Marker{{Kind: EndArrow, At: b, Color: color}}
	if r.Direction == diagram.Bidirectional {
		markers = append(markers, Marker{Kind: StartArrow, At: a, Color: color})
	}
	if r.Cardinality == diagram.ManyToMany {
		markers = append(markers, Marker{Kind: MidCircle, At: mid, Color: color})
	}

	return Connector{
		RelationshipID: r.ID,
		FromTableID:    r.FromTableID,
		ToTableID:      r.ToTableID,
		Cardinality:    r.Cardinality,
		Direction:      r.Direction,
		From:           a,
		To:             b,
		Mid:            mid,
		Color:          color,
		Markers:        markers,
	}, true
}
