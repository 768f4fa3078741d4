package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/hlop3z/erdpad/internal/diagram"
)

// SVGOptions controls WriteSVG.
type SVGOptions struct {
	// Selected is the id of a table to highlight.
	Selected string
	// Padding is the margin around the drawing. Zero means 20.
	Padding float64
}

const (
	tableFill     = "#ffffff"
	headerFill    = "#37474F"
	borderColor   = "#90A4AE"
	selectedColor = "#FFC107"
	textColor     = "#263238"
)

// svgWriter keeps the first write error so drawing code can stay linear.
type svgWriter struct {
	w   io.Writer
	err error
}

func (s *svgWriter) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

func escape(text string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(text))
	return b.String()
}

func markerID(kind string, c diagram.Cardinality) string {
	return kind + "-" + string(c)
}

// Bounds returns the smallest rectangle enclosing every table box.
// ok is false for a graph without tables.
func (l Layout) Bounds(g diagram.Graph) (lo, hi diagram.Point, ok bool) {
	if len(g.Tables) == 0 {
		return diagram.Point{}, diagram.Point{}, false
	}
	lo = diagram.Point{X: math.Inf(1), Y: math.Inf(1)}
	hi = diagram.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for i := range g.Tables {
		t := &g.Tables[i]
		lo.X = math.Min(lo.X, t.Position.X)
		lo.Y = math.Min(lo.Y, t.Position.Y)
		hi.X = math.Max(hi.X, t.Position.X+l.TableWidth)
		hi.Y = math.Max(hi.Y, t.Position.Y+l.TableHeight(t))
	}
	return lo, hi, true
}

// WriteSVG draws every table and resolvable connector of g.
func WriteSVG(w io.Writer, g diagram.Graph, l Layout, opts SVGOptions) error {
	pad := opts.Padding
	if pad == 0 {
		pad = 20
	}
	lo, hi, ok := l.Bounds(g)
	if !ok {
		hi = diagram.Point{X: l.TableWidth, Y: l.HeaderHeight}
	}
	lo = lo.Sub(diagram.Point{X: pad, Y: pad})
	hi = hi.Add(diagram.Point{X: pad, Y: pad})
	width, height := hi.X-lo.X, hi.Y-lo.Y

	s := &svgWriter{w: w}
	s.printf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%s" height="%s" font-family="sans-serif" font-size="12">`+"\n",
		formatNumber(lo.X), formatNumber(lo.Y), formatNumber(width), formatNumber(height),
		formatNumber(width), formatNumber(height))

	s.printf("<defs>\n")
	for _, c := range diagram.Cardinalities {
		color := Color(c)
		s.printf(`<marker id="%s" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto"><path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/></marker>`+"\n",
			markerID("end", c), color)
		s.printf(`<marker id="%s" viewBox="0 0 10 10" refX="0" refY="5" markerWidth="8" markerHeight="8" orient="auto"><path d="M 10 0 L 0 5 L 10 10 z" fill="%s"/></marker>`+"\n",
			markerID("start", c), color)
	}
	s.printf("</defs>\n")

	for i := range g.Tables {
		writeTable(s, &g.Tables[i], l, g.Tables[i].ID == opts.Selected)
	}
	for _, c := range Connectors(g, l) {
		writeConnector(s, c)
	}

	s.printf("</svg>\n")
	return s.err
}

func writeTable(s *svgWriter, t *diagram.Table, l Layout, selected bool) {
	x, y := t.Position.X, t.Position.Y
	stroke, strokeWidth := borderColor, "1"
	if selected {
		stroke, strokeWidth = selectedColor, "3"
	}

	s.printf(`<g class="table" data-id="%s">`+"\n", escape(t.ID))
	s.printf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s" stroke-width="%s" rx="4"/>`+"\n",
		formatNumber(x), formatNumber(y), formatNumber(l.TableWidth), formatNumber(l.TableHeight(t)),
		tableFill, stroke, strokeWidth)
	s.printf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s" rx="4"/>`+"\n",
		formatNumber(x), formatNumber(y), formatNumber(l.TableWidth), formatNumber(l.HeaderHeight), headerFill)
	s.printf(`<text x="%s" y="%s" fill="#ffffff" font-weight="bold">%s</text>`+"\n",
		formatNumber(x+8), formatNumber(y+l.HeaderHeight/2+4), escape(t.Name))

	for i, c := range t.Columns {
		rowY := l.rowY(t, i) + 4
		s.printf(`<text x="%s" y="%s" fill="%s">%s%s <tspan fill="#78909C">%s</tspan></text>`+"\n",
			formatNumber(x+8), formatNumber(rowY), textColor,
			badge(c), escape(c.Name), escape(string(c.DataType)))
	}
	s.printf("</g>\n")
}

func badge(c diagram.Column) string {
	switch {
	case c.IsPrimaryKey && c.IsForeignKey:
		return "PK FK "
	case c.IsPrimaryKey:
		return "PK "
	case c.IsForeignKey:
		return "FK "
	}
	return ""
}

func writeConnector(s *svgWriter, c Connector) {
	attrs := fmt.Sprintf(`marker-end="url(#%s)"`, markerID("end", c.Cardinality))
	if c.Has(StartArrow) {
		attrs += fmt.Sprintf(` marker-start="url(#%s)"`, markerID("start", c.Cardinality))
	}
	s.printf(`<path class="connector" data-id="%s" d="%s" fill="none" stroke="%s" stroke-width="2" %s/>`+"\n",
		escape(c.RelationshipID), c.Path(), c.Color, attrs)
	if c.Has(MidCircle) {
		s.printf(`<circle cx="%s" cy="%s" r="4" fill="%s"/>`+"\n",
			formatNumber(c.Mid.X), formatNumber(c.Mid.Y), c.Color)
	}
}
