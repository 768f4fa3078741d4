package render

import (
	"math"
	"testing"

	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/testutil"
)

func near(a, b diagram.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestConnectors_OrdersCustomers(t *testing.T) {
	cs := Connectors(testutil.OrdersCustomers(), DefaultLayout())
	if len(cs) != 1 {
		t.Fatalf("connectors = %d, want 1", len(cs))
	}
	c := cs[0]

	// Orders at (400,160), CustomerId is row 1; Customers at (100,100), Id is row 0.
	wantFrom := diagram.Point{X: 550, Y: 237.5}
	wantTo := diagram.Point{X: 100, Y: 152.5}
	wantMid := diagram.Point{X: 325, Y: 195}
	if c.From != wantFrom || c.To != wantTo || c.Mid != wantMid {
		t.Errorf("anchors = %+v %+v %+v", c.From, c.Mid, c.To)
	}

	if got, want := c.Path(), "M 550 237.5 Q 325 237.5, 325 195 T 100 152.5"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}

	c1, c2 := c.Controls()
	if c1 != (diagram.Point{X: 325, Y: 237.5}) || c2 != (diagram.Point{X: 325, Y: 152.5}) {
		t.Errorf("controls = %+v %+v", c1, c2)
	}
	if c.RelationshipID != testutil.OrdersRelID || c.Color != "#4CAF50" {
		t.Errorf("connector = %+v", c)
	}
}

func TestConnector_Sample(t *testing.T) {
	c := Connectors(testutil.OrdersCustomers(), DefaultLayout())[0]

	pts := c.Sample(4)
	if len(pts) != 9 {
		t.Fatalf("Sample(4) returned %d points, want 9", len(pts))
	}
	if !near(pts[0], c.From) || !near(pts[4], c.Mid) || !near(pts[8], c.To) {
		t.Errorf("sample endpoints = %+v %+v %+v", pts[0], pts[4], pts[8])
	}
	// The curve stays within the box spanned by its endpoints.
	for _, p := range pts {
		if p.X < c.To.X-1e-9 || p.X > c.From.X+1e-9 || p.Y < c.To.Y-1e-9 || p.Y > c.From.Y+1e-9 {
			t.Errorf("sample %+v escapes the anchor box", p)
		}
	}

	if n := len(c.Sample(0)); n != 3 {
		t.Errorf("Sample(0) returned %d points, want 3", n)
	}
}

func TestConnectors_Markers(t *testing.T) {
	tests := []struct {
		name      string
		card      diagram.Cardinality
		dir       diagram.Direction
		color     string
		wantStart bool
		wantMid   bool
	}{
		{"one_to_one", diagram.OneToOne, diagram.Unidirectional, "#2196F3", false, false},
		{"one_to_many", diagram.OneToMany, diagram.Unidirectional, "#FF9800", false, false},
		{"many_to_one", diagram.ManyToOne, diagram.Unidirectional, "#4CAF50", false, false},
		{"many_to_many", diagram.ManyToMany, diagram.Unidirectional, "#9C27B0", false, true},
		{"bidirectional", diagram.OneToOne, diagram.Bidirectional, "#2196F3", true, false},
		{"bidirectional_many_to_many", diagram.ManyToMany, diagram.Bidirectional, "#9C27B0", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.OrdersCustomers()
			g.Relationships[0].Cardinality = tt.card
			g.Relationships[0].Direction = tt.dir

			c := Connectors(g, DefaultLayout())[0]
			if c.Color != tt.color {
				t.Errorf("color = %s, want %s", c.Color, tt.color)
			}
			if !c.Has(EndArrow) {
				t.Error("missing end arrow")
			}
			if c.Has(StartArrow) != tt.wantStart {
				t.Errorf("start arrow = %v, want %v", c.Has(StartArrow), tt.wantStart)
			}
			if c.Has(MidCircle) != tt.wantMid {
				t.Errorf("mid circle = %v, want %v", c.Has(MidCircle), tt.wantMid)
			}
			for _, m := range c.Markers {
				if m.Color != tt.color {
					t.Errorf("marker %s color = %s", m.Kind, m.Color)
				}
				switch m.Kind {
				case EndArrow:
					if m.At != c.To {
						t.Errorf("end arrow at %+v, want %+v", m.At, c.To)
					}
				case StartArrow:
					if m.At != c.From {
						t.Errorf("start arrow at %+v, want %+v", m.At, c.From)
					}
				case MidCircle:
					if m.At != c.Mid {
						t.Errorf("circle at %+v, want %+v", m.At, c.Mid)
					}
				}
			}
		})
	}
}

func TestConnectors_SkipsDangling(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*diagram.Relationship)
	}{
		{"missing_from_table", func(r *diagram.Relationship) { r.FromTableID = "gone" }},
		{"missing_to_table", func(r *diagram.Relationship) { r.ToTableID = "gone" }},
		{"missing_from_column", func(r *diagram.Relationship) { r.FromColumnID = "gone" }},
		{"missing_to_column", func(r *diagram.Relationship) { r.ToColumnID = "gone" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.OrdersCustomers()
			good := g.Relationships[0]
			bad := good
			bad.ID = "dangling"
			tt.mutate(&bad)
			g.Relationships = []diagram.Relationship{bad, good}

			cs := Connectors(g, DefaultLayout())
			if len(cs) != 1 || cs[0].RelationshipID != good.ID {
				t.Errorf("connectors = %+v", cs)
			}
		})
	}
}

func TestConnectors_Pure(t *testing.T) {
	g := testutil.OrdersCustomers()
	a := Connectors(g, DefaultLayout())
	b := Connectors(g, DefaultLayout())
	if a[0].Path() != b[0].Path() {
		t.Error("same input produced different paths")
	}
	if len(Connectors(diagram.Empty(), DefaultLayout())) != 0 {
		t.Error("empty graph produced connectors")
	}
}

func TestColor_Unknown(t *testing.T) {
	if got := Color("sideways"); got != DefaultColor {
		t.Errorf("Color(unknown) = %s", got)
	}
}

func TestLayout_Anchors(t *testing.T) {
	l := Layout{TableWidth: 200, HeaderHeight: 30, RowHeight: 20}
	tbl := diagram.Table{Position: diagram.Point{X: 10, Y: 5}, Columns: make([]diagram.Column, 3)}

	if got := l.OutAnchor(&tbl, 2); got != (diagram.Point{X: 210, Y: 85}) {
		t.Errorf("OutAnchor = %+v", got)
	}
	if got := l.InAnchor(&tbl, 0); got != (diagram.Point{X: 10, Y: 45}) {
		t.Errorf("InAnchor = %+v", got)
	}
	if got := l.TableHeight(&tbl); got != 90 {
		t.Errorf("TableHeight = %v", got)
	}
}
