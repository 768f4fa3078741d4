package drag

import (
	"testing"

	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/idgen"
	"github.com/hlop3z/erdpad/internal/render"
	"github.com/hlop3z/erdpad/internal/store"
	"github.com/hlop3z/erdpad/internal/testutil"
)

func setup(t *testing.T, opts ...store.Option) (*store.Store, *Controller) {
	t.Helper()
	s := store.New(append([]store.Option{store.WithIDGenerator(idgen.NewSequence())}, opts...)...)
	s.Load(testutil.OrdersCustomers())
	return s, New(s, nil, nil)
}

func position(t *testing.T, s *store.Store, id string) diagram.Point {
	t.Helper()
	tbl, ok := s.Table(id)
	if !ok {
		t.Fatalf("table %s missing", id)
	}
	return tbl.Position
}

func TestDragContainment(t *testing.T) {
	s, c := setup(t)
	start := position(t, s, testutil.CustomersID)
	other := position(t, s, testutil.OrdersID)

	grab := diagram.Point{X: 130, Y: 115} // inside the Customers header
	if !c.PointerDown(grab, Hit{Region: Header, TableID: testutil.CustomersID}) {
		t.Fatal("header press did not start a drag")
	}

	steps := []diagram.Point{{X: 5, Y: 0}, {X: 35, Y: -20}, {X: -12.5, Y: 40}}
	for _, d := range steps {
		c.PointerMove(grab.Add(d))
		if got, want := position(t, s, testutil.CustomersID), start.Add(d); got != want {
			t.Errorf("after move by %+v position = %+v, want %+v", d, got, want)
		}
	}

	// Moving across the Orders body still moves only Customers.
	over := diagram.Point{X: 450, Y: 230}
	c.PointerMove(over)
	if got := position(t, s, testutil.OrdersID); got != other {
		t.Errorf("Orders moved to %+v while dragged over", got)
	}
	if got, want := position(t, s, testutil.CustomersID), start.Add(over.Sub(grab)); got != want {
		t.Errorf("Customers position = %+v, want %+v", got, want)
	}

	c.PointerUp(over)
	if c.State() != Idle {
		t.Errorf("state after pointer-up = %s", c.State())
	}
}

func TestPointerDown_NonHeader(t *testing.T) {
	tests := []struct {
		name string
		hit  Hit
	}{
		{"body", Hit{Region: Body, TableID: testutil.OrdersID}},
		{"canvas", Hit{Region: Canvas}},
		{"unknown_table", Hit{Region: Header, TableID: "ghost"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, c := setup(t)
			before := s.Graph()

			if c.PointerDown(diagram.Point{X: 450, Y: 230}, tt.hit) {
				t.Fatal("drag started")
			}
			c.PointerMove(diagram.Point{X: 900, Y: 900})
			c.PointerUp(diagram.Point{X: 900, Y: 900})

			after := s.Graph()
			for i := range before.Tables {
				if before.Tables[i].Position != after.Tables[i].Position {
					t.Errorf("table %s moved", before.Tables[i].ID)
				}
			}
			if c.State() != Idle {
				t.Errorf("state = %s", c.State())
			}
		})
	}
}

func TestPointerUp_Flushes(t *testing.T) {
	s, c := setup(t, store.WithPositionBatching(true))
	var notified int
	s.Subscribe(func(diagram.Graph) { notified++ })

	c.PointerDown(diagram.Point{X: 110, Y: 110}, Hit{Region: Header, TableID: testutil.CustomersID})
	for i := range 10 {
		c.PointerMove(diagram.Point{X: 110 + float64(i), Y: 110})
	}
	if notified != 0 {
		t.Fatalf("notified %d times during a batched drag", notified)
	}
	c.PointerUp(diagram.Point{})
	if notified != 1 {
		t.Errorf("notified %d times after pointer-up, want 1", notified)
	}
}

func TestTransformQueriedPerEvent(t *testing.T) {
	s, c := setup(t)
	vp := &Viewport{Zoom: 1}
	c.SetTransform(TransformFunc(func(p diagram.Point) diagram.Point { return vp.ScreenToLocal(p) }))

	c.PointerDown(diagram.Point{X: 110, Y: 110}, Hit{Region: Header, TableID: testutil.CustomersID})
	// The canvas pans by 50 mid-drag; the pointer stays still on screen.
	vp.Pan = diagram.Point{X: 50}
	c.PointerMove(diagram.Point{X: 110, Y: 110})

	if got := position(t, s, testutil.CustomersID); got != (diagram.Point{X: 50, Y: 100}) {
		t.Errorf("position = %+v, want the pan applied", got)
	}
}

func TestSelection(t *testing.T) {
	_, c := setup(t)
	c.PointerDown(diagram.Point{X: 110, Y: 110}, Hit{Region: Header, TableID: testutil.CustomersID})
	if c.Selected() != testutil.CustomersID {
		t.Errorf("selected = %q", c.Selected())
	}

	c.CanvasClick()
	if c.Selected() != "" {
		t.Error("canvas click did not clear selection")
	}
	if c.State() != Dragging {
		t.Error("canvas click changed drag state")
	}
	if id, ok := c.Dragged(); !ok || id != testutil.CustomersID {
		t.Errorf("Dragged() = %q, %v", id, ok)
	}
}

func TestTableDeletedMidDrag(t *testing.T) {
	s, c := setup(t)
	c.PointerDown(diagram.Point{X: 110, Y: 110}, Hit{Region: Header, TableID: testutil.CustomersID})
	s.DeleteTable(testutil.CustomersID)

	c.PointerMove(diagram.Point{X: 200, Y: 200})
	if c.State() != Idle {
		t.Errorf("state = %s, want idle once the table is gone", c.State())
	}
}

func TestHitTest(t *testing.T) {
	g := testutil.OrdersCustomers()
	l := render.DefaultLayout()

	tests := []struct {
		name string
		p    diagram.Point
		want Hit
	}{
		{"customers_header", diagram.Point{X: 120, Y: 120}, Hit{Region: Header, TableID: testutil.CustomersID}},
		{"customers_row", diagram.Point{X: 120, Y: 160}, Hit{Region: Body, TableID: testutil.CustomersID}},
		{"orders_header_edge", diagram.Point{X: 400, Y: 200}, Hit{Region: Header, TableID: testutil.OrdersID}},
		{"below_orders", diagram.Point{X: 450, Y: 251}, Hit{Region: Canvas}},
		{"empty", diagram.Point{X: 0, Y: 0}, Hit{Region: Canvas}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HitTest(g, l, tt.p); got != tt.want {
				t.Errorf("HitTest(%+v) = %+v, want %+v", tt.p, got, tt.want)
			}
		})
	}
}

func TestHitTest_TopmostWins(t *testing.T) {
	g := diagram.Graph{Tables: []diagram.Table{
		{ID: "under", Position: diagram.Point{X: 0, Y: 0}},
		{ID: "over", Position: diagram.Point{X: 10, Y: 10}},
	}}
	if got := HitTest(g, render.DefaultLayout(), diagram.Point{X: 20, Y: 20}); got.TableID != "over" {
		t.Errorf("hit %q, want the later table", got.TableID)
	}
}

func TestViewport(t *testing.T) {
	v := Viewport{Pan: diagram.Point{X: 10, Y: 20}, Zoom: 2}
	local := v.ScreenToLocal(diagram.Point{X: 30, Y: 40})
	if local != (diagram.Point{X: 10, Y: 10}) {
		t.Errorf("ScreenToLocal = %+v", local)
	}
	if back := v.LocalToScreen(local); back != (diagram.Point{X: 30, Y: 40}) {
		t.Errorf("LocalToScreen = %+v", back)
	}
	if got := (Viewport{}).ScreenToLocal(diagram.Point{X: 3, Y: 4}); got != (diagram.Point{X: 3, Y: 4}) {
		t.Errorf("zero viewport = %+v", got)
	}
}
