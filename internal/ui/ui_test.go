package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/drag"
	"github.com/hlop3z/erdpad/internal/idgen"
	"github.com/hlop3z/erdpad/internal/render"
	"github.com/hlop3z/erdpad/internal/store"
	"github.com/hlop3z/erdpad/internal/testutil"
)

// ===========================================================================
// Helpers
// ===========================================================================

func fixtureStore() *store.Store {
	s := store.New(store.WithIDGenerator(idgen.NewSequence()))
	s.Load(testutil.OrdersCustomers())
	return s
}

// drawCanvas draws c on an 80x24 simulation screen. The canvas border puts
// the inner rectangle at (1, 1).
func drawCanvas(t *testing.T, c *Canvas) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)
	c.SetRect(0, 0, 80, 24)
	c.Draw(screen)
	return screen
}

func runeAt(screen tcell.Screen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func rowText(screen tcell.Screen, y, from, to int) string {
	var b strings.Builder
	for x := from; x < to; x++ {
		b.WriteRune(runeAt(screen, x, y))
	}
	return b.String()
}

func mouse(c *Canvas, action tview.MouseAction, x, y int) bool {
	consumed, _ := c.MouseHandler()(action, tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone), func(tview.Primitive) {})
	return consumed
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

// ===========================================================================
// Canvas Drawing Tests
// ===========================================================================

func TestCanvas_DrawTables(t *testing.T) {
	c := NewCanvas(fixtureStore(), render.DefaultLayout(), nil)
	screen := drawCanvas(t, c)

	// Customers at (100,100) -> cell (10,4), Orders at (400,160) -> cell (40,6).
	tests := []struct {
		name string
		x, y int
		want rune
	}{
		{"customers corner", 11, 5, '┌'},
		{"customers name", 12, 5, 'C'},
		{"customers rule", 11, 6, '├'},
		{"customers pk glyph", 12, 7, GlyphKey},
		{"customers right edge", 25, 5, '┐'},
		{"customers bottom", 11, 9, '└'},
		{"orders corner", 41, 7, '┌'},
		{"orders name", 42, 7, 'O'},
		{"orders fk glyph", 42, 10, GlyphEndArrow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runeAt(screen, tt.x, tt.y); got != tt.want {
				t.Errorf("cell (%d,%d) = %q, want %q", tt.x, tt.y, got, tt.want)
			}
		})
	}

	if row := rowText(screen, 8, 13, 24); !strings.HasPrefix(row, "Email varch") {
		t.Errorf("customers column row = %q", row)
	}
}

func TestCanvas_DrawConnector(t *testing.T) {
	c := NewCanvas(fixtureStore(), render.DefaultLayout(), nil)
	screen := drawCanvas(t, c)

	// Orders.CustomerId leaves the right edge of Orders at (550, 237.5).
	r, _, style, _ := screen.GetContent(56, 10)
	if r != GlyphPath {
		t.Errorf("connector start = %q, want %q", r, GlyphPath)
	}
	if fg, _, _ := style.Decompose(); fg != CardinalityColor(diagram.ManyToOne) {
		t.Errorf("connector colour = %v, want many-to-one colour", fg)
	}

	// It enters Customers.Id at (100, 152.5); the arrow sits left of the box.
	if got := runeAt(screen, 10, 7); got != GlyphEndArrow {
		t.Errorf("end arrow = %q", got)
	}
}

func TestCanvas_DanglingRelationshipSkipped(t *testing.T) {
	s := fixtureStore()
	g := s.Graph()
	g.Relationships[0].ToTableID = "missing"
	s.Load(g)

	screen := drawCanvas(t, NewCanvas(s, render.DefaultLayout(), nil))
	if got := runeAt(screen, 56, 10); got == GlyphPath {
		t.Error("dangling relationship should not be drawn")
	}
}

func TestCanvas_Pan(t *testing.T) {
	c := NewCanvas(fixtureStore(), render.DefaultLayout(), nil)
	c.Pan(2, 1)
	screen := drawCanvas(t, c)

	if got := runeAt(screen, 13, 6); got != '┌' {
		t.Errorf("panned customers corner = %q", got)
	}
}

func TestCanvas_SelectedBorder(t *testing.T) {
	c := NewCanvas(fixtureStore(), render.DefaultLayout(), nil)
	c.Select(testutil.CustomersID)
	screen := drawCanvas(t, c)

	_, _, style, _ := screen.GetContent(11, 5)
	if fg, _, _ := style.Decompose(); fg != Theme.Selection {
		t.Errorf("selected border = %v, want %v", fg, Theme.Selection)
	}
}

// ===========================================================================
// Canvas Mouse Tests
// ===========================================================================

func TestCanvas_DragHeader(t *testing.T) {
	s := fixtureStore()
	c := NewCanvas(s, render.DefaultLayout(), nil)
	c.SetRect(0, 0, 80, 24)

	notified := 0
	s.Subscribe(func(diagram.Graph) { notified++ })

	if !mouse(c, tview.MouseLeftDown, 15, 5) {
		t.Fatal("header press not consumed")
	}
	if id, ok := c.Controller().Dragged(); !ok || id != testutil.CustomersID {
		t.Fatalf("Dragged() = %q, %v", id, ok)
	}

	mouse(c, tview.MouseMove, 25, 9)
	mouse(c, tview.MouseLeftUp, 25, 9)

	tbl, _ := s.Table(testutil.CustomersID)
	if tbl.Position != (diagram.Point{X: 200, Y: 200}) {
		t.Errorf("position = %+v, want (200,200)", tbl.Position)
	}
	if c.Controller().State() != drag.Idle {
		t.Error("drag should end on release")
	}
	if c.Selected() != testutil.CustomersID {
		t.Errorf("Selected() = %q", c.Selected())
	}
	if notified != 1 {
		t.Errorf("notifications = %d, want 1", notified)
	}
}

func TestCanvas_BodyPressDoesNotDrag(t *testing.T) {
	s := fixtureStore()
	c := NewCanvas(s, render.DefaultLayout(), nil)
	c.SetRect(0, 0, 80, 24)

	mouse(c, tview.MouseLeftDown, 15, 7)
	mouse(c, tview.MouseMove, 30, 12)
	mouse(c, tview.MouseLeftUp, 30, 12)

	tbl, _ := s.Table(testutil.CustomersID)
	if tbl.Position != (diagram.Point{X: 100, Y: 100}) {
		t.Errorf("body press moved the table to %+v", tbl.Position)
	}
	if c.Selected() != testutil.CustomersID {
		t.Errorf("body press should select, got %q", c.Selected())
	}

	mouse(c, tview.MouseLeftDown, 70, 20)
	if c.Selected() != "" {
		t.Errorf("canvas click should clear selection, got %q", c.Selected())
	}
}

func TestCanvas_SelectNext(t *testing.T) {
	c := NewCanvas(fixtureStore(), render.DefaultLayout(), nil)

	var seen []string
	c.SetSelectedFunc(func(id string) { seen = append(seen, id) })
	c.SelectNext()
	c.SelectNext()
	c.SelectNext()

	want := []string{testutil.CustomersID, testutil.OrdersID, testutil.CustomersID}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Errorf("selection order = %v, want %v", seen, want)
	}
}

// ===========================================================================
// Editor Tests
// ===========================================================================

func TestEditor_AddOpensDraft(t *testing.T) {
	s := store.New(store.WithIDGenerator(idgen.NewSequence()))
	e := NewEditor(s, EditorOptions{Title: "shop.uml.json"})

	if got := e.app.GetInputCapture()(key('a')); got != nil {
		t.Error("'a' should be consumed")
	}
	if n := len(s.Graph().Tables); n != 1 {
		t.Fatalf("tables = %d, want 1", n)
	}
	if e.FrontPage() != PageDraft {
		t.Errorf("front page = %q, want %q", e.FrontPage(), PageDraft)
	}
	// Keys belong to the form while it is open.
	if got := e.app.GetInputCapture()(key('q')); got == nil {
		t.Error("'q' should reach the form")
	}
}

func TestEditor_DeleteAsksFirst(t *testing.T) {
	s := fixtureStore()
	e := NewEditor(s, EditorOptions{})

	e.app.GetInputCapture()(key('d'))
	if e.FrontPage() != PageCanvas {
		t.Error("delete without selection should not open a dialog")
	}

	e.canvas.Select(testutil.OrdersID)
	e.app.GetInputCapture()(key('d'))
	if e.FrontPage() != PageConfirm {
		t.Errorf("front page = %q, want %q", e.FrontPage(), PageConfirm)
	}
	if len(s.Graph().Tables) != 2 {
		t.Error("nothing is deleted before confirmation")
	}
}

func TestEditor_Save(t *testing.T) {
	calls := 0
	e := NewEditor(fixtureStore(), EditorOptions{Save: func() error {
		calls++
		if calls > 1 {
			return errors.New("disk full")
		}
		return nil
	}})

	e.app.GetInputCapture()(key('s'))
	if !strings.Contains(e.status.GetText(true), "saved") {
		t.Errorf("status = %q", e.status.GetText(true))
	}
	e.app.GetInputCapture()(key('s'))
	if !strings.Contains(e.status.GetText(true), "disk full") {
		t.Errorf("status = %q", e.status.GetText(true))
	}
}

func TestEditor_DraftForm(t *testing.T) {
	s := fixtureStore()
	e := NewEditor(s, EditorOptions{})

	d, err := s.Edit(testutil.CustomersID)
	testutil.AssertNoError(t, err)
	form := tview.NewForm()
	e.fillDraftForm(form, d)

	// Table name plus five fields per column.
	if got := form.GetFormItemCount(); got != 1+5*2 {
		t.Fatalf("form items = %d", got)
	}
	if got := form.GetButtonCount(); got != 4 {
		t.Fatalf("buttons = %d", got)
	}

	form.GetFormItem(0).(*tview.InputField).SetText("Clients")
	if tbl, _ := s.Table(testutil.CustomersID); tbl.Name != "Customers" {
		t.Error("editing the form must not touch the store before save")
	}

	// "Add column" rebuilds the form with one more column.
	form.GetButton(0).InputHandler()(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), func(tview.Primitive) {})
	if got := form.GetFormItemCount(); got != 1+5*3 {
		t.Errorf("form items after add = %d", got)
	}

	form.GetButton(2).InputHandler()(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), func(tview.Primitive) {})
	tbl, _ := s.Table(testutil.CustomersID)
	if tbl.Name != "Clients" || len(tbl.Columns) != 3 {
		t.Errorf("saved table = %s with %d columns", tbl.Name, len(tbl.Columns))
	}
}

func TestTypeOptions(t *testing.T) {
	options, i := typeOptions(diagram.TypeText)
	if options[i] != string(diagram.TypeText) || len(options) != len(diagram.Vocabulary) {
		t.Errorf("known type: index %d of %d", i, len(options))
	}

	options, i = typeOptions("money")
	if options[i] != "money" || len(options) != len(diagram.Vocabulary)+1 {
		t.Errorf("unknown type should be appended, got index %d of %d", i, len(options))
	}
}

// ===========================================================================
// Prompt Tests
// ===========================================================================

func TestConfirm(t *testing.T) {
	tests := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"yes\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"", false, false},
		{"maybe\n", true, false},
	}
	for _, tt := range tests {
		var out strings.Builder
		if got := Confirm(strings.NewReader(tt.input), &out, "Delete?", tt.defaultYes); got != tt.want {
			t.Errorf("Confirm(%q, %v) = %v, want %v", tt.input, tt.defaultYes, got, tt.want)
		}
		if !strings.Contains(out.String(), "Delete?") {
			t.Errorf("prompt not written: %q", out.String())
		}
	}
}
