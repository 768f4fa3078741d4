package erdpad

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlop3z/erdpad/internal/testutil"
)

// recorder collects host-out notifications.
type recorder struct {
	docs []string
}

func (r *recorder) onChange(doc string) { r.docs = append(r.docs, doc) }

func (r *recorder) last() string {
	if len(r.docs) == 0 {
		return ""
	}
	return r.docs[len(r.docs)-1]
}

func newDesigner(t *testing.T, doc string, opts ...Option) (*Designer, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{WithIDGenerator(SequenceIDs())}, opts...)
	d := New(doc, rec.onChange, opts...)
	t.Cleanup(d.Close)
	return d, rec
}

// addTable adds a table through a draft with the given columns.
// Each column is "Name type" or "Name type -> Table.Column".
func addTable(t *testing.T, d *Designer, name string, columns ...string) Table {
	t.Helper()
	draft := d.AddTable()
	draft.SetName(name)
	for _, spec := range columns {
		ref := ""
		if before, after, ok := strings.Cut(spec, " -> "); ok {
			spec, ref = before, after
		}
		colName, colType, _ := strings.Cut(spec, " ")
		col := draft.AddColumn()
		require.NoError(t, draft.UpdateColumn(col.ID, func(c *Column) {
			c.Name = colName
			c.DataType = DataType(colType)
			c.IsForeignKey = ref != ""
			c.ForeignKeyReference = ref
		}))
	}
	id := draft.ID()
	require.NoError(t, d.SaveDraft())
	tbl, ok := d.Table(id)
	require.True(t, ok)
	return tbl
}

// ---------------------------------------------------------------------------
// Host in / host out
// ---------------------------------------------------------------------------

func TestNew_HydratesWithoutNotifying(t *testing.T) {
	d, rec := newDesigner(t, testutil.OrdersCustomersJSON)

	assert.Empty(t, rec.docs)
	assert.Equal(t, testutil.OrdersCustomers(), d.Graph())
}

func TestNew_UnreadableDocumentStartsEmpty(t *testing.T) {
	for _, doc := range []string{"", "   ", "{not json", `{"tables": 3}`} {
		d, rec := newDesigner(t, doc)
		assert.Empty(t, d.Graph().Tables, "doc %q", doc)
		assert.Empty(t, rec.docs)
	}
}

func TestEveryCommitNotifiesOnce(t *testing.T) {
	d, rec := newDesigner(t, "")

	draft := d.AddTable()
	require.Len(t, rec.docs, 1, "adding a table is visible at once")
	assert.Contains(t, rec.last(), `"name": "NewTable"`)

	draft.SetName("Customers")
	assert.Len(t, rec.docs, 1, "draft edits stay private")

	require.NoError(t, d.SaveDraft())
	require.Len(t, rec.docs, 2)
	assert.Contains(t, rec.last(), `"name": "Customers"`)

	err := d.SaveDraft()
	assert.True(t, IsCode(err, CodeNoDraft))
}

func TestAddTable_Defaults(t *testing.T) {
	d, _ := newDesigner(t, "")
	draft := d.AddTable()

	tbl := draft.Table()
	assert.Equal(t, "NewTable", tbl.Name)
	assert.Equal(t, Point{X: 100, Y: 100}, tbl.Position)
	require.Len(t, tbl.Columns, 1)
	assert.Equal(t, "Id", tbl.Columns[0].Name)
	assert.True(t, tbl.Columns[0].IsPrimaryKey)
	assert.Equal(t, draft.ID(), d.Selected())
}

func TestCancelDraft(t *testing.T) {
	d, rec := newDesigner(t, testutil.OrdersCustomersJSON)

	draft, err := d.EditTable(testutil.CustomersID)
	require.NoError(t, err)
	draft.SetName("Clients")
	d.CancelDraft()

	assert.Nil(t, d.Draft())
	tbl, _ := d.Table(testutil.CustomersID)
	assert.Equal(t, "Customers", tbl.Name)
	assert.Empty(t, rec.docs)
}

func TestEditTable_Unknown(t *testing.T) {
	d, _ := newDesigner(t, "")
	_, err := d.EditTable("nope")
	assert.Equal(t, CodeTableNotFound, ErrorCode(err))
}

// ---------------------------------------------------------------------------
// Inference scenarios
// ---------------------------------------------------------------------------

func TestOrdersCustomers(t *testing.T) {
	d, _ := newDesigner(t, "")

	customers := addTable(t, d, "Customers")
	orders := addTable(t, d, "Orders", "CustomerId int -> Customers.Id")

	rels := d.Relationships()
	require.Len(t, rels, 1)
	r := rels[0]
	assert.Equal(t, orders.ID, r.FromTableID)
	assert.Equal(t, orders.Columns[1].ID, r.FromColumnID)
	assert.Equal(t, customers.ID, r.ToTableID)
	assert.Equal(t, customers.Columns[0].ID, r.ToColumnID)
	assert.Equal(t, ManyToOne, r.Cardinality)
	assert.Equal(t, Unidirectional, r.Direction)
}

func TestInferenceMiss(t *testing.T) {
	d, _ := newDesigner(t, "")
	addTable(t, d, "Orders", "CustomerId int -> Customers.Id")

	assert.Empty(t, d.Relationships())
}

func TestForwardReferenceNeedsRecommit(t *testing.T) {
	d, _ := newDesigner(t, "")
	orders := addTable(t, d, "Orders", "CustomerId int -> Customers.Id")
	addTable(t, d, "Customers")
	assert.Empty(t, d.Relationships(), "inference only runs for the committed table")

	d.CommitTable(orders)
	assert.Len(t, d.Relationships(), 1)
}

func TestInferenceDeterminism(t *testing.T) {
	d, _ := newDesigner(t, testutil.OrdersCustomersJSON)
	orders, _ := d.Table(testutil.OrdersID)

	d.CommitTable(orders)
	first := d.Relationships()
	d.CommitTable(orders)
	second := d.Relationships()

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	first[0].ID, second[0].ID = "", ""
	assert.Equal(t, first, second)
}

func TestStaleKindReset(t *testing.T) {
	d, _ := newDesigner(t, testutil.OrdersCustomersJSON)

	require.NoError(t, d.SetRelationshipKind(testutil.OrdersRelID, OneToOne, Bidirectional))
	r := d.Relationships()[0]
	assert.Equal(t, OneToOne, r.Cardinality)
	assert.Equal(t, Bidirectional, r.Direction)

	_, err := d.EditTable(testutil.OrdersID)
	require.NoError(t, err)
	require.NoError(t, d.SaveDraft())

	r = d.Relationships()[0]
	assert.Equal(t, ManyToOne, r.Cardinality)
	assert.Equal(t, Unidirectional, r.Direction)
}

func TestSetRelationshipKind_Errors(t *testing.T) {
	d, rec := newDesigner(t, testutil.OrdersCustomersJSON)

	assert.True(t, IsCode(d.SetRelationshipKind(testutil.OrdersRelID, "lots", Unidirectional), CodeInvalidCardinality))
	assert.True(t, IsCode(d.SetRelationshipKind(testutil.OrdersRelID, OneToOne, "sideways"), CodeInvalidDirection))
	assert.True(t, IsCode(d.SetRelationshipKind("rel_9", OneToOne, Unidirectional), CodeRelationshipNotFound))
	assert.Empty(t, rec.docs)
}

func TestCascadeDelete(t *testing.T) {
	d, rec := newDesigner(t, testutil.OrdersCustomersJSON)

	assert.True(t, d.DeleteTable(testutil.CustomersID))
	assert.Empty(t, d.Relationships())
	assert.Len(t, d.Graph().Tables, 1)
	assert.Len(t, rec.docs, 1)

	assert.False(t, d.DeleteTable(testutil.CustomersID))
	assert.Len(t, rec.docs, 1)
}

func TestDeleteTable_DiscardsDraft(t *testing.T) {
	d, _ := newDesigner(t, testutil.OrdersCustomersJSON)
	_, err := d.EditTable(testutil.OrdersID)
	require.NoError(t, err)

	d.DeleteTable(testutil.OrdersID)
	assert.Nil(t, d.Draft())
}

// ---------------------------------------------------------------------------
// Pointer input
// ---------------------------------------------------------------------------

func TestDragHeader(t *testing.T) {
	d, rec := newDesigner(t, testutil.OrdersCustomersJSON)

	require.True(t, d.PointerDown(Point{X: 120, Y: 110}))
	d.PointerMove(Point{X: 170, Y: 150})
	d.PointerMove(Point{X: 220, Y: 210})
	d.PointerUp(Point{X: 220, Y: 210})

	tbl, _ := d.Table(testutil.CustomersID)
	assert.Equal(t, Point{X: 200, Y: 200}, tbl.Position)
	assert.Len(t, rec.docs, 2, "one notification per move")
	assert.Equal(t, testutil.CustomersID, d.Selected())
	_, dragging := d.Dragging()
	assert.False(t, dragging)
}

func TestDragHeader_Batched(t *testing.T) {
	d, rec := newDesigner(t, testutil.OrdersCustomersJSON, WithPositionBatching())

	require.True(t, d.PointerDown(Point{X: 120, Y: 110}))
	d.PointerMove(Point{X: 170, Y: 150})
	d.PointerMove(Point{X: 220, Y: 210})
	assert.Empty(t, rec.docs)

	d.PointerUp(Point{X: 220, Y: 210})
	assert.Len(t, rec.docs, 1)
}

func TestDragContainment(t *testing.T) {
	d, rec := newDesigner(t, testutil.OrdersCustomersJSON)

	assert.False(t, d.PointerDown(Point{X: 120, Y: 160}), "body press")
	d.PointerMove(Point{X: 300, Y: 300})
	d.PointerUp(Point{X: 300, Y: 300})
	assert.Equal(t, testutil.CustomersID, d.Selected())

	assert.False(t, d.PointerDown(Point{X: 900, Y: 900}), "canvas press")
	assert.Equal(t, "", d.Selected())

	tbl, _ := d.Table(testutil.CustomersID)
	assert.Equal(t, Point{X: 100, Y: 100}, tbl.Position)
	assert.Empty(t, rec.docs)
}

func TestDragWithViewport(t *testing.T) {
	d, _ := newDesigner(t, testutil.OrdersCustomersJSON, WithTransform(Viewport{Pan: Point{X: 50, Y: 0}, Zoom: 2}))

	// Local (120,110) is screen (290,220) under pan 50 and zoom 2.
	require.True(t, d.PointerDown(Point{X: 290, Y: 220}))
	d.PointerMove(Point{X: 390, Y: 420})
	d.PointerUp(Point{X: 390, Y: 420})

	tbl, _ := d.Table(testutil.CustomersID)
	assert.Equal(t, Point{X: 150, Y: 200}, tbl.Position)
}

func TestMoveTable(t *testing.T) {
	d, rec := newDesigner(t, testutil.OrdersCustomersJSON, WithPositionBatching())

	assert.True(t, d.MoveTable(testutil.OrdersID, 10, 20))
	assert.Len(t, rec.docs, 1)
	assert.False(t, d.MoveTable("nope", 0, 0))
}

func TestMoveTable_NonFiniteKeepsDocument(t *testing.T) {
	d, rec := newDesigner(t, testutil.OrdersCustomersJSON)
	before, _ := d.Table(testutil.OrdersID)

	assert.False(t, d.MoveTable(testutil.OrdersID, math.NaN(), 5))
	assert.False(t, d.MoveTable(testutil.OrdersID, 5, math.Inf(1)))
	assert.Empty(t, rec.docs)

	after, _ := d.Table(testutil.OrdersID)
	assert.Equal(t, before.Position, after.Position)

	// The next move still emits a serializable document.
	require.True(t, d.MoveTable(testutil.OrdersID, 7, 8))
	require.Len(t, rec.docs, 1)
	assert.Contains(t, rec.last(), `"x": 7`)
}

// ---------------------------------------------------------------------------
// Drawing
// ---------------------------------------------------------------------------

func TestConnectors(t *testing.T) {
	d, _ := newDesigner(t, testutil.OrdersCustomersJSON)

	conns := d.Connectors()
	require.Len(t, conns, 1)
	assert.Equal(t, Point{X: 550, Y: 237.5}, conns[0].From)
	assert.Equal(t, Point{X: 100, Y: 152.5}, conns[0].To)
	assert.Equal(t, "#4CAF50", conns[0].Color)
}

func TestWriteSVG(t *testing.T) {
	d, _ := newDesigner(t, testutil.OrdersCustomersJSON)

	var buf bytes.Buffer
	require.NoError(t, d.WriteSVG(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "<svg"))
	assert.Contains(t, buf.String(), "Customers")
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

func TestSaveLoadRoundTrip(t *testing.T) {
	d, _ := newDesigner(t, testutil.OrdersCustomersJSON)

	var buf bytes.Buffer
	require.NoError(t, d.SaveDiagram(&buf))
	assert.JSONEq(t, testutil.OrdersCustomersJSON, buf.String())

	other, rec := newDesigner(t, "")
	require.NoError(t, other.LoadDiagram(&buf))
	assert.Equal(t, d.Graph(), other.Graph())
	assert.Len(t, rec.docs, 1)

	fp1, err := d.Fingerprint()
	require.NoError(t, err)
	fp2, err := other.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
}

func TestLoadDiagram_KeepsGraphOnError(t *testing.T) {
	d, rec := newDesigner(t, testutil.OrdersCustomersJSON)
	before := d.Graph()

	for _, doc := range []string{
		"{broken",
		`{"tables": [], "relationships": [], "extra": 1}`,
		`{"tables": [{"id": "t", "name": "T", "x": 0, "y": 0, "columns": []}], "relationships": []}`,
	} {
		err := d.LoadDocument(doc)
		require.Error(t, err, doc)
		assert.Equal(t, CodeDocumentInvalid, ErrorCode(err), doc)
	}
	assert.Equal(t, before, d.Graph())
	assert.Empty(t, rec.docs)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSaveDiagram_WriteError(t *testing.T) {
	d, _ := newDesigner(t, testutil.OrdersCustomersJSON)
	assert.True(t, IsCode(d.SaveDiagram(failingWriter{}), CodeDocumentWrite))
}

func TestDiagramFileName(t *testing.T) {
	tests := []struct {
		base, want string
	}{
		{"shop", "shop.uml.json"},
		{"shop.uml.json", "shop.uml.json"},
		{"shop.json", "shop.uml.json"},
		{"", "diagram.uml.json"},
		{"dir/shop", "dir/shop.uml.json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DiagramFileName(tt.base), tt.base)
	}
}

// ---------------------------------------------------------------------------
// Scripts
// ---------------------------------------------------------------------------

const shopScript = `
const orders = table("Orders", {x: 400, y: 160});
orders.column("Id", "int", {pk: true, autoIncrement: true});
orders.column("CustomerId", "int", {fk: "Customers.Id"});

table("Customers").column("Id", "int", {pk: true});
`

func TestRunScript(t *testing.T) {
	d, rec := newDesigner(t, "")

	ids, err := d.RunScript("shop.js", shopScript)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	rels := d.Relationships()
	require.Len(t, rels, 1)
	assert.Equal(t, ids[0], rels[0].FromTableID)
	assert.Equal(t, ids[1], rels[0].ToTableID)
	assert.NotEmpty(t, rec.docs)
}

func TestRunScript_Error(t *testing.T) {
	d, rec := newDesigner(t, "")

	_, err := d.RunScriptReader("bad.js", strings.NewReader(`table("T").column("A", "nope");`))
	assert.True(t, IsCode(err, CodeScript))
	assert.Empty(t, d.Graph().Tables)
	assert.Empty(t, rec.docs)
}

func TestClose_StopsNotifications(t *testing.T) {
	d, rec := newDesigner(t, "")
	d.Close()
	d.AddTable()
	assert.Empty(t, rec.docs)
}
