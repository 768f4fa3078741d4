package diagram

import (
	"math"
	"testing"

	"github.com/hlop3z/erdpad/internal/alerr"
)

func sampleGraph() Graph {
	return Graph{
		Tables: []Table{
			{
				ID: "t1", Name: "Orders", Position: Point{X: 10, Y: 20},
				Columns: []Column{
					{ID: "c1", Name: "Id", DataType: TypeInt, IsPrimaryKey: true},
					{ID: "c2", Name: "CustomerId", DataType: TypeInt, IsForeignKey: true, ForeignKeyReference: "Customers.Id"},
				},
			},
			{
				ID: "t2", Name: "Customers",
				Columns: []Column{{ID: "c1", Name: "Id", DataType: TypeInt, IsPrimaryKey: true}},
			},
		},
		Relationships: []Relationship{
			{ID: "r1", FromTableID: "t1", FromColumnID: "c2", ToTableID: "t2", ToColumnID: "c1", Cardinality: ManyToOne, Direction: Unidirectional},
		},
	}
}

func TestPointFinite(t *testing.T) {
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{X: 0, Y: 0}, true},
		{Point{X: -12.5, Y: 1e9}, true},
		{Point{X: math.NaN(), Y: 0}, false},
		{Point{X: 0, Y: math.NaN()}, false},
		{Point{X: math.Inf(1), Y: 0}, false},
		{Point{X: 0, Y: math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		if got := tt.p.Finite(); got != tt.want {
			t.Errorf("%+v.Finite() = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestGraphClone_IsDeep(t *testing.T) {
	g := sampleGraph()
	c := g.Clone()

	c.Tables[0].Columns[0].Name = "Changed"
	c.Tables[0].Position.X = 99
	c.Relationships[0].Cardinality = OneToOne

	if g.Tables[0].Columns[0].Name != "Id" {
		t.Error("column edit leaked into original")
	}
	if g.Tables[0].Position.X != 10 {
		t.Error("position edit leaked into original")
	}
	if g.Relationships[0].Cardinality != ManyToOne {
		t.Error("relationship edit leaked into original")
	}
}

func TestEmpty_NonNilCollections(t *testing.T) {
	g := Empty()
	if g.Tables == nil || g.Relationships == nil {
		t.Fatal("Empty() should return non-nil collections")
	}
	c := Graph{}.Clone()
	if c.Tables == nil || c.Relationships == nil {
		t.Fatal("Clone() should return non-nil collections")
	}
}

func TestGraphLookups(t *testing.T) {
	g := sampleGraph()

	if tbl := g.Table("t2"); tbl == nil || tbl.Name != "Customers" {
		t.Errorf("Table(t2) = %v", tbl)
	}
	if g.Table("missing") != nil {
		t.Error("Table(missing) should be nil")
	}
	if tbl := g.TableByName("Orders"); tbl == nil || tbl.ID != "t1" {
		t.Errorf("TableByName(Orders) = %v", tbl)
	}
	if r := g.Relationship("r1"); r == nil {
		t.Error("Relationship(r1) should resolve")
	}

	orders := g.Table("t1")
	if orders.ColumnIndex("c2") != 1 {
		t.Errorf("ColumnIndex(c2) = %d, want 1", orders.ColumnIndex("c2"))
	}
	if pk := orders.PrimaryKey(); pk == nil || pk.ID != "c1" {
		t.Errorf("PrimaryKey() = %v", pk)
	}
	if fks := orders.ForeignKeys(); len(fks) != 1 || fks[0].ID != "c2" {
		t.Errorf("ForeignKeys() = %v", fks)
	}
}

func TestGraphEndpoints(t *testing.T) {
	g := sampleGraph()

	from, to, fc, tc, ok := g.Endpoints(g.Relationships[0])
	if !ok || from.ID != "t1" || to.ID != "t2" || fc != 1 || tc != 0 {
		t.Errorf("Endpoints() = %v %v %d %d %v", from, to, fc, tc, ok)
	}

	dangling := g.Relationships[0]
	dangling.ToColumnID = "gone"
	if _, _, _, _, ok := g.Endpoints(dangling); ok {
		t.Error("dangling column should not resolve")
	}
	dangling = g.Relationships[0]
	dangling.FromTableID = "gone"
	if _, _, _, _, ok := g.Endpoints(dangling); ok {
		t.Error("dangling table should not resolve")
	}
}

func TestGraphDescribe(t *testing.T) {
	g := sampleGraph()
	r := g.Relationships[0]
	if got := g.Describe(r); got != "Orders.CustomerId -> Customers.Id" {
		t.Errorf("Describe() = %q", got)
	}
	r.Direction = Bidirectional
	r.ToTableID = "t9"
	if got := g.Describe(r); got != "Orders.CustomerId <-> t9.c1" {
		t.Errorf("Describe() = %q", got)
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := ParseCardinality("one-to-many"); err != nil {
		t.Errorf("ParseCardinality: %v", err)
	}
	if _, err := ParseCardinality("1:N"); !alerr.Is(err, alerr.ErrInvalidCardinality) {
		t.Errorf("ParseCardinality(1:N) error = %v", err)
	}
	if _, err := ParseDirection("bidirectional"); err != nil {
		t.Errorf("ParseDirection: %v", err)
	}
	if _, err := ParseDirection("both"); !alerr.Is(err, alerr.ErrInvalidDirection) {
		t.Errorf("ParseDirection(both) error = %v", err)
	}
}

func TestParseDataType(t *testing.T) {
	if d, err := ParseDataType("varchar(255)"); err != nil || d != TypeVarcharLong {
		t.Errorf("ParseDataType(varchar(255)) = %q, %v", d, err)
	}

	_, err := ParseDataType("datetim")
	if !alerr.Is(err, alerr.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	var aerr *alerr.Error
	if e, ok := err.(*alerr.Error); ok {
		aerr = e
	}
	if aerr == nil || len(aerr.Helps()) == 0 || aerr.Helps()[0] != "did you mean 'datetime'?" {
		t.Errorf("expected a suggestion, got %v", err)
	}
	if DataType("VARCHAR2(30)").Valid() {
		t.Error("free-text type should not be valid")
	}
}
