package codec

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/testutil"
)

func TestSerialize_Format(t *testing.T) {
	got, err := Serialize(testutil.OrdersCustomers())
	testutil.AssertNoError(t, err)
	if string(got) != testutil.OrdersCustomersJSON {
		t.Errorf("Serialize mismatch:\ngot:\n%s\n\nwant:\n%s", got, testutil.OrdersCustomersJSON)
	}
}

func TestSerialize_Empty(t *testing.T) {
	got, err := Serialize(diagram.Graph{})
	testutil.AssertNoError(t, err)
	want := "{\n  \"tables\": [],\n  \"relationships\": []\n}"
	if string(got) != want {
		t.Errorf("Serialize(empty) = %q, want %q", got, want)
	}
}

func TestSerialize_NoHTMLEscaping(t *testing.T) {
	g := diagram.Graph{Tables: []diagram.Table{{ID: "t", Name: "A<B>&C", Columns: []diagram.Column{{ID: "c"}}}}}
	got, err := Serialize(g)
	testutil.AssertNoError(t, err)
	if !strings.Contains(string(got), `"name": "A<B>&C"`) {
		t.Errorf("names should be written verbatim:\n%s", got)
	}
}

func TestRoundTrip(t *testing.T) {
	graphs := map[string]diagram.Graph{
		"orders_customers": testutil.OrdersCustomers(),
		"empty":            diagram.Empty(),
		"annotated": func() diagram.Graph {
			g := testutil.OrdersCustomers()
			g.Relationships[0].Cardinality = diagram.ManyToMany
			g.Relationships[0].Direction = diagram.Bidirectional
			g.Tables[0].Columns[1].IsGuidGenerated = true
			g.Tables[1].Position = diagram.Point{X: -12.75, Y: 0.5}
			return g
		}(),
	}

	for name, g := range graphs {
		t.Run(name, func(t *testing.T) {
			data, err := Serialize(g)
			testutil.AssertNoError(t, err)

			back := Deserialize(data, nil)
			if !reflect.DeepEqual(back, g) {
				t.Errorf("round trip mismatch:\ngot:  %+v\nwant: %+v", back, g)
			}

			imported, err := Import(data)
			testutil.AssertNoError(t, err)
			if !reflect.DeepEqual(imported, g) {
				t.Errorf("import mismatch:\ngot:  %+v\nwant: %+v", imported, g)
			}
		})
	}
}

func TestDeserialize_Malformed(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	g := Deserialize([]byte(`{"tables": [ {"id": "t1", "columns": [`), logger)

	if len(g.Tables) != 0 || len(g.Relationships) != 0 || g.Tables == nil {
		t.Errorf("malformed input produced %+v, want an empty graph", g)
	}
	if !strings.Contains(logs.String(), "level=WARN") {
		t.Errorf("expected a warning, logs:\n%s", logs.String())
	}
}

func TestDeserialize_EmptyInput(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	for _, in := range []string{"", "   \n"} {
		g := Deserialize([]byte(in), logger)
		if len(g.Tables) != 0 {
			t.Errorf("Deserialize(%q) = %+v", in, g)
		}
	}
	if logs.Len() != 0 {
		t.Errorf("empty input should not warn:\n%s", logs.String())
	}
}

func TestDeserialize_Lenient(t *testing.T) {
	doc := `{
  "version": 3,
  "tables": [{"id": "t", "name": "T", "x": 1, "y": 2, "columns": [], "color": "red"}],
  "relationships": [{"id": "r", "fromTableId": "t", "fromColumnId": "a", "toTableId": "u", "toColumnId": "b"}]
}`
	g := Deserialize([]byte(doc), nil)
	if len(g.Tables) != 1 || g.Tables[0].Position != (diagram.Point{X: 1, Y: 2}) {
		t.Fatalf("tables = %+v", g.Tables)
	}
	r := g.Relationships[0]
	if r.Cardinality != diagram.ManyToOne || r.Direction != diagram.Unidirectional {
		t.Errorf("missing annotations decoded as %s/%s", r.Cardinality, r.Direction)
	}
}

func TestImport_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		message string
	}{
		{"not_json", `tables:`, "not a valid document"},
		{"wrong_shape", `{"tables": {}}`, "not a valid document"},
		{"unknown_field", `{"tables": [], "relationships": [], "zoom": 2}`, "not a valid document"},
		{"trailing", `{"tables": []} {}`, "trailing content"},
		{"table_without_id", `{"tables": [{"name": "A", "columns": [{"id": "c"}]}]}`, "table #1 has no id"},
		{"duplicate_table", `{"tables": [{"id": "a", "columns": [{"id": "c"}]}, {"id": "a", "columns": [{"id": "c"}]}]}`, "duplicate table id"},
		{"no_columns", `{"tables": [{"id": "a", "columns": []}]}`, "no columns"},
		{"column_without_id", `{"tables": [{"id": "a", "columns": [{"name": "x"}]}]}`, "column #1 has no id"},
		{"duplicate_column", `{"tables": [{"id": "a", "columns": [{"id": "c"}, {"id": "c"}]}]}`, "duplicate column id"},
		{"relationship_without_id", `{"relationships": [{"fromTableId": "a"}]}`, "relationship has no id"},
		{"duplicate_relationship", `{"relationships": [{"id": "r"}, {"id": "r"}]}`, "duplicate relationship id"},
		{"bad_cardinality", `{"relationships": [{"id": "r", "relationshipType": "few-to-few"}]}`, "unknown relationship type"},
		{"bad_direction", `{"relationships": [{"id": "r", "direction": "up"}]}`, "unknown direction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Import([]byte(tt.doc))
			testutil.AssertError(t, err, alerr.ErrDocumentInvalid)
			testutil.AssertErrorContains(t, err, tt.message)
			if len(g.Tables) != 0 || len(g.Relationships) != 0 {
				t.Errorf("failed import returned partial state: %+v", g)
			}
		})
	}
}

func TestImport_ToleratesDanglingAndUnknownTypes(t *testing.T) {
	doc := `{
  "tables": [{"id": "a", "name": "A", "x": 0, "y": 0, "columns": [{"id": "c", "name": "C", "type": "money", "isPrimaryKey": true, "isForeignKey": false}]}],
  "relationships": [{"id": "r", "fromTableId": "a", "fromColumnId": "c", "toTableId": "gone", "toColumnId": "x"}]
}`
	g, err := Import([]byte(doc))
	testutil.AssertNoError(t, err)
	if g.Tables[0].Columns[0].DataType.Valid() {
		t.Error("money should not be in the vocabulary")
	}
	if len(g.Relationships) != 1 {
		t.Errorf("dangling relationship dropped on import")
	}
}

func TestImportReader(t *testing.T) {
	g, err := ImportReader(strings.NewReader(testutil.OrdersCustomersJSON))
	testutil.AssertNoError(t, err)
	if !reflect.DeepEqual(g, testutil.OrdersCustomers()) {
		t.Errorf("ImportReader = %+v", g)
	}
}

func TestExportYAML(t *testing.T) {
	out, err := ExportYAML(testutil.OrdersCustomers())
	testutil.AssertNoError(t, err)

	for _, want := range []string{
		"tables:\n",
		"name: Customers",
		"foreignKeyReference: Customers.Id",
		"relationshipType: many-to-one",
	} {
		if !strings.Contains(string(out), want) {
			t.Errorf("YAML missing %q:\n%s", want, out)
		}
	}

	var doc Document
	testutil.Must(t, yaml.Unmarshal(out, &doc))
	if !reflect.DeepEqual(doc.Graph(), testutil.OrdersCustomers()) {
		t.Errorf("YAML did not decode back to the same graph")
	}
}
