package cli

import (
	"strings"
	"testing"

	"github.com/hlop3z/erdpad/internal/diagram"
)

func init() {
	// Use plain mode for deterministic test output
	SetDefault(&Config{Mode: ModePlain})
}

func TestPlainStyles(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"error", Error("error"), "error"},
		{"warning", Warning("warning"), "warning"},
		{"code", Code("E2001"), "E2001"},
		{"pipe", Pipe(), "|"},
		{"badge", Badge("PK"), "[PK]"},
		{"title", Title("Orders"), "== Orders =="},
		{"cardinality", Cardinality(diagram.ManyToOne), "many-to-one"},
		{"key value", KeyValue("tables", "2"), "tables: 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestStyledTable_Plain(t *testing.T) {
	tbl := NewStyledTable("ID", "NAME")
	tbl.AddRow("table_1", "Customers")
	tbl.AddRow("t2")

	want := "" +
		"ID       NAME     \n" +
		"-------  ---------\n" +
		"table_1  Customers\n" +
		"t2                \n"
	if got := tbl.String(); got != want {
		t.Errorf("plain table:\n%q\nwant:\n%q", got, want)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d", tbl.Len())
	}
}

func TestStyledTable_Styled(t *testing.T) {
	original := defaultCfg
	defer func() { defaultCfg = original }()
	SetDefault(&Config{Mode: ModeTTY})

	tbl := NewStyledTable("ID")
	tbl.AddRow("table_1")
	out := tbl.String()

	for _, want := range []string{"╭", "╰", "ID", "table_1"} {
		if !strings.Contains(out, want) {
			t.Errorf("styled table missing %q:\n%s", want, out)
		}
	}
}

func TestStyledTable_Empty(t *testing.T) {
	if got := NewStyledTable().String(); got != "" {
		t.Errorf("table without headers = %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Errorf("padRight should not truncate, got %q", got)
	}
}
