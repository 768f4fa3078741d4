package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hlop3z/erdpad/internal/diagram"
)

// TableList renders one row per table in stored order.
func TableList(g diagram.Graph) string {
	t := NewStyledTable("ID", "NAME", "POSITION", "COLUMNS", "FOREIGN KEYS")
	for i := range g.Tables {
		tbl := &g.Tables[i]
		t.AddRow(
			Dim(tbl.ID),
			tbl.Name,
			formatPoint(tbl.Position),
			strconv.Itoa(len(tbl.Columns)),
			strconv.Itoa(len(tbl.ForeignKeys())),
		)
	}
	return t.String()
}

// DescribeTable renders a table's columns with their key markers.
func DescribeTable(tbl diagram.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Title(tbl.Name), Dim(tbl.ID+" at "+formatPoint(tbl.Position)))

	t := NewStyledTable("ID", "COLUMN", "TYPE", "KEYS", "REFERENCES")
	for _, c := range tbl.Columns {
		t.AddRow(Dim(c.ID), c.Name, string(c.DataType), columnKeys(c), c.ForeignKeyReference)
	}
	b.WriteString(t.String())
	return b.String()
}

// RelationshipList renders relationships with their kind in marker colours.
// Dangling relationships are listed with their raw ids.
func RelationshipList(g diagram.Graph) string {
	t := NewStyledTable("ID", "LINK", "TYPE", "DIRECTION")
	for _, r := range g.Relationships {
		t.AddRow(Dim(r.ID), g.Describe(r), Cardinality(r.Cardinality), string(r.Direction))
	}
	return t.String()
}

// DescribeGraph renders every table followed by the relationship list.
func DescribeGraph(g diagram.Graph) string {
	if len(g.Tables) == 0 {
		return FormatNote("the diagram has no tables; add one with `erd table add`")
	}

	var b strings.Builder
	for _, tbl := range g.Tables {
		b.WriteString(DescribeTable(tbl))
		b.WriteString("\n")
	}
	if len(g.Relationships) > 0 {
		b.WriteString(Header("Relationships"))
		b.WriteString("\n")
		b.WriteString(RelationshipList(g))
	}
	return b.String()
}

func columnKeys(c diagram.Column) string {
	var keys []string
	if c.IsPrimaryKey {
		keys = append(keys, Badge("PK"))
	}
	if c.IsForeignKey {
		keys = append(keys, Badge("FK"))
	}
	if c.IsAutoIncrement {
		keys = append(keys, Dim("auto"))
	}
	if c.IsGuidGenerated {
		keys = append(keys, Dim("guid"))
	}
	return strings.Join(keys, " ")
}

func formatPoint(p diagram.Point) string {
	return fmt.Sprintf("(%s, %s)",
		strconv.FormatFloat(p.X, 'f', -1, 64),
		strconv.FormatFloat(p.Y, 'f', -1, 64))
}
