package drift

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hlop3z/erdpad/internal/diagram"
)

// FormatResult formats a comparison result for CLI output.
func FormatResult(result *Result) string {
	if result == nil {
		return "No comparison result available."
	}

	if !result.Changed {
		return FormatNoChange(result)
	}

	return FormatChanges(result)
}

// FormatNoChange formats an identical result.
func FormatNoChange(result *Result) string {
	var b strings.Builder

	b.WriteString("Diagrams are identical\n\n")
	fmt.Fprintf(&b, "  Tables:        %d\n", len(result.New.Tables))
	fmt.Fprintf(&b, "  Relationships: %d\n", len(result.New.Relationships))
	fmt.Fprintf(&b, "  Hash:          %s\n", truncateHash(result.NewHash))

	return b.String()
}

// FormatChanges formats a result with differences.
func FormatChanges(result *Result) string {
	var b strings.Builder
	comp := result.Comparison

	b.WriteString("Diagrams differ\n\n")
	fmt.Fprintf(&b, "  Old hash: %s\n", truncateHash(result.OldHash))
	fmt.Fprintf(&b, "  New hash: %s\n\n", truncateHash(result.NewHash))

	if len(comp.AddedTables) > 0 {
		b.WriteString("  Added tables:\n")
		for _, id := range comp.AddedTables {
			fmt.Fprintf(&b, "    + %s\n", tableLabel(&result.New, id))
		}
		b.WriteString("\n")
	}

	if len(comp.RemovedTables) > 0 {
		b.WriteString("  Removed tables:\n")
		for _, id := range comp.RemovedTables {
			fmt.Fprintf(&b, "    - %s\n", tableLabel(&result.Old, id))
		}
		b.WriteString("\n")
	}

	if len(comp.TableDiffs) > 0 {
		b.WriteString("  Modified tables:\n")
		ids := make([]string, 0, len(comp.TableDiffs))
		for id := range comp.TableDiffs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(&b, "\n    %s:\n", tableLabel(&result.New, id))
			formatTableDiff(&b, result, comp.TableDiffs[id], "      ")
		}
		b.WriteString("\n")
	}

	if comp.Reordered {
		b.WriteString("  Table order changed\n\n")
	}

	formatLinks(&b, "Added relationships", "+", comp.AddedLinks)
	formatLinks(&b, "Removed relationships", "-", comp.RemovedLinks)
	formatLinks(&b, "Re-annotated relationships", "~", comp.ModifiedLinks)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func formatTableDiff(b *strings.Builder, result *Result, diff *TableDiff, indent string) {
	if diff.Renamed() {
		fmt.Fprintf(b, "%srenamed %s -> %s\n", indent, diff.OldName, diff.NewName)
	}
	if diff.Moved {
		oldT, newT := result.Old.Table(diff.ID), result.New.Table(diff.ID)
		fmt.Fprintf(b, "%smoved (%v, %v) -> (%v, %v)\n", indent,
			oldT.Position.X, oldT.Position.Y, newT.Position.X, newT.Position.Y)
	}
	for _, id := range diff.AddedColumns {
		fmt.Fprintf(b, "%s+ column %s\n", indent, columnLabel(&result.New, diff.ID, id))
	}
	for _, id := range diff.RemovedColumns {
		fmt.Fprintf(b, "%s- column %s\n", indent, columnLabel(&result.Old, diff.ID, id))
	}
	for _, id := range diff.ModifiedColumns {
		fmt.Fprintf(b, "%s~ column %s\n", indent, columnLabel(&result.New, diff.ID, id))
	}
	if diff.Reordered {
		fmt.Fprintf(b, "%scolumn order changed\n", indent)
	}
}

func formatLinks(b *strings.Builder, title, sign string, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(b, "    %s %s\n", sign, k)
	}
	b.WriteString("\n")
}

func tableLabel(g *diagram.Graph, id string) string {
	if t := g.Table(id); t != nil {
		return fmt.Sprintf("%s (%s)", t.Name, id)
	}
	return id
}

func columnLabel(g *diagram.Graph, tableID, colID string) string {
	if t := g.Table(tableID); t != nil {
		if c := t.Column(colID); c != nil {
			return fmt.Sprintf("%s %s (%s)", c.Name, c.DataType, colID)
		}
	}
	return colID
}

// truncateHash shortens a hash for display.
func truncateHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
