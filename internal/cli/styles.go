package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/render"
)

// ANSI 256 palette.
var (
	colorPrimary   = lipgloss.Color("12") // Blue
	colorSuccess   = lipgloss.Color("10") // Green
	colorWarning   = lipgloss.Color("11") // Yellow
	colorError     = lipgloss.Color("9")  // Red
	colorMuted     = lipgloss.Color("8")  // Gray
	colorHighlight = lipgloss.Color("14") // Cyan
	colorWhite     = lipgloss.Color("15") // White
	colorKey       = lipgloss.Color("#FFC107")
)

var (
	styleError    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleWarning  = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	styleNote     = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true)
	styleHelp     = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleSuccess  = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleCode     = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	stylePipe     = lipgloss.NewStyle().Foreground(colorPrimary)
	styleFilePath = lipgloss.NewStyle().Bold(true)
	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(colorHighlight)
	styleDim      = lipgloss.NewStyle().Foreground(colorMuted)
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorPrimary).Padding(0, 1)
	styleBadge    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(colorKey).Padding(0, 1).Bold(true)
)

// paint renders s with style when colors are enabled.
func paint(style lipgloss.Style, s string) string {
	if !EnableColors() {
		return s
	}
	return style.Render(s)
}

// Error returns text styled as an error label.
func Error(s string) string { return paint(styleError, s) }

// Warning returns text styled as a warning label.
func Warning(s string) string { return paint(styleWarning, s) }

// Note returns text styled as a note label.
func Note(s string) string { return paint(styleNote, s) }

// Help returns text styled as a help label.
func Help(s string) string { return paint(styleHelp, s) }

// Success returns text styled as a success message.
func Success(s string) string { return paint(styleSuccess, s) }

// Code returns text styled as an error code.
func Code(s string) string { return paint(styleCode, s) }

// Pipe returns a pipe character styled for diagnostics.
func Pipe() string { return paint(stylePipe, "|") }

// FilePath returns text styled as a file path.
func FilePath(s string) string { return paint(styleFilePath, s) }

// Header returns text styled as a table header.
func Header(s string) string { return paint(styleHeader, s) }

// Dim returns text styled as dim/muted.
func Dim(s string) string { return paint(styleDim, s) }

// Title renders a section title.
func Title(s string) string {
	if !EnableColors() {
		return "== " + s + " =="
	}
	return styleTitle.Render(s)
}

// Badge renders a short key marker such as PK or FK.
func Badge(s string) string {
	if !EnableColors() {
		return "[" + s + "]"
	}
	return styleBadge.Render(s)
}

// Cardinality renders a relationship kind in the canvas marker colour.
func Cardinality(c diagram.Cardinality) string {
	return paint(lipgloss.NewStyle().Foreground(lipgloss.Color(render.Color(c))), string(c))
}

// StyledTable renders rows under headers, bordered on a terminal.
type StyledTable struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewStyledTable creates a new styled table.
func NewStyledTable(headers ...string) *StyledTable {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &StyledTable{
		headers: headers,
		widths:  widths,
	}
}

// AddRow adds a row. Missing cells are blank; cells may already be styled.
func (t *StyledTable) AddRow(cells ...string) {
	for len(cells) < len(t.headers) {
		cells = append(cells, "")
	}
	for i, cell := range cells {
		if i < len(t.widths) {
			if w := lipgloss.Width(cell); w > t.widths[i] {
				t.widths[i] = w
			}
		}
	}
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows.
func (t *StyledTable) Len() int { return len(t.rows) }

// String renders the table.
func (t *StyledTable) String() string {
	if len(t.headers) == 0 {
		return ""
	}
	if !EnableColors() {
		return t.renderPlain()
	}
	return t.renderStyled()
}

func (t *StyledTable) renderPlain() string {
	var b strings.Builder

	t.writeRow(&b, t.headers, "  ", func(s string) string { return s })
	for i, w := range t.widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteString("\n")
	for _, row := range t.rows {
		t.writeRow(&b, row, "  ", func(s string) string { return s })
	}

	return b.String()
}

func (t *StyledTable) renderStyled() string {
	var b strings.Builder
	border := lipgloss.NewStyle().Foreground(colorMuted)

	total := 0
	for _, w := range t.widths {
		total += w + 3
	}
	total--

	b.WriteString(border.Render("╭" + strings.Repeat("─", total+2) + "╮"))
	b.WriteString("\n")
	b.WriteString(border.Render("│") + " ")
	t.writeCells(&b, t.headers, border.Render(" │ "), func(s string) string { return styleHeader.Render(s) })
	b.WriteString(" " + border.Render("│") + "\n")
	b.WriteString(border.Render("├" + strings.Repeat("─", total+2) + "┤"))
	b.WriteString("\n")
	for _, row := range t.rows {
		b.WriteString(border.Render("│") + " ")
		t.writeCells(&b, row, border.Render(" │ "), func(s string) string { return s })
		b.WriteString(" " + border.Render("│") + "\n")
	}
	b.WriteString(border.Render("╰" + strings.Repeat("─", total+2) + "╯"))
	b.WriteString("\n")

	return b.String()
}

func (t *StyledTable) writeRow(b *strings.Builder, cells []string, sep string, style func(string) string) {
	t.writeCells(b, cells, sep, style)
	b.WriteString("\n")
}

func (t *StyledTable) writeCells(b *strings.Builder, cells []string, sep string, style func(string) string) {
	for i, cell := range cells {
		if i >= len(t.widths) {
			break
		}
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(style(padRight(cell, t.widths[i])))
	}
}

// padRight pads a possibly styled string to width visible cells.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// KeyValue renders "key: value".
func KeyValue(key, value string) string {
	return Dim(key+":") + " " + value
}
