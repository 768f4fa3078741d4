package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/hlop3z/erdpad/internal/cli"
)

// CommandInfo is one line of the root help.
type CommandInfo struct {
	Name        string
	Description string
}

// CommandCategory groups commands under a title.
type CommandCategory struct {
	Title    string
	Commands []CommandInfo
}

// FlagInfo is one global flag line.
type FlagInfo struct {
	Flag        string
	Description string
}

// renderCategoryHelp writes the grouped root help.
func renderCategoryHelp(w io.Writer, title, summary string, categories []CommandCategory, flags []FlagInfo) {
	fmt.Fprintln(w, cli.Title(title))
	fmt.Fprintln(w, cli.Dim(summary))
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Header("Usage:")+" erd [command] [flags]")

	width := 0
	for _, cat := range categories {
		for _, c := range cat.Commands {
			width = max(width, lipgloss.Width(c.Name))
		}
	}
	for _, f := range flags {
		width = max(width, lipgloss.Width(f.Flag))
	}

	for _, cat := range categories {
		fmt.Fprintln(w)
		fmt.Fprintln(w, cli.Header(cat.Title+":"))
		for _, c := range cat.Commands {
			fmt.Fprintf(w, "  %s  %s\n", pad(cli.Code(c.Name), c.Name, width), c.Description)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Header("Flags:"))
	for _, f := range flags {
		fmt.Fprintf(w, "  %s  %s\n", pad(f.Flag, f.Flag, width), cli.Dim(f.Description))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Dim(`Use "erd [command] --help" for more information about a command.`))
}

// pad right-pads styled to the display width of plain.
func pad(styled, plain string, width int) string {
	n := width - lipgloss.Width(plain)
	if n <= 0 {
		return styled
	}
	return styled + fmt.Sprintf("%*s", n, "")
}
