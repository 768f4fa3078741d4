package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hlop3z/erdpad/internal/alerr"
)

// shownKeys are context keys FormatError renders in their own place.
var shownKeys = map[string]bool{
	"file": true, "line": true, "col": true, "source": true, "helps": true,
}

// FormatError formats an error for CLI display in rustc style:
//
//	error[E2001]: table not found
//	  --> shop.uml.json
//	   |
//	   | table: table_9
//	help: run `erd table ls` to list table ids
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var ae *alerr.Error
	if errors.As(err, &ae) {
		return formatCodedError(ae)
	}

	return Error("error") + ": " + err.Error() + "\n"
}

func formatCodedError(err *alerr.Error) string {
	var b strings.Builder
	ctx := err.GetContext()

	fmt.Fprintf(&b, "%s[%s]: %s\n", Error("error"), Code(string(err.GetCode())), err.GetMessage())

	file, _ := ctx["file"].(string)
	line, _ := ctx["line"].(int)
	col, _ := ctx["col"].(int)
	if file != "" {
		loc := file
		if line > 0 {
			loc = fmt.Sprintf("%s:%d", file, line)
			if col > 0 {
				loc = fmt.Sprintf("%s:%d:%d", file, line, col)
			}
		}
		fmt.Fprintf(&b, "  %s %s\n", paint(stylePipe, "-->"), FilePath(loc))
	}

	if source, ok := ctx["source"].(string); ok && line > 0 {
		num := fmt.Sprintf("%d", line)
		pad := strings.Repeat(" ", len(num))
		fmt.Fprintf(&b, "%s %s\n", pad, Pipe())
		fmt.Fprintf(&b, "%s %s %s\n", paint(stylePipe, num), Pipe(), source)
		fmt.Fprintf(&b, "%s %s\n", pad, Pipe())
	}

	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if !shownKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		fmt.Fprintf(&b, "   %s\n", Pipe())
		for _, k := range keys {
			fmt.Fprintf(&b, "   %s %s: %v\n", Pipe(), k, ctx[k])
		}
	}

	for _, help := range err.Helps() {
		fmt.Fprintf(&b, "%s: %s\n", Help("help"), help)
	}

	if cause := err.GetCause(); cause != nil {
		fmt.Fprintf(&b, "%s: %s\n", Note("cause"), cleanCauseMessage(cause.Error()))
	}

	return b.String()
}

// cleanCauseMessage strips the goja native frame suffix from script errors.
func cleanCauseMessage(msg string) string {
	if idx := strings.Index(msg, " at github.com"); idx != -1 {
		msg = strings.TrimSpace(msg[:idx])
	}
	return msg
}

// FormatWarning formats a warning with optional help lines.
func FormatWarning(msg string, helps ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", Warning("warning"), msg)
	for _, h := range helps {
		fmt.Fprintf(&b, "%s: %s\n", Help("help"), h)
	}
	return b.String()
}

// FormatNote formats a note message.
func FormatNote(msg string) string {
	return Note("note") + ": " + msg + "\n"
}

// FormatSuccess formats a success message.
func FormatSuccess(msg string) string {
	return Success("success") + ": " + msg + "\n"
}
