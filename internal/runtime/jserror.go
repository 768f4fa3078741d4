package runtime

import (
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"github.com/hlop3z/erdpad/internal/alerr"
)

// JSErrorInfo contains extracted information from a JavaScript error.
type JSErrorInfo struct {
	Message string
	Line    int
	Column  int
	Stack   string
}

// ParseJSError extracts detailed error information from a Goja error.
func ParseJSError(err error) *JSErrorInfo {
	if err == nil {
		return nil
	}

	info := &JSErrorInfo{
		Message: err.Error(),
	}

	// Handle syntax errors from the compiler
	if syntaxErr, ok := err.(*goja.CompilerSyntaxError); ok {
		info.Message = syntaxErr.Error()
		if syntaxErr.File != nil {
			pos := syntaxErr.File.Position(syntaxErr.Offset)
			info.Line = pos.Line
			info.Column = pos.Column
		}
		return info
	}

	// Handle runtime exceptions
	if exception, ok := err.(*goja.Exception); ok {
		info.Message = exception.Value().String()
		info.Stack = exception.String()

		// Skip native Go frames (line=0) to find the first JS call site.
		if frames := exception.Stack(); len(frames) > 0 {
			for _, frame := range frames {
				pos := frame.Position()
				if pos.Line > 0 {
					info.Line = pos.Line
					info.Column = pos.Column
					break
				}
			}
		} else {
			parseGojaErrorMessage(info)
		}
		return info
	}

	if interrupted, ok := err.(*goja.InterruptedError); ok {
		info.Message = "execution interrupted: " + interrupted.String()
	}

	return info
}

// parseGojaErrorMessage reads "Line X:Y" out of a goja syntax error message.
// Only used when an Exception carries no stack frames.
func parseGojaErrorMessage(info *JSErrorInfo) {
	msg := info.Message

	lineIdx := strings.Index(msg, "Line ")
	if lineIdx == -1 {
		return
	}
	rest := msg[lineIdx+5:]

	colonIdx := strings.Index(rest, ":")
	if colonIdx == -1 {
		return
	}
	if line, err := strconv.Atoi(rest[:colonIdx]); err == nil {
		info.Line = line
	}

	rest = rest[colonIdx+1:]
	if spaceIdx := strings.Index(rest, " "); spaceIdx != -1 {
		if col, err := strconv.Atoi(rest[:spaceIdx]); err == nil {
			info.Column = col
		}
	}
}

// GetSourceLine returns line lineNum (1-indexed) of code, or "".
func GetSourceLine(code string, lineNum int) string {
	if lineNum <= 0 || code == "" {
		return ""
	}
	lines := strings.Split(code, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[lineNum-1], "\r")
}

// wrapJSError creates a coded error with source location and context.
func (s *Sandbox) wrapJSError(err error, code alerr.Code, message string) *alerr.Error {
	alErr := alerr.Wrap(code, err, message)

	jsErr := ParseJSError(err)
	if jsErr == nil {
		return alErr
	}

	if s.currentFile != "" {
		alErr.WithFile(s.currentFile)
	}
	if jsErr.Line > 0 {
		alErr.With("line", jsErr.Line)
		if jsErr.Column > 0 {
			alErr.With("col", jsErr.Column)
		}
		if src := GetSourceLine(s.currentCode, jsErr.Line); src != "" {
			alErr.With("source", strings.TrimSpace(src))
		}
	}

	addJSErrorHelp(alErr, jsErr.Message)
	return alErr
}

// addJSErrorHelp adds contextual help based on the error message.
func addJSErrorHelp(err *alerr.Error, message string) {
	msg := strings.ToLower(message)

	switch {
	case strings.Contains(msg, "unknown column type"):
		err.WithHelp("column types come from the SQL vocabulary, see types.list()")
	case strings.Contains(msg, "invalid fk"):
		err.WithHelp(`write foreign keys as { fk: "Customers.Id" }`)
	case strings.Contains(msg, "is disabled"):
		err.WithHelp("declare tables with table() instead of generating code")
	case strings.Contains(msg, "has no member") || strings.Contains(msg, "is not a function"):
		err.WithHelp("table builders support .column(name, type, opts) and .at(x, y)")
	case strings.Contains(msg, "not defined"):
		err.WithHelp("scripts only see table, types and log")
	case strings.Contains(msg, "unexpected token"):
		err.WithHelp("check for typos or missing punctuation")
	}
}
