package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hlop3z/erdpad/internal/alerr"
)

func TestFormatError_SourceContext(t *testing.T) {
	err := alerr.Wrap(alerr.ErrJSExecution, errors.New(`TypeError: unknown column type "nope" at github.com/dop251/goja.(*Runtime).x (native)`), "JavaScript execution failed").
		WithFile("shop.js").
		With("line", 5).
		With("col", 18).
		With("source", `table("T").column("A", "nope");`).
		WithHelp("column types come from the SQL vocabulary, see types.list()")

	output := FormatError(err)

	checks := []string{
		"error[E5001]: JavaScript execution failed",
		"--> shop.js:5:18",
		`5 | table("T").column("A", "nope");`,
		"help: column types come from the SQL vocabulary",
		`cause: TypeError: unknown column type "nope"`,
	}
	for _, want := range checks {
		if !strings.Contains(output, want) {
			t.Errorf("FormatError output missing %q\ngot:\n%s", want, output)
		}
	}
	if strings.Contains(output, "(native)") {
		t.Errorf("goja frame should be stripped:\n%s", output)
	}
}

func TestFormatError_Context(t *testing.T) {
	err := alerr.New(alerr.ErrTableNotFound, "table not found").
		WithTable("table_9").
		WithFile("shop.uml.json")

	output := FormatError(err)

	for _, want := range []string{"error[E2001]: table not found", "--> shop.uml.json", "| table: table_9"} {
		if !strings.Contains(output, want) {
			t.Errorf("FormatError output missing %q\ngot:\n%s", want, output)
		}
	}
	if strings.Contains(output, "shop.uml.json:0") {
		t.Errorf("no line number expected:\n%s", output)
	}
}

func TestFormatError_Wrapped(t *testing.T) {
	inner := alerr.New(alerr.ErrDocumentInvalid, "document has unknown field")
	output := FormatError(fmt.Errorf("load: %w", inner))
	if !strings.Contains(output, "E1001") {
		t.Errorf("wrapped coded error should keep its code:\n%s", output)
	}
}

func TestFormatError_Generic(t *testing.T) {
	if got := FormatError(errors.New("boom")); got != "error: boom\n" {
		t.Errorf("generic = %q", got)
	}
	if FormatError(nil) != "" {
		t.Error("nil error should format to empty string")
	}
}

func TestFormatWarning(t *testing.T) {
	got := FormatWarning(`column "Notes.Body" has unknown type "string"`, "did you mean 'text'?")
	want := "warning: column \"Notes.Body\" has unknown type \"string\"\nhelp: did you mean 'text'?\n"
	if got != want {
		t.Errorf("FormatWarning = %q, want %q", got, want)
	}
}

func TestFormatNoteAndSuccess(t *testing.T) {
	if got := FormatNote("x"); got != "note: x\n" {
		t.Errorf("FormatNote = %q", got)
	}
	if got := FormatSuccess("saved"); got != "success: saved\n" {
		t.Errorf("FormatSuccess = %q", got)
	}
}
