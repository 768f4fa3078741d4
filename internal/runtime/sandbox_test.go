package runtime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/testutil"
)

const shopScript = `
table("Orders").at(400, 160)
  .column("Id", "int", { pk: true })
  .column("CustomerId", types.int, { fk: "Customers.Id" });

table("Customers", { x: 100, y: 100 })
  .column("Id", "int", { pk: true, autoIncrement: true })
  .column("Email", types.varchar255);
`

func TestNewSandbox(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		sb := NewSandbox(nil)
		if sb == nil {
			t.Fatal("NewSandbox() returned nil")
		}
		if sb.vm == nil {
			t.Error("vm should be initialized")
		}
		if sb.timeout != 5*time.Second {
			t.Errorf("default timeout = %v, want 5s", sb.timeout)
		}
		if sb.logger == nil {
			t.Error("logger should default to slog.Default()")
		}
	})
}

func TestSandbox_Run(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"simple JavaScript", "var x = 1 + 1;", false},
		{"syntax error", "var x = ;", true},
		{"runtime error", "throw new Error('test error');", true},
		{"multiple statements", "var a = 10; var b = 20; var c = a + b;", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSandbox(nil).Run(tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				testutil.AssertError(t, err, alerr.ErrJSExecution)
			}
		})
	}
}

func TestSandbox_Eval(t *testing.T) {
	specs, err := NewSandbox(nil).Eval(shopScript)
	testutil.AssertNoError(t, err)

	if len(specs) != 2 {
		t.Fatalf("got %d tables, want 2", len(specs))
	}

	orders := specs[0]
	if orders.Name != "Orders" || !orders.HasPosition || orders.Position != (diagram.Point{X: 400, Y: 160}) {
		t.Errorf("orders = %+v", orders)
	}
	if len(orders.Columns) != 2 {
		t.Fatalf("orders columns = %d, want 2", len(orders.Columns))
	}
	fk := orders.Columns[1]
	if fk.Name != "CustomerId" || fk.Type != diagram.TypeInt || fk.Reference != "Customers.Id" {
		t.Errorf("fk column = %+v", fk)
	}

	customers := specs[1]
	if customers.Position != (diagram.Point{X: 100, Y: 100}) {
		t.Errorf("customers position = %+v", customers.Position)
	}
	id := customers.Columns[0]
	if !id.PrimaryKey || !id.AutoIncrement || id.GUID {
		t.Errorf("id column = %+v", id)
	}
	if customers.Columns[1].Type != diagram.TypeVarcharLong {
		t.Errorf("email type = %q", customers.Columns[1].Type)
	}
}

func TestSandbox_Defaults(t *testing.T) {
	specs, err := NewSandbox(nil).Eval(`table("Notes").column("Body");`)
	testutil.AssertNoError(t, err)

	if specs[0].HasPosition {
		t.Error("table without coordinates should keep the default position")
	}
	if specs[0].Columns[0].Type != diagram.TypeVarchar {
		t.Errorf("default type = %q, want varchar(50)", specs[0].Columns[0].Type)
	}
}

func TestSandbox_Errors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		contain string
	}{
		{"unknown type", `table("T").column("A", "varchr(50)");`, "did you mean"},
		{"bad fk", `table("T").column("A", "int", { fk: "Customers" });`, "invalid fk"},
		{"missing table name", `table();`, "requires a name"},
		{"missing column name", `table("T").column();`, "requires a name"},
		{"eval disabled", `eval("1 + 1");`, "eval is disabled"},
		{"Function disabled", `Function("return 1")();`, "Function is disabled"},
		{"unknown builder method", `table("T").index("A");`, "no member"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSandbox(nil).Eval(tt.code)
			testutil.AssertError(t, err, alerr.ErrJSExecution)
			testutil.AssertErrorContains(t, err, tt.contain)
		})
	}
}

func TestSandbox_ErrorLocation(t *testing.T) {
	_, err := NewSandbox(nil).Eval("var ok = 1;\ntable(\"T\").column(\"A\", \"nope\");\n")
	e, ok := err.(*alerr.Error)
	if !ok {
		t.Fatalf("expected *alerr.Error, got %T", err)
	}
	if line, _ := e.GetContext()["line"].(int); line != 2 {
		t.Errorf("line = %v, want 2", e.GetContext()["line"])
	}
	if len(e.Helps()) == 0 {
		t.Error("expected a help line")
	}
}

func TestSandbox_FrozenPrototypes(t *testing.T) {
	sb := NewSandbox(nil)
	testutil.AssertNoError(t, sb.Run(`Object.prototype.polluted = true;`))

	v := sb.VM().Get("polluted")
	if v != nil && v.ToBoolean() {
		t.Error("Object.prototype should be frozen")
	}
}

func TestSandbox_Timeout(t *testing.T) {
	sb := NewSandbox(nil)
	sb.SetTimeout(50 * time.Millisecond)

	err := sb.Run(`while (true) {}`)
	testutil.AssertError(t, err, alerr.ErrJSTimeout)

	// The sandbox stays usable after an interrupt.
	testutil.AssertNoError(t, sb.Run(`var x = 1;`))
}

func TestSandbox_StackLimit(t *testing.T) {
	err := NewSandbox(nil).Run(`function f() { return f(); } f();`)
	testutil.AssertError(t, err, alerr.ErrJSExecution)
}

func TestSandbox_RunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shop.js")
	testutil.WriteFile(t, path, shopScript)

	sb := NewSandbox(nil)
	specs, err := sb.RunFile(path)
	testutil.AssertNoError(t, err)
	if len(specs) != 2 {
		t.Errorf("got %d tables, want 2", len(specs))
	}

	// A second run starts from a clean slate.
	specs, err = sb.RunFile(path)
	testutil.AssertNoError(t, err)
	if len(specs) != 2 {
		t.Errorf("second run got %d tables, want 2", len(specs))
	}

	_, err = sb.RunFile(filepath.Join(dir, "missing.js"))
	testutil.AssertError(t, err, alerr.ErrJSExecution)
	if _, statErr := os.Stat(filepath.Join(dir, "missing.js")); statErr == nil {
		t.Error("missing.js should not exist")
	}
}

func TestTypeKey(t *testing.T) {
	tests := map[diagram.DataType]string{
		diagram.TypeInt:         "int",
		diagram.TypeVarcharLong: "varchar255",
		diagram.TypeNVarcharMax: "nvarcharMax",
		diagram.TypeDecimal:     "decimal18_2",
	}
	for in, want := range tests {
		if got := typeKey(in); got != want {
			t.Errorf("typeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseJSError(t *testing.T) {
	if ParseJSError(nil) != nil {
		t.Error("ParseJSError(nil) should be nil")
	}

	info := &JSErrorInfo{Message: "SyntaxError: (anonymous): Line 3:14 Unexpected token ;"}
	parseGojaErrorMessage(info)
	if info.Line != 3 || info.Column != 14 {
		t.Errorf("parsed %d:%d, want 3:14", info.Line, info.Column)
	}
}

func TestGetSourceLine(t *testing.T) {
	code := "line 1\nline 2\r\nline 3"
	for i, want := range []string{"", "line 1", "line 2", "line 3", ""} {
		if got := GetSourceLine(code, i); got != want {
			t.Errorf("GetSourceLine(%d) = %q, want %q", i, got, want)
		}
	}
	if !strings.Contains(GetSourceLine("a", 1), "a") {
		t.Error("single line")
	}
}
