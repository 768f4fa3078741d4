// Package runtime provides a secure, deterministic JavaScript execution environment
// for diagram scripts using the Goja JS engine.
//
// A script declares tables with the table() builder:
//
//	table("Customers", { x: 100, y: 100 })
//	  .column("Id", "int", { pk: true, autoIncrement: true })
//	  .column("Email", "varchar(255)");
//
//	table("Orders").at(400, 160)
//	  .column("Id", "int", { pk: true })
//	  .column("CustomerId", "int", { fk: "Customers.Id" });
package runtime

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/registry"
)

// FixedSeed is the deterministic seed for random number generation.
const FixedSeed = 12345

// DefaultTimeout bounds one script run.
const DefaultTimeout = 5 * time.Second

// ColumnSpec is one column declared by a script.
type ColumnSpec struct {
	Name          string
	Type          diagram.DataType
	PrimaryKey    bool
	Reference     string // "Table.Column" when the column is a foreign key
	AutoIncrement bool
	GUID          bool
}

// TableSpec is one table declared by a script, in declaration order.
type TableSpec struct {
	Name        string
	Position    diagram.Point
	HasPosition bool
	Columns     []ColumnSpec
}

// Sandbox provides a secure JavaScript execution environment for diagram
// scripts. It enforces deterministic execution and resource limits to
// prevent runaway scripts.
type Sandbox struct {
	vm     *goja.Runtime
	logger *slog.Logger

	// Execution timeout for JS code
	timeout time.Duration

	// Results collected during evaluation
	tables []*TableSpec

	// Current file context for rich error messages
	currentFile string
	currentCode string
}

// NewSandbox creates a new hardened JavaScript sandbox.
func NewSandbox(logger *slog.Logger) *Sandbox {
	if logger == nil {
		logger = slog.Default()
	}

	vm := goja.New()

	// 1. Resource limits - prevent stack overflow attacks
	vm.SetMaxCallStackSize(500)

	// 2. Deterministic execution - fixed random source
	seedRand := rand.New(rand.NewSource(FixedSeed))
	vm.SetRandSource(func() float64 { return seedRand.Float64() })

	// 3. Disable dangerous globals
	disableDangerousGlobals(vm)

	s := &Sandbox{
		vm:      vm,
		logger:  logger,
		timeout: DefaultTimeout,
	}

	// 4. Bind DSL functions
	s.bindDSL()

	return s
}

// disableDangerousGlobals removes or disables JS features that could
// cause security issues or non-deterministic behavior.
func disableDangerousGlobals(vm *goja.Runtime) {
	// Disable eval and Function constructor
	for _, name := range []string{"eval", "Function"} {
		msg := name + " is disabled in diagram scripts"
		vm.Set(name, func(goja.FunctionCall) goja.Value {
			panic(vm.NewTypeError(msg))
		})
	}

	// Freeze prototypes to prevent pollution attacks
	_, _ = vm.RunString(`
		(function() {
			try {
				Object.freeze(Object.prototype);
				Object.freeze(Array.prototype);
				Object.freeze(String.prototype);
				Object.freeze(Number.prototype);
				Object.freeze(Boolean.prototype);
			} catch(e) {}
		})();
	`)
}

// bindDSL binds the diagram DSL functions to the JS runtime.
func (s *Sandbox) bindDSL() {
	s.vm.Set("table", s.tableFunc())

	// types global - the column type vocabulary, e.g. types.varchar
	types := s.vm.NewObject()
	for _, d := range diagram.Vocabulary {
		_ = types.Set(typeKey(d), string(d))
	}
	_ = types.Set("list", func() []string {
		out := make([]string, len(diagram.Vocabulary))
		for i, d := range diagram.Vocabulary {
			out[i] = string(d)
		}
		return out
	})
	s.vm.Set("types", types)

	s.vm.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		s.logger.Info(strings.Join(parts, " "), "script", s.currentFile)
		return goja.Undefined()
	})
}

// typeKey turns "varchar(255)" into "varchar255" and "nvarchar(max)" into "nvarcharMax".
func typeKey(d diagram.DataType) string {
	r := strings.NewReplacer("(max)", "Max", "(", "", ")", "", ",", "_")
	return r.Replace(string(d))
}

// tableFunc returns the table() DSL function.
// table(name, {x, y}) registers a table and returns its builder.
func (s *Sandbox) tableFunc() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0)
		if goja.IsUndefined(name) || goja.IsNull(name) || name.String() == "" {
			panic(s.vm.NewTypeError("table() requires a name"))
		}

		spec := &TableSpec{Name: name.String()}
		if opts := s.options(call.Argument(1)); opts != nil {
			x, hasX := numberOpt(opts, "x")
			y, hasY := numberOpt(opts, "y")
			if hasX || hasY {
				spec.Position = diagram.Point{X: x, Y: y}
				spec.HasPosition = true
			}
		}
		s.tables = append(s.tables, spec)

		return s.tableBuilder(spec)
	}
}

// tableBuilder returns the chainable object backing one table() call.
func (s *Sandbox) tableBuilder(spec *TableSpec) *goja.Object {
	obj := s.vm.NewObject()

	_ = obj.Set("column", func(call goja.FunctionCall) goja.Value {
		spec.Columns = append(spec.Columns, s.columnSpec(spec, call))
		return obj
	})

	_ = obj.Set("at", func(call goja.FunctionCall) goja.Value {
		spec.Position = diagram.Point{
			X: call.Argument(0).ToFloat(),
			Y: call.Argument(1).ToFloat(),
		}
		spec.HasPosition = true
		return obj
	})

	_ = obj.Set("name", spec.Name)
	return obj
}

// columnSpec parses .column(name, type, {pk, fk, autoIncrement, guid}).
func (s *Sandbox) columnSpec(table *TableSpec, call goja.FunctionCall) ColumnSpec {
	name := call.Argument(0)
	if goja.IsUndefined(name) || goja.IsNull(name) || name.String() == "" {
		panic(s.vm.NewTypeError("%s", fmt.Sprintf("column() on %q requires a name", table.Name)))
	}

	col := ColumnSpec{Name: name.String(), Type: diagram.TypeVarchar}

	if typ := call.Argument(1); !goja.IsUndefined(typ) && !goja.IsNull(typ) {
		d, err := diagram.ParseDataType(typ.String())
		if err != nil {
			msg := fmt.Sprintf("unknown column type %q for %s.%s", typ.String(), table.Name, col.Name)
			if e, ok := err.(*alerr.Error); ok && len(e.Helps()) > 0 {
				msg += " (" + e.Helps()[0] + ")"
			}
			panic(s.vm.NewTypeError("%s", msg))
		}
		col.Type = d
	}

	if opts := s.options(call.Argument(2)); opts != nil {
		col.PrimaryKey = boolOpt(opts, "pk")
		col.AutoIncrement = boolOpt(opts, "autoIncrement")
		col.GUID = boolOpt(opts, "guid")
		if ref, ok := opts["fk"].(string); ok {
			if err := registry.ValidateReference(ref); err != nil {
				panic(s.vm.NewTypeError("%s", fmt.Sprintf("invalid fk %q on %s.%s: expected \"Table.Column\"", ref, table.Name, col.Name)))
			}
			col.Reference = ref
		}
	}

	return col
}

func (s *Sandbox) options(v goja.Value) map[string]any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	m, ok := v.Export().(map[string]any)
	if !ok {
		panic(s.vm.NewTypeError("options must be an object"))
	}
	return m
}

func numberOpt(m map[string]any, key string) (float64, bool) {
	switch n := m[key].(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func boolOpt(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// SetTimeout sets the execution timeout for JS code.
func (s *Sandbox) SetTimeout(d time.Duration) {
	s.timeout = d
}

// SetCurrentFile sets the current file being evaluated for error context.
func (s *Sandbox) SetCurrentFile(path string) {
	s.currentFile = path
}

// Tables returns the tables declared so far, in declaration order.
func (s *Sandbox) Tables() []TableSpec {
	out := make([]TableSpec, len(s.tables))
	for i, t := range s.tables {
		out[i] = *t
		out[i].Columns = append([]ColumnSpec(nil), t.Columns...)
	}
	return out
}

// ClearTables clears the collected tables.
func (s *Sandbox) ClearTables() {
	s.tables = nil
}

// VM returns the underlying Goja runtime.
func (s *Sandbox) VM() *goja.Runtime {
	return s.vm
}

// Run executes JavaScript code under the sandbox timeout.
func (s *Sandbox) Run(code string) error {
	s.currentCode = code

	timer := time.AfterFunc(s.timeout, func() {
		s.vm.Interrupt("execution timeout")
	})

	_, err := s.vm.RunString(code)
	timer.Stop()
	if err != nil {
		if interruptErr, ok := err.(*goja.InterruptedError); ok {
			s.vm.ClearInterrupt()
			timeoutErr := alerr.New(alerr.ErrJSTimeout, "script execution timed out").
				With("timeout", s.timeout.String()).
				With("interrupt", interruptErr.String())
			if s.currentFile != "" {
				timeoutErr.WithFile(s.currentFile)
			}
			return timeoutErr
		}

		return s.wrapJSError(err, alerr.ErrJSExecution, "JavaScript execution failed")
	}

	// Clear any pending interrupt
	s.vm.ClearInterrupt()

	return nil
}

// RunFile reads and executes a diagram script and returns the declared tables.
func (s *Sandbox) RunFile(path string) ([]TableSpec, error) {
	s.currentFile = path

	codeBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrJSExecution, err, "failed to read script").
			WithFile(path)
	}

	s.ClearTables()
	if err := s.Run(string(codeBytes)); err != nil {
		return nil, err
	}
	return s.Tables(), nil
}

// Eval executes code and returns the declared tables.
func (s *Sandbox) Eval(code string) ([]TableSpec, error) {
	s.ClearTables()
	if err := s.Run(code); err != nil {
		return nil, err
	}
	return s.Tables(), nil
}
