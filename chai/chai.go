// Package chai is the Host API spec.md §6 describes: the surface an
// embedding Go program uses to register types/functions/conversions, bind
// variables, and evaluate ChaiScript source against one long-lived Engine.
// cmd/chai is a thin driver over this same package — "there is exactly one
// evaluation path" (SPEC_FULL.md §1).
package chai

import (
	"fmt"
	"os"

	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/dispatch"
	"github.com/rubiojr/chaiscript-go/eval"
	"github.com/rubiojr/chaiscript-go/parser"
	"github.com/rubiojr/chaiscript-go/prelude"
	"github.com/rubiojr/chaiscript-go/proxy"
	"github.com/rubiojr/chaiscript-go/typeinfo"
)

// Engine is a ChaiScript evaluation session: a dispatch.Engine with the
// prelude already installed and an Evaluator bound to it. A REPL line is
// one Eval call sharing the prior session's scope (spec.md §5).
type Engine struct {
	dispatch *dispatch.Engine
	eval     *eval.Evaluator
}

// New returns an Engine with the prelude installed (spec.md §9: `clone`
// and `call_exists` — and, here, the rest of the base operator/container
// surface — registered before any user script runs).
func New() *Engine {
	d := dispatch.New()
	prelude.Install(d)
	return &Engine{dispatch: d, eval: eval.New(d)}
}

// RegisterType records name as the script-visible name for T (spec.md §6's
// `engine.register_type<T>(name)`).
func RegisterType[T any](e *Engine, name string) {
	e.dispatch.RegisterType(name, typeinfo.TypeOf[T]())
}

// RegisterFunction wraps fn — a plain function, method value, or
// constructor helper — as a native overload of name (spec.md §6's
// `engine.register_function(name, callable)`).
func (e *Engine) RegisterFunction(name string, fn any) {
	e.dispatch.RegisterFunction(name, proxy.NewNative(name, fn, e.dispatch))
}

// RegisterBaseClass registers a conversion from D to B, usable wherever B
// is expected, provided D's underlying Go value implements the B
// interface — the Go-idiomatic form of spec.md §6's
// `engine.register_conversion(base_class<B, D>())`.
func RegisterBaseClass[B, D any](e *Engine) {
	e.dispatch.RegisterConversion(typeinfo.TypeOf[D](), typeinfo.TypeOf[B](), func(v boxed.Value) (boxed.Value, error) {
		d, err := boxed.Cast[D](v, e.dispatch)
		if err != nil {
			return boxed.Value{}, err
		}
		b, ok := any(d).(B)
		if !ok {
			return boxed.Value{}, fmt.Errorf("%s does not implement the base type", typeinfo.TypeOf[D]().Name())
		}
		return boxed.New(b), nil
	})
}

// RegisterVectorConversion registers a conversion from []T to prelude's
// *Vector, so a boxed []T can be passed where a native function expects a
// *prelude.Vector — spec.md §6's
// `engine.register_conversion(vector_conversion<Vec<U>>())`. Prelude's own
// container functions (`[]`, `size`, ...) inspect the raw value and do not
// apply this conversion, so a []T returned to script is not indexable
// through them.
func RegisterVectorConversion[T any](e *Engine) {
	e.dispatch.RegisterConversion(typeinfo.TypeOf[[]T](), typeinfo.TypeOf[*prelude.Vector](), func(v boxed.Value) (boxed.Value, error) {
		items, err := boxed.Cast[[]T](v, e.dispatch)
		if err != nil {
			return boxed.Value{}, err
		}
		boxedItems := make([]boxed.Value, len(items))
		for i, it := range items {
			boxedItems[i] = boxed.New(it)
		}
		return prelude.NewVector(boxedItems), nil
	})
}

// Add binds name to v in the current innermost scope (spec.md §6's
// `engine.add(name, value)`).
func (e *Engine) Add(name string, v any) {
	e.dispatch.AddObject(name, boxed.New(v))
}

// AddGlobal binds name to v in the global scope regardless of current
// depth (spec.md §6's `engine.add_global(name, value)`).
func (e *Engine) AddGlobal(name string, v any) {
	e.dispatch.AddGlobal(name, boxed.New(v))
}

// Eval parses and evaluates source, returning the BoxedValue of its final
// expression (spec.md §6's `engine.eval(source)`).
func (e *Engine) Eval(source string) (boxed.Value, error) {
	file, err := parser.Parse("<eval>", []byte(source))
	if err != nil {
		return boxed.Value{}, err
	}
	return e.eval.Eval(file)
}

// EvalFile reads, parses, and evaluates the script at path (spec.md §6's
// `engine.eval_file(path)`).
func (e *Engine) EvalFile(path string) (boxed.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return boxed.Value{}, fmt.Errorf("reading %s: %w", path, err)
	}
	file, err := parser.Parse(path, src)
	if err != nil {
		return boxed.Value{}, err
	}
	return e.eval.Eval(file)
}

// Cast unboxes v as a T (spec.md §6's `engine.boxed_cast<T>(BoxedValue)`).
func Cast[T any](e *Engine, v boxed.Value) (T, error) {
	return boxed.Cast[T](v, e.dispatch)
}

// EvalAs parses and evaluates source, then unboxes the result as a T
// (spec.md §6's `engine.eval<T>(source)`).
func EvalAs[T any](e *Engine, source string) (T, error) {
	var zero T
	v, err := e.Eval(source)
	if err != nil {
		return zero, err
	}
	return Cast[T](e, v)
}

// ToString renders v via the registered `to_string` overload — the
// primitive cmd/chai's REPL uses to print a non-void result (spec.md §6's
// CLI description: "prints the to_string of the result if non-void").
func (e *Engine) ToString(v boxed.Value) (string, error) {
	result, err := e.dispatch.Invoke("to_string", []boxed.Value{v})
	if err != nil {
		return "", err
	}
	return Cast[string](e, result)
}

// GetState snapshots the engine's functions, types, and conversions
// (spec.md §6's `engine.get_state()`).
func (e *Engine) GetState() dispatch.State { return e.dispatch.SaveState() }

// SetState restores a previously captured State (spec.md §6's
// `engine.set_state(state)`).
func (e *Engine) SetState(s dispatch.State) { e.dispatch.RestoreState(s) }

// GetLocals returns a copy of the current innermost scope's bindings
// (spec.md §6's `engine.get_locals()`).
func (e *Engine) GetLocals() map[string]boxed.Value { return e.dispatch.Locals() }

// SetLocals replaces the current innermost scope's bindings (spec.md §6's
// `engine.set_locals(locals)`).
func (e *Engine) SetLocals(locals map[string]boxed.Value) { e.dispatch.SetLocals(locals) }
