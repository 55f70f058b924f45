// Package dispatch implements the DispatchEngine of spec.md §4.4: a
// scoped name→object map, a name→function multimap, a type registry, a
// conversion registry, and the overload-resolution glue (proxy.Dispatch)
// that ties them together for the evaluator.
package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/proxy"
	"github.com/rubiojr/chaiscript-go/typeinfo"
)

// ErrScopeUnderflow is returned by PopScope when called with only the
// global frame remaining (spec.md §4.4: "pop on the last frame fails").
var ErrScopeUnderflow = errors.New("dispatch: cannot pop the global scope")

// ErrNotFound is returned by GetObject when name is bound nowhere and no
// function is registered under that name either.
var ErrNotFound = errors.New("dispatch: object not found")

// ErrOutOfBounds is the sentinel container implementations (prelude's
// Vector/Map) return from their `[]` overload on an out-of-range index,
// letting the evaluator surface spec.md §4.5's "Out of bounds" EvalError
// without either package depending on the other's concrete error type.
var ErrOutOfBounds = errors.New("dispatch: out of bounds")

// frame is one level of the scope stack: a mapping from name to
// BoxedValue (spec.md §3, "Scope").
type frame map[string]boxed.Value

// Engine is the DispatchEngine. One instance is single-threaded internal
// state (spec.md §5): concurrent access from multiple goroutines to the
// same Engine is undefined, though the process-wide BoxedValue interning
// cache (boxed package) is itself always safe to share across engines.
type Engine struct {
	mu          sync.Mutex // guards scopes only; registries are setup-then-read per spec.md §5
	scopes      []frame
	functions   *functionRegistry
	types       map[string]typeinfo.TypeInfo
	conversions *conversionRegistry
}

// New returns an Engine with a single global scope frame.
func New() *Engine {
	return &Engine{
		scopes:      []frame{make(frame)},
		functions:   newFunctionRegistry(),
		types:       make(map[string]typeinfo.TypeInfo),
		conversions: newConversionRegistry(),
	}
}

// PushScope introduces a new innermost frame.
func (e *Engine) PushScope() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scopes = append(e.scopes, make(frame))
}

// PopScope removes the innermost frame. Popping the last (global) frame
// is an error.
func (e *Engine) PopScope() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.scopes) <= 1 {
		return ErrScopeUnderflow
	}
	e.scopes = e.scopes[:len(e.scopes)-1]
	return nil
}

// ScopeDepth reports the current number of frames, used by tests to
// assert the exception-safety property from spec.md §8: after any
// EvalError, depth must equal the depth before the failing eval.
func (e *Engine) ScopeDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.scopes)
}

// AddObject introduces a new binding in the innermost frame, shadowing
// any outer binding of the same name.
func (e *Engine) AddObject(name string, v boxed.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scopes[len(e.scopes)-1][name] = v
}

// AddGlobal binds name in the outermost (global) frame regardless of
// current scope depth.
func (e *Engine) AddGlobal(name string, v boxed.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scopes[0][name] = v
}

// SetObject walks scopes outward from the innermost frame and mutates the
// first binding of name it finds; if none exists, it adds the binding
// globally (spec.md §4.4).
func (e *Engine) SetObject(name string, v boxed.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if _, ok := e.scopes[i][name]; ok {
			e.scopes[i][name] = v
			return
		}
	}
	e.scopes[0][name] = v
}

// GetObject resolves name by searching scopes innermost-outward. If no
// variable binding exists, it returns a BoxedValue wrapping a
// proxy.DispatchGroup of every function registered under that name,
// enabling first-class function references (spec.md §4.4). ErrNotFound
// is returned only when neither a binding nor any function exists.
func (e *Engine) GetObject(name string) (boxed.Value, error) {
	e.mu.Lock()
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i][name]; ok {
			e.mu.Unlock()
			return v, nil
		}
	}
	e.mu.Unlock()

	if overloads := e.functions.overloads(name); len(overloads) > 0 {
		return boxed.New(proxy.NewDispatchGroup(name, overloads)), nil
	}
	return boxed.Value{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// LookupLocal resolves name against the scope stack only — no function
// registry fallback — reporting whether a variable binding exists. Used
// by the evaluator to let a local variable shadow a same-named registered
// function at a call site (spec.md §4.5's Fun_Call rule).
func (e *Engine) LookupLocal(name string) (boxed.Value, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i][name]; ok {
			return v, true
		}
	}
	return boxed.Value{}, false
}

// CallState is an opaque snapshot of the scope stack, saved by EnterCall
// and restored by ExitCall.
type CallState struct {
	scopes []frame
}

// EnterCall swaps the scope stack to just the global frame plus one fresh
// frame, so a function call sees no caller locals (spec.md §4.5: "the
// callee sees only a single new frame, not the caller's locals"). The
// returned CallState must be passed to ExitCall on every exit path,
// including via defer so a panic unwinding through the call still
// restores the caller's view.
func (e *Engine) EnterCall() CallState {
	e.mu.Lock()
	defer e.mu.Unlock()
	saved := e.scopes
	e.scopes = []frame{saved[0], make(frame)}
	return CallState{scopes: saved}
}

// ExitCall restores the scope stack saved by EnterCall.
func (e *Engine) ExitCall(s CallState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scopes = s.scopes
}

// Locals returns a copy of the innermost scope frame (spec.md §6's
// `get_locals()`).
func (e *Engine) Locals() map[string]boxed.Value {
	e.mu.Lock()
	defer e.mu.Unlock()
	top := e.scopes[len(e.scopes)-1]
	cp := make(map[string]boxed.Value, len(top))
	for k, v := range top {
		cp[k] = v
	}
	return cp
}

// SetLocals replaces the innermost scope frame's bindings with locals
// (spec.md §6's `set_locals(locals)`), leaving the scope stack's depth
// unchanged.
func (e *Engine) SetLocals(locals map[string]boxed.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	top := make(frame, len(locals))
	for k, v := range locals {
		top[k] = v
	}
	e.scopes[len(e.scopes)-1] = top
}

// RegisterType records a TypeInfo under a script-visible name.
func (e *Engine) RegisterType(name string, ti typeinfo.TypeInfo) {
	e.types[name] = ti
}

// LookupType resolves a script-visible type name.
func (e *Engine) LookupType(name string) (typeinfo.TypeInfo, bool) {
	ti, ok := e.types[name]
	return ti, ok
}

// RegisterFunction appends fn to name's overload set, deduplicating by
// signature equality (spec.md §4.4).
func (e *Engine) RegisterFunction(name string, fn proxy.Function) {
	e.functions.register(name, fn)
}

// Overloads returns every Function registered under name, in
// registration order — the order overload resolution tries them in.
func (e *Engine) Overloads(name string) []proxy.Function {
	return e.functions.overloads(name)
}

// Invoke resolves and calls the best overload of name for args, per
// spec.md §4.3's Dispatch algorithm, using this engine's conversion
// registry during both filtering and per-candidate argument extraction.
func (e *Engine) Invoke(name string, args []boxed.Value) (boxed.Value, error) {
	overloads := e.functions.overloads(name)
	if len(overloads) == 0 {
		return boxed.Value{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return proxy.Dispatch(overloads, args, e)
}
