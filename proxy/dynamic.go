package proxy

import (
	"fmt"

	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/typeinfo"
)

// DynamicTarget is the raw callback a DynamicFunction wraps: it receives
// the full BoxedValue argument vector and returns one result, matching
// spec.md §4.3's "variadic host callback" — script-defined `def`/`fun`
// bodies are DynamicFunctions whose target runs the AST.
type DynamicTarget func(args []boxed.Value) (boxed.Value, error)

// DynamicFunction wraps a DynamicTarget with an optional fixed arity and
// an optional guard (another Function returning a bool), per spec.md
// §4.3. Script `def` and `fun` nodes both compile to a DynamicFunction.
type DynamicFunction struct {
	target     DynamicTarget
	arity      int
	hasArity   bool
	guard      Function
	paramTypes []typeinfo.TypeInfo // nil when untyped (script params have no static type)
	name       string
}

// NewDynamic builds a DynamicFunction. arity < 0 means unconstrained.
func NewDynamic(name string, arity int, target DynamicTarget) *DynamicFunction {
	d := &DynamicFunction{target: target, name: name}
	if arity >= 0 {
		d.arity = arity
		d.hasArity = true
		d.paramTypes = make([]typeinfo.TypeInfo, arity) // zero-value TypeInfos: script params are untyped and accept anything
	}
	return d
}

// WithGuard returns a copy of d with guard attached.
func (d *DynamicFunction) WithGuard(guard Function) *DynamicFunction {
	cp := *d
	cp.guard = guard
	return &cp
}

func (d *DynamicFunction) ParamTypes() []typeinfo.TypeInfo { return d.paramTypes }

func (d *DynamicFunction) Arity() (int, bool) { return d.arity, d.hasArity }

func (d *DynamicFunction) TypesMatch(args []boxed.Value, conv boxed.Converter) bool {
	if d.hasArity && len(args) != d.arity {
		return false
	}
	return true // script parameters are untyped: anything matches arity-wise
}

// Call implements spec.md §4.3's DynamicFunction invocation: arity check,
// guard check, invoke.
func (d *DynamicFunction) Call(args []boxed.Value) (boxed.Value, error) {
	if d.hasArity && len(args) != d.arity {
		return boxed.Value{}, fmt.Errorf("%s: %w: want %d, got %d", d.name, ErrArityMismatch, d.arity, len(args))
	}
	if d.guard != nil {
		result, err := d.guard.Call(args)
		if err != nil {
			return boxed.Value{}, fmt.Errorf("%s: guard: %w", d.name, err)
		}
		pass, castErr := boxed.Cast[bool](result, nil)
		if castErr != nil {
			return boxed.Value{}, fmt.Errorf("%s: guard did not return bool: %w", d.name, castErr)
		}
		if !pass {
			return boxed.Value{}, fmt.Errorf("%s: %w", d.name, ErrGuardFailed)
		}
	}
	return d.target(args)
}

func (d *DynamicFunction) Equal(other Function) bool {
	o, ok := other.(*DynamicFunction)
	if !ok {
		return false
	}
	return d.name == o.name && d.hasArity == o.hasArity && d.arity == o.arity && d.guard == o.guard
}
