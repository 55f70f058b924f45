// Package proxy implements ProxyFunction, the uniform call interface over
// native callables, script-defined functions, partial applications, and
// overload groups described in spec.md §3/§4.3.
package proxy

import (
	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/typeinfo"
)

// Function is the common interface every ProxyFunction variant satisfies:
// NativeFunction, DynamicFunction, BoundFunction, and DispatchGroup.
type Function interface {
	// Call invokes the function with args, returning ErrArityMismatch,
	// ErrBadCast, or ErrGuardFailed on failure. Implementations must not
	// partially consume args on failure (spec.md §4.3).
	Call(args []boxed.Value) (boxed.Value, error)

	// ParamTypes reports the function's parameter TypeInfos. A
	// DynamicFunction with no fixed arity returns nil.
	ParamTypes() []typeinfo.TypeInfo

	// Arity reports the function's argument count and whether it is
	// fixed (false means variable/unknown arity).
	Arity() (int, bool)

	// TypesMatch reports whether args is type-compatible with this
	// function's parameters without actually invoking it — used by
	// overload filtering (spec.md §4.3 step 1).
	TypesMatch(args []boxed.Value, conv boxed.Converter) bool

	// Equal reports whether two Functions have the same signature and
	// target, used by FunctionRegistry's registration-time dedup.
	Equal(other Function) bool
}

// Signature is a parameter TypeInfo list, compared by NativeFunction.Equal
// for FunctionRegistry dedup.
type Signature []typeinfo.TypeInfo

// Equal reports whether two signatures have the same arity and every
// parameter's bare type matches positionally.
func (s Signature) Equal(o Signature) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if !s[i].BareEqual(o[i]) {
			return false
		}
	}
	return true
}

// typesMatchSignature is the shared TypesMatch implementation for
// fixed-arity functions (NativeFunction and arity-pinned
// DynamicFunction): every parameter TypeInfo must be either a bare match,
// an arithmetic-to-arithmetic pair, or reachable via a registered
// conversion (spec.md §4.3 step 1).
func typesMatchSignature(params []typeinfo.TypeInfo, args []boxed.Value, conv boxed.Converter) bool {
	if len(params) != len(args) {
		return false
	}
	for i, p := range params {
		a := args[i]
		if a.IsUndef() {
			// An Undef argument binds to anything; parameter binding
			// fills it in (spec.md §4.2's one-shot assignment).
			continue
		}
		if p.BareEqual(a.Type()) {
			continue
		}
		if p.IsArithmetic() && a.Type().IsArithmetic() {
			continue
		}
		if conv != nil {
			if _, ok := conv.Convert(a.Type(), p, a); ok {
				continue
			}
		}
		return false
	}
	return true
}
