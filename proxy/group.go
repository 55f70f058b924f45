package proxy

import (
	"errors"
	"fmt"

	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/typeinfo"
)

// DispatchGroup aggregates multiple Functions sharing a name; invocation
// performs overload resolution across the group (spec.md §3/§4.3).
// DispatchEngine.GetObject wraps a name's whole overload set in one of
// these so first-class function references ("pass `f` around") see every
// candidate, not just one.
type DispatchGroup struct {
	name      string
	overloads []Function // in registration order — this order is the dispatch order
}

// NewDispatchGroup builds a DispatchGroup over overloads, preserving
// their registration order (earliest first), which is the order Dispatch
// tries them in.
func NewDispatchGroup(name string, overloads []Function) *DispatchGroup {
	return &DispatchGroup{name: name, overloads: append([]Function(nil), overloads...)}
}

func (g *DispatchGroup) Overloads() []Function { return g.overloads }

func (g *DispatchGroup) ParamTypes() []typeinfo.TypeInfo {
	if len(g.overloads) == 1 {
		return g.overloads[0].ParamTypes()
	}
	return nil
}

func (g *DispatchGroup) Arity() (int, bool) {
	if len(g.overloads) == 0 {
		return 0, false
	}
	n, fixed := g.overloads[0].Arity()
	for _, o := range g.overloads[1:] {
		on, ofixed := o.Arity()
		if !ofixed || on != n {
			return 0, false
		}
	}
	return n, fixed
}

func (g *DispatchGroup) TypesMatch(args []boxed.Value, conv boxed.Converter) bool {
	for _, o := range g.overloads {
		if o.TypesMatch(args, conv) {
			return true
		}
	}
	return false
}

func (g *DispatchGroup) Equal(other Function) bool {
	o, ok := other.(*DispatchGroup)
	return ok && g.name == o.name
}

// Call dispatches to the group, delegating to the package-level Dispatch
// algorithm over this group's own conversion-less view (no conversion
// registry is known at this layer — see dispatch.Engine.Invoke, which
// calls Dispatch directly with its own Converter so conversions apply).
func (g *DispatchGroup) Call(args []boxed.Value) (boxed.Value, error) {
	return Dispatch(g.overloads, args, nil)
}

// Dispatch implements spec.md §4.3's overload-resolution algorithm:
//
//  1. Filter candidates to those whose TypesMatch(args) is true.
//  2. In definition order, attempt to invoke each; ErrBadCast,
//     ErrArityMismatch, or ErrGuardFailed tries the next candidate, any
//     other failure (e.g. a host panic) propagates immediately.
//  3. If every candidate is exhausted, fail ErrDispatchError.
func Dispatch(candidates []Function, args []boxed.Value, conv boxed.Converter) (boxed.Value, error) {
	var filtered []Function
	for _, c := range candidates {
		if c.TypesMatch(args, conv) {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return boxed.Value{}, fmt.Errorf("%w: no overload accepts %d argument(s)", ErrDispatchError, len(args))
	}

	var lastErr error
	for _, c := range filtered {
		result, err := c.Call(args)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrBadCast) || errors.Is(err, ErrArityMismatch) || errors.Is(err, ErrGuardFailed) {
			lastErr = err
			continue
		}
		return boxed.Value{}, err
	}
	return boxed.Value{}, fmt.Errorf("%w: %v", ErrDispatchError, lastErr)
}
