package prelude

import (
	"errors"
	"fmt"
	"math"

	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/dispatch"
	"github.com/rubiojr/chaiscript-go/proxy"
)

// installOperators registers the arithmetic, comparison, unary-step,
// assignment, and introspection overloads every script implicitly relies
// on, grounded in spec.md §4.2's NumericView/Promote cross-type promotion
// rule (eval("1 + 2.5") == 3.5, §8 scenario 1) and §4.5's Equation rule
// ("otherwise dispatch the `=` overload").
func installOperators(e *dispatch.Engine) {
	registerArith(e, "+", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
	registerArith(e, "-", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	registerArith(e, "*", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
	registerArith(e, "/", func(a, b int64) int64 { return a / b }, func(a, b float64) float64 { return a / b })
	registerArith(e, "%", func(a, b int64) int64 { return a % b }, math.Mod)

	// string + string concatenates; it lives in the same overload bucket as
	// the numeric "+" above (spec.md §4.5's supplemented rule: "strings
	// dispatch to the same `+` overload group as numerics").
	e.RegisterFunction("+", proxy.NewNative("+", func(a, b string) string { return a + b }, e))

	registerCompare(e, "<", func(a, b int64) bool { return a < b }, func(a, b float64) bool { return a < b }, func(a, b string) bool { return a < b })
	registerCompare(e, ">", func(a, b int64) bool { return a > b }, func(a, b float64) bool { return a > b }, func(a, b string) bool { return a > b })
	registerCompare(e, "<=", func(a, b int64) bool { return a <= b }, func(a, b float64) bool { return a <= b }, func(a, b string) bool { return a <= b })
	registerCompare(e, ">=", func(a, b int64) bool { return a >= b }, func(a, b float64) bool { return a >= b }, func(a, b string) bool { return a >= b })
	registerCompare(e, "==", func(a, b int64) bool { return a == b }, func(a, b float64) bool { return a == b }, func(a, b string) bool { return a == b })
	registerCompare(e, "!=", func(a, b int64) bool { return a != b }, func(a, b float64) bool { return a != b }, func(a, b string) bool { return a != b })

	registerStep(e, "++", 1)
	registerStep(e, "--", -1)

	registerAssign(e)
	registerCallExists(e)
}

// registerArith wires a binary arithmetic overload via boxed.Numeric/Promote
// rather than one NativeFunction per concrete type pair, so `1 + 2.5`
// promotes the way spec.md §4.2 requires without a combinatorial overload
// set.
func registerArith(e *dispatch.Engine, op string, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) {
	e.RegisterFunction(op, proxy.NewDynamic(op, 2, func(args []boxed.Value) (boxed.Value, error) {
		a, aok := boxed.Numeric(args[0])
		b, bok := boxed.Numeric(args[1])
		if !aok || !bok {
			return boxed.Value{}, fmt.Errorf("%w: %s requires arithmetic operands", proxy.ErrBadCast, op)
		}
		return boxed.Promote(a, b, intOp, floatOp), nil
	}))
}

// registerCompare wires a binary comparison overload that, like
// registerArith, decodes through NumericView for arithmetic operands and
// falls back to a direct string comparison, since ChaiScript strings
// support ordering (used by sort-style host callbacks).
func registerCompare(e *dispatch.Engine, op string, intOp func(a, b int64) bool, floatOp func(a, b float64) bool, strOp func(a, b string) bool) {
	e.RegisterFunction(op, proxy.NewDynamic(op, 2, func(args []boxed.Value) (boxed.Value, error) {
		a, aok := boxed.Numeric(args[0])
		b, bok := boxed.Numeric(args[1])
		if aok && bok {
			return boxed.PromoteCompare(a, b, intOp, floatOp), nil
		}
		as, aerr := boxed.Cast[string](args[0], e)
		bs, berr := boxed.Cast[string](args[1], e)
		if aerr == nil && berr == nil {
			return boxed.New(strOp(as, bs)), nil
		}
		return boxed.Value{}, fmt.Errorf("%w: %s requires matching arithmetic or string operands", proxy.ErrBadCast, op)
	}))
}

// registerStep wires the ++/-- unary operators eval.evalPrefix dispatches.
func registerStep(e *dispatch.Engine, op string, delta int64) {
	e.RegisterFunction(op, proxy.NewDynamic(op, 1, func(args []boxed.Value) (boxed.Value, error) {
		v, ok := boxed.Numeric(args[0])
		if !ok {
			return boxed.Value{}, fmt.Errorf("%w: %s requires an arithmetic operand", proxy.ErrBadCast, op)
		}
		if v.IsFloat {
			return boxed.New(v.AsF64 + float64(delta)), nil
		}
		return boxed.New(v.AsI64 + delta), nil
	}))
}

// registerAssign wires the default `=` overload eval/equation.go's assign
// dispatches for an already-bound Id target. It mutates the target's
// storage in place via boxed.Value.SetInPlace, so every alias sharing that
// storage (through `:=` or interning) observes the new value. A bare-type
// mismatch is reported as proxy.ErrBadCast rather than propagated directly,
// so overload resolution keeps trying the next candidate instead of
// failing outright — letting a script- or host-registered `=` overload for
// a specific type take precedence when one exists (spec.md §8's overload
// order rule: the earlier-registered candidate wins only once it actually
// matches).
func registerAssign(e *dispatch.Engine) {
	e.RegisterFunction("=", proxy.NewDynamic("=", 2, func(args []boxed.Value) (boxed.Value, error) {
		if err := args[0].SetInPlace(args[1]); err != nil {
			if errors.Is(err, boxed.ErrBadCast) || errors.Is(err, boxed.ErrNoOwnership) {
				return boxed.Value{}, fmt.Errorf("%w: %v", proxy.ErrBadCast, err)
			}
			return boxed.Value{}, err
		}
		return args[0], nil
	}))
}

// registerCallExists wires call_exists(fn, args...), the other name spec.md
// §9 requires pre-registered for the prelude's own load order. It reports
// whether invoking fn with args would dispatch successfully, without
// actually calling it (ProxyFunction.TypesMatch is the no-side-effect
// probe spec.md §4.3 provides for exactly this).
func registerCallExists(e *dispatch.Engine) {
	e.RegisterFunction("call_exists", proxy.NewDynamic("call_exists", -1, func(args []boxed.Value) (boxed.Value, error) {
		if len(args) == 0 {
			return boxed.Value{}, fmt.Errorf("call_exists: requires a function argument")
		}
		fn, ok := args[0].Raw().(proxy.Function)
		if !ok {
			return boxed.New(false), nil
		}
		return boxed.New(fn.TypesMatch(args[1:], e)), nil
	}))
}
