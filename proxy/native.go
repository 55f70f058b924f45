package proxy

import (
	"fmt"
	"reflect"

	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/typeinfo"
)

// NativeFunction wraps a host callable of statically known Go signature —
// a free function, method value, lambda, or constructor helper — as
// described in spec.md §4.3. Arity and per-parameter TypeInfos are fixed
// at registration time by inspecting fn's reflect.Type once; no further
// reflection on the signature happens per call, only on the argument
// values (the idiomatic-Go replacement for the C++ source's
// preprocessor-generated 1–10-arity overloads, per spec.md §9).
type NativeFunction struct {
	fn       reflect.Value
	fnType   reflect.Type
	params   []typeinfo.TypeInfo
	variadic bool
	conv     boxed.Converter
	name     string // for diagnostics only
}

// NewNative wraps fn, a Go func value, as a NativeFunction. conv is
// consulted during argument extraction so registered conversions (e.g. a
// derived-to-base upcast) apply just as they do during overload
// filtering; it may be nil.
func NewNative(name string, fn any, conv boxed.Converter) *NativeFunction {
	rv := reflect.ValueOf(fn)
	rt := rv.Type()
	if rt.Kind() != reflect.Func {
		panic(fmt.Sprintf("proxy.NewNative(%s): not a function: %T", name, fn))
	}

	n := rt.NumIn()
	params := make([]typeinfo.TypeInfo, n)
	for i := 0; i < n; i++ {
		pt := rt.In(i)
		if rt.IsVariadic() && i == n-1 {
			pt = pt.Elem()
		}
		params[i] = typeinfo.Of(pt)
	}

	return &NativeFunction{
		fn:       rv,
		fnType:   rt,
		params:   params,
		variadic: rt.IsVariadic(),
		conv:     conv,
		name:     name,
	}
}

func (n *NativeFunction) ParamTypes() []typeinfo.TypeInfo { return n.params }

func (n *NativeFunction) Arity() (int, bool) { return len(n.params), !n.variadic }

func (n *NativeFunction) TypesMatch(args []boxed.Value, conv boxed.Converter) bool {
	if n.variadic {
		if len(args) < len(n.params) {
			return false
		}
		for i, a := range args {
			pt := n.paramTypeAt(i)
			if a.IsUndef() || pt.BareEqual(a.Type()) || (pt.IsArithmetic() && a.Type().IsArithmetic()) {
				continue
			}
			if conv != nil {
				if _, ok := conv.Convert(a.Type(), pt, a); ok {
					continue
				}
			}
			return false
		}
		return true
	}
	return typesMatchSignature(n.params, args, conv)
}

func (n *NativeFunction) paramTypeAt(i int) typeinfo.TypeInfo {
	if i < len(n.params) {
		return n.params[i]
	}
	return n.params[len(n.params)-1]
}

// Call implements spec.md §4.3's three-step NativeFunction invocation:
// arity check, per-argument cast, invoke-and-rewrap.
func (n *NativeFunction) Call(args []boxed.Value) (val boxed.Value, err error) {
	if n.variadic {
		if len(args) < len(n.params)-1 {
			return boxed.Value{}, fmt.Errorf("%s: %w: want at least %d, got %d", n.name, ErrArityMismatch, len(n.params)-1, len(args))
		}
	} else if len(args) != len(n.params) {
		return boxed.Value{}, fmt.Errorf("%s: %w: want %d, got %d", n.name, ErrArityMismatch, len(n.params), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := n.fnType.In(i)
		if n.variadic && i >= n.fnType.NumIn()-1 {
			pt = n.fnType.In(n.fnType.NumIn() - 1).Elem()
		}
		rv, castErr := n.extractArg(a, pt)
		if castErr != nil {
			return boxed.Value{}, fmt.Errorf("%s: arg %d: %w", n.name, i, castErr)
		}
		in[i] = rv
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: host panic: %v", n.name, r)
		}
	}()

	out := n.fn.Call(in)
	return n.wrapResults(out), nil
}

// extractArg converts a into a reflect.Value assignable to want, using
// the boxed value's raw payload directly (fast path, which also converts
// between numeric kinds: integer to integer, integer to float and float to
// float, but never float to integer) or the conversion registry (slow path
// covering registered conversions such as derived→base and containers).
func (n *NativeFunction) extractArg(a boxed.Value, want reflect.Type) (reflect.Value, error) {
	raw := a.Raw()
	if raw != nil {
		rv := reflect.ValueOf(raw)
		if rv.Type().AssignableTo(want) {
			return rv, nil
		}
		fromFloat := rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64
		toFloat := want.Kind() == reflect.Float32 || want.Kind() == reflect.Float64
		if rv.Type().ConvertibleTo(want) && isNumericKind(rv.Kind()) && isNumericKind(want.Kind()) && (toFloat || !fromFloat) {
			return rv.Convert(want), nil
		}
	}
	if n.conv != nil {
		if converted, ok := n.conv.Convert(a.Type(), typeinfo.Of(want), a); ok {
			if craw := converted.Raw(); craw != nil {
				rv := reflect.ValueOf(craw)
				if rv.Type().AssignableTo(want) {
					return rv, nil
				}
			}
		}
	}
	return reflect.Value{}, fmt.Errorf("%w: want %s, have %s", ErrBadCast, want, a.Type())
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// wrapResults rewraps the host call's return values into a single
// boxed.Value: void for no returns, the value itself for one return
// (passing an already-boxed.Value through untouched), and a boxed slice
// for multiple returns (script code sees these positionally via `[]`).
func (n *NativeFunction) wrapResults(out []reflect.Value) boxed.Value {
	switch len(out) {
	case 0:
		return boxed.Void()
	case 1:
		return boxValueOrWrap(out[0])
	default:
		vals := make([]boxed.Value, len(out))
		for i, o := range out {
			vals[i] = boxValueOrWrap(o)
		}
		return boxed.New(vals)
	}
}

func boxValueOrWrap(rv reflect.Value) boxed.Value {
	if bv, ok := rv.Interface().(boxed.Value); ok {
		return bv
	}
	return boxed.New(rv.Interface())
}

func (n *NativeFunction) Equal(other Function) bool {
	o, ok := other.(*NativeFunction)
	if !ok {
		return false
	}
	return n.name == o.name && Signature(n.params).Equal(Signature(o.params))
}
