package boxed

import "reflect"

// NumericView decodes any arithmetic BoxedValue into a uniform
// {is_float, i64, f64} shape, letting operator fast-paths do cross-type
// arithmetic (int+double, etc.) without a per-pair overload for every
// combination of arithmetic types (spec.md §4.2).
type NumericView struct {
	IsFloat bool
	AsI64   int64
	AsF64   float64
}

// Numeric decodes v into a NumericView. ok is false if v's bare type is
// not arithmetic.
func Numeric(v Value) (NumericView, bool) {
	if !v.ty.IsArithmetic() {
		return NumericView{}, false
	}
	rv := reflect.ValueOf(v.Raw())
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return NumericView{IsFloat: true, AsF64: rv.Float(), AsI64: int64(rv.Float())}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		return NumericView{AsI64: i, AsF64: float64(i)}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		return NumericView{AsI64: int64(u), AsF64: float64(u)}, true
	case reflect.Bool:
		if rv.Bool() {
			return NumericView{AsI64: 1, AsF64: 1}, true
		}
		return NumericView{}, true
	default:
		return NumericView{}, false
	}
}

// Promote applies fn to two numeric views, using integer semantics when
// both operands are integral and floating semantics otherwise — the
// promotion rule spec.md §4.2 requires for binary arithmetic operators.
func Promote(a, b NumericView, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) Value {
	if a.IsFloat || b.IsFloat {
		return New(floatOp(a.AsF64, b.AsF64))
	}
	return New(intOp(a.AsI64, b.AsI64))
}

// PromoteCompare is Promote's comparison counterpart: it always returns a
// bool, promoting to float only when at least one side is.
func PromoteCompare(a, b NumericView, intOp func(a, b int64) bool, floatOp func(a, b float64) bool) Value {
	if a.IsFloat || b.IsFloat {
		return New(floatOp(a.AsF64, b.AsF64))
	}
	return New(intOp(a.AsI64, b.AsI64))
}
