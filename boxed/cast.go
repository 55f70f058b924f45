package boxed

import (
	"fmt"
	"reflect"

	"github.com/rubiojr/chaiscript-go/typeinfo"
)

// Converter looks up a registered conversion from one bare type to
// another and, if one exists, applies it to v. It is satisfied by
// dispatch.Engine's conversion registry; boxed itself knows nothing about
// how conversions are registered, only how to ask for one, which keeps
// this package free of an import cycle with dispatch.
type Converter interface {
	Convert(from, to typeinfo.TypeInfo, v Value) (Value, bool)
}

// Cast extracts a U from v according to spec.md §4.2's rules:
//
//   - requesting a pointer form *U (used for the "const U&"/"U&" forms)
//     from a reference-held box yields the stored pointer, a borrow of the
//     external object;
//   - requesting a mutable reference from a const box fails;
//   - requesting ownership (U, not *U) from a reference-held box copies
//     the referent's current value (Go has no borrow checker to violate,
//     so this degrades gracefully to a copy rather than failing);
//   - requesting *U from an owned box yields the stored pointer when the
//     box holds a *U, and otherwise a pointer to a fresh copy of the value;
//   - if conv is non-nil and the stored bare type doesn't match U but a
//     registered conversion does, it is invoked before giving up.
func Cast[U any](v Value, conv Converter) (U, error) {
	var zero U
	want := typeinfo.TypeOf[U]()

	if v.IsUndef() || v.IsVoid() {
		return zero, fmt.Errorf("%w: cannot cast %s to %s", ErrBadCast, v.ty, want)
	}

	if raw, ok := extractExact[U](v); ok {
		return raw, nil
	}

	if conv != nil {
		if converted, ok := conv.Convert(v.ty, want, v); ok {
			if raw, ok := extractExact[U](converted); ok {
				return raw, nil
			}
		}
	}

	return zero, fmt.Errorf("%w: want %s, have %s", ErrBadCast, want, v.ty)
}

// extractExact attempts the cast assuming v's bare type already matches U,
// without consulting any conversion registry.
func extractExact[U any](v Value) (U, bool) {
	var zero U
	want := typeinfo.TypeOf[U]()
	if !v.ty.BareEqual(want) {
		return zero, false
	}

	rawPtr := reflect.TypeOf(zero) != nil && reflect.TypeOf(zero).Kind() == reflect.Pointer

	if v.isReference {
		if rawPtr {
			// Requesting a pointer form from a reference-held box: hand
			// back the stored pointer directly, respecting constness.
			if v.isConst && !want.IsConst() {
				return zero, false
			}
			if rv := reflect.ValueOf(v.ref); rv.Type().AssignableTo(reflect.TypeOf(zero)) {
				return rv.Interface().(U), true
			}
			return zero, false
		}
		// Requesting ownership from a reference: copy out the current value.
		val := derefAny(v.ref)
		if u, ok := val.(U); ok {
			return u, true
		}
		return zero, false
	}

	if v.shared == nil {
		return zero, false
	}
	if u, ok := v.shared.data.(U); ok && !(rawPtr && v.isConst && !want.IsConst()) {
		// The box already stores a U (for a pointer U, the pointer itself).
		return u, true
	}
	if rawPtr {
		// Ownership requested as a pointer form: cannot manufacture a
		// pointer to the shared record's interior without aliasing it,
		// so this degrades to returning a pointer to a fresh copy.
		cp := v.shared.data
		rv := reflect.New(reflect.TypeOf(cp))
		rv.Elem().Set(reflect.ValueOf(cp))
		if rv.Type().AssignableTo(reflect.TypeOf(zero)) {
			return rv.Interface().(U), true
		}
		return zero, false
	}
	if u, ok := v.shared.data.(U); ok {
		return u, true
	}
	return zero, false
}
