// Package boxed implements BoxedValue, the type-erased container that
// flows through every call in the engine: script literals, function
// arguments, return values, and variable bindings are all boxed.Value.
//
// A Value carries a typeinfo.TypeInfo plus either an owned, shared
// allocation of the underlying Go value or a non-owning reference to an
// externally owned instance. Which form is in play is recorded by
// IsReference; see cast.go for the typed extraction rules and intern.go
// for the identity-interning cache.
package boxed

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/rubiojr/chaiscript-go/typeinfo"
)

// ErrBadCast is returned by Cast when the stored type cannot produce the
// requested form and no registered conversion applies.
var ErrBadCast = errors.New("bad cast")

// ErrAlreadyBound is returned by Assign when called on a Value that has
// already been bound to a concrete type.
var ErrAlreadyBound = errors.New("value already bound")

// ErrConstViolation is returned when a mutable reference is requested from
// a const-qualified box.
var ErrConstViolation = errors.New("cannot take a mutable reference to a const value")

// ErrNoOwnership is returned when ownership is requested from a box that
// only holds a borrowed reference.
var ErrNoOwnership = errors.New("value is a reference, not owned")

// sharedRecord is the heap allocation a Value may point at. Several
// Values can point at the same sharedRecord — that's what "shared
// ownership" means here; Go's GC reclaims it once nothing references it.
type sharedRecord struct {
	data any
}

// Value is the type-erased, boxed value described by spec.md §3/§4.2.
type Value struct {
	ty          typeinfo.TypeInfo
	shared      *sharedRecord // set when !isReference
	ref         any           // set when isReference: a pointer to the externally owned instance
	isReference bool
	isConst     bool
}

// Undef returns an unbound BoxedValue, used for freshly declared
// variables awaiting their first assignment (spec.md §3, "Undef box").
func Undef() Value {
	return Value{ty: typeinfo.Undef}
}

// Void returns the distinguished empty value produced by calls that
// return nothing.
func Void() Value {
	return Value{ty: typeinfo.Void}
}

// IsUndef reports whether v has not yet been bound to a concrete type.
func (v Value) IsUndef() bool { return v.ty.IsUndef() }

// IsVoid reports whether v is the void sentinel.
func (v Value) IsVoid() bool { return v.ty.IsVoid() }

// Type returns v's TypeInfo.
func (v Value) Type() typeinfo.TypeInfo { return v.ty }

// IsReference reports whether v borrows an externally owned instance
// rather than owning a shared allocation.
func (v Value) IsReference() bool { return v.isReference }

// IsConst reports whether v is const-qualified.
func (v Value) IsConst() bool { return v.isConst }

// New boxes an owned copy of v, allocating a fresh shared record. This is
// the "owned T, by value" construction form from spec.md §4.2.
func New(v any) Value {
	boxed := Value{
		ty:     typeinfo.Of(reflect.TypeOf(v)),
		shared: &sharedRecord{data: v},
	}
	return internOnBox(v, boxed)
}

// NewConst is New but marks the result const.
func NewConst(v any) Value {
	b := New(v)
	b.isConst = true
	return b
}

// NewRef boxes a non-owning reference to an externally owned instance.
// ptr must be a pointer to the referent; the box's TypeInfo describes the
// pointee, with IsReference set, matching spec.md §4.2's "explicit
// reference-wrapper" construction form.
func NewRef(ptr any) Value {
	rt := reflect.TypeOf(ptr)
	if rt == nil || rt.Kind() != reflect.Pointer {
		panic("boxed.NewRef: argument must be a pointer to the referent")
	}
	return Value{
		ty:          typeinfo.Of(rt).WithReference(true),
		ref:         ptr,
		isReference: true,
	}
}

// NewConstRef is NewRef but marks the result const, so mutable casts fail.
func NewConstRef(ptr any) Value {
	b := NewRef(ptr)
	b.isConst = true
	b.ty = b.ty.WithConst(true)
	return b
}

// Assign performs the one-shot type binding an Undef box supports: the
// first assignment gives it a concrete type and storage. Calling Assign on
// an already-bound box is an error — further mutation must go through the
// registered `=` operator instead (see eval's Equation handling).
func (v *Value) Assign(src Value) error {
	if !v.IsUndef() {
		return ErrAlreadyBound
	}
	*v = src
	return nil
}

// Rebind implements `:=`'s reference-rebind semantics (spec.md §4.5): v
// comes to share src's storage in place, provided either v is Undef or
// their bare types already match.
func (v *Value) Rebind(src Value) error {
	if !v.IsUndef() && !v.ty.BareEqual(src.ty) {
		return fmt.Errorf("%w: cannot rebind %s to %s", ErrBadCast, v.ty, src.ty)
	}
	*v = src
	return nil
}

// SetInPlace overwrites v's existing storage with src's current value,
// without rebinding v to src's storage the way Rebind does: every other
// Value that shares v's storage (through interning or a `:=` alias)
// observes the new value too. This is the mechanism behind assigning
// into an already-bound variable (spec.md §4.5's Equation rule: "otherwise
// dispatch the `=` overload").
func (v Value) SetInPlace(src Value) error {
	if v.isConst {
		return ErrConstViolation
	}
	if v.IsUndef() {
		return fmt.Errorf("%w: cannot assign into an unbound value", ErrNoOwnership)
	}
	if !v.ty.BareEqual(src.ty) && !(v.ty.IsArithmetic() && src.ty.IsArithmetic()) {
		return fmt.Errorf("%w: cannot assign %s into %s", ErrBadCast, src.ty, v.ty)
	}

	payload := src.Raw()
	if v.isReference {
		rv := reflect.ValueOf(v.ref)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return fmt.Errorf("%w: reference storage is gone", ErrNoOwnership)
		}
		pv := reflect.ValueOf(payload)
		if v.ty.IsArithmetic() && pv.Type() != rv.Elem().Type() {
			pv = pv.Convert(rv.Elem().Type())
		}
		rv.Elem().Set(pv)
		return nil
	}

	if v.shared == nil {
		return fmt.Errorf("%w: no storage to assign into", ErrNoOwnership)
	}
	if v.ty.IsArithmetic() && reflect.TypeOf(payload) != reflect.TypeOf(v.shared.data) {
		payload = reflect.ValueOf(payload).Convert(reflect.TypeOf(v.shared.data)).Interface()
	}
	v.shared.data = payload
	return nil
}

// Raw returns the underlying Go value for diagnostics and for the
// prelude's native functions that want direct `any` access without paying
// for a generic Cast. It does not consult the conversion registry.
func (v Value) Raw() any {
	if v.isReference {
		return derefAny(v.ref)
	}
	if v.shared == nil {
		return nil
	}
	return v.shared.data
}

// derefAny dereferences a pointer obtained via reflect back to a plain
// `any` holding the pointee, for callers (like Raw) that want the value,
// not the pointer mechanics.
func derefAny(ptr any) any {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}
