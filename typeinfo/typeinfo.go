// Package typeinfo carries the runtime type identity that flows through
// every BoxedValue, ProxyFunction signature, and dispatch decision in the
// engine. A TypeInfo never changes identity once minted: TypeOf[T] always
// returns the same bare id for the same T, so two TypeInfos compare equal
// iff their bare ids match, regardless of const/reference/pointer
// qualifiers layered on top.
package typeinfo

import (
	"reflect"
	"sync"
)

// id is a stable, process-wide identifier for a bare (unqualified) type.
type id uint64

// TypeInfo identifies a type at runtime: its bare identity plus the
// qualifiers the call site cares about (const, reference, pointer, void).
// Values are cheap to copy.
type TypeInfo struct {
	bareID       id
	bareName     string
	isConst      bool
	isReference  bool
	isPointer    bool
	isVoid       bool
	isArithmetic bool
	isUndef      bool
}

// Undef is the type of a BoxedValue that has not yet been bound.
var Undef = TypeInfo{bareName: "undef", isUndef: true}

// Void is the sentinel type for a function call that returns nothing.
var Void = TypeInfo{bareName: "void", isVoid: true}

// BareID returns the opaque identifier of the unqualified type. Two
// TypeInfos with the same BareID are the same type for dispatch purposes.
func (t TypeInfo) BareID() uint64 { return uint64(t.bareID) }

// Name returns a human-readable name for the bare type, used in error
// messages ("BadCast: want int, have string").
func (t TypeInfo) Name() string { return t.bareName }

func (t TypeInfo) IsConst() bool      { return t.isConst }
func (t TypeInfo) IsReference() bool  { return t.isReference }
func (t TypeInfo) IsPointer() bool    { return t.isPointer }
func (t TypeInfo) IsVoid() bool       { return t.isVoid }
func (t TypeInfo) IsArithmetic() bool { return t.isArithmetic }
func (t TypeInfo) IsUndef() bool      { return t.isUndef }

// BareEqual reports whether two TypeInfos describe the same underlying
// type, ignoring const/reference/pointer qualifiers.
func (t TypeInfo) BareEqual(o TypeInfo) bool {
	if t.isVoid || o.isVoid {
		return t.isVoid == o.isVoid
	}
	if t.isUndef || o.isUndef {
		return t.isUndef == o.isUndef
	}
	return t.bareID == o.bareID
}

// String implements fmt.Stringer for diagnostics.
func (t TypeInfo) String() string {
	s := t.bareName
	if t.isConst {
		s = "const " + s
	}
	if t.isReference {
		s += "&"
	}
	if t.isPointer {
		s += "*"
	}
	return s
}

// WithConst, WithReference, WithPointer return a copy of t with the given
// qualifier flag set. They never change BareID, matching the spec's rule
// that qualifier variants collapse to the same bare identity.
func (t TypeInfo) WithConst(v bool) TypeInfo     { t.isConst = v; return t }
func (t TypeInfo) WithReference(v bool) TypeInfo { t.isReference = v; return t }
func (t TypeInfo) WithPointer(v bool) TypeInfo   { t.isPointer = v; return t }

var (
	registryMu sync.Mutex
	nextID     id = 1
	byReflect     = make(map[reflect.Type]TypeInfo)
)

// arithmeticKinds enumerates the Go kinds treated as "arithmetic" per
// spec.md §4.1: signed/unsigned integers of every width, floats, and bool.
// char has no distinct Go kind; byte/rune are aliases already covered by
// uint8/int32.
var arithmeticKinds = map[reflect.Kind]bool{
	reflect.Int: true, reflect.Int8: true, reflect.Int16: true, reflect.Int32: true, reflect.Int64: true,
	reflect.Uint: true, reflect.Uint8: true, reflect.Uint16: true, reflect.Uint32: true, reflect.Uint64: true,
	reflect.Float32: true, reflect.Float64: true,
	reflect.Bool: true,
}

// TypeOf returns the canonical descriptor for T, minting a new bare id on
// first use and reusing it on every subsequent call — this is the
// "type-parameterized factory" spec.md §4.1 describes.
func TypeOf[T any]() TypeInfo {
	// Going through *T keeps interface types intact: reflect.TypeOf of a
	// nil interface value would be nil.
	rt := reflect.TypeOf((*T)(nil)).Elem()
	return Of(rt)
}

// Of returns the canonical descriptor for a reflect.Type, unwrapping a
// single level of pointer so `*T` and `T` share a bare id. The returned
// TypeInfo carries no pointer qualifier — callers that care about
// pointer-ness (e.g. a cast<T*> request) chain .WithPointer(true)
// themselves; Of only establishes bare identity.
func Of(rt reflect.Type) TypeInfo {
	if rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	ti, ok := byReflect[rt]
	if !ok {
		ti = TypeInfo{
			bareID:       nextID,
			bareName:     nameOf(rt),
			isArithmetic: rt != nil && arithmeticKinds[rt.Kind()],
		}
		nextID++
		byReflect[rt] = ti
	}
	return ti
}

func nameOf(rt reflect.Type) string {
	if rt == nil {
		return "any"
	}
	return rt.String()
}
