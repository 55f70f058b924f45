package prelude

import (
	"fmt"

	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/dispatch"
	"github.com/rubiojr/chaiscript-go/proxy"
)

// Vector is the concrete Go type behind a script `Vector()` value — a
// Boxed_Value slice, matching the original implementation's
// std::vector<Boxed_Value> (chaiscript_prelude.hpp). Exported so host code
// (see chai.RegisterVectorConversion) can build and recognize Vector values
// without this package exposing a reflective escape hatch.
type Vector struct {
	Items []boxed.Value
}

// Table is the concrete Go type behind a script `Map()` value —
// a string-keyed Boxed_Value map, matching the original's
// std::map<std::string, Boxed_Value>.
type Table struct {
	Entries map[string]boxed.Value
}

// NewVector boxes items as a script Vector value.
func NewVector(items []boxed.Value) boxed.Value {
	return boxed.New(&Vector{Items: items})
}

// installContainers registers Vector()/Map() construction, push_back,
// `[]`/`[]=` indexing (used by eval's Array_Call/Inline_Array/Inline_Map
// desugaring), size, to_string, and clone — the element-agnostic container
// surface a NativeFunction's fixed parameter types can't express, so every
// one of these is a DynamicFunction operating on raw boxed.Value (spec.md
// §4.3's "variadic host callback").
func installContainers(e *dispatch.Engine) {
	e.RegisterFunction("Vector", proxy.NewDynamic("Vector", 0, func(args []boxed.Value) (boxed.Value, error) {
		return boxed.New(&Vector{}), nil
	}))
	e.RegisterFunction("Map", proxy.NewDynamic("Map", 0, func(args []boxed.Value) (boxed.Value, error) {
		return boxed.New(&Table{Entries: make(map[string]boxed.Value)}), nil
	}))

	e.RegisterFunction("push_back", proxy.NewDynamic("push_back", 2, func(args []boxed.Value) (boxed.Value, error) {
		v, ok := args[0].Raw().(*Vector)
		if !ok {
			return boxed.Value{}, fmt.Errorf("%w: push_back requires a Vector", proxy.ErrBadCast)
		}
		v.Items = append(v.Items, args[1])
		return args[0], nil
	}))

	e.RegisterFunction("[]", proxy.NewDynamic("[]", 2, func(args []boxed.Value) (boxed.Value, error) {
		switch c := args[0].Raw().(type) {
		case *Vector:
			i, err := boxed.Cast[int64](args[1], e)
			if err != nil {
				return boxed.Value{}, fmt.Errorf("%w: Vector index must be an integer", proxy.ErrBadCast)
			}
			if i < 0 || int(i) >= len(c.Items) {
				return boxed.Value{}, dispatch.ErrOutOfBounds
			}
			return c.Items[i], nil
		case *Table:
			key, err := boxed.Cast[string](args[1], e)
			if err != nil {
				return boxed.Value{}, fmt.Errorf("%w: Map key must be a string", proxy.ErrBadCast)
			}
			if v, ok := c.Entries[key]; ok {
				return v, nil
			}
			return boxed.Undef(), nil
		default:
			return boxed.Value{}, fmt.Errorf("%w: `[]` requires a Vector or Map", proxy.ErrBadCast)
		}
	}))

	// `[]=` is the create-on-assign path eval/equation.go's assignIndex
	// falls back to when `[]` reports an Undef slot — Vector indices are
	// never Undef (an out-of-range index is ErrOutOfBounds, not Undef), so
	// only Map needs it, to insert a brand new key.
	e.RegisterFunction("[]=", proxy.NewDynamic("[]=", 3, func(args []boxed.Value) (boxed.Value, error) {
		c, ok := args[0].Raw().(*Table)
		if !ok {
			return boxed.Value{}, fmt.Errorf("%w: `[]=` requires a Map", proxy.ErrBadCast)
		}
		key, err := boxed.Cast[string](args[1], e)
		if err != nil {
			return boxed.Value{}, fmt.Errorf("%w: Map key must be a string", proxy.ErrBadCast)
		}
		c.Entries[key] = args[2]
		return args[2], nil
	}))

	e.RegisterFunction("size", proxy.NewDynamic("size", 1, func(args []boxed.Value) (boxed.Value, error) {
		switch c := args[0].Raw().(type) {
		case *Vector:
			return boxed.New(int64(len(c.Items))), nil
		case *Table:
			return boxed.New(int64(len(c.Entries))), nil
		case string:
			return boxed.New(int64(len(c))), nil
		default:
			return boxed.Value{}, fmt.Errorf("%w: size requires a Vector, Map, or string", proxy.ErrBadCast)
		}
	}))

	e.RegisterFunction("to_string", proxy.NewDynamic("to_string", 1, func(args []boxed.Value) (boxed.Value, error) {
		return boxed.New(toString(args[0])), nil
	}))

	e.RegisterFunction("clone", proxy.NewDynamic("clone", 1, func(args []boxed.Value) (boxed.Value, error) {
		switch c := args[0].Raw().(type) {
		case *Vector:
			cp := make([]boxed.Value, len(c.Items))
			copy(cp, c.Items)
			return boxed.New(&Vector{Items: cp}), nil
		case *Table:
			cp := make(map[string]boxed.Value, len(c.Entries))
			for k, v := range c.Entries {
				cp[k] = v
			}
			return boxed.New(&Table{Entries: cp}), nil
		default:
			return boxed.New(args[0].Raw()), nil
		}
	}))
}

// toString renders v the way ChaiScript's prelude `to_string` does for the
// built-in container types, falling back to fmt's default verb for
// everything else (covers the scalar types spec.md's TestableProperties
// round-trip through to_string).
func toString(v boxed.Value) string {
	switch c := v.Raw().(type) {
	case *Vector:
		s := "["
		for i, el := range c.Items {
			if i > 0 {
				s += ", "
			}
			s += toString(el)
		}
		return s + "]"
	case *Table:
		s := "{"
		first := true
		for k, el := range c.Entries {
			if !first {
				s += ", "
			}
			first = false
			s += fmt.Sprintf("%q: %s", k, toString(el))
		}
		return s + "}"
	default:
		return fmt.Sprintf("%v", c)
	}
}
