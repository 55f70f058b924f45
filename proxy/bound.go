package proxy

import (
	"fmt"

	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/typeinfo"
)

// placeholder marks an unfilled slot in a BoundFunction's partial
// argument vector.
type placeholder struct{}

// Placeholder is the sentinel boxed value used to mark an unfilled slot
// when constructing a BoundFunction's partial argument vector.
var Placeholder = boxed.New(placeholder{})

func isPlaceholder(v boxed.Value) bool {
	_, ok := v.Raw().(placeholder)
	return ok
}

// BoundFunction is a partial application of another Function with a
// prefix of BoxedValues fixed, the placeholders preserving the remaining
// slots (spec.md §3/§4.3). `f.bind(1, _)` in host terms.
type BoundFunction struct {
	inner   Function
	partial []boxed.Value
}

// NewBound builds a BoundFunction over inner, with partial as the
// argument template (use Placeholder for slots to be filled at call
// time).
func NewBound(inner Function, partial []boxed.Value) *BoundFunction {
	cp := make([]boxed.Value, len(partial))
	copy(cp, partial)
	return &BoundFunction{inner: inner, partial: cp}
}

// remaining reports how many Placeholder slots are left to fill.
func (b *BoundFunction) remaining() int {
	n := 0
	for _, v := range b.partial {
		if isPlaceholder(v) {
			n++
		}
	}
	return n
}

func (b *BoundFunction) ParamTypes() []typeinfo.TypeInfo {
	full := b.inner.ParamTypes()
	if full == nil {
		return nil
	}
	var out []typeinfo.TypeInfo
	for i, v := range b.partial {
		if isPlaceholder(v) && i < len(full) {
			out = append(out, full[i])
		}
	}
	return out
}

func (b *BoundFunction) Arity() (int, bool) {
	n, fixed := b.inner.Arity()
	if !fixed {
		return 0, false
	}
	return n - (len(b.partial) - b.remaining()), true
}

func (b *BoundFunction) TypesMatch(args []boxed.Value, conv boxed.Converter) bool {
	if len(args) != b.remaining() {
		return false
	}
	filled, err := b.fill(args)
	if err != nil {
		return false
	}
	return b.inner.TypesMatch(filled, conv)
}

// fill produces the full argument vector by substituting args into the
// partial template's placeholder slots, in order.
func (b *BoundFunction) fill(args []boxed.Value) ([]boxed.Value, error) {
	if len(args) != b.remaining() {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrArityMismatch, b.remaining(), len(args))
	}
	out := make([]boxed.Value, len(b.partial))
	ai := 0
	for i, v := range b.partial {
		if isPlaceholder(v) {
			out[i] = args[ai]
			ai++
			continue
		}
		out[i] = v
	}
	return out, nil
}

func (b *BoundFunction) Call(args []boxed.Value) (boxed.Value, error) {
	filled, err := b.fill(args)
	if err != nil {
		return boxed.Value{}, err
	}
	return b.inner.Call(filled)
}

func (b *BoundFunction) Equal(other Function) bool {
	o, ok := other.(*BoundFunction)
	if !ok {
		return false
	}
	return b.inner.Equal(o.inner) && len(b.partial) == len(o.partial)
}
