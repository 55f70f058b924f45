package boxed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoundTrip(t *testing.T) {
	v := New(42)
	got, err := Cast[int](v, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestCastMismatchIsBadCast(t *testing.T) {
	v := New("hello")
	_, err := Cast[int](v, nil)
	assert.ErrorIs(t, err, ErrBadCast)
}

func TestUndefAssignOnce(t *testing.T) {
	v := Undef()
	require.True(t, v.IsUndef())
	require.NoError(t, v.Assign(New(7)))
	assert.False(t, v.IsUndef())
	assert.ErrorIs(t, v.Assign(New(8)), ErrAlreadyBound)
}

func TestReferenceIdentity(t *testing.T) {
	x := 10
	ref := NewRef(&x)
	require.True(t, ref.IsReference())

	got, err := Cast[int](ref, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, got)

	x = 20
	got2, err := Cast[int](ref, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, got2, "mutation through the external instance must be observable")
}

func TestInterningSharesIdentityAcrossBoxings(t *testing.T) {
	x := &struct{ N int }{N: 1}
	first := New(x)
	second := New(x)
	assert.Same(t, first.shared, second.shared)
}

func TestRebindRequiresUndefOrMatchingType(t *testing.T) {
	a := New(1)
	b := New("nope")
	err := a.Rebind(b)
	assert.ErrorIs(t, err, ErrBadCast)

	c := Undef()
	require.NoError(t, c.Rebind(New(5)))
}

func TestSetInPlacePropagatesToAllAliases(t *testing.T) {
	a := New(1)
	alias := a // copies the struct, but shares the same *sharedRecord
	require.NoError(t, a.SetInPlace(New(99)))

	got, err := Cast[int](alias, nil)
	require.NoError(t, err)
	assert.Equal(t, 99, got, "SetInPlace must be visible through every Value sharing the storage")
}

func TestSetInPlaceRejectsConst(t *testing.T) {
	a := NewConst(1)
	assert.ErrorIs(t, a.SetInPlace(New(2)), ErrConstViolation)
}

func TestSetInPlaceRejectsUndef(t *testing.T) {
	u := Undef()
	assert.ErrorIs(t, u.SetInPlace(New(2)), ErrNoOwnership)
}

func TestSetInPlaceThroughReference(t *testing.T) {
	x := 1
	ref := NewRef(&x)
	require.NoError(t, ref.SetInPlace(New(42)))
	assert.Equal(t, 42, x)
}

func TestNumericPromotion(t *testing.T) {
	a, ok := Numeric(New(1))
	require.True(t, ok)
	b, ok := Numeric(New(2.5))
	require.True(t, ok)

	sum := Promote(a, b,
		func(x, y int64) int64 { return x + y },
		func(x, y float64) float64 { return x + y },
	)
	got, err := Cast[float64](sum, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.5, got)
}
