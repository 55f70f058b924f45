package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/chaiscript-go/boxed"
)

func TestNativeFunctionRoundTrip(t *testing.T) {
	add := NewNative("add", func(a, b int) int { return a + b }, nil)
	result, err := add.Call([]boxed.Value{boxed.New(2), boxed.New(3)})
	require.NoError(t, err)
	got, err := boxed.Cast[int](result, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestNativeFunctionArityMismatch(t *testing.T) {
	f := NewNative("f", func(a int) int { return a }, nil)
	_, err := f.Call([]boxed.Value{boxed.New(1), boxed.New(2)})
	assert.ErrorIs(t, err, ErrArityMismatch)
}

func TestOverloadOrderEarlierWins(t *testing.T) {
	var calls []string
	first := NewDynamic("f", 1, func(args []boxed.Value) (boxed.Value, error) {
		calls = append(calls, "first")
		return boxed.New("first"), nil
	})
	second := NewDynamic("f", 1, func(args []boxed.Value) (boxed.Value, error) {
		calls = append(calls, "second")
		return boxed.New("second"), nil
	})

	result, err := Dispatch([]Function{first, second}, []boxed.Value{boxed.New(1)}, nil)
	require.NoError(t, err)
	got, _ := boxed.Cast[string](result, nil)
	assert.Equal(t, "first", got)
	assert.Equal(t, []string{"first"}, calls)
}

func TestGuardSelection(t *testing.T) {
	alwaysTrue := NewDynamic("guard", 1, func(args []boxed.Value) (boxed.Value, error) {
		return boxed.New(true), nil
	})
	alwaysFalse := NewDynamic("guard", 1, func(args []boxed.Value) (boxed.Value, error) {
		return boxed.New(false), nil
	})

	guarded := NewDynamic("f", 1, func(args []boxed.Value) (boxed.Value, error) {
		return boxed.New("guarded"), nil
	}).WithGuard(alwaysFalse)
	unguarded := NewDynamic("f", 1, func(args []boxed.Value) (boxed.Value, error) {
		return boxed.New("unguarded"), nil
	})

	result, err := Dispatch([]Function{guarded, unguarded}, []boxed.Value{boxed.New(1)}, nil)
	require.NoError(t, err)
	got, _ := boxed.Cast[string](result, nil)
	assert.Equal(t, "unguarded", got, "a failed guard must fall through to the next overload")

	guarded2 := NewDynamic("f", 1, func(args []boxed.Value) (boxed.Value, error) {
		return boxed.New("guarded"), nil
	}).WithGuard(alwaysTrue)
	result2, err := Dispatch([]Function{guarded2, unguarded}, []boxed.Value{boxed.New(1)}, nil)
	require.NoError(t, err)
	got2, _ := boxed.Cast[string](result2, nil)
	assert.Equal(t, "guarded", got2)
}

func TestDispatchErrorWhenNoCandidateMatches(t *testing.T) {
	intOnly := NewNative("f", func(a int) int { return a }, nil)
	_, err := Dispatch([]Function{intOnly}, []boxed.Value{boxed.New("nope")}, nil)
	assert.ErrorIs(t, err, ErrDispatchError)
}

func TestBoundFunctionFillsPlaceholders(t *testing.T) {
	add := NewNative("add", func(a, b int) int { return a + b }, nil)
	bound := NewBound(add, []boxed.Value{boxed.New(10), Placeholder})
	result, err := bound.Call([]boxed.Value{boxed.New(5)})
	require.NoError(t, err)
	got, _ := boxed.Cast[int](result, nil)
	assert.Equal(t, 15, got)
}
