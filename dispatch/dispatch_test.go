package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/proxy"
	"github.com/rubiojr/chaiscript-go/typeinfo"
)

func TestAddGetObjectSameFrame(t *testing.T) {
	e := New()
	e.AddObject("x", boxed.New(1))
	v, err := e.GetObject("x")
	require.NoError(t, err)
	got, _ := boxed.Cast[int](v, nil)
	assert.Equal(t, 1, got)
}

func TestPopScopeRemovesBinding(t *testing.T) {
	e := New()
	e.PushScope()
	e.AddObject("y", boxed.New(2))
	_, err := e.GetObject("y")
	require.NoError(t, err)

	require.NoError(t, e.PopScope())
	_, err = e.GetObject("y")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPopScopeUnderflow(t *testing.T) {
	e := New()
	assert.ErrorIs(t, e.PopScope(), ErrScopeUnderflow)
}

func TestGetObjectFallsBackToFunctionGroup(t *testing.T) {
	e := New()
	e.RegisterFunction("double", proxy.NewNative("double", func(x int) int { return x * 2 }, nil))

	v, err := e.GetObject("double")
	require.NoError(t, err)
	group, ok := v.Raw().(*proxy.DispatchGroup)
	require.True(t, ok)
	assert.Len(t, group.Overloads(), 1)
}

func TestInvokeOverloadByArgumentType(t *testing.T) {
	e := New()
	e.RegisterFunction("f", proxy.NewNative("f", func(x int) string { return "int" }, nil))
	e.RegisterFunction("f", proxy.NewNative("f", func(x float64) string { return "float" }, nil))

	intResult, err := e.Invoke("f", []boxed.Value{boxed.New(1)})
	require.NoError(t, err)
	s, _ := boxed.Cast[string](intResult, nil)
	assert.Equal(t, "int", s)

	floatResult, err := e.Invoke("f", []boxed.Value{boxed.New(1.0)})
	require.NoError(t, err)
	s2, _ := boxed.Cast[string](floatResult, nil)
	assert.Equal(t, "float", s2)
}

func TestSaveRestoreStateDoesNotTouchScopes(t *testing.T) {
	e := New()
	e.AddObject("x", boxed.New(1))
	e.RegisterFunction("f", proxy.NewNative("f", func() int { return 1 }, nil))

	saved := e.SaveState()
	e.RegisterFunction("g", proxy.NewNative("g", func() int { return 2 }, nil))
	assert.Len(t, e.Overloads("g"), 1)

	e.RestoreState(saved)
	assert.Len(t, e.Overloads("g"), 0)

	_, err := e.GetObject("x")
	assert.NoError(t, err, "restoring state must not clear scopes")
}

func TestConversionRegistryBaseDerived(t *testing.T) {
	type Base struct{ N int }
	type Derived struct{ Base }

	e := New()
	from := typeinfo.TypeOf[Derived]()
	to := typeinfo.TypeOf[Base]()
	e.RegisterConversion(from, to, func(v boxed.Value) (boxed.Value, error) {
		d, err := boxed.Cast[Derived](v, nil)
		if err != nil {
			return boxed.Value{}, err
		}
		return boxed.New(d.Base), nil
	})

	out, ok := e.Convert(from, to, boxed.New(Derived{Base{N: 7}}))
	require.True(t, ok)
	b, err := boxed.Cast[Base](out, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, b.N)
}
