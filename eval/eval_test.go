package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/dispatch"
	"github.com/rubiojr/chaiscript-go/parser"
	"github.com/rubiojr/chaiscript-go/proxy"
)

// newTestEngine registers just enough native operators for the tests in
// this file — the full set lives in the prelude package, which this
// package doesn't depend on.
func newTestEngine() *dispatch.Engine {
	e := dispatch.New()
	reg := func(name string, fn any) { e.RegisterFunction(name, proxy.NewNative(name, fn, e)) }

	reg("+", func(a, b int64) int64 { return a + b })
	reg("+", func(a, b float64) float64 { return a + b })
	reg("+", func(a, b string) string { return a + b })
	reg("-", func(a, b int64) int64 { return a - b })
	reg("-", func(a int64) int64 { return -a })
	reg("*", func(a, b int64) int64 { return a * b })
	reg("/", func(a, b int64) int64 { return a / b })
	reg("%", func(a, b int64) int64 { return a % b })
	reg("<", func(a, b int64) bool { return a < b })
	reg(">", func(a, b int64) bool { return a > b })
	reg("<=", func(a, b int64) bool { return a <= b })
	reg(">=", func(a, b int64) bool { return a >= b })
	reg("==", func(a, b int64) bool { return a == b })
	reg("!=", func(a, b int64) bool { return a != b })
	reg("++", func(a int64) int64 { return a + 1 })
	reg("--", func(a int64) int64 { return a - 1 })

	e.RegisterFunction("clone", proxy.NewDynamic("clone", 1, func(args []boxed.Value) (boxed.Value, error) {
		return boxed.New(args[0].Raw()), nil
	}))

	// The real default lives in prelude, which this package doesn't depend
	// on (see newTestEngine's doc comment above); this mirrors prelude's registerAssign closely
	// enough for assign()'s dispatch-based tests below.
	e.RegisterFunction("=", proxy.NewDynamic("=", 2, func(args []boxed.Value) (boxed.Value, error) {
		if err := args[0].SetInPlace(args[1]); err != nil {
			return boxed.Value{}, err
		}
		return args[0], nil
	}))

	return e
}

func evalSource(t *testing.T, e *dispatch.Engine, src string) (boxed.Value, error) {
	t.Helper()
	file, err := parser.Parse("test.chai", []byte(src))
	require.NoError(t, err)
	return New(e).Eval(file)
}

func TestIntegerArithmeticPrecedenceAndOverloadSelection(t *testing.T) {
	e := newTestEngine()
	v, err := evalSource(t, e, `1 + 2 * 3`)
	require.NoError(t, err)
	got, err := boxed.Cast[int64](v, e)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
}

func TestStringConcatenationOverload(t *testing.T) {
	e := newTestEngine()
	v, err := evalSource(t, e, `"foo" + "bar"`)
	require.NoError(t, err)
	got, err := boxed.Cast[string](v, e)
	require.NoError(t, err)
	assert.Equal(t, "foobar", got)
}

func TestDefAndRecursion(t *testing.T) {
	e := newTestEngine()
	src := `
def fact(n) {
  if (n <= 1) { return 1 }
  return n * fact(n - 1)
}
fact(5)
`
	v, err := evalSource(t, e, src)
	require.NoError(t, err)
	got, err := boxed.Cast[int64](v, e)
	require.NoError(t, err)
	assert.Equal(t, int64(120), got)
}

func TestGuardedOverloadSelection(t *testing.T) {
	e := newTestEngine()
	src := `
def classify(n) : n < 0 {
  return "negative"
}
def classify(n) : n >= 0 {
  return "nonnegative"
}
classify(-3)
`
	v, err := evalSource(t, e, src)
	require.NoError(t, err)
	got, err := boxed.Cast[string](v, e)
	require.NoError(t, err)
	assert.Equal(t, "negative", got)
}

func TestMethodCallSugarDesugarsToFunctionCall(t *testing.T) {
	e := newTestEngine()
	reg := func(name string, fn any) { e.RegisterFunction(name, proxy.NewNative(name, fn, e)) }
	reg("double", func(a int64) int64 { return a * 2 })

	v, err := evalSource(t, e, `5.double()`)
	require.NoError(t, err)
	got, err := boxed.Cast[int64](v, e)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got)
}

func TestLambdaRoundTrip(t *testing.T) {
	e := newTestEngine()
	src := `
var f := fun(x) { return x + 1 }
f(41)
`
	v, err := evalSource(t, e, src)
	require.NoError(t, err)
	got, err := boxed.Cast[int64](v, e)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
}

func TestBreakExitsLoop(t *testing.T) {
	e := newTestEngine()
	src := `
var total := 0
var i := 0
while (i < 10) {
  if (i == 3) { break }
  total = total + i
  i = i + 1
}
total
`
	v, err := evalSource(t, e, src)
	require.NoError(t, err)
	got, err := boxed.Cast[int64](v, e)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got) // 0 + 1 + 2
}

func TestForLoopAccumulates(t *testing.T) {
	e := newTestEngine()
	v, err := evalSource(t, e, `
var sum := 0
for (var i := 0; i < 5; i = i + 1) {
  sum = sum + i
}
sum
`)
	require.NoError(t, err)
	got, err := boxed.Cast[int64](v, e)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got)
}

func TestColonEqualsAliasesStorageSoAssignIsVisibleThroughBothNames(t *testing.T) {
	e := newTestEngine()
	v, err := evalSource(t, e, `
var x := 1
var y := x
x = 99
y
`)
	require.NoError(t, err)
	got, err := boxed.Cast[int64](v, e)
	require.NoError(t, err)
	assert.Equal(t, int64(99), got, "`:=` binds y to x's own storage; assigning into x must be visible through y too")
}

func TestPlainEqualsBindClonesSoAssignIsNotVisibleThroughTheOtherName(t *testing.T) {
	e := newTestEngine()
	v, err := evalSource(t, e, `
var x = 1
var y = x
x = 99
y
`)
	require.NoError(t, err)
	got, err := boxed.Cast[int64](v, e)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "`var y = x` binds a cloned value; assigning into x must not affect y")
}

func TestCompoundAssignmentDispatchesBaseOperator(t *testing.T) {
	e := newTestEngine()
	v, err := evalSource(t, e, `
var x = 10
x += 5
x
`)
	require.NoError(t, err)
	got, err := boxed.Cast[int64](v, e)
	require.NoError(t, err)
	assert.Equal(t, int64(15), got)
}

func TestPrefixIncrementMutatesVariable(t *testing.T) {
	e := newTestEngine()
	v, err := evalSource(t, e, `
var x = 5
++x
x
`)
	require.NoError(t, err)
	got, err := boxed.Cast[int64](v, e)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got)
}

func TestUnresolvedIdentifierReportsEvalError(t *testing.T) {
	e := newTestEngine()
	depthBefore := e.ScopeDepth()
	_, err := evalSource(t, e, `missingVariable`)
	require.Error(t, err)
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, depthBefore, e.ScopeDepth(), "a failed eval must leave the scope stack exactly as it found it")
}

func TestDispatchErrorPreservesScopeDepth(t *testing.T) {
	e := newTestEngine()
	src := `
def risky(n) {
  if (n == 0) {
    return undefinedCall()
  }
  return 1
}
risky(0)
`
	depthBefore := e.ScopeDepth()
	_, err := evalSource(t, e, src)
	require.Error(t, err)
	assert.Equal(t, depthBefore, e.ScopeDepth())
}

// registerVector installs a minimal Vector/push_back/`[]` triple as
// DynamicFunctions — like script-defined functions, these accept any
// argument type, which is what a container's element-agnostic operations
// need (a NativeFunction's parameter TypeInfo is fixed at registration
// and would reject anything but one concrete element type).
func registerVector(e *dispatch.Engine) {
	type vector struct{ items []boxed.Value }

	e.RegisterFunction("Vector", proxy.NewDynamic("Vector", 0, func(args []boxed.Value) (boxed.Value, error) {
		return boxed.New(&vector{}), nil
	}))
	e.RegisterFunction("push_back", proxy.NewDynamic("push_back", 2, func(args []boxed.Value) (boxed.Value, error) {
		v := args[0].Raw().(*vector)
		v.items = append(v.items, args[1])
		return args[0], nil
	}))
	e.RegisterFunction("[]", proxy.NewDynamic("[]", 2, func(args []boxed.Value) (boxed.Value, error) {
		v, ok := args[0].Raw().(*vector)
		if !ok {
			return boxed.Value{}, dispatch.ErrOutOfBounds
		}
		i, err := boxed.Cast[int64](args[1], e)
		if err != nil {
			return boxed.Value{}, err
		}
		if i < 0 || int(i) >= len(v.items) {
			return boxed.Value{}, dispatch.ErrOutOfBounds
		}
		return v.items[i], nil
	}))
}

func TestInlineArrayAndIndexing(t *testing.T) {
	e := newTestEngine()
	registerVector(e)

	v, err := evalSource(t, e, `
var a = [1, 2, 3]
a[1]
`)
	require.NoError(t, err)
	got, err := boxed.Cast[int64](v, e)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

func TestArrayIndexOutOfBoundsReportsEvalError(t *testing.T) {
	e := newTestEngine()
	registerVector(e)

	_, err := evalSource(t, e, `
var a = [1, 2, 3]
a[9]
`)
	require.Error(t, err)
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, evalErr.Reason, "Out of bounds")
}

func TestIfElseIfElseChain(t *testing.T) {
	e := newTestEngine()
	src := `
def label(n) {
  if (n < 0) { return "neg" } elseif (n == 0) { return "zero" } else { return "pos" }
}
label(0)
`
	v, err := evalSource(t, e, src)
	require.NoError(t, err)
	got, err := boxed.Cast[string](v, e)
	require.NoError(t, err)
	assert.Equal(t, "zero", got)
}
