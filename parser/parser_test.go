package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/chaiscript-go/ast"
)

func TestParseArithmeticExpression(t *testing.T) {
	f, err := Parse("t.chai", []byte("1 + 2 * 3"))
	require.NoError(t, err)
	require.Len(t, f.Statements, 1)
	es, ok := f.Statements[0].(*ast.ExprStmt)
	require.True(t, ok)
	add, ok := es.X.(*ast.Additive)
	require.True(t, ok)
	assert.Equal(t, "+", add.Op)
	_, ok = add.Right.(*ast.Multiplicative)
	assert.True(t, ok, "multiplication must bind tighter than addition")
}

func TestParseDefWithGuard(t *testing.T) {
	f, err := Parse("t.chai", []byte("def fact(n) : n <= 1 { return 1 }"))
	require.NoError(t, err)
	require.Len(t, f.Statements, 1)
	def, ok := f.Statements[0].(*ast.Def)
	require.True(t, ok)
	assert.Equal(t, "fact", def.Name)
	assert.Equal(t, []string{"n"}, def.Params)
	require.NotNil(t, def.Guard)
	cmp, ok := def.Guard.(*ast.Comparison)
	require.True(t, ok)
	assert.Equal(t, "<=", cmp.Op)
}

func TestParseIfElseifElse(t *testing.T) {
	src := `if (x > 0) { return 1 } elseif (x < 0) { return -1 } else { return 0 }`
	f, err := Parse("t.chai", []byte(src))
	require.NoError(t, err)
	n, ok := f.Statements[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, n.ElseIfs, 1)
	require.NotNil(t, n.ElseBody)
}

func TestParseMethodCallSugar(t *testing.T) {
	f, err := Parse("t.chai", []byte("a.foo(1, 2)"))
	require.NoError(t, err)
	es := f.Statements[0].(*ast.ExprStmt)
	dot, ok := es.X.(*ast.DotAccess)
	require.True(t, ok)
	_, ok = dot.Object.(*ast.Id)
	require.True(t, ok)
	call, ok := dot.Right.(*ast.FunCall)
	require.True(t, ok)
	assert.Len(t, call.Args, 2)
}

func TestParseInlineArrayAndMap(t *testing.T) {
	f, err := Parse("t.chai", []byte("[1, 2, 3]"))
	require.NoError(t, err)
	arr, ok := f.Statements[0].(*ast.ExprStmt).X.(*ast.InlineArray)
	require.True(t, ok)
	assert.Len(t, arr.Elements, 3)

	f, err = Parse("t.chai", []byte(`["a": 1, "b": 2]`))
	require.NoError(t, err)
	m, ok := f.Statements[0].(*ast.ExprStmt).X.(*ast.InlineMap)
	require.True(t, ok)
	assert.Len(t, m.Pairs, 2)
}

func TestParseLambda(t *testing.T) {
	f, err := Parse("t.chai", []byte("var f = fun(x) { return x + 1 }"))
	require.NoError(t, err)
	eq := f.Statements[0].(*ast.Equation)
	lam, ok := eq.Value.(*ast.Lambda)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, lam.Params)
}

func TestParseFor(t *testing.T) {
	f, err := Parse("t.chai", []byte("for (var i = 0; i < 10; i += 1) { }"))
	require.NoError(t, err)
	forNode, ok := f.Statements[0].(*ast.For)
	require.True(t, ok)
	require.NotNil(t, forNode.Init)
	require.NotNil(t, forNode.Cond)
	require.NotNil(t, forNode.Step)
}

func TestParseBacktickOperatorCall(t *testing.T) {
	f, err := Parse("t.chai", []byte("`+`(1, 2)"))
	require.NoError(t, err)
	call, ok := f.Statements[0].(*ast.ExprStmt).X.(*ast.FunCall)
	require.True(t, ok)
	id, ok := call.Callee.(*ast.Id)
	require.True(t, ok)
	assert.Equal(t, "+", id.Name)
}

func TestParseErrorUnclosedString(t *testing.T) {
	_, err := Parse("t.chai", []byte(`"unterminated`))
	require.Error(t, err)
	pe, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Contains(t, pe.Reason, "unclosed")
}

func TestParseErrorMissingClosingParen(t *testing.T) {
	_, err := Parse("t.chai", []byte("if(x")) // scenario 7 from the spec's testable properties
	require.Error(t, err)
	_, ok := err.(*ParseError)
	require.True(t, ok)
}

func TestParseErrorDefWithoutName(t *testing.T) {
	_, err := Parse("t.chai", []byte("def (x) { }"))
	require.Error(t, err)
}

func TestParseErrorMultipleDefsOnOneLine(t *testing.T) {
	_, err := Parse("t.chai", []byte("def f() { } def g() { }"))
	require.Error(t, err)
	pe, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Contains(t, pe.Reason, "separated")
}

func TestParseErrorUnparsedTrailingInput(t *testing.T) {
	_, err := Parse("t.chai", []byte("1 + 2 )"))
	require.Error(t, err)
}

func TestParseRightAssociativeEquation(t *testing.T) {
	f, err := Parse("t.chai", []byte("var a\nvar b\na = b = 1"))
	require.NoError(t, err)
	eq := f.Statements[2].(*ast.Equation)
	assert.Equal(t, "=", eq.Op)
	_, ok := eq.Value.(*ast.Equation)
	require.True(t, ok, "equation should be right-associative")
}

func TestParseVarDeclReferenceRebind(t *testing.T) {
	f, err := Parse("t.chai", []byte("var a := b"))
	require.NoError(t, err)
	eq, ok := f.Statements[0].(*ast.Equation)
	require.True(t, ok)
	assert.Equal(t, ":=", eq.Op)
}
