// Package eval walks the ast.Node tree produced by the parser, driving a
// dispatch.Engine to resolve every name, operator, and call. It implements
// spec.md §4.5's evaluation rules node by node.
package eval

import (
	"fmt"
	"strconv"

	"github.com/rubiojr/chaiscript-go/ast"
	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/dispatch"
	"github.com/rubiojr/chaiscript-go/lexer"
)

// Evaluator walks an ast.Node tree against a dispatch.Engine. One
// Evaluator is bound to one Engine for its whole lifetime; the Engine,
// not the Evaluator, holds all mutable state (scopes, functions, types),
// so a single Evaluator can be reused across many top-level Eval calls on
// the same script session (spec.md §5, "a REPL line is one Eval call that
// shares the prior session's scope").
type Evaluator struct {
	engine *dispatch.Engine
}

// New returns an Evaluator driving engine.
func New(engine *dispatch.Engine) *Evaluator {
	return &Evaluator{engine: engine}
}

// Eval evaluates n, returning the value of its last sub-expression (for
// Block/File) or the node's own result.
func (ev *Evaluator) Eval(n ast.Node) (boxed.Value, error) {
	switch v := n.(type) {
	case *ast.File:
		return ev.evalFile(v)
	case *ast.Block:
		return ev.evalBlock(v)
	case *ast.Def:
		return ev.evalDef(v)
	case *ast.Lambda:
		return ev.evalLambda(v)
	case *ast.If:
		return ev.evalIf(v)
	case *ast.While:
		return ev.evalWhile(v)
	case *ast.For:
		return ev.evalFor(v)
	case *ast.Return:
		return ev.evalReturn(v)
	case *ast.Break:
		return ev.evalBreak(v)
	case *ast.ExprStmt:
		return ev.Eval(v.X)
	case *ast.VarDecl:
		return ev.evalVarDecl(v)
	case *ast.Equation:
		return ev.evalEquation(v)
	case *ast.Logical:
		return ev.evalLogical(v)
	case *ast.Comparison:
		return ev.evalBinary(v.Pos(), v.Op, v.Left, v.Right)
	case *ast.Additive:
		return ev.evalBinary(v.Pos(), v.Op, v.Left, v.Right)
	case *ast.Multiplicative:
		return ev.evalBinary(v.Pos(), v.Op, v.Left, v.Right)
	case *ast.Negate:
		return ev.evalNegate(v)
	case *ast.Not:
		return ev.evalNot(v)
	case *ast.Prefix:
		return ev.evalPrefix(v)
	case *ast.DotAccess:
		return ev.evalDotAccess(v)
	case *ast.FunCall:
		return ev.evalFunCall(v)
	case *ast.ArrayCall:
		return ev.evalArrayCall(v)
	case *ast.Id:
		return ev.evalId(v)
	case *ast.Int:
		i, err := strconv.ParseInt(v.Text, 10, 64)
		if err != nil {
			return boxed.Value{}, evalErrorf(v.Pos(), "invalid integer literal %q", v.Text)
		}
		return boxed.New(i), nil
	case *ast.Float:
		f, err := strconv.ParseFloat(v.Text, 64)
		if err != nil {
			return boxed.Value{}, evalErrorf(v.Pos(), "invalid float literal %q", v.Text)
		}
		return boxed.New(f), nil
	case *ast.String:
		return boxed.New(v.Value), nil
	case *ast.Char:
		rs := []rune(v.Value)
		if len(rs) == 0 {
			return boxed.New(rune(0)), nil
		}
		return boxed.New(rs[0]), nil
	case *ast.Bool:
		return boxed.New(v.Value), nil
	case *ast.InlineArray:
		return ev.evalInlineArray(v)
	case *ast.InlineMap:
		return ev.evalInlineMap(v)
	default:
		return boxed.Value{}, fmt.Errorf("eval: unhandled node type %T", n)
	}
}

func (ev *Evaluator) evalFile(f *ast.File) (boxed.Value, error) {
	result := boxed.Void()
	for _, stmt := range f.Statements {
		v, err := ev.Eval(stmt)
		if err != nil {
			return boxed.Value{}, err
		}
		result = v
	}
	return result, nil
}

// evalBlock pushes a new scope for the statement sequence and pops it on
// every exit path, including a panic unwinding past it (spec.md §4.4:
// "Block: push scope; ...; pop scope (guaranteed, even on exception)").
func (ev *Evaluator) evalBlock(b *ast.Block) (boxed.Value, error) {
	ev.engine.PushScope()
	defer ev.engine.PopScope()

	result := boxed.Void()
	for _, stmt := range b.Statements {
		v, err := ev.Eval(stmt)
		if err != nil {
			return boxed.Value{}, err
		}
		result = v
	}
	return result, nil
}

func (ev *Evaluator) evalVarDecl(v *ast.VarDecl) (boxed.Value, error) {
	u := boxed.Undef()
	ev.engine.AddObject(v.Name, u)
	return u, nil
}

func (ev *Evaluator) evalReturn(r *ast.Return) (boxed.Value, error) {
	val := boxed.Void()
	if r.Value != nil {
		v, err := ev.Eval(r.Value)
		if err != nil {
			return boxed.Value{}, err
		}
		val = v
	}
	panic(returnSignal{value: val})
}

func (ev *Evaluator) evalBreak(b *ast.Break) (boxed.Value, error) {
	panic(breakSignal{})
}

func (ev *Evaluator) evalId(id *ast.Id) (boxed.Value, error) {
	v, err := ev.engine.GetObject(id.Name)
	if err != nil {
		return boxed.Value{}, evalErrorf(id.Pos(), "Can not find object: %s", id.Name)
	}
	return v, nil
}

func (ev *Evaluator) evalIf(n *ast.If) (boxed.Value, error) {
	cond, err := ev.Eval(n.Cond)
	if err != nil {
		return boxed.Value{}, err
	}
	b, err := ev.toBool(n.Cond.Pos(), cond)
	if err != nil {
		return boxed.Value{}, err
	}
	if b {
		return ev.Eval(n.Then)
	}
	for _, ei := range n.ElseIfs {
		c, err := ev.Eval(ei.Cond)
		if err != nil {
			return boxed.Value{}, err
		}
		bb, err := ev.toBool(ei.Cond.Pos(), c)
		if err != nil {
			return boxed.Value{}, err
		}
		if bb {
			return ev.Eval(ei.Body)
		}
	}
	if n.ElseBody != nil {
		return ev.Eval(n.ElseBody)
	}
	return boxed.Void(), nil
}

func (ev *Evaluator) evalWhile(w *ast.While) (boxed.Value, error) {
	for {
		condVal, err := ev.Eval(w.Cond)
		if err != nil {
			return boxed.Value{}, err
		}
		b, err := ev.toBool(w.Cond.Pos(), condVal)
		if err != nil {
			return boxed.Value{}, err
		}
		if !b {
			break
		}
		broke, err := catchBreak(func() error {
			_, err := ev.Eval(w.Body)
			return err
		})
		if err != nil {
			return boxed.Value{}, err
		}
		if broke {
			break
		}
	}
	return boxed.Void(), nil
}

func (ev *Evaluator) evalFor(f *ast.For) (boxed.Value, error) {
	ev.engine.PushScope()
	defer ev.engine.PopScope()

	if f.Init != nil {
		if _, err := ev.Eval(f.Init); err != nil {
			return boxed.Value{}, err
		}
	}
	for {
		if f.Cond != nil {
			condVal, err := ev.Eval(f.Cond)
			if err != nil {
				return boxed.Value{}, err
			}
			b, err := ev.toBool(f.Cond.Pos(), condVal)
			if err != nil {
				return boxed.Value{}, err
			}
			if !b {
				break
			}
		}
		broke, err := catchBreak(func() error {
			_, err := ev.Eval(f.Body)
			return err
		})
		if err != nil {
			return boxed.Value{}, err
		}
		if broke {
			break
		}
		if f.Step != nil {
			if _, err := ev.Eval(f.Step); err != nil {
				return boxed.Value{}, err
			}
		}
	}
	return boxed.Void(), nil
}

func (ev *Evaluator) evalLogical(l *ast.Logical) (boxed.Value, error) {
	left, err := ev.Eval(l.Left)
	if err != nil {
		return boxed.Value{}, err
	}
	lb, err := ev.toBool(l.Pos(), left)
	if err != nil {
		return boxed.Value{}, err
	}
	if l.Op == "&&" && !lb {
		return boxed.New(false), nil
	}
	if l.Op == "||" && lb {
		return boxed.New(true), nil
	}
	right, err := ev.Eval(l.Right)
	if err != nil {
		return boxed.Value{}, err
	}
	rb, err := ev.toBool(l.Pos(), right)
	if err != nil {
		return boxed.Value{}, err
	}
	return boxed.New(rb), nil
}

func (ev *Evaluator) evalBinary(pos lexer.Position, op string, le, re ast.Expr) (boxed.Value, error) {
	l, err := ev.Eval(le)
	if err != nil {
		return boxed.Value{}, err
	}
	r, err := ev.Eval(re)
	if err != nil {
		return boxed.Value{}, err
	}
	return ev.dispatchOperator(pos, op, l, r)
}

func (ev *Evaluator) evalNegate(n *ast.Negate) (boxed.Value, error) {
	x, err := ev.Eval(n.X)
	if err != nil {
		return boxed.Value{}, err
	}
	return ev.dispatchOperator(n.Pos(), "*", x, boxed.New(int64(-1)))
}

func (ev *Evaluator) evalNot(n *ast.Not) (boxed.Value, error) {
	x, err := ev.Eval(n.X)
	if err != nil {
		return boxed.Value{}, err
	}
	b, err := ev.toBool(n.Pos(), x)
	if err != nil {
		return boxed.Value{}, err
	}
	return boxed.New(!b), nil
}

// evalPrefix dispatches ++/-- as a unary operator against the current
// value, then tries to mutate the operand in place (so every alias
// observes the change) before falling back to rebinding the scope entry
// directly if the operand isn't a plain Id or SetInPlace refuses (e.g.
// the operator changed the value's bare type).
func (ev *Evaluator) evalPrefix(p *ast.Prefix) (boxed.Value, error) {
	current, err := ev.Eval(p.X)
	if err != nil {
		return boxed.Value{}, err
	}
	result, err := ev.dispatchOperator(p.Pos(), p.Op, current)
	if err != nil {
		return boxed.Value{}, err
	}
	if id, ok := p.X.(*ast.Id); ok {
		if err := current.SetInPlace(result); err != nil {
			ev.engine.SetObject(id.Name, result)
		}
	}
	return result, nil
}

func (ev *Evaluator) toBool(pos lexer.Position, v boxed.Value) (bool, error) {
	b, err := boxed.Cast[bool](v, ev.engine)
	if err != nil {
		return false, evalErrorf(pos, "expected a boolean value: %v", err)
	}
	return b, nil
}

// dispatchOperator invokes the function registered under name, translating
// dispatch.Engine's sentinel errors into EvalErrors carrying pos (spec.md
// §4.5: every evaluator failure is reported at the node that triggered
// it, not the registration site of whatever it dispatched to).
func (ev *Evaluator) dispatchOperator(pos lexer.Position, name string, args ...boxed.Value) (boxed.Value, error) {
	result, err := ev.engine.Invoke(name, args)
	if err != nil {
		return boxed.Value{}, ev.wrapDispatchErr(pos, name, err)
	}
	return result, nil
}
