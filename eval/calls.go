package eval

import (
	"errors"

	"github.com/rubiojr/chaiscript-go/ast"
	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/dispatch"
	"github.com/rubiojr/chaiscript-go/lexer"
	"github.com/rubiojr/chaiscript-go/proxy"
)

// wrapDispatchErr translates an error returned from a call/dispatch site
// into the form the evaluator reports upward: a HostException passes
// through unchanged (it already carries its own meaning), an
// ErrOutOfBounds becomes spec.md §4.5's literal "Out of bounds" message,
// and anything else is wrapped with pos and name for context.
func (ev *Evaluator) wrapDispatchErr(pos lexer.Position, name string, err error) error {
	var he *HostException
	if errors.As(err, &he) {
		return he
	}
	if errors.Is(err, dispatch.ErrOutOfBounds) {
		return evalErrorf(pos, "Out of bounds")
	}
	if errors.Is(err, dispatch.ErrNotFound) {
		return evalErrorf(pos, "Can not find function: %s", name)
	}
	return evalErrorf(pos, "calling %s: %v", name, err)
}

// callBody runs body with params bound to args in a fresh scope stack
// (just the global frame plus one new frame — spec.md §4.5's Fun_Call
// rule: "the callee sees only a single new frame, not the caller's
// locals"), restoring the caller's stack on every exit path. A returnSignal
// panic produced anywhere within body becomes callBody's normal result; a
// stray breakSignal (break outside any loop) becomes a plain error; any
// other panic is reported as a HostException once the stack is back to
// the caller's view.
func (ev *Evaluator) callBody(params []string, args []boxed.Value, body func() (boxed.Value, error)) (result boxed.Value, err error) {
	saved := ev.engine.EnterCall()
	defer ev.engine.ExitCall(saved)

	for i, name := range params {
		if i < len(args) {
			ev.engine.AddObject(name, args[i])
		}
	}

	defer func() {
		if r := recover(); r != nil {
			if rs, ok := r.(returnSignal); ok {
				result, err = rs.value, nil
				return
			}
			if _, ok := r.(breakSignal); ok {
				err = evalErrorf(lexer.Position{}, "break used outside of a loop")
				return
			}
			err = &HostException{Value: r}
		}
	}()

	return body()
}

func (ev *Evaluator) evalFunCall(call *ast.FunCall) (boxed.Value, error) {
	args := make([]boxed.Value, 0, len(call.Args))
	for _, a := range call.Args {
		v, err := ev.Eval(a)
		if err != nil {
			return boxed.Value{}, err
		}
		args = append(args, v)
	}
	return ev.invokeCallee(call.Callee, args, call.Pos())
}

// invokeCallee resolves callee to a callable and invokes it with args. A
// bare Id first checks for a local variable binding (so a variable
// holding a lambda shadows a same-named registered function), then falls
// back to the engine's own overload-aware Invoke (which, unlike the
// DispatchGroup a plain Eval(Id) would produce, has access to the
// engine's conversion registry). Any other callee expression is evaluated
// to a BoxedValue and must unwrap to a proxy.Function.
func (ev *Evaluator) invokeCallee(callee ast.Expr, args []boxed.Value, pos lexer.Position) (boxed.Value, error) {
	if id, ok := callee.(*ast.Id); ok {
		if v, found := ev.engine.LookupLocal(id.Name); found {
			fn, ok := v.Raw().(proxy.Function)
			if !ok {
				return boxed.Value{}, evalErrorf(pos, "%s is not callable", id.Name)
			}
			result, err := fn.Call(args)
			if err != nil {
				return boxed.Value{}, ev.wrapDispatchErr(pos, id.Name, err)
			}
			return result, nil
		}
		result, err := ev.engine.Invoke(id.Name, args)
		if err != nil {
			return boxed.Value{}, ev.wrapDispatchErr(pos, id.Name, err)
		}
		return result, nil
	}

	calleeVal, err := ev.Eval(callee)
	if err != nil {
		return boxed.Value{}, err
	}
	fn, ok := calleeVal.Raw().(proxy.Function)
	if !ok {
		return boxed.Value{}, evalErrorf(pos, "value is not callable")
	}
	result, err := fn.Call(args)
	if err != nil {
		return boxed.Value{}, ev.wrapDispatchErr(pos, "<expr>", err)
	}
	return result, nil
}

// evalDotAccess desugars obj.member sugar per spec.md §4.5: a bare member
// Id is a call to member(obj); a method-call FunCall is a call to
// callee(obj, args...); a chained ArrayCall re-resolves the member access
// first and then indexes the result.
func (ev *Evaluator) evalDotAccess(d *ast.DotAccess) (boxed.Value, error) {
	switch right := d.Right.(type) {
	case *ast.Id:
		objVal, err := ev.Eval(d.Object)
		if err != nil {
			return boxed.Value{}, err
		}
		return ev.invokeCallee(right, []boxed.Value{objVal}, d.Pos())

	case *ast.FunCall:
		objVal, err := ev.Eval(d.Object)
		if err != nil {
			return boxed.Value{}, err
		}
		args := make([]boxed.Value, 0, len(right.Args)+1)
		args = append(args, objVal)
		for _, a := range right.Args {
			v, err := ev.Eval(a)
			if err != nil {
				return boxed.Value{}, err
			}
			args = append(args, v)
		}
		return ev.invokeCallee(right.Callee, args, d.Pos())

	case *ast.ArrayCall:
		base, err := ev.evalDotAccess(&ast.DotAccess{Object: d.Object, Right: right.Object})
		if err != nil {
			return boxed.Value{}, err
		}
		idx, err := ev.Eval(right.Index)
		if err != nil {
			return boxed.Value{}, err
		}
		return ev.dispatchOperator(d.Pos(), "[]", base, idx)

	default:
		return boxed.Value{}, evalErrorf(d.Pos(), "invalid member access")
	}
}

func (ev *Evaluator) dotMemberName(d *ast.DotAccess) (string, error) {
	id, ok := d.Right.(*ast.Id)
	if !ok {
		return "", evalErrorf(d.Pos(), "invalid assignment target")
	}
	return id.Name, nil
}

func (ev *Evaluator) evalArrayCall(ac *ast.ArrayCall) (boxed.Value, error) {
	obj, err := ev.Eval(ac.Object)
	if err != nil {
		return boxed.Value{}, err
	}
	idx, err := ev.Eval(ac.Index)
	if err != nil {
		return boxed.Value{}, err
	}
	return ev.dispatchOperator(ac.Pos(), "[]", obj, idx)
}
