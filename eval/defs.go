package eval

import (
	"github.com/rubiojr/chaiscript-go/ast"
	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/proxy"
)

// evalDef builds a DynamicFunction from a `def` node's body (and, when
// present, its guard) and registers it under the engine's function
// registry — spec.md §4.5: "Def: build a DynamicFunction ... register it
// in the engine's function registry under Name."
func (ev *Evaluator) evalDef(d *ast.Def) (boxed.Value, error) {
	params := d.Params
	body := d.Body

	var guard proxy.Function
	if d.Guard != nil {
		guardExpr := d.Guard
		guard = proxy.NewDynamic(d.Name+":guard", len(params), func(args []boxed.Value) (boxed.Value, error) {
			return ev.callBody(params, args, func() (boxed.Value, error) { return ev.Eval(guardExpr) })
		})
	}

	fn := proxy.NewDynamic(d.Name, len(params), func(args []boxed.Value) (boxed.Value, error) {
		return ev.callBody(params, args, func() (boxed.Value, error) { return ev.Eval(body) })
	})
	if guard != nil {
		fn = fn.WithGuard(guard)
	}
	ev.engine.RegisterFunction(d.Name, fn)
	return boxed.Void(), nil
}

// evalLambda builds an unregistered DynamicFunction and boxes it, giving
// a `fun(...) {...}` expression a first-class callable value rather than
// a named overload.
func (ev *Evaluator) evalLambda(l *ast.Lambda) (boxed.Value, error) {
	params := l.Params
	body := l.Body
	fn := proxy.NewDynamic("<lambda>", len(params), func(args []boxed.Value) (boxed.Value, error) {
		return ev.callBody(params, args, func() (boxed.Value, error) { return ev.Eval(body) })
	})
	return boxed.New(fn), nil
}
