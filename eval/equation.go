package eval

import (
	"github.com/rubiojr/chaiscript-go/ast"
	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/lexer"
)

// evalEquation implements spec.md §4.5's Equation rule: `:=` rebinds
// storage, `=` either binds an Undef target for the first time or
// mutates already-bound storage in place, and the compound operators
// dispatch their base arithmetic operator before assigning the result.
func (ev *Evaluator) evalEquation(eq *ast.Equation) (boxed.Value, error) {
	rhs, err := ev.Eval(eq.Value)
	if err != nil {
		return boxed.Value{}, err
	}

	switch eq.Op {
	case ":=":
		return ev.rebind(eq.Target, rhs, eq.Pos())
	case "=":
		return ev.assign(eq.Target, rhs, eq.Pos())
	case "+=", "-=", "*=", "/=":
		base := eq.Op[:1]
		current, err := ev.Eval(eq.Target)
		if err != nil {
			return boxed.Value{}, err
		}
		newVal, err := ev.dispatchOperator(eq.Pos(), base, current, rhs)
		if err != nil {
			return boxed.Value{}, err
		}
		return ev.assign(eq.Target, newVal, eq.Pos())
	default:
		return boxed.Value{}, evalErrorf(eq.Pos(), "unknown equation operator %q", eq.Op)
	}
}

// rebind implements `:=`: the target comes to share rhs's storage
// outright rather than having its current value overwritten.
func (ev *Evaluator) rebind(target ast.Expr, rhs boxed.Value, pos lexer.Position) (boxed.Value, error) {
	switch t := target.(type) {
	case *ast.VarDecl:
		ev.engine.AddObject(t.Name, rhs)
		return rhs, nil
	case *ast.Id:
		current, ok := ev.engine.LookupLocal(t.Name)
		if !ok {
			return boxed.Value{}, evalErrorf(pos, "Can not find object: %s", t.Name)
		}
		if !current.IsUndef() && !current.Type().BareEqual(rhs.Type()) {
			return boxed.Value{}, evalErrorf(pos, "cannot rebind %s to a value of a different type", t.Name)
		}
		ev.engine.SetObject(t.Name, rhs)
		return rhs, nil
	default:
		return boxed.Value{}, evalErrorf(pos, "':=' requires a variable target")
	}
}

// assign implements `=` and the compound-assignment operators' final
// store: a VarDecl or freshly declared Id target binds for the first
// time, an already-bound Id dispatches the registered `=` overload for its
// type (spec.md §4.5: "otherwise dispatch the `=` overload" — prelude's
// default `=` mutates storage in place so every alias observes the new
// value, but a type with its own `=` overload is consulted instead), an
// ArrayCall target dispatches into the container's index slot, and a
// DotAccess target desugars to a setter-style call of the member name with
// (object, value).
func (ev *Evaluator) assign(target ast.Expr, rhs boxed.Value, pos lexer.Position) (boxed.Value, error) {
	switch t := target.(type) {
	case *ast.VarDecl:
		ev.engine.AddObject(t.Name, boxed.Undef())
		return ev.bindNamed(t.Name, rhs)

	case *ast.Id:
		current, ok := ev.engine.LookupLocal(t.Name)
		if !ok {
			return boxed.Value{}, evalErrorf(pos, "Can not find object: %s", t.Name)
		}
		if current.IsUndef() {
			return ev.bindNamed(t.Name, rhs)
		}
		return ev.dispatchOperator(pos, "=", current, rhs)

	case *ast.ArrayCall:
		obj, err := ev.Eval(t.Object)
		if err != nil {
			return boxed.Value{}, err
		}
		idx, err := ev.Eval(t.Index)
		if err != nil {
			return boxed.Value{}, err
		}
		return ev.assignIndex(pos, obj, idx, rhs)

	case *ast.DotAccess:
		name, err := ev.dotMemberName(t)
		if err != nil {
			return boxed.Value{}, err
		}
		obj, err := ev.Eval(t.Object)
		if err != nil {
			return boxed.Value{}, err
		}
		return ev.dispatchOperator(pos, name, obj, rhs)

	default:
		return boxed.Value{}, evalErrorf(pos, "invalid assignment target")
	}
}

// bindNamed clones rhs (via a registered `clone`, falling back to binding
// rhs's own storage when none is registered) and stores it under name —
// spec.md §4.5's "binding a name copies, `:=` shares."
func (ev *Evaluator) bindNamed(name string, rhs boxed.Value) (boxed.Value, error) {
	cloned, err := ev.engine.Invoke("clone", []boxed.Value{rhs})
	if err != nil {
		cloned = rhs
	}
	ev.engine.SetObject(name, cloned)
	return cloned, nil
}

// assignIndex implements container[index] = value: `[]` resolves the
// slot; if that slot is Undef the container gets a chance to create it
// via a registered `[]=` overload (the mechanism prelude's Map uses for
// inserting a new key), otherwise the existing slot is mutated in place.
func (ev *Evaluator) assignIndex(pos lexer.Position, container, idx, rhs boxed.Value) (boxed.Value, error) {
	slot, err := ev.dispatchOperator(pos, "[]", container, idx)
	if err != nil {
		return boxed.Value{}, err
	}
	if slot.IsUndef() {
		if created, err := ev.dispatchOperator(pos, "[]=", container, idx, rhs); err == nil {
			return created, nil
		}
	}
	if err := slot.SetInPlace(rhs); err != nil {
		return boxed.Value{}, evalErrorf(pos, "index assignment: %v", err)
	}
	return rhs, nil
}
