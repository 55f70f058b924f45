package eval

import (
	"github.com/rubiojr/chaiscript-go/ast"
	"github.com/rubiojr/chaiscript-go/boxed"
)

// evalInlineArray desugars [a, b, c] into a Vector() constructor call
// followed by one push_back dispatch per element (spec.md §4.5).
func (ev *Evaluator) evalInlineArray(a *ast.InlineArray) (boxed.Value, error) {
	vec, err := ev.dispatchOperator(a.Pos(), "Vector")
	if err != nil {
		return boxed.Value{}, err
	}
	for _, el := range a.Elements {
		v, err := ev.Eval(el)
		if err != nil {
			return boxed.Value{}, err
		}
		if _, err := ev.dispatchOperator(a.Pos(), "push_back", vec, v); err != nil {
			return boxed.Value{}, err
		}
	}
	return vec, nil
}

// evalInlineMap desugars [k1: v1, k2: v2] into a Map() constructor call
// followed by one index-assign per pair (spec.md §4.5).
func (ev *Evaluator) evalInlineMap(m *ast.InlineMap) (boxed.Value, error) {
	mp, err := ev.dispatchOperator(m.Pos(), "Map")
	if err != nil {
		return boxed.Value{}, err
	}
	for _, pair := range m.Pairs {
		k, err := ev.Eval(pair.Key)
		if err != nil {
			return boxed.Value{}, err
		}
		v, err := ev.Eval(pair.Value)
		if err != nil {
			return boxed.Value{}, err
		}
		if _, err := ev.assignIndex(m.Pos(), mp, k, v); err != nil {
			return boxed.Value{}, err
		}
	}
	return mp, nil
}
