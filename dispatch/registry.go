package dispatch

import (
	"github.com/rubiojr/chaiscript-go/proxy"
)

// functionRegistry is a multimap from name to proxy.Function, deduplicated
// by signature equality on insertion (spec.md §3, "FunctionRegistry").
type functionRegistry struct {
	byName map[string][]proxy.Function
	order  []string // first-seen order, for deterministic Names()
}

func newFunctionRegistry() *functionRegistry {
	return &functionRegistry{byName: make(map[string][]proxy.Function)}
}

// register appends fn to name's overload set unless an equal signature is
// already registered, in which case it replaces that entry (re-`def`ing
// the same signature redefines it, rather than shadowing).
func (r *functionRegistry) register(name string, fn proxy.Function) {
	existing, ok := r.byName[name]
	if !ok {
		r.order = append(r.order, name)
	}
	for i, e := range existing {
		if e.Equal(fn) {
			existing[i] = fn
			r.byName[name] = existing
			return
		}
	}
	r.byName[name] = append(existing, fn)
}

func (r *functionRegistry) overloads(name string) []proxy.Function {
	return r.byName[name]
}

func (r *functionRegistry) names() []string {
	return append([]string(nil), r.order...)
}

// snapshot deep-copies the registry for SaveState/RestoreState.
func (r *functionRegistry) snapshot() *functionRegistry {
	cp := newFunctionRegistry()
	cp.order = append([]string(nil), r.order...)
	for name, fns := range r.byName {
		cp.byName[name] = append([]proxy.Function(nil), fns...)
	}
	return cp
}
