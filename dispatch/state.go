package dispatch

import "github.com/rubiojr/chaiscript-go/typeinfo"

// State is a snapshot of an Engine's functions, types, and conversions —
// explicitly not its scopes (spec.md §4.4: "save_state / restore_state —
// snapshot and restore the entire engine's functions, types, conversions
// (not scopes)").
type State struct {
	functions   *functionRegistry
	types       map[string]typeinfo.TypeInfo
	conversions *conversionRegistry
}

// SaveState captures the engine's current functions, types, and
// conversion registries.
func (e *Engine) SaveState() State {
	types := make(map[string]typeinfo.TypeInfo, len(e.types))
	for k, v := range e.types {
		types[k] = v
	}
	return State{
		functions:   e.functions.snapshot(),
		types:       types,
		conversions: e.conversions.snapshot(),
	}
}

// RestoreState replaces the engine's functions, types, and conversions
// with a previously saved State, leaving the current scope stack
// untouched.
func (e *Engine) RestoreState(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.functions = s.functions.snapshot()
	e.types = make(map[string]typeinfo.TypeInfo, len(s.types))
	for k, v := range s.types {
		e.types[k] = v
	}
	e.conversions = s.conversions.snapshot()
}
