// Package prelude registers the small set of native functions spec.md §9's
// Open Questions say must exist before any script runs: `clone` and
// `call_exists` (the prelude load-order dependency), plus the base
// arithmetic/comparison/concat overloads and the `Vector`/`Map` container
// surface the evaluator's operator dispatch and Inline_Array/Inline_Map
// desugaring hard-depend on (eval/equation.go's `bindNamed`, eval/containers.go).
//
// spec.md §1 places the prelude's *script* form (chaiscript_prelude.hpp in
// the original implementation) out of scope; this package supplies the same
// names as native Go functions instead, per SPEC_FULL.md §6.
package prelude

import (
	"github.com/rubiojr/chaiscript-go/dispatch"
)

// Install registers every prelude function into e. It must run before any
// user script is evaluated against e (spec.md §9: "these must be registered
// before the prelude is evaluated" — here, before the first user Eval).
func Install(e *dispatch.Engine) {
	installOperators(e)
	installContainers(e)
}
