package eval

import (
	"fmt"

	"github.com/rubiojr/chaiscript-go/lexer"
)

// EvalError is the evaluator's uniform failure type: every evaluator-
// detected error (unresolved identifier, bad condition type, out-of-bounds
// access, dispatch failure, ...) carries the offending token's position
// (spec.md §4.5's "Error semantics").
type EvalError struct {
	Reason string
	Pos    lexer.Position
}

func (e *EvalError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Reason) }

func evalErrorf(pos lexer.Position, format string, args ...any) *EvalError {
	return &EvalError{Reason: fmt.Sprintf(format, args...), Pos: pos}
}

// HostException wraps a panic recovered from evaluating a script-defined
// function body (see callBody). proxy.NativeFunction already converts a
// panicking Go callback into a plain error at the call boundary, so the
// case this type actually guards is a script callee panicking for a
// reason other than return/break — an invariant violation surfacing as a
// Go panic rather than an EvalError. Reported as an ordinary error (not
// re-panicked) once the call's scope stack has been restored, matching
// spec.md §4.5's requirement that the stack be consistent after a host
// exception: "caught ... after the call-site stack is restored."
type HostException struct {
	Value any
}

func (h *HostException) Error() string { return fmt.Sprintf("host exception: %v", h.Value) }
