package proxy

import "errors"

// These are the "internal signal" error kinds from spec.md §7: they are
// caught by overload resolution (Dispatch) to try the next candidate, and
// only surface to the evaluator as an EvalError when every candidate is
// exhausted.
var (
	// ErrArityMismatch is returned when a call supplies the wrong number
	// of arguments for a candidate's fixed arity.
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrBadCast is returned when an argument cannot be extracted into a
	// candidate's declared parameter type.
	ErrBadCast = errors.New("bad cast")

	// ErrGuardFailed is returned by a guarded DynamicFunction whose guard
	// expression evaluated to false.
	ErrGuardFailed = errors.New("guard failed")

	// ErrDispatchError is returned by Dispatch when every candidate in a
	// DispatchGroup failed with ErrArityMismatch, ErrBadCast, or
	// ErrGuardFailed.
	ErrDispatchError = errors.New("no matching overload")
)
