package eval

import "github.com/rubiojr/chaiscript-go/boxed"

// returnSignal and breakSignal are the two control-flow exceptions the
// evaluator recognizes (spec.md §4.5/§5). They are the one legitimate use
// of panic/recover in this package: ordinary evaluation failures are
// plain returned *EvalError values, but a `return` or `break` must unwind
// past an arbitrary number of Go call frames — including through an
// opaque proxy.Function.Call boundary that can't carry a third "control
// flow" return value — so they're modeled as panics caught at the one
// place each is meaningful (catchBreak around each While/For body for
// breakSignal, callBody's recover at the function call boundary for
// returnSignal).
type returnSignal struct {
	value boxed.Value
}

type breakSignal struct{}

// catchReturn recovers a returnSignal produced anywhere within fn and
// reports it as fn's result; breakSignal and any other panic propagate
// unchanged. It currently has no callers: callBody recovers returnSignal
// inline at the function call boundary.
func catchReturn(fn func() (boxed.Value, error)) (result boxed.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rs, ok := r.(returnSignal); ok {
				result, err = rs.value, nil
				return
			}
			panic(r)
		}
	}()
	return fn()
}

// catchBreak recovers a breakSignal produced anywhere within fn, in which
// case it reports a normal (non-error) result; returnSignal and any other
// panic propagate unchanged. Used at each loop body boundary (While/For).
func catchBreak(fn func() error) (broke bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(breakSignal); ok {
				broke = true
				err = nil
				return
			}
			panic(r)
		}
	}()
	return false, fn()
}
