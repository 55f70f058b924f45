package boxed

import (
	"reflect"
	"runtime"
	"sync"
)

// internTable is the process-wide weak map from raw address to the
// shared record currently boxed at that address, described in spec.md
// §4.2 ("Identity interning"). It must be safe across goroutines: the
// engine is single-threaded per instance (spec.md §5), but two engines on
// different goroutines may box the same underlying pointer.
type internTable struct {
	mu      sync.Mutex
	entries map[uintptr]*sharedRecord
}

var interning = &internTable{entries: make(map[uintptr]*sharedRecord)}

// internOnBox consults the interning cache for boxable pointer-shaped
// values. If v is not addressable (the common case for plain scalars
// passed by value) the box created by New is returned unchanged — there
// is no stable address to intern on. If v is a pointer, and an entry
// already exists for that address, the existing shared record is reused
// so both boxings compare equal and share state; otherwise the new
// record is registered and a finalizer is attached to prune it once
// nothing else references the record.
func internOnBox(v any, fresh Value) Value {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fresh
	}
	addr := rv.Pointer()

	interning.mu.Lock()
	defer interning.mu.Unlock()

	if existing, ok := interning.entries[addr]; ok {
		fresh.shared = existing
		return fresh
	}

	interning.entries[addr] = fresh.shared
	runtime.SetFinalizer(fresh.shared, func(r *sharedRecord) {
		interning.mu.Lock()
		defer interning.mu.Unlock()
		if interning.entries[addr] == r {
			delete(interning.entries, addr)
		}
	})
	return fresh
}
