package dispatch

import (
	"github.com/rubiojr/chaiscript-go/boxed"
	"github.com/rubiojr/chaiscript-go/typeinfo"
)

// ConvertFunc performs a single registered conversion: given a BoxedValue
// of the registered "from" bare type, produce an equivalent BoxedValue of
// the "to" bare type.
type ConvertFunc func(v boxed.Value) (boxed.Value, error)

type conversionKey struct {
	from, to uint64 // TypeInfo.BareID()
}

// conversionRegistry is the directed graph described in spec.md §4.4:
// looked up by (from_bare, to_bare) pair, with a small depth-bounded hop
// allowance (spec.md §9) rather than a full transitive closure.
type conversionRegistry struct {
	edges map[conversionKey]ConvertFunc
}

func newConversionRegistry() *conversionRegistry {
	return &conversionRegistry{edges: make(map[conversionKey]ConvertFunc)}
}

// register adds a from→to conversion edge.
func (c *conversionRegistry) register(from, to typeinfo.TypeInfo, fn ConvertFunc) {
	c.edges[conversionKey{from.BareID(), to.BareID()}] = fn
}

// maxHops bounds the lookup's transitive search, per spec.md §9: "a
// lookup may try two hops (e.g. Derived → Base → RegisteredTarget)
// bounded by a small depth" rather than computing a full transitive
// closure at registration time.
const maxHops = 2

// convert attempts to produce a `to`-typed value from v, trying a direct
// edge first and then up to maxHops-1 additional hops through intermediate
// registered types.
func (c *conversionRegistry) convert(from, to typeinfo.TypeInfo, v boxed.Value) (boxed.Value, bool) {
	return c.convertHop(from, to, v, maxHops)
}

func (c *conversionRegistry) convertHop(from, to typeinfo.TypeInfo, v boxed.Value, hopsLeft int) (boxed.Value, bool) {
	if hopsLeft <= 0 {
		return boxed.Value{}, false
	}
	if fn, ok := c.edges[conversionKey{from.BareID(), to.BareID()}]; ok {
		out, err := fn(v)
		if err != nil {
			return boxed.Value{}, false
		}
		return out, true
	}
	for key, fn := range c.edges {
		if key.from != from.BareID() {
			continue
		}
		intermediate, err := fn(v)
		if err != nil {
			continue
		}
		if key.to == to.BareID() {
			return intermediate, true
		}
		if out, ok := c.convertHop(intermediateType(intermediate), to, intermediate, hopsLeft-1); ok {
			return out, true
		}
	}
	return boxed.Value{}, false
}

func intermediateType(v boxed.Value) typeinfo.TypeInfo { return v.Type() }

func (c *conversionRegistry) snapshot() *conversionRegistry {
	cp := newConversionRegistry()
	for k, v := range c.edges {
		cp.edges[k] = v
	}
	return cp
}

// Convert implements boxed.Converter, letting boxed.Cast and proxy's
// TypesMatch/extractArg consult this engine's conversion registry without
// either package importing dispatch.
func (e *Engine) Convert(from, to typeinfo.TypeInfo, v boxed.Value) (boxed.Value, bool) {
	return e.conversions.convert(from, to, v)
}

// RegisterConversion adds a from→to conversion edge, used directly for
// ad-hoc conversions and by the chai package's RegisterBaseClass and
// RegisterVectorConversion convenience factories (spec.md §4.4/§6).
func (e *Engine) RegisterConversion(from, to typeinfo.TypeInfo, fn ConvertFunc) {
	e.conversions.register(from, to, fn)
}
