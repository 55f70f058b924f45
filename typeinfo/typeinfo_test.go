package typeinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeOf_StableIdentity(t *testing.T) {
	a := TypeOf[int]()
	b := TypeOf[int]()
	assert.Equal(t, a.BareID(), b.BareID())
	assert.True(t, a.BareEqual(b))
}

func TestTypeOf_DistinctTypes(t *testing.T) {
	i := TypeOf[int]()
	s := TypeOf[string]()
	assert.False(t, i.BareEqual(s))
}

func TestTypeOf_QualifiersCollapseToBareIdentity(t *testing.T) {
	bare := TypeOf[int]()
	ref := bare.WithReference(true)
	constRef := bare.WithConst(true).WithReference(true)

	require.True(t, bare.BareEqual(ref))
	require.True(t, bare.BareEqual(constRef))
	assert.False(t, bare.IsReference())
	assert.True(t, ref.IsReference())
	assert.True(t, constRef.IsConst())
}

func TestArithmeticClassification(t *testing.T) {
	tests := []struct {
		name string
		ti   TypeInfo
		want bool
	}{
		{"int", TypeOf[int](), true},
		{"int8", TypeOf[int8](), true},
		{"uint64", TypeOf[uint64](), true},
		{"float64", TypeOf[float64](), true},
		{"bool", TypeOf[bool](), true},
		{"string", TypeOf[string](), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ti.IsArithmetic())
		})
	}
}

func TestVoidAndUndefAreDistinctFromEachOtherAndFromBareTypes(t *testing.T) {
	assert.True(t, Void.BareEqual(Void))
	assert.True(t, Undef.BareEqual(Undef))
	assert.False(t, Void.BareEqual(Undef))
	assert.False(t, Void.BareEqual(TypeOf[int]()))
}
