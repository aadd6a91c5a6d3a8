package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraintKindRequirements(t *testing.T) {
	operandKinds := []ConstraintKind{
		KindEqual, KindNotEqual, KindGreaterThan, KindGreaterThanOrEqual,
		KindLessThan, KindLessThanOrEqual, KindIncreasedBy, KindDecreasedBy,
	}
	stateKinds := []ConstraintKind{
		KindChanged, KindUnchanged, KindIncreased, KindDecreased,
	}

	for _, k := range operandKinds {
		assert.True(t, k.RequiresOperand(), k.String())
	}
	for _, k := range stateKinds {
		assert.False(t, k.RequiresOperand(), k.String())
		assert.True(t, k.RequiresPrior(), k.String())
	}

	assert.True(t, KindIncreasedBy.RequiresPrior())
	assert.True(t, KindDecreasedBy.RequiresPrior())
	assert.False(t, KindEqual.RequiresPrior())
	assert.False(t, KindLessThan.RequiresPrior())
}

func TestConstraintValid(t *testing.T) {
	assert.True(t, Equal(IntScalar(5)).Valid())
	assert.True(t, Increased().Valid())
	assert.True(t, IncreasedBy(IntScalar(2)).Valid())

	// Operand presence must match the kind's requirement, both ways
	assert.False(t, Constraint{Kind: KindEqual}.Valid())
	assert.False(t, Constraint{Kind: KindChanged, Operand: IntScalar(1)}.Valid())
}

func TestCollectionValidity(t *testing.T) {
	t.Run("empty collection is invalid", func(t *testing.T) {
		col := NewCollection(Int32)
		assert.False(t, col.IsValid())
	})

	t.Run("missing operand makes collection invalid", func(t *testing.T) {
		col := NewCollection(Int32)
		col.AddConstraint(Constraint{Kind: KindGreaterThan})
		assert.False(t, col.IsValid())
	})

	t.Run("valid collection", func(t *testing.T) {
		col := NewCollection(Int32)
		col.AddConstraint(GreaterThan(IntScalar(0)))
		col.AddConstraint(LessThan(IntScalar(100)))
		assert.True(t, col.IsValid())
		assert.False(t, col.RequiresPrior())
	})

	t.Run("delta kind requires prior", func(t *testing.T) {
		col := NewCollection(Int32)
		col.AddConstraint(Increased())
		assert.True(t, col.IsValid())
		assert.True(t, col.RequiresPrior())
	})
}

func TestCollectionMutation(t *testing.T) {
	col := NewCollection(Int32)
	col.AddConstraint(Equal(IntScalar(1)))
	col.AddConstraint(NotEqual(IntScalar(2)))
	col.AddConstraint(Equal(IntScalar(1)))
	require.Equal(t, 3, col.Len())

	// Removal is structural and removes all matches
	col.RemoveConstraints(Equal(IntScalar(1)))
	require.Equal(t, 1, col.Len())
	assert.Equal(t, KindNotEqual, col.Constraints()[0].Kind)

	col.ClearConstraints()
	assert.Equal(t, 0, col.Len())
	assert.False(t, col.IsValid())
}

func TestCollectionClone(t *testing.T) {
	col := NewCollection(Int32)
	col.AddConstraint(Equal(IntScalar(7)))

	clone := col.Clone()
	require.True(t, clone.IsValid())

	// Mutating the original never changes the clone
	col.ClearConstraints()
	col.SetElementType(Float64)
	col.AddConstraint(Changed())

	assert.Equal(t, Int32, clone.ElementType())
	require.Equal(t, 1, clone.Len())
	assert.Equal(t, Equal(IntScalar(7)), clone.Constraints()[0])
}

func TestParseScalar(t *testing.T) {
	v, err := ParseScalar("42", Int32)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int64())

	v, err = ParseScalar("-8", Int8)
	require.NoError(t, err)
	assert.Equal(t, int64(-8), v.Int64())

	v, err = ParseScalar("0xff", Uint8)
	require.NoError(t, err)
	assert.Equal(t, uint64(255), v.Uint64())

	v, err = ParseScalar("3.25", Float32)
	require.NoError(t, err)
	assert.Equal(t, 3.25, v.Float64())

	_, err = ParseScalar("300", Uint8)
	assert.Error(t, err)

	_, err = ParseScalar("-1", Uint32)
	assert.Error(t, err)

	_, err = ParseScalar("abc", Int64)
	assert.Error(t, err)
}

func TestParseElementType(t *testing.T) {
	for name, want := range map[string]ElementType{
		"int8": Int8, "i16": Int16, "int": Int32, "i64": Int64,
		"byte": Uint8, "u16": Uint16, "uint32": Uint32, "u64": Uint64,
		"float": Float32, "double": Float64,
	} {
		got, err := ParseElementType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseElementType("int128")
	assert.Error(t, err)
}

func TestElementTypeStride(t *testing.T) {
	assert.Equal(t, 1, Int8.Stride())
	assert.Equal(t, 2, Uint16.Stride())
	assert.Equal(t, 4, Int32.Stride())
	assert.Equal(t, 4, Float32.Stride())
	assert.Equal(t, 8, Uint64.Stride())
	assert.Equal(t, 8, Float64.Stride())
}
