package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldValueEqualCrossInteger(t *testing.T) {
	assert.True(t, Int64(5).Equal(Uint64(5)))
	assert.True(t, Uint64(5).Equal(Int64(5)))
	assert.False(t, Int64(-1).Equal(Uint64(0)))
	assert.False(t, Int64(-1).Equal(Uint64(18446744073709551615)))
}

func TestFieldValueLessCrossInteger(t *testing.T) {
	assert.True(t, Int64(-1).Less(Uint64(0)))
	assert.False(t, Uint64(0).Less(Int64(-1)))
	assert.True(t, Int64(3).Less(Uint64(4)))
	assert.True(t, Uint64(4).Less(Int64(5)))
	assert.False(t, Uint64(5).Less(Int64(5)))
}

func TestFieldValueNullComparisons(t *testing.T) {
	assert.False(t, Null.Equal(Null), "Equal's tryCompare treats Null as incomparable even with itself")
	assert.False(t, Null.Less(Int64(1)))
	assert.False(t, Int64(1).Less(Null))
	assert.False(t, Int64(1).Equal(Null))
}

func TestFieldValueListOrdering(t *testing.T) {
	a := List([]FieldValue{Int64(1), Int64(2)})
	b := List([]FieldValue{Int64(1), Int64(3)})
	c := List([]FieldValue{Int64(1)})

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, c.Less(a), "shorter list with equal shared prefix sorts first")
	assert.True(t, a.Equal(List([]FieldValue{Int64(1), Uint64(2)})), "cross-integer equality carries through list elements")
}

func TestFieldValueStringOrdering(t *testing.T) {
	assert.True(t, String("apple").Less(String("banana")))
	assert.False(t, String("banana").Less(String("apple")))
	assert.True(t, String("a").Equal(String("a")))
}

func TestFieldValueFloatIntComparison(t *testing.T) {
	assert.True(t, Float64(1.5).Equal(Float64(1.5)))
	assert.True(t, Int64(2).Less(Float64(2.5)))
	assert.True(t, Float64(1.5).Less(Int64(2)))
	assert.True(t, Uint64(3).Less(Float64(3.5)))
}

func TestFieldValueKindAndAccessors(t *testing.T) {
	v := Enum("RED")
	assert.Equal(t, KindEnum, v.Kind())
	s, ok := v.AsEnum()
	assert.True(t, ok)
	assert.Equal(t, "RED", s)

	_, ok = v.AsString()
	assert.False(t, ok)

	assert.True(t, Null.IsNull())
	assert.False(t, Int64(0).IsNull())
}

func TestFieldValueAsListCopiesInput(t *testing.T) {
	src := []FieldValue{Int64(1), Int64(2)}
	v := List(src)
	src[0] = Int64(99)

	got, ok := v.AsList()
	if !ok {
		t.Fatal("expected v to be a list")
	}
	assert.True(t, got[0].Equal(Int64(1)), "List must copy its input so later mutation of the source slice is not observed")
}
