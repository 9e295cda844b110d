package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFieldImplementsFieldRef(t *testing.T) {
	var f FieldRef = LocalField{PropertyName: "name", Type: NewNamedType("String", true)}
	assert.Equal(t, "name", f.FieldName())
	assert.Equal(t, Vid(0), f.DefinedAt())
}

func TestFoldSpecificFieldCount(t *testing.T) {
	f := FoldSpecificField{FoldEid: NewEid(3), FoldRootVid: NewVid(1), Kind: FoldSpecificCount}
	assert.Equal(t, "_x_count", f.FieldName())
	assert.Equal(t, "Int", f.FieldType().Base())
	assert.False(t, f.FieldType().Nullable())
	assert.Equal(t, Vid(1), f.DefinedAt())
}

func TestLenTransformResultType(t *testing.T) {
	listType := NewListType(NewNamedType("String", false), true, 30)
	result, err := LenTransform{}.ResultType(listType)
	require.NoError(t, err)
	assert.Equal(t, "Int", result.Base())
	assert.True(t, result.Nullable())

	_, err = LenTransform{}.ResultType(NewNamedType("Int", true))
	assert.Error(t, err)
}

func TestAbsTransformResultType(t *testing.T) {
	result, err := AbsTransform{}.ResultType(NewNamedType("Int", false))
	require.NoError(t, err)
	assert.True(t, result.Equal(NewNamedType("Int", false)))

	_, err = AbsTransform{}.ResultType(NewNamedType("String", true))
	assert.Error(t, err)
}

func TestTransformedFieldChain(t *testing.T) {
	base := LocalField{PropertyName: "tags", Type: NewListType(NewNamedType("String", false), true, 30)}
	tf := TransformedField{
		Tid:        NewTid(1),
		Base:       base,
		Transforms: []Transform{LenTransform{}},
		Type:       NewNamedType("Int", true),
	}
	assert.Equal(t, "transform_1", tf.FieldName())
	assert.Equal(t, Vid(0), tf.DefinedAt())
	assert.False(t, tf.referstoFoldSpecificField())
}

func TestCompareFieldRefOrdering(t *testing.T) {
	local := LocalField{PropertyName: "name", Type: NewNamedType("String", true)}
	fold := FoldSpecificField{FoldEid: NewEid(1), FoldRootVid: NewVid(1), Kind: FoldSpecificCount}
	transformed := TransformedField{Tid: NewTid(1), Base: fold, Transforms: nil, Type: NewNamedType("Int", true)}

	assert.True(t, CompareFieldRef(local, fold) < 0)
	assert.True(t, CompareFieldRef(fold, transformed) < 0)
	assert.True(t, CompareFieldRef(local, local) == 0)
}
