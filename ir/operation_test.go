package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationKindName(t *testing.T) {
	assert.Equal(t, "=", OpEquals.Name())
	assert.Equal(t, "has_prefix", OpHasPrefix.Name())
	assert.True(t, OpIsNull.IsUnary())
	assert.False(t, OpEquals.IsUnary())
	assert.True(t, OpOneOf.IsListValued())
	assert.False(t, OpEquals.IsListValued())
}

func TestUnaryOperationConstruction(t *testing.T) {
	subject := LocalField{PropertyName: "name", Type: NewNamedType("String", true)}
	op := NewUnaryOperation[FieldRef, Argument](OpIsNull, subject)

	assert.Equal(t, OpIsNull, op.Kind)
	assert.Equal(t, subject, op.Left())
	_, hasRight := op.Right()
	assert.False(t, hasRight)
}

func TestUnaryOperationPanicsOnBinaryKind(t *testing.T) {
	subject := LocalField{PropertyName: "name", Type: NewNamedType("String", true)}
	assert.Panics(t, func() {
		NewUnaryOperation[FieldRef, Argument](OpEquals, subject)
	})
}

func TestBinaryOperationConstruction(t *testing.T) {
	subject := LocalField{PropertyName: "age", Type: NewNamedType("Int", true)}
	arg := VariableArgument(VariableRef{VariableName: "min_age", VariableType: NewNamedType("Int", true)})
	op := NewBinaryOperation[FieldRef, Argument](OpGreaterThanOrEqual, subject, arg)

	right, ok := op.Right()
	require.True(t, ok)
	v, ok := right.AsVariable()
	require.True(t, ok)
	assert.Equal(t, "min_age", v.VariableName)
}

func TestBinaryOperationPanicsOnUnaryKind(t *testing.T) {
	subject := LocalField{PropertyName: "age", Type: NewNamedType("Int", true)}
	assert.Panics(t, func() {
		NewBinaryOperation[FieldRef, Argument](OpIsNotNull, subject, VariableArgument(VariableRef{}))
	})
}

func TestMapOperation(t *testing.T) {
	subject := LocalField{PropertyName: "age", Type: NewNamedType("Int", true)}
	op := NewBinaryOperation[FieldRef, Argument](OpEquals, subject, VariableArgument(VariableRef{VariableName: "x"}))

	mapped := MapOperation(op, func(f FieldRef) string { return f.FieldName() }, func(a Argument) string { return a.String() })
	assert.Equal(t, "age", mapped.Left())
	right, ok := mapped.Right()
	require.True(t, ok)
	assert.Equal(t, "$x", right)
}

func TestArgumentTagAndVariable(t *testing.T) {
	tagRef := ContextField{VertexID: NewVid(1), PropertyName: "name", Type: NewNamedType("String", true)}
	tagArg := TagArgument(tagRef)

	got, ok := tagArg.AsTag()
	require.True(t, ok)
	assert.Equal(t, tagRef, got)

	_, ok = tagArg.AsVariable()
	assert.False(t, ok)

	varArg := VariableArgument(VariableRef{VariableName: "n", VariableType: NewNamedType("Int", true)})
	_, ok = varArg.AsTag()
	assert.False(t, ok)
}
