package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obi1kenobi/trustfall-go/ir"
)

func animalSchema() *InMemory {
	return NewInMemory("RootQuery", []VertexType{
		{
			Name: "Named",
			Kind: KindInterface,
			Properties: map[string]PropertyDefinition{
				"name": {Name: "name", Type: ir.NewNamedType("String", false)},
			},
			Edges: map[string]EdgeDefinition{
				"related": {Name: "related", TargetType: "Named", TargetTypeIsList: true},
			},
		},
		{
			Name:       "Animal",
			Kind:       KindObject,
			Implements: []string{"Named"},
			Properties: map[string]PropertyDefinition{
				"name": {Name: "name", Type: ir.NewNamedType("String", false)},
			},
			Edges: map[string]EdgeDefinition{
				"parent": {Name: "parent", TargetType: "Animal"},
			},
		},
		{
			Name: "RootQuery",
			Kind: KindObject,
			Edges: map[string]EdgeDefinition{
				"Animal": {Name: "Animal", TargetType: "Animal", TargetTypeIsList: true},
			},
		},
	})
}

func TestInMemorySubtyping(t *testing.T) {
	s := animalSchema()
	assert.True(t, s.IsNamedTypeSubtype("Animal", "Named"))
	assert.True(t, s.IsNamedTypeSubtype("Animal", "Animal"))
	assert.False(t, s.IsNamedTypeSubtype("Named", "Animal"))
}

func TestInMemoryFieldOrigin(t *testing.T) {
	s := animalSchema()

	_, ok := s.Field("Animal", "related")
	assert.False(t, ok, "Animal does not directly define related; it is inherited from Named")

	origin, ok := s.FieldOrigin("Animal", "related")
	require.True(t, ok)
	assert.Equal(t, "Named", origin.SingleAncestor)
	assert.False(t, origin.IsAmbiguous())
}

func TestInMemoryAmbiguousFieldOrigin(t *testing.T) {
	s := NewInMemory("RootQuery", []VertexType{
		{Name: "A", Kind: KindInterface, Edges: map[string]EdgeDefinition{
			"thing": {Name: "thing", TargetType: "A"},
		}},
		{Name: "B", Kind: KindInterface, Edges: map[string]EdgeDefinition{
			"thing": {Name: "thing", TargetType: "B"},
		}},
		{Name: "C", Kind: KindObject, Implements: []string{"A", "B"}},
	})

	origin, ok := s.FieldOrigin("C", "thing")
	require.True(t, ok)
	assert.True(t, origin.IsAmbiguous())
	assert.ElementsMatch(t, []string{"A", "B"}, origin.MultipleAncestors)
}

func TestInMemoryScalarsAndQueryType(t *testing.T) {
	s := animalSchema()
	assert.Equal(t, "RootQuery", s.QueryTypeName())
	assert.True(t, s.IsScalarType("Int"))
	assert.False(t, s.IsScalarType("Animal"))

	s.AddScalar("DateTime")
	assert.True(t, s.IsScalarType("DateTime"))
}
