package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obi1kenobi/trustfall-go/ir"
	"github.com/obi1kenobi/trustfall-go/schema"
)

func animalSchema() *schema.InMemory {
	return schema.NewInMemory("RootQuery", []schema.VertexType{
		{
			Name: "Animal",
			Kind: schema.KindObject,
			Properties: map[string]schema.PropertyDefinition{
				"name": {Name: "name", Type: ir.NewNamedType("String", false)},
				"age":  {Name: "age", Type: ir.NewNamedType("Int", false)},
			},
			Edges: map[string]schema.EdgeDefinition{
				"parent":   {Name: "parent", TargetType: "Animal"},
				"children": {Name: "children", TargetType: "Animal", TargetTypeIsList: true},
			},
		},
		{
			Name: "RootQuery",
			Kind: schema.KindObject,
			Edges: map[string]schema.EdgeDefinition{
				"Animal": {Name: "Animal", TargetType: "Animal", TargetTypeIsList: true},
			},
		},
	})
}

// entitySchema provides a small subtype hierarchy (Dog implements Entity)
// for exercising @recurse's coercion-legality case analysis in directions
// animalSchema has no interfaces to reach.
func entitySchema() *schema.InMemory {
	return schema.NewInMemory("RootQuery", []schema.VertexType{
		{
			Name: "Entity",
			Kind: schema.KindInterface,
			Properties: map[string]schema.PropertyDefinition{
				"name": {Name: "name", Type: ir.NewNamedType("String", false)},
			},
			Edges: map[string]schema.EdgeDefinition{
				"pick":    {Name: "pick", TargetType: "Dog"},
				"related": {Name: "related", TargetType: "Entity"},
			},
		},
		{
			Name:       "Dog",
			Kind:       schema.KindObject,
			Implements: []string{"Entity"},
			Properties: map[string]schema.PropertyDefinition{
				"name": {Name: "name", Type: ir.NewNamedType("String", false)},
			},
			Edges: map[string]schema.EdgeDefinition{
				"related": {Name: "related", TargetType: "Entity"},
			},
		},
		{
			Name: "RootQuery",
			Kind: schema.KindObject,
			Edges: map[string]schema.EdgeDefinition{
				"Entity": {Name: "Entity", TargetType: "Entity", TargetTypeIsList: true},
			},
		},
	})
}

func TestLowerRecurseToStrictSubtypeRejected(t *testing.T) {
	_, err := Parse(entitySchema(), `
		query {
			Entity {
				pick @recurse(depth: 2) {
					name @output(name: "picked_name")
				}
			}
		}
	`)
	require.NotNil(t, err)
	errs, ok := err.(*Errors)
	require.True(t, ok)
	found := false
	for _, e := range errs.Errors {
		if _, ok := e.(RecursionToSubtype); ok {
			found = true
		}
	}
	assert.True(t, found, "recursing Entity.pick (Dog, a strict subtype of Entity) must be rejected")
}

func TestLowerRecurseFromStrictSubtypeAccepted(t *testing.T) {
	q, err := Parse(entitySchema(), `
		query {
			Entity {
				pick {
					related @recurse(depth: 2) {
						name @output(name: "related_name")
					}
				}
			}
		}
	`)
	require.Nil(t, err)
	require.Len(t, q.RootComponent.Edges, 2)
	var pickVid ir.Vid
	for _, e := range q.RootComponent.Edges {
		if e.EdgeName == "pick" {
			pickVid = e.ToVid
		}
	}
	pickVertex := q.RootComponent.Vertices[pickVid]
	require.Equal(t, "Dog", pickVertex.TypeName)
	// The recursive "related" edge lives in pick's sub-selection, which this
	// lowerer flattens into the same component as pick itself, so find it by
	// its FromVid.
	found := false
	for _, fe := range q.RootComponent.Edges {
		if fe.FromVid == pickVid {
			found = true
			require.NotNil(t, fe.Recursive)
			assert.Equal(t, uint64(2), fe.Recursive.Depth)
			// Entity.related (the destination type's own edge) points back
			// to Entity (case 4a), so no coercion is needed on each
			// recursive step.
			assert.Nil(t, fe.Recursive.CoerceTo)
		}
	}
	assert.True(t, found, "expected a \"related\" edge recorded from the pick vertex")
}

func TestLowerSimpleOutput(t *testing.T) {
	q, err := Parse(animalSchema(), `
		query {
			Animal {
				name @output(name: "animal_name")
			}
		}
	`)
	require.Nil(t, err)
	require.Equal(t, "Animal", q.RootName)
	root := q.RootComponent
	require.Len(t, root.Vertices, 1)
	ref, ok := root.Outputs["animal_name"]
	require.True(t, ok)
	ctxField, ok := ref.(ir.ContextField)
	require.True(t, ok, "an output ref must carry its declaring vertex's Vid, not be a bare LocalField")
	assert.Equal(t, "name", ctxField.PropertyName)
	assert.Equal(t, root.Root, ctxField.VertexID)
}

func TestLowerFilterWithVariable(t *testing.T) {
	q, err := Parse(animalSchema(), `
		query {
			Animal {
				name @filter(op: "=", value: ["$desired_name"])
			}
		}
	`)
	require.Nil(t, err)
	vt, ok := q.Variables["desired_name"]
	require.True(t, ok)
	assert.Equal(t, "String", vt.Base())

	vertex := q.RootComponent.Vertices[q.RootComponent.Root]
	require.Len(t, vertex.Filters, 1)
	assert.Equal(t, ir.OpEquals, vertex.Filters[0].Kind)
}

func TestLowerTagAcrossEdge(t *testing.T) {
	q, err := Parse(animalSchema(), `
		query {
			Animal {
				name @tag(name: "parent_name")
				parent {
					name @filter(op: "=", value: ["%parent_name"])
				}
			}
		}
	`)
	require.Nil(t, err)
	require.Len(t, q.RootComponent.Edges, 1)
	var parentVid ir.Vid
	for _, e := range q.RootComponent.Edges {
		parentVid = e.ToVid
	}
	parentVertex := q.RootComponent.Vertices[parentVid]
	require.Len(t, parentVertex.Filters, 1)
	arg, ok := parentVertex.Filters[0].Right()
	require.True(t, ok)
	tagRef, ok := arg.AsTag()
	require.True(t, ok)
	assert.Equal(t, "name", tagRef.FieldName())
}

func TestLowerTagCarriesDefiningVertex(t *testing.T) {
	q, err := Parse(animalSchema(), `
		query {
			Animal {
				name @tag(name: "self_name")
				parent {
					name @filter(op: "=", value: ["%self_name"])
				}
			}
		}
	`)
	require.Nil(t, err)
	rootVid := q.RootComponent.Root
	var parentVid ir.Vid
	for _, e := range q.RootComponent.Edges {
		parentVid = e.ToVid
	}
	parentVertex := q.RootComponent.Vertices[parentVid]
	require.Len(t, parentVertex.Filters, 1)
	arg, ok := parentVertex.Filters[0].Right()
	require.True(t, ok)
	tagRef, ok := arg.AsTag()
	require.True(t, ok)
	ctxField, ok := tagRef.(ir.ContextField)
	require.True(t, ok, "tag ref must carry the defining vertex's Vid, not be a bare LocalField")
	assert.Equal(t, rootVid, ctxField.VertexID)
	assert.Equal(t, "name", ctxField.PropertyName)
}

func TestLowerDuplicateTagNameError(t *testing.T) {
	_, err := Parse(animalSchema(), `
		query {
			Animal {
				name @tag(name: "dup")
				parent {
					age @tag(name: "dup")
					name @filter(op: "=", value: ["%dup"])
				}
			}
		}
	`)
	require.NotNil(t, err)
	errs, ok := err.(*Errors)
	require.True(t, ok)
	found := false
	for _, e := range errs.Errors {
		if _, ok := e.(MultipleTagsWithSameName); ok {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLowerFoldWithOutput(t *testing.T) {
	q, err := Parse(animalSchema(), `
		query {
			Animal {
				children @fold {
					name @output(name: "child_names")
				}
			}
		}
	`)
	require.Nil(t, err)
	require.Len(t, q.RootComponent.Folds, 1)
	for _, fold := range q.RootComponent.Folds {
		assert.Equal(t, "children", fold.EdgeName)
		ref, ok := fold.Component.Outputs["child_names"]
		require.True(t, ok)
		assert.Equal(t, "name", ref.FieldName())
	}
}

func TestLowerFoldCount(t *testing.T) {
	q, err := Parse(animalSchema(), `
		query {
			Animal {
				children @fold @transform(op: "count") @output(name: "child_count") @filter(op: ">", value: ["$min_children"])
			}
		}
	`)
	require.Nil(t, err)
	require.Len(t, q.RootComponent.Folds, 1)
	for _, fold := range q.RootComponent.Folds {
		ref, ok := fold.FoldSpecificOutputs["child_count"]
		require.True(t, ok)
		_, isCount := ref.(ir.FoldSpecificField)
		assert.True(t, isCount)
		require.Len(t, fold.PostFilters, 1)
		assert.Equal(t, ir.OpGreaterThan, fold.PostFilters[0].Kind)
	}
	vt, ok := q.Variables["min_children"]
	require.True(t, ok)
	assert.Equal(t, "Int", vt.Base())
}

func TestLowerRecurseSameType(t *testing.T) {
	q, err := Parse(animalSchema(), `
		query {
			Animal {
				parent @recurse(depth: 3) {
					name @output(name: "ancestor_name")
				}
			}
		}
	`)
	require.Nil(t, err)
	require.Len(t, q.RootComponent.Edges, 1)
	for _, e := range q.RootComponent.Edges {
		require.NotNil(t, e.Recursive)
		assert.Equal(t, uint64(3), e.Recursive.Depth)
		assert.Nil(t, e.Recursive.CoerceTo)
	}
}

func TestLowerUndefinedTagError(t *testing.T) {
	_, err := Parse(animalSchema(), `
		query {
			Animal {
				name @filter(op: "=", value: ["%missing"])
			}
		}
	`)
	require.NotNil(t, err)
	errs, ok := err.(*Errors)
	require.True(t, ok)
	require.Len(t, errs.Errors, 1)
	_, ok = errs.Errors[0].(UndefinedTagInFilter)
	assert.True(t, ok)
}

func TestLowerUnusedTagError(t *testing.T) {
	_, err := Parse(animalSchema(), `
		query {
			Animal {
				name @tag(name: "unused")
			}
		}
	`)
	require.NotNil(t, err)
	errs, ok := err.(*Errors)
	require.True(t, ok)
	found := false
	for _, e := range errs.Errors {
		if _, ok := e.(UnusedTags); ok {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLowerEdgeOutputRejected(t *testing.T) {
	_, err := Parse(animalSchema(), `
		query {
			Animal {
				parent @output(name: "bad") {
					name @output(name: "n")
				}
			}
		}
	`)
	require.NotNil(t, err)
	errs, ok := err.(*Errors)
	require.True(t, ok)
	found := false
	for _, e := range errs.Errors {
		if _, ok := e.(UnsupportedEdgeOutput); ok {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLowerFilterTypeMismatch(t *testing.T) {
	_, err := Parse(animalSchema(), `
		query {
			Animal {
				name @filter(op: ">", value: ["$min_age"])
				age @filter(op: "=", value: ["$min_age"])
			}
		}
	`)
	require.NotNil(t, err)
	errs, ok := err.(*Errors)
	require.True(t, ok)
	// The two filters above request incompatible types (String vs Int) for
	// the same variable; IncompatibleVariableTypeRequirements returns a
	// FilterTypeError, so just confirm at least one FilterTypeError surfaced.
	sawFilterTypeError := false
	for _, e := range errs.Errors {
		if _, ok := e.(FilterTypeError); ok {
			sawFilterTypeError = true
		}
	}
	assert.True(t, sawFilterTypeError)
}
