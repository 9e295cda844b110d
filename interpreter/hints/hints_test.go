package hints_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obi1kenobi/trustfall-go/interpreter/hints"
	"github.com/obi1kenobi/trustfall-go/ir"
)

func TestCandidateValueKinds(t *testing.T) {
	single := hints.Single(ir.Int64(5))
	assert.Equal(t, hints.CandidateSingle, single.Kind())
	v, ok := single.AsSingle()
	require.True(t, ok)
	n, _ := v.AsInt64()
	assert.Equal(t, int64(5), n)

	multi := hints.Multiple([]ir.FieldValue{ir.Int64(1), ir.Int64(2)})
	assert.Equal(t, hints.CandidateMultiple, multi.Kind())
	elems, ok := multi.AsMultiple()
	require.True(t, ok)
	assert.Len(t, elems, 2)

	lower := &hints.RangeEndpoint{Value: ir.Int64(1), Inclusive: true}
	upper := &hints.RangeEndpoint{Value: ir.Int64(10), Inclusive: false}
	rng := hints.Range(lower, upper)
	assert.Equal(t, hints.CandidateRange, rng.Kind())
	gotLower, gotUpper, ok := rng.AsRange()
	require.True(t, ok)
	assert.Same(t, lower, gotLower)
	assert.Same(t, upper, gotUpper)
}

func TestVertexInfoBindingGatesConstraints(t *testing.T) {
	binding := hints.NewVertexInfo("Animal", nil, true)
	binding.AddStaticConstraint("name", hints.Single(ir.String("Rex")))
	binding.AddDynamicConstraint("age", "some_tag")

	_, ok := binding.StaticallyRequiredProperty("name")
	assert.True(t, ok, "a binding call site must surface its static constraints")
	_, ok = binding.DynamicallyRequiredProperty("age")
	assert.True(t, ok, "a binding call site must surface its dynamic constraints")

	nonBinding := hints.NewVertexInfo("Animal", nil, false)
	nonBinding.AddStaticConstraint("name", hints.Single(ir.String("Rex")))
	nonBinding.AddDynamicConstraint("age", "some_tag")

	_, ok = nonBinding.StaticallyRequiredProperty("name")
	assert.False(t, ok, "a non-binding call site (past an unmatched-optional-capable edge) must suppress hints")
	_, ok = nonBinding.DynamicallyRequiredProperty("age")
	assert.False(t, ok)
}

func TestVertexInfoEdges(t *testing.T) {
	vi := hints.NewVertexInfo("Animal", nil, true)
	vi.AddEdge(hints.EdgeInfo{Name: "parent", Optional: true})
	vi.AddEdge(hints.EdgeInfo{Name: "children", Folded: true})
	vi.AddEdge(hints.EdgeInfo{Name: "litter"})

	_, ok := vi.FirstMandatoryEdge("parent")
	assert.False(t, ok, "an @optional edge is never a mandatory binding")
	_, ok = vi.FirstMandatoryEdge("children")
	assert.False(t, ok, "a folded edge is never a mandatory binding")
	_, ok = vi.FirstMandatoryEdge("litter")
	assert.True(t, ok, "an edge with no optional/fold/recurse marker is mandatory")

	e, ok := vi.FirstEdge("parent")
	require.True(t, ok)
	assert.True(t, e.Optional)
}

func TestVertexInfoCoercedToType(t *testing.T) {
	coercedTo := "Dog"
	vi := hints.NewVertexInfo("Animal", &coercedTo, true)
	assert.Equal(t, "Animal", vi.TypeName())
	got, ok := vi.CoercedToType()
	require.True(t, ok)
	assert.Equal(t, "Dog", got)

	none := hints.NewVertexInfo("Animal", nil, true)
	_, ok = none.CoercedToType()
	assert.False(t, ok)
}
