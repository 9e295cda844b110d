package trustfall_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obi1kenobi/trustfall-go/interpreter"
	"github.com/obi1kenobi/trustfall-go/interpreter/hints"
	"github.com/obi1kenobi/trustfall-go/ir"
	"github.com/obi1kenobi/trustfall-go/schema"
	"github.com/obi1kenobi/trustfall-go/trustfall"
)

// widget and widgetAdapter are a minimal, self-contained fixture kept local
// to this package rather than shared with interpreter's — the facade only
// needs to prove Parse/Interpret glue together, not re-exercise every
// resolver edge case the interpreter package's own fixture already covers.
type widget struct {
	name string
}

type widgetAdapter struct {
	all []widget
}

func (a widgetAdapter) ResolveStartingVertices(edgeName string, parameters *ir.EdgeParameters, info *hints.VertexInfo) interpreter.Seq[widget] {
	return interpreter.SeqFromSlice(a.all)
}

func (a widgetAdapter) ResolveProperty(contexts interpreter.Seq[*interpreter.DataContext[widget]], typeName, propertyName string, info *hints.VertexInfo) interpreter.Seq[interpreter.PropertyValueContext[widget]] {
	return func(yield func(interpreter.PropertyValueContext[widget]) bool) {
		contexts(func(dc *interpreter.DataContext[widget]) bool {
			value := ir.Null
			if dc.ActiveVertex != nil && propertyName == "name" {
				value = ir.String(dc.ActiveVertex.name)
			}
			return yield(interpreter.PropertyValueContext[widget]{Context: dc, Value: value})
		})
	}
}

func (a widgetAdapter) ResolveNeighbors(contexts interpreter.Seq[*interpreter.DataContext[widget]], typeName, edgeName string, parameters *ir.EdgeParameters, info *hints.VertexInfo) interpreter.Seq[interpreter.NeighborsContext[widget]] {
	return func(yield func(interpreter.NeighborsContext[widget]) bool) {
		contexts(func(dc *interpreter.DataContext[widget]) bool {
			return yield(interpreter.NeighborsContext[widget]{Context: dc, Neighbors: interpreter.SeqFromSlice(nil)})
		})
	}
}

func (a widgetAdapter) ResolveCoercion(contexts interpreter.Seq[*interpreter.DataContext[widget]], typeName, coerceTo string, info *hints.VertexInfo) interpreter.Seq[interpreter.CoercionContext[widget]] {
	return func(yield func(interpreter.CoercionContext[widget]) bool) {
		contexts(func(dc *interpreter.DataContext[widget]) bool {
			return yield(interpreter.CoercionContext[widget]{Context: dc, Coerces: dc.ActiveVertex != nil && coerceTo == "Widget"})
		})
	}
}

var _ interpreter.Adapter[widget] = widgetAdapter{}

func widgetSchema() *schema.InMemory {
	return schema.NewInMemory("RootQuery", []schema.VertexType{
		{
			Name: "Widget",
			Kind: schema.KindObject,
			Properties: map[string]schema.PropertyDefinition{
				"name": {Name: "name", Type: ir.NewNamedType("String", false)},
			},
		},
		{
			Name: "RootQuery",
			Kind: schema.KindObject,
			Edges: map[string]schema.EdgeDefinition{
				"Widget": {Name: "Widget", TargetType: "Widget", TargetTypeIsList: true},
			},
		},
	})
}

func TestParseAndInterpretRoundTrip(t *testing.T) {
	q, err := trustfall.Parse(widgetSchema(), `
		query {
			Widget {
				name @filter(op: "=", value: ["$n"]) @output(name: "name")
			}
		}
	`)
	require.NoError(t, err)

	adapter := widgetAdapter{all: []widget{{name: "gizmo"}, {name: "gadget"}}}
	rows, rerr := trustfall.Interpret[widget](adapter, q, map[string]ir.FieldValue{"n": ir.String("gizmo")})
	require.NoError(t, rerr)

	collected := interpreter.Collect(rows)
	require.Len(t, collected, 1)
	name, _ := collected[0]["name"].AsString()
	assert.Equal(t, "gizmo", name)
}

func TestParseReturnsErrorOnBadQuery(t *testing.T) {
	_, err := trustfall.Parse(widgetSchema(), `query { NoSuchEdge { name } }`)
	assert.Error(t, err)
}

func TestPreparedQueryReusedAcrossInterprets(t *testing.T) {
	q, err := trustfall.Parse(widgetSchema(), `
		query {
			Widget {
				name @output(name: "name")
			}
		}
	`)
	require.NoError(t, err)

	first := widgetAdapter{all: []widget{{name: "gizmo"}}}
	second := widgetAdapter{all: []widget{{name: "gadget"}, {name: "sprocket"}}}

	rows1, err := trustfall.Interpret[widget](first, q, nil)
	require.NoError(t, err)
	assert.Len(t, interpreter.Collect(rows1), 1)

	rows2, err := trustfall.Interpret[widget](second, q, nil)
	require.NoError(t, err)
	assert.Len(t, interpreter.Collect(rows2), 2)
}

func TestVariablesReportsRequiredType(t *testing.T) {
	q, err := trustfall.Parse(widgetSchema(), `
		query {
			Widget {
				name @filter(op: "=", value: ["$n"]) @output(name: "name")
			}
		}
	`)
	require.NoError(t, err)

	vars := q.Variables()
	require.Contains(t, vars, "n")
}
