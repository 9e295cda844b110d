package interpreter_test

import (
	"github.com/obi1kenobi/trustfall-go/interpreter"
	"github.com/obi1kenobi/trustfall-go/interpreter/hints"
	"github.com/obi1kenobi/trustfall-go/ir"
	"github.com/obi1kenobi/trustfall-go/schema"
)

// animal is the vertex representation a small in-memory fixture adapter
// resolves against, exercising properties, a single-valued edge (parent), a
// list-valued edge (children), @recurse, @optional, and @fold end to end —
// the same kind of small hand-built fixture graph graphtest.MakeQuadSet
// builds for cayley's own conformance suite. Parent/child links are each
// vertex's own index into animalAdapter.all, rather than a pointer, so
// animal itself stays a plain, copyable value (the V an Adapter[V] deals in
// is always handed to the interpreter by value, per DataContext[V]).
type animal struct {
	name     string
	age      int64
	parent   int
	hasParent bool
	children []int
}

// animalAdapter resolves against a fixed three-generation family tree:
//
//	Ancient(30) -> Hexxa(10) -> Rex(5)
//	                         -> Spot(4)
type animalAdapter struct {
	all []animal
}

func newAnimalAdapter() *animalAdapter {
	all := []animal{
		{name: "Ancient", age: 30},
		{name: "Hexxa", age: 10, parent: 0, hasParent: true, children: nil},
		{name: "Rex", age: 5, parent: 1, hasParent: true},
		{name: "Spot", age: 4, parent: 1, hasParent: true},
	}
	all[0].children = []int{1}
	all[1].children = []int{2, 3}
	return &animalAdapter{all: all}
}

func animalTestSchema() *schema.InMemory {
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

func (a *animalAdapter) ResolveStartingVertices(edgeName string, parameters *ir.EdgeParameters, info *hints.VertexInfo) interpreter.Seq[animal] {
	return interpreter.SeqFromSlice(a.all)
}

func (a *animalAdapter) ResolveProperty(contexts interpreter.Seq[*interpreter.DataContext[animal]], typeName, propertyName string, info *hints.VertexInfo) interpreter.Seq[interpreter.PropertyValueContext[animal]] {
	return func(yield func(interpreter.PropertyValueContext[animal]) bool) {
		contexts(func(dc *interpreter.DataContext[animal]) bool {
			value := ir.Null
			if dc.ActiveVertex != nil {
				switch propertyName {
				case "name":
					value = ir.String(dc.ActiveVertex.name)
				case "age":
					value = ir.Int64(dc.ActiveVertex.age)
				}
			}
			return yield(interpreter.PropertyValueContext[animal]{Context: dc, Value: value})
		})
	}
}

func (a *animalAdapter) ResolveNeighbors(contexts interpreter.Seq[*interpreter.DataContext[animal]], typeName, edgeName string, parameters *ir.EdgeParameters, info *hints.VertexInfo) interpreter.Seq[interpreter.NeighborsContext[animal]] {
	return func(yield func(interpreter.NeighborsContext[animal]) bool) {
		contexts(func(dc *interpreter.DataContext[animal]) bool {
			var neighbors []animal
			if dc.ActiveVertex != nil {
				switch edgeName {
				case "parent":
					if dc.ActiveVertex.hasParent {
						neighbors = []animal{a.all[dc.ActiveVertex.parent]}
					}
				case "children":
					for _, idx := range dc.ActiveVertex.children {
						neighbors = append(neighbors, a.all[idx])
					}
				}
			}
			nc := interpreter.NeighborsContext[animal]{Context: dc, Neighbors: interpreter.SeqFromSlice(neighbors)}
			return yield(nc)
		})
	}
}

func (a *animalAdapter) ResolveCoercion(contexts interpreter.Seq[*interpreter.DataContext[animal]], typeName, coerceTo string, info *hints.VertexInfo) interpreter.Seq[interpreter.CoercionContext[animal]] {
	return func(yield func(interpreter.CoercionContext[animal]) bool) {
		contexts(func(dc *interpreter.DataContext[animal]) bool {
			coerces := dc.ActiveVertex != nil && coerceTo == "Animal"
			return yield(interpreter.CoercionContext[animal]{Context: dc, Coerces: coerces})
		})
	}
}

var _ interpreter.Adapter[animal] = (*animalAdapter)(nil)
