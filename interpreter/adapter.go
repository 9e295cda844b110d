package interpreter

import (
	"github.com/obi1kenobi/trustfall-go/interpreter/hints"
	"github.com/obi1kenobi/trustfall-go/ir"
)

// PropertyValueContext pairs a context with the value its property resolver
// produced for it.
type PropertyValueContext[V any] struct {
	Context *DataContext[V]
	Value   ir.FieldValue
}

// NeighborsContext pairs a context with the (lazy) sequence of neighbor
// vertices its edge resolver produced for it.
type NeighborsContext[V any] struct {
	Context   *DataContext[V]
	Neighbors Seq[V]
}

// CoercionContext pairs a context with whether its active vertex coerces to
// the type the caller asked about.
type CoercionContext[V any] struct {
	Context *DataContext[V]
	Coerces bool
}

// Adapter is implemented by the data source a query executes against. V is
// the concrete vertex representation the adapter deals in; Go generics (1.21)
// stand in for the AsVertex<V> associated-type mechanism spec.md §4.2/§9
// describes, via a cheap, infallible carrier downcast at the one place a
// caller-supplied Vertex needs to reenter adapter-specific code.
//
// Every method is batch-oriented: the interpreter always offers a lazy Seq
// of contexts rather than calling once per row, so an adapter backed by a
// real datastore can batch its own queries (e.g. one SQL IN clause instead of
// N round trips) — this mirrors cayley's QuadStore methods, which always
// take an iterator rather than a single ref.
type Adapter[V any] interface {
	// ResolveStartingVertices resolves the root set of vertices a query
	// starts from, given the root edge name and its bound parameters.
	ResolveStartingVertices(edgeName string, parameters *ir.EdgeParameters, info *hints.VertexInfo) Seq[V]

	// ResolveProperty resolves propertyName for every context in contexts.
	// A context whose ActiveVertex is nil must resolve to ir.Null, never be
	// dropped or reordered, and never cause an adapter call per §4.5's
	// correctness obligations.
	ResolveProperty(contexts Seq[*DataContext[V]], typeName, propertyName string, info *hints.VertexInfo) Seq[PropertyValueContext[V]]

	// ResolveNeighbors resolves edgeName's neighbor vertices for every
	// context in contexts. A context whose ActiveVertex is nil must resolve
	// to an empty Neighbors sequence.
	ResolveNeighbors(contexts Seq[*DataContext[V]], typeName, edgeName string, parameters *ir.EdgeParameters, info *hints.VertexInfo) Seq[NeighborsContext[V]]

	// ResolveCoercion reports, for every context in contexts, whether its
	// active vertex is actually an instance of coerceTo. A context whose
	// ActiveVertex is nil must resolve to false.
	ResolveCoercion(contexts Seq[*DataContext[V]], typeName, coerceTo string, info *hints.VertexInfo) Seq[CoercionContext[V]]
}
