package interpreter

import (
	"fmt"

	"github.com/obi1kenobi/trustfall-go/ir"
)

// TaggedValue is the value recorded for one imported tag against one outer
// context: either a concrete value, or NonexistentOptional when the tag's
// defining vertex came from an unmatched @optional. A filter whose argument
// resolves to a NonexistentOptional tag always passes, per spec.md §4.3.
type TaggedValue struct {
	Value               ir.FieldValue
	NonexistentOptional bool
}

// ValueOrVec is a fold output's materialized value: a scalar for a fold
// count (or a transform chain over it), or a nested list of further
// ValueOrVecs for a per-element output gathered across every folded vertex
// (itself lists of lists when a fold is nested inside another fold).
type ValueOrVec struct {
	scalar ir.FieldValue
	list   []ValueOrVec
	isList bool
}

// ScalarValueOrVec wraps a single FieldValue.
func ScalarValueOrVec(v ir.FieldValue) ValueOrVec { return ValueOrVec{scalar: v} }

// ListValueOrVec wraps a list of ValueOrVecs, one per folded element.
func ListValueOrVec(elems []ValueOrVec) ValueOrVec { return ValueOrVec{list: elems, isList: true} }

// ToFieldValue flattens v into a plain ir.FieldValue, recursively converting
// nested lists into ir.List values.
func (v ValueOrVec) ToFieldValue() ir.FieldValue {
	if !v.isList {
		return v.scalar
	}
	out := make([]ir.FieldValue, len(v.list))
	for i, e := range v.list {
		out[i] = e.ToFieldValue()
	}
	return ir.List(out)
}

// refKey canonicalizes an ir.FieldRef into a comparable map key.
// ir.FieldRef cannot be used as a map key directly: TransformedField embeds
// a []Transform, which is not comparable, so this renders every variant to a
// string instead.
func refKey(ref ir.FieldRef) string {
	switch f := ref.(type) {
	case ir.ContextField:
		return fmt.Sprintf("ctx:%d:%s", f.VertexID, f.PropertyName)
	case ir.LocalField:
		return fmt.Sprintf("local:%s", f.PropertyName)
	case ir.FoldSpecificField:
		return fmt.Sprintf("fold:%d:%s", f.FoldEid, f.Kind.String())
	case ir.TransformedField:
		return fmt.Sprintf("xform:%d:%s", f.Tid, refKey(f.Base))
	default:
		return fmt.Sprintf("%v", ref)
	}
}

// DataContext is the value threaded through component evaluation: the
// currently active vertex, every vertex chosen at an already-visited scope,
// and the bookkeeping recursion/fold/filter evaluation need along the way.
// V is the adapter's vertex representation.
type DataContext[V any] struct {
	// ActiveVertex is the vertex currently being evaluated, or nil when this
	// context passed through an unmatched @optional edge.
	ActiveVertex *V

	// Vertices records the vertex chosen at each already-visited Vid, so a
	// @tag read "from a distance" can resolve against the right one.
	Vertices map[ir.Vid]*V

	// FoldedContexts holds, for each fold Eid, the materialized list of
	// child contexts the fold's component produced — or nil with
	// foldMatched[eid] == false when the fold's enclosing scope was an
	// unmatched @optional.
	FoldedContexts map[ir.Eid][]*DataContext[V]
	foldMatched    map[ir.Eid]bool

	// FoldedValues holds the materialized value for each output name
	// produced inside some @fold reachable from this context: a scalar for a
	// fold-count aggregate, a list for a per-element output (itself nested
	// lists of ValueOrVec for an output declared inside a further-nested
	// fold). Keyed by output name alone rather than by (Eid, name): output
	// names are already unique query-wide (lowerer.outputNames), so the
	// extra Eid key would only add a second way to look up the same entry.
	FoldedValues map[string]ValueOrVec

	// ImportedTags holds the outer-scope tag values materialized before a
	// fold's component runs, keyed by refKey.
	ImportedTags map[string]TaggedValue
}

// NewDataContext builds a fresh DataContext rooted at vertex, recording it as
// the vertex chosen at rootVid.
func NewDataContext[V any](rootVid ir.Vid, vertex *V) *DataContext[V] {
	dc := &DataContext[V]{
		ActiveVertex:   vertex,
		Vertices:       map[ir.Vid]*V{rootVid: vertex},
		FoldedContexts: map[ir.Eid][]*DataContext[V]{},
		foldMatched:    map[ir.Eid]bool{},
		FoldedValues:   map[string]ValueOrVec{},
		ImportedTags:   map[string]TaggedValue{},
	}
	return dc
}

// clone makes a shallow copy of dc, used whenever a context is about to
// branch (recorded at a new Vid, or fanned out across several neighbors).
// Vertices/FoldedContexts/foldMatched/FoldedValues/ImportedTags are copied
// into new maps so each branch can record its own vertex/fold bindings
// without mutating siblings.
func (dc *DataContext[V]) clone() *DataContext[V] {
	out := &DataContext[V]{
		ActiveVertex: dc.ActiveVertex,
	}
	out.Vertices = make(map[ir.Vid]*V, len(dc.Vertices))
	for k, v := range dc.Vertices {
		out.Vertices[k] = v
	}
	out.FoldedContexts = make(map[ir.Eid][]*DataContext[V], len(dc.FoldedContexts))
	for k, v := range dc.FoldedContexts {
		out.FoldedContexts[k] = v
	}
	out.foldMatched = make(map[ir.Eid]bool, len(dc.foldMatched))
	for k, v := range dc.foldMatched {
		out.foldMatched[k] = v
	}
	out.FoldedValues = make(map[string]ValueOrVec, len(dc.FoldedValues))
	for k, v := range dc.FoldedValues {
		out.FoldedValues[k] = v
	}
	out.ImportedTags = make(map[string]TaggedValue, len(dc.ImportedTags))
	for k, v := range dc.ImportedTags {
		out.ImportedTags[k] = v
	}
	return out
}

// recordVertex returns a clone of dc with vertex recorded at vid and set as
// the active vertex.
func (dc *DataContext[V]) recordVertex(vid ir.Vid, vertex *V) *DataContext[V] {
	next := dc.clone()
	next.ActiveVertex = vertex
	next.Vertices[vid] = vertex
	return next
}

// withFold returns a clone of dc recording children (and matched=true) as
// the materialized contexts for fold eid.
func (dc *DataContext[V]) withFold(eid ir.Eid, children []*DataContext[V]) *DataContext[V] {
	next := dc.clone()
	next.FoldedContexts[eid] = children
	next.foldMatched[eid] = true
	return next
}

// withUnmatchedFold returns a clone of dc recording fold eid as unmatched
// (its enclosing scope was an unmatched @optional).
func (dc *DataContext[V]) withUnmatchedFold(eid ir.Eid) *DataContext[V] {
	next := dc.clone()
	next.FoldedContexts[eid] = nil
	next.foldMatched[eid] = false
	return next
}

// FoldMatched reports whether fold eid's enclosing scope matched (as opposed
// to having been skipped because of an unmatched @optional).
func (dc *DataContext[V]) FoldMatched(eid ir.Eid) bool {
	return dc.foldMatched[eid]
}

// withFoldedValue returns a clone of dc recording value for the named
// fold-scoped output.
func (dc *DataContext[V]) withFoldedValue(name string, value ValueOrVec) *DataContext[V] {
	next := dc.clone()
	next.FoldedValues[name] = value
	return next
}

// withImportedTag returns a clone of dc recording tagged as the value
// imported for ref.
func (dc *DataContext[V]) withImportedTag(ref ir.FieldRef, tagged TaggedValue) *DataContext[V] {
	next := dc.clone()
	next.ImportedTags[refKey(ref)] = tagged
	return next
}
