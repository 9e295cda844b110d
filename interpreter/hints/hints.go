// Package hints exposes a read-only projection of a query's statically and
// dynamically known constraints to an Adapter implementation, so resolvers
// can push filtering down into their own storage layer instead of resolving
// every vertex and letting the interpreter discard most of them
// (spec.md §4.4).
package hints

import (
	"github.com/obi1kenobi/trustfall-go/ir"
)

// CandidateValueKind distinguishes CandidateValue's three shapes.
type CandidateValueKind int

const (
	CandidateSingle CandidateValueKind = iota
	CandidateMultiple
	CandidateRange
)

// RangeEndpoint is one bound of a CandidateRange: a value plus whether it is
// inclusive.
type RangeEndpoint struct {
	Value     ir.FieldValue
	Inclusive bool
}

// CandidateValue is a closed sum describing what a statically- or
// dynamically-derived constraint narrows a property to: exactly one value
// (an `=` filter), one of a fixed set (`one_of`), or a bounded range (the
// ordering operators). Mirrors the Rust CandidateValue enum referenced by
// name in spec.md §4.4.
type CandidateValue struct {
	kind   CandidateValueKind
	single ir.FieldValue
	multi  []ir.FieldValue
	lower  *RangeEndpoint
	upper  *RangeEndpoint
}

// Single builds a CandidateValue constraining a property to exactly one
// value.
func Single(v ir.FieldValue) CandidateValue {
	return CandidateValue{kind: CandidateSingle, single: v}
}

// Multiple builds a CandidateValue constraining a property to one of a fixed
// set of values.
func Multiple(values []ir.FieldValue) CandidateValue {
	cp := make([]ir.FieldValue, len(values))
	copy(cp, values)
	return CandidateValue{kind: CandidateMultiple, multi: cp}
}

// Range builds a CandidateValue constraining a property to a bounded range;
// either endpoint may be nil for an open bound.
func Range(lower, upper *RangeEndpoint) CandidateValue {
	return CandidateValue{kind: CandidateRange, lower: lower, upper: upper}
}

func (c CandidateValue) Kind() CandidateValueKind { return c.kind }

// AsSingle returns the constrained value, if Kind is CandidateSingle.
func (c CandidateValue) AsSingle() (ir.FieldValue, bool) {
	return c.single, c.kind == CandidateSingle
}

// AsMultiple returns the constrained value set, if Kind is CandidateMultiple.
func (c CandidateValue) AsMultiple() ([]ir.FieldValue, bool) {
	return c.multi, c.kind == CandidateMultiple
}

// AsRange returns the constrained bounds, if Kind is CandidateRange. Either
// endpoint may itself be nil for an open-ended bound.
func (c CandidateValue) AsRange() (lower, upper *RangeEndpoint, ok bool) {
	return c.lower, c.upper, c.kind == CandidateRange
}

// EdgeInfo describes one neighboring edge from the vertex a hint call is
// about: its declared parameters, and whether traversing it may discard the
// current vertex (optional), collect into a list instead of cross-producting
// (folded), or step more than one hop (recursed).
type EdgeInfo struct {
	Name           string
	Parameters     *ir.EdgeParameters
	Optional       bool
	Folded         bool
	RecursionDepth *int
}

// edgeBinding records one neighboring edge together with whether it is a
// legal binding context (see isBindingContext).
type edgeBinding struct {
	info     EdgeInfo
	isMandatory bool
}

// staticConstraint is a statically-known (variable-valued) property
// constraint discovered on some vertex in the query plan, recorded only when
// it was found in a binding context.
type staticConstraint struct {
	property string
	value    CandidateValue
}

// dynamicConstraint is a tag-valued property constraint: resolving it
// against a batch of contexts requires the interpreter's help, so VertexInfo
// only records enough to build a Dynamic handle on demand.
type dynamicConstraint struct {
	property string
	tagName  string
}

// VertexInfo is the read-only projection passed to every Adapter call,
// describing everything statically derivable about the vertex the call
// targets. Adapters are never required to honor these hints — they exist so
// a resolver backed by an indexed store can push filtering down instead of
// returning every vertex and letting the interpreter discard most of them.
type VertexInfo struct {
	typeName       string
	coercedTo      *string
	statics        []staticConstraint
	dynamics       []dynamicConstraint
	edges          []edgeBinding
	// binding reports whether this call site is in a position where
	// discarding a hinted-away vertex would be safe: false behind an
	// unmatched @optional, a @recurse depth beyond 1, or an unbounded @fold,
	// per spec.md §4.4's "only surfaced when non-binding would be unsafe"
	// rule.
	binding bool
}

// NewVertexInfo builds a VertexInfo. Binding is false to suppress every
// static/dynamic constraint this call site would otherwise report (see
// isBindingContext); typeName/coercedTo feed CoercedToType.
func NewVertexInfo(typeName string, coercedTo *string, binding bool) *VertexInfo {
	return &VertexInfo{typeName: typeName, coercedTo: coercedTo, binding: binding}
}

// AddStaticConstraint records a statically-derived constraint on property,
// to be surfaced by StaticallyRequiredProperty only if vi is binding.
func (vi *VertexInfo) AddStaticConstraint(property string, value CandidateValue) {
	vi.statics = append(vi.statics, staticConstraint{property: property, value: value})
}

// AddDynamicConstraint records a tag-valued constraint on property.
func (vi *VertexInfo) AddDynamicConstraint(property, tagName string) {
	vi.dynamics = append(vi.dynamics, dynamicConstraint{property: property, tagName: tagName})
}

// AddEdge records one neighboring edge, in query order.
func (vi *VertexInfo) AddEdge(info EdgeInfo) {
	mandatory := !info.Optional && !info.Folded && info.RecursionDepth == nil
	vi.edges = append(vi.edges, edgeBinding{info: info, isMandatory: mandatory})
}

// isBindingContext is the single predicate both StaticallyRequiredProperty
// and DynamicallyRequiredProperty consult, so the two legality rules can
// never drift out of sync (mirrors the shared helper the original
// implementation's hint constructors both call).
func (vi *VertexInfo) isBindingContext() bool {
	return vi.binding
}

// StaticallyRequiredProperty returns, if derivable, the CandidateValue a
// @filter against a query variable statically constrains name to. Returns
// ok=false if vi is not a binding context (see isBindingContext) or no such
// constraint was recorded.
func (vi *VertexInfo) StaticallyRequiredProperty(name string) (CandidateValue, bool) {
	if !vi.isBindingContext() {
		return CandidateValue{}, false
	}
	for _, c := range vi.statics {
		if c.property == name {
			return c.value, true
		}
	}
	return CandidateValue{}, false
}

// DynamicConstraint is a handle to a tag-valued constraint discovered on some
// property, resolved per-context against a batch once the interpreter has
// materialized the referenced tag's value for each one.
type DynamicConstraint struct {
	Property string
	TagName  string
}

// DynamicallyRequiredProperty returns, if derivable, a handle describing a
// tag-valued constraint on name. Returns ok=false under the same legality
// rule as StaticallyRequiredProperty.
func (vi *VertexInfo) DynamicallyRequiredProperty(name string) (DynamicConstraint, bool) {
	if !vi.isBindingContext() {
		return DynamicConstraint{}, false
	}
	for _, c := range vi.dynamics {
		if c.property == name {
			return DynamicConstraint{Property: c.property, TagName: c.tagName}, true
		}
	}
	return DynamicConstraint{}, false
}

// FirstEdge returns the first neighboring edge named name, regardless of
// whether it is optional/folded/recursed.
func (vi *VertexInfo) FirstEdge(name string) (EdgeInfo, bool) {
	for _, e := range vi.edges {
		if e.info.Name == name {
			return e.info, true
		}
	}
	return EdgeInfo{}, false
}

// FirstMandatoryEdge returns the first neighboring edge named name that is
// neither optional, folded, nor a recursion step — i.e. one guaranteed to be
// traversed exactly once, with a vertex guaranteed to exist on the other end
// whenever the current vertex does.
func (vi *VertexInfo) FirstMandatoryEdge(name string) (EdgeInfo, bool) {
	for _, e := range vi.edges {
		if e.info.Name == name && e.isMandatory {
			return e.info, true
		}
	}
	return EdgeInfo{}, false
}

// CoercedToType returns the type the vertex was coerced to at this point in
// the plan, if any coercion applies.
func (vi *VertexInfo) CoercedToType() (string, bool) {
	if vi.coercedTo == nil {
		return "", false
	}
	return *vi.coercedTo, true
}

// TypeName returns the vertex's type at this point in the plan, before any
// coercion named by CoercedToType.
func (vi *VertexInfo) TypeName() string { return vi.typeName }
