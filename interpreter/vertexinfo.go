package interpreter

import (
	"github.com/obi1kenobi/trustfall-go/interpreter/hints"
	"github.com/obi1kenobi/trustfall-go/ir"
)

// bindingState tracks whether the current position in the component tree is
// a "binding" one for hint-surfacing purposes (spec.md §4.4): false once the
// walk has passed through an unmatched-optional-capable edge, a @recurse
// step beyond depth 1, or an unbounded @fold, since filtering away a vertex
// there could discard a result the query would otherwise have produced.
type bindingState struct {
	binding bool
}

func rootBindingState() bindingState { return bindingState{binding: true} }

func (b bindingState) throughOptional() bindingState     { return bindingState{binding: false} }
func (b bindingState) throughRecursion() bindingState    { return bindingState{binding: false} }
func (b bindingState) throughUnboundedFold() bindingState { return bindingState{binding: false} }
func (b bindingState) throughBoundedFold() bindingState  { return b }
func (b bindingState) throughMandatoryEdge() bindingState { return b }

// buildVertexInfo constructs the hints.VertexInfo for the vertex call site
// identified by vid within comp, deriving static constraints from any
// variable-valued filters attached to it and recording its neighboring
// edges/folds. coercedTo, when non-nil, is the type vid's vertex was coerced
// to at this point.
func buildVertexInfo(vid ir.Vid, comp *ir.IRQueryComponent, state bindingState, coercedTo *string, args map[string]ir.FieldValue) *hints.VertexInfo {
	vertex := comp.Vertices[vid]
	typeName := ""
	if vertex != nil {
		typeName = vertex.TypeName
	}
	vi := hints.NewVertexInfo(typeName, coercedTo, state.binding)
	if vertex == nil {
		return vi
	}

	addFilterHints(vi, vertex.Filters, args)

	for _, e := range comp.Edges {
		if e.FromVid != vid {
			continue
		}
		var depth *int
		if e.Recursive != nil {
			d := int(e.Recursive.Depth)
			depth = &d
		}
		vi.AddEdge(hints.EdgeInfo{Name: e.EdgeName, Parameters: e.Parameters, Optional: e.Optional, RecursionDepth: depth})
	}
	for _, f := range comp.Folds {
		if f.FromVid != vid {
			continue
		}
		vi.AddEdge(hints.EdgeInfo{Name: f.EdgeName, Parameters: f.Parameters, Folded: true})
	}
	return vi
}

// addFilterHints inspects subject-local filters for ones whose subject is a
// bare property (LocalField, possibly transformed) and whose argument is a
// query variable, recording a static constraint; filters whose argument is a
// tag are recorded as dynamic constraints instead.
func addFilterHints(vi *hints.VertexInfo, filters []ir.FilterOperation, args map[string]ir.FieldValue) {
	ranges := map[string]*rangeAccum{}
	for _, f := range filters {
		propName := localPropertyName(f.Left())
		if propName == "" {
			continue
		}
		right, hasRight := f.Right()
		if !hasRight {
			continue
		}
		if tagRef, ok := right.AsTag(); ok {
			vi.AddDynamicConstraint(propName, tagRef.FieldName())
			continue
		}
		varRef, ok := right.AsVariable()
		if !ok {
			continue
		}
		value, ok := args[varRef.VariableName]
		if !ok {
			continue
		}
		switch f.Kind {
		case ir.OpEquals:
			vi.AddStaticConstraint(propName, hints.Single(value))
		case ir.OpOneOf:
			if elems, ok := value.AsList(); ok {
				vi.AddStaticConstraint(propName, hints.Multiple(elems))
			}
		case ir.OpLessThan:
			ranges[propName] = ranges[propName].withUpper(value, false)
		case ir.OpLessThanOrEqual:
			ranges[propName] = ranges[propName].withUpper(value, true)
		case ir.OpGreaterThan:
			ranges[propName] = ranges[propName].withLower(value, false)
		case ir.OpGreaterThanOrEqual:
			ranges[propName] = ranges[propName].withLower(value, true)
		}
	}
	for prop, acc := range ranges {
		if acc == nil {
			continue
		}
		vi.AddStaticConstraint(prop, hints.Range(acc.lower, acc.upper))
	}
}

// rangeAccum accumulates the lower/upper bound of a single property across
// possibly-separate <, <=, >, >= filters on it.
type rangeAccum struct {
	lower *hints.RangeEndpoint
	upper *hints.RangeEndpoint
}

func (a *rangeAccum) withLower(v ir.FieldValue, inclusive bool) *rangeAccum {
	if a == nil {
		a = &rangeAccum{}
	}
	a.lower = &hints.RangeEndpoint{Value: v, Inclusive: inclusive}
	return a
}

func (a *rangeAccum) withUpper(v ir.FieldValue, inclusive bool) *rangeAccum {
	if a == nil {
		a = &rangeAccum{}
	}
	a.upper = &hints.RangeEndpoint{Value: v, Inclusive: inclusive}
	return a
}

// localPropertyName returns ref's underlying property name if ref is a
// LocalField, possibly wrapped in a TransformedField, or "" otherwise — a
// filter's hint is only meaningful against the plain property an adapter
// resolver could index on.
func localPropertyName(ref ir.FieldRef) string {
	switch f := ref.(type) {
	case ir.LocalField:
		return f.PropertyName
	case ir.TransformedField:
		return localPropertyName(f.Base)
	default:
		return ""
	}
}
