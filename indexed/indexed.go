// Package indexed turns a frontend-lowered ir.IRQuery into a flattened,
// validated view the interpreter can walk in constant time per Vid/Eid,
// instead of re-descending the component tree on every row.
package indexed

import (
	"fmt"
	"strings"

	"github.com/obi1kenobi/trustfall-go/ir"
)

// OutputKind classifies how an output name's value is produced, mirroring
// trustfall_core::ir::indexed::Output's three shapes.
type OutputKind int

const (
	// OutputKindRegular is a plain scalar value read once per row.
	OutputKindRegular OutputKind = iota
	// OutputKindFoldCount is a fold's element count (or a transform chain
	// applied to it), also one value per row.
	OutputKindFoldCount
	// OutputKindFolded is a property read from inside a @fold, producing one
	// value per folded element, collected into a list.
	OutputKindFolded
)

func (k OutputKind) String() string {
	switch k {
	case OutputKindRegular:
		return "Regular"
	case OutputKindFoldCount:
		return "FoldCount"
	case OutputKindFolded:
		return "Folded"
	default:
		return fmt.Sprintf("OutputKind(%d)", int(k))
	}
}

// Output records everything the interpreter needs to resolve one output
// name without re-deriving its shape from the IR: which kind it is, the
// FieldRef producing it, and (for Folded/FoldCount outputs) the Eid of the
// fold it belongs to.
type Output struct {
	Name string
	Kind OutputKind
	Ref  ir.FieldRef
	// FoldEid is the Eid of the nearest enclosing fold this output belongs
	// to. Zero for OutputKindRegular (never inside a fold).
	FoldEid ir.Eid
}

// IndexedQuery is the flattened, validated view of an IRQuery: every vertex,
// edge, and fold in the whole component tree keyed by its Vid/Eid for O(1)
// lookup, plus the output directory described above. Once built, it is
// immutable and safe to share across goroutines as a read-only reference —
// the interpreter never mutates it.
type IndexedQuery struct {
	Query *ir.IRQuery

	Vertices map[ir.Vid]*ir.IRVertex
	Edges    map[ir.Eid]*ir.IREdge
	Folds    map[ir.Eid]*ir.IRFold

	Outputs   map[string]Output
	Variables map[string]ir.Type
}

// InvalidIRQueryError reports every structural problem Make found in one
// pass, rather than stopping at the first (mirroring how the frontend
// collects FrontendErrors).
type InvalidIRQueryError struct {
	Problems []string
}

func (e *InvalidIRQueryError) Error() string {
	return "invalid IR query: " + strings.Join(e.Problems, "; ")
}

// Make flattens q into an IndexedQuery, validating the invariants spec §4.2
// requires: every Vid/Eid referenced anywhere actually exists, and every
// declared output resolves to a field rooted at a reachable vertex or fold.
func Make(q *ir.IRQuery) (*IndexedQuery, *InvalidIRQueryError) {
	iq := &IndexedQuery{
		Query:     q,
		Vertices:  make(map[ir.Vid]*ir.IRVertex),
		Edges:     make(map[ir.Eid]*ir.IREdge),
		Folds:     make(map[ir.Eid]*ir.IRFold),
		Outputs:   make(map[string]Output),
		Variables: q.Variables,
	}

	var problems []string
	addProblem := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	var walk func(comp *ir.IRQueryComponent, enclosingFold ir.Eid)
	walk = func(comp *ir.IRQueryComponent, enclosingFold ir.Eid) {
		for vid, v := range comp.Vertices {
			if existing, ok := iq.Vertices[vid]; ok && existing != v {
				addProblem("duplicate vertex id %s", vid)
			}
			iq.Vertices[vid] = v
		}
		for eid, e := range comp.Edges {
			if _, ok := iq.Edges[eid]; ok {
				addProblem("duplicate edge id %s", eid)
			}
			if _, ok := comp.Vertices[e.FromVid]; !ok {
				addProblem("edge %s references unknown source vertex %s", eid, e.FromVid)
			}
			if _, ok := comp.Vertices[e.ToVid]; !ok {
				addProblem("edge %s references unknown destination vertex %s", eid, e.ToVid)
			}
			iq.Edges[eid] = e
		}
		for eid, f := range comp.Folds {
			if _, ok := iq.Folds[eid]; ok {
				addProblem("duplicate fold id %s", eid)
			}
			if _, ok := comp.Vertices[f.FromVid]; !ok {
				addProblem("fold %s references unknown source vertex %s", eid, f.FromVid)
			}
			iq.Folds[eid] = f

			for name, ref := range f.FoldSpecificOutputs {
				registerOutput(iq, addProblem, name, OutputKindFoldCount, ref, eid)
			}

			walk(f.Component, eid)
		}
		for name, ref := range comp.Outputs {
			kind := OutputKindRegular
			if enclosingFold != 0 {
				kind = OutputKindFolded
			}
			registerOutput(iq, addProblem, name, kind, ref, enclosingFold)
		}
	}
	walk(q.RootComponent, 0)

	if len(problems) > 0 {
		return nil, &InvalidIRQueryError{Problems: problems}
	}
	return iq, nil
}

func registerOutput(iq *IndexedQuery, addProblem func(string, ...interface{}), name string, kind OutputKind, ref ir.FieldRef, foldEid ir.Eid) {
	if _, ok := iq.Outputs[name]; ok {
		addProblem("duplicate output name %q", name)
		return
	}
	if !refIsWellFormed(iq, ref) {
		addProblem("output %q refers to a field rooted at an unknown vertex or fold", name)
	}
	iq.Outputs[name] = Output{Name: name, Kind: kind, Ref: ref, FoldEid: foldEid}
}

// refIsWellFormed reports whether ref's root is reachable in iq: a
// ContextField's Vid must be a known vertex, a FoldSpecificField's FoldEid
// must be a known fold, and a TransformedField must recurse on its base.
// LocalField carries no Vid of its own (see ir.LocalField's doc comment) and
// is always considered well-formed here.
func refIsWellFormed(iq *IndexedQuery, ref ir.FieldRef) bool {
	switch f := ref.(type) {
	case ir.LocalField:
		return true
	case ir.ContextField:
		_, ok := iq.Vertices[f.VertexID]
		return ok
	case ir.FoldSpecificField:
		_, ok := iq.Folds[f.FoldEid]
		return ok
	case ir.TransformedField:
		return refIsWellFormed(iq, f.Base)
	default:
		return false
	}
}
