package interpreter

import (
	"sort"

	"github.com/obi1kenobi/trustfall-go/indexed"
	"github.com/obi1kenobi/trustfall-go/interpreter/hints"
	"github.com/obi1kenobi/trustfall-go/internal/tlog"
	"github.com/obi1kenobi/trustfall-go/ir"
)

// Interpret executes q against adapter with the given bound variables,
// returning one map per matching row, keyed by output name. args is
// validated against q's declared variables before any adapter call is made.
func Interpret[V any](adapter Adapter[V], q *indexed.IndexedQuery, args map[string]ir.FieldValue) (Seq[map[string]ir.FieldValue], error) {
	if err := ValidateArguments(q, args); err != nil {
		return nil, err
	}

	e := &execution[V]{adapter: adapter, q: q, args: args}
	rootVid := q.Query.RootComponent.Root
	rootInfo := buildVertexInfo(rootVid, q.Query.RootComponent, rootBindingState(), nil, args)

	starting := adapter.ResolveStartingVertices(q.Query.RootName, q.Query.RootParameters, rootInfo)
	rootContexts := mapSeq(starting, func(v V) *DataContext[V] {
		vv := v
		return NewDataContext[V](rootVid, &vv)
	})

	final := e.evalVertex(rootVid, q.Query.RootComponent, rootContexts, rootBindingState())
	rows := mapSeq(final, func(dc *DataContext[V]) map[string]ir.FieldValue {
		return e.assembleOutputRow(dc)
	})
	return rows, nil
}

// execution carries the pieces every evaluation step needs: the adapter
// being driven, the flattened query, and the bound variables. It has no
// mutable state of its own — every step of the walk instead threads
// immutable DataContext values, mirroring how cayley's iterators thread
// graph.Tagger state through a pipeline rather than accumulating it on a
// shared struct.
type execution[V any] struct {
	adapter Adapter[V]
	q       *indexed.IndexedQuery
	args    map[string]ir.FieldValue
}

// evalVertex runs one vertex call site's coerce→filter→record→walk pipeline
// (spec.md §4.3) against candidates, whose ActiveVertex is the not-yet-gated
// vertex reached at vid (already the case for the query's starting
// vertices; set by the caller for every other vid via edge/recursion/fold
// expansion).
func (e *execution[V]) evalVertex(vid ir.Vid, comp *ir.IRQueryComponent, candidates Seq[*DataContext[V]], state bindingState) Seq[*DataContext[V]] {
	vertex := comp.Vertices[vid]
	var coercedTo *string
	if vertex.CoercedFromType != nil {
		t := vertex.TypeName
		coercedTo = &t
	}
	info := buildVertexInfo(vid, comp, state, coercedTo, e.args)

	gated := candidates
	if vertex.CoercedFromType != nil {
		gated = e.applyCoercion(gated, *vertex.CoercedFromType, vertex.TypeName, info)
	}
	gated = e.applyFilters(gated, vertex.Filters, vertex.TypeName, info)

	recorded := mapSeq(gated, func(dc *DataContext[V]) *DataContext[V] {
		return dc.recordVertex(vid, dc.ActiveVertex)
	})

	return e.walkEdgesAndFolds(vid, comp, recorded, state)
}

// applyCoercion keeps only contexts whose active vertex is an instance of
// coerceTo. A context with no active vertex (an unmatched @optional's
// synthetic row) always passes through unchecked — there is no vertex to
// coerce, and dropping the row here would defeat the whole point of
// @optional, which is to keep the row around with every downstream field
// resolving to null.
func (e *execution[V]) applyCoercion(contexts Seq[*DataContext[V]], typeName, coerceTo string, info *hints.VertexInfo) Seq[*DataContext[V]] {
	contextList := Collect(contexts)
	var toCheck, none []*DataContext[V]
	for _, dc := range contextList {
		if dc.ActiveVertex == nil {
			none = append(none, dc)
		} else {
			toCheck = append(toCheck, dc)
		}
	}
	results := Collect(e.adapter.ResolveCoercion(SeqFromSlice(toCheck), typeName, coerceTo, info))
	out := append([]*DataContext[V]{}, none...)
	for i, r := range results {
		if r.Coerces {
			out = append(out, toCheck[i])
		}
	}
	return SeqFromSlice(out)
}

// applyFilters runs each of vertex's @filter operations in turn, each one
// narrowing the surviving context set before the next runs.
func (e *execution[V]) applyFilters(contexts Seq[*DataContext[V]], filters []ir.FilterOperation, typeName string, info *hints.VertexInfo) Seq[*DataContext[V]] {
	cur := contexts
	for _, f := range filters {
		cur = e.applyOneFilter(cur, f, typeName, info)
	}
	return cur
}

func (e *execution[V]) applyOneFilter(contexts Seq[*DataContext[V]], f ir.FilterOperation, typeName string, info *hints.VertexInfo) Seq[*DataContext[V]] {
	propName := localPropertyName(f.Left())
	if propName == "" {
		return contexts
	}
	cache := newRegexCache()
	contextList := Collect(contexts)
	resolved := Collect(e.adapter.ResolveProperty(SeqFromSlice(contextList), typeName, propName, info))

	out := make([]*DataContext[V], 0, len(resolved))
	for i, pv := range resolved {
		dc := contextList[i]
		left := pv.Value
		if tf, ok := f.Left().(ir.TransformedField); ok {
			left = resolveTransforms(left, tf.Transforms, dc, e.args, e.resolveTagRef)
		}

		var resolvedArg resolvedArgument
		if right, ok := f.Right(); ok {
			resolvedArg = resolveArgument(right, dc, e.args, e.resolveTagRef)
		}

		keep, err := evalOperation(f.Kind, left, resolvedArg, cache)
		if err != nil {
			tlog.Warningf("filter evaluation error on property %q: %v", propName, err)
			continue
		}
		if keep {
			out = append(out, dc)
		}
	}
	return SeqFromSlice(out)
}

// resolveTagRef resolves ref against dc by issuing a single-context adapter
// call against whichever vertex ref is rooted at, used both for @tag reads
// from elsewhere in the same component and for @output refs, which (like
// tags) are Vid-qualified ContextFields for exactly this reason (see
// DESIGN.md).
func (e *execution[V]) resolveTagRef(ref ir.FieldRef, dc *DataContext[V]) ir.FieldValue {
	switch f := ref.(type) {
	case ir.ContextField:
		vertex, ok := dc.Vertices[f.VertexID]
		if !ok || vertex == nil {
			return ir.Null
		}
		return e.resolveOneProperty(e.typeNameOf(f.VertexID), f.PropertyName, vertex)
	case ir.LocalField:
		if dc.ActiveVertex == nil {
			return ir.Null
		}
		return e.resolveOneProperty("", f.PropertyName, dc.ActiveVertex)
	case ir.FoldSpecificField:
		if f.Kind != ir.FoldSpecificCount {
			return ir.Null
		}
		if !dc.FoldMatched(f.FoldEid) {
			return ir.Int64(0)
		}
		return ir.Int64(int64(len(dc.FoldedContexts[f.FoldEid])))
	case ir.TransformedField:
		base := e.resolveTagRef(f.Base, dc)
		return resolveTransforms(base, f.Transforms, dc, e.args, e.resolveTagRef)
	default:
		return ir.Null
	}
}

func (e *execution[V]) typeNameOf(vid ir.Vid) string {
	if v, ok := e.q.Vertices[vid]; ok {
		return v.TypeName
	}
	return ""
}

// resolveOneProperty issues a single-context ResolveProperty call. Used for
// tag/output reads against a vertex visited earlier in the walk, where a
// full batch isn't available.
func (e *execution[V]) resolveOneProperty(typeName, propName string, vertex *V) ir.FieldValue {
	dc := &DataContext[V]{ActiveVertex: vertex}
	info := hints.NewVertexInfo(typeName, nil, false)
	results := Collect(e.adapter.ResolveProperty(SeqFromSlice([]*DataContext[V]{dc}), typeName, propName, info))
	if len(results) == 0 {
		return ir.Null
	}
	return results[0].Value
}

// walkEdgesAndFolds descends into every edge and fold rooted at vid, in
// ascending Eid order (spec.md §4.3): each step narrows or fans out the
// context set the next step receives, so the final sequence reflects every
// join and collection this vertex's neighbors contribute.
func (e *execution[V]) walkEdgesAndFolds(vid ir.Vid, comp *ir.IRQueryComponent, contexts Seq[*DataContext[V]], state bindingState) Seq[*DataContext[V]] {
	type step struct {
		eid  ir.Eid
		edge *ir.IREdge
		fold *ir.IRFold
	}
	var steps []step
	for eid, edge := range comp.Edges {
		if edge.FromVid == vid {
			steps = append(steps, step{eid: eid, edge: edge})
		}
	}
	for eid, fold := range comp.Folds {
		if fold.FromVid == vid {
			steps = append(steps, step{eid: eid, fold: fold})
		}
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].eid < steps[j].eid })

	cur := contexts
	for _, s := range steps {
		if s.edge != nil {
			cur = e.expandEdge(s.edge, comp, cur, state)
		} else {
			cur = e.expandFold(s.fold, comp, cur, state)
		}
	}
	return cur
}

// expandEdge fans each context out across edge's neighbors (or recurses, if
// edge.Recursive is set), then runs the destination vertex's own
// coerce/filter/walk pipeline on the results.
func (e *execution[V]) expandEdge(edge *ir.IREdge, comp *ir.IRQueryComponent, contexts Seq[*DataContext[V]], state bindingState) Seq[*DataContext[V]] {
	if edge.Recursive != nil {
		return e.expandRecursiveEdge(edge, comp, contexts, state)
	}

	fromVertex := comp.Vertices[edge.FromVid]
	edgeState := state
	if edge.Optional {
		edgeState = state.throughOptional()
	} else {
		edgeState = state.throughMandatoryEdge()
	}
	info := buildVertexInfo(edge.FromVid, comp, state, nil, e.args)

	contextList := Collect(contexts)
	ncList := Collect(e.adapter.ResolveNeighbors(SeqFromSlice(contextList), fromVertex.TypeName, edge.EdgeName, edge.Parameters, info))

	var pairs []*DataContext[V]
	for i, nc := range ncList {
		outer := contextList[i]
		neighbors := Collect(nc.Neighbors)
		if len(neighbors) == 0 {
			if edge.Optional && outer.ActiveVertex != nil {
				synthetic := outer.clone()
				synthetic.ActiveVertex = nil
				pairs = append(pairs, synthetic)
			}
			continue
		}
		for _, n := range neighbors {
			nn := n
			c := outer.clone()
			c.ActiveVertex = &nn
			pairs = append(pairs, c)
		}
	}

	return e.evalVertex(edge.ToVid, comp, SeqFromSlice(pairs), edgeState)
}

// expandRecursiveEdge implements @recurse(depth: N): the source vertex
// itself is the depth-0 match, then each further depth re-expands the
// previous depth's frontier across edge.EdgeName, up to N times. Grounded
// on cayley's Recursive iterator (graph/iterator/recursive.go), whose
// two-phase "expand this depth's frontier, then move to the next" loop this
// mirrors; unlike that iterator, cycle detection is left to the bound depth
// alone; preventing re-visiting is the adapter's concern (which vertices
// ResolveNeighbors actually returns), not the interpreter's.
func (e *execution[V]) expandRecursiveEdge(edge *ir.IREdge, comp *ir.IRQueryComponent, contexts Seq[*DataContext[V]], state bindingState) Seq[*DataContext[V]] {
	maxDepth := int(edge.Recursive.Depth)
	recState := state.throughRecursion()
	fromVertex := comp.Vertices[edge.FromVid]

	frontier := Collect(contexts)
	var allResults []*DataContext[V]
	for _, c := range frontier {
		allResults = append(allResults, c.clone())
	}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		info := buildVertexInfo(edge.FromVid, comp, recState, nil, e.args)
		ncList := Collect(e.adapter.ResolveNeighbors(SeqFromSlice(frontier), fromVertex.TypeName, edge.EdgeName, edge.Parameters, info))

		var nextFrontier []*DataContext[V]
		for i, nc := range ncList {
			outer := frontier[i]
			for _, n := range Collect(nc.Neighbors) {
				nn := n
				c := outer.clone()
				c.ActiveVertex = &nn
				nextFrontier = append(nextFrontier, c)
			}
		}
		for _, c := range nextFrontier {
			allResults = append(allResults, c.clone())
		}

		// A CoerceTo narrows which vertices are allowed to recurse further
		// (recursion legality case 4): it gates re-expansion at the next
		// depth, not membership of this depth's own results, which were
		// already appended above regardless.
		if edge.Recursive.CoerceTo != nil && depth < maxDepth {
			coerceInfo := buildVertexInfo(edge.FromVid, comp, recState, edge.Recursive.CoerceTo, e.args)
			frontier = Collect(e.applyCoercion(SeqFromSlice(nextFrontier), fromVertex.TypeName, *edge.Recursive.CoerceTo, coerceInfo))
		} else {
			frontier = nextFrontier
		}
	}

	return e.evalVertex(edge.ToVid, comp, SeqFromSlice(allResults), recState)
}

// expandFold runs fold's nested component once per folded element reachable
// from each outer context, then attaches the collected results (and any
// outputs they produce) back onto that outer context — a fold never
// cross-products with its enclosing scope the way a plain edge does.
func (e *execution[V]) expandFold(fold *ir.IRFold, comp *ir.IRQueryComponent, contexts Seq[*DataContext[V]], state bindingState) Seq[*DataContext[V]] {
	fromVertex := comp.Vertices[fold.FromVid]
	foldState := state.throughUnboundedFold()
	info := buildVertexInfo(fold.FromVid, comp, state, nil, e.args)

	contextList := Collect(contexts)

	// Imported tags must be materialized against the outer context before
	// the fold's own component runs, since its filters (including
	// PostFilters) may reference them and the fold's children have no other
	// way to reach an outer-scope value.
	tagged := make([]*DataContext[V], len(contextList))
	for i, outer := range contextList {
		dc := outer
		for _, ref := range fold.ImportedTags {
			if outer.ActiveVertex == nil {
				dc = dc.withImportedTag(ref, TaggedValue{NonexistentOptional: true})
				continue
			}
			dc = dc.withImportedTag(ref, TaggedValue{Value: e.resolveTagRef(ref, outer)})
		}
		tagged[i] = dc
	}

	upper, _ := foldBounds(fold.PostFilters, e.args)
	// The bound applies to the raw neighbor count only. A fold component that
	// can drop elements (coercion or filters on its root, nested edges or
	// folds) lowers the count the post_filters see, so no early termination
	// is done for it.
	foldRoot := fold.Component.Vertices[fold.ToVid]
	if foldRoot.CoercedFromType != nil || len(foldRoot.Filters) > 0 || len(fold.Component.Edges) > 0 || len(fold.Component.Folds) > 0 {
		upper = nil
	}

	ncList := Collect(e.adapter.ResolveNeighbors(SeqFromSlice(tagged), fromVertex.TypeName, fold.EdgeName, fold.Parameters, info))

	out := make([]*DataContext[V], 0, len(contextList))
	for i, nc := range ncList {
		outer := tagged[i]
		if outer.ActiveVertex == nil {
			out = append(out, outer.withUnmatchedFold(fold.Eid))
			continue
		}

		neighborSeq := nc.Neighbors
		if upper != nil {
			// Early termination: the fold's post_filters already bound how
			// many elements could possibly matter. Pull one past that bound
			// so an exact count at the bound is distinguished from one
			// beyond it, without ever materializing more than necessary.
			neighborSeq = takeSeq(neighborSeq, int(*upper)+1)
		}
		neighbors := Collect(neighborSeq)
		if upper != nil && int64(len(neighbors)) > *upper {
			// The true count exceeds every post_filter's derived upper
			// bound, so this fold's contribution can never pass them —
			// discard the whole outer row rather than report a truncated
			// (and therefore wrong) count or element list.
			continue
		}

		var children []*DataContext[V]
		for _, n := range neighbors {
			nn := n
			children = append(children, NewDataContext[V](fold.ToVid, &nn))
		}
		evaluated := Collect(e.evalVertex(fold.ToVid, fold.Component, SeqFromSlice(children), foldState))

		passed, ok := e.applyPostFilters(evaluated, fold, outer)
		if !ok {
			continue
		}

		withFold := outer.withFold(fold.Eid, passed)
		withFold = e.attachFoldOutputs(withFold, fold, passed)
		out = append(out, withFold)
	}
	return SeqFromSlice(out)
}

// applyPostFilters evaluates fold.PostFilters against the fold's own element
// count, as gathered after the folded component's internal coercion/filters
// already ran. The bool return distinguishes a genuine failure (drop the
// whole fold's contribution for this outer context) from success with
// possibly-empty children, which callers must not conflate.
func (e *execution[V]) applyPostFilters(children []*DataContext[V], fold *ir.IRFold, outer *DataContext[V]) ([]*DataContext[V], bool) {
	if len(fold.PostFilters) == 0 {
		return children, true
	}
	cache := newRegexCache()
	count := ir.Int64(int64(len(children)))
	for _, f := range fold.PostFilters {
		left := count
		if tf, ok := f.Left().(ir.TransformedField); ok {
			left = resolveTransforms(count, tf.Transforms, outer, e.args, e.resolveTagRef)
		}
		var resolved resolvedArgument
		if right, ok := f.Right(); ok {
			resolved = resolveArgument(right, outer, e.args, e.resolveTagRef)
		}
		keep, err := evalOperation(f.Kind, left, resolved, cache)
		if err != nil {
			tlog.Warningf("fold post_filter evaluation error: %v", err)
			return nil, false
		}
		if !keep {
			return nil, false
		}
	}
	return children, true
}

// attachFoldOutputs materializes every output this fold directly produces
// (a count aggregate, or one value per passed element) plus every output
// produced by a fold nested inside this one, which each passed child
// already carries on its own FoldedValues map — propagating those up one
// more list level is what turns a triply-nested @fold's output into a list
// of lists of lists.
func (e *execution[V]) attachFoldOutputs(dc *DataContext[V], fold *ir.IRFold, passed []*DataContext[V]) *DataContext[V] {
	out := dc
	direct := map[string]bool{}

	for name, o := range e.q.Outputs {
		if o.FoldEid != fold.Eid {
			continue
		}
		switch o.Kind {
		case indexed.OutputKindFoldCount:
			count := ir.Int64(int64(len(passed)))
			if tf, ok := o.Ref.(ir.TransformedField); ok {
				count = resolveTransforms(count, tf.Transforms, dc, e.args, e.resolveTagRef)
			}
			out = out.withFoldedValue(name, ScalarValueOrVec(count))
		case indexed.OutputKindFolded:
			elems := make([]ValueOrVec, len(passed))
			for i, child := range passed {
				elems[i] = ScalarValueOrVec(e.resolveTagRef(o.Ref, child))
			}
			out = out.withFoldedValue(name, ListValueOrVec(elems))
		}
		direct[name] = true
	}

	nested := map[string]bool{}
	for _, child := range passed {
		for name := range child.FoldedValues {
			if !direct[name] {
				nested[name] = true
			}
		}
	}
	for name := range nested {
		elems := make([]ValueOrVec, len(passed))
		for i, child := range passed {
			elems[i] = child.FoldedValues[name]
		}
		out = out.withFoldedValue(name, ListValueOrVec(elems))
	}
	return out
}

// assembleOutputRow resolves every declared output against dc: a regular
// output reads straight off dc's Vertices via resolveTagRef; a folded
// output or fold-count reads the value expandFold already materialized into
// dc.FoldedValues, falling back to a zero count or empty list when the
// fold's enclosing scope never matched.
func (e *execution[V]) assembleOutputRow(dc *DataContext[V]) map[string]ir.FieldValue {
	row := make(map[string]ir.FieldValue, len(e.q.Outputs))
	for name, o := range e.q.Outputs {
		switch o.Kind {
		case indexed.OutputKindRegular:
			row[name] = e.resolveTagRef(o.Ref, dc)
		case indexed.OutputKindFoldCount:
			if v, ok := dc.FoldedValues[name]; ok {
				row[name] = v.ToFieldValue()
			} else {
				row[name] = ir.Int64(0)
			}
		case indexed.OutputKindFolded:
			if v, ok := dc.FoldedValues[name]; ok {
				row[name] = v.ToFieldValue()
			} else {
				row[name] = ir.List(nil)
			}
		}
	}
	return row
}
