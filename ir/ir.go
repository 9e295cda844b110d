package ir

// EdgeParameters holds the (possibly empty) name-to-value arguments an edge
// was traversed with, e.g. `latest(count: $n)`. Preserves insertion order so
// that two structurally-identical edge traversals produce identical
// iteration order regardless of map randomization — this matters for
// deterministic error messages and for adapters that key a cache on the
// rendered parameter list.
type EdgeParameters struct {
	names  []string
	values map[string]FieldValue
}

// NewEdgeParameters builds an EdgeParameters from an ordered slice of names
// and their values. Panics if names contains a duplicate or names/values
// have mismatched length.
func NewEdgeParameters(names []string, values map[string]FieldValue) *EdgeParameters {
	if len(names) != len(values) {
		panic("ir: NewEdgeParameters: names/values length mismatch")
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			panic("ir: NewEdgeParameters: duplicate parameter name " + n)
		}
		seen[n] = true
		if _, ok := values[n]; !ok {
			panic("ir: NewEdgeParameters: missing value for " + n)
		}
	}
	namesCopy := make([]string, len(names))
	copy(namesCopy, names)
	valuesCopy := make(map[string]FieldValue, len(values))
	for k, v := range values {
		valuesCopy[k] = v
	}
	return &EdgeParameters{names: namesCopy, values: valuesCopy}
}

// Get returns the value of the named parameter, if present.
func (p *EdgeParameters) Get(name string) (FieldValue, bool) {
	if p == nil {
		return FieldValue{}, false
	}
	v, ok := p.values[name]
	return v, ok
}

// IsEmpty reports whether the edge was traversed with no parameters at all.
func (p *EdgeParameters) IsEmpty() bool {
	return p == nil || len(p.names) == 0
}

// Iter calls fn once per parameter, in the order the parameters were
// declared in the query.
func (p *EdgeParameters) Iter(fn func(name string, value FieldValue)) {
	if p == nil {
		return
	}
	for _, n := range p.names {
		fn(n, p.values[n])
	}
}

// Recursive marks an IREdge as being traversed 0..=Depth times, optionally
// coercing to a narrower type at every recursive step.
type Recursive struct {
	Depth uint64
	// CoerceTo, if non-nil, names the type every recursively-reached vertex
	// must be coerced to before the edge is allowed to recurse into it
	// again (§ recursion legality, case 4).
	CoerceTo *string
}

// IREdge is a single edge traversal within a query component: from the
// vertex FromVid, across EdgeName, landing on ToVid.
type IREdge struct {
	Eid        Eid
	FromVid    Vid
	ToVid      Vid
	EdgeName   string
	Parameters *EdgeParameters
	Optional   bool
	Recursive  *Recursive
}

// IRVertex is a single vertex within a query component.
type IRVertex struct {
	Vid Vid
	// TypeName is the type the vertex is ultimately treated as, after any
	// type coercion (e.g. `... on Dog`) has been applied.
	TypeName string
	// CoercedFromType is the vertex's type before coercion, if a `... on`
	// fragment coerced it; nil if no coercion occurred.
	CoercedFromType *string
	// Filters are the @filter directives attached to this vertex's own
	// fields (LocalField/FoldSpecificField/TransformedField subjects only).
	Filters []FilterOperation
}

// IRFold represents one @fold: a nested query component reached by
// traversing FromVid across EdgeName, whose results are collected into a
// list rather than cross-producted with the enclosing component.
type IRFold struct {
	Eid        Eid
	FromVid    Vid
	ToVid      Vid
	EdgeName   string
	Parameters *EdgeParameters

	// Component is the folded subquery: its own vertices/edges/nested folds,
	// rooted at ToVid.
	Component *IRQueryComponent

	// ImportedTags lists the outer-scope FieldRefs this fold's filters or
	// nested folds reference via @tag, in the order they were first
	// encountered. The interpreter must have these values available before
	// it can evaluate the fold.
	ImportedTags []FieldRef

	// FoldSpecificOutputs maps an output name (e.g. "child_count") to the
	// FoldSpecificField it reports, for outputs computed from the fold as a
	// whole rather than from one of its folded vertices.
	FoldSpecificOutputs map[string]FieldRef

	// PostFilters are filters applied to fold-specific fields (e.g.
	// `@filter(op: ">", value: ["$min_children"])` on `_x_count`) after the
	// fold's elements have all been collected.
	PostFilters []FilterOperation
}

// IRQueryComponent is one query scope: the top-level component of an
// IRQuery, or the folded subquery of an IRFold. Every Vid/Eid appearing
// anywhere within it belongs to the enclosing IRQuery's single shared
// namespace (§ ID allocation invariant).
type IRQueryComponent struct {
	Root Vid

	Vertices map[Vid]*IRVertex
	Edges    map[Eid]*IREdge
	Folds    map[Eid]*IRFold

	// Outputs maps a query's requested output name to the FieldRef producing
	// it. Every FieldRef here must resolve to a vertex/fold reachable from
	// Root without crossing into a sibling fold's scope.
	Outputs map[string]FieldRef
}

// NewIRQueryComponent returns an IRQueryComponent with its maps initialized
// and rooted at root.
func NewIRQueryComponent(root Vid) *IRQueryComponent {
	return &IRQueryComponent{
		Root:     root,
		Vertices: make(map[Vid]*IRVertex),
		Edges:    make(map[Eid]*IREdge),
		Folds:    make(map[Eid]*IRFold),
		Outputs:  make(map[string]FieldRef),
	}
}

// IRQuery is a complete, lowered, but not-yet-indexed query: the root edge
// the query starts from (the top-level field in the GraphQL query, e.g.
// "Animal"), its parameters, its component tree, and the variables it
// references.
type IRQuery struct {
	// RootName is the top-level field name the query starts resolution
	// from, e.g. "Animal" in `query { Animal { name @output } }`.
	RootName string
	// RootParameters carries any arguments passed to the root field itself.
	RootParameters *EdgeParameters

	RootComponent *IRQueryComponent

	// Variables maps every `$name` referenced anywhere in the query to the
	// narrowest type required across all of its use sites (the result of
	// repeatedly calling Type.Intersect as each use site was discovered).
	Variables map[string]Type
}
