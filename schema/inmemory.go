package schema

// InMemory is a minimal, hand-buildable Schema implementation used by this
// module's own tests (the standalone fixture pattern cayley's graphtest
// package uses for its own test schemas/data, rather than anything this
// module expects production callers to use).
type InMemory struct {
	QueryType string
	Types     map[string]VertexType
	Scalars   map[string]bool
	// ancestors maps a type name to the interfaces it implements, used to
	// compute subtyping and field origins without requiring callers to
	// precompute a transitive closure by hand.
	ancestors map[string][]string
}

// NewInMemory builds an InMemory schema from a set of vertex types and the
// name of the root query type. Built-in scalars (Int, Float, String,
// Boolean, ID) are registered automatically.
func NewInMemory(queryType string, types []VertexType) *InMemory {
	s := &InMemory{
		QueryType: queryType,
		Types:     make(map[string]VertexType, len(types)),
		Scalars: map[string]bool{
			"Int": true, "Float": true, "String": true, "Boolean": true, "ID": true,
		},
		ancestors: make(map[string][]string, len(types)),
	}
	for _, t := range types {
		s.Types[t.Name] = t
		s.ancestors[t.Name] = t.Implements
	}
	return s
}

// AddScalar registers name as an additional user-defined scalar type.
func (s *InMemory) AddScalar(name string) { s.Scalars[name] = true }

func (s *InMemory) QueryTypeName() string { return s.QueryType }

func (s *InMemory) VertexType(name string) (VertexType, bool) {
	t, ok := s.Types[name]
	return t, ok
}

func (s *InMemory) IsNamedTypeSubtype(sub, super string) bool {
	if sub == super {
		return true
	}
	visited := map[string]bool{sub: true}
	queue := append([]string(nil), s.ancestors[sub]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == super {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		queue = append(queue, s.ancestors[cur]...)
	}
	return false
}

func (s *InMemory) Field(typeName, fieldName string) (EdgeDefinition, bool) {
	t, ok := s.Types[typeName]
	if !ok {
		return EdgeDefinition{}, false
	}
	e, ok := t.Edges[fieldName]
	return e, ok
}

// FieldOrigin walks typeName's implemented interfaces (and their
// interfaces, transitively) looking for ones that define fieldName
// directly, returning FieldOrigin{SingleAncestor: x} if exactly one such
// ancestor exists, or FieldOrigin{MultipleAncestors: [...]} if two or more
// unrelated ancestors both define it.
func (s *InMemory) FieldOrigin(typeName, fieldName string) (FieldOrigin, bool) {
	var defining []string
	visited := map[string]bool{}
	var walk func(name string)
	walk = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		for _, anc := range s.ancestors[name] {
			if t, ok := s.Types[anc]; ok {
				if _, has := t.Edges[fieldName]; has {
					defining = append(defining, anc)
				}
			}
			walk(anc)
		}
	}
	walk(typeName)

	// Keep only the most-derived definers: drop any ancestor that is itself
	// a supertype of another definer, since the more specific one is the
	// real origin.
	var roots []string
	for _, candidate := range defining {
		isAncestorOfAnother := false
		for _, other := range defining {
			if other != candidate && s.IsNamedTypeSubtype(other, candidate) {
				isAncestorOfAnother = true
				break
			}
		}
		if !isAncestorOfAnother {
			roots = append(roots, candidate)
		}
	}

	switch len(roots) {
	case 0:
		return FieldOrigin{}, false
	case 1:
		return FieldOrigin{SingleAncestor: roots[0]}, true
	default:
		return FieldOrigin{MultipleAncestors: roots}, true
	}
}

func (s *InMemory) IsScalarType(name string) bool {
	return s.Scalars[name]
}

var _ Schema = (*InMemory)(nil)
