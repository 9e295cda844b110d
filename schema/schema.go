// Package schema defines the contract the frontend and hints packages need
// from a schema: vertex/edge/property type information and the subtype
// lattice. Loading a schema from a `.graphql` SDL document, or from any
// other source, is the schema loader's job and stays out of scope here
// (the loader is an external collaborator this core only consumes from);
// this package owns the consumer-facing interface plus a minimal in-memory
// implementation used by this module's own tests.
package schema

import "github.com/obi1kenobi/trustfall-go/ir"

// FieldOrigin records how an inherited edge/property field reached a type:
// directly defined, inherited from exactly one ancestor interface, or
// inherited ambiguously from two or more unrelated ancestor interfaces. The
// recursion-legality case analysis (§4.1 step 5) depends on telling these
// apart.
type FieldOrigin struct {
	// SingleAncestor is set when the field is inherited from exactly one
	// ancestor interface; empty string if not applicable.
	SingleAncestor string
	// MultipleAncestors lists every unrelated ancestor interface the field
	// is ambiguously inherited from; non-empty only in that case.
	MultipleAncestors []string
}

func (o FieldOrigin) IsAmbiguous() bool { return len(o.MultipleAncestors) > 0 }

// EdgeDefinition describes one outbound edge a vertex type declares.
type EdgeDefinition struct {
	Name string
	// TargetType is the edge's declared (possibly interface/union) target
	// type name, independent of list/nullable wrapping.
	TargetType string
	// TargetTypeIsList is true when the edge produces 0..N vertices rather
	// than exactly 0 or 1.
	TargetTypeIsList bool
	// Parameters maps each declared parameter name to its type.
	Parameters map[string]ir.Type
	// EdgeDefinition carries no recursability flag: whether @recurse is
	// legal on an edge is decided by the frontend from the edge's source
	// and destination types.
}

// PropertyDefinition describes one property field a vertex type declares.
type PropertyDefinition struct {
	Name string
	Type ir.Type
}

// VertexTypeKind distinguishes the three shapes a named vertex type may
// take in a Trustfall schema, mirroring GraphQL's object/interface/union
// kinds.
type VertexTypeKind int

const (
	KindObject VertexTypeKind = iota
	KindInterface
	KindUnion
)

// VertexType describes one named type in the schema: its properties, edges,
// and the interfaces (if any) it implements.
type VertexType struct {
	Name       string
	Kind       VertexTypeKind
	Properties map[string]PropertyDefinition
	Edges      map[string]EdgeDefinition
	// Implements lists every interface this type directly or transitively
	// implements.
	Implements []string
}

// Schema is the read-only contract the frontend and hints packages consume.
// Implementations must be safe for concurrent read access; nothing in this
// package ever mutates a Schema after it is built.
type Schema interface {
	// QueryTypeName returns the name of the root query type, whose fields
	// are the set of edges a query's root field may name.
	QueryTypeName() string

	// VertexType returns the named type's definition, if it exists.
	VertexType(name string) (VertexType, bool)

	// IsNamedTypeSubtype reports whether sub is a subtype of (or identical
	// to) super: every Object implementing an Interface is a subtype of it,
	// and every type is a subtype of itself.
	IsNamedTypeSubtype(sub, super string) bool

	// Field looks up the edge named fieldName that typeName defines
	// directly, returning its EdgeDefinition. Properties are not looked up:
	// ok is false when fieldName is a property, or when typeName has no
	// such edge directly (see FieldOrigin for where an inherited field
	// actually came from).
	Field(typeName, fieldName string) (EdgeDefinition, bool)

	// FieldOrigin reports which ancestor interface(s) typeName inherits
	// fieldName from, when typeName does not define it directly. Only
	// meaningful to call when Field(typeName, fieldName) returns ok=false
	// but some supertype of typeName does define it.
	FieldOrigin(typeName, fieldName string) (FieldOrigin, bool)

	// IsScalarType reports whether name is a scalar (built-in or
	// user-defined), as opposed to a vertex type.
	IsScalarType(name string) bool
}
