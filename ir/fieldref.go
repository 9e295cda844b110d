package ir

import "fmt"

// FieldRef identifies a value read off some point in the query: a plain
// property of a vertex reached earlier (ContextField), an aggregate computed
// over a fold (FoldSpecificField), or the result of applying one or more
// @transform steps to either of those (TransformedField).
//
// FieldRef is implemented as a closed interface rather than a concrete sum
// struct because, unlike FieldValue/Operation, its variants carry
// meaningfully different shapes (FoldSpecificField's Kind has no Go
// equivalent to a shared payload) and call sites overwhelmingly want to
// switch on concrete type rather than inspect a shared struct.
type FieldRef interface {
	// FieldType returns the type of the value this reference produces.
	FieldType() Type
	// FieldName returns the name used for this field in @tag/@output, or the
	// property name for a bare ContextField.
	FieldName() string
	// DefinedAt returns the Vid of the vertex this reference is rooted at:
	// for a ContextField/FoldSpecificField, the vertex/fold itself; for a
	// TransformedField, the Vid its base is defined at.
	DefinedAt() Vid
	// referstoFoldSpecificField is unexported so only this package's types
	// can implement FieldRef, matching trustfall_core's sealed enum.
	referstoFoldSpecificField() bool
}

// ContextField is a plain property read directly off a vertex reached
// earlier in the query (not inside a fold).
type ContextField struct {
	VertexID     Vid
	PropertyName string
	Type         Type
}

func (f ContextField) FieldType() Type         { return f.Type }
func (f ContextField) FieldName() string       { return f.PropertyName }
func (f ContextField) DefinedAt() Vid          { return f.VertexID }
func (f ContextField) referstoFoldSpecificField() bool { return false }

// LocalField is a plain property read off the vertex a @filter directive is
// itself attached to. It carries no Vid: unlike ContextField (used for
// @tag'd values read from a distance), a filter's subject is always the
// current vertex, so DefinedAt is meaningless and returns 0.
type LocalField struct {
	PropertyName string
	Type         Type
}

func (f LocalField) FieldType() Type                { return f.Type }
func (f LocalField) FieldName() string              { return f.PropertyName }
func (f LocalField) DefinedAt() Vid                 { return 0 }
func (f LocalField) referstoFoldSpecificField() bool { return false }
func (f LocalField) isTransformBase()               {}

// FoldSpecificFieldKind enumerates the aggregate quantities a fold exposes
// about itself, independent of any property within it. Currently just
// "_x_count", but kept as an enum (rather than a bare string) to mirror
// trustfall_core's FoldSpecificFieldKind and leave room for future
// aggregates without changing FoldSpecificField's shape.
type FoldSpecificFieldKind int

const (
	FoldSpecificCount FoldSpecificFieldKind = iota
)

func (k FoldSpecificFieldKind) String() string {
	switch k {
	case FoldSpecificCount:
		return "_x_count"
	default:
		return fmt.Sprintf("FoldSpecificFieldKind(%d)", int(k))
	}
}

// FoldSpecificField is a reference to an aggregate value computed over a
// fold, such as its element count.
type FoldSpecificField struct {
	FoldEid Eid
	// FoldRootVid is the Vid of the vertex the fold's edge originates from,
	// i.e. the vertex the fold is attached to.
	FoldRootVid Vid
	Kind        FoldSpecificFieldKind
}

func (f FoldSpecificField) FieldType() Type {
	switch f.Kind {
	case FoldSpecificCount:
		return NewNamedType("Int", false)
	default:
		return NewNamedType("Int", false)
	}
}
func (f FoldSpecificField) FieldName() string       { return f.Kind.String() }
func (f FoldSpecificField) DefinedAt() Vid          { return f.FoldRootVid }
func (f FoldSpecificField) referstoFoldSpecificField() bool { return true }

// Transform is a single @transform step applied to a base field. Unlike
// FieldRef, Transform's variants share no payload shape at all (Len/Abs take
// no argument, Add takes an Argument to add), so it is likewise an
// interface.
type Transform interface {
	// TransformName is the @transform directive's "op" argument value.
	TransformName() string
	// ResultType computes the output type given the input type, used while
	// type-checking a chain of transforms (§ frontend transform checking).
	ResultType(input Type) (Type, error)
}

// LenTransform computes the length of a list or string value.
type LenTransform struct{}

func (LenTransform) TransformName() string { return "len" }
func (LenTransform) ResultType(input Type) (Type, error) {
	if !input.IsList() && !input.IsString() {
		return Type{}, fmt.Errorf("ir: len transform requires a list or String, got %s", input)
	}
	return NewNamedType("Int", input.Nullable()), nil
}

// AbsTransform computes the absolute value of a numeric value.
type AbsTransform struct{}

func (AbsTransform) TransformName() string { return "abs" }
func (AbsTransform) ResultType(input Type) (Type, error) {
	if input.Base() != "Int" && input.Base() != "Float" || input.IsList() {
		return Type{}, fmt.Errorf("ir: abs transform requires Int or Float, got %s", input)
	}
	return input, nil
}

// AddTransform adds a fixed argument to a numeric value.
type AddTransform struct {
	Addend Argument
}

func (AddTransform) TransformName() string { return "add" }
func (t AddTransform) ResultType(input Type) (Type, error) {
	if input.Base() != "Int" && input.Base() != "Float" || input.IsList() {
		return Type{}, fmt.Errorf("ir: add transform requires Int or Float, got %s", input)
	}
	return input, nil
}

// TransformBase is the set of FieldRef variants a TransformedField may be
// rooted on: a property of the current vertex (LocalField), a property of
// an earlier vertex (ContextField), or a fold-specific aggregate. It
// deliberately excludes TransformedField itself — trustfall_core flattens
// chains of transforms into a single TransformedField with multiple Transform
// steps rather than nesting TransformedFields, so there is never a
// transform-of-a-transform to represent.
type TransformBase interface {
	FieldRef
	isTransformBase()
}

func (f ContextField) isTransformBase()      {}
func (f FoldSpecificField) isTransformBase() {}

// TransformedField is the result of applying one or more @transform steps,
// in order, to a TransformBase.
type TransformedField struct {
	Tid        Tid
	Base       TransformBase
	Transforms []Transform
	Type       Type
}

func (f TransformedField) FieldType() Type         { return f.Type }
func (f TransformedField) FieldName() string       { return fmt.Sprintf("transform_%d", uint64(f.Tid)) }
func (f TransformedField) DefinedAt() Vid          { return f.Base.DefinedAt() }
func (f TransformedField) referstoFoldSpecificField() bool {
	return f.Base.referstoFoldSpecificField()
}

// CompareFieldRef orders two FieldRefs for deterministic iteration (e.g. when
// sorting a fold's imported tags), mirroring trustfall_core's manually
// derived Ord for FieldRef: LocalField and ContextField rank together first,
// then FoldSpecificField, then TransformedField, with ties broken by
// DefinedAt's Vid (a fold aggregate's FoldRootVid, not its Eid) and then by
// FieldName.
func CompareFieldRef(a, b FieldRef) int {
	rank := func(f FieldRef) int {
		switch f.(type) {
		case LocalField:
			return 0
		case ContextField:
			return 0
		case FoldSpecificField:
			return 1
		case TransformedField:
			return 2
		default:
			return 3
		}
	}
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	if a.DefinedAt() != b.DefinedAt() {
		if a.DefinedAt() < b.DefinedAt() {
			return -1
		}
		return 1
	}
	an, bn := a.FieldName(), b.FieldName()
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	default:
		return 0
	}
}
