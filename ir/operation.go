package ir

import "fmt"

// OperationKind enumerates the filter predicates a @filter directive may
// apply. The set is closed and mirrors trustfall_core's Operation<L, R> enum
// one variant at a time, rather than modeling each as a distinct Go type, so
// that generic code (e.g. the interpreter's filter evaluator) can switch on
// Kind without a type-switch over 20 concrete types.
type OperationKind int

const (
	OpIsNull OperationKind = iota
	OpIsNotNull
	OpEquals
	OpNotEquals
	OpLessThan
	OpLessThanOrEqual
	OpGreaterThan
	OpGreaterThanOrEqual
	OpContains
	OpNotContains
	OpOneOf
	OpNotOneOf
	OpHasPrefix
	OpNotHasPrefix
	OpHasSuffix
	OpNotHasSuffix
	OpHasSubstring
	OpNotHasSubstring
	OpRegexMatches
	OpNotRegexMatches
)

var operationNames = [...]string{
	OpIsNull:             "is_null",
	OpIsNotNull:          "is_not_null",
	OpEquals:             "=",
	OpNotEquals:          "!=",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "<=",
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: ">=",
	OpContains:           "contains",
	OpNotContains:        "not_contains",
	OpOneOf:              "one_of",
	OpNotOneOf:           "not_one_of",
	OpHasPrefix:          "has_prefix",
	OpNotHasPrefix:       "not_has_prefix",
	OpHasSuffix:          "has_suffix",
	OpNotHasSuffix:       "not_has_suffix",
	OpHasSubstring:       "has_substring",
	OpNotHasSubstring:    "not_has_substring",
	OpRegexMatches:       "regex",
	OpNotRegexMatches:    "not_regex",
}

// Name returns the @filter operator name as it appears in query syntax.
func (k OperationKind) Name() string {
	if int(k) < 0 || int(k) >= len(operationNames) {
		return fmt.Sprintf("OperationKind(%d)", int(k))
	}
	return operationNames[k]
}

// IsUnary reports whether k takes no right-hand argument (is_null,
// is_not_null). Every other kind is binary.
func (k OperationKind) IsUnary() bool {
	return k == OpIsNull || k == OpIsNotNull
}

// IsListValued reports whether k's right-hand argument is itself a list of
// values to test membership/overlap against, rather than a scalar operand.
func (k OperationKind) IsListValued() bool {
	return k == OpOneOf || k == OpNotOneOf
}

// Operation pairs an OperationKind with its operand(s). L is the type used
// for the left-hand subject (typically FieldRef, as in FilterOperation); R is the type used
// for the right-hand argument (typically Argument). Both are generic so the
// same shape serves the frontend (subjects/arguments not yet resolved to a
// concrete schema) and any future stage that wants to substitute concrete
// values instead.
//
// This mirrors trustfall_core's Operation<LeftT, RightT> enum: Go lacks enum
// payloads that vary per-variant, so instead of 20 struct types we carry one
// struct with an optional right-hand side, gated by Kind.IsUnary.
type Operation[L any, R any] struct {
	Kind  OperationKind
	left  L
	right R
	// hasRight distinguishes a genuinely-absent right operand (unary kinds)
	// from a present-but-zero-value one.
	hasRight bool
}

// NewUnaryOperation constructs a unary Operation (is_null / is_not_null).
// Panics if kind is not unary.
func NewUnaryOperation[L any, R any](kind OperationKind, left L) Operation[L, R] {
	if !kind.IsUnary() {
		panic(fmt.Sprintf("ir: %s is not a unary operation", kind.Name()))
	}
	return Operation[L, R]{Kind: kind, left: left}
}

// NewBinaryOperation constructs a binary Operation. Panics if kind is unary.
func NewBinaryOperation[L any, R any](kind OperationKind, left L, right R) Operation[L, R] {
	if kind.IsUnary() {
		panic(fmt.Sprintf("ir: %s is a unary operation, got a right-hand argument", kind.Name()))
	}
	return Operation[L, R]{Kind: kind, left: left, right: right, hasRight: true}
}

// Left returns the operation's subject.
func (o Operation[L, R]) Left() L { return o.left }

// Right returns the operation's right-hand argument, if any.
func (o Operation[L, R]) Right() (R, bool) {
	return o.right, o.hasRight
}

// MapOperation transforms an Operation's left and right payloads into new
// types, keeping Kind fixed. Equivalent to trustfall_core's
// Operation::map/try_map, split into an infallible and fallible form.
func MapOperation[L, R, L2, R2 any](o Operation[L, R], mapLeft func(L) L2, mapRight func(R) R2) Operation[L2, R2] {
	out := Operation[L2, R2]{Kind: o.Kind, left: mapLeft(o.left), hasRight: o.hasRight}
	if o.hasRight {
		out.right = mapRight(o.right)
	}
	return out
}

// TryMapOperation is MapOperation's fallible counterpart: if either mapping
// function returns an error, that error is propagated and no Operation is
// produced.
func TryMapOperation[L, R, L2, R2 any](
	o Operation[L, R],
	mapLeft func(L) (L2, error),
	mapRight func(R) (R2, error),
) (Operation[L2, R2], error) {
	left, err := mapLeft(o.left)
	if err != nil {
		return Operation[L2, R2]{}, err
	}
	out := Operation[L2, R2]{Kind: o.Kind, left: left, hasRight: o.hasRight}
	if o.hasRight {
		right, err := mapRight(o.right)
		if err != nil {
			return Operation[L2, R2]{}, err
		}
		out.right = right
	}
	return out, nil
}

// VariableRef names a query variable supplied by the caller's argument map
// at execution time, along with the type the frontend inferred/checked for
// every use site of that name (after Type.Intersect-ing all of them).
type VariableRef struct {
	VariableName string
	VariableType Type
}

// argumentKind distinguishes Argument's two variants without exposing an
// interface{}-typed field to callers.
type argumentKind int

const (
	argumentKindTag argumentKind = iota
	argumentKindVariable
)

// Argument is the right-hand operand of a binary Operation: either a tagged
// value captured from an earlier point in the query (Tag), or a value
// supplied by the caller at execution time (Variable).
type Argument struct {
	kind     argumentKind
	tag      FieldRef
	variable VariableRef
}

// TagArgument builds an Argument referencing a previously-@tag'd field.
func TagArgument(ref FieldRef) Argument {
	return Argument{kind: argumentKindTag, tag: ref}
}

// VariableArgument builds an Argument referencing a caller-supplied
// variable.
func VariableArgument(ref VariableRef) Argument {
	return Argument{kind: argumentKindVariable, variable: ref}
}

// AsTag returns the tagged FieldRef, if this Argument is a Tag.
func (a Argument) AsTag() (FieldRef, bool) {
	if a.kind != argumentKindTag {
		return nil, false
	}
	return a.tag, true
}

// AsVariable returns the VariableRef, if this Argument is a Variable.
func (a Argument) AsVariable() (VariableRef, bool) {
	if a.kind != argumentKindVariable {
		return VariableRef{}, false
	}
	return a.variable, true
}

func (a Argument) String() string {
	switch a.kind {
	case argumentKindTag:
		return fmt.Sprintf("%%%s", a.tag.FieldName())
	case argumentKindVariable:
		return fmt.Sprintf("$%s", a.variable.VariableName)
	default:
		return "<invalid Argument>"
	}
}

// FilterOperation is the concrete Operation instantiation filters in an
// IRVertex and IRFold.PostFilters carry. Its subject (FieldRef) is normally
// a LocalField or FoldSpecificField, or a TransformedField built on one of
// those — never a ContextField, since a filter's subject is always local to
// the vertex/fold it is attached to; cross-vertex reads only ever appear on
// the argument side, as a Tag.
type FilterOperation = Operation[FieldRef, Argument]
