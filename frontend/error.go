// Package frontend parses a query document, validates it against a schema,
// and lowers it into an ir.IRQuery.
package frontend

import (
	"fmt"
	"strings"

	"github.com/obi1kenobi/trustfall-go/ir"
)

// Error is the sealed family of errors the frontend can return. Every
// concrete type below implements it; callers type-switch on the concrete
// type when they need to distinguish error categories (e.g. to decide
// whether a mistake is user-fixable query syntax vs. a schema mismatch),
// the same way callers of graph.DeltaError compare against sentinel Err
// values rather than parsing Error() strings.
type Error interface {
	error
	isFrontendError()
}

// Errors wraps one or more Errors collected during a single pass, mirroring
// FrontendError::MultipleErrors: the frontend tries to report every
// independent problem it finds in one pass rather than stopping at the
// first.
type Errors struct {
	Errors []Error
}

func (e *Errors) Error() string {
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}
func (e *Errors) isFrontendError() {}

// Unwrap exposes the individual errors to errors.Is/As.
func (e *Errors) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err
	}
	return out
}

// ParseError wraps a failure from the graphqlquery parser.
type ParseError struct{ Err error }

func (e ParseError) Error() string { return e.Err.Error() }
func (ParseError) isFrontendError() {}

// UndefinedTagInFilter reports a @filter referencing a %tag_name that was
// never @tag'd anywhere in the query.
type UndefinedTagInFilter struct {
	Subject string
	TagName string
}

func (e UndefinedTagInFilter) Error() string {
	return fmt.Sprintf("filter on %s uses undefined tag: %%%s", e.Subject, e.TagName)
}
func (UndefinedTagInFilter) isFrontendError() {}

// UndefinedTagInTransform reports a @transform's "add" argument referencing
// an undefined tag.
type UndefinedTagInTransform struct {
	Subject string
	TagName string
}

func (e UndefinedTagInTransform) Error() string {
	return fmt.Sprintf("transform on %s uses undefined tag: %%%s", e.Subject, e.TagName)
}
func (UndefinedTagInTransform) isFrontendError() {}

// TagUsedBeforeDefinition reports a %tag_name used earlier in the query
// (in document order) than its defining @tag directive.
type TagUsedBeforeDefinition struct {
	Subject string
	TagName string
}

func (e TagUsedBeforeDefinition) Error() string {
	return fmt.Sprintf(
		"an operation on %s uses tag %q which is not yet defined at that point in the query; "+
			"reorder the query so the @tag directive comes before all uses of its tagged value",
		e.Subject, e.TagName)
}
func (TagUsedBeforeDefinition) isFrontendError() {}

// TagUsedOutsideItsFoldedSubquery reports a tag defined inside a @fold being
// referenced by a filter outside that fold.
type TagUsedOutsideItsFoldedSubquery struct {
	Subject string
	TagName string
}

func (e TagUsedOutsideItsFoldedSubquery) Error() string {
	return fmt.Sprintf(
		"tag %q is defined within a @fold but is used outside that @fold in a filter on %s",
		e.TagName, e.Subject)
}
func (TagUsedOutsideItsFoldedSubquery) isFrontendError() {}

// UnusedTags reports @tag directives whose tagged value is never read by
// any filter/transform.
type UnusedTags struct{ TagNames []string }

func (e UnusedTags) Error() string {
	return fmt.Sprintf("one or more @tag directives were never used: %v", e.TagNames)
}
func (UnusedTags) isFrontendError() {}

// MultipleOutputsWithSameName reports two or more @output directives
// sharing a name.
type MultipleOutputsWithSameName struct {
	Name  string
	Count int
}

func (e MultipleOutputsWithSameName) Error() string {
	return fmt.Sprintf("multiple fields (%d) are output under the same name: %q", e.Count, e.Name)
}
func (MultipleOutputsWithSameName) isFrontendError() {}

// MultipleTagsWithSameName reports two or more @tag directives sharing a
// name.
type MultipleTagsWithSameName struct{ Name string }

func (e MultipleTagsWithSameName) Error() string {
	return fmt.Sprintf("multiple fields have @tag directives with the same name: %q", e.Name)
}
func (MultipleTagsWithSameName) isFrontendError() {}

// ExplicitTagNameRequired reports a @tag on a @transform'd field with no
// explicit name argument; transformed fields cannot be auto-named the way
// plain properties can.
type ExplicitTagNameRequired struct{ Subject string }

func (e ExplicitTagNameRequired) Error() string {
	return fmt.Sprintf(
		"tagged fields with an applied @transform must explicitly specify the tag name, "+
			"like @tag(name: \"some_name\"); affected location: %s", e.Subject)
}
func (ExplicitTagNameRequired) isFrontendError() {}

// FilterTypeError is the sub-family of type errors specific to @filter.
type FilterTypeError struct {
	Op      string
	Detail  string
	message string
}

func (e FilterTypeError) Error() string { return e.message }
func (FilterTypeError) isFrontendError() {}

func newFilterTypeError(op, message string) FilterTypeError {
	return FilterTypeError{Op: op, message: message}
}

// IncompatibleVariableTypeRequirements reports a variable used at two sites
// requiring incompatible types (ir.Type.Intersect returned ok=false).
func IncompatibleVariableTypeRequirements(variable string, t1, t2 ir.Type) FilterTypeError {
	return newFilterTypeError("", fmt.Sprintf(
		"variable %q is used in multiple places requiring incompatible types %q and %q; "+
			"split the uses into separate variables", variable, t1, t2))
}

// NonNullableTypeFilteredForNullability reports is_null/is_not_null applied
// to a non-nullable subject, which is always true or always false.
func NonNullableTypeFilteredForNullability(op, subject string, alwaysResult bool) FilterTypeError {
	return newFilterTypeError(op, fmt.Sprintf(
		"filter operation %q is applied on non-nullable %s; the result would always be %v",
		op, subject, alwaysResult))
}

// TypeMismatchBetweenFilterSubjectAndArgument reports a binary filter
// comparing incompatible subject/argument types.
func TypeMismatchBetweenFilterSubjectAndArgument(op, subjectType, argType string) FilterTypeError {
	return newFilterTypeError(op, fmt.Sprintf(
		"filter operation %q is comparing values of incompatible type: %s versus %s",
		op, subjectType, argType))
}

// OrderingFilterOperationOnNonOrderableSubject reports <,<=,>,>= applied to
// a non-orderable subject.
func OrderingFilterOperationOnNonOrderableSubject(op, subject string) FilterTypeError {
	return newFilterTypeError(op, fmt.Sprintf(
		"filter operation %q can only be applied to orderable values, but is applied to %s",
		op, subject))
}

// OrderingFilterOperationWithNonOrderableArgument is the argument-side
// counterpart of OrderingFilterOperationOnNonOrderableSubject.
func OrderingFilterOperationWithNonOrderableArgument(op, argument string) FilterTypeError {
	return newFilterTypeError(op, fmt.Sprintf(
		"filter operation %q requires an argument that supports ordering comparisons, "+
			"but is being used with non-orderable %s", op, argument))
}

// StringFilterOperationOnNonStringSubject reports has_prefix/has_suffix/
// has_substring/regex applied to a non-String subject.
func StringFilterOperationOnNonStringSubject(op, subject string) FilterTypeError {
	return newFilterTypeError(op, fmt.Sprintf(
		"filter operation %q can only be applied to string values, but is applied to %s",
		op, subject))
}

// StringFilterOperationOnNonStringArgument is the argument-side counterpart.
func StringFilterOperationOnNonStringArgument(op, argument string) FilterTypeError {
	return newFilterTypeError(op, fmt.Sprintf(
		"filter operation %q requires an argument of string type, but is being used with non-string %s",
		op, argument))
}

// ListFilterOperationOnNonListSubject reports contains/not_contains applied
// to a non-list subject.
func ListFilterOperationOnNonListSubject(op, subject string) FilterTypeError {
	return newFilterTypeError(op, fmt.Sprintf(
		"filter operation %q can only be applied to list values, but is applied to %s",
		op, subject))
}

// ListFilterOperationOnNonListArgument reports one_of/not_one_of applied to
// a non-list argument.
func ListFilterOperationOnNonListArgument(op, argument string) FilterTypeError {
	return newFilterTypeError(op, fmt.Sprintf(
		"filter operation %q requires an argument of list type, but is being used with non-list %s",
		op, argument))
}

// TransformTypeError is the sub-family of type errors specific to
// @transform.
type TransformTypeError struct {
	Transform string
	message   string
}

func (e TransformTypeError) Error() string { return e.message }
func (TransformTypeError) isFrontendError() {}

// TransformOnIncompatibleType reports a @transform applied to a type its
// ResultType rejected (e.g. "len" on a non-list, non-string value).
func TransformOnIncompatibleType(transformName, inputType string, cause error) TransformTypeError {
	return TransformTypeError{
		Transform: transformName,
		message: fmt.Sprintf(
			"transform %q cannot be applied to type %s: %v", transformName, inputType, cause),
	}
}

// FoldSpecificTransformUsedOnProperty reports @transform(op: "count") used on
// a plain property rather than directly after a folded edge, where "count"
// is meaningless.
func FoldSpecificTransformUsedOnProperty(propertyName string) TransformTypeError {
	return TransformTypeError{
		Transform: "count",
		message: fmt.Sprintf(
			"transform operation \"count\" may only be applied to edges marked @fold, "+
				"but is used on property %q", propertyName),
	}
}

// DuplicatedCountTransformOnEdge reports a folded edge with more than one
// @transform(op: "count") directive applied to it.
func DuplicatedCountTransformOnEdge(edgeName string) TransformTypeError {
	return TransformTypeError{
		Transform: "count",
		message: fmt.Sprintf(
			"folded edge %q has more than one @transform(op: \"count\") directive applied to "+
				"it; remove all but the first", edgeName),
	}
}

// UnsupportedTransformUsedOnEdge reports a non-"count" @transform directive
// applied directly to a folded edge; @transform(op: "count") is the only
// transform legal immediately after @fold.
func UnsupportedTransformUsedOnEdge(transformOp, edgeName string) TransformTypeError {
	return TransformTypeError{
		Transform: transformOp,
		message: fmt.Sprintf(
			"transform operation %q is not supported on edges, but was applied to folded edge "+
				"%q; did you mean @transform(op: \"count\") instead?", transformOp, edgeName),
	}
}

// UnsupportedDirectiveOnProperty reports a directive that is only legal on
// edges (e.g. @fold, @optional, @recurse) being found on a property.
type UnsupportedDirectiveOnProperty struct {
	Directive string
	Property  string
}

func (e UnsupportedDirectiveOnProperty) Error() string {
	return fmt.Sprintf(
		"found %s applied to %q property, which is not supported since that directive "+
			"can only be applied to edges", e.Directive, e.Property)
}
func (UnsupportedDirectiveOnProperty) isFrontendError() {}

// UnsupportedEdgeOutput reports @output on an edge.
type UnsupportedEdgeOutput struct{ Edge string }

func (e UnsupportedEdgeOutput) Error() string {
	return fmt.Sprintf("found an edge with an @output directive, this is not supported: %s", e.Edge)
}
func (UnsupportedEdgeOutput) isFrontendError() {}

// UnsupportedEdgeFilter reports @filter on an edge.
type UnsupportedEdgeFilter struct{ Edge string }

func (e UnsupportedEdgeFilter) Error() string {
	return fmt.Sprintf("found an edge with an unsupported @filter directive: %s", e.Edge)
}
func (UnsupportedEdgeFilter) isFrontendError() {}

// UnsupportedEdgeTag reports @tag on an edge.
type UnsupportedEdgeTag struct{ Edge string }

func (e UnsupportedEdgeTag) Error() string {
	return fmt.Sprintf("found an edge with an unsupported @tag directive: %s", e.Edge)
}
func (UnsupportedEdgeTag) isFrontendError() {}

// UnsupportedDirectiveOnFoldedEdge reports a directive that cannot coexist
// with @fold on the same edge (e.g. @optional, @recurse).
type UnsupportedDirectiveOnFoldedEdge struct {
	Edge      string
	Directive string
}

func (e UnsupportedDirectiveOnFoldedEdge) Error() string {
	return fmt.Sprintf(
		"found an unsupported %s directive on an edge with @fold: %s", e.Directive, e.Edge)
}
func (UnsupportedDirectiveOnFoldedEdge) isFrontendError() {}

// MissingRequiredEdgeParameter reports an edge invoked without a
// schema-required parameter.
type MissingRequiredEdgeParameter struct {
	Parameter string
	Edge      string
}

func (e MissingRequiredEdgeParameter) Error() string {
	return fmt.Sprintf("missing required edge parameter %q on edge %s", e.Parameter, e.Edge)
}
func (MissingRequiredEdgeParameter) isFrontendError() {}

// UnexpectedEdgeParameter reports a parameter the schema does not declare
// for that edge.
type UnexpectedEdgeParameter struct {
	Parameter string
	Edge      string
}

func (e UnexpectedEdgeParameter) Error() string {
	return fmt.Sprintf("unexpected edge parameter %q on edge %s", e.Parameter, e.Edge)
}
func (UnexpectedEdgeParameter) isFrontendError() {}

// InvalidEdgeParameterType reports an edge parameter whose supplied value
// does not conform to its declared type.
type InvalidEdgeParameterType struct {
	Parameter    string
	Edge         string
	ExpectedType string
	Got          ir.FieldValue
}

func (e InvalidEdgeParameterType) Error() string {
	return fmt.Sprintf(
		"invalid value for edge parameter %q on edge %s: expected a value of type %s, but got: %v",
		e.Parameter, e.Edge, e.ExpectedType, e.Got)
}
func (InvalidEdgeParameterType) isFrontendError() {}

// RecursingNonRecursableEdge reports @recurse on an edge whose source and
// destination types are unrelated in the schema's subtype lattice.
type RecursingNonRecursableEdge struct {
	Edge, SourceType, DestinationType string
}

func (e RecursingNonRecursableEdge) Error() string {
	return fmt.Sprintf(
		"invalid use of @recurse on edge %q: it connects two unrelated vertex types: %s %s",
		e.Edge, e.SourceType, e.DestinationType)
}
func (RecursingNonRecursableEdge) isFrontendError() {}

// RecursionToSubtype reports @recurse on an edge whose destination type is
// a strict subtype of the source type (case 2 of the recursion legality
// analysis): recursing may land on a narrower type than the edge started
// from.
type RecursionToSubtype struct {
	Edge, SourceType, DestinationType string
}

func (e RecursionToSubtype) Error() string {
	return fmt.Sprintf(
		"invalid use of @recurse on edge %q: it is recursed from a vertex of type %s and "+
			"points to %s, a subtype of %s; recursion to a subtype is not allowed since the "+
			"starting vertex might not match that type — consider a type coercion like "+
			"\"... on %s\"",
		e.Edge, e.SourceType, e.DestinationType, e.SourceType, e.DestinationType)
}
func (RecursionToSubtype) isFrontendError() {}

// AmbiguousOriginEdgeRecursion reports case 4d: the recursed edge is
// inherited from two or more unrelated ancestor interfaces, so it is
// unclear which implicit coercion recursion should use.
type AmbiguousOriginEdgeRecursion struct{ Edge string }

func (e AmbiguousOriginEdgeRecursion) Error() string {
	return fmt.Sprintf("edge %q has an ambiguous origin, and cannot be used for recursion", e.Edge)
}
func (AmbiguousOriginEdgeRecursion) isFrontendError() {}

// EdgeRecursionNeedingMultipleCoercions reports case 4b/4c-fail: making the
// recursion legal would require more than one implicit type coercion,
// which is not supported.
type EdgeRecursionNeedingMultipleCoercions struct{ Edge string }

func (e EdgeRecursionNeedingMultipleCoercions) Error() string {
	return fmt.Sprintf(
		"edge %q is used for recursion that requires multiple implicit coercions, "+
			"which is not supported", e.Edge)
}
func (EdgeRecursionNeedingMultipleCoercions) isFrontendError() {}

// PropertyMetaFieldUsedAsEdge reports `__typename { ... }` (a meta-field
// that is always a property, used with a selection set as if it were an
// edge).
type PropertyMetaFieldUsedAsEdge struct{ Field string }

func (e PropertyMetaFieldUsedAsEdge) Error() string {
	return fmt.Sprintf("meta field %q is a property but the query uses it as an edge", e.Field)
}
func (PropertyMetaFieldUsedAsEdge) isFrontendError() {}

// ValidationError is the sub-family of errors raised while validating a
// query document against the schema, before lowering begins.
type ValidationError struct{ message string }

func (e ValidationError) Error() string { return e.message }
func (ValidationError) isFrontendError() {}

// NewValidationError constructs a ValidationError with a pre-rendered
// message; used by the schema-validation pass for the many distinct checks
// it performs (unknown field, unknown type coercion target, coercion on a
// non-interface, etc.) without needing one Go type per check.
func NewValidationError(format string, args ...interface{}) ValidationError {
	return ValidationError{message: fmt.Sprintf(format, args...)}
}

// OtherError is an escape hatch for failures that do not fit any of the
// above categories.
type OtherError struct{ message string }

func (e OtherError) Error() string { return e.message }
func (OtherError) isFrontendError() {}

func NewOtherError(format string, args ...interface{}) OtherError {
	return OtherError{message: fmt.Sprintf(format, args...)}
}
