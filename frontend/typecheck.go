package frontend

import "github.com/obi1kenobi/trustfall-go/ir"

// opName renders an ir.OperationKind the way query syntax and error
// messages spell it, reusing ir.OperationKind.Name so the two never drift.
func opName(k ir.OperationKind) string { return k.Name() }

// checkFilterTypes validates that a filter's subject type and (if any)
// right-hand argument type are compatible with kind's operand category,
// per spec §4.1 step 4. subjectDesc/argDesc are pre-rendered human
// descriptions ("property \"name\" of type \"String\"") used verbatim in
// the returned error.
func checkFilterTypes(kind ir.OperationKind, subjectType ir.Type, subjectDesc string, argType *ir.Type, argDesc string) Error {
	name := opName(kind)

	switch kind {
	case ir.OpIsNull, ir.OpIsNotNull:
		if !subjectType.Nullable() {
			alwaysResult := kind == ir.OpIsNotNull
			return NonNullableTypeFilteredForNullability(name, subjectDesc, alwaysResult)
		}
		return nil
	}

	if argType == nil {
		return nil
	}

	switch kind {
	case ir.OpLessThan, ir.OpLessThanOrEqual, ir.OpGreaterThan, ir.OpGreaterThanOrEqual:
		if !subjectType.IsOrderable() {
			return OrderingFilterOperationOnNonOrderableSubject(name, subjectDesc)
		}
		if !argType.IsOrderable() {
			return OrderingFilterOperationWithNonOrderableArgument(name, argDesc)
		}
	case ir.OpHasPrefix, ir.OpNotHasPrefix, ir.OpHasSuffix, ir.OpNotHasSuffix,
		ir.OpHasSubstring, ir.OpNotHasSubstring, ir.OpRegexMatches, ir.OpNotRegexMatches:
		if !subjectType.IsString() {
			return StringFilterOperationOnNonStringSubject(name, subjectDesc)
		}
		if !argType.IsString() {
			return StringFilterOperationOnNonStringArgument(name, argDesc)
		}
	case ir.OpContains, ir.OpNotContains:
		if !subjectType.IsList() {
			return ListFilterOperationOnNonListSubject(name, subjectDesc)
		}
	case ir.OpOneOf, ir.OpNotOneOf:
		if !argType.IsList() {
			return ListFilterOperationOnNonListArgument(name, argDesc)
		}
	case ir.OpEquals, ir.OpNotEquals:
		if subjectType.Base() != argType.Base() {
			return TypeMismatchBetweenFilterSubjectAndArgument(name, subjectType.String(), argType.String())
		}
	}
	return nil
}

// describeProperty renders a property-like subject for error messages.
func describeProperty(name string, t ir.Type) string {
	return "property \"" + name + "\" of type \"" + t.String() + "\""
}

func describeTag(name string, t ir.Type) string {
	return "tag \"" + name + "\" of type \"" + t.String() + "\""
}

func describeVariable(name string, t ir.Type) string {
	return "variable \"" + name + "\" of type \"" + t.String() + "\""
}
