package frontend

import (
	"github.com/obi1kenobi/trustfall-go/graphqlquery"
	"github.com/obi1kenobi/trustfall-go/ir"
	"github.com/obi1kenobi/trustfall-go/schema"
)

// filterOpByName inverts ir.OperationKind.Name() so the lowerer can turn a
// query's "op" string back into a Kind without exporting operationNames from
// package ir.
var filterOpByName = func() map[string]ir.OperationKind {
	m := make(map[string]ir.OperationKind)
	for k := ir.OpIsNull; k <= ir.OpNotRegexMatches; k++ {
		m[k.Name()] = k
	}
	return m
}()

func parseOperationKind(s string) (ir.OperationKind, bool) {
	k, ok := filterOpByName[s]
	return k, ok
}

// lowerer carries the mutable state threaded through one document's lowering
// pass: the ID allocator (shared across every component, per the single
// shared Vid/Eid/Tid namespace invariant), the variables collected so far,
// the fold nesting stack (for ImportedTags propagation), and every error
// found along the way. Lowering never stops at the first error — it keeps
// walking and collects as many independent problems as it can, the same way
// FrontendError::MultipleErrors is built in the original implementation.
type lowerer struct {
	schema      schema.Schema
	alloc       ir.IDAllocator
	variables   map[string]ir.Type
	outputNames map[string]bool
	tagNames    map[string]bool
	foldStack   []*ir.IRFold
	errors      []Error
}

// defineTag records name's definition in tags, first checking name is not
// already claimed by an earlier @tag elsewhere in the document — tag names
// share one namespace across the whole query (as output names do, see
// registerOutput), which tagTable.define alone has no way to enforce.
func (l *lowerer) defineTag(tags *tagTable, name string, ref ir.FieldRef) {
	if l.tagNames[name] {
		l.errors = append(l.errors, MultipleTagsWithSameName{Name: name})
		return
	}
	l.tagNames[name] = true
	tags.define(name, ref)
}

// Parse parses query's GraphQL-family syntax and lowers it into an IRQuery
// against sch, combining both stages' errors into a single Errors value.
func Parse(sch schema.Schema, query string) (*ir.IRQuery, Error) {
	doc, err := graphqlquery.Parse(query)
	if err != nil {
		return nil, ParseError{Err: err}
	}
	return Lower(sch, doc)
}

// Lower validates and lowers an already-parsed Document against sch.
func Lower(sch schema.Schema, doc *graphqlquery.Document) (*ir.IRQuery, Error) {
	l := &lowerer{
		schema:      sch,
		variables:   make(map[string]ir.Type),
		outputNames: make(map[string]bool),
		tagNames:    make(map[string]bool),
	}

	root := doc.Root
	edgeDef, ok := sch.Field(sch.QueryTypeName(), root.Name)
	if !ok {
		return nil, &Errors{Errors: []Error{
			NewValidationError("query type %q has no root edge named %q", sch.QueryTypeName(), root.Name),
		}}
	}

	rootVid := l.alloc.NextVid()
	comp := ir.NewIRQueryComponent(rootVid)
	comp.Vertices[rootVid] = &ir.IRVertex{Vid: rootVid, TypeName: edgeDef.TargetType}

	params, perrs := l.lowerEdgeParameters(root, edgeDef)
	l.errors = append(l.errors, perrs...)

	all := collectTags(root, nil)
	tags := newTagTable(all)

	l.lowerVertexBody(root, rootVid, comp, tags, nil)

	if unused := tags.unusedTagNames(); len(unused) > 0 {
		l.errors = append(l.errors, UnusedTags{TagNames: unused})
	}

	if len(l.errors) > 0 {
		return nil, &Errors{Errors: l.errors}
	}

	return &ir.IRQuery{
		RootName:       root.Name,
		RootParameters: params,
		RootComponent:  comp,
		Variables:      l.variables,
	}, nil
}

// useVariable records type as a requirement on a query variable, narrowing
// against any previously recorded requirement for the same name via
// ir.Type.Intersect, and returns the (possibly narrowed) type now on record.
func (l *lowerer) useVariable(name string, t ir.Type) ir.Type {
	existing, ok := l.variables[name]
	if !ok {
		l.variables[name] = t
		return t
	}
	merged, ok := existing.Intersect(t)
	if !ok {
		l.errors = append(l.errors, IncompatibleVariableTypeRequirements(name, existing, t))
		return existing
	}
	l.variables[name] = merged
	return merged
}

// recordTagImport marks ref as an imported tag on every fold between
// ownerDepth (the component depth ref was @tag'd at) and the current fold
// nesting depth, since each of those folds' interpreters need the value
// available before they can evaluate.
func (l *lowerer) recordTagImport(ref ir.FieldRef, ownerDepth int) {
	for d := ownerDepth; d < len(l.foldStack); d++ {
		fold := l.foldStack[d]
		already := false
		for _, existing := range fold.ImportedTags {
			if ir.CompareFieldRef(existing, ref) == 0 {
				already = true
				break
			}
		}
		if !already {
			fold.ImportedTags = append(fold.ImportedTags, ref)
		}
	}
}

func (l *lowerer) registerOutput(dest map[string]ir.FieldRef, name string, ref ir.FieldRef) {
	if l.outputNames[name] {
		l.errors = append(l.errors, MultipleOutputsWithSameName{Name: name, Count: 2})
		return
	}
	l.outputNames[name] = true
	dest[name] = ref
}

func (l *lowerer) propertyType(vertexTypeName, propName string) ir.Type {
	if propName == "__typename" {
		return ir.NewNamedType("String", false)
	}
	vt, ok := l.schema.VertexType(vertexTypeName)
	if !ok {
		l.errors = append(l.errors, NewValidationError("unknown type %q", vertexTypeName))
		return ir.NewNamedType("String", true)
	}
	pd, ok := vt.Properties[propName]
	if !ok {
		l.errors = append(l.errors, NewValidationError(
			"type %q has no property named %q", vertexTypeName, propName))
		return ir.NewNamedType("String", true)
	}
	return pd.Type
}

// commonCoercion returns the single non-empty CoercedTo shared by every
// field in selections, or "" if none is set or they disagree. graphqlquery
// flattens `... on Type { ... }` fragments directly into the parent's child
// selections (propagating CoercedTo onto each), so a coercion applied to an
// entire traversed vertex is recovered here rather than read off the edge
// field itself.
func commonCoercion(selections []graphqlquery.Field) string {
	found := ""
	for _, f := range selections {
		if f.CoercedTo == "" {
			continue
		}
		if found == "" {
			found = f.CoercedTo
		} else if found != f.CoercedTo {
			return ""
		}
	}
	return found
}

func describeSubject(ref ir.FieldRef) string {
	switch f := ref.(type) {
	case ir.LocalField:
		return describeProperty(f.PropertyName, f.Type)
	case ir.ContextField:
		return describeProperty(f.PropertyName, f.Type)
	case ir.FoldSpecificField:
		return "fold-specific field \"" + f.Kind.String() + "\""
	case ir.TransformedField:
		return "transformed " + describeSubject(f.Base)
	default:
		return "field"
	}
}

func describeArgument(a graphqlquery.Argument, t *ir.Type) string {
	typ := ir.Type{}
	if t != nil {
		typ = *t
	}
	switch {
	case a.TagName != "":
		return describeTag(a.TagName, typ)
	case a.VariableName != "":
		return describeVariable(a.VariableName, typ)
	default:
		return "argument"
	}
}

// lowerEdgeParameters validates field's call-style arguments against
// edgeDef's declared parameters. Every parameter a schema declares for an
// edge is treated as required: this package's minimal Schema contract (see
// schema.EdgeDefinition) has no notion of an optional parameter with a
// default value.
func (l *lowerer) lowerEdgeParameters(field graphqlquery.Field, edgeDef schema.EdgeDefinition) (*ir.EdgeParameters, []Error) {
	var errs []Error
	seen := make(map[string]bool, len(field.ParamOrder))
	names := make([]string, 0, len(field.ParamOrder))
	values := make(map[string]ir.FieldValue, len(field.ParamOrder))

	for _, name := range field.ParamOrder {
		arg := field.Parameters[name]
		declaredType, ok := edgeDef.Parameters[name]
		if !ok {
			errs = append(errs, UnexpectedEdgeParameter{Parameter: name, Edge: field.Name})
			continue
		}
		if !arg.HasLiteral {
			errs = append(errs, NewOtherError(
				"edge parameter %q on edge %s must be a literal value, not a tag or variable reference",
				name, field.Name))
			continue
		}
		if !declaredType.IsValidValue(arg.Literal) {
			errs = append(errs, InvalidEdgeParameterType{
				Parameter: name, Edge: field.Name, ExpectedType: declaredType.String(), Got: arg.Literal,
			})
			continue
		}
		seen[name] = true
		names = append(names, name)
		values[name] = arg.Literal
	}

	for name := range edgeDef.Parameters {
		if !seen[name] {
			errs = append(errs, MissingRequiredEdgeParameter{Parameter: name, Edge: field.Name})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	if len(names) == 0 {
		return nil, nil
	}
	return ir.NewEdgeParameters(names, values), nil
}

// lowerVertexBody processes every selection under field (already known to be
// the vertex at vid within comp), routing each to lowerProperty or lowerEdge.
func (l *lowerer) lowerVertexBody(field graphqlquery.Field, vid ir.Vid, comp *ir.IRQueryComponent, tags *tagTable, foldPath []int) {
	vertex := comp.Vertices[vid]
	for _, sel := range field.Selections {
		// An edge may be written without a selection set (e.g. a
		// `@fold @transform(op: "count")` edge), so the schema is consulted too.
		_, isSchemaEdge := l.schema.Field(vertex.TypeName, sel.Name)
		if sel.IsEdge() || isSchemaEdge {
			l.lowerEdge(sel, vid, comp, tags, foldPath)
		} else {
			l.lowerProperty(sel, vertex, comp, tags, foldPath)
		}
	}
}

// collectTransformChain walks field's @transform directives in document
// order, type-checking each against the running result type starting from
// inputType, and returns the resulting step list (nil if there are none)
// plus the final type. Split out from buildTransforms/applyTransforms so a
// property that is both @transform'd and @tag'd can apply one computed chain
// to two different TransformBase values (see lowerProperty) without
// re-validating it, and therefore without double-reporting any type error.
func (l *lowerer) collectTransformChain(field graphqlquery.Field, inputType ir.Type, tags *tagTable, foldPath []int) ([]ir.Transform, ir.Type) {
	curType := inputType
	var transforms []ir.Transform
	for _, d := range field.Directives {
		if d.Name != "transform" {
			continue
		}
		t, err := l.transformFromDirective(d, curType, tags, foldPath, field.Pos, field.Name)
		if err != nil {
			l.errors = append(l.errors, err)
			continue
		}
		resultType, rerr := t.ResultType(curType)
		if rerr != nil {
			l.errors = append(l.errors, TransformOnIncompatibleType(t.TransformName(), curType.String(), rerr))
			continue
		}
		curType = resultType
		transforms = append(transforms, t)
	}
	return transforms, curType
}

// applyTransforms wraps base in a TransformedField carrying transforms, or
// returns base unchanged if transforms is empty.
func (l *lowerer) applyTransforms(base ir.TransformBase, transforms []ir.Transform, resultType ir.Type) ir.FieldRef {
	if len(transforms) == 0 {
		return base
	}
	tid := l.alloc.NextTid()
	return ir.TransformedField{Tid: tid, Base: base, Transforms: transforms, Type: resultType}
}

// buildTransforms collects and applies field's @transform chain onto base in
// one step; used wherever only one TransformBase is ever needed (a fold's
// count aggregate, which has no Local/Context split — see lowerFoldCount).
func (l *lowerer) buildTransforms(field graphqlquery.Field, base ir.TransformBase, tags *tagTable, foldPath []int) ir.FieldRef {
	transforms, resultType := l.collectTransformChain(field, base.FieldType(), tags, foldPath)
	return l.applyTransforms(base, transforms, resultType)
}

func (l *lowerer) transformFromDirective(d graphqlquery.Directive, inputType ir.Type, tags *tagTable, foldPath []int, pos graphqlquery.Pos, subjectName string) (ir.Transform, Error) {
	opArg, ok := d.Arg("op")
	if !ok || !opArg.HasLiteral {
		return nil, NewOtherError("@transform requires an \"op\" argument")
	}
	opStr, _ := opArg.Literal.AsString()
	switch opStr {
	case "count":
		// "count" is only meaningful directly after @fold, where lowerEdge
		// handles it via lowerFoldCount before collectTransformChain ever
		// runs; reaching this case means it was applied to a property.
		return nil, FoldSpecificTransformUsedOnProperty(subjectName)
	case "len":
		return ir.LenTransform{}, nil
	case "abs":
		return ir.AbsTransform{}, nil
	case "add":
		valArg, ok := d.Arg("value")
		if !ok {
			return nil, NewOtherError("transform \"add\" requires a value argument")
		}
		operand := valArg
		if valArg.IsList {
			if len(valArg.List) == 0 {
				return nil, NewOtherError("transform \"add\" was given an empty value list")
			}
			operand = valArg.List[0]
		}
		argument, aerr := l.resolveTransformArgument(operand, tags, foldPath, pos, inputType)
		if aerr != nil {
			return nil, aerr
		}
		return ir.AddTransform{Addend: argument}, nil
	default:
		return nil, NewOtherError("unknown transform operator %q", opStr)
	}
}

func (l *lowerer) resolveTransformArgument(a graphqlquery.Argument, tags *tagTable, foldPath []int, pos graphqlquery.Pos, inputType ir.Type) (ir.Argument, Error) {
	switch {
	case a.TagName != "":
		ref, depth, ok := tags.resolveWithDepth(a.TagName)
		if !ok {
			def := tags.diagnoseMissing("transform", a.TagName, foldPath, pos)
			if _, isUndefined := def.(UndefinedTagInFilter); isUndefined {
				return ir.Argument{}, UndefinedTagInTransform{Subject: "transform", TagName: a.TagName}
			}
			return ir.Argument{}, def
		}
		l.recordTagImport(ref, depth)
		return ir.TagArgument(ref), nil
	case a.VariableName != "":
		t := l.useVariable(a.VariableName, inputType)
		return ir.VariableArgument(ir.VariableRef{VariableName: a.VariableName, VariableType: t}), nil
	default:
		return ir.Argument{}, NewOtherError("transform argument must be a %%tag or $variable reference, not a literal")
	}
}

// lowerProperty lowers one property field: its @transform chain (if any),
// then @tag/@output/@filter directives referencing the resulting FieldRef.
func (l *lowerer) lowerProperty(field graphqlquery.Field, vertex *ir.IRVertex, comp *ir.IRQueryComponent, tags *tagTable, foldPath []int) {
	for _, forbidden := range []string{"fold", "optional", "recurse"} {
		if _, ok := field.Directive(forbidden); ok {
			l.errors = append(l.errors, UnsupportedDirectiveOnProperty{Directive: "@" + forbidden, Property: field.Name})
		}
	}

	propType := l.propertyType(vertex.TypeName, field.Name)
	localBase := ir.LocalField{PropertyName: field.Name, Type: propType}
	chain, resultType := l.collectTransformChain(field, propType, tags, foldPath)
	ref := l.applyTransforms(localBase, chain, resultType)

	// A tag or output must remain resolvable against a specific vertex once
	// the interpreter is several edges away from it — a component can span
	// several vertices, so the bare LocalField above (which, per its doc
	// comment, only makes sense as "the vertex currently being evaluated")
	// cannot serve either one. Both build a second, ContextField-rooted ref
	// from the same validated transform chain; only the @filter subject
	// above stays LocalField, since a filter is always evaluated against the
	// vertex it is declared on.
	var ctxRef ir.FieldRef
	var ctxRefBuilt bool
	buildCtxRef := func() ir.FieldRef {
		if !ctxRefBuilt {
			ctxBase := ir.ContextField{VertexID: vertex.Vid, PropertyName: field.Name, Type: propType}
			ctxRef = l.applyTransforms(ctxBase, chain, resultType)
			ctxRefBuilt = true
		}
		return ctxRef
	}

	if d, ok := field.Directive("tag"); ok {
		tagRef := buildCtxRef()
		if _, isTransformed := tagRef.(ir.TransformedField); isTransformed {
			if arg, ok2 := d.Arg("name"); !ok2 || !arg.HasLiteral {
				l.errors = append(l.errors, ExplicitTagNameRequired{Subject: describeSubject(tagRef)})
			}
		}
		l.defineTag(tags, tagNameFor(field), tagRef)
	}

	if d, ok := field.Directive("output"); ok {
		name := field.Alias
		if arg, ok2 := d.Arg("name"); ok2 && arg.HasLiteral {
			if s, ok3 := arg.Literal.AsString(); ok3 {
				name = s
			}
		}
		l.registerOutput(comp.Outputs, name, buildCtxRef())
	}

	for _, d := range field.Directives {
		if d.Name != "filter" {
			continue
		}
		if op := l.lowerFilter(d, ref, tags, foldPath, field.Pos); op != nil {
			vertex.Filters = append(vertex.Filters, *op)
		}
	}
}

// lowerFilter builds one FilterOperation from a @filter directive applied to
// subject.
func (l *lowerer) lowerFilter(d graphqlquery.Directive, subject ir.FieldRef, tags *tagTable, foldPath []int, pos graphqlquery.Pos) *ir.FilterOperation {
	opArg, ok := d.Arg("op")
	if !ok || !opArg.HasLiteral {
		l.errors = append(l.errors, NewOtherError("@filter requires an \"op\" argument"))
		return nil
	}
	opStr, _ := opArg.Literal.AsString()
	kind, ok := parseOperationKind(opStr)
	if !ok {
		l.errors = append(l.errors, NewOtherError("unknown filter operator %q", opStr))
		return nil
	}

	subjectDesc := describeSubject(subject)

	if kind.IsUnary() {
		if err := checkFilterTypes(kind, subject.FieldType(), subjectDesc, nil, ""); err != nil {
			l.errors = append(l.errors, err)
		}
		op := ir.NewUnaryOperation[ir.FieldRef, ir.Argument](kind, subject)
		return &op
	}

	valArg, ok := d.Arg("value")
	if !ok || !valArg.IsList || len(valArg.List) == 0 {
		l.errors = append(l.errors, NewOtherError("filter operation %q requires a value argument", opStr))
		return nil
	}
	operand := valArg.List[0]
	argument, argType, aerr := l.resolveFilterArgument(operand, subject.FieldType(), subjectDesc, tags, foldPath, pos)
	if aerr != nil {
		l.errors = append(l.errors, aerr)
		return nil
	}

	if err := checkFilterTypes(kind, subject.FieldType(), subjectDesc, argType, describeArgument(operand, argType)); err != nil {
		l.errors = append(l.errors, err)
	}

	op := ir.NewBinaryOperation[ir.FieldRef, ir.Argument](kind, subject, argument)
	return &op
}

// resolveFilterArgument resolves a @filter value list's single element
// (always a %tag or $variable reference in this query surface — see
// graphqlquery.Argument's doc comment) into an ir.Argument, along with the
// type now on record for it.
func (l *lowerer) resolveFilterArgument(a graphqlquery.Argument, subjectType ir.Type, subjectDesc string, tags *tagTable, foldPath []int, pos graphqlquery.Pos) (ir.Argument, *ir.Type, Error) {
	switch {
	case a.TagName != "":
		ref, depth, ok := tags.resolveWithDepth(a.TagName)
		if !ok {
			return ir.Argument{}, nil, tags.diagnoseMissing(subjectDesc, a.TagName, foldPath, pos)
		}
		l.recordTagImport(ref, depth)
		t := ref.FieldType()
		return ir.TagArgument(ref), &t, nil
	case a.VariableName != "":
		t := l.useVariable(a.VariableName, subjectType)
		return ir.VariableArgument(ir.VariableRef{VariableName: a.VariableName, VariableType: t}), &t, nil
	default:
		return ir.Argument{}, nil, NewOtherError(
			"filter value must be a %%tag or $variable reference, not a literal")
	}
}

// lowerEdge lowers one edge traversal, dispatching to a plain IREdge or a
// nested IRFold component depending on whether @fold is present.
func (l *lowerer) lowerEdge(field graphqlquery.Field, fromVid ir.Vid, comp *ir.IRQueryComponent, tags *tagTable, foldPath []int) {
	fromVertex := comp.Vertices[fromVid]
	edgeDef, ok := l.schema.Field(fromVertex.TypeName, field.Name)
	if !ok {
		if field.Name == "__typename" {
			l.errors = append(l.errors, PropertyMetaFieldUsedAsEdge{Field: field.Name})
		} else {
			l.errors = append(l.errors, NewValidationError(
				"type %q has no edge named %q", fromVertex.TypeName, field.Name))
		}
		return
	}

	_, isFold := field.Directive("fold")
	_, isOptional := field.Directive("optional")
	recurseDir, isRecurse := field.Directive("recurse")

	hasCountTransform := false
	if isFold {
		var transformDirs []graphqlquery.Directive
		for _, d := range field.Directives {
			if d.Name == "transform" {
				transformDirs = append(transformDirs, d)
			}
		}
		if len(transformDirs) > 0 {
			firstOp := ""
			if opArg, ok := transformDirs[0].Arg("op"); ok && opArg.HasLiteral {
				firstOp, _ = opArg.Literal.AsString()
			}
			if firstOp == "count" {
				hasCountTransform = true
				countTransforms := 0
				for _, d := range transformDirs {
					if opArg, ok := d.Arg("op"); ok && opArg.HasLiteral {
						if s, ok := opArg.Literal.AsString(); ok && s == "count" {
							countTransforms++
						}
					}
				}
				if countTransforms > 1 {
					l.errors = append(l.errors, DuplicatedCountTransformOnEdge(field.Name))
				}
			} else {
				// The only @transform legal immediately after @fold is
				// "count"; anything else here is rejected outright rather
				// than silently dropped.
				l.errors = append(l.errors, UnsupportedTransformUsedOnEdge(firstOp, field.Name))
			}
		}
	}

	if !hasCountTransform {
		if _, has := field.Directive("output"); has {
			l.errors = append(l.errors, UnsupportedEdgeOutput{Edge: field.Name})
		}
		if _, has := field.Directive("tag"); has {
			l.errors = append(l.errors, UnsupportedEdgeTag{Edge: field.Name})
		}
		for _, d := range field.Directives {
			if d.Name == "filter" {
				l.errors = append(l.errors, UnsupportedEdgeFilter{Edge: field.Name})
				break
			}
		}
	}

	if isFold {
		if isOptional {
			l.errors = append(l.errors, UnsupportedDirectiveOnFoldedEdge{Edge: field.Name, Directive: "@optional"})
		}
		if isRecurse {
			l.errors = append(l.errors, UnsupportedDirectiveOnFoldedEdge{Edge: field.Name, Directive: "@recurse"})
		}
	}

	params, perrs := l.lowerEdgeParameters(field, edgeDef)
	l.errors = append(l.errors, perrs...)

	eid := l.alloc.NextEid()
	toVid := l.alloc.NextVid()

	destinationType := edgeDef.TargetType
	actualType := destinationType
	var coercedFrom *string
	if coerced := commonCoercion(field.Selections); coerced != "" && coerced != destinationType {
		if !l.schema.IsNamedTypeSubtype(coerced, destinationType) {
			l.errors = append(l.errors, NewValidationError(
				"cannot coerce edge %q destination type %q to unrelated type %q",
				field.Name, destinationType, coerced))
		} else {
			actualType = coerced
			d := destinationType
			coercedFrom = &d
		}
	}

	var recursive *ir.Recursive
	if isRecurse {
		depth := uint64(0)
		if depthArg, ok := recurseDir.Arg("depth"); ok && depthArg.HasLiteral {
			if n, ok := depthArg.Literal.AsInt64(); ok {
				depth = uint64(n)
			} else if u, ok := depthArg.Literal.AsUint64(); ok {
				depth = u
			}
		}
		coerceTo, rerr := recurseCoercion(l.schema, fromVertex.TypeName, destinationType, field.Name)
		if rerr != nil {
			l.errors = append(l.errors, rerr)
		}
		recursive = &ir.Recursive{Depth: depth, CoerceTo: coerceTo}
	}

	if isFold {
		childComp := ir.NewIRQueryComponent(toVid)
		childComp.Vertices[toVid] = &ir.IRVertex{Vid: toVid, TypeName: actualType, CoercedFromType: coercedFrom}
		fold := &ir.IRFold{
			Eid: eid, FromVid: fromVid, ToVid: toVid, EdgeName: field.Name, Parameters: params,
			Component:           childComp,
			FoldSpecificOutputs: make(map[string]ir.FieldRef),
		}
		comp.Folds[eid] = fold

		l.foldStack = append(l.foldStack, fold)
		tags.pushComponent()
		childFoldPath := append(append([]int(nil), foldPath...), field.Pos.Index)

		if hasCountTransform {
			l.lowerFoldCount(field, fold, tags, childFoldPath)
		}
		l.lowerVertexBody(field, toVid, childComp, tags, childFoldPath)

		tags.popComponent()
		l.foldStack = l.foldStack[:len(l.foldStack)-1]
	} else {
		comp.Vertices[toVid] = &ir.IRVertex{Vid: toVid, TypeName: actualType, CoercedFromType: coercedFrom}
		comp.Edges[eid] = &ir.IREdge{
			Eid: eid, FromVid: fromVid, ToVid: toVid, EdgeName: field.Name,
			Parameters: params, Optional: isOptional, Recursive: recursive,
		}
		l.lowerVertexBody(field, toVid, comp, tags, foldPath)
	}
}

// lowerFoldCount handles `@fold @transform(op: "count") ...`: it builds the
// fold's _x_count FieldRef (chaining any further @transform steps stacked
// after the count onto it), then applies whatever @tag/@output/@filter
// directives are attached to the same edge field, which in this shape target
// the count rather than the edge itself.
func (l *lowerer) lowerFoldCount(field graphqlquery.Field, fold *ir.IRFold, tags *tagTable, foldPath []int) {
	var transformDirs []graphqlquery.Directive
	for _, d := range field.Directives {
		if d.Name == "transform" {
			transformDirs = append(transformDirs, d)
		}
	}

	base := ir.FoldSpecificField{FoldEid: fold.Eid, FoldRootVid: fold.FromVid, Kind: ir.FoldSpecificCount}
	var ref ir.FieldRef = base
	curType := base.FieldType()
	var chain []ir.Transform
	for _, d := range transformDirs[1:] {
		if opArg, ok := d.Arg("op"); ok && opArg.HasLiteral {
			if s, ok := opArg.Literal.AsString(); ok && s == "count" {
				// Already flagged as DuplicatedCountTransformOnEdge by
				// lowerEdge; skip re-processing it here so it isn't also
				// misreported as a fold-specific-transform-on-property.
				continue
			}
		}
		t, terr := l.transformFromDirective(d, curType, tags, foldPath, field.Pos, field.Name)
		if terr != nil {
			l.errors = append(l.errors, terr)
			continue
		}
		resultType, rerr := t.ResultType(curType)
		if rerr != nil {
			l.errors = append(l.errors, TransformOnIncompatibleType(t.TransformName(), curType.String(), rerr))
			continue
		}
		curType = resultType
		chain = append(chain, t)
	}
	if len(chain) > 0 {
		tid := l.alloc.NextTid()
		ref = ir.TransformedField{Tid: tid, Base: base, Transforms: chain, Type: curType}
	}

	if d, ok := field.Directive("tag"); ok {
		if _, isTransformed := ref.(ir.TransformedField); isTransformed {
			if arg, ok2 := d.Arg("name"); !ok2 || !arg.HasLiteral {
				l.errors = append(l.errors, ExplicitTagNameRequired{Subject: describeSubject(ref)})
			}
		}
		l.defineTag(tags, tagNameFor(field), ref)
	}

	if d, ok := field.Directive("output"); ok {
		name := field.Alias
		if arg, ok2 := d.Arg("name"); ok2 && arg.HasLiteral {
			if s, ok3 := arg.Literal.AsString(); ok3 {
				name = s
			}
		}
		l.registerOutput(fold.FoldSpecificOutputs, name, ref)
	}

	for _, d := range field.Directives {
		if d.Name != "filter" {
			continue
		}
		if op := l.lowerFilter(d, ref, tags, foldPath, field.Pos); op != nil {
			fold.PostFilters = append(fold.PostFilters, *op)
		}
	}
}
