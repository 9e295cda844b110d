// Package graphqlquery parses a Trustfall query document's GraphQL-family
// syntax into a positioned tree the frontend can walk, without attempting
// to understand any of Trustfall's directive semantics itself — it only
// recognizes the directive shapes (@filter, @tag, @output, @optional,
// @recurse, @fold, @transform) well enough to capture their raw arguments.
// Making sense of those arguments against a schema is the frontend's job.
package graphqlquery

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dennwc/graphql/language/ast"
	"github.com/dennwc/graphql/language/lexer"
	"github.com/dennwc/graphql/language/parser"

	"github.com/obi1kenobi/trustfall-go/ir"
)

// allowedNameRune widens the GraphQL lexer's name-character set to accept
// the `%tag_name`/`$variable_name` argument shorthand Trustfall layers on
// top of standard GraphQL value syntax (a plain GraphQL lexer only allows
// `$name` inside a variable definition list, not as a free-standing
// argument value).
func allowedNameRune(r rune) bool {
	return r == '%' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func init() {
	lexer.AllowNameRunes = allowedNameRune
}

// Pos is a lightweight source position: the ordinal index of the field
// within a depth-first walk of the document, paired with its nesting
// depth. The upstream parser this package wraps does not expose line/column
// information on the node types this package's Parse function touches, so
// positions here are structural rather than textual — sufficient to
// disambiguate *which* field an error refers to, which is the only thing
// FrontendError construction needs.
type Pos struct {
	Depth int
	Index int
}

func (p Pos) String() string { return fmt.Sprintf("field #%d at depth %d", p.Index, p.Depth) }

// Argument is a directive argument's value: a literal, a `%tag_name`
// back-reference, a `$variable_name` forward-reference, or (for @filter's
// "value" argument, which is always written as a list even for unary/binary
// operators) a list of any of those three. Exactly one of Literal/TagName/
// VariableName/List is populated.
type Argument struct {
	Literal      ir.FieldValue
	HasLiteral   bool
	TagName      string
	VariableName string
	List         []Argument
	IsList       bool
}

// Directive is a single `@name(...)` annotation with its raw arguments
// captured as a name -> Argument map, in document order. What each
// directive's arguments mean (e.g. @filter's "op"/"value") is for the
// frontend to interpret.
type Directive struct {
	Name      string
	Arguments map[string]Argument
	ArgOrder  []string
	Pos       Pos
}

// Arg returns the named argument and whether it was present.
func (d Directive) Arg(name string) (Argument, bool) {
	a, ok := d.Arguments[name]
	return a, ok
}

// Field is one selection in the query: a property or an edge traversal. A
// field with a nested SelectionSet is always an edge; an edge may also be
// written without one (e.g. `@fold @transform(op: "count")`), which the
// frontend recognizes from the schema.
type Field struct {
	Name  string
	Alias string
	// CoercedTo is set when the field was written under a `... on Type`
	// inline fragment, naming the type to coerce to.
	CoercedTo string
	// Parameters are the field's own call-style arguments, e.g.
	// `latest(count: $n)`.
	Parameters map[string]Argument
	ParamOrder []string
	Directives []Directive
	Selections []Field
	Pos        Pos
}

// Directive returns the first directive named name attached to f, if any.
func (f Field) Directive(name string) (Directive, bool) {
	for _, d := range f.Directives {
		if d.Name == name {
			return d, true
		}
	}
	return Directive{}, false
}

// IsEdge reports whether f has a nested selection set. Such a field is always
// an edge; an edge written without a selection set reports false.
func (f Field) IsEdge() bool { return len(f.Selections) > 0 }

// Document is a fully parsed query: a single root field (Trustfall queries,
// like the Rust implementation, support exactly one top-level selection per
// query operation).
type Document struct {
	Root Field
}

// Parse parses a raw query string into a Document.
func Parse(query string) (*Document, error) {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return nil, fmt.Errorf("graphqlquery: %w", err)
	}
	if len(doc.Definitions) != 1 {
		return nil, fmt.Errorf("graphqlquery: query document must contain exactly one operation, found %d", len(doc.Definitions))
	}
	def, ok := doc.Definitions[0].(*ast.OperationDefinition)
	if !ok {
		return nil, fmt.Errorf("graphqlquery: unsupported top-level definition %T", doc.Definitions[0])
	}
	if def.Operation != "query" {
		return nil, fmt.Errorf("graphqlquery: unsupported operation %q, only \"query\" is supported", def.Operation)
	}
	fields, err := setToFields(def.SelectionSet, 0, &indexCounter{})
	if err != nil {
		return nil, err
	}
	if len(fields) != 1 {
		return nil, fmt.Errorf("graphqlquery: query document must select exactly one root field, found %d", len(fields))
	}
	return &Document{Root: fields[0]}, nil
}

// indexCounter hands out a monotonic index across the whole depth-first
// walk, so every Field's Pos.Index is unique and stable within one parse.
type indexCounter struct{ next int }

func (c *indexCounter) take() int {
	i := c.next
	c.next++
	return i
}

func setToFields(set *ast.SelectionSet, depth int, counter *indexCounter) ([]Field, error) {
	if set == nil {
		return nil, nil
	}
	var out []Field
	for _, s := range set.Selections {
		switch sel := s.(type) {
		case *ast.Field:
			f, err := convField(sel, depth, counter)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		case *ast.InlineFragment:
			coercedTo := ""
			if sel.TypeCondition != nil {
				coercedTo = sel.TypeCondition.Name.Value
			}
			inner, err := setToFields(sel.SelectionSet, depth, counter)
			if err != nil {
				return nil, err
			}
			for i := range inner {
				if inner[i].CoercedTo == "" {
					inner[i].CoercedTo = coercedTo
				}
			}
			out = append(out, inner...)
		default:
			return nil, fmt.Errorf("graphqlquery: unsupported selection type %T", s)
		}
	}
	return out, nil
}

func convField(fld *ast.Field, depth int, counter *indexCounter) (Field, error) {
	out := Field{
		Name: fld.Name.Value,
		Pos:  Pos{Depth: depth, Index: counter.take()},
	}
	if fld.Alias != nil && fld.Alias.Value != "" {
		out.Alias = fld.Alias.Value
	} else {
		out.Alias = out.Name
	}

	for _, d := range fld.Directives {
		if d.Name == nil {
			continue
		}
		conv, err := convDirective(d, out.Pos)
		if err != nil {
			return Field{}, err
		}
		out.Directives = append(out.Directives, conv)
	}

	params, order, err := convArguments(fld.Arguments)
	if err != nil {
		return Field{}, err
	}
	out.Parameters, out.ParamOrder = params, order

	selections, err := setToFields(fld.SelectionSet, depth+1, counter)
	if err != nil {
		return Field{}, err
	}
	out.Selections = selections
	return out, nil
}

func convDirective(d *ast.Directive, pos Pos) (Directive, error) {
	args, order, err := convArguments(d.Arguments)
	if err != nil {
		return Directive{}, err
	}
	return Directive{Name: d.Name.Value, Arguments: args, ArgOrder: order, Pos: pos}, nil
}

func convArguments(args []*ast.Argument) (map[string]Argument, []string, error) {
	if len(args) == 0 {
		return nil, nil, nil
	}
	out := make(map[string]Argument, len(args))
	order := make([]string, 0, len(args))
	for _, a := range args {
		name := a.Name.Value
		val, err := convValue(a.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("graphqlquery: argument %q: %w", name, err)
		}
		out[name] = val
		order = append(order, name)
	}
	return out, order, nil
}

func convValue(v ast.Value) (Argument, error) {
	switch val := v.(type) {
	case *ast.EnumValue:
		s := val.Value
		if strings.HasPrefix(s, "%") {
			return Argument{TagName: s[1:]}, nil
		}
		if strings.HasPrefix(s, "$") {
			return Argument{VariableName: s[1:]}, nil
		}
		return Argument{Literal: ir.Enum(s), HasLiteral: true}, nil
	case *ast.StringValue:
		s := val.Value
		if strings.HasPrefix(s, "%") {
			return Argument{TagName: s[1:]}, nil
		}
		if strings.HasPrefix(s, "$") {
			return Argument{VariableName: s[1:]}, nil
		}
		return Argument{Literal: ir.String(s), HasLiteral: true}, nil
	case *ast.IntValue:
		n, err := strconv.ParseInt(val.Value, 10, 64)
		if err != nil {
			return Argument{}, fmt.Errorf("invalid integer literal %q: %w", val.Value, err)
		}
		return Argument{Literal: ir.Int64(n), HasLiteral: true}, nil
	case *ast.FloatValue:
		f, err := strconv.ParseFloat(val.Value, 64)
		if err != nil {
			return Argument{}, fmt.Errorf("invalid float literal %q: %w", val.Value, err)
		}
		return Argument{Literal: ir.Float64(f), HasLiteral: true}, nil
	case *ast.BooleanValue:
		return Argument{Literal: ir.Boolean(val.Value), HasLiteral: true}, nil
	case *ast.NullValue:
		return Argument{Literal: ir.Null, HasLiteral: true}, nil
	case *ast.ListValue:
		// A list value may mix literals with `%tag_name`/`$variable_name`
		// references: @filter's "value" argument is always written as a
		// list (even for a unary or single-operand binary operator), so
		// list elements must carry the full Argument shape, not just
		// FieldValue literals.
		elems := make([]Argument, 0, len(val.Values))
		for _, sv := range val.Values {
			conv, err := convValue(sv)
			if err != nil {
				return Argument{}, err
			}
			elems = append(elems, conv)
		}
		return Argument{List: elems, IsList: true}, nil
	default:
		return Argument{}, fmt.Errorf("unsupported value type %T", v)
	}
}
