package interpreter

import (
	"math"
	"regexp"
	"strings"

	"github.com/obi1kenobi/trustfall-go/ir"
)

// regexCache memoizes patterns supplied by a query variable (cached once per
// query, since a variable's value never changes mid-query); a pattern
// supplied via a tag is recompiled on every evaluation instead, since a tag's
// value can differ context to context, per spec.md §4.3.
type regexCache struct {
	compiled map[string]*regexp.Regexp
}

func newRegexCache() *regexCache {
	return &regexCache{compiled: map[string]*regexp.Regexp{}}
}

func (c *regexCache) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := c.compiled[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	c.compiled[pattern] = re
	return re, nil
}

// resolvedArgument is the outcome of resolving an ir.Argument against one
// context: either a concrete value, or nonexistentOptional, meaning the
// argument was a tag whose defining vertex came from an unmatched @optional
// — per spec.md §4.3, any filter using such an argument must pass
// unconditionally.
type resolvedArgument struct {
	value               ir.FieldValue
	nonexistentOptional bool
	isTag               bool
}

// resolveArgument resolves arg against dc: a Variable substitutes directly
// from args; a Tag looks up the value materialized into dc.ImportedTags
// (fold filters) or, for a same-component tag, the vertex recorded at the
// tag's defining Vid via the supplied resolver.
func resolveArgument[V any](arg ir.Argument, dc *DataContext[V], args map[string]ir.FieldValue, resolveLocalTag func(ir.FieldRef, *DataContext[V]) ir.FieldValue) resolvedArgument {
	if varRef, ok := arg.AsVariable(); ok {
		return resolvedArgument{value: args[varRef.VariableName]}
	}
	tagRef, _ := arg.AsTag()
	if tagged, ok := dc.ImportedTags[refKey(tagRef)]; ok {
		if tagged.NonexistentOptional {
			return resolvedArgument{nonexistentOptional: true, isTag: true}
		}
		return resolvedArgument{value: tagged.Value, isTag: true}
	}
	return resolvedArgument{value: resolveLocalTag(tagRef, dc), isTag: true}
}

// resolveTransforms applies transforms to v in order, resolving any
// transform's own argument (currently only AddTransform's addend) against dc
// the same way a filter argument would be.
func resolveTransforms[V any](v ir.FieldValue, transforms []ir.Transform, dc *DataContext[V], args map[string]ir.FieldValue, resolveLocalTag func(ir.FieldRef, *DataContext[V]) ir.FieldValue) ir.FieldValue {
	cur := v
	for _, t := range transforms {
		switch tt := t.(type) {
		case ir.LenTransform:
			if cur.IsNull() {
				continue
			}
			if elems, ok := cur.AsList(); ok {
				cur = ir.Int64(int64(len(elems)))
			} else if s, ok := cur.AsString(); ok {
				cur = ir.Int64(int64(len(s)))
			}
		case ir.AbsTransform:
			if i, ok := cur.AsInt64(); ok {
				if i < 0 {
					i = -i
				}
				cur = ir.Int64(i)
			} else if f, ok := cur.AsFloat64(); ok {
				cur = ir.Float64(math.Abs(f))
			}
		case ir.AddTransform:
			resolved := resolveArgument(tt.Addend, dc, args, resolveLocalTag)
			if resolved.nonexistentOptional {
				cur = ir.Null
				continue
			}
			cur = addNumeric(cur, resolved.value)
		}
	}
	return cur
}

// addNumeric adds a and b, promoting to Float64 if either operand is a
// Float64, matching the mixed-numeric-type leniency filter comparisons
// already allow (ir.FieldValue.tryCompare).
func addNumeric(a, b ir.FieldValue) ir.FieldValue {
	af, aIsFloat := a.AsFloat64()
	bf, bIsFloat := b.AsFloat64()
	if aIsFloat || bIsFloat {
		if !aIsFloat {
			af = numericAsFloat(a)
		}
		if !bIsFloat {
			bf = numericAsFloat(b)
		}
		return ir.Float64(af + bf)
	}
	ai, aIsInt := a.AsInt64()
	bi, bIsInt := b.AsInt64()
	if aIsInt && bIsInt {
		return ir.Int64(ai + bi)
	}
	au, aIsUint := a.AsUint64()
	bu, bIsUint := b.AsUint64()
	if aIsUint && bIsUint {
		return ir.Uint64(au + bu)
	}
	return ir.Float64(numericAsFloat(a) + numericAsFloat(b))
}

func numericAsFloat(v ir.FieldValue) float64 {
	if i, ok := v.AsInt64(); ok {
		return float64(i)
	}
	if u, ok := v.AsUint64(); ok {
		return float64(u)
	}
	if f, ok := v.AsFloat64(); ok {
		return f
	}
	return 0
}

// evalOperation evaluates one filter Operation given its already-resolved
// left and right values. isTagArgument selects the regex cache's
// compile-once-per-variable vs. compile-per-evaluation rule (spec.md §4.3):
// a variable-sourced pattern is memoized in cache, a tag-sourced one is
// recompiled fresh every call since its value can vary per context.
// resolved.nonexistentOptional short-circuits to true (the filter
// unconditionally passes).
func evalOperation(kind ir.OperationKind, left ir.FieldValue, resolved resolvedArgument, cache *regexCache) (bool, error) {
	isTagArgument := resolved.isTag
	if resolved.nonexistentOptional {
		return true, nil
	}
	right := resolved.value
	switch kind {
	case ir.OpIsNull:
		return left.IsNull(), nil
	case ir.OpIsNotNull:
		return !left.IsNull(), nil
	case ir.OpEquals:
		if left.IsNull() || right.IsNull() {
			return left.IsNull() && right.IsNull(), nil
		}
		return left.Equal(right), nil
	case ir.OpNotEquals:
		if left.IsNull() || right.IsNull() {
			return !(left.IsNull() && right.IsNull()), nil
		}
		return !left.Equal(right), nil
	case ir.OpLessThan:
		return left.Less(right), nil
	case ir.OpLessThanOrEqual:
		return left.Less(right) || left.Equal(right), nil
	case ir.OpGreaterThan:
		return right.Less(left), nil
	case ir.OpGreaterThanOrEqual:
		return right.Less(left) || left.Equal(right), nil
	case ir.OpContains:
		elems, ok := left.AsList()
		if !ok {
			return false, nil
		}
		for _, e := range elems {
			if e.Equal(right) {
				return true, nil
			}
		}
		return false, nil
	case ir.OpNotContains:
		elems, ok := left.AsList()
		if !ok {
			return true, nil
		}
		for _, e := range elems {
			if e.Equal(right) {
				return false, nil
			}
		}
		return true, nil
	case ir.OpOneOf:
		elems, ok := right.AsList()
		if !ok {
			return false, nil
		}
		for _, e := range elems {
			if e.Equal(left) {
				return true, nil
			}
		}
		return false, nil
	case ir.OpNotOneOf:
		elems, ok := right.AsList()
		if !ok {
			return true, nil
		}
		for _, e := range elems {
			if e.Equal(left) {
				return false, nil
			}
		}
		return true, nil
	case ir.OpHasPrefix:
		ls, lok := left.AsString()
		rs, rok := right.AsString()
		return lok && rok && strings.HasPrefix(ls, rs), nil
	case ir.OpNotHasPrefix:
		ls, lok := left.AsString()
		rs, rok := right.AsString()
		return !(lok && rok && strings.HasPrefix(ls, rs)), nil
	case ir.OpHasSuffix:
		ls, lok := left.AsString()
		rs, rok := right.AsString()
		return lok && rok && strings.HasSuffix(ls, rs), nil
	case ir.OpNotHasSuffix:
		ls, lok := left.AsString()
		rs, rok := right.AsString()
		return !(lok && rok && strings.HasSuffix(ls, rs)), nil
	case ir.OpHasSubstring:
		ls, lok := left.AsString()
		rs, rok := right.AsString()
		return lok && rok && strings.Contains(ls, rs), nil
	case ir.OpNotHasSubstring:
		ls, lok := left.AsString()
		rs, rok := right.AsString()
		return !(lok && rok && strings.Contains(ls, rs)), nil
	case ir.OpRegexMatches:
		ls, lok := left.AsString()
		rs, rok := right.AsString()
		if !lok || !rok {
			return false, nil
		}
		re, err := compileRegex(rs, isTagArgument, cache)
		if err != nil {
			return false, err
		}
		return re.MatchString(ls), nil
	case ir.OpNotRegexMatches:
		ls, lok := left.AsString()
		rs, rok := right.AsString()
		if !lok || !rok {
			return false, nil
		}
		re, err := compileRegex(rs, isTagArgument, cache)
		if err != nil {
			return false, err
		}
		return !re.MatchString(ls), nil
	default:
		return false, nil
	}
}

// compileRegex compiles pattern, going through cache (memoized) for a
// variable-sourced pattern or compiling fresh every time for a tag-sourced
// one, per spec.md §4.3.
func compileRegex(pattern string, isTagArgument bool, cache *regexCache) (*regexp.Regexp, error) {
	if isTagArgument {
		return regexp.Compile(pattern)
	}
	return cache.compile(pattern)
}
