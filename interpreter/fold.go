package interpreter

import "github.com/obi1kenobi/trustfall-go/ir"

// foldBounds derives the static upper/lower element-count bounds a fold's
// post_filters imply, per spec.md §4.3's early-termination table. Only
// filters whose left side is FoldSpecificField{Kind: FoldSpecificCount}
// (possibly wrapped in a TransformedField, which this function does not
// attempt to invert, matching the table's scope) and whose right side is a
// Variable contribute; tag-valued post-filters contribute nothing, since
// their value is not known until the outer context is visited.
//
// Per the Open Question this spec resolves in favor of permissive
// tightening: `=` contributes both an upper bound (the exact count cannot
// exceed it) and a lower bound (the fold need not pull fewer than that many
// elements before it can already tell whether the filter will fail).
func foldBounds(postFilters []ir.FilterOperation, args map[string]ir.FieldValue) (upper, lower *int64) {
	for _, f := range postFilters {
		if !isFoldCount(f.Left()) {
			continue
		}
		right, hasRight := f.Right()
		if !hasRight {
			continue
		}
		varRef, ok := right.AsVariable()
		if !ok {
			continue
		}
		value, ok := args[varRef.VariableName]
		if !ok {
			continue
		}
		v, ok := asCountBound(value)
		if !ok {
			continue
		}
		switch f.Kind {
		case ir.OpEquals:
			upper = tightenUpper(upper, v)
			lower = tightenLower(lower, v)
		case ir.OpLessThanOrEqual:
			upper = tightenUpper(upper, v)
		case ir.OpLessThan:
			upper = tightenUpper(upper, saturatingDec(v))
		case ir.OpGreaterThanOrEqual:
			lower = tightenLower(lower, v)
		case ir.OpGreaterThan:
			lower = tightenLower(lower, v+1)
		case ir.OpOneOf:
			if elems, ok := value.AsList(); ok {
				max, any := maxCount(elems)
				if any {
					upper = tightenUpper(upper, max)
				}
			}
		}
	}
	return upper, lower
}

// isFoldCount reports whether ref is (possibly transformed) a fold's count
// aggregate.
func isFoldCount(ref ir.FieldRef) bool {
	switch f := ref.(type) {
	case ir.FoldSpecificField:
		return f.Kind == ir.FoldSpecificCount
	case ir.TransformedField:
		return isFoldCount(f.Base)
	default:
		return false
	}
}

func asCountBound(v ir.FieldValue) (int64, bool) {
	if i, ok := v.AsInt64(); ok {
		return i, true
	}
	if u, ok := v.AsUint64(); ok {
		return int64(u), true
	}
	return 0, false
}

func maxCount(values []ir.FieldValue) (int64, bool) {
	var max int64
	any := false
	for _, v := range values {
		n, ok := asCountBound(v)
		if !ok {
			continue
		}
		if !any || n > max {
			max = n
			any = true
		}
	}
	return max, any
}

func saturatingDec(v int64) int64 {
	if v <= 0 {
		return 0
	}
	return v - 1
}

func tightenUpper(cur *int64, candidate int64) *int64 {
	if cur == nil || candidate < *cur {
		c := candidate
		return &c
	}
	return cur
}

func tightenLower(cur *int64, candidate int64) *int64 {
	if cur == nil || candidate > *cur {
		c := candidate
		return &c
	}
	return cur
}
