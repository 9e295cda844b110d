package ir

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Kind identifies which variant of the FieldValue sum type a value holds.
type Kind int

const (
	KindNull Kind = iota
	KindInt64
	KindUint64
	KindFloat64
	KindBoolean
	KindString
	KindEnum
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInt64:
		return "Int64"
	case KindUint64:
		return "Uint64"
	case KindFloat64:
		return "Float64"
	case KindBoolean:
		return "Boolean"
	case KindString:
		return "String"
	case KindEnum:
		return "Enum"
	case KindList:
		return "List"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FieldValue is a tagged sum of the scalar/list values Trustfall passes
// across the adapter boundary: property values, @filter/@transform operands,
// and query arguments all flow through this type.
//
// The zero value is Null.
type FieldValue struct {
	kind Kind
	i    int64
	u    uint64
	f    float64
	b    bool
	s    string
	list []FieldValue
}

// Null is the FieldValue representing GraphQL null.
var Null = FieldValue{kind: KindNull}

func Int64(v int64) FieldValue     { return FieldValue{kind: KindInt64, i: v} }
func Uint64(v uint64) FieldValue   { return FieldValue{kind: KindUint64, u: v} }
func Float64(v float64) FieldValue { return FieldValue{kind: KindFloat64, f: v} }
func Boolean(v bool) FieldValue    { return FieldValue{kind: KindBoolean, b: v} }
func String(v string) FieldValue   { return FieldValue{kind: KindString, s: v} }
func Enum(v string) FieldValue     { return FieldValue{kind: KindEnum, s: v} }
func List(v []FieldValue) FieldValue {
	cp := make([]FieldValue, len(v))
	copy(cp, v)
	return FieldValue{kind: KindList, list: cp}
}

func (v FieldValue) Kind() Kind   { return v.kind }
func (v FieldValue) IsNull() bool { return v.kind == KindNull }

func (v FieldValue) AsInt64() (int64, bool) {
	if v.kind != KindInt64 {
		return 0, false
	}
	return v.i, true
}

func (v FieldValue) AsUint64() (uint64, bool) {
	if v.kind != KindUint64 {
		return 0, false
	}
	return v.u, true
}

func (v FieldValue) AsFloat64() (float64, bool) {
	if v.kind != KindFloat64 {
		return 0, false
	}
	return v.f, true
}

func (v FieldValue) AsBoolean() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

func (v FieldValue) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v FieldValue) AsEnum() (string, bool) {
	if v.kind != KindEnum {
		return "", false
	}
	return v.s, true
}

func (v FieldValue) AsList() ([]FieldValue, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// String renders v for debugging/display purposes.
func (v FieldValue) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindInt64:
		return fmt.Sprintf("%d", v.i)
	case KindUint64:
		return fmt.Sprintf("%d", v.u)
	case KindFloat64:
		return fmt.Sprintf("%v", v.f)
	case KindBoolean:
		return fmt.Sprintf("%v", v.b)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindEnum:
		return v.s
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "<invalid FieldValue>"
	}
}

// isInteger reports whether v holds an Int64 or Uint64, the two kinds that
// participate in cross-signedness comparison.
func (v FieldValue) isInteger() bool {
	return v.kind == KindInt64 || v.kind == KindUint64
}

// compareSignedUnsigned compares a (signed) and b (unsigned) by their mathematical
// value without loss of precision, per §3/testable property 4. It returns
// a value <0, 0, or >0 the way bytes.Compare does.
func compareSignedUnsigned(a int64, b uint64) int {
	if a < 0 {
		// A negative signed value is always less than any unsigned value.
		return -1
	}
	au := uint64(a)
	switch {
	case au < b:
		return -1
	case au > b:
		return 1
	default:
		return 0
	}
}

// Equal reports whether v and other represent the same value. Int64/Uint64
// are compared by mathematical value, not by Go type. Null is incomparable:
// Equal returns false whenever either side is Null, including when both are
// (the `=` filter operator's null handling is done separately by its
// evaluator; this method itself stays total and well-defined).
func (v FieldValue) Equal(other FieldValue) bool {
	cmp, ok := v.tryCompare(other)
	return ok && cmp == 0
}

// Less reports whether v sorts strictly before other under Trustfall's
// ordering rules (§3): lists compare lexicographically element-wise, and
// Int64/Uint64 compare by mathematical value.
func (v FieldValue) Less(other FieldValue) bool {
	cmp, ok := v.tryCompare(other)
	return ok && cmp < 0
}

// tryCompare returns (-1|0|1, true) if v and other are comparable, or
// (0, false) if they are not (e.g. either is Null, or the kinds are
// fundamentally incompatible).
func (v FieldValue) tryCompare(other FieldValue) (int, bool) {
	if v.kind == KindNull || other.kind == KindNull {
		return 0, false
	}
	if v.isInteger() && other.isInteger() {
		switch {
		case v.kind == KindInt64 && other.kind == KindInt64:
			switch {
			case v.i < other.i:
				return -1, true
			case v.i > other.i:
				return 1, true
			default:
				return 0, true
			}
		case v.kind == KindUint64 && other.kind == KindUint64:
			switch {
			case v.u < other.u:
				return -1, true
			case v.u > other.u:
				return 1, true
			default:
				return 0, true
			}
		case v.kind == KindInt64:
			return compareSignedUnsigned(v.i, other.u), true
		default: // v is Uint64, other is Int64
			return -compareSignedUnsigned(other.i, v.u), true
		}
	}
	if v.kind != other.kind {
		// Allow Float64-vs-integer comparisons, matching how filter
		// arguments may mix an Int literal against a Float property.
		if v.kind == KindFloat64 && other.isInteger() {
			return compareFloatInt(v.f, other), true
		}
		if other.kind == KindFloat64 && v.isInteger() {
			cmp, ok := compareFloatInt(other.f, v), true
			return -cmp, ok
		}
		return 0, false
	}
	switch v.kind {
	case KindFloat64:
		switch {
		case v.f < other.f:
			return -1, true
		case v.f > other.f:
			return 1, true
		default:
			return 0, true
		}
	case KindBoolean:
		if v.b == other.b {
			return 0, true
		}
		if !v.b {
			return -1, true
		}
		return 1, true
	case KindString, KindEnum:
		return strings.Compare(v.s, other.s), true
	case KindList:
		return compareLists(v.list, other.list), true
	default:
		return 0, false
	}
}

func compareFloatInt(f float64, other FieldValue) int {
	var of float64
	if i, ok := other.AsInt64(); ok {
		of = float64(i)
	} else if u, ok := other.AsUint64(); ok {
		of = float64(u)
	}
	switch {
	case f < of:
		return -1
	case f > of:
		return 1
	default:
		return 0
	}
}

func compareLists(a, b []FieldValue) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if cmp, ok := a[i].tryCompare(b[i]); ok {
			if cmp != 0 {
				return cmp
			}
		} else if !a[i].Equal(b[i]) {
			// Incomparable, non-equal elements (e.g. a null next to a
			// non-null): treat as equal-length tie-break by kind order so
			// comparison stays total for sorting purposes.
			return int(a[i].kind) - int(b[i].kind)
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// SortStrings returns a sorted copy of names, used by output assembly
// (§4.3's "sorts output names lexicographically").
func SortStrings(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}

// EnsureFinite reports whether f is a usable Float64 payload (not NaN),
// since a NaN would break FieldValue's total-ordering expectations when
// used as a map key or a sort comparator.
func EnsureFinite(f float64) bool {
	return !math.IsNaN(f)
}
