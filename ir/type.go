package ir

import (
	"fmt"
	"strings"
)

// modifiers encodes a Type's nullability and list-nesting chain as a packed
// bitmask: bit 0 of each 2-bit group is the non-nullable flag for that
// level, bit 1 marks "this level is a list of the next". Reading the mask
// from the low bits outward walks from the outermost layer inward, exactly
// as trustfall_core's Modifiers{mask: u64} does.
type modifiers struct {
	mask uint64
}

const (
	nonNullableMask = uint64(1)
	listMask        = uint64(2)
)

func (m modifiers) nullable() bool { return m.mask&nonNullableMask == 0 }
func (m modifiers) isList() bool   { return m.mask&listMask != 0 }
func (m modifiers) asList() (modifiers, bool) {
	if !m.isList() {
		return modifiers{}, false
	}
	return modifiers{mask: m.mask >> 2}, true
}

func maxListDepthMask(maxDepth uint64) uint64 {
	return listMask << ((maxDepth - 1) * 2)
}

func (m modifiers) atMaxListDepth(maxDepth uint64) bool {
	mask := maxListDepthMask(maxDepth)
	return m.mask&mask == mask
}

// DefaultMaxListNestingDepth matches the ~30 levels of list nesting the
// bitmask has room for before it would need more than 64 bits.
const DefaultMaxListNestingDepth = 30

// Type is a representation of a Trustfall type, independent of which query
// syntax produced it. Equivalent in expressiveness to GraphQL types.
type Type struct {
	base string
	mods modifiers
}

// NewNamedType creates an individual (non-list) Type.
func NewNamedType(base string, nullable bool) Type {
	mask := uint64(0)
	if !nullable {
		mask = nonNullableMask
	}
	return Type{base: base, mods: modifiers{mask: mask}}
}

// NewListType wraps inner in a new outermost list layer. Panics if doing so
// would exceed maxDepth levels of list nesting.
func NewListType(inner Type, nullable bool, maxDepth int) Type {
	if inner.mods.atMaxListDepth(uint64(maxDepth)) {
		panic(fmt.Sprintf("ir: list nesting exceeds maximum depth of %d", maxDepth))
	}
	mask := inner.mods.mask<<2 | listMask
	if !nullable {
		mask |= nonNullableMask
	}
	return Type{base: inner.base, mods: modifiers{mask: mask}}
}

// Base returns the type's innermost named base type, e.g. "String" for
// "[String!]!".
func (t Type) Base() string { return t.base }

// Nullable reports whether the outermost layer of t may hold null.
func (t Type) Nullable() bool { return t.mods.nullable() }

// IsList reports whether t's outermost layer is a list.
func (t Type) IsList() bool { return t.mods.isList() }

// ListElement returns the element type of a list type, dropping one layer
// of list nesting. ok is false if t is not a list.
func (t Type) ListElement() (Type, bool) {
	inner, ok := t.mods.asList()
	if !ok {
		return Type{}, false
	}
	return Type{base: t.base, mods: inner}, true
}

// WithNullable returns a copy of t with its outermost nullability set.
func (t Type) WithNullable(nullable bool) Type {
	mask := t.mods.mask
	if nullable {
		mask &^= nonNullableMask
	} else {
		mask |= nonNullableMask
	}
	return Type{base: t.base, mods: modifiers{mask: mask}}
}

// String renders t in GraphQL type syntax, e.g. "[String!]!".
func (t Type) String() string {
	var layers []modifiers
	m := t.mods
	for {
		layers = append(layers, m)
		next, ok := m.asList()
		if !ok {
			break
		}
		m = next
	}

	var b strings.Builder
	// Write opening brackets for every list layer, outermost first.
	for i := 0; i < len(layers)-1; i++ {
		b.WriteByte('[')
	}
	b.WriteString(t.base)
	if !layers[len(layers)-1].nullable() {
		b.WriteByte('!')
	}
	for i := len(layers) - 2; i >= 0; i-- {
		b.WriteByte(']')
		if !layers[i].nullable() {
			b.WriteByte('!')
		}
	}
	return b.String()
}

// EqualModuloNullability reports whether t and other have the same base
// type and list-nesting shape, ignoring nullability at every layer.
func (t Type) EqualModuloNullability(other Type) bool {
	if t.base != other.base {
		return false
	}
	a, b := t.mods, other.mods
	for {
		aList, bList := a.isList(), b.isList()
		if aList != bList {
			return false
		}
		if !aList {
			return true
		}
		a, _ = a.asList()
		b, _ = b.asList()
	}
}

// Equal reports exact structural equality, including nullability at every
// layer.
func (t Type) Equal(other Type) bool {
	return t.base == other.base && t.mods.mask == other.mods.mask
}

// scalarOrderable is the closed set of scalar base types §3 allows ordering
// comparisons (<, <=, >, >=) against.
var scalarOrderable = map[string]bool{
	"Int":   true,
	"Float": true,
	"String": true,
}

// IsOrderable reports whether values of this type may be compared with <,
// <=, > or >=. Only non-list Int/Float/String types are orderable.
func (t Type) IsOrderable() bool {
	return !t.IsList() && scalarOrderable[t.base]
}

// IsString reports whether t's base type is the scalar String (non-list).
func (t Type) IsString() bool {
	return !t.IsList() && t.base == "String"
}

// IsSubtypeOf reports whether t is a (scalar) subtype of other. Type itself
// only ever sees scalar base-type names; the schema loader is responsible
// for interface/object subtype relationships. At this layer, subtyping is
// exact base-type equality plus nullability narrowing: a non-nullable type
// is a subtype of its nullable counterpart, one list layer at a time.
func (t Type) IsSubtypeOf(other Type) bool {
	if t.base != other.base {
		return false
	}
	a, b := t.mods, other.mods
	for {
		if !a.nullable() && b.nullable() {
			// a may narrow non-null where b allows null: fine.
		} else if a.nullable() != b.nullable() {
			return false
		}
		aList, bList := a.isList(), b.isList()
		if aList != bList {
			return false
		}
		if !aList {
			return true
		}
		a, _ = a.asList()
		b, _ = b.asList()
	}
}

// Intersect computes the narrowest type compatible with both t and other,
// used when the same query variable is used at multiple sites with
// possibly-different required types (§3 invariant 5). ok is false if the
// two types have no common intersection (different base types or
// incompatible list shapes).
func (t Type) Intersect(other Type) (Type, bool) {
	if t.base != other.base {
		return Type{}, false
	}
	aLayers, bLayers := t.layers(), other.layers()
	if len(aLayers) != len(bLayers) {
		return Type{}, false
	}
	var out uint64
	shift := uint64(0)
	for i := 0; i < len(aLayers); i++ {
		nullable := aLayers[i].nullable() && bLayers[i].nullable()
		layerMask := uint64(0)
		if !nullable {
			layerMask |= nonNullableMask
		}
		if i < len(aLayers)-1 {
			layerMask |= listMask
		}
		out |= layerMask << shift
		shift += 2
	}
	return Type{base: t.base, mods: modifiers{mask: out}}, true
}

// layers returns the modifier chain from outermost to innermost.
func (t Type) layers() []modifiers {
	var out []modifiers
	m := t.mods
	for {
		out = append(out, m)
		next, ok := m.asList()
		if !ok {
			break
		}
		m = next
	}
	return out
}

// IsValidValue reports whether v conforms to t: null is only valid for a
// nullable type, lists must nest to the same depth with conforming
// elements, and scalar kinds must agree (cross Int64/Uint64 is considered
// the same "Int" kind).
func (t Type) IsValidValue(v FieldValue) bool {
	if v.IsNull() {
		return t.Nullable()
	}
	if t.IsList() {
		elems, ok := v.AsList()
		if !ok {
			return false
		}
		elemType, _ := t.ListElement()
		for _, e := range elems {
			if !elemType.IsValidValue(e) {
				return false
			}
		}
		return true
	}
	switch t.base {
	case "Int":
		return v.Kind() == KindInt64 || v.Kind() == KindUint64
	case "Float":
		return v.Kind() == KindFloat64
	case "String":
		return v.Kind() == KindString
	case "Boolean":
		return v.Kind() == KindBoolean
	default:
		// Enum or an application-defined scalar: accept String or Enum
		// representations, matching how adapters typically surface them.
		return v.Kind() == KindEnum || v.Kind() == KindString
	}
}
