package frontend

import (
	"github.com/obi1kenobi/trustfall-go/graphqlquery"
	"github.com/obi1kenobi/trustfall-go/ir"
)

// tagDef records where a %name tag was defined in the query document: its
// structural position (for "used before definition" checks, since Pos.Index
// increases monotonically in document order) and the chain of ancestor
// @fold fields it is nested within (for "used outside its folded subquery"
// checks).
type tagDef struct {
	pos      graphqlquery.Pos
	foldPath []int
}

// collectTags walks the whole document once, before lowering begins,
// recording where every @tag directive is defined. Lowering needs this
// precomputed table because a single recursive-descent pass processing the
// document in order cannot yet know whether a forward reference to a tag
// will ever be defined, nor easily tell "defined inside a fold I've already
// left" apart from "never defined at all" once that fold's scope has been
// popped.
func collectTags(field graphqlquery.Field, foldPath []int) map[string]tagDef {
	out := make(map[string]tagDef)
	var walk func(f graphqlquery.Field, path []int)
	walk = func(f graphqlquery.Field, path []int) {
		if _, ok := f.Directive("tag"); ok {
			name := tagNameFor(f)
			out[name] = tagDef{pos: f.Pos, foldPath: append([]int(nil), path...)}
		}
		childPath := path
		if _, ok := f.Directive("fold"); ok {
			childPath = append(append([]int(nil), path...), f.Pos.Index)
		}
		for _, child := range f.Selections {
			walk(child, childPath)
		}
	}
	walk(field, foldPath)
	return out
}

// tagNameFor returns a @tag directive's explicit name argument, or the
// field's alias if no explicit name was given.
func tagNameFor(f graphqlquery.Field) string {
	d, _ := f.Directive("tag")
	if arg, ok := d.Arg("name"); ok && arg.HasLiteral {
		if s, ok := arg.Literal.AsString(); ok {
			return s
		}
	}
	return f.Alias
}

// isPrefix reports whether a is a prefix of b.
func isPrefix(a, b []int) bool {
	if len(a) > len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// tagTable is the live, scope-aware view the lowerer consults while
// resolving %name references: definitions currently in scope (this
// component and every ancestor component, but not sibling/already-finished
// folds), alongside the document-wide table from collectTags used to
// produce the more specific "used before definition" / "used outside its
// folded subquery" diagnostics when a lookup in the live scope fails.
type tagTable struct {
	all     map[string]tagDef
	visible []map[string]ir.FieldRef // index 0 = root component, deeper = nested folds
	used    map[string]bool
}

func newTagTable(all map[string]tagDef) *tagTable {
	return &tagTable{all: all, visible: []map[string]ir.FieldRef{{}}, used: map[string]bool{}}
}

func (t *tagTable) pushComponent() { t.visible = append(t.visible, map[string]ir.FieldRef{}) }
func (t *tagTable) popComponent()  { t.visible = t.visible[:len(t.visible)-1] }

func (t *tagTable) define(name string, ref ir.FieldRef) {
	t.visible[len(t.visible)-1][name] = ref
}

// ownerDepth returns the nesting depth (0 = root component) at which name
// is currently defined, or -1 if not currently visible.
func (t *tagTable) ownerDepth(name string) int {
	for i := len(t.visible) - 1; i >= 0; i-- {
		if _, ok := t.visible[i][name]; ok {
			return i
		}
	}
	return -1
}

func (t *tagTable) resolve(name string) (ir.FieldRef, bool) {
	ref, _, ok := t.resolveWithDepth(name)
	return ref, ok
}

// resolveWithDepth additionally reports the component nesting depth the tag
// was defined at, so the caller can propagate it onto every enclosing
// fold's ImportedTags between that depth and the current one.
func (t *tagTable) resolveWithDepth(name string) (ir.FieldRef, int, bool) {
	for i := len(t.visible) - 1; i >= 0; i-- {
		if ref, ok := t.visible[i][name]; ok {
			t.used[name] = true
			return ref, i, true
		}
	}
	return nil, -1, false
}

// diagnoseMissing produces the specific error for a %name that failed live
// resolution, using the document-wide table to distinguish "never defined",
// "defined later", and "defined inside a fold we've already left".
func (t *tagTable) diagnoseMissing(subject, name string, currentFoldPath []int, currentPos graphqlquery.Pos) Error {
	def, ok := t.all[name]
	if !ok {
		return UndefinedTagInFilter{Subject: subject, TagName: name}
	}
	if def.pos.Index > currentPos.Index {
		return TagUsedBeforeDefinition{Subject: subject, TagName: name}
	}
	if !isPrefix(def.foldPath, currentFoldPath) {
		return TagUsedOutsideItsFoldedSubquery{Subject: subject, TagName: name}
	}
	return UndefinedTagInFilter{Subject: subject, TagName: name}
}

func (t *tagTable) unusedTagNames() []string {
	var out []string
	for name := range t.all {
		if !t.used[name] {
			out = append(out, name)
		}
	}
	return out
}
