package indexed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obi1kenobi/trustfall-go/ir"
)

func simpleQuery() *ir.IRQuery {
	var alloc ir.IDAllocator
	rootVid := alloc.NextVid()
	comp := ir.NewIRQueryComponent(rootVid)
	comp.Vertices[rootVid] = &ir.IRVertex{Vid: rootVid, TypeName: "Animal"}
	comp.Outputs["name"] = ir.LocalField{PropertyName: "name", Type: ir.NewNamedType("String", false)}
	return &ir.IRQuery{RootName: "Animal", RootComponent: comp, Variables: map[string]ir.Type{}}
}

func TestMakeFlattensSimpleQuery(t *testing.T) {
	q := simpleQuery()
	iq, err := Make(q)
	require.Nil(t, err)
	assert.Len(t, iq.Vertices, 1)
	out, ok := iq.Outputs["name"]
	require.True(t, ok)
	assert.Equal(t, OutputKindRegular, out.Kind)
}

func TestMakeWithFold(t *testing.T) {
	var alloc ir.IDAllocator
	rootVid := alloc.NextVid()
	comp := ir.NewIRQueryComponent(rootVid)
	comp.Vertices[rootVid] = &ir.IRVertex{Vid: rootVid, TypeName: "Animal"}

	foldEid := alloc.NextEid()
	childVid := alloc.NextVid()
	childComp := ir.NewIRQueryComponent(childVid)
	childComp.Vertices[childVid] = &ir.IRVertex{Vid: childVid, TypeName: "Animal"}
	childComp.Outputs["child_names"] = ir.LocalField{PropertyName: "name", Type: ir.NewNamedType("String", false)}

	fold := &ir.IRFold{
		Eid: foldEid, FromVid: rootVid, ToVid: childVid, EdgeName: "children",
		Component:           childComp,
		FoldSpecificOutputs: map[string]ir.FieldRef{"child_count": ir.FoldSpecificField{FoldEid: foldEid, FoldRootVid: rootVid, Kind: ir.FoldSpecificCount}},
	}
	comp.Folds[foldEid] = fold

	q := &ir.IRQuery{RootName: "Animal", RootComponent: comp, Variables: map[string]ir.Type{}}
	iq, err := Make(q)
	require.Nil(t, err)

	assert.Len(t, iq.Vertices, 2)
	require.Len(t, iq.Folds, 1)

	countOut, ok := iq.Outputs["child_count"]
	require.True(t, ok)
	assert.Equal(t, OutputKindFoldCount, countOut.Kind)
	assert.Equal(t, foldEid, countOut.FoldEid)

	namesOut, ok := iq.Outputs["child_names"]
	require.True(t, ok)
	assert.Equal(t, OutputKindFolded, namesOut.Kind)
	assert.Equal(t, foldEid, namesOut.FoldEid)
}

func TestMakeRejectsDanglingVertexReference(t *testing.T) {
	var alloc ir.IDAllocator
	rootVid := alloc.NextVid()
	comp := ir.NewIRQueryComponent(rootVid)
	comp.Vertices[rootVid] = &ir.IRVertex{Vid: rootVid, TypeName: "Animal"}

	bogusVid := ir.NewVid(999)
	eid := alloc.NextEid()
	comp.Edges[eid] = &ir.IREdge{Eid: eid, FromVid: rootVid, ToVid: bogusVid, EdgeName: "parent"}

	q := &ir.IRQuery{RootName: "Animal", RootComponent: comp, Variables: map[string]ir.Type{}}
	_, err := Make(q)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "unknown destination vertex")
}
