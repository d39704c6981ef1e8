package fdt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BlueFalconHD/smoldtb/internal/fdttest"
)

func boardTree(t *testing.T) *Tree {
	t.Helper()
	blob := fdttest.Builder{}.Build(fdttest.Node{
		Name: "",
		Props: []fdttest.Prop{
			{Name: "compatible", Value: fdttest.CString("acme,board")},
		},
		Children: []fdttest.Node{
			{
				Name: "cpus",
				Children: []fdttest.Node{
					{Name: "cpu@0", Props: []fdttest.Prop{
						{Name: "reg", Value: fdttest.Cells(0)},
						{Name: "compatible", Value: fdttest.CString("acme,cpu")},
						{Name: "phandle", Value: fdttest.Cells(1)},
					}},
					{Name: "cpu@1", Props: []fdttest.Prop{
						{Name: "reg", Value: fdttest.Cells(1)},
						{Name: "compatible", Value: fdttest.CString("acme,cpu")},
						{Name: "phandle", Value: fdttest.Cells(2)},
					}},
				},
			},
			{Name: "memory@80000000", Props: []fdttest.Prop{
				{Name: "reg", Value: fdttest.Cells(0x80000000, 0x10000000)},
			}},
		},
	})

	tree, err := Parse(blob, Ops{})
	require.NoError(t, err)
	return tree
}

func TestFindRoot(t *testing.T) {
	tree := boardTree(t)
	require.True(t, tree.Find("/").Equal(tree.Root()))
	require.True(t, tree.Find("").Equal(tree.Root()))
}

func TestFindNestedPath(t *testing.T) {
	tree := boardTree(t)
	node := tree.Find("/cpus/cpu@0")
	require.NotNil(t, node)
	require.Equal(t, "cpu@0", node.Name())
}

func TestFindMissingPathReturnsNil(t *testing.T) {
	tree := boardTree(t)
	require.Nil(t, tree.Find("/cpus/cpu@99"))
	require.Nil(t, tree.Find("/nonexistent"))
}

func TestFindChildStripsUnitAddressOnChildSide(t *testing.T) {
	tree := boardTree(t)
	memory := tree.Root().FindChild("memory")
	require.NotNil(t, memory)
	require.Equal(t, "memory@80000000", memory.Name())
}

func TestFindChildDoesNotStripQuerySide(t *testing.T) {
	tree := boardTree(t)
	require.Nil(t, tree.Root().FindChild("memory@80000000"))
}

func TestFindCompatibleEnumeratesAllMatches(t *testing.T) {
	tree := boardTree(t)

	first := tree.FindCompatible(nil, "acme,cpu")
	require.NotNil(t, first)
	require.Equal(t, "cpu@0", first.Name())

	second := tree.FindCompatible(first, "acme,cpu")
	require.NotNil(t, second)
	require.Equal(t, "cpu@1", second.Name())

	third := tree.FindCompatible(second, "acme,cpu")
	require.Nil(t, third)
}

func TestFindCompatibleNoMatch(t *testing.T) {
	tree := boardTree(t)
	require.Nil(t, tree.FindCompatible(nil, "nope,nothing"))
}

func TestFindPhandle(t *testing.T) {
	tree := boardTree(t)

	node := tree.FindPhandle(2)
	require.NotNil(t, node)
	require.Equal(t, "cpu@1", node.Name())
	require.True(t, node.Equal(tree.Find("/cpus/cpu@1")))
}

func TestFindPhandleUnassigned(t *testing.T) {
	tree := boardTree(t)
	require.Nil(t, tree.FindPhandle(99))
}

func TestFindPropAndStat(t *testing.T) {
	tree := boardTree(t)
	cpus := tree.Find("/cpus")
	require.NotNil(t, cpus)

	stat := cpus.Stat()
	require.Equal(t, "cpus", stat.Name)
	require.Equal(t, 2, stat.ChildCount)
	require.Equal(t, 0, stat.PropCount)
	require.Equal(t, 2, stat.SiblingCount) // cpus and memory@... share the root parent

	reg := cpus.Child().FindProp("reg")
	require.NotNil(t, reg)
	require.Equal(t, "reg", reg.Name())
}

func TestSiblingChildParentNavigation(t *testing.T) {
	tree := boardTree(t)
	cpus := tree.Find("/cpus")
	mem := tree.Find("/memory@80000000")

	// Children are arena-prepended during parsing, so the root's Child()
	// is the last-declared child (memory@...), whose Sibling() is cpus.
	require.True(t, tree.Root().Child().Equal(mem))
	require.True(t, mem.Sibling().Equal(cpus))
	require.Nil(t, cpus.Sibling())
	require.True(t, mem.Parent().Equal(tree.Root()))
	require.True(t, cpus.Child().Parent().Equal(cpus))
}

func TestRootStatNameIsSlash(t *testing.T) {
	tree := boardTree(t)
	require.Equal(t, "/", tree.Root().Stat().Name)
}
