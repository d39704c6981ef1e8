package fdt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BlueFalconHD/smoldtb/internal/fdttest"
)

// An unnamed root with no properties and no children parses to a tree
// whose root reports name "/" and zero properties/children.
func TestEmptyRootBlob(t *testing.T) {
	blob := fdttest.Builder{}.Build(fdttest.Node{Name: ""})

	tree, err := Parse(blob, Ops{})
	require.NoError(t, err)

	stat := tree.Root().Stat()
	require.Equal(t, "/", stat.Name)
	require.Equal(t, 0, stat.PropCount)
	require.Equal(t, 0, stat.ChildCount)
}

// A root-level "compatible" list is found via FindCompatible(nil, ...),
// and a resumed scan starting from that same match finds no further hit.
func TestRootCompatibleListFoundThenExhausted(t *testing.T) {
	blob := fdttest.Builder{}.Build(fdttest.Node{
		Name: "",
		Props: []fdttest.Prop{
			{Name: "compatible", Value: append(fdttest.CString("vendor,foo"), fdttest.CString("vendor,bar")...)},
		},
	})

	tree, err := Parse(blob, Ops{})
	require.NoError(t, err)

	hit := tree.FindCompatible(nil, "vendor,bar")
	require.True(t, hit.Equal(tree.Root()))

	require.Nil(t, tree.FindCompatible(hit, "vendor,bar"))
}

// A two-cell reg value decodes as a single 64-bit value via ReadValues.
func TestTwoCellValueDecodesAsUint64(t *testing.T) {
	blob := fdttest.Builder{}.Build(fdttest.Node{
		Name: "",
		Props: []fdttest.Prop{
			{Name: "reg", Value: []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02}},
		},
	})

	tree, err := Parse(blob, Ops{})
	require.NoError(t, err)

	prop := tree.Root().FindProp("reg")
	out := make([]uint64, 1)
	n := prop.ReadValues(2, out)
	require.Equal(t, 1, n)
	require.Equal(t, uint64(0x100000002), out[0])
}

// A {2,2} pair layout decodes two 2-cell halves independently.
func TestTwoCellPairLayoutDecodes(t *testing.T) {
	blob := fdttest.Builder{}.Build(fdttest.Node{
		Name: "",
		Props: []fdttest.Prop{
			{Name: "ranges", Value: []byte{
				0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02,
				0x00, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00, 0x04,
			}},
		},
	})

	tree, err := Parse(blob, Ops{})
	require.NoError(t, err)

	prop := tree.Root().FindProp("ranges")
	out := make([]Pair, 1)
	n := prop.ReadPairs(PairLayout{A: 2, B: 2}, out)
	require.Equal(t, 1, n)
	require.Equal(t, uint64(0x100000002), out[0].A)
	require.Equal(t, uint64(0x300000004), out[0].B)
}

// A phandle property makes its owning node reachable by phandle lookup,
// identical to the node reached by path lookup.
func TestPhandleLookupMatchesPathLookup(t *testing.T) {
	blob := fdttest.Builder{}.Build(fdttest.Node{
		Name: "",
		Children: []fdttest.Node{
			{Name: "cpus", Children: []fdttest.Node{
				{Name: "cpu@0", Props: []fdttest.Prop{{Name: "phandle", Value: fdttest.Cells(2)}}},
			}},
		},
	})

	tree, err := Parse(blob, Ops{})
	require.NoError(t, err)

	require.True(t, tree.FindPhandle(2).Equal(tree.Find("/cpus/cpu@0")))
}

// Parsing a blob, serializing it with a given boot CPU ID, and reparsing
// the result yields a tree with the same shape and a header carrying
// version 17 / last-compatible 16.
func TestParseSerializeReparseRoundTrip(t *testing.T) {
	original := fdttest.Builder{}.Build(fdttest.Node{
		Name: "",
		Props: []fdttest.Prop{
			{Name: "compatible", Value: fdttest.CString("acme,board")},
		},
		Children: []fdttest.Node{
			{Name: "cpus", Children: []fdttest.Node{
				{Name: "cpu@0", Props: []fdttest.Prop{{Name: "phandle", Value: fdttest.Cells(2)}}},
			}},
		},
	})

	tree, err := Parse(original, Ops{})
	require.NoError(t, err)

	size := tree.FinalizeSize()
	buf := make([]byte, size)
	n, err := tree.Finalize(buf, 0)
	require.NoError(t, err)
	require.Equal(t, uint(size), n)

	require.Equal(t, uint32(17), beHeaderField(buf, 20))
	require.Equal(t, uint32(16), beHeaderField(buf, 24))

	reparsed, err := Parse(buf, Ops{})
	require.NoError(t, err)

	require.True(t, reparsed.FindPhandle(2).Equal(reparsed.Find("/cpus/cpu@0")))
	require.Equal(t, "acme,board", mustReadString(t, reparsed.Root().FindProp("compatible"), 0))
}

func beHeaderField(buf []byte, off int) uint32 {
	return uint32(buf[off])<<24 | uint32(buf[off+1])<<16 | uint32(buf[off+2])<<8 | uint32(buf[off+3])
}

func mustReadString(t *testing.T, p *Property, index int) string {
	t.Helper()
	s, ok := p.ReadString(index)
	require.True(t, ok)
	return s
}
