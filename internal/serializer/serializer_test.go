package serializer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BlueFalconHD/smoldtb/internal/arena"
	"github.com/BlueFalconHD/smoldtb/internal/endian"
)

// buildSimpleTree constructs a two-node arena (a root with one property
// and one property-less child) directly, bypassing the parser, so serializer tests don't
// depend on internal/tokens.
func buildSimpleTree(t *testing.T) (*arena.Arena, arena.NodeID) {
	t.Helper()
	ar, err := arena.New(2, 2, nil, nil)
	require.NoError(t, err)

	root, ok := ar.AllocNode()
	require.True(t, ok)
	rootRec := ar.Node(root)
	rootRec.Name = nil

	prop, ok := ar.AllocProp()
	require.True(t, ok)
	propRec := ar.Prop(prop)
	propRec.Name = []byte("compatible")
	propRec.Value = append([]byte("acme,board"), 0)
	rootRec.Prop = prop

	child, ok := ar.AllocNode()
	require.True(t, ok)
	childRec := ar.Node(child)
	childRec.Name = []byte("cpus")
	childRec.Parent = root
	rootRec.Child = child

	return ar, root
}

func TestSizeAccountsForNodesAndProps(t *testing.T) {
	ar, root := buildSimpleTree(t)
	sizes := Size(ar, root)

	require.Greater(t, sizes.StructCells, 0)
	require.Greater(t, sizes.StringsBytes, 1) // more than just the reserved empty string
}

func TestSerializeNilBufferReturnsSizeOnly(t *testing.T) {
	ar, root := buildSimpleTree(t)

	n, err := Serialize(ar, root, nil, 0)
	require.NoError(t, err)
	require.Equal(t, uint(Size(ar, root).TotalBytes()), n)
}

func TestSerializeTooSmallBufferReturnsSizeOnly(t *testing.T) {
	ar, root := buildSimpleTree(t)
	total := Size(ar, root).TotalBytes()

	buf := make([]byte, total-1)
	n, err := Serialize(ar, root, buf, 0)
	require.NoError(t, err)
	require.Equal(t, uint(total), n)
}

func TestSerializeWritesValidHeader(t *testing.T) {
	ar, root := buildSimpleTree(t)
	total := Size(ar, root).TotalBytes()

	buf := make([]byte, total)
	n, err := Serialize(ar, root, buf, 7)
	require.NoError(t, err)
	require.Equal(t, uint(total), n)

	require.Equal(t, Magic, endian.Big32(buf[0:4]))
	require.Equal(t, uint32(total), endian.Big32(buf[4:8]))
	require.Equal(t, Version, endian.Big32(buf[20:24]))
	require.Equal(t, LastCompVersion, endian.Big32(buf[24:28]))
	require.Equal(t, uint32(7), endian.Big32(buf[28:32]))
}

func TestSerializeStructBlockStartsWithBeginNode(t *testing.T) {
	ar, root := buildSimpleTree(t)
	total := Size(ar, root).TotalBytes()
	buf := make([]byte, total)

	_, err := Serialize(ar, root, buf, 0)
	require.NoError(t, err)

	offsetStructs := endian.Big32(buf[8:12])
	require.Equal(t, tokenBeginNode, endian.Big32(buf[offsetStructs:offsetStructs+4]))
}
