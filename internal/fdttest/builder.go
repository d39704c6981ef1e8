// Package fdttest hand-assembles literal FDT blobs byte-by-byte for use in
// tests across the module (internal/tokens and fdt).
// Grounded on the teacher's testdata/generators pattern of hand-assembling
// binary fixtures for tests, but implemented as a Go helper function rather
// than an external generator program, since FDT fixtures are only a few
// hundred bytes.
package fdttest

import "encoding/binary"

const (
	magic           uint32 = 0xD00DFEED
	version         uint32 = 17
	lastCompVersion uint32 = 16
	headerSize             = 40
	reservedMemSize        = 16

	tokenBeginNode uint32 = 1
	tokenEndNode   uint32 = 2
	tokenProp      uint32 = 3
	tokenNop       uint32 = 4
)

// Prop is a single property descriptor used by Node.
type Prop struct {
	Name  string
	Value []byte
}

// Node describes one node of the tree to encode: a name and its
// properties, followed recursively by its children.
type Node struct {
	Name     string
	Props    []Prop
	Children []Node
}

// Builder assembles a well-formed FDT blob from a Node tree.
type Builder struct {
	BootCPUID uint32
}

func putBig32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func alignUp4(buf []byte) []byte {
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// Build encodes root as the sole top-level node of a complete FDT blob,
// returning the finished byte slice.
func (b Builder) Build(root Node) []byte {
	var structs []byte
	var strings []byte
	nameOffsets := map[string]uint32{}

	internName := func(name string) uint32 {
		if off, ok := nameOffsets[name]; ok {
			return off
		}
		off := uint32(len(strings))
		strings = append(strings, []byte(name)...)
		strings = append(strings, 0)
		nameOffsets[name] = off
		return off
	}

	var emit func(n Node)
	emit = func(n Node) {
		structs = putBig32(structs, tokenBeginNode)
		structs = append(structs, []byte(n.Name)...)
		structs = append(structs, 0)
		structs = alignUp4(structs)

		for _, p := range n.Props {
			structs = putBig32(structs, tokenProp)
			structs = putBig32(structs, uint32(len(p.Value)))
			structs = putBig32(structs, internName(p.Name))
			structs = append(structs, p.Value...)
			structs = alignUp4(structs)
		}

		for _, c := range n.Children {
			emit(c)
		}

		structs = putBig32(structs, tokenEndNode)
	}
	emit(root)

	offsetStructs := uint32(headerSize + reservedMemSize)
	offsetStrings := offsetStructs + uint32(len(structs))
	totalSize := offsetStrings + uint32(len(strings))

	blob := make([]byte, 0, totalSize)
	blob = putBig32(blob, magic)
	blob = putBig32(blob, totalSize)
	blob = putBig32(blob, offsetStructs)
	blob = putBig32(blob, offsetStrings)
	blob = putBig32(blob, headerSize)
	blob = putBig32(blob, version)
	blob = putBig32(blob, lastCompVersion)
	blob = putBig32(blob, b.BootCPUID)
	blob = putBig32(blob, uint32(len(strings)))
	blob = putBig32(blob, uint32(len(structs)))

	blob = append(blob, make([]byte, reservedMemSize)...)
	blob = append(blob, structs...)
	blob = append(blob, strings...)

	return blob
}

// Cells packs values as a sequence of 32-bit big-endian cells, one per
// value — the common case for #address-cells/#size-cells == 1 payloads.
func Cells(values ...uint32) []byte {
	var buf []byte
	for _, v := range values {
		buf = putBig32(buf, v)
	}
	return buf
}

// Cells64 packs a single value as two 32-bit big-endian cells
// (high cell first), the common case for a 64-bit reg/range entry.
func Cells64(value uint64) []byte {
	return Cells(uint32(value>>32), uint32(value))
}

// CString packs s as a NUL-terminated string property payload.
func CString(s string) []byte {
	return append([]byte(s), 0)
}
