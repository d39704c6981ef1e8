// Package endian provides the big-endian cell reads and alignment
// arithmetic that every layer of the FDT parser and serializer builds on.
//
// The structure block is a sequence of 32-bit big-endian cells; unlike the
// reference C implementation, which hand-rolls be32() byte-swapping over
// raw pointers, this package reaches for encoding/binary.BigEndian the way
// the rest of the corpus does for binary-format field reads — Go's
// standard library IS the idiomatic tool here, not a fallback.
package endian

import "encoding/binary"

// CellBytes is the width in bytes of one structure-block cell.
const CellBytes = 4

// Big32 reads a big-endian uint32 starting at b[0]. The caller is
// responsible for ensuring at least 4 bytes are available; callers that
// need a bounds-checked read should slice b first.
func Big32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// PutBig32 writes v as a big-endian uint32 into b[0:4].
func PutBig32(b []byte, v uint32) {
	binary.BigEndian.PutUint32(b, v)
}

// AlignUp rounds n up to the nearest multiple of a. a must be a positive
// power of two for the common a=4 (cell-size) case used throughout this
// module; any positive a works.
func AlignUp(n, a int) int {
	if a <= 0 {
		return n
	}
	return (n + a - 1) / a * a
}

// CellsForBytes returns the number of whole 4-byte cells needed to hold n
// bytes, i.e. AlignUp(n, CellBytes) / CellBytes.
func CellsForBytes(n int) int {
	return AlignUp(n, CellBytes) / CellBytes
}

// ExtractCells assembles k big-endian 32-bit cells starting at cells[0]
// into a single host-native unsigned integer, most-significant cell
// first: Σ cells[i] << ((k-1-i)*32). Used by every typed property
// decoder. cells must contain at least k*4 bytes.
func ExtractCells(cells []byte, k int) uint64 {
	var value uint64
	for i := 0; i < k; i++ {
		cell := uint64(Big32(cells[i*CellBytes : i*CellBytes+CellBytes]))
		value |= cell << uint((k-1-i)*32)
	}
	return value
}

// PutCells writes value into k big-endian 32-bit cells, most-significant
// cell first — the inverse of ExtractCells, used by the typed property
// writers.
func PutCells(cells []byte, k int, value uint64) {
	for i := 0; i < k; i++ {
		shift := uint((k - 1 - i) * 32)
		PutBig32(cells[i*CellBytes:i*CellBytes+CellBytes], uint32(value>>shift))
	}
}
