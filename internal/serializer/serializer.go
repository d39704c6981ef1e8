// Package serializer implements the two-pass FDT re-serializer: a sizing
// pass that sums the required structure- and strings-block sizes, and an
// emission pass that writes a spec-compliant blob (header, reserved-memory
// terminator, structure tokens, strings block) into a caller-provided
// buffer.
//
// Grounded on original_source/smoldtb.c's dtb_finalise_to_buffer, recast
// in the teacher's own two-phase sizing/writing idiom: the teacher's
// internal/writer.Allocator hands out monotonically increasing byte
// offsets from a single tracked cursor (internal/writer/allocator.go); this
// serializer keeps the same "one monotonically advancing cursor per
// region" shape but runs it twice — once to size, once to emit — because
// (unlike the teacher's incrementally-grown HDF5 file) the whole FDT blob
// is produced by a single call.
package serializer

import (
	"fmt"
	"unsafe"

	"github.com/BlueFalconHD/smoldtb/internal/arena"
	"github.com/BlueFalconHD/smoldtb/internal/endian"
)

// Wire-format constants per the devicetree.org FDT specification, version
// 17 (last-compatible 16).
const (
	Magic           uint32 = 0xD00DFEED
	Version         uint32 = 17
	LastCompVersion uint32 = 16

	headerFields    = 10
	HeaderSize      = headerFields * endian.CellBytes // 40 bytes
	ReservedMemSize = 16                               // two consecutive 64-bit zeros

	tokenBeginNode uint32 = 1
	tokenEndNode   uint32 = 2
	tokenProp      uint32 = 3
)

// Failed is the sentinel returned instead of a byte count when emission
// fails partway through (buffer too small discovered mid-walk, or an
// internal bookkeeping bug); per spec §4.5/§7, buffer contents are
// undefined after a Failed result.
const Failed = ^uint(0)

// Sizes is the result of the sizing pass: the number of structure-block
// cells and strings-block bytes the tree requires.
type Sizes struct {
	StructCells  int
	StringsBytes int // includes the reserved 1 byte for the empty string at offset 0
}

// Size runs the sizing pass over the sibling list starting at root,
// without allocating or writing anything. It's also what Serialize uses
// internally before deciding whether buf is large enough.
func Size(ar *arena.Arena, root arena.NodeID) Sizes {
	s := Sizes{StringsBytes: 1}
	for id := root; id != arena.NoNode; id = ar.Node(id).Sibling {
		sizeNode(ar, id, &s)
	}
	return s
}

func sizeNode(ar *arena.Arena, id arena.NodeID, s *Sizes) {
	node := ar.Node(id)

	s.StructCells += 2 // BEGIN_NODE + END_NODE tokens
	s.StructCells += endian.CellsForBytes(len(node.Name) + 1)

	for p := node.Prop; p != arena.NoProp; p = ar.Prop(p).Next {
		prop := ar.Prop(p)
		s.StructCells += 3 // PROP token + length + name-offset
		s.StructCells += endian.CellsForBytes(len(prop.Value))
		s.StringsBytes += len(prop.Name) + 1
	}

	for c := node.Child; c != arena.NoNode; c = ar.Node(c).Sibling {
		sizeNode(ar, c, s)
	}
}

// TotalBytes returns the total blob size implied by s: header + reserved
// memory terminator + structure block + strings block.
func (s Sizes) TotalBytes() int {
	return HeaderSize + ReservedMemSize + s.StructCells*endian.CellBytes + s.StringsBytes
}

// Serialize writes the tree rooted at the sibling list headed by root
// into buf, per spec §4.5. If buf is nil, too small, or not 4-byte
// aligned, it returns the required total size and does not touch buf —
// this doubles as a sizing query. On success it returns the total size
// written. On a bounds-check failure discovered mid-emission (which
// should not happen given a correctly sized buffer, but is checked
// defensively at every write) it returns Failed and leaves buf contents
// undefined.
func Serialize(ar *arena.Arena, root arena.NodeID, buf []byte, bootCPUID uint32) (uint, error) {
	sizes := Size(ar, root)
	total := sizes.TotalBytes()

	if buf == nil || len(buf) < total {
		return uint(total), nil
	}
	if uintptr(unsafe.Pointer(&buf[0]))%uintptr(endian.CellBytes) != 0 {
		return uint(total), nil
	}

	structCells := sizes.StructCells
	structBytes := structCells * endian.CellBytes
	offsetStructs := HeaderSize + ReservedMemSize
	offsetStrings := offsetStructs + structBytes

	endian.PutBig32(buf[0:4], Magic)
	endian.PutBig32(buf[4:8], uint32(total))
	endian.PutBig32(buf[8:12], uint32(offsetStructs))
	endian.PutBig32(buf[12:16], uint32(offsetStrings))
	endian.PutBig32(buf[16:20], uint32(HeaderSize))
	endian.PutBig32(buf[20:24], Version)
	endian.PutBig32(buf[24:28], LastCompVersion)
	endian.PutBig32(buf[28:32], bootCPUID)
	endian.PutBig32(buf[32:36], uint32(sizes.StringsBytes))
	endian.PutBig32(buf[36:40], uint32(structBytes))

	for i := 0; i < ReservedMemSize; i++ {
		buf[HeaderSize+i] = 0
	}

	e := &emitter{
		ar:      ar,
		structs: buf[offsetStructs:offsetStrings],
		strings: buf[offsetStrings : offsetStrings+sizes.StringsBytes],
	}
	e.strings[0] = 0
	e.stringPtr = 1

	for id := root; id != arena.NoNode; id = ar.Node(id).Sibling {
		if !e.emitNode(id) {
			return Failed, fmt.Errorf("serializer: %s", e.failure)
		}
	}

	return uint(total), nil
}

// emitter holds the running cursors for the second pass. structPtr and
// stringPtr are byte offsets into their respective (pre-sliced) regions.
type emitter struct {
	ar        *arena.Arena
	structs   []byte
	strings   []byte
	structPtr int
	stringPtr int
	failure   string
}

func (e *emitter) emitNode(id arena.NodeID) bool {
	node := e.ar.Node(id)
	nameLen := len(node.Name)
	nameCells := endian.CellsForBytes(nameLen + 1)

	if !e.reserveStruct(endian.CellBytes + nameCells*endian.CellBytes) {
		return false
	}
	endian.PutBig32(e.structs[e.structPtr:], tokenBeginNode)
	e.structPtr += endian.CellBytes

	nameBuf := e.structs[e.structPtr : e.structPtr+nameCells*endian.CellBytes]
	for i := range nameBuf {
		nameBuf[i] = 0
	}
	copy(nameBuf, node.Name)
	e.structPtr += nameCells * endian.CellBytes

	for p := node.Prop; p != arena.NoProp; p = e.ar.Prop(p).Next {
		if !e.emitProp(e.ar.Prop(p)) {
			return false
		}
	}

	for c := node.Child; c != arena.NoNode; c = e.ar.Node(c).Sibling {
		if !e.emitNode(c) {
			return false
		}
	}

	if !e.reserveStruct(endian.CellBytes) {
		return false
	}
	endian.PutBig32(e.structs[e.structPtr:], tokenEndNode)
	e.structPtr += endian.CellBytes

	return true
}

func (e *emitter) emitProp(prop *arena.Property) bool {
	nameOffset := e.stringPtr
	nameLen := len(prop.Name)
	if e.stringPtr+nameLen+1 > len(e.strings) {
		e.failure = "strings block bounds exceeded"
		return false
	}
	copy(e.strings[e.stringPtr:], prop.Name)
	e.strings[e.stringPtr+nameLen] = 0
	e.stringPtr += nameLen + 1

	dataCells := endian.CellsForBytes(len(prop.Value))
	if !e.reserveStruct(3*endian.CellBytes + dataCells*endian.CellBytes) {
		return false
	}

	endian.PutBig32(e.structs[e.structPtr:], tokenProp)
	e.structPtr += endian.CellBytes
	endian.PutBig32(e.structs[e.structPtr:], uint32(len(prop.Value)))
	e.structPtr += endian.CellBytes
	endian.PutBig32(e.structs[e.structPtr:], uint32(nameOffset))
	e.structPtr += endian.CellBytes

	payload := e.structs[e.structPtr : e.structPtr+dataCells*endian.CellBytes]
	for i := range payload {
		payload[i] = 0
	}
	copy(payload, prop.Value)
	e.structPtr += dataCells * endian.CellBytes

	return true
}

func (e *emitter) reserveStruct(n int) bool {
	if e.structPtr+n > len(e.structs) {
		e.failure = "structure block bounds exceeded"
		return false
	}
	return true
}
