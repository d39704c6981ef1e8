// Package tokens implements the single-pass descent parser over the FDT
// structure block: the pre-scan sizing walk and the recursive-descent tree
// builder that turns a stream of BEGIN_NODE/END_NODE/PROP/NOP tokens into
// an arena-backed tree of nodes and properties.
//
// Grounded on original_source/smoldtb.c's parse_node/parse_prop/
// alloc_buffers, rewritten in the teacher's linear-scan-building-a-linked-
// list style (internal/core/objectheader.go's parseV2Header walks a
// message stream the same way: a byte cursor, a bounds check per step,
// and a typed record appended to a list on every successful decode).
package tokens

import (
	"github.com/BlueFalconHD/smoldtb/internal/arena"
	"github.com/BlueFalconHD/smoldtb/internal/endian"
	"github.com/BlueFalconHD/smoldtb/internal/errs"
)

// Token values as laid out in the structure block, one per 32-bit cell.
const (
	BeginNode uint32 = 1
	EndNode   uint32 = 2
	Prop      uint32 = 3
	Nop       uint32 = 4
)

const cellBytes = endian.CellBytes

// Counts is the result of the arena pre-scan: the number of BEGIN_NODE and
// PROP tokens found by a word-by-word walk of the structure block.
type Counts struct {
	Nodes int
	Props int
}

// Scan counts BEGIN_NODE and PROP tokens by treating every 32-bit-aligned
// word of the structure block as a candidate token, exactly as the
// reference implementation's alloc_buffers does. This intentionally does
// not distinguish a real token from a name or payload word that happens to
// equal 1 or 3; the over-count this produces wastes arena space but never
// under-allocates (spec §9).
func Scan(structBlock []byte) Counts {
	var c Counts
	n := len(structBlock) / cellBytes
	for i := 0; i < n; i++ {
		switch endian.Big32(structBlock[i*cellBytes : i*cellBytes+cellBytes]) {
		case BeginNode:
			c.Nodes++
		case Prop:
			c.Props++
		}
	}
	return c
}

// Parser walks a structure block and strings block, allocating nodes and
// properties into an arena as it goes.
type Parser struct {
	cells   []byte // structure block
	strings []byte // strings block
	arena   *arena.Arena
	onError errs.Reporter
}

// NewParser builds a Parser over the given structure and strings blocks,
// allocating into ar as nodes and properties are discovered.
func NewParser(structBlock, stringsBlock []byte, ar *arena.Arena, onError errs.Reporter) *Parser {
	return &Parser{cells: structBlock, strings: stringsBlock, arena: ar, onError: onError}
}

// ParseAll repeatedly parses top-level nodes wherever BEGIN_NODE is seen,
// prepending each returned subtree onto a root list (sub.Sibling = root;
// root = sub), tolerating stray words between them. Most blobs contain
// exactly one top-level node; the list form tolerates unusual blobs, per
// spec §4.3.
func (p *Parser) ParseAll() arena.NodeID {
	root := arena.NoNode
	cursor := 0
	numCells := len(p.cells) / cellBytes

	for cursor < numCells {
		if p.cellAt(cursor) != BeginNode {
			cursor++
			continue
		}

		sub, ok := p.parseNode(&cursor)
		if !ok {
			continue
		}
		p.arena.Node(sub).Sibling = root
		root = sub
	}

	return root
}

// cellAt reads the big-endian token value of the cursor-th cell.
func (p *Parser) cellAt(cursor int) uint32 {
	off := cursor * cellBytes
	return endian.Big32(p.cells[off : off+cellBytes])
}

// parseNode expects cells[*cursor] == BEGIN_NODE. It allocates a node,
// reads its NUL-terminated inline name, then loops over children,
// properties, and NOPs until END_NODE, per spec §4.3.
func (p *Parser) parseNode(cursor *int) (arena.NodeID, bool) {
	id, ok := p.arena.AllocNode()
	if !ok {
		errs.Report(p.onError, "node allocation failed")
		return arena.NoNode, false
	}
	node := p.arena.Node(id)

	nameOff := (*cursor + 1) * cellBytes
	if nameOff > len(p.cells) {
		errs.Report(p.onError, "node name runs past end of structure block")
		*cursor++
		return arena.NoNode, false
	}
	nameLen := cStringLen(p.cells[nameOff:])
	if nameLen == 0 {
		node.Name = nil // marker for the unnamed root
	} else {
		node.Name = p.cells[nameOff : nameOff+nameLen]
	}
	*cursor += endian.CellsForBytes(nameLen+1) + 1

	numCells := len(p.cells) / cellBytes
	for *cursor < numCells {
		tok := p.cellAt(*cursor)
		switch tok {
		case EndNode:
			*cursor++
			return id, true

		case BeginNode:
			child, ok := p.parseNode(cursor)
			if !ok {
				continue
			}
			cn := p.arena.Node(child)
			cn.Sibling = node.Child
			cn.Parent = id
			node.Child = child

		case Prop:
			prop, ok := p.parseProp(cursor)
			if !ok {
				continue
			}
			p.arena.Prop(prop).Next = node.Prop
			node.Prop = prop
			p.checkSpecialProp(id, prop)

		default:
			*cursor++
		}
	}

	errs.Report(p.onError, "node is missing terminating tag")
	return arena.NoNode, false
}

// parseProp expects cells[*cursor] == PROP. It decodes the FDT property
// descriptor (length, name-offset) from the next two cells and advances
// past the payload: 1 cell for PROP itself, 2 for the descriptor, plus
// the payload rounded up to a whole number of cells. A descriptor or
// payload that would run past the end of the structure block is reported
// and rejected rather than read out of bounds.
func (p *Parser) parseProp(cursor *int) (arena.PropID, bool) {
	id, ok := p.arena.AllocProp()
	if !ok {
		errs.Report(p.onError, "property allocation failed")
		return arena.NoProp, false
	}

	descOff := (*cursor + 1) * cellBytes
	if descOff+2*cellBytes > len(p.cells) {
		errs.Report(p.onError, "property descriptor runs past end of structure block")
		*cursor++
		return arena.NoProp, false
	}
	length := endian.Big32(p.cells[descOff : descOff+cellBytes])
	nameOffset := endian.Big32(p.cells[descOff+cellBytes : descOff+2*cellBytes])

	payloadOff := descOff + 2*cellBytes
	if payloadOff+int(length) > len(p.cells) {
		errs.Report(p.onError, "property payload runs past end of structure block")
		*cursor++
		return arena.NoProp, false
	}

	prop := p.arena.Prop(id)
	prop.Name = stringAt(p.strings, nameOffset)
	prop.Value = p.cells[payloadOff : payloadOff+int(length)]

	*cursor += endian.CellsForBytes(int(length)) + 3
	return id, true
}

// checkSpecialProp decodes the phandle/linux,phandle property, if this is
// one, and records it into the arena's phandle index. The early-out tests
// the property name's first byte against the set {'#','p','l'}, the
// corrected form of the reference implementation's tautological check
// (spec §9).
func (p *Parser) checkSpecialProp(node arena.NodeID, propID arena.PropID) {
	prop := p.arena.Prop(propID)
	if len(prop.Name) == 0 {
		return
	}
	switch prop.Name[0] {
	case '#', 'p', 'l':
	default:
		return
	}

	if isName(prop.Name, "phandle") || isName(prop.Name, "linux,phandle") {
		h := endian.ExtractCells(prop.Value, 1)
		if h < uint64(p.arena.PhandleCapacity()) {
			p.arena.SetPhandle(h, node)
		}
		// Values at or above the arena's node count are silently ignored;
		// the node can still be found by path (spec §4.3).
	}
}

func isName(b []byte, name string) bool {
	return len(b) == len(name) && string(b) == name
}

// cStringLen returns the length, in bytes, of the NUL-terminated string
// starting at b[0] (not counting the terminator). If b contains no NUL,
// the whole slice is treated as the string (this never happens for
// well-formed blobs, where every name and the strings block are
// NUL-terminated by construction).
func cStringLen(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return len(b)
}

// stringAt returns the NUL-terminated string at byte offset off within
// strings, as a borrowed slice excluding the terminator.
func stringAt(strings []byte, off uint32) []byte {
	if int(off) >= len(strings) {
		return nil
	}
	rest := strings[off:]
	return rest[:cStringLen(rest)]
}
