package fdt

import (
	"fmt"

	"github.com/BlueFalconHD/smoldtb/internal/arena"
	"github.com/BlueFalconHD/smoldtb/internal/endian"
	"github.com/BlueFalconHD/smoldtb/internal/errs"
	"github.com/BlueFalconHD/smoldtb/internal/tokens"
)

// Header field byte offsets within the 40-byte FDT header, per the
// devicetree.org specification.
const (
	offMagic            = 0
	offTotalSize        = 4
	offOffsetStructs    = 8
	offOffsetStrings    = 12
	offOffsetMemRsvd    = 16
	offVersion          = 20
	offLastCompVersion  = 24
	offBootCPUID        = 28
	offSizeStrings      = 32
	offSizeStructs      = 36
	headerSize          = 40
	minSupportedVersion = 16
)

// Tree is a parsed (or freshly constructed) device tree: an arena of
// nodes and properties plus the blob it borrows names and values from.
// Unlike the reference implementation's single process-wide dtb_state,
// Tree is an explicit context value — every method is called on a *Tree —
// per the re-architecture noted in spec §9's design notes. See Init/
// Global in facade.go for a thin single-context convenience layer on top.
//
// A *Tree is safe for concurrent read-only use once parsing has
// completed; mutation methods (CreateChild, CreateSibling, CreateProp,
// and the typed property writers) require external synchronization with
// any concurrent readers, per spec §5.
type Tree struct {
	blob     []byte
	arena    *arena.Arena
	root     arena.NodeID
	ops      Ops
	writable bool
}

// QueryTotalSize reads the header's total-size field from an unparsed
// blob, without validating magic or allocating anything. Equivalent to
// the reference implementation's dtb_query_total_size, corrected per spec
// §9 (the reference's buffer-size comparison bug does not apply here
// since this function takes no buffer at all — it only reads the field).
func QueryTotalSize(blob []byte) (uint32, error) {
	if len(blob) < headerSize {
		return 0, errs.New("fdt: blob too small to contain a header")
	}
	return endian.Big32(blob[offTotalSize : offTotalSize+4]), nil
}

// Parse validates the blob's header and parses its structure block into a
// new Tree, using default configuration (Writable: false). Equivalent to
// the reference implementation's dtb_init.
func Parse(blob []byte, ops Ops) (*Tree, error) {
	return ParseWithConfig(blob, ops, &Config{ConfigVersion: 0})
}

// ParseWithConfig validates the blob's header and parses its structure
// block into a new Tree under the given configuration. Returns an error
// (and reports via ops.OnError) on bad magic, an unsupported version, or
// arena reservation failure.
func ParseWithConfig(blob []byte, ops Ops, cfg *Config) (*Tree, error) {
	if cfg == nil {
		errs.Report(errs.Reporter(ops.OnError), "config argument cannot be nil")
		return nil, errs.New("fdt: nil config")
	}
	sanitised := cfg.sanitised()

	if len(blob) < headerSize {
		errs.Report(errs.Reporter(ops.OnError), "blob too small to contain a header")
		return nil, errs.New("fdt: blob too small to contain a header")
	}

	magic := endian.Big32(blob[offMagic : offMagic+4])
	if magic != fdtMagic {
		errs.Report(errs.Reporter(ops.OnError), "FDT has incorrect magic number")
		return nil, fmt.Errorf("fdt: bad magic 0x%08x", magic)
	}

	version := endian.Big32(blob[offVersion : offVersion+4])
	if version < minSupportedVersion {
		errs.Report(errs.Reporter(ops.OnError), "FDT version below minimum supported version")
		return nil, fmt.Errorf("fdt: unsupported version %d (minimum %d)", version, minSupportedVersion)
	}

	structOff := endian.Big32(blob[offOffsetStructs : offOffsetStructs+4])
	structSize := endian.Big32(blob[offSizeStructs : offSizeStructs+4])
	stringsOff := endian.Big32(blob[offOffsetStrings : offOffsetStrings+4])
	stringsSize := endian.Big32(blob[offSizeStrings : offSizeStrings+4])

	if uint64(structOff)+uint64(structSize) > uint64(len(blob)) {
		errs.Report(errs.Reporter(ops.OnError), "structure block extends beyond blob")
		return nil, errs.New("fdt: structure block extends beyond blob")
	}
	if uint64(stringsOff)+uint64(stringsSize) > uint64(len(blob)) {
		errs.Report(errs.Reporter(ops.OnError), "strings block extends beyond blob")
		return nil, errs.New("fdt: strings block extends beyond blob")
	}

	structBlock := blob[structOff : structOff+structSize]
	stringsBlock := blob[stringsOff : stringsOff+stringsSize]

	counts := tokens.Scan(structBlock)
	ar, err := arena.New(counts.Nodes, counts.Props, ops.Alloc, errs.Reporter(ops.OnError))
	if err != nil {
		return nil, errs.Wrap("arena reservation failed", err)
	}

	parser := tokens.NewParser(structBlock, stringsBlock, ar, errs.Reporter(ops.OnError))
	root := parser.ParseAll()

	t := &Tree{
		blob:     blob,
		arena:    ar,
		root:     root,
		ops:      ops,
		writable: sanitised.Writable,
	}
	return t, nil
}

// Writable reports whether this tree was parsed with the writable config
// option set, per spec §6. Mutation methods do not themselves consult
// this flag (the spec defines it as informational for hosts choosing
// whether to call the mutation API at all), but it's exposed for callers
// that want to gate their own use of CreateChild/CreateSibling/CreateProp
// on it.
func (t *Tree) Writable() bool {
	return t.writable
}

const fdtMagic uint32 = 0xD00DFEED

// Close releases the tree's arena back to the injected allocator, when
// one was supplied. It is safe to call Close on a Tree with no allocator
// (a no-op in that case).
func (t *Tree) Close() {
	if t == nil || t.arena == nil {
		return
	}
	t.arena.Release()
}

// Root returns the tree's root node: the first (most recently parsed)
// entry of the top-level sibling list. For well-formed single-root blobs
// this is the only top-level node.
func (t *Tree) Root() *Node {
	return t.wrapNode(t.root)
}

func (t *Tree) wrapNode(id arena.NodeID) *Node {
	if id == arena.NoNode {
		return nil
	}
	return &Node{tree: t, id: id}
}

func (t *Tree) wrapProp(id arena.PropID) *Property {
	if id == arena.NoProp {
		return nil
	}
	return &Property{tree: t, id: id}
}

// Node is a handle to one parsed or created device-tree node. It borrows
// its tree's arena and blob; it is only valid for the lifetime of the
// Tree that produced it.
type Node struct {
	tree *Tree
	id   arena.NodeID
}

// Equal reports whether n and other refer to the same node of the same
// tree. Two Node values obtained from independent lookups (e.g. via
// FindPhandle and via Find) compare Equal when they name the same
// underlying arena slot.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.tree == other.tree && n.id == other.id
}

// record returns the underlying arena record for n.
func (n *Node) record() *arena.Node {
	return n.tree.arena.Node(n.id)
}

// Property is a handle to one parsed or created property record.
type Property struct {
	tree *Tree
	id   arena.PropID
}

// Equal reports whether p and other refer to the same property.
func (p *Property) Equal(other *Property) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.tree == other.tree && p.id == other.id
}

func (p *Property) record() *arena.Property {
	return p.tree.arena.Prop(p.id)
}
