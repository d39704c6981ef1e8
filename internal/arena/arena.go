// Package arena implements the bump-pointer node/property/phandle arena
// described by the FDT spec's allocator component: a single region,
// pre-sized from a scan of the structure block, partitioned into three
// sub-arenas and never individually freed.
//
// Grounded on the teacher's internal/writer/allocator.go end-of-file bump
// allocation strategy (internal/writer/allocator.go: Allocator.Allocate
// hands out monotonically increasing offsets from one tracked region),
// adapted here from file-offset bump-allocation to in-memory record-slot
// bump-allocation. Because a Go arena backing slice can always be grown by
// append, nodes and properties are addressed by index (NodeID/PropID) —
// stable across growth — rather than by pointer, per the ownership-model
// note in the spec's design notes.
package arena

import (
	"fmt"

	"github.com/BlueFalconHD/smoldtb/internal/errs"
	"github.com/BlueFalconHD/smoldtb/internal/overflow"
)

// Approximate per-record byte sizes used only to compute the advisory
// Reserve request passed to a host allocator; actual storage is always
// allocated natively via make, so these figures need not match the Go
// runtime's real struct layout exactly.
const (
	nodeRecordBytes    = 4*4 + 4 // four int32-ish fields + a name slice header, approximated
	propRecordBytes    = 3*4 + 4*2
	phandleRecordBytes = 4
)

// NodeID is a stable index into an Arena's node slice. NoNode denotes the
// absence of a relation (no parent, no child, no sibling).
type NodeID int32

// PropID is a stable index into an Arena's property slice. NoProp denotes
// the end of a node's property list.
type PropID int32

// NoNode and NoProp are the sentinel "absent" values for NodeID and PropID.
const (
	NoNode NodeID = -1
	NoProp PropID = -1
)

// Node is one device-tree node record. Name is nil for the synthetic root
// (an empty name in the blob). Parent/Child/Sibling are weak relations:
// Parent never implies ownership, only traversal.
type Node struct {
	Name    []byte
	Parent  NodeID
	Child   NodeID
	Sibling NodeID
	Prop    PropID
}

// Property is one property record. Name and Value are borrowed byte
// slices: Name points into the strings block (or a host-allocated buffer
// for mutations), Value points at the raw big-endian payload cells inside
// the structure block (or a freshly allocated buffer for mutated/created
// properties).
type Property struct {
	Name  []byte
	Value []byte
	Next  PropID
}

// Allocator is the host-injected capability used to reserve the arena's
// backing storage. It mirrors the spec's malloc/free collaborator: Reserve
// is called once per Arena with the exact byte count the sizing pass
// computed, and Release is called exactly once, when the arena is torn
// down. A nil Allocator is permitted — New falls back to Go's built-in
// allocator (make), useful for hosts that don't need allocation control.
type Allocator interface {
	Reserve(size int) ([]byte, error)
	Release(buf []byte)
}

// Arena owns the node, property, and phandle-index storage for one parsed
// or constructed tree. Bump cursors (nodeHead, propHead) advance on every
// allocation and never retreat; there is no per-record free.
type Arena struct {
	nodes    []Node
	props    []Property
	phandles []NodeID // densely indexed by phandle value; len == nodeCap

	nodeHead int
	propHead int

	alloc     Allocator
	reserved  []byte // token returned by alloc.Reserve, held only for Release
	onError   errs.Reporter
}

// New reserves and partitions an arena sized for nodeCap nodes and
// propCap properties. It calls alloc.Reserve (when alloc is non-nil) with
// the approximate total byte size the three sub-arenas would occupy as a
// raw byte allocation, purely so a host that wants to cap or account for
// memory use can refuse the request; the actual Go storage is allocated
// natively via make so that growth-safe indices (not raw pointers) back
// every relation.
func New(nodeCap, propCap int, alloc Allocator, onError errs.Reporter) (*Arena, error) {
	if nodeCap < 0 || propCap < 0 {
		return nil, errs.New("arena: negative capacity")
	}

	a := &Arena{
		nodeHead: 0,
		propHead: 0,
		alloc:    alloc,
		onError:  onError,
	}

	if alloc != nil {
		totalBytes, err := overflow.ArenaBytes(uint64(nodeCap), uint64(propCap), nodeRecordBytes, propRecordBytes, phandleRecordBytes)
		if err != nil {
			errs.Reportf(onError, "arena: size computation overflowed: %v", err)
			return nil, fmt.Errorf("arena: %w", err)
		}
		buf, err := alloc.Reserve(int(totalBytes))
		if err != nil {
			errs.Reportf(onError, "arena: host allocator refused %d bytes: %v", totalBytes, err)
			return nil, fmt.Errorf("arena: reserve failed: %w", err)
		}
		a.reserved = buf
	}

	a.nodes = make([]Node, nodeCap)
	a.props = make([]Property, propCap)
	a.phandles = make([]NodeID, nodeCap)
	for i := range a.phandles {
		a.phandles[i] = NoNode
	}
	for i := range a.nodes {
		a.nodes[i] = Node{Parent: NoNode, Child: NoNode, Sibling: NoNode, Prop: NoProp}
	}
	for i := range a.props {
		a.props[i].Next = NoProp
	}

	return a, nil
}

// Release returns the arena's reserved allocation (if any) to the host
// allocator. No per-record teardown is performed; the whole block is
// freed in one call, matching the spec's single-free-call contract.
func (a *Arena) Release() {
	if a.alloc != nil && a.reserved != nil {
		a.alloc.Release(a.reserved)
		a.reserved = nil
	}
}

// AllocNode bump-allocates the next node slot. ok is false when the arena
// is exhausted; the caller reports this to on_error and skips the
// corresponding tree fragment, per the spec's resource-error handling.
func (a *Arena) AllocNode() (NodeID, bool) {
	if a.nodeHead >= len(a.nodes) {
		errs.Report(a.onError, "node allocator ran out of space")
		return NoNode, false
	}
	id := NodeID(a.nodeHead)
	a.nodeHead++
	return id, true
}

// AllocProp bump-allocates the next property slot.
func (a *Arena) AllocProp() (PropID, bool) {
	if a.propHead >= len(a.props) {
		errs.Report(a.onError, "property allocator ran out of space")
		return NoProp, false
	}
	id := PropID(a.propHead)
	a.propHead++
	return id, true
}

// Node returns a pointer to the node record at id. id must be a value
// previously returned by AllocNode (or NoNode, in which case Node panics —
// callers must check against NoNode first, exactly as they must check a
// null node pointer in the reference implementation).
func (a *Arena) Node(id NodeID) *Node {
	return &a.nodes[id]
}

// Prop returns a pointer to the property record at id.
func (a *Arena) Prop(id PropID) *Property {
	return &a.props[id]
}

// NodeCount returns the number of nodes allocated so far. After parsing
// this can be below the pre-scan count the arena was sized for, since the
// pre-scan may over-count.
func (a *Arena) NodeCount() int { return a.nodeHead }

// PropCount returns the number of properties allocated so far.
func (a *Arena) PropCount() int { return a.propHead }

// PhandleCapacity returns the size of the phandle index (== the node
// capacity the arena was sized for).
func (a *Arena) PhandleCapacity() int { return len(a.phandles) }

// SetPhandle records that node id owns phandle value h. Values at or
// above the phandle index's capacity are silently ignored by the caller
// before this is invoked (see spec §4.3's check_special_prop semantics);
// SetPhandle itself trusts its caller to have already bounds-checked h.
func (a *Arena) SetPhandle(h uint64, id NodeID) {
	a.phandles[h] = id
}

// Phandle looks up the node owning phandle value h, returning (NoNode,
// false) if h is out of range or unassigned.
func (a *Arena) Phandle(h uint64) (NodeID, bool) {
	if h >= uint64(len(a.phandles)) {
		return NoNode, false
	}
	id := a.phandles[h]
	if id == NoNode {
		return NoNode, false
	}
	return id, true
}

// AllNodes returns the allocated prefix of the node slice, in arena
// (allocation) order — used by FindCompatible's linear scan, which must
// resume "just after" a given node by arena index.
func (a *Arena) AllNodes() []Node {
	return a.nodes[:a.nodeHead]
}
