// Mutation API (spec §4.6): create sibling/child/property records in
// place, drawing fresh name and payload buffers from the host allocator
// since the original blob is read-only.
package fdt

import (
	"github.com/BlueFalconHD/smoldtb/internal/arena"
	"github.com/BlueFalconHD/smoldtb/internal/endian"
	"github.com/BlueFalconHD/smoldtb/internal/errs"
)

// allocBuf returns a freshly allocated n-byte buffer, going through the
// injected allocator when one was supplied at parse time, matching the
// spec's "the blob is not writable" rationale for mutation buffers.
func (t *Tree) allocBuf(n int) []byte {
	if t.ops.Alloc != nil {
		if buf, err := t.ops.Alloc.Reserve(n); err == nil {
			return buf[:n]
		}
	}
	return make([]byte, n)
}

func (t *Tree) copyName(name string) []byte {
	buf := t.allocBuf(len(name))
	copy(buf, name)
	return buf
}

// CreateSibling inserts a new, empty-property node named name immediately
// after n in n's sibling chain, sharing n's parent. Rejects a duplicate
// name found scanning forward from n (comparing both content and length,
// the corrected form of the reference implementation's check per spec
// §9) and returns nil without modifying the tree on any failure. Like the
// reference dtb_create_sibling, this does not see siblings that precede n
// in the chain; call CreateSibling on the chain head to check the whole
// set.
func (n *Node) CreateSibling(name string) *Node {
	if n == nil {
		errs.Report(n.errorFunc(), "cannot create sibling of nil node")
		return nil
	}
	if name == "" {
		errs.Report(n.tree.errorFunc(), "sibling cannot have empty name")
		return nil
	}

	for scan := n.id; scan != arena.NoNode; scan = n.tree.arena.Node(scan).Sibling {
		if string(n.tree.arena.Node(scan).Name) == name {
			errs.Report(n.tree.errorFunc(), "node name already in use")
			return nil
		}
	}

	id, ok := n.tree.arena.AllocNode()
	if !ok {
		return nil
	}
	sib := n.tree.arena.Node(id)
	sib.Name = n.tree.copyName(name)
	sib.Parent = n.record().Parent
	sib.Sibling = n.record().Sibling
	n.record().Sibling = id

	return n.tree.wrapNode(id)
}

// CreateChild inserts a new, empty-property, childless node named name as
// n's first child (prepended to n's existing child list). Rejects
// duplicate names among n's current children.
func (n *Node) CreateChild(name string) *Node {
	if n == nil {
		return nil
	}
	if name == "" {
		errs.Report(n.tree.errorFunc(), "child cannot have empty name")
		return nil
	}

	for scan := n.record().Child; scan != arena.NoNode; scan = n.tree.arena.Node(scan).Sibling {
		if string(n.tree.arena.Node(scan).Name) == name {
			errs.Report(n.tree.errorFunc(), "node name already in use")
			return nil
		}
	}

	id, ok := n.tree.arena.AllocNode()
	if !ok {
		return nil
	}
	child := n.tree.arena.Node(id)
	child.Parent = n.id
	child.Name = n.tree.copyName(name)
	child.Sibling = n.record().Child
	n.record().Child = id

	return n.tree.wrapNode(id)
}

// CreateProp allocates a zero-length property named name, prepended to
// n's property list. The payload is empty until filled by one of the
// typed writers (SetValues, SetPairs, SetTriplets, SetQuads, SetStrings).
func (n *Node) CreateProp(name string) *Property {
	if n == nil {
		return nil
	}
	if name == "" {
		errs.Report(n.tree.errorFunc(), "property cannot have empty name")
		return nil
	}

	id, ok := n.tree.arena.AllocProp()
	if !ok {
		return nil
	}
	prop := n.tree.arena.Prop(id)
	prop.Name = n.tree.copyName(name)
	prop.Value = nil
	prop.Next = n.record().Prop
	n.record().Prop = id

	return n.tree.wrapProp(id)
}

// SetValues writes values as a sequence of cellsPerValue-wide big-endian
// cell groups, replacing the property's payload. This is the write-side
// counterpart to ReadValues.
func (p *Property) SetValues(cellsPerValue int, values []uint64) {
	if p == nil || cellsPerValue <= 0 {
		return
	}
	buf := p.tree.allocBuf(len(values) * cellsPerValue * endian.CellBytes)
	for i, v := range values {
		endian.PutCells(buf[i*cellsPerValue*endian.CellBytes:], cellsPerValue, v)
	}
	p.record().Value = buf
}

// SetPairs writes values as a sequence of {A,B} tuples under layout,
// replacing the property's payload.
func (p *Property) SetPairs(layout PairLayout, values []Pair) {
	if p == nil || layout.A == 0 || layout.B == 0 {
		return
	}
	stride := (layout.A + layout.B) * endian.CellBytes
	buf := p.tree.allocBuf(len(values) * stride)
	for i, v := range values {
		base := buf[i*stride:]
		endian.PutCells(base, layout.A, v.A)
		endian.PutCells(base[layout.A*endian.CellBytes:], layout.B, v.B)
	}
	p.record().Value = buf
}

// SetTriplets writes values as a sequence of {A,B,C} tuples under layout.
func (p *Property) SetTriplets(layout TripletLayout, values []Triplet) {
	if p == nil || layout.A == 0 || layout.B == 0 || layout.C == 0 {
		return
	}
	stride := (layout.A + layout.B + layout.C) * endian.CellBytes
	buf := p.tree.allocBuf(len(values) * stride)
	for i, v := range values {
		base := buf[i*stride:]
		off := 0
		endian.PutCells(base[off:], layout.A, v.A)
		off += layout.A * endian.CellBytes
		endian.PutCells(base[off:], layout.B, v.B)
		off += layout.B * endian.CellBytes
		endian.PutCells(base[off:], layout.C, v.C)
	}
	p.record().Value = buf
}

// SetQuads writes values as a sequence of {A,B,C,D} tuples under layout.
func (p *Property) SetQuads(layout QuadLayout, values []Quad) {
	if p == nil || layout.A == 0 || layout.B == 0 || layout.C == 0 || layout.D == 0 {
		return
	}
	stride := (layout.A + layout.B + layout.C + layout.D) * endian.CellBytes
	buf := p.tree.allocBuf(len(values) * stride)
	for i, v := range values {
		base := buf[i*stride:]
		off := 0
		endian.PutCells(base[off:], layout.A, v.A)
		off += layout.A * endian.CellBytes
		endian.PutCells(base[off:], layout.B, v.B)
		off += layout.B * endian.CellBytes
		endian.PutCells(base[off:], layout.C, v.C)
		off += layout.C * endian.CellBytes
		endian.PutCells(base[off:], layout.D, v.D)
	}
	p.record().Value = buf
}

// SetStrings writes values as a concatenation of NUL-terminated strings,
// replacing the property's payload. This is the write-side counterpart
// to ReadString.
func (p *Property) SetStrings(values []string) {
	if p == nil {
		return
	}
	n := 0
	for _, s := range values {
		n += len(s) + 1
	}
	buf := p.tree.allocBuf(n)
	off := 0
	for _, s := range values {
		copy(buf[off:], s)
		off += len(s)
		buf[off] = 0
		off++
	}
	p.record().Value = buf
}

func (n *Node) errorFunc() errs.Reporter {
	if n == nil || n.tree == nil {
		return nil
	}
	return n.tree.errorFunc()
}

func (t *Tree) errorFunc() errs.Reporter {
	if t == nil || t.ops.OnError == nil {
		return nil
	}
	return errs.Reporter(t.ops.OnError)
}
