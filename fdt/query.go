package fdt

import (
	"bytes"

	"github.com/BlueFalconHD/smoldtb/internal/arena"
)

// Find splits path on '/', skipping leading/repeated slashes, and walks
// child-name matches from the tree's root: a segment matches a child whose
// full name equals it, or whose name with an optional "@unit-address"
// suffix stripped equals it. An empty segment — including the whole path
// "/" — returns the current scan node, so Find("/") always returns the
// root. Returns nil if any segment fails to match.
func (t *Tree) Find(path string) *Node {
	scan := t.root
	for scan != arena.NoNode {
		for len(path) > 0 && path[0] == '/' {
			path = path[1:]
		}
		segLen := indexByte(path, '/')
		if segLen < 0 {
			segLen = len(path)
		}
		if segLen == 0 {
			return t.wrapNode(scan)
		}

		scan = t.findChildInternal(scan, path[:segLen], true)
		path = path[segLen:]
	}
	return nil
}

// FindChild matches name literally (no suffix stripping on the query
// side) against n's children; the child side still strips an
// "@unit-address" suffix before comparing, per spec §4.4.
func (n *Node) FindChild(name string) *Node {
	if n == nil {
		return nil
	}
	id := n.tree.findChildInternal(n.id, name, false)
	return n.tree.wrapNode(id)
}

// findChildInternal returns the first child of start whose name, with any
// "@unit-address" suffix stripped, equals name; when matchFull is set, a
// child whose full name equals name also matches.
func (t *Tree) findChildInternal(start arena.NodeID, name string, matchFull bool) arena.NodeID {
	if start == arena.NoNode {
		return arena.NoNode
	}
	scan := t.arena.Node(start).Child
	for scan != arena.NoNode {
		node := t.arena.Node(scan)
		childName := stripUnitAddress(node.Name)
		if string(childName) == name || (matchFull && string(node.Name) == name) {
			return scan
		}
		scan = node.Sibling
	}
	return arena.NoNode
}

func stripUnitAddress(name []byte) []byte {
	if i := bytes.IndexByte(name, '@'); i >= 0 {
		return name[:i]
	}
	return name
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// FindCompatible linearly scans all allocated nodes in arena order,
// beginning just after start (or from the first node when start is nil),
// returning the first node whose "compatible" property lists str exactly.
// Repeated calls passing the previous hit as start enumerate all matches
// exactly once, per spec §4.4/§8.
func (t *Tree) FindCompatible(start *Node, str string) *Node {
	beginIndex := 0
	if start != nil {
		beginIndex = int(start.id) + 1
	}

	nodes := t.arena.AllNodes()
	for i := beginIndex; i < len(nodes); i++ {
		id := arena.NodeID(i)
		compat := t.findPropInternal(id, "compatible")
		if compat == arena.NoProp {
			continue
		}

		prop := t.wrapProp(compat)
		for ci := 0; ; ci++ {
			s, ok := prop.ReadString(ci)
			if !ok {
				break
			}
			if s == str {
				return t.wrapNode(id)
			}
		}
	}
	return nil
}

// FindProp linearly scans node's property list for an exact name match.
func (n *Node) FindProp(name string) *Property {
	if n == nil {
		return nil
	}
	return n.tree.wrapProp(n.tree.findPropInternal(n.id, name))
}

func (t *Tree) findPropInternal(node arena.NodeID, name string) arena.PropID {
	if node == arena.NoNode {
		return arena.NoProp
	}
	p := t.arena.Node(node).Prop
	for p != arena.NoProp {
		prop := t.arena.Prop(p)
		if string(prop.Name) == name {
			return p
		}
		p = prop.Next
	}
	return arena.NoProp
}

// FindPhandle returns the node owning phandle value h, or nil if h is out
// of range or unassigned. A linear fallback scan over all nodes is
// permitted by spec but not required, and is not performed here — out-of-
// range phandles are simply not found, matching the reference
// implementation.
func (t *Tree) FindPhandle(h uint64) *Node {
	id, ok := t.arena.Phandle(h)
	if !ok {
		return nil
	}
	return t.wrapNode(id)
}

// Sibling returns n's next sibling under the same parent, or nil.
func (n *Node) Sibling() *Node {
	if n == nil {
		return nil
	}
	return n.tree.wrapNode(n.record().Sibling)
}

// Child returns n's first child, or nil. Parsing prepends each child to
// its parent's list, so following Child and then Sibling visits children
// in the reverse of their order in the blob.
func (n *Node) Child() *Node {
	if n == nil {
		return nil
	}
	return n.tree.wrapNode(n.record().Child)
}

// Parent returns n's parent, or nil for a root node.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.tree.wrapNode(n.record().Parent)
}

// Prop returns the index-th property in n's property list (0-based), or
// nil past the end.
func (n *Node) Prop(index int) *Property {
	if n == nil {
		return nil
	}
	p := n.record().Prop
	for p != arena.NoProp && index > 0 {
		p = n.tree.arena.Prop(p).Next
		index--
	}
	if index > 0 {
		return nil
	}
	return n.tree.wrapProp(p)
}

// Name returns the node's raw name (without any "@unit-address" suffix
// stripped), or "" for the synthetic root.
func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	return string(n.record().Name)
}

// Name returns the property's name.
func (p *Property) Name() string {
	if p == nil {
		return ""
	}
	return string(p.record().Name)
}

// Len returns the property's payload length in bytes.
func (p *Property) Len() int {
	if p == nil {
		return 0
	}
	return len(p.record().Value)
}

// Bytes returns the property's raw payload. The returned slice aliases
// the tree's internal storage and must not be retained past the tree's
// lifetime or mutated.
func (p *Property) Bytes() []byte {
	if p == nil {
		return nil
	}
	return p.record().Value
}

// Stat describes the name and immediate structural counts of a node, per
// spec §4.4.
type Stat struct {
	Name         string
	PropCount    int
	ChildCount   int
	SiblingCount int
}

// Stat returns name (with "/" substituted for the synthetic root) and the
// counts of properties, children, and siblings sharing n's parent.
func (n *Node) Stat() Stat {
	var s Stat
	if n == nil {
		return s
	}

	s.Name = n.Name()
	if n.id == n.tree.root {
		s.Name = "/"
	}

	for p := n.record().Prop; p != arena.NoProp; p = n.tree.arena.Prop(p).Next {
		s.PropCount++
	}
	for c := n.record().Child; c != arena.NoNode; c = n.tree.arena.Node(c).Sibling {
		s.ChildCount++
	}

	if parent := n.record().Parent; parent != arena.NoNode {
		for sib := n.tree.arena.Node(parent).Child; sib != arena.NoNode; sib = n.tree.arena.Node(sib).Sibling {
			s.SiblingCount++
		}
	}

	return s
}
