package fdt

import "sync"

// Global-state convenience layer. spec.md's original API shape is a
// single process-wide device tree reached through package-level
// functions; Tree (tree.go) is the explicit-context re-architecture this
// module builds on, and Init/Global are a thin shim recovering the
// original single-context call shape on top of it, matching the
// "anticipated... trivial on top" remark in spec §5.
var (
	globalMu   sync.RWMutex
	globalTree *Tree
)

// Init parses blob and installs the result as the package-level tree,
// replacing (without closing) any tree installed by a previous Init.
// Equivalent in shape to the reference implementation's dtb_init, but
// returns the error Parse produced rather than a boolean.
func Init(blob []byte, ops Ops) error {
	t, err := Parse(blob, ops)
	if err != nil {
		return err
	}

	globalMu.Lock()
	globalTree = t
	globalMu.Unlock()
	return nil
}

// Global returns the tree installed by the most recent call to Init, or
// nil if Init has not been called.
func Global() *Tree {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalTree
}
