// Package fdt provides a pure Go parser and serializer for the Flattened
// Device Tree (FDT/DTB) binary format: the hierarchical hardware
// description blob firmware hands to operating system kernels on ARM,
// RISC-V, and PowerPC platforms.
//
// The package parses an FDT blob in place into a navigable tree (Tree,
// Node, Property), offers typed property decoding (strings, scalar cell
// groups, tuples), path- and compatible-string-based lookup, phandle
// resolution, and re-serialization of an (optionally mutated) tree back
// into a spec-compliant blob.
//
// Dynamic memory allocation, diagnostic logging, and locating the FDT in
// physical memory are all external collaborators: see Ops.
package fdt
