package fdt

import "github.com/BlueFalconHD/smoldtb/internal/arena"

// Allocator is the host collaborator used to reserve (and later release)
// the arena backing a parsed tree. A nil Allocator is permitted: Parse
// falls back to Go's built-in allocator.
type Allocator = arena.Allocator

// ErrorFunc receives synchronous diagnostic strings during parsing and
// mutation. It may be nil, in which case diagnostics are
// silently dropped. An ErrorFunc must not reenter any Tree method.
type ErrorFunc func(message string)

// Ops bundles the external collaborators a Tree needs: a memory allocator
// and an error-reporting callback. Either field may be left zero.
type Ops struct {
	Alloc   Allocator
	OnError ErrorFunc
}

// Config holds init-time options recognized by ParseWithConfig.
// ConfigVersion below 1 forces Writable to false, per spec §6's
// "sanitise_config" requirement — configuration fields added in a future
// ConfigVersion must default safely for older callers.
type Config struct {
	ConfigVersion int
	Writable      bool
}

func (c *Config) sanitised() Config {
	cfg := *c
	if cfg.ConfigVersion < 1 {
		cfg.Writable = false
	}
	return cfg
}
