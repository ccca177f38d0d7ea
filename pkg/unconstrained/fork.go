// Package unconstrained implements the journal backing "unconstrained"
// execution regions: lexically-scoped sections whose memory mutations are
// recorded and reverted on exit (spec.md §4.2, §5). Nesting is not
// supported, matching the single-level journal spec.md describes.
package unconstrained

import "github.com/rv32im/tracevm/pkg/state"

// ForkState is the journal for one unconstrained region: a map from
// address to the entry that was live at that address before the region's
// first mutation of it, or nil if the address had never been touched.
type ForkState struct {
	MemoryDiff map[uint32]*state.MemoryEntry
}

// NewForkState returns an empty journal, ready for a new unconstrained
// region.
func NewForkState() *ForkState {
	return &ForkState{MemoryDiff: make(map[uint32]*state.MemoryEntry)}
}

// NoteFirstTouch records the pre-mutation entry for addr the first time
// this region touches it. prior is nil if addr was absent from the memory
// map. Subsequent touches within the same region are no-ops, since only
// the state as of region entry must be restorable.
func (f *ForkState) NoteFirstTouch(addr uint32, prior *state.MemoryEntry) {
	if _, seen := f.MemoryDiff[addr]; seen {
		return
	}
	f.MemoryDiff[addr] = prior
}

// Restore applies the reverse of the journal onto mem: addresses whose
// prior entry was present are reset to it, addresses that were absent
// are deleted.
func (f *ForkState) Restore(mem map[uint32]state.MemoryEntry) {
	for addr, prior := range f.MemoryDiff {
		if prior == nil {
			delete(mem, addr)
			continue
		}
		mem[addr] = *prior
	}
}
