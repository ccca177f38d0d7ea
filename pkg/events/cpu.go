// Package events defines the typed, append-only event vocabulary emitted
// during execution: CPU events, ALU events, and the memory-consistency
// records produced by postprocessing.
package events

import (
	"github.com/rv32im/tracevm/pkg/isa"
	"github.com/rv32im/tracevm/pkg/state"
)

// CpuRecord accumulates the per-cycle access witnesses for the current
// instruction before they are folded into a CpuEvent. Positions A/B/C/Memory
// are mutually exclusive per cycle: a second write into an occupied slot
// indicates a decoder bug and must panic (spec.md §4.2).
type CpuRecord struct {
	A      *state.AccessRecord
	B      *state.AccessRecord
	C      *state.AccessRecord
	Memory *state.AccessRecord
}

// SetA stashes the A-position record, panicking if the slot is already
// occupied.
func (r *CpuRecord) SetA(rec state.AccessRecord) {
	if r.A != nil {
		panic("events: CpuRecord slot A written twice in one cycle")
	}
	r.A = &rec
}

// SetB stashes the B-position record, panicking if the slot is already
// occupied.
func (r *CpuRecord) SetB(rec state.AccessRecord) {
	if r.B != nil {
		panic("events: CpuRecord slot B written twice in one cycle")
	}
	r.B = &rec
}

// SetC stashes the C-position record, panicking if the slot is already
// occupied.
func (r *CpuRecord) SetC(rec state.AccessRecord) {
	if r.C != nil {
		panic("events: CpuRecord slot C written twice in one cycle")
	}
	r.C = &rec
}

// SetMemory stashes the Memory-position record, panicking if the slot is
// already occupied.
func (r *CpuRecord) SetMemory(rec state.AccessRecord) {
	if r.Memory != nil {
		panic("events: CpuRecord slot Memory written twice in one cycle")
	}
	r.Memory = &rec
}

// CpuEvent is the record emitted once per executed instruction.
type CpuEvent struct {
	Shard       uint32
	Clk         uint32
	PC          uint32
	Instruction isa.Instruction
	A           uint32
	B           uint32
	C           uint32

	// MemoryStoreValue is set for loads and stores: the aligned word that
	// was read (loads) or the aligned word written back (stores).
	MemoryStoreValue *uint32

	ARecord      *state.AccessRecord
	BRecord      *state.AccessRecord
	CRecord      *state.AccessRecord
	MemoryRecord *state.AccessRecord
}

// AluEvent is emitted alongside a CpuEvent for every ALU opcode, bucketed
// by isa.AluBucketOf into the ExecutionRecord's per-class vectors.
type AluEvent struct {
	Clk    uint32
	Opcode isa.Opcode
	A      uint32
	B      uint32
	C      uint32
}
