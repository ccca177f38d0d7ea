package events

import "github.com/rv32im/tracevm/pkg/state"

// MemoryRecordEntry is a single (address, record, multiplicity) row of a
// memory-consistency table, as produced by postprocessing (spec.md §4.6).
type MemoryRecordEntry struct {
	Addr           uint32
	Record         state.MemoryRecord
	Multiplicity   uint32
}

// ExecutionRecord is the append-only bundle of events emitted during a
// run: the CPU event trace, the ALU events bucketed by opcode class, and
// the three memory-consistency tables produced by postprocessing.
type ExecutionRecord struct {
	CpuEvents []CpuEvent

	AddEvents        []AluEvent
	SubEvents        []AluEvent
	BitwiseEvents    []AluEvent
	ShiftLeftEvents  []AluEvent
	ShiftRightEvents []AluEvent
	LtEvents         []AluEvent
	MulEvents        []AluEvent
	DivRemEvents     []AluEvent

	FirstMemoryRecord   []MemoryRecordEntry
	LastMemoryRecord    []MemoryRecordEntry
	ProgramMemoryRecord []MemoryRecordEntry
}
