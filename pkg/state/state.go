package state

// ExecutionState holds the program counter, the local and global clocks,
// the current shard id, and the live memory map. It is created at the
// program's entry PC with empty memory, populated by Runtime.Run from the
// program image, mutated by instruction execution, and frozen on program
// exit for postprocessing (spec.md §3 "Lifecycle").
type ExecutionState struct {
	// PC is the current program counter.
	PC uint32

	// Clk is the local (per-shard) clock; it advances by 4 per normal
	// instruction and by an opcode-defined delta for ECALL.
	Clk uint32

	// GlobalClk is the monotonically increasing global cycle counter; it
	// advances by exactly 1 per executed instruction.
	GlobalClk uint32

	// CurrentShard is the shard the next emitted event belongs to.
	CurrentShard uint32

	// Memory is the live {word-address -> (value, last_shard,
	// last_timestamp)} map. Addresses 0..31 alias the register file.
	Memory map[uint32]MemoryEntry
}

// New creates an ExecutionState at the given entry program counter with
// an empty memory map.
func New(pcStart uint32) *ExecutionState {
	return &ExecutionState{
		PC:     pcStart,
		Memory: make(map[uint32]MemoryEntry),
	}
}
