// Package program defines the immutable program image consumed by the
// runtime: a decoded instruction sequence plus a sparse initial memory
// image. Program loading from ELF (the external disassembler) is out of
// scope for this module; callers construct a Program directly, the way
// the original runtime's test suite does.
package program

import "github.com/rv32im/tracevm/pkg/isa"

// Program is an immutable, indexed sequence of decoded instructions plus
// a sparse {word-address -> word-value} initial memory image and a
// pc_base/pc_start pair.
type Program struct {
	// Instructions is the decoded instruction sequence, indexed by
	// (pc - PCBase) / 4.
	Instructions []isa.Instruction

	// PCBase is the address of Instructions[0].
	PCBase uint32

	// PCStart is the program counter the runtime begins execution at.
	// It need not equal PCBase.
	PCStart uint32

	// MemoryImage is the sparse initial memory contents, keyed by
	// word-aligned address.
	MemoryImage map[uint32]uint32
}

// New constructs a Program from an instruction sequence and the base/start
// program counters. MemoryImage starts out empty; populate it directly for
// programs that require statically-initialised data.
func New(instructions []isa.Instruction, pcBase, pcStart uint32) *Program {
	return &Program{
		Instructions: instructions,
		PCBase:       pcBase,
		PCStart:      pcStart,
		MemoryImage:  make(map[uint32]uint32),
	}
}

// InstructionAt returns the decoded instruction whose address is pc. It
// panics if pc falls outside the instruction range; callers (package
// runtime) must only call this after checking the PC is still within the
// program's bounds.
func (p *Program) InstructionAt(pc uint32) isa.Instruction {
	idx := (pc - p.PCBase) / 4
	return p.Instructions[idx]
}

// Contains reports whether pc still addresses a decoded instruction.
func (p *Program) Contains(pc uint32) bool {
	return pc-p.PCBase < uint32(len(p.Instructions))*4
}
