package isa

// Instruction is a decoded RV32IM instruction. op_a always denotes a
// register index (destination, or source-for-store). op_b/op_c are
// either register indices or sign/zero-extended immediates, disambiguated
// by ImmB/ImmC. Instructions are supplied pre-decoded by an external
// disassembler (out of scope for this module, see spec.md §1).
type Instruction struct {
	Opcode Opcode
	OpA    uint32
	OpB    uint32
	OpC    uint32
	ImmB   bool
	ImmC   bool
}

// NewInstruction constructs a decoded instruction.
func NewInstruction(opcode Opcode, opA, opB, opC uint32, immB, immC bool) Instruction {
	return Instruction{Opcode: opcode, OpA: opA, OpB: opB, OpC: opC, ImmB: immB, ImmC: immC}
}

// RType projects the instruction onto the R-type (rd, rs1, rs2) format.
// Both ImmB and ImmC must be false.
func (i Instruction) RType() (rd, rs1, rs2 Register) {
	if i.ImmB || i.ImmC {
		panic("isa: RType requires ImmB=false, ImmC=false")
	}
	return RegisterFromU32(i.OpA), RegisterFromU32(i.OpB), RegisterFromU32(i.OpC)
}

// IType projects the instruction onto the I-type (rd, rs1, imm) format.
// ImmC must be true and ImmB must be false; imm is already sign-extended
// to 32 bits by the producer.
func (i Instruction) IType() (rd, rs1 Register, imm uint32) {
	if i.ImmB || !i.ImmC {
		panic("isa: IType requires ImmB=false, ImmC=true")
	}
	return RegisterFromU32(i.OpA), RegisterFromU32(i.OpB), i.OpC
}

// SType projects the instruction onto the S-type (rs1, rs2, imm) format.
// OpA names rs1 (the store's source register), OpB names rs2, and OpC
// carries the sign-extended byte-offset immediate.
func (i Instruction) SType() (rs1, rs2 Register, imm uint32) {
	return RegisterFromU32(i.OpA), RegisterFromU32(i.OpB), i.OpC
}

// BType projects the instruction onto the B-type (rs1, rs2, imm) format.
// imm is a byte-offset branch displacement.
func (i Instruction) BType() (rs1, rs2 Register, imm uint32) {
	return RegisterFromU32(i.OpA), RegisterFromU32(i.OpB), i.OpC
}

// UType projects the instruction onto the U-type (rd, imm) format. imm is
// already shifted into the upper 20 bits by the producer.
func (i Instruction) UType() (rd Register, imm uint32) {
	return RegisterFromU32(i.OpA), i.OpB
}

// JType projects the instruction onto the J-type (rd, imm) format.
func (i Instruction) JType() (rd Register, imm uint32) {
	return RegisterFromU32(i.OpA), i.OpB
}
