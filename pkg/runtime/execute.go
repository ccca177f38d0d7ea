package runtime

import (
	"fmt"

	"github.com/rv32im/tracevm/pkg/events"
	"github.com/rv32im/tracevm/pkg/isa"
	"github.com/rv32im/tracevm/pkg/syscall"
)

func align(addr uint32) uint32 {
	return addr - addr%4
}

// aluOperands fetches the destination register and the two input operand
// values for an ALU instruction, reading registers in positions C then B
// per spec.md §3's invariant ("register reads happen in positions C
// (first), B (second), A (third)").
func (rt *Runtime) aluOperands(instr isa.Instruction) (rd isa.Register, b, c uint32, err error) {
	switch {
	case !instr.ImmC:
		var rs1, rs2 isa.Register
		rd, rs1, rs2 = instr.RType()
		if c, err = rt.rr(rs2, C); err != nil {
			return rd, 0, 0, err
		}
		if b, err = rt.rr(rs1, B); err != nil {
			return rd, 0, 0, err
		}
		return rd, b, c, nil
	case !instr.ImmB && instr.ImmC:
		var rs1 isa.Register
		var imm uint32
		rd, rs1, imm = instr.IType()
		if b, err = rt.rr(rs1, B); err != nil {
			return rd, 0, 0, err
		}
		return rd, b, imm, nil
	default:
		return isa.RegisterFromU32(instr.OpA), instr.OpB, instr.OpC, nil
	}
}

// aluWriteback writes the ALU result to rd and emits the bucketed AluEvent.
func (rt *Runtime) aluWriteback(instr isa.Instruction, rd isa.Register, a, b, c uint32) error {
	if err := rt.rw(rd, a); err != nil {
		return err
	}
	rt.emitAlu(rt.State.Clk, instr.Opcode, a, b, c)
	return nil
}

// loadOperands fetches rd/b/c/addr and the raw aligned word a load reads
// from, per spec.md §4.3 "Loads".
func (rt *Runtime) loadOperands(instr isa.Instruction) (rd isa.Register, b, c, addr, memoryValue uint32, err error) {
	var rs1 isa.Register
	rd, rs1, c = instr.IType()
	if b, err = rt.rr(rs1, B); err != nil {
		return
	}
	addr = b + c
	memoryValue, err = rt.mrCpu(align(addr), Memory)
	return
}

// storeOperands fetches a/b/c/addr for a store. The current aligned word
// the store splices into is read by storeOperandsWithMem, directly from
// state (not through mrCpu: spec.md §4.3 "Stores" — that read does not
// emit a memory-read event).
func (rt *Runtime) storeOperands(instr isa.Instruction) (a, b, c, addr uint32, err error) {
	rs1, rs2, imm := instr.SType()
	c = imm
	if b, err = rt.rr(rs2, B); err != nil {
		return
	}
	if a, err = rt.rr(rs1, A); err != nil {
		return
	}
	addr = b + c
	return
}

func (rt *Runtime) branchOperands(instr isa.Instruction) (a, b, c uint32, err error) {
	rs1, rs2, imm := instr.BType()
	c = imm
	if b, err = rt.rr(rs2, B); err != nil {
		return
	}
	if a, err = rt.rr(rs1, A); err != nil {
		return
	}
	return
}

func (rt *Runtime) emitAlu(clk uint32, opcode isa.Opcode, a, b, c uint32) {
	if rt.Unconstrained {
		return
	}
	bucket, ok := isa.AluBucketOf(opcode)
	if !ok {
		return
	}
	event := events.AluEvent{Clk: clk, Opcode: opcode, A: a, B: b, C: c}
	switch bucket {
	case isa.BucketAdd:
		rt.Record.AddEvents = append(rt.Record.AddEvents, event)
	case isa.BucketSub:
		rt.Record.SubEvents = append(rt.Record.SubEvents, event)
	case isa.BucketBitwise:
		rt.Record.BitwiseEvents = append(rt.Record.BitwiseEvents, event)
	case isa.BucketShiftLeft:
		rt.Record.ShiftLeftEvents = append(rt.Record.ShiftLeftEvents, event)
	case isa.BucketShiftRight:
		rt.Record.ShiftRightEvents = append(rt.Record.ShiftRightEvents, event)
	case isa.BucketLt:
		rt.Record.LtEvents = append(rt.Record.LtEvents, event)
	case isa.BucketMul:
		rt.Record.MulEvents = append(rt.Record.MulEvents, event)
	case isa.BucketDivRem:
		rt.Record.DivRemEvents = append(rt.Record.DivRemEvents, event)
	}
}

// execute dispatches and runs a single decoded instruction, mutating
// rt.State and rt.Record (unless unconstrained). It returns the values
// needed to emit the instruction's CpuEvent (spec.md §4.4).
func (rt *Runtime) execute(instr isa.Instruction) (a, b, c uint32, memoryStoreValue *uint32, nextPC uint32, err error) {
	pc := rt.State.PC
	nextPC = pc + 4
	rt.cpuRecord = events.CpuRecord{}

	switch instr.Opcode {
	case isa.ADD, isa.SUB, isa.XOR, isa.OR, isa.AND, isa.SLL, isa.SRL, isa.SRA, isa.SLT, isa.SLTU,
		isa.MUL, isa.MULH, isa.MULHU, isa.MULHSU, isa.DIV, isa.DIVU, isa.REM, isa.REMU:
		var rd isa.Register
		rd, b, c, err = rt.aluOperands(instr)
		if err != nil {
			return
		}
		a = evalAlu(instr.Opcode, b, c)
		err = rt.aluWriteback(instr, rd, a, b, c)

	case isa.LB:
		var rd isa.Register
		var addr, memVal uint32
		rd, b, c, addr, memVal, err = rt.loadOperands(instr)
		if err != nil {
			return
		}
		raw := byteOf(memVal, addr%4)
		a = uint32(int32(int8(raw)))
		memoryStoreValue = &memVal
		err = rt.rw(rd, a)

	case isa.LBU:
		var rd isa.Register
		var addr, memVal uint32
		rd, b, c, addr, memVal, err = rt.loadOperands(instr)
		if err != nil {
			return
		}
		a = uint32(byteOf(memVal, addr%4))
		memoryStoreValue = &memVal
		err = rt.rw(rd, a)

	case isa.LH, isa.LHU:
		var rd isa.Register
		var addr, memVal uint32
		rd, b, c, addr, memVal, err = rt.loadOperands(instr)
		if err != nil {
			return
		}
		if addr%2 != 0 {
			err = fmt.Errorf("%w: LH/LHU addr=0x%x", ErrMisaligned, addr)
			return
		}
		half := halfOf(memVal, (addr>>1)%2)
		if instr.Opcode == isa.LH {
			a = uint32(int32(int16(half)))
		} else {
			a = uint32(half)
		}
		memoryStoreValue = &memVal
		err = rt.rw(rd, a)

	case isa.LW:
		var rd isa.Register
		var addr, memVal uint32
		rd, b, c, addr, memVal, err = rt.loadOperands(instr)
		if err != nil {
			return
		}
		if addr%4 != 0 {
			err = fmt.Errorf("%w: LW addr=0x%x", ErrMisaligned, addr)
			return
		}
		a = memVal
		memoryStoreValue = &memVal
		err = rt.rw(rd, a)

	case isa.SB:
		var addr, memVal uint32
		a, b, c, addr, err = rt.storeOperandsWithMem(instr, &memVal)
		if err != nil {
			return
		}
		value := spliceByte(memVal, addr%4, uint8(a))
		memoryStoreValue = &value
		err = rt.mwCpu(align(addr), value, Memory)

	case isa.SH:
		var addr, memVal uint32
		a, b, c, addr, err = rt.storeOperandsWithMem(instr, &memVal)
		if err != nil {
			return
		}
		if addr%2 != 0 {
			err = fmt.Errorf("%w: SH addr=0x%x", ErrMisaligned, addr)
			return
		}
		value := spliceHalf(memVal, (addr>>1)%2, uint16(a))
		memoryStoreValue = &value
		err = rt.mwCpu(align(addr), value, Memory)

	case isa.SW:
		var addr, memVal uint32
		a, b, c, addr, err = rt.storeOperandsWithMem(instr, &memVal)
		if err != nil {
			return
		}
		if addr%4 != 0 {
			err = fmt.Errorf("%w: SW addr=0x%x", ErrMisaligned, addr)
			return
		}
		value := a
		memoryStoreValue = &value
		err = rt.mwCpu(align(addr), value, Memory)

	case isa.BEQ, isa.BNE, isa.BLT, isa.BGE, isa.BLTU, isa.BGEU:
		a, b, c, err = rt.branchOperands(instr)
		if err != nil {
			return
		}
		if branchTaken(instr.Opcode, a, b) {
			nextPC = pc + c
		}

	case isa.JAL:
		var rd isa.Register
		var imm uint32
		rd, imm = instr.JType()
		b, c = imm, 0
		a = pc + 4
		if err = rt.rw(rd, a); err != nil {
			return
		}
		nextPC = pc + imm

	case isa.JALR:
		var rd, rs1 isa.Register
		var imm uint32
		rd, rs1, imm = instr.IType()
		if b, err = rt.rr(rs1, B); err != nil {
			return
		}
		c = imm
		a = pc + 4
		if err = rt.rw(rd, a); err != nil {
			return
		}
		nextPC = b + c

	case isa.AUIPC:
		var rd isa.Register
		var imm uint32
		rd, imm = instr.UType()
		b, c = imm, imm
		a = pc + imm
		err = rt.rw(rd, a)

	case isa.ECALL:
		a, b, c, nextPC, err = rt.executeSyscall(pc)

	case isa.EBREAK:
		err = ErrUnimplemented

	case isa.UNIMP:
		err = ErrUnimp

	default:
		err = fmt.Errorf("runtime: unknown opcode %v", instr.Opcode)
	}

	return
}

// storeOperandsWithMem is storeOperands plus the direct (non-event) read
// of the current aligned word, exposed separately so callers can splice
// into it without re-deriving addr.
func (rt *Runtime) storeOperandsWithMem(instr isa.Instruction, memVal *uint32) (a, b, c, addr uint32, err error) {
	a, b, c, addr, err = rt.storeOperands(instr)
	if err != nil {
		return
	}
	*memVal = rt.Word(align(addr))
	return
}

func byteOf(word uint32, offset uint32) uint8 {
	return uint8(word >> (offset * 8))
}

func halfOf(word uint32, upperHalf uint32) uint16 {
	if upperHalf == 0 {
		return uint16(word & 0x0000FFFF)
	}
	return uint16((word & 0xFFFF0000) >> 16)
}

func spliceByte(word uint32, offset uint32, value uint8) uint32 {
	shift := offset * 8
	mask := uint32(0x000000FF) << shift
	return (uint32(value) << shift) | (word &^ mask)
}

func spliceHalf(word uint32, upperHalf uint32, value uint16) uint32 {
	if upperHalf == 0 {
		return uint32(value) | (word & 0xFFFF0000)
	}
	return (uint32(value) << 16) | (word & 0x0000FFFF)
}

func branchTaken(opcode isa.Opcode, a, b uint32) bool {
	switch opcode {
	case isa.BEQ:
		return a == b
	case isa.BNE:
		return a != b
	case isa.BLT:
		return int32(a) < int32(b)
	case isa.BGE:
		return int32(a) >= int32(b)
	case isa.BLTU:
		return a < b
	case isa.BGEU:
		return a >= b
	default:
		panic("runtime: branchTaken called with a non-branch opcode")
	}
}

// executeSyscall implements the ECALL plumbing of spec.md §4.3: read X5,
// dispatch to the registered handler, assert its declared clock delta,
// then write the result into X10 and re-read X5 for the CPU event — in
// that order, which is intentional (spec.md §9).
func (rt *Runtime) executeSyscall(pc uint32) (a, b, c, nextPC uint32, err error) {
	const t0 = isa.X5
	const a0 = isa.X10

	syscallID := rt.Register(t0)
	code := syscall.Code(syscallID)
	handler, ok := rt.syscalls[code]
	if !ok {
		err = fmt.Errorf("%w: code=%d", ErrNoSyscallHandler, syscallID)
		return
	}

	initClk := rt.State.Clk
	ctx := &syscall.Context{Machine: rt, NextPC: pc + 4, Clk: rt.State.Clk}
	a = handler.Execute(ctx)
	nextPC = ctx.NextPC
	rt.State.Clk = ctx.Clk

	if initClk+handler.NumExtraCycles() != rt.State.Clk {
		err = ErrSyscallClockMismatch
		return
	}

	if err = rt.rw(a0, a); err != nil {
		return
	}
	b, err = rt.rr(t0, B)
	c = 0
	return
}
