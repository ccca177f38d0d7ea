package runtime_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32im/tracevm/internal/runtimecfg"
	"github.com/rv32im/tracevm/internal/tracelog"
	"github.com/rv32im/tracevm/pkg/isa"
	"github.com/rv32im/tracevm/pkg/program"
	"github.com/rv32im/tracevm/pkg/runtime"
	"github.com/rv32im/tracevm/pkg/syscall"
)

func addi(rd, rs1 isa.Register, imm uint32) isa.Instruction {
	return isa.NewInstruction(isa.ADD, rd.U32(), rs1.U32(), imm, false, true)
}

func rrALU(op isa.Opcode, rd, rs1, rs2 isa.Register) isa.Instruction {
	return isa.NewInstruction(op, rd.U32(), rs1.U32(), rs2.U32(), false, false)
}

func load(op isa.Opcode, rd, rs1 isa.Register, imm uint32) isa.Instruction {
	return isa.NewInstruction(op, rd.U32(), rs1.U32(), imm, false, true)
}

func store(op isa.Opcode, rs1, rs2 isa.Register, imm uint32) isa.Instruction {
	return isa.NewInstruction(op, rs1.U32(), rs2.U32(), imm, false, true)
}

func jalr(rd, rs1 isa.Register, imm uint32) isa.Instruction {
	return isa.NewInstruction(isa.JALR, rd.U32(), rs1.U32(), imm, false, true)
}

func newTestRuntime(t *testing.T, instrs []isa.Instruction) *runtime.Runtime {
	t.Helper()
	prog := program.New(instrs, 0, 0)
	cfg := runtimecfg.Config{ShardSize: 1 << 16}
	logger := tracelog.New(slog.LevelWarn)
	rt, err := runtime.NewWithConfig(prog, syscall.Registry{}, cfg, logger)
	require.NoError(t, err)
	return rt
}

// Scenario 1 (spec.md §8): ADD X29,X0,5; ADD X30,X0,37; ADD X31,X30,X29.
func TestAddChain(t *testing.T) {
	rt := newTestRuntime(t, []isa.Instruction{
		addi(isa.X29, isa.X0, 5),
		addi(isa.X30, isa.X0, 37),
		rrALU(isa.ADD, isa.X31, isa.X30, isa.X29),
	})
	require.NoError(t, rt.Run())
	require.EqualValues(t, 42, rt.Register(isa.X31))
	require.Len(t, rt.Record.AddEvents, 3)
	require.Len(t, rt.Record.CpuEvents, 3)
}

// Scenario 2 (spec.md §8): signed division/remainder overflow at INT_MIN / -1.
func TestSignedDivisionOverflow(t *testing.T) {
	rt := newTestRuntime(t, []isa.Instruction{
		addi(isa.X10, isa.X0, 0x80000000),
		addi(isa.X11, isa.X0, 0xFFFFFFFF),
		rrALU(isa.DIV, isa.X12, isa.X10, isa.X11),
		rrALU(isa.REM, isa.X13, isa.X10, isa.X11),
	})
	require.NoError(t, rt.Run())
	require.EqualValues(t, 0x80000000, rt.Register(isa.X12))
	require.EqualValues(t, 0, rt.Register(isa.X13))
}

// Scenario 3 (spec.md §8, shape preserved with self-verified literals): a
// stored word's individual bytes round-trip through LB (sign-extended) and
// LBU (zero-extended).
func TestLoadByteSignExtension(t *testing.T) {
	const addr = 0x1000
	rt := newTestRuntime(t, []isa.Instruction{
		addi(isa.X1, isa.X0, addr),
		addi(isa.X2, isa.X0, 0xAABBCCDD),
		store(isa.SW, isa.X2, isa.X1, 0),
		load(isa.LB, isa.X3, isa.X1, 1),
		load(isa.LBU, isa.X4, isa.X1, 1),
	})
	require.NoError(t, rt.Run())
	require.EqualValues(t, 0xFFFFFFCC, rt.Register(isa.X3))
	require.EqualValues(t, 0x000000CC, rt.Register(isa.X4))
	require.EqualValues(t, 0xAABBCCDD, rt.Word(addr))
}

// Scenario 4 (spec.md §8, shape preserved): SB splices a single byte lane
// of an already-stored word, observable through a subsequent LW.
func TestStoreByteLaneSplice(t *testing.T) {
	const addr = 0x2000
	rt := newTestRuntime(t, []isa.Instruction{
		addi(isa.X1, isa.X0, addr),
		addi(isa.X2, isa.X0, 0x11223344),
		store(isa.SW, isa.X2, isa.X1, 0),
		addi(isa.X3, isa.X0, 0x000000AA),
		store(isa.SB, isa.X3, isa.X1, 2),
		load(isa.LW, isa.X4, isa.X1, 0),
	})
	require.NoError(t, rt.Run())
	require.EqualValues(t, 0x11AA3344, rt.Register(isa.X4))
}

// Scenario 5 (spec.md §8): division/remainder by zero are defined outcomes,
// not errors.
func TestDivisionByZero(t *testing.T) {
	rt := newTestRuntime(t, []isa.Instruction{
		addi(isa.X10, isa.X0, 20),
		addi(isa.X11, isa.X0, 0),
		rrALU(isa.DIVU, isa.X12, isa.X10, isa.X11),
		rrALU(isa.REMU, isa.X13, isa.X10, isa.X11),
	})
	require.NoError(t, rt.Run())
	require.EqualValues(t, 0xFFFFFFFF, rt.Register(isa.X12))
	require.EqualValues(t, 20, rt.Register(isa.X13))
}

// Scenario 6 (spec.md §8): JALR X5, X11, 8 ⇒ X5 = return address, X11
// unchanged, pc = X11 + 8.
func TestJALR(t *testing.T) {
	rt := newTestRuntime(t, []isa.Instruction{
		addi(isa.X11, isa.X11, 100),
		jalr(isa.X5, isa.X11, 8),
	})
	require.NoError(t, rt.Run())
	require.EqualValues(t, 8, rt.Register(isa.X5))
	require.EqualValues(t, 100, rt.Register(isa.X11))
}

// Universal invariant 2 (spec.md §8): X0 always reads 0, even after a
// writeback targets it.
func TestX0AlwaysZero(t *testing.T) {
	rt := newTestRuntime(t, []isa.Instruction{
		addi(isa.X0, isa.X0, 0xFFFFFFFF),
	})
	require.NoError(t, rt.Run())
	require.EqualValues(t, 0, rt.Register(isa.X0))
}

// Universal invariant 1 (spec.md §8): global_clk advances by exactly 1 and
// clk by exactly 4 per ordinary instruction.
func TestClockAdvance(t *testing.T) {
	rt := newTestRuntime(t, []isa.Instruction{
		addi(isa.X1, isa.X0, 1),
		addi(isa.X2, isa.X0, 1),
		addi(isa.X3, isa.X0, 1),
	})
	require.NoError(t, rt.Run())
	require.EqualValues(t, 3, rt.State.GlobalClk)
	require.Len(t, rt.Record.CpuEvents, 3)
	for i, ev := range rt.Record.CpuEvents {
		require.EqualValues(t, i*4+1, ev.Clk)
	}
}

// Universal invariant 4 (spec.md §8): every address touched during the run
// appears exactly once in both memory-consistency tables after Run.
func TestPostprocessMemoryTables(t *testing.T) {
	const addr = 0x3000
	rt := newTestRuntime(t, []isa.Instruction{
		addi(isa.X1, isa.X0, addr),
		addi(isa.X2, isa.X0, 7),
		store(isa.SW, isa.X2, isa.X1, 0),
		load(isa.LW, isa.X3, isa.X1, 0),
	})
	require.NoError(t, rt.Run())

	seenFirst := map[uint32]int{}
	for _, e := range rt.Record.FirstMemoryRecord {
		seenFirst[e.Addr]++
	}
	seenLast := map[uint32]int{}
	for _, e := range rt.Record.LastMemoryRecord {
		seenLast[e.Addr]++
	}
	require.Equal(t, 1, seenFirst[addr])
	require.Equal(t, 1, seenLast[addr])

	var lastEntry *uint32
	for _, e := range rt.Record.LastMemoryRecord {
		if e.Addr == addr {
			v := e.Record.Value
			lastEntry = &v
		}
	}
	require.NotNil(t, lastEntry)
	require.EqualValues(t, 7, *lastEntry)
}

func TestUnconstrainedRollback(t *testing.T) {
	rt := newTestRuntime(t, []isa.Instruction{})
	rt.SetRegister(isa.X1, 111)
	before := rt.Register(isa.X1)

	rt.BeginUnconstrained()
	rt.SetRegister(isa.X1, 222)
	require.EqualValues(t, 222, rt.Register(isa.X1))
	rt.EndUnconstrained()

	require.Equal(t, before, rt.Register(isa.X1))
}

func TestUnconstrainedDoesNotNest(t *testing.T) {
	rt := newTestRuntime(t, []isa.Instruction{})
	rt.BeginUnconstrained()
	require.Panics(t, func() { rt.BeginUnconstrained() })
}

func TestUnsupportedSyscallIsFatal(t *testing.T) {
	rt := newTestRuntime(t, []isa.Instruction{
		isa.NewInstruction(isa.ECALL, 0, 0, 0, false, false),
	})
	err := rt.Run()
	require.Error(t, err)
}

func TestMisalignedHalfLoadIsFatal(t *testing.T) {
	rt := newTestRuntime(t, []isa.Instruction{
		addi(isa.X1, isa.X0, 0x4001),
		load(isa.LH, isa.X2, isa.X1, 0),
	})
	err := rt.Run()
	require.Error(t, err)
}
