package isa_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32im/tracevm/pkg/isa"
)

func TestRTypeProjection(t *testing.T) {
	instr := isa.NewInstruction(isa.ADD, 1, 2, 3, false, false)
	rd, rs1, rs2 := instr.RType()
	require.Equal(t, isa.Register(1), rd)
	require.Equal(t, isa.Register(2), rs1)
	require.Equal(t, isa.Register(3), rs2)
}

func TestRTypePanicsOnImmediate(t *testing.T) {
	instr := isa.NewInstruction(isa.ADD, 1, 2, 3, false, true)
	require.Panics(t, func() { instr.RType() })
}

func TestITypeProjection(t *testing.T) {
	instr := isa.NewInstruction(isa.ADD, 5, 6, 0xFFFFFFF0, false, true)
	rd, rs1, imm := instr.IType()
	require.Equal(t, isa.Register(5), rd)
	require.Equal(t, isa.Register(6), rs1)
	require.EqualValues(t, 0xFFFFFFF0, imm)
}

func TestITypePanicsWithoutImmC(t *testing.T) {
	instr := isa.NewInstruction(isa.ADD, 5, 6, 7, false, false)
	require.Panics(t, func() { instr.IType() })
}

func TestRegisterFromU32PanicsOutOfRange(t *testing.T) {
	require.Panics(t, func() { isa.RegisterFromU32(32) })
}

func TestOpcodeString(t *testing.T) {
	require.Equal(t, "ADD", isa.ADD.String())
	require.Equal(t, "UNIMP", isa.UNIMP.String())
}

func TestAluBucketOf(t *testing.T) {
	bucket, ok := isa.AluBucketOf(isa.MUL)
	require.True(t, ok)
	require.Equal(t, isa.BucketMul, bucket)

	_, ok = isa.AluBucketOf(isa.LW)
	require.False(t, ok)
}
