// Package runtime implements the fetch/decode/execute interpreter: the
// "hard part" of spec.md — exact RV32IM semantics, the timestamped memory
// model, shard partitioning, unconstrained rollback, and the
// postprocessing pass that derives the memory-consistency tables.
package runtime

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rv32im/tracevm/internal/runtimecfg"
	"github.com/rv32im/tracevm/internal/tracelog"
	"github.com/rv32im/tracevm/pkg/events"
	"github.com/rv32im/tracevm/pkg/isa"
	"github.com/rv32im/tracevm/pkg/program"
	"github.com/rv32im/tracevm/pkg/state"
	"github.com/rv32im/tracevm/pkg/syscall"
	"github.com/rv32im/tracevm/pkg/unconstrained"
)

// Runtime is a single-threaded, strictly sequential RV32IM interpreter
// (spec.md §5). It owns the program, the execution state, the
// in-progress execution record, and the syscall registry.
type Runtime struct {
	Program *program.Program
	State   *state.ExecutionState
	Record  events.ExecutionRecord

	// ShardSize is the configured shard size in instruction slots; the
	// boundary check multiplies it by 4 (spec.md §4.5).
	ShardSize uint32

	// Unconstrained is true while executing inside an unconstrained
	// region (spec.md §4.2, §5).
	Unconstrained bool

	// CycleTracker records named start/stop cycle brackets, a direct port
	// of the original runtime's profiling helper (SPEC_FULL.md §3.2).
	CycleTracker map[string][2]uint32

	syscalls    syscall.Registry
	maxSyscall  uint32
	cpuRecord   events.CpuRecord
	fork        *unconstrained.ForkState
	traceFile   *os.File
	traceWriter *bufio.Writer
	logger      *slog.Logger

	// touched is the running first/last-touch table postprocess drains
	// into Record.FirstMemoryRecord / Record.LastMemoryRecord.
	touched map[uint32]*memoryTouch

	// prevRegisters is the register-file snapshot RegisterDump diffs
	// against to highlight the register(s) the last instruction changed.
	prevRegisters map[uint32]state.MemoryEntry
}

// memoryTouch accumulates the first- and last-witnessed state of one
// address across a run, plus how many times it was accessed.
type memoryTouch struct {
	first        state.MemoryRecord
	last         state.MemoryRecord
	multiplicity uint32
}

// New constructs a Runtime for prog with the given syscall registry.
// Configuration (shard size, trace file) is loaded from the environment
// via internal/runtimecfg, mirroring the original runtime's
// std::env::var("TRACE_FILE") and utils::env::shard_size() lookups.
func New(prog *program.Program, syscalls syscall.Registry) (*Runtime, error) {
	cfg := runtimecfg.Load()
	return NewWithConfig(prog, syscalls, cfg, tracelog.New(slog.LevelInfo))
}

// NewWithConfig constructs a Runtime with an explicit configuration and
// logger, bypassing environment lookup; tests use this to pin ShardSize
// and avoid touching the filesystem.
func NewWithConfig(prog *program.Program, syscalls syscall.Registry, cfg runtimecfg.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{
		Program:      prog,
		State:        state.New(prog.PCStart),
		ShardSize:    cfg.ShardSize,
		CycleTracker: make(map[string][2]uint32),
		syscalls:     syscalls,
		fork:         unconstrained.NewForkState(),
		logger:       logger,
		touched:      make(map[uint32]*memoryTouch),
	}
	rt.snapshotRegisters()
	rt.maxSyscall = syscalls.MaxExtraCycles()

	if cfg.TraceFile != "" {
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("runtime: opening trace file: %w", err)
		}
		rt.traceFile = f
		rt.traceWriter = bufio.NewWriter(f)
	}
	return rt, nil
}

// Close releases the trace file, if one was opened. Callers should defer
// Close after New/NewWithConfig succeeds.
func (rt *Runtime) Close() error {
	if rt.traceFile == nil {
		return nil
	}
	if err := rt.traceWriter.Flush(); err != nil {
		rt.traceFile.Close()
		return err
	}
	return rt.traceFile.Close()
}

// Registers returns a snapshot of all 32 general-purpose registers.
func (rt *Runtime) Registers() [isa.NumRegisters]uint32 {
	var regs [isa.NumRegisters]uint32
	for i := uint32(0); i < isa.NumRegisters; i++ {
		regs[i] = rt.registerValue(isa.Register(i))
	}
	return regs
}

// Register returns the current value of reg without participating in the
// memory-consistency bookkeeping (a read-only introspection helper; see
// SPEC_FULL.md §3.1).
func (rt *Runtime) Register(reg isa.Register) uint32 {
	return rt.registerValue(reg)
}

func (rt *Runtime) registerValue(reg isa.Register) uint32 {
	if entry, ok := rt.State.Memory[reg.U32()]; ok {
		return entry.Value
	}
	return 0
}

// Word returns the current value of the aligned word at addr, or 0 if it
// has never been touched.
func (rt *Runtime) Word(addr uint32) uint32 {
	if entry, ok := rt.State.Memory[addr]; ok {
		return entry.Value
	}
	return 0
}

// Byte returns the byte at addr, read from within its containing aligned
// word (SPEC_FULL.md §3.1).
func (rt *Runtime) Byte(addr uint32) uint8 {
	word := rt.Word(addr - addr%4)
	return uint8(word >> ((addr % 4) * 8))
}

// SetRegister implements syscall.Machine: a raw register write that
// bypasses the per-cycle CpuRecord bookkeeping, since syscall handlers
// operate outside the fetch/decode/execute access-position protocol. Like
// every other mutation, it is journaled while unconstrained (spec.md §5).
func (rt *Runtime) SetRegister(reg isa.Register, value uint32) {
	if reg == isa.X0 {
		return
	}
	rt.setMemory(reg.U32(), value)
}

// SetWord implements syscall.Machine.
func (rt *Runtime) SetWord(addr, value uint32) {
	rt.setMemory(addr, value)
}

func (rt *Runtime) setMemory(addr, value uint32) {
	if rt.Unconstrained {
		entry, existed := rt.State.Memory[addr]
		rt.noteFirstTouch(addr, entry, existed)
	}
	rt.State.Memory[addr] = state.MemoryEntry{Value: value, Shard: rt.State.CurrentShard, Timestamp: rt.State.Clk}
}

// Clk implements syscall.Machine.
func (rt *Runtime) Clk() uint32 { return rt.State.Clk }

// Shard implements syscall.Machine.
func (rt *Runtime) Shard() uint32 { return rt.State.CurrentShard }

var _ syscall.Machine = (*Runtime)(nil)

// StartCycleTracking begins a named cycle bracket at the current global
// clock (SPEC_FULL.md §3.2).
func (rt *Runtime) StartCycleTracking(name string) {
	rt.CycleTracker[name] = [2]uint32{rt.State.GlobalClk, 0}
}

// StopCycleTracking closes a named cycle bracket and returns the number of
// global clock ticks elapsed since StartCycleTracking(name).
func (rt *Runtime) StopCycleTracking(name string) uint32 {
	entry := rt.CycleTracker[name]
	elapsed := rt.State.GlobalClk - entry[0]
	entry[1] = elapsed
	rt.CycleTracker[name] = entry
	return elapsed
}

var _ io.Closer = (*Runtime)(nil)

// RegisterDump renders the current register file, highlighting (via
// fatih/color, when stdout is a terminal) every register that differs
// from the snapshot taken at the last snapshotRegisters call — the way
// the teacher VM's String method renders its GPR array, generalised to
// diff-highlight instead of dumping unconditionally (SPEC_FULL.md
// DOMAIN STACK).
func (rt *Runtime) RegisterDump() string {
	return state.DumpRegisters(rt.State.Memory, rt.prevRegisters)
}

func (rt *Runtime) snapshotRegisters() {
	snap := make(map[uint32]state.MemoryEntry, isa.NumRegisters)
	for i := uint32(0); i < isa.NumRegisters; i++ {
		snap[i] = rt.State.Memory[i]
	}
	rt.prevRegisters = snap
}
