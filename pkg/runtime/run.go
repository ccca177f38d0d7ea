package runtime

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sort"

	"github.com/rv32im/tracevm/pkg/events"
	"github.com/rv32im/tracevm/pkg/isa"
	"github.com/rv32im/tracevm/pkg/state"
)

// Run executes the program to completion: the fetch/decode/execute loop of
// spec.md §2/§4.4, followed by postprocessing. It returns the first fatal
// error execute reports, wrapped with the faulting PC.
func (rt *Runtime) Run() error {
	for addr, value := range rt.Program.MemoryImage {
		rt.State.Memory[addr] = state.MemoryEntry{Value: value}
	}
	rt.State.Clk++

	for rt.Program.Contains(rt.State.PC) {
		instr := rt.Program.InstructionAt(rt.State.PC)
		pc := rt.State.PC
		shard := rt.State.CurrentShard
		clk := rt.State.Clk

		if err := rt.writeTrace(pc); err != nil {
			return err
		}

		a, b, c, memVal, nextPC, err := rt.execute(instr)
		if err != nil {
			return fmt.Errorf("runtime: pc=0x%x: %w", pc, err)
		}

		if rt.logger.Enabled(context.Background(), slog.LevelDebug) {
			rt.logger.Debug("execute", "pc", pc, "opcode", instr.Opcode, "clk", clk, "shard", shard,
				"registers", rt.RegisterDump())
		}
		rt.snapshotRegisters()

		if !rt.Unconstrained {
			rt.Record.CpuEvents = append(rt.Record.CpuEvents, events.CpuEvent{
				Shard:            shard,
				Clk:              clk,
				PC:               pc,
				Instruction:      instr,
				A:                a,
				B:                b,
				C:                c,
				MemoryStoreValue: memVal,
				ARecord:          rt.cpuRecord.A,
				BRecord:          rt.cpuRecord.B,
				CRecord:          rt.cpuRecord.C,
				MemoryRecord:     rt.cpuRecord.Memory,
			})
		}

		rt.State.GlobalClk++
		if instr.Opcode == isa.ECALL {
			// Clk already carries the handler's declared delta
			// (executeSyscall/ErrSyscallClockMismatch).
		} else {
			rt.State.Clk += 4
		}
		rt.State.PC = nextPC

		if !rt.Unconstrained && rt.maxSyscall+rt.State.Clk >= rt.ShardSize*4 {
			rt.State.CurrentShard++
			rt.State.Clk = 0
		}
	}

	if rt.traceWriter != nil {
		if err := rt.traceWriter.Flush(); err != nil {
			return fmt.Errorf("runtime: flushing trace file: %w", err)
		}
	}

	rt.postprocess()
	return nil
}

// writeTrace appends pc, big-endian, to the trace file. It is a no-op when
// no trace file was configured or the runtime is currently unconstrained
// (spec.md §6: unconstrained regions produce no observable trace).
func (rt *Runtime) writeTrace(pc uint32) error {
	if rt.traceWriter == nil || rt.Unconstrained {
		return nil
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], pc)
	if _, err := rt.traceWriter.Write(buf[:]); err != nil {
		return fmt.Errorf("runtime: writing trace file: %w", err)
	}
	return nil
}

// postprocess derives the three memory-consistency tables (spec.md §4.6),
// following `original_source/core/src/runtime/mod.rs`'s postprocess
// exactly: first_memory_record holds one zero-valued, mult=1 entry per
// touched address that is *not* part of the program's static image;
// last_memory_record holds one mult=1 entry (the last-witnessed value) per
// touched address, image or not; program_memory_record holds one entry per
// image address, carrying the image value at shard=0/timestamp=0, with
// multiplicity doubling as the original's "used" flag (1
// unless the address's live entry is still at its untouched
// shard=0/timestamp=0 origin).
func (rt *Runtime) postprocess() {
	addrs := make([]uint32, 0, len(rt.touched))
	for addr := range rt.touched {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	rt.Record.FirstMemoryRecord = make([]events.MemoryRecordEntry, 0, len(addrs))
	rt.Record.LastMemoryRecord = make([]events.MemoryRecordEntry, 0, len(addrs))
	for _, addr := range addrs {
		tr := rt.touched[addr]
		if _, inImage := rt.Program.MemoryImage[addr]; !inImage {
			rt.Record.FirstMemoryRecord = append(rt.Record.FirstMemoryRecord, events.MemoryRecordEntry{
				Addr: addr, Record: state.MemoryRecord{}, Multiplicity: 1,
			})
		}
		rt.Record.LastMemoryRecord = append(rt.Record.LastMemoryRecord, events.MemoryRecordEntry{
			Addr: addr, Record: tr.last, Multiplicity: 1,
		})
	}

	imgAddrs := make([]uint32, 0, len(rt.Program.MemoryImage))
	for addr := range rt.Program.MemoryImage {
		imgAddrs = append(imgAddrs, addr)
	}
	sort.Slice(imgAddrs, func(i, j int) bool { return imgAddrs[i] < imgAddrs[j] })

	rt.Record.ProgramMemoryRecord = make([]events.MemoryRecordEntry, 0, len(imgAddrs))
	for _, addr := range imgAddrs {
		record := state.MemoryRecord{Value: rt.Program.MemoryImage[addr]}
		used := uint32(1)
		if live := rt.State.Memory[addr]; live.Shard == 0 && live.Timestamp == 0 {
			used = 0
		}
		rt.Record.ProgramMemoryRecord = append(rt.Record.ProgramMemoryRecord, events.MemoryRecordEntry{
			Addr: addr, Record: record, Multiplicity: used,
		})
	}
}
