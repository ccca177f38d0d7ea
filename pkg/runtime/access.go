package runtime

import (
	"fmt"

	"github.com/rv32im/tracevm/pkg/isa"
	"github.com/rv32im/tracevm/pkg/state"
)

// AccessPosition identifies one of the four sub-cycle access slots. The
// per-position offset is added to Clk, guaranteeing distinct timestamps
// for every access within one instruction cycle (spec.md §3 invariants).
type AccessPosition int

const (
	Memory AccessPosition = iota
	C
	B
	A
)

func (rt *Runtime) clkFromPosition(pos AccessPosition) uint32 {
	return rt.State.Clk + uint32(pos)
}

func (rt *Runtime) validateMemoryAccess(addr uint32, pos AccessPosition) error {
	if pos == Memory {
		if addr%4 != 0 || addr <= 40 {
			return fmt.Errorf("%w: addr=0x%x position=Memory", ErrMisaligned, addr)
		}
		return nil
	}
	if addr >= isa.NumRegisters {
		return fmt.Errorf("%w: addr=%d", ErrInvalidRegister, addr)
	}
	return nil
}

// mr ensures an entry exists at addr (defaulting to the zero entry on
// first touch), journals the pre-mutation entry if unconstrained, then
// overwrites shard/timestamp while leaving value untouched. It returns the
// record witnessing the previous (shard, timestamp) at this address.
func (rt *Runtime) mr(addr, shard, clk uint32) state.MemoryReadRecord {
	entry, existed := rt.State.Memory[addr]
	if rt.Unconstrained {
		rt.noteFirstTouch(addr, entry, existed)
	}
	prevValue, prevShard, prevTimestamp := entry.Value, entry.Shard, entry.Timestamp
	entry.Shard, entry.Timestamp = shard, clk
	rt.State.Memory[addr] = entry
	return state.NewMemoryReadRecord(prevValue, shard, clk, prevShard, prevTimestamp)
}

// mw is like mr but additionally overwrites value. The returned record
// carries the pre-write value/shard/timestamp.
func (rt *Runtime) mw(addr, value, shard, clk uint32) state.MemoryWriteRecord {
	entry, existed := rt.State.Memory[addr]
	if rt.Unconstrained {
		rt.noteFirstTouch(addr, entry, existed)
	}
	prevValue, prevShard, prevTimestamp := entry.Value, entry.Shard, entry.Timestamp
	rt.State.Memory[addr] = state.MemoryEntry{Value: value, Shard: shard, Timestamp: clk}
	return state.NewMemoryWriteRecord(value, shard, clk, prevValue, prevShard, prevTimestamp)
}

func (rt *Runtime) noteFirstTouch(addr uint32, entry state.MemoryEntry, existed bool) {
	if !existed {
		rt.fork.NoteFirstTouch(addr, nil)
		return
	}
	prior := entry
	rt.fork.NoteFirstTouch(addr, &prior)
}

// mrCpu is the CPU-facing read wrapper: it validates alignment, computes
// the effective per-position timestamp, performs the read, and — unless
// the runtime is unconstrained — stashes the access into the current
// cycle's CpuRecord slot for pos.
func (rt *Runtime) mrCpu(addr uint32, pos AccessPosition) (uint32, error) {
	if err := rt.validateMemoryAccess(addr, pos); err != nil {
		return 0, err
	}
	record := rt.mr(addr, rt.State.CurrentShard, rt.clkFromPosition(pos))
	if !rt.Unconstrained {
		ar := state.FromRead(record)
		switch pos {
		case A:
			rt.cpuRecord.SetA(ar)
		case B:
			rt.cpuRecord.SetB(ar)
		case C:
			rt.cpuRecord.SetC(ar)
		case Memory:
			rt.cpuRecord.SetMemory(ar)
		}
		rt.noteAccess(addr, ar)
	}
	return record.Value, nil
}

// mwCpu is the CPU-facing write wrapper; see mrCpu.
func (rt *Runtime) mwCpu(addr, value uint32, pos AccessPosition) error {
	if err := rt.validateMemoryAccess(addr, pos); err != nil {
		return err
	}
	record := rt.mw(addr, value, rt.State.CurrentShard, rt.clkFromPosition(pos))
	if !rt.Unconstrained {
		ar := state.FromWrite(record)
		switch pos {
		case A:
			rt.cpuRecord.SetA(ar)
		case B:
			rt.cpuRecord.SetB(ar)
		case C:
			rt.cpuRecord.SetC(ar)
		case Memory:
			rt.cpuRecord.SetMemory(ar)
		}
		rt.noteAccess(addr, ar)
	}
	return nil
}

// noteAccess folds a witnessed access into the running first/last-touch
// table postprocess uses to derive the memory-consistency records
// (spec.md §4.6). The first record observed for an address carries the
// value/shard/timestamp as of just *before* this access; the last record
// is updated on every access to the value/shard/timestamp as of just
// *after* it.
func (rt *Runtime) noteAccess(addr uint32, ar state.AccessRecord) {
	tr, ok := rt.touched[addr]
	if !ok {
		tr = &memoryTouch{
			first: state.MemoryRecord{Value: ar.PrevValue, Shard: ar.PrevShard, Timestamp: ar.PrevTimestamp},
		}
		rt.touched[addr] = tr
	}
	tr.last = state.MemoryRecord{Value: ar.Value, Shard: ar.Shard, Timestamp: ar.Timestamp}
	tr.multiplicity++
}

// rr reads a register at the given access position.
func (rt *Runtime) rr(reg isa.Register, pos AccessPosition) (uint32, error) {
	return rt.mrCpu(reg.U32(), pos)
}

// rw writes a register. Writes to X0 are silently dropped (spec.md §3).
// The only position a register is ever written at is A.
func (rt *Runtime) rw(reg isa.Register, value uint32) error {
	if reg == isa.X0 {
		return nil
	}
	return rt.mwCpu(reg.U32(), value, A)
}
