package runtime

import "errors"

// Fatal errors (spec.md §7): invariant violations that abort execution.
// None of these are recoverable inside a run; the caller is expected to
// supply well-formed programs and a well-formed syscall registry.
var (
	// ErrMisaligned indicates a memory access violated the alignment
	// predicate for its access position (word-aligned + >40 for Memory
	// positions, or half/word alignment for LH/LHU/SH/SW).
	ErrMisaligned = errors.New("runtime: misaligned memory access")

	// ErrInvalidRegister indicates a register-position access used an
	// address outside 0..31.
	ErrInvalidRegister = errors.New("runtime: invalid register index")

	// ErrUnimplemented indicates EBREAK was executed.
	ErrUnimplemented = errors.New("runtime: EBREAK is unimplemented")

	// ErrUnimp indicates the UNIMP opcode was executed.
	ErrUnimp = errors.New("runtime: UNIMP encountered")

	// ErrNoSyscallHandler indicates ECALL named a syscall code with no
	// registered handler.
	ErrNoSyscallHandler = errors.New("runtime: unsupported syscall")

	// ErrSyscallClockMismatch indicates a syscall handler did not advance
	// Clk by exactly NumExtraCycles.
	ErrSyscallClockMismatch = errors.New("runtime: syscall handler violated its declared clock delta")
)
