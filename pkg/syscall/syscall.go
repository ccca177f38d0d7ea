// Package syscall defines the ECALL dispatch contract (spec.md §4.7):
// a table from syscall code to handler, and the context a handler uses to
// mutate runtime state. Handler *implementations* (precompiles, I/O,
// memory-mapped devices) are external collaborators and out of scope here
// — only the dispatch contract lives in this module.
package syscall

import "github.com/rv32im/tracevm/pkg/isa"

// Code identifies a syscall, read by the runtime from register X5 before
// dispatch.
type Code uint32

// Machine is the subset of runtime capabilities a Handler is permitted to
// exercise: register/memory mutation and clock inspection. The runtime
// implements this interface; handlers never see the concrete runtime type.
type Machine interface {
	Register(reg isa.Register) uint32
	SetRegister(reg isa.Register, value uint32)
	Word(addr uint32) uint32
	SetWord(addr uint32, value uint32)
	Clk() uint32
	Shard() uint32
}

// Context is passed to Handler.Execute. The handler mutates runtime state
// through Machine, advances Clk by exactly NumExtraCycles, and sets NextPC
// to the program counter execution should resume at.
type Context struct {
	Machine Machine
	NextPC  uint32
	Clk     uint32
}

// Handler is the syscall handler contract. NumExtraCycles declares how
// many clock units Execute will consume; the runtime asserts this after
// the call returns (spec.md §4.3 "ECALL", §4.7).
type Handler interface {
	NumExtraCycles() uint32
	Execute(ctx *Context) uint32
}

// Registry maps syscall codes to their handlers, supplied at runtime
// construction (spec.md §6 "Syscall registry").
type Registry map[Code]Handler

// MaxExtraCycles returns the maximum NumExtraCycles over all registered
// handlers, used by the runtime to compute the conservative shard boundary
// (spec.md §4.5). It is 0 for an empty registry.
func (r Registry) MaxExtraCycles() uint32 {
	var max uint32
	for _, h := range r {
		if n := h.NumExtraCycles(); n > max {
			max = n
		}
	}
	return max
}
