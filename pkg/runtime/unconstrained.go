package runtime

import "github.com/rv32im/tracevm/pkg/unconstrained"

// BeginUnconstrained enters an unconstrained region: subsequent memory
// mutations are journaled instead of (only) applied, and no CPU/ALU
// events are emitted, until EndUnconstrained is called. Nesting is not
// supported (spec.md §5); calling BeginUnconstrained while already
// unconstrained panics.
func (rt *Runtime) BeginUnconstrained() {
	if rt.Unconstrained {
		panic("runtime: unconstrained regions do not nest")
	}
	rt.Unconstrained = true
	rt.fork = unconstrained.NewForkState()
}

// EndUnconstrained exits the current unconstrained region, restoring the
// memory map to its state at BeginUnconstrained.
func (rt *Runtime) EndUnconstrained() {
	if !rt.Unconstrained {
		panic("runtime: EndUnconstrained called without a matching BeginUnconstrained")
	}
	rt.fork.Restore(rt.State.Memory)
	rt.Unconstrained = false
	rt.fork = unconstrained.NewForkState()
}
