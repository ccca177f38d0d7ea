package syscall_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32im/tracevm/pkg/syscall"
)

type fixedCostHandler struct{ cost uint32 }

func (h fixedCostHandler) NumExtraCycles() uint32 { return h.cost }
func (h fixedCostHandler) Execute(ctx *syscall.Context) uint32 {
	ctx.Clk += h.cost
	return 0
}

func TestMaxExtraCyclesOfEmptyRegistry(t *testing.T) {
	require.EqualValues(t, 0, syscall.Registry{}.MaxExtraCycles())
}

func TestMaxExtraCyclesPicksLargest(t *testing.T) {
	reg := syscall.Registry{
		1: fixedCostHandler{cost: 4},
		2: fixedCostHandler{cost: 100},
		3: fixedCostHandler{cost: 17},
	}
	require.EqualValues(t, 100, reg.MaxExtraCycles())
}
