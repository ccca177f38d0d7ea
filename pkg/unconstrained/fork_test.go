package unconstrained_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32im/tracevm/pkg/state"
	"github.com/rv32im/tracevm/pkg/unconstrained"
)

func TestRestoreDeletesNeverTouchedAddress(t *testing.T) {
	mem := map[uint32]state.MemoryEntry{}
	f := unconstrained.NewForkState()
	f.NoteFirstTouch(10, nil)
	mem[10] = state.MemoryEntry{Value: 99}

	f.Restore(mem)

	_, ok := mem[10]
	require.False(t, ok)
}

func TestRestoreReinstatesPriorEntry(t *testing.T) {
	mem := map[uint32]state.MemoryEntry{
		10: {Value: 1, Shard: 0, Timestamp: 0},
	}
	f := unconstrained.NewForkState()
	prior := mem[10]
	f.NoteFirstTouch(10, &prior)
	mem[10] = state.MemoryEntry{Value: 2, Shard: 0, Timestamp: 4}

	f.Restore(mem)

	require.Equal(t, prior, mem[10])
}

func TestNoteFirstTouchOnlyRecordsFirstEntry(t *testing.T) {
	mem := map[uint32]state.MemoryEntry{
		10: {Value: 1},
	}
	f := unconstrained.NewForkState()
	first := mem[10]
	f.NoteFirstTouch(10, &first)

	second := state.MemoryEntry{Value: 2}
	f.NoteFirstTouch(10, &second)

	mem[10] = state.MemoryEntry{Value: 3}
	f.Restore(mem)

	require.Equal(t, first, mem[10])
}
