package runtimecfg_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32im/tracevm/internal/runtimecfg"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("SHARD_SIZE")
	os.Unsetenv("TRACE_FILE")

	cfg := runtimecfg.Load()

	require.EqualValues(t, runtimecfg.DefaultShardSize, cfg.ShardSize)
	require.Empty(t, cfg.TraceFile)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SHARD_SIZE", "1024")
	t.Setenv("TRACE_FILE", "/tmp/trace.bin")

	cfg := runtimecfg.Load()

	require.EqualValues(t, 1024, cfg.ShardSize)
	require.Equal(t, "/tmp/trace.bin", cfg.TraceFile)
}
