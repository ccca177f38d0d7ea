// Package runtimecfg binds the runtime's environment-driven configuration
// (spec.md §6 "Environment") through viper, the way
// other_examples/manifests/Manu343726-cucaracha binds its own application
// configuration.
package runtimecfg

import "github.com/spf13/viper"

// DefaultShardSize is used when SHARD_SIZE is unset. It matches the
// default carried by the original runtime's environment helper.
const DefaultShardSize = 1 << 22

// Config is the runtime's externally-configurable knobs.
type Config struct {
	// ShardSize is the number of instruction slots (not clock units) per
	// shard; the runtime multiplies it by 4 when comparing against Clk.
	ShardSize uint32

	// TraceFile, if non-empty, is the path each fetched PC is appended to
	// as 4 big-endian bytes (spec.md §6).
	TraceFile string
}

// Load reads SHARD_SIZE and TRACE_FILE from the environment via viper.
func Load() Config {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetDefault("SHARD_SIZE", DefaultShardSize)
	v.SetDefault("TRACE_FILE", "")

	return Config{
		ShardSize: v.GetUint32("SHARD_SIZE"),
		TraceFile: v.GetString("TRACE_FILE"),
	}
}
