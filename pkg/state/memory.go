// Package state defines the execution state of a run: the program
// counter, the local and global clocks, the current shard, and the live
// memory map, plus the typed records that witness individual memory
// accesses.
package state

// MemoryEntry is the live value of a memory cell: (value, shard,
// timestamp) as of the last access. Registers 0..31 alias the low
// addresses of the same map (see spec.md §3).
type MemoryEntry struct {
	Value     uint32
	Shard     uint32
	Timestamp uint32
}

// MemoryRecord is a memory-consistency witness: the value held at an
// address together with the shard/timestamp of the access it witnesses.
type MemoryRecord struct {
	Value     uint32
	Shard     uint32
	Timestamp uint32
}

// MemoryReadRecord witnesses a read access: the value observed plus the
// (shard, timestamp) of this access and of the access immediately
// preceding it.
type MemoryReadRecord struct {
	Value         uint32
	Shard         uint32
	Timestamp     uint32
	PrevShard     uint32
	PrevTimestamp uint32
}

// NewMemoryReadRecord constructs a MemoryReadRecord.
func NewMemoryReadRecord(value, shard, timestamp, prevShard, prevTimestamp uint32) MemoryReadRecord {
	return MemoryReadRecord{
		Value: value, Shard: shard, Timestamp: timestamp,
		PrevShard: prevShard, PrevTimestamp: prevTimestamp,
	}
}

// MemoryWriteRecord witnesses a write access: the newly-written value,
// the (shard, timestamp) of this access, and the value/(shard, timestamp)
// that were overwritten.
type MemoryWriteRecord struct {
	Value         uint32
	Shard         uint32
	Timestamp     uint32
	PrevValue     uint32
	PrevShard     uint32
	PrevTimestamp uint32
}

// NewMemoryWriteRecord constructs a MemoryWriteRecord.
func NewMemoryWriteRecord(value, shard, timestamp, prevValue, prevShard, prevTimestamp uint32) MemoryWriteRecord {
	return MemoryWriteRecord{
		Value: value, Shard: shard, Timestamp: timestamp,
		PrevValue: prevValue, PrevShard: prevShard, PrevTimestamp: prevTimestamp,
	}
}

// AsMemoryRecord projects a MemoryReadRecord onto the common
// (value, shard, timestamp) triple of a MemoryRecord.
func (r MemoryReadRecord) AsMemoryRecord() MemoryRecord {
	return MemoryRecord{Value: r.Value, Shard: r.Shard, Timestamp: r.Timestamp}
}

// AsMemoryRecord projects a MemoryWriteRecord onto the common
// (value, shard, timestamp) triple of a MemoryRecord.
func (r MemoryWriteRecord) AsMemoryRecord() MemoryRecord {
	return MemoryRecord{Value: r.Value, Shard: r.Shard, Timestamp: r.Timestamp}
}
