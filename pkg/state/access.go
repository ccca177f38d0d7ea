package state

// AccessRecord is the per-slot witness stashed into a CpuRecord by
// mr_cpu/mw_cpu (spec.md §4.2): a read or a write collapsed onto one
// shape, since a CpuEvent only needs value/shard/timestamp plus the
// previous pair to reconstruct the memory argument.
type AccessRecord struct {
	Value         uint32
	Shard         uint32
	Timestamp     uint32
	PrevValue     uint32
	PrevShard     uint32
	PrevTimestamp uint32
	IsWrite       bool
}

// FromRead builds an AccessRecord from a MemoryReadRecord. PrevValue
// equals Value since a read never changes the stored value.
func FromRead(r MemoryReadRecord) AccessRecord {
	return AccessRecord{
		Value: r.Value, Shard: r.Shard, Timestamp: r.Timestamp,
		PrevValue: r.Value, PrevShard: r.PrevShard, PrevTimestamp: r.PrevTimestamp,
	}
}

// FromWrite builds an AccessRecord from a MemoryWriteRecord.
func FromWrite(r MemoryWriteRecord) AccessRecord {
	return AccessRecord{
		Value: r.Value, Shard: r.Shard, Timestamp: r.Timestamp,
		PrevValue: r.PrevValue, PrevShard: r.PrevShard, PrevTimestamp: r.PrevTimestamp,
		IsWrite: true,
	}
}
