package storage

import (
	"sync/atomic"
	"time"
)

// Store is the keyspace for a single logical database.
// A server holds one Store per SELECT-able index; DBIndex identifies which.
type Store struct {
	DBIndex        int
	data           map[string]*Value
	dataWithExpiry map[string]time.Time
	snapshotCount  int32   // Atomic counter for active snapshots (COW optimization)
	dirty          int64   // Atomic per-db mutation counter (contributes to server dirty counter)
	PubSub         *PubSub // Publish/Subscribe manager (shared across all DBs)

	// Notify is invoked once per keyspace mutation, after the mutation is
	// applied, with the event name ("set", "del", "expired", "evicted", ...),
	// the affected key, and the class flag character used by
	// notify-keyspace-events. Nil until wired by the server.
	Notify func(event string, key string, class byte)

	// OnTouch is invoked with the key that changed, for WATCH dirty-tracking
	// and client-tracking invalidation. Nil until wired by the server.
	OnTouch func(key string)
}

// Value is one keyspace entry: exactly one typed payload plus the metadata
// needed for expiration (ExpiresAt) and eviction scoring (AccessedAt, Freq).
type Value struct {
	Data       interface{}
	ExpiresAt  *time.Time
	Type       ValueType
	AccessedAt time.Time // LRU clock: seconds-resolution last-access time
	Freq       uint8      // LFU: 8-bit logarithmic counter, LFU_INIT_VAL=5
}

type ValueType int

const (
	StringType ValueType = iota
	ListType
	SetType
	HashType
	ZSetType
	BloomFilterType
	HyperLogLogType
	StreamType
)

func NewStore(dbIndex int) *Store {
	return &Store{
		DBIndex:        dbIndex,
		data:           make(map[string]*Value),
		dataWithExpiry: make(map[string]time.Time),
		// PubSub is process-wide in Redis regardless of SELECTed database;
		// the server wires every Store to the same instance after creation.
		PubSub: NewPubSub(),
	}
}

// existingExpiry returns the TTL currently set on key, if any, so that
// save* helpers can carry it forward across a mutation (a write that sets no
// a key's expiration survives a mutation unless the command clears it).
func (s *Store) existingExpiry(key string) *time.Time {
	if v, ok := s.data[key]; ok {
		return v.ExpiresAt
	}
	return nil
}

// deleteKey is a helper to delete from both maps
func (s *Store) deleteKey(key string) {
	delete(s.data, key)
	delete(s.dataWithExpiry, key)
}

// touch records LRU/LFU access metadata and fires tracking/watch hooks.
// Called by read paths (Get, HGet, ...) and write paths alike.
func (s *Store) touch(key string, val *Value) {
	if val != nil {
		val.AccessedAt = time.Now()
		if val.Freq < 255 {
			val.Freq++
		}
	}
	if s.OnTouch != nil {
		s.OnTouch(key)
	}
}

// markDirty increments the per-db mutation counter and
// notifies keyspace-notification subscribers.
func (s *Store) markDirty(event, key string, class byte) {
	atomic.AddInt64(&s.dirty, 1)
	if s.OnTouch != nil {
		s.OnTouch(key)
	}
	if s.Notify != nil {
		s.Notify(event, key, class)
	}
}

// DirtyCount returns the number of mutations applied to this db since start.
func (s *Store) DirtyCount() int64 {
	return atomic.LoadInt64(&s.dirty)
}

// Len returns the number of live (non-expired at call time) keys.
func (s *Store) Len() int {
	return len(s.data)
}

// GetAllData returns a SHALLOW COPY of all data for snapshot purposes
// Uses copy-on-write (COW) optimization: clones Value structs but copies data pointers,
// actual data is copied only when modified during an active snapshot.
// Caller MUST call ReleaseSnapshot() when done to decrement reference count.
func (s *Store) GetAllData() map[string]*Value {
	// Increment snapshot counter atomically
	atomic.AddInt32(&s.snapshotCount, 1)

	// Shallow copy - clone Value structs, copy data pointers
	snapshot := make(map[string]*Value, len(s.data))
	for key, value := range s.data {
		// Clone the Value struct (not just copy pointer)
		snapshot[key] = &Value{
			Data:      value.Data,                   // Shallow copy data pointer
			ExpiresAt: copyTimePtr(value.ExpiresAt), // Deep copy time
			Type:      value.Type,
		}
	}

	return snapshot
}

// copyTimePtr creates a deep copy of a time pointer
func copyTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}

// ReleaseSnapshot decrements the snapshot reference counter
// MUST be called after snapshot operations complete (AOF rewrite, BGSAVE)
func (s *Store) ReleaseSnapshot() {
	atomic.AddInt32(&s.snapshotCount, -1)
}

// isSnapshotActive checks if any snapshot is currently active
// Used by write operations to determine if copy-on-write is needed
func (s *Store) isSnapshotActive() bool {
	return atomic.LoadInt32(&s.snapshotCount) > 0
}

// EvictionCandidate is one key surfaced to the eviction engine:
// its access-recency/frequency metadata and whether it carries a TTL
// (volatile-* policies only consider keys with ExpiresAt set).
type EvictionCandidate struct {
	Key        string
	Volatile   bool
	AccessedAt time.Time
	Freq       uint8
	ApproxSize int
}

// SampleForEviction returns up to n pseudo-random candidates, Go's map
// iteration order standing in for Redis's reservoir sampling over its hash
// table. volatileOnly restricts the sample to keys with a TTL set.
func (s *Store) SampleForEviction(n int, volatileOnly bool) []EvictionCandidate {
	candidates := make([]EvictionCandidate, 0, n)
	for key, val := range s.data {
		if volatileOnly && val.ExpiresAt == nil {
			continue
		}
		candidates = append(candidates, EvictionCandidate{
			Key:        key,
			Volatile:   val.ExpiresAt != nil,
			AccessedAt: val.AccessedAt,
			Freq:       val.Freq,
			ApproxSize: approxValueSize(key, val),
		})
		if len(candidates) >= n {
			break
		}
	}
	return candidates
}

// EvictKey deletes a key as part of eviction, distinct from a user DEL so
// callers can fire an "evicted" notification instead of "del".
func (s *Store) EvictKey(key string) {
	s.deleteKey(key)
}

// ApproxMemory is a rough per-database size estimate (sum of key lengths
// plus a crude per-type payload estimate), used as maxmemory's numerator.
// It is not a byte-accurate accounting of actual heap usage.
func (s *Store) ApproxMemory() int64 {
	var total int64
	for key, val := range s.data {
		total += int64(approxValueSize(key, val))
	}
	return total
}

func approxValueSize(key string, val *Value) int {
	size := len(key) + 48 // map/struct overhead estimate
	switch v := val.Data.(type) {
	case string:
		size += len(v)
	case []string:
		for _, e := range v {
			size += len(e) + 8
		}
	case map[string]string:
		for k, e := range v {
			size += len(k) + len(e) + 16
		}
	case map[string]struct{}:
		for k := range v {
			size += len(k) + 8
		}
	default:
		size += 64
	}
	return size
}
