// Package eviction implements the sampled maxmemory eviction engine: when the
// approximate memory usage summed over all databases exceeds maxmemory, a
// small random sample of candidate keys is scored per the configured policy and the
// worst-scoring one is evicted, repeating until usage is back under budget
// or the policy disallows eviction entirely.
package eviction

import (
	"time"

	"storedb/internal/storage"
)

// Policy names a maxmemory-policy value.
type Policy string

const (
	NoEviction     Policy = "noeviction"
	AllKeysLRU     Policy = "allkeys-lru"
	VolatileLRU    Policy = "volatile-lru"
	AllKeysLFU     Policy = "allkeys-lfu"
	VolatileLFU    Policy = "volatile-lfu"
	AllKeysRandom  Policy = "allkeys-random"
	VolatileRandom Policy = "volatile-random"
	VolatileTTL    Policy = "volatile-ttl"
)

func (p Policy) volatileOnly() bool {
	switch p {
	case VolatileLRU, VolatileLFU, VolatileRandom, VolatileTTL:
		return true
	default:
		return false
	}
}

// Store is the subset of storage.Store the evictor needs.
type Store interface {
	SampleForEviction(n int, volatileOnly bool) []storage.EvictionCandidate
	EvictKey(key string)
	ApproxMemory() int64
}

// Evictor runs one policy across every logical database.
type Evictor struct {
	policy  Policy
	samples int
}

// NewEvictor builds an Evictor. samples defaults to 5 (Redis's
// maxmemory-samples default) when <= 0.
func NewEvictor(policy Policy, samples int) *Evictor {
	if samples <= 0 {
		samples = 5
	}
	return &Evictor{policy: policy, samples: samples}
}

// Policy returns the configured policy.
func (e *Evictor) Policy() Policy {
	return e.policy
}

// SetPolicy updates the policy (CONFIG SET maxmemory-policy).
func (e *Evictor) SetPolicy(p Policy) {
	e.policy = p
}

// EvictionResult names one key removed to free memory.
type EvictionResult struct {
	DBIndex int
	Key     string
}

// EnsureBudget evicts keys across stores until total approximate memory is
// <= maxMemory, or until the policy/sample pool can make no more progress.
// maxMemory <= 0 disables eviction. Returns every key evicted, in order.
func (e *Evictor) EnsureBudget(stores []Store, maxMemory int64) []EvictionResult {
	if maxMemory <= 0 || e.policy == NoEviction {
		return nil
	}

	var results []EvictionResult
	const maxRounds = 10000
	for round := 0; round < maxRounds; round++ {
		var total int64
		for _, st := range stores {
			total += st.ApproxMemory()
		}
		if total <= maxMemory {
			break
		}

		dbIndex, key, ok := e.pickVictim(stores)
		if !ok {
			break // nothing left to evict under this policy
		}
		stores[dbIndex].EvictKey(key)
		results = append(results, EvictionResult{DBIndex: dbIndex, Key: key})
	}
	return results
}

func (e *Evictor) pickVictim(stores []Store) (dbIndex int, key string, ok bool) {
	volatileOnly := e.policy.volatileOnly()
	var best storage.EvictionCandidate
	bestDB := -1
	bestScore := float64(0)
	found := false

	for i, st := range stores {
		for _, c := range st.SampleForEviction(e.samples, volatileOnly) {
			score := e.score(c)
			if !found || score > bestScore {
				found = true
				best = c
				bestDB = i
				bestScore = score
			}
		}
	}
	if !found {
		return 0, "", false
	}
	return bestDB, best.Key, true
}

// score ranks eviction desirability; higher sorts first. For LRU this is
// time since last access; for LFU it's the inverse of the access-frequency
// counter; for TTL it's time until expiry inverted; for random it is
// uniform (all candidates tie, so the first sampled wins).
func (e *Evictor) score(c storage.EvictionCandidate) float64 {
	switch e.policy {
	case AllKeysLRU, VolatileLRU:
		return time.Since(c.AccessedAt).Seconds()
	case AllKeysLFU, VolatileLFU:
		return 255.0 - float64(c.Freq)
	case VolatileTTL:
		return time.Since(c.AccessedAt).Seconds()
	case AllKeysRandom, VolatileRandom:
		return 0
	default:
		return 0
	}
}
