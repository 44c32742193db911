package storage

import (
	"hash/fnv"
	"math"
	"time"
)

// bloomFilter is a probabilistic set-membership structure: false positives
// are possible, false negatives are not. All operations run inside the
// single processor goroutine, so no internal locking is needed.
type bloomFilter struct {
	bits      []uint64
	size      uint64  // bit array length (m)
	numHashes uint32  // hash function count (k)
	capacity  uint64  // expected element count (n)
	errorRate float64 // target false-positive probability (p)
	count     uint64  // items added so far
}

// BloomFilterInfo reports a filter's configuration and observed fill state.
type BloomFilterInfo struct {
	Capacity        uint64
	Size            uint64
	NumHashes       uint32
	Count           uint64
	ErrorRate       float64
	ActualErrorRate float64
	BitsPerItem     float64
}

// ==================== BLOOM FILTER CREATION ====================

// optimalBloomParams derives bit-array size (m) and hash count (k) from the
// expected element count (n) and target false-positive rate (p):
//
//	m = -n * ln(p) / (ln(2))^2
//	k = (m/n) * ln(2)
func optimalBloomParams(capacity uint64, errorRate float64) (size uint64, numHashes uint32) {
	n := float64(capacity)
	p := errorRate

	m := -n * math.Log(p) / (math.Ln2 * math.Ln2)
	size = uint64(math.Ceil(m/64.0)) * 64

	k := (float64(size) / n) * math.Ln2
	numHashes = uint32(math.Round(k))
	if numHashes < 1 {
		numHashes = 1
	}

	return size, numHashes
}

func newBloomFilter(capacity uint64, errorRate float64) *bloomFilter {
	if capacity == 0 {
		capacity = 100
	}
	if errorRate <= 0 || errorRate >= 1 {
		errorRate = 0.01
	}

	size, numHashes := optimalBloomParams(capacity, errorRate)
	numElements := size / 64

	return &bloomFilter{
		bits:      make([]uint64, numElements),
		size:      size,
		numHashes: numHashes,
		capacity:  capacity,
		errorRate: errorRate,
	}
}

// ==================== HASH FUNCTIONS ====================

// hashPositions derives k independent bit positions for key via double
// hashing: h_i(x) = (hash1(x) + i*hash2(x)) mod m.
func (bf *bloomFilter) hashPositions(key string) []uint64 {
	positions := make([]uint64, bf.numHashes)

	h := fnv.New64a()
	h.Write([]byte(key))
	hash1 := h.Sum64()

	h.Reset()
	h.Write([]byte(key + "salt"))
	hash2 := h.Sum64()

	for i := uint32(0); i < bf.numHashes; i++ {
		combined := hash1 + uint64(i)*hash2
		positions[i] = combined % bf.size
	}

	return positions
}

// ==================== BIT OPERATIONS ====================

func (bf *bloomFilter) markBit(position uint64) {
	bf.bits[position/64] |= 1 << (position % 64)
}

func (bf *bloomFilter) testBit(position uint64) bool {
	return bf.bits[position/64]&(1<<(position%64)) != 0
}

// addAndCheck sets every bit for item's hash positions and reports whether
// the item was new (at least one bit had to be set).
func (bf *bloomFilter) addAndCheck(item string) bool {
	positions := bf.hashPositions(item)

	allSet := true
	for _, pos := range positions {
		if !bf.testBit(pos) {
			allSet = false
			break
		}
	}
	for _, pos := range positions {
		bf.markBit(pos)
	}
	if !allSet {
		bf.count++
		return true
	}
	return false
}

func (bf *bloomFilter) mightContain(item string) bool {
	for _, pos := range bf.hashPositions(item) {
		if !bf.testBit(pos) {
			return false
		}
	}
	return true
}

// ==================== BLOOM FILTER OPERATIONS ====================

// BFReserve creates an empty filter tuned for capacity and errorRate.
func (s *Store) BFReserve(key string, errorRate float64, capacity uint64) error {
	if _, exists := s.data[key]; exists {
		return ErrInvalidOperation
	}

	s.data[key] = &Value{
		Data: newBloomFilter(capacity, errorRate),
		Type: BloomFilterType,
	}
	return nil
}

// BFAdd adds item, reporting whether it was new.
func (s *Store) BFAdd(key string, item string) (bool, error) {
	bf, err := s.getBloomFilter(key)
	if err != nil {
		return false, err
	}
	return bf.addAndCheck(item), nil
}

// BFMAdd adds items, reporting which ones were new.
func (s *Store) BFMAdd(key string, items []string) ([]bool, error) {
	bf, err := s.getBloomFilter(key)
	if err != nil {
		return nil, err
	}

	results := make([]bool, len(items))
	for i, item := range items {
		results[i] = bf.addAndCheck(item)
	}
	return results, nil
}

// BFExists reports whether item might be in the filter.
func (s *Store) BFExists(key string, item string) (bool, error) {
	bf, err := s.getBloomFilter(key)
	if err != nil {
		return false, err
	}
	return bf.mightContain(item), nil
}

// BFMExists reports, per item, whether it might be in the filter.
func (s *Store) BFMExists(key string, items []string) ([]bool, error) {
	bf, err := s.getBloomFilter(key)
	if err != nil {
		return nil, err
	}

	results := make([]bool, len(items))
	for i, item := range items {
		results[i] = bf.mightContain(item)
	}
	return results, nil
}

// BFCard returns the approximate number of items added to the filter.
func (s *Store) BFCard(key string) (int64, error) {
	bf, err := s.getBloomFilter(key)
	if err != nil {
		if err == ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}
	return int64(bf.count), nil
}

// BFInfo reports the filter's configuration plus its currently observed
// false-positive rate given how full the bit array actually is.
func (s *Store) BFInfo(key string) (*BloomFilterInfo, error) {
	bf, err := s.getBloomFilter(key)
	if err != nil {
		return nil, err
	}

	bitsPerItem := 0.0
	if bf.count > 0 {
		bitsPerItem = float64(bf.size) / float64(bf.count)
	}

	return &BloomFilterInfo{
		Capacity:        bf.capacity,
		Size:            bf.size,
		NumHashes:       bf.numHashes,
		Count:           bf.count,
		ErrorRate:       bf.errorRate,
		ActualErrorRate: bf.observedErrorRate(),
		BitsPerItem:     bitsPerItem,
	}, nil
}

// ==================== HELPER FUNCTIONS ====================

func (s *Store) getBloomFilter(key string) (*bloomFilter, error) {
	val, exists := s.data[key]
	if !exists {
		return nil, ErrKeyNotFound
	}

	if val.ExpiresAt != nil && time.Now().After(*val.ExpiresAt) {
		s.deleteKey(key)
		return nil, ErrKeyNotFound
	}

	if val.Type != BloomFilterType {
		return nil, ErrInvalidOperation
	}

	bf, ok := val.Data.(*bloomFilter)
	if !ok {
		return nil, ErrInvalidOperation
	}

	return bf, nil
}

// observedErrorRate estimates the current false-positive rate from the
// actual bit fill ratio: (1 - e^(-k*n/m))^k.
func (bf *bloomFilter) observedErrorRate() float64 {
	if bf.size == 0 {
		return 0.0
	}
	exponent := -float64(bf.numHashes) * float64(bf.count) / float64(bf.size)
	return math.Pow(1.0-math.Exp(exponent), float64(bf.numHashes))
}
