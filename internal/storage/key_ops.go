package storage

import (
	"fmt"
	"math/rand"
	"time"
)

// typeNames maps ValueType to the lowercase name TYPE/OBJECT ENCODING report.
var typeNames = map[ValueType]string{
	StringType:      "string",
	ListType:        "list",
	SetType:         "set",
	HashType:        "hash",
	ZSetType:        "zset",
	BloomFilterType: "bloomfilter",
	HyperLogLogType: "string", // HLL registers are stored as a string payload
	StreamType:      "stream",
}

// TypeOf reports the Redis type name for key, or "none" if absent/expired.
func (s *Store) TypeOf(key string) string {
	if !s.Exists(key) {
		return "none"
	}
	return typeNames[s.data[key].Type]
}

// PTTL returns the time-to-live for a key in milliseconds, using the same
// -2/-1 sentinels as TTL.
func (s *Store) PTTL(key string) int64 {
	val, exists := s.data[key]
	if !exists {
		return -2
	}
	if val.ExpiresAt != nil && time.Now().After(*val.ExpiresAt) {
		s.deleteKey(key)
		return -2
	}
	if val.ExpiresAt == nil {
		return -1
	}
	ms := time.Until(*val.ExpiresAt).Milliseconds()
	if ms < 0 {
		s.deleteKey(key)
		return -2
	}
	return ms
}

// Persist removes a key's expiration, returning whether one was cleared.
func (s *Store) Persist(key string) bool {
	val, exists := s.data[key]
	if !exists {
		return false
	}
	if val.ExpiresAt != nil && time.Now().After(*val.ExpiresAt) {
		s.deleteKey(key)
		return false
	}
	if val.ExpiresAt == nil {
		return false
	}
	val.ExpiresAt = nil
	delete(s.dataWithExpiry, key)
	return true
}

// Rename moves src to dst, overwriting any existing dst, preserving src's
// TTL. Returns ErrNoSuchKey if src is absent.
func (s *Store) Rename(src, dst string) error {
	val, exists := s.data[src]
	if !exists || (val.ExpiresAt != nil && time.Now().After(*val.ExpiresAt)) {
		return ErrNoSuchKey
	}
	if src == dst {
		return nil
	}
	s.deleteKey(dst)
	s.data[dst] = val
	if val.ExpiresAt != nil {
		s.dataWithExpiry[dst] = *val.ExpiresAt
	}
	delete(s.data, src)
	delete(s.dataWithExpiry, src)
	s.markDirty("rename_from", src, 'g')
	s.markDirty("rename_to", dst, 'g')
	return nil
}

// RenameNX is Rename but only if dst doesn't already exist. Returns
// (false, nil) when dst exists, matching Redis's 0-reply (not an error).
func (s *Store) RenameNX(src, dst string) (bool, error) {
	if s.Exists(dst) {
		return false, nil
	}
	if err := s.Rename(src, dst); err != nil {
		return false, err
	}
	return true, nil
}

// RandomKey returns a uniformly-chosen live key, or "" if the store is
// empty. Expired keys encountered during the scan are reaped like any
// other lazy-expiry access.
func (s *Store) RandomKey() string {
	live := s.Keys()
	if len(live) == 0 {
		return ""
	}
	return live[rand.Intn(len(live))]
}

// Touch bumps the LRU access clock on each key that exists, returning the
// count of keys that were actually present.
func (s *Store) Touch(keys []string) int {
	count := 0
	for _, key := range keys {
		if val, ok := s.data[key]; ok {
			if val.ExpiresAt != nil && time.Now().After(*val.ExpiresAt) {
				s.deleteKey(key)
				continue
			}
			s.touch(key, val)
			count++
		}
	}
	return count
}

// Copy duplicates src's value and TTL to dst; with replace, an existing dst
// is overwritten. Returns false without error if dst exists and replace is
// false.
func (s *Store) Copy(src, dst string, replace bool) (bool, error) {
	val, exists := s.data[src]
	if !exists || (val.ExpiresAt != nil && time.Now().After(*val.ExpiresAt)) {
		return false, fmt.Errorf("ERR no such key")
	}
	if !replace && s.Exists(dst) {
		return false, nil
	}
	cp := *val
	s.data[dst] = &cp
	if cp.ExpiresAt != nil {
		s.dataWithExpiry[dst] = *cp.ExpiresAt
	} else {
		delete(s.dataWithExpiry, dst)
	}
	s.markDirty("copy_to", dst, 'g')
	return true, nil
}
