package storage

import "math/rand"

// Set is an unordered collection of unique members backing the SET type.
type Set struct {
	members map[string]struct{}
}

// NewSet creates a new empty set.
func NewSet() *Set {
	return &Set{members: make(map[string]struct{})}
}

// Clone deep-copies the set for copy-on-write snapshotting.
func (s *Set) Clone() *Set {
	if s == nil || len(s.members) == 0 {
		return NewSet()
	}
	out := &Set{members: make(map[string]struct{}, len(s.members))}
	for member := range s.members {
		out.members[member] = struct{}{}
	}
	return out
}

// Add inserts member, reporting whether it was new.
func (s *Set) Add(member string) bool {
	if _, exists := s.members[member]; exists {
		return false
	}
	s.members[member] = struct{}{}
	return true
}

// Remove deletes member, reporting whether it existed.
func (s *Set) Remove(member string) bool {
	if _, exists := s.members[member]; !exists {
		return false
	}
	delete(s.members, member)
	return true
}

// IsMember reports whether member is in the set.
func (s *Set) IsMember(member string) bool {
	_, exists := s.members[member]
	return exists
}

// Len reports the member count.
func (s *Set) Len() int {
	return len(s.members)
}

// GetMembers returns every member, in arbitrary order.
func (s *Set) GetMembers() []string {
	out := make([]string, 0, len(s.members))
	for member := range s.members {
		out = append(out, member)
	}
	return out
}

// Pop removes and returns one pseudo-random member.
func (s *Set) Pop() (string, bool) {
	for member := range s.members {
		delete(s.members, member)
		return member, true
	}
	return "", false
}

// RandomMember returns one member without removing it.
func (s *Set) RandomMember() (string, bool) {
	for member := range s.members {
		return member, true
	}
	return "", false
}

// RandomMembers returns count members without removing them. A negative
// count allows repeats (SRANDMEMBER semantics); a positive one never
// repeats and is capped at the set's cardinality.
func (s *Set) RandomMembers(count int) []string {
	n := len(s.members)
	if n == 0 || count == 0 {
		return []string{}
	}

	all := s.GetMembers()
	if count < 0 {
		out := make([]string, -count)
		for i := range out {
			out[i] = all[rand.Intn(n)]
		}
		return out
	}

	if count > n {
		count = n
	}
	rand.Shuffle(n, func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:count]
}

// Union returns a new set holding every member of s and other.
func (s *Set) Union(other *Set) *Set {
	result := NewSet()
	for member := range s.members {
		result.Add(member)
	}
	if other != nil {
		for member := range other.members {
			result.Add(member)
		}
	}
	return result
}

// Intersect returns a new set holding members common to both s and other.
func (s *Set) Intersect(other *Set) *Set {
	result := NewSet()
	if other == nil {
		return result
	}

	smaller, larger := s, other
	if len(s.members) > len(other.members) {
		smaller, larger = other, s
	}
	for member := range smaller.members {
		if larger.IsMember(member) {
			result.Add(member)
		}
	}
	return result
}

// IntersectCard reports the size of the intersection without materializing
// it, backing SINTERCARD. limit <= 0 means unbounded.
func (s *Set) IntersectCard(other *Set, limit int) int {
	if other == nil {
		return 0
	}
	smaller, larger := s, other
	if len(s.members) > len(other.members) {
		smaller, larger = other, s
	}
	count := 0
	for member := range smaller.members {
		if larger.IsMember(member) {
			count++
			if limit > 0 && count >= limit {
				return count
			}
		}
	}
	return count
}

// Diff returns a new set holding members of s absent from other.
func (s *Set) Diff(other *Set) *Set {
	result := NewSet()
	for member := range s.members {
		if other == nil || !other.IsMember(member) {
			result.Add(member)
		}
	}
	return result
}
