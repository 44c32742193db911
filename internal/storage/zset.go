package storage

import "math/rand"

// ZSetMember is one (member, score) pair as returned from range/rank queries.
type ZSetMember struct {
	Member string
	Score  float64
}

// ZSet is a sorted set: a hash map for O(1) score lookup paired with a
// score-ordered level index for range and rank queries.
type ZSet struct {
	scores map[string]float64
	byRank *zsetLevels
}

// NewZSet creates an empty sorted set.
func NewZSet() *ZSet {
	return &ZSet{
		scores: make(map[string]float64),
		byRank: newZsetLevels(),
	}
}

// Add sets member's score, reporting whether member is new.
func (z *ZSet) Add(member string, score float64) bool {
	old, exists := z.scores[member]
	if exists {
		if old == score {
			return false
		}
		z.byRank.remove(member, old)
	}
	z.scores[member] = score
	inserted := z.byRank.insert(member, score)
	return !exists || inserted
}

// Remove deletes member, reporting whether it was present.
func (z *ZSet) Remove(member string) bool {
	score, exists := z.scores[member]
	if !exists {
		return false
	}
	delete(z.scores, member)
	z.byRank.remove(member, score)
	return true
}

// Score reports member's score, or nil if absent.
func (z *ZSet) Score(member string) *float64 {
	if score, exists := z.scores[member]; exists {
		return &score
	}
	return nil
}

// Rank reports member's 0-based ascending rank, or -1 if absent.
func (z *ZSet) Rank(member string) int {
	score, exists := z.scores[member]
	if !exists {
		return -1
	}
	return z.byRank.rankOf(member, score)
}

// RevRank reports member's 0-based descending rank, or -1 if absent.
func (z *ZSet) RevRank(member string) int {
	rank := z.Rank(member)
	if rank == -1 {
		return -1
	}
	return z.Len() - rank - 1
}

// Len reports the member count.
func (z *ZSet) Len() int {
	return len(z.scores)
}

// Range returns members scored in [min, max], ascending.
func (z *ZSet) Range(min, max float64, offset, count int) []ZSetMember {
	return z.byRank.byScore(min, max, offset, count, false)
}

// RevRange returns members scored in [min, max], descending.
func (z *ZSet) RevRange(min, max float64, offset, count int) []ZSetMember {
	return z.byRank.byScore(min, max, offset, count, true)
}

// RangeByRank returns the inclusive rank window [start, stop], ascending.
func (z *ZSet) RangeByRank(start, stop int) []ZSetMember {
	return z.byRank.byRank(start, stop, false)
}

// RevRangeByRank returns the inclusive rank window [start, stop], descending.
func (z *ZSet) RevRangeByRank(start, stop int) []ZSetMember {
	return z.byRank.byRank(start, stop, true)
}

// IncrBy adds delta to member's score (creating it at delta if absent) and
// returns the resulting score.
func (z *ZSet) IncrBy(member string, delta float64) float64 {
	old, exists := z.scores[member]
	updated := old + delta
	if exists {
		z.byRank.remove(member, old)
	}
	z.scores[member] = updated
	z.byRank.insert(member, updated)
	return updated
}

// Count reports how many members score in [min, max].
func (z *ZSet) Count(min, max float64) int {
	return len(z.byRank.byScore(min, max, 0, -1, false))
}

// PopMin removes and returns the lowest-scored member, or nil if empty.
func (z *ZSet) PopMin() *ZSetMember {
	if z.Len() == 0 {
		return nil
	}
	first := z.byRank.head.forward[0]
	if first == nil {
		return nil
	}
	out := &ZSetMember{Member: first.member, Score: first.score}
	z.Remove(first.member)
	return out
}

// PopMax removes and returns the highest-scored member, or nil if empty.
func (z *ZSet) PopMax() *ZSetMember {
	if z.Len() == 0 {
		return nil
	}
	last := z.byRank.tail
	if last == nil {
		return nil
	}
	out := &ZSetMember{Member: last.member, Score: last.score}
	z.Remove(last.member)
	return out
}

// RemoveRangeByScore deletes every member scored in [min, max] and reports
// how many were removed.
func (z *ZSet) RemoveRangeByScore(min, max float64) int {
	victims := z.byRank.byScore(min, max, 0, -1, false)
	removed := 0
	for _, m := range victims {
		if z.Remove(m.Member) {
			removed++
		}
	}
	return removed
}

// RemoveRangeByRank deletes every member in the inclusive rank window
// [start, stop] and reports how many were removed.
func (z *ZSet) RemoveRangeByRank(start, stop int) int {
	victims := z.byRank.byRank(start, stop, false)
	removed := 0
	for _, m := range victims {
		if z.Remove(m.Member) {
			removed++
		}
	}
	return removed
}

// Clone deep-copies the sorted set for copy-on-write snapshotting.
func (z *ZSet) Clone() *ZSet {
	out := NewZSet()
	for member, score := range z.scores {
		out.scores[member] = score
	}
	out.byRank = z.byRank.clone()
	return out
}

// GetAll returns every member in ascending score order.
func (z *ZSet) GetAll() []ZSetMember {
	if z.Len() == 0 {
		return nil
	}
	return z.byRank.byRank(0, z.Len()-1, false)
}

// RandMembers samples count distinct members uniformly at random (backs
// ZRANDMEMBER with a positive count). When count >= Len, it returns every
// member in an arbitrary (rank-index) order rather than erroring.
func (z *ZSet) RandMembers(count int) []ZSetMember {
	n := z.Len()
	if n == 0 || count <= 0 {
		return nil
	}
	if count > n {
		count = n
	}
	picked := make(map[int]bool, count)
	out := make([]ZSetMember, 0, count)
	for len(out) < count {
		r := rand.Intn(n)
		if picked[r] {
			continue
		}
		picked[r] = true
		if node := z.byRank.nodeAtRank(r); node != nil {
			out = append(out, ZSetMember{Member: node.member, Score: node.score})
		}
	}
	return out
}

// RandMembersWithRepeats samples count members uniformly at random,
// allowing repeats (backs ZRANDMEMBER with a negative count, which Redis
// defines as "count may repeat").
func (z *ZSet) RandMembersWithRepeats(count int) []ZSetMember {
	n := z.Len()
	if n == 0 || count <= 0 {
		return nil
	}
	out := make([]ZSetMember, 0, count)
	for i := 0; i < count; i++ {
		if node := z.byRank.nodeAtRank(rand.Intn(n)); node != nil {
			out = append(out, ZSetMember{Member: node.member, Score: node.score})
		}
	}
	return out
}
