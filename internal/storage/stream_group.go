package storage

import (
	"fmt"
	"sort"
	"time"
)

// CreateGroup registers a new consumer group starting after startID.
// startID "$" means "only entries added after this point".
func (s *Stream) CreateGroup(name string, startID StreamID) error {
	if _, exists := s.Groups[name]; exists {
		return fmt.Errorf("BUSYGROUP Consumer Group name already exists")
	}
	s.Groups[name] = newConsumerGroup(name, startID)
	return nil
}

// DeleteGroup removes a consumer group. Returns false if it didn't exist.
func (s *Stream) DeleteGroup(name string) bool {
	if _, exists := s.Groups[name]; !exists {
		return false
	}
	delete(s.Groups, name)
	return true
}

// SetGroupID repositions a group's delivery cursor (XGROUP SETID).
func (s *Stream) SetGroupID(name string, id StreamID) error {
	g, ok := s.Groups[name]
	if !ok {
		return fmt.Errorf("NOGROUP No such consumer group '%s'", name)
	}
	g.LastID = id
	return nil
}

// GroupNames returns every registered group's name.
func (s *Stream) GroupNames() []string {
	names := make([]string, 0, len(s.Groups))
	for name := range s.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadGroup implements XREADGROUP's delivery semantics: consumerID ">"
// delivers new entries (ID > group.LastID) and advances the cursor,
// recording each delivered ID in the PEL owned by consumer; any other ID
// re-reads that consumer's existing PEL entries with ID >= the given one,
// without touching the group cursor.
func (s *Stream) ReadGroup(groupName, consumerName, startID string, count int, nowMs int64) ([]StreamEntry, error) {
	g, ok := s.Groups[groupName]
	if !ok {
		return nil, fmt.Errorf("NOGROUP No such consumer group '%s' for key", groupName)
	}
	consumer := g.getOrCreateConsumer(consumerName, nowMs)
	consumer.SeenTime = nowMs

	if startID == ">" {
		entries := s.After(g.LastID, count)
		for _, e := range entries {
			g.LastID = e.ID
			g.PEL[e.ID] = &PendingEntry{Consumer: consumerName, DeliveryTime: nowMs, DeliveryCount: 1}
			consumer.Pending[e.ID] = struct{}{}
		}
		return entries, nil
	}

	from, err := ParseStreamID(startID, 0)
	if err != nil {
		return nil, err
	}
	var out []StreamEntry
	ids := make([]StreamID, 0, len(consumer.Pending))
	for id := range consumer.Pending {
		if from.LessOrEqual(id) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	for _, id := range ids {
		if entry, ok := s.EntryByID(id); ok {
			out = append(out, entry)
		}
		if count >= 0 && len(out) >= count {
			break
		}
	}
	return out, nil
}

// Ack removes IDs from a group's PEL (XACK). Returns the count acked.
func (s *Stream) Ack(groupName string, ids []StreamID) int {
	g, ok := s.Groups[groupName]
	if !ok {
		return 0
	}
	acked := 0
	for _, id := range ids {
		pe, exists := g.PEL[id]
		if !exists {
			continue
		}
		if c, ok := g.Consumers[pe.Consumer]; ok {
			delete(c.Pending, id)
		}
		delete(g.PEL, id)
		acked++
	}
	return acked
}

// PendingSummary is XPENDING's no-range form: total count, min/max ID, and
// per-consumer counts.
type PendingSummary struct {
	Count         int
	MinID, MaxID  StreamID
	PerConsumer   map[string]int
}

// PendingSummary reports the group's PEL at a glance.
func (s *Stream) PendingSummary(groupName string) (PendingSummary, error) {
	g, ok := s.Groups[groupName]
	if !ok {
		return PendingSummary{}, fmt.Errorf("NOGROUP No such consumer group '%s' for key", groupName)
	}
	summary := PendingSummary{PerConsumer: make(map[string]int)}
	first := true
	for id, pe := range g.PEL {
		summary.Count++
		summary.PerConsumer[pe.Consumer]++
		if first || id.Less(summary.MinID) {
			summary.MinID = id
		}
		if first || summary.MaxID.Less(id) {
			summary.MaxID = id
		}
		first = false
	}
	return summary, nil
}

// PendingEntryView is one row of XPENDING's extended (ranged) form.
type PendingEntryView struct {
	ID            StreamID
	Consumer      string
	IdleMs        int64
	DeliveryCount int64
}

// PendingRange lists PEL entries in [start, end], optionally filtered to
// one consumer, capped at count.
func (s *Stream) PendingRange(groupName string, start, end StreamID, count int, consumerFilter string, nowMs int64) ([]PendingEntryView, error) {
	g, ok := s.Groups[groupName]
	if !ok {
		return nil, fmt.Errorf("NOGROUP No such consumer group '%s' for key", groupName)
	}
	ids := make([]StreamID, 0, len(g.PEL))
	for id := range g.PEL {
		if start.LessOrEqual(id) && id.LessOrEqual(end) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	var out []PendingEntryView
	for _, id := range ids {
		pe := g.PEL[id]
		if consumerFilter != "" && pe.Consumer != consumerFilter {
			continue
		}
		out = append(out, PendingEntryView{
			ID:            id,
			Consumer:      pe.Consumer,
			IdleMs:        nowMs - pe.DeliveryTime,
			DeliveryCount: pe.DeliveryCount,
		})
		if len(out) >= count {
			break
		}
	}
	return out, nil
}

// Claim reassigns ownership of PEL entries to a new consumer if their idle
// time is >= minIdleMs (XCLAIM). Returns the claimed entries. force creates
// a fresh PEL entry for an ID that is absent from the PEL but still present
// in the stream log, rather than skipping it (XCLAIM's FORCE option).
func (s *Stream) Claim(groupName, newConsumer string, ids []StreamID, minIdleMs int64, nowMs int64, justID, force bool) ([]StreamEntry, error) {
	g, ok := s.Groups[groupName]
	if !ok {
		return nil, fmt.Errorf("NOGROUP No such consumer group '%s' for key", groupName)
	}
	newOwner := g.getOrCreateConsumer(newConsumer, nowMs)

	var claimed []StreamEntry
	for _, id := range ids {
		pe, exists := g.PEL[id]
		forced := false
		if !exists {
			if !force {
				continue
			}
			if _, inLog := s.EntryByID(id); !inLog {
				continue
			}
			pe = &PendingEntry{DeliveryTime: nowMs}
			g.PEL[id] = pe
			forced = true
		}
		if !forced && nowMs-pe.DeliveryTime < minIdleMs {
			continue
		}
		if oldOwner, ok := g.Consumers[pe.Consumer]; ok {
			delete(oldOwner.Pending, id)
		}
		pe.Consumer = newConsumer
		pe.DeliveryTime = nowMs
		if !justID {
			pe.DeliveryCount++
		}
		newOwner.Pending[id] = struct{}{}

		if entry, ok := s.EntryByID(id); ok {
			claimed = append(claimed, entry)
		} else {
			// Entry trimmed/deleted from the log but still pending: drop it
			// from the PEL, matching XCLAIM's own auto-cleanup behavior.
			delete(g.PEL, id)
			delete(newOwner.Pending, id)
		}
	}
	return claimed, nil
}

// AutoClaim scans the PEL in ID order starting at cursor, claiming entries
// idle >= minIdleMs, up to count entries (XAUTOCLAIM). Returns the claimed
// entries, the deleted-from-log IDs encountered along the way, and the next
// cursor (MaxStreamID when the scan reaches the end).
func (s *Stream) AutoClaim(groupName, newConsumer string, cursor StreamID, minIdleMs int64, count int, nowMs int64) ([]StreamEntry, []StreamID, StreamID, error) {
	g, ok := s.Groups[groupName]
	if !ok {
		return nil, nil, StreamID{}, fmt.Errorf("NOGROUP No such consumer group '%s' for key", groupName)
	}
	ids := make([]StreamID, 0, len(g.PEL))
	for id := range g.PEL {
		if cursor.LessOrEqual(id) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	newOwner := g.getOrCreateConsumer(newConsumer, nowMs)
	var claimed []StreamEntry
	var deleted []StreamID
	next := MaxStreamID
	scanned := 0
	for _, id := range ids {
		if scanned >= count {
			next = id
			break
		}
		pe := g.PEL[id]
		if nowMs-pe.DeliveryTime < minIdleMs {
			continue
		}
		scanned++
		if oldOwner, ok := g.Consumers[pe.Consumer]; ok {
			delete(oldOwner.Pending, id)
		}
		entry, exists := s.EntryByID(id)
		if !exists {
			delete(g.PEL, id)
			deleted = append(deleted, id)
			continue
		}
		pe.Consumer = newConsumer
		pe.DeliveryTime = nowMs
		pe.DeliveryCount++
		newOwner.Pending[id] = struct{}{}
		claimed = append(claimed, entry)
	}
	return claimed, deleted, next, nil
}

// ConsumerInfo is one row of XINFO CONSUMERS.
type ConsumerInfo struct {
	Name    string
	Pending int
	IdleMs  int64
}

// ConsumerInfos lists a group's consumers.
func (s *Stream) ConsumerInfos(groupName string, nowMs int64) ([]ConsumerInfo, error) {
	g, ok := s.Groups[groupName]
	if !ok {
		return nil, fmt.Errorf("NOGROUP No such consumer group '%s' for key", groupName)
	}
	names := make([]string, 0, len(g.Consumers))
	for name := range g.Consumers {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]ConsumerInfo, 0, len(names))
	for _, name := range names {
		c := g.Consumers[name]
		out = append(out, ConsumerInfo{Name: name, Pending: len(c.Pending), IdleMs: nowMs - c.SeenTime})
	}
	return out, nil
}

// GroupInfo is one row of XINFO GROUPS.
type GroupInfo struct {
	Name            string
	Consumers       int
	Pending         int
	LastDeliveredID StreamID
}

// GroupInfos lists every registered group's summary fields.
func (s *Stream) GroupInfos() []GroupInfo {
	names := s.GroupNames()
	out := make([]GroupInfo, 0, len(names))
	for _, name := range names {
		g := s.Groups[name]
		out = append(out, GroupInfo{
			Name:            g.Name,
			Consumers:       len(g.Consumers),
			Pending:         len(g.PEL),
			LastDeliveredID: g.LastID,
		})
	}
	return out
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
