package storage

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// StreamID is a stream entry identifier: a 128-bit value split as
// (ms: 64, seq: 64). IDs are compared first by Ms, then by
// Seq, and are strictly increasing in insertion order within a stream.
type StreamID struct {
	Ms  uint64
	Seq uint64
}

// Less reports whether id sorts strictly before other.
func (id StreamID) Less(other StreamID) bool {
	if id.Ms != other.Ms {
		return id.Ms < other.Ms
	}
	return id.Seq < other.Seq
}

// LessOrEqual reports whether id sorts at or before other.
func (id StreamID) LessOrEqual(other StreamID) bool {
	return id == other || id.Less(other)
}

func (id StreamID) String() string {
	return fmt.Sprintf("%d-%d", id.Ms, id.Seq)
}

// MinStreamID and MaxStreamID bound the ID space; used as open interval
// endpoints for XRANGE "-"/"+" and XPENDING summaries.
var (
	MinStreamID = StreamID{Ms: 0, Seq: 0}
	MaxStreamID = StreamID{Ms: ^uint64(0), Seq: ^uint64(0)}
)

// ParseStreamID parses a "ms-seq", "ms", "-" or "+" ID literal.
// defaultSeq is used when the seq half is omitted (0 for range starts that
// should be inclusive-from-zero, MaxUint64 for range ends).
func ParseStreamID(s string, defaultSeq uint64) (StreamID, error) {
	switch s {
	case "-":
		return MinStreamID, nil
	case "+":
		return MaxStreamID, nil
	}
	parts := strings.SplitN(s, "-", 2)
	ms, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return StreamID{}, fmt.Errorf("ERR Invalid stream ID specified as stream command argument")
	}
	if len(parts) == 1 {
		return StreamID{Ms: ms, Seq: defaultSeq}, nil
	}
	seq, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return StreamID{}, fmt.Errorf("ERR Invalid stream ID specified as stream command argument")
	}
	return StreamID{Ms: ms, Seq: seq}, nil
}

// StreamEntry is one logged record: an ID plus a flat field/value list
// (field0, value0, field1, value1, ...).
type StreamEntry struct {
	ID     StreamID
	Fields []string
}

// PendingEntry is one row of a consumer group's pending-entry list (PEL):
// an undelivered-acknowledgement record for a delivered ID.
type PendingEntry struct {
	Consumer      string
	DeliveryTime  int64 // unix millis
	DeliveryCount int64
}

// Consumer is one named reader registered against a group.
type Consumer struct {
	Name     string
	SeenTime int64 // unix millis of last XREADGROUP/XCLAIM activity
	Pending  map[StreamID]struct{}
}

// ConsumerGroup tracks one group's delivery cursor and pending-entries list.
type ConsumerGroup struct {
	Name      string
	LastID    StreamID
	Consumers map[string]*Consumer
	PEL       map[StreamID]*PendingEntry
}

func newConsumerGroup(name string, lastID StreamID) *ConsumerGroup {
	return &ConsumerGroup{
		Name:      name,
		LastID:    lastID,
		Consumers: make(map[string]*Consumer),
		PEL:       make(map[StreamID]*PendingEntry),
	}
}

func (g *ConsumerGroup) getOrCreateConsumer(name string, nowMs int64) *Consumer {
	c, ok := g.Consumers[name]
	if !ok {
		c = &Consumer{Name: name, SeenTime: nowMs, Pending: make(map[StreamID]struct{})}
		g.Consumers[name] = c
	}
	return c
}

// Stream is an append-only log of entries keyed by monotonic StreamID
// Entries are kept sorted by ID; trimming removes from the
// front (oldest first).
type Stream struct {
	Entries      []StreamEntry
	LastID       StreamID
	MaxDeletedID StreamID
	EntriesAdded uint64
	Groups       map[string]*ConsumerGroup
}

// NewStream creates an empty stream.
func NewStream() *Stream {
	return &Stream{Groups: make(map[string]*ConsumerGroup)}
}

// Len returns the number of entries currently retained.
func (s *Stream) Len() int {
	return len(s.Entries)
}

// NextID resolves the ID an XADD call should use: "*" auto-generates
// (nowMs, seq) where seq increments if nowMs didn't advance past LastID.Ms;
// an explicit ID must sort strictly after LastID.
func (s *Stream) NextID(requested string, nowMs uint64) (StreamID, error) {
	if requested == "*" {
		id := StreamID{Ms: nowMs, Seq: 0}
		if id.Ms <= s.LastID.Ms {
			id.Ms = s.LastID.Ms
			id.Seq = s.LastID.Seq + 1
		}
		return id, nil
	}

	// Partial auto-sequence form "ms-*"
	if strings.HasSuffix(requested, "-*") {
		msStr := strings.TrimSuffix(requested, "-*")
		ms, err := strconv.ParseUint(msStr, 10, 64)
		if err != nil {
			return StreamID{}, fmt.Errorf("ERR Invalid stream ID specified as stream command argument")
		}
		id := StreamID{Ms: ms, Seq: 0}
		if ms == s.LastID.Ms {
			id.Seq = s.LastID.Seq + 1
		} else if ms < s.LastID.Ms {
			return StreamID{}, fmt.Errorf("ERR The ID specified in XADD is equal or smaller than the target stream top item")
		}
		return id, nil
	}

	id, err := ParseStreamID(requested, 0)
	if err != nil {
		return StreamID{}, err
	}
	if !s.LastID.Less(id) && !(s.LastID == StreamID{} && s.EntriesAdded == 0) {
		return StreamID{}, fmt.Errorf("ERR The ID specified in XADD is equal or smaller than the target stream top item")
	}
	if id == (StreamID{}) {
		return StreamID{}, fmt.Errorf("ERR The ID specified in XADD must be greater than 0-0")
	}
	return id, nil
}

// Add appends an already-validated entry and advances LastID.
func (s *Stream) Add(id StreamID, fields []string) {
	s.Entries = append(s.Entries, StreamEntry{ID: id, Fields: fields})
	s.LastID = id
	s.EntriesAdded++
}

// TrimMaxLen drops the oldest entries until at most maxLen remain.
// Returns the number removed.
func (s *Stream) TrimMaxLen(maxLen int) int {
	if len(s.Entries) <= maxLen {
		return 0
	}
	removed := len(s.Entries) - maxLen
	s.recordDeleted(s.Entries[:removed])
	s.Entries = append([]StreamEntry(nil), s.Entries[removed:]...)
	return removed
}

// TrimMinID drops entries whose ID is strictly less than minID.
func (s *Stream) TrimMinID(minID StreamID) int {
	idx := sort.Search(len(s.Entries), func(i int) bool {
		return !s.Entries[i].ID.Less(minID)
	})
	if idx == 0 {
		return 0
	}
	s.recordDeleted(s.Entries[:idx])
	s.Entries = append([]StreamEntry(nil), s.Entries[idx:]...)
	return idx
}

func (s *Stream) recordDeleted(removed []StreamEntry) {
	if len(removed) == 0 {
		return
	}
	last := removed[len(removed)-1].ID
	if s.MaxDeletedID.Less(last) {
		s.MaxDeletedID = last
	}
}

// Delete removes specific IDs (XDEL). Returns the count actually removed.
func (s *Stream) Delete(ids []StreamID) int {
	want := make(map[StreamID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	removed := 0
	kept := s.Entries[:0:0]
	for _, e := range s.Entries {
		if _, del := want[e.ID]; del {
			removed++
			if s.MaxDeletedID.Less(e.ID) {
				s.MaxDeletedID = e.ID
			}
			continue
		}
		kept = append(kept, e)
	}
	s.Entries = kept
	return removed
}

// indexOf returns the position of the first entry with ID >= target.
func (s *Stream) indexOf(target StreamID) int {
	return sort.Search(len(s.Entries), func(i int) bool {
		return target.LessOrEqual(s.Entries[i].ID)
	})
}

// Range returns entries with start <= ID <= end, oldest first, capped at
// count (count < 0 means unbounded).
func (s *Stream) Range(start, end StreamID, count int) []StreamEntry {
	from := s.indexOf(start)
	var out []StreamEntry
	for i := from; i < len(s.Entries); i++ {
		e := s.Entries[i]
		if end.Less(e.ID) {
			break
		}
		out = append(out, e)
		if count >= 0 && len(out) >= count {
			break
		}
	}
	return out
}

// RevRange returns entries with start <= ID <= end, newest first.
func (s *Stream) RevRange(start, end StreamID, count int) []StreamEntry {
	all := s.Range(start, end, -1)
	out := make([]StreamEntry, len(all))
	for i, e := range all {
		out[len(all)-1-i] = e
	}
	if count >= 0 && len(out) > count {
		out = out[:count]
	}
	return out
}

// After returns entries strictly greater than after, oldest first, capped
// at count (count < 0 means unbounded). This backs XREAD/XREADGROUP's
// "new data" form.
func (s *Stream) After(after StreamID, count int) []StreamEntry {
	from := s.indexOf(StreamID{Ms: after.Ms, Seq: after.Seq + 1})
	if after.Seq == ^uint64(0) {
		from = s.indexOf(StreamID{Ms: after.Ms + 1, Seq: 0})
	}
	var out []StreamEntry
	for i := from; i < len(s.Entries); i++ {
		out = append(out, s.Entries[i])
		if count >= 0 && len(out) >= count {
			break
		}
	}
	return out
}

// EntryByID returns the entry with exactly this ID, if still present.
func (s *Stream) EntryByID(id StreamID) (StreamEntry, bool) {
	idx := s.indexOf(id)
	if idx < len(s.Entries) && s.Entries[idx].ID == id {
		return s.Entries[idx], true
	}
	return StreamEntry{}, false
}
