package storage

import "time"

// getOrCreateStream returns the stream at key, creating an empty one if
// absent, mirroring getOrCreateZSet's shape. ok is false on a type clash.
func (s *Store) getOrCreateStream(key string) (*Stream, bool) {
	val, exists := s.data[key]
	if !exists {
		return NewStream(), true
	}
	if val.ExpiresAt != nil && time.Now().After(*val.ExpiresAt) {
		s.deleteKey(key)
		return NewStream(), true
	}
	if val.Type != StreamType {
		return nil, false
	}
	if stream, ok := val.Data.(*Stream); ok {
		return stream, true
	}
	return NewStream(), true
}

// getExistingStream returns the stream at key, or nil if absent.
func (s *Store) getExistingStream(key string) (*Stream, error) {
	val, exists := s.data[key]
	if !exists {
		return nil, nil
	}
	if val.ExpiresAt != nil && time.Now().After(*val.ExpiresAt) {
		s.deleteKey(key)
		return nil, nil
	}
	if val.Type != StreamType {
		return nil, ErrWrongType
	}
	if stream, ok := val.Data.(*Stream); ok {
		return stream, nil
	}
	return nil, nil
}

func (s *Store) saveStream(key string, stream *Stream) {
	s.data[key] = &Value{
		Data:      stream,
		ExpiresAt: s.existingExpiry(key),
		Type:      StreamType,
	}
}

// XAddOptions is the parsed trim/NOMKSTREAM portion of an XADD call.
type XAddOptions struct {
	NoMkStream bool
	TrimMaxLen int      // -1 means no MAXLEN trim requested
	TrimMinID  StreamID // zero value means no MINID trim requested
	HasMinID   bool
}

// XAdd appends one entry to the stream at key, returning the assigned ID.
// ok is false if key holds a non-stream value; created is false (with a nil
// ID) if NOMKSTREAM was set and the stream doesn't exist.
func (s *Store) XAdd(key, requestedID string, fields []string, opts XAddOptions) (id StreamID, ok bool, created bool, err error) {
	existing, getErr := s.getExistingStream(key)
	if getErr != nil {
		return StreamID{}, false, false, getErr
	}
	if existing == nil && opts.NoMkStream {
		return StreamID{}, true, false, nil
	}

	stream := existing
	if stream == nil {
		stream = NewStream()
	}

	newID, err := stream.NextID(requestedID, uint64(time.Now().UnixMilli()))
	if err != nil {
		return StreamID{}, true, true, err
	}
	stream.Add(newID, fields)

	if opts.TrimMaxLen >= 0 {
		stream.TrimMaxLen(opts.TrimMaxLen)
	}
	if opts.HasMinID {
		stream.TrimMinID(opts.TrimMinID)
	}

	s.saveStream(key, stream)
	s.markDirty("xadd", key, 't')
	return newID, true, true, nil
}

// XLen returns the number of entries retained in the stream at key.
func (s *Store) XLen(key string) (int, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return 0, err
	}
	if stream == nil {
		return 0, nil
	}
	return stream.Len(), nil
}

// XRange returns entries in [start, end], oldest first, capped at count
// (count < 0 means unbounded).
func (s *Store) XRange(key string, start, end StreamID, count int) ([]StreamEntry, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, nil
	}
	return stream.Range(start, end, count), nil
}

// XRevRange returns entries in [start, end], newest first, capped at count.
func (s *Store) XRevRange(key string, start, end StreamID, count int) ([]StreamEntry, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, nil
	}
	return stream.RevRange(start, end, count), nil
}

// XTrim applies a trim strategy to the stream at key, returning the number
// of entries removed.
func (s *Store) XTrim(key string, opts XAddOptions) (int, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return 0, err
	}
	if stream == nil {
		return 0, nil
	}
	removed := 0
	if opts.TrimMaxLen >= 0 {
		removed += stream.TrimMaxLen(opts.TrimMaxLen)
	}
	if opts.HasMinID {
		removed += stream.TrimMinID(opts.TrimMinID)
	}
	if removed > 0 {
		s.saveStream(key, stream)
		s.markDirty("xtrim", key, 't')
	}
	return removed, nil
}

// XDel removes specific entry IDs from the stream at key (they remain
// "seen" for MaxDeletedID bookkeeping but are no longer retrievable).
func (s *Store) XDel(key string, ids []StreamID) (int, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return 0, err
	}
	if stream == nil {
		return 0, nil
	}
	removed := stream.Delete(ids)
	if removed > 0 {
		s.saveStream(key, stream)
		s.markDirty("xdel", key, 't')
	}
	return removed, nil
}

// XRead returns entries strictly after afterID for each requested key,
// skipping keys with no new data. The returned map only contains keys that
// had at least one matching entry.
func (s *Store) XRead(keys []string, afterIDs []StreamID, count int) (map[string][]StreamEntry, error) {
	out := make(map[string][]StreamEntry)
	for i, key := range keys {
		stream, err := s.getExistingStream(key)
		if err != nil {
			return nil, err
		}
		if stream == nil {
			continue
		}
		entries := stream.After(afterIDs[i], count)
		if len(entries) > 0 {
			out[key] = entries
		}
	}
	return out, nil
}

// XLastID returns the current stream tail ID (MinStreamID if key is absent),
// which XREAD uses to resolve "$" per key.
func (s *Store) XLastID(key string) (StreamID, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return StreamID{}, err
	}
	if stream == nil {
		return MinStreamID, nil
	}
	return stream.LastID, nil
}

// withStream runs fn against the existing stream at key, returning
// ErrNoSuchStream when key is absent, and persists+notifies on success.
func (s *Store) withStream(key, event string, fn func(*Stream) error) error {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return err
	}
	if stream == nil {
		return ErrNoSuchStream
	}
	if err := fn(stream); err != nil {
		return err
	}
	s.saveStream(key, stream)
	s.markDirty(event, key, 't')
	return nil
}

// XGroupCreate registers a new consumer group on the stream at key.
// mkStream creates an empty stream first if key doesn't exist yet.
func (s *Store) XGroupCreate(key, group, startID string, mkStream bool) error {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return err
	}
	if stream == nil {
		if !mkStream {
			return ErrNoSuchStream
		}
		stream = NewStream()
	}

	var id StreamID
	if startID == "$" {
		id = stream.LastID
	} else {
		id, err = ParseStreamID(startID, 0)
		if err != nil {
			return err
		}
	}
	if err := stream.CreateGroup(group, id); err != nil {
		return err
	}
	s.saveStream(key, stream)
	s.markDirty("xgroup-create", key, 't')
	return nil
}

// XGroupDestroy removes a consumer group, returning whether it existed.
func (s *Store) XGroupDestroy(key, group string) (bool, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return false, err
	}
	if stream == nil {
		return false, ErrNoSuchStream
	}
	removed := stream.DeleteGroup(group)
	if removed {
		s.saveStream(key, stream)
		s.markDirty("xgroup-destroy", key, 't')
	}
	return removed, nil
}

// XGroupSetID repositions a group's delivery cursor.
func (s *Store) XGroupSetID(key, group, id string) error {
	return s.withStream(key, "xgroup-setid", func(stream *Stream) error {
		var streamID StreamID
		var err error
		if id == "$" {
			streamID = stream.LastID
		} else {
			streamID, err = ParseStreamID(id, 0)
			if err != nil {
				return err
			}
		}
		return stream.SetGroupID(group, streamID)
	})
}

// XReadGroup delivers entries to consumer under group's PEL bookkeeping.
func (s *Store) XReadGroup(key, group, consumer, startID string, count int) ([]StreamEntry, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, ErrNoSuchStream
	}
	entries, err := stream.ReadGroup(group, consumer, startID, count, nowMillis())
	if err != nil {
		return nil, err
	}
	s.saveStream(key, stream)
	if len(entries) > 0 {
		s.markDirty("xreadgroup", key, 't')
	}
	return entries, nil
}

// XAck acknowledges IDs in a group's PEL.
func (s *Store) XAck(key, group string, ids []StreamID) (int, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return 0, err
	}
	if stream == nil {
		return 0, nil
	}
	acked := stream.Ack(group, ids)
	if acked > 0 {
		s.saveStream(key, stream)
		s.markDirty("xack", key, 't')
	}
	return acked, nil
}

// XPendingSummary reports a group's PEL overview.
func (s *Store) XPendingSummary(key, group string) (PendingSummary, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return PendingSummary{}, err
	}
	if stream == nil {
		return PendingSummary{}, ErrNoSuchStream
	}
	return stream.PendingSummary(group)
}

// XPendingRange reports a group's PEL rows in [start, end].
func (s *Store) XPendingRange(key, group string, start, end StreamID, count int, consumerFilter string) ([]PendingEntryView, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, ErrNoSuchStream
	}
	return stream.PendingRange(group, start, end, count, consumerFilter, nowMillis())
}

// XClaim reassigns ownership of pending IDs to a new consumer.
func (s *Store) XClaim(key, group, newConsumer string, ids []StreamID, minIdleMs int64, justID, force bool) ([]StreamEntry, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, ErrNoSuchStream
	}
	claimed, err := stream.Claim(group, newConsumer, ids, minIdleMs, nowMillis(), justID, force)
	if err != nil {
		return nil, err
	}
	s.saveStream(key, stream)
	if len(claimed) > 0 {
		s.markDirty("xclaim", key, 't')
	}
	return claimed, nil
}

// XAutoClaim scans a group's PEL for reassignable entries.
func (s *Store) XAutoClaim(key, group, newConsumer string, cursor StreamID, minIdleMs int64, count int) ([]StreamEntry, []StreamID, StreamID, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return nil, nil, StreamID{}, err
	}
	if stream == nil {
		return nil, nil, StreamID{}, ErrNoSuchStream
	}
	claimed, deleted, next, err := stream.AutoClaim(group, newConsumer, cursor, minIdleMs, count, nowMillis())
	if err != nil {
		return nil, nil, StreamID{}, err
	}
	s.saveStream(key, stream)
	if len(claimed) > 0 || len(deleted) > 0 {
		s.markDirty("xautoclaim", key, 't')
	}
	return claimed, deleted, next, nil
}

// XGroupNames lists the registered group names on the stream at key.
func (s *Store) XGroupNames(key string) ([]string, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, ErrNoSuchStream
	}
	return stream.GroupNames(), nil
}

// XGroupInfos lists every registered group's summary fields on the stream
// at key, for XINFO GROUPS.
func (s *Store) XGroupInfos(key string) ([]GroupInfo, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, ErrNoSuchStream
	}
	return stream.GroupInfos(), nil
}

// XConsumerInfos lists a group's consumers on the stream at key.
func (s *Store) XConsumerInfos(key, group string) ([]ConsumerInfo, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, ErrNoSuchStream
	}
	return stream.ConsumerInfos(group, nowMillis())
}

// XStreamInfo reports the summary fields for XINFO STREAM.
type XStreamInfo struct {
	Length          int
	LastID          StreamID
	MaxDeletedID    StreamID
	EntriesAdded    uint64
	FirstEntry      *StreamEntry
	LastEntry       *StreamEntry
	GroupCount      int
}

// XInfo reports the summary fields for XINFO STREAM on the stream at key.
func (s *Store) XInfo(key string) (XStreamInfo, error) {
	stream, err := s.getExistingStream(key)
	if err != nil {
		return XStreamInfo{}, err
	}
	if stream == nil {
		return XStreamInfo{}, ErrNoSuchStream
	}
	info := XStreamInfo{
		Length:       stream.Len(),
		LastID:       stream.LastID,
		MaxDeletedID: stream.MaxDeletedID,
		EntriesAdded: stream.EntriesAdded,
		GroupCount:   len(stream.Groups),
	}
	if n := stream.Len(); n > 0 {
		first := stream.Entries[0]
		last := stream.Entries[n-1]
		info.FirstEntry = &first
		info.LastEntry = &last
	}
	return info, nil
}
