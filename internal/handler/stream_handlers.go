package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"storedb/internal/processor"
	"storedb/internal/protocol"
	"storedb/internal/storage"
)

// registerStreamCommands registers all stream log and consumer-group commands
func (h *CommandHandler) registerStreamCommands() {
	h.commands["XADD"] = h.handleXAdd
	h.commands["XLEN"] = h.handleXLen
	h.commands["XRANGE"] = h.handleXRange
	h.commands["XREVRANGE"] = h.handleXRevRange
	h.commands["XTRIM"] = h.handleXTrim
	h.commands["XDEL"] = h.handleXDel
	h.commands["XREAD"] = h.handleXRead
	h.commands["XGROUP"] = h.handleXGroup
	h.commands["XREADGROUP"] = h.handleXReadGroup
	h.commands["XACK"] = h.handleXAck
	h.commands["XPENDING"] = h.handleXPending
	h.commands["XCLAIM"] = h.handleXClaim
	h.commands["XAUTOCLAIM"] = h.handleXAutoClaim
	h.commands["XINFO"] = h.handleXInfo
}

const streamPollInterval = 20 * time.Millisecond

// parseTrimSpec parses the shared MAXLEN/MINID trim clause used by XADD and
// XTRIM: "[MAXLEN|MINID [~|=] threshold [LIMIT n]]". Returns the next
// unconsumed index. opts.TrimMaxLen starts at -1 (no trim requested).
func parseTrimSpec(args []string, i int) (storage.XAddOptions, int, error) {
	opts := storage.XAddOptions{TrimMaxLen: -1}
	if i >= len(args) {
		return opts, i, nil
	}
	kind := strings.ToUpper(args[i])
	if kind != "MAXLEN" && kind != "MINID" {
		return opts, i, nil
	}
	i++
	if i < len(args) && (args[i] == "~" || args[i] == "=") {
		// Approximate trimming ("~") is accepted and always trimmed exactly.
		i++
	}
	if i >= len(args) {
		return opts, i, fmt.Errorf("ERR syntax error")
	}
	if kind == "MAXLEN" {
		n, err := strconv.Atoi(args[i])
		if err != nil || n < 0 {
			return opts, i, fmt.Errorf("ERR value is not an integer or out of range")
		}
		opts.TrimMaxLen = n
	} else {
		id, err := storage.ParseStreamID(args[i], 0)
		if err != nil {
			return opts, i, err
		}
		opts.HasMinID = true
		opts.TrimMinID = id
	}
	i++
	if i < len(args) && strings.ToUpper(args[i]) == "LIMIT" {
		i += 2 // the LIMIT count is ignored since trimming is always exact
	}
	return opts, i, nil
}

func encodeStreamEntry(e storage.StreamEntry) []byte {
	return protocol.EncodeRawArray([][]byte{
		protocol.EncodeBulkString(e.ID.String()),
		protocol.EncodeArray(e.Fields),
	})
}

func encodeStreamEntries(entries []storage.StreamEntry) []byte {
	parts := make([][]byte, len(entries))
	for i, e := range entries {
		parts[i] = encodeStreamEntry(e)
	}
	return protocol.EncodeRawArray(parts)
}

// handleXAdd implements:
// XADD key [NOMKSTREAM] [MAXLEN|MINID [~|=] threshold [LIMIT n]] <id|*> field value [field value ...]
func (h *CommandHandler) handleXAdd(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 5 {
		return protocol.EncodeError("ERR wrong number of arguments for 'xadd' command")
	}
	key := cmd.Args[1]
	i := 2

	opts := storage.XAddOptions{TrimMaxLen: -1}
	if strings.ToUpper(cmd.Args[i]) == "NOMKSTREAM" {
		opts.NoMkStream = true
		i++
	}

	trimOpts, next, err := parseTrimSpec(cmd.Args, i)
	if err != nil {
		return protocol.EncodeError(err.Error())
	}
	opts.TrimMaxLen = trimOpts.TrimMaxLen
	opts.HasMinID = trimOpts.HasMinID
	opts.TrimMinID = trimOpts.TrimMinID
	i = next

	if i >= len(cmd.Args) {
		return protocol.EncodeError("ERR wrong number of arguments for 'xadd' command")
	}
	requestedID := cmd.Args[i]
	i++

	fields := cmd.Args[i:]
	if len(fields) == 0 || len(fields)%2 != 0 {
		return protocol.EncodeError("ERR wrong number of arguments for 'xadd' command")
	}

	procCmd := &processor.Command{
		Type:     processor.CmdXAdd,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{requestedID, fields, opts},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := (<-procCmd.Response).(processor.XAddResult)
	if result.Err != nil {
		return protocol.EncodeError(result.Err.Error())
	}
	if !result.Exists {
		return protocol.EncodeNullBulkString()
	}
	return protocol.EncodeBulkString(result.ID.String())
}

// handleXLen implements XLEN key
func (h *CommandHandler) handleXLen(cmd *protocol.Command) []byte {
	if len(cmd.Args) != 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'xlen' command")
	}
	procCmd := &processor.Command{
		Type:     processor.CmdXLen,
		DBIndex:  cmd.DBIndex,
		Key:      cmd.Args[1],
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := (<-procCmd.Response).(processor.IntResult)
	if result.Err != nil {
		return protocol.EncodeError(result.Err.Error())
	}
	return protocol.EncodeInteger(result.Result)
}

// parseRangeBound parses an XRANGE/XREVRANGE boundary, including the
// "(id" exclusive-bound form (approximated here by nudging the ID by one
// sequence unit since the underlying log is sorted and gapless in practice).
func parseRangeBound(s string, defaultSeq uint64) (storage.StreamID, error) {
	exclusive := strings.HasPrefix(s, "(")
	if exclusive {
		s = s[1:]
	}
	id, err := storage.ParseStreamID(s, defaultSeq)
	if err != nil {
		return storage.StreamID{}, err
	}
	if exclusive {
		if defaultSeq == 0 {
			id.Seq++
		} else if id.Seq > 0 {
			id.Seq--
		} else if id.Ms > 0 {
			id.Ms--
			id.Seq = ^uint64(0)
		}
	}
	return id, nil
}

// handleXRange implements XRANGE key start end [COUNT n]
func (h *CommandHandler) handleXRange(cmd *protocol.Command) []byte {
	return h.rangeReply(cmd, "xrange", false)
}

// handleXRevRange implements XREVRANGE key end start [COUNT n]
func (h *CommandHandler) handleXRevRange(cmd *protocol.Command) []byte {
	return h.rangeReply(cmd, "xrevrange", true)
}

func (h *CommandHandler) rangeReply(cmd *protocol.Command, name string, reverse bool) []byte {
	if len(cmd.Args) < 4 {
		return protocol.EncodeError(fmt.Sprintf("ERR wrong number of arguments for '%s' command", name))
	}
	key := cmd.Args[1]
	startTok, endTok := cmd.Args[2], cmd.Args[3]
	if reverse {
		startTok, endTok = cmd.Args[3], cmd.Args[2]
	}
	start, err := parseRangeBound(startTok, 0)
	if err != nil {
		return protocol.EncodeError(err.Error())
	}
	end, err := parseRangeBound(endTok, ^uint64(0))
	if err != nil {
		return protocol.EncodeError(err.Error())
	}
	count := -1
	if len(cmd.Args) >= 6 && strings.ToUpper(cmd.Args[4]) == "COUNT" {
		count, err = strconv.Atoi(cmd.Args[5])
		if err != nil {
			return protocol.EncodeError("ERR value is not an integer or out of range")
		}
	}

	cmdType := processor.CmdXRange
	if reverse {
		cmdType = processor.CmdXRevRange
	}
	procCmd := &processor.Command{
		Type:     cmdType,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{start, end, count},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := (<-procCmd.Response).(processor.StreamEntriesResult)
	if result.Err != nil {
		return protocol.EncodeError(result.Err.Error())
	}
	return encodeStreamEntries(result.Entries)
}

// handleXTrim implements XTRIM key MAXLEN|MINID [~|=] threshold [LIMIT n]
func (h *CommandHandler) handleXTrim(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 4 {
		return protocol.EncodeError("ERR wrong number of arguments for 'xtrim' command")
	}
	opts, _, err := parseTrimSpec(cmd.Args, 2)
	if err != nil {
		return protocol.EncodeError(err.Error())
	}
	procCmd := &processor.Command{
		Type:     processor.CmdXTrim,
		DBIndex:  cmd.DBIndex,
		Key:      cmd.Args[1],
		Args:     []interface{}{opts},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := (<-procCmd.Response).(processor.IntResult)
	if result.Err != nil {
		return protocol.EncodeError(result.Err.Error())
	}
	return protocol.EncodeInteger(result.Result)
}

// handleXDel implements XDEL key id [id ...]
func (h *CommandHandler) handleXDel(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'xdel' command")
	}
	ids := make([]storage.StreamID, 0, len(cmd.Args)-2)
	for _, tok := range cmd.Args[2:] {
		id, err := storage.ParseStreamID(tok, 0)
		if err != nil {
			return protocol.EncodeError(err.Error())
		}
		ids = append(ids, id)
	}
	procCmd := &processor.Command{
		Type:     processor.CmdXDel,
		DBIndex:  cmd.DBIndex,
		Key:      cmd.Args[1],
		Args:     []interface{}{ids},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := (<-procCmd.Response).(processor.IntResult)
	if result.Err != nil {
		return protocol.EncodeError(result.Err.Error())
	}
	return protocol.EncodeInteger(result.Result)
}

// streamsClauseArgs splits "STREAMS key [key ...] id [id ...]" into keys and
// ids, given the even split point args has after STREAMS.
func streamsClauseArgs(args []string) ([]string, []string, error) {
	if len(args)%2 != 0 || len(args) == 0 {
		return nil, nil, fmt.Errorf("ERR Unbalanced XREAD list of streams: for each stream key an ID or '$' must be specified")
	}
	half := len(args) / 2
	return args[:half], args[half:], nil
}

// handleXRead implements XREAD [COUNT n] [BLOCK ms] STREAMS key... id...
func (h *CommandHandler) handleXRead(cmd *protocol.Command) []byte {
	count := -1
	blockMs := -1
	i := 1
	for i < len(cmd.Args) {
		switch strings.ToUpper(cmd.Args[i]) {
		case "COUNT":
			if i+1 >= len(cmd.Args) {
				return protocol.EncodeError("ERR syntax error")
			}
			n, err := strconv.Atoi(cmd.Args[i+1])
			if err != nil {
				return protocol.EncodeError("ERR value is not an integer or out of range")
			}
			count = n
			i += 2
		case "BLOCK":
			if i+1 >= len(cmd.Args) {
				return protocol.EncodeError("ERR syntax error")
			}
			n, err := strconv.Atoi(cmd.Args[i+1])
			if err != nil {
				return protocol.EncodeError("ERR timeout is not an integer or out of range")
			}
			blockMs = n
			i += 2
		case "STREAMS":
			keys, idToks, err := streamsClauseArgs(cmd.Args[i+1:])
			if err != nil {
				return protocol.EncodeError(err.Error())
			}
			return h.xReadReply(cmd.DBIndex, keys, idToks, count, blockMs, "", "")
		default:
			return protocol.EncodeError("ERR syntax error")
		}
	}
	return protocol.EncodeError("ERR syntax error")
}

// handleXReadGroup implements
// XREADGROUP GROUP group consumer [COUNT n] [BLOCK ms] [NOACK] STREAMS key... id...
func (h *CommandHandler) handleXReadGroup(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 7 || strings.ToUpper(cmd.Args[1]) != "GROUP" {
		return protocol.EncodeError("ERR wrong number of arguments for 'xreadgroup' command")
	}
	group := cmd.Args[2]
	consumer := cmd.Args[3]
	count := -1
	blockMs := -1
	i := 4
	for i < len(cmd.Args) {
		switch strings.ToUpper(cmd.Args[i]) {
		case "COUNT":
			n, err := strconv.Atoi(cmd.Args[i+1])
			if err != nil {
				return protocol.EncodeError("ERR value is not an integer or out of range")
			}
			count = n
			i += 2
		case "BLOCK":
			n, err := strconv.Atoi(cmd.Args[i+1])
			if err != nil {
				return protocol.EncodeError("ERR timeout is not an integer or out of range")
			}
			blockMs = n
			i += 2
		case "NOACK":
			i++
		case "STREAMS":
			keys, idToks, err := streamsClauseArgs(cmd.Args[i+1:])
			if err != nil {
				return protocol.EncodeError(err.Error())
			}
			return h.xReadReply(cmd.DBIndex, keys, idToks, count, blockMs, group, consumer)
		default:
			return protocol.EncodeError("ERR syntax error")
		}
	}
	return protocol.EncodeError("ERR syntax error")
}

// xReadReply resolves starting IDs, attempts an immediate read, and polls
// until BLOCK's deadline if nothing is available yet. group == "" selects
// plain XREAD; otherwise this backs XREADGROUP. BLOCK 0 means wait forever,
// so deadline stays zero and the loop below never times out on its own —
// only a new entry or a read error ends it; the connection is not checked.
func (h *CommandHandler) xReadReply(dbIndex int, keys, idToks []string, count, blockMs int, group, consumer string) []byte {
	blocking := blockMs >= 0
	indefinite := blocking && blockMs == 0
	var deadline time.Time
	if blocking && !indefinite {
		deadline = time.Now().Add(time.Duration(blockMs) * time.Millisecond)
	}

	for {
		data, err := h.xReadOnce(dbIndex, keys, idToks, count, group, consumer)
		if err != nil {
			return protocol.EncodeError(err.Error())
		}
		if len(data) > 0 {
			return encodeXReadReply(keys, data)
		}
		if !blocking || (!indefinite && time.Now().After(deadline)) {
			return protocol.EncodeNilArray()
		}
		time.Sleep(streamPollInterval)
	}
}

func (h *CommandHandler) xReadOnce(dbIndex int, keys, idToks []string, count int, group, consumer string) (map[string][]storage.StreamEntry, error) {
	if group != "" {
		out := make(map[string][]storage.StreamEntry)
		for i, key := range keys {
			procCmd := &processor.Command{
				Type:     processor.CmdXReadGroup,
				DBIndex:  dbIndex,
				Key:      key,
				Args:     []interface{}{group, consumer, idToks[i], count},
				Response: make(chan interface{}, 1),
			}
			h.processor.Submit(procCmd)
			result := (<-procCmd.Response).(processor.StreamEntriesResult)
			if result.Err != nil {
				return nil, result.Err
			}
			if len(result.Entries) > 0 {
				out[key] = result.Entries
			}
		}
		return out, nil
	}

	afterIDs := make([]storage.StreamID, len(keys))
	for i, tok := range idToks {
		if tok == "$" {
			id, err := h.currentLastID(dbIndex, keys[i])
			if err != nil {
				return nil, err
			}
			afterIDs[i] = id
			continue
		}
		id, err := storage.ParseStreamID(tok, 0)
		if err != nil {
			return nil, err
		}
		afterIDs[i] = id
	}

	procCmd := &processor.Command{
		Type:     processor.CmdXRead,
		DBIndex:  dbIndex,
		Args:     []interface{}{keys, afterIDs, count},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := (<-procCmd.Response).(processor.StreamReadResult)
	return result.Data, result.Err
}

// currentLastID resolves "$" against a stream's current tail via a direct
// per-db call rather than round-tripping through the command channel twice.
func (h *CommandHandler) currentLastID(dbIndex int, key string) (storage.StreamID, error) {
	if dbIndex < 0 || dbIndex >= len(h.stores) {
		return storage.MinStreamID, nil
	}
	return h.stores[dbIndex].XLastID(key)
}

func encodeXReadReply(keys []string, data map[string][]storage.StreamEntry) []byte {
	parts := make([][]byte, 0, len(data))
	for _, key := range keys {
		entries, ok := data[key]
		if !ok {
			continue
		}
		parts = append(parts, protocol.EncodeRawArray([][]byte{
			protocol.EncodeBulkString(key),
			encodeStreamEntries(entries),
		}))
	}
	return protocol.EncodeRawArray(parts)
}

// handleXGroup implements XGROUP CREATE|DESTROY|SETID key group id [MKSTREAM]
func (h *CommandHandler) handleXGroup(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'xgroup' command")
	}
	sub := strings.ToUpper(cmd.Args[1])
	switch sub {
	case "CREATE":
		if len(cmd.Args) < 5 {
			return protocol.EncodeError("ERR wrong number of arguments for 'xgroup' command")
		}
		key, group, startID := cmd.Args[2], cmd.Args[3], cmd.Args[4]
		mkStream := len(cmd.Args) >= 6 && strings.ToUpper(cmd.Args[5]) == "MKSTREAM"
		procCmd := &processor.Command{
			Type:     processor.CmdXGroupCreate,
			DBIndex:  cmd.DBIndex,
			Key:      key,
			Args:     []interface{}{group, startID, mkStream},
			Response: make(chan interface{}, 1),
		}
		h.processor.Submit(procCmd)
		result := (<-procCmd.Response).(processor.BoolResult)
		if result.Err != nil {
			return protocol.EncodeError(result.Err.Error())
		}
		return protocol.EncodeSimpleString("OK")

	case "DESTROY":
		if len(cmd.Args) != 4 {
			return protocol.EncodeError("ERR wrong number of arguments for 'xgroup' command")
		}
		procCmd := &processor.Command{
			Type:     processor.CmdXGroupDestroy,
			DBIndex:  cmd.DBIndex,
			Key:      cmd.Args[2],
			Args:     []interface{}{cmd.Args[3]},
			Response: make(chan interface{}, 1),
		}
		h.processor.Submit(procCmd)
		result := (<-procCmd.Response).(processor.BoolResult)
		if result.Err != nil {
			return protocol.EncodeError(result.Err.Error())
		}
		if result.Result {
			return protocol.EncodeInteger(1)
		}
		return protocol.EncodeInteger(0)

	case "SETID":
		if len(cmd.Args) != 5 {
			return protocol.EncodeError("ERR wrong number of arguments for 'xgroup' command")
		}
		procCmd := &processor.Command{
			Type:     processor.CmdXGroupSetID,
			DBIndex:  cmd.DBIndex,
			Key:      cmd.Args[2],
			Args:     []interface{}{cmd.Args[3], cmd.Args[4]},
			Response: make(chan interface{}, 1),
		}
		h.processor.Submit(procCmd)
		result := (<-procCmd.Response).(processor.BoolResult)
		if result.Err != nil {
			return protocol.EncodeError(result.Err.Error())
		}
		return protocol.EncodeSimpleString("OK")

	default:
		return protocol.EncodeError(fmt.Sprintf("ERR Unknown XGROUP subcommand or wrong number of arguments for '%s'", sub))
	}
}

// handleXAck implements XACK key group id [id ...]
func (h *CommandHandler) handleXAck(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 4 {
		return protocol.EncodeError("ERR wrong number of arguments for 'xack' command")
	}
	ids := make([]storage.StreamID, 0, len(cmd.Args)-3)
	for _, tok := range cmd.Args[3:] {
		id, err := storage.ParseStreamID(tok, 0)
		if err != nil {
			return protocol.EncodeError(err.Error())
		}
		ids = append(ids, id)
	}
	procCmd := &processor.Command{
		Type:     processor.CmdXAck,
		DBIndex:  cmd.DBIndex,
		Key:      cmd.Args[1],
		Args:     []interface{}{cmd.Args[2], ids},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := (<-procCmd.Response).(processor.IntResult)
	if result.Err != nil {
		return protocol.EncodeError(result.Err.Error())
	}
	return protocol.EncodeInteger(result.Result)
}

// handleXPending implements
// XPENDING key group [IDLE ms] [start end count [consumer]]
func (h *CommandHandler) handleXPending(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'xpending' command")
	}
	key, group := cmd.Args[1], cmd.Args[2]
	i := 3
	if i < len(cmd.Args) && strings.ToUpper(cmd.Args[i]) == "IDLE" {
		i += 2 // the IDLE value is skipped; neither the summary nor the range path filters by idle time
	}

	if i >= len(cmd.Args) {
		procCmd := &processor.Command{
			Type:     processor.CmdXPending,
			DBIndex:  cmd.DBIndex,
			Key:      key,
			Args:     []interface{}{group},
			Response: make(chan interface{}, 1),
		}
		h.processor.Submit(procCmd)
		result := (<-procCmd.Response).(processor.PendingSummaryResult)
		if result.Err != nil {
			return protocol.EncodeError(result.Err.Error())
		}
		if result.Summary.Count == 0 {
			return protocol.EncodeRawArray([][]byte{
				protocol.EncodeInteger(0),
				protocol.EncodeNullBulkString(),
				protocol.EncodeNullBulkString(),
				protocol.EncodeNilArray(),
			})
		}
		perConsumer := make([][]byte, 0, len(result.Summary.PerConsumer))
		for name, count := range result.Summary.PerConsumer {
			perConsumer = append(perConsumer, protocol.EncodeRawArray([][]byte{
				protocol.EncodeBulkString(name),
				protocol.EncodeBulkString(strconv.Itoa(count)),
			}))
		}
		return protocol.EncodeRawArray([][]byte{
			protocol.EncodeInteger(result.Summary.Count),
			protocol.EncodeBulkString(result.Summary.MinID.String()),
			protocol.EncodeBulkString(result.Summary.MaxID.String()),
			protocol.EncodeRawArray(perConsumer),
		})
	}

	if len(cmd.Args) < i+3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'xpending' command")
	}
	start, err := parseRangeBound(cmd.Args[i], 0)
	if err != nil {
		return protocol.EncodeError(err.Error())
	}
	end, err := parseRangeBound(cmd.Args[i+1], ^uint64(0))
	if err != nil {
		return protocol.EncodeError(err.Error())
	}
	count, err := strconv.Atoi(cmd.Args[i+2])
	if err != nil {
		return protocol.EncodeError("ERR value is not an integer or out of range")
	}
	consumerFilter := ""
	if len(cmd.Args) > i+3 {
		consumerFilter = cmd.Args[i+3]
	}

	procCmd := &processor.Command{
		Type:     processor.CmdXPending,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{group, start, end, count, consumerFilter},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := (<-procCmd.Response).(processor.PendingRangeResult)
	if result.Err != nil {
		return protocol.EncodeError(result.Err.Error())
	}
	rows := make([][]byte, len(result.Rows))
	for i, r := range result.Rows {
		rows[i] = protocol.EncodeRawArray([][]byte{
			protocol.EncodeBulkString(r.ID.String()),
			protocol.EncodeBulkString(r.Consumer),
			protocol.EncodeInteger64(r.IdleMs),
			protocol.EncodeInteger64(r.DeliveryCount),
		})
	}
	return protocol.EncodeRawArray(rows)
}

// handleXClaim implements
// XCLAIM key group consumer min-idle-time id [id ...] [IDLE ms] [TIME ms] [RETRYCOUNT n] [FORCE] [JUSTID]
func (h *CommandHandler) handleXClaim(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 6 {
		return protocol.EncodeError("ERR wrong number of arguments for 'xclaim' command")
	}
	key, group, consumer := cmd.Args[1], cmd.Args[2], cmd.Args[3]
	minIdleMs, err := strconv.ParseInt(cmd.Args[4], 10, 64)
	if err != nil {
		return protocol.EncodeError("ERR value is not an integer or out of range")
	}

	var ids []storage.StreamID
	i := 5
	for i < len(cmd.Args) {
		id, err := storage.ParseStreamID(cmd.Args[i], 0)
		if err != nil {
			break
		}
		ids = append(ids, id)
		i++
	}

	justID := false
	force := false
	for ; i < len(cmd.Args); i++ {
		switch strings.ToUpper(cmd.Args[i]) {
		case "JUSTID":
			justID = true
		case "IDLE", "TIME", "RETRYCOUNT":
			i++ // skip the value; these refinements aren't modeled separately
		case "FORCE":
			force = true
		}
	}

	procCmd := &processor.Command{
		Type:     processor.CmdXClaim,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{group, consumer, ids, minIdleMs, justID, force},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := (<-procCmd.Response).(processor.StreamEntriesResult)
	if result.Err != nil {
		return protocol.EncodeError(result.Err.Error())
	}
	if justID {
		toks := make([]string, len(result.Entries))
		for i, e := range result.Entries {
			toks[i] = e.ID.String()
		}
		return protocol.EncodeArray(toks)
	}
	return encodeStreamEntries(result.Entries)
}

// handleXAutoClaim implements
// XAUTOCLAIM key group consumer min-idle-time start [COUNT n] [JUSTID]
func (h *CommandHandler) handleXAutoClaim(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 6 {
		return protocol.EncodeError("ERR wrong number of arguments for 'xautoclaim' command")
	}
	key, group, consumer := cmd.Args[1], cmd.Args[2], cmd.Args[3]
	minIdleMs, err := strconv.ParseInt(cmd.Args[4], 10, 64)
	if err != nil {
		return protocol.EncodeError("ERR value is not an integer or out of range")
	}
	cursor, err := storage.ParseStreamID(cmd.Args[5], 0)
	if err != nil {
		return protocol.EncodeError(err.Error())
	}
	count := 100
	justID := false
	for i := 6; i < len(cmd.Args); i++ {
		switch strings.ToUpper(cmd.Args[i]) {
		case "COUNT":
			if i+1 < len(cmd.Args) {
				count, _ = strconv.Atoi(cmd.Args[i+1])
				i++
			}
		case "JUSTID":
			justID = true
		}
	}

	procCmd := &processor.Command{
		Type:     processor.CmdXAutoClaim,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{group, consumer, cursor, minIdleMs, count},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := (<-procCmd.Response).(processor.AutoClaimResult)
	if result.Err != nil {
		return protocol.EncodeError(result.Err.Error())
	}

	var entriesReply []byte
	if justID {
		toks := make([]string, len(result.Claimed))
		for i, e := range result.Claimed {
			toks[i] = e.ID.String()
		}
		entriesReply = protocol.EncodeArray(toks)
	} else {
		entriesReply = encodeStreamEntries(result.Claimed)
	}
	deletedToks := make([]string, len(result.Deleted))
	for i, id := range result.Deleted {
		deletedToks[i] = id.String()
	}
	return protocol.EncodeRawArray([][]byte{
		protocol.EncodeBulkString(result.Next.String()),
		entriesReply,
		protocol.EncodeArray(deletedToks),
	})
}

// handleXInfo implements XINFO STREAM|GROUPS|CONSUMERS|HELP
func (h *CommandHandler) handleXInfo(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'xinfo' command")
	}
	sub := strings.ToUpper(cmd.Args[1])
	switch sub {
	case "HELP":
		return protocol.EncodeArray([]string{"XINFO STREAM|GROUPS|CONSUMERS key [group]"})

	case "STREAM":
		if len(cmd.Args) != 3 {
			return protocol.EncodeError("ERR wrong number of arguments for 'xinfo' command")
		}
		procCmd := &processor.Command{
			Type:     processor.CmdXInfoStream,
			DBIndex:  cmd.DBIndex,
			Key:      cmd.Args[2],
			Response: make(chan interface{}, 1),
		}
		h.processor.Submit(procCmd)
		result := (<-procCmd.Response).(processor.StreamInfoResult)
		if result.Err != nil {
			return protocol.EncodeError(result.Err.Error())
		}
		fields := [][]byte{
			protocol.EncodeBulkString("length"), protocol.EncodeInteger(result.Info.Length),
			protocol.EncodeBulkString("last-generated-id"), protocol.EncodeBulkString(result.Info.LastID.String()),
			protocol.EncodeBulkString("max-deleted-entry-id"), protocol.EncodeBulkString(result.Info.MaxDeletedID.String()),
			protocol.EncodeBulkString("entries-added"), protocol.EncodeInteger64(int64(result.Info.EntriesAdded)),
			protocol.EncodeBulkString("groups"), protocol.EncodeInteger(result.Info.GroupCount),
		}
		fields = append(fields, protocol.EncodeBulkString("first-entry"))
		if result.Info.FirstEntry != nil {
			fields = append(fields, encodeStreamEntry(*result.Info.FirstEntry))
		} else {
			fields = append(fields, protocol.EncodeNilArray())
		}
		fields = append(fields, protocol.EncodeBulkString("last-entry"))
		if result.Info.LastEntry != nil {
			fields = append(fields, encodeStreamEntry(*result.Info.LastEntry))
		} else {
			fields = append(fields, protocol.EncodeNilArray())
		}
		return protocol.EncodeRawArray(fields)

	case "GROUPS":
		if len(cmd.Args) != 3 {
			return protocol.EncodeError("ERR wrong number of arguments for 'xinfo' command")
		}
		procCmd := &processor.Command{
			Type:     processor.CmdXInfoGroups,
			DBIndex:  cmd.DBIndex,
			Key:      cmd.Args[2],
			Response: make(chan interface{}, 1),
		}
		h.processor.Submit(procCmd)
		result := (<-procCmd.Response).(processor.GroupInfosResult)
		if result.Err != nil {
			return protocol.EncodeError(result.Err.Error())
		}
		rows := make([][]byte, len(result.Groups))
		for i, g := range result.Groups {
			rows[i] = protocol.EncodeRawArray([][]byte{
				protocol.EncodeBulkString("name"), protocol.EncodeBulkString(g.Name),
				protocol.EncodeBulkString("consumers"), protocol.EncodeInteger(g.Consumers),
				protocol.EncodeBulkString("pending"), protocol.EncodeInteger(g.Pending),
				protocol.EncodeBulkString("last-delivered-id"), protocol.EncodeBulkString(g.LastDeliveredID.String()),
			})
		}
		return protocol.EncodeRawArray(rows)

	case "CONSUMERS":
		if len(cmd.Args) != 4 {
			return protocol.EncodeError("ERR wrong number of arguments for 'xinfo' command")
		}
		procCmd := &processor.Command{
			Type:     processor.CmdXInfoConsumers,
			DBIndex:  cmd.DBIndex,
			Key:      cmd.Args[2],
			Args:     []interface{}{cmd.Args[3]},
			Response: make(chan interface{}, 1),
		}
		h.processor.Submit(procCmd)
		result := (<-procCmd.Response).(processor.ConsumerInfosResult)
		if result.Err != nil {
			return protocol.EncodeError(result.Err.Error())
		}
		rows := make([][]byte, len(result.Infos))
		for i, c := range result.Infos {
			rows[i] = protocol.EncodeRawArray([][]byte{
				protocol.EncodeBulkString("name"), protocol.EncodeBulkString(c.Name),
				protocol.EncodeBulkString("pending"), protocol.EncodeInteger(c.Pending),
				protocol.EncodeBulkString("idle"), protocol.EncodeInteger64(c.IdleMs),
			})
		}
		return protocol.EncodeRawArray(rows)

	default:
		return protocol.EncodeError(fmt.Sprintf("ERR Unknown XINFO subcommand or wrong number of arguments for '%s'", sub))
	}
}
