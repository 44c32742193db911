package handler

import (
	"fmt"
	"strings"

	"storedb/internal/processor"
	"storedb/internal/protocol"
)

func (h *CommandHandler) handleLPush(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'lpush' command")
	}

	key := cmd.Args[1]
	values := cmd.Args[2:]

	procCmd := &processor.Command{
		Type:     processor.CmdLPush,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{values},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.IntResult)

	if res.Err != nil {
		return protocol.EncodeError(res.Err.Error())
	}

	// Notify any blocked clients waiting on this key
	h.NotifyListPush(cmd.DBIndex, key)

	return protocol.EncodeInteger(res.Result)
}

func (h *CommandHandler) handleRPush(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'rpush' command")
	}

	key := cmd.Args[1]
	values := cmd.Args[2:]

	procCmd := &processor.Command{
		Type:     processor.CmdRPush,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{values},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.IntResult)

	if res.Err != nil {
		return protocol.EncodeError(res.Err.Error())
	}

	// Notify any blocked clients waiting on this key
	h.NotifyListPush(cmd.DBIndex, key)

	return protocol.EncodeInteger(res.Result)
}

func (h *CommandHandler) handleLPop(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'lpop' command")
	}

	key := cmd.Args[1]
	count := 1

	if len(cmd.Args) >= 3 {
		if _, err := fmt.Sscanf(cmd.Args[2], "%d", &count); err != nil {
			return protocol.EncodeError("ERR value is not an integer or out of range")
		}
	}

	procCmd := &processor.Command{
		Type:     processor.CmdLPop,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{count},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.StringSliceResult)

	if res.Err != nil {
		return protocol.EncodeError(res.Err.Error())
	}

	if len(res.Result) == 0 {
		return protocol.EncodeNullBulkString()
	}

	// If count was 1 (default), return single element
	if count == 1 && len(cmd.Args) < 3 {
		return protocol.EncodeBulkString(res.Result[0])
	}

	// Otherwise return array
	return protocol.EncodeArray(res.Result)
}

func (h *CommandHandler) handleRPop(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'rpop' command")
	}

	key := cmd.Args[1]
	count := 1

	if len(cmd.Args) >= 3 {
		if _, err := fmt.Sscanf(cmd.Args[2], "%d", &count); err != nil {
			return protocol.EncodeError("ERR value is not an integer or out of range")
		}
	}

	procCmd := &processor.Command{
		Type:     processor.CmdRPop,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{count},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.StringSliceResult)

	if res.Err != nil {
		return protocol.EncodeError(res.Err.Error())
	}

	if len(res.Result) == 0 {
		return protocol.EncodeNullBulkString()
	}

	// If count was 1 (default), return single element
	if count == 1 && len(cmd.Args) < 3 {
		return protocol.EncodeBulkString(res.Result[0])
	}

	// Otherwise return array
	return protocol.EncodeArray(res.Result)
}

func (h *CommandHandler) handleLLen(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'llen' command")
	}

	key := cmd.Args[1]

	procCmd := &processor.Command{
		Type:     processor.CmdLLen,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.IntResult)

	if res.Err != nil {
		return protocol.EncodeError(res.Err.Error())
	}
	return protocol.EncodeInteger(res.Result)
}

func (h *CommandHandler) handleLRange(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 4 {
		return protocol.EncodeError("ERR wrong number of arguments for 'lrange' command")
	}

	key := cmd.Args[1]
	var start, stop int

	if _, err := fmt.Sscanf(cmd.Args[2], "%d", &start); err != nil {
		return protocol.EncodeError("ERR value is not an integer or out of range")
	}
	if _, err := fmt.Sscanf(cmd.Args[3], "%d", &stop); err != nil {
		return protocol.EncodeError("ERR value is not an integer or out of range")
	}

	procCmd := &processor.Command{
		Type:     processor.CmdLRange,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{start, stop},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.StringSliceResult)

	if res.Err != nil {
		return protocol.EncodeError(res.Err.Error())
	}
	return protocol.EncodeArray(res.Result)
}

func (h *CommandHandler) handleLIndex(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'lindex' command")
	}

	key := cmd.Args[1]
	var index int

	if _, err := fmt.Sscanf(cmd.Args[2], "%d", &index); err != nil {
		return protocol.EncodeError("ERR value is not an integer or out of range")
	}

	procCmd := &processor.Command{
		Type:     processor.CmdLIndex,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{index},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.IndexResult)

	if res.Err != nil {
		return protocol.EncodeError(res.Err.Error())
	}

	if !res.Exists {
		return protocol.EncodeNullBulkString()
	}
	return protocol.EncodeBulkString(res.Value)
}

func (h *CommandHandler) handleLSet(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 4 {
		return protocol.EncodeError("ERR wrong number of arguments for 'lset' command")
	}

	key := cmd.Args[1]
	var index int

	if _, err := fmt.Sscanf(cmd.Args[2], "%d", &index); err != nil {
		return protocol.EncodeError("ERR value is not an integer or out of range")
	}
	value := cmd.Args[3]

	procCmd := &processor.Command{
		Type:     processor.CmdLSet,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{index, value},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	if err, ok := result.(error); ok && err != nil {
		return protocol.EncodeError(err.Error())
	}
	return protocol.EncodeSimpleString("OK")
}

func (h *CommandHandler) handleLRem(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 4 {
		return protocol.EncodeError("ERR wrong number of arguments for 'lrem' command")
	}

	key := cmd.Args[1]
	var count int

	if _, err := fmt.Sscanf(cmd.Args[2], "%d", &count); err != nil {
		return protocol.EncodeError("ERR value is not an integer or out of range")
	}
	value := cmd.Args[3]

	procCmd := &processor.Command{
		Type:     processor.CmdLRem,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{count, value},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.IntResult)

	if res.Err != nil {
		return protocol.EncodeError(res.Err.Error())
	}
	return protocol.EncodeInteger(res.Result)
}

func (h *CommandHandler) handleLTrim(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 4 {
		return protocol.EncodeError("ERR wrong number of arguments for 'ltrim' command")
	}

	key := cmd.Args[1]
	var start, stop int

	if _, err := fmt.Sscanf(cmd.Args[2], "%d", &start); err != nil {
		return protocol.EncodeError("ERR value is not an integer or out of range")
	}
	if _, err := fmt.Sscanf(cmd.Args[3], "%d", &stop); err != nil {
		return protocol.EncodeError("ERR value is not an integer or out of range")
	}

	procCmd := &processor.Command{
		Type:     processor.CmdLTrim,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{start, stop},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	if err, ok := result.(error); ok && err != nil {
		return protocol.EncodeError(err.Error())
	}
	return protocol.EncodeSimpleString("OK")
}

func (h *CommandHandler) handleLInsert(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 5 {
		return protocol.EncodeError("ERR wrong number of arguments for 'linsert' command")
	}

	key := cmd.Args[1]
	position := strings.ToUpper(cmd.Args[2])
	pivot := cmd.Args[3]
	value := cmd.Args[4]

	var before bool
	if position == "BEFORE" {
		before = true
	} else if position == "AFTER" {
		before = false
	} else {
		return protocol.EncodeError("ERR syntax error")
	}

	procCmd := &processor.Command{
		Type:     processor.CmdLInsert,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{before, pivot, value},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.IntResult)

	if res.Err != nil {
		return protocol.EncodeError(res.Err.Error())
	}
	return protocol.EncodeInteger(res.Result)
}

// handleLPos handles LPOS key element [RANK rank] [COUNT count] [MAXLEN len]
func (h *CommandHandler) handleLPos(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'lpos' command")
	}

	key := cmd.Args[1]
	element := cmd.Args[2]
	rank := 1
	var count *int
	maxLen := 0

	args := cmd.Args[3:]
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			return protocol.EncodeError("ERR syntax error")
		}
		opt := strings.ToUpper(args[i])
		switch opt {
		case "RANK":
			if _, err := fmt.Sscanf(args[i+1], "%d", &rank); err != nil || rank == 0 {
				return protocol.EncodeError("ERR RANK can't be zero")
			}
		case "COUNT":
			var c int
			if _, err := fmt.Sscanf(args[i+1], "%d", &c); err != nil || c < 0 {
				return protocol.EncodeError("ERR COUNT can't be negative")
			}
			count = &c
		case "MAXLEN":
			if _, err := fmt.Sscanf(args[i+1], "%d", &maxLen); err != nil || maxLen < 0 {
				return protocol.EncodeError("ERR MAXLEN can't be negative")
			}
		default:
			return protocol.EncodeError("ERR syntax error")
		}
	}

	procCmd := &processor.Command{
		Type:     processor.CmdLPos,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Value:    element,
		Args:     []interface{}{rank, count, maxLen},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.LPosResult)
	if res.Err != nil {
		return protocol.EncodeError(res.Err.Error())
	}

	if count != nil {
		return protocol.EncodeIntegerArray(res.Value.([]int))
	}

	idx := res.Value.(int)
	if idx < 0 {
		return protocol.EncodeNullBulkString()
	}
	return protocol.EncodeInteger(idx)
}
