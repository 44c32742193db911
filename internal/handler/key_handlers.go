package handler

import (
	"strconv"
	"strings"
	"time"

	"storedb/internal/processor"
	"storedb/internal/protocol"
)

// registerKeyCommands registers generic key-space commands not tied to a
// particular value type.
func (h *CommandHandler) registerKeyCommands() {
	h.commands["TYPE"] = h.handleType
	h.commands["PERSIST"] = h.handlePersist
	h.commands["PTTL"] = h.handlePTTL
	h.commands["PEXPIRE"] = h.handlePExpire
	h.commands["EXPIREAT"] = h.handleExpireAt
	h.commands["PEXPIREAT"] = h.handlePExpireAt
	h.commands["RENAME"] = h.handleRename
	h.commands["RENAMENX"] = h.handleRenameNX
	h.commands["RANDOMKEY"] = h.handleRandomKey
	h.commands["TOUCH"] = h.handleTouch
	h.commands["COPY"] = h.handleCopy
	h.commands["OBJECT"] = h.handleObject
}

func (h *CommandHandler) handleType(cmd *protocol.Command) []byte {
	if len(cmd.Args) != 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'type' command")
	}
	procCmd := &processor.Command{
		Type:     processor.CmdType,
		DBIndex:  cmd.DBIndex,
		Key:      cmd.Args[1],
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response
	return protocol.EncodeSimpleString(result.(string))
}

func (h *CommandHandler) handlePersist(cmd *protocol.Command) []byte {
	if len(cmd.Args) != 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'persist' command")
	}
	procCmd := &processor.Command{
		Type:     processor.CmdPersist,
		DBIndex:  cmd.DBIndex,
		Key:      cmd.Args[1],
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response
	if result.(bool) {
		return protocol.EncodeInteger(1)
	}
	return protocol.EncodeInteger(0)
}

func (h *CommandHandler) handlePTTL(cmd *protocol.Command) []byte {
	if len(cmd.Args) != 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'pttl' command")
	}
	procCmd := &processor.Command{
		Type:     processor.CmdPTTL,
		DBIndex:  cmd.DBIndex,
		Key:      cmd.Args[1],
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response
	return protocol.EncodeInteger64(result.(int64))
}

func (h *CommandHandler) expireAtReply(cmd *protocol.Command, name string, at time.Time) []byte {
	key := cmd.Args[1]
	procCmd := &processor.Command{
		Type:     processor.CmdExpire,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Expiry:   &at,
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response
	if result.(bool) {
		return protocol.EncodeInteger(1)
	}
	return protocol.EncodeInteger(0)
}

// handlePExpire implements PEXPIRE key milliseconds
func (h *CommandHandler) handlePExpire(cmd *protocol.Command) []byte {
	if len(cmd.Args) != 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'pexpire' command")
	}
	ms, err := strconv.ParseInt(cmd.Args[2], 10, 64)
	if err != nil {
		return protocol.EncodeError("ERR value is not an integer or out of range")
	}
	return h.expireAtReply(cmd, "pexpire", time.Now().Add(time.Duration(ms)*time.Millisecond))
}

// handleExpireAt implements EXPIREAT key unix-time-seconds
func (h *CommandHandler) handleExpireAt(cmd *protocol.Command) []byte {
	if len(cmd.Args) != 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'expireat' command")
	}
	sec, err := strconv.ParseInt(cmd.Args[2], 10, 64)
	if err != nil {
		return protocol.EncodeError("ERR value is not an integer or out of range")
	}
	return h.expireAtReply(cmd, "expireat", time.Unix(sec, 0))
}

// handlePExpireAt implements PEXPIREAT key unix-time-milliseconds
func (h *CommandHandler) handlePExpireAt(cmd *protocol.Command) []byte {
	if len(cmd.Args) != 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'pexpireat' command")
	}
	ms, err := strconv.ParseInt(cmd.Args[2], 10, 64)
	if err != nil {
		return protocol.EncodeError("ERR value is not an integer or out of range")
	}
	return h.expireAtReply(cmd, "pexpireat", time.UnixMilli(ms))
}

func (h *CommandHandler) handleRename(cmd *protocol.Command) []byte {
	if len(cmd.Args) != 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'rename' command")
	}
	procCmd := &processor.Command{
		Type:     processor.CmdRename,
		DBIndex:  cmd.DBIndex,
		Key:      cmd.Args[1],
		Args:     []interface{}{cmd.Args[2]},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := (<-procCmd.Response).(processor.BoolResult)
	if result.Err != nil {
		return protocol.EncodeError(result.Err.Error())
	}
	return protocol.EncodeSimpleString("OK")
}

func (h *CommandHandler) handleRenameNX(cmd *protocol.Command) []byte {
	if len(cmd.Args) != 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'renamenx' command")
	}
	procCmd := &processor.Command{
		Type:     processor.CmdRenameNX,
		DBIndex:  cmd.DBIndex,
		Key:      cmd.Args[1],
		Args:     []interface{}{cmd.Args[2]},
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
}

func (h *CommandHandler) handleRandomKey(cmd *protocol.Command) []byte {
	procCmd := &processor.Command{
		Type:     processor.CmdRandomKey,
		DBIndex:  cmd.DBIndex,
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := (<-procCmd.Response).(string)
	if result == "" {
		return protocol.EncodeNullBulkString()
	}
	return protocol.EncodeBulkString(result)
}

func (h *CommandHandler) handleTouch(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'touch' command")
	}
	procCmd := &processor.Command{
		Type:     processor.CmdTouch,
		DBIndex:  cmd.DBIndex,
		Args:     []interface{}{cmd.Args[1:]},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := (<-procCmd.Response).(int)
	return protocol.EncodeInteger(result)
}

// handleCopy implements COPY source destination [DB destination-db] [REPLACE]
// Cross-database copy is not done: a DB option and its value are skipped
// unchecked, and the copy always lands in the source's own database.
func (h *CommandHandler) handleCopy(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'copy' command")
	}
	replace := false
	for i := 3; i < len(cmd.Args); i++ {
		if strings.ToUpper(cmd.Args[i]) == "REPLACE" {
			replace = true
		}
	}
	procCmd := &processor.Command{
		Type:     processor.CmdCopy,
		DBIndex:  cmd.DBIndex,
		Key:      cmd.Args[1],
		Args:     []interface{}{cmd.Args[2], replace},
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
}

// handleObject implements OBJECT ENCODING|HELP key. Only ENCODING is
// meaningfully answerable without RDB-style encoding metadata per type, so
// it reports TYPE's name as the encoding (every type here has exactly one
// internal representation).
func (h *CommandHandler) handleObject(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'object' command")
	}
	switch strings.ToUpper(cmd.Args[1]) {
	case "HELP":
		return protocol.EncodeArray([]string{"OBJECT ENCODING key"})
	case "ENCODING":
		if len(cmd.Args) != 3 {
			return protocol.EncodeError("ERR wrong number of arguments for 'object|encoding' command")
		}
		procCmd := &processor.Command{
			Type:     processor.CmdType,
			DBIndex:  cmd.DBIndex,
			Key:      cmd.Args[2],
			Response: make(chan interface{}, 1),
		}
		h.processor.Submit(procCmd)
		result := (<-procCmd.Response).(string)
		if result == "none" {
			return protocol.EncodeError("ERR no such key")
		}
		return protocol.EncodeBulkString(result)
	default:
		return protocol.EncodeError("ERR Unknown OBJECT subcommand")
	}
}
