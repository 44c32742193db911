package handler

import (
	"fmt"
	"strconv"
	"strings"

	"storedb/internal/processor"
	"storedb/internal/protocol"
	"storedb/internal/storage"
)

// handleSetBit sets or clears the bit at offset in the string value
// SETBIT key offset value
// Returns the original bit value at offset
func (h *CommandHandler) handleSetBit(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 4 {
		return protocol.EncodeError("ERR wrong number of arguments for 'setbit' command")
	}

	key := cmd.Args[1]

	// Parse offset
	offset, err := strconv.ParseInt(cmd.Args[2], 10, 64)
	if err != nil || offset < 0 {
		return protocol.EncodeError("ERR bit offset is not an integer or out of range")
	}

	// Parse value (must be 0 or 1)
	value, err := strconv.Atoi(cmd.Args[3])
	if err != nil || (value != 0 && value != 1) {
		return protocol.EncodeError("ERR bit is not an integer or out of range")
	}

	procCmd := &processor.Command{
		Type:     processor.CmdSetBit,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{offset, value},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.IntResult)
	if res.Err != nil {
		return protocol.EncodeError(fmt.Sprintf("ERR %v", res.Err))
	}

	return protocol.EncodeInteger(res.Result)
}

// handleGetBit returns the bit value at offset in the string value
// GETBIT key offset
// Returns 0 or 1
func (h *CommandHandler) handleGetBit(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'getbit' command")
	}

	key := cmd.Args[1]

	// Parse offset
	offset, err := strconv.ParseInt(cmd.Args[2], 10, 64)
	if err != nil || offset < 0 {
		return protocol.EncodeError("ERR bit offset is not an integer or out of range")
	}

	procCmd := &processor.Command{
		Type:     processor.CmdGetBit,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{offset},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.IntResult)
	if res.Err != nil {
		return protocol.EncodeError(fmt.Sprintf("ERR %v", res.Err))
	}

	return protocol.EncodeInteger(res.Result)
}

// handleBitCount returns the count of bits set to 1
// BITCOUNT key [start end]
// Start and end are byte indices (not bit indices)
func (h *CommandHandler) handleBitCount(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'bitcount' command")
	}

	key := cmd.Args[1]

	var start, end *int64

	// Parse optional start and end
	if len(cmd.Args) >= 4 {
		s, err := strconv.ParseInt(cmd.Args[2], 10, 64)
		if err != nil {
			return protocol.EncodeError("ERR value is not an integer or out of range")
		}
		start = &s

		e, err := strconv.ParseInt(cmd.Args[3], 10, 64)
		if err != nil {
			return protocol.EncodeError("ERR value is not an integer or out of range")
		}
		end = &e
	} else if len(cmd.Args) == 3 {
		return protocol.EncodeError("ERR syntax error")
	}

	procCmd := &processor.Command{
		Type:     processor.CmdBitCount,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{start, end},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.IntResult)
	if res.Err != nil {
		return protocol.EncodeError(fmt.Sprintf("ERR %v", res.Err))
	}

	return protocol.EncodeInteger(res.Result)
}

// handleBitPos finds the position of the first bit set to 0 or 1
// BITPOS key bit [start] [end]
// Start and end are byte indices
func (h *CommandHandler) handleBitPos(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 3 {
		return protocol.EncodeError("ERR wrong number of arguments for 'bitpos' command")
	}

	key := cmd.Args[1]

	// Parse bit (must be 0 or 1)
	bit, err := strconv.Atoi(cmd.Args[2])
	if err != nil || (bit != 0 && bit != 1) {
		return protocol.EncodeError("ERR The bit argument must be 1 or 0")
	}

	var start, end *int64

	// Parse optional start
	if len(cmd.Args) >= 4 {
		s, err := strconv.ParseInt(cmd.Args[3], 10, 64)
		if err != nil {
			return protocol.EncodeError("ERR value is not an integer or out of range")
		}
		start = &s
	}

	// Parse optional end
	if len(cmd.Args) >= 5 {
		e, err := strconv.ParseInt(cmd.Args[4], 10, 64)
		if err != nil {
			return protocol.EncodeError("ERR value is not an integer or out of range")
		}
		end = &e
	}

	procCmd := &processor.Command{
		Type:     processor.CmdBitPos,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{bit, start, end},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.IntResult)
	if res.Err != nil {
		return protocol.EncodeError(fmt.Sprintf("ERR %v", res.Err))
	}

	return protocol.EncodeInteger(res.Result)
}

// parseBitFieldType parses a field type token like "u8", "i16", or "i64"
// into (signed, bits). Signed fields max out at 63 bits, unsigned at 64.
func parseBitFieldType(token string) (signed bool, bits int, ok bool) {
	if len(token) < 2 {
		return false, 0, false
	}
	switch token[0] {
	case 'i':
		signed = true
	case 'u':
		signed = false
	default:
		return false, 0, false
	}
	n, err := strconv.Atoi(token[1:])
	if err != nil || n < 1 || n > 64 || (!signed && n > 64) || (signed && n > 63) {
		return false, 0, false
	}
	return signed, n, true
}

// parseBitFieldOffset parses a field offset token: a plain bit offset, or a
// "#N" element offset which is N*bits bits from the start.
func parseBitFieldOffset(token string, bits int) (int64, bool) {
	if strings.HasPrefix(token, "#") {
		n, err := strconv.ParseInt(token[1:], 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		return n * int64(bits), true
	}
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// handleBitField handles BITFIELD key
//
//	[GET type offset | SET type offset value | INCRBY type offset increment | OVERFLOW WRAP|SAT|FAIL]...
func (h *CommandHandler) handleBitField(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 2 {
		return protocol.EncodeError("ERR wrong number of arguments for 'bitfield' command")
	}

	key := cmd.Args[1]
	args := cmd.Args[2:]
	overflow := "WRAP"
	ops := make([]storage.BitFieldOp, 0, 4)

	for i := 0; i < len(args); {
		opName := strings.ToUpper(args[i])
		switch opName {
		case "OVERFLOW":
			if i+1 >= len(args) {
				return protocol.EncodeError("ERR syntax error")
			}
			mode := strings.ToUpper(args[i+1])
			if mode != "WRAP" && mode != "SAT" && mode != "FAIL" {
				return protocol.EncodeError("ERR Invalid OVERFLOW type specified")
			}
			overflow = mode
			i += 2
		case "GET":
			if i+2 >= len(args) {
				return protocol.EncodeError("ERR syntax error")
			}
			signed, bits, ok := parseBitFieldType(args[i+1])
			if !ok {
				return protocol.EncodeError("ERR Invalid bitfield type")
			}
			offset, ok := parseBitFieldOffset(args[i+2], bits)
			if !ok {
				return protocol.EncodeError("ERR bit offset is not an integer or out of range")
			}
			ops = append(ops, storage.BitFieldOp{Op: "GET", Signed: signed, Bits: bits, Offset: offset, Overflow: overflow})
			i += 3
		case "SET":
			if i+3 >= len(args) {
				return protocol.EncodeError("ERR syntax error")
			}
			signed, bits, ok := parseBitFieldType(args[i+1])
			if !ok {
				return protocol.EncodeError("ERR Invalid bitfield type")
			}
			offset, ok := parseBitFieldOffset(args[i+2], bits)
			if !ok {
				return protocol.EncodeError("ERR bit offset is not an integer or out of range")
			}
			value, err := strconv.ParseInt(args[i+3], 10, 64)
			if err != nil {
				return protocol.EncodeError("ERR value is not an integer or out of range")
			}
			ops = append(ops, storage.BitFieldOp{Op: "SET", Signed: signed, Bits: bits, Offset: offset, Value: value, Overflow: overflow})
			i += 4
		case "INCRBY":
			if i+3 >= len(args) {
				return protocol.EncodeError("ERR syntax error")
			}
			signed, bits, ok := parseBitFieldType(args[i+1])
			if !ok {
				return protocol.EncodeError("ERR Invalid bitfield type")
			}
			offset, ok := parseBitFieldOffset(args[i+2], bits)
			if !ok {
				return protocol.EncodeError("ERR bit offset is not an integer or out of range")
			}
			incr, err := strconv.ParseInt(args[i+3], 10, 64)
			if err != nil {
				return protocol.EncodeError("ERR value is not an integer or out of range")
			}
			ops = append(ops, storage.BitFieldOp{Op: "INCRBY", Signed: signed, Bits: bits, Offset: offset, Value: incr, Overflow: overflow})
			i += 4
		default:
			return protocol.EncodeError("ERR syntax error")
		}
	}

	procCmd := &processor.Command{
		Type:     processor.CmdBitField,
		DBIndex:  cmd.DBIndex,
		Key:      key,
		Args:     []interface{}{ops},
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.BitFieldResult)
	if res.Err != nil {
		return protocol.EncodeError(fmt.Sprintf("ERR %v", res.Err))
	}

	var out strings.Builder
	fmt.Fprintf(&out, "*%d\r\n", len(res.Values))
	for _, v := range res.Values {
		if v == nil {
			out.WriteString("$-1\r\n")
			continue
		}
		fmt.Fprintf(&out, ":%d\r\n", v.(int64))
	}
	return []byte(out.String())
}

// handleBitOp performs bitwise operations between strings
// BITOP operation destkey srckey [srckey ...]
// Operations: AND, OR, XOR, NOT
func (h *CommandHandler) handleBitOp(cmd *protocol.Command) []byte {
	if len(cmd.Args) < 4 {
		return protocol.EncodeError("ERR wrong number of arguments for 'bitop' command")
	}

	operation := strings.ToUpper(cmd.Args[1])
	destKey := cmd.Args[2]

	var args []interface{}

	// NOT operation requires exactly one source key
	if operation == "NOT" {
		if len(cmd.Args) != 4 {
			return protocol.EncodeError("ERR BITOP NOT must be called with a single source key")
		}
		srcKey := cmd.Args[3]
		args = []interface{}{operation, destKey, srcKey}
	} else {
		// AND, OR, XOR require at least one source key
		if len(cmd.Args) < 4 {
			return protocol.EncodeError("ERR wrong number of arguments for 'bitop' command")
		}
		srcKeys := cmd.Args[3:]
		args = []interface{}{operation, destKey, srcKeys}
	}

	procCmd := &processor.Command{
		Type:     processor.CmdBitOp,
		DBIndex:  cmd.DBIndex,
		Key:      destKey,
		Args:     args,
		Response: make(chan interface{}, 1),
	}
	h.processor.Submit(procCmd)
	result := <-procCmd.Response

	res := result.(processor.IntResult)
	if res.Err != nil {
		return protocol.EncodeError(fmt.Sprintf("ERR %v", res.Err))
	}

	return protocol.EncodeInteger(res.Result)
}
