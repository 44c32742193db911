// Package notify implements keyspace notifications:
// publishing "a key changed" events to the two pub/sub channel families
// Redis clients subscribe to, gated by the notify-keyspace-events flag
// mask.
package notify

import (
	"fmt"
	"strings"

	"storedb/internal/storage"
)

// Flags is the parsed notify-keyspace-events mask. Each field corresponds
// to one mask letter; Keyspace/Keyevent gate the two channel families
// (K and E) while the rest gate event classes.
type Flags struct {
	Keyspace bool // K
	Keyevent bool // E
	Generic  bool // g
	String   bool // $
	List     bool // l
	Set      bool // s
	Hash     bool // h
	ZSet     bool // z
	Expired  bool // x
	Evicted  bool // e
	Stream   bool // t
	New      bool // n
	KeyMiss  bool // m
}

// ParseFlags parses a notify-keyspace-events mask string such as "KEA" or
// "Elg". Unknown letters are ignored. An empty mask disables notifications.
func ParseFlags(mask string) Flags {
	var f Flags
	for _, c := range mask {
		switch c {
		case 'K':
			f.Keyspace = true
		case 'E':
			f.Keyevent = true
		case 'g':
			f.Generic = true
		case '$':
			f.String = true
		case 'l':
			f.List = true
		case 's':
			f.Set = true
		case 'h':
			f.Hash = true
		case 'z':
			f.ZSet = true
		case 'x':
			f.Expired = true
		case 'e':
			f.Evicted = true
		case 't':
			f.Stream = true
		case 'n':
			f.New = true
		case 'm':
			f.KeyMiss = true
		case 'A':
			f.Generic, f.String, f.List = true, true, true
			f.Set, f.Hash, f.ZSet = true, true, true
			f.Expired, f.Evicted, f.Stream = true, true, true
		}
	}
	return f
}

// Enabled reports whether class is turned on by the mask, and whether
// either channel family is active at all.
func (f Flags) Enabled(class byte) bool {
	if !f.Keyspace && !f.Keyevent {
		return false
	}
	switch class {
	case 'g':
		return f.Generic
	case '$':
		return f.String
	case 'l':
		return f.List
	case 's':
		return f.Set
	case 'h':
		return f.Hash
	case 'z':
		return f.ZSet
	case 'x':
		return f.Expired
	case 'e':
		return f.Evicted
	case 't':
		return f.Stream
	case 'n':
		return f.New
	case 'm':
		return f.KeyMiss
	default:
		return false
	}
}

// Publish fires the keyspace/keyevent pair for one mutation, if the mask
// enables class. event is the command-ish name ("set", "del", "expired",
// "evicted", "lpush", ...); key is the affected key; class is the mask
// letter governing this event family.
func Publish(ps *storage.PubSub, db int, flags Flags, event string, key string, class byte) {
	if ps == nil || !flags.Enabled(class) {
		return
	}
	if flags.Keyspace {
		ps.Publish(fmt.Sprintf("__keyspace@%d__:%s", db, key), event)
	}
	if flags.Keyevent {
		ps.Publish(fmt.Sprintf("__keyevent@%d__:%s", db, event), key)
	}
}

// ClassForCommand maps a command name to its notify-keyspace-events class
// letter, used by callers that only know the verb.
func ClassForCommand(cmdName string) byte {
	switch strings.ToUpper(cmdName) {
	case "DEL", "RENAME", "MOVE", "COPY", "RESTORE", "EXPIRE", "PEXPIRE", "EXPIREAT", "PEXPIREAT", "PERSIST":
		return 'g'
	case "SET", "SETRANGE", "INCRBY", "INCRBYFLOAT", "APPEND", "GETSET", "GETDEL", "MSET":
		return '$'
	case "LPUSH", "RPUSH", "LPOP", "RPOP", "LSET", "LINSERT", "LREM", "LTRIM":
		return 'l'
	case "SADD", "SREM", "SPOP", "SINTERSTORE", "SUNIONSTORE", "SDIFFSTORE", "SMOVE":
		return 's'
	case "HSET", "HDEL", "HINCRBY", "HINCRBYFLOAT", "HSETNX":
		return 'h'
	case "ZADD", "ZREM", "ZINCRBY", "ZPOPMIN", "ZPOPMAX", "ZREMRANGEBYSCORE", "ZREMRANGEBYRANK", "ZDIFFSTORE":
		return 'z'
	case "XADD", "XTRIM", "XDEL", "XSETID", "XGROUP", "XCLAIM", "XAUTOCLAIM":
		return 't'
	default:
		return 'g'
	}
}
