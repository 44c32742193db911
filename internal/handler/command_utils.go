package handler

// writeCommands is the set of commands SetReadOnly rejects once read-only
// mode is on — every command that mutates the keyspace, a consumer group's
// cursor, or pub/sub delivery.
var writeCommands = map[string]bool{
	// String commands
	"SET": true, "SETEX": true, "SETNX": true, "PSETEX": true,
	"APPEND": true, "INCR": true, "DECR": true, "INCRBY": true, "DECRBY": true,
	"INCRBYFLOAT": true, "GETSET": true, "GETDEL": true, "SETRANGE": true,
	"MSET": true, "MSETNX": true,

	// Bitmap commands
	"SETBIT": true, "BITOP": true, "BITFIELD": true,

	// Key commands
	"DEL": true, "UNLINK": true, "EXPIRE": true, "EXPIREAT": true,
	"PEXPIRE": true, "PEXPIREAT": true, "PERSIST": true, "RENAME": true,
	"RENAMENX": true, "MOVE": true, "COPY": true, "RESTORE": true,

	// Hash commands
	"HSET": true, "HSETNX": true, "HMSET": true, "HDEL": true,
	"HINCRBY": true, "HINCRBYFLOAT": true,

	// List commands
	"LPUSH": true, "RPUSH": true, "LPUSHX": true, "RPUSHX": true,
	"LPOP": true, "RPOP": true, "LSET": true, "LINSERT": true,
	"LREM": true, "LTRIM": true, "RPOPLPUSH": true, "LMOVE": true,
	"BLPOP": true, "BRPOP": true, "BRPOPLPUSH": true, "BLMOVE": true,

	// Set commands
	"SADD": true, "SREM": true, "SPOP": true, "SMOVE": true,
	"SUNIONSTORE": true, "SINTERSTORE": true, "SDIFFSTORE": true,

	// Sorted set commands
	"ZADD": true, "ZREM": true, "ZINCRBY": true, "ZREMRANGEBYRANK": true,
	"ZREMRANGEBYSCORE": true, "ZREMRANGEBYLEX": true, "ZPOPMIN": true,
	"ZPOPMAX": true, "BZPOPMIN": true, "BZPOPMAX": true,

	// Geo commands
	"GEOADD": true,

	// Stream commands
	"XADD": true, "XDEL": true, "XTRIM": true, "XSETID": true,
	"XGROUP": true, "XACK": true, "XCLAIM": true, "XAUTOCLAIM": true,
	"XREADGROUP": true,

	// Bloom filter / HyperLogLog commands
	"BF.ADD": true, "BF.MADD": true, "BF.RESERVE": true,
	"PFADD": true, "PFMERGE": true,

	// Pub/Sub commands (writes to pub/sub state)
	"PUBLISH": true,

	// Admin commands
	"FLUSHDB": true, "FLUSHALL": true,
}

// IsWriteCommand reports whether cmd mutates server state; SetReadOnly uses
// it to decide which commands to reject with a READONLY error.
func IsWriteCommand(cmd string) bool {
	return writeCommands[cmd]
}
