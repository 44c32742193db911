package storage

import "errors"

var (
	// General errors
	ErrKeyNotFound      = errors.New("key not found")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrWrongType        = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

	// List errors
	ErrNoSuchKey       = errors.New("ERR no such key")
	ErrIndexOutOfRange = errors.New("ERR index out of range")

	// Hash errors
	ErrWrongNumArgs        = errors.New("ERR wrong number of arguments for 'hset' command")
	ErrHashValueNotInteger = errors.New("ERR hash value is not an integer")
	ErrHashValueNotFloat   = errors.New("ERR hash value is not a float")

	// Stream errors
	ErrNoSuchStream = errors.New("ERR no such key")

	// HyperLogLog errors
	ErrPrecisionMismatch = errors.New("ERR invalid HyperLogLog, precision mismatch")

	// Error-token sentinels, identified by their reply's leading word rather
	// than by errors.Is, so callers format messages directly around these.
	ErrNoPerm    = errors.New("NOPERM this user has no permissions to access one of the keys used as arguments")
	ErrOOM       = errors.New("OOM command not allowed when used memory > 'maxmemory'")
	ErrBusyKey   = errors.New("BUSYKEY Target key name already exists")
	ErrNoScript  = errors.New("NOSCRIPT No matching script")
	ErrExecAbort = errors.New("EXECABORT Transaction discarded because of previous errors")
	ErrMisconf   = errors.New("MISCONF Redis is configured to save RDB snapshots, but it's currently unable to persist to disk")
	ErrLoading   = errors.New("LOADING Redis is loading the dataset in memory")
	ErrReadOnly  = errors.New("READONLY You can't write against a read only replica")
	ErrWrongPass = errors.New("WRONGPASS invalid username-password pair or user is disabled")
	ErrNoProto   = errors.New("NOPROTO unsupported protocol version")
)
