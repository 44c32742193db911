package server

import (
	"time"

	"storedb/internal/aof"
)

// RDBSavePoint defines automatic RDB save conditions (Redis-style)
type RDBSavePoint struct {
	Seconds int // Time interval in seconds
	Changes int // Minimum number of key changes
}

// Config holds everything NewRedisServer needs to stand up a listener: the
// network surface, persistence policy, and the subset of CONFIG-settable
// keyspace behavior (databases, eviction, notifications). Replication and
// clustering are out of scope and have no fields here.
type Config struct {
	Host            string
	Port            int
	MaxConnections  int
	ReadBufferSize  int
	WriteBufferSize int

	// Pipeline configuration
	MaxPipelineCommands int           // Max commands in a single pipeline batch
	SlowLogThreshold    time.Duration // Commands slower than this are logged
	CommandTimeout      time.Duration // Max time for a single command before client disconnect
	ReadTimeout         time.Duration // Timeout for reading client data (idle timeout)
	PipelineTimeout     time.Duration // Short timeout for waiting for in-flight pipelined commands

	// AOF (Append-Only File) configuration
	AOF aof.Config

	// RDB (Redis Database) configuration
	RDBFilepath  string       // Path to RDB dump file
	RDBSavePoint RDBSavePoint // Automatic save conditions

	// Databases is the number of logical, SELECT-able keyspaces.
	Databases int

	// Eviction. MaxMemory of 0 disables eviction entirely.
	MaxMemory        int64
	MaxMemoryPolicy  string // noeviction, allkeys-lru, volatile-lru, allkeys-lfu, volatile-lfu, allkeys-random, volatile-random, volatile-ttl
	MaxMemorySamples int

	// NotifyKeyspaceEvents is the notify-keyspace-events flag-mask string
	// e.g. "KEA" or "Elg".
	NotifyKeyspaceEvents string

	// RequirePass, when non-empty, requires AUTH before other commands run.
	RequirePass string

	// ACLFilePath, when non-empty, loads ACL user definitions at startup
	// used by ACL enforcement.
	ACLFilePath string

	// ReadOnly rejects every write command with a READONLY error, the
	// standalone equivalent of replica-read-only with no replication link
	// to make it automatic.
	ReadOnly bool
}

func DefaultConfig() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            6379,
		MaxConnections:  10000,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,

		// Pipeline defaults
		MaxPipelineCommands: 1000,
		SlowLogThreshold:    10 * time.Millisecond, // Log commands slower than 10ms
		CommandTimeout:      5 * time.Second,       // Disconnect after 5s for a single command
		ReadTimeout:         5 * time.Second,       // 5 second read timeout for partial commands
		PipelineTimeout:     1 * time.Millisecond,  // Short timeout for waiting for in-flight pipelined commands

		// AOF defaults
		AOF: aof.DefaultConfig(),

		// RDB defaults (Redis-style: save after 60 seconds if 1000 keys changed)
		RDBFilepath: "dump.rdb",
		RDBSavePoint: RDBSavePoint{
			Seconds: 60,
			Changes: 1000,
		},

		Databases: 16,

		MaxMemory:        0,
		MaxMemoryPolicy:  "noeviction",
		MaxMemorySamples: 5,
	}
}
