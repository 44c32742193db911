// Package acl implements the access control layer: named
// users with passwords, command-category permissions, and key/channel
// glob patterns, checked before a command is allowed to run.
package acl

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
)

// commandCategories groups command names the way ACL "+@category" and
// "-@category" directives reference them. Only the categories the command
// surface actually needs are modeled.
var commandCategories = map[string][]string{
	"read":       {"GET", "MGET", "STRLEN", "EXISTS", "TTL", "PTTL", "LRANGE", "LLEN", "HGET", "HGETALL", "SMEMBERS", "SISMEMBER", "ZRANGE", "ZSCORE", "ZCARD", "XRANGE", "XLEN"},
	"write":      {"SET", "SETEX", "SETNX", "DEL", "EXPIRE", "LPUSH", "RPUSH", "LPOP", "RPOP", "HSET", "HDEL", "SADD", "SREM", "ZADD", "ZREM", "XADD", "XDEL", "XTRIM"},
	"keyspace":   {"DEL", "EXPIRE", "PEXPIRE", "EXPIREAT", "PERSIST", "RENAME", "TYPE", "SCAN", "KEYS"},
	"dangerous":  {"FLUSHALL", "FLUSHDB", "SHUTDOWN", "CONFIG", "DEBUG", "CLUSTER"},
	"admin":      {"CONFIG", "SHUTDOWN", "ACL", "SLAVEOF", "REPLICAOF", "DEBUG", "MONITOR", "BGSAVE", "BGREWRITEAOF"},
	"connection": {"AUTH", "PING", "ECHO", "SELECT", "HELLO", "RESET", "QUIT"},
	"pubsub":     {"SUBSCRIBE", "UNSUBSCRIBE", "PSUBSCRIBE", "PUNSUBSCRIBE", "PUBLISH", "PUBSUB"},
	"transaction": {"MULTI", "EXEC", "DISCARD", "WATCH", "UNWATCH"},
	"stream":     {"XADD", "XREAD", "XRANGE", "XREVRANGE", "XLEN", "XTRIM", "XDEL", "XGROUP", "XREADGROUP", "XACK", "XCLAIM", "XAUTOCLAIM", "XPENDING", "XINFO"},
}

func categoryContains(category, cmdName string) bool {
	cmds, ok := commandCategories[strings.ToLower(category)]
	if !ok {
		return false
	}
	cmdName = strings.ToUpper(cmdName)
	for _, c := range cmds {
		if c == cmdName {
			return true
		}
	}
	return false
}

// keyPattern is a glob pattern plus read/write flags. SetUser parses only
// ~pattern, which sets both flags; no %R~/%W~ form is parsed, and CheckKey
// matches the glob without consulting either flag.
type keyPattern struct {
	g           glob.Glob
	allowRead   bool
	allowWrite  bool
}

// User is one ACL identity.
type User struct {
	Name            string
	Enabled         bool
	NoPass          bool
	PasswordHashes  map[string]struct{} // sha256 hex digests
	AllKeys         bool
	KeyPatterns     []keyPattern
	AllChannels     bool
	ChannelPatterns []glob.Glob
	AllCommands     bool
	NoCommands      bool
	AllowedCommands map[string]bool
	DeniedCommands  map[string]bool
	AllowedCats     map[string]bool
	DeniedCats      map[string]bool
}

func newUser(name string) *User {
	return &User{
		Name:            name,
		PasswordHashes:  make(map[string]struct{}),
		AllowedCommands: make(map[string]bool),
		DeniedCommands:  make(map[string]bool),
		AllowedCats:     make(map[string]bool),
		DeniedCats:      make(map[string]bool),
	}
}

func hashPassword(pw string) string {
	sum := sha256.Sum256([]byte(pw))
	return hex.EncodeToString(sum[:])
}

// LogEntry is one ACL LOG row: a denied command or failed auth.
type LogEntry struct {
	ID        string
	Reason    string // "command", "key", "channel", "auth"
	Context   string
	Object    string
	Username  string
	Timestamp time.Time
}

// Manager holds every ACL user and the bounded denial log.
type Manager struct {
	mu       sync.RWMutex
	users    map[string]*User
	log      []LogEntry
	logLimit int
}

// NewManager returns a Manager seeded with Redis's "default" user: enabled,
// no password, full access to keys, channels, and commands.
func NewManager() *Manager {
	def := newUser("default")
	def.Enabled = true
	def.NoPass = true
	def.AllKeys = true
	def.AllChannels = true
	def.AllCommands = true

	return &Manager{
		users:    map[string]*User{"default": def},
		logLimit: 128,
	}
}

// SetDefaultUserPassword requires a password on the default user, matching
// `requirepass` in a real server's config file.
func (m *Manager) SetDefaultUserPassword(password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	def := m.users["default"]
	def.NoPass = false
	def.PasswordHashes = map[string]struct{}{hashPassword(password): {}}
}

// Authenticate verifies a username/password pair. A NoPass user
// authenticates with any password (including empty).
func (m *Manager) Authenticate(username, password string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok || !u.Enabled {
		return false
	}
	if u.NoPass {
		return true
	}
	_, ok = u.PasswordHashes[hashPassword(password)]
	return ok
}

// CheckCommand reports whether username may run cmdName.
func (m *Manager) CheckCommand(username, cmdName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok || !u.Enabled {
		return false
	}
	cmdName = strings.ToUpper(cmdName)
	if u.DeniedCommands[cmdName] {
		return false
	}
	for cat, denied := range u.DeniedCats {
		if denied && categoryContains(cat, cmdName) {
			return false
		}
	}
	if u.AllCommands {
		return true
	}
	if u.AllowedCommands[cmdName] {
		return true
	}
	for cat, allowed := range u.AllowedCats {
		if allowed && categoryContains(cat, cmdName) {
			return true
		}
	}
	return false
}

// CheckKey reports whether username may access key.
func (m *Manager) CheckKey(username, key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return false
	}
	if u.AllKeys {
		return true
	}
	for _, kp := range u.KeyPatterns {
		if kp.g != nil && kp.g.Match(key) {
			return true
		}
	}
	return false
}

// CheckChannel reports whether username may publish/subscribe to channel.
func (m *Manager) CheckChannel(username, channel string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return false
	}
	if u.AllChannels {
		return true
	}
	for _, g := range u.ChannelPatterns {
		if g.Match(channel) {
			return true
		}
	}
	return false
}

// RecordDenial appends a bounded ACL LOG entry.
func (m *Manager) RecordDenial(reason, context, object, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := LogEntry{
		ID:        uuid.NewString(),
		Reason:    reason,
		Context:   context,
		Object:    object,
		Username:  username,
		Timestamp: time.Now(),
	}
	m.log = append(m.log, entry)
	if len(m.log) > m.logLimit {
		m.log = m.log[len(m.log)-m.logLimit:]
	}
}

// Log returns the current denial log, newest last.
func (m *Manager) Log() []LogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LogEntry, len(m.log))
	copy(out, m.log)
	return out
}

// ResetLog clears the denial log (ACL LOG RESET).
func (m *Manager) ResetLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = nil
}

// ListUsers returns all user names.
func (m *Manager) ListUsers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.users))
	for name := range m.users {
		names = append(names, name)
	}
	return names
}

// GetUser returns the manager's own *User for the name, if present (not a
// copy: changes through it change the stored user).
func (m *Manager) GetUser(name string) (*User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[name]
	return u, ok
}

// DeleteUser removes a user (ACL DELUSER); the default user cannot be
// removed.
func (m *Manager) DeleteUser(name string) bool {
	if name == "default" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[name]; !ok {
		return false
	}
	delete(m.users, name)
	return true
}

// SetUser creates or updates a user from ACL SETUSER-style rule tokens
// (e.g. "on", "nopass", ">secret", "~foo:*", "&news.*", "+@read", "-flushall").
func (m *Manager) SetUser(name string, rules []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[name]
	if !ok {
		u = newUser(name)
		m.users[name] = u
	}
	for _, rule := range rules {
		if err := applyRule(u, rule); err != nil {
			return err
		}
	}
	return nil
}

func applyRule(u *User, rule string) error {
	switch {
	case rule == "on":
		u.Enabled = true
	case rule == "off":
		u.Enabled = false
	case rule == "nopass":
		u.NoPass = true
		u.PasswordHashes = map[string]struct{}{}
	case rule == "resetpass":
		u.NoPass = false
		u.PasswordHashes = map[string]struct{}{}
	case rule == "allkeys" || rule == "~*":
		u.AllKeys = true
	case rule == "resetkeys":
		u.AllKeys = false
		u.KeyPatterns = nil
	case rule == "allchannels" || rule == "&*":
		u.AllChannels = true
	case rule == "resetchannels":
		u.AllChannels = false
		u.ChannelPatterns = nil
	case rule == "allcommands" || rule == "+@all":
		u.AllCommands = true
		u.NoCommands = false
	case rule == "nocommands" || rule == "-@all":
		u.AllCommands = false
		u.NoCommands = true
		u.AllowedCommands = make(map[string]bool)
		u.AllowedCats = make(map[string]bool)
	case strings.HasPrefix(rule, ">"):
		sum := sha256.Sum256([]byte(rule[1:]))
		u.PasswordHashes[hex.EncodeToString(sum[:])] = struct{}{}
		u.NoPass = false
	case strings.HasPrefix(rule, "#"):
		u.PasswordHashes[strings.ToLower(rule[1:])] = struct{}{}
		u.NoPass = false
	case strings.HasPrefix(rule, "~"):
		g, err := glob.Compile(rule[1:], ':')
		if err != nil {
			return fmt.Errorf("ERR invalid key pattern: %s", rule)
		}
		u.KeyPatterns = append(u.KeyPatterns, keyPattern{g: g, allowRead: true, allowWrite: true})
	case strings.HasPrefix(rule, "&"):
		g, err := glob.Compile(rule[1:], '.')
		if err != nil {
			return fmt.Errorf("ERR invalid channel pattern: %s", rule)
		}
		u.ChannelPatterns = append(u.ChannelPatterns, g)
	case strings.HasPrefix(rule, "+@"):
		u.AllowedCats[rule[2:]] = true
		delete(u.DeniedCats, rule[2:])
	case strings.HasPrefix(rule, "-@"):
		u.DeniedCats[rule[2:]] = true
		delete(u.AllowedCats, rule[2:])
	case strings.HasPrefix(rule, "+"):
		cmd := strings.ToUpper(rule[1:])
		u.AllowedCommands[cmd] = true
		delete(u.DeniedCommands, cmd)
	case strings.HasPrefix(rule, "-"):
		cmd := strings.ToUpper(rule[1:])
		u.DeniedCommands[cmd] = true
		delete(u.AllowedCommands, cmd)
	default:
		return fmt.Errorf("ERR unsupported ACL rule: %s", rule)
	}
	return nil
}

// LoadFile parses a Redis-style ACL file: one "user <name> <rules...>" line
// per user, blank lines and "#"-comments ignored.
func (m *Manager) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || strings.ToLower(fields[0]) != "user" {
			continue
		}
		if err := m.SetUser(fields[1], fields[2:]); err != nil {
			return err
		}
	}
	return nil
}
