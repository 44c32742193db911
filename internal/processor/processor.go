package processor

import (
	"context"
	"fmt"
	"time"

	"storedb/internal/storage"
)

type CommandType int

const (
	CmdSet CommandType = iota
	CmdGet
	CmdDelete
	CmdExists
	CmdKeys
	CmdFlush    // flushes the command's target database only (FLUSHDB)
	CmdFlushAll // flushes every logical database (FLUSHALL)
	CmdCleanup
	CmdExpire
	CmdTTL
	CmdIncr
	CmdIncrBy
	CmdDecr
	CmdDecrBy
	CmdSnapshot     // For AOF rewrite (returns [][]string commands)
	CmdDataSnapshot // For RDB snapshots (returns map[string]*Value)
	// List commands
	CmdLPush
	CmdRPush
	CmdLPop
	CmdRPop
	CmdLLen
	CmdLRange
	CmdLIndex
	CmdLSet
	CmdLRem
	CmdLTrim
	CmdLInsert
	CmdLPos
	// Hash commands
	CmdHSet
	CmdHGet
	CmdHMGet
	CmdHDel
	CmdHExists
	CmdHLen
	CmdHKeys
	CmdHVals
	CmdHGetAll
	CmdHSetNX
	CmdHIncrBy
	CmdHIncrByFloat
	CmdHRandField
	// Set commands
	CmdSAdd
	CmdSRem
	CmdSIsMember
	CmdSMembers
	CmdSCard
	CmdSPop
	CmdSRandMember
	CmdSUnion
	CmdSInter
	CmdSDiff
	CmdSMove
	CmdSUnionStore
	CmdSInterStore
	CmdSDiffStore
	CmdSInterCard
	// Sorted Set commands
	CmdZAdd
	CmdZRem
	CmdZScore
	CmdZRank
	CmdZRevRank
	CmdZCard
	CmdZRange
	CmdZRevRange
	CmdZRangeByScore
	CmdZRevRangeByScore
	CmdZIncrBy
	CmdZCount
	CmdZPopMin
	CmdZPopMax
	CmdZRemRangeByScore
	CmdZRemRangeByRank
	CmdZRandMember
	// Geospatial commands
	CmdGeoAdd
	CmdGeoPos
	CmdGeoDist
	CmdGeoHash
	CmdGeoRadius
	CmdGeoRadiusByMember
	CmdGeoSearch
	// Bloom Filter commands
	CmdBFReserve
	CmdBFAdd
	CmdBFMAdd
	CmdBFExists
	CmdBFMExists
	CmdBFInfo
	CmdBFCard
	// HyperLogLog commands
	CmdPFAdd
	CmdPFCount
	CmdPFMerge
	CmdPFDebug
	// Bitmap commands
	CmdSetBit
	CmdGetBit
	CmdBitCount
	CmdBitPos
	CmdBitOp
	CmdBitField
	// Pub/Sub commands
	CmdPublish
	CmdPubSubChannels
	CmdPubSubNumSub
	CmdPubSubNumPat
	CmdPubSubPatterns
	CmdSubscribe
	CmdUnsubscribe
	CmdPSubscribe
	CmdPUnsubscribe
	// Stream commands
	CmdXAdd
	CmdXLen
	CmdXRange
	CmdXRevRange
	CmdXTrim
	CmdXDel
	CmdXRead
	CmdXGroupCreate
	CmdXGroupDestroy
	CmdXGroupSetID
	CmdXReadGroup
	CmdXAck
	CmdXPending
	CmdXClaim
	CmdXAutoClaim
	CmdXInfoStream
	CmdXInfoGroups
	CmdXInfoConsumers
	// Generic key commands
	CmdType
	CmdPersist
	CmdPTTL
	CmdRename
	CmdRenameNX
	CmdRandomKey
	CmdTouch
	CmdCopy
)

// Result types for command responses
type IntResult struct {
	Result int
	Err    error
}

type StringSliceResult struct {
	Result []string
	Err    error
}

type IndexResult struct {
	Value  string
	Exists bool
	Err    error
}

type GetResult struct {
	Value  interface{}
	Exists bool
}

// LPosResult wraps an LPOS reply, which is either a single index (or -1) or
// a slice of indices depending on whether COUNT was supplied.
type LPosResult struct {
	Value interface{} // int or []int
	Err   error
}

type Int64Result struct {
	Result int64
	Err    error
}

type Float64Result struct {
	Result float64
	Err    error
}

type BoolResult struct {
	Result bool
	Err    error
}

// ZAddResult is the reply shape for ZADD's {XX|NX|GT|LT, CH, INCR} flag
// block: Count is the added/changed count in ordinary mode,
// IncrScore/IncrOK carry the INCR-mode result (IncrOK false means the
// member was skipped by NX/XX/GT/LT, which ZADD ... INCR reports as nil).
type ZAddResult struct {
	Count     int
	IncrScore float64
	IncrOK    bool
	Err       error
}

type StringResult struct {
	Result string
	Err    error
}

// ZMembersResult wraps a []storage.ZSetMember reply (ZRANDMEMBER) with an
// error channel, distinct from the bare []storage.ZSetMember sent by the
// range commands since ZRANDMEMBER needs to report WRONGTYPE.
type ZMembersResult struct {
	Members []storage.ZSetMember
	Err     error
}

type BoolSliceResult struct {
	Results []bool
	Err     error
}

type InterfaceSliceResult struct {
	Result []interface{}
	Err    error
}

// XAddResult is XADD's reply shape: the assigned ID, whether the stream
// existed or was created (Exists false + no error means NOMKSTREAM hit a
// missing stream and the reply must be a nil bulk string).
type XAddResult struct {
	ID     storage.StreamID
	Exists bool
	Err    error
}

// StreamEntriesResult carries a flat entry list (XRANGE/XREVRANGE/XCLAIM/...).
type StreamEntriesResult struct {
	Entries []storage.StreamEntry
	Err     error
}

// StreamReadResult carries XREAD/XREADGROUP's per-key entry map.
type StreamReadResult struct {
	Data map[string][]storage.StreamEntry
	Err  error
}

// PendingSummaryResult carries XPENDING's no-range reply.
type PendingSummaryResult struct {
	Summary storage.PendingSummary
	Err     error
}

// PendingRangeResult carries XPENDING's ranged reply.
type PendingRangeResult struct {
	Rows []storage.PendingEntryView
	Err  error
}

// StreamInfoResult carries XINFO STREAM's reply.
type StreamInfoResult struct {
	Info storage.XStreamInfo
	Err  error
}

// ConsumerInfosResult carries XINFO CONSUMERS' reply.
type ConsumerInfosResult struct {
	Infos []storage.ConsumerInfo
	Err   error
}

// GroupInfosResult carries XINFO GROUPS' reply.
type GroupInfosResult struct {
	Groups []storage.GroupInfo
	Err    error
}

// AutoClaimResult carries XAUTOCLAIM's three-part reply.
type AutoClaimResult struct {
	Claimed []storage.StreamEntry
	Deleted []storage.StreamID
	Next    storage.StreamID
	Err     error
}

type Command struct {
	Type     CommandType
	DBIndex  int // logical database this command targets
	Key      string
	Value    interface{}
	Expiry   *time.Time
	Args     []interface{} // Additional arguments for complex commands
	ClientID int64         // Client ID for pub/sub subscriptions
	Response chan interface{}
}

// GetSubscriberID returns a string representation of the client ID for pub/sub
func (c *Command) GetSubscriberID() string {
	if c.ClientID == 0 {
		return "default"
	}
	return fmt.Sprintf("client:%d", c.ClientID)
}

// CommandExecutor is a function type for command executors
type CommandExecutor func(cmd *Command)

type Processor struct {
	stores      []*storage.Store // one per logical database, index 0..len-1
	commandChan chan *Command
	ctx         context.Context
	cancel      context.CancelFunc
	executors   map[CommandType]CommandExecutor
}

// NewProcessor starts a single-actor dispatch goroutine fronting the given
// set of per-database stores: one writer goroutine, no lock-ordering
// protocol needed. stores[i].DBIndex must equal i.
func NewProcessor(stores []*storage.Store) *Processor {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Processor{
		stores:      stores,
		commandChan: make(chan *Command, 1000),
		ctx:         ctx,
		cancel:      cancel,
	}
	p.registerExecutors()
	go p.run()
	go p.periodicCleanup()
	return p
}

// db resolves the store a command targets, clamping an out-of-range index to
// database 0 defensively (the dispatcher validates SELECT bounds already).
func (p *Processor) db(cmd *Command) *storage.Store {
	if cmd.DBIndex < 0 || cmd.DBIndex >= len(p.stores) {
		return p.stores[0]
	}
	return p.stores[cmd.DBIndex]
}

// GetStore returns database 0's store (for pub/sub wiring, which is shared
// server-wide rather than per-database — see storage.PubSub).
func (p *Processor) GetStore() *storage.Store {
	return p.stores[0]
}

// NumDBs returns the number of logical databases this processor serves.
func (p *Processor) NumDBs() int {
	return len(p.stores)
}

// StoreAt returns the store for a specific database index, for callers
// (persistence, INFO, DBSIZE) that operate across all databases.
func (p *Processor) StoreAt(index int) *storage.Store {
	if index < 0 || index >= len(p.stores) {
		return nil
	}
	return p.stores[index]
}

// registerExecutors initializes the executor map
func (p *Processor) registerExecutors() {
	p.executors = make(map[CommandType]CommandExecutor)

	// String/Basic commands
	p.registerStringExecutors()

	// List commands
	p.registerListExecutors()

	// Hash commands
	p.registerHashExecutors()

	// Set commands
	p.registerSetExecutors()

	// Sorted Set commands
	p.registerZSetExecutors()

	// Geospatial commands
	p.registerGeoExecutors()

	// Bloom Filter commands
	p.registerBloomExecutors()

	// HyperLogLog commands
	p.registerHyperLogLogExecutors()

	// Bitmap commands
	p.registerBitmapExecutors()

	// Pub/Sub commands
	p.registerPubSubExecutors()

	// Stream commands
	p.registerStreamExecutors()

	// Generic key commands
	p.registerKeyExecutors()

	// Snapshot commands for AOF rewrite and RDB snapshots
	p.executors[CmdSnapshot] = p.executeSnapshot
	p.executors[CmdDataSnapshot] = p.executeDataSnapshot
}

// registerKeyExecutors registers generic key-space command executors
func (p *Processor) registerKeyExecutors() {
	keyCmds := []CommandType{
		CmdType, CmdPersist, CmdPTTL, CmdRename, CmdRenameNX,
		CmdRandomKey, CmdTouch, CmdCopy,
	}
	for _, cmdType := range keyCmds {
		p.executors[cmdType] = p.executeKeyCommand
	}
}

// registerStreamExecutors registers stream command executors
func (p *Processor) registerStreamExecutors() {
	streamCmds := []CommandType{
		CmdXAdd, CmdXLen, CmdXRange, CmdXRevRange, CmdXTrim, CmdXDel, CmdXRead,
		CmdXGroupCreate, CmdXGroupDestroy, CmdXGroupSetID, CmdXReadGroup,
		CmdXAck, CmdXPending, CmdXClaim, CmdXAutoClaim,
		CmdXInfoStream, CmdXInfoGroups, CmdXInfoConsumers,
	}
	for _, cmdType := range streamCmds {
		p.executors[cmdType] = p.executeStreamCommand
	}
}

// registerStringExecutors registers string command executors
func (p *Processor) registerStringExecutors() {
	stringCmds := []CommandType{
		CmdSet, CmdGet, CmdDelete, CmdExists,
		CmdKeys, CmdFlush, CmdFlushAll, CmdCleanup, CmdExpire, CmdTTL,
		CmdIncr, CmdIncrBy, CmdDecr, CmdDecrBy,
	}
	for _, cmdType := range stringCmds {
		p.executors[cmdType] = p.executeStringCommand
	}
}

// registerListExecutors registers list command executors
func (p *Processor) registerListExecutors() {
	listCmds := []CommandType{
		CmdLPush, CmdRPush, CmdLPop, CmdRPop, CmdLLen,
		CmdLRange, CmdLIndex, CmdLSet, CmdLRem, CmdLTrim, CmdLInsert, CmdLPos,
	}
	for _, cmdType := range listCmds {
		p.executors[cmdType] = p.executeListCommand
	}
}

// registerHashExecutors registers hash command executors
func (p *Processor) registerHashExecutors() {
	hashCmds := []CommandType{
		CmdHSet, CmdHGet, CmdHMGet, CmdHDel, CmdHExists,
		CmdHLen, CmdHKeys, CmdHVals, CmdHGetAll, CmdHSetNX,
		CmdHIncrBy, CmdHIncrByFloat, CmdHRandField,
	}
	for _, cmdType := range hashCmds {
		p.executors[cmdType] = p.executeHashCommand
	}
}

// registerSetExecutors registers set command executors
func (p *Processor) registerSetExecutors() {
	setCmds := []CommandType{
		CmdSAdd, CmdSRem, CmdSIsMember, CmdSMembers, CmdSCard,
		CmdSPop, CmdSRandMember, CmdSUnion, CmdSInter, CmdSDiff,
		CmdSMove, CmdSUnionStore, CmdSInterStore, CmdSDiffStore, CmdSInterCard,
	}
	for _, cmdType := range setCmds {
		p.executors[cmdType] = p.executeSetCommand
	}
}

// registerZSetExecutors registers sorted set command executors
func (p *Processor) registerZSetExecutors() {
	zsetCmds := []CommandType{
		CmdZAdd, CmdZRem, CmdZScore, CmdZRank, CmdZRevRank,
		CmdZCard, CmdZRange, CmdZRevRange, CmdZRangeByScore, CmdZRevRangeByScore,
		CmdZIncrBy, CmdZCount, CmdZPopMin, CmdZPopMax,
		CmdZRemRangeByScore, CmdZRemRangeByRank, CmdZRandMember,
	}
	for _, cmdType := range zsetCmds {
		p.executors[cmdType] = p.executeZSetCommand
	}
}

// registerGeoExecutors registers geospatial command executors
func (p *Processor) registerGeoExecutors() {
	geoCmds := []CommandType{
		CmdGeoAdd, CmdGeoPos, CmdGeoDist, CmdGeoHash,
		CmdGeoRadius, CmdGeoRadiusByMember, CmdGeoSearch,
	}
	for _, cmdType := range geoCmds {
		p.executors[cmdType] = p.executeGeoCommand
	}
}

// registerBloomExecutors registers Bloom filter command executors
func (p *Processor) registerBloomExecutors() {
	bloomCmds := []CommandType{
		CmdBFReserve, CmdBFAdd, CmdBFMAdd,
		CmdBFExists, CmdBFMExists, CmdBFInfo, CmdBFCard,
	}
	for _, cmdType := range bloomCmds {
		p.executors[cmdType] = p.executeBloomCommand
	}
}

// registerHyperLogLogExecutors registers HyperLogLog command executors
func (p *Processor) registerHyperLogLogExecutors() {
	hllCmds := []CommandType{
		CmdPFAdd, CmdPFCount, CmdPFMerge, CmdPFDebug,
	}
	for _, cmdType := range hllCmds {
		p.executors[cmdType] = p.executeHyperLogLogCommand
	}
}

// registerBitmapExecutors registers bitmap command executors
func (p *Processor) registerBitmapExecutors() {
	bitmapCmds := []CommandType{
		CmdSetBit, CmdGetBit, CmdBitCount, CmdBitPos, CmdBitOp, CmdBitField,
	}
	for _, cmdType := range bitmapCmds {
		p.executors[cmdType] = p.executeBitmapCommand
	}
}

// registerPubSubExecutors registers pub/sub command executors
func (p *Processor) registerPubSubExecutors() {
	pubsubCmds := []CommandType{
		CmdPublish, CmdPubSubChannels, CmdPubSubNumSub, CmdPubSubNumPat, CmdPubSubPatterns,
		CmdSubscribe, CmdUnsubscribe, CmdPSubscribe, CmdPUnsubscribe,
	}
	for _, cmdType := range pubsubCmds {
		p.executors[cmdType] = p.executePubSubCommand
	}
}

func (p *Processor) run() {
	for {
		select {
		case <-p.ctx.Done():
			// Drain remaining commands before exiting
			p.drainCommands()
			return
		case cmd := <-p.commandChan:
			p.executeCommand(cmd)
		}
	}
}

func (p *Processor) drainCommands() {
	for {
		select {
		case cmd := <-p.commandChan:
			p.executeCommand(cmd)
		default:
			// Channel empty
			return
		}
	}
}

func (p *Processor) executeCommand(cmd *Command) {
	if executor, exists := p.executors[cmd.Type]; exists {
		executor(cmd)
	}
}

func (p *Processor) periodicCleanup() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			cmd := &Command{
				Type:     CmdCleanup,
				Response: make(chan interface{}, 1),
			}
			p.commandChan <- cmd
			<-cmd.Response
		}
	}
}

func (p *Processor) Submit(cmd *Command) {
	p.commandChan <- cmd
}

func (p *Processor) Shutdown() {
	p.cancel()
	close(p.commandChan)
}

// Direct methods for blocking operations
// These submit commands and wait for results synchronously

// LPop removes and returns the first element from a list in the given database
func (p *Processor) LPop(dbIndex int, key string) (string, bool) {
	cmd := &Command{
		Type:     CmdLPop,
		DBIndex:  dbIndex,
		Key:      key,
		Args:     []interface{}{1}, // Pop 1 element
		Response: make(chan interface{}, 1),
	}
	p.Submit(cmd)
	result := <-cmd.Response

	res := result.(StringSliceResult)
	if res.Err != nil || len(res.Result) == 0 {
		return "", false
	}
	return res.Result[0], true
}

// RPop removes and returns the last element from a list in the given database
func (p *Processor) RPop(dbIndex int, key string) (string, bool) {
	cmd := &Command{
		Type:     CmdRPop,
		DBIndex:  dbIndex,
		Key:      key,
		Args:     []interface{}{1}, // Pop 1 element
		Response: make(chan interface{}, 1),
	}
	p.Submit(cmd)
	result := <-cmd.Response

	res := result.(StringSliceResult)
	if res.Err != nil || len(res.Result) == 0 {
		return "", false
	}
	return res.Result[0], true
}

// LPush adds elements to the head of a list in the given database
func (p *Processor) LPush(dbIndex int, key string, values []string) int {
	cmd := &Command{
		Type:     CmdLPush,
		DBIndex:  dbIndex,
		Key:      key,
		Args:     []interface{}{values},
		Response: make(chan interface{}, 1),
	}
	p.Submit(cmd)
	result := <-cmd.Response

	res := result.(IntResult)
	if res.Err != nil {
		return 0
	}
	return res.Result
}

// RPush adds elements to the tail of a list in the given database
func (p *Processor) RPush(dbIndex int, key string, values []string) int {
	cmd := &Command{
		Type:     CmdRPush,
		DBIndex:  dbIndex,
		Key:      key,
		Args:     []interface{}{values},
		Response: make(chan interface{}, 1),
	}
	p.Submit(cmd)
	result := <-cmd.Response

	res := result.(IntResult)
	if res.Err != nil {
		return 0
	}
	return res.Result
}

// LLen returns the length of a list in the given database
func (p *Processor) LLen(dbIndex int, key string) int {
	cmd := &Command{
		Type:     CmdLLen,
		DBIndex:  dbIndex,
		Key:      key,
		Response: make(chan interface{}, 1),
	}
	p.Submit(cmd)
	result := <-cmd.Response

	res := result.(IntResult)
	if res.Err != nil {
		return 0
	}
	return res.Result
}

// GetSnapshot returns a snapshot of all data as raw storage data for AOF rewrite
// Returns shallow copy with COW - filtering and conversion happens in background
func (p *Processor) GetSnapshot() map[string]*storage.Value {
	cmd := &Command{
		Type:     CmdSnapshot,
		Response: make(chan interface{}, 1),
	}
	p.Submit(cmd)
	result := <-cmd.Response
	return result.(map[string]*storage.Value)
}

// GetDataSnapshot returns a shallow copy snapshot of raw storage data for RDB snapshots
// This is used by BGSAVE to get the actual data structures, not command representations
// Uses copy-on-write optimization - MUST call ReleaseSnapshot() when done!
func (p *Processor) GetDataSnapshot() map[string]*storage.Value {
	cmd := &Command{
		Type:     CmdDataSnapshot,
		Response: make(chan interface{}, 1),
	}
	p.Submit(cmd)
	result := <-cmd.Response
	return result.(map[string]*storage.Value)
}

// ReleaseSnapshot decrements the snapshot reference counter (COW optimization)
// MUST be called after snapshot operations complete (AOF rewrite, BGSAVE)
func (p *Processor) ReleaseSnapshot() {
	p.stores[0].ReleaseSnapshot()
}
