package processor

import "storedb/internal/storage"

// executeStreamCommand executes stream log and consumer-group commands
func (p *Processor) executeStreamCommand(cmd *Command) {
	switch cmd.Type {
	case CmdXAdd:
		p.executeXAdd(cmd)
	case CmdXLen:
		p.executeXLen(cmd)
	case CmdXRange:
		p.executeXRange(cmd)
	case CmdXRevRange:
		p.executeXRevRange(cmd)
	case CmdXTrim:
		p.executeXTrim(cmd)
	case CmdXDel:
		p.executeXDel(cmd)
	case CmdXRead:
		p.executeXRead(cmd)
	case CmdXGroupCreate:
		p.executeXGroupCreate(cmd)
	case CmdXGroupDestroy:
		p.executeXGroupDestroy(cmd)
	case CmdXGroupSetID:
		p.executeXGroupSetID(cmd)
	case CmdXReadGroup:
		p.executeXReadGroup(cmd)
	case CmdXAck:
		p.executeXAck(cmd)
	case CmdXPending:
		p.executeXPending(cmd)
	case CmdXClaim:
		p.executeXClaim(cmd)
	case CmdXAutoClaim:
		p.executeXAutoClaim(cmd)
	case CmdXInfoStream:
		p.executeXInfoStream(cmd)
	case CmdXInfoGroups:
		p.executeXInfoGroups(cmd)
	case CmdXInfoConsumers:
		p.executeXInfoConsumers(cmd)
	default:
		cmd.Response <- IntResult{Result: 0, Err: nil}
	}
}

func (p *Processor) executeXAdd(cmd *Command) {
	requestedID := cmd.Args[0].(string)
	fields := cmd.Args[1].([]string)
	opts := cmd.Args[2].(storage.XAddOptions)
	id, _, created, err := p.db(cmd).XAdd(cmd.Key, requestedID, fields, opts)
	cmd.Response <- XAddResult{ID: id, Exists: created, Err: err}
}

func (p *Processor) executeXLen(cmd *Command) {
	n, err := p.db(cmd).XLen(cmd.Key)
	cmd.Response <- IntResult{Result: n, Err: err}
}

func (p *Processor) executeXRange(cmd *Command) {
	start := cmd.Args[0].(storage.StreamID)
	end := cmd.Args[1].(storage.StreamID)
	count := cmd.Args[2].(int)
	entries, err := p.db(cmd).XRange(cmd.Key, start, end, count)
	cmd.Response <- StreamEntriesResult{Entries: entries, Err: err}
}

func (p *Processor) executeXRevRange(cmd *Command) {
	start := cmd.Args[0].(storage.StreamID)
	end := cmd.Args[1].(storage.StreamID)
	count := cmd.Args[2].(int)
	entries, err := p.db(cmd).XRevRange(cmd.Key, start, end, count)
	cmd.Response <- StreamEntriesResult{Entries: entries, Err: err}
}

func (p *Processor) executeXTrim(cmd *Command) {
	opts := cmd.Args[0].(storage.XAddOptions)
	removed, err := p.db(cmd).XTrim(cmd.Key, opts)
	cmd.Response <- IntResult{Result: removed, Err: err}
}

func (p *Processor) executeXDel(cmd *Command) {
	ids := cmd.Args[0].([]storage.StreamID)
	removed, err := p.db(cmd).XDel(cmd.Key, ids)
	cmd.Response <- IntResult{Result: removed, Err: err}
}

func (p *Processor) executeXRead(cmd *Command) {
	keys := cmd.Args[0].([]string)
	afterIDs := cmd.Args[1].([]storage.StreamID)
	count := cmd.Args[2].(int)
	data, err := p.db(cmd).XRead(keys, afterIDs, count)
	cmd.Response <- StreamReadResult{Data: data, Err: err}
}

func (p *Processor) executeXGroupCreate(cmd *Command) {
	group := cmd.Args[0].(string)
	startID := cmd.Args[1].(string)
	mkStream := cmd.Args[2].(bool)
	err := p.db(cmd).XGroupCreate(cmd.Key, group, startID, mkStream)
	cmd.Response <- BoolResult{Result: err == nil, Err: err}
}

func (p *Processor) executeXGroupDestroy(cmd *Command) {
	group := cmd.Args[0].(string)
	removed, err := p.db(cmd).XGroupDestroy(cmd.Key, group)
	cmd.Response <- BoolResult{Result: removed, Err: err}
}

func (p *Processor) executeXGroupSetID(cmd *Command) {
	group := cmd.Args[0].(string)
	id := cmd.Args[1].(string)
	err := p.db(cmd).XGroupSetID(cmd.Key, group, id)
	cmd.Response <- BoolResult{Result: err == nil, Err: err}
}

func (p *Processor) executeXReadGroup(cmd *Command) {
	group := cmd.Args[0].(string)
	consumer := cmd.Args[1].(string)
	startID := cmd.Args[2].(string)
	count := cmd.Args[3].(int)
	entries, err := p.db(cmd).XReadGroup(cmd.Key, group, consumer, startID, count)
	cmd.Response <- StreamEntriesResult{Entries: entries, Err: err}
}

func (p *Processor) executeXAck(cmd *Command) {
	group := cmd.Args[0].(string)
	ids := cmd.Args[1].([]storage.StreamID)
	acked, err := p.db(cmd).XAck(cmd.Key, group, ids)
	cmd.Response <- IntResult{Result: acked, Err: err}
}

func (p *Processor) executeXPending(cmd *Command) {
	group := cmd.Args[0].(string)
	if len(cmd.Args) == 1 {
		summary, err := p.db(cmd).XPendingSummary(cmd.Key, group)
		cmd.Response <- PendingSummaryResult{Summary: summary, Err: err}
		return
	}
	start := cmd.Args[1].(storage.StreamID)
	end := cmd.Args[2].(storage.StreamID)
	count := cmd.Args[3].(int)
	consumerFilter := cmd.Args[4].(string)
	rows, err := p.db(cmd).XPendingRange(cmd.Key, group, start, end, count, consumerFilter)
	cmd.Response <- PendingRangeResult{Rows: rows, Err: err}
}

func (p *Processor) executeXClaim(cmd *Command) {
	group := cmd.Args[0].(string)
	newConsumer := cmd.Args[1].(string)
	ids := cmd.Args[2].([]storage.StreamID)
	minIdleMs := cmd.Args[3].(int64)
	justID := cmd.Args[4].(bool)
	force := cmd.Args[5].(bool)
	entries, err := p.db(cmd).XClaim(cmd.Key, group, newConsumer, ids, minIdleMs, justID, force)
	cmd.Response <- StreamEntriesResult{Entries: entries, Err: err}
}

func (p *Processor) executeXAutoClaim(cmd *Command) {
	group := cmd.Args[0].(string)
	newConsumer := cmd.Args[1].(string)
	cursor := cmd.Args[2].(storage.StreamID)
	minIdleMs := cmd.Args[3].(int64)
	count := cmd.Args[4].(int)
	claimed, deleted, next, err := p.db(cmd).XAutoClaim(cmd.Key, group, newConsumer, cursor, minIdleMs, count)
	cmd.Response <- AutoClaimResult{Claimed: claimed, Deleted: deleted, Next: next, Err: err}
}

func (p *Processor) executeXInfoStream(cmd *Command) {
	info, err := p.db(cmd).XInfo(cmd.Key)
	cmd.Response <- StreamInfoResult{Info: info, Err: err}
}

func (p *Processor) executeXInfoGroups(cmd *Command) {
	groups, err := p.db(cmd).XGroupInfos(cmd.Key)
	cmd.Response <- GroupInfosResult{Groups: groups, Err: err}
}

func (p *Processor) executeXInfoConsumers(cmd *Command) {
	group := cmd.Args[0].(string)
	consumers, err := p.db(cmd).XConsumerInfos(cmd.Key, group)
	cmd.Response <- ConsumerInfosResult{Infos: consumers, Err: err}
}
