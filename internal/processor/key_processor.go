package processor

// executeKeyCommand handles generic key-space commands that aren't tied to
// a particular value type: TYPE, PERSIST, PTTL, RENAME, RENAMENX,
// RANDOMKEY, TOUCH, COPY.
func (p *Processor) executeKeyCommand(cmd *Command) {
	switch cmd.Type {
	case CmdType:
		p.executeType(cmd)
	case CmdPersist:
		p.executePersist(cmd)
	case CmdPTTL:
		p.executePTTL(cmd)
	case CmdRename:
		p.executeRename(cmd)
	case CmdRenameNX:
		p.executeRenameNX(cmd)
	case CmdRandomKey:
		p.executeRandomKey(cmd)
	case CmdTouch:
		p.executeTouch(cmd)
	case CmdCopy:
		p.executeCopy(cmd)
	}
}

func (p *Processor) executeType(cmd *Command) {
	cmd.Response <- p.db(cmd).TypeOf(cmd.Key)
}

func (p *Processor) executePersist(cmd *Command) {
	cmd.Response <- p.db(cmd).Persist(cmd.Key)
}

func (p *Processor) executePTTL(cmd *Command) {
	cmd.Response <- p.db(cmd).PTTL(cmd.Key)
}

func (p *Processor) executeRename(cmd *Command) {
	dst := cmd.Args[0].(string)
	err := p.db(cmd).Rename(cmd.Key, dst)
	cmd.Response <- BoolResult{Result: err == nil, Err: err}
}

func (p *Processor) executeRenameNX(cmd *Command) {
	dst := cmd.Args[0].(string)
	ok, err := p.db(cmd).RenameNX(cmd.Key, dst)
	cmd.Response <- BoolResult{Result: ok, Err: err}
}

func (p *Processor) executeRandomKey(cmd *Command) {
	cmd.Response <- p.db(cmd).RandomKey()
}

func (p *Processor) executeTouch(cmd *Command) {
	keys := cmd.Args[0].([]string)
	cmd.Response <- p.db(cmd).Touch(keys)
}

func (p *Processor) executeCopy(cmd *Command) {
	dst := cmd.Args[0].(string)
	replace := cmd.Args[1].(bool)
	ok, err := p.db(cmd).Copy(cmd.Key, dst, replace)
	cmd.Response <- BoolResult{Result: ok, Err: err}
}
