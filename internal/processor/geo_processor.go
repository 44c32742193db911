package processor

import "storedb/internal/storage"

// executeGeoCommand executes geospatial commands
func (p *Processor) executeGeoCommand(cmd *Command) {
	switch cmd.Type {
	case CmdGeoAdd:
		p.executeGeoAdd(cmd)
	case CmdGeoPos:
		p.executeGeoPos(cmd)
	case CmdGeoDist:
		p.executeGeoDist(cmd)
	case CmdGeoHash:
		p.executeGeoHash(cmd)
	case CmdGeoRadius:
		p.executeGeoRadius(cmd)
	case CmdGeoRadiusByMember:
		p.executeGeoRadiusByMember(cmd)
	case CmdGeoSearch:
		p.executeGeoSearch(cmd)
	default:
		cmd.Response <- IntResult{Result: 0, Err: nil}
	}
}

// executeGeoAdd adds geospatial items
func (p *Processor) executeGeoAdd(cmd *Command) {
	points := cmd.Args[0].([]storage.GeoPoint)
	count := p.db(cmd).GeoAdd(cmd.Key, points)
	cmd.Response <- IntResult{Result: count}
}

// executeGeoPos returns positions of members
func (p *Processor) executeGeoPos(cmd *Command) {
	members := cmd.Args[0].([]string)
	positions := p.db(cmd).GeoPos(cmd.Key, members)
	cmd.Response <- positions
}

// executeGeoDist returns distance between two members
func (p *Processor) executeGeoDist(cmd *Command) {
	member1 := cmd.Args[0].(string)
	member2 := cmd.Args[1].(string)
	unit := "m"
	if len(cmd.Args) > 2 {
		unit = cmd.Args[2].(string)
	}

	distance := p.db(cmd).GeoDist(cmd.Key, member1, member2, unit)
	if distance == nil {
		cmd.Response <- Float64Result{Result: 0, Err: nil}
	} else {
		cmd.Response <- Float64Result{Result: *distance, Err: nil}
	}
}

// executeGeoHash returns geohash strings of members
func (p *Processor) executeGeoHash(cmd *Command) {
	members := cmd.Args[0].([]string)
	hashes := p.db(cmd).GeoHash(cmd.Key, members)
	cmd.Response <- hashes
}

// executeGeoRadius returns members within radius of a point
func (p *Processor) executeGeoRadius(cmd *Command) {
	longitude := cmd.Args[0].(float64)
	latitude := cmd.Args[1].(float64)
	radius := cmd.Args[2].(float64)
	unit := cmd.Args[3].(string)

	withDist := false
	withHash := false
	withCoord := false
	count := -1

	if len(cmd.Args) > 4 {
		withDist = cmd.Args[4].(bool)
	}
	if len(cmd.Args) > 5 {
		withHash = cmd.Args[5].(bool)
	}
	if len(cmd.Args) > 6 {
		withCoord = cmd.Args[6].(bool)
	}
	if len(cmd.Args) > 7 {
		count = cmd.Args[7].(int)
	}

	results := p.db(cmd).GeoRadius(cmd.Key, longitude, latitude, radius, unit, withDist, withHash, withCoord, count)
	cmd.Response <- results
}

// executeGeoRadiusByMember returns members within radius of an existing member
func (p *Processor) executeGeoRadiusByMember(cmd *Command) {
	member := cmd.Args[0].(string)
	radius := cmd.Args[1].(float64)
	unit := cmd.Args[2].(string)

	withDist := false
	withHash := false
	withCoord := false
	count := -1

	if len(cmd.Args) > 3 {
		withDist = cmd.Args[3].(bool)
	}
	if len(cmd.Args) > 4 {
		withHash = cmd.Args[4].(bool)
	}
	if len(cmd.Args) > 5 {
		withCoord = cmd.Args[5].(bool)
	}
	if len(cmd.Args) > 6 {
		count = cmd.Args[6].(int)
	}

	results := p.db(cmd).GeoRadiusByMember(cmd.Key, member, radius, unit, withDist, withHash, withCoord, count)
	cmd.Response <- results
}

// GeoSearchResult wraps a GEOSEARCH reply; unlike GEORADIUS, GEOSEARCH can
// fail (FROMMEMBER referencing a missing member), so it needs an error leg.
type GeoSearchResult struct {
	Results []storage.GeoRadiusResult
	Err     error
}

// executeGeoSearch runs the unified GEOSEARCH query (FROMMEMBER|FROMLONLAT,
// BYRADIUS|BYBOX). cmd.Args: [0] fromMember string, [1] fromLon float64,
// [2] fromLat float64, [3] byRadius bool, [4] radius float64, [5] width
// float64, [6] height float64, [7] unit string, [8] withDist bool,
// [9] withHash bool, [10] withCoord bool, [11] count int.
func (p *Processor) executeGeoSearch(cmd *Command) {
	fromMember := cmd.Args[0].(string)
	fromLon := cmd.Args[1].(float64)
	fromLat := cmd.Args[2].(float64)
	byRadius := cmd.Args[3].(bool)
	radius := cmd.Args[4].(float64)
	width := cmd.Args[5].(float64)
	height := cmd.Args[6].(float64)
	unit := cmd.Args[7].(string)
	withDist := cmd.Args[8].(bool)
	withHash := cmd.Args[9].(bool)
	withCoord := cmd.Args[10].(bool)
	count := cmd.Args[11].(int)

	results, err := p.db(cmd).GeoSearch(cmd.Key, fromMember, fromLon, fromLat, byRadius, radius, width, height, unit, withDist, withHash, withCoord, count)
	cmd.Response <- GeoSearchResult{Results: results, Err: err}
}
