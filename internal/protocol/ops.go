package protocol

// Query operations.
const (
	OpCenter    = "CENTER"
	OpSphere    = "SPHERE"
	OpEnclosed  = "ENCLOSED"
	OpMonorailH = "MONORAIL_H"
	OpMonorailV = "MONORAIL_V"
	OpCity      = "CITY"
	OpHighway   = "HIGHWAY"
	OpRailway   = "RAILWAY"
	OpStats     = "STATS"
)

var knownOps = map[string]struct{}{
	OpCenter:    {},
	OpSphere:    {},
	OpEnclosed:  {},
	OpMonorailH: {},
	OpMonorailV: {},
	OpCity:      {},
	OpHighway:   {},
	OpRailway:   {},
	OpStats:     {},
}

func IsKnownOp(op string) bool {
	_, ok := knownOps[op]
	return ok
}

// Ops lists every query operation in a stable order.
func Ops() []string {
	return []string{OpCenter, OpSphere, OpEnclosed, OpMonorailH, OpMonorailV, OpCity, OpHighway, OpRailway, OpStats}
}
