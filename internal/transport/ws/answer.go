package ws

import (
	"citylayout.ai/internal/layout/world"
	"citylayout.ai/internal/protocol"
)

// Answer resolves one query against the layout. The query must already be
// schema-valid; unknown dimensions and ops yield an ERROR message.
func Answer(l *world.Layout, q protocol.QueryMsg) any {
	d, ok := l.Dimension(q.Dimension)
	if !ok {
		return errorMsg(q.ID, protocol.ErrDimensionNotFound, "unknown dimension "+q.Dimension)
	}
	res := protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		ID:              q.ID,
		Op:              q.Op,
		Dimension:       d.Name,
		X:               q.X,
		Z:               q.Z,
	}
	switch q.Op {
	case protocol.OpCenter:
		c := d.CenterFor(q.X, q.Z)
		res.Center = &protocol.ChunkRef{X: c.X, Z: c.Z}
	case protocol.OpSphere:
		s := d.Query(q.X, q.Z)
		res.Sphere = &protocol.SphereResult{
			Center:  protocol.ChunkRef{X: s.Center.X, Z: s.Center.Z},
			Enabled: s.Enabled,
			North:   s.North,
			South:   s.South,
			West:    s.West,
			East:    s.East,
			Glass:   s.GlassBlock,
			Base:    s.BaseBlock,
			Side:    s.SideBlock,
		}
		if s.Enabled {
			res.Sphere.Radius = d.SphereRadius(q.X, q.Z)
		}
	case protocol.OpEnclosed:
		res.Value = boolPtr(d.IsFullyEnclosed(q.X, q.Z))
	case protocol.OpMonorailH:
		res.Value = boolPtr(d.HasHorizontalConnectivity(q.X, q.Z))
	case protocol.OpMonorailV:
		res.Value = boolPtr(d.HasVerticalConnectivity(q.X, q.Z))
	case protocol.OpCity:
		c := d.City(q.X, q.Z)
		res.City = &protocol.CityResult{IsCenter: c.IsCenter, Radius: c.Radius}
	case protocol.OpHighway:
		h := d.Highway(q.X, q.Z)
		res.Highway = &protocol.HighwayResult{XLevel: h.XLevel, ZLevel: h.ZLevel}
	case protocol.OpRailway:
		res.Railway = &protocol.RailResult{Type: d.Railway(q.X, q.Z).Type.String()}
	case protocol.OpStats:
		res.Stats = d.Sizes()
	default:
		return errorMsg(q.ID, protocol.ErrUnknownOp, "unknown op "+q.Op)
	}
	return res
}

func boolPtr(v bool) *bool { return &v }

func errorMsg(id, code, msg string) protocol.ErrorMsg {
	return protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		ID:              id,
		Code:            code,
		Message:         msg,
	}
}
