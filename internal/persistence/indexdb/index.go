// Package indexdb is a secondary read-model of resolved layouts: runs of the
// dump tool and the descriptors they produced. Nothing reads it back during
// generation.
package indexdb

import (
	"citylayout.ai/internal/layout/city"
	"citylayout.ai/internal/layout/citysphere"
	"citylayout.ai/internal/layout/highway"
	"citylayout.ai/internal/layout/railway"
)

// Recorder is implemented by every index backend. Record calls never block;
// a backend that falls behind drops rows and counts them.
type Recorder interface {
	RecordRun(r Run)
	RecordSphere(r SphereRow)
	RecordCity(r CityRow)
	RecordHighway(r HighwayRow)
	RecordRail(r RailRow)
	Stats() Stats
	Close() error
}

type Run struct {
	ID        string `json:"id"`
	Dimension string `json:"dimension"`
	Profile   string `json:"profile"`
	Seed      int64  `json:"seed"`
	MinX      int32  `json:"min_x"`
	MinZ      int32  `json:"min_z"`
	MaxX      int32  `json:"max_x"`
	MaxZ      int32  `json:"max_z"`
	StartedAt string `json:"started_at"`
}

type SphereRow struct {
	RunID   string  `json:"run_id"`
	X       int32   `json:"x"`
	Z       int32   `json:"z"`
	Enabled bool    `json:"enabled"`
	North   bool    `json:"north"`
	South   bool    `json:"south"`
	West    bool    `json:"west"`
	East    bool    `json:"east"`
	Radius  float32 `json:"radius"`
	Glass   string  `json:"glass,omitempty"`
	Base    string  `json:"base,omitempty"`
	Side    string  `json:"side,omitempty"`
}

type CityRow struct {
	RunID    string  `json:"run_id"`
	X        int32   `json:"x"`
	Z        int32   `json:"z"`
	IsCenter bool    `json:"is_center"`
	Radius   float32 `json:"radius"`
}

type HighwayRow struct {
	RunID  string `json:"run_id"`
	X      int32  `json:"x"`
	Z      int32  `json:"z"`
	XLevel int    `json:"x_level"`
	ZLevel int    `json:"z_level"`
}

type RailRow struct {
	RunID string `json:"run_id"`
	X     int32  `json:"x"`
	Z     int32  `json:"z"`
	Type  string `json:"type"`
}

type Stats struct {
	QueueDepth    int    `json:"queue_depth"`
	QueueCapacity int    `json:"queue_capacity"`
	DropRunTotal  uint64 `json:"drop_run_total"`
	DropRowTotal  uint64 `json:"drop_row_total"`

	// Rows a backend accepted but failed to deliver.
	SendFailedTotal uint64 `json:"send_failed_total"`
}

func SphereRowOf(runID string, s citysphere.Sphere, radius float32) SphereRow {
	return SphereRow{
		RunID:   runID,
		X:       s.Center.X,
		Z:       s.Center.Z,
		Enabled: s.Enabled,
		North:   s.North,
		South:   s.South,
		West:    s.West,
		East:    s.East,
		Radius:  radius,
		Glass:   s.GlassBlock,
		Base:    s.BaseBlock,
		Side:    s.SideBlock,
	}
}

func CityRowOf(runID string, c city.City) CityRow {
	return CityRow{RunID: runID, X: c.Coord.X, Z: c.Coord.Z, IsCenter: c.IsCenter, Radius: c.Radius}
}

func HighwayRowOf(runID string, h highway.Highway) HighwayRow {
	return HighwayRow{RunID: runID, X: h.Coord.X, Z: h.Coord.Z, XLevel: h.XLevel, ZLevel: h.ZLevel}
}

func RailRowOf(runID string, r railway.Rail) RailRow {
	return RailRow{RunID: runID, X: r.Coord.X, Z: r.Coord.Z, Type: r.Type.String()}
}
