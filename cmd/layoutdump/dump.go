package main

import (
	"fmt"
	"math"
	"time"

	"citylayout.ai/internal/layout/coord"
	"citylayout.ai/internal/layout/railway"
	"citylayout.ai/internal/layout/world"
	"citylayout.ai/internal/persistence/indexdb"
)

const maxDumpChunks = 1 << 24

type rect struct {
	MinX, MinZ, MaxX, MaxZ int32
}

// rectFromFlags converts chunk bounds given as flags, rejecting values that do
// not fit a chunk coordinate.
func rectFromFlags(minX, minZ, maxX, maxZ int) (rect, error) {
	bounds := []struct {
		name string
		v    int
	}{{"min-x", minX}, {"min-z", minZ}, {"max-x", maxX}, {"max-z", maxZ}}
	for _, b := range bounds {
		if b.v < math.MinInt32 || b.v > math.MaxInt32 {
			return rect{}, fmt.Errorf("-%s %d out of int32 range", b.name, b.v)
		}
	}
	r := rect{MinX: int32(minX), MinZ: int32(minZ), MaxX: int32(maxX), MaxZ: int32(maxZ)}
	return r, r.validate()
}

func (r rect) validate() error {
	if r.MinX > r.MaxX || r.MinZ > r.MaxZ {
		return fmt.Errorf("empty rectangle [%d,%d]..[%d,%d]", r.MinX, r.MinZ, r.MaxX, r.MaxZ)
	}
	if r.chunks() > maxDumpChunks {
		return fmt.Errorf("rectangle has %d chunks; limit is %d", r.chunks(), maxDumpChunks)
	}
	return nil
}

func (r rect) chunks() int64 {
	return (int64(r.MaxX) - int64(r.MinX) + 1) * (int64(r.MaxZ) - int64(r.MinZ) + 1)
}

type summary struct {
	Chunks        int64 `json:"chunks"`
	Centers       int   `json:"centers"`
	Enabled       int   `json:"enabled_spheres"`
	Enclosed      int64 `json:"enclosed_chunks"`
	CityCenters   int64 `json:"city_centers"`
	HighwayChunks int64 `json:"highway_chunks"`
	RailChunks    int64 `json:"rail_chunks"`
	Stations      int64 `json:"stations"`
}

// dump resolves every chunk of r in d and hands the descriptors to rec. Each
// sphere is recorded once, under its center. rec may be nil.
func dump(d *world.Dimension, rec indexdb.Recorder, runID string, r rect) summary {
	var sum summary
	seen := map[coord.ChunkCoord]bool{}
	for x := r.MinX; ; x++ {
		for z := r.MinZ; ; z++ {
			sum.Chunks++

			center := d.CenterFor(x, z)
			if !seen[center] {
				seen[center] = true
				s := d.Query(x, z)
				if s.Enabled {
					sum.Enabled++
				}
				if rec != nil {
					rec.RecordSphere(indexdb.SphereRowOf(runID, s, d.SphereRadius(x, z)))
				}
			}
			if d.IsFullyEnclosed(x, z) {
				sum.Enclosed++
			}

			c := d.City(x, z)
			if c.IsCenter {
				sum.CityCenters++
				if rec != nil {
					rec.RecordCity(indexdb.CityRowOf(runID, c))
				}
			}

			h := d.Highway(x, z)
			if h.HasX() || h.HasZ() {
				sum.HighwayChunks++
				if rec != nil {
					rec.RecordHighway(indexdb.HighwayRowOf(runID, h))
				}
			}

			rail := d.Railway(x, z)
			if rail.Type != railway.None {
				sum.RailChunks++
				if rail.Type == railway.Station {
					sum.Stations++
				}
				if rec != nil {
					rec.RecordRail(indexdb.RailRowOf(runID, rail))
				}
			}

			if z == r.MaxZ {
				break
			}
		}
		if x == r.MaxX {
			break
		}
	}
	sum.Centers = len(seen)
	return sum
}

func runRow(id string, d *world.Dimension, r rect, started time.Time) indexdb.Run {
	return indexdb.Run{
		ID:        id,
		Dimension: d.Name,
		Profile:   d.Profile.Name,
		Seed:      d.Seed,
		MinX:      r.MinX,
		MinZ:      r.MinZ,
		MaxX:      r.MaxX,
		MaxZ:      r.MaxZ,
		StartedAt: started.UTC().Format(time.RFC3339),
	}
}
