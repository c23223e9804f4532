package profile

import (
	"fmt"
	"strings"

	"citylayout.ai/internal/layout/coord"
)

// DefaultScanCells is how many cells the monorail scan inspects in each
// direction before giving up on finding a partner sphere.
const DefaultScanCells = 4

// Profile is the read-only generation configuration of a dimension. Profiles
// are immutable once a world is loaded.
//
// Probabilities are compared against uniform draws in [0,1) and are not range
// checked: values >= 1 always pass and values <= 0 never do.
type Profile struct {
	Name string `yaml:"name" toml:"name"`

	CellSize  int32 `yaml:"cell_size" toml:"cell_size"`
	ScanCells int32 `yaml:"scan_cells" toml:"scan_cells"`

	SphereChance         float32 `yaml:"sphere_chance" toml:"sphere_chance"`
	SphereMonorailChance float32 `yaml:"sphere_monorail_chance" toml:"sphere_monorail_chance"`
	SphereFactor         float32 `yaml:"sphere_factor" toml:"sphere_factor"`

	SphereGlassBlocks []string `yaml:"sphere_glass_blocks" toml:"sphere_glass_blocks"`
	SphereBaseBlocks  []string `yaml:"sphere_base_blocks" toml:"sphere_base_blocks"`
	SphereSideBlocks  []string `yaml:"sphere_side_blocks" toml:"sphere_side_blocks"`

	CityChance    float32 `yaml:"city_chance" toml:"city_chance"`
	CityMinRadius int32   `yaml:"city_min_radius" toml:"city_min_radius"`
	CityMaxRadius int32   `yaml:"city_max_radius" toml:"city_max_radius"`

	HighwayPeriod     int32   `yaml:"highway_period" toml:"highway_period"`
	HighwayThreshold  float64 `yaml:"highway_threshold" toml:"highway_threshold"`
	HighwayNoiseScale float64 `yaml:"highway_noise_scale" toml:"highway_noise_scale"`

	RailwayPeriod   int32  `yaml:"railway_period" toml:"railway_period"`
	RailwayPermille uint64 `yaml:"railway_permille" toml:"railway_permille"`
}

// Defaults returns the floating-city ("space") profile.
func Defaults() Profile {
	return Profile{
		Name:                 "space",
		CellSize:             coord.DefaultCellSize,
		ScanCells:            DefaultScanCells,
		SphereChance:         0.7,
		SphereMonorailChance: 0.8,
		SphereFactor:         1.2,
		SphereGlassBlocks:    []string{"glass", "stained_glass_white", "stained_glass_light_blue"},
		SphereBaseBlocks:     []string{"stone_bricks", "quartz_block"},
		SphereSideBlocks:     []string{"stone_bricks", "polished_andesite"},
		CityChance:           0.02,
		CityMinRadius:        50,
		CityMaxRadius:        128,
		HighwayPeriod:        8,
		HighwayThreshold:     0.1,
		HighwayNoiseScale:    0.25,
		RailwayPeriod:        10,
		RailwayPermille:      400,
	}
}

// Normalize fills structural fields left at their zero value.
func (p *Profile) Normalize() {
	if p == nil {
		return
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.CellSize == 0 {
		p.CellSize = coord.DefaultCellSize
	}
	if p.ScanCells == 0 {
		p.ScanCells = DefaultScanCells
	}
	if p.SphereFactor == 0 {
		p.SphereFactor = 1
	}
	if p.HighwayPeriod == 0 {
		p.HighwayPeriod = 8
	}
	if p.HighwayNoiseScale == 0 {
		p.HighwayNoiseScale = 0.25
	}
	if p.RailwayPeriod == 0 {
		p.RailwayPeriod = 10
	}
	if p.CityMaxRadius < p.CityMinRadius {
		p.CityMaxRadius = p.CityMinRadius
	}
}

// Validate checks the fields the resolvers rely on structurally. Probabilities
// and the sphere factor are deliberately left alone.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if !coord.IsPow2(p.CellSize) || p.CellSize < 2 {
		return fmt.Errorf("profile %s cell_size must be a power of two >= 2", p.Name)
	}
	if p.ScanCells <= 0 {
		return fmt.Errorf("profile %s scan_cells must be > 0", p.Name)
	}
	if p.HighwayPeriod <= 0 {
		return fmt.Errorf("profile %s highway_period must be > 0", p.Name)
	}
	if p.RailwayPeriod <= 0 {
		return fmt.Errorf("profile %s railway_period must be > 0", p.Name)
	}
	if p.CityMinRadius < 0 {
		return fmt.Errorf("profile %s city_min_radius must be >= 0", p.Name)
	}
	return nil
}

func (p Profile) Tiling() coord.Tiling {
	return coord.Tiling{CellSize: p.CellSize}
}

// ScanWindow is the exclusive distance, in chunks, the monorail scan covers.
func (p Profile) ScanWindow() int32 {
	return p.ScanCells * p.CellSize
}
