// Package config loads the dimension and profile table of a layout server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"citylayout.ai/internal/layout/profile"
)

type Config struct {
	DefaultDimension string            `yaml:"default_dimension" toml:"default_dimension"`
	Dimensions       []DimensionSpec   `yaml:"dimensions" toml:"dimensions"`
	Profiles         []profile.Profile `yaml:"profiles,omitempty" toml:"profiles,omitempty"`
}

type DimensionSpec struct {
	Name       string `yaml:"name" toml:"name"`
	SeedOffset int64  `yaml:"seed_offset" toml:"seed_offset"`
	Profile    string `yaml:"profile" toml:"profile"`
}

// Load reads a YAML file, or TOML when the path ends in .toml. An empty path
// yields the built-in defaults.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	name := filepath.Base(path)
	var file Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(b, &file)
	} else {
		err = yaml.Unmarshal(b, &file)
	}
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", name, err)
	}
	cfg = file.withDefaults()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		DefaultDimension: "overworld",
		Dimensions: []DimensionSpec{
			{Name: "overworld", SeedOffset: 0, Profile: "space"},
		},
	}
}

// withDefaults fills what a file left unset. Without default_dimension the
// built-in default is kept only if the file lists it; Normalize falls back to
// the first dimension otherwise.
func (c Config) withDefaults() Config {
	def := defaults()
	if len(c.Dimensions) == 0 {
		c.Dimensions = def.Dimensions
	}
	if strings.TrimSpace(c.DefaultDimension) == "" {
		for _, d := range c.Dimensions {
			if strings.TrimSpace(d.Name) == def.DefaultDimension {
				c.DefaultDimension = def.DefaultDimension
				break
			}
		}
	}
	return c
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	hasSpace := false
	for i := range c.Profiles {
		c.Profiles[i].Normalize()
		if c.Profiles[i].Name == "space" {
			hasSpace = true
		}
	}
	// The floating-city profile is always available by name.
	if !hasSpace {
		c.Profiles = append(c.Profiles, profile.Defaults())
	}
	for i := range c.Dimensions {
		c.Dimensions[i].Name = strings.TrimSpace(c.Dimensions[i].Name)
		c.Dimensions[i].Profile = strings.TrimSpace(c.Dimensions[i].Profile)
		if c.Dimensions[i].Profile == "" {
			c.Dimensions[i].Profile = "space"
		}
	}
	c.DefaultDimension = strings.TrimSpace(c.DefaultDimension)
	if c.DefaultDimension == "" && len(c.Dimensions) > 0 {
		c.DefaultDimension = c.Dimensions[0].Name
	}
}

func (c Config) Validate() error {
	profiles := map[string]bool{}
	for _, p := range c.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profile name must not be empty")
		}
		if profiles[p.Name] {
			return fmt.Errorf("duplicate profile: %s", p.Name)
		}
		if err := p.Validate(); err != nil {
			return err
		}
		profiles[p.Name] = true
	}
	if len(c.Dimensions) == 0 {
		return fmt.Errorf("dimensions must not be empty")
	}
	seen := map[string]bool{}
	for _, d := range c.Dimensions {
		if d.Name == "" {
			return fmt.Errorf("dimension name must not be empty")
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate dimension: %s", d.Name)
		}
		seen[d.Name] = true
		if !profiles[d.Profile] {
			return fmt.Errorf("dimension %s profile %q not found", d.Name, d.Profile)
		}
	}
	if !seen[c.DefaultDimension] {
		return fmt.Errorf("default_dimension %q not found in dimensions", c.DefaultDimension)
	}
	return nil
}

func (c Config) Profile(name string) (profile.Profile, bool) {
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return profile.Profile{}, false
}

func (c Config) DimensionByName(name string) (DimensionSpec, bool) {
	for _, d := range c.Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return DimensionSpec{}, false
}
