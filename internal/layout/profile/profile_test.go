package profile

import "testing"

func TestDefaults_Valid(t *testing.T) {
	p := Defaults()
	if err := p.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if p.ScanWindow() != 64 {
		t.Fatalf("ScanWindow=%d want 64", p.ScanWindow())
	}
}

func TestNormalize_FillsStructuralFields(t *testing.T) {
	p := Profile{Name: "  bare  ", CityMinRadius: 20, CityMaxRadius: 10}
	p.Normalize()
	if p.Name != "bare" {
		t.Fatalf("name not trimmed: %q", p.Name)
	}
	if p.CellSize != 16 || p.ScanCells != 4 || p.SphereFactor != 1 {
		t.Fatalf("structural defaults missing: %+v", p)
	}
	if p.CityMaxRadius != 20 {
		t.Fatalf("max radius should be raised to min: %d", p.CityMaxRadius)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("normalized profile should validate: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(p *Profile){
		"empty name":     func(p *Profile) { p.Name = "" },
		"cell not pow2":  func(p *Profile) { p.CellSize = 12 },
		"cell too small": func(p *Profile) { p.CellSize = 1 },
		"scan cells":     func(p *Profile) { p.ScanCells = -1 },
		"highway period": func(p *Profile) { p.HighwayPeriod = -3 },
		"railway period": func(p *Profile) { p.RailwayPeriod = -1 },
		"city radius":    func(p *Profile) { p.CityMinRadius = -1 },
	}
	for name, mut := range cases {
		p := Defaults()
		mut(&p)
		if err := p.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestValidate_AcceptsOutOfRangeProbabilities(t *testing.T) {
	p := Defaults()
	p.SphereChance = 3
	p.SphereMonorailChance = -1
	p.SphereFactor = -2
	if err := p.Validate(); err != nil {
		t.Fatalf("probabilities are not range checked: %v", err)
	}
}
