package city

import (
	"testing"

	"citylayout.ai/internal/layout/profile"
)

func TestResolver_RadiusWithinBounds(t *testing.T) {
	p := profile.Defaults()
	r := NewResolver(0, 1337, p)
	for x := int32(-20); x < 20; x++ {
		for z := int32(-20); z < 20; z++ {
			rad := r.Radius(x, z)
			if rad < float32(p.CityMinRadius) || rad >= float32(p.CityMaxRadius) {
				t.Fatalf("radius out of range at (%d,%d): %v", x, z, rad)
			}
		}
	}
	if r.Cache().Len() != 40*40 {
		t.Fatalf("expected one cache entry per chunk, got %d", r.Cache().Len())
	}
}

func TestResolver_FixedRadiusWhenSpanEmpty(t *testing.T) {
	p := profile.Defaults()
	p.CityMinRadius, p.CityMaxRadius = 10, 10
	r := NewResolver(0, 5, p)
	if got := r.Radius(3, 4); got != 10 {
		t.Fatalf("Radius=%v want 10", got)
	}
}

func TestResolver_ChanceExtremes(t *testing.T) {
	p := profile.Defaults()
	p.CityChance = 1
	always := NewResolver(0, 9, p)
	p.CityChance = 0
	never := NewResolver(0, 9, p)
	for x := int32(0); x < 32; x++ {
		if !always.IsCityCenter(x, -x) {
			t.Fatalf("chance 1 must always produce a city center")
		}
		if never.IsCityCenter(x, -x) {
			t.Fatalf("chance 0 must never produce a city center")
		}
	}
}

func TestResolver_DeterministicAcrossInstances(t *testing.T) {
	p := profile.Defaults()
	a := NewResolver(2, 77, p)
	b := NewResolver(2, 77, p)
	for x := int32(-5); x < 5; x++ {
		if a.At(x, x*3) != b.At(x, x*3) {
			t.Fatalf("resolvers disagree at %d", x)
		}
	}
}
