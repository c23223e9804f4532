package railway

import (
	"testing"

	"citylayout.ai/internal/layout/profile"
)

func TestResolver_FullDensityGrid(t *testing.T) {
	p := profile.Defaults()
	p.RailwayPermille = 1000
	r := NewResolver(0, 1, p, nil)
	cases := []struct {
		x, z int32
		want Type
	}{
		{0, 0, Crossing},
		{-10, 20, Crossing},
		{3, 10, Horizontal},
		{10, -7, Vertical},
		{3, 4, None},
	}
	for _, tc := range cases {
		if got := r.At(tc.x, tc.z).Type; got != tc.want {
			t.Fatalf("(%d,%d): got %v want %v", tc.x, tc.z, got, tc.want)
		}
	}
}

func TestResolver_StationOnCityCenter(t *testing.T) {
	p := profile.Defaults()
	p.RailwayPermille = 1000
	r := NewResolver(0, 1, p, func(x, z int32) bool { return x == 10 && z == 10 })
	if got := r.At(10, 10).Type; got != Station {
		t.Fatalf("got %v want STATION", got)
	}
	if got := r.At(20, 10).Type; got != Crossing {
		t.Fatalf("got %v want CROSSING", got)
	}
}

func TestResolver_ZeroPermille(t *testing.T) {
	p := profile.Defaults()
	p.RailwayPermille = 0
	r := NewResolver(0, 1, p, nil)
	for x := int32(-30); x <= 30; x += 10 {
		if got := r.At(x, 0).Type; got != None {
			t.Fatalf("(%d,0): got %v want NONE", x, got)
		}
	}
}

func TestResolver_SegmentsAreContiguous(t *testing.T) {
	p := profile.Defaults()
	r := NewResolver(0, 77, p, nil)
	// All chunks of one row segment share the same presence decision.
	for seg := int32(-3); seg < 3; seg++ {
		first := r.At(seg*10+1, 20).Type
		for x := seg*10 + 1; x < seg*10+10; x++ {
			if got := r.At(x, 20).Type; got != first {
				t.Fatalf("segment %d split at x=%d: %v vs %v", seg, x, got, first)
			}
		}
	}
}

func TestTypeString(t *testing.T) {
	if Station.String() != "STATION" || None.String() != "NONE" || Type(42).String() != "NONE" {
		t.Fatalf("unexpected names")
	}
}
