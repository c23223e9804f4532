package citysphere

import "testing"

func TestHorizontalConnectivity_AllCandidates(t *testing.T) {
	r := NewResolver(0, 1234, testProfile(1, 1), constRadius(100))
	for _, z := range []int32{8, 24, -8, -15992} {
		if !r.HasHorizontalConnectivity(16, z) {
			t.Fatalf("z=%d: expected connectivity with every sphere enabled", z)
		}
	}
}

func TestHorizontalConnectivity_Seeds(t *testing.T) {
	cases := []struct {
		name string
		seed int64
		want bool
	}{
		// (8,8) east=true, (24,8) west=false.
		{"ahead refuses", 0, false},
		// (8,8) east=false.
		{"behind refuses", 3, false},
		// (8,8) east=true, (24,8) west=true.
		{"both accept", 9, true},
	}
	for _, tc := range cases {
		r := NewResolver(0, tc.seed, testProfile(1, 0.5), constRadius(100))
		if got := r.HasHorizontalConnectivity(16, 8); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestHorizontalConnectivity_SkipsDisabledCenters(t *testing.T) {
	// Seed 0 at chance 0.5: (8,8) enabled, (24,8) disabled, (40,8) enabled.
	r := NewResolver(0, 0, testProfile(0.5, 1), constRadius(100))
	if r.Query(24, 8).Enabled {
		t.Fatalf("fixture: (24,8) expected disabled")
	}
	if !r.HasHorizontalConnectivity(16, 8) {
		t.Fatalf("disabled center must be skipped, not end the scan")
	}
}

func TestHorizontalConnectivity_WindowCutoff(t *testing.T) {
	// Seed 330 at chance 0.5: (8,8) and (88,8) enabled, 24..72 disabled.
	p := testProfile(0.5, 1)
	r := NewResolver(0, 330, p, constRadius(100))
	if r.HasHorizontalConnectivity(16, 8) {
		t.Fatalf("partner beyond the window must not connect")
	}
	p.ScanCells = 5
	wide := NewResolver(0, 330, p, constRadius(100))
	if !wide.HasHorizontalConnectivity(16, 8) {
		t.Fatalf("partner inside a wider window should connect")
	}
}

func TestHorizontalConnectivity_NoNeighbours(t *testing.T) {
	r := NewResolver(0, 1, testProfile(0, 1), constRadius(100))
	if r.HasHorizontalConnectivity(16, 8) {
		t.Fatalf("no enabled spheres means no monorail")
	}
}

func TestConnectivity_MisalignedReturnsFalse(t *testing.T) {
	r := NewResolver(0, 1, testProfile(1, 1), constRadius(100))
	for _, v := range []int32{0, 7, 9, 15, -1} {
		if r.HasHorizontalConnectivity(16, v) {
			t.Fatalf("horizontal on z=%d should be false", v)
		}
		if r.HasVerticalConnectivity(v, 16) {
			t.Fatalf("vertical on x=%d should be false", v)
		}
	}
	if r.Cache().Len() != 0 {
		t.Fatalf("misaligned checks must not populate the cache")
	}
}

func TestVerticalConnectivity_Seeds(t *testing.T) {
	// Seed 3: (8,8) south=true, (8,24) north=true. Seed 1: (8,24) north=false.
	yes := NewResolver(0, 3, testProfile(1, 0.5), constRadius(100))
	if !yes.HasVerticalConnectivity(8, 16) {
		t.Fatalf("seed 3: expected vertical monorail")
	}
	no := NewResolver(0, 1, testProfile(1, 0.5), constRadius(100))
	if no.HasVerticalConnectivity(8, 16) {
		t.Fatalf("seed 1: expected no vertical monorail")
	}
}

func TestVerticalConnectivity_SkipsDisabledCenters(t *testing.T) {
	// Seed 0 at chance 0.5: (8,8) enabled, (8,24) disabled, (8,40) enabled.
	r := NewResolver(0, 0, testProfile(0.5, 1), constRadius(100))
	if r.Query(8, 24).Enabled {
		t.Fatalf("fixture: (8,24) expected disabled")
	}
	if !r.Query(8, 40).Enabled {
		t.Fatalf("fixture: (8,40) expected enabled")
	}
	if !r.HasVerticalConnectivity(8, 16) {
		t.Fatalf("disabled center must be skipped, not end the scan")
	}
}

func TestVerticalConnectivity_WindowCutoff(t *testing.T) {
	// Seed 20 at chance 0.5: (8,8) and (8,88) enabled, 24..72 disabled.
	p := testProfile(0.5, 1)
	r := NewResolver(0, 20, p, constRadius(100))
	for _, z := range []int32{24, 40, 56, 72} {
		if r.Query(8, z).Enabled {
			t.Fatalf("fixture: (8,%d) expected disabled", z)
		}
	}
	if r.HasVerticalConnectivity(8, 16) {
		t.Fatalf("partner beyond the window must not connect")
	}
	p.ScanCells = 5
	wide := NewResolver(0, 20, p, constRadius(100))
	if !wide.HasVerticalConnectivity(8, 16) {
		t.Fatalf("partner inside a wider window should connect")
	}
}
