package coord

import (
	"math"
	"testing"
)

func TestCenterFor_Idempotent(t *testing.T) {
	tl := Tiling{CellSize: DefaultCellSize}
	vals := []int32{0, 1, 7, 8, 9, 15, 16, 17, 23, 24, -1, -7, -8, -9, -16, -17, 1000, -1000, math.MaxInt32 - 7, math.MinInt32}
	for _, x := range vals {
		for _, z := range vals {
			c := tl.CenterFor(3, x, z)
			again := tl.CenterFor(c.Dim, c.X, c.Z)
			if again != c {
				t.Fatalf("CenterFor(%d,%d)=%v but CenterFor(center)=%v", x, z, c, again)
			}
			if !tl.IsCenterCandidate(c.X, c.Z) {
				t.Fatalf("center %v of (%d,%d) is not a candidate", c, x, z)
			}
		}
	}
}

func TestCenterFor_Cells(t *testing.T) {
	tl := Tiling{CellSize: 16}
	cases := []struct {
		x, z   int32
		cx, cz int32
	}{
		{0, 0, 8, 8},
		{15, 15, 8, 8},
		{16, 0, 24, 8},
		{-1, -1, -8, -8},
		{-16, -17, -8, -24},
		{31, -32, 24, -24},
	}
	for _, tc := range cases {
		got := tl.CenterFor(0, tc.x, tc.z)
		if got.X != tc.cx || got.Z != tc.cz {
			t.Fatalf("CenterFor(%d,%d): got (%d,%d) want (%d,%d)", tc.x, tc.z, got.X, got.Z, tc.cx, tc.cz)
		}
	}
}

func TestCenterFor_KeepsDimension(t *testing.T) {
	tl := Tiling{CellSize: 32}
	if got := tl.CenterFor(-5, 1, 1); got.Dim != -5 || got.X != 16 || got.Z != 16 {
		t.Fatalf("unexpected center: %v", got)
	}
}

func TestIsCenterCandidate(t *testing.T) {
	tl := Tiling{CellSize: 16}
	if !tl.IsCenterCandidate(8, -8) {
		t.Fatalf("(8,-8) should be a candidate")
	}
	if tl.IsCenterCandidate(8, 0) || tl.IsCenterCandidate(0, 8) {
		t.Fatalf("off-line coordinates must not be candidates")
	}
}

func TestDimensionID_Stable(t *testing.T) {
	if DimensionID("overworld") != DimensionID("overworld") {
		t.Fatalf("dimension id must be stable")
	}
	if DimensionID("overworld") == DimensionID("space") {
		t.Fatalf("expected distinct ids")
	}
}

func TestPixelMid(t *testing.T) {
	x, z := ChunkCoord{X: 8, Z: -1}.PixelMid()
	if x != 136 || z != -8 {
		t.Fatalf("PixelMid: got (%d,%d)", x, z)
	}
}

func TestIsPow2(t *testing.T) {
	for _, n := range []int32{1, 2, 16, 1024} {
		if !IsPow2(n) {
			t.Fatalf("%d should be a power of two", n)
		}
	}
	for _, n := range []int32{0, -16, 3, 24} {
		if IsPow2(n) {
			t.Fatalf("%d should not be a power of two", n)
		}
	}
}
