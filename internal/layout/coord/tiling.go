package coord

// DefaultCellSize is the distance in chunks between two center candidates.
const DefaultCellSize = 16

// Tiling partitions a dimension into square cells of CellSize chunks. Every cell
// owns exactly one center candidate, at offset CellSize/2 on both axes.
//
// CellSize must be a power of two.
type Tiling struct {
	CellSize int32
}

func (t Tiling) mask() int32 { return t.CellSize - 1 }

func (t Tiling) half() int32 { return t.CellSize / 2 }

// CenterFor returns the center candidate of the cell that contains (x, z).
func (t Tiling) CenterFor(dim, x, z int32) ChunkCoord {
	return ChunkCoord{
		Dim: dim,
		X:   (x &^ t.mask()) + t.half(),
		Z:   (z &^ t.mask()) + t.half(),
	}
}

// IsCenterLine reports whether v lies on a row or column of center candidates.
func (t Tiling) IsCenterLine(v int32) bool {
	return v&t.mask() == t.half()
}

// IsCenterCandidate reports whether (x, z) may anchor a feature.
func (t Tiling) IsCenterCandidate(x, z int32) bool {
	return t.IsCenterLine(x) && t.IsCenterLine(z)
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int32) bool {
	return n > 0 && n&(n-1) == 0
}
