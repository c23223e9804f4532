package coord

import (
	"fmt"

	"github.com/segmentio/fasthash/fnv1a"
)

// ChunkSize is the width of a chunk in pixels (blocks).
const ChunkSize = 16

// ChunkCoord identifies one chunk of one dimension. It is comparable and is the
// key of every feature cache.
type ChunkCoord struct {
	Dim int32
	X   int32
	Z   int32
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("%d:%d,%d", c.Dim, c.X, c.Z)
}

// PixelMid returns the pixel coordinate of the middle of the chunk.
func (c ChunkCoord) PixelMid() (int32, int32) {
	return c.X*ChunkSize + ChunkSize/2, c.Z*ChunkSize + ChunkSize/2
}

// DimensionID maps a dimension name to the integer id used in cache keys.
func DimensionID(name string) int32 {
	return int32(fnv1a.HashString32(name))
}
