package wmma

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
)

// Element enumerates the storage types fragments support.
type Element interface {
	float16.Float16 | bfloat16.BFloat16 | float32 | float64 | int8 | int32
}

// Compute enumerates the accumulation types. Inputs are widened to the
// compute type before every multiply, so accumulation precision may
// exceed storage precision (fp16/bf16 inputs accumulate in float32).
type Compute interface {
	float32 | float64 | int32
}

// Fragment is a wave-private dense tile of matrix elements. The backing
// slice is flat, in tile-row-major order, and the (rows, cols) header is
// only a shape: two fragments may share the same backing slice under
// different shapes (see registerFile), which is how data moves through
// the shared staging buffer without being copied.
type Fragment[T any] struct {
	rows, cols int
	data       []T
}

// NewFragment allocates a zero-filled rows x cols fragment.
func NewFragment[T any](rows, cols int) Fragment[T] {
	return Fragment[T]{rows: rows, cols: cols, data: make([]T, rows*cols)}
}

// Rows returns the fragment's logical row count.
func (f Fragment[T]) Rows() int { return f.rows }

// Cols returns the fragment's logical column count.
func (f Fragment[T]) Cols() int { return f.cols }

// NumElements returns the total element count of the tile.
func (f Fragment[T]) NumElements() int { return len(f.data) }

// LaneElements returns the per-lane register count for the given
// execution-group width, i.e. NumElements / waveSize.
func (f Fragment[T]) LaneElements(waveSize int) int {
	return len(f.data) / waveSize
}

// registerFile reinterprets f as a (perLane x waveSize) row-major tile
// sharing the same backing slice. No element is copied or transformed;
// only the shape header changes. The element counts of the two views
// must match exactly -- the kernel constructor validates this for every
// instantiation, so a mismatch here is a programmer error.
func (f Fragment[T]) registerFile(waveSize int) Fragment[T] {
	return reinterpret(f, len(f.data)/waveSize, waveSize)
}

// reinterpret returns a differently-shaped view over f's backing slice.
func reinterpret[T any](f Fragment[T], rows, cols int) Fragment[T] {
	if rows*cols != len(f.data) {
		exceptions.Panicf("wmma: cannot reinterpret %dx%d fragment (%d elements) as %dx%d (%d elements)",
			f.rows, f.cols, len(f.data), rows, cols, rows*cols)
	}
	return Fragment[T]{rows: rows, cols: cols, data: f.data}
}
