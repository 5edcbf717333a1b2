package wmma

// waveContext identifies one wave's immutable position within the launch:
// its workgroup's place in the grid, its own place inside the workgroup
// (already divided by the wave size), and the workgroup's wave extent.
// It is derived once at launch and never changes for the kernel lifetime.
type waveContext struct {
	blockIdx Dim2 // workgroup position in the launch grid
	waveIdx  Dim2 // wave position inside the workgroup, in wave units
	wgDim    Dim2 // waves per workgroup
}

// Mapping translates logical tile indices of one matrix into linear
// element indices, parameterized by block shape and storage layout.
// All methods are pure; out-of-range tiles are the caller's concern
// (the kernel bounds-checks before using the mapping).
type Mapping struct {
	blockRows int
	blockCols int
	layout    Layout
	wave      waveContext
}

func newMapping(blockRows, blockCols int, layout Layout, wave waveContext) Mapping {
	return Mapping{blockRows: blockRows, blockCols: blockCols, layout: layout, wave: wave}
}

// WorkgroupDim returns the workgroup's extent in waves:
// X in the row direction, Y in the column direction.
func (m Mapping) WorkgroupDim() Dim2 {
	return m.wave.wgDim
}

// WaveCoord returns this wave's (row, col) position inside its workgroup.
func (m Mapping) WaveCoord() Coord2 {
	return Coord2{Row: m.wave.waveIdx.X, Col: m.wave.waveIdx.Y}
}

// BlockCoord returns the (tileRow, tileCol) index of the block this wave
// owns in the global grid of tiles.
func (m Mapping) BlockCoord() Coord2 {
	return Coord2{
		Row: m.wave.blockIdx.X*m.wave.wgDim.X + m.wave.waveIdx.X,
		Col: m.wave.blockIdx.Y*m.wave.wgDim.Y + m.wave.waveIdx.Y,
	}
}

// MatrixCoordOf returns the top-left element position of the given block.
func (m Mapping) MatrixCoordOf(blockCoord Coord2) Coord2 {
	return Coord2{Row: blockCoord.Row * m.blockRows, Col: blockCoord.Col * m.blockCols}
}

// MatrixCoord returns the top-left element position of this wave's block.
func (m Mapping) MatrixCoord() Coord2 {
	return m.MatrixCoordOf(m.BlockCoord())
}

// DataCoord returns the linear element index of matrixCoord under the
// mapping's layout and the given leading dimension.
func (m Mapping) DataCoord(ld int, matrixCoord Coord2) int {
	if m.layout == RowMajor {
		return matrixCoord.Row*ld + matrixCoord.Col
	}
	return matrixCoord.Col*ld + matrixCoord.Row
}

// DataOffset returns the index stride that moves an address by the given
// element delta while respecting the layout. Deltas are in elements, so
// advancing A by one block along K is DataOffset(lda, Coord2{0, BlockK}).
func (m Mapping) DataOffset(ld int, delta Coord2) int {
	if m.layout == RowMajor {
		return delta.Row*ld + delta.Col
	}
	return delta.Col*ld + delta.Row
}
