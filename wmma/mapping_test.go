package wmma

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMappingWaveAndBlockCoordinates(t *testing.T) {
	wave := waveContext{
		blockIdx: Dim2{X: 2, Y: 3},
		waveIdx:  Dim2{X: 1, Y: 0},
		wgDim:    Dim2{X: 2, Y: 2},
	}
	m := newMapping(16, 32, RowMajor, wave)

	assert.Equal(t, Dim2{X: 2, Y: 2}, m.WorkgroupDim())
	assert.Equal(t, Coord2{Row: 1, Col: 0}, m.WaveCoord())

	// Block row = blockIdx.X*wgDim.X + waveIdx.X, and likewise for col.
	assert.Equal(t, Coord2{Row: 5, Col: 6}, m.BlockCoord())
	assert.Equal(t, Coord2{Row: 5 * 16, Col: 6 * 32}, m.MatrixCoord())
	assert.Equal(t, Coord2{Row: 48, Col: 64}, m.MatrixCoordOf(Coord2{Row: 3, Col: 2}))
}

func TestMappingDataCoord(t *testing.T) {
	wave := waveContext{wgDim: Dim2{X: 1, Y: 1}}
	rm := newMapping(16, 16, RowMajor, wave)
	cm := newMapping(16, 16, ColMajor, wave)

	assert.Equal(t, 7*100+3, rm.DataCoord(100, Coord2{Row: 7, Col: 3}))
	assert.Equal(t, 3*100+7, cm.DataCoord(100, Coord2{Row: 7, Col: 3}))
}

func TestMappingDataOffset(t *testing.T) {
	wave := waveContext{wgDim: Dim2{X: 1, Y: 1}}
	rm := newMapping(16, 16, RowMajor, wave)
	cm := newMapping(16, 16, ColMajor, wave)

	// Advancing A by one block along K: BlockK columns.
	assert.Equal(t, 16, rm.DataOffset(100, Coord2{Row: 0, Col: 16}))
	assert.Equal(t, 1600, cm.DataOffset(100, Coord2{Row: 0, Col: 16}))

	// Advancing B by one block along K: BlockK rows.
	assert.Equal(t, 1600, rm.DataOffset(100, Coord2{Row: 16, Col: 0}))
	assert.Equal(t, 16, cm.DataOffset(100, Coord2{Row: 16, Col: 0}))
}

func TestMappingIsPure(t *testing.T) {
	wave := waveContext{blockIdx: Dim2{X: 1, Y: 1}, waveIdx: Dim2{X: 1, Y: 1}, wgDim: Dim2{X: 2, Y: 2}}
	m := newMapping(16, 16, RowMajor, wave)
	first := m.BlockCoord()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, m.BlockCoord())
	}
}
