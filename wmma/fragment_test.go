package wmma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentShape(t *testing.T) {
	f := NewFragment[float32](16, 32)
	assert.Equal(t, 16, f.Rows())
	assert.Equal(t, 32, f.Cols())
	assert.Equal(t, 512, f.NumElements())
	assert.Equal(t, 8, f.LaneElements(64))
}

func TestRegisterFileSharesStorage(t *testing.T) {
	f := NewFragment[float32](16, 16)
	rf := f.registerFile(64)

	assert.Equal(t, 4, rf.Rows())
	assert.Equal(t, 64, rf.Cols())
	assert.Equal(t, f.NumElements(), rf.NumElements())

	// Writing through one view must be visible through the other: the two
	// shapes alias the same bits, no copy is allowed.
	rf.data[17] = 3.5
	assert.Equal(t, float32(3.5), f.data[17])
	f.data[200] = -1
	assert.Equal(t, float32(-1), rf.data[200])
}

func TestReinterpretRejectsElementCountMismatch(t *testing.T) {
	f := NewFragment[float32](16, 16)
	require.Panics(t, func() { reinterpret(f, 5, 64) })
	require.Panics(t, func() { f.registerFile(48) }) // 256 % 48 != 0
}

func TestFillFragment(t *testing.T) {
	f := NewFragment[float64](4, 4)
	FillFragment(f, 2.25)
	for _, v := range f.data {
		assert.Equal(t, 2.25, v)
	}
}
