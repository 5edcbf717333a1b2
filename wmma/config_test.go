package wmma

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	dev := DefaultDevice()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"16x16x16 ok", Config{BlockM: 16, BlockN: 16, BlockK: 16}, ""},
		{"32x32x8 ok", Config{BlockM: 32, BlockN: 32, BlockK: 8}, ""},
		{"non-square", Config{BlockM: 16, BlockN: 32, BlockK: 16}, "not supported"},
		{"odd tile dim", Config{BlockM: 24, BlockN: 24, BlockK: 16}, "not supported"},
		{"blockK below minimum", Config{BlockM: 16, BlockN: 16, BlockK: 8}, "not supported"},
		{"blockK not a multiple", Config{BlockM: 32, BlockN: 32, BlockK: 12}, "not supported"},
		{"zero block", Config{}, "must be positive"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.validate(dev, dtypes.Float32)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestConfigRejectsFloat64OnGfx908(t *testing.T) {
	mi100 := &Device{Arch: ArchGfx908, WaveSize: 64, SharedMemPerWorkgroup: 64 * 1024, MaxThreadsPerWorkgroup: 1024}
	cfg := Config{BlockM: 16, BlockN: 16, BlockK: 16}

	require.NoError(t, cfg.validate(mi100, dtypes.Float32))
	err := cfg.validate(mi100, dtypes.Float64)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported on gfx908")
}

func TestLaunchValidate(t *testing.T) {
	dev := DefaultDevice()

	ok := Launch{GridDim: Dim2{X: 2, Y: 2}, BlockDim: Dim2{X: 128, Y: 2}}
	assert.NoError(t, ok.validate(dev))
	assert.Equal(t, Dim2{X: 2, Y: 2}, ok.workgroupDim(dev.WaveSize))

	badX := Launch{GridDim: Dim2{X: 1, Y: 1}, BlockDim: Dim2{X: 96, Y: 1}}
	err := badX.validate(dev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple of the wave size")

	tooBig := Launch{GridDim: Dim2{X: 1, Y: 1}, BlockDim: Dim2{X: 256, Y: 8}}
	err = tooBig.validate(dev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device limit")

	noGrid := Launch{BlockDim: Dim2{X: 64, Y: 1}}
	assert.Error(t, noGrid.validate(dev))
}

func TestKernelRejectsOversizedStaging(t *testing.T) {
	// 16x16x1024 float32 fragments need far more staging space per
	// workgroup than the 64KiB the device provides.
	k, err := NewKernel[float32, float32, float32](nil, Config{BlockM: 16, BlockN: 16, BlockK: 1024})
	require.NoError(t, err)
	err = k.checkStaging(Dim2{X: 2, Y: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "staging buffer")
}
