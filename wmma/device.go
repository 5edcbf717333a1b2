package wmma

import "github.com/gomlx/gopjrt/dtypes"

// Architecture identifies a device family for eligibility gating.
type Architecture string

const (
	ArchGfx908 Architecture = "gfx908" // CDNA1 (MI-100)
	ArchGfx90a Architecture = "gfx90a" // CDNA2 (MI-200)
	ArchGfx940 Architecture = "gfx940" // CDNA3 (MI-300)
)

// Device is the read-only capability context consulted before launch.
// It is queried once to gate whether a block-shape/type combination is
// legal to run; the core algorithm never reads it mid-flight.
type Device struct {
	Arch                   Architecture
	WaveSize               int
	SharedMemPerWorkgroup  int // bytes
	MaxThreadsPerWorkgroup int
}

// DefaultDevice returns a CDNA2-like device: 64-wide waves, 64KiB of
// shared memory per workgroup, and up to 1024 threads per workgroup.
func DefaultDevice() *Device {
	return &Device{
		Arch:                   ArchGfx90a,
		WaveSize:               64,
		SharedMemPerWorkgroup:  64 * 1024,
		MaxThreadsPerWorkgroup: 1024,
	}
}

// SupportsInput reports whether dtype is a legal input storage type on d.
func (d *Device) SupportsInput(dtype dtypes.DType) bool {
	switch dtype {
	case dtypes.Float16, dtypes.BFloat16, dtypes.Float32, dtypes.Int8:
		return true
	case dtypes.Float64:
		// gfx908 has no usable fp64 matrix path.
		return d.Arch != ArchGfx908
	}
	return false
}

// SupportsBlockShape reports whether the matrix units on d can run the
// given block geometry: square 16 or 32 output tiles, with the reduction
// block a multiple of the per-shape minimum (16 for 16x16, 8 for 32x32).
func (d *Device) SupportsBlockShape(blockM, blockN, blockK int) bool {
	if blockM != blockN {
		return false
	}
	if blockM != 16 && blockM != 32 {
		return false
	}
	minK := 256 / blockM
	return blockK >= minK && blockK%minK == 0
}
