package wmma

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// Config fixes one kernel instantiation's block geometry and the storage
// layout of each of the four matrices. The storage and compute types are
// fixed separately by the kernel's type parameters.
type Config struct {
	BlockM, BlockN, BlockK int

	LayoutA, LayoutB, LayoutC, LayoutD Layout
}

// Launch describes the execution geometry of one kernel run: the grid of
// workgroups and the thread extent of each workgroup. BlockDim.X must be
// a multiple of the device wave size; BlockDim.X/waveSize by BlockDim.Y
// is the workgroup's wave grid.
type Launch struct {
	GridDim  Dim2
	BlockDim Dim2
}

// validate checks the configuration invariants that must hold before a
// kernel may be instantiated. Failing any of them is a configuration
// error: it is reported here, never as a runtime fault inside the core.
func (c Config) validate(dev *Device, inType dtypes.DType) error {
	if c.BlockM <= 0 || c.BlockN <= 0 || c.BlockK <= 0 {
		return errors.Errorf("block shape %dx%dx%d must be positive", c.BlockM, c.BlockN, c.BlockK)
	}
	if !dev.SupportsInput(inType) {
		return errors.Errorf("input type %s is not supported on %s", inType, dev.Arch)
	}
	if !dev.SupportsBlockShape(c.BlockM, c.BlockN, c.BlockK) {
		return errors.Errorf("block shape %dx%dx%d is not supported on %s", c.BlockM, c.BlockN, c.BlockK, dev.Arch)
	}
	// A wave's per-lane registers must exactly reconstruct each operand
	// tile: elements(frag) == Block area / waveSize, with no remainder.
	if c.BlockM*c.BlockK%dev.WaveSize != 0 {
		return errors.Errorf("A tile %dx%d does not divide across a %d-wide wave", c.BlockM, c.BlockK, dev.WaveSize)
	}
	if c.BlockK*c.BlockN%dev.WaveSize != 0 {
		return errors.Errorf("B tile %dx%d does not divide across a %d-wide wave", c.BlockK, c.BlockN, dev.WaveSize)
	}
	return nil
}

func (l Launch) validate(dev *Device) error {
	if l.GridDim.X <= 0 || l.GridDim.Y <= 0 {
		return errors.Errorf("grid %dx%d must be positive", l.GridDim.X, l.GridDim.Y)
	}
	if l.BlockDim.X <= 0 || l.BlockDim.X%dev.WaveSize != 0 {
		return errors.Errorf("workgroup X extent %d must be a positive multiple of the wave size %d", l.BlockDim.X, dev.WaveSize)
	}
	if l.BlockDim.Y <= 0 {
		return errors.Errorf("workgroup Y extent %d must be positive", l.BlockDim.Y)
	}
	if threads := l.BlockDim.X * l.BlockDim.Y; threads > dev.MaxThreadsPerWorkgroup {
		return errors.Errorf("workgroup has %d threads, device limit is %d", threads, dev.MaxThreadsPerWorkgroup)
	}
	return nil
}

// workgroupDim returns the launch's workgroup extent in waves.
func (l Launch) workgroupDim(waveSize int) Dim2 {
	return Dim2{X: l.BlockDim.X / waveSize, Y: l.BlockDim.Y}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
