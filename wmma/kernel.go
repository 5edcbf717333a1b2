package wmma

import (
	"runtime"

	"github.com/pkg/errors"
)

// Kernel is one compiled instantiation of the pipelined GEMM for a fixed
// (block shape x storage types x layouts) combination. Instantiation
// validates every configuration invariant up front; Run never fails for
// in-bounds data after that.
type Kernel[InT Element, OutT Element, CT Compute] struct {
	cfg Config
	dev *Device

	in  convertOps[InT, CT]
	out convertOps[OutT, CT]

	// Whole-tile operand sizes and their per-lane register counts.
	fragAElems, fragBElems int
	perLaneA, perLaneB     int

	maxParallelism int
}

// Problem carries one launch's caller-validated arguments: matrix
// extents, flat operand storage, leading dimensions and the two scalars.
// The kernel only computes indices into these slices; it never owns them.
type Problem[InT Element, OutT Element, CT Compute] struct {
	M, N, K int

	A, B []InT
	C    []OutT
	D    []OutT

	Lda, Ldb, Ldc, Ldd int

	Alpha, Beta CT
}

// NewKernel instantiates the GEMM kernel for cfg on dev (nil selects
// DefaultDevice). All fragment-size, block-shape and type-combination
// checks happen here; an error from NewKernel is a configuration error
// in the sense that no launch was attempted.
func NewKernel[InT Element, OutT Element, CT Compute](dev *Device, cfg Config) (*Kernel[InT, OutT, CT], error) {
	if dev == nil {
		dev = DefaultDevice()
	}
	if err := cfg.validate(dev, dtypeOf[InT]()); err != nil {
		return nil, errors.Wrap(err, "wmma kernel configuration")
	}
	in, err := convertersFor[InT, CT]()
	if err != nil {
		return nil, errors.Wrap(err, "wmma kernel configuration")
	}
	out, err := convertersFor[OutT, CT]()
	if err != nil {
		return nil, errors.Wrap(err, "wmma kernel configuration")
	}
	k := &Kernel[InT, OutT, CT]{
		cfg:            cfg,
		dev:            dev,
		in:             in,
		out:            out,
		fragAElems:     cfg.BlockM * cfg.BlockK,
		fragBElems:     cfg.BlockK * cfg.BlockN,
		maxParallelism: runtime.GOMAXPROCS(0),
	}
	k.perLaneA = k.fragAElems / dev.WaveSize
	k.perLaneB = k.fragBElems / dev.WaveSize
	return k, nil
}

// Config returns the kernel's instantiation parameters.
func (k *Kernel[InT, OutT, CT]) Config() Config { return k.cfg }

// Device returns the capability context the kernel was instantiated for.
func (k *Kernel[InT, OutT, CT]) Device() *Device { return k.dev }

// waveMain is the per-wave program: eligibility check, pipelined
// accumulation over K, then the epilogue. It is the direct analogue of
// one hardware wave executing the kernel body.
func (k *Kernel[InT, OutT, CT]) waveMain(wave waveContext, lds *sharedStage[InT], bar *barrier, p *Problem[InT, OutT, CT]) {
	cfg := k.cfg
	waveSize := k.dev.WaveSize

	mappingA := newMapping(cfg.BlockM, cfg.BlockK, cfg.LayoutA, wave)
	mappingB := newMapping(cfg.BlockK, cfg.BlockN, cfg.LayoutB, wave)
	mappingC := newMapping(cfg.BlockM, cfg.BlockN, cfg.LayoutC, wave)
	mappingD := newMapping(cfg.BlockM, cfg.BlockN, cfg.LayoutD, wave)

	// Target C/D block on the 2D grid. Waves whose tile does not lie
	// fully inside the output, or that have less than one full block of
	// reduction to do, perform no work: the grid does not always divide
	// the matrix evenly and this is the expected steady state for them.
	matrixCoordC := mappingC.MatrixCoord()
	if matrixCoordC.Row+cfg.BlockM > p.M || matrixCoordC.Col+cfg.BlockN > p.N || p.K < cfg.BlockK {
		return
	}

	// Accumulator starts zero-filled.
	fragAcc := NewFragment[CT](cfg.BlockM, cfg.BlockN)

	// With alpha == 0 the A*B term cannot contribute: skip the whole
	// accumulation, including its loads, leaving the accumulator zero.
	if p.Alpha != 0 {
		addrA := mappingA.DataCoord(p.Lda, Coord2{Row: matrixCoordC.Row, Col: 0})
		addrB := mappingB.DataCoord(p.Ldb, Coord2{Row: 0, Col: matrixCoordC.Col})

		// Prime the pipeline: first K-slice straight from global memory.
		fragA := NewFragment[InT](cfg.BlockM, cfg.BlockK)
		fragB := NewFragment[InT](cfg.BlockK, cfg.BlockN)
		LoadMatrixSync(fragA, p.A, addrA, p.Lda, cfg.LayoutA)
		LoadMatrixSync(fragB, p.B, addrB, p.Ldb, cfg.LayoutB)

		// Stage into the shared buffer through the register-file view:
		// same bits, (perLane x waveSize) row-major shape. The staging
		// layout follows the wave grid, A slots first then B slots.
		fragLdsA := fragA.registerFile(waveSize)
		fragLdsB := fragB.registerFile(waveSize)

		mappingLdsA := newMapping(k.perLaneA, waveSize, RowMajor, wave)
		mappingLdsB := newMapping(k.perLaneB, waveSize, RowMajor, wave)
		ldLds := lds.ldLds
		addrLdsA := mappingLdsA.DataCoord(ldLds, mappingLdsA.MatrixCoordOf(mappingLdsA.WaveCoord()))
		addrLdsB := mappingLdsB.DataCoord(ldLds, mappingLdsB.MatrixCoordOf(mappingLdsB.WaveCoord()))
		ldsA := lds.a()
		ldsB := lds.b()

		StoreMatrixSync(ldsA, addrLdsA, fragLdsA, ldLds, RowMajor)
		StoreMatrixSync(ldsB, addrLdsB, fragLdsB, ldLds, RowMajor)

		// A steps BlockK columns through M x K; B steps BlockK rows
		// through K x N.
		incrA := mappingA.DataOffset(p.Lda, Coord2{Row: 0, Col: cfg.BlockK})
		incrB := mappingB.DataOffset(p.Ldb, Coord2{Row: cfg.BlockK, Col: 0})
		endA := addrA + incrA*(p.K/cfg.BlockK)

		addrA += incrA
		addrB += incrB

		fragANext := NewFragment[InT](cfg.BlockM, cfg.BlockK)
		fragBNext := NewFragment[InT](cfg.BlockK, cfg.BlockN)
		ldsANext := fragANext.registerFile(waveSize)
		ldsBNext := fragBNext.registerFile(waveSize)

		for addrA != endA {
			// Not needed for correctness: each wave only touches its own
			// staging slot. Keeping the workgroup in step means waves hit
			// the same neighborhoods of A and B at the same time, so the
			// cache reuse across waves survives.
			bar.Await()

			// Consume the currently staged slice.
			LoadMatrixSync(fragLdsA, ldsA, addrLdsA, ldLds, RowMajor)
			LoadMatrixSync(fragLdsB, ldsB, addrLdsB, ldLds, RowMajor)

			// Start pulling in the next slice.
			LoadMatrixSync(fragANext, p.A, addrA, p.Lda, cfg.LayoutA)
			LoadMatrixSync(fragBNext, p.B, addrB, p.Ldb, cfg.LayoutB)

			// Mma for the current slice.
			MmaSync(fragAcc, fragA, fragB, k.in.widen)

			// Single-buffered restage: the consuming load above already
			// read the old contents, so overwriting in place is safe.
			StoreMatrixSync(ldsA, addrLdsA, ldsANext, ldLds, RowMajor)
			StoreMatrixSync(ldsB, addrLdsB, ldsBNext, ldLds, RowMajor)

			addrA += incrA
			addrB += incrB
		}

		// Drain: one staged slice remains.
		LoadMatrixSync(fragLdsA, ldsA, addrLdsA, ldLds, RowMajor)
		LoadMatrixSync(fragLdsB, ldsB, addrLdsB, ldLds, RowMajor)
		MmaSync(fragAcc, fragA, fragB, k.in.widen)
	}

	k.epilogue(mappingC, mappingD, matrixCoordC, fragAcc, p)
}

// epilogue recombines the accumulator with the destination tile:
// D = OutT(alpha*CT(acc) + beta*CT(C)), then stores D under its layout.
func (k *Kernel[InT, OutT, CT]) epilogue(mappingC, mappingD Mapping, coord Coord2, fragAcc Fragment[CT], p *Problem[InT, OutT, CT]) {
	fragC := NewFragment[OutT](k.cfg.BlockM, k.cfg.BlockN)
	if p.Beta != 0 {
		addrC := mappingC.DataCoord(p.Ldc, coord)
		LoadMatrixSync(fragC, p.C, addrC, p.Ldc, k.cfg.LayoutC)
	}
	for i := range fragC.data {
		fragC.data[i] = k.out.narrow(p.Alpha*fragAcc.data[i] + p.Beta*k.out.widen(fragC.data[i]))
	}
	addrD := mappingD.DataCoord(p.Ldd, coord)
	StoreMatrixSync(p.D, addrD, fragC, p.Ldd, k.cfg.LayoutD)
}
