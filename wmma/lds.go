package wmma

// sharedStage models the per-workgroup LDS scratch region used to stage
// operand fragments between pipeline steps. Fragments are stored through
// their register-file reinterpretation, row-major, which keeps the
// hardware analogue free of bank conflicts.
//
// The region is split into two disjoint sub-regions: all A slots first,
// then all B slots (bBase = size of the A region). Each wave owns a
// statically assigned slot in each region and never touches another
// wave's slot, so access needs no locking.
type sharedStage[T any] struct {
	data  []T
	ldLds int // on-chip leading dimension: waveSize * wgDim.Y
	bBase int // element offset of the B region
}

// stageElems returns the total element count the staging buffer needs for
// a workgroup of wgDim waves with the given whole-tile fragment sizes.
func stageElems(wgDim Dim2, waveSize, fragAElems, fragBElems int) int {
	ldLds := waveSize * wgDim.Y
	perLaneA := fragAElems / waveSize
	perLaneB := fragBElems / waveSize
	return wgDim.X * (perLaneA + perLaneB) * ldLds
}

func newSharedStage[T any](wgDim Dim2, waveSize, fragAElems, fragBElems int) *sharedStage[T] {
	ldLds := waveSize * wgDim.Y
	perLaneA := fragAElems / waveSize
	aSize := wgDim.X * perLaneA * ldLds
	return &sharedStage[T]{
		data:  make([]T, stageElems(wgDim, waveSize, fragAElems, fragBElems)),
		ldLds: ldLds,
		bBase: aSize,
	}
}

// a returns the A sub-region.
func (s *sharedStage[T]) a() []T { return s.data[:s.bBase] }

// b returns the B sub-region.
func (s *sharedStage[T]) b() []T { return s.data[s.bBase:] }
