package wmma_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarunan/rocWMMA/internal/reference"
	"github.com/mkarunan/rocWMMA/wmma"
)

func TestGemmForKnownTuple(t *testing.T) {
	fn, err := wmma.GemmFor(wmma.TypeTuple{Input: dtypes.Float16, Output: dtypes.Float16, Compute: dtypes.Float32})
	require.NoError(t, err)
	require.NotNil(t, fn)
}

func TestGemmForUnknownTupleFailsEligibility(t *testing.T) {
	_, err := wmma.GemmFor(wmma.TypeTuple{Input: dtypes.Float64, Output: dtypes.Float32, Compute: dtypes.Float32})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no kernel instantiation")
}

func TestSupportedTuplesIsStable(t *testing.T) {
	first := wmma.SupportedTuples()
	require.NotEmpty(t, first)
	assert.Equal(t, first, wmma.SupportedTuples())
}

func TestRawDispatchMatchesReference(t *testing.T) {
	const m, n, k = 64, 64, 64
	fn, err := wmma.GemmFor(wmma.TypeTuple{Input: dtypes.Float32, Output: dtypes.Float32, Compute: dtypes.Float32})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(13))
	a := randomFlat[float32](rng, m*k, 1)
	b := randomFlat[float32](rng, k*n, 1)
	d := make([]float32, m*n)

	cfg := wmma.Config{BlockM: 16, BlockN: 16, BlockK: 16}
	launch := wmma.Launch{GridDim: wmma.Dim2{X: 2, Y: 2}, BlockDim: wmma.Dim2{X: 128, Y: 2}}
	raw := wmma.RawProblem{
		M: m, N: n, K: k,
		A: a, B: b, C: nil, D: d,
		Lda: k, Ldb: n, Ldc: n, Ldd: n,
		Alpha: 1, Beta: 0,
	}
	require.NoError(t, fn(context.Background(), nil, cfg, launch, raw))

	want := make([]float64, m*n)
	zeros := make([]float64, m*n)
	reference.Gemm(m, n, k, flatToF64(a), flatToF64(b), zeros, want,
		k, n, n, n, 1, 0, wmma.RowMajor, wmma.RowMajor, wmma.RowMajor, wmma.RowMajor)
	ok, maxRelErr := reference.CompareEqual(want, flatToF64(d), 1e-4)
	assert.True(t, ok, "max relative error %g", maxRelErr)
}

func TestRawDispatchRejectsWrongSliceType(t *testing.T) {
	fn, err := wmma.GemmFor(wmma.TypeTuple{Input: dtypes.Float32, Output: dtypes.Float32, Compute: dtypes.Float32})
	require.NoError(t, err)

	cfg := wmma.Config{BlockM: 16, BlockN: 16, BlockK: 16}
	launch := wmma.Launch{GridDim: wmma.Dim2{X: 1, Y: 1}, BlockDim: wmma.Dim2{X: 128, Y: 2}}
	raw := wmma.RawProblem{
		M: 32, N: 32, K: 32,
		A: []float64{}, B: []float32{}, D: []float32{},
		Lda: 32, Ldb: 32, Ldc: 32, Ldd: 32,
		Alpha: 1,
	}
	err = fn(context.Background(), nil, cfg, launch, raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want []")
}
