// Package reference provides a plain CPU GEMM and an elementwise
// relative-error comparator. The kernel never depends on it; it exists
// to validate kernel output in tests and in the bench driver.
package reference

import (
	"math"

	"github.com/mkarunan/rocWMMA/wmma"
)

// Gemm computes d = alpha*a*b + beta*c on float64 data, honoring each
// matrix's own leading dimension and layout. Inputs of narrower types
// are expected to be widened by the caller first, so the reference sees
// exactly the values the kernel consumed.
func Gemm(m, n, k int,
	a, b, c []float64, d []float64,
	lda, ldb, ldc, ldd int,
	alpha, beta float64,
	layoutA, layoutB, layoutC, layoutD wmma.Layout) {
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var acc float64
			for kk := 0; kk < k; kk++ {
				acc += at(a, lda, layoutA, i, kk) * at(b, ldb, layoutB, kk, j)
			}
			v := alpha * acc
			if beta != 0 {
				v += beta * at(c, ldc, layoutC, i, j)
			}
			if layoutD == wmma.RowMajor {
				d[i*ldd+j] = v
			} else {
				d[j*ldd+i] = v
			}
		}
	}
}

func at(m []float64, ld int, layout wmma.Layout, r, c int) float64 {
	if layout == wmma.RowMajor {
		return m[r*ld+c]
	}
	return m[c*ld+r]
}

// CompareEqual reports whether got matches want elementwise within the
// relative tolerance, and the maximum relative error observed. Errors
// are relative to max(|want|, 1) so near-zero references do not blow up
// the ratio.
func CompareEqual(want, got []float64, tolerance float64) (bool, float64) {
	var maxRelErr float64
	for i := range want {
		w, g := want[i], got[i]
		if math.IsNaN(w) || math.IsNaN(g) {
			if math.IsNaN(w) && math.IsNaN(g) {
				continue
			}
			return false, math.Inf(1)
		}
		denom := math.Abs(w)
		if denom < 1 {
			denom = 1
		}
		relErr := math.Abs(g-w) / denom
		if relErr > maxRelErr {
			maxRelErr = relErr
		}
	}
	return maxRelErr <= tolerance, maxRelErr
}

// Epsilon returns the unit roundoff of the named storage width in bits
// of mantissa: callers derive test tolerances from it.
func Epsilon(mantissaBits int) float64 {
	return math.Ldexp(1, -mantissaBits)
}
