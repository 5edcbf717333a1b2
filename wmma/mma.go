package wmma

// Fragment capabilities: fill, load from memory, store to memory, and the
// fused multiply-accumulate. Loads and stores are layout-aware; the
// fragment's internal order is always tile-row-major regardless of the
// memory layout it was read from.

// FillFragment sets every element of f to v.
func FillFragment[T any](f Fragment[T], v T) {
	for i := range f.data {
		f.data[i] = v
	}
}

// LoadMatrixSync fills f from mem, whose tile starts at element index
// base with leading dimension ld under the given layout.
func LoadMatrixSync[T any](f Fragment[T], mem []T, base, ld int, layout Layout) {
	if layout == RowMajor {
		idx := 0
		for r := 0; r < f.rows; r++ {
			rowBase := base + r*ld
			copy(f.data[idx:idx+f.cols], mem[rowBase:rowBase+f.cols])
			idx += f.cols
		}
		return
	}
	idx := 0
	for r := 0; r < f.rows; r++ {
		for c := 0; c < f.cols; c++ {
			f.data[idx] = mem[base+c*ld+r]
			idx++
		}
	}
}

// StoreMatrixSync writes f to mem at element index base with leading
// dimension ld under the given layout.
func StoreMatrixSync[T any](mem []T, base int, f Fragment[T], ld int, layout Layout) {
	if layout == RowMajor {
		idx := 0
		for r := 0; r < f.rows; r++ {
			rowBase := base + r*ld
			copy(mem[rowBase:rowBase+f.cols], f.data[idx:idx+f.cols])
			idx += f.cols
		}
		return
	}
	idx := 0
	for r := 0; r < f.rows; r++ {
		for c := 0; c < f.cols; c++ {
			mem[base+c*ld+r] = f.data[idx]
			idx++
		}
	}
}

// MmaSync accumulates acc += a x b, widening each input element to the
// compute type before the multiply. Shapes: acc is M x N, a is M x K,
// b is K x N.
func MmaSync[InT Element, CT Compute](acc Fragment[CT], a, b Fragment[InT], widen func(InT) CT) {
	m, n, k := acc.rows, acc.cols, a.cols
	for mi := 0; mi < m; mi++ {
		aRow := a.data[mi*k : (mi+1)*k]
		accRow := acc.data[mi*n : (mi+1)*n]
		for ki := 0; ki < k; ki++ {
			av := widen(aRow[ki])
			bRow := b.data[ki*n : (ki+1)*n]
			for ni := 0; ni < n; ni++ {
				accRow[ni] += av * widen(bRow[ni])
			}
		}
	}
}
