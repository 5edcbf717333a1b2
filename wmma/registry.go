package wmma

import (
	"context"
	"sort"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// TypeTuple identifies one (input, output, compute) storage combination.
type TypeTuple struct {
	Input, Output, Compute dtypes.DType
}

// RawProblem is the untyped form of Problem used by the runtime dispatch
// path: operand storage travels as flat slices behind any, and the
// scalars as float64 (converted to the compute type on entry).
type RawProblem struct {
	M, N, K int

	A, B, C, D any

	Lda, Ldb, Ldc, Ldd int

	Alpha, Beta float64
}

// GemmFunc is one registered kernel entry point, resolved from a
// TypeTuple at run time.
type GemmFunc func(ctx context.Context, dev *Device, cfg Config, launch Launch, raw RawProblem) error

// kernelRegistry maps dtype tuples to kernel entry points. Populated at
// init, read-only afterwards.
var kernelRegistry = map[TypeTuple]GemmFunc{}

func registerGemm[InT Element, OutT Element, CT Compute]() {
	tuple := TypeTuple{Input: dtypeOf[InT](), Output: dtypeOf[OutT](), Compute: dtypeOf[CT]()}
	kernelRegistry[tuple] = func(ctx context.Context, dev *Device, cfg Config, launch Launch, raw RawProblem) error {
		k, err := NewKernel[InT, OutT, CT](dev, cfg)
		if err != nil {
			return err
		}
		a, ok := raw.A.([]InT)
		if !ok {
			return errors.Errorf("A: want []%s, got %T", tuple.Input, raw.A)
		}
		b, ok := raw.B.([]InT)
		if !ok {
			return errors.Errorf("B: want []%s, got %T", tuple.Input, raw.B)
		}
		var c []OutT
		if raw.C != nil {
			if c, ok = raw.C.([]OutT); !ok {
				return errors.Errorf("C: want []%s, got %T", tuple.Output, raw.C)
			}
		}
		d, ok := raw.D.([]OutT)
		if !ok {
			return errors.Errorf("D: want []%s, got %T", tuple.Output, raw.D)
		}
		p := Problem[InT, OutT, CT]{
			M: raw.M, N: raw.N, K: raw.K,
			A: a, B: b, C: c, D: d,
			Lda: raw.Lda, Ldb: raw.Ldb, Ldc: raw.Ldc, Ldd: raw.Ldd,
			Alpha: CT(raw.Alpha), Beta: CT(raw.Beta),
		}
		return k.Run(ctx, launch, p)
	}
}

// GemmFor resolves the kernel entry point for tuple. An unknown tuple is
// an eligibility failure, reported before any launch.
func GemmFor(tuple TypeTuple) (GemmFunc, error) {
	fn, ok := kernelRegistry[tuple]
	if !ok {
		return nil, errors.Errorf("no kernel instantiation for input=%s output=%s compute=%s",
			tuple.Input, tuple.Output, tuple.Compute)
	}
	return fn, nil
}

// SupportedTuples lists every registered type combination, sorted for
// stable presentation.
func SupportedTuples() []TypeTuple {
	tuples := make([]TypeTuple, 0, len(kernelRegistry))
	for tuple := range kernelRegistry {
		tuples = append(tuples, tuple)
	}
	sort.Slice(tuples, func(i, j int) bool {
		a, b := tuples[i], tuples[j]
		if a.Input != b.Input {
			return a.Input < b.Input
		}
		if a.Output != b.Output {
			return a.Output < b.Output
		}
		return a.Compute < b.Compute
	})
	return tuples
}

func init() {
	registerGemm[float16.Float16, float16.Float16, float32]()
	registerGemm[float16.Float16, float32, float32]()
	registerGemm[bfloat16.BFloat16, bfloat16.BFloat16, float32]()
	registerGemm[bfloat16.BFloat16, float32, float32]()
	registerGemm[float32, float32, float32]()
	registerGemm[float32, float32, float64]()
	registerGemm[float64, float64, float64]()
	registerGemm[int8, int32, int32]()
}
