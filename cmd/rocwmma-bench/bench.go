package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"k8s.io/klog/v2"

	"github.com/mkarunan/rocWMMA/internal/reference"
	"github.com/mkarunan/rocWMMA/wmma"
)

// problemSpec is one GEMM instantiation, either built from run flags or
// decoded from a suite YAML entry.
type problemSpec struct {
	Name string `yaml:"name"`

	M int `yaml:"m"`
	N int `yaml:"n"`
	K int `yaml:"k"`

	BlockM int `yaml:"block_m"`
	BlockN int `yaml:"block_n"`
	BlockK int `yaml:"block_k"`

	Input   string `yaml:"input"`
	Output  string `yaml:"output"`
	Compute string `yaml:"compute"`

	LayoutA string `yaml:"layout_a"`
	LayoutB string `yaml:"layout_b"`
	LayoutC string `yaml:"layout_c"`
	LayoutD string `yaml:"layout_d"`

	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`

	Iters     int     `yaml:"iters"`
	Validate  bool    `yaml:"validate"`
	Tolerance float64 `yaml:"tolerance"`
}

// runProblem executes one spec on the default device, prints the
// throughput line and, when asked, validates against the CPU reference.
func runProblem(ctx context.Context, w io.Writer, spec problemSpec) error {
	inType, err := parseDType(spec.Input)
	if err != nil {
		return errors.Wrapf(err, "problem %q", spec.Name)
	}
	outType, err := parseDType(spec.Output)
	if err != nil {
		return errors.Wrapf(err, "problem %q", spec.Name)
	}
	computeType, err := parseDType(spec.Compute)
	if err != nil {
		return errors.Wrapf(err, "problem %q", spec.Name)
	}
	cfg := wmma.Config{
		BlockM: spec.BlockM, BlockN: spec.BlockN, BlockK: spec.BlockK,
	}
	if cfg.LayoutA, err = parseLayout(spec.LayoutA); err != nil {
		return errors.Wrapf(err, "problem %q: layout-a", spec.Name)
	}
	if cfg.LayoutB, err = parseLayout(spec.LayoutB); err != nil {
		return errors.Wrapf(err, "problem %q: layout-b", spec.Name)
	}
	if cfg.LayoutC, err = parseLayout(spec.LayoutC); err != nil {
		return errors.Wrapf(err, "problem %q: layout-c", spec.Name)
	}
	if cfg.LayoutD, err = parseLayout(spec.LayoutD); err != nil {
		return errors.Wrapf(err, "problem %q: layout-d", spec.Name)
	}

	fn, err := wmma.GemmFor(wmma.TypeTuple{Input: inType, Output: outType, Compute: computeType})
	if err != nil {
		return errors.Wrapf(err, "problem %q", spec.Name)
	}

	rng := rand.New(rand.NewSource(42))
	a := makeOperand(inType, spec.M*spec.K, rng)
	b := makeOperand(inType, spec.K*spec.N, rng)
	d := makeOperand(outType, spec.M*spec.N, nil)
	var c any
	if spec.Beta != 0 {
		c = makeOperand(outType, spec.M*spec.N, rng)
	}

	// Leading dimensions follow the storage layout of each operand.
	raw := wmma.RawProblem{
		M: spec.M, N: spec.N, K: spec.K,
		A: a, B: b, C: c, D: d,
		Lda: ldFor(spec.M, spec.K, cfg.LayoutA),
		Ldb: ldFor(spec.K, spec.N, cfg.LayoutB),
		Ldc: ldFor(spec.M, spec.N, cfg.LayoutC),
		Ldd: ldFor(spec.M, spec.N, cfg.LayoutD),
		Alpha: spec.Alpha, Beta: spec.Beta,
	}
	launch := defaultLaunch(wmma.DefaultDevice(), spec.M, spec.N, cfg.BlockM, cfg.BlockN)

	iters := spec.Iters
	if iters <= 0 {
		iters = 1
	}
	start := time.Now()
	for i := 0; i < iters; i++ {
		if err := fn(ctx, nil, cfg, launch, raw); err != nil {
			return errors.Wrapf(err, "problem %q", spec.Name)
		}
	}
	elapsed := time.Since(start)

	flops := 2 * float64(spec.M) * float64(spec.N) * float64(spec.K) * float64(iters)
	_, _ = fmt.Fprintf(w, "%-16s %5dx%-5dx%-5d %s/%s/%s block %dx%dx%d  %8s  %s\n",
		spec.Name, spec.M, spec.N, spec.K,
		strings.ToLower(inType.String()), strings.ToLower(outType.String()), strings.ToLower(computeType.String()),
		cfg.BlockM, cfg.BlockN, cfg.BlockK,
		elapsed/time.Duration(iters),
		humanize.SIWithDigits(flops/elapsed.Seconds(), 2, "FLOP/s"))

	if !spec.Validate {
		return nil
	}
	return validateProblem(w, spec, cfg, raw)
}

// validateProblem recomputes D with the float64 reference and reports the
// maximum relative error.
func validateProblem(w io.Writer, spec problemSpec, cfg wmma.Config, raw wmma.RawProblem) error {
	cRef := make([]float64, spec.M*spec.N)
	if raw.C != nil {
		cRef = toFloat64(raw.C)
	}
	want := make([]float64, spec.M*spec.N)
	reference.Gemm(spec.M, spec.N, spec.K,
		toFloat64(raw.A), toFloat64(raw.B), cRef, want,
		raw.Lda, raw.Ldb, raw.Ldc, raw.Ldd, raw.Alpha, raw.Beta,
		cfg.LayoutA, cfg.LayoutB, cfg.LayoutC, cfg.LayoutD)

	ok, maxRelErr := reference.CompareEqual(want, toFloat64(raw.D), spec.Tolerance)
	if !ok {
		return errors.Errorf("problem %q: validation failed, max relative error %g exceeds %g",
			spec.Name, maxRelErr, spec.Tolerance)
	}
	klog.V(1).Infof("problem %q validated, max relative error %g", spec.Name, maxRelErr)
	_, _ = fmt.Fprintf(w, "%-16s validation OK (max relative error %.3g)\n", spec.Name, maxRelErr)
	return nil
}

// defaultLaunch mirrors Kernel.DefaultLaunch for the untyped dispatch
// path: cover the output with up to 2x2 waves per workgroup.
func defaultLaunch(dev *wmma.Device, m, n, blockM, blockN int) wmma.Launch {
	tilesX := (m + blockM - 1) / blockM
	tilesY := (n + blockN - 1) / blockN
	wgX := min(2, tilesX)
	wgY := min(2, tilesY)
	return wmma.Launch{
		GridDim:  wmma.Dim2{X: (tilesX + wgX - 1) / wgX, Y: (tilesY + wgY - 1) / wgY},
		BlockDim: wmma.Dim2{X: wgX * dev.WaveSize, Y: wgY},
	}
}

func ldFor(rows, cols int, layout wmma.Layout) int {
	if layout == wmma.RowMajor {
		return cols
	}
	return rows
}

func parseDType(s string) (dtypes.DType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f16", "fp16", "float16", "half":
		return dtypes.Float16, nil
	case "bf16", "bfloat16":
		return dtypes.BFloat16, nil
	case "f32", "fp32", "float32", "", "float":
		return dtypes.Float32, nil
	case "f64", "fp64", "float64", "double":
		return dtypes.Float64, nil
	case "i8", "int8":
		return dtypes.Int8, nil
	case "i32", "int32":
		return dtypes.Int32, nil
	}
	return dtypes.InvalidDType, errors.Errorf("unknown data type %q", s)
}

func parseLayout(s string) (wmma.Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "row", "row-major", "row_major", "n", "":
		return wmma.RowMajor, nil
	case "col", "column", "col-major", "col_major", "t":
		return wmma.ColMajor, nil
	}
	return wmma.RowMajor, errors.Errorf("unknown layout %q (want row or col)", s)
}

// makeOperand allocates n elements of dtype; a nil rng leaves them zero,
// otherwise they are filled with small random values.
func makeOperand(dtype dtypes.DType, n int, rng *rand.Rand) any {
	switch dtype {
	case dtypes.Float16:
		s := make([]float16.Float16, n)
		if rng != nil {
			for i := range s {
				s[i] = float16.Fromfloat32(rng.Float32()*2 - 1)
			}
		}
		return s
	case dtypes.BFloat16:
		s := make([]bfloat16.BFloat16, n)
		if rng != nil {
			for i := range s {
				s[i] = bfloat16.FromFloat32(rng.Float32()*2 - 1)
			}
		}
		return s
	case dtypes.Float32:
		s := make([]float32, n)
		if rng != nil {
			for i := range s {
				s[i] = rng.Float32()*2 - 1
			}
		}
		return s
	case dtypes.Float64:
		s := make([]float64, n)
		if rng != nil {
			for i := range s {
				s[i] = rng.Float64()*2 - 1
			}
		}
		return s
	case dtypes.Int8:
		s := make([]int8, n)
		if rng != nil {
			for i := range s {
				s[i] = int8(rng.Intn(9) - 4)
			}
		}
		return s
	case dtypes.Int32:
		s := make([]int32, n)
		if rng != nil {
			for i := range s {
				s[i] = int32(rng.Intn(9) - 4)
			}
		}
		return s
	}
	return nil
}

// toFloat64 widens a flat operand slice to float64 for the reference.
func toFloat64(flat any) []float64 {
	switch s := flat.(type) {
	case []float16.Float16:
		out := make([]float64, len(s))
		for i, v := range s {
			out[i] = float64(v.Float32())
		}
		return out
	case []bfloat16.BFloat16:
		out := make([]float64, len(s))
		for i, v := range s {
			out[i] = float64(v.Float32())
		}
		return out
	case []float32:
		out := make([]float64, len(s))
		for i, v := range s {
			out[i] = float64(v)
		}
		return out
	case []float64:
		out := make([]float64, len(s))
		copy(out, s)
		return out
	case []int8:
		out := make([]float64, len(s))
		for i, v := range s {
			out[i] = float64(v)
		}
		return out
	case []int32:
		out := make([]float64, len(s))
		for i, v := range s {
			out[i] = float64(v)
		}
		return out
	}
	return nil
}
