package wmma

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Run executes D = alpha*A*B + beta*C over the given launch geometry.
// Workgroups are independent and scheduled on a bounded errgroup; the
// waves of one workgroup run as goroutines joined by the workgroup
// barrier. Launch-shape and staging-capacity problems are reported
// before any wave starts; after that the kernel is total.
func (k *Kernel[InT, OutT, CT]) Run(ctx context.Context, launch Launch, p Problem[InT, OutT, CT]) error {
	if err := launch.validate(k.dev); err != nil {
		return errors.Wrap(err, "wmma launch")
	}
	wgDim := launch.workgroupDim(k.dev.WaveSize)
	if err := k.checkStaging(wgDim); err != nil {
		return errors.Wrap(err, "wmma launch")
	}
	if err := k.checkProblem(&p); err != nil {
		return errors.Wrap(err, "wmma launch")
	}

	klog.V(1).Infof("wmma: launching %dx%d workgroups of %dx%d waves, block %dx%dx%d, problem %dx%dx%d",
		launch.GridDim.X, launch.GridDim.Y, wgDim.X, wgDim.Y,
		k.cfg.BlockM, k.cfg.BlockN, k.cfg.BlockK, p.M, p.N, p.K)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(k.maxParallelism)
	for bx := 0; bx < launch.GridDim.X; bx++ {
		for by := 0; by < launch.GridDim.Y; by++ {
			blockIdx := Dim2{X: bx, Y: by}
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				k.runWorkgroup(blockIdx, wgDim, &p)
				return nil
			})
		}
	}
	return g.Wait()
}

// runWorkgroup executes one workgroup: it reserves the staging buffer for
// the workgroup's lifetime and runs every wave to completion.
func (k *Kernel[InT, OutT, CT]) runWorkgroup(blockIdx, wgDim Dim2, p *Problem[InT, OutT, CT]) {
	lds := newSharedStage[InT](wgDim, k.dev.WaveSize, k.fragAElems, k.fragBElems)
	bar := newBarrier(wgDim.X * wgDim.Y)
	var wg sync.WaitGroup
	for wx := 0; wx < wgDim.X; wx++ {
		for wy := 0; wy < wgDim.Y; wy++ {
			wave := waveContext{blockIdx: blockIdx, waveIdx: Dim2{X: wx, Y: wy}, wgDim: wgDim}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer bar.Leave()
				k.waveMain(wave, lds, bar, p)
			}()
		}
	}
	wg.Wait()
}

// checkStaging verifies the staging buffer for this workgroup shape fits
// the device's shared memory.
func (k *Kernel[InT, OutT, CT]) checkStaging(wgDim Dim2) error {
	bytes := stageElems(wgDim, k.dev.WaveSize, k.fragAElems, k.fragBElems) * dtypeOf[InT]().Size()
	if bytes > k.dev.SharedMemPerWorkgroup {
		return errors.Errorf("staging buffer needs %d bytes, %s provides %d per workgroup",
			bytes, k.dev.Arch, k.dev.SharedMemPerWorkgroup)
	}
	return nil
}

// checkProblem does a light sanity pass over the caller-provided storage.
// The contract says these are caller-validated; this only catches slices
// that cannot possibly hold the declared extents.
func (k *Kernel[InT, OutT, CT]) checkProblem(p *Problem[InT, OutT, CT]) error {
	if p.M <= 0 || p.N <= 0 || p.K <= 0 {
		return errors.Errorf("problem %dx%dx%d must be positive", p.M, p.N, p.K)
	}
	if n := minLen(p.M, p.K, p.Lda, k.cfg.LayoutA); len(p.A) < n {
		return errors.Errorf("A has %d elements, needs at least %d", len(p.A), n)
	}
	if n := minLen(p.K, p.N, p.Ldb, k.cfg.LayoutB); len(p.B) < n {
		return errors.Errorf("B has %d elements, needs at least %d", len(p.B), n)
	}
	if p.Beta != 0 {
		if n := minLen(p.M, p.N, p.Ldc, k.cfg.LayoutC); len(p.C) < n {
			return errors.Errorf("C has %d elements, needs at least %d", len(p.C), n)
		}
	}
	if n := minLen(p.M, p.N, p.Ldd, k.cfg.LayoutD); len(p.D) < n {
		return errors.Errorf("D has %d elements, needs at least %d", len(p.D), n)
	}
	return nil
}

// minLen is the smallest flat length that holds a rows x cols matrix
// under the given leading dimension and layout.
func minLen(rows, cols, ld int, layout Layout) int {
	if layout == RowMajor {
		return (rows-1)*ld + cols
	}
	return (cols-1)*ld + rows
}

// DefaultLaunch derives a launch geometry covering an M x N output with
// up to 2x2 waves per workgroup. Tiles that fall outside the output are
// idle by the bounds check.
func (k *Kernel[InT, OutT, CT]) DefaultLaunch(m, n int) Launch {
	tilesX := ceilDiv(m, k.cfg.BlockM)
	tilesY := ceilDiv(n, k.cfg.BlockN)
	wgX := min(2, tilesX)
	wgY := min(2, tilesY)
	return Launch{
		GridDim:  Dim2{X: ceilDiv(tilesX, wgX), Y: ceilDiv(tilesY, wgY)},
		BlockDim: Dim2{X: wgX * k.dev.WaveSize, Y: wgY},
	}
}
