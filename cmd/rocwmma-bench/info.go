package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"golang.org/x/sys/cpu"

	"github.com/mkarunan/rocWMMA/wmma"
)

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "show the modeled device, supported type tuples and host CPU features",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			printInfo(os.Stdout)
			return nil
		},
	}
}

func printInfo(w *os.File) {
	dev := wmma.DefaultDevice()
	_, _ = fmt.Fprintf(w, "Device (modeled)\n")
	_, _ = fmt.Fprintf(w, "  architecture:       %s\n", dev.Arch)
	_, _ = fmt.Fprintf(w, "  wave size:          %d\n", dev.WaveSize)
	_, _ = fmt.Fprintf(w, "  shared memory:      %s per workgroup\n", humanize.IBytes(uint64(dev.SharedMemPerWorkgroup)))
	_, _ = fmt.Fprintf(w, "  max threads:        %d per workgroup\n", dev.MaxThreadsPerWorkgroup)

	_, _ = fmt.Fprintf(w, "\nSupported type tuples (input/output/compute)\n")
	for _, tuple := range wmma.SupportedTuples() {
		_, _ = fmt.Fprintf(w, "  %s/%s/%s\n",
			strings.ToLower(tuple.Input.String()),
			strings.ToLower(tuple.Output.String()),
			strings.ToLower(tuple.Compute.String()))
	}

	_, _ = fmt.Fprintf(w, "\nHost\n")
	_, _ = fmt.Fprintf(w, "  os/arch:            %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(w, "  logical CPUs:       %d\n", runtime.NumCPU())
	if features := hostFeatures(); len(features) > 0 {
		_, _ = fmt.Fprintf(w, "  simd features:      %s\n", strings.Join(features, " "))
	}
}

// hostFeatures lists the SIMD capabilities relevant to the float paths on
// the host running the simulation.
func hostFeatures() []string {
	var features []string
	add := func(name string, has bool) {
		if has {
			features = append(features, name)
		}
	}
	add("avx", cpu.X86.HasAVX)
	add("avx2", cpu.X86.HasAVX2)
	add("fma", cpu.X86.HasFMA)
	add("avx512f", cpu.X86.HasAVX512F)
	add("avx512bf16", cpu.X86.HasAVX512BF16)
	add("f16c", cpu.X86.HasF16C)
	add("neon(asimd)", cpu.ARM64.HasASIMD)
	add("asimdhp", cpu.ARM64.HasASIMDHP)
	add("bf16", cpu.ARM64.HasBF16)
	return features
}
