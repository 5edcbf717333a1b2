// rocwmma-bench drives the wmma GEMM kernels from the command line:
// single runs, YAML-described suites, and a device/host capability report.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"k8s.io/klog/v2"
)

var (
	flagM, flagN, flagK      int64
	flagBlockM, flagBlockN   int64
	flagBlockK               int64
	flagInput, flagOutput    string
	flagCompute              string
	flagLayoutA, flagLayoutB string
	flagLayoutC, flagLayoutD string
	flagAlpha, flagBeta      float64
	flagIters                int64
	flagValidate             bool
	flagTolerance            float64
	flagSuitePath            string
)

func main() {
	klog.InitFlags(nil)
	app := &cli.Command{
		Name:  "rocwmma-bench",
		Usage: "benchmark and validate the wmma GEMM kernels",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			runCmd(),
			suiteCmd(),
			infoCmd(),
		},
	}
	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run one GEMM instantiation",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "m", Value: 1024, Usage: "output rows", Destination: &flagM},
			&cli.Int64Flag{Name: "n", Value: 1024, Usage: "output cols", Destination: &flagN},
			&cli.Int64Flag{Name: "k", Value: 1024, Usage: "reduction extent", Destination: &flagK},
			&cli.Int64Flag{Name: "block-m", Value: 16, Usage: "tile rows", Destination: &flagBlockM},
			&cli.Int64Flag{Name: "block-n", Value: 16, Usage: "tile cols", Destination: &flagBlockN},
			&cli.Int64Flag{Name: "block-k", Value: 16, Usage: "tile reduction width", Destination: &flagBlockK},
			&cli.StringFlag{Name: "input", Value: "float32", Usage: "input storage type", Destination: &flagInput},
			&cli.StringFlag{Name: "output", Value: "float32", Usage: "output storage type", Destination: &flagOutput},
			&cli.StringFlag{Name: "compute", Value: "float32", Usage: "accumulation type", Destination: &flagCompute},
			&cli.StringFlag{Name: "layout-a", Value: "row", Usage: "A layout (row|col)", Destination: &flagLayoutA},
			&cli.StringFlag{Name: "layout-b", Value: "row", Usage: "B layout (row|col)", Destination: &flagLayoutB},
			&cli.StringFlag{Name: "layout-c", Value: "row", Usage: "C layout (row|col)", Destination: &flagLayoutC},
			&cli.StringFlag{Name: "layout-d", Value: "row", Usage: "D layout (row|col)", Destination: &flagLayoutD},
			&cli.Float64Flag{Name: "alpha", Value: 1, Usage: "A*B scale", Destination: &flagAlpha},
			&cli.Float64Flag{Name: "beta", Value: 0, Usage: "C scale", Destination: &flagBeta},
			&cli.Int64Flag{Name: "iters", Value: 5, Usage: "timed iterations", Destination: &flagIters},
			&cli.BoolFlag{Name: "validate", Usage: "compare against the CPU reference", Destination: &flagValidate},
			&cli.Float64Flag{Name: "tolerance", Value: 1e-4, Usage: "relative error tolerance for --validate", Destination: &flagTolerance},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			spec := problemSpec{
				Name: "run",
				M:    int(flagM), N: int(flagN), K: int(flagK),
				BlockM: int(flagBlockM), BlockN: int(flagBlockN), BlockK: int(flagBlockK),
				Input: flagInput, Output: flagOutput, Compute: flagCompute,
				LayoutA: flagLayoutA, LayoutB: flagLayoutB, LayoutC: flagLayoutC, LayoutD: flagLayoutD,
				Alpha: flagAlpha, Beta: flagBeta,
				Iters: int(flagIters), Validate: flagValidate, Tolerance: flagTolerance,
			}
			return runProblem(ctx, os.Stdout, spec)
		},
	}
}

func suiteCmd() *cli.Command {
	return &cli.Command{
		Name:  "suite",
		Usage: "run every problem in a YAML suite file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "suite YAML path", Required: true, Destination: &flagSuitePath},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			suite, err := loadSuite(flagSuitePath)
			if err != nil {
				return err
			}
			for _, spec := range suite.Problems {
				if err := runProblem(ctx, os.Stdout, spec); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
