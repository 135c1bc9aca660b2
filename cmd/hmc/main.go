package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v2"

	"github.com/anirband/hmc"
)

var app = cli.App{
	Name:  "hmc",
	Usage: "sample from continuous distributions with Hamiltonian Monte Carlo",
	Commands: []*cli.Command{
		&sampleCommand,
	},
}

var sampleCommand = cli.Command{
	Action: runSample,
	Name:   "sample",
	Usage:  "draw samples from a YAML-declared Gaussian target",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "YAML file declaring the target distribution", Required: true},
		&cli.IntFlag{Name: "samples", Aliases: []string{"n"}, Usage: "number of samples to draw", Value: 10000},
		&cli.IntFlag{Name: "adapt", Usage: "warm-up iterations of stepsize adaptation (0 disables)", Value: 0},
		&cli.Float64Flag{Name: "trajectory", Usage: "simulated time per iteration", Value: 2},
		&cli.Float64Flag{Name: "stepsize", Usage: "integration stepsize (0 derives one automatically)", Value: 0},
		&cli.Float64Flag{Name: "delta", Usage: "target acceptance rate for adaptation", Value: hmc.DefaultDelta},
		&cli.Uint64Flag{Name: "seed", Usage: "random seed", Value: 1},
		&cli.StringFlag{Name: "initial", Usage: "comma-separated start position (default: target mean)"},
		&cli.StringFlag{Name: "format", Usage: "chain output format: table or matrix", Value: "table"},
		&cli.BoolFlag{Name: "full", Usage: "print the full chain instead of the summary only"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log adaptation progress"},
	},
	Description: `
The sample command draws an HMC chain from the Gaussian target declared in
the --target file. With --adapt > 1 the stepsize is tuned by dual averaging
during the warm-up iterations and frozen afterwards.`,
}

func runSample(ctx *cli.Context) error {
	level := slog.LevelInfo
	if ctx.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})).With("run", uuid.NewString())

	target, err := loadTarget(ctx.String("target"))
	if err != nil {
		return err
	}

	kind, err := hmc.ParseOutputKind(ctx.String("format"))
	if err != nil {
		return err
	}

	initial, err := parseFloats(ctx.String("initial"))
	if err != nil {
		return fmt.Errorf("parsing --initial: %w", err)
	}
	if initial == nil {
		initial = target.Mean()
	}

	cfg := hmc.SamplerConfig{Seed: ctx.Uint64("seed"), Logger: logger}
	numSamples := ctx.Int("samples")
	numAdapt := ctx.Int("adapt")
	trajectory := ctx.Float64("trajectory")
	stepsize := ctx.Float64("stepsize")

	logger.Info("sampling",
		"variables", target.Variables(),
		"samples", numSamples,
		"adapt", numAdapt,
		"trajectory", trajectory,
	)
	start := time.Now()

	var chain *hmc.Chain
	if numAdapt > 1 {
		da, err := hmc.NewDualAveraging(target, ctx.Float64("delta"), cfg)
		if err != nil {
			return err
		}
		chain, err = da.Sample(initial, numAdapt, numSamples, trajectory, stepsize)
		if err != nil {
			return err
		}
	} else {
		s, err := hmc.NewSampler(target, cfg)
		if err != nil {
			return err
		}
		chain, err = s.Sample(initial, numSamples, trajectory, stepsize)
		if err != nil {
			return err
		}
	}

	logger.Info("sampling finished",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"accepted", chain.Stats().Accepted,
		"acceptance_rate", chain.Stats().AcceptanceRate,
	)

	if ctx.Bool("full") {
		if err := chain.Render(os.Stdout, kind); err != nil {
			return err
		}
	}
	printSummary(os.Stdout, chain)
	return nil
}

// printSummary writes per-variable empirical moments of the chain.
func printSummary(w io.Writer, chain *hmc.Chain) {
	mean := chain.Mean()
	cov := chain.Covariance()

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"variable", "mean", "variance"})
	for j, v := range chain.Variables() {
		tw.AppendRow(table.Row{v, fmt.Sprintf("%.4f", mean[j]), fmt.Sprintf("%.4f", cov.At(j, j))})
	}
	tw.AppendFooter(table.Row{"acceptance", fmt.Sprintf("%.4f", chain.Stats().AcceptanceRate), ""})
	tw.Render()
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
