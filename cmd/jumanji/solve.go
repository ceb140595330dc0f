package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wang5768/jumanji/internal/benchmark"
	"github.com/wang5768/jumanji/internal/binpack"
	"github.com/wang5768/jumanji/internal/export"
	"github.com/wang5768/jumanji/internal/model"
	"github.com/wang5768/jumanji/internal/project"
	"github.com/wang5768/jumanji/internal/rng"
	"github.com/wang5768/jumanji/internal/solver"
)

type solveOptions struct {
	envName   string
	instance  project.InstanceConfig
	container string // preset name
	inventory string
	seed      int64
	genetic   solver.GeneticConfig
	outDir    string
	millis    bool
}

func solveCommand(inventoryPath *string, logger *log.Logger) *cobra.Command {
	opts := solveOptions{
		instance: project.InstanceConfig{MaxNumEMS: 40},
		genetic:  solver.DefaultGeneticConfig(),
	}
	var timeUnit string

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Pack an instance with the greedy and genetic solvers and write reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.millis = timeUnit != "s"
			opts.inventory = *inventoryPath
			_, err := solve(opts, logger)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.envName, "env", "e", "BinPack-toy-v0", "Registered bin-packing environment")
	f.StringVarP(&opts.instance.Path, "instance", "i", "", "Instance file (.csv, .xlsx, .dxf); overrides --env")
	f.IntVar(&opts.instance.MaxNumEMS, "max-num-ems", opts.instance.MaxNumEMS, "EMS capacity for instance files")
	f.StringVar(&opts.container, "container", "", "Container preset (see list --containers)")
	f.Int64Var(&opts.seed, "seed", 0, "Random seed")
	f.IntVar(&opts.genetic.PopulationSize, "population", opts.genetic.PopulationSize, "Genetic population size")
	f.IntVar(&opts.genetic.Generations, "generations", opts.genetic.Generations, "Genetic generations")
	f.StringVarP(&opts.outDir, "out", "o", ".", "Output directory for reports")
	f.StringVar(&timeUnit, "time-unit", "ms", "Time unit of reported durations (ms or s)")
	return cmd
}

// solve compares the solvers on one instance and writes the PDF report of
// every solver, labels and a DXF wireframe of the best packing, and a
// snapshot of its state.
func solve(opts solveOptions, logger *log.Logger) (solver.Comparison, error) {
	gen, err := solver.NewGenetic(opts.genetic)
	if err != nil {
		return solver.Comparison{}, err
	}

	g, name, err := solveGenerator(opts)
	if err != nil {
		return solver.Comparison{}, err
	}

	instanceKey, solveKey := rng.NewKey(opts.seed).Split()
	s := g.Generate(instanceKey)

	cs := solver.CompareSolvers(s, solveKey, solver.Greedy{}, gen)
	results := make([]model.PackingResult, len(cs))
	for i, c := range cs {
		logger.Printf("%-8s utilization %6.2f%%, placed %d/%d in %s",
			c.Solver, 100*c.Utilization, c.Placed, c.Placed+c.Unplaced, benchmark.FormatDuration(c.Elapsed, opts.millis))
		results[i] = c.Result
	}
	best, _ := solver.Best(cs)

	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return best, err
	}
	out := func(file string) string { return filepath.Join(opts.outDir, file) }

	if err := export.ExportPDF(out("report.pdf"), results...); err != nil {
		return best, fmt.Errorf("pdf report: %w", err)
	}
	if best.Placed > 0 {
		if err := export.ExportLabels(out("labels.pdf"), best.Result); err != nil {
			return best, fmt.Errorf("labels: %w", err)
		}
	}
	if err := export.ExportDXF(out("packing.dxf"), best.Result); err != nil {
		return best, fmt.Errorf("dxf: %w", err)
	}
	if err := project.SaveSnapshot(out("solution.json"), name, opts.seed, best.Placed, best.State); err != nil {
		return best, err
	}
	logger.Printf("best: %s, reports written to %s", best.Solver, opts.outDir)
	return best, nil
}

func solveGenerator(opts solveOptions) (binpack.Generator, string, error) {
	var container *model.Container
	if opts.container != "" {
		c, err := presetContainer(opts.inventory, opts.container)
		if err != nil {
			return nil, "", err
		}
		container = &c
	}

	if opts.instance.Path != "" {
		ic := opts.instance
		if container != nil {
			ic.Container = []float64{container.XLen(), container.YLen(), container.ZLen()}
		}
		g, err := fileGenerator(ic)
		return g, filepath.Base(ic.Path), err
	}

	g, err := binPackGenerator(opts.envName)
	if err != nil {
		return nil, "", err
	}
	if container != nil {
		g, err = withContainer(g, *container)
	}
	return g, opts.envName, err
}
