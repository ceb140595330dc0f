package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wang5768/jumanji/internal/benchmark"
	"github.com/wang5768/jumanji/internal/binpack"
	"github.com/wang5768/jumanji/internal/export"
	"github.com/wang5768/jumanji/internal/model"
	"github.com/wang5768/jumanji/internal/persistence/resultsdb"
	"github.com/wang5768/jumanji/internal/persistence/tracelog"
	"github.com/wang5768/jumanji/internal/project"
)

func runCommand(configPath *string, logger *log.Logger) *cobra.Command {
	var (
		envName   string
		instance  string
		seed      int64
		episodes  int
		steps     int
		timeUnit  string
		trace     string
		resultsDB string
		reportDir string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark an environment with a random legal policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := project.LoadRunConfig(*configPath)
			if err != nil {
				return err
			}

			f := cmd.Flags()
			if f.Changed("env") {
				cfg.Env = envName
			}
			if f.Changed("instance") {
				cfg.Instance.Path = instance
			}
			if f.Changed("seed") {
				cfg.Seed = seed
			}
			if f.Changed("episodes") {
				cfg.Episodes, cfg.Steps = episodes, 0
			}
			if f.Changed("steps") {
				cfg.Steps = steps
			}
			if f.Changed("time-unit") {
				cfg.TimeUnit = timeUnit
			}
			if f.Changed("trace") {
				cfg.Output.Trace = trace
			}
			if f.Changed("db") {
				cfg.Output.ResultsDB = resultsDB
			}
			if f.Changed("report-dir") {
				cfg.Output.ReportDir = reportDir
			}

			_, err = runBenchmark(cmd.Context(), cfg, logger)
			return err
		},
	}

	cmd.Flags().StringVarP(&envName, "env", "e", "", "Registered environment name")
	cmd.Flags().StringVarP(&instance, "instance", "i", "", "Bin-packing instance file (.csv, .xlsx, .dxf)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed")
	cmd.Flags().IntVar(&episodes, "episodes", 0, "Number of episodes to run")
	cmd.Flags().IntVar(&steps, "steps", 0, "Number of steps to run (overrides episodes)")
	cmd.Flags().StringVar(&timeUnit, "time-unit", "ms", "Time unit of reported durations (ms or s)")
	cmd.Flags().StringVar(&trace, "trace", "", "Write a zstd-compressed JSONL step trace")
	cmd.Flags().StringVar(&resultsDB, "db", "", "Record episodes in a SQLite database")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "Write final states and a PDF packing report here")
	return cmd
}

// runBenchmark runs cfg and writes its sinks. A positive Steps switches the
// run to step mode.
func runBenchmark(ctx context.Context, cfg project.RunConfig, logger *log.Logger) (res benchmark.Result, err error) {
	if cfg.TimeUnit != "ms" && cfg.TimeUnit != "s" {
		return res, fmt.Errorf("time unit %q: want ms or s", cfg.TimeUnit)
	}
	if cfg.Steps > 0 {
		cfg.Episodes = 0
	}

	e, name, err := makeEnv(cfg)
	if err != nil {
		return res, err
	}

	bc := benchmark.Config{
		EnvName:  name,
		Seed:     cfg.Seed,
		Episodes: cfg.Episodes,
		Steps:    cfg.Steps,
		Millis:   cfg.TimeUnit == "ms",
		Policy:   benchmark.RandomLegal{},
		Logger:   logger,
	}

	if cfg.Output.Trace != "" {
		w, terr := tracelog.Create(cfg.Output.Trace)
		if terr != nil {
			return res, terr
		}
		defer func() {
			if cerr := w.Close(); err == nil {
				err = cerr
			}
		}()
		bc.Trace = w
	}

	if cfg.Output.ResultsDB != "" {
		db, derr := resultsdb.Open(cfg.Output.ResultsDB)
		if derr != nil {
			return res, derr
		}
		defer db.Close()
		bc.Results = db
	}

	res, err = benchmark.Run(ctx, e, bc)
	if err != nil {
		return res, err
	}

	if cfg.Output.ReportDir != "" {
		if err := writeRunReport(cfg.Output.ReportDir, name, cfg.Seed, res); err != nil {
			return res, err
		}
		logger.Printf("report written to %s", cfg.Output.ReportDir)
	}
	return res, nil
}

// writeRunReport saves the final state of the last episode as a snapshot
// and, for bin-packing runs, renders every episode's final packing.
func writeRunReport(dir, name string, seed int64, res benchmark.Result) error {
	if len(res.Episodes) == 0 {
		return fmt.Errorf("no finished episodes to report")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	last := res.Episodes[len(res.Episodes)-1]
	if err := project.SaveSnapshot(filepath.Join(dir, "final_state.json"), name, seed, last.Steps, last.Final); err != nil {
		return err
	}

	var results []model.PackingResult
	for _, ep := range res.Episodes {
		if s, ok := ep.Final.(binpack.State); ok {
			results = append(results, binpack.Result(fmt.Sprintf("episode %d", ep.Index+1), s))
		}
	}
	if len(results) == 0 {
		return nil
	}
	return export.ExportPDF(filepath.Join(dir, "report.pdf"), results...)
}
