// Package benchmark measures environment throughput by running a policy for
// a number of episodes or a number of steps.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wang5768/jumanji/internal/binpack"
	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/persistence/resultsdb"
	"github.com/wang5768/jumanji/internal/rng"
)

// TraceWriter receives one record per step and one per finished episode.
type TraceWriter interface {
	Write(v any) error
}

// Config configures a benchmark run. Exactly one of Episodes and Steps must
// be positive.
type Config struct {
	EnvName  string
	Seed     int64
	Episodes int
	Steps    int
	// Millis reports durations in milliseconds instead of seconds.
	Millis bool
	Policy Policy

	Trace   TraceWriter
	Results *resultsdb.DB
	Logger  *log.Logger
}

// Record is a trace line.
type Record struct {
	Kind     string  `json:"kind"` // "step" or "episode"
	RunID    string  `json:"run_id"`
	Episode  string  `json:"episode"`
	Index    int     `json:"index"`
	Step     int     `json:"step,omitempty"`
	Action   int     `json:"action,omitempty"`
	Reward   float64 `json:"reward"`
	StepType string  `json:"step_type,omitempty"`
	Steps    int     `json:"steps,omitempty"`
}

// EpisodeStats is the outcome of one finished episode.
type EpisodeStats struct {
	ID          string
	Index       int
	Steps       int
	Return      float64
	Utilization float64
	Duration    time.Duration
	Final       any // last state
}

// Summary aggregates the finished episodes of a run.
type Summary struct {
	Episodes       int
	TotalSteps     int
	MeanReturn     float64
	StdReturn      float64
	MinReturn      float64
	MaxReturn      float64
	MeanSteps      float64
	Elapsed        time.Duration
	StepsPerSecond float64
}

// Result holds the outcome of a run.
type Result struct {
	RunID    string
	Episodes []EpisodeStats
	Summary  Summary
}

// Run drives e with cfg.Policy. In step mode the last episode may be cut
// short; its steps count towards the total but it is not reported as an
// episode.
func Run(ctx context.Context, e env.Dynamic, cfg Config) (Result, error) {
	if (cfg.Episodes > 0) == (cfg.Steps > 0) {
		return Result{}, fmt.Errorf("exactly one of episodes (%d) and steps (%d) must be positive: %w",
			cfg.Episodes, cfg.Steps, env.ErrInvalidConfig)
	}
	if cfg.Policy == nil {
		cfg.Policy = RandomLegal{}
	}
	mode := "episodes"
	if cfg.Steps > 0 {
		mode = "steps"
	}

	res := Result{RunID: uuid.New().String()}
	start := time.Now()
	if cfg.Results != nil {
		run := resultsdb.Run{ID: res.RunID, Env: cfg.EnvName, Seed: cfg.Seed, Mode: mode, StartedAt: start}
		if err := cfg.Results.RecordRun(ctx, run); err != nil {
			return res, err
		}
	}
	logf(cfg, "run %s: %s, %s mode, seed %d", res.RunID[:8], cfg.EnvName, mode, cfg.Seed)

	base := rng.NewKey(cfg.Seed)
	totalSteps := 0
	for idx := 0; ; idx++ {
		if cfg.Episodes > 0 && idx >= cfg.Episodes {
			break
		}
		if cfg.Steps > 0 && totalSteps >= cfg.Steps {
			break
		}
		budget := -1
		if cfg.Steps > 0 {
			budget = cfg.Steps - totalSteps
		}

		ep, finished, err := runEpisode(ctx, e, cfg, res.RunID, idx, base.Fold(uint64(idx)), budget)
		totalSteps += ep.Steps
		if err != nil {
			return res, err
		}
		if !finished {
			break
		}
		res.Episodes = append(res.Episodes, ep)
		if err := recordEpisode(ctx, cfg, res.RunID, ep); err != nil {
			return res, err
		}
		logf(cfg, "episode %d: return %.4f, %d steps, %s", idx, ep.Return, ep.Steps, FormatDuration(ep.Duration, cfg.Millis))
	}

	res.Summary = summarize(res.Episodes, totalSteps, time.Since(start))
	s := res.Summary
	logf(cfg, "done: %d episodes, %d steps in %s (%.0f steps/s), mean return %.4f ± %.4f",
		s.Episodes, s.TotalSteps, FormatDuration(s.Elapsed, cfg.Millis), s.StepsPerSecond, s.MeanReturn, s.StdReturn)
	return res, nil
}

// runEpisode plays one episode. A negative budget means no step limit.
func runEpisode(ctx context.Context, e env.Dynamic, cfg Config, runID string, idx int, key rng.Key, budget int) (EpisodeStats, bool, error) {
	resetKey, policyKey := key.Split()
	ep := EpisodeStats{ID: uuid.New().String()[:8], Index: idx}
	start := time.Now()

	state, ts := e.Reset(resetKey)
	for !ts.Last() {
		if budget >= 0 && ep.Steps >= budget {
			return ep, false, nil
		}
		if err := ctx.Err(); err != nil {
			return ep, false, err
		}

		a := cfg.Policy.Act(ts.Observation, e.NumActions(), policyKey.Fold(uint64(ep.Steps)))
		state, ts = e.Step(state, a)
		ep.Steps++
		ep.Return += ts.Reward

		if cfg.Trace != nil {
			rec := Record{
				Kind: "step", RunID: runID, Episode: ep.ID, Index: idx,
				Step: ep.Steps, Action: a, Reward: ts.Reward, StepType: ts.StepType.String(),
			}
			if err := cfg.Trace.Write(rec); err != nil {
				return ep, false, fmt.Errorf("write trace: %w", err)
			}
		}
	}

	ep.Duration = time.Since(start)
	ep.Final = state
	if s, ok := state.(binpack.State); ok {
		ep.Utilization = binpack.Utilization(s)
	}
	return ep, true, nil
}

func recordEpisode(ctx context.Context, cfg Config, runID string, ep EpisodeStats) error {
	var errs []error
	if cfg.Trace != nil {
		rec := Record{Kind: "episode", RunID: runID, Episode: ep.ID, Index: ep.Index, Reward: ep.Return, Steps: ep.Steps}
		if err := cfg.Trace.Write(rec); err != nil {
			errs = append(errs, fmt.Errorf("write trace: %w", err))
		}
	}
	if cfg.Results != nil {
		row := resultsdb.Episode{
			ID: ep.ID, RunID: runID, Index: ep.Index, Steps: ep.Steps,
			Return: ep.Return, Utilization: ep.Utilization, Duration: ep.Duration,
		}
		if err := cfg.Results.RecordEpisode(ctx, row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func summarize(eps []EpisodeStats, totalSteps int, elapsed time.Duration) Summary {
	s := Summary{Episodes: len(eps), TotalSteps: totalSteps, Elapsed: elapsed}
	if elapsed > 0 {
		s.StepsPerSecond = float64(totalSteps) / elapsed.Seconds()
	}
	if len(eps) == 0 {
		return s
	}
	returns := make([]float64, len(eps))
	steps := make([]float64, len(eps))
	for i, ep := range eps {
		returns[i] = ep.Return
		steps[i] = float64(ep.Steps)
	}
	s.MeanReturn, s.StdReturn = stat.MeanStdDev(returns, nil)
	if len(eps) == 1 {
		s.StdReturn = 0
	}
	s.MinReturn = floats.Min(returns)
	s.MaxReturn = floats.Max(returns)
	s.MeanSteps = stat.Mean(steps, nil)
	return s
}

// FormatDuration renders d in milliseconds or seconds.
func FormatDuration(d time.Duration, millis bool) string {
	if millis {
		return fmt.Sprintf("%.3fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

func logf(cfg Config, format string, args ...any) {
	if cfg.Logger != nil {
		cfg.Logger.Printf(format, args...)
	}
}
