package solver

import (
	"time"

	"github.com/wang5768/jumanji/internal/binpack"
	"github.com/wang5768/jumanji/internal/model"
	"github.com/wang5768/jumanji/internal/rng"
)

// Comparison holds one solver's packing of an instance and its statistics.
type Comparison struct {
	Solver      string
	State       binpack.State
	Result      model.PackingResult
	Utilization float64
	Placed      int
	Unplaced    int
	Elapsed     time.Duration
}

// CompareSolvers runs every solver on the same initial state and returns
// the results in solver order. Each solver gets its own key folded from
// its position.
func CompareSolvers(s binpack.State, key rng.Key, solvers ...Solver) []Comparison {
	out := make([]Comparison, 0, len(solvers))
	for i, sv := range solvers {
		start := time.Now()
		solved := sv.Solve(s, key.Fold(uint64(i)))
		elapsed := time.Since(start)

		r := binpack.Result(sv.Name(), solved)
		out = append(out, Comparison{
			Solver:      sv.Name(),
			State:       solved,
			Result:      r,
			Utilization: binpack.Utilization(solved),
			Placed:      len(r.Placements),
			Unplaced:    len(r.Unplaced),
			Elapsed:     elapsed,
		})
	}
	return out
}

// DefaultSolvers returns the greedy solver and a genetic solver with the
// default configuration.
func DefaultSolvers() []Solver {
	return []Solver{Greedy{}, &Genetic{Config: DefaultGeneticConfig()}}
}

// Best returns the comparison with the highest utilization. Earlier
// entries win ties.
func Best(cs []Comparison) (Comparison, bool) {
	if len(cs) == 0 {
		return Comparison{}, false
	}
	best := cs[0]
	for _, c := range cs[1:] {
		if c.Utilization > best.Utilization {
			best = c
		}
	}
	return best, true
}
