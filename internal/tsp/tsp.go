// Package tsp implements the travelling salesman environment. Cities are
// drawn uniformly in the unit square and the agent picks the next city to
// visit until the tour is complete.
package tsp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/model"
	"github.com/wang5768/jumanji/internal/rng"
	"github.com/wang5768/jumanji/internal/specs"
)

// State is the full TSP state.
type State struct {
	Problem    []model.Point2D `json:"problem"`
	Position   int             `json:"position"` // -1 before the first city
	Visited    []bool          `json:"visited"`
	Order      []int           `json:"order"` // -1 for unfilled entries
	NumVisited int             `json:"num_visited"`
}

func (s State) clone() State {
	c := s
	c.Problem = append([]model.Point2D(nil), s.Problem...)
	c.Visited = append([]bool(nil), s.Visited...)
	c.Order = append([]int(nil), s.Order...)
	return c
}

// Tour returns the visited cities in order.
func (s State) Tour() []int {
	return append([]int(nil), s.Order[:s.NumVisited]...)
}

type Observation struct {
	Problem       []model.Point2D `json:"problem"`
	StartPosition int             `json:"start_position"`
	Position      int             `json:"position"`
	ActionMask    []bool          `json:"action_mask"`
}

func (o Observation) LegalActions() []bool { return o.ActionMask }

// TSP is the environment. Actions are city indexes.
type TSP struct {
	numCities int
}

// New returns a TSP environment over numCities cities.
func New(numCities int) (*TSP, error) {
	if numCities < 2 {
		return nil, fmt.Errorf("num_cities must be at least 2, got %d: %w", numCities, env.ErrInvalidConfig)
	}
	return &TSP{numCities: numCities}, nil
}

func (e *TSP) String() string {
	return fmt.Sprintf("TSP environment with %d cities.", e.numCities)
}

// NumCities returns the number of cities per instance.
func (e *TSP) NumCities() int { return e.numCities }

func (e *TSP) Reset(key rng.Key) (State, env.TimeStep[Observation]) {
	u := distuv.Uniform{Min: 0, Max: 1, Src: key.Source()}
	problem := make([]model.Point2D, e.numCities)
	for i := range problem {
		problem[i] = model.Point2D{X: u.Rand(), Y: u.Rand()}
	}
	return e.NewState(problem)
}

// NewState starts an episode on a given set of cities.
func (e *TSP) NewState(problem []model.Point2D) (State, env.TimeStep[Observation]) {
	s := State{
		Problem:  append([]model.Point2D(nil), problem...),
		Position: -1,
		Visited:  make([]bool, len(problem)),
		Order:    make([]int, len(problem)),
	}
	for i := range s.Order {
		s.Order[i] = -1
	}
	return s, env.Restart(e.observe(s))
}

func (e *TSP) Step(state State, action int) (State, env.TimeStep[Observation]) {
	valid := action >= 0 && action < e.numCities && !state.Visited[action]

	next := state.clone()
	if valid {
		next.Position = action
		next.Visited[action] = true
		next.Order[next.NumVisited] = action
		next.NumVisited++
	}

	obs := e.observe(next)
	if !valid || next.NumVisited == e.numCities {
		return next, env.Termination(e.reward(next, valid), obs)
	}
	return next, env.Transition(0, obs)
}

// reward is the negative closed tour length, or a penalty of n*sqrt(2)
// (n times the longest possible edge) when the episode ends on an invalid
// action.
func (e *TSP) reward(s State, valid bool) float64 {
	if !valid {
		return -float64(e.numCities) * math.Sqrt2
	}
	return -model.TourLength(s.Problem, s.Tour())
}

func (e *TSP) observe(s State) Observation {
	mask := make([]bool, len(s.Visited))
	for i, v := range s.Visited {
		mask[i] = !v
	}
	return Observation{
		Problem:       append([]model.Point2D(nil), s.Problem...),
		StartPosition: s.Order[0],
		Position:      s.Position,
		ActionMask:    mask,
	}
}

func (e *TSP) ObservationSpec() specs.Composite {
	n := e.numCities
	problem := specs.BoundedArray("problem", []int{n}, specs.Float64, 0, 1)
	problem.Keys = []string{"x", "y"}
	return specs.Composite{
		Name: "ObservationSpec",
		Fields: []specs.Array{
			problem,
			specs.BoundedArray("start_position", nil, specs.Int, -1, float64(n-1)),
			specs.BoundedArray("position", nil, specs.Int, -1, float64(n-1)),
			specs.BoolArray("action_mask", []int{n}),
		},
	}
}

func (e *TSP) ActionSpec() specs.Array {
	return specs.DiscreteArray("action", e.numCities)
}

func (e *TSP) Dynamic() env.Dynamic {
	return env.WrapDiscrete[State, Observation](e, e.numCities)
}
