// Package cvrp implements the capacitated vehicle routing environment. A
// single vehicle starts at the depot (node 0), visits every customer once
// and returns to the depot to refill whenever its capacity runs short.
package cvrp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/model"
	"github.com/wang5768/jumanji/internal/rng"
	"github.com/wang5768/jumanji/internal/specs"
)

// Depot is the node index of the depot.
const Depot = 0

// State is the full CVRP state. Order has room for 2n+1 visits.
type State struct {
	Coordinates    []model.Point2D `json:"coordinates"`
	Demands        []int           `json:"demands"`
	Position       int             `json:"position"`
	Capacity       int             `json:"capacity"`
	Visited        []bool          `json:"visited"`
	Order          []int           `json:"order"` // -1 for unfilled entries
	NumTotalVisits int             `json:"num_total_visits"`
}

func (s State) clone() State {
	c := s
	c.Coordinates = append([]model.Point2D(nil), s.Coordinates...)
	c.Demands = append([]int(nil), s.Demands...)
	c.Visited = append([]bool(nil), s.Visited...)
	c.Order = append([]int(nil), s.Order...)
	return c
}

// Route returns the nodes visited so far, depot visits included.
func (s State) Route() []int {
	return append([]int(nil), s.Order[:s.NumTotalVisits]...)
}

// allCustomersVisited ignores the depot, whose flag is cleared on leaving.
func (s State) allCustomersVisited() bool {
	for i, v := range s.Visited {
		if i != Depot && !v {
			return false
		}
	}
	return true
}

type Observation struct {
	Coordinates []model.Point2D `json:"coordinates"`
	Demands     []float64       `json:"demands"`
	Position    int             `json:"position"`
	Capacity    float64         `json:"capacity"`
	ActionMask  []bool          `json:"action_mask"`
}

func (o Observation) LegalActions() []bool { return o.ActionMask }

// CVRP is the environment. Actions are node indexes, the depot included.
type CVRP struct {
	numNodes    int
	maxCapacity int
	maxDemand   int
}

// New returns a CVRP environment. It fails when a single customer could
// demand more than the vehicle carries.
func New(numNodes, maxCapacity, maxDemand int) (*CVRP, error) {
	if numNodes < 2 {
		return nil, fmt.Errorf("num_nodes must be at least 2, got %d: %w", numNodes, env.ErrInvalidConfig)
	}
	if maxDemand < 1 {
		return nil, fmt.Errorf("max_demand must be at least 1, got %d: %w", maxDemand, env.ErrInvalidConfig)
	}
	if maxCapacity < maxDemand {
		return nil, fmt.Errorf("max_capacity %d is below max_demand %d: %w", maxCapacity, maxDemand, env.ErrInvalidConfig)
	}
	return &CVRP{numNodes: numNodes, maxCapacity: maxCapacity, maxDemand: maxDemand}, nil
}

func (e *CVRP) String() string {
	return fmt.Sprintf("CVRP environment with %d nodes, max capacity %d and max demand %d.", e.numNodes, e.maxCapacity, e.maxDemand)
}

// NumNodes returns the number of nodes including the depot.
func (e *CVRP) NumNodes() int { return e.numNodes }

// Reset draws node coordinates uniformly in the unit square and customer
// demands uniformly in [1, maxDemand].
func (e *CVRP) Reset(key rng.Key) (State, env.TimeStep[Observation]) {
	keys := key.SplitN(2)
	u := distuv.Uniform{Min: 0, Max: 1, Src: keys[0].Source()}
	coords := make([]model.Point2D, e.numNodes)
	for i := range coords {
		coords[i] = model.Point2D{X: u.Rand(), Y: u.Rand()}
	}
	r := keys[1].Rand()
	demands := make([]int, e.numNodes)
	for i := 1; i < e.numNodes; i++ {
		demands[i] = 1 + r.Intn(e.maxDemand)
	}
	return e.NewState(coords, demands)
}

// NewState starts an episode on a given instance. demands[Depot] is
// forced to zero. The vehicle may return to the depot between any two
// customers, so the route holds at most 2n-1 entries; the order array is
// sized 2n+1 to leave room for the closing depot.
func (e *CVRP) NewState(coords []model.Point2D, demands []int) (State, env.TimeStep[Observation]) {
	s := State{
		Coordinates:    append([]model.Point2D(nil), coords...),
		Demands:        append([]int(nil), demands...),
		Position:       Depot,
		Capacity:       e.maxCapacity,
		Visited:        make([]bool, len(coords)),
		Order:          make([]int, 2*len(coords)+1),
		NumTotalVisits: 1,
	}
	s.Demands[Depot] = 0
	for i := range s.Order {
		s.Order[i] = -1
	}
	s.Order[0] = Depot
	s.Visited[Depot] = true
	return s, env.Restart(e.observe(s))
}

func (e *CVRP) Step(state State, action int) (State, env.TimeStep[Observation]) {
	valid := action >= 0 && action < e.numNodes &&
		!state.Visited[action] && state.Capacity >= state.Demands[action]

	next := state.clone()
	if valid {
		if action == Depot {
			next.Capacity = e.maxCapacity
		} else {
			next.Capacity -= state.Demands[action]
		}
		next.Visited[Depot] = false
		next.Visited[action] = true
		next.Position = action
		next.Order[next.NumTotalVisits] = action
		next.NumTotalVisits++
	}

	obs := e.observe(next)
	if !valid || next.allCustomersVisited() {
		return next, env.Termination(e.reward(next, valid), obs)
	}
	return next, env.Transition(0, obs)
}

// reward is the negative length of the route closed at the depot, or
// a penalty of 2n*sqrt(2) when the episode ends on an invalid action.
func (e *CVRP) reward(s State, valid bool) float64 {
	if !valid {
		return -2 * float64(e.numNodes) * math.Sqrt2
	}
	return -model.TourLength(s.Coordinates, s.Route())
}

func (e *CVRP) observe(s State) Observation {
	mask := make([]bool, len(s.Visited))
	demands := make([]float64, len(s.Demands))
	for i, d := range s.Demands {
		demands[i] = float64(d) / float64(e.maxCapacity)
		mask[i] = !s.Visited[i] && s.Capacity >= d
	}
	mask[Depot] = s.Position != Depot
	return Observation{
		Coordinates: append([]model.Point2D(nil), s.Coordinates...),
		Demands:     demands,
		Position:    s.Position,
		Capacity:    float64(s.Capacity) / float64(e.maxCapacity),
		ActionMask:  mask,
	}
}

func (e *CVRP) ObservationSpec() specs.Composite {
	n := e.numNodes
	coords := specs.BoundedArray("coordinates", []int{n}, specs.Float64, 0, 1)
	coords.Keys = []string{"x", "y"}
	return specs.Composite{
		Name: "ObservationSpec",
		Fields: []specs.Array{
			coords,
			specs.BoundedArray("demands", []int{n}, specs.Float64, 0, 1),
			specs.BoundedArray("position", nil, specs.Int, 0, float64(n-1)),
			specs.BoundedArray("capacity", nil, specs.Float64, 0, 1),
			specs.BoolArray("action_mask", []int{n}),
		},
	}
}

func (e *CVRP) ActionSpec() specs.Array {
	return specs.DiscreteArray("action", e.numNodes)
}

func (e *CVRP) Dynamic() env.Dynamic {
	return env.WrapDiscrete[State, Observation](e, e.numNodes)
}
