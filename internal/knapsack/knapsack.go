// Package knapsack implements the 0/1 knapsack environment: items with
// random weights and values are packed one by one into a bag with a fixed
// budget.
package knapsack

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/rng"
	"github.com/wang5768/jumanji/internal/specs"
)

// State is the full knapsack state. RemainingBudget is the budget minus the
// weight of the packed items.
type State struct {
	Weights         []float64 `json:"weights"`
	Values          []float64 `json:"values"`
	PackedItems     []bool    `json:"packed_items"`
	RemainingBudget float64   `json:"remaining_budget"`
}

func (s State) clone() State {
	c := s
	c.Weights = append([]float64(nil), s.Weights...)
	c.Values = append([]float64(nil), s.Values...)
	c.PackedItems = append([]bool(nil), s.PackedItems...)
	return c
}

// PackedValue returns the total value of the packed items.
func (s State) PackedValue() float64 {
	var v float64
	for i, p := range s.PackedItems {
		if p {
			v += s.Values[i]
		}
	}
	return v
}

// Observation is what the agent sees. ActionMask marks the unpacked items
// that still fit the remaining budget.
type Observation struct {
	Weights     []float64 `json:"weights"`
	Values      []float64 `json:"values"`
	PackedItems []bool    `json:"packed_items"`
	ActionMask  []bool    `json:"action_mask"`
}

func (o Observation) LegalActions() []bool { return o.ActionMask }

// RewardFn computes the reward of one transition.
type RewardFn interface {
	Reward(state State, action int, next State, isValid, isDone bool) float64
}

// DenseReward pays the value of the item packed at each valid step.
type DenseReward struct{}

func (DenseReward) Reward(state State, action int, _ State, isValid, _ bool) float64 {
	if !isValid {
		return 0
	}
	return state.Values[action]
}

// SparseReward pays the value of the bag on the last step, unless the
// episode ended on an invalid action.
type SparseReward struct{}

func (SparseReward) Reward(_ State, _ int, next State, isValid, isDone bool) float64 {
	if !isValid || !isDone {
		return 0
	}
	return next.PackedValue()
}

// Knapsack is the environment. Actions are item indexes.
type Knapsack struct {
	numItems    int
	totalBudget float64
	rewardFn    RewardFn
}

// Option configures a Knapsack.
type Option func(*Knapsack)

// WithRewardFn replaces the default DenseReward.
func WithRewardFn(fn RewardFn) Option {
	return func(k *Knapsack) { k.rewardFn = fn }
}

// New returns a knapsack environment over numItems items with the given
// total budget.
func New(numItems int, totalBudget float64, opts ...Option) (*Knapsack, error) {
	k := &Knapsack{numItems: numItems, totalBudget: totalBudget, rewardFn: DenseReward{}}
	for _, opt := range opts {
		opt(k)
	}
	if numItems < 1 {
		return nil, fmt.Errorf("num_items must be at least 1, got %d: %w", numItems, env.ErrInvalidConfig)
	}
	if totalBudget <= 0 {
		return nil, fmt.Errorf("total_budget must be positive, got %g: %w", totalBudget, env.ErrInvalidConfig)
	}
	if k.rewardFn == nil {
		return nil, fmt.Errorf("nil reward function: %w", env.ErrInvalidConfig)
	}
	return k, nil
}

func (k *Knapsack) String() string {
	return fmt.Sprintf("Knapsack environment with %d items and a total budget of %g.", k.numItems, k.totalBudget)
}

// Reset draws weights and values uniformly from [0, 1).
func (k *Knapsack) Reset(key rng.Key) (State, env.TimeStep[Observation]) {
	u := distuv.Uniform{Min: 0, Max: 1, Src: key.Source()}
	s := State{
		Weights:         make([]float64, k.numItems),
		Values:          make([]float64, k.numItems),
		PackedItems:     make([]bool, k.numItems),
		RemainingBudget: k.totalBudget,
	}
	for i := range s.Weights {
		s.Weights[i] = u.Rand()
	}
	for i := range s.Values {
		s.Values[i] = u.Rand()
	}
	return s, env.Restart(k.observe(s))
}

// Step packs the item at index action. An out-of-range, already packed or
// too heavy item leaves the bag unchanged and ends the episode.
func (k *Knapsack) Step(state State, action int) (State, env.TimeStep[Observation]) {
	valid := action >= 0 && action < k.numItems &&
		!state.PackedItems[action] && state.Weights[action] <= state.RemainingBudget

	next := state.clone()
	if valid {
		next.PackedItems[action] = true
		next.RemainingBudget -= state.Weights[action]
	}

	obs := k.observe(next)
	done := !valid || !anyTrue(obs.ActionMask)
	reward := k.rewardFn.Reward(state, action, next, valid, done)
	if done {
		return next, env.Termination(reward, obs)
	}
	return next, env.Transition(reward, obs)
}

func (k *Knapsack) observe(s State) Observation {
	mask := make([]bool, len(s.Weights))
	for i, w := range s.Weights {
		mask[i] = !s.PackedItems[i] && w <= s.RemainingBudget
	}
	return Observation{
		Weights:     append([]float64(nil), s.Weights...),
		Values:      append([]float64(nil), s.Values...),
		PackedItems: append([]bool(nil), s.PackedItems...),
		ActionMask:  mask,
	}
}

func (k *Knapsack) ObservationSpec() specs.Composite {
	n := []int{k.numItems}
	return specs.Composite{
		Name: "ObservationSpec",
		Fields: []specs.Array{
			specs.BoundedArray("weights", n, specs.Float64, 0, 1),
			specs.BoundedArray("values", n, specs.Float64, 0, 1),
			specs.BoolArray("packed_items", n),
			specs.BoolArray("action_mask", n),
		},
	}
}

func (k *Knapsack) ActionSpec() specs.Array {
	return specs.DiscreteArray("action", k.numItems)
}

func (k *Knapsack) Dynamic() env.Dynamic {
	return env.WrapDiscrete[State, Observation](k, k.numItems)
}

func anyTrue(v []bool) bool {
	for _, b := range v {
		if b {
			return true
		}
	}
	return false
}
