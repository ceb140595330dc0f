package binpack

import (
	"fmt"

	"github.com/wang5768/jumanji/internal/engine"
	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/model"
	"github.com/wang5768/jumanji/internal/rng"
	"github.com/wang5768/jumanji/internal/specs"
)

// Action places item Item at the origin of the EMS shown at row EMS of the
// observation window.
type Action struct {
	EMS  int `json:"ems"`
	Item int `json:"item"`
}

// Observation is the agent's view of a State. The EMS-indexed fields hold
// only the first ObsNumEMS spaces in scan order.
type Observation struct {
	EMS         []model.EMS  `json:"ems"`
	EMSMask     []bool       `json:"ems_mask"`
	Items       []model.Item `json:"items"`
	ItemsMask   []bool       `json:"items_mask"`
	ItemsPlaced []bool       `json:"items_placed"`
	ActionMask  [][]bool     `json:"action_mask"`
}

// LegalActions flattens the action mask row by row, matching EncodeAction.
func (o Observation) LegalActions() []bool {
	var out []bool
	for _, row := range o.ActionMask {
		out = append(out, row...)
	}
	return out
}

// BinPack is the 3D bin-packing environment.
type BinPack struct {
	generator Generator
	obsNumEMS int
	rewardFn  RewardFn
	normalize bool
}

// Option configures a BinPack.
type Option func(*BinPack)

// WithObsNumEMS sets how many EMS the observation shows.
func WithObsNumEMS(k int) Option {
	return func(b *BinPack) { b.obsNumEMS = k }
}

// WithRewardFn replaces the default DenseReward.
func WithRewardFn(fn RewardFn) Option {
	return func(b *BinPack) { b.rewardFn = fn }
}

// WithNormalizeDimensions scales observed EMS and items by the container
// extents. It is on by default.
func WithNormalizeDimensions(on bool) Option {
	return func(b *BinPack) { b.normalize = on }
}

// New builds a BinPack environment. By default it observes every EMS, uses
// DenseReward and normalises dimensions.
func New(generator Generator, opts ...Option) (*BinPack, error) {
	b := &BinPack{
		generator: generator,
		obsNumEMS: generator.MaxNumEMS(),
		rewardFn:  DenseReward{},
		normalize: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.obsNumEMS < 1 || b.obsNumEMS > generator.MaxNumEMS() {
		return nil, fmt.Errorf("obs_num_ems %d not in [1, %d]: %w", b.obsNumEMS, generator.MaxNumEMS(), env.ErrInvalidConfig)
	}
	if b.rewardFn == nil {
		return nil, fmt.Errorf("nil reward function: %w", env.ErrInvalidConfig)
	}
	return b, nil
}

func (b *BinPack) String() string {
	return fmt.Sprintf("BinPack(max_num_items=%d, max_num_ems=%d, obs_num_ems=%d)",
		b.generator.MaxNumItems(), b.generator.MaxNumEMS(), b.obsNumEMS)
}

// Generator returns the instance generator.
func (b *BinPack) Generator() Generator { return b.generator }

// ObsNumEMS returns the size of the observation window.
func (b *BinPack) ObsNumEMS() int { return b.obsNumEMS }

// NumActions returns the number of flat actions.
func (b *BinPack) NumActions() int { return b.obsNumEMS * b.generator.MaxNumItems() }

// EncodeAction returns the flat index of a.
func (b *BinPack) EncodeAction(a Action) int {
	return a.EMS*b.generator.MaxNumItems() + a.Item
}

// DecodeAction is the inverse of EncodeAction. Out-of-range indexes decode
// to actions that Step treats as invalid.
func (b *BinPack) DecodeAction(n int) Action {
	m := b.generator.MaxNumItems()
	if n < 0 {
		return Action{EMS: -1, Item: -1}
	}
	return Action{EMS: n / m, Item: n % m}
}

// Reset draws a new instance.
func (b *BinPack) Reset(key rng.Key) (State, env.TimeStep[Observation]) {
	s := b.generator.Generate(key)
	return s, env.Restart(b.observe(s))
}

// Step applies action to state. An invalid action leaves the state
// unchanged and ends the episode.
func (b *BinPack) Step(state State, action Action) (State, env.TimeStep[Observation]) {
	valid := b.IsValid(state, action)

	var next State
	if valid {
		next = state.Place(state.SortedEMSIndexes[action.EMS], action.Item)
	} else {
		next = state.Clone()
	}

	obs := b.observe(next)
	done := !valid || !engine.AnyLegal(obs.ActionMask)
	reward := b.rewardFn.Reward(state, action, next, valid, done)

	if done {
		return next, env.Termination(reward, obs)
	}
	return next, env.Transition(reward, obs)
}

// IsValid reports whether action is in range and allowed by the windowed
// action mask of state.
func (b *BinPack) IsValid(state State, action Action) bool {
	if action.EMS < 0 || action.EMS >= b.obsNumEMS || action.EMS >= len(state.SortedEMSIndexes) {
		return false
	}
	if action.Item < 0 || action.Item >= state.MaxNumItems() {
		return false
	}
	return state.ActionMask[state.SortedEMSIndexes[action.EMS]][action.Item]
}

func (b *BinPack) observe(s State) Observation {
	k := b.obsNumEMS
	obs := Observation{
		EMS:         make([]model.EMS, k),
		EMSMask:     make([]bool, k),
		Items:       make([]model.Item, len(s.Items)),
		ItemsMask:   append([]bool(nil), s.ItemsMask...),
		ItemsPlaced: append([]bool(nil), s.ItemsPlaced...),
		ActionMask:  make([][]bool, k),
	}
	for row := 0; row < k; row++ {
		slot := s.SortedEMSIndexes[row]
		e := s.EMS[slot]
		if b.normalize && s.EMSMask[slot] {
			e = e.Scale(s.Container)
		}
		obs.EMS[row] = e
		obs.EMSMask[row] = s.EMSMask[slot]
		obs.ActionMask[row] = append([]bool(nil), s.ActionMask[slot]...)
	}
	for j, it := range s.Items {
		if b.normalize {
			it = it.Scale(s.Container)
		}
		obs.Items[j] = it
	}
	return obs
}

// ObservationSpec describes Observation.
func (b *BinPack) ObservationSpec() specs.Composite {
	k, m := b.obsNumEMS, b.generator.MaxNumItems()
	hi := 1.0
	if !b.normalize {
		c := b.generator.Container()
		hi = max(c.X2, c.Y2, c.Z2)
	}
	return specs.Composite{
		Name: "ObservationSpec",
		Fields: []specs.Array{
			{Name: "ems", Shape: []int{k}, DType: specs.Float64, Bounded: true, Minimum: 0, Maximum: hi,
				Keys: []string{"x1", "x2", "y1", "y2", "z1", "z2"}},
			specs.BoolArray("ems_mask", []int{k}),
			{Name: "items", Shape: []int{m}, DType: specs.Float64, Bounded: true, Minimum: 0, Maximum: hi,
				Keys: []string{"x_len", "y_len", "z_len"}},
			specs.BoolArray("items_mask", []int{m}),
			specs.BoolArray("items_placed", []int{m}),
			specs.BoolArray("action_mask", []int{k, m}),
		},
	}
}

// ActionSpec describes Action as a pair (EMS row, item slot).
func (b *BinPack) ActionSpec() specs.Array {
	return specs.MultiDiscreteArray("action", []int{b.obsNumEMS, b.generator.MaxNumItems()})
}

// Dynamic wraps b for use with flat integer actions.
func (b *BinPack) Dynamic() env.Dynamic {
	return env.Wrap[State, Observation, Action](b, b.NumActions(), b.DecodeAction)
}

// FromDynamic returns the BinPack behind a Dynamic built by BinPack.Dynamic.
func FromDynamic(d env.Dynamic) (*BinPack, bool) {
	e, ok := env.Unwrap[State, Observation, Action](d)
	if !ok {
		return nil, false
	}
	b, ok := e.(*BinPack)
	return b, ok
}
