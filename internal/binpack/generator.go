package binpack

import (
	"math"

	"github.com/wang5768/jumanji/internal/model"
	"github.com/wang5768/jumanji/internal/rng"
)

// TwentyFootContainer is the inner size of a 20ft shipping container.
var TwentyFootContainer = model.NewBox(5870, 2330, 2200)

// Generator produces initial states. Generate is pure: the same key always
// yields the same state.
type Generator interface {
	MaxNumItems() int
	MaxNumEMS() int
	Container() model.Container
	Generate(key rng.Key) State
}

// SolutionGenerator is a Generator that also knows a feasible packing of
// the instances it generates.
type SolutionGenerator interface {
	Generator
	// GenerateSolution returns the instance Generate(key) returns, with
	// every item placed.
	GenerateSolution(key rng.Key) State
}

// toyBoxes tile the 20ft container exactly. Placing them in this order at
// the origin of a live EMS is always legal.
var toyBoxes = []model.Box{
	{X1: 0, X2: 2935, Y1: 0, Y2: 1165, Z1: 0, Z2: 1100},
	{X1: 0, X2: 2935, Y1: 0, Y2: 1165, Z1: 1100, Z2: 2200},
	{X1: 0, X2: 1000, Y1: 1165, Y2: 2330, Z1: 0, Z2: 2200},
	{X1: 1000, X2: 2935, Y1: 1165, Y2: 2330, Z1: 0, Z2: 2200},
	{X1: 2935, X2: 5870, Y1: 0, Y2: 700, Z1: 0, Z2: 1500},
	{X1: 2935, X2: 5870, Y1: 700, Y2: 2330, Z1: 0, Z2: 1500},
	{X1: 2935, X2: 4400, Y1: 0, Y2: 2330, Z1: 1500, Z2: 2200},
	{X1: 4400, X2: 5870, Y1: 0, Y2: 2330, Z1: 1500, Z2: 2200},
}

// ToyGenerator always returns the same eight-item instance.
type ToyGenerator struct{}

// NewToyGenerator returns the fixed toy generator.
func NewToyGenerator() ToyGenerator { return ToyGenerator{} }

func (ToyGenerator) MaxNumItems() int           { return len(toyBoxes) }
func (ToyGenerator) MaxNumEMS() int             { return 40 }
func (ToyGenerator) Container() model.Container { return TwentyFootContainer }

func (g ToyGenerator) Generate(rng.Key) State {
	items := make([]model.Item, len(toyBoxes))
	mask := make([]bool, len(toyBoxes))
	for i, b := range toyBoxes {
		items[i] = b.Item()
		mask[i] = true
	}
	return NewState(g.Container(), items, mask, g.MaxNumEMS())
}

func (g ToyGenerator) GenerateSolution(key rng.Key) State {
	s := g.Generate(key)
	order := make([]int, len(toyBoxes))
	locs := make([]model.Location, len(toyBoxes))
	for i, b := range toyBoxes {
		order[i] = i
		locs[i] = b.Origin()
	}
	solved, ok := Replay(s, order, locs)
	if !ok {
		panic("binpack: toy instance cannot be replayed")
	}
	return solved
}

// Replay places items in the given order, item order[n] at locs[n], each
// into a live EMS whose origin is that location. It reports false as soon
// as an item has no such EMS or does not fit it.
func Replay(s State, order []int, locs []model.Location) (State, bool) {
	tol := s.options().Tolerance
	for n, j := range order {
		slot := -1
		for i, live := range s.EMSMask {
			if live && s.ActionMask[i][j] && sameLocation(s.EMS[i].Origin(), locs[n], tol) {
				slot = i
				break
			}
		}
		if slot < 0 {
			return s, false
		}
		s = s.Place(slot, j)
	}
	return s, true
}

func sameLocation(a, b model.Location, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}
