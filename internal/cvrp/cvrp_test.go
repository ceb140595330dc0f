package cvrp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/model"
	"github.com/wang5768/jumanji/internal/rng"
)

// line puts the depot at the origin and three customers along the x axis.
var line = []model.Point2D{{X: 0, Y: 0}, {X: 0.25, Y: 0}, {X: 0.5, Y: 0}, {X: 0.75, Y: 0}}

func TestNew_Validation(t *testing.T) {
	_, err := New(1, 10, 5)
	assert.ErrorIs(t, err, env.ErrInvalidConfig)
	_, err = New(5, 10, 0)
	assert.ErrorIs(t, err, env.ErrInvalidConfig)
	_, err = New(5, 9, 10)
	assert.ErrorIs(t, err, env.ErrInvalidConfig)
}

func TestReset(t *testing.T) {
	e, err := New(20, 30, 10)
	require.NoError(t, err)

	s, ts := e.Reset(rng.NewKey(3))
	again, _ := e.Reset(rng.NewKey(3))
	assert.Equal(t, s, again)

	assert.True(t, ts.First())
	assert.Equal(t, Depot, s.Position)
	assert.Equal(t, 30, s.Capacity)
	assert.Equal(t, 1, s.NumTotalVisits)
	assert.Len(t, s.Order, 41)
	assert.Equal(t, 0, s.Demands[Depot])
	for _, d := range s.Demands[1:] {
		assert.True(t, d >= 1 && d <= 10, "demand %d", d)
	}
	assert.False(t, ts.Observation.ActionMask[Depot], "the depot is masked while the vehicle is there")
	assert.Equal(t, 1.0, ts.Observation.Capacity)
	require.NoError(t, e.ObservationSpec().Validate(ts.Observation))
}

func TestStep_RefillAtDepot(t *testing.T) {
	e, err := New(4, 10, 6)
	require.NoError(t, err)
	s, _ := e.NewState(line, []int{0, 6, 5, 3})

	s, ts := e.Step(s, 1)
	require.True(t, ts.Mid())
	assert.Equal(t, 4, s.Capacity)
	assert.Equal(t, []bool{true, false, false, true}, ts.Observation.ActionMask, "node 2 exceeds the remaining capacity")
	assert.InDelta(t, 0.4, ts.Observation.Capacity, 1e-12)

	s, ts = e.Step(s, Depot)
	require.True(t, ts.Mid())
	assert.Equal(t, 10, s.Capacity)
	assert.Equal(t, []bool{false, false, true, true}, ts.Observation.ActionMask)

	s, _ = e.Step(s, 2)
	s, ts = e.Step(s, 3)
	assert.True(t, ts.Last())
	assert.Equal(t, []int{0, 1, 0, 2, 3}, s.Route())
	// 0 -> 0.25 -> 0 -> 0.5 -> 0.75 -> 0
	assert.InDelta(t, -2.0, ts.Reward, 1e-12)
}

func TestStep_InvalidAction(t *testing.T) {
	e, err := New(4, 10, 6)
	require.NoError(t, err)
	s, _ := e.NewState(line, []int{0, 6, 5, 3})
	s, _ = e.Step(s, 1)

	for _, a := range []int{1, 2, -1, 4} {
		next, ts := e.Step(s, a)
		assert.Equal(t, s, next)
		assert.True(t, ts.Last())
		assert.InDelta(t, -8*math.Sqrt2, ts.Reward, 1e-12)
	}
}

func TestDynamic_RandomEpisode(t *testing.T) {
	e, err := New(20, 30, 10)
	require.NoError(t, err)
	d := e.Dynamic()

	state, ts := d.Reset(rng.NewKey(11))
	r := rng.NewKey(12).Rand()
	for !ts.Last() {
		var legal []int
		for i, ok := range env.LegalActions(ts.Observation) {
			if ok {
				legal = append(legal, i)
			}
		}
		require.NotEmpty(t, legal)
		state, ts = d.Step(state, legal[r.Intn(len(legal))])
	}

	final := state.(State)
	assert.LessOrEqual(t, final.NumTotalVisits, len(final.Order))
	seen := map[int]int{}
	for _, n := range final.Route() {
		seen[n]++
	}
	for i := 1; i < 20; i++ {
		assert.Equal(t, 1, seen[i], "customer %d", i)
	}
	assert.InDelta(t, -model.TourLength(final.Coordinates, final.Route()), ts.Reward, 1e-12)
}
