package tsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/model"
	"github.com/wang5768/jumanji/internal/rng"
)

var square = []model.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

func TestNew(t *testing.T) {
	_, err := New(1)
	assert.ErrorIs(t, err, env.ErrInvalidConfig)

	e, err := New(20)
	require.NoError(t, err)
	assert.Equal(t, 20, e.NumCities())
}

func TestReset(t *testing.T) {
	e, err := New(20)
	require.NoError(t, err)

	s, ts := e.Reset(rng.NewKey(1))
	again, _ := e.Reset(rng.NewKey(1))
	other, _ := e.Reset(rng.NewKey(2))

	assert.Equal(t, s, again)
	assert.NotEqual(t, s.Problem, other.Problem)
	assert.True(t, ts.First())
	assert.Equal(t, -1, s.Position)
	assert.Equal(t, -1, ts.Observation.StartPosition)
	for _, o := range s.Order {
		assert.Equal(t, -1, o)
	}
	for _, p := range s.Problem {
		assert.True(t, p.X >= 0 && p.X < 1 && p.Y >= 0 && p.Y < 1)
	}
	require.NoError(t, e.ObservationSpec().Validate(ts.Observation))
}

func TestStep_FullTour(t *testing.T) {
	e, err := New(4)
	require.NoError(t, err)
	s, ts := e.NewState(square)

	for i, a := range []int{2, 1, 0} {
		s, ts = e.Step(s, a)
		require.True(t, ts.Mid(), "step %d", i)
		assert.Equal(t, 0.0, ts.Reward)
		assert.Equal(t, 2, ts.Observation.StartPosition)
		assert.Equal(t, a, ts.Observation.Position)
		assert.False(t, ts.Observation.ActionMask[a])
	}

	s, ts = e.Step(s, 3)
	assert.True(t, ts.Last())
	assert.Equal(t, 0.0, ts.Discount)
	assert.InDelta(t, -4.0, ts.Reward, 1e-12)
	assert.Equal(t, []int{2, 1, 0, 3}, s.Tour())
	require.NoError(t, e.ObservationSpec().Validate(ts.Observation))
}

func TestStep_InvalidAction(t *testing.T) {
	e, err := New(4)
	require.NoError(t, err)
	s, _ := e.NewState(square)
	s, _ = e.Step(s, 0)

	for _, a := range []int{0, -1, 4} {
		next, ts := e.Step(s, a)
		assert.Equal(t, s, next)
		assert.True(t, ts.Last())
		assert.InDelta(t, -4*math.Sqrt2, ts.Reward, 1e-12)
	}
}

func TestDynamic_RandomEpisode(t *testing.T) {
	e, err := New(10)
	require.NoError(t, err)
	d := e.Dynamic()

	state, ts := d.Reset(rng.NewKey(7))
	r := rng.NewKey(8).Rand()
	steps := 0
	for !ts.Last() {
		var legal []int
		for i, ok := range env.LegalActions(ts.Observation) {
			if ok {
				legal = append(legal, i)
			}
		}
		state, ts = d.Step(state, legal[r.Intn(len(legal))])
		steps++
	}
	assert.Equal(t, 10, steps)
	final := state.(State)
	assert.InDelta(t, -model.TourLength(final.Problem, final.Tour()), ts.Reward, 1e-12)
}
