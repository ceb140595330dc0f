package knapsack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/rng"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(0, 1)
	assert.ErrorIs(t, err, env.ErrInvalidConfig)
	_, err = New(5, 0)
	assert.ErrorIs(t, err, env.ErrInvalidConfig)
	_, err = New(5, 1, WithRewardFn(nil))
	assert.ErrorIs(t, err, env.ErrInvalidConfig)
}

func TestReset(t *testing.T) {
	k, err := New(50, 12.5)
	require.NoError(t, err)

	s, ts := k.Reset(rng.NewKey(0))
	s2, _ := k.Reset(rng.NewKey(0))

	assert.Equal(t, s, s2)
	assert.True(t, ts.First())
	assert.Equal(t, 12.5, s.RemainingBudget)
	for i := range s.Weights {
		assert.True(t, s.Weights[i] >= 0 && s.Weights[i] < 1)
		assert.True(t, s.Values[i] >= 0 && s.Values[i] < 1)
	}
	require.NoError(t, k.ObservationSpec().Validate(ts.Observation))
}

func fixedState() State {
	return State{
		Weights:         []float64{0.5, 0.4, 0.9},
		Values:          []float64{0.3, 0.6, 0.8},
		PackedItems:     []bool{false, false, false},
		RemainingBudget: 1,
	}
}

func TestStep_PacksUntilNothingFits(t *testing.T) {
	k, err := New(3, 1)
	require.NoError(t, err)
	s := fixedState()

	s, ts := k.Step(s, 1)
	require.True(t, ts.Mid())
	assert.Equal(t, 0.6, ts.Reward)
	assert.InDelta(t, 0.6, s.RemainingBudget, 1e-12)
	assert.Equal(t, []bool{true, false, false}, ts.Observation.ActionMask)

	s, ts = k.Step(s, 0)
	assert.True(t, ts.Last(), "no remaining item fits")
	assert.Equal(t, 0.3, ts.Reward)
	assert.Equal(t, []bool{true, true, false}, s.PackedItems)
}

func TestStep_InvalidAction(t *testing.T) {
	k, err := New(3, 1)
	require.NoError(t, err)
	s := fixedState()
	s, _ = k.Step(s, 1)

	for _, a := range []int{1, -1, 3, 2} {
		next, ts := k.Step(s, a)
		assert.Equal(t, s, next)
		assert.True(t, ts.Last())
		assert.Equal(t, 0.0, ts.Reward)
	}
}

func TestSparseReward(t *testing.T) {
	k, err := New(3, 1, WithRewardFn(SparseReward{}))
	require.NoError(t, err)
	s := fixedState()

	s, ts := k.Step(s, 1)
	assert.Equal(t, 0.0, ts.Reward)
	_, ts = k.Step(s, 0)
	assert.InDelta(t, 0.9, ts.Reward, 1e-12)
}

func TestDynamic(t *testing.T) {
	k, err := New(10, 25)
	require.NoError(t, err)
	d := k.Dynamic()

	s, ts := d.Reset(rng.NewKey(4))
	steps := 0
	for !ts.Last() {
		legal := env.LegalActions(ts.Observation)
		a := -1
		for i, ok := range legal {
			if ok {
				a = i
				break
			}
		}
		require.GreaterOrEqual(t, a, 0)
		s, ts = d.Step(s, a)
		steps++
	}
	// A budget of 25 fits every item.
	assert.Equal(t, 10, steps)
	assert.Equal(t, 10, d.NumActions())
}
