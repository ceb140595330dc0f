package binpack

import "github.com/wang5768/jumanji/internal/model"

// RewardFn computes the reward of one transition.
type RewardFn interface {
	Reward(state State, action Action, next State, isValid, isDone bool) float64
}

// RewardFunc adapts a plain function to RewardFn.
type RewardFunc func(state State, action Action, next State, isValid, isDone bool) float64

func (f RewardFunc) Reward(state State, action Action, next State, isValid, isDone bool) float64 {
	return f(state, action, next, isValid, isDone)
}

// DenseReward pays the volume of the item placed at each valid step,
// relative to the container volume. Over a full episode the rewards sum to
// the final utilization.
type DenseReward struct{}

func (DenseReward) Reward(state State, action Action, next State, isValid, isDone bool) float64 {
	if !isValid {
		return 0
	}
	cv := model.Volume(state.Container)
	if cv == 0 {
		return 0
	}
	return state.Items[action.Item].Volume() / cv
}

// SparseReward pays the final utilization on the last step of an episode
// that ended without an invalid action, and 0 otherwise.
type SparseReward struct{}

func (SparseReward) Reward(state State, action Action, next State, isValid, isDone bool) float64 {
	if !isValid || !isDone {
		return 0
	}
	return Utilization(next)
}
