// Package env defines the protocol shared by every environment in the suite:
// Reset(key) and Step(state, action) return a new state and a TimeStep, and
// never mutate their inputs.
package env

// StepType marks where a TimeStep sits inside an episode.
type StepType int8

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "first"
	case Mid:
		return "mid"
	case Last:
		return "last"
	default:
		return "unknown"
	}
}

// TimeStep is what an agent observes after Reset or Step.
type TimeStep[O any] struct {
	StepType    StepType `json:"step_type"`
	Reward      float64  `json:"reward"`
	Discount    float64  `json:"discount"`
	Observation O        `json:"observation"`
}

func (t TimeStep[O]) First() bool { return t.StepType == First }
func (t TimeStep[O]) Mid() bool   { return t.StepType == Mid }
func (t TimeStep[O]) Last() bool  { return t.StepType == Last }

// Restart returns the first TimeStep of an episode.
func Restart[O any](obs O) TimeStep[O] {
	return TimeStep[O]{StepType: First, Reward: 0, Discount: 1, Observation: obs}
}

// Transition returns a non-terminal TimeStep.
func Transition[O any](reward float64, obs O) TimeStep[O] {
	return TimeStep[O]{StepType: Mid, Reward: reward, Discount: 1, Observation: obs}
}

// Termination returns the last TimeStep of an episode. Its discount is 0.
func Termination[O any](reward float64, obs O) TimeStep[O] {
	return TimeStep[O]{StepType: Last, Reward: reward, Discount: 0, Observation: obs}
}

// Erase converts the observation type of a TimeStep to any.
func Erase[O any](t TimeStep[O]) TimeStep[any] {
	return TimeStep[any]{StepType: t.StepType, Reward: t.Reward, Discount: t.Discount, Observation: t.Observation}
}
