package env

import (
	"fmt"

	"github.com/wang5768/jumanji/internal/rng"
	"github.com/wang5768/jumanji/internal/specs"
)

// Environment is implemented by every environment of the suite. S is the
// full state, O the observation and A the action type.
type Environment[S, O, A any] interface {
	Reset(key rng.Key) (S, TimeStep[O])
	Step(state S, action A) (S, TimeStep[O])
	ObservationSpec() specs.Composite
	ActionSpec() specs.Array
}

// Masked is implemented by observations that expose which flat action
// indexes are legal.
type Masked interface {
	LegalActions() []bool
}

// Dynamic is an environment with erased state and observation types and
// flat integer actions. Registries and benchmark loops work with it.
type Dynamic interface {
	Reset(key rng.Key) (any, TimeStep[any])
	Step(state any, action int) (any, TimeStep[any])
	ObservationSpec() specs.Composite
	ActionSpec() specs.Array
	NumActions() int
}

type dynamic[S, O, A any] struct {
	env        Environment[S, O, A]
	decode     func(int) A
	numActions int
}

// Wrap erases the types of e. decode maps a flat action index in
// [0, numActions) to an action of e.
func Wrap[S, O, A any](e Environment[S, O, A], numActions int, decode func(int) A) Dynamic {
	return &dynamic[S, O, A]{env: e, decode: decode, numActions: numActions}
}

// WrapDiscrete erases the types of an environment whose actions already are
// flat indexes.
func WrapDiscrete[S, O any](e Environment[S, O, int], numActions int) Dynamic {
	return Wrap(e, numActions, func(a int) int { return a })
}

func (d *dynamic[S, O, A]) Reset(key rng.Key) (any, TimeStep[any]) {
	s, ts := d.env.Reset(key)
	return s, Erase(ts)
}

func (d *dynamic[S, O, A]) Step(state any, action int) (any, TimeStep[any]) {
	s, ok := state.(S)
	if !ok {
		panic(fmt.Sprintf("env: state of type %T passed to environment expecting %T", state, *new(S)))
	}
	next, ts := d.env.Step(s, d.decode(action))
	return next, Erase(ts)
}

func (d *dynamic[S, O, A]) ObservationSpec() specs.Composite { return d.env.ObservationSpec() }
func (d *dynamic[S, O, A]) ActionSpec() specs.Array          { return d.env.ActionSpec() }
func (d *dynamic[S, O, A]) NumActions() int                  { return d.numActions }

// Unwrap returns the typed environment behind a Dynamic built by Wrap.
func Unwrap[S, O, A any](d Dynamic) (Environment[S, O, A], bool) {
	w, ok := d.(*dynamic[S, O, A])
	if !ok {
		return nil, false
	}
	return w.env, true
}

// LegalActions returns the flat action mask of an observation, or nil when
// the observation does not expose one.
func LegalActions(obs any) []bool {
	if m, ok := obs.(Masked); ok {
		return m.LegalActions()
	}
	return nil
}
