package benchmark

import (
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/wang5768/jumanji/internal/env"
	"github.com/wang5768/jumanji/internal/rng"
)

// Policy picks a flat action for an observation.
type Policy interface {
	Act(obs any, numActions int, key rng.Key) int
}

// RandomLegal samples uniformly among the legal actions of a masked
// observation, or among all actions when the observation has no mask.
type RandomLegal struct{}

func (RandomLegal) Act(obs any, numActions int, key rng.Key) int {
	weights := make([]float64, numActions)
	legal := env.LegalActions(obs)
	for i := range weights {
		if legal == nil || (i < len(legal) && legal[i]) {
			weights[i] = 1
		}
	}
	i, ok := sampleuv.NewWeighted(weights, key.Source()).Take()
	if !ok {
		// Nothing legal: any action ends the episode.
		return 0
	}
	return i
}

// FirstLegal always takes the lowest legal action index.
type FirstLegal struct{}

func (FirstLegal) Act(obs any, numActions int, _ rng.Key) int {
	for i, ok := range env.LegalActions(obs) {
		if ok && i < numActions {
			return i
		}
	}
	return 0
}
