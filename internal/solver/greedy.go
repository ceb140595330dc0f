package solver

import (
	"github.com/wang5768/jumanji/internal/binpack"
	"github.com/wang5768/jumanji/internal/rng"
)

// Greedy packs the largest items first, each into the first fitting EMS.
type Greedy struct{}

func (Greedy) Name() string { return "greedy" }

func (Greedy) Solve(s binpack.State, _ rng.Key) binpack.State {
	return PackInOrder(s, byVolume(s, pending(s)))
}
