// Package solver packs bin-packing instances offline, outside the
// step-by-step environment loop. Every solver works on binpack.State and
// places items with State.Place, so its output is a state the environment
// could have reached.
package solver

import (
	"sort"

	"github.com/wang5768/jumanji/internal/binpack"
	"github.com/wang5768/jumanji/internal/rng"
)

// Solver places as many items of an initial state as it can.
type Solver interface {
	Name() string
	Solve(s binpack.State, key rng.Key) binpack.State
}

// PackInOrder places the items in order, each at the first live EMS (in
// scan order) that fits it. Items that fit nowhere are skipped; free space
// only shrinks, so a skipped item could not be placed later either.
func PackInOrder(s binpack.State, order []int) binpack.State {
	for _, j := range order {
		if j < 0 || j >= s.MaxNumItems() || !s.ItemsMask[j] || s.ItemsPlaced[j] {
			continue
		}
		if slot := firstFit(s, j); slot >= 0 {
			s = s.Place(slot, j)
		}
	}
	return s
}

func firstFit(s binpack.State, j int) int {
	for _, i := range s.SortedEMSIndexes {
		if s.EMSMask[i] && s.ActionMask[i][j] {
			return i
		}
	}
	return -1
}

// pending returns the masked-in, unplaced items of s.
func pending(s binpack.State) []int {
	var out []int
	for j, in := range s.ItemsMask {
		if in && !s.ItemsPlaced[j] {
			out = append(out, j)
		}
	}
	return out
}

// byVolume orders items largest volume first, ties by slot.
func byVolume(s binpack.State, items []int) []int {
	out := append([]int(nil), items...)
	sort.SliceStable(out, func(a, b int) bool {
		return s.Items[out[a]].Volume() > s.Items[out[b]].Volume()
	})
	return out
}
