// Package engine implements the empty-maximal-space (EMS) bookkeeping used by
// the 3D bin-packing environment. Every function works on fixed-length slices
// paired with boolean masks so the cost of a call depends only on the slice
// lengths and never on how many entries are live.
package engine

import (
	"sort"

	"github.com/wang5768/jumanji/internal/model"
)

// Options tunes the numeric behaviour of the engine.
type Options struct {
	// MinVolume is the volume below which a candidate space is discarded as
	// a floating point sliver.
	MinVolume float64
	// Tolerance is the slack applied to extent and containment comparisons.
	Tolerance float64
}

// DefaultOptions derives tolerances from the container size.
func DefaultOptions(container model.Container) Options {
	scale := max(container.XLen(), container.YLen(), container.ZLen())
	if scale <= 0 {
		scale = 1
	}
	return Options{
		MinVolume: max(1e-9*model.Volume(container), 1e-12),
		Tolerance: 1e-9 * scale,
	}
}

// UpdateStats reports what happened during one EMS update.
type UpdateStats struct {
	Split     int // live spaces that overlapped the placed item
	Generated int // non-degenerate candidates cut from split spaces
	Pruned    int // candidates removed as non-maximal or negligible
	Dropped   int // maximal spaces lost because the array was full
	Live      int // live spaces written back
}

// UpdateEMS returns the EMS set after an item with footprint placed has been
// put into the container. The input slices are not modified.
func UpdateEMS(ems []model.Box, mask []bool, placed model.Box, opts Options) ([]model.Box, []bool) {
	next, nextMask, _ := UpdateEMSWithStats(ems, mask, placed, opts)
	return next, nextMask
}

// UpdateEMSWithStats is UpdateEMS that also reports split/prune/drop counts.
//
// Every live space overlapping the placed box is replaced by up to six
// candidates, one per side of the placed box that lies strictly inside it.
// Spaces that do not overlap are carried over unchanged. Candidates that are
// contained in another candidate are pruned. When more maximal spaces
// survive than there are slots, the smallest ones are dropped first.
func UpdateEMSWithStats(ems []model.Box, mask []bool, placed model.Box, opts Options) ([]model.Box, []bool, UpdateStats) {
	var stats UpdateStats
	capacity := len(ems)

	// Pool capacity is fixed by the input size: each slot yields at most six
	// candidates.
	pool := make([]model.Box, 0, 6*capacity)
	for i, e := range ems {
		if !mask[i] {
			continue
		}
		if !model.Overlaps(e, placed) {
			pool = append(pool, e)
			continue
		}
		stats.Split++
		for _, c := range splitAround(e, placed, opts.Tolerance) {
			pool = append(pool, c)
			stats.Generated++
		}
	}

	keep := make([]bool, len(pool))
	for i, c := range pool {
		keep[i] = model.Volume(c) >= opts.MinVolume
	}
	for i := range pool {
		if !keep[i] {
			continue
		}
		for j := range pool {
			if i == j || !keep[j] {
				continue
			}
			if !containsTol(pool[j], pool[i], opts.Tolerance) {
				continue
			}
			// Identical boxes: the first occurrence survives.
			if containsTol(pool[i], pool[j], opts.Tolerance) && i < j {
				continue
			}
			keep[i] = false
			break
		}
	}

	survivors := make([]int, 0, len(pool))
	for i := range pool {
		if keep[i] {
			survivors = append(survivors, i)
		} else {
			stats.Pruned++
		}
	}

	if len(survivors) > capacity {
		stats.Dropped = len(survivors) - capacity
		survivors = dropSmallest(pool, survivors, stats.Dropped)
	}

	next := make([]model.Box, capacity)
	nextMask := make([]bool, capacity)
	for slot, idx := range survivors {
		next[slot] = pool[idx]
		nextMask[slot] = true
	}
	for slot := len(survivors); slot < capacity; slot++ {
		next[slot] = model.EmptyBox()
	}
	stats.Live = len(survivors)
	return next, nextMask, stats
}

// splitAround cuts e along every face of p that falls strictly inside e.
func splitAround(e, p model.Box, tol float64) []model.Box {
	out := make([]model.Box, 0, 6)
	if p.X1-e.X1 > tol {
		c := e
		c.X2 = p.X1
		out = append(out, c)
	}
	if e.X2-p.X2 > tol {
		c := e
		c.X1 = p.X2
		out = append(out, c)
	}
	if p.Y1-e.Y1 > tol {
		c := e
		c.Y2 = p.Y1
		out = append(out, c)
	}
	if e.Y2-p.Y2 > tol {
		c := e
		c.Y1 = p.Y2
		out = append(out, c)
	}
	if p.Z1-e.Z1 > tol {
		c := e
		c.Z2 = p.Z1
		out = append(out, c)
	}
	if e.Z2-p.Z2 > tol {
		c := e
		c.Z1 = p.Z2
		out = append(out, c)
	}
	return out
}

// dropSmallest removes n survivors, smallest volume first. Among equal
// volumes the one that came later in the pool goes first. The returned
// indices keep pool order.
func dropSmallest(pool []model.Box, survivors []int, n int) []int {
	order := make([]int, len(survivors))
	copy(order, survivors)
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := model.Volume(pool[order[a]]), model.Volume(pool[order[b]])
		if va != vb {
			return va < vb
		}
		return order[a] > order[b]
	})
	dropped := make(map[int]bool, n)
	for _, idx := range order[:n] {
		dropped[idx] = true
	}
	kept := make([]int, 0, len(survivors)-n)
	for _, idx := range survivors {
		if !dropped[idx] {
			kept = append(kept, idx)
		}
	}
	return kept
}

// containsTol is model.Contains with slack tol on every face.
func containsTol(outer, inner model.Box, tol float64) bool {
	return outer.X1 <= inner.X1+tol && inner.X2 <= outer.X2+tol &&
		outer.Y1 <= inner.Y1+tol && inner.Y2 <= outer.Y2+tol &&
		outer.Z1 <= inner.Z1+tol && inner.Z2 <= outer.Z2+tol
}

// InitialEMS returns a fixed-length EMS set whose only live space is the
// whole container.
func InitialEMS(container model.Container, maxNumEMS int) ([]model.Box, []bool) {
	ems := make([]model.Box, maxNumEMS)
	mask := make([]bool, maxNumEMS)
	if maxNumEMS > 0 {
		ems[0] = container
		mask[0] = true
	}
	return ems, mask
}
