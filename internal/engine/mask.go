package engine

import (
	"sort"

	"github.com/wang5768/jumanji/internal/model"
)

// ActionMask returns a len(ems) x len(items) grid that is true where item j
// can be placed, unrotated, at the origin of space i right now.
func ActionMask(ems []model.Box, emsMask []bool, items []model.Item, itemsMask, itemsPlaced []bool, opts Options) [][]bool {
	grid := make([][]bool, len(ems))
	for i := range ems {
		row := make([]bool, len(items))
		if emsMask[i] {
			for j, it := range items {
				row[j] = itemsMask[j] && !itemsPlaced[j] && Fits(ems[i], it, opts)
			}
		}
		grid[i] = row
	}
	return grid
}

// Fits reports whether item placed at the origin of space lies within it.
func Fits(space model.Box, item model.Item, opts Options) bool {
	return containsTol(space, item.BoxAt(space.Origin()), opts.Tolerance)
}

// AnyLegal reports whether at least one cell of the mask is true.
func AnyLegal(mask [][]bool) bool {
	for _, row := range mask {
		for _, v := range row {
			if v {
				return true
			}
		}
	}
	return false
}

// SortEMSIndexes returns a permutation of the EMS slots: live spaces first,
// largest volume first, ties broken by slot index. Environments use it to
// choose which spaces fit in a bounded observation window.
func SortEMSIndexes(ems []model.Box, emsMask []bool) []int {
	idx := make([]int, len(ems))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if emsMask[ia] != emsMask[ib] {
			return emsMask[ia]
		}
		return model.Volume(ems[ia]) > model.Volume(ems[ib])
	})
	return idx
}
