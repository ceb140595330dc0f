package model

import "sort"

// Overlaps returns true if the interiors of a and b intersect on all three
// axes. Boxes that only share a face, edge or corner do not overlap.
func Overlaps(a, b Box) bool {
	return a.X1 < b.X2 && b.X1 < a.X2 &&
		a.Y1 < b.Y2 && b.Y1 < a.Y2 &&
		a.Z1 < b.Z2 && b.Z1 < a.Z2
}

// Contains returns true if inner lies entirely within outer.
func Contains(outer, inner Box) bool {
	return outer.X1 <= inner.X1 && inner.X2 <= outer.X2 &&
		outer.Y1 <= inner.Y1 && inner.Y2 <= outer.Y2 &&
		outer.Z1 <= inner.Z1 && inner.Z2 <= outer.Z2
}

// Intersect clamps a to b axis by axis. Callers check Overlaps first: for
// disjoint boxes the result is degenerate and must be read as "no space".
func Intersect(a, b Box) Box {
	return Box{
		X1: max(a.X1, b.X1), X2: min(a.X2, b.X2),
		Y1: max(a.Y1, b.Y1), Y2: min(a.Y2, b.Y2),
		Z1: max(a.Z1, b.Z1), Z2: min(a.Z2, b.Z2),
	}
}

// Volume returns the product of the non-negative extents of b. Degenerate
// boxes have zero volume.
func Volume(b Box) float64 {
	x := max(b.X2-b.X1, 0)
	y := max(b.Y2-b.Y1, 0)
	z := max(b.Z2-b.Z1, 0)
	return x * y * z
}

// OverlapVolume returns the volume shared by a and b.
func OverlapVolume(a, b Box) float64 {
	if !Overlaps(a, b) {
		return 0
	}
	return Volume(Intersect(a, b))
}

// UnionVolume returns the volume covered by at least one of boxes. Shared
// regions are counted once.
func UnionVolume(boxes []Box) float64 {
	xs, ys, zs := edges(boxes, func(b Box) (float64, float64) { return b.X1, b.X2 }),
		edges(boxes, func(b Box) (float64, float64) { return b.Y1, b.Y2 }),
		edges(boxes, func(b Box) (float64, float64) { return b.Z1, b.Z2 })

	var total float64
	for i := 0; i+1 < len(xs); i++ {
		for j := 0; j+1 < len(ys); j++ {
			for k := 0; k+1 < len(zs); k++ {
				cell := Box{X1: xs[i], X2: xs[i+1], Y1: ys[j], Y2: ys[j+1], Z1: zs[k], Z2: zs[k+1]}
				for _, b := range boxes {
					if Contains(b, cell) {
						total += Volume(cell)
						break
					}
				}
			}
		}
	}
	return total
}

// edges returns the sorted distinct coordinates of non-degenerate boxes
// along one axis.
func edges(boxes []Box, axis func(Box) (float64, float64)) []float64 {
	seen := make(map[float64]bool, 2*len(boxes))
	var out []float64
	for _, b := range boxes {
		if b.IsDegenerate() {
			continue
		}
		lo, hi := axis(b)
		for _, v := range []float64{lo, hi} {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Float64s(out)
	return out
}
