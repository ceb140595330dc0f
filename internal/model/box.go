package model

// Box is an axis-aligned box inside the container. It is used for the
// container itself, for empty maximal spaces and for the footprint of a
// placed item. A well-formed box satisfies X1<=X2, Y1<=Y2, Z1<=Z2; boxes
// produced by Intersect may violate that and are treated as empty.
type Box struct {
	X1 float64 `json:"x1"`
	X2 float64 `json:"x2"`
	Y1 float64 `json:"y1"`
	Y2 float64 `json:"y2"`
	Z1 float64 `json:"z1"`
	Z2 float64 `json:"z2"`
}

// Container is the box items are packed into.
type Container = Box

// EMS is an empty maximal space.
type EMS = Box

// NewBox builds a box anchored at the origin with the given extents.
func NewBox(xLen, yLen, zLen float64) Box {
	return Box{X1: 0, X2: xLen, Y1: 0, Y2: yLen, Z1: 0, Z2: zLen}
}

// EmptyBox is the canonical padding value for unused EMS slots.
func EmptyBox() Box {
	return Box{}
}

// Location is the origin assigned to an item once it has been placed.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Item is a box that has extents but no position until it is placed.
type Item struct {
	XLen float64 `json:"x_len"`
	YLen float64 `json:"y_len"`
	ZLen float64 `json:"z_len"`
}

// Volume returns the item volume.
func (it Item) Volume() float64 {
	return it.XLen * it.YLen * it.ZLen
}

// BoxAt returns the footprint of the item when its origin is at loc.
func (it Item) BoxAt(loc Location) Box {
	return Box{
		X1: loc.X, X2: loc.X + it.XLen,
		Y1: loc.Y, Y2: loc.Y + it.YLen,
		Z1: loc.Z, Z2: loc.Z + it.ZLen,
	}
}

// Origin returns the lowest corner of the box.
func (b Box) Origin() Location {
	return Location{X: b.X1, Y: b.Y1, Z: b.Z1}
}

// XLen returns the extent along x (may be negative for degenerate boxes).
func (b Box) XLen() float64 { return b.X2 - b.X1 }

// YLen returns the extent along y.
func (b Box) YLen() float64 { return b.Y2 - b.Y1 }

// ZLen returns the extent along z.
func (b Box) ZLen() float64 { return b.Z2 - b.Z1 }

// Item returns an unplaced item with the extents of the box.
func (b Box) Item() Item {
	return Item{XLen: b.XLen(), YLen: b.YLen(), ZLen: b.ZLen()}
}

// IsDegenerate reports whether the box has a zero or negative extent.
func (b Box) IsDegenerate() bool {
	return b.X2 <= b.X1 || b.Y2 <= b.Y1 || b.Z2 <= b.Z1
}

// Volume is a convenience method for Volume(b).
func (b Box) Volume() float64 {
	return Volume(b)
}

// Scale divides every coordinate by the container extents so that the
// container maps onto the unit cube.
func (b Box) Scale(c Container) Box {
	xl, yl, zl := nonZero(c.XLen()), nonZero(c.YLen()), nonZero(c.ZLen())
	return Box{
		X1: (b.X1 - c.X1) / xl, X2: (b.X2 - c.X1) / xl,
		Y1: (b.Y1 - c.Y1) / yl, Y2: (b.Y2 - c.Y1) / yl,
		Z1: (b.Z1 - c.Z1) / zl, Z2: (b.Z2 - c.Z1) / zl,
	}
}

// Scale divides the item extents by the container extents.
func (it Item) Scale(c Container) Item {
	return Item{
		XLen: it.XLen / nonZero(c.XLen()),
		YLen: it.YLen / nonZero(c.YLen()),
		ZLen: it.ZLen / nonZero(c.ZLen()),
	}
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
