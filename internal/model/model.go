package model

import (
	"math"

	"github.com/google/uuid"
)

// Point2D is a point in the unit square, used by the routing environments.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point2D) Dist(q Point2D) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// TourLength returns the length of the closed tour visiting points in
// order and returning to the first one.
func TourLength(points []Point2D, order []int) float64 {
	if len(order) < 2 {
		return 0
	}
	var total float64
	for i, idx := range order {
		next := order[(i+1)%len(order)]
		total += points[idx].Dist(points[next])
	}
	return total
}

// Placement records one item placed in the container.
type Placement struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Slot     int      `json:"slot"` // item slot in the environment state
	Item     Item     `json:"item"`
	Location Location `json:"location"`
}

// NewPlacement assigns a short random ID to a placement.
func NewPlacement(label string, slot int, item Item, loc Location) Placement {
	return Placement{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Slot:     slot,
		Item:     item,
		Location: loc,
	}
}

// Box returns the footprint of the placed item.
func (p Placement) Box() Box {
	return p.Item.BoxAt(p.Location)
}

// PackingResult is a packed container, ready for reports and exports.
type PackingResult struct {
	Name       string      `json:"name"`
	Container  Container   `json:"container"`
	Placements []Placement `json:"placements"`
	Unplaced   []Item      `json:"unplaced"`
	FreeSpaces []Box       `json:"free_spaces"`
}

// UsedVolume returns the total volume of placed items.
func (r PackingResult) UsedVolume() float64 {
	var total float64
	for _, p := range r.Placements {
		total += p.Item.Volume()
	}
	return total
}

// TotalVolume returns the container volume.
func (r PackingResult) TotalVolume() float64 {
	return Volume(r.Container)
}

// Efficiency returns the usage percentage.
func (r PackingResult) Efficiency() float64 {
	tv := r.TotalVolume()
	if tv == 0 {
		return 0
	}
	return (r.UsedVolume() / tv) * 100.0
}
