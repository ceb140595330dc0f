package model

import (
	"sort"

	"github.com/google/uuid"
)

// Offcut is a free space left in a packed container that is large enough
// to take another item.
type Offcut struct {
	ID        string `json:"id"`
	Container string `json:"container"` // name of the packing result
	Space     Box    `json:"space"`
}

// Volume returns the volume of the offcut.
func (o Offcut) Volume() float64 {
	return Volume(o.Space)
}

// ToItem returns the largest item the offcut takes.
func (o Offcut) ToItem() Item {
	return o.Space.Item()
}

// MinOffcutExtent is the smallest extent, along every axis, of a free
// space that counts as an offcut. Smaller spaces are waste.
const MinOffcutExtent = 100.0

// DetectOffcuts returns the free spaces of r whose every extent is at
// least minExtent, largest volume first. Free spaces may overlap.
func DetectOffcuts(r PackingResult, minExtent float64) []Offcut {
	var offcuts []Offcut
	for _, s := range r.FreeSpaces {
		if s.XLen() < minExtent || s.YLen() < minExtent || s.ZLen() < minExtent {
			continue
		}
		offcuts = append(offcuts, Offcut{
			ID:        uuid.New().String()[:8],
			Container: r.Name,
			Space:     s,
		})
	}

	sort.SliceStable(offcuts, func(i, j int) bool {
		return offcuts[i].Volume() > offcuts[j].Volume()
	})
	return offcuts
}

// DetectAllOffcuts finds offcuts across every result.
func DetectAllOffcuts(results []PackingResult, minExtent float64) []Offcut {
	var all []Offcut
	for _, r := range results {
		all = append(all, DetectOffcuts(r, minExtent)...)
	}
	return all
}

// TotalOffcutVolume returns the volume covered by the offcuts, counting
// overlapping spaces once.
func TotalOffcutVolume(offcuts []Offcut) float64 {
	spaces := make([]Box, len(offcuts))
	for i, o := range offcuts {
		spaces[i] = o.Space
	}
	return UnionVolume(spaces)
}
