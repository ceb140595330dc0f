package export

import (
	"fmt"
	"sort"

	"github.com/wang5768/jumanji/internal/importer"
	"github.com/wang5768/jumanji/internal/model"
)

// ExportDXF writes a packed container as a 3D wireframe, one layer per
// placed item in loading order.
func ExportDXF(path string, r model.PackingResult) error {
	if r.Container.IsDegenerate() {
		return fmt.Errorf("container %v is degenerate", r.Container)
	}
	var boxes []importer.LabeledBox
	for _, p := range loadingOrder(r.Placements) {
		boxes = append(boxes, importer.LabeledBox{Label: p.Label, Box: p.Box()})
	}
	return importer.ExportDXF(path, r.Container, boxes)
}

// loadingOrder sorts placements bottom-up, then back to front, then left
// to right.
func loadingOrder(placements []model.Placement) []model.Placement {
	out := append([]model.Placement(nil), placements...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Location, out[j].Location
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return out
}
