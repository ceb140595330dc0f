package importer

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/entity"

	"github.com/wang5768/jumanji/internal/model"
)

// ContainerLayer is the DXF layer holding the container wireframe.
const ContainerLayer = "CONTAINER"

// LabeledBox is a box drawn on its own DXF layer.
type LabeledBox struct {
	Label string
	Box   model.Box
}

// ExportDXF writes the container and every box as a 3D wireframe of twelve
// LINE entities. Each box gets its own layer named after its label so the
// file can be read back with ImportDXF.
func ExportDXF(path string, container model.Container, boxes []LabeledBox) error {
	d := dxf.NewDrawing()

	if err := drawWireframe(d, ContainerLayer, color.ColorNumber(8), container); err != nil {
		return err
	}

	seen := map[string]bool{ContainerLayer: true}
	for i, b := range boxes {
		name := b.Label
		switch {
		case name == "":
			name = fmt.Sprintf("box_%d", i+1)
		case seen[name]:
			name = fmt.Sprintf("%s_%d", name, i+1)
		}
		seen[name] = true

		if err := drawWireframe(d, name, color.ColorNumber(i%254+1), b.Box); err != nil {
			return err
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// drawWireframe draws the twelve edges of b on a new current layer.
func drawWireframe(d *drawing.Drawing, layer string, cl color.ColorNumber, b model.Box) error {
	d.AddLayer(layer, cl, dxf.DefaultLineType, true)

	xs := [2]float64{b.X1, b.X2}
	ys := [2]float64{b.Y1, b.Y2}
	zs := [2]float64{b.Z1, b.Z2}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			edges := [3][6]float64{
				{xs[0], ys[i], zs[j], xs[1], ys[i], zs[j]},
				{xs[i], ys[0], zs[j], xs[i], ys[1], zs[j]},
				{xs[i], ys[j], zs[0], xs[i], ys[j], zs[1]},
			}
			for _, e := range edges {
				if _, err := d.Line(e[0], e[1], e[2], e[3], e[4], e[5]); err != nil {
					return fmt.Errorf("draw %s: %w", layer, err)
				}
			}
		}
	}
	return nil
}

// ImportDXF reads a wireframe written by ExportDXF. Every layer except
// ContainerLayer becomes one row whose extents are the bounding box of the
// layer's LINE entities; the ContainerLayer bounding box, when present, is
// returned as the container.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	d, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	var order []string
	bounds := map[string]*model.Box{}
	skipped := 0
	for _, ent := range d.Entities() {
		line, ok := ent.(*entity.Line)
		if !ok {
			skipped++
			continue
		}
		name := "0"
		if l := line.Layer(); l != nil {
			name = l.Name()
		}
		b, ok := bounds[name]
		if !ok {
			b = &model.Box{
				X1: math.Inf(1), Y1: math.Inf(1), Z1: math.Inf(1),
				X2: math.Inf(-1), Y2: math.Inf(-1), Z2: math.Inf(-1),
			}
			bounds[name] = b
			order = append(order, name)
		}
		extend(b, line.Start)
		extend(b, line.End)
	}

	if skipped > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d non-LINE entities", skipped))
	}
	if len(order) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no LINE entities")
		return result
	}

	for _, name := range order {
		b := *bounds[name]
		if name == ContainerLayer {
			result.Container = &b
			continue
		}
		if b.IsDegenerate() {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Layer %q: skipped flat shape (%g x %g x %g)", name, b.XLen(), b.YLen(), b.ZLen()))
			continue
		}
		result.Rows = append(result.Rows, Row{
			Name:      name,
			Length:    b.XLen(),
			Width:     b.YLen(),
			Height:    b.ZLen(),
			Quantity:  1,
			Stackable: true,
		})
	}

	if len(result.Rows) == 0 {
		result.Errors = append(result.Errors, "No boxes found in DXF file")
	}
	return result
}

func extend(b *model.Box, p []float64) {
	if len(p) < 3 {
		return
	}
	b.X1, b.X2 = math.Min(b.X1, p[0]), math.Max(b.X2, p[0])
	b.Y1, b.Y2 = math.Min(b.Y1, p[1]), math.Max(b.Y2, p[1])
	b.Z1, b.Z2 = math.Min(b.Z1, p[2]), math.Max(b.Z2, p[2])
}
