// Package export writes packing results to PDF reports, QR-coded item
// labels and DXF wireframes.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/wang5768/jumanji/internal/model"
)

// itemColor represents an RGB color for a placed item.
type itemColor struct {
	R, G, B int
}

var itemColors = []itemColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	viewGap      = 12.0
	drawAreaTop  = marginTop + headerHeight + 8.0
)

// view is one orthographic projection of the container.
type view struct {
	title string
	// project maps a box onto the page plane as (u1, u2, v1, v2).
	project func(b model.Box) (float64, float64, float64, float64)
	// depth orders boxes so nearer ones are drawn last.
	depth func(b model.Box) float64
}

var (
	topView = view{
		title:   "Top (x-y)",
		project: func(b model.Box) (float64, float64, float64, float64) { return b.X1, b.X2, b.Y1, b.Y2 },
		depth:   func(b model.Box) float64 { return b.Z2 },
	}
	sideView = view{
		title:   "Side (x-z)",
		project: func(b model.Box) (float64, float64, float64, float64) { return b.X1, b.X2, b.Z1, b.Z2 },
		depth:   func(b model.Box) float64 { return -b.Y1 },
	}
)

// ExportPDF generates a PDF report of packing results. Each result is
// rendered on its own page as a top and a side projection, followed by a
// summary page with overall statistics.
func ExportPDF(path string, results ...model.PackingResult) error {
	if len(results) == 0 {
		return fmt.Errorf("no packing results to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, r := range results {
		pdf.AddPage()
		renderContainerPage(pdf, r, i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, results)

	return pdf.OutputFileAndClose(path)
}

// renderContainerPage draws a single packed container on the current page.
func renderContainerPage(pdf *fpdf.Fpdf, r model.PackingResult, num int) {
	c := r.Container

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Container %d: %s (%.0f x %.0f x %.0f)", num, resultName(r, num), c.XLen(), c.YLen(), c.ZLen())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Items: %d | Unplaced: %d | Used volume: %.0f | Total volume: %.0f | Efficiency: %.1f%%",
		len(r.Placements), len(r.Unplaced), r.UsedVolume(), r.TotalVolume(), r.Efficiency())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	// Two projections side by side share one scale.
	drawWidth := (pageWidth - marginLeft - marginRight - viewGap) / 2
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight
	maxU := c.XLen()
	maxV := math.Max(c.YLen(), c.ZLen())
	scale := math.Min(drawWidth/nonZero(maxU), drawHeight/nonZero(maxV))

	for i, v := range []view{topView, sideView} {
		offsetX := marginLeft + float64(i)*(drawWidth+viewGap)
		renderView(pdf, r, v, scale, offsetX, drawAreaTop)
	}

	drawItemsLegend(pdf, r, pageHeight-marginBottom-statsHeight+4)
}

// renderView draws one projection with its origin at the lower left.
func renderView(pdf *fpdf.Fpdf, r model.PackingResult, v view, scale, offsetX, offsetY float64) {
	u1, u2, v1, v2 := v.project(r.Container)
	canvasW := (u2 - u1) * scale
	canvasH := (v2 - v1) * scale

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(offsetX, offsetY-6)
	pdf.CellFormat(canvasW, 5, v.title, "", 0, "L", false, 0, "")

	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	idx := make([]int, len(r.Placements))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return v.depth(r.Placements[idx[a]].Box()) < v.depth(r.Placements[idx[b]].Box())
	})

	for _, i := range idx {
		p := r.Placements[i]
		col := itemColors[i%len(itemColors)]
		pu1, pu2, pv1, pv2 := v.project(p.Box())
		px := offsetX + (pu1-u1)*scale
		pw := (pu2 - pu1) * scale
		ph := (pv2 - pv1) * scale
		py := offsetY + canvasH - (pv2-v1)*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 12 && ph > 6 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			labelW := pdf.GetStringWidth(p.Label)
			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-2)
				pdf.CellFormat(labelW, 4, p.Label, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, u2-u1, v2-v1, offsetX, offsetY, canvasW, canvasH)
}

// drawDimensionAnnotations adds extent labels outside the view rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, extentU, extentV, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f", extentU)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.0f", extentV)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawItemsLegend renders a compact legend of placed items at the bottom of the page.
func drawItemsLegend(pdf *fpdf.Fpdf, r model.PackingResult, startY float64) {
	if len(r.Placements) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Items placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, p := range r.Placements {
		col := itemColors[i%len(itemColors)]
		label := fmt.Sprintf("%s (%.0fx%.0fx%.0f)", p.Label, p.Item.XLen, p.Item.YLen, p.Item.ZLen)
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, results []model.PackingResult) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Packing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	offcuts := model.DetectAllOffcuts(results, model.MinOffcutExtent)
	largest := "-"
	var best float64
	for _, o := range offcuts {
		if v := o.Volume(); v > best {
			it := o.ToItem()
			best, largest = v, fmt.Sprintf("%.0f x %.0f x %.0f", it.XLen, it.YLen, it.ZLen)
		}
	}

	summaryItems := []struct {
		label string
		value string
	}{
		{"Containers", fmt.Sprintf("%d", len(results))},
		{"Overall Efficiency", fmt.Sprintf("%.1f%%", TotalEfficiency(results))},
		{"Items Placed", fmt.Sprintf("%d", countPlaced(results))},
		{"Unplaced Items", fmt.Sprintf("%d", countUnplaced(results))},
		{"Usable Free Space", fmt.Sprintf("%.3g", model.TotalOffcutVolume(offcuts))},
		{"Largest Free Space", largest},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Container Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 60, 60, 30, 35, 62}
	headers := []string{"#", "Name", "Dimensions", "Items", "Efficiency", "Used / Total Volume"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, r := range results {
		c := r.Container
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			resultName(r, i+1),
			fmt.Sprintf("%.0f x %.0f x %.0f", c.XLen(), c.YLen(), c.ZLen()),
			fmt.Sprintf("%d", len(r.Placements)),
			fmt.Sprintf("%.1f%%", r.Efficiency()),
			fmt.Sprintf("%.3g / %.3g", r.UsedVolume(), r.TotalVolume()),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if n := countUnplaced(results); n > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, fmt.Sprintf("WARNING: %d Unplaced Items", n), "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for i, r := range results {
			for _, it := range r.Unplaced {
				if y > pageHeight-marginBottom-8 {
					break
				}
				pdf.SetXY(marginLeft+5, y)
				text := fmt.Sprintf("- container %d: %.0f x %.0f x %.0f", i+1, it.XLen, it.YLen, it.ZLen)
				pdf.CellFormat(200, 5, text, "", 0, "L", false, 0, "")
				y += 5
			}
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by jumanji - 3D bin-packing environments", "", 0, "C", false, 0, "")
}

// TotalEfficiency returns the used volume of all results as a percentage of
// their combined container volume.
func TotalEfficiency(results []model.PackingResult) float64 {
	var used, total float64
	for _, r := range results {
		used += r.UsedVolume()
		total += r.TotalVolume()
	}
	if total == 0 {
		return 0
	}
	return used / total * 100.0
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}

func resultName(r model.PackingResult, num int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("container %d", num)
}

func countPlaced(results []model.PackingResult) int {
	total := 0
	for _, r := range results {
		total += len(r.Placements)
	}
	return total
}

func countUnplaced(results []model.PackingResult) int {
	total := 0
	for _, r := range results {
		total += len(r.Unplaced)
	}
	return total
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
