package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wang5768/jumanji/internal/importer"
	"github.com/wang5768/jumanji/internal/model"
)

// buildTestResult creates a half-filled container with two stacked items.
func buildTestResult() model.PackingResult {
	return model.PackingResult{
		Name:      "test container",
		Container: model.NewBox(1000, 500, 400),
		Placements: []model.Placement{
			model.NewPlacement("upper", 1, model.Item{XLen: 500, YLen: 500, ZLen: 200}, model.Location{Z: 200}),
			model.NewPlacement("lower", 0, model.Item{XLen: 500, YLen: 500, ZLen: 200}, model.Location{}),
			model.NewPlacement("side", 2, model.Item{XLen: 250, YLen: 250, ZLen: 400}, model.Location{X: 500}),
		},
		FreeSpaces: []model.Box{
			{X1: 750, X2: 1000, Y1: 0, Y2: 500, Z1: 0, Z2: 400},
			{X1: 500, X2: 1000, Y1: 250, Y2: 500, Z1: 0, Z2: 400},
		},
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")

	second := buildTestResult()
	second.Name = ""
	if err := ExportPDF(path, buildTestResult(), second); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	if err := ExportPDF(path); err == nil {
		t.Fatal("expected error for no results, got nil")
	}
}

func TestExportPDF_WithUnplacedItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unplaced.pdf")

	result := buildTestResult()
	result.Unplaced = []model.Item{{XLen: 2000, YLen: 10, ZLen: 10}, {XLen: 10, YLen: 10, ZLen: 900}}

	if err := ExportPDF(path, result); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("PDF file missing or empty: %v", err)
	}
}

func TestTotalEfficiency(t *testing.T) {
	r := buildTestResult()
	// 2 * 500*500*200 + 250*250*400 over 1000*500*400
	want := (2*50_000_000.0 + 25_000_000.0) / 200_000_000.0 * 100

	if got := TotalEfficiency([]model.PackingResult{r, r}); got < want-1e-9 || got > want+1e-9 {
		t.Errorf("expected %.4f, got %.4f", want, got)
	}
	if got := TotalEfficiency(nil); got != 0 {
		t.Errorf("expected 0 for no results, got %f", got)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{100, 50, 8},
		{30, 30, 7},
		{10, 50, 6},
	}
	for _, tt := range tests {
		if got := labelFontSize(tt.w, tt.h); got != tt.want {
			t.Errorf("labelFontSize(%v, %v) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

// ─── DXF Tests ─────────────────────────────────────────────

func TestExportDXF_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.dxf")
	r := buildTestResult()

	if err := ExportDXF(path, r); err != nil {
		t.Fatalf("ExportDXF returned error: %v", err)
	}

	result := importer.ImportDXF(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Container == nil || *result.Container != r.Container {
		t.Errorf("expected container %+v, got %+v", r.Container, result.Container)
	}

	// Layers come back in loading order.
	want := []string{"lower", "side", "upper"}
	if len(result.Rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(result.Rows))
	}
	for i, row := range result.Rows {
		if row.Name != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], row.Name)
		}
	}
}

func TestExportDXF_DegenerateContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.dxf")

	if err := ExportDXF(path, model.PackingResult{}); err == nil {
		t.Fatal("expected error for degenerate container, got nil")
	}
}
