package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/wang5768/jumanji/internal/model"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Product_Name,Length,Width,Height,Quantity,Stackable\nshape_1,10,20,30,1,1\n")
	if got := DetectCSVDelimiter(data); got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("Product_Name;Length;Width;Height;Quantity;Stackable\nshape_1;10;20;30;1;1\n")
	if got := DetectCSVDelimiter(data); got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Product_Name\tLength\tWidth\tHeight\tQuantity\tStackable\nshape_1\t10\t20\t30\t1\t1\n")
	if got := DetectCSVDelimiter(data); got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_CanonicalHeader(t *testing.T) {
	mapping, isHeader := DetectColumns(Header)

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Name: 0, Length: 1, Width: 2, Height: 3, Quantity: 4, Stackable: 5}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_ReorderedAndAliased(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"QTY", "Name", "H", "W", "L"})

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Quantity != 0 || mapping.Name != 1 || mapping.Height != 2 || mapping.Width != 3 || mapping.Length != 4 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
	if mapping.Stackable != -1 {
		t.Errorf("expected no stackable column, got %d", mapping.Stackable)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"shape_1", "5870", "2330", "2200", "1", "1"})

	if isHeader {
		t.Error("expected no header")
	}
	if mapping.Length != 1 || mapping.Stackable != 5 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── ImportCSVFromReader Tests ─────────────────────────────

func TestImportCSVFromReader_ExpandsQuantities(t *testing.T) {
	data := "Product_Name,Length,Width,Height,Quantity,Stackable\n" +
		"crate,100,50,40,2,1\n" +
		"drum,60,60,90,1,0\n"

	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if result.Rows[1].Stackable {
		t.Error("expected drum to be non-stackable")
	}

	items := result.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	want := model.Item{XLen: 100, YLen: 50, ZLen: 40}
	if items[0] != want || items[1] != want {
		t.Errorf("expected two crates first, got %+v", items[:2])
	}
	if items[2] != (model.Item{XLen: 60, YLen: 60, ZLen: 90}) {
		t.Errorf("unexpected drum %+v", items[2])
	}
}

func TestImportCSVFromReader_WithoutHeader(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("shape_1,5870,2330,2200,1,1\n"), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 1 || result.Rows[0].Length != 5870 {
		t.Errorf("unexpected rows %+v", result.Rows)
	}
}

func TestImportCSVFromReader_ReportsEveryBadRow(t *testing.T) {
	data := "Product_Name,Length,Width,Height,Quantity,Stackable\n" +
		"a,abc,1,1,1,1\n" +
		"b,1,1,1,1,1\n" +
		"c,1,1\n" +
		"d,1,1,1,0,1\n" +
		"e,1,-2,1,1,1\n"

	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Line 2") || !strings.Contains(result.Errors[0], "length") {
		t.Errorf("unexpected first error %q", result.Errors[0])
	}
	if !strings.Contains(result.Errors[1], "Line 4: Expected 6 columns, got 3") {
		t.Errorf("unexpected second error %q", result.Errors[1])
	}
	if len(result.Rows) != 1 || result.Rows[0].Name != "b" {
		t.Errorf("expected only row b to survive, got %+v", result.Rows)
	}
	if result.Err() == nil {
		t.Error("expected folded error")
	}
}

func TestImportCSVFromReader_RejectsWrongColumnCount(t *testing.T) {
	data := "Product_Name,Length,Width,Height,Quantity,Stackable\n" +
		"extra,10,10,10,1,1,999\n" +
		"nostack,10,10,10,1\n" +
		"ok,10,10,10,1,1\n"

	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Expected 6 columns, got 7") {
		t.Errorf("unexpected first error %q", result.Errors[0])
	}
	if !strings.Contains(result.Errors[1], "Expected 6 columns, got 5") {
		t.Errorf("unexpected second error %q", result.Errors[1])
	}
	if len(result.Rows) != 1 || result.Rows[0].Name != "ok" {
		t.Errorf("expected only row ok to survive, got %+v", result.Rows)
	}
}

func TestImportCSVFromReader_HeaderlessWidth(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("shape_1,5870,2330,2200,1\n"), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Expected 6 columns, got 5") {
		t.Errorf("expected column count error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_RejectsNonFiniteExtents(t *testing.T) {
	data := "Product_Name,Length,Width,Height,Quantity,Stackable\n" +
		"a,NaN,10,10,1,1\n" +
		"b,10,+Inf,10,1,1\n" +
		"c,10,10,-inf,1,1\n"

	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	for i, column := range []string{"length", "width", "height"} {
		if !strings.Contains(result.Errors[i], "Invalid "+column) {
			t.Errorf("error %d: expected invalid %s, got %q", i, column, result.Errors[i])
		}
	}
	if len(result.Rows) != 0 {
		t.Errorf("expected no rows, got %+v", result.Rows)
	}
}

func TestImportCSVFromReader_MissingRequiredColumn(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Product_Name,Length,Width,Quantity\na,1,1,1\n"), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Height") {
		t.Errorf("expected missing Height error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_UnknownStackableWarns(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Product_Name,Length,Width,Height,Quantity,Stackable\na,1,1,1,1,maybe\n"), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected one warning, got %v", result.Warnings)
	}
	if !result.Rows[0].Stackable {
		t.Error("expected default stackable")
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')

	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

// ─── File Tests ────────────────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instance.csv")
	data := "Product_Name;Length;Width;Height;Quantity;Stackable\nshape_1;1.5;2;3;2;1\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected delimiter warning, got %v", result.Warnings)
	}
	if len(result.Items()) != 2 {
		t.Errorf("expected 2 items, got %d", len(result.Items()))
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/path/instance.csv")

	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

// ─── Writer Tests ──────────────────────────────────────────

func TestWriteCSV_CanonicalLine(t *testing.T) {
	var buf bytes.Buffer
	rows := RowsFromItems([]model.Item{{XLen: 5870, YLen: 2330, ZLen: 2200}})

	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	want := "Product_Name,Length,Width,Height,Quantity,Stackable\nshape_1,5870,2330,2200,1,1\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestExportCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instance.csv")
	items := []model.Item{
		{XLen: 5870, YLen: 2330, ZLen: 2200},
		{XLen: 0.1, YLen: 1.0 / 3.0, ZLen: 1e-7},
	}

	if err := ExportCSV(path, items); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	result := ImportCSV(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	got := result.Items()
	if len(got) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(got))
	}
	for i := range items {
		if got[i] != items[i] {
			t.Errorf("item %d: expected %+v, got %+v", i, items[i], got[i])
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{5870: "5870", 0.5: "0.5", 1e-7: "0.0000001", 2330.25: "2330.25"}
	for v, want := range cases {
		if got := FormatNumber(v); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", v, got, want)
		}
	}
}

// ─── Excel Tests ───────────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "instance.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Product_Name", "Length", "Width", "Height", "Quantity", "Stackable"},
		{"crate", 100, 50, 40, 3, 1},
	})

	result := ImportExcel(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items()) != 3 {
		t.Errorf("expected 3 items, got %d", len(result.Items()))
	}
	if result.Rows[0].Name != "crate" {
		t.Errorf("expected 'crate', got '%s'", result.Rows[0].Name)
	}
}

func TestImportExcel_InvalidData(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Product_Name", "Length", "Width", "Height", "Quantity"},
		{"crate", "abc", 50, 40, 1},
	})

	result := ImportExcel(path)

	if len(result.Errors) == 0 {
		t.Error("expected error for invalid length")
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel("/nonexistent/instance.xlsx")

	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestExportExcel_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instance.xlsx")
	items := []model.Item{{XLen: 5870, YLen: 2330, ZLen: 2200}, {XLen: 10, YLen: 20, ZLen: 30}}

	if err := ExportExcel(path, items); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	result := ImportExcel(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	got := result.Items()
	if len(got) != 2 || got[0] != items[0] || got[1] != items[1] {
		t.Errorf("expected %+v, got %+v", items, got)
	}
}

// ─── DXF Tests ─────────────────────────────────────────────

func TestDXF_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.dxf")
	container := model.NewBox(100, 50, 40)
	boxes := []LabeledBox{
		{Label: "crate", Box: model.Box{X1: 0, X2: 60, Y1: 0, Y2: 50, Z1: 0, Z2: 40}},
		{Label: "crate", Box: model.Box{X1: 60, X2: 100, Y1: 0, Y2: 25, Z1: 0, Z2: 40}},
		{Box: model.Box{X1: 60, X2: 100, Y1: 25, Y2: 50, Z1: 0, Z2: 10}},
	}

	if err := ExportDXF(path, container, boxes); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	result := ImportDXF(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Container == nil || *result.Container != container {
		t.Errorf("expected container %+v, got %+v", container, result.Container)
	}
	if len(result.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Rows))
	}

	names := []string{"crate", "crate_2", "box_3"}
	for i, row := range result.Rows {
		if row.Name != names[i] {
			t.Errorf("row %d: expected name %q, got %q", i, names[i], row.Name)
		}
		if row.Item() != boxes[i].Box.Item() {
			t.Errorf("row %d: expected %+v, got %+v", i, boxes[i].Box.Item(), row.Item())
		}
	}
}

func TestImportDXF_FileNotFound(t *testing.T) {
	result := ImportDXF("/nonexistent/layout.dxf")

	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}
