// Package importer reads and writes bin-packing instance files. It accepts
// CSV and Excel sheets with the columns
// Product_Name,Length,Width,Height,Quantity,Stackable, detects the CSV
// delimiter and matches headers case-insensitively.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wang5768/jumanji/internal/model"
)

// Header is the canonical instance header row.
var Header = []string{"Product_Name", "Length", "Width", "Height", "Quantity", "Stackable"}

// Row is one item type of an instance file.
type Row struct {
	Name      string
	Length    float64
	Width     float64
	Height    float64
	Quantity  int
	Stackable bool
}

// Item returns the item described by the row. Length, width and height map
// onto the x, y and z extents.
func (r Row) Item() model.Item {
	return model.Item{XLen: r.Length, YLen: r.Width, ZLen: r.Height}
}

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Rows     []Row
	Errors   []string
	Warnings []string

	// Container is set by readers whose format carries one (DXF).
	Container *model.Box
}

// Items expands every row into Quantity identical items, in row order.
func (r ImportResult) Items() []model.Item {
	var items []model.Item
	for _, row := range r.Rows {
		for i := 0; i < row.Quantity; i++ {
			items = append(items, row.Item())
		}
	}
	return items
}

// Err folds the row errors into one error, or returns nil.
func (r ImportResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("%d problem(s): %s", len(r.Errors), strings.Join(r.Errors, "; "))
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Name      int
	Length    int
	Width     int
	Height    int
	Quantity  int
	Stackable int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"name":      {"product_name", "product name", "product", "name", "label", "item"},
	"length":    {"length", "len", "l", "x"},
	"width":     {"width", "w", "y"},
	"height":    {"height", "h", "z"},
	"quantity":  {"quantity", "qty", "count", "num", "pcs"},
	"stackable": {"stackable", "stack", "stackable flag"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the canonical
// positional mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Name: -1, Length: -1, Width: -1, Height: -1, Quantity: -1, Stackable: -1}
	roles := map[string]*int{
		"name":      &mapping.Name,
		"length":    &mapping.Length,
		"width":     &mapping.Width,
		"height":    &mapping.Height,
		"quantity":  &mapping.Quantity,
		"stackable": &mapping.Stackable,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if idx := roles[role]; *idx == -1 {
					*idx = i
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Name: 0, Length: 1, Width: 2, Height: 3, Quantity: 4, Stackable: 5}, false
	}
	return mapping, true
}

// parseStackable accepts 0/1 and the usual boolean spellings.
func parseStackable(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "":
		return true, true
	case "0", "false", "no", "n":
		return false, true
	default:
		return true, false
	}
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseExtent(row []string, idx int, column, rowLabel string) (float64, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, column)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, column, s)
	}
	return v, ""
}

// parseRow extracts a Row using the given column mapping.
// Returns the row, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, rowCount int) (Row, string, string) {
	name := getCell(row, mapping.Name)
	if name == "" {
		name = fmt.Sprintf("shape_%d", rowCount+1)
	}

	length, errMsg := parseExtent(row, mapping.Length, "length", rowLabel)
	if errMsg != "" {
		return Row{}, errMsg, ""
	}
	width, errMsg := parseExtent(row, mapping.Width, "width", rowLabel)
	if errMsg != "" {
		return Row{}, errMsg, ""
	}
	height, errMsg := parseExtent(row, mapping.Height, "height", rowLabel)
	if errMsg != "" {
		return Row{}, errMsg, ""
	}

	qtyStr := getCell(row, mapping.Quantity)
	if qtyStr == "" {
		return Row{}, fmt.Sprintf("%s: Missing quantity value", rowLabel), ""
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return Row{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), ""
	}

	if length <= 0 || width <= 0 || height <= 0 || qty <= 0 {
		return Row{}, fmt.Sprintf("%s: Length, width, height, and quantity must be positive", rowLabel), ""
	}

	r := Row{Name: name, Length: length, Width: width, Height: height, Quantity: qty, Stackable: true}

	var warning string
	if s := getCell(row, mapping.Stackable); s != "" {
		stackable, ok := parseStackable(s)
		r.Stackable = stackable
		if !ok {
			warning = fmt.Sprintf("%s: Unknown stackable flag '%s', defaulting to 1", rowLabel, s)
		}
	}

	return r, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports an instance from a CSV file, detecting the delimiter.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readRecords(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", warnings, true)
}

// ImportCSVFromReader imports an instance from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	records, err := readRecords(reader, delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil, true)
}

func readRecords(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// ImportExcel imports an instance from the first sheet of an Excel file.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	// Excel drops trailing empty cells, so row widths are not checked.
	return importFromRows(rows, "Row", nil, false)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// With fixedWidth set every data row must have as many fields as the header,
// or as Header when the data has none.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string, fixedWidth bool) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	width := len(Header)
	if hasHeader {
		width = len(rows[0])
		startRow = 1

		missing := []string{}
		if mapping.Length == -1 {
			missing = append(missing, "Length")
		}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if mapping.Quantity == -1 {
			missing = append(missing, "Quantity")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 2 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			// Unrecognised header: skip it but keep positional mapping
			startRow = 1
			width = len(rows[0])
			result.Warnings = append(result.Warnings, "Unrecognised header row, using column positions")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		if fixedWidth && len(row) != width {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Expected %d columns, got %d", rowLabel, width, len(row)))
			continue
		}
		r, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Rows))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Rows = append(result.Rows, r)
	}

	return result
}
