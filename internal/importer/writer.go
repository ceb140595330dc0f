package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/wang5768/jumanji/internal/model"
)

// RowsFromItems turns items into one row per item, named shape_1, shape_2,
// ... with quantity 1 and the stackable flag set.
func RowsFromItems(items []model.Item) []Row {
	rows := make([]Row, len(items))
	for i, it := range items {
		rows[i] = Row{
			Name:      fmt.Sprintf("shape_%d", i+1),
			Length:    it.XLen,
			Width:     it.YLen,
			Height:    it.ZLen,
			Quantity:  1,
			Stackable: true,
		}
	}
	return rows
}

// FormatNumber writes v with the fewest digits that parse back to v, so
// 5870 is written as "5870".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r Row) record() []string {
	stackable := "0"
	if r.Stackable {
		stackable = "1"
	}
	return []string{
		r.Name,
		FormatNumber(r.Length),
		FormatNumber(r.Width),
		FormatNumber(r.Height),
		strconv.Itoa(r.Quantity),
		stackable,
	}
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return fmt.Errorf("write %s: %w", r.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes items to an instance CSV file.
func ExportCSV(path string, items []model.Item) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create instance file: %w", err)
	}
	if err := WriteCSV(f, RowsFromItems(items)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ExportExcel writes items to the first sheet of a new workbook.
func ExportExcel(path string, items []model.Item) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range RowsFromItems(items) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell reference: %w", err)
		}
		stackable := 0
		if r.Stackable {
			stackable = 1
		}
		values := []interface{}{r.Name, r.Length, r.Width, r.Height, r.Quantity, stackable}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s: %w", r.Name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
