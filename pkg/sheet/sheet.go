// Package sheet renders picklist rows as an xlsx workbook.
package sheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"picklist/pkg/picklist"
)

const (
	ContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	DefaultFileName = "picklist_output.xlsx"
	DefaultSheet    = "Picklist"
)

// Header is the first row of every export.
var Header = []interface{}{"Item No", "Qty Ordered", "Qty Picked", "Mark"}

// Export writes rows under Header into a single-sheet workbook.
func Export(rows []picklist.Row, sheetName string) (*bytes.Buffer, error) {
	if sheetName == "" {
		sheetName = DefaultSheet
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("sheet name: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "D1", bold); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{r.ItemNo, r.QtyOrdered, r.QtyPicked, r.Mark}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "D", 14); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}
