package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Attendance"

// XLSXMIME is the content type of generated workbooks.
const XLSXMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX renders an assembled preview as a workbook. Empty previews still
// produce a valid file carrying the headers and the no-data message.
func WriteXLSX(p Preview) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(p.Columns))
	for i, col := range p.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	if p.Empty {
		if err := f.SetCellStr(sheetName, "A2", p.Message); err != nil {
			return nil, err
		}
	}

	for i, row := range p.Rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, start, &cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
