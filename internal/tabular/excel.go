package tabular

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// LoadExcel reads the first sheet of an xlsx workbook into a Table. The
// first row is the header; ragged rows are padded or truncated to the
// header width, matching Load. Legacy .xls workbooks are not supported.
func LoadExcel(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	header := records[0]
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(header))
		for i := range header {
			if i < len(rec) {
				row[i] = rec[i]
			}
		}
		rows = append(rows, row)
	}

	return &Table{Columns: header, Rows: rows}, nil
}
