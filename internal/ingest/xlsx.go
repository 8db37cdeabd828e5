package ingest

import (
	"fmt"
	"io"

	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first sheet of a workbook.
func readXLSX(r io.Reader) (*table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", models.ErrUnsupportedFile)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return newTable(rows)
}
