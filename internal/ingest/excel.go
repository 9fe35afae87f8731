package ingest

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat means the upload is not a readable workbook.
var ErrUnsupportedFormat = errors.New("ingest: unsupported spreadsheet format")

// ReadWorkbook parses an xlsx container and returns the first sheet as a
// 2-D cell grid. Layout validation (which columns mean what) is not done
// here; the grid goes straight to ParsePriceList.
func ReadWorkbook(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnsupportedFormat)
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("ingest: failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
