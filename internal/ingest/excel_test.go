package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows into the first sheet of an in-memory xlsx file.
func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		start, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, start, &row))
	}

	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadWorkbook_RoundTrip(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"CPU"},
		{"100001", "Ryzen 5 5600X, AM4, 6-core", 320, 290, 250, 36},
		{"GPU"},
		{"200001", "GeForce RTX 4070, 12GB", 680, 640, 580, 24},
	})

	grid, err := ReadWorkbook(buf)
	require.NoError(t, err)

	imports := ParsePriceList(grid)
	require.Len(t, imports, 2)
	assert.Equal(t, "CPU", imports[0].Category)
	assert.Equal(t, "Ryzen 5 5600X, AM4, 6-core", imports[0].Name)
	assert.Equal(t, 320.0, imports[0].MarketPrice)
	assert.Equal(t, "GPU", imports[1].Category)
	assert.Equal(t, 580.0, imports[1].SupplierPrice)
}

func TestReadWorkbook_NotAWorkbook(t *testing.T) {
	_, err := ReadWorkbook(strings.NewReader("definitely not a zip archive"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
