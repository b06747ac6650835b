package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves rows to the first sheet of a new workbook in a temp
// directory and returns its path. The first row is the header.
func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "telecom_data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// writeFile writes content to name in a temp directory and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// sampleRows is a small indicator sheet with two areas, two indicators and
// a blank 2022 cell for USA/Mobile.
func sampleRows() [][]any {
	return [][]any{
		{" REF_AREA_LABEL ", "INDICATOR_LABEL", "UNIT", "2020", "2021", "2022"},
		{"USA", "Mobile", "per 100", 50, 60, nil},
		{"USA", "Broadband", "per 100", 30, 32, 35},
		{"Kenya", "Mobile", "per 100", 80, 90, 100},
		{"Japan", "Mobile", "per 100", "..", 140, 150},
	}
}

// sampleTable is sampleRows as a validated table.
func sampleTable() *Table {
	return &Table{
		Columns: []string{ColArea, ColIndicator, "UNIT", "2020", "2021", "2022"},
		Rows: []Row{
			{ColArea: "USA", ColIndicator: "Mobile", "UNIT": "per 100", "2020": "50", "2021": "60", "2022": ""},
			{ColArea: "USA", ColIndicator: "Broadband", "UNIT": "per 100", "2020": "30", "2021": "32", "2022": "35"},
			{ColArea: "Kenya", ColIndicator: "Mobile", "UNIT": "per 100", "2020": "80", "2021": "90", "2022": "100"},
			{ColArea: "Japan", ColIndicator: "Mobile", "UNIT": "per 100", "2020": "..", "2021": "140", "2022": "150"},
		},
	}
}
