package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_TrimsHeader(t *testing.T) {
	raw := &Table{
		Columns: []string{" REF_AREA_LABEL", "INDICATOR_LABEL  ", " 2020 ", "Notes", "2021"},
		Rows: []Row{
			{" REF_AREA_LABEL": " USA ", "INDICATOR_LABEL  ": "Mobile", " 2020 ": "50", "Notes": "", "2021": "60"},
		},
	}

	table, years, err := Validate(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{ColArea, ColIndicator, "2020", "Notes", "2021"}, table.Columns)
	assert.Equal(t, []string{"2020", "2021"}, years)
	assert.Equal(t, " USA ", table.Rows[0][ColArea], "data values untouched")
	assert.Equal(t, "50", table.Rows[0]["2020"])

	// Input is not modified.
	assert.Equal(t, " REF_AREA_LABEL", raw.Columns[0])
}

func TestValidate_Idempotent(t *testing.T) {
	raw := &Table{
		Columns: []string{" REF_AREA_LABEL ", "INDICATOR_LABEL", "2020"},
		Rows:    []Row{{" REF_AREA_LABEL ": "USA", "INDICATOR_LABEL": "Mobile", "2020": "1"}},
	}

	once, years1, err := Validate(raw)
	require.NoError(t, err)
	twice, years2, err := Validate(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, years1, years2)
}

func TestValidate_DuplicateTrimmedNames(t *testing.T) {
	raw := &Table{
		Columns: []string{ColArea, ColIndicator, "2020", " 2020"},
		Rows:    []Row{{ColArea: "USA", ColIndicator: "Mobile", "2020": "1", " 2020": "2"}},
	}

	table, years, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"2020"}, years)
	assert.Equal(t, "1", table.Rows[0]["2020"], "first occurrence wins")
}

func TestValidate_MissingIdentityColumns(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		missing []string
	}{
		{"no area", []string{ColIndicator, "2020"}, []string{ColArea}},
		{"no indicator", []string{ColArea, "2020"}, []string{ColIndicator}},
		{"neither", []string{"Country", "2020"}, []string{ColArea, ColIndicator}},
		{"case differs", []string{"ref_area_label", ColIndicator, "2020"}, []string{ColArea}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Validate(&Table{Columns: tt.columns})

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, "missing identity columns", schemaErr.Reason)
			assert.Equal(t, tt.missing, schemaErr.Missing)
		})
	}
}

func TestValidate_NoYearColumns(t *testing.T) {
	_, _, err := Validate(&Table{Columns: []string{ColArea, ColIndicator, "Y2020", "2020.0", ""}})

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "no year columns", schemaErr.Reason)
	assert.Contains(t, err.Error(), "no year columns")
}

func TestValidate_IdentityCheckedFirst(t *testing.T) {
	_, _, err := Validate(&Table{Columns: []string{"Country"}})

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "missing identity columns", schemaErr.Reason)
}

func TestValidate_OversizedDigitHeaderIsNotAYear(t *testing.T) {
	table := &Table{
		Columns: []string{ColArea, ColIndicator, "99999999999999999999", "2020"},
		Rows: []Row{
			{ColArea: "USA", ColIndicator: "Mobile", "99999999999999999999": "7", "2020": "50"},
		},
	}

	got, years, err := Validate(table)
	require.NoError(t, err)
	assert.Equal(t, []string{"2020"}, years)

	records := BuildTrend(got, years)
	require.Len(t, records, 1)
	assert.Equal(t, 2020, records[0].Year)

	_, _, err = Validate(&Table{Columns: []string{ColArea, ColIndicator, "99999999999999999999"}})
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "no year columns", schemaErr.Reason)
}

func TestBuildTrend_SkipsUnparsableYearColumns(t *testing.T) {
	table := &Table{
		Columns: []string{ColArea, ColIndicator, "2020", "99999999999999999999"},
		Rows:    []Row{{ColArea: "USA", ColIndicator: "Mobile", "2020": "50", "99999999999999999999": "1"}},
	}

	records := BuildTrend(table, []string{"2020", "99999999999999999999"})
	require.Len(t, records, 1)
	assert.Equal(t, 2020, records[0].Year)
	assert.NotZero(t, records[0].Year)
}
