package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/telecomtrends/internal/core"
)

const sampleCSV = "REF_AREA_LABEL,INDICATOR_LABEL,2020,2021,2022\n" +
	"USA,Mobile,50,60,\n" +
	"Kenya,Mobile,80,90,100\n" +
	"USA,Broadband,30,32,35\n"

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "telecom_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runWithInput(t, "", args...)
}

func runWithInput(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestOptionsCmd(t *testing.T) {
	out, _, err := run(t, "options", "--file", writeSample(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Indicators (2):")
	assert.Contains(t, out, "  Broadband\n  Mobile\n")
	assert.Contains(t, out, "Areas (2):")
	assert.Contains(t, out, "Years: 2020, 2021, 2022")
}

func TestSummaryCmd(t *testing.T) {
	out, _, err := run(t, "summary", "--file", writeSample(t), "-i", "Mobile", "-a", "USA", "-a", "Kenya")
	require.NoError(t, err)
	assert.Contains(t, out, "76.000000")
	assert.Contains(t, out, "years")
}

func TestSummaryCmd_NoMatch(t *testing.T) {
	_, _, err := run(t, "summary", "--file", writeSample(t), "-i", "Mobile", "-a", "Mars")

	var ue *core.UserError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "SEL001", ue.User.Code)
	assert.ErrorIs(t, err, core.ErrEmptySelection)
}

func TestExportCmd_Stdout(t *testing.T) {
	out, _, err := run(t, "export", "--file", writeSample(t), "-i", "Mobile", "-a", "Kenya")
	require.NoError(t, err)
	assert.Equal(t, "REF_AREA_LABEL,INDICATOR_LABEL,Year,Value\n"+
		"Kenya,Mobile,2020,80\nKenya,Mobile,2021,90\nKenya,Mobile,2022,100\n", out)
}

func TestExportCmd_Directory(t *testing.T) {
	dir := t.TempDir()
	_, stderr, err := run(t, "export", "--file", writeSample(t), "--mode", "single", "-i", "Mobile", "-a", "USA", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "USA_Mobile_trend.csv")

	data, err := os.ReadFile(filepath.Join(dir, "USA_Mobile_trend.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "USA,Mobile,2022,\n")
}

func TestChartCmd_SVG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "mobile.svg")
	_, _, err := run(t, "chart", "--file", writeSample(t), "-i", "Mobile", "-a", "USA", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestPreviewCmd(t *testing.T) {
	out, _, err := run(t, "preview", "--file", writeSample(t), "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "REF_AREA_LABEL")
	assert.Contains(t, out, "USA")
	assert.NotContains(t, out, "Kenya")
}

func TestMissingFile(t *testing.T) {
	_, _, err := run(t, "options", "--file", filepath.Join(t.TempDir(), "absent.xlsx"))

	var ue *core.UserError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "LOAD001", ue.User.Code)
}

func TestRequiredFlags(t *testing.T) {
	_, _, err := run(t, "summary", "--file", writeSample(t))
	require.Error(t, err)
}

func TestSummaryCmd_Stdin(t *testing.T) {
	out, _, err := runWithInput(t, sampleCSV, "summary", "--file", "-", "-i", "Mobile", "-a", "Kenya")
	require.NoError(t, err)
	assert.Contains(t, out, "90.000000")
}

func TestOptionsCmd_StdinSchemaError(t *testing.T) {
	_, _, err := runWithInput(t, "Country,2020\nUSA,1\n", "options", "--file", "-")

	var ue *core.UserError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "SCH001", ue.User.Code)
}

func TestOptionsCmd_EmptyStdin(t *testing.T) {
	_, _, err := runWithInput(t, "", "options", "--file", "-")

	var ue *core.UserError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "LOAD001", ue.User.Code)
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, core.NewUserError(core.ErrEmptySelection))
	assert.Equal(t, "Error: No data found for this combination (Code: SEL001). Choose a different area or indicator\n", buf.String())

	buf.Reset()
	reportError(&buf, errors.New(`required flag(s) "indicator" not set`))
	assert.Equal(t, "Error: required flag(s) \"indicator\" not set\n", buf.String())
}
