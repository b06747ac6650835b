package chart

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/JonMunkholm/telecomtrends/internal/core"
)

func rec(area string, year int, v core.Measure) core.TrendRecord {
	return core.TrendRecord{Area: area, Indicator: "Mobile", Year: year, Value: v}
}

func sampleRecords() []core.TrendRecord {
	return []core.TrendRecord{
		rec("USA", 2020, core.Some(50)),
		rec("USA", 2021, core.Some(60)),
		rec("USA", 2022, core.Missing),
		rec("USA", 2023, core.Some(70)),
		rec("Kenya", 2020, core.Some(80)),
		rec("Kenya", 2021, core.Some(90)),
		rec("Kenya", 2022, core.Some(100)),
		rec("Kenya", 2023, core.Some(110)),
	}
}

func TestRenderTrend_PNG(t *testing.T) {
	var buf bytes.Buffer
	err := RenderTrend(&buf, sampleRecords(), Options{Title: "Mobile", Width: 640, Height: 320})
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())
}

func TestRenderTrend_SVG(t *testing.T) {
	var buf bytes.Buffer
	err := RenderTrend(&buf, sampleRecords(), Options{Title: "Mobile", Format: SVG})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "USA")
	assert.Contains(t, out, "Kenya")
}

func TestBuild_GapsSplitSeries(t *testing.T) {
	c, err := Build(sampleRecords(), Options{})
	require.NoError(t, err)

	// USA has a gap in 2022 and becomes two segments; Kenya is one line.
	require.Len(t, c.Series, 3)

	first := c.Series[0].(gochart.ContinuousSeries)
	assert.Equal(t, "USA", first.Name)
	assert.Equal(t, []float64{2020, 2021}, first.XValues)

	lone := c.Series[1].(gochart.ContinuousSeries)
	assert.Empty(t, lone.Name, "continuation segments stay out of the legend")
	assert.Equal(t, []float64{2023, 2023}, lone.XValues)

	kenya := c.Series[2].(gochart.ContinuousSeries)
	assert.Equal(t, "Kenya", kenya.Name)
	assert.NotEqual(t, first.Style.StrokeColor, kenya.Style.StrokeColor)

	assert.Equal(t, DefaultWidth, c.Width)
	assert.Equal(t, DefaultHeight, c.Height)
}

func TestBuild_Ranges(t *testing.T) {
	c, err := Build([]core.TrendRecord{rec("USA", 2020, core.Some(5)), rec("USA", 2021, core.Some(5))}, Options{})
	require.NoError(t, err)

	yr := c.YAxis.Range.(*gochart.ContinuousRange)
	assert.Less(t, yr.Min, 5.0)
	assert.Greater(t, yr.Max, 5.0)

	xr := c.XAxis.Range.(*gochart.ContinuousRange)
	assert.Equal(t, 2019.5, xr.Min)
	assert.Equal(t, 2021.5, xr.Max)

	var buf bytes.Buffer
	assert.NoError(t, c.Render(gochart.PNG, &buf), "flat series renders")
}

func TestBuild_AllMissing(t *testing.T) {
	_, err := Build([]core.TrendRecord{rec("USA", 2020, core.Missing)}, Options{})

	assert.ErrorIs(t, err, ErrNoValues)
	assert.True(t, errors.Is(err, core.ErrEmptySelection))
}

func TestBuild_NoRecords(t *testing.T) {
	_, err := Build(nil, Options{})
	assert.Error(t, err)
}

func TestYearTicks(t *testing.T) {
	b := newBounds()
	b.add(2000)
	b.add(2024)

	ticks := yearTicks(b)
	assert.LessOrEqual(t, len(ticks), maxXTicks+1)
	assert.Equal(t, "2000", ticks[0].Label)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Mobile", Title(core.Selection{Indicator: "Mobile", Areas: []string{"USA", "Kenya"}}, core.ModeMulti))
	assert.Equal(t, "Mobile\n(USA)", Title(core.Selection{Indicator: "Mobile", Areas: []string{"USA"}}, core.ModeSingle))
}

func TestFormatContentType(t *testing.T) {
	assert.Equal(t, "image/png", PNG.ContentType())
	assert.Equal(t, "image/svg+xml", SVG.ContentType())
}
