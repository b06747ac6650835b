// Package chart draws trend line charts with go-chart.
//
// One series is drawn per area, in order of first appearance. Missing values
// split an area's line into separate segments so gaps stay visible.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/telecomtrends/internal/core"
)

// Format selects the output encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ErrNoValues is returned when every record is missing, so there is nothing
// to plot.
var ErrNoValues = fmt.Errorf("%w: every value is missing", core.ErrEmptySelection)

const (
	DefaultWidth  = 1000
	DefaultHeight = 500

	// maxXTicks caps the year labels on the x axis.
	maxXTicks = 12
)

// Options configure one chart.
type Options struct {
	Title  string
	Width  int
	Height int
	Format Format
}

// palette holds one colour per area. MaxAreas areas never repeat a colour.
var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
}

// Color returns the series colour for the i-th area.
func Color(i int) drawing.Color {
	return palette[i%len(palette)]
}

// Title builds the chart title for a selection: the indicator, followed by
// the area on a second line in single-area mode.
func Title(sel core.Selection, mode core.Mode) string {
	if mode == core.ModeSingle && len(sel.Areas) == 1 {
		return fmt.Sprintf("%s\n(%s)", sel.Indicator, sel.Areas[0])
	}
	return sel.Indicator
}

// RenderTrend writes a line chart of records to w: x is the year, y the
// value, one coloured series per area with the area name in the legend.
func RenderTrend(w io.Writer, records []core.TrendRecord, opts Options) error {
	c, err := Build(records, opts)
	if err != nil {
		return err
	}

	provider := gochart.PNG
	if opts.Format == SVG {
		provider = gochart.SVG
	}
	if err := c.Render(provider, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// Build lays out the chart without rendering it.
func Build(records []core.TrendRecord, opts Options) (*gochart.Chart, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	sorted := core.SortTrend(records)
	areas := core.Areas(sorted)
	if len(areas) == 0 {
		return nil, errors.New("no records to plot")
	}

	var (
		series  []gochart.Series
		legend  []gochart.Series
		yr      = newBounds()
		xr      = newBounds()
		present int
	)

	for i, area := range areas {
		style := lineStyle(Color(i))
		segments := segmentsFor(sorted, area)

		for j, seg := range segments {
			for k := range seg.xs {
				xr.add(seg.xs[k])
				yr.add(seg.ys[k])
			}
			present += len(seg.xs)

			s := gochart.ContinuousSeries{Style: style, XValues: seg.xs, YValues: seg.ys}
			if len(seg.xs) == 1 {
				// A lone point is drawn as a zero-length segment so its dot shows.
				s.XValues = []float64{seg.xs[0], seg.xs[0]}
				s.YValues = []float64{seg.ys[0], seg.ys[0]}
			}
			if j == 0 {
				s.Name = area
			}
			series = append(series, s)
		}

		legend = append(legend, gochart.ContinuousSeries{Name: area, Style: style})
	}

	if present == 0 {
		return nil, ErrNoValues
	}

	for _, r := range sorted {
		xr.add(float64(r.Year))
	}

	c := &gochart.Chart{
		Title:      strings.ReplaceAll(opts.Title, "\n", " "),
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		XAxis: gochart.XAxis{
			Name:           "Year",
			Range:          xr.xRange(),
			Ticks:          yearTicks(xr),
			GridMajorStyle: gridStyle(),
		},
		YAxis: gochart.YAxis{
			Name:           "Value",
			Range:          yr.yRange(),
			GridMajorStyle: gridStyle(),
		},
		Series: series,
	}

	// The legend reads one entry per area rather than one per segment.
	legendChart := gochart.Chart{Series: legend}
	c.Elements = []gochart.Renderable{gochart.Legend(&legendChart)}

	return c, nil
}

func lineStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
}

func gridStyle() gochart.Style {
	return gochart.Style{
		StrokeColor: drawing.ColorFromHex("e0e0e0"),
		StrokeWidth: 1,
	}
}

type segment struct {
	xs []float64
	ys []float64
}

// segmentsFor splits one area's year-sorted records into runs of present
// values.
func segmentsFor(sorted []core.TrendRecord, area string) []segment {
	var (
		segs []segment
		cur  segment
	)
	flush := func() {
		if len(cur.xs) > 0 {
			segs = append(segs, cur)
		}
		cur = segment{}
	}

	for _, r := range sorted {
		if r.Area != area {
			continue
		}
		if !r.Value.Valid || math.IsNaN(r.Value.Float64) || math.IsInf(r.Value.Float64, 0) {
			flush()
			continue
		}
		cur.xs = append(cur.xs, float64(r.Year))
		cur.ys = append(cur.ys, r.Value.Float64)
	}
	flush()
	return segs
}

type bounds struct {
	min, max float64
}

func newBounds() bounds {
	return bounds{min: math.Inf(1), max: math.Inf(-1)}
}

func (b *bounds) add(v float64) {
	if v < b.min {
		b.min = v
	}
	if v > b.max {
		b.max = v
	}
}

// xRange pads the year span by half a year on each side.
func (b bounds) xRange() *gochart.ContinuousRange {
	return &gochart.ContinuousRange{Min: b.min - 0.5, Max: b.max + 0.5}
}

// yRange pads the value span by 5%, widening a flat series so go-chart
// never sees a zero-height range.
func (b bounds) yRange() *gochart.ContinuousRange {
	lo, hi := b.min, b.max
	if hi <= lo {
		pad := math.Abs(lo) * 0.1
		if pad == 0 {
			pad = 1
		}
		return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}
	pad := (hi - lo) * 0.05
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// yearTicks labels whole years, thinning them to at most maxXTicks.
func yearTicks(b bounds) []gochart.Tick {
	first, last := int(math.Ceil(b.min)), int(math.Floor(b.max))
	span := last - first + 1
	step := 1
	if span > maxXTicks {
		step = int(math.Ceil(float64(span) / maxXTicks))
	}

	var ticks []gochart.Tick
	for y := first; y <= last; y += step {
		ticks = append(ticks, gochart.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	return ticks
}
