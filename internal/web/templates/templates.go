// Package templates renders the dashboard's HTML as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/JonMunkholm/telecomtrends/internal/core"
)

// Intro is the dashboard's introductory text in markdown.
const Intro = `This interactive tool allows you to explore telecom indicators by country and year.
The data file is already packaged, just pick an indicator and one or more areas below to start exploring.`

// Markdown converts markdown to HTML. Raw HTML in the source is escaped.
func Markdown(src string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML | html.HrefTargetBlank})
	return string(markdown.ToHTML([]byte(src), p, r))
}

// Alert is a message box on the page.
type Alert struct {
	Level   string // "error" or "warning"
	Message core.UserMessage
}

// DashboardView is everything the dashboard page displays.
type DashboardView struct {
	Title     string
	IntroHTML string

	Mode      core.Mode
	MaxAreas  int
	Options   *core.Options
	Selection core.Selection
	Preview   *core.Table

	Result    *core.Result
	ChartURL  string
	ExportURL string

	Alert *Alert
}

// SelectionQuery encodes a selection as URL query parameters.
func SelectionQuery(sel core.Selection) string {
	q := url.Values{}
	q.Set("indicator", sel.Indicator)
	for _, a := range sel.Areas {
		q.Add("area", a)
	}
	return q.Encode()
}

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		pw := &pageWriter{w: w}
		pw.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		pw.printf(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		pw.printf(`<title>%s</title><style>%s</style></head><body><main>`, esc(title), stylesheet)
		if pw.err != nil {
			return pw.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		pw.printf(`</main></body></html>`)
		return pw.err
	})
}

// Dashboard renders the full dashboard page.
func Dashboard(v DashboardView) templ.Component {
	return Layout(v.Title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		pw := &pageWriter{w: w}
		pw.printf(`<h1>📊 %s</h1>`, esc(v.Title))
		pw.printf(`<section class="intro">%s</section>`, v.IntroHTML)

		if v.Alert != nil {
			if err := AlertBox(*v.Alert).Render(ctx, w); err != nil {
				return err
			}
		}

		if v.Preview != nil {
			pw.printf(`<details class="preview"><summary>🔍 Preview Data</summary>`)
			writeTable(pw, v.Preview)
			pw.printf(`</details>`)
		}

		if v.Options != nil {
			writeFilterForm(pw, v)
		}

		if v.Result != nil {
			pw.printf(`<section class="chart"><img src="%s" alt="%s trend chart" width="100%%"></section>`,
				esc(v.ChartURL), esc(v.Result.Selection.Indicator))
			pw.printf(`<h3>📈 Indicator Summary</h3>`)
			writeStats(pw, v.Result.Stats)
			pw.printf(`<p><a class="button" href="%s">💾 Download this trend data as CSV</a></p>`, esc(v.ExportURL))
		}
		return pw.err
	}))
}

// AlertBox renders an error or warning message with its code and action.
func AlertBox(a Alert) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		icon := "⚠️"
		if a.Level == "error" {
			icon = "❌"
		}
		pw := &pageWriter{w: w}
		pw.printf(`<div class="alert alert-%s" role="alert"><strong>%s %s</strong>`,
			esc(a.Level), icon, esc(a.Message.Message))
		if a.Message.Action != "" {
			pw.printf(`<p>%s</p>`, esc(a.Message.Action))
		}
		if a.Message.Code != "" {
			pw.printf(`<small>Code: %s</small>`, esc(a.Message.Code))
		}
		pw.printf(`</div>`)
		return pw.err
	})
}

// ErrorPage renders a standalone page for a fatal error.
func ErrorPage(title string, msg core.UserMessage) templ.Component {
	return Layout(title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<h1>"+esc(title)+"</h1>"); err != nil {
			return err
		}
		return AlertBox(Alert{Level: "error", Message: msg}).Render(ctx, w)
	}))
}

func writeFilterForm(pw *pageWriter, v DashboardView) {
	selected := make(map[string]bool, len(v.Selection.Areas))
	for _, a := range v.Selection.Areas {
		selected[a] = true
	}

	pw.printf(`<form method="get" action="/" class="filters"><h2>🔎 Filter Options</h2>`)

	if v.Mode == core.ModeSingle {
		pw.printf(`<label>Select Country / AREA: <select name="area">`)
	} else {
		pw.printf(`<label>Select up to %d Countries / AREAS: <select name="area" multiple size="8">`, v.MaxAreas)
	}
	for _, a := range v.Options.Areas {
		pw.printf(`<option value="%s"%s>%s</option>`, esc(a), selectedAttr(selected[a]), esc(a))
	}
	pw.printf(`</select></label>`)

	pw.printf(`<label>Select Indicator: <select name="indicator">`)
	for _, ind := range v.Options.Indicators {
		pw.printf(`<option value="%s"%s>%s</option>`, esc(ind), selectedAttr(ind == v.Selection.Indicator), esc(ind))
	}
	pw.printf(`</select></label><button type="submit">Show trend</button></form>`)
}

func writeTable(pw *pageWriter, t *core.Table) {
	pw.printf(`<table><thead><tr>`)
	for _, c := range t.Columns {
		pw.printf(`<th>%s</th>`, esc(c))
	}
	pw.printf(`</tr></thead><tbody>`)
	for _, r := range t.Rows {
		pw.printf(`<tr>`)
		for _, c := range t.Columns {
			pw.printf(`<td>%s</td>`, esc(r[c]))
		}
		pw.printf(`</tr>`)
	}
	pw.printf(`</tbody></table>`)
}

func writeStats(pw *pageWriter, s core.Statistics) {
	rows := []struct {
		label string
		value string
	}{
		{"count", strconv.Itoa(s.Count)},
		{"missing", strconv.Itoa(s.Missing)},
		{"mean", FormatStat(s.Mean)},
		{"std", FormatStat(s.Std)},
		{"min", FormatStat(s.Min)},
		{"25%", FormatStat(s.Q1)},
		{"50%", FormatStat(s.Median)},
		{"75%", FormatStat(s.Q3)},
		{"max", FormatStat(s.Max)},
	}
	pw.printf(`<table class="stats"><tbody>`)
	for _, r := range rows {
		pw.printf(`<tr><th>%s</th><td>%s</td></tr>`, r.label, esc(r.value))
	}
	if s.YearMin != 0 || s.YearMax != 0 {
		pw.printf(`<tr><th>years</th><td>%d – %d</td></tr>`, s.YearMin, s.YearMax)
	}
	pw.printf(`</tbody></table>`)
}

// FormatStat renders a statistic with six decimal places, or "NaN".
func FormatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func selectedAttr(ok bool) string {
	if ok {
		return " selected"
	}
	return ""
}

func esc(s string) string {
	return templ.EscapeString(s)
}

// pageWriter keeps the first write error so markup can be written without
// checking every call.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

const stylesheet = `
body{font-family:system-ui,-apple-system,sans-serif;margin:0;background:#fafafa;color:#222}
main{max-width:1100px;margin:0 auto;padding:1.5rem}
table{border-collapse:collapse;font-size:.85rem;margin:.5rem 0}
th,td{border:1px solid #ddd;padding:.25rem .5rem;text-align:left}
.preview{overflow-x:auto;margin:1rem 0}
.filters{display:flex;gap:1rem;flex-wrap:wrap;align-items:flex-end;margin:1rem 0}
.filters h2{width:100%;margin:0;font-size:1.1rem}
.alert{padding:.75rem 1rem;border-radius:6px;margin:1rem 0}
.alert-error{background:#fdecea;border:1px solid #f5c2c0}
.alert-warning{background:#fff8e1;border:1px solid #ffe08a}
.button{display:inline-block;padding:.5rem 1rem;background:#1f77b4;color:#fff;border-radius:6px;text-decoration:none}
`
