package web

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/telecomtrends/internal/chart"
	"github.com/JonMunkholm/telecomtrends/internal/core"
	"github.com/JonMunkholm/telecomtrends/internal/logging"
	"github.com/JonMunkholm/telecomtrends/internal/web/templates"
)

// maxPreviewRows caps the rows parameter of the preview endpoint.
const maxPreviewRows = 1000

// handleDashboard renders the main dashboard page.
//
// A fatal data problem replaces the page with an error page. A selection
// that matches nothing keeps the page interactive and shows a warning.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := s.service.Options(ctx)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	view := templates.DashboardView{
		Title:     s.title,
		IntroHTML: templates.Markdown(templates.Intro),
		Mode:      opts.Mode,
		MaxAreas:  opts.MaxAreas,
		Options:   opts,
	}

	if preview, err := s.service.Preview(ctx, s.cfg.Dashboard.PreviewRows); err == nil {
		view.Preview = preview
	}

	sel := withDefaults(parseSelection(r), opts)
	view.Selection = sel.Normalize()

	status := http.StatusOK
	res, err := s.service.Render(ctx, sel)
	switch {
	case err == nil:
		view.Selection = res.Selection
		view.Result = res
		query := templates.SelectionQuery(res.Selection)
		view.ChartURL = "/api/chart.png?" + query
		view.ExportURL = "/api/export.csv?" + query
	case core.IsFatal(err):
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	case errors.Is(err, core.ErrEmptySelection):
		view.Alert = &templates.Alert{Level: "warning", Message: core.MapError(err)}
	case errors.Is(err, core.ErrInvalidSelection):
		status = http.StatusBadRequest
		view.Alert = &templates.Alert{Level: "warning", Message: core.MapError(err)}
	default:
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Dashboard(view).Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render dashboard", "error", err)
	}
}

// handleOptions returns the selectable areas and indicators.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.service.Options(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	etag := fmt.Sprintf(`"%s"`, opts.SnapshotID)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// trendRecordJSON is a TrendRecord with a nullable value.
type trendRecordJSON struct {
	Area      string   `json:"area"`
	Indicator string   `json:"indicator"`
	Year      int      `json:"year"`
	Value     *float64 `json:"value"`
}

// statisticsJSON is Statistics with NaN rendered as null.
type statisticsJSON struct {
	Count   int      `json:"count"`
	Missing int      `json:"missing"`
	Mean    *float64 `json:"mean"`
	Std     *float64 `json:"std"`
	Min     *float64 `json:"min"`
	Q1      *float64 `json:"q1"`
	Median  *float64 `json:"median"`
	Q3      *float64 `json:"q3"`
	Max     *float64 `json:"max"`
	YearMin int      `json:"year_min"`
	YearMax int      `json:"year_max"`
}

type trendResponse struct {
	SnapshotID string            `json:"snapshot_id"`
	Mode       core.Mode         `json:"mode"`
	Selection  core.Selection    `json:"selection"`
	Matched    int               `json:"matched_rows"`
	Records    []trendRecordJSON `json:"records"`
	Statistics statisticsJSON    `json:"statistics"`
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func newTrendResponse(res *core.Result) trendResponse {
	records := make([]trendRecordJSON, len(res.Records))
	for i, rec := range res.Records {
		records[i] = trendRecordJSON{Area: rec.Area, Indicator: rec.Indicator, Year: rec.Year}
		if rec.Value.Valid {
			records[i].Value = nullable(rec.Value.Float64)
		}
	}

	st := res.Stats
	return trendResponse{
		SnapshotID: res.SnapshotID.String(),
		Mode:       res.Mode,
		Selection:  res.Selection,
		Matched:    res.Matched,
		Records:    records,
		Statistics: statisticsJSON{
			Count:   st.Count,
			Missing: st.Missing,
			Mean:    nullable(st.Mean),
			Std:     nullable(st.Std),
			Min:     nullable(st.Min),
			Q1:      nullable(st.Q1),
			Median:  nullable(st.Median),
			Q3:      nullable(st.Q3),
			Max:     nullable(st.Max),
			YearMin: st.YearMin,
			YearMax: st.YearMax,
		},
	}
}

// handleTrend returns the trend records and statistics for a selection.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Render(r.Context(), parseSelection(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, newTrendResponse(res))
}

// handleChart renders the trend chart as PNG or SVG depending on the path.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := s.service.Render(ctx, parseSelection(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	format := chart.PNG
	if strings.HasSuffix(r.URL.Path, ".svg") {
		format = chart.SVG
	}

	opts := chart.Options{
		Title:  chart.Title(res.Selection, res.Mode),
		Width:  s.cfg.Chart.Width,
		Height: s.cfg.Chart.Height,
		Format: format,
	}

	start := time.Now()
	var buf bytes.Buffer
	err = s.limiter.Do(ctx, func() error {
		return chart.RenderTrend(&buf, res.Records, opts)
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.WithFields(ctx, "snapshot_id", res.SnapshotID, "format", format).
		Debug("chart rendered", "bytes", buf.Len(), "duration_ms", time.Since(start).Milliseconds())

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

// handleExport downloads the trend of a selection as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.service.Export(r.Context(), parseSelection(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, name, url.PathEscape(name)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

type previewResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// handlePreview returns the first rows of the data file.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	n := parseIntParam(r, "rows", s.cfg.Dashboard.PreviewRows)
	if n > maxPreviewRows {
		n = maxPreviewRows
	}

	head, err := s.service.Preview(r.Context(), n)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	resp := previewResponse{Columns: head.Columns, Rows: make([][]string, len(head.Rows))}
	for i, row := range head.Rows {
		cells := make([]string, len(head.Columns))
		for j, c := range head.Columns {
			cells[j] = row[c]
		}
		resp.Rows[i] = cells
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReload drops the cached snapshot and loads the data file again.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Reload(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("data reloaded", "snapshot_id", snap.ID, "rows", snap.Table.Len())
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot_id": snap.ID.String(),
		"rows":        snap.Table.Len(),
		"loaded_at":   snap.LoadedAt.UTC().Format(time.RFC3339),
	})
}

// handleHealth reports liveness. The data file's state is informational
// and never fails the check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}

	snap, err := s.service.Snapshot(r.Context())
	if err != nil {
		resp["data"] = core.MapError(err).Code
	} else {
		resp["data"] = "ok"
		resp["snapshot_id"] = snap.ID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// parseSelection reads the indicator and the repeated area parameters
// (?area=A&area=B). Area labels may contain commas, as in "Korea, Rep.", so
// they are never split.
func parseSelection(r *http.Request) core.Selection {
	q := r.URL.Query()
	return core.Selection{
		Indicator: q.Get("indicator"),
		Areas:     append([]string(nil), q["area"]...),
	}
}

// withDefaults fills an unset indicator or area with the first option, the
// way the page looks on first visit.
func withDefaults(sel core.Selection, opts *core.Options) core.Selection {
	if strings.TrimSpace(sel.Indicator) == "" && len(opts.Indicators) > 0 {
		sel.Indicator = opts.Indicators[0]
	}
	if len(sel.Areas) == 0 && len(opts.Areas) > 0 {
		sel.Areas = []string{opts.Areas[0]}
	}
	return sel
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
