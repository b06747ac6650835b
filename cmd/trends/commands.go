package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/telecomtrends/internal/chart"
	"github.com/JonMunkholm/telecomtrends/internal/config"
	"github.com/JonMunkholm/telecomtrends/internal/core"
	"github.com/JonMunkholm/telecomtrends/internal/logging"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	file     string
	mode     string
	logLevel string
}

// selectionFlags pick an indicator and areas.
type selectionFlags struct {
	indicator string
	areas     []string
}

func (f selectionFlags) selection() core.Selection {
	return core.Selection{Indicator: f.indicator, Areas: f.areas}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "trends",
		Short: "Explore telecom indicator trends from a spreadsheet",
		Long: `Run the dashboard's pipeline without the web server.

The data file defaults to DATA_FILE (or EXCEL_PATH), then telecom_data.xlsx.
Pass --file - to read CSV from stdin.

Example:
  trends summary --indicator "Mobile subscriptions" --area Kenya --area USA`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// stdout carries CSV and tables, so logs go to stderr.
			logging.SetupWriter(cmd.ErrOrStderr(), g.logLevel, "text")
		},
	}

	root.PersistentFlags().StringVarP(&g.file, "file", "f", "", "data file (.xlsx or .csv, - for CSV on stdin)")
	root.PersistentFlags().StringVar(&g.mode, "mode", "", "selection mode: multi or single (default from DASHBOARD_MODE)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newOptionsCmd(g),
		newSummaryCmd(g),
		newExportCmd(g),
		newChartCmd(g),
		newPreviewCmd(g),
	)
	return root
}

// service resolves the data file and mode from flags, falling back to the
// same environment configuration the server reads. A file of "-" reads CSV
// from stdin.
func (g *globalFlags) service(stdin io.Reader) (*core.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	mode := cfg.Dashboard.Mode
	if g.mode != "" {
		mode = g.mode
	}

	if g.file == "-" {
		raw, err := core.ReadTable(stdin)
		if err != nil {
			return nil, userError(&core.LoadError{Path: "stdin", Err: err})
		}
		snap, err := core.NewSnapshot(raw, "stdin")
		if err != nil {
			return nil, userError(err)
		}
		return core.NewSnapshotService(snap, core.ParseMode(mode)), nil
	}

	path := cfg.Data.Path()
	if g.file != "" {
		path = g.file
	}
	return core.NewService(path, core.ParseMode(mode), nil), nil
}
func addSelectionFlags(cmd *cobra.Command, f *selectionFlags) {
	cmd.Flags().StringVarP(&f.indicator, "indicator", "i", "", "indicator label")
	cmd.Flags().StringArrayVarP(&f.areas, "area", "a", nil, "area label (repeatable)")
	_ = cmd.MarkFlagRequired("indicator")
	_ = cmd.MarkFlagRequired("area")
}

func newOptionsCmd(g *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the areas and indicators in the data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := g.service(cmd.InOrStdin())
			if err != nil {
				return err
			}
			opts, err := svc.Options(cmd.Context())
			if err != nil {
				return userError(err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), opts)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Indicators (%d):\n", len(opts.Indicators))
			for _, ind := range opts.Indicators {
				fmt.Fprintf(out, "  %s\n", ind)
			}
			fmt.Fprintf(out, "Areas (%d):\n", len(opts.Areas))
			for _, a := range opts.Areas {
				fmt.Fprintf(out, "  %s\n", a)
			}
			fmt.Fprintf(out, "Years: %s\n", strings.Join(opts.YearColumns, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newSummaryCmd(g *globalFlags) *cobra.Command {
	var sel selectionFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print summary statistics for a selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := g.service(cmd.InOrStdin())
			if err != nil {
				return err
			}
			res, err := svc.Render(cmd.Context(), sel.selection())
			if err != nil {
				return userError(err)
			}
			return writeSummary(cmd.OutOrStdout(), res)
		},
	}

	addSelectionFlags(cmd, &sel)
	return cmd
}

func newExportCmd(g *globalFlags) *cobra.Command {
	var (
		sel selectionFlags
		out string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the long-format trend of a selection as CSV",
		Long: `Write the trend as CSV to stdout, or to a file with --out.

Pass --out with a directory to use the dashboard's download name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := g.service(cmd.InOrStdin())
			if err != nil {
				return err
			}
			data, name, err := svc.Export(cmd.Context(), sel.selection())
			if err != nil {
				return userError(err)
			}
			if out == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			return writeOutput(cmd.ErrOrStderr(), out, name, data)
		},
	}

	addSelectionFlags(cmd, &sel)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory")
	return cmd
}

func newChartCmd(g *globalFlags) *cobra.Command {
	var (
		sel           selectionFlags
		out           string
		width, height int
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the trend chart of a selection to a PNG or SVG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := chart.PNG
			if strings.HasSuffix(strings.ToLower(out), ".svg") {
				format = chart.SVG
			}

			svc, err := g.service(cmd.InOrStdin())
			if err != nil {
				return err
			}
			res, err := svc.Render(cmd.Context(), sel.selection())
			if err != nil {
				return userError(err)
			}

			var buf bytes.Buffer
			err = chart.RenderTrend(&buf, res.Records, chart.Options{
				Title:  chart.Title(res.Selection, res.Mode),
				Width:  width,
				Height: height,
				Format: format,
			})
			if err != nil {
				return userError(err)
			}
			return writeOutput(cmd.ErrOrStderr(), out, "trend."+string(format), buf.Bytes())
		},
	}

	addSelectionFlags(cmd, &sel)
	cmd.Flags().StringVarP(&out, "out", "o", "trend.png", "output file (.png or .svg)")
	cmd.Flags().IntVar(&width, "width", chart.DefaultWidth, "chart width in pixels")
	cmd.Flags().IntVar(&height, "height", chart.DefaultHeight, "chart height in pixels")
	return cmd
}

func newPreviewCmd(g *globalFlags) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the first rows of the data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := g.service(cmd.InOrStdin())
			if err != nil {
				return err
			}
			head, err := svc.Preview(cmd.Context(), rows)
			if err != nil {
				return userError(err)
			}
			return writeTable(cmd.OutOrStdout(), head)
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 20, "number of rows")
	return cmd
}

// userError pairs a pipeline error with its coded user message.
func userError(err error) error {
	return core.NewUserError(err)
}

// reportError prints err for the user. Pipeline errors show their message,
// code and action; the technical cause is logged at debug.
func reportError(w io.Writer, err error) {
	var ue *core.UserError
	if !errors.As(err, &ue) {
		fmt.Fprintln(w, "Error:", err)
		return
	}
	slog.Debug("command failed", "error", ue.Technical, "code", ue.User.Code)
	fmt.Fprintln(w, "Error:", core.FormatUserError(ue.Technical))
}

func writeSummary(w io.Writer, res *core.Result) error {
	st := res.Stats
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "indicator\t%s\n", res.Selection.Indicator)
	fmt.Fprintf(tw, "areas\t%s\n", strings.Join(res.Selection.Areas, ", "))
	fmt.Fprintf(tw, "rows matched\t%d\n", res.Matched)
	fmt.Fprintf(tw, "count\t%d\n", st.Count)
	fmt.Fprintf(tw, "missing\t%d\n", st.Missing)
	for _, s := range []struct {
		label string
		v     float64
	}{
		{"mean", st.Mean}, {"std", st.Std}, {"min", st.Min},
		{"25%", st.Q1}, {"50%", st.Median}, {"75%", st.Q3}, {"max", st.Max},
	} {
		fmt.Fprintf(tw, "%s\t%.6f\n", s.label, s.v)
	}
	if st.YearMin != 0 {
		fmt.Fprintf(tw, "years\t%d-%d\n", st.YearMin, st.YearMax)
	}
	return tw.Flush()
}

func writeTable(w io.Writer, t *core.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cells[i] = row[c]
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOutput writes data to path. A path naming an existing directory gets
// name appended.
func writeOutput(status io.Writer, path, name string, data []byte) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = strings.TrimRight(path, string(os.PathSeparator)) + string(os.PathSeparator) + name
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(status, "wrote %s (%d bytes)\n", path, len(data))
	return nil
}
