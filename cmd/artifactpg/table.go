package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/youssefsiam38/artifactpg/download"
	"github.com/youssefsiam38/artifactpg/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// viewFlags are the view state flags shared by table and export.
type viewFlags struct {
	title    string
	filter   string
	sort     string
	dir      string
	page     int
	pageSize int
}

func (f *viewFlags) register(cmd *cobra.Command, paging bool) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title override (used for export file names)")
	cmd.Flags().StringVarP(&f.filter, "filter", "f", "", "Case-insensitive substring matched against every value")
	cmd.Flags().StringVarP(&f.sort, "sort", "s", "", "Column key to sort by")
	cmd.Flags().StringVar(&f.dir, "dir", "asc", "Sort direction (asc, desc)")
	if paging {
		cmd.Flags().IntVarP(&f.page, "page", "p", 1, "Page number (clamped to the available pages)")
		cmd.Flags().IntVar(&f.pageSize, "page-size", table.DefaultPageSize, "Rows per page")
	}
}

// view builds the table view, applying filter, then sort, then page.
func (f *viewFlags) view(p *table.Payload) *table.View {
	if f.title != "" {
		p.Title = f.title
	}
	v := p.View(table.WithPageSize(f.pageSize))
	v.SetFilter(f.filter)
	if f.sort != "" {
		v.SetSort(table.SortState{Column: f.sort, Direction: table.ParseDirection(f.dir)})
	}
	if f.page > 1 {
		v.SetPage(f.page)
	}
	return v
}

func newTableCmd(_ *app) *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "table FILE",
		Short: "Render a page of a JSON table in the terminal",
		Long: `Render a page of a JSON table in the terminal.

FILE holds either a table payload ({"title", "data", "columns"}) or a bare
array of row objects. Use - to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPayload(cmd, args[0])
			if err != nil {
				return err
			}
			v := flags.view(p)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.UnsetPadding().Render(v.Title()))
			fmt.Fprintln(out, renderPage(v))
			fmt.Fprintln(out, mutedStyle.Render(pageFooter(v)))
			return nil
		},
	}
	flags.register(cmd, true)
	return cmd
}

// renderPage draws the current page as a bordered terminal table. The sorted
// column carries an arrow.
func renderPage(v *table.View) string {
	cols := v.Columns()
	sort := v.Sort()

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Title()
		if sort.Active() && sort.Column == c.Key {
			if sort.Direction == table.Descending {
				headers[i] += " ▼"
			} else {
				headers[i] += " ▲"
			}
		}
	}

	page := v.Page()
	rows := make([][]string, len(page.Rows))
	for i, r := range page.Rows {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = v.Display(r, c)
		}
		rows[i] = cells
	}

	t := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			if isNumericColumn(cols[col]) {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})
	return t.String()
}

func isNumericColumn(c table.Column) bool {
	return c.Type == table.ColumnNumber || c.Type == table.ColumnCurrency
}

func pageFooter(v *table.View) string {
	p := v.Page()
	return fmt.Sprintf("%s · page %d of %d", v.Summary(), p.Index, max(1, p.TotalPages))
}

func newExportCmd(_ *app) *cobra.Command {
	var (
		flags  viewFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export the filtered and sorted rows of a JSON table",
		Long: `Export the filtered and sorted rows of a JSON table as CSV, JSON or Parquet.

Without --output the export is written to standard output. When --output
names a directory, the file is written there under the table's title.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPayload(cmd, args[0])
			if err != nil {
				return err
			}
			f, err := exportView(flags.view(p), format)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(f.Data)
				return err
			}

			path := output
			if info, err := os.Stat(output); err == nil && info.IsDir() {
				path = filepath.Join(output, f.Name)
			}
			if err := os.WriteFile(path, f.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", path, len(f.Data))
			return nil
		},
	}
	flags.register(cmd, false)
	cmd.Flags().StringVar(&format, "format", "csv", "Export format (csv, json, parquet)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory (default: stdout)")
	return cmd
}

func exportView(v *table.View, format string) (download.File, error) {
	switch strings.ToLower(format) {
	case "csv":
		return v.ExportCSV(), nil
	case "json":
		return v.ExportJSON()
	case "parquet":
		return v.ExportParquet()
	}
	return download.File{}, fmt.Errorf("unsupported export format %q (valid: csv, json, parquet)", format)
}

// loadPayload reads a table payload, or a bare row array, from path.
func loadPayload(cmd *cobra.Command, path string) (*table.Payload, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		data, err = json.Marshal(map[string]json.RawMessage{"data": data})
		if err != nil {
			return nil, err
		}
	}
	p, err := table.ParsePayload(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return p, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
