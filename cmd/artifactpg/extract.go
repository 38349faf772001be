package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/extract"
)

// ErrBlocksFailed is returned by extract when any block failed to parse.
var ErrBlocksFailed = errors.New("some visualization blocks failed to parse")

func newExtractCmd(_ *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "List the chart, table and mermaid blocks in a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			arts, errs := extract.Parse(string(content))

			out := cmd.OutOrStdout()
			if asJSON {
				if arts == nil {
					arts = []*artifact.Artifact{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(arts); err != nil {
					return err
				}
			} else {
				rows := make([][]string, len(arts))
				for i, a := range arts {
					rows[i] = []string{strconv.Itoa(i + 1), string(a.Kind), a.Kind.Component(), a.Title, a.Summary()}
				}
				t := lgtable.New().
					Border(lipgloss.NormalBorder()).
					BorderStyle(borderStyle).
					Headers("#", "Kind", "Component", "Title", "Summary").
					Rows(rows...).
					StyleFunc(func(row, col int) lipgloss.Style {
						if row == lgtable.HeaderRow {
							return headerStyle
						}
						return cellStyle
					})
				fmt.Fprintln(out, t.String())
				fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d visualization(s)", len(arts))))
			}

			for _, e := range errs {
				fmt.Fprintln(cmd.ErrOrStderr(), "skipped:", e)
			}
			if len(errs) > 0 {
				return fmt.Errorf("%w: %d of %d", ErrBlocksFailed, len(errs), len(arts)+len(errs))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the parsed artifacts as JSON")
	return cmd
}
