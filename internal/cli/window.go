package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vtable/pkg/errors"
	vio "github.com/matzehuels/vtable/pkg/io"
	"github.com/matzehuels/vtable/pkg/window"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

type windowOpts struct {
	table  tableFlags
	scroll float64
	format string
	output string
	cells  bool
}

// windowCommand creates the window command, which prints the rows
// materialized at one scroll offset.
func (c *CLI) windowCommand() *cobra.Command {
	var opts windowOpts

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Print the rows materialized at one scroll offset",
		Long: `Compute a single window and print it.

The table format lists every materialized row with its index, start offset
and size, followed by the visible and overscan ranges. The JSON format is the
same document the HTTP API returns.`,
		Example: `  # Top of the default 10,000-row table
  vtable window

  # Middle of the table, as JSON with formatted cells
  vtable window --scroll 5000 --format json

  # A tall row changes every offset after it
  vtable window --scroll 5000 --size 95=200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWindow(cmd, opts)
		},
	}

	addTableFlags(cmd, &opts.table)
	cmd.Flags().Float64VarP(&opts.scroll, "scroll", "s", 0, "scroll offset")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "output format: table or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write JSON to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.cells, "cells", true, "include formatted row cells")

	return cmd
}

func (c *CLI) runWindow(cmd *cobra.Command, opts windowOpts) error {
	if err := errors.ValidateFormat(opts.format, formatTable, formatJSON); err != nil {
		return err
	}
	format := strings.ToLower(opts.format)
	if opts.output != "" && format != formatJSON {
		return errors.New(errors.ErrCodeInvalidInput, "--output requires --format json")
	}

	d, err := c.newDataset(cmd, &opts.table)
	if err != nil {
		return err
	}
	w, err := d.compute(opts.scroll)
	if err != nil {
		return fmt.Errorf("compute window: %w", err)
	}

	if format == formatTable {
		return writeWindowTable(cmd.OutOrStdout(), d, w, opts.cells)
	}

	var cells vio.CellFunc
	if opts.cells {
		cells = d.cellMap
	}
	frame, err := vio.NewFrame(w, cells)
	if err != nil {
		return err
	}
	if opts.output != "" {
		if err := vio.ExportJSON(frame, opts.output); err != nil {
			return err
		}
		printSuccess("Window [%d, %d) written", w.Start, w.End)
		printFile(opts.output)
		return nil
	}
	return vio.WriteJSON(frame, cmd.OutOrStdout())
}

// writeWindowTable prints w as a table followed by its ranges. Overscan rows
// are dimmed.
func writeWindowTable(out io.Writer, d *dataset, w window.Window, withCells bool) error {
	headers := []string{"#", "start", "size"}
	if withCells {
		for _, col := range d.columns {
			headers = append(headers, col.Label)
		}
	}

	rows := make([][]string, 0, len(w.Items))
	for _, it := range w.Items {
		row := []string{fmt.Sprint(it.Index), formatUnits(it.Start), formatUnits(it.Size)}
		if withCells {
			cells, err := d.cells(it.Index)
			if err != nil {
				return err
			}
			row = append(row, cells...)
		}
		rows = append(rows, row)
	}

	style := func(row int) lipgloss.Style {
		if !w.Visible(w.Start + row) {
			return styleOverscan
		}
		return stripes(row)
	}

	fmt.Fprintln(out, renderTable(headers, rows, style, 0))
	fmt.Fprintln(out, summaryLines(w, d.source.Len()))
	return nil
}

// summaryLines renders the extent and ranges of w below a table.
func summaryLines(w window.Window, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", StyleDim.Render("total extent "), StyleNumber.Render(formatUnits(w.TotalExtent)))
	fmt.Fprintf(&b, "%s %s\n", StyleDim.Render("scroll       "), StyleNumber.Render(formatUnits(w.Scroll)))
	fmt.Fprintf(&b, "%s [%d, %d)\n", StyleDim.Render("visible      "), w.First, w.Last)
	fmt.Fprintf(&b, "%s [%d, %d)\n", StyleDim.Render("rendered     "), w.Start, w.End)
	b.WriteString(StyleDim.Render(footer(w, count)))
	return b.String()
}
