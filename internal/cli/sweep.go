package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/vtable/pkg/errors"
	vio "github.com/matzehuels/vtable/pkg/io"
	"github.com/matzehuels/vtable/pkg/window"
)

// maxSweepStops bounds the frames one sweep may hold in memory.
const maxSweepStops = 1_000_000

type sweepOpts struct {
	table   tableFlags
	step    float64
	workers int
	output  string
	cells   bool
	check   bool
}

// sweepCommand creates the sweep command, which computes the window at
// regular offsets across the whole table.
func (c *CLI) sweepCommand() *cobra.Command {
	var opts sweepOpts

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Compute windows across the whole table as JSON lines",
		Long: `Scroll from the top to the bottom of the table in fixed steps, computing
the window at every stop in parallel, and write one JSON frame per line in
scroll order. The last stop is always the bottom of the table.

With --check every frame is verified: items are contiguous, start at their
prefix-sum offsets and cover the viewport.`,
		Example: `  # One frame per page
  vtable sweep -o frames.jsonl

  # Fine-grained sweep with verification
  vtable sweep --step 7 --check --cells=false > /dev/null`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSweep(cmd, opts)
		},
	}

	addTableFlags(cmd, &opts.table)
	cmd.Flags().Float64Var(&opts.step, "step", 0, "distance between stops (default: one viewport)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", runtime.NumCPU(), "parallel workers")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.cells, "cells", false, "include formatted row cells")
	cmd.Flags().BoolVar(&opts.check, "check", false, "verify every frame")

	return cmd
}

func (c *CLI) runSweep(cmd *cobra.Command, opts sweepOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	d, err := c.newDataset(cmd, &opts.table)
	if err != nil {
		return err
	}
	t, err := d.cache.Table(d.source.Len())
	if err != nil {
		return err
	}

	step := opts.step
	if step == 0 {
		step = d.cfg.Viewport
	}
	stops, err := sweepStops(window.MaxScroll(t.Total(), d.cfg.Viewport), step)
	if err != nil {
		return err
	}
	logger.Debug("sweep", "stops", len(stops), "step", step, "workers", opts.workers)

	prog := newProgress(logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Computing %d windows", len(stops)))
	spinner.Start()

	frames, err := c.computeFrames(ctx, d, t, stops, opts, spinner)
	if err != nil {
		spinner.Stop()
		return err
	}
	spinner.Stop()

	out := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.output, err)
		}
		defer f.Close()
		out = f
	}
	if err := writeFrames(out, frames); err != nil {
		return err
	}

	if opts.output != "" {
		printSuccess("Computed %d windows", len(frames))
		printFile(opts.output)
		return nil
	}
	prog.done(fmt.Sprintf("Computed %d windows", len(frames)))
	return nil
}

// computeFrames computes one frame per stop on a bounded worker pool.
// Frames are returned in stop order with Seq numbered from 1.
func (c *CLI) computeFrames(ctx context.Context, d *dataset, t *window.Table, stops []float64, opts sweepOpts, spinner *Spinner) ([]vio.Frame, error) {
	frames := make([]vio.Frame, len(stops))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.workers))
	for i, pos := range stops {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w, err := d.compute(pos)
			if err != nil {
				return fmt.Errorf("scroll %v: %w", pos, err)
			}
			if opts.check {
				if err := checkWindow(t, w); err != nil {
					return fmt.Errorf("scroll %v: %w", pos, err)
				}
			}
			var cells vio.CellFunc
			if opts.cells {
				cells = d.cellMap
			}
			f, err := vio.NewFrame(w, cells)
			if err != nil {
				return err
			}
			f.Seq = uint64(i + 1)
			frames[i] = f

			if n := done.Add(1); n%64 == 0 && spinner != nil {
				spinner.SetMessage("Computing windows %d/%d", n, len(stops))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}

func writeFrames(w io.Writer, frames []vio.Frame) error {
	lw := vio.NewLineWriter(w)
	for _, f := range frames {
		if err := lw.Write(f); err != nil {
			return err
		}
	}
	return nil
}

// sweepStops returns 0, step, 2*step, ... up to and including maxScroll.
func sweepStops(maxScroll, step float64) ([]float64, error) {
	if math.IsNaN(step) || math.IsInf(step, 0) || step <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "step must be > 0, got %v", step)
	}
	if stops := math.Floor(maxScroll/step) + 1; stops > maxSweepStops {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"step %v gives %.0f stops, more than %d", step, stops, maxSweepStops)
	}
	n := int(math.Floor(maxScroll/step)) + 1
	stops := make([]float64, 0, n+1)
	for i := range n {
		stops = append(stops, float64(i)*step)
	}
	if last := stops[len(stops)-1]; last < maxScroll {
		stops = append(stops, maxScroll)
	}
	return stops, nil
}

// checkWindow verifies the structural properties of w against t.
func checkWindow(t *window.Table, w window.Window) error {
	if w.End-w.Start != len(w.Items) {
		return errors.New(errors.ErrCodeInternal, "range [%d,%d) holds %d items", w.Start, w.End, len(w.Items))
	}
	for i, it := range w.Items {
		if it.Index != w.Start+i {
			return errors.New(errors.ErrCodeInternal, "item %d has index %d, want %d", i, it.Index, w.Start+i)
		}
		if it.Start != t.Offset(it.Index) {
			return errors.New(errors.ErrCodeInternal, "item %d starts at %v, want %v", it.Index, it.Start, t.Offset(it.Index))
		}
		if it.Size <= 0 {
			return errors.New(errors.ErrCodeInternal, "item %d has size %v", it.Index, it.Size)
		}
	}
	if t.Len() == 0 {
		return nil
	}
	// The first item at or after the viewport bottom, and the last one
	// ending at or before its top, must not lie inside the visible range.
	top, bottom := w.Scroll, w.Scroll+w.Viewport
	if w.First > 0 && t.Offset(w.First) > top {
		return errors.New(errors.ErrCodeInternal, "item %d overlaps the viewport but is not visible", w.First-1)
	}
	if w.Last < t.Len() && t.Offset(w.Last) < bottom {
		return errors.New(errors.ErrCodeInternal, "item %d overlaps the viewport but is not visible", w.Last)
	}
	return nil
}
