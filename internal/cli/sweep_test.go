package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/vtable/pkg/errors"
	vio "github.com/matzehuels/vtable/pkg/io"
	"github.com/matzehuels/vtable/pkg/window"
)

func TestSweepStops(t *testing.T) {
	tests := []struct {
		name      string
		maxScroll float64
		step      float64
		want      []float64
	}{
		{"exact multiple", 1800, 600, []float64{0, 600, 1200, 1800}},
		{"remainder", 4400, 600, []float64{0, 600, 1200, 1800, 2400, 3000, 3600, 4200, 4400}},
		{"nothing to scroll", 0, 600, []float64{0}},
		{"step larger than range", 100, 600, []float64{0, 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sweepStops(tt.maxScroll, tt.step)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("stops mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := sweepStops(100, 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("zero step error = %v", err)
	}
	if _, err := sweepStops(499400, 1e-9); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("tiny step error = %v", err)
	}
	if stops, err := sweepStops(maxSweepStops-1, 1); err != nil || len(stops) != maxSweepStops {
		t.Errorf("stops at limit = %d, %v", len(stops), err)
	}
}

func TestCheckWindow(t *testing.T) {
	o, err := window.NewOverrides(50)
	if err != nil {
		t.Fatal(err)
	}
	_ = o.Set(3, 400)
	tbl, err := window.BuildTable(200, o)
	if err != nil {
		t.Fatal(err)
	}

	for _, scroll := range []float64{0, 120, 149.5, 500, 9000} {
		w, err := tbl.Window(600, scroll, 4)
		if err != nil {
			t.Fatal(err)
		}
		if err := checkWindow(tbl, w); err != nil {
			t.Errorf("scroll %v: %v", scroll, err)
		}
	}

	w, _ := tbl.Window(600, 0, 4)
	w.Items[2].Start++
	if err := checkWindow(tbl, w); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("tampered start error = %v", err)
	}

	w, _ = tbl.Window(600, 0, 0)
	w.Last--
	if err := checkWindow(tbl, w); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("short visible range error = %v", err)
	}
}

func TestComputeFramesOrdered(t *testing.T) {
	d := testDataset(t, 1000)
	tbl, err := d.cache.Table(d.source.Len())
	if err != nil {
		t.Fatal(err)
	}
	stops, err := sweepStops(window.MaxScroll(tbl.Total(), d.cfg.Viewport), 37)
	if err != nil {
		t.Fatal(err)
	}

	frames, err := (&CLI{}).computeFrames(context.Background(), d, tbl, stops, sweepOpts{workers: 8, check: true, cells: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != len(stops) {
		t.Fatalf("frames = %d, want %d", len(frames), len(stops))
	}
	for i, f := range frames {
		if f.Seq != uint64(i+1) {
			t.Fatalf("frame %d seq = %d", i, f.Seq)
		}
		if f.Scroll != stops[i] {
			t.Errorf("frame %d scroll = %v, want %v", i, f.Scroll, stops[i])
		}
		if len(f.Rows) != len(f.Items) {
			t.Errorf("frame %d has %d rows for %d items", i, len(f.Rows), len(f.Items))
		}
	}
	if last := frames[len(frames)-1]; last.End != 1000 {
		t.Errorf("last frame end = %d, want 1000", last.End)
	}
}

func TestComputeFramesCancelled(t *testing.T) {
	d := testDataset(t, 1000)
	tbl, _ := d.cache.Table(d.source.Len())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&CLI{}).computeFrames(ctx, d, tbl, []float64{0, 600}, sweepOpts{workers: 1}, nil)
	if err == nil {
		t.Error("computeFrames should fail on a cancelled context")
	}
}

func TestSweepCommand(t *testing.T) {
	out, err := runCLI(t, "", "sweep", "--rows", "100", "--check")
	if err != nil {
		t.Fatal(err)
	}
	frames, err := vio.ReadFrames(strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	var starts []int
	for _, f := range frames {
		starts = append(starts, f.Start)
	}
	want := []int{0, 2, 14, 26, 38, 50, 62, 74, 78}
	if diff := cmp.Diff(want, starts); diff != "" {
		t.Errorf("frame starts mismatch (-want +got):\n%s", diff)
	}
}

func TestSweepCommandFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.jsonl")
	if _, err := runCLI(t, "", "sweep", "--rows", "100", "--step", "2500", "--cells", "-o", path); err != nil {
		t.Fatal(err)
	}
	f, err := vio.ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Seq != 1 || len(f.Rows) != f.Len() {
		t.Errorf("first frame seq %d rows %d items %d", f.Seq, len(f.Rows), f.Len())
	}
}
