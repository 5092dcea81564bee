package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/vtable/pkg/columns"
	"github.com/matzehuels/vtable/pkg/errors"
	vio "github.com/matzehuels/vtable/pkg/io"
	"github.com/matzehuels/vtable/pkg/observability"
	"github.com/matzehuels/vtable/pkg/records"
	"github.com/matzehuels/vtable/pkg/window"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := New(Options{
		Source:   records.Generate(10000, 1),
		Sizer:    window.Fixed(50),
		Viewport: 600,
		Overscan: 10,
		Logger:   log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("GET %s Content-Type = %q", path, ct)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestNewValidation(t *testing.T) {
	src := records.Generate(1, 1)
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"nil source", Options{Sizer: window.Fixed(1), Viewport: 1}, errors.ErrCodeInvalidInput},
		{"nil sizer", Options{Source: src, Viewport: 1}, errors.ErrCodeInvalidInput},
		{"zero viewport", Options{Source: src, Sizer: window.Fixed(1)}, errors.ErrCodeInvalidViewport},
		{"negative overscan", Options{Source: src, Sizer: window.Fixed(1), Viewport: 1, Overscan: -1}, errors.ErrCodeInvalidOverscan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); !errors.Is(err, tt.code) {
				t.Errorf("New() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]string
	if status := get(t, ts, "/healthz", &body); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestColumns(t *testing.T) {
	ts := newTestServer(t)
	var cols []columns.Column
	if status := get(t, ts, "/api/columns", &cols); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if diff := cmp.Diff(columns.Default(), cols); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestWindowScenarios(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		query      string
		start, end int
	}{
		{"top with defaults", "", 0, 22},
		{"middle", "?scroll=5000", 90, 122},
		{"past end clamps", "?scroll=600000", 9978, 10000},
		{"explicit params", "?scroll=5000&viewport=600&overscan=0", 100, 112},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f vio.Frame
			if status := get(t, ts, "/api/window"+tt.query, &f); status != http.StatusOK {
				t.Fatalf("status = %d", status)
			}
			if f.Start != tt.start || f.End != tt.end {
				t.Errorf("range = [%d,%d), want [%d,%d)", f.Start, f.End, tt.start, tt.end)
			}
			if f.TotalExtent != 500000 {
				t.Errorf("totalExtent = %v, want 500000", f.TotalExtent)
			}
			if len(f.Rows) != len(f.Items) {
				t.Errorf("rows = %d, items = %d", len(f.Rows), len(f.Items))
			}
		})
	}
}

func TestWindowCells(t *testing.T) {
	ts := newTestServer(t)

	var f vio.Frame
	get(t, ts, "/api/window?scroll=5000", &f)
	if got := f.Rows[0]; got.Index != 90 || got.Cells["id"] != "91" || got.Cells["email"] != "user91@email.com" {
		t.Errorf("first row = %+v", got)
	}

	var bare vio.Frame
	get(t, ts, "/api/window?cells=false", &bare)
	if bare.Rows != nil {
		t.Errorf("cells=false returned %d rows", len(bare.Rows))
	}
}

func TestWindowErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		query string
		code  errors.Code
	}{
		{"?scroll=abc", errors.ErrCodeInvalidInput},
		{"?viewport=0", errors.ErrCodeInvalidViewport},
		{"?viewport=-5", errors.ErrCodeInvalidViewport},
		{"?overscan=-1", errors.ErrCodeInvalidOverscan},
		{"?overscan=1.5", errors.ErrCodeInvalidInput},
		{"?cells=maybe", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var body errorBody
			if status := get(t, ts, "/api/window"+tt.query, &body); status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
			if body.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Error.Code, tt.code)
			}
			if body.Error.Message == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestRow(t *testing.T) {
	ts := newTestServer(t)

	var row vio.Row
	if status := get(t, ts, "/api/rows/9999", &row); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if row.Index != 9999 || row.Cells["id"] != "10000" {
		t.Errorf("row = %+v", row)
	}

	var body errorBody
	if status := get(t, ts, "/api/rows/10000", &body); status != http.StatusNotFound {
		t.Errorf("out of range status = %d, want 404", status)
	}
	if status := get(t, ts, "/api/rows/x", &body); status != http.StatusBadRequest {
		t.Errorf("non-integer status = %d, want 400", status)
	}
}

func TestReveal(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		path string
		want float64
	}{
		{"/api/reveal/50", 1950},
		{"/api/reveal/50?scroll=2000", 2000},
		{"/api/reveal/10?scroll=1000", 500},
		{"/api/reveal/9999?viewport=600", 499400},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var resp revealResponse
			if status := get(t, ts, tt.path, &resp); status != http.StatusOK {
				t.Fatalf("status = %d", status)
			}
			if resp.Scroll != tt.want {
				t.Errorf("scroll = %v, want %v", resp.Scroll, tt.want)
			}
		})
	}

	var body errorBody
	if status := get(t, ts, "/api/reveal/3?viewport=0", &body); status != http.StatusBadRequest {
		t.Errorf("zero viewport status = %d, want 400", status)
	}
}

func TestNotFoundRoute(t *testing.T) {
	ts := newTestServer(t)
	var body errorBody
	if status := get(t, ts, "/api/nope", &body); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if body.Error.Code != errors.ErrCodeNotFound {
		t.Errorf("code = %s", body.Error.Code)
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	get(t, ts, "/healthz", nil)
	get(t, ts, "/api/window?viewport=0", nil)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if diff := cmp.Diff([]int{http.StatusOK, http.StatusBadRequest}, hooks.statuses); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestRunShutdown(t *testing.T) {
	s, err := New(Options{
		Source:   records.Generate(10, 1),
		Sizer:    window.Fixed(1),
		Viewport: 5,
		Logger:   log.New(io.Discard),
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error after cancel: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
