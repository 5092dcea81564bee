package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	vio "github.com/matzehuels/vtable/pkg/io"
	"github.com/matzehuels/vtable/pkg/scroll"
)

func newTestBrowse(t *testing.T, rows int) browseModel {
	t.Helper()
	d := testDataset(t, rows)
	ctrl, err := scroll.New(d.cache, d.source.Len(), d.cfg.Overscan, d.cfg.Viewport)
	if err != nil {
		t.Fatal(err)
	}
	m := newBrowseModel(d, ctrl)
	// 12 body lines: a 600-unit viewport of 50-unit rows
	return update(t, m, tea.WindowSizeMsg{Width: 160, Height: 12 + browseChrome})
}

func update(t *testing.T, m browseModel, msg tea.Msg) browseModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(browseModel)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowseResize(t *testing.T) {
	m := newTestBrowse(t, 10000)
	if m.snap.Window.Viewport != 600 {
		t.Errorf("viewport = %v, want 600", m.snap.Window.Viewport)
	}

	m = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 20 + browseChrome})
	if m.snap.Window.Viewport != 1000 || m.lines != 20 {
		t.Errorf("after resize viewport = %v lines = %d", m.snap.Window.Viewport, m.lines)
	}
}

func TestBrowseCursorReveals(t *testing.T) {
	m := newTestBrowse(t, 10000)
	for range 12 {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.cursor != 12 {
		t.Fatalf("cursor = %d, want 12", m.cursor)
	}
	if m.snap.Window.Scroll != 50 {
		t.Errorf("scroll = %v, want 50 (row 12 revealed at the bottom)", m.snap.Window.Scroll)
	}

	m = update(t, m, keyRunes("k"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 10 || m.snap.Window.Scroll != 50 {
		t.Errorf("cursor %d scroll %v, want 10 and 50", m.cursor, m.snap.Window.Scroll)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 9 || m.snap.Window.Scroll != 50 {
		t.Errorf("cursor %d scroll %v, want 9 and 50", m.cursor, m.snap.Window.Scroll)
	}
}

func TestBrowseHomeEnd(t *testing.T) {
	m := newTestBrowse(t, 10000)

	m = update(t, m, keyRunes("G"))
	if m.cursor != 9999 || m.snap.Window.Scroll != 499400 {
		t.Errorf("end: cursor %d scroll %v", m.cursor, m.snap.Window.Scroll)
	}
	if !m.snap.Window.Contains(9999) {
		t.Error("end: last row not materialized")
	}

	m = update(t, m, keyRunes("g"))
	if m.cursor != 0 || m.snap.Window.Scroll != 0 {
		t.Errorf("home: cursor %d scroll %v", m.cursor, m.snap.Window.Scroll)
	}
}

func TestBrowsePaging(t *testing.T) {
	m := newTestBrowse(t, 10000)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	if m.snap.Window.Scroll != 600 || m.cursor != 12 {
		t.Errorf("page down: scroll %v cursor %d, want 600 and 12", m.snap.Window.Scroll, m.cursor)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	if m.snap.Window.Scroll != 0 || m.cursor != 0 {
		t.Errorf("page up: scroll %v cursor %d, want 0 and 0", m.snap.Window.Scroll, m.cursor)
	}
}

func TestBrowseMouseWheel(t *testing.T) {
	m := newTestBrowse(t, 10000)

	m = update(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	if m.snap.Window.Scroll != 150 {
		t.Errorf("scroll = %v, want 150", m.snap.Window.Scroll)
	}
	if m.cursor != 3 {
		t.Errorf("cursor = %d, want 3 (pulled into view)", m.cursor)
	}

	m = update(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	m = update(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if m.snap.Window.Scroll != 0 {
		t.Errorf("overscrolled wheel-up should clamp to 0, got %v", m.snap.Window.Scroll)
	}
}

func TestBrowseSeqIncreases(t *testing.T) {
	m := newTestBrowse(t, 10000)
	prev := m.snap.Seq
	for _, msg := range []tea.Msg{tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyPgDown}, keyRunes("G")} {
		m = update(t, m, msg)
		if m.snap.Seq <= prev {
			t.Errorf("seq %d did not increase past %d", m.snap.Seq, prev)
		}
		prev = m.snap.Seq
	}
}

func TestBrowseView(t *testing.T) {
	m := newTestBrowse(t, 10000)
	view := m.View()

	for _, want := range []string{"vtable", "10000 rows", "Nome", "João Silva", "showing 22 of 10000 rows", "offset 0/499400"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "user13@email.com") {
		t.Error("view should only draw the 12 visible rows")
	}
}

func TestBrowseEmpty(t *testing.T) {
	m := newTestBrowse(t, 0)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = update(t, m, keyRunes("G"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d on an empty table", m.cursor)
	}
	if !strings.Contains(m.View(), "showing 0 of 0 rows") {
		t.Error("empty view should report zero rows")
	}
}

func TestBrowseQuit(t *testing.T) {
	m := newTestBrowse(t, 10)
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestTraceListener(t *testing.T) {
	d := testDataset(t, 1000)
	ctrl, err := scroll.New(d.cache, d.source.Len(), d.cfg.Overscan, d.cfg.Viewport)
	if err != nil {
		t.Fatal(err)
	}

	var trace, logs bytes.Buffer
	c := New(&logs, LogInfo)
	unsubscribe := ctrl.Subscribe(traceListener(vio.NewLineWriter(&trace), c))
	if _, err := ctrl.ScrollTo(5000); err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.PageDown(); err != nil {
		t.Fatal(err)
	}
	unsubscribe()

	frames, err := vio.ReadFrames(&trace)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	if frames[0].Seq != 1 || frames[1].Seq != 2 {
		t.Errorf("seqs = %d, %d", frames[0].Seq, frames[1].Seq)
	}
	if frames[0].Scroll != 5000 || frames[1].Scroll != 5600 {
		t.Errorf("scrolls = %v, %v", frames[0].Scroll, frames[1].Scroll)
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected log output: %s", logs.String())
	}

	ctrl.Subscribe(traceListener(vio.NewLineWriter(failingWriter{}), c))
	if _, err := ctrl.Home(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "trace") {
		t.Errorf("write failure not logged: %q", logs.String())
	}
}
