package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	vio "github.com/matzehuels/vtable/pkg/io"
	"github.com/matzehuels/vtable/pkg/scroll"
	"github.com/matzehuels/vtable/pkg/window"
)

// browseChrome is the number of terminal lines around the table body:
// title, table borders, header and its rule, status and help.
const browseChrome = 7

// wheelRows is how many rows one mouse wheel notch scrolls.
const wheelRows = 3

type browseOpts struct {
	table tableFlags
	trace string
}

// browseCommand creates the browse command, an interactive terminal view
// of the table driven by the scroll controller.
func (c *CLI) browseCommand() *cobra.Command {
	var opts browseOpts

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Scroll through the table interactively",
		Long: `Open the table in the terminal. Each terminal line shows one row; the
viewport is as many rows as fit on screen. Only the rows in the current
window are formatted.

With --trace every window the controller produces is appended to a JSON
lines file, numbered by sequence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd, opts)
		},
	}

	addTableFlags(cmd, &opts.table)
	cmd.Flags().StringVar(&opts.trace, "trace", "", "record every window to this JSON lines file")

	return cmd
}

func (c *CLI) runBrowse(cmd *cobra.Command, opts browseOpts) error {
	d, err := c.newDataset(cmd, &opts.table)
	if err != nil {
		return err
	}
	ctrl, err := scroll.New(d.cache, d.source.Len(), d.cfg.Overscan, d.cfg.Viewport)
	if err != nil {
		return err
	}

	if opts.trace != "" {
		f, err := os.Create(opts.trace)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.trace, err)
		}
		defer f.Close()
		unsubscribe := ctrl.Subscribe(traceListener(vio.NewLineWriter(f), c))
		defer unsubscribe()
	}

	p := tea.NewProgram(newBrowseModel(d, ctrl),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	if opts.trace != "" {
		printFile(opts.trace)
	}
	return nil
}

// traceListener writes each snapshot as a frame without cells.
func traceListener(lw *vio.LineWriter, c *CLI) scroll.Listener {
	return func(s scroll.Snapshot) {
		f, err := vio.NewFrame(s.Window, nil)
		if err != nil {
			c.Logger.Warn("trace", "seq", s.Seq, "err", err)
			return
		}
		f.Seq = s.Seq
		if err := lw.Write(f); err != nil {
			c.Logger.Warn("trace", "err", err)
		}
	}
}

// =============================================================================
// browseModel
// =============================================================================

// browseModel renders the current window of a scroll controller. The cursor
// is an absolute row index; moving it reveals the row.
type browseModel struct {
	data   *dataset
	ctrl   *scroll.Controller
	snap   scroll.Snapshot
	cursor int
	keys   browseKeyMap
	help   help.Model
	width  int
	lines  int // table body lines
	err    error
}

func newBrowseModel(d *dataset, ctrl *scroll.Controller) browseModel {
	return browseModel{
		data:  d,
		ctrl:  ctrl,
		snap:  ctrl.Current(),
		keys:  defaultBrowseKeyMap(),
		help:  help.New(),
		lines: max(1, int(d.cfg.Viewport/d.cfg.RowHeight)),
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.lines = max(1, msg.Height-browseChrome)
		m.apply(m.ctrl.Resize(float64(m.lines) * m.data.cfg.RowHeight))
		m.cursor = m.clampToVisible(m.cursor)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(m.cursor - 1)
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(m.cursor + 1)
		case key.Matches(msg, m.keys.PageUp):
			m.apply(m.ctrl.PageUp())
			m.moveCursor(m.cursor - m.page())
		case key.Matches(msg, m.keys.PageDown):
			m.apply(m.ctrl.PageDown())
			m.moveCursor(m.cursor + m.page())
		case key.Matches(msg, m.keys.Home):
			m.apply(m.ctrl.Home())
			m.cursor = 0
		case key.Matches(msg, m.keys.End):
			m.apply(m.ctrl.End())
			m.cursor = max(0, m.snap.Count-1)
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			break
		}
		delta := wheelRows * m.data.cfg.RowHeight
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.apply(m.ctrl.ScrollBy(-delta))
		case tea.MouseButtonWheelDown:
			m.apply(m.ctrl.ScrollBy(delta))
		default:
			return m, nil
		}
		m.cursor = m.clampToVisible(m.cursor)
	}
	return m, nil
}

// apply keeps the newer snapshot and remembers the last rejection.
func (m *browseModel) apply(s scroll.Snapshot, err error) {
	m.snap = scroll.Latest(m.snap, s)
	m.err = err
}

func (m *browseModel) moveCursor(index int) {
	if m.snap.Count == 0 {
		return
	}
	m.cursor = min(max(index, 0), m.snap.Count-1)
	m.apply(m.ctrl.Reveal(m.cursor))
}

// page is the number of fully or partly visible rows.
func (m browseModel) page() int {
	return max(1, m.snap.Window.Last-m.snap.Window.First)
}

// clampToVisible pulls index into the visible range after the window moved
// under it.
func (m browseModel) clampToVisible(index int) int {
	w := m.snap.Window
	if w.Last <= w.First {
		return 0
	}
	return min(max(index, w.First), w.Last-1)
}

func (m browseModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("%s %s", StyleTitle.Render(appName), StyleDim.Render(fmt.Sprintf("· %d rows", m.snap.Count)))
	b.WriteString(title)
	b.WriteString("\n")

	headers := make([]string, len(m.data.columns))
	for i, col := range m.data.columns {
		headers[i] = col.Label
	}
	rows, indices := m.visibleRows()
	style := func(row int) lipgloss.Style {
		if row >= len(indices) {
			return styleCell
		}
		if indices[row] == m.cursor {
			return styleSelected
		}
		return stripes(indices[row])
	}
	b.WriteString(renderTable(headers, rows, style, m.width))
	b.WriteString("\n")

	status := footer(m.snap.Window, m.snap.Count) +
		fmt.Sprintf(" · offset %s/%s", formatUnits(m.snap.Window.Scroll), formatUnits(window.MaxScroll(m.snap.Window.TotalExtent, m.snap.Window.Viewport)))
	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError + " " + m.err.Error()))
	} else {
		b.WriteString(StyleDim.Render(status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// visibleRows formats the visible part of the window, at most one screen.
// Overscan rows are materialized by the window but not drawn.
func (m browseModel) visibleRows() ([][]string, []int) {
	var rows [][]string
	var indices []int
	for _, it := range m.snap.Window.Items {
		if !m.snap.Window.Visible(it.Index) {
			continue
		}
		if len(rows) == m.lines {
			break
		}
		cells, err := m.data.cells(it.Index)
		if err != nil {
			cells = []string{err.Error()}
		}
		rows = append(rows, cells)
		indices = append(indices, it.Index)
	}
	return rows, indices
}
