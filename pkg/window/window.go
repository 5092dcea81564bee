package window

import (
	"math"

	"github.com/matzehuels/vtable/pkg/errors"
)

// Item describes one materialized item.
type Item struct {
	Index int     `json:"index"`
	Start float64 `json:"start"` // offset from the top of the virtual content
	Size  float64 `json:"size"`
}

// End returns Start+Size.
func (it Item) End() float64 { return it.Start + it.Size }

// Window is the result of one computation. It is a snapshot: nothing in it is
// updated after it is returned.
type Window struct {
	TotalExtent float64 `json:"totalExtent"`
	Scroll      float64 `json:"scroll"` // clamped offset the window was computed for
	Viewport    float64 `json:"viewport"`

	// First and Last bound the strictly visible items, [First, Last).
	First int `json:"first"`
	Last  int `json:"last"`

	// Start and End bound the materialized items including overscan, [Start, End).
	Start int `json:"start"`
	End   int `json:"end"`

	Items []Item `json:"items"`
}

// Len returns the number of materialized items.
func (w Window) Len() int { return len(w.Items) }

// Contains reports whether index is materialized.
func (w Window) Contains(index int) bool { return index >= w.Start && index < w.End }

// Visible reports whether index is inside the strictly visible range.
func (w Window) Visible(index int) bool { return index >= w.First && index < w.Last }

// Compute returns the window for count items sized by s, seen through a
// viewport of the given size scrolled to scroll, widened by overscan items on
// each side.
//
// Compute builds a fresh offset table on every call. Use a [Cache] when
// recomputing for the same list repeatedly.
func Compute(count int, s Sizer, viewport, scroll float64, overscan int) (Window, error) {
	if err := validate(count, viewport, overscan); err != nil {
		return Window{}, err
	}
	t, err := BuildTable(count, s)
	if err != nil {
		return Window{}, err
	}
	return t.Window(viewport, scroll, overscan)
}

// Window computes a window against an already built table.
func (t *Table) Window(viewport, scroll float64, overscan int) (Window, error) {
	if err := validate(t.count, viewport, overscan); err != nil {
		return Window{}, err
	}
	if t.count == 0 {
		return Window{Viewport: viewport, Items: []Item{}}, nil
	}

	total := t.Total()
	scroll = clampScroll(scroll, total, viewport)

	first := t.IndexAt(scroll)
	last := t.endIndex(scroll + viewport)
	start := max(0, first-overscan)
	end := min(t.count, last+overscan)

	items := make([]Item, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, Item{Index: i, Start: t.Offset(i), Size: t.Size(i)})
	}

	return Window{
		TotalExtent: total,
		Scroll:      scroll,
		Viewport:    viewport,
		First:       first,
		Last:        last,
		Start:       start,
		End:         end,
		Items:       items,
	}, nil
}

// MaxScroll returns the largest scroll offset that still fills the viewport.
func MaxScroll(total, viewport float64) float64 {
	return math.Max(0, total-viewport)
}

// ScrollToIndex returns the scroll offset that brings item index fully into
// view with the least movement from current. Items taller than the viewport
// are aligned to the top. Out-of-range indices leave current unchanged.
func ScrollToIndex(t *Table, index int, current, viewport float64) float64 {
	if index < 0 || index >= t.count {
		return current
	}
	current = clampScroll(current, t.Total(), viewport)

	top := t.Offset(index)
	bottom := top + t.Size(index)

	switch {
	case top < current || bottom-top >= viewport:
		current = top
	case bottom > current+viewport:
		current = bottom - viewport
	}
	return clampScroll(current, t.Total(), viewport)
}

func validate(count int, viewport float64, overscan int) error {
	if err := errors.ValidateCount(count); err != nil {
		return err
	}
	if err := errors.ValidateViewport(viewport); err != nil {
		return err
	}
	return errors.ValidateOverscan(overscan)
}

func clampScroll(scroll, total, viewport float64) float64 {
	if math.IsNaN(scroll) || scroll < 0 {
		return 0
	}
	return math.Min(scroll, MaxScroll(total, viewport))
}
