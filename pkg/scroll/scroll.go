// Package scroll owns live viewport state and turns every change into a fresh
// window snapshot.
//
// A [Controller] holds the scroll offset, the viewport size, the item count and
// the overscan for one list. Every mutation recomputes the window synchronously
// through a [window.Cache] before returning, so a renderer can paint the
// returned [Snapshot] straight away. Snapshots are numbered; when several are
// in flight only the one with the highest sequence number matters ([Latest]).
package scroll

import (
	"sync"

	"github.com/matzehuels/vtable/pkg/errors"
	"github.com/matzehuels/vtable/pkg/observability"
	"github.com/matzehuels/vtable/pkg/window"
)

// State is the viewport state fed to the engine.
type State struct {
	Offset   float64 `json:"offset"`
	Viewport float64 `json:"viewport"`
}

// Snapshot is one immutable recomputation result.
type Snapshot struct {
	Seq    uint64        `json:"seq"`
	State  State         `json:"state"`
	Count  int           `json:"count"`
	Window window.Window `json:"window"`
}

// Latest returns the snapshot with the highest sequence number.
// It returns the zero Snapshot when called with none.
func Latest(snaps ...Snapshot) Snapshot {
	var best Snapshot
	for _, s := range snaps {
		if s.Seq >= best.Seq {
			best = s
		}
	}
	return best
}

// Listener is called synchronously, on the mutating goroutine, with every new
// snapshot. Under concurrent mutation listeners may observe snapshots out of
// order and should keep the one with the highest Seq.
type Listener func(Snapshot)

// Controller is the scroll/resize event source for one list.
// It is safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	cache     *window.Cache
	count     int
	overscan  int
	state     State
	current   Snapshot
	listeners map[int]Listener
	nextID    int
}

// New returns a controller at offset 0. The initial snapshot is computed
// immediately, so invalid arguments fail here rather than on the first scroll.
func New(cache *window.Cache, count, overscan int, viewport float64) (*Controller, error) {
	if cache == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "window cache cannot be nil")
	}
	c := &Controller{
		cache:     cache,
		count:     count,
		overscan:  overscan,
		state:     State{Viewport: viewport},
		listeners: make(map[int]Listener),
	}
	snap, err := c.recompute(c.state, count, overscan)
	if err != nil {
		return nil, err
	}
	c.current = snap
	return c, nil
}

// Current returns the latest snapshot.
func (c *Controller) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Subscribe registers fn for future snapshots and returns a func that removes it.
func (c *Controller) Subscribe(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// ScrollTo moves to an absolute offset. Offsets outside the scrollable range
// are accepted and clamped by the engine.
func (c *Controller) ScrollTo(offset float64) (Snapshot, error) {
	return c.update(func(s *State, _, _ *int) { s.Offset = offset })
}

// ScrollBy moves relative to the effective (clamped) offset, so repeated
// overscroll does not accumulate beyond the ends.
func (c *Controller) ScrollBy(delta float64) (Snapshot, error) {
	return c.update(func(s *State, _, _ *int) { s.Offset = c.current.Window.Scroll + delta })
}

// PageDown scrolls forward by one viewport.
func (c *Controller) PageDown() (Snapshot, error) {
	return c.update(func(s *State, _, _ *int) { s.Offset = c.current.Window.Scroll + s.Viewport })
}

// PageUp scrolls back by one viewport.
func (c *Controller) PageUp() (Snapshot, error) {
	return c.update(func(s *State, _, _ *int) { s.Offset = c.current.Window.Scroll - s.Viewport })
}

// Home scrolls to the top.
func (c *Controller) Home() (Snapshot, error) {
	return c.update(func(s *State, _, _ *int) { s.Offset = 0 })
}

// End scrolls to the bottom.
func (c *Controller) End() (Snapshot, error) {
	return c.update(func(s *State, _, _ *int) {
		s.Offset = window.MaxScroll(c.current.Window.TotalExtent, s.Viewport)
	})
}

// Reveal scrolls the least amount needed to show item index in full.
// Out-of-range indices leave the offset unchanged.
func (c *Controller) Reveal(index int) (Snapshot, error) {
	return c.update(func(s *State, count, _ *int) {
		// A failing table build is reported by the recomputation that follows.
		if t, err := c.cache.Table(*count); err == nil {
			s.Offset = window.ScrollToIndex(t, index, c.current.Window.Scroll, s.Viewport)
		}
	})
}

// Resize changes the viewport size.
func (c *Controller) Resize(viewport float64) (Snapshot, error) {
	return c.update(func(s *State, _, _ *int) { s.Viewport = viewport })
}

// SetCount changes the item count, for example after the host filtered its
// data. The offset is kept and clamped against the new extent.
func (c *Controller) SetCount(n int) (Snapshot, error) {
	return c.update(func(s *State, count, _ *int) { *count = n })
}

// SetOverscan changes the overscan count.
func (c *Controller) SetOverscan(n int) (Snapshot, error) {
	return c.update(func(s *State, _, overscan *int) { *overscan = n })
}

// Refresh recomputes without changing state, after the bound sizer changed.
func (c *Controller) Refresh() (Snapshot, error) {
	return c.update(func(*State, *int, *int) {})
}

// update applies mutate to a copy of the state and commits it only if the
// recomputation succeeds: a rejected change leaves the controller untouched.
func (c *Controller) update(mutate func(s *State, count, overscan *int)) (Snapshot, error) {
	c.mu.Lock()
	state, count, overscan := c.state, c.count, c.overscan
	mutate(&state, &count, &overscan)

	snap, err := c.recompute(state, count, overscan)
	if err != nil {
		c.mu.Unlock()
		observability.Scroll().OnRejected(err)
		return c.Current(), err
	}
	snap.Seq = c.current.Seq + 1
	c.state, c.count, c.overscan = state, count, overscan
	c.current = snap

	listeners := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	observability.Scroll().OnRecompute(snap.Seq, snap.Window.Scroll, state.Viewport, snap.Window.Start, snap.Window.End)
	for _, fn := range listeners {
		fn(snap)
	}
	return snap, nil
}

func (c *Controller) recompute(state State, count, overscan int) (Snapshot, error) {
	w, err := c.cache.Compute(count, state.Viewport, state.Offset, overscan)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{State: state, Count: count, Window: w}, nil
}
