// Package window computes which items of a long, ordered list have to be
// materialized for a scrollable viewport.
//
// Given an item count, a [Sizer], a viewport size, a scroll offset and an
// overscan count, [Compute] returns a [Window]: the total scrollable extent,
// the visible index range, and one [Item] descriptor (index, start, size) for
// every index a renderer should draw. Nothing outside the returned items needs
// to exist.
//
// # Offsets
//
// Item starts are a prefix sum over sizes: offset(0) is 0 and
// offset(i+1) = offset(i) + size(i). A [Table] holds that prefix sum and answers
// position lookups with a binary search, so a lookup costs O(log n) no matter
// how far the list has been scrolled. Sizers that report a single uniform size
// ([Fixed], or [Overrides] with nothing overridden) skip the table entirely and
// use arithmetic instead.
//
// # Ranges
//
// Ranges are half-open. An item whose end coincides with the scroll offset is
// not visible; an item whose start coincides with the viewport's bottom edge is
// not visible either. The visible range is then widened by the overscan count on
// both sides and clamped to the item domain.
//
// Scroll offsets outside [0, TotalExtent-Viewport] are clamped before searching,
// never rejected: elastic scroll gestures report such values transiently.
// Negative counts, non-positive sizes and non-positive viewports are programming
// errors and are returned as coded errors from [github.com/matzehuels/vtable/pkg/errors].
//
// # Caching
//
// [Compute] is a pure function and rebuilds the table on every call. Hosts that
// recompute on every scroll event should hold a [Cache], which memoizes the
// table per item count and sizer version:
//
//	c := window.NewCache(window.Fixed(50))
//	w, err := c.Compute(10000, 600, scrollY, 10)
//	for _, it := range w.Items {
//	    draw(rows[it.Index], it.Start, it.Size)
//	}
package window
