// Package pkg provides the libraries behind vtable, a virtual table that
// renders very large lists through a fixed-height viewport.
//
// # Overview
//
// Only the rows that intersect the viewport, plus a few rows of overscan on
// each side, are ever materialized. Everything else exists only as its share
// of the total scrollable extent. The pkg directory is organized as:
//
//  1. [window] - The engine: offset tables, binary search, overscan, scroll clamping
//  2. [scroll] - Live viewport state feeding the engine, one snapshot per change
//  3. [records], [columns] - The data shown and how cells are typed and formatted
//  4. [io] - JSON and JSON-lines frames for external renderers
//  5. [config], [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
//	scroll / resize event
//	         ↓
//	    [scroll] Controller (offset, viewport, count)
//	         ↓
//	    [window] Cache → Table → Window
//	         ↓
//	    renderer (terminal, HTTP, JSON) formats rows via [columns]
//
// # Quick Start
//
//	w, err := window.Compute(10000, window.Fixed(50), 600, 5000, 10)
//	if err != nil {
//	    return err
//	}
//	for _, it := range w.Items {
//	    // place row it.Index at it.Start inside a container of height w.TotalExtent
//	}
package pkg
