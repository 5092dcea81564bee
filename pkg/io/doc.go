// Package io provides JSON and JSON-lines serialization of window snapshots.
//
// # Overview
//
// A [Frame] is one computed window plus, optionally, the formatted cells of
// every materialized row. Frames are what the HTTP API returns and what the
// sweep command streams, so external renderers (a browser page, a test
// harness) can position rows at their start offsets inside a container
// sized to totalExtent without re-running the engine.
//
// # JSON Format
//
//	{
//	  "totalExtent": 500000,
//	  "scroll": 5000,
//	  "viewport": 600,
//	  "first": 100,
//	  "last": 112,
//	  "start": 90,
//	  "end": 122,
//	  "items": [{"index": 90, "start": 4500, "size": 50}, ...],
//	  "rows": [{"index": 90, "cells": {"id": "91", "name": "Pedro Oliveira"}}, ...]
//	}
//
// seq is present when the frame came from a scroll controller snapshot;
// rows is omitted when no cell function was supplied.
//
// # JSON Lines
//
// [LineWriter] writes one compact frame per line and is safe for concurrent
// use. [ReadFrames] reads such a stream back.
package io
