package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/matzehuels/vtable/pkg/window"
)

// Frame is the serialized form of one window.
type Frame struct {
	Seq uint64 `json:"seq,omitempty"`
	window.Window
	Rows []Row `json:"rows,omitempty"`
}

// Row holds the formatted cells of one materialized item.
type Row struct {
	Index int               `json:"index"`
	Cells map[string]string `json:"cells"`
}

// CellFunc returns the formatted cells for item index.
type CellFunc func(index int) (map[string]string, error)

// NewFrame wraps w. When cells is non-nil it is called once per materialized
// item, in item order.
func NewFrame(w window.Window, cells CellFunc) (Frame, error) {
	f := Frame{Window: w}
	if cells == nil {
		return f, nil
	}
	f.Rows = make([]Row, len(w.Items))
	for i, it := range w.Items {
		c, err := cells(it.Index)
		if err != nil {
			return Frame{}, fmt.Errorf("row %d: %w", it.Index, err)
		}
		f.Rows[i] = Row{Index: it.Index, Cells: c}
	}
	return f, nil
}

// WriteJSON encodes f as indented JSON and writes it to w.
func WriteJSON(f Frame, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes f to a JSON file at path.
func ExportJSON(f Frame, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LineWriter writes frames as JSON lines. It is safe for concurrent use;
// each frame occupies exactly one line.
type LineWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
	n   int
}

// NewLineWriter returns a LineWriter writing to w.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{enc: json.NewEncoder(w)}
}

// Write encodes f on its own line.
func (lw *LineWriter) Write(f Frame) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if err := lw.enc.Encode(f); err != nil {
		return fmt.Errorf("encode frame %d: %w", lw.n, err)
	}
	lw.n++
	return nil
}

// Count returns the number of frames written.
func (lw *LineWriter) Count() int {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.n
}
