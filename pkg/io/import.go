package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadJSON decodes a single frame from r.
func ReadJSON(r io.Reader) (Frame, error) {
	var f Frame
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return Frame{}, fmt.Errorf("decode: %w", err)
	}
	return f, nil
}

// ReadFrames decodes a stream of frames, as written by [LineWriter], until
// EOF. Errors name the zero-based frame that failed.
func ReadFrames(r io.Reader) ([]Frame, error) {
	dec := json.NewDecoder(r)
	var out []Frame
	for {
		var f Frame
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", len(out), err)
		}
		out = append(out, f)
	}
}

// ImportJSON reads a JSON frame file at path.
func ImportJSON(path string) (Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return Frame{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
