package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/vtable/pkg/buildinfo"
	"github.com/matzehuels/vtable/pkg/columns"
	"github.com/matzehuels/vtable/pkg/errors"
	vio "github.com/matzehuels/vtable/pkg/io"
	"github.com/matzehuels/vtable/pkg/window"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Columns)
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scroll, err := queryFloat(q.Get("scroll"), "scroll", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	viewport, err := queryFloat(q.Get("viewport"), "viewport", s.opts.Viewport)
	if err != nil {
		writeError(w, err)
		return
	}
	overscan, err := queryInt(q.Get("overscan"), "overscan", s.opts.Overscan)
	if err != nil {
		writeError(w, err)
		return
	}
	withCells, err := queryBool(q.Get("cells"), "cells", true)
	if err != nil {
		writeError(w, err)
		return
	}

	win, err := s.cache.Compute(s.opts.Source.Len(), viewport, scroll, overscan)
	if err != nil {
		writeError(w, err)
		return
	}

	var cells vio.CellFunc
	if withCells {
		cells = s.cells
	}
	frame, err := vio.NewFrame(win, cells)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleRow(w http.ResponseWriter, r *http.Request) {
	index, err := s.pathIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	cells, err := s.cells(index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vio.Row{Index: index, Cells: cells})
}

type revealResponse struct {
	Index  int     `json:"index"`
	Scroll float64 `json:"scroll"`
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	index, err := s.pathIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	current, err := queryFloat(q.Get("scroll"), "scroll", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	viewport, err := queryFloat(q.Get("viewport"), "viewport", s.opts.Viewport)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := errors.ValidateViewport(viewport); err != nil {
		writeError(w, err)
		return
	}

	t, err := s.cache.Table(s.opts.Source.Len())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, revealResponse{
		Index:  index,
		Scroll: window.ScrollToIndex(t, index, current, viewport),
	})
}

func (s *Server) cells(index int) (map[string]string, error) {
	return columns.CellMap(s.opts.Source.At(index), s.opts.Columns, s.opts.Formatter)
}

func (s *Server) pathIndex(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "index must be an integer, got %q", raw)
	}
	if index < 0 || index >= s.opts.Source.Len() {
		return 0, errors.New(errors.ErrCodeNotFound, "row %d out of range [0, %d)", index, s.opts.Source.Len())
	}
	return index, nil
}

// =============================================================================
// Query Parsing
// =============================================================================

func queryFloat(raw, name string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s must be a number, got %q", name, raw)
	}
	return v, nil
}

func queryInt(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func queryBool(raw, name string, def bool) (bool, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s must be a boolean, got %q", name, raw)
	}
	return v, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorBody{Error: errorDetail{Code: code, Message: errors.UserMessage(err)}})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInternal:
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}
