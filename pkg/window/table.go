package window

import (
	"math"
	"sort"

	"github.com/matzehuels/vtable/pkg/errors"
)

// Table is the offset table for a fixed item count: a prefix sum over item
// sizes. A Table is immutable once built and safe to share between goroutines.
type Table struct {
	count int

	// uniform > 0 means every item has this size and offsets/sizes are nil.
	uniform float64
	offsets []float64 // len count+1
	sizes   []float64 // len count
}

// BuildTable computes the offset table for count items sized by s.
// Every size is validated; the first non-positive one aborts the build.
func BuildTable(count int, s Sizer) (*Table, error) {
	if err := errors.ValidateCount(count); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sizer cannot be nil")
	}

	if u, ok := s.(Uniform); ok {
		if size, ok := u.Uniform(); ok {
			if err := errors.ValidateSize(0, size); err != nil {
				return nil, err
			}
			return &Table{count: count, uniform: size}, nil
		}
	}

	t := &Table{
		count:   count,
		offsets: make([]float64, count+1),
		sizes:   make([]float64, count),
	}
	for i := 0; i < count; i++ {
		size := s.Size(i)
		if err := errors.ValidateSize(i, size); err != nil {
			return nil, err
		}
		t.sizes[i] = size
		t.offsets[i+1] = t.offsets[i] + size
	}
	return t, nil
}

// Len returns the number of items covered by the table.
func (t *Table) Len() int { return t.count }

// IsUniform reports whether the table was built on the constant-size path.
func (t *Table) IsUniform() bool { return t.uniform > 0 }

// Total returns the total extent, offset(count).
func (t *Table) Total() float64 { return t.Offset(t.count) }

// Offset returns the start of item i, for i in [0, count]. Offset(count) is the
// total extent.
func (t *Table) Offset(i int) float64 {
	if t.uniform > 0 {
		return float64(i) * t.uniform
	}
	return t.offsets[i]
}

// Size returns the size of item i.
func (t *Table) Size(i int) float64 {
	if t.uniform > 0 {
		return t.uniform
	}
	return t.sizes[i]
}

// IndexAt returns the index of the item covering pos: the first i with
// offset(i+1) > pos. Positions before 0 map to 0 and positions at or past the
// total extent map to count-1. IndexAt returns -1 for an empty table.
func (t *Table) IndexAt(pos float64) int {
	if t.count == 0 {
		return -1
	}
	if pos <= 0 || math.IsNaN(pos) {
		return 0
	}
	if pos >= t.Total() {
		return t.count - 1
	}
	if t.uniform == 0 {
		return sort.Search(t.count, func(i int) bool { return t.offsets[i+1] > pos })
	}
	// The quotient can round to the neighbouring row when the size is not
	// exact in binary; settle it against Offset so both agree.
	i := clampInt(int(math.Floor(pos/t.uniform)), 0, t.count-1)
	for i+1 < t.count && t.Offset(i+1) <= pos {
		i++
	}
	for i > 0 && t.Offset(i) > pos {
		i--
	}
	return i
}

// endIndex returns the first j with offset(j) >= pos, capped at count.
func (t *Table) endIndex(pos float64) int {
	if pos >= t.Total() {
		return t.count
	}
	if t.uniform == 0 {
		return sort.Search(t.count+1, func(j int) bool { return t.offsets[j] >= pos })
	}
	// Same correction as IndexAt: Offset(j-1) < pos <= Offset(j).
	j := clampInt(int(math.Ceil(pos/t.uniform)), 0, t.count)
	for j < t.count && t.Offset(j) < pos {
		j++
	}
	for j > 0 && t.Offset(j-1) >= pos {
		j--
	}
	return j
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
