package window

import (
	"sync"

	"github.com/matzehuels/vtable/pkg/errors"
)

// Sizer reports the size of an item along the scroll axis.
// Size must be a pure function of index between mutations.
type Sizer interface {
	Size(index int) float64
}

// Uniform is implemented by sizers that can report that every item has the
// same size. When ok is true the engine skips building an offset table.
type Uniform interface {
	Uniform() (size float64, ok bool)
}

// Versioned is implemented by mutable sizers. Version must change whenever any
// Size result changes; a [Cache] rebuilds its table when it does.
type Versioned interface {
	Version() uint64
}

// SizeFunc adapts a plain function to [Sizer].
type SizeFunc func(index int) float64

// Size implements Sizer.
func (f SizeFunc) Size(index int) float64 { return f(index) }

// Fixed is a constant-size sizer.
type Fixed float64

// Size implements Sizer.
func (f Fixed) Size(int) float64 { return float64(f) }

// Uniform implements Uniform.
func (f Fixed) Uniform() (float64, bool) { return float64(f), true }

// Overrides is a default size with per-index exceptions. It lets the same
// engine serve lists where a handful of rows (group headers, expanded rows)
// differ from the rest. Safe for concurrent use.
type Overrides struct {
	mu      sync.RWMutex
	def     float64
	sizes   map[int]float64
	version uint64
}

// NewOverrides returns an Overrides sizer with the given default size.
func NewOverrides(def float64) (*Overrides, error) {
	if err := errors.ValidateSize(-1, def); err != nil {
		return nil, err
	}
	return &Overrides{def: def, sizes: make(map[int]float64)}, nil
}

// Size implements Sizer.
func (o *Overrides) Size(index int) float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if s, ok := o.sizes[index]; ok {
		return s
	}
	return o.def
}

// Uniform implements Uniform. It reports ok only while nothing is overridden.
func (o *Overrides) Uniform() (float64, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.def, len(o.sizes) == 0
}

// Version implements Versioned.
func (o *Overrides) Version() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.version
}

// Set overrides the size of index. Setting an index back to the default size
// removes the override.
func (o *Overrides) Set(index int, size float64) error {
	if index < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "override index must be >= 0, got %d", index)
	}
	if err := errors.ValidateSize(index, size); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if size == o.def {
		if _, ok := o.sizes[index]; !ok {
			return nil
		}
		delete(o.sizes, index)
	} else {
		if cur, ok := o.sizes[index]; ok && cur == size {
			return nil
		}
		o.sizes[index] = size
	}
	o.version++
	return nil
}

// Reset removes the override for index, if any.
func (o *Overrides) Reset(index int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.sizes[index]; ok {
		delete(o.sizes, index)
		o.version++
	}
}

// Clear removes every override.
func (o *Overrides) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sizes) > 0 {
		o.sizes = make(map[int]float64)
		o.version++
	}
}

// Len returns the number of overridden indices.
func (o *Overrides) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.sizes)
}

func sizerVersion(s Sizer) uint64 {
	if v, ok := s.(Versioned); ok {
		return v.Version()
	}
	return 0
}
