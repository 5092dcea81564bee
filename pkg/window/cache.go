package window

import (
	"sync"
	"time"

	"github.com/matzehuels/vtable/pkg/errors"
	"github.com/matzehuels/vtable/pkg/observability"
)

// Cache memoizes the offset table for one sizer. The table is rebuilt when the
// item count changes, when a [Versioned] sizer reports a new version, after
// [Cache.SetSizer], and after [Cache.Invalidate].
//
// A rebuild happens under the cache's lock, so a reader never pairs a table
// built for a stale count with a fresh sizer or the other way round. Cache is
// safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	sizer   Sizer
	table   *Table
	version uint64
}

// NewCache returns a cache bound to s.
func NewCache(s Sizer) *Cache {
	return &Cache{sizer: s}
}

// Sizer returns the bound sizer.
func (c *Cache) Sizer() Sizer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sizer
}

// SetSizer binds a new sizer and drops the memoized table.
func (c *Cache) SetSizer(s Sizer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sizer = s
	c.table = nil
	observability.Table().OnTableInvalidate("sizer replaced")
}

// Invalidate drops the memoized table. Opaque sizers such as [SizeFunc] cannot
// report changes themselves; call Invalidate after their output changes.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = nil
	observability.Table().OnTableInvalidate("explicit")
}

// Table returns the offset table for count items, rebuilding it if needed.
func (c *Cache) Table(count int) (*Table, error) {
	if err := errors.ValidateCount(count); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sizer == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sizer cannot be nil")
	}

	// Read the version before building: a concurrent mutation during the
	// build leaves the table tagged stale and forces the next call to rebuild.
	v := sizerVersion(c.sizer)
	if c.table != nil && c.table.count == count && c.version == v {
		observability.Table().OnTableHit(count)
		return c.table, nil
	}

	start := time.Now()
	t, err := BuildTable(count, c.sizer)
	if err != nil {
		c.table = nil
		return nil, err
	}
	c.table = t
	c.version = v
	observability.Table().OnTableBuild(count, t.IsUniform(), time.Since(start))
	return t, nil
}

// Compute is [Compute] against the memoized table.
func (c *Cache) Compute(count int, viewport, scroll float64, overscan int) (Window, error) {
	if err := validate(count, viewport, overscan); err != nil {
		return Window{}, err
	}
	t, err := c.Table(count)
	if err != nil {
		return Window{}, err
	}
	return t.Window(viewport, scroll, overscan)
}
