package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/vtable/pkg/columns"
	"github.com/matzehuels/vtable/pkg/config"
	"github.com/matzehuels/vtable/pkg/errors"
	"github.com/matzehuels/vtable/pkg/records"
	"github.com/matzehuels/vtable/pkg/window"
)

// tableFlags are the flags shared by every command that builds a table.
// Flags left unset fall back to the config file.
type tableFlags struct {
	rows      int
	rowHeight float64
	viewport  float64
	overscan  int
	seed      uint64
	locale    string
	currency  string
	columns   []string
	sizes     []string
}

func addTableFlags(cmd *cobra.Command, f *tableFlags) {
	def := config.Default()
	fs := cmd.Flags()
	fs.IntVarP(&f.rows, "rows", "n", def.Rows, "number of records")
	fs.Float64Var(&f.rowHeight, "row-height", def.RowHeight, "height of every row")
	fs.Float64Var(&f.viewport, "viewport", def.Viewport, "viewport height")
	fs.IntVar(&f.overscan, "overscan", def.Overscan, "rows rendered beyond each edge of the viewport")
	fs.Uint64Var(&f.seed, "seed", def.Seed, "seed for generated ages and salaries")
	fs.StringVar(&f.locale, "locale", def.Locale, "locale for currency formatting (BCP 47)")
	fs.StringVar(&f.currency, "currency", def.Currency, "currency code (ISO 4217)")
	fs.StringSliceVar(&f.columns, "columns", nil, "columns to show, comma-separated (default all)")
	fs.StringSliceVar(&f.sizes, "size", nil, "per-row height override as index=height (repeatable)")
}

// resolveConfig layers explicitly set flags over c.Config.
func (c *CLI) resolveConfig(cmd *cobra.Command, f *tableFlags) (config.Config, error) {
	cfg := c.Config
	fs := cmd.Flags()
	if fs.Changed("rows") {
		cfg.Rows = f.rows
	}
	if fs.Changed("row-height") {
		cfg.RowHeight = f.rowHeight
	}
	if fs.Changed("viewport") {
		cfg.Viewport = f.viewport
	}
	if fs.Changed("overscan") {
		cfg.Overscan = f.overscan
	}
	if fs.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fs.Changed("locale") {
		cfg.Locale = f.locale
	}
	if fs.Changed("currency") {
		cfg.Currency = f.currency
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// dataset is everything a renderer needs: records, the sizer behind the
// offset-table cache, and how to turn a record into cells.
type dataset struct {
	cfg       config.Config
	source    records.Slice
	sizer     window.Sizer
	cache     *window.Cache
	columns   []columns.Column
	formatter columns.Formatter
}

// newDataset resolves flags and builds the dataset for cmd.
func (c *CLI) newDataset(cmd *cobra.Command, f *tableFlags) (*dataset, error) {
	cfg, err := c.resolveConfig(cmd, f)
	if err != nil {
		return nil, err
	}
	cols, err := columns.Select(f.columns)
	if err != nil {
		return nil, err
	}
	formatter, err := columns.NewLocaleFormatter(cfg.Locale, cfg.Currency)
	if err != nil {
		return nil, err
	}
	sizer, err := buildSizer(cfg.RowHeight, f.sizes)
	if err != nil {
		return nil, err
	}

	prog := newProgress(c.Logger)
	source := records.Generate(cfg.Rows, cfg.Seed)
	prog.debug("Generated records", "rows", source.Len())

	return &dataset{
		cfg:       cfg,
		source:    source,
		sizer:     sizer,
		cache:     window.NewCache(sizer),
		columns:   cols,
		formatter: formatter,
	}, nil
}

// compute returns the window at scroll using the dataset's viewport and
// overscan.
func (d *dataset) compute(scroll float64) (window.Window, error) {
	return d.cache.Compute(d.source.Len(), d.cfg.Viewport, scroll, d.cfg.Overscan)
}

// cells formats the record at index.
func (d *dataset) cells(index int) ([]string, error) {
	return columns.Cells(d.source.At(index), d.columns, d.formatter)
}

// cellMap formats the record at index keyed by column.
func (d *dataset) cellMap(index int) (map[string]string, error) {
	return columns.CellMap(d.source.At(index), d.columns, d.formatter)
}

// buildSizer returns a fixed sizer, or an override sizer when any
// index=height pairs are given.
func buildSizer(rowHeight float64, pairs []string) (window.Sizer, error) {
	if len(pairs) == 0 {
		return window.Fixed(rowHeight), nil
	}
	o, err := window.NewOverrides(rowHeight)
	if err != nil {
		return nil, err
	}
	for _, p := range pairs {
		idx, size, ok := strings.Cut(p, "=")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "size override %q must be index=height", p)
		}
		i, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "size override %q: bad index", p)
		}
		h, err := strconv.ParseFloat(strings.TrimSpace(size), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "size override %q: bad height", p)
		}
		if err := o.Set(i, h); err != nil {
			return nil, err
		}
	}
	return o, nil
}
