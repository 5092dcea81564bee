package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time since creation.
// Example output: "Computed 834 windows (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, p.elapsed())
}

// debug logs msg at debug level with key-value pairs and the elapsed time.
func (p *progress) debug(msg string, keyvals ...any) {
	p.logger.Debug(msg, append(keyvals, "elapsed", p.elapsed())...)
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports engine and scroll events to the logger at debug level.
// It implements observability.TableHooks and observability.ScrollHooks.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l}
}

func (h *logHooks) OnTableBuild(count int, uniform bool, d time.Duration) {
	h.logger.Debug("offset table built", "count", count, "uniform", uniform, "elapsed", d)
}

func (h *logHooks) OnTableHit(count int) {}

func (h *logHooks) OnTableInvalidate(reason string) {
	h.logger.Debug("offset table dropped", "reason", reason)
}

func (h *logHooks) OnRecompute(seq uint64, offset, viewport float64, start, end int) {
	h.logger.Debug("window", "seq", seq, "offset", offset, "viewport", viewport, "start", start, "end", end)
}

func (h *logHooks) OnRejected(err error) {
	h.logger.Warn("scroll change rejected", "err", err)
}
