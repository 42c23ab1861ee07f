// Package log provides the mesh core's logging surface.
//
// It wraps the standard library's log/slog rather than introducing a
// separate logging abstraction: every internal/core subpackage logs
// through here with a component tag, and embedders redirect output by
// calling SetDefault with their own slog.Logger or SetOutput with an
// io.Writer.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

var defaultLogger = slog.Default()

// Log levels, re-exported from slog for callers that don't want to
// import it directly.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// SetDefault replaces the package-wide default logger.
func SetDefault(l *slog.Logger) {
	defaultLogger = l
	slog.SetDefault(l)
}

// Default returns the current default logger.
func Default() *slog.Logger {
	return slog.Default()
}

// New builds a text-handler logger writing to w.
func New(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewJSON builds a JSON-handler logger writing to w.
func NewJSON(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// SetOutput redirects the default logger to w at info level.
func SetOutput(w io.Writer) {
	SetOutputWithLevel(w, slog.LevelInfo)
}

// SetOutputWithLevel redirects the default logger to w at the given level.
func SetOutputWithLevel(w io.Writer, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	defaultLogger = slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(defaultLogger)
}

// SetLevel rebuilds the default logger at the given level, keeping its
// current stderr output.
func SetLevel(level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	slog.SetDefault(defaultLogger)
}

// LazyLogger resolves slog.Default() on every call rather than caching
// a logger at construction time, so a component tag keeps working
// after a later SetOutput/SetDefault call redirects output.
type LazyLogger struct {
	component string
}

func (l *LazyLogger) Debug(msg string, args ...any) { slog.Default().With("component", l.component).Debug(msg, args...) }
func (l *LazyLogger) Info(msg string, args ...any)  { slog.Default().With("component", l.component).Info(msg, args...) }
func (l *LazyLogger) Warn(msg string, args ...any)  { slog.Default().With("component", l.component).Warn(msg, args...) }
func (l *LazyLogger) Error(msg string, args ...any) { slog.Default().With("component", l.component).Error(msg, args...) }

func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	slog.Default().With("component", l.component).DebugContext(ctx, msg, args...)
}
func (l *LazyLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	slog.Default().With("component", l.component).InfoContext(ctx, msg, args...)
}
func (l *LazyLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	slog.Default().With("component", l.component).WarnContext(ctx, msg, args...)
}
func (l *LazyLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	slog.Default().With("component", l.component).ErrorContext(ctx, msg, args...)
}

// With returns a slog.Logger carrying this component's tag plus args.
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return slog.Default().With("component", l.component).With(args...)
}

// WithComponent returns a LazyLogger tagged with component.
func WithComponent(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

// Logger is an alias for WithComponent, matching the call sites below.
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func Debug(msg string, args ...any) { slog.Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { slog.Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { slog.Default().Warn(msg, args...) }
func Error(msg string, args ...any) { slog.Default().Error(msg, args...) }

func DebugContext(ctx context.Context, msg string, args ...any) { slog.Default().DebugContext(ctx, msg, args...) }
func InfoContext(ctx context.Context, msg string, args ...any)  { slog.Default().InfoContext(ctx, msg, args...) }
func WarnContext(ctx context.Context, msg string, args ...any)  { slog.Default().WarnContext(ctx, msg, args...) }
func ErrorContext(ctx context.Context, msg string, args ...any) { slog.Default().ErrorContext(ctx, msg, args...) }

// TruncateID safely shortens an identifier for log output, avoiding a
// slice-bounds panic when id is shorter than maxLen.
func TruncateID(id string, maxLen int) string {
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen]
}

func init() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, opts))
}
