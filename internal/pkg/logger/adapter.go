package logger

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"trenchcard/internal/app/port"
)

// SetSlogDefault routes the standard library slog logger into zap, so that
// libraries logging through slog end up in the same JSON stream.
func SetSlogDefault(l *zap.Logger) *slog.Logger {
	sl := slog.New(zapslog.NewHandler(l.Core()))
	slog.SetDefault(sl)
	return sl
}

// slogAdapter implements port.Logger on top of a slog.Logger whose handler
// writes into a zap core.
type slogAdapter struct {
	sl *slog.Logger
}

// NewSlogAdapter wraps l as a port.Logger. Key/value pairs become zap fields.
func NewSlogAdapter(l *zap.Logger) port.Logger {
	return &slogAdapter{sl: slog.New(zapslog.NewHandler(l.Core()))}
}

// NewNop returns a port.Logger that discards everything.
func NewNop() port.Logger {
	return NewSlogAdapter(zap.NewNop())
}

func (a *slogAdapter) Info(msg string, args ...any) {
	a.sl.Log(context.Background(), slog.LevelInfo, msg, args...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	a.sl.Log(context.Background(), slog.LevelDebug, msg, args...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	a.sl.Log(context.Background(), slog.LevelWarn, msg, args...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	a.sl.Log(context.Background(), slog.LevelError, msg, args...)
}

// Named tags every record of the child with a "logger" attribute, matching
// the name zap.Logger.Named would print.
func (a *slogAdapter) Named(name string) port.Logger {
	return &slogAdapter{sl: a.sl.With(slog.String("logger", name))}
}
