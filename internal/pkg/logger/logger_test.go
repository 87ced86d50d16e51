package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   zapcore.Level
		wantOK bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{"INFO", zapcore.InfoLevel, true},
		{"", zapcore.InfoLevel, true},
		{"warning", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"verbose", zapcore.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	l, err := New("error", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at error level")
	}
	if !l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should be enabled at error level")
	}
}

func TestSlogAdapterWritesZapFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewSlogAdapter(zap.New(core)).Named("SnapshotService")

	log.Debug("hidden", "k", "v")
	log.Warn("Price oracle attempt failed", "attempt", 2, "error", errors.New("boom"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 (debug must be filtered)", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.WarnLevel || e.Message != "Price oracle attempt failed" {
		t.Errorf("entry = %v %q", e.Level, e.Message)
	}
	fields := e.ContextMap()
	if fields["logger"] != "SnapshotService" {
		t.Errorf("logger field = %v, want SnapshotService", fields["logger"])
	}
	if fields["attempt"] != int64(2) {
		t.Errorf("attempt field = %#v, want int64(2)", fields["attempt"])
	}
	if fields["error"] != "boom" {
		t.Errorf("error field = %#v, want boom", fields["error"])
	}
}

func TestNewNopDiscards(t *testing.T) {
	log := NewNop()
	log.Error("dropped", "k", 1)
	log.Named("x").Info("dropped")
}
