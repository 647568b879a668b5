package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewTextLogger(&buf, slog.LevelDebug), &buf
}

func TestSlogLogger_LevelsAndAttributes(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "payload snapshot", "bytes", 412)
	log.Info(ctx, "round synced", "server_id", 101)
	log.Warn(ctx, "immediate flush failed", "entity", "round")
	log.Error(ctx, "queue pass failed", "error", "disk full")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "bytes=412")
	assert.Contains(t, out, `msg="round synced"`)
	assert.Contains(t, out, "server_id=101")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "entity=round")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, `error="disk full"`)
}

func TestSlogLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, slog.LevelInfo)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestSlogLogger_WithChainsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.With("component", "syncer").With("entity", "club").Info(ctx, "bag pushed")

	out := buf.String()
	assert.Contains(t, out, "component=syncer")
	assert.Contains(t, out, "entity=club")
	assert.Contains(t, out, `msg="bag pushed"`)
}
