package gormlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"tasktrack/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func sqlFn() (string, int64) {
	return "SELECT 1", 1
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal(line, &entry))
		out = append(out, entry)
	}

	return out
}

func TestTrace_FastQueryNotLoggedOutsideDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(newBufferLogger(buf), &config.Config{})

	l.Trace(t.Context(), time.Now(), sqlFn, nil)

	assert.Empty(t, buf.String())
}

func TestTrace_DebugLogsEveryQuery(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := &config.Config{}
	cfg.Env.Debug = true
	l := New(newBufferLogger(buf), cfg)

	l.Trace(t.Context(), time.Now(), sqlFn, nil)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "GORM query", entries[0]["msg"])
	assert.Equal(t, "SELECT 1", entries[0]["sql"])
	assert.Equal(t, "gorm", entries[0]["component"])
}

func TestTrace_ErrorsAreLoggedExceptRecordNotFound(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(newBufferLogger(buf), &config.Config{})

	l.Trace(t.Context(), time.Now(), sqlFn, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(t.Context(), time.Now(), sqlFn, errors.New("boom"))
	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "GORM query failed", entries[0]["msg"])
	assert.Equal(t, "boom", entries[0]["error"])
}

func TestTrace_SlowQueryWarns(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(newBufferLogger(buf), &config.Config{})

	l.Trace(t.Context(), time.Now().Add(-time.Second), sqlFn, nil)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "GORM slow query", entries[0]["msg"])
	assert.Equal(t, "WARN", entries[0]["level"])
}

func TestLogMode_SilentSuppressesOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(newBufferLogger(buf), &config.Config{}).LogMode(logger.Silent)

	l.Trace(t.Context(), time.Now(), sqlFn, errors.New("boom"))
	l.Error(t.Context(), "ignored %d", 1)

	assert.Empty(t, buf.String())
}
