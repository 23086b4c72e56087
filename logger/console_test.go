package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLoggerTo(&buf, LevelInfo)
	log.Debug("hidden")
	log.Info("shown %d", 1)
	log.Error("bad")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO ]")
	assert.Contains(t, out, "shown 1")
	assert.Contains(t, out, "[ERROR]")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}

func TestConsoleLoggerPrefixAndMetadata(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLoggerTo(&buf, LevelTrace).
		WithPrefix("[kleague]").
		WithPrefix("[kleague]").
		With(map[string]interface{}{"club": "전북"})
	log.Info("schedule fetched")

	out := ansiColorStripper.ReplaceAllString(buf.String(), "")
	assert.Equal(t, 1, strings.Count(out, "[kleague]"))
	assert.Contains(t, out, "[kleague] schedule fetched")
	assert.Contains(t, out, `{"club":"전북"}`)
}

func TestConsoleLoggerWithDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	root := NewConsoleLoggerTo(&buf, LevelInfo)
	_ = root.With(map[string]interface{}{"a": 1})
	root.Info("plain")
	assert.NotContains(t, buf.String(), `"a"`)
}

func TestConsoleLoggerWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-1")
	NewConsoleLoggerTo(&buf, LevelInfo).WithContext(ctx).Info("hello")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
}

func TestConsoleLoggerSink(t *testing.T) {
	var buf, sink bytes.Buffer
	log := NewConsoleLoggerTo(&buf, LevelError)
	log.SetSink(&sink, LevelDebug)
	log.Debug("to sink only")

	assert.Empty(t, buf.String())
	assert.Contains(t, sink.String(), "to sink only")
	assert.NotContains(t, sink.String(), "\x1b[")
}

func TestConsoleLoggerStack(t *testing.T) {
	var buf bytes.Buffer
	test := NewTestLogger()
	log := NewConsoleLoggerTo(&buf, LevelInfo).Stack(test)
	log.Warn("both")

	assert.Contains(t, buf.String(), "both")
	assert.True(t, test.Has("WARNING", "both"))
}
