package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Level: LevelDebug})

	l.Info("session started", SessionID("s-1"), Subject("vocabulary"), Int("items", 20))

	var e struct {
		Level   string         `json:"level"`
		Message string         `json:"message"`
		Fields  map[string]any `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &e))
	assert.Equal(t, "INFO", e.Level)
	assert.Equal(t, "session started", e.Message)
	assert.Equal(t, "s-1", e.Fields["session_id"])
	assert.Equal(t, "vocabulary", e.Fields["subject"])
	assert.Equal(t, float64(20), e.Fields["items"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Level: LevelWarn})

	l.Debug("dropped")
	l.Info("dropped too")
	l.Warn("kept")
	l.Error("kept", Err(errors.New("boom")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "kept")
	assert.Contains(t, lines[1], "boom")
}

func TestWithAddsPersistentFields(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Output: &buf, Level: LevelDebug})
	l := base.With(SessionID("s-2"), UserID("u-1"))

	l.Info("tick")

	var e struct {
		Fields map[string]any `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &e))
	assert.Equal(t, "s-2", e.Fields["session_id"])
	assert.Equal(t, "u-1", e.Fields["user_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARNING "))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}
