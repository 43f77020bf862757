package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesFieldsAsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	l.With(String("run_id", "r1")).Info("analysis complete", Int("points", 42), Error(errors.New("boom")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 1)

	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, "analysis complete", ev["message"])
	assert.Equal(t, "info", ev["level"])
	assert.Equal(t, "r1", ev["run_id"])
	assert.EqualValues(t, 42, ev["points"])
	assert.Equal(t, "boom", ev["error"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "discard"})
	assert.Error(t, err)
}

func TestNilAndNopLoggersAreSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Info("ignored")
		l.With(String("k", "v")).Warn("ignored")
		Nop().Error("ignored", Error(errors.New("x")))
	})
}
