package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestLoggerWritesFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, LevelDebug)

	l.Error("executor", "rename failed", errors.New("permission denied"), F("path", "/x/a.mkv"))

	line := buf.String()
	assert.Contains(t, line, "[ERROR] [executor] rename failed")
	assert.Contains(t, line, "error=permission denied")
	assert.Contains(t, line, "path=/x/a.mkv")
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, LevelWarn)

	l.Info("planner", "hidden")
	l.Warn("planner", "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Error("x", "nothing", errors.New("boom"))
	assert.Equal(t, "", l.FilePath())
}

func TestRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jellyfix.log")

	l, err := New(Config{Level: "info", File: path, MaxSizeMB: 1, MaxBackups: 2})
	require.NoError(t, err)
	defer l.Close()
	l.SetOutput(nil)
	l.maxSize = 64

	for i := 0; i < 10; i++ {
		l.Info("test", strings.Repeat("x", 40))
	}

	_, err = os.Stat(filepath.Join(dir, "jellyfix.1.log"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "jellyfix.3.log"))
	assert.True(t, os.IsNotExist(err))
}
