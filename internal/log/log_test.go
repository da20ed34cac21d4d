package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelError, ParseLevel(" ERROR "))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetLevel(LevelInfo) })

	SetLevel(LevelError)
	Info("hidden", "k", "v")
	assert.Empty(t, buf.String())

	Error("grid failed", errors.New("boom"), "month", "2025-01")
	out := buf.String()
	assert.Contains(t, out, "grid failed")
	assert.Contains(t, out, "err=boom")
	assert.Contains(t, out, "month=2025-01")

	buf.Reset()
	SetLevel(LevelDebug)
	Debug("visible", "n", 3)
	assert.Contains(t, buf.String(), "n=3")
}
