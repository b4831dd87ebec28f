package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hrreview.log")
	l, err := New(path, "info")
	require.NoError(t, err)

	l.Debug("hidden")
	l.Warn("escalations fetch failed", zap.Int64("email_id", 7))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "escalations fetch failed", entry["msg"])
	assert.EqualValues(t, 7, entry["email_id"])
	assert.Contains(t, entry, "ts")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "x.log"), "chatty")
	assert.Error(t, err)
}

func TestVerbose(t *testing.T) {
	assert.Equal(t, "debug", Verbose("warn", true))
	assert.Equal(t, "warn", Verbose("warn", false))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
