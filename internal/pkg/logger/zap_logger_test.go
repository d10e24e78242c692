package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ws.log")
	l := NewIsolatedLogger(path)

	l.Info("WEBSOCKET", "client registered", map[string]interface{}{"session_id": "abc"})
	l.Debug("WEBSOCKET", "below file level", nil)
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"client registered"`)
	assert.Contains(t, string(data), `"module":"WEBSOCKET"`)
	assert.NotContains(t, string(data), "below file level")
}

func TestNopLoggerAcceptsNilDetails(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Error("TEST", "boom", nil)
		l.Warn("TEST", "warn", map[string]interface{}{"error": "x"})
	})
}
