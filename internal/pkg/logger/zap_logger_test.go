package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLogger_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := NewIsolatedLogger(path)

	l.Info("FeatureService", "feature created", map[string]interface{}{"name": "title"})
	l.Debug("FeatureService", "below file level", nil)
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"feature created"`)
	assert.Contains(t, string(data), `"module":"FeatureService"`)
	assert.NotContains(t, string(data), "below file level")
}

func TestNopLogger(t *testing.T) {
	var l ILogger = NewNopLogger()
	l.Error("x", "y", nil)
	assert.NoError(t, l.Sync())
}
