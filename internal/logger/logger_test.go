package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restore(t *testing.T) {
	t.Helper()
	prev := Log()
	t.Cleanup(func() {
		mu.Lock()
		instance = prev
		mu.Unlock()
	})
}

func TestInit_JSONFormat(t *testing.T) {
	restore(t)
	l, err := Init(&Config{Level: "debug", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	assert.Same(t, l, Log())
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	var buf bytes.Buffer
	SetOutput(&buf)
	Log().WithField("vendor", "aliyun").Info("probe positive")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "probe positive", entry["message"])
	assert.Equal(t, "aliyun", entry["vendor"])
	assert.Contains(t, entry, "timestamp")
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	restore(t)
	l, err := Init(&Config{Level: "loud", Format: "text"})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestInit_Errors(t *testing.T) {
	restore(t)
	_, err := Init(nil)
	assert.Error(t, err)

	_, err = Init(&Config{Level: "info", Format: "xml"})
	assert.ErrorContains(t, err, "unsupported log format")

	_, err = Init(&Config{Level: "info", Output: "file"})
	assert.ErrorContains(t, err, "file path is required")

	_, err = Init(&Config{Level: "info", Output: "syslog"})
	assert.ErrorContains(t, err, "unsupported log output")
}

func TestInit_FileOutput(t *testing.T) {
	restore(t)
	path := filepath.Join(t.TempDir(), "logs", "buckettool.log")
	l, err := Init(&Config{Level: "info", Format: "text", Output: "file", FilePath: path, MaxSize: 1})
	require.NoError(t, err)

	l.Info("written to file")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
