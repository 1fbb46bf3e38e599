package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func initFile(t *testing.T, level string, cfg FileConfig) {
	t.Helper()
	require.NoError(t, Init(Options{Level: level, File: cfg}))
	t.Cleanup(func() { Use(nil) })
}

func TestFileRotation(t *testing.T) {
	dir := t.TempDir()
	initFile(t, "debug", FileConfig{Path: filepath.Join(dir, "view.log"), MaxSizeMB: 1, MaxBackups: 2})

	// lumberjack's smallest limit is 1MB; write a bit over that.
	payload := strings.Repeat("x", 200)
	for i := range 7000 {
		Log.Info("synced frame", zap.Int("frame", i), zap.String("pad", payload))
	}
	Sync()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var rotated []string
	for _, e := range entries {
		if e.Name() != "view.log" && strings.HasPrefix(e.Name(), "view-") {
			rotated = append(rotated, e.Name())
		}
	}
	assert.FileExists(t, filepath.Join(dir, "view.log"))
	assert.NotEmpty(t, rotated, "expected a rotated backup next to view.log")
}

func TestLevels(t *testing.T) {
	all := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	tests := []struct {
		level string
		first int
	}{
		{"error", 3},
		{"warn", 2},
		{"info", 1},
		{"debug", 0},
		{"", 1},
		{"loud", 1},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "levels.log")
			initFile(t, tt.level, FileConfig{Path: path, MaxSizeMB: 10})

			Log.Debug("d")
			Info("i")
			Warn("w")
			Log.Error("e")
			Sync()

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			for i, name := range all {
				if i < tt.first {
					assert.NotContains(t, string(data), name)
				} else {
					assert.Contains(t, string(data), name)
				}
			}
		})
	}
}

func TestDefaultFileConfig(t *testing.T) {
	assert.Equal(t, FileConfig{
		Path:       "/tmp/physview.log",
		MaxSizeMB:  20,
		MaxBackups: 3,
		MaxAgeDays: 14,
		Compress:   true,
	}, DefaultFileConfig("/tmp/physview.log"))
}

func TestConsoleWriter(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, Init(Options{Level: "warn", Console: true, ConsoleWriter: &buf}))
	defer Use(nil)

	Info("hidden")
	Warn("shown")
	Sync()

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNamedTagsComponent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Use(zap.New(core))
	defer Use(nil)

	Named("scenesync").Info("built scene", zap.Int("bodies", 3))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "scenesync", entry.LoggerName)
	assert.Equal(t, int64(3), entry.ContextMap()["bodies"])
}

func TestUseNilFallsBackToNop(t *testing.T) {
	Use(nil)
	assert.NotPanics(t, func() {
		Info("dropped")
		Sync()
	})
}
