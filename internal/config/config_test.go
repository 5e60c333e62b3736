package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spotter", "config.json")
	m := NewManager()

	require.NoError(t, m.LoadFrom(path))
	assert.FileExists(t, path)
	assert.Equal(t, path, m.Path())
	assert.NoError(t, m.ParseError())

	cfg := m.Get()
	assert.Equal(t, *DefaultConfig(), cfg)
	assert.Equal(t, 800, cfg.Preview.Width)
	assert.Equal(t, 600, cfg.Preview.Height)
	assert.Equal(t, "http", cfg.Detector.Engine)
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"detector": {"engine": "command", "command": "yolo", "args": ["--tiny"]}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	m := NewManager()
	require.NoError(t, m.LoadFrom(path))

	cfg := m.Get()
	assert.Equal(t, "command", cfg.Detector.Engine)
	assert.Equal(t, "yolo", cfg.Detector.Command)
	assert.Equal(t, []string{"--tiny"}, cfg.Detector.Args)
	assert.Equal(t, 800, cfg.Preview.Width)
	assert.Equal(t, DefaultHotkeys(), cfg.Hotkeys)
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	m := NewManager()
	require.NoError(t, m.LoadFrom(path))
	assert.Error(t, m.ParseError())
	assert.Equal(t, *DefaultConfig(), m.Get())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	m := NewManager()
	require.NoError(t, m.LoadFrom(path))
	require.NoError(t, m.SetTheme("dark"))
	assert.True(t, m.IsDarkMode())

	reloaded := NewManager()
	require.NoError(t, reloaded.LoadFrom(path))
	assert.True(t, reloaded.IsDarkMode())
}

func TestGetReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"detector": {"args": ["a"]}}`), 0o644))
	m := NewManager()
	require.NoError(t, m.LoadFrom(path))

	cfg := m.Get()
	cfg.Detector.Args[0] = "changed"
	assert.Equal(t, []string{"a"}, m.Get().Detector.Args)
}

func TestDetectorTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), DetectorConfig{}.Timeout())
	assert.Equal(t, time.Duration(0), DetectorConfig{TimeoutSeconds: -1}.Timeout())
	assert.Equal(t, 90*time.Second, DetectorConfig{TimeoutSeconds: 90}.Timeout())
}
