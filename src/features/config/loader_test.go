package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	manager, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, manager.Get().Tagging.Version)
	assert.Equal(t, "TIT2", manager.Get().Tagging.Rewrite.Frame)
	assert.Equal(t, "utf-8", manager.Get().Tagging.Rewrite.Charset)
	assert.FileExists(t, path)

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, manager.Get(), again.Get())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
tagging:
  version: 3
journal:
  path: `+filepath.Join(dir, "db", "journal.db")+`
`)

	manager, err := Load(path)
	require.NoError(t, err)
	cfg := manager.Get()
	assert.Equal(t, 3, cfg.Tagging.Version)
	assert.Equal(t, "utf-8", cfg.Tagging.Rewrite.Charset)
	assert.Equal(t, uint32(3535), cfg.Server.Port)
	assert.DirExists(t, filepath.Join(dir, "db"))
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "version", body: "tagging:\n  version: 5\n"},
		{name: "frame", body: "tagging:\n  rewrite:\n    frame: tit\n"},
		{name: "log level", body: "logger:\n  level: loud\n"},
		{name: "watch without path", body: "watch:\n  enabled: true\n  path: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorContains(t, err, "config validation failed")
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("ID3SHIM_CHARSET", "windows-1251")
	t.Setenv("ID3SHIM_JOURNAL_PATH", journal)
	t.Setenv("ID3SHIM_VERSION", "3")
	t.Setenv("ID3SHIM_SERVER_ROOT", "/srv/music")

	manager, err := Load(writeConfig(t, "logger:\n  level: debug\n"))
	require.NoError(t, err)
	cfg := manager.Get()
	assert.Equal(t, "windows-1251", cfg.Tagging.Rewrite.Charset)
	assert.Equal(t, journal, cfg.Journal.Path)
	assert.Equal(t, 3, cfg.Tagging.Version)
	assert.Equal(t, "/srv/music", cfg.Server.Root)
	assert.Equal(t, "debug", cfg.Logger.Level)

	t.Setenv("ID3SHIM_VERSION", "four")
	_, err = Load(writeConfig(t, ""))
	assert.Error(t, err)
}

func TestManager_SaveAndYAML(t *testing.T) {
	manager := NewManager(createDefaultConfig())
	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, manager.Save(path))

	loaded, err := decode(path)
	require.NoError(t, err)
	assert.Equal(t, manager.Get(), loaded)
	assert.Contains(t, manager.GetYAML(), "charset: utf-8")
	assert.Contains(t, manager.GetJSON(), `"Version":4`)
}
