package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/toolpilot/internal/config"
)

func settingsConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.SettingsPath = filepath.Join(t.TempDir(), "toolpilot.yml")
	return cfg
}

func TestConfigDirs(t *testing.T) {
	cfg := settingsConfig(t)
	root := NewRootCmd(BuildInfo{}, cfg, nil)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"config", "dirs"})
	require.NoError(t, root.Execute())
	require.Equal(t, filepath.Dir(cfg.SettingsPath)+"\n", buf.String())
}

func TestConfigReset(t *testing.T) {
	cfg := settingsConfig(t)
	require.NoError(t, os.WriteFile(cfg.SettingsPath, []byte("default-model: broken: ["), 0o600))

	var buf bytes.Buffer
	require.NoError(t, resetSettings(&buf, cfg.SettingsPath))

	old, err := os.ReadFile(cfg.SettingsPath + ".bak")
	require.NoError(t, err)
	require.Equal(t, "default-model: broken: [", string(old))

	fresh, err := os.ReadFile(cfg.SettingsPath)
	require.NoError(t, err)
	require.Contains(t, string(fresh), "qwen2.5-coder:7b")

	require.Contains(t, buf.String(), cfg.SettingsPath+".bak")
}

func TestConfigResetWithoutFile(t *testing.T) {
	cfg := settingsConfig(t)

	var buf bytes.Buffer
	require.NoError(t, resetSettings(&buf, cfg.SettingsPath))
	require.FileExists(t, cfg.SettingsPath)
	require.NoFileExists(t, cfg.SettingsPath+".bak")
	require.NotContains(t, buf.String(), ".bak")
}
