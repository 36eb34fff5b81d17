package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultsOnFirstRun(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)

	_, err = os.Stat(filepath.Join(dir, "config"))
	require.NoError(t, err)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()

	cfg := Defaults()
	cfg.UpdateMs = 500
	cfg.ProcSorting = SortMemory
	cfg.ProcReversed = true
	cfg.CustomCPUName = "Ryzen 9"

	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestRenderContainsEveryKeySorted(t *testing.T) {
	out := Render(Defaults())
	assert.Contains(t, out, `color_theme="Default"`)
	assert.Contains(t, out, `update_ms="2000"`)
	assert.Less(t, strings.Index(out, "background_update"), strings.Index(out, "check_temp"))
}

func TestLoadIgnoresOutOfRangeUpdateMs(t *testing.T) {
	dir := t.TempDir()
	content := "update_ms=\"50\"\nversion=\"" + strconv.Itoa(ConfigVersion) + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Defaults().UpdateMs, cfg.UpdateMs)
}

func TestLoadRegeneratesOnVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	content := "version=\"0\"\ncustom_cpu_name=\"Mine\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config"), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ConfigVersion, cfg.Version)
	assert.Equal(t, "Mine", cfg.CustomCPUName)

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}
