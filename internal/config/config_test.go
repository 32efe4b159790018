package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test and
// restores it afterwards (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvLogLevel, EnvLogFile, EnvOutputDir, EnvFillColor, EnvJPEGQuality, EnvWorkers} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no stray .env
	clearEnv(t)

	cfg, found := Load()

	assert.False(t, found)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
	assert.Equal(t, os.TempDir(), cfg.Compose.OutputDir)
	assert.Equal(t, "transparent", cfg.Compose.FillColor)
	assert.Equal(t, 90, cfg.Compose.JPEGQuality)
	assert.Equal(t, runtime.NumCPU(), cfg.Compose.Workers)
}

func TestLoad_Environment(t *testing.T) {
	chdir(t, t.TempDir()) // no stray .env
	clearEnv(t)
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvOutputDir, "/srv/strips")
	t.Setenv(EnvFillColor, "#ffffff")
	t.Setenv(EnvJPEGQuality, "70")
	t.Setenv(EnvWorkers, "3")

	cfg, _ := Load()

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/srv/strips", cfg.Compose.OutputDir)
	assert.Equal(t, "#ffffff", cfg.Compose.FillColor)
	assert.Equal(t, 70, cfg.Compose.JPEGQuality)
	assert.Equal(t, 3, cfg.Compose.Workers)
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	chdir(t, t.TempDir()) // no stray .env
	clearEnv(t)
	t.Setenv(EnvJPEGQuality, "high")
	t.Setenv(EnvWorkers, "-2")

	cfg, _ := Load()

	assert.Equal(t, 90, cfg.Compose.JPEGQuality)
	assert.Equal(t, runtime.NumCPU(), cfg.Compose.Workers)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("IMAGE_STRIP_FILL_COLOR=#000000\nIMAGE_STRIP_WORKERS=5\n"), 0o644))
	chdir(t, dir)
	clearEnv(t)
	// godotenv never overrides variables that are already set, even to ""
	os.Unsetenv(EnvFillColor)
	os.Unsetenv(EnvWorkers)
	t.Cleanup(func() {
		os.Unsetenv(EnvFillColor)
		os.Unsetenv(EnvWorkers)
	})

	cfg, found := Load()

	assert.True(t, found)
	assert.Equal(t, "#000000", cfg.Compose.FillColor)
	assert.Equal(t, 5, cfg.Compose.Workers)
}
