// Package config loads server settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvLogLevel    = "IMAGE_STRIP_LOG_LEVEL"
	EnvLogFile     = "IMAGE_STRIP_LOG_FILE"
	EnvOutputDir   = "IMAGE_STRIP_OUTPUT_DIR"
	EnvFillColor   = "IMAGE_STRIP_FILL_COLOR"
	EnvJPEGQuality = "IMAGE_STRIP_JPEG_QUALITY"
	EnvWorkers     = "IMAGE_STRIP_WORKERS"
)

// Config holds all server settings.
type Config struct {
	Log     LogConfig
	Compose ComposeConfig
}

// LogConfig controls where and how verbosely the server logs.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string
	// File enables a rotating log file in addition to stderr when set.
	File string
}

// ComposeConfig holds the defaults used when stitching and saving strips.
type ComposeConfig struct {
	// OutputDir receives composites saved under a relative or empty name.
	OutputDir string
	// FillColor paints the area right of narrow images: a hex colour or
	// "transparent".
	FillColor string
	// JPEGQuality applies to .jpg and .jpeg outputs.
	JPEGQuality int
	// Workers bounds how many images are cropped at once.
	Workers int
}

// Load reads the configuration. A missing .env file is not an error; the
// boolean result reports whether one was found.
func Load() (*Config, bool) {
	found := godotenv.Load() == nil

	cfg := &Config{
		Log: LogConfig{
			Level: strings.ToLower(getEnv(EnvLogLevel, "info")),
			File:  getEnv(EnvLogFile, ""),
		},
		Compose: ComposeConfig{
			OutputDir:   getEnv(EnvOutputDir, os.TempDir()),
			FillColor:   getEnv(EnvFillColor, "transparent"),
			JPEGQuality: getEnvAsInt(EnvJPEGQuality, 90),
			Workers:     getEnvAsInt(EnvWorkers, runtime.NumCPU()),
		},
	}

	return cfg, found
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal > 0 {
			return intVal
		}
	}
	return defaultVal
}
