package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	cerrors "github.com/56quarters/cadence-crater/internal/foundation/errors"
)

const (
	// EnvDestination names the staging directory when neither flag nor config does.
	EnvDestination = "CRATER_DEST"
	// EnvLogLevel overrides the log level (debug, info, warn, error).
	EnvLogLevel = "CRATER_LOG_LEVEL"
)

// envFiles are tried in order. Variables already set are never overridden,
// so earlier files win.
var envFiles = []string{".env.local", ".env"}

// LoadEnvFiles loads .env.local and .env from the working directory when
// present and returns the files that were loaded.
func LoadEnvFiles() ([]string, error) {
	var loaded []string
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return loaded, cerrors.WrapError(err, cerrors.CategoryConfig, "failed to load env file").
				WithPath(name).Fatal().Build()
		}
		loaded = append(loaded, name)
	}
	return loaded, nil
}

// ResolveDestination picks the staging directory: explicit flag, then the
// config file, then CRATER_DEST, then the system temp directory.
func ResolveDestination(flag string, cfg *Config) string {
	if flag != "" {
		return flag
	}
	if cfg != nil && cfg.Destination != "" {
		return cfg.Destination
	}
	if env := os.Getenv(EnvDestination); env != "" {
		return env
	}
	return os.TempDir()
}

// PrepareDestination creates dir if needed and returns its canonical path.
func PrepareDestination(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", cerrors.WriteFailed(dir, "mkdir", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", cerrors.PathResolutionFailed(dir, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", cerrors.PathResolutionFailed(abs, err)
	}
	return resolved, nil
}

// LogLevelFromEnv returns the level named by CRATER_LOG_LEVEL. The second
// result is false when the variable is unset or not a known level.
func LogLevelFromEnv() (slog.Level, bool) {
	return ParseLogLevel(os.Getenv(EnvLogLevel))
}

// ParseLogLevel maps debug, info, warn or warning, and error to a level.
func ParseLogLevel(raw string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
