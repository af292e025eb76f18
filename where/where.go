// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/storyplay/storyplay/constant"
	"github.com/storyplay/storyplay/filesystem"
	"github.com/storyplay/storyplay/key"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "STORYPLAY_CONFIG_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// The path can be overridden with the STORYPLAY_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Storyplay))
}

// Cache resolves the absolute path to the application's persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Storyplay))
}

// Logs resolves the directory used for diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Library resolves the directory narrative manifests are read from.
// A configured library.path wins over the default location.
func Library() string {
	if custom := viper.GetString(key.LibraryPath); custom != "" {
		return ensureDir(custom)
	}
	return ensureDir(filepath.Join(Config(), "library"))
}

// History resolves the file resume snapshots are persisted to.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Picks resolves the file that counts how often each narrative was chosen.
func Picks() string {
	return filepath.Join(Cache(), "picks.json")
}

// Durations resolves the file decoder-reported audio durations are cached in.
func Durations() string {
	return filepath.Join(Cache(), "durations.json")
}

// Temp resolves a volatile directory for transient artifacts such as player IPC sockets.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Storyplay))
}
