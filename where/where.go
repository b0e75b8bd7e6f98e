// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/reelmark-cli/reelmark/constant"
	"github.com/reelmark-cli/reelmark/filesystem"
	"github.com/reelmark-cli/reelmark/util"
	"github.com/samber/lo"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "REELMARK_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// The path can be overridden through the REELMARK_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Reelmark))
}

// Cache resolves the absolute path to the application's persistent cache directory.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Reelmark))
}

// Logs resolves the absolute path to the directory used for application diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// History resolves the path to the file-backed watch progress registry.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// HistoryDB resolves the path to the SQLite watch progress database.
func HistoryDB() string {
	return filepath.Join(Config(), "history.sqlite")
}

// Downloads resolves the directory the download manager writes its per-course indexes to.
func Downloads() string {
	return ensureDir(filepath.Join(Config(), "downloads"))
}

// DownloadIndex resolves the download index of a single course.
func DownloadIndex(courseID string) string {
	return filepath.Join(Downloads(), util.SanitizeFilename(courseID)+".json")
}
