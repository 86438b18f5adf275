// Package where resolves the per-platform paths of configuration, cache, logs and state files.
package where

import (
	"os"
	"path/filepath"

	"github.com/hlsplay/hlsplay/constant"
	"github.com/hlsplay/hlsplay/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "HLSPLAY_CONFIG_PATH"

func mkdir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config is the configuration directory (XDG_CONFIG_HOME or the platform equivalent).
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return mkdir(custom)
	}

	return mkdir(filepath.Join(lo.Must(os.UserConfigDir()), constant.App))
}

// Cache is the cache directory, falling back to ./cache when the platform has none.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return mkdir(filepath.Join(base, constant.App))
}

// Logs holds one log file per day.
func Logs() string {
	return mkdir(filepath.Join(Config(), "logs"))
}

// History is the played sources file.
func History() string {
	return filepath.Join(Config(), "history.json")
}

// Queries is the source suggestion registry.
func Queries() string {
	return filepath.Join(Cache(), "queries.json")
}

// Temp is a scratch directory for IPC sockets.
func Temp() string {
	return mkdir(filepath.Join(os.TempDir(), constant.App))
}
