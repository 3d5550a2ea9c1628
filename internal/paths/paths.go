// Package paths resolves where the grid CLI keeps its configuration and its
// saved-view database.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "grid"

// DefaultDataDirName is created under the working directory when no other
// data directory is configured.
const DefaultDataDirName = ".grid-db"

// ConfigFileName is the viper config file inside the config directory.
const ConfigFileName = "config.yaml"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "GRID_CONFIG_DIR"
	EnvDataDir   = "GRID_DATA_DIR"
)

// platformDir holds platform lookups that tests replace.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the per-user configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/grid (fallback ~/.config/grid)
// Others:  os.UserConfigDir()/grid
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the per-user data directory.
//
// Linux:   $XDG_DATA_HOME/grid (fallback ~/.local/share/grid)
// Others:  os.UserConfigDir()/grid
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// ResolveConfigDir applies flag > GRID_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir applies flag > config data_dir > GRID_DATA_DIR and falls
// back to DefaultDataDirName under the working directory.
func ResolveDataDir(flag, configured string) (string, error) {
	for _, dir := range []string{flag, configured, os.Getenv(EnvDataDir)} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}
