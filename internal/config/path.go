// Package config resolves application settings from viper and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDatabasePath returns the SQLite database location under
// $XDG_DATA_HOME, falling back to ~/.local/share.
func DefaultDatabasePath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", ".local/share"), "budgets", "budgets.db")
}

// DefaultLogFile returns the log file used while the grid owns the terminal,
// under $XDG_STATE_HOME, falling back to ~/.local/state.
func DefaultLogFile() string {
	return filepath.Join(xdgDir("XDG_STATE_HOME", ".local/state"), "budgets", "budgets.log")
}

// DefaultTokenFile returns where the Google OAuth2 token is cached.
func DefaultTokenFile() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "budgets", "sheets-token.json")
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	return ExpandPath("~/" + fallback)
}
