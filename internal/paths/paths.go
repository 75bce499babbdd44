// Package paths resolves configuration and data directory locations.
// Implements: prd006-configuration-directories (R1, R2);
//
//	docs/ARCHITECTURE § Configuration.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative directory names per prd006 R2.
const (
	DefaultConfigDirName = ".helix"
	DefaultDataDirName   = ".helix-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "HELIX_CONFIG_DIR"
	EnvDataDir   = "HELIX_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/helix (fallback ~/.config/helix)
// macOS:   ~/Library/Application Support/helix
// Windows: %APPDATA%/helix
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "helix"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "helix"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "helix"), nil
	}
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/helix (fallback ~/.local/share/helix)
// macOS:   ~/Library/Application Support/helix
// Windows: %APPDATA%/helix
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "helix"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "helix"), nil
	default:
		// macOS and Windows: same as config dir.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "helix"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > HELIX_CONFIG_DIR env > DefaultConfigDir().
//
// If flag is non-empty it wins. Otherwise the HELIX_CONFIG_DIR environment
// variable is checked. If neither is set, the platform default is returned.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > HELIX_DATA_DIR env > DefaultDataDir().
//
// The CWD-relative default ($(CWD)/.helix-db) applies when no override is active.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	// CWD-relative default.
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}
