// Package xdg resolves the handful of XDG Base Directory paths PWSW
// needs: the runtime dir for the socket and PID file, the config home
// for config.toml, and the data home for the rolling log file.
package xdg

import (
	"fmt"
	"os"
	"path/filepath"
)

// RuntimeDir returns $XDG_RUNTIME_DIR, falling back to a per-user
// directory under the system temp dir when unset (headless test runs,
// containers without a session manager).
func RuntimeDir() string {
	if d := os.Getenv("XDG_RUNTIME_DIR"); d != "" {
		return d
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("pwsw-%d", os.Getuid()))
}

// ConfigHome returns $XDG_CONFIG_HOME, falling back to ~/.config.
func ConfigHome() string {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return d
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// DataHome returns $XDG_DATA_HOME, falling back to ~/.local/share.
func DataHome() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}

// SocketPath is where the daemon listens for IPC connections.
func SocketPath() string { return filepath.Join(RuntimeDir(), "pwsw.sock") }

// PIDPath is the daemon's PID file, used by the CLI to detect liveness
// before attempting to dial the socket.
func PIDPath() string { return filepath.Join(RuntimeDir(), "pwsw.pid") }

// ConfigPath is the default configuration file location.
func ConfigPath() string { return filepath.Join(ConfigHome(), "pwsw", "config.toml") }

// LogPath is the rolling daemon log file, used when not running
// --foreground.
func LogPath() string { return filepath.Join(DataHome(), "pwsw", "daemon.log") }
