package xdg

import (
	"path/filepath"
	"testing"
)

func TestSocketPathHonorsRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	if got, want := SocketPath(), filepath.Join("/run/user/1000", "pwsw.sock"); got != want {
		t.Errorf("SocketPath() = %q, want %q", got, want)
	}
}

func TestConfigPathHonorsConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/home/u/.config")
	if got, want := ConfigPath(), filepath.Join("/home/u/.config", "pwsw", "config.toml"); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
}

func TestRuntimeDirFallsBackWhenUnset(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	if got := RuntimeDir(); got == "" {
		t.Errorf("RuntimeDir() = %q, want a non-empty fallback", got)
	}
}
