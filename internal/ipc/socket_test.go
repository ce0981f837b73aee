package ipc

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/pwsw/pwsw/internal/pwerr"
)

func TestListenRefusesRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pwsw.sock")
	if err := os.WriteFile(path, []byte("not a socket"), 0o600); err != nil {
		t.Fatalf("writing regular file: %v", err)
	}

	_, err := listen(path)
	if err == nil {
		t.Fatalf("expected error listening where a regular file already exists")
	}
	if pwerr.KindOf(err) != pwerr.KindStaleSocketUnsafe {
		t.Errorf("KindOf(err) = %v, want StaleSocketUnsafe", pwerr.KindOf(err))
	}

	if _, statErr := os.Stat(path); statErr != nil {
		t.Errorf("regular file was removed despite being unsafe to clean up: %v", statErr)
	}
}

func TestListenReplacesOwnStaleSocket(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pwsw.sock")

	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		t.Fatalf("ResolveUnixAddr() error = %v", err)
	}
	l1, err := net.ListenUnix("unix", addr)
	if err != nil {
		t.Fatalf("first ListenUnix() error = %v", err)
	}
	// Simulate a stale socket left behind by a crashed daemon: leave the
	// socket file on disk across Close, the way a killed process would.
	l1.SetUnlinkOnClose(false)
	if err := l1.Close(); err != nil {
		t.Fatalf("closing first listener: %v", err)
	}

	l2, err := listen(path)
	if err != nil {
		t.Fatalf("second listen() over a stale socket should succeed, got error = %v", err)
	}
	defer l2.Close()
}

func TestListenCreatesFreshSocket(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pwsw.sock")

	l, err := listen(path)
	if err != nil {
		t.Fatalf("listen() error = %v", err)
	}
	defer l.Close()

	info, err := os.Lstat(path)
	if err != nil {
		t.Fatalf("Lstat() error = %v", err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		t.Errorf("created path is not a socket: mode = %v", info.Mode())
	}
}
