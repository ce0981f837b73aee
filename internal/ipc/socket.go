package ipc

import (
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/pwsw/pwsw/internal/pwerr"
)

// listen binds a Unix domain socket at path, first verifying that any
// existing path is safe to remove: it must already be a socket, and it
// must be owned by the current effective user. A path that fails
// either check is left untouched and StaleSocketUnsafeError is
// returned, since silently unlinking an unrelated file or another
// user's socket would be a serious foot-gun.
func listen(path string) (net.Listener, error) {
	info, err := os.Lstat(path)
	switch {
	case err == nil:
		if checkErr := checkRemovableSocket(path, info); checkErr != nil {
			return nil, checkErr
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("ipc: removing stale socket %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Nothing to clean up.
	default:
		return nil, fmt.Errorf("ipc: stat %s: %w", path, err)
	}

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		l.Close()
		return nil, fmt.Errorf("ipc: chmod %s: %w", path, err)
	}
	return l, nil
}

// checkRemovableSocket enforces the three safety checks named in §7's
// StaleSocketUnsafe: the path must exist (caller already confirmed
// that), must be a socket, and must be owned by the current EUID.
func checkRemovableSocket(path string, info os.FileInfo) error {
	if info.Mode()&os.ModeSocket == 0 {
		return &pwerr.StaleSocketUnsafeError{
			Path:   path,
			Reason: "path exists and is not a socket; remove it manually once you've confirmed nothing else is using it",
		}
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return &pwerr.StaleSocketUnsafeError{Path: path, Reason: "could not determine socket ownership"}
	}
	if stat.Uid != uint32(os.Geteuid()) {
		return &pwerr.StaleSocketUnsafeError{
			Path:   path,
			Reason: fmt.Sprintf("socket is owned by uid %d, not the current user (uid %d)", stat.Uid, os.Geteuid()),
		}
	}
	return nil
}
