package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// writePIDFile records the current process's PID at path, creating its
// parent directory if necessary.
func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating pid file directory: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

// removePIDFile removes the PID file on clean shutdown; a missing file
// is not an error.
func removePIDFile(logger interface{ Warnf(string, ...any) }, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warnf("daemon: removing pid file: %v", err)
	}
}
