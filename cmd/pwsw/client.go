package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pwsw/pwsw/internal/ipc"
	"github.com/pwsw/pwsw/internal/xdg"
)

// dialDaemon connects to the running daemon, short-circuiting with
// exitCode 3 when the PID file is absent or the socket can't be dialed
// rather than hanging on a dead socket.
func dialDaemon() (*ipc.Client, error) {
	if _, err := os.Stat(xdg.PIDPath()); err != nil {
		exitCode = 3
		return nil, fmt.Errorf("pwsw: daemon is not running (no pid file at %s)", xdg.PIDPath())
	}

	client, err := ipc.Dial(xdg.SocketPath(), 2*time.Second)
	if err != nil {
		exitCode = 3
		return nil, fmt.Errorf("pwsw: daemon is not running: %w", err)
	}
	return client, nil
}

// call dials, sends req, and closes the connection, translating a
// daemon-side error response into a Go error with exitCode 1.
func call(req ipc.Request) (ipc.Response, error) {
	client, err := dialDaemon()
	if err != nil {
		return ipc.Response{}, err
	}
	defer client.Close()

	resp, err := client.Call(req)
	if err != nil {
		exitCode = 1
		return ipc.Response{}, fmt.Errorf("pwsw: %w", err)
	}
	if !resp.OK {
		exitCode = 1
		return resp, fmt.Errorf("pwsw: %s: %s", resp.ErrorKind, resp.Error)
	}
	return resp, nil
}
