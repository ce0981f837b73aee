// Package daemon wires the Config Supervisor, Audio Bridge, Compositor
// Client, Switching Engine, and IPC Server into a runnable process.
// Both cmd/pwswd and the `pwsw daemon` subcommand call Run.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/pwsw/pwsw/internal/audio"
	"github.com/pwsw/pwsw/internal/compositor"
	"github.com/pwsw/pwsw/internal/config"
	"github.com/pwsw/pwsw/internal/engine"
	"github.com/pwsw/pwsw/internal/ipc"
	"github.com/pwsw/pwsw/internal/window"
	"github.com/pwsw/pwsw/internal/xdg"
	"github.com/pwsw/pwsw/verbose"
)

// Options configures a daemon run.
type Options struct {
	Foreground bool
	ConfigPath string // defaults to xdg.ConfigPath()
	SocketPath string // defaults to xdg.SocketPath()
	PIDPath    string // defaults to xdg.PIDPath()
	LogPath    string // defaults to xdg.LogPath()
}

func (o Options) withDefaults() Options {
	if o.ConfigPath == "" {
		o.ConfigPath = xdg.ConfigPath()
	}
	if o.SocketPath == "" {
		o.SocketPath = xdg.SocketPath()
	}
	if o.PIDPath == "" {
		o.PIDPath = xdg.PIDPath()
	}
	if o.LogPath == "" {
		o.LogPath = xdg.LogPath()
	}
	return o
}

// Run starts the daemon and blocks until it is asked to shut down,
// either by SIGTERM/SIGINT or an IPC shutdown request.
func Run(opts Options) error {
	opts = opts.withDefaults()

	logger, closeLog, err := buildLogger(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Infof("daemon: starting, config=%s socket=%s", opts.ConfigPath, opts.SocketPath)

	sup, err := config.NewSupervisor(opts.ConfigPath, logger)
	if err != nil {
		return fmt.Errorf("daemon: loading config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sup.StartWatching(ctx); err != nil {
		logger.Warnf("daemon: config watch disabled: %v", err)
	}
	defer sup.Stop()

	bridge, err := audio.NewWpctlBridge(ctx, logger)
	if err != nil {
		return fmt.Errorf("daemon: audio bridge: %w", err)
	}

	delayMS, maxRetries := switchTuning()
	eng := engine.New(sup.Current(), bridge, logger, delayMS, maxRetries)

	if sinks, err := bridge.ListSinks(ctx); err != nil {
		logger.Warnf("daemon: initial sink enumeration failed: %v", err)
	} else {
		eng.ReplaceSinks(sinks)
	}

	reloads := make(chan *config.Compiled, 4)
	sup.RegisterListener(reloads)
	go forwardReloads(ctx, reloads, eng)

	go eng.Run(ctx)

	events := make(chan window.Event, 64)
	compClient := compositor.NewSwayClient(logger)
	go forwardCompositorEvents(ctx, compClient, events, eng, logger)

	srv, err := ipc.NewServer(opts.SocketPath, eng, logger)
	if err != nil {
		return fmt.Errorf("daemon: ipc server: %w", err)
	}
	srv.OnShutdownRequest = cancel

	if err := writePIDFile(opts.PIDPath); err != nil {
		return fmt.Errorf("daemon: writing pid file: %w", err)
	}
	defer removePIDFile(logger, opts.PIDPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)
	go func() {
		sig := <-sigCh
		logger.Infof("daemon: received signal %v, shutting down", sig)
		cancel()
	}()

	logger.Infof("daemon: ready")
	if err := srv.Serve(ctx); err != nil {
		return fmt.Errorf("daemon: ipc server stopped: %w", err)
	}
	logger.Infof("daemon: stopped")
	return nil
}

func buildLogger(opts Options) (*verbose.Logger, func(), error) {
	if opts.Foreground {
		return verbose.DefaultLogger(), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.LogPath), 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(opts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := verbose.NewLogger(verbose.LogLevelInfo, true, f)
	return logger, func() { f.Close() }, nil
}

// switchTuning reads PROFILE_SWITCH_DELAY_MS and PROFILE_SWITCH_MAX_RETRIES
// per §6, falling back to the stated defaults on absence or malformed
// values.
func switchTuning() (delayMS, maxRetries int) {
	delayMS = 150
	maxRetries = 5
	if v := os.Getenv("PROFILE_SWITCH_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			delayMS = n
		}
	}
	if v := os.Getenv("PROFILE_SWITCH_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxRetries = n
		}
	}
	return delayMS, maxRetries
}

func forwardReloads(ctx context.Context, reloads <-chan *config.Compiled, eng *engine.Engine) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg := <-reloads:
			eng.ApplyConfig(cfg)
		}
	}
}

// forwardCompositorEvents runs the compositor client, reconnecting with a
// short backoff if the connection drops (the compositor may restart
// independently of the daemon).
func forwardCompositorEvents(ctx context.Context, client compositor.EventSource, events chan window.Event, eng *engine.Engine, logger *verbose.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		runCtx, cancel := context.WithCancel(ctx)
		go func() {
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return
					}
					eng.SubmitWindowEvent(ev)
				case <-runCtx.Done():
					return
				}
			}
		}()

		err := client.Run(runCtx, events)
		cancel()
		if ctx.Err() != nil {
			return
		}
		logger.Warnf("daemon: compositor client stopped: %v; reconnecting in 2s", err)
		events = make(chan window.Event, 64)

		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}
