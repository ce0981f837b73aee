package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/renameio/v2"

	"github.com/pwsw/pwsw/verbose"
)

const reloadDebounce = 300 * time.Millisecond

// Supervisor owns the in-memory configuration, applies hot reloads
// atomically, and debounces file-watch events filtered to the
// configured file path.
type Supervisor struct {
	path   string
	loader *Loader
	logger *verbose.Logger

	current atomic.Pointer[Compiled]

	reloadMu sync.Mutex
	watcher  *fsnotify.Watcher

	listenersMu sync.Mutex
	listeners   []chan<- *Compiled
}

// NewSupervisor loads path once (failing startup on invalid
// configuration, per §7 ConfigInvalid) and returns a Supervisor ready
// to watch it.
func NewSupervisor(path string, logger *verbose.Logger) (*Supervisor, error) {
	loader := NewLoader(logger)
	cfg, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	s := &Supervisor{path: path, loader: loader, logger: logger}
	s.current.Store(cfg)
	return s, nil
}

// Current returns the currently active configuration.
func (s *Supervisor) Current() *Compiled {
	return s.current.Load()
}

// RegisterListener subscribes ch to every successful reload. Sends are
// non-blocking: a full channel drops the notification rather than
// stalling the watch loop.
func (s *Supervisor) RegisterListener(ch chan<- *Compiled) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, ch)
}

func (s *Supervisor) notify(cfg *Compiled) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	for _, ch := range s.listeners {
		select {
		case ch <- cfg:
		default:
			s.logger.Warnf("config: reload listener channel full, dropping notification")
		}
	}
}

// Reload re-parses and re-validates the config file, swapping it in
// atomically on success. A reload that fails validation is discarded;
// the previous configuration, rule table, and engine state remain
// entirely unchanged.
func (s *Supervisor) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	s.logger.Infof("config: reloading %s", s.path)

	cfg, err := s.loader.LoadFile(s.path)
	if err != nil {
		s.logger.Errorf("config: reload failed, keeping previous configuration: %v", err)
		return err
	}

	s.current.Store(cfg)
	s.notify(cfg)
	s.logger.Infof("config: reload succeeded")
	return nil
}

// StartWatching watches the config file's directory (required because
// many editors rename-into-place rather than writing in place) but
// only reacts to events whose path is the configured file, debounced
// by reloadDebounce so a burst of editor events causes exactly one
// reload.
func (s *Supervisor) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	file := filepath.Base(s.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("config: watch dir %s: %w", dir, err)
	}
	s.watcher = watcher

	go s.watchLoop(ctx, file)
	return nil
}

func (s *Supervisor) watchLoop(ctx context.Context, file string) {
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			_ = s.watcher.Close()
			if debounce != nil {
				debounce.Stop()
			}
			return

		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				if err := s.Reload(ctx); err != nil {
					s.logger.Errorf("config: automatic reload failed: %v", err)
				}
			})

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Errorf("config: watcher error: %v", err)
		}
	}
}

// Stop stops the file watcher, if running.
func (s *Supervisor) Stop() {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
}

// Save atomically writes raw TOML bytes to the config path: a sibling
// temp file in the same directory, mode 0600, renamed over the target.
// A process killed mid-save leaves either the prior file or the new
// one, never a truncated one.
func (s *Supervisor) Save(data []byte) error {
	pending, err := renameio.NewPendingFile(s.path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("config: create pending file: %w", err)
	}
	defer pending.Cleanup()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("config: write pending file: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("config: atomic replace: %w", err)
	}
	return nil
}
