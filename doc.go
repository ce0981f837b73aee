// Package pwsw is the module root. It holds only the release version
// (Version and String); the window, sink, and rule types and the
// subsystems that own and mutate them live in internal/.
//
// # Overview
//
// PWSW watches which application window has compositor focus and switches
// the PipeWire default audio sink to match a user-declared rule table. The
// switching engine (internal/engine) is the core: it consumes window
// events from a compositor client (internal/compositor), resolves the
// winning rule against the live window set (internal/window,
// internal/rule), and drives sink switches through an audio bridge
// (internal/audio), serialized per physical device. A companion CLI
// (cmd/pwsw) talks to the daemon (cmd/pwswd) over a length-prefixed JSON
// socket (internal/ipc); configuration is TOML, hot-reloaded from disk
// (internal/config).
//
// # Thread Safety
//
// Each internal package documents its own concurrency contract. In
// general: registries are owned by a single engine goroutine and are not
// safe for concurrent mutation from outside it; the engine itself
// serializes all mutating operations onto one logical queue.
package pwsw
