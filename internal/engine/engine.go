// Package engine implements the Switching Engine: the state machine
// that consumes window events and manual IPC commands, recomputes the
// winning rule against the live window set, and drives sink switches
// through the audio bridge with per-device serialization and bounded
// retry.
package engine

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/pwsw/pwsw/internal/audio"
	"github.com/pwsw/pwsw/internal/config"
	"github.com/pwsw/pwsw/internal/pwerr"
	"github.com/pwsw/pwsw/internal/rule"
	"github.com/pwsw/pwsw/internal/sink"
	"github.com/pwsw/pwsw/internal/window"
	"github.com/pwsw/pwsw/verbose"
)

const (
	defaultSwitchDelayMS    = 150
	defaultSwitchMaxRetries = 5
)

// Engine is the single logical owner of the window registry, rule
// table, and sink registry. Mutating operations are serialized onto
// cmdCh and processed one at a time by Run; read-only snapshot methods
// (Status, ListSinks, ListWindows, TestRule) may be called
// concurrently and take a short read lock.
type Engine struct {
	mu sync.RWMutex

	windows   *window.Registry
	sinks     *sink.Registry
	rules     *rule.Table
	settings  config.Settings
	sinkSpecs []config.SinkSpec

	defaultSinkName string
	currentSinkName string

	bridge     audio.Bridge
	logger     *verbose.Logger
	delayMS    int
	maxRetries int

	deviceLocksMu sync.Mutex
	deviceLocks   map[uint32]*sync.Mutex

	cmdCh      chan command
	switchesWG sync.WaitGroup
}

// New constructs an Engine from an already-loaded configuration. The
// sink registry starts empty; callers should enqueue an initial
// ListSinks-driven replacement (via ReplaceSinks) before starting Run.
func New(cfg *config.Compiled, bridge audio.Bridge, logger *verbose.Logger, delayMS, maxRetries int) *Engine {
	if delayMS <= 0 {
		delayMS = defaultSwitchDelayMS
	}
	if maxRetries <= 0 {
		maxRetries = defaultSwitchMaxRetries
	}
	return &Engine{
		windows:         window.New(),
		sinks:           sink.New(),
		rules:           cfg.Rules,
		settings:        cfg.Settings,
		sinkSpecs:       cfg.Sinks,
		defaultSinkName: cfg.DefaultSinkName,
		currentSinkName: cfg.DefaultSinkName,
		bridge:          bridge,
		logger:          logger,
		delayMS:         delayMS,
		maxRetries:      maxRetries,
		deviceLocks:     make(map[uint32]*sync.Mutex),
		cmdCh:           make(chan command, 256),
	}
}

// ReplaceSinks installs a freshly enumerated sink list. Safe to call
// before Run starts, and safe to call concurrently once it has (it
// goes through the command queue).
func (e *Engine) ReplaceSinks(sinks []sink.Sink) {
	e.cmdCh <- replaceSinksCmd{sinks: sinks}
}

// ApplyConfig installs a freshly reloaded configuration at the next
// event boundary.
func (e *Engine) ApplyConfig(cfg *config.Compiled) {
	e.cmdCh <- configReplaceCmd{cfg: cfg}
}

// SubmitWindowEvent enqueues a compositor-observed event.
func (e *Engine) SubmitWindowEvent(ev window.Event) {
	e.cmdCh <- windowEventCmd{ev: ev}
}

// SetSink resolves ref (name, desc, or 1-indexed position) and switches
// to it, applying smart-toggle if configured. It blocks until the
// switch (or no-op) completes.
func (e *Engine) SetSink(ctx context.Context, ref string) (string, error) {
	reply := make(chan result, 1)
	e.cmdCh <- setSinkCmd{ref: ref, reply: reply}
	return awaitResult(ctx, reply)
}

// NextSink cycles forward through the configured sink list, wrapping
// from the current sink's position.
func (e *Engine) NextSink(ctx context.Context) (string, error) {
	reply := make(chan result, 1)
	e.cmdCh <- cycleSinkCmd{delta: 1, reply: reply}
	return awaitResult(ctx, reply)
}

// PrevSink cycles backward through the configured sink list.
func (e *Engine) PrevSink(ctx context.Context) (string, error) {
	reply := make(chan result, 1)
	e.cmdCh <- cycleSinkCmd{delta: -1, reply: reply}
	return awaitResult(ctx, reply)
}

// Shutdown requests an orderly stop: Run drains its already-queued
// commands and returns.
func (e *Engine) Shutdown(ctx context.Context) error {
	reply := make(chan result, 1)
	e.cmdCh <- shutdownCmd{reply: reply}
	_, err := awaitResult(ctx, reply)
	return err
}

func awaitResult(ctx context.Context, reply chan result) (string, error) {
	select {
	case r := <-reply:
		return r.sinkName, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Run processes commands one at a time until ctx is cancelled or a
// Shutdown command drains the queue. It must run on its own goroutine.
//
// Dequeuing a command only ever does in-memory work (apply an event,
// resolve a sink reference, compute the next command) before returning;
// any blocking audio-bridge call a command triggers is handed off to its
// own goroutine (see dispatchSwitch) so that a profile switch in flight
// for one device never blocks the loop from dequeuing a command for a
// different device, or a read-only IPC query, which bypasses the queue
// entirely via the RWMutex-guarded snapshot methods below.
func (e *Engine) Run(ctx context.Context) {
	defer e.switchesWG.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-e.cmdCh:
			if e.process(ctx, cmd) {
				e.drain()
				return
			}
		}
	}
}

// drain processes any commands already queued at the time Shutdown was
// handled, per §5's "drains the queue briefly" before the process
// exits; it does not block waiting for new work to arrive.
func (e *Engine) drain() {
	for {
		select {
		case cmd := <-e.cmdCh:
			e.process(context.Background(), cmd)
		default:
			return
		}
	}
}

// process handles one command and reports whether Run should stop.
func (e *Engine) process(ctx context.Context, cmd command) (stop bool) {
	switch c := cmd.(type) {
	case windowEventCmd:
		e.handleWindowEvent(ctx, c.ev)
	case replaceSinksCmd:
		e.mu.Lock()
		e.sinks.Replace(c.sinks)
		e.mu.Unlock()
	case configReplaceCmd:
		e.mu.Lock()
		e.rules = c.cfg.Rules
		e.settings = c.cfg.Settings
		e.sinkSpecs = c.cfg.Sinks
		e.defaultSinkName = c.cfg.DefaultSinkName
		e.mu.Unlock()
	case setSinkCmd:
		e.handleSetSink(ctx, c.ref, c.reply)
	case cycleSinkCmd:
		e.handleCycleSink(ctx, c.delta, c.reply)
	case shutdownCmd:
		c.reply <- result{}
		return true
	}
	return false
}

// handleWindowEvent implements §4.3's per-event algorithm.
func (e *Engine) handleWindowEvent(ctx context.Context, ev window.Event) {
	e.mu.Lock()
	e.windows.Apply(ev)
	ref, matched := e.computeCandidateLocked()
	if !matched {
		ref = e.defaultSinkName
	}
	target, err := e.sinks.Resolve(ref)
	e.mu.Unlock()

	if err != nil {
		e.logger.Warnf("engine: sink resolution failed for rule target %q: %v", ref, err)
		return
	}

	e.dispatchSwitch(ctx, target.Name, nil)
}

// computeCandidateLocked must be called with e.mu held. It returns the
// winning rule's sink_ref and whether any window matched.
func (e *Engine) computeCandidateLocked() (sinkRef string, matched bool) {
	if e.settings.MatchByIndex {
		bestRuleIdx := -1
		var bestFocusedAt int64
		found := false
		for _, w := range e.windows.All() {
			idx, ok := e.rules.Evaluate(rule.Window{AppID: w.AppID, Title: w.Title})
			if !ok {
				continue
			}
			if !found || idx < bestRuleIdx || (idx == bestRuleIdx && w.FocusedAt > bestFocusedAt) {
				bestRuleIdx = idx
				bestFocusedAt = w.FocusedAt
				found = true
			}
		}
		if !found {
			return "", false
		}
		return e.rules.At(bestRuleIdx).SinkRef, true
	}

	for _, w := range e.windows.InFocusOrder() {
		idx, ok := e.rules.Evaluate(rule.Window{AppID: w.AppID, Title: w.Title})
		if ok {
			return e.rules.At(idx).SinkRef, true
		}
	}
	return "", false
}

func (e *Engine) handleSetSink(ctx context.Context, ref string, reply chan result) {
	e.mu.RLock()
	target, err := e.sinks.Resolve(ref)
	current := e.currentSinkName
	smartToggle := e.settings.SetSmartToggle
	defaultName := e.defaultSinkName
	e.mu.RUnlock()

	if err != nil {
		reply <- result{err: err}
		return
	}

	final := target.Name
	if smartToggle && target.Name == current {
		final = defaultName
	}
	e.dispatchSwitch(ctx, final, reply)
}

func (e *Engine) handleCycleSink(ctx context.Context, delta int, reply chan result) {
	e.mu.RLock()
	specs := e.sinkSpecs
	current := e.currentSinkName
	e.mu.RUnlock()

	if len(specs) == 0 {
		reply <- result{err: &pwerr.SinkResolutionError{Ref: "<no configured sinks>"}}
		return
	}

	idx := 0
	for i, s := range specs {
		if s.Name == current {
			idx = i
			break
		}
	}
	n := len(specs)
	next := ((idx+delta)%n + n) % n
	e.dispatchSwitch(ctx, specs[next].Name, reply)
}

// dispatchSwitch runs maybeSwitch on its own goroutine, tracked by
// switchesWG, so the command loop (process, above) can return and
// dequeue the next command immediately instead of blocking behind a
// possibly multi-second profile-switch retry loop. Per-device
// serialization still happens inside switchTo via deviceLock; switches
// targeting different devices now genuinely run concurrently.
func (e *Engine) dispatchSwitch(ctx context.Context, target string, reply chan result) {
	e.switchesWG.Add(1)
	go func() {
		defer e.switchesWG.Done()
		e.maybeSwitch(ctx, target, reply)
	}()
}

// maybeSwitch is idempotent: if target already equals current, it
// issues zero bridge calls.
func (e *Engine) maybeSwitch(ctx context.Context, target string, reply chan result) {
	e.mu.RLock()
	current := e.currentSinkName
	e.mu.RUnlock()

	if target == current {
		if reply != nil {
			reply <- result{sinkName: current}
		}
		return
	}

	if err := e.switchTo(ctx, target); err != nil {
		e.logger.Warnf("engine: switch to %q failed: %v", target, err)
		if reply != nil {
			reply <- result{err: err}
		}
		return
	}
	if reply != nil {
		reply <- result{sinkName: target}
	}
}

// switchTo implements §4.3's switch_to algorithm.
func (e *Engine) switchTo(ctx context.Context, target string) error {
	e.mu.RLock()
	s, ok := e.sinks.ByName(target)
	e.mu.RUnlock()
	if !ok {
		return &pwerr.SinkResolutionError{Ref: target}
	}

	if s.IsAvailable {
		if err := e.bridge.SetDefaultSink(ctx, target); err != nil {
			return err
		}
		e.mu.Lock()
		e.currentSinkName = target
		e.mu.Unlock()
		return nil
	}

	if !s.HasProfileIndex {
		return &pwerr.SinkResolutionError{Ref: target}
	}

	lock := e.deviceLock(s.DeviceID)
	lock.Lock()
	defer lock.Unlock()

	if err := e.bridge.SetDeviceProfile(ctx, s.DeviceID, s.ProfileIndex); err != nil {
		return err
	}

	delay := time.Duration(e.delayMS) * time.Millisecond
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		sinks, err := e.bridge.ListSinks(ctx)
		if err != nil {
			e.logger.Warnf("engine: list sinks poll failed: %v", err)
			continue
		}
		e.mu.Lock()
		e.sinks.Replace(sinks)
		e.mu.Unlock()

		for _, candidate := range sinks {
			if candidate.Name == target && candidate.IsAvailable {
				if err := e.bridge.SetDefaultSink(ctx, target); err != nil {
					return err
				}
				e.mu.Lock()
				e.currentSinkName = target
				e.mu.Unlock()
				return nil
			}
		}
	}

	return &pwerr.ProfileSwitchTimeoutError{SinkName: target, Attempts: e.maxRetries, DelayMS: e.delayMS}
}

// Status is a point-in-time snapshot of engine state for status queries.
type Status struct {
	CurrentSink  string
	DefaultSink  string
	MatchByIndex bool
	SmartToggle  bool
}

// Status returns a snapshot of current engine state. Safe to call
// concurrently with Run.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Status{
		CurrentSink:  e.currentSinkName,
		DefaultSink:  e.defaultSinkName,
		MatchByIndex: e.settings.MatchByIndex,
		SmartToggle:  e.settings.SetSmartToggle,
	}
}

// ListSinks returns a snapshot of the current sink registry.
func (e *Engine) ListSinks() []sink.Sink {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sinks.All()
}

// WindowMatch is a tracked window alongside whether the current rule
// table would match it, and which rule.
type WindowMatch struct {
	Window    window.Window
	Matched   bool
	RuleIndex int
	SinkRef   string
}

// ListWindows returns a snapshot of the current window registry, each
// window annotated with whether it would be matched by the current
// rule table (and which rule), per §4.4.
func (e *Engine) ListWindows() []WindowMatch {
	e.mu.RLock()
	defer e.mu.RUnlock()
	windows := e.windows.All()
	out := make([]WindowMatch, len(windows))
	for i, w := range windows {
		idx, ok := e.rules.Evaluate(rule.Window{AppID: w.AppID, Title: w.Title})
		out[i] = WindowMatch{Window: w, Matched: ok}
		if ok {
			out[i].RuleIndex = idx
			out[i].SinkRef = e.rules.At(idx).SinkRef
		}
	}
	return out
}

// RuleMatch is one live window matched by a TestRule pattern.
type RuleMatch struct {
	Window window.Window
}

// TestRule compiles pattern as a regex and reports which live windows
// it matches (by app_id, or by title if byTitle is set), without
// mutating any engine state.
func (e *Engine) TestRule(pattern string, byTitle bool) (matches []RuleMatch, err error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &pwerr.IpcProtocolError{Reason: "invalid test-rule pattern: " + err.Error()}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, w := range e.windows.All() {
		candidate := w.AppID
		if byTitle {
			candidate = w.Title
		}
		if re.MatchString(candidate) {
			matches = append(matches, RuleMatch{Window: w})
		}
	}
	return matches, nil
}

// deviceLock returns the process-wide lock for deviceID, creating it on
// first use. Its lifetime equals the process.
func (e *Engine) deviceLock(deviceID uint32) *sync.Mutex {
	e.deviceLocksMu.Lock()
	defer e.deviceLocksMu.Unlock()
	l, ok := e.deviceLocks[deviceID]
	if !ok {
		l = &sync.Mutex{}
		e.deviceLocks[deviceID] = l
	}
	return l
}

type command interface{ isCommand() }

type windowEventCmd struct{ ev window.Event }
type replaceSinksCmd struct{ sinks []sink.Sink }
type configReplaceCmd struct{ cfg *config.Compiled }
type setSinkCmd struct {
	ref   string
	reply chan result
}
type cycleSinkCmd struct {
	delta int
	reply chan result
}
type shutdownCmd struct{ reply chan result }

func (windowEventCmd) isCommand()    {}
func (replaceSinksCmd) isCommand()   {}
func (configReplaceCmd) isCommand()  {}
func (setSinkCmd) isCommand()        {}
func (cycleSinkCmd) isCommand()      {}
func (shutdownCmd) isCommand()       {}

type result struct {
	sinkName string
	err      error
}
