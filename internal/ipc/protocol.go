// Package ipc implements the length-prefixed JSON request/response
// protocol the CLI client and daemon speak over a Unix domain socket,
// and the server side's safe socket lifecycle.
package ipc

import (
	"github.com/pwsw/pwsw/internal/sink"
	"github.com/pwsw/pwsw/internal/window"
)

// Kind identifies a request's operation.
type Kind string

const (
	KindStatus      Kind = "status"
	KindListSinks   Kind = "list_sinks"
	KindListWindows Kind = "list_windows"
	KindTestRule    Kind = "test_rule"
	KindValidate    Kind = "validate"
	KindSetSink     Kind = "set_sink"
	KindNextSink    Kind = "next_sink"
	KindPrevSink    Kind = "prev_sink"
	KindShutdown    Kind = "shutdown"
)

// Request is the envelope sent by the client. Only the fields relevant
// to Kind are populated. ID correlates a request with the daemon's log
// lines about it; it plays no role in dispatch.
type Request struct {
	ID      string `json:"id,omitempty"`
	Kind    Kind   `json:"kind"`
	Ref     string `json:"ref,omitempty"`      // set_sink
	Pattern string `json:"pattern,omitempty"`  // test_rule
	ByTitle bool   `json:"by_title,omitempty"` // test_rule: match Pattern against title instead of app_id
}

// Response is the envelope returned by the server. Data carries a
// Kind-specific payload, marshaled separately so the envelope itself
// stays uniform.
type Response struct {
	OK        bool   `json:"ok"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// StatusPayload answers KindStatus.
type StatusPayload struct {
	CurrentSink  string `json:"current_sink"`
	DefaultSink  string `json:"default_sink"`
	MatchByIndex bool   `json:"match_by_index"`
	SmartToggle  bool   `json:"smart_toggle"`
}

// SinksPayload answers KindListSinks.
type SinksPayload struct {
	Sinks []sink.Sink `json:"sinks"`
}

// WindowsPayload answers KindListWindows.
type WindowsPayload struct {
	Windows []WindowInfo `json:"windows"`
}

// WindowInfo is a tracked window alongside whether the current rule
// table would match it, and which rule.
type WindowInfo struct {
	window.Window
	Matched   bool   `json:"matched"`
	RuleIndex int    `json:"rule_index,omitempty"`
	SinkRef   string `json:"sink_ref,omitempty"`
}

// TestRulePayload answers KindTestRule: every live window the compiled
// pattern matched.
type TestRulePayload struct {
	Matches []window.Window `json:"matches"`
}

// SwitchPayload answers KindSetSink, KindNextSink, and KindPrevSink.
type SwitchPayload struct {
	SinkName string `json:"sink_name"`
}

// ValidatePayload answers KindValidate. A live daemon only ever reaches
// this handler with a config it already loaded successfully, so Valid
// is always true; the request lets "pwsw validate" report that a
// running daemon answered. It does not compare the daemon's loaded
// config with the file the CLI checks on disk.
type ValidatePayload struct {
	Valid bool `json:"valid"`
}
