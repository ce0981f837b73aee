// Package config owns the on-disk TOML configuration: parsing,
// validating the invariants in spec §3.1–3.2, compiling rule regexes,
// and (via Supervisor) hot-reloading and atomically saving it.
package config

import (
	"fmt"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/pwsw/pwsw/internal/pwerr"
	"github.com/pwsw/pwsw/internal/rule"
	"github.com/pwsw/pwsw/verbose"
)

// Settings mirrors the TOML [settings] table.
type Settings struct {
	DefaultOnStartup bool   `toml:"default_on_startup"`
	SetSmartToggle   bool   `toml:"set_smart_toggle"`
	NotifyManual     bool   `toml:"notify_manual"`
	NotifyRules      bool   `toml:"notify_rules"`
	MatchByIndex     bool   `toml:"match_by_index"`
	LogLevel         string `toml:"log_level"`
}

// SinkSpec mirrors one entry of the TOML [[sinks]] array.
type SinkSpec struct {
	Name    string `toml:"name"`
	Desc    string `toml:"desc"`
	Default bool   `toml:"default"`
	Icon    string `toml:"icon,omitempty"`
}

// RuleSpec mirrors one entry of the TOML [[rules]] array. Sink accepts
// either a string (sink name or desc) or an integer (1-indexed
// position), matching §3's "by desc, by name, or by 1-indexed position".
type RuleSpec struct {
	AppID  string      `toml:"app_id"`
	Title  string      `toml:"title,omitempty"`
	Sink   interface{} `toml:"sink"`
	Desc   string      `toml:"desc,omitempty"`
	Notify *bool       `toml:"notify,omitempty"`
}

// File is the raw decoded shape of config.toml, before validation or
// regex compilation.
type File struct {
	Settings Settings   `toml:"settings"`
	Sinks    []SinkSpec `toml:"sinks"`
	Rules    []RuleSpec `toml:"rules"`
}

// Compiled is the validated, regex-compiled configuration the engine
// actually consumes. It replaces the engine's prior Compiled wholesale;
// nothing in it is mutated in place after construction.
type Compiled struct {
	Settings        Settings
	Sinks           []SinkSpec
	DefaultSinkName string
	Rules           *rule.Table
}

// Loader parses and validates configuration files.
type Loader struct {
	logger *verbose.Logger
}

// NewLoader creates a Loader.
func NewLoader(logger *verbose.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadFile parses and validates the TOML file at path, returning a
// Compiled configuration ready to hand to the engine.
func (l *Loader) LoadFile(path string) (*Compiled, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, &pwerr.ConfigError{Reason: "TOML parse error", Err: err}
	}
	return l.compile(f)
}

// compile validates a decoded File and compiles its regexes.
func (l *Loader) compile(f File) (*Compiled, error) {
	defaultName, err := validateSinks(f.Sinks)
	if err != nil {
		return nil, err
	}

	rules := make([]rule.Rule, 0, len(f.Rules))
	for i, rs := range f.Rules {
		appRe, err := regexp.Compile(rs.AppID)
		if err != nil {
			return nil, &pwerr.ConfigError{Reason: fmt.Sprintf("rules[%d].app_id: invalid regex %q", i, rs.AppID), Err: err}
		}
		var titleRe *regexp.Regexp
		if rs.Title != "" {
			titleRe, err = regexp.Compile(rs.Title)
			if err != nil {
				return nil, &pwerr.ConfigError{Reason: fmt.Sprintf("rules[%d].title: invalid regex %q", i, rs.Title), Err: err}
			}
		}

		sinkRef, err := sinkRefString(rs.Sink)
		if err != nil {
			return nil, &pwerr.ConfigError{Reason: fmt.Sprintf("rules[%d].sink: %v", i, err)}
		}
		if err := resolveSinkRef(sinkRef, f.Sinks); err != nil {
			return nil, &pwerr.ConfigError{Reason: fmt.Sprintf("rules[%d].sink: %v", i, err)}
		}

		rules = append(rules, rule.Rule{
			AppIDPattern:   appRe,
			TitlePattern:   titleRe,
			SinkRef:        sinkRef,
			Desc:           rs.Desc,
			NotifyOverride: rs.Notify,
		})
	}

	return &Compiled{
		Settings:        f.Settings,
		Sinks:           f.Sinks,
		DefaultSinkName: defaultName,
		Rules:           rule.NewTable(rules),
	}, nil
}

// validateSinks enforces invariant 1 (exactly one default sink) and
// returns that sink's name.
func validateSinks(sinks []SinkSpec) (string, error) {
	defaultName := ""
	count := 0
	for _, s := range sinks {
		if s.Name == "" {
			return "", &pwerr.ConfigError{Reason: "sinks entry missing required name"}
		}
		if s.Default {
			count++
			defaultName = s.Name
		}
	}
	switch count {
	case 0:
		return "", &pwerr.ConfigError{Reason: "no sink marked default=true"}
	case 1:
		return defaultName, nil
	default:
		return "", &pwerr.ConfigError{Reason: fmt.Sprintf("%d sinks marked default=true, expected exactly 1", count)}
	}
}

// sinkRefString normalizes a RuleSpec.Sink TOML value (string or
// integer) into the canonical string form sink.Registry.Resolve and
// resolveSinkRef both expect.
func sinkRefString(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		if val == "" {
			return "", fmt.Errorf("missing sink reference")
		}
		return val, nil
	case int64:
		return fmt.Sprintf("%d", val), nil
	case nil:
		return "", fmt.Errorf("missing sink reference")
	default:
		return "", fmt.Errorf("unsupported sink reference type %T", v)
	}
}

// resolveSinkRef enforces invariant 2: every rule's sink_ref resolves
// to exactly one configured sink at load time.
func resolveSinkRef(ref string, sinks []SinkSpec) error {
	for i, s := range sinks {
		if s.Name == ref || s.Desc == ref {
			return nil
		}
		if fmt.Sprintf("%d", i+1) == ref {
			return nil
		}
	}
	return fmt.Errorf("no configured sink matches %q", ref)
}
