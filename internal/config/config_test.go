package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pwsw/pwsw/verbose"
)

const validTOML = `
[settings]
default_on_startup = true
set_smart_toggle = true
notify_manual = false
notify_rules = false
match_by_index = true
log_level = "info"

[[sinks]]
name = "alsa_output.speakers"
desc = "Speakers"
default = true

[[sinks]]
name = "bluez_output.headset"
desc = "Headset"
default = false

[[rules]]
app_id = "^discord$"
sink = "Headset"
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadFileValid(t *testing.T) {
	path := writeTemp(t, validTOML)
	loader := NewLoader(verbose.DefaultLogger())

	cfg, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.DefaultSinkName != "alsa_output.speakers" {
		t.Errorf("DefaultSinkName = %q, want alsa_output.speakers", cfg.DefaultSinkName)
	}
	if cfg.Rules.Len() != 1 {
		t.Errorf("Rules.Len() = %d, want 1", cfg.Rules.Len())
	}
}

func TestLoadFileRejectsMissingDefault(t *testing.T) {
	path := writeTemp(t, `
[settings]
match_by_index = true
log_level = "info"

[[sinks]]
name = "a"
desc = "A"
default = false
`)
	loader := NewLoader(verbose.DefaultLogger())
	if _, err := loader.LoadFile(path); err == nil {
		t.Fatalf("expected error for missing default sink")
	}
}

func TestLoadFileRejectsMultipleDefaults(t *testing.T) {
	path := writeTemp(t, `
[settings]
log_level = "info"

[[sinks]]
name = "a"
desc = "A"
default = true

[[sinks]]
name = "b"
desc = "B"
default = true
`)
	loader := NewLoader(verbose.DefaultLogger())
	if _, err := loader.LoadFile(path); err == nil {
		t.Fatalf("expected error for multiple default sinks")
	}
}

func TestLoadFileRejectsUnresolvedRuleSink(t *testing.T) {
	path := writeTemp(t, `
[settings]
log_level = "info"

[[sinks]]
name = "a"
desc = "A"
default = true

[[rules]]
app_id = "^foo$"
sink = "nonexistent"
`)
	loader := NewLoader(verbose.DefaultLogger())
	if _, err := loader.LoadFile(path); err == nil {
		t.Fatalf("expected error for unresolved rule sink reference")
	}
}

func TestLoadFileRejectsBadRegex(t *testing.T) {
	path := writeTemp(t, `
[settings]
log_level = "info"

[[sinks]]
name = "a"
desc = "A"
default = true

[[rules]]
app_id = "(unterminated"
sink = "a"
`)
	loader := NewLoader(verbose.DefaultLogger())
	if _, err := loader.LoadFile(path); err == nil {
		t.Fatalf("expected error for invalid regex")
	}
}

func TestReloadAtomicityKeepsPreviousOnFailure(t *testing.T) {
	path := writeTemp(t, validTOML)
	sup, err := NewSupervisor(path, verbose.DefaultLogger())
	if err != nil {
		t.Fatalf("NewSupervisor() error = %v", err)
	}

	before := sup.Current()

	if err := os.WriteFile(path, []byte("not valid toml {{{"), 0o600); err != nil {
		t.Fatalf("writing broken config: %v", err)
	}

	if err := sup.Reload(context.Background()); err == nil {
		t.Fatalf("expected Reload() to fail on invalid config")
	}

	after := sup.Current()
	if after != before {
		t.Fatalf("Reload() failure must leave the previous configuration unchanged")
	}
}

func TestRuleSinkByPosition(t *testing.T) {
	path := writeTemp(t, `
[settings]
log_level = "info"

[[sinks]]
name = "a"
desc = "A"
default = true

[[sinks]]
name = "b"
desc = "B"

[[rules]]
app_id = "^foo$"
sink = 2
`)
	loader := NewLoader(verbose.DefaultLogger())
	cfg, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := cfg.Rules.At(0).SinkRef; got != "2" {
		t.Errorf("SinkRef = %q, want %q", got, "2")
	}
}
