package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/pwsw/pwsw/internal/pwerr"
	"github.com/pwsw/pwsw/internal/sink"
	"github.com/pwsw/pwsw/verbose"
)

// WpctlBridge implements Bridge by shelling out to wpctl, the
// WirePlumber command-line tool shipped alongside PipeWire. Every call
// is a blocking subprocess invocation; callers must dispatch these onto
// a worker, never call them from the engine's own goroutine.
type WpctlBridge struct {
	wpctlPath string
	logger    *verbose.Logger
}

// NewWpctlBridge resolves wpctl on PATH and probes it with
// `wpctl --version`. A missing binary or non-zero exit from the probe
// is AudioBridgeUnavailableError, since a spawn succeeding is not
// sufficient evidence the tool actually works.
func NewWpctlBridge(ctx context.Context, logger *verbose.Logger) (*WpctlBridge, error) {
	path, err := exec.LookPath("wpctl")
	if err != nil {
		return nil, &pwerr.AudioBridgeUnavailableError{Tool: "wpctl", Reason: "not found on PATH", Err: err}
	}

	cmd := exec.CommandContext(ctx, path, "--version")
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, &pwerr.AudioBridgeUnavailableError{
			Tool:   "wpctl",
			Reason: fmt.Sprintf("version probe failed: %s", strings.TrimSpace(string(out))),
			Err:    err,
		}
	}

	return &WpctlBridge{wpctlPath: path, logger: logger}, nil
}

// ListSinks enumerates sinks via pw-dump, which (unlike wpctl status's
// human-oriented table) emits structured JSON we can decode directly.
func (b *WpctlBridge) ListSinks(ctx context.Context) ([]sink.Sink, error) {
	cmd := exec.CommandContext(ctx, "pw-dump")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pw-dump: %w", err)
	}

	var objects []pwDumpObject
	if err := json.Unmarshal(out, &objects); err != nil {
		return nil, fmt.Errorf("pw-dump: decoding output: %w", err)
	}

	defaultName := b.defaultSinkName(ctx)

	var sinks []sink.Sink
	profilesByDevice := collectDeviceProfiles(ctx, objects)

	for _, obj := range objects {
		if obj.Type != "PipeWire:Interface:Node" {
			continue
		}
		props := obj.Info.Props
		if props["media.class"] != "Audio/Sink" {
			continue
		}
		name, _ := props["node.name"].(string)
		if name == "" {
			continue
		}
		desc, _ := props["node.description"].(string)

		s := sink.Sink{
			Name:        name,
			Desc:        desc,
			IsAvailable: true,
			IsDefaultSystem: name == defaultName,
		}
		if devID, ok := deviceIDOf(props); ok {
			s.DeviceID = devID
			if idx, found := profilesByDevice.indexFor(devID, desc); found {
				s.ProfileIndex = idx
				s.HasProfileIndex = true
			}
		}
		sinks = append(sinks, s)
	}

	return sinks, nil
}

// SetDefaultSink runs `wpctl set-default <id>`. wpctl's set-default
// wants a numeric object ID, but this daemon tracks sinks by stable
// name, so the ID is re-resolved from a fresh pw-dump lookup first.
func (b *WpctlBridge) SetDefaultSink(ctx context.Context, name string) error {
	id, err := b.resolveObjectID(ctx, name)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, b.wpctlPath, "set-default", strconv.Itoa(id))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("wpctl set-default %d: %w (output: %s)", id, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// SetDeviceProfile runs `wpctl set-profile <deviceID> <profileIndex>`.
func (b *WpctlBridge) SetDeviceProfile(ctx context.Context, deviceID uint32, profileIndex int) error {
	cmd := exec.CommandContext(ctx, b.wpctlPath, "set-profile", strconv.FormatUint(uint64(deviceID), 10), strconv.Itoa(profileIndex))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("wpctl set-profile %d %d: %w (output: %s)", deviceID, profileIndex, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *WpctlBridge) resolveObjectID(ctx context.Context, name string) (int, error) {
	cmd := exec.CommandContext(ctx, "pw-dump")
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("pw-dump: %w", err)
	}
	var objects []pwDumpObject
	if err := json.Unmarshal(out, &objects); err != nil {
		return 0, fmt.Errorf("pw-dump: decoding output: %w", err)
	}
	for _, obj := range objects {
		if obj.Type != "PipeWire:Interface:Node" {
			continue
		}
		if n, _ := obj.Info.Props["node.name"].(string); n == name {
			return obj.ID, nil
		}
	}
	return 0, &pwerr.SinkResolutionError{Ref: name}
}

func (b *WpctlBridge) defaultSinkName(ctx context.Context) string {
	cmd := exec.CommandContext(ctx, "wpctl", "inspect", "@DEFAULT_AUDIO_SINK@")
	out, err := cmd.Output()
	if err != nil {
		if b.logger != nil {
			b.logger.Debugf("wpctl inspect default sink failed: %v", err)
		}
		return ""
	}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "node.name") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				return strings.Trim(strings.TrimSpace(parts[1]), "\"")
			}
		}
	}
	return ""
}

type pwDumpObject struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Info struct {
		Props map[string]interface{} `json:"props"`
	} `json:"info"`
}

func deviceIDOf(props map[string]interface{}) (uint32, bool) {
	v, ok := props["device.id"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return uint32(n), true
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return uint32(i), true
		}
	}
	return 0, false
}

// deviceProfiles maps a device ID to its enumerated profile list, so
// that a sink not currently active can still be told "this is profile
// N on device D", which the engine needs to drive a profile switch.
// Matching a profile to a not-yet-active sink is a heuristic (wpctl
// does not label "this profile makes this exact sink name appear");
// this correlates on description substring, which is good enough for
// the common one-profile-per-sink case.
type deviceProfiles map[uint32][]profileEntry

type profileEntry struct {
	index int
	desc  string
}

func (p deviceProfiles) indexFor(deviceID uint32, sinkDesc string) (int, bool) {
	for _, entry := range p[deviceID] {
		if sinkDesc != "" && strings.Contains(strings.ToLower(entry.desc), strings.ToLower(sinkDesc)) {
			return entry.index, true
		}
	}
	return 0, false
}

var profileLineRE = regexp.MustCompile(`^\s*\*?\s*(\d+)\s*\(.*description\s*=\s*"?([^",]+)"?.*\)\s*$`)

// collectDeviceProfiles shells out to `wpctl inspect <deviceID>` for
// every Device object pw-dump reported, parsing the " * <index> (...
// description = "...") " lines wpctl prints for its Profile enum
// parameter.
func collectDeviceProfiles(ctx context.Context, objects []pwDumpObject) deviceProfiles {
	result := make(deviceProfiles)
	for _, obj := range objects {
		if obj.Type != "PipeWire:Interface:Device" {
			continue
		}
		out, err := exec.CommandContext(ctx, "wpctl", "inspect", strconv.Itoa(obj.ID)).Output()
		if err != nil {
			continue
		}
		var entries []profileEntry
		for _, line := range strings.Split(string(out), "\n") {
			m := profileLineRE.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			idx, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			entries = append(entries, profileEntry{index: idx, desc: m[2]})
		}
		if len(entries) > 0 {
			result[uint32(obj.ID)] = entries
		}
	}
	return result
}
