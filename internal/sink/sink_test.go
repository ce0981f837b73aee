package sink

import (
	"testing"

	"github.com/pwsw/pwsw/internal/pwerr"
)

func sampleSinks() []Sink {
	return []Sink{
		{Name: "alsa_output.speakers", Desc: "Speakers", DeviceID: 1, IsAvailable: true, IsDefaultSystem: true},
		{Name: "bluez_output.headset", Desc: "Headset", DeviceID: 2, IsAvailable: false},
	}
}

func TestRegistryReplace(t *testing.T) {
	r := New()
	if got := r.All(); len(got) != 0 {
		t.Fatalf("new registry All() = %v, want empty", got)
	}

	r.Replace(sampleSinks())
	if got := r.All(); len(got) != 2 {
		t.Fatalf("All() len = %d, want 2", len(got))
	}
}

func TestRegistryResolve(t *testing.T) {
	r := New()
	r.Replace(sampleSinks())

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{"by name", "alsa_output.speakers", "alsa_output.speakers", false},
		{"by desc", "Headset", "bluez_output.headset", false},
		{"by position", "2", "bluez_output.headset", false},
		{"position out of range", "3", "", true},
		{"unknown ref", "nope", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%q) = nil error, want error", tt.ref)
				}
				if pwerr.KindOf(err) != pwerr.KindSinkResolutionFailed {
					t.Fatalf("Resolve(%q) kind = %v, want %v", tt.ref, pwerr.KindOf(err), pwerr.KindSinkResolutionFailed)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.ref, err)
			}
			if got.Name != tt.want {
				t.Fatalf("Resolve(%q) = %q, want %q", tt.ref, got.Name, tt.want)
			}
		})
	}
}

func TestRegistryIsAvailable(t *testing.T) {
	r := New()
	r.Replace(sampleSinks())

	if !r.IsAvailable("alsa_output.speakers") {
		t.Errorf("expected speakers to be available")
	}
	if r.IsAvailable("bluez_output.headset") {
		t.Errorf("expected headset to be unavailable")
	}
	if r.IsAvailable("nonexistent") {
		t.Errorf("expected nonexistent sink to be unavailable")
	}
}
