// Package sink implements the Sink Registry: a snapshot of currently
// available audio sinks and their device IDs, rebuilt wholesale on each
// enumeration and used to resolve user- and rule-supplied sink
// references.
package sink

import (
	"strconv"

	"github.com/pwsw/pwsw/internal/pwerr"
)

// Sink is a routable audio output endpoint, identified by PipeWire's
// stable name.
type Sink struct {
	Name            string
	Desc            string
	DeviceID        uint32
	ProfileIndex    int
	HasProfileIndex bool
	IsAvailable     bool
	IsDefaultSystem bool
}

// Registry holds the most recent sink enumeration. It is rebuilt
// wholesale by Replace; callers must treat Sink values as short-lived
// snapshots, never as long-held references.
type Registry struct {
	sinks []Sink
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Replace installs a freshly enumerated sink list, discarding the prior
// one. This is the only mutator; the registry is never patched in place.
func (r *Registry) Replace(sinks []Sink) {
	r.sinks = sinks
}

// All returns a copy of the current sink snapshot.
func (r *Registry) All() []Sink {
	out := make([]Sink, len(r.sinks))
	copy(out, r.sinks)
	return out
}

// ByName returns the sink with the given PipeWire name, if present.
func (r *Registry) ByName(name string) (Sink, bool) {
	for _, s := range r.sinks {
		if s.Name == name {
			return s, true
		}
	}
	return Sink{}, false
}

// Resolve looks up a sink by reference: exact name match first, then
// exact desc match, then 1-indexed position into the current snapshot
// (in enumeration order). It returns SinkResolutionError if none match.
func (r *Registry) Resolve(ref string) (Sink, error) {
	if s, ok := r.ByName(ref); ok {
		return s, nil
	}
	for _, s := range r.sinks {
		if s.Desc == ref {
			return s, nil
		}
	}
	if idx, err := strconv.Atoi(ref); err == nil {
		if idx >= 1 && idx <= len(r.sinks) {
			return r.sinks[idx-1], nil
		}
	}
	return Sink{}, &pwerr.SinkResolutionError{Ref: ref}
}

// IsAvailable reports whether a sink by that name is currently present
// and marked available.
func (r *Registry) IsAvailable(name string) bool {
	s, ok := r.ByName(name)
	return ok && s.IsAvailable
}
