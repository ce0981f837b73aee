// Package window implements the Window Registry: an insertion-ordered
// set of live windows keyed by stable window ID, with a secondary
// ordering by most recent focus.
package window

// Window is a single tracked application window.
type Window struct {
	ID        uint64
	AppID     string
	Title     string
	FocusedAt int64 // monotonic ordinal, not wall-clock; see Registry.Apply
}

// EventKind enumerates the six event kinds Registry.Apply handles.
type EventKind int

const (
	Opened EventKind = iota
	Closed
	TitleChanged
	AppIDChanged
	FocusGained
	FocusLost
)

// Event carries one compositor observation to Apply.
type Event struct {
	Kind  EventKind
	ID    uint64
	AppID string
	Title string
}

// Registry owns the live window set. It is not safe for concurrent use;
// the switching engine is its sole caller and serializes access.
type Registry struct {
	order []uint64
	byID  map[uint64]*Window
	clock int64
}

// New creates an empty window registry.
func New() *Registry {
	return &Registry{byID: make(map[uint64]*Window)}
}

// Apply updates the registry for one event. Unknown IDs on Closed,
// TitleChanged, AppIDChanged, FocusGained, and FocusLost are ignored,
// since the compositor may have already dropped the window. Opened is
// idempotent: a duplicate Opened for a known ID updates its app_id and
// title rather than creating a second entry.
func (r *Registry) Apply(ev Event) {
	switch ev.Kind {
	case Opened:
		if w, ok := r.byID[ev.ID]; ok {
			w.AppID = ev.AppID
			w.Title = ev.Title
			return
		}
		w := &Window{ID: ev.ID, AppID: ev.AppID, Title: ev.Title}
		r.byID[ev.ID] = w
		r.order = append(r.order, ev.ID)

	case Closed:
		if _, ok := r.byID[ev.ID]; !ok {
			return
		}
		delete(r.byID, ev.ID)
		for i, id := range r.order {
			if id == ev.ID {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}

	case TitleChanged:
		if w, ok := r.byID[ev.ID]; ok {
			w.Title = ev.Title
		}

	case AppIDChanged:
		if w, ok := r.byID[ev.ID]; ok {
			w.AppID = ev.AppID
		}

	case FocusGained:
		if w, ok := r.byID[ev.ID]; ok {
			r.clock++
			w.FocusedAt = r.clock
		}

	case FocusLost:
		// Focus loss does not reset FocusedAt: most_recently_focused must
		// still be able to rank windows by when they last held focus.
	}
}

// All returns a snapshot of every live window in insertion order.
func (r *Registry) All() []Window {
	out := make([]Window, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// MostRecentlyFocused returns the window with the greatest FocusedAt, or
// false if the registry is empty. Windows that have never been focused
// have FocusedAt == 0 and can still win if nothing else was ever
// focused.
func (r *Registry) MostRecentlyFocused() (Window, bool) {
	var best *Window
	for _, id := range r.order {
		w := r.byID[id]
		if best == nil || w.FocusedAt > best.FocusedAt {
			best = w
		}
	}
	if best == nil {
		return Window{}, false
	}
	return *best, true
}

// ByID returns the window with the given ID, if live.
func (r *Registry) ByID(id uint64) (Window, bool) {
	w, ok := r.byID[id]
	if !ok {
		return Window{}, false
	}
	return *w, true
}

// InFocusOrder returns every live window ordered by descending
// FocusedAt, used by the time-priority match policy.
func (r *Registry) InFocusOrder() []Window {
	out := r.All()
	// Simple insertion sort: window counts are small (live app windows),
	// and this keeps the ordering stable for ties without pulling in
	// sort.Slice's reflection overhead on a hot per-event path.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].FocusedAt > out[j-1].FocusedAt; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
