package window

import "testing"

func TestApplyOpenedIsIdempotent(t *testing.T) {
	r := New()
	r.Apply(Event{Kind: Opened, ID: 1, AppID: "firefox", Title: "a"})
	r.Apply(Event{Kind: Opened, ID: 1, AppID: "firefox", Title: "b"})

	all := r.All()
	if len(all) != 1 {
		t.Fatalf("len(All()) = %d, want 1", len(all))
	}
	if all[0].Title != "b" {
		t.Errorf("Title = %q, want %q", all[0].Title, "b")
	}
}

func TestApplyUnknownIDIgnored(t *testing.T) {
	r := New()
	r.Apply(Event{Kind: Closed, ID: 99})
	r.Apply(Event{Kind: TitleChanged, ID: 99, Title: "x"})
	r.Apply(Event{Kind: FocusGained, ID: 99})

	if len(r.All()) != 0 {
		t.Fatalf("expected no windows created from events on unknown ID")
	}
}

func TestWindowIdentityDistinctIDs(t *testing.T) {
	// Two windows sharing app_id and title but distinct IDs: events by ID
	// must only ever touch the window they name.
	r := New()
	r.Apply(Event{Kind: Opened, ID: 1, AppID: "discord", Title: "#general"})
	r.Apply(Event{Kind: Opened, ID: 2, AppID: "discord", Title: "#general"})

	r.Apply(Event{Kind: FocusGained, ID: 2})
	r.Apply(Event{Kind: Closed, ID: 1})

	all := r.All()
	if len(all) != 1 {
		t.Fatalf("len(All()) = %d, want 1", len(all))
	}
	if all[0].ID != 2 {
		t.Fatalf("surviving window ID = %d, want 2", all[0].ID)
	}

	mrf, ok := r.MostRecentlyFocused()
	if !ok || mrf.ID != 2 {
		t.Fatalf("MostRecentlyFocused() = %+v, ok=%v, want ID 2", mrf, ok)
	}
}

func TestMostRecentlyFocusedEmpty(t *testing.T) {
	r := New()
	if _, ok := r.MostRecentlyFocused(); ok {
		t.Fatalf("expected ok=false on empty registry")
	}
}

func TestInFocusOrder(t *testing.T) {
	r := New()
	r.Apply(Event{Kind: Opened, ID: 1, AppID: "firefox", Title: "YouTube"})
	r.Apply(Event{Kind: Opened, ID: 2, AppID: "discord", Title: "-"})

	r.Apply(Event{Kind: FocusGained, ID: 1})
	r.Apply(Event{Kind: FocusGained, ID: 2})

	order := r.InFocusOrder()
	if len(order) != 2 || order[0].ID != 2 || order[1].ID != 1 {
		t.Fatalf("InFocusOrder() = %+v, want [2, 1]", order)
	}
}

func TestFocusLostPreservesFocusedAt(t *testing.T) {
	r := New()
	r.Apply(Event{Kind: Opened, ID: 1, AppID: "firefox", Title: "x"})
	r.Apply(Event{Kind: FocusGained, ID: 1})
	r.Apply(Event{Kind: FocusLost, ID: 1})

	w, ok := r.ByID(1)
	if !ok || w.FocusedAt == 0 {
		t.Fatalf("expected FocusedAt to survive FocusLost, got %+v", w)
	}
}
