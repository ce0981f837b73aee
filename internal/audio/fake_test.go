package audio

import (
	"context"
	"testing"

	"github.com/pwsw/pwsw/internal/sink"
)

func TestFakeBridgeListSinks(t *testing.T) {
	fb := NewFakeBridge([]sink.Sink{{Name: "a", IsAvailable: true}})
	got, err := fb.ListSinks(context.Background())
	if err != nil {
		t.Fatalf("ListSinks() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("ListSinks() = %+v", got)
	}
	if fb.ListCalls() != 1 {
		t.Fatalf("ListCalls() = %d, want 1", fb.ListCalls())
	}
}

func TestFakeBridgeSetDefaultSink(t *testing.T) {
	fb := NewFakeBridge([]sink.Sink{{Name: "a"}, {Name: "b"}})
	if err := fb.SetDefaultSink(context.Background(), "b"); err != nil {
		t.Fatalf("SetDefaultSink() error = %v", err)
	}
	if got := fb.DefaultCalls(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("DefaultCalls() = %v", got)
	}
}
