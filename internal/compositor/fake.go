package compositor

import (
	"context"

	"github.com/pwsw/pwsw/internal/window"
)

// FakeSource replays a fixed sequence of events, one per Push call, for
// engine tests that need deterministic compositor input.
type FakeSource struct {
	events chan window.Event
	done   chan struct{}
}

// NewFakeSource creates a FakeSource. Push must be called before Run to
// queue events, or concurrently once Run is running.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		events: make(chan window.Event, 64),
		done:   make(chan struct{}),
	}
}

// Push queues an event for delivery to Run's channel.
func (f *FakeSource) Push(ev window.Event) {
	f.events <- ev
}

// Close stops Run once its queued events have drained.
func (f *FakeSource) Close() {
	close(f.done)
}

// Run implements EventSource.
func (f *FakeSource) Run(ctx context.Context, out chan<- window.Event) error {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			for {
				select {
				case ev := <-f.events:
					select {
					case out <- ev:
					case <-ctx.Done():
						return ctx.Err()
					}
				default:
					return nil
				}
			}
		case ev := <-f.events:
			select {
			case out <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
