// Package compositor abstracts the Wayland compositor behind a
// capability that produces window events, decoupling the switching
// engine from any particular compositor's wire protocol. SwayClient is
// the production implementation; FakeSource is the test double.
package compositor

import (
	"context"

	"github.com/pwsw/pwsw/internal/window"
)

// EventSource streams window events until ctx is cancelled or the
// compositor connection is lost, in which case Run returns the error.
// Events are delivered through the events channel passed to Run; Run
// owns the channel's lifetime and closes it before returning.
type EventSource interface {
	Run(ctx context.Context, events chan<- window.Event) error
}
