// Package audio abstracts the external audio subsystem behind the
// capability set the switching engine needs: list sinks, set default
// sink, set device profile. Production calls are blocking subprocess
// invocations; the concrete WpctlBridge implements them against wpctl.
// Tests substitute FakeBridge.
package audio

import (
	"context"

	"github.com/pwsw/pwsw/internal/sink"
)

// Bridge is the opaque capability the engine drives switches through.
// All three methods are blocking and must be called off the engine's
// event loop.
type Bridge interface {
	ListSinks(ctx context.Context) ([]sink.Sink, error)
	SetDefaultSink(ctx context.Context, name string) error
	SetDeviceProfile(ctx context.Context, deviceID uint32, profileIndex int) error
}
