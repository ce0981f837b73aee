package audio

import (
	"context"
	"sync"

	"github.com/pwsw/pwsw/internal/sink"
)

// FakeBridge is a test double satisfying Bridge, letting engine tests
// drive profile-switch timing and failure scenarios deterministically.
type FakeBridge struct {
	mu sync.Mutex

	sinks           []sink.Sink
	defaultCalls    []string
	profileCalls    []ProfileCall
	listCalls       int
	setDefaultErr   error
	setProfileErr   error
	onListSinksCall func(n int)              // hook to simulate a sink becoming available after N polls
	profileGates    map[uint32]chan struct{} // hook to hold a SetDeviceProfile call open, for concurrency tests
}

// ProfileCall records one SetDeviceProfile invocation.
type ProfileCall struct {
	DeviceID     uint32
	ProfileIndex int
}

// NewFakeBridge creates a FakeBridge seeded with the given sinks.
func NewFakeBridge(sinks []sink.Sink) *FakeBridge {
	return &FakeBridge{sinks: sinks}
}

func (f *FakeBridge) ListSinks(ctx context.Context) ([]sink.Sink, error) {
	f.mu.Lock()
	f.listCalls++
	n, hook := f.listCalls, f.onListSinksCall
	f.mu.Unlock()

	// Run without f.mu so the hook can call SetSinkAvailable.
	if hook != nil {
		hook(n)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sink.Sink, len(f.sinks))
	copy(out, f.sinks)
	return out, nil
}

func (f *FakeBridge) SetDefaultSink(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defaultCalls = append(f.defaultCalls, name)
	if f.setDefaultErr != nil {
		return f.setDefaultErr
	}
	for i := range f.sinks {
		f.sinks[i].IsDefaultSystem = f.sinks[i].Name == name
	}
	return nil
}

func (f *FakeBridge) SetDeviceProfile(ctx context.Context, deviceID uint32, profileIndex int) error {
	f.mu.Lock()
	f.profileCalls = append(f.profileCalls, ProfileCall{deviceID, profileIndex})
	err := f.setProfileErr
	gate := f.profileGates[deviceID]
	f.mu.Unlock()

	// Held without f.mu so other devices' calls (and ListSinks polls)
	// are never blocked by one device's gate.
	if gate != nil {
		<-gate
	}
	return err
}

// BlockProfileSwitch makes SetDeviceProfile calls for deviceID block
// until the returned release func runs, so a test can observe a second,
// independent device's switch proceeding while this one is still in
// flight. Safe to call before Run starts.
func (f *FakeBridge) BlockProfileSwitch(deviceID uint32) (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	if f.profileGates == nil {
		f.profileGates = make(map[uint32]chan struct{})
	}
	f.profileGates[deviceID] = gate
	f.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// ProfileCalls returns every SetDeviceProfile invocation, in order.
func (f *FakeBridge) ProfileCalls() []ProfileCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ProfileCall, len(f.profileCalls))
	copy(out, f.profileCalls)
	return out
}

// SetSinkAvailable flips a seeded sink's availability, used to simulate
// a device finishing its profile switch mid-poll.
func (f *FakeBridge) SetSinkAvailable(name string, available bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.sinks {
		if f.sinks[i].Name == name {
			f.sinks[i].IsAvailable = available
		}
	}
}

// OnListSinksCall installs a hook invoked on every ListSinks call with
// the 1-indexed call count, so a test can make a sink appear on the
// Nth poll.
func (f *FakeBridge) OnListSinksCall(fn func(n int)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onListSinksCall = fn
}

// DefaultCalls returns every sink name passed to SetDefaultSink, in order.
func (f *FakeBridge) DefaultCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.defaultCalls))
	copy(out, f.defaultCalls)
	return out
}

// ListCalls returns how many times ListSinks has been called.
func (f *FakeBridge) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// SetDefaultErr makes every subsequent SetDefaultSink call fail.
func (f *FakeBridge) SetDefaultErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setDefaultErr = err
}
