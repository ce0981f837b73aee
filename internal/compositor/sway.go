package compositor

import (
	"context"
	"fmt"

	"github.com/joshuarubin/go-sway"

	"github.com/pwsw/pwsw/internal/window"
	"github.com/pwsw/pwsw/verbose"
)

// SwayClient connects to the sway compositor over its IPC socket
// ($SWAYSOCK) and translates window::new, window::close, window::title,
// and window::focus events into four of the engine's event kinds.
type SwayClient struct {
	logger *verbose.Logger
}

// NewSwayClient creates a SwayClient. The underlying go-sway client
// reads $SWAYSOCK itself on connect.
func NewSwayClient(logger *verbose.Logger) *SwayClient {
	return &SwayClient{logger: logger}
}

// Run subscribes to sway's window event stream and forwards translated
// events to out until ctx is cancelled or the subscription fails.
func (c *SwayClient) Run(ctx context.Context, out chan<- window.Event) error {
	defer close(out)

	client, err := sway.New(ctx)
	if err != nil {
		return fmt.Errorf("connecting to sway: %w", err)
	}

	if err := c.seedExistingTree(ctx, client, out); err != nil {
		c.logger.Warnf("sway: failed to seed existing window tree: %v", err)
	}

	h := &windowHandler{out: out, logger: c.logger}
	h.EventHandler = sway.NoOpEventHandler()

	if err := sway.Subscribe(ctx, h, sway.EventTypeWindow); err != nil {
		return fmt.Errorf("sway subscription: %w", err)
	}
	return nil
}

// seedExistingTree emits synthetic Opened events for every window
// already present when PWSW starts, since sway's window:: events only
// report changes from this point forward.
func (c *SwayClient) seedExistingTree(ctx context.Context, client sway.Client, out chan<- window.Event) error {
	root, err := client.GetTree(ctx)
	if err != nil {
		return err
	}
	var walk func(n *sway.Node)
	walk = func(n *sway.Node) {
		if n == nil {
			return
		}
		if n.Type == sway.NodeCon || n.Type == sway.NodeFloatingCon {
			appID := ""
			if n.AppID != nil {
				appID = *n.AppID
			}
			out <- window.Event{Kind: window.Opened, ID: uint64(n.ID), AppID: appID, Title: n.Name}
			if n.Focused {
				out <- window.Event{Kind: window.FocusGained, ID: uint64(n.ID)}
			}
		}
		for _, child := range n.Nodes {
			walk(child)
		}
		for _, child := range n.FloatingNodes {
			walk(child)
		}
	}
	walk(root)
	return nil
}

type windowHandler struct {
	sway.EventHandler
	out    chan<- window.Event
	logger *verbose.Logger
}

// Window implements sway.EventHandler, translating one sway window
// event into one of Opened, Closed, TitleChanged, or FocusGained.
func (h *windowHandler) Window(ctx context.Context, e sway.WindowEvent) {
	id := uint64(e.Container.ID)
	appID := ""
	if e.Container.AppID != nil {
		appID = *e.Container.AppID
	}

	var ev window.Event
	switch e.Change {
	case sway.WindowNew:
		ev = window.Event{Kind: window.Opened, ID: id, AppID: appID, Title: e.Container.Name}
	case sway.WindowClose:
		ev = window.Event{Kind: window.Closed, ID: id}
	case sway.WindowTitle:
		ev = window.Event{Kind: window.TitleChanged, ID: id, Title: e.Container.Name}
	case sway.WindowFocus:
		ev = window.Event{Kind: window.FocusGained, ID: id}
	default:
		return
	}

	select {
	case h.out <- ev:
	case <-ctx.Done():
	}
}
