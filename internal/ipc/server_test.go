package ipc

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/pwsw/pwsw/internal/audio"
	"github.com/pwsw/pwsw/internal/config"
	"github.com/pwsw/pwsw/internal/engine"
	"github.com/pwsw/pwsw/internal/rule"
	"github.com/pwsw/pwsw/internal/sink"
	"github.com/pwsw/pwsw/verbose"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	sinks := []sink.Sink{
		{Name: "speakers", Desc: "Speakers", DeviceID: 1, IsAvailable: true, IsDefaultSystem: true},
		{Name: "headset", Desc: "Headset", DeviceID: 2, IsAvailable: true},
	}
	cfg := &config.Compiled{
		Settings: config.Settings{},
		Sinks: []config.SinkSpec{
			{Name: "speakers", Default: true},
			{Name: "headset"},
		},
		DefaultSinkName: "speakers",
		Rules:           rule.NewTable(nil),
	}
	bridge := audio.NewFakeBridge(sinks)
	eng := engine.New(cfg, bridge, verbose.DefaultLogger(), 5, 3)
	eng.ReplaceSinks(sinks)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go eng.Run(ctx)

	path := filepath.Join(t.TempDir(), "pwsw.sock")
	srv, err := NewServer(path, eng, verbose.DefaultLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	go srv.Serve(ctx)
	t.Cleanup(func() { srv.Close() })

	return srv, path
}

func roundTrip(t *testing.T, path string, req Request) Response {
	t.Helper()
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if err := WriteFrame(conn, body); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}

	respBytes, err := ReadFrame(conn)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	var resp Response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return resp
}

func TestServerStatus(t *testing.T) {
	_, path := newTestServer(t)
	resp := roundTrip(t, path, Request{Kind: KindStatus})
	if !resp.OK {
		t.Fatalf("status response not OK: %+v", resp)
	}
}

func TestServerSetSink(t *testing.T) {
	_, path := newTestServer(t)
	resp := roundTrip(t, path, Request{Kind: KindSetSink, Ref: "headset"})
	if !resp.OK {
		t.Fatalf("set_sink response not OK: %+v", resp)
	}

	data, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("remarshal response data: %v", err)
	}
	var payload SwitchPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal SwitchPayload: %v", err)
	}
	if payload.SinkName != "headset" {
		t.Errorf("SinkName = %q, want headset", payload.SinkName)
	}
}

func TestServerUnknownSinkReturnsErrorKind(t *testing.T) {
	_, path := newTestServer(t)
	resp := roundTrip(t, path, Request{Kind: KindSetSink, Ref: "nonexistent"})
	if resp.OK {
		t.Fatalf("expected error response for unknown sink ref")
	}
	if resp.ErrorKind != "SinkResolutionFailed" {
		t.Errorf("ErrorKind = %q, want SinkResolutionFailed", resp.ErrorKind)
	}
}

func TestServerMalformedRequest(t *testing.T) {
	_, path := newTestServer(t)
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := WriteFrame(conn, []byte("not json")); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}
	respBytes, err := ReadFrame(conn)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	var resp Response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if resp.OK {
		t.Fatalf("expected error response for malformed request JSON")
	}
	if resp.ErrorKind != "IpcProtocolError" {
		t.Errorf("ErrorKind = %q, want IpcProtocolError", resp.ErrorKind)
	}
}
