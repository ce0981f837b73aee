package ipc

import (
	"context"
	"encoding/json"
	"net"
	"sync"

	"github.com/pwsw/pwsw/internal/engine"
	"github.com/pwsw/pwsw/internal/pwerr"
	"github.com/pwsw/pwsw/internal/window"
	"github.com/pwsw/pwsw/verbose"
)

// Server accepts connections on a Unix domain socket and serves the
// request/response protocol against a single Switching Engine. Every
// request that reads engine state takes the engine's short read lock;
// every request that mutates goes through the engine's command queue,
// so concurrent IPC clients and the compositor event stream never race.
type Server struct {
	listener net.Listener
	engine   *engine.Engine
	logger   *verbose.Logger
	wg       sync.WaitGroup

	// OnShutdownRequest, if set, is invoked after a KindShutdown request
	// has been acknowledged by the engine, letting the daemon entrypoint
	// tear down the rest of the process.
	OnShutdownRequest func()
}

// NewServer binds a listener at socketPath, performing the stale-socket
// safety checks in socket.go.
func NewServer(socketPath string, eng *engine.Engine, logger *verbose.Logger) (*Server, error) {
	l, err := listen(socketPath)
	if err != nil {
		return nil, err
	}
	return &Server{listener: l, engine: eng, logger: logger}, nil
}

// Serve accepts connections until ctx is cancelled or the listener
// errors. It blocks until every in-flight connection has been handled.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				return nil
			default:
				return err
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// Close closes the listener without waiting for in-flight connections.
func (s *Server) Close() error {
	return s.listener.Close()
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	payload, err := ReadFrame(conn)
	if err != nil {
		s.logger.Warnf("ipc: reading request: %v", err)
		return
	}

	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		s.writeResponse(conn, errorResponse(&pwerr.IpcProtocolError{Reason: "malformed request JSON: " + err.Error()}))
		return
	}

	resp := s.dispatch(ctx, req)
	if !resp.OK {
		s.logger.Warnf("ipc: request %s (%s) failed: %s", req.ID, req.Kind, resp.Error)
	}
	s.writeResponse(conn, resp)
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	body, err := json.Marshal(resp)
	if err != nil {
		s.logger.Errorf("ipc: marshaling response: %v", err)
		return
	}
	if err := WriteFrame(conn, body); err != nil {
		s.logger.Warnf("ipc: writing response: %v", err)
	}
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	switch req.Kind {
	case KindStatus:
		st := s.engine.Status()
		return dataResponse(StatusPayload{
			CurrentSink:  st.CurrentSink,
			DefaultSink:  st.DefaultSink,
			MatchByIndex: st.MatchByIndex,
			SmartToggle:  st.SmartToggle,
		})

	case KindListSinks:
		return dataResponse(SinksPayload{Sinks: s.engine.ListSinks()})

	case KindListWindows:
		matches := s.engine.ListWindows()
		windows := make([]WindowInfo, len(matches))
		for i, m := range matches {
			windows[i] = WindowInfo{Window: m.Window, Matched: m.Matched, RuleIndex: m.RuleIndex, SinkRef: m.SinkRef}
		}
		return dataResponse(WindowsPayload{Windows: windows})

	case KindTestRule:
		matches, err := s.engine.TestRule(req.Pattern, req.ByTitle)
		if err != nil {
			return errorResponse(err)
		}
		windows := make([]window.Window, len(matches))
		for i, m := range matches {
			windows[i] = m.Window
		}
		return dataResponse(TestRulePayload{Matches: windows})

	case KindValidate:
		return dataResponse(ValidatePayload{Valid: true})

	case KindSetSink:
		name, err := s.engine.SetSink(ctx, req.Ref)
		if err != nil {
			return errorResponse(err)
		}
		return dataResponse(SwitchPayload{SinkName: name})

	case KindNextSink:
		name, err := s.engine.NextSink(ctx)
		if err != nil {
			return errorResponse(err)
		}
		return dataResponse(SwitchPayload{SinkName: name})

	case KindPrevSink:
		name, err := s.engine.PrevSink(ctx)
		if err != nil {
			return errorResponse(err)
		}
		return dataResponse(SwitchPayload{SinkName: name})

	case KindShutdown:
		err := s.engine.Shutdown(ctx)
		if err != nil {
			return errorResponse(err)
		}
		if s.OnShutdownRequest != nil {
			go s.OnShutdownRequest()
		}
		return Response{OK: true}

	default:
		return errorResponse(&pwerr.IpcProtocolError{Reason: "unknown request kind: " + string(req.Kind)})
	}
}

func dataResponse(data any) Response {
	return Response{OK: true, Data: data}
}

func errorResponse(err error) Response {
	return Response{OK: false, Error: err.Error(), ErrorKind: string(pwerr.KindOf(err))}
}
