package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

// Client is a short-lived connection to the daemon's IPC socket: one
// request, one response, then close. The CLI never keeps a connection
// open across commands.
type Client struct {
	conn net.Conn
}

// Dial connects to the daemon's Unix domain socket at path.
func Dial(path string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Call sends req and returns the decoded response. If req.ID is unset,
// Call assigns one so the daemon's log lines about this request can be
// correlated with the caller.
func (c *Client) Call(req Request) (Response, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("ipc: marshal request: %w", err)
	}
	if err := WriteFrame(c.conn, body); err != nil {
		return Response{}, fmt.Errorf("ipc: write request: %w", err)
	}

	respBytes, err := ReadFrame(c.conn)
	if err != nil {
		return Response{}, fmt.Errorf("ipc: read response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return Response{}, fmt.Errorf("ipc: decode response: %w", err)
	}
	return resp, nil
}

// DecodeData unmarshals resp.Data (re-marshaled, since it was decoded
// generically as any) into out.
func DecodeData(resp Response, out any) error {
	body, err := json.Marshal(resp.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
