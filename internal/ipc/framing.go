package ipc

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pwsw/pwsw/internal/pwerr"
)

// maxFrameSize bounds a single frame's payload, guarding against a
// corrupt or hostile length prefix forcing an unbounded allocation.
const maxFrameSize = 1 << 20 // 1MB

// WriteFrame writes payload prefixed with its 4-byte big-endian length.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > maxFrameSize {
		return &pwerr.IpcProtocolError{Reason: fmt.Sprintf("frame too large: %d bytes", len(payload))}
	}
	var lengthBuf [4]byte
	binary.BigEndian.PutUint32(lengthBuf[:], uint32(len(payload)))
	if _, err := w.Write(lengthBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed frame from r.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lengthBuf [4]byte
	if _, err := io.ReadFull(r, lengthBuf[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(lengthBuf[:])
	if length == 0 {
		return nil, &pwerr.IpcProtocolError{Reason: "frame length is zero"}
	}
	if length > maxFrameSize {
		return nil, &pwerr.IpcProtocolError{Reason: fmt.Sprintf("frame too large: %d bytes", length)}
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
