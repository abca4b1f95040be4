package pbc

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"strconv"
)

const (
	// HeaderSize is the length prefix plus the code byte.
	HeaderSize = 5

	// DefaultMaxPayloadSize bounds the payload ReadFrame accepts when no
	// limit is given.
	DefaultMaxPayloadSize = 64 << 20
)

// ErrPayloadTooLarge is returned by WriteFrame when the payload length does
// not fit the 4-byte frame header.
var ErrPayloadTooLarge = errors.New("riak: payload too large for a frame")

// WriteFrame writes one frame to w: the big-endian length (payload + 1),
// the code byte, then the payload.
// Errors from w are returned as-is; the caller decides how to wrap them.
func WriteFrame(w io.Writer, code MessageCode, payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32-1 {
		return ErrPayloadTooLarge
	}

	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(payload)+1))
	header[4] = byte(code)

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads exactly one frame from r.
//
// Returns the code and the payload (never nil, possibly empty).
//
// Errors:
//   - IOError: the reader failed or ended mid-frame (io.ErrUnexpectedEOF),
//     or ended cleanly before the header (io.EOF)
//   - ProtocolError: zero length header, or payload above maxPayload
//
// A maxPayload of 0 selects DefaultMaxPayloadSize.
func ReadFrame(r io.Reader, maxPayload uint32) (MessageCode, []byte, error) {
	if maxPayload == 0 {
		maxPayload = DefaultMaxPayloadSize
	}

	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:4]); err != nil {
		return 0, nil, &IOError{Op: "read header", Err: err}
	}

	length := binary.BigEndian.Uint32(header[:4])
	if length == 0 {
		return 0, nil, &ProtocolError{Message: "frame length is zero"}
	}
	if length-1 > maxPayload {
		return 0, nil, &ProtocolError{Message: "frame payload of " + strconv.FormatUint(uint64(length-1), 10) +
			" bytes exceeds limit of " + strconv.FormatUint(uint64(maxPayload), 10)}
	}

	if _, err := io.ReadFull(r, header[4:]); err != nil {
		return 0, nil, &IOError{Op: "read code", Err: noEOF(err)}
	}

	payload := make([]byte, length-1)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, &IOError{Op: "read payload", Err: noEOF(err)}
	}

	return MessageCode(header[4]), payload, nil
}

// noEOF turns a clean EOF inside a frame into io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// DecodeReply checks a received frame against the expected response code.
// An RpbErrorResp is decoded into a ServerError. Any other mismatch is a
// ProtocolError.
func DecodeReply(expected, actual MessageCode, payload []byte) ([]byte, error) {
	if actual == expected {
		return payload, nil
	}

	if actual == CodeErrorResp {
		var resp ErrorResp
		if err := resp.Unmarshal(payload); err != nil {
			return nil, err
		}
		return nil, &ServerError{Code: resp.ErrCode, Data: resp.ErrMsg}
	}

	return nil, &ProtocolError{Expected: expected, Actual: actual}
}
