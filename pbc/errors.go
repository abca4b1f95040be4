package pbc

import (
	"errors"
	"fmt"
	"strconv"
)

// Error types for Riak protocol buffers operations.
// Every failed operation returns one of these, possibly wrapped. Callers
// discriminate with errors.As.

// IOError wraps failures of the underlying socket: address resolution,
// connect, read, write, deadline expiry. A short read is an IOError wrapping
// io.ErrUnexpectedEOF.
//
// Connection handling: the socket is in an unknown state, CLOSE and RECONNECT
type IOError struct {
	Op  string // Operation that failed (resolve, dial, read, write, ...)
	Err error  // Underlying error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("riak: i/o error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *IOError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - the socket is broken
func (e *IOError) ShouldCloseConnection() bool {
	return true
}

// SchemaError reports payload bytes that could not be serialized or parsed as
// the expected record: truncated varints, bad field lengths, missing required
// fields.
//
// Connection handling: the frame was read in full, the connection is still in
// sync and can be REUSED
type SchemaError struct {
	Message string
	Err     error // Underlying error, if any
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return "riak: schema error: " + e.Message + ": " + e.Err.Error()
	}
	return "riak: schema error: " + e.Message
}

// Unwrap returns the underlying error for error chain inspection
func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns false - framing is intact
func (e *SchemaError) ShouldCloseConnection() bool {
	return false
}

// ServerError is an RpbErrorResp received in place of the expected reply.
// Code and Data are passed through verbatim; Data is usually a UTF-8 message.
//
// Connection handling: Connection can be REUSED
type ServerError struct {
	Code uint32
	Data []byte
}

func (e *ServerError) Error() string {
	return "riak: server error " + strconv.FormatUint(uint64(e.Code), 10) + ": " + string(e.Data)
}

// ShouldCloseConnection returns false - the server answered a well-formed frame
func (e *ServerError) ShouldCloseConnection() bool {
	return false
}

// ProtocolError reports a frame that violates the framing rules: a reply code
// that is neither the expected one nor RpbErrorResp, a zero length header, or a
// frame above the configured size limit.
//
// Connection handling: the reply stream can no longer be trusted, CLOSE
type ProtocolError struct {
	Expected MessageCode
	Actual   MessageCode
	Message  string
}

func (e *ProtocolError) Error() string {
	if e.Message != "" {
		return "riak: protocol error: " + e.Message
	}
	return "riak: protocol error: expected " + e.Expected.String() + ", got " + e.Actual.String()
}

// ShouldCloseConnection returns true - the reply stream is out of sync
func (e *ProtocolError) ShouldCloseConnection() bool {
	return true
}

// ErrorWithConnectionState is an interface for errors that indicate
// whether the connection should be closed.
// Implemented by all protocol error types.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err leaves the connection unusable.
//
// Returns true for IOError, ProtocolError and unknown errors.
// Returns false for ServerError, SchemaError and nil.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	// Unknown error type - be conservative and close connection
	return true
}

func schemaError(record string, err error) *SchemaError {
	return &SchemaError{Message: "malformed " + record, Err: err}
}

func missingField(record, field string) *SchemaError {
	return &SchemaError{Message: record + ": missing required field " + field}
}
