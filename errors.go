package riak

import (
	"errors"

	"github.com/tautek/riak/pbc"
)

// Error kinds returned by every operation. Use errors.As to tell them apart:
//
//	var serverErr *riak.ServerError
//	if errors.As(err, &serverErr) {
//	    log.Printf("riak said %d: %s", serverErr.Code, serverErr.Data)
//	}
type (
	IOError       = pbc.IOError
	SchemaError   = pbc.SchemaError
	ServerError   = pbc.ServerError
	ProtocolError = pbc.ProtocolError
)

var (
	// ErrConnectionClosed is wrapped in an IOError when a closed Connection is used.
	ErrConnectionClosed = errors.New("riak: connection closed")

	// ErrEndOfStream is returned by Stream.Next once the final batch was delivered.
	ErrEndOfStream = errors.New("riak: end of stream")
)

// ShouldCloseConnection reports whether err leaves the connection out of sync
// with the server, in which case Reconnect is needed before the next call.
func ShouldCloseConnection(err error) bool {
	return pbc.ShouldCloseConnection(err)
}
