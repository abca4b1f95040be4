// Package pbc implements the Riak protocol buffers wire format.
//
// A message on the wire is a frame:
//
//	<length:u32 big-endian><code:u8><payload:length-1 bytes>
//
// The length covers the code byte and the payload, but not itself. Payloads are
// protobuf-encoded records whose field numbers follow riak_pb. This package
// holds the message code table, the frame reader/writer, the error taxonomy
// shared by the client, and one Go record per protobuf message with
// Marshal/Unmarshal methods built on protowire.
//
// Records are plain structs. Optional scalar fields are pointers, optional
// bytes fields are nil when unset:
//
//	req := &pbc.FetchObjectReq{
//	    Bucket: []byte("users"),
//	    Key:    []byte("alice"),
//	    R:      pbc.Uint32(pbc.QuorumOne),
//	    Head:   pbc.Bool(true),
//	}
//	payload, err := req.Marshal()
package pbc
