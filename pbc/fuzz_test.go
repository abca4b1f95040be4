package pbc

import (
	"bytes"
	"errors"
	"testing"
)

// FuzzReadFrame checks the frame reader against arbitrary input.
// Run with: go test -fuzz='^FuzzReadFrame$' -fuzztime=60s ./pbc
func FuzzReadFrame(f *testing.F) {
	f.Add([]byte{0, 0, 0, 1, 2})                      // PingResp
	f.Add([]byte{0, 0, 0, 4, 10, 0x0a, 0x01, 'v'})    // GetResp
	f.Add([]byte{0, 0, 0, 0})                         // zero length
	f.Add([]byte{0, 0, 0, 5, 10, 0x0a})               // truncated payload
	f.Add([]byte{0, 0})                               // truncated header
	f.Add([]byte{0xff, 0xff, 0xff, 0xff, 1})          // oversized
	f.Add([]byte{})                                   // empty input
	f.Add([]byte{0, 0, 0, 1, 0, 0, 0, 0, 1, 1, 0xff}) // trailing bytes

	f.Fuzz(func(t *testing.T, data []byte) {
		code, payload, err := ReadFrame(bytes.NewReader(data), 1024)
		if err != nil {
			var ioErr *IOError
			var protoErr *ProtocolError
			if !errors.As(err, &ioErr) && !errors.As(err, &protoErr) {
				t.Errorf("unexpected error type %T: %v", err, err)
			}
			return
		}

		if len(payload) > 1024 {
			t.Errorf("payload of %d bytes exceeds limit", len(payload))
		}
		if 5+len(payload) > len(data) {
			t.Errorf("payload of %d bytes read from %d bytes of input", len(payload), len(data))
		}
		if MessageCode(data[4]) != code {
			t.Errorf("code = %d; want %d", code, data[4])
		}
	})
}

// FuzzUnmarshal feeds arbitrary payloads to the reply decoders. Corrupt input
// must surface as a SchemaError.
func FuzzUnmarshal(f *testing.F) {
	f.Add([]byte{0x0a, 0x01, 'v'})
	f.Add([]byte{0x0a, 0x05, 'v'})
	f.Add([]byte{0x08, 0x80})
	f.Add([]byte{0x10, 0x01})
	f.Add([]byte{0xff})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		records := []Unmarshaler{
			&ErrorResp{},
			&FetchObjectResp{},
			&StoreObjectResp{},
			&ListKeysResp{},
			&FetchObjectReq{},
		}
		for _, r := range records {
			if err := r.Unmarshal(data); err != nil {
				var schemaErr *SchemaError
				if !errors.As(err, &schemaErr) {
					t.Errorf("%T: unexpected error type %T: %v", r, err, err)
				}
			}
		}
	})
}

func FuzzFetchObjectReqRoundTrip(f *testing.F) {
	f.Add("users", "alice", "", uint32(0))
	f.Add("", "", "maps", uint32(3))
	f.Add("b\x00", "k\xff", "t", uint32(1<<31))

	f.Fuzz(func(t *testing.T, bucket, key, bucketType string, r uint32) {
		req := FetchObjectReq{
			Bucket: []byte(bucket),
			Key:    []byte(key),
			R:      Uint32(r),
		}
		if bucketType != "" {
			req.Type = []byte(bucketType)
		}

		payload, err := req.Marshal()
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}

		var got FetchObjectReq
		if err := got.Unmarshal(payload); err != nil {
			t.Fatalf("Unmarshal() error: %v", err)
		}
		if !bytes.Equal(got.Bucket, req.Bucket) || !bytes.Equal(got.Key, req.Key) || !bytes.Equal(got.Type, req.Type) {
			t.Errorf("round trip = %q/%q/%q; want %q/%q/%q", got.Type, got.Bucket, got.Key, req.Type, req.Bucket, req.Key)
		}
		if got.R == nil || *got.R != r {
			t.Errorf("R = %v; want %d", got.R, r)
		}
	})
}
