package testutils

import (
	"bytes"
	"net"
	"time"

	"github.com/tautek/riak/pbc"
)

// ConnectionMock is a net.Conn that replays scripted reply frames and
// records what the client writes.
type ConnectionMock struct {
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
	closed   bool
}

// NewConnectionMock creates a mock connection whose reads return the given
// raw bytes in order. Build frames with Frame or ErrorFrame.
func NewConnectionMock(replies ...[]byte) *ConnectionMock {
	return &ConnectionMock{
		readBuf:  bytes.NewBuffer(bytes.Join(replies, nil)),
		writeBuf: &bytes.Buffer{},
	}
}

func (m *ConnectionMock) Read(b []byte) (n int, err error) {
	return m.readBuf.Read(b)
}

func (m *ConnectionMock) Write(b []byte) (n int, err error) {
	return m.writeBuf.Write(b)
}

func (m *ConnectionMock) Close() error {
	m.closed = true
	return nil
}

func (m *ConnectionMock) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
}

func (m *ConnectionMock) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8087}
}

func (m *ConnectionMock) SetDeadline(t time.Time) error      { return nil }
func (m *ConnectionMock) SetReadDeadline(t time.Time) error  { return nil }
func (m *ConnectionMock) SetWriteDeadline(t time.Time) error { return nil }

// IsClosed reports whether Close was called.
func (m *ConnectionMock) IsClosed() bool {
	return m.closed
}

// Written returns the raw bytes written to the mock connection.
func (m *ConnectionMock) Written() []byte {
	return m.writeBuf.Bytes()
}

// Frame encodes one frame carrying record, or an empty payload when record
// is nil. It panics on encoding errors since the input is test data.
func Frame(code pbc.MessageCode, record pbc.Marshaler) []byte {
	var payload []byte
	if record != nil {
		var err error
		if payload, err = record.Marshal(); err != nil {
			panic(err)
		}
	}
	return RawFrame(code, payload)
}

// RawFrame encodes one frame around an already encoded payload.
func RawFrame(code pbc.MessageCode, payload []byte) []byte {
	var buf bytes.Buffer
	if err := pbc.WriteFrame(&buf, code, payload); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// ErrorFrame encodes an RpbErrorResp frame.
func ErrorFrame(errCode uint32, msg string) []byte {
	return Frame(pbc.CodeErrorResp, &pbc.ErrorResp{ErrMsg: []byte(msg), ErrCode: errCode})
}
