package riak

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tautek/riak/internal/testutils"
)

func createListener(t testing.TB, handler func(conn net.Conn)) string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to start test server: %v", err)
	}

	t.Cleanup(func() {
		listener.Close()
	})

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			go func(c net.Conn) {
				defer c.Close()

				if handler != nil {
					handler(c)
				}
			}(conn)
		}
	}()

	return listener.Addr().String()
}

func startFakeServer(t testing.TB) *testutils.FakeServer {
	t.Helper()
	srv, err := testutils.NewFakeServer()
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func newTestClient(t testing.TB, srv *testutils.FakeServer) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), Config{Address: srv.Addr(), Timeout: 2 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

// mockConnection builds a Connection on top of scripted reply frames.
func mockConnection(t testing.TB, replies ...[]byte) (*Connection, *testutils.ConnectionMock) {
	t.Helper()
	mock := testutils.NewConnectionMock(replies...)
	cfg := Config{dialFunc: func() (net.Conn, error) { return mock, nil }}
	conn, err := dialConnection(context.Background(), cfg.withDefaults())
	require.NoError(t, err)
	return conn, mock
}

var errDialRefused = errors.New("dial refused")

// scriptedDialer hands out the given connections in order, then fails.
func scriptedDialer(conns ...net.Conn) func() (net.Conn, error) {
	return func() (net.Conn, error) {
		if len(conns) == 0 {
			return nil, errDialRefused
		}
		conn := conns[0]
		conns = conns[1:]
		return conn, nil
	}
}

func requireServerError(t testing.TB, err error, msg string) {
	t.Helper()
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, msg, string(serverErr.Data))
}
