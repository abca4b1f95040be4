package riak

import (
	"bufio"
	"context"
	"net"
	"time"

	"github.com/rs/zerolog"
	"github.com/tautek/riak/internal"
	"github.com/tautek/riak/internal/coarsetime"
	"github.com/tautek/riak/pbc"
)

const readBufferSize = 16 << 10

// Most requests are a few hundred bytes; keep buffers up to 1MB around.
var framePool = internal.NewBufferPool(512, 1<<20)

// Connection is a framed connection to one Riak node.
//
// A Connection carries one exchange at a time: frames have no request
// identifiers, so replies are matched to requests purely by order. It is not
// safe for concurrent use.
type Connection struct {
	addr         string
	timeout      time.Duration
	dialer       *net.Dialer
	dialFunc     func() (net.Conn, error)
	maxFrameSize uint32
	logger       zerolog.Logger

	conn     net.Conn
	reader   *bufio.Reader
	lastUsed time.Time
	closed   bool
}

// NewConnection dials addr. The timeout bounds connect and each read and
// write; zero disables deadlines.
func NewConnection(addr string, timeout time.Duration) (*Connection, error) {
	cfg := Config{Address: addr, Timeout: timeout}
	if timeout == 0 {
		cfg.Timeout = -1
	}
	return dialConnection(context.Background(), cfg.withDefaults())
}

// dialConnection expects a Config that already went through withDefaults.
func dialConnection(ctx context.Context, cfg Config) (*Connection, error) {
	c := &Connection{
		addr:         cfg.Address,
		timeout:      cfg.Timeout,
		dialer:       cfg.Dialer,
		dialFunc:     cfg.dialFunc,
		maxFrameSize: cfg.MaxFrameSize,
		logger:       cfg.Logger.With().Str("addr", cfg.Address).Logger(),
	}
	if err := c.open(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Connection) open(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.conn = conn
	c.reader = bufio.NewReaderSize(conn, readBufferSize)
	c.lastUsed = coarsetime.Now()
	c.closed = false

	c.logger.Debug().Msg("connected")
	return nil
}

// dial resolves the address, keeps the first resolved entry and connects to it.
func (c *Connection) dial(ctx context.Context) (net.Conn, error) {
	if c.dialFunc != nil {
		conn, err := c.dialFunc()
		if err != nil {
			return nil, &IOError{Op: "dial", Err: err}
		}
		return conn, nil
	}

	tcpAddr, err := net.ResolveTCPAddr("tcp", c.addr)
	if err != nil {
		return nil, &IOError{Op: "resolve", Err: err}
	}

	dialer := *c.dialer
	if dialer.Timeout == 0 && c.timeout > 0 {
		dialer.Timeout = c.timeout
	}

	conn, err := dialer.DialContext(ctx, "tcp", tcpAddr.String())
	if err != nil {
		return nil, &IOError{Op: "dial", Err: err}
	}
	return conn, nil
}

// setDeadline arms the socket for the next read or write. The configured
// timeout applies, tightened by the context deadline when there is one.
func (c *Connection) setDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &IOError{Op: "deadline", Err: err}
	}

	var deadline time.Time
	if c.timeout > 0 {
		deadline = time.Now().Add(c.timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}

	if err := c.conn.SetDeadline(deadline); err != nil {
		return &IOError{Op: "deadline", Err: err}
	}
	return nil
}

// Send writes one frame with a single write call.
func (c *Connection) Send(ctx context.Context, code pbc.MessageCode, payload []byte) error {
	if c.closed {
		return &IOError{Op: "write", Err: ErrConnectionClosed}
	}
	if err := c.setDeadline(ctx); err != nil {
		return err
	}

	buf := framePool.Get()
	defer framePool.Put(buf)

	if err := pbc.WriteFrame(buf, code, payload); err != nil {
		return &IOError{Op: "encode frame", Err: err}
	}
	if _, err := c.conn.Write(buf.Bytes()); err != nil {
		return &IOError{Op: "write", Err: err}
	}

	c.lastUsed = coarsetime.Now()
	return nil
}

// Receive reads one frame and checks its code.
//
// Returns the payload when the code is expected. An RpbErrorResp frame
// becomes a ServerError, any other code a ProtocolError.
func (c *Connection) Receive(ctx context.Context, expected pbc.MessageCode) ([]byte, error) {
	if c.closed {
		return nil, &IOError{Op: "read", Err: ErrConnectionClosed}
	}
	if err := c.setDeadline(ctx); err != nil {
		return nil, err
	}

	code, payload, err := pbc.ReadFrame(c.reader, c.maxFrameSize)
	if err != nil {
		return nil, err
	}

	c.lastUsed = coarsetime.Now()
	return pbc.DecodeReply(expected, code, payload)
}

// Exchange sends one request frame and returns the payload of its reply.
// Errors are returned unchanged and the connection is not reconnected.
func (c *Connection) Exchange(ctx context.Context, reqCode, respCode pbc.MessageCode, payload []byte) ([]byte, error) {
	if err := c.Send(ctx, reqCode, payload); err != nil {
		return nil, err
	}

	reply, err := c.Receive(ctx, respCode)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Stringer("request", reqCode).
		Int("sent", len(payload)).
		Int("received", len(reply)).
		Msg("exchange")
	return reply, nil
}

// Reconnect closes the socket, if any, and dials the same address with the
// same timeout.
func (c *Connection) Reconnect() error {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.closed = true

	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.open(ctx); err != nil {
		return err
	}
	c.logger.Debug().Msg("reconnected")
	return nil
}

// SetTimeout changes the timeout used for subsequent reads, writes and
// reconnects. Zero disables deadlines.
func (c *Connection) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// Timeout returns the current socket timeout.
func (c *Connection) Timeout() time.Duration {
	return c.timeout
}

// LastUsed returns when a frame was last sent or received, at coarse
// resolution.
func (c *Connection) LastUsed() time.Time {
	return c.lastUsed
}

// IdleTime returns how long the connection has been idle.
func (c *Connection) IdleTime() time.Duration {
	return coarsetime.Since(c.lastUsed)
}

// IsClosed returns whether the connection is closed
func (c *Connection) IsClosed() bool {
	return c.closed
}

// Addr returns the connection address
func (c *Connection) Addr() string {
	return c.addr
}

// Close closes the connection
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
