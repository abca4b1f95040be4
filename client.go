package riak

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/tautek/riak/pbc"
)

// Client talks to one Riak node over one connection.
//
// A Client is not safe for concurrent use: two concurrent calls would
// interleave frames on the same socket. Use one Client per goroutine.
// Streams open their own connections and may be consumed while the Client
// is used for other calls.
type Client struct {
	cfg     Config
	conn    *Connection
	breaker *gobreaker.CircuitBreaker[[]byte] // nil if not configured
	logger  zerolog.Logger
	stats   *clientStatsCollector
}

// NewClient connects to cfg.Address.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	conn, err := dialConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := &Client{
		cfg:    cfg,
		conn:   conn,
		logger: *cfg.Logger,
		stats:  newClientStatsCollector(),
	}
	if cfg.CircuitBreaker != nil {
		client.breaker = newCircuitBreaker(cfg.Address, *cfg.CircuitBreaker)
	}

	return client, nil
}

// Connect connects to addr with the default configuration.
func Connect(ctx context.Context, addr string) (*Client, error) {
	return NewClient(ctx, Config{Address: addr})
}

// Close closes the client connection. Streams are not affected.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Reconnect replaces the client connection with a fresh one to the same
// address. Use it after an error for which ShouldCloseConnection is true.
func (c *Client) Reconnect() error {
	if err := c.conn.Reconnect(); err != nil {
		c.stats.recordError(err)
		return err
	}
	c.stats.recordReconnect()
	return nil
}

// SetTimeout changes the socket timeout of the client connection and of
// streams created afterwards. Zero disables deadlines.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.cfg.Timeout = timeout
	c.conn.SetTimeout(timeout)
}

// Addr returns the node address.
func (c *Client) Addr() string {
	return c.cfg.Address
}

// Connection exposes the underlying connection for raw exchanges.
func (c *Client) Connection() *Connection {
	return c.conn
}

// Stats returns a snapshot of client statistics, streams included.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// execRequest runs one exchange on the client connection.
// If a circuit breaker is configured, the exchange is wrapped with it.
func (c *Client) execRequest(ctx context.Context, reqCode, respCode pbc.MessageCode, payload []byte) ([]byte, error) {
	exec := func() ([]byte, error) {
		return c.conn.Exchange(ctx, reqCode, respCode, payload)
	}

	var reply []byte
	var err error
	if c.breaker != nil {
		reply, err = c.breaker.Execute(exec)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &IOError{Op: "circuit breaker", Err: err}
		}
	} else {
		reply, err = exec()
	}

	if err != nil {
		c.stats.recordError(err)
		return nil, err
	}

	c.stats.recordExchange(len(payload), len(reply))
	return reply, nil
}

// call marshals req, runs the exchange and unmarshals the reply into resp.
// Either record may be nil for empty payloads.
func (c *Client) call(ctx context.Context, reqCode, respCode pbc.MessageCode, req pbc.Marshaler, resp pbc.Unmarshaler) error {
	var payload []byte
	if req != nil {
		var err error
		if payload, err = req.Marshal(); err != nil {
			c.stats.recordError(err)
			return err
		}
	}

	reply, err := c.execRequest(ctx, reqCode, respCode, payload)
	if err != nil {
		return err
	}

	if resp != nil {
		if err := resp.Unmarshal(reply); err != nil {
			c.stats.recordError(err)
			return err
		}
	}
	return nil
}

// Ping checks that the node answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, pbc.CodePingReq, pbc.CodePingResp, nil, nil)
}

// ServerInfo returns the node name and server version.
func (c *Client) ServerInfo(ctx context.Context) (ServerInfo, error) {
	var resp pbc.ServerInfoResp
	if err := c.call(ctx, pbc.CodeGetServerInfoReq, pbc.CodeGetServerInfoResp, nil, &resp); err != nil {
		return ServerInfo{}, err
	}
	return ServerInfo{
		Node:    string(resp.Node),
		Version: string(resp.ServerVersion),
	}, nil
}

// serverTimeout converts the socket timeout into the millisecond timeout
// field carried by listing requests. Nil when deadlines are disabled.
func serverTimeout(timeout time.Duration) *uint32 {
	if timeout <= 0 {
		return nil
	}
	ms := timeout.Milliseconds()
	if ms > math.MaxUint32 {
		ms = math.MaxUint32
	}
	return pbc.Uint32(uint32(ms))
}
