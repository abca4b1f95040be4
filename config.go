package riak

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

const (
	// DefaultTimeout applies to connect, every read and every write.
	DefaultTimeout = 3600 * time.Second

	// DefaultMaxFrameSize bounds the payload of a single reply frame.
	DefaultMaxFrameSize = 64 << 20
)

// Config holds configuration for a Riak client.
type Config struct {
	// Address is the "host:port" of the Riak node's protocol buffers listener.
	// Required.
	Address string

	// Timeout bounds connect and each read and write on the socket. Stream
	// requests also forward it to the server as their listing timeout.
	// Zero means DefaultTimeout. Negative disables deadlines.
	Timeout time.Duration

	// Dialer is the net.Dialer used to create connections.
	// If nil, a zero net.Dialer is used.
	Dialer *net.Dialer

	// MaxFrameSize is the largest reply payload accepted, in bytes.
	// Zero means DefaultMaxFrameSize.
	MaxFrameSize uint32

	// Logger receives debug and warning events. If nil, nothing is logged.
	Logger *zerolog.Logger

	// CircuitBreaker, when set, wraps every exchange on the client connection
	// in a gobreaker circuit breaker. Streams are not wrapped.
	CircuitBreaker *gobreaker.Settings

	// for testing purposes only
	dialFunc func() (net.Conn, error)
}

// DefaultConfig returns a Config for addr with every default applied.
func DefaultConfig(addr string) Config {
	return Config{Address: addr}.withDefaults()
}

func (c Config) withDefaults() Config {
	switch {
	case c.Timeout == 0:
		c.Timeout = DefaultTimeout
	case c.Timeout < 0:
		c.Timeout = 0
	}
	if c.Dialer == nil {
		c.Dialer = &net.Dialer{}
	}
	if c.MaxFrameSize == 0 {
		c.MaxFrameSize = DefaultMaxFrameSize
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	return c
}

func (c Config) validate() error {
	if c.Address == "" && c.dialFunc == nil {
		return fmt.Errorf("riak: no address provided")
	}
	return nil
}

type fileConfig struct {
	Address        string `toml:"address"`
	Timeout        string `toml:"timeout"`
	TimeoutSeconds int64  `toml:"timeout_seconds"`
	MaxFrameSize   uint32 `toml:"max_frame_size"`
	KeepAlive      string `toml:"keep_alive"`

	CircuitBreaker *struct {
		MaxRequests uint32 `toml:"max_requests"`
		Interval    string `toml:"interval"`
		Timeout     string `toml:"timeout"`
	} `toml:"circuit_breaker"`
}

// LoadConfigFile reads a TOML file on top of base. Keys absent from the file
// keep the value from base.
//
//	address = "riak1:8087"
//	timeout = "30s"            # or timeout_seconds = 30
//	max_frame_size = 16777216
//
//	[circuit_breaker]
//	max_requests = 3
//	interval = "1m"
//	timeout = "10s"
func LoadConfigFile(path string, base Config) (Config, error) {
	cfg := base

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load riak config: %w", err)
	}

	if meta.IsDefined("address") {
		cfg.Address = strings.TrimSpace(raw.Address)
	}

	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}

	if meta.IsDefined("timeout_seconds") {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}

	if meta.IsDefined("max_frame_size") {
		cfg.MaxFrameSize = raw.MaxFrameSize
	}

	if meta.IsDefined("keep_alive") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.KeepAlive))
		if err != nil {
			return Config{}, fmt.Errorf("parse keep_alive: %w", err)
		}
		dialer := net.Dialer{}
		if cfg.Dialer != nil {
			dialer = *cfg.Dialer
		}
		dialer.KeepAlive = d
		cfg.Dialer = &dialer
	}

	if raw.CircuitBreaker != nil {
		settings := gobreaker.Settings{MaxRequests: raw.CircuitBreaker.MaxRequests}
		if raw.CircuitBreaker.Interval != "" {
			if settings.Interval, err = time.ParseDuration(raw.CircuitBreaker.Interval); err != nil {
				return Config{}, fmt.Errorf("parse circuit_breaker.interval: %w", err)
			}
		}
		if raw.CircuitBreaker.Timeout != "" {
			if settings.Timeout, err = time.ParseDuration(raw.CircuitBreaker.Timeout); err != nil {
				return Config{}, fmt.Errorf("parse circuit_breaker.timeout: %w", err)
			}
		}
		cfg.CircuitBreaker = &settings
	}

	return cfg, nil
}

// String returns a human readable dump of the configuration.
func (c Config) String() string {
	var sb strings.Builder

	addField := func(name string, value any) {
		fmt.Fprintf(&sb, "  %-16s %v\n", name+":", value)
	}

	sb.WriteString("Riak client config:\n")
	addField("Address", c.Address)
	if c.Timeout > 0 {
		addField("Timeout", c.Timeout)
	} else {
		addField("Timeout", "none")
	}
	addField("MaxFrameSize", c.MaxFrameSize)
	if c.Dialer != nil && c.Dialer.KeepAlive != 0 {
		addField("KeepAlive", c.Dialer.KeepAlive)
	}
	if c.CircuitBreaker != nil {
		addField("CircuitBreaker", fmt.Sprintf("max_requests=%d interval=%v timeout=%v",
			c.CircuitBreaker.MaxRequests, c.CircuitBreaker.Interval, c.CircuitBreaker.Timeout))
	} else {
		addField("CircuitBreaker", "disabled")
	}

	return sb.String()
}
