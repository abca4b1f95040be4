package riak

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "riak.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := DefaultConfig("localhost:8087")

	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, uint32(DefaultMaxFrameSize), cfg.MaxFrameSize)
	assert.NotNil(t, cfg.Dialer)
	assert.NotNil(t, cfg.Logger)
	assert.Nil(t, cfg.CircuitBreaker)

	cfg = Config{Timeout: -1}.withDefaults()
	assert.Equal(t, time.Duration(0), cfg.Timeout, "negative timeout disables deadlines")
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
address = " riak1:8087 "
timeout = "30s"
max_frame_size = 1024
keep_alive = "15s"

[circuit_breaker]
max_requests = 3
interval = "1m"
timeout = "10s"
`)

	cfg, err := LoadConfigFile(path, Config{})
	require.NoError(t, err)

	assert.Equal(t, "riak1:8087", cfg.Address)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, uint32(1024), cfg.MaxFrameSize)
	require.NotNil(t, cfg.Dialer)
	assert.Equal(t, 15*time.Second, cfg.Dialer.KeepAlive)
	require.NotNil(t, cfg.CircuitBreaker)
	assert.Equal(t, uint32(3), cfg.CircuitBreaker.MaxRequests)
	assert.Equal(t, time.Minute, cfg.CircuitBreaker.Interval)
	assert.Equal(t, 10*time.Second, cfg.CircuitBreaker.Timeout)
}

func TestLoadConfigFile_KeepsBase(t *testing.T) {
	path := writeConfigFile(t, `timeout_seconds = 5`)

	dialer := &net.Dialer{Timeout: time.Second}
	cfg, err := LoadConfigFile(path, Config{Address: "base:8087", Dialer: dialer})
	require.NoError(t, err)

	assert.Equal(t, "base:8087", cfg.Address)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Same(t, dialer, cfg.Dialer)
	assert.Nil(t, cfg.CircuitBreaker)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"), Config{})
	require.Error(t, err)

	_, err = LoadConfigFile(writeConfigFile(t, `timeout = "soon"`), Config{})
	require.ErrorContains(t, err, "parse timeout")

	_, err = LoadConfigFile(writeConfigFile(t, "[circuit_breaker]\ninterval = \"x\""), Config{})
	require.ErrorContains(t, err, "circuit_breaker.interval")

	_, err = LoadConfigFile(writeConfigFile(t, `address = [`), Config{})
	require.Error(t, err)
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig("riak1:8087")
	cfg.CircuitBreaker = NewCircuitBreakerSettings(1, time.Minute, time.Second)

	out := cfg.String()
	assert.Contains(t, out, "riak1:8087")
	assert.Contains(t, out, "1h0m0s")
	assert.Contains(t, out, "max_requests=1")

	out = Config{Address: "x:1"}.String()
	assert.Contains(t, out, "none")
	assert.Contains(t, out, "disabled")
}
