package riak

import (
	"errors"
	"sync/atomic"
)

// ClientStats contains statistics about client operations.
// All fields are safe for concurrent access, so Stats may be called from a
// monitoring goroutine while the client is in use.
//
// Struct is sized to fit within a single cache line (64 bytes).
//
// For Prometheus integration, expose these as:
//   - Counters: Exchanges, StreamBatches, ServerErrors, Errors, Reconnects
//   - Counters: BytesSent, BytesReceived
//   - Counter: StreamsOpened
type ClientStats struct {
	Exchanges     uint64 // Completed request/reply exchanges
	StreamsOpened uint64 // Streams created (each with its own connection)
	StreamBatches uint64 // Batches delivered by streams
	ServerErrors  uint64 // RpbErrorResp frames received
	Errors        uint64 // Total errors across all operations, ServerErrors included
	Reconnects    uint64 // Successful reconnects, explicit or after a stream failure
	BytesSent     uint64 // Request payload bytes
	BytesReceived uint64 // Reply payload bytes
}

// clientStatsCollector provides internal methods for updating client stats.
// Not exported - client and streams update their own stats.
type clientStatsCollector struct {
	stats *ClientStats
}

func newClientStatsCollector() *clientStatsCollector {
	return &clientStatsCollector{
		stats: &ClientStats{},
	}
}

func (c *clientStatsCollector) recordExchange(sent, received int) {
	atomic.AddUint64(&c.stats.Exchanges, 1)
	atomic.AddUint64(&c.stats.BytesSent, uint64(sent))
	atomic.AddUint64(&c.stats.BytesReceived, uint64(received))
}

func (c *clientStatsCollector) recordStreamOpened() {
	atomic.AddUint64(&c.stats.StreamsOpened, 1)
}

func (c *clientStatsCollector) recordStreamBatch(received int) {
	atomic.AddUint64(&c.stats.StreamBatches, 1)
	atomic.AddUint64(&c.stats.BytesReceived, uint64(received))
}

func (c *clientStatsCollector) recordSent(sent int) {
	atomic.AddUint64(&c.stats.BytesSent, uint64(sent))
}

func (c *clientStatsCollector) recordError(err error) {
	atomic.AddUint64(&c.stats.Errors, 1)

	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		atomic.AddUint64(&c.stats.ServerErrors, 1)
	}
}

func (c *clientStatsCollector) recordReconnect() {
	atomic.AddUint64(&c.stats.Reconnects, 1)
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Exchanges:     atomic.LoadUint64(&c.stats.Exchanges),
		StreamsOpened: atomic.LoadUint64(&c.stats.StreamsOpened),
		StreamBatches: atomic.LoadUint64(&c.stats.StreamBatches),
		ServerErrors:  atomic.LoadUint64(&c.stats.ServerErrors),
		Errors:        atomic.LoadUint64(&c.stats.Errors),
		Reconnects:    atomic.LoadUint64(&c.stats.Reconnects),
		BytesSent:     atomic.LoadUint64(&c.stats.BytesSent),
		BytesReceived: atomic.LoadUint64(&c.stats.BytesReceived),
	}
}
