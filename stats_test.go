package riak

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tautek/riak/pbc"
)

func TestClientStats(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	assert.Equal(t, ClientStats{}, client.Stats())

	require.NoError(t, client.Ping(ctx))
	_, err := client.StoreObject(ctx, StoreObjectReq{Bucket: []byte("b"), Key: []byte("k"), Content: Content{Value: []byte("v")}})
	require.NoError(t, err)
	_, err = client.FetchObject(ctx, FetchObjectReq{Bucket: []byte("b"), Key: []byte("k")})
	require.NoError(t, err)

	stats := client.Stats()
	assert.Equal(t, uint64(3), stats.Exchanges)
	assert.Positive(t, stats.BytesSent)
	assert.Positive(t, stats.BytesReceived)
	assert.Zero(t, stats.Errors)

	srv.FailNext(pbc.CodePingReq, 0, "nope")
	require.Error(t, client.Ping(ctx))
	require.NoError(t, client.Reconnect())

	stats = client.Stats()
	assert.Equal(t, uint64(3), stats.Exchanges)
	assert.Equal(t, uint64(1), stats.Errors)
	assert.Equal(t, uint64(1), stats.ServerErrors)
	assert.Equal(t, uint64(1), stats.Reconnects)
}

func TestClientStatsCollector(t *testing.T) {
	c := newClientStatsCollector()

	c.recordExchange(10, 20)
	c.recordStreamOpened()
	c.recordSent(5)
	c.recordStreamBatch(7)
	c.recordError(errors.New("boom"))
	c.recordError(&ServerError{Code: 1})
	c.recordReconnect()

	assert.Equal(t, ClientStats{
		Exchanges:     1,
		StreamsOpened: 1,
		StreamBatches: 1,
		ServerErrors:  1,
		Errors:        2,
		Reconnects:    1,
		BytesSent:     15,
		BytesReceived: 27,
	}, c.snapshot())
}
