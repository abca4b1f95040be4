package riak

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tautek/riak/pbc"
)

var ctx = context.Background()

func BenchmarkClient_Ping(b *testing.B) {
	client := newTestClient(b, startFakeServer(b))

	for b.Loop() {
		_ = client.Ping(ctx)
	}
}

func BenchmarkClient_StoreObject(b *testing.B) {
	client := newTestClient(b, startFakeServer(b))
	req := StoreObjectReq{
		Bucket:  []byte("bench"),
		Key:     []byte("key"),
		Content: Content{Value: make([]byte, 1024), ContentType: []byte("application/octet-stream")},
	}

	for b.Loop() {
		_, _ = client.StoreObject(ctx, req)
	}
}

func BenchmarkClient_FetchObject(b *testing.B) {
	client := newTestClient(b, startFakeServer(b))
	_, err := client.StoreObject(ctx, StoreObjectReq{
		Bucket:  []byte("bench"),
		Key:     []byte("key"),
		Content: Content{Value: make([]byte, 1024)},
	})
	require.NoError(b, err)
	req := FetchObjectReq{Bucket: []byte("bench"), Key: []byte("key"), R: pbc.Uint32(QuorumOne)}

	for b.Loop() {
		_, _ = client.FetchObject(ctx, req)
	}
}

func BenchmarkClient_ListKeys(b *testing.B) {
	srv := startFakeServer(b)
	srv.BatchSize = 100
	client := newTestClient(b, srv)
	for i := range 1000 {
		_, err := client.StoreObject(ctx, StoreObjectReq{
			Bucket:  []byte("bench"),
			Key:     []byte{byte(i >> 8), byte(i)},
			Content: Content{Value: []byte("v")},
		})
		require.NoError(b, err)
	}

	for b.Loop() {
		_, _ = client.ListKeys(ctx, []byte("bench"))
	}
}
