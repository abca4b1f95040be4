package riak

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tautek/riak/pbc"
)

// newIntegrationClient connects to the node at RIAK_ADDR (default
// 127.0.0.1:8087) and skips the test when none answers.
func newIntegrationClient(t *testing.T) *Client {
	if testing.Short() {
		t.Skip("testing.Short(), skipping integration test")
	}
	if os.Getenv("SKIP_INTEGRATION") != "" {
		t.Skip("SKIP_INTEGRATION is set")
	}

	addr := os.Getenv("RIAK_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8087"
	}

	client, err := NewClient(context.Background(), Config{Address: addr, Timeout: 5 * time.Second})
	if err != nil {
		t.Skipf("Cannot connect to riak at %s: %v", addr, err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

// uniqueKey generates a unique key for testing to avoid collisions.
func uniqueKey(prefix string) []byte {
	return fmt.Appendf(nil, "%s_%d_%d", prefix, os.Getpid(), time.Now().UnixNano())
}

func TestIntegrationStoreFetchDelete(t *testing.T) {
	client := newIntegrationClient(t)
	ctx := context.Background()

	bucket := []byte("riak_go_integration")
	key := uniqueKey("object")

	_, err := client.StoreObject(ctx, StoreObjectReq{
		Bucket:  bucket,
		Key:     key,
		Content: Content{Value: []byte("hello integration world"), ContentType: []byte("text/plain")},
	})
	require.NoError(t, err)

	resp, err := client.FetchObject(ctx, FetchObjectReq{Bucket: bucket, Key: key})
	require.NoError(t, err)
	require.Len(t, resp.Content, 1)
	assert.Equal(t, "hello integration world", string(resp.Content[0].Value))
	assert.NotEmpty(t, resp.VClock)

	require.NoError(t, client.DeleteObject(ctx, DeleteObjectReq{Bucket: bucket, Key: key, VClock: resp.VClock}))

	resp, err = client.FetchObject(ctx, FetchObjectReq{Bucket: bucket, Key: key})
	require.NoError(t, err)
	assert.Empty(t, resp.Content)
}

func TestIntegrationServerInfo(t *testing.T) {
	client := newIntegrationClient(t)

	require.NoError(t, client.Ping(context.Background()))

	info, err := client.ServerInfo(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, info.Node)
	assert.NotEmpty(t, info.Version)
}

func TestIntegrationListKeys(t *testing.T) {
	client := newIntegrationClient(t)
	ctx := context.Background()

	bucket := uniqueKey("listing")
	for i := range 3 {
		_, err := client.StoreObject(ctx, StoreObjectReq{
			Bucket:  bucket,
			Key:     fmt.Appendf(nil, "k%d", i),
			Content: Content{Value: []byte("v")},
		})
		require.NoError(t, err)
	}

	keys, err := client.ListKeys(ctx, bucket)
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}

func TestIntegrationPreflist(t *testing.T) {
	client := newIntegrationClient(t)

	items, err := client.FetchPreflist(context.Background(), []byte("riak_go_integration"), []byte("k"))
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for _, item := range items {
		assert.NotEmpty(t, item.Node)
	}
}

func TestIntegrationBucketProperties(t *testing.T) {
	client := newIntegrationClient(t)
	ctx := context.Background()

	bucket := uniqueKey("props")
	require.NoError(t, client.SetBucketProperties(ctx, bucket, BucketProps{AllowMult: pbc.Bool(true)}))

	props, err := client.GetBucketProperties(ctx, bucket)
	require.NoError(t, err)
	require.NotNil(t, props.AllowMult)
	assert.True(t, *props.AllowMult)

	require.NoError(t, client.ResetBucket(ctx, nil, bucket))
}
