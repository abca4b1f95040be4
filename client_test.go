package riak

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tautek/riak/internal/testutils"
	"github.com/tautek/riak/pbc"
)

func TestNewClient_NoAddress(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	require.Error(t, err)
}

func TestConnect_Refused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	_, err = Connect(context.Background(), addr)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
}

func TestClient_Ping(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)

	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, srv.Addr(), client.Addr())
}

func TestClient_ServerInfo(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)

	info, err := client.ServerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "riak@127.0.0.1", info.Node)
	assert.Equal(t, "2.9.10", info.Version)
}

func TestClient_StoreAndFetch(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	_, err := client.StoreObject(ctx, StoreObjectReq{
		Bucket: []byte("b"),
		Key:    []byte("k"),
		Content: Content{
			Value:       []byte("v"),
			ContentType: []byte("text/plain"),
			UserMeta:    []Pair{{Key: []byte("owner"), Value: []byte("alice")}},
			Indexes:     []Pair{{Key: []byte("age_int"), Value: []byte("42")}},
		},
	})
	require.NoError(t, err)

	resp, err := client.FetchObject(ctx, FetchObjectReq{Bucket: []byte("b"), Key: []byte("k")})
	require.NoError(t, err)
	require.Len(t, resp.Content, 1)

	content := resp.Content[0]
	assert.Equal(t, []byte("v"), content.Value)
	assert.Equal(t, []byte("text/plain"), content.ContentType)
	assert.Equal(t, []Pair{{Key: []byte("owner"), Value: []byte("alice")}}, content.UserMeta)
	assert.Equal(t, []Pair{{Key: []byte("age_int"), Value: []byte("42")}}, content.Indexes)
	assert.NotEmpty(t, content.VTag)
	assert.NotNil(t, content.LastMod)
	assert.NotEmpty(t, resp.VClock)
}

func TestClient_FetchMissing(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)

	resp, err := client.FetchObject(context.Background(), FetchObjectReq{Bucket: []byte("b"), Key: []byte("nope")})
	require.NoError(t, err)
	assert.Empty(t, resp.Content)
	assert.Nil(t, resp.VClock)
}

func TestClient_FetchHeadAndIfModified(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	stored, err := client.StoreObject(ctx, StoreObjectReq{
		Bucket:     []byte("b"),
		Key:        []byte("k"),
		Content:    Content{Value: []byte("payload")},
		ReturnBody: pbc.Bool(true),
	})
	require.NoError(t, err)
	require.NotEmpty(t, stored.VClock)

	head, err := client.FetchObject(ctx, FetchObjectReq{Bucket: []byte("b"), Key: []byte("k"), Head: pbc.Bool(true)})
	require.NoError(t, err)
	require.Len(t, head.Content, 1)
	assert.Empty(t, head.Content[0].Value)

	unchanged, err := client.FetchObject(ctx, FetchObjectReq{Bucket: []byte("b"), Key: []byte("k"), IfModified: stored.VClock})
	require.NoError(t, err)
	require.NotNil(t, unchanged.Unchanged)
	assert.True(t, *unchanged.Unchanged)
	assert.Empty(t, unchanged.Content)
}

func TestClient_StoreResponses(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	plain, err := client.StoreObject(ctx, StoreObjectReq{Bucket: []byte("b"), Key: []byte("k"), Content: Content{Value: []byte("v")}})
	require.NoError(t, err)
	assert.Empty(t, plain.Content)
	assert.Nil(t, plain.Key)

	body, err := client.StoreObject(ctx, StoreObjectReq{
		Bucket:     []byte("b"),
		Key:        []byte("k"),
		Content:    Content{Value: []byte("v2")},
		ReturnBody: pbc.Bool(true),
	})
	require.NoError(t, err)
	require.Len(t, body.Content, 1)
	assert.Equal(t, []byte("v2"), body.Content[0].Value)

	generated, err := client.StoreObject(ctx, StoreObjectReq{Bucket: []byte("b"), Content: Content{Value: []byte("v3")}})
	require.NoError(t, err)
	require.NotEmpty(t, generated.Key)

	fetched, err := client.FetchObject(ctx, FetchObjectReq{Bucket: []byte("b"), Key: generated.Key})
	require.NoError(t, err)
	require.Len(t, fetched.Content, 1)
	assert.Equal(t, []byte("v3"), fetched.Content[0].Value)
}

func TestClient_StoreMissingValue(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)

	_, err := client.StoreObject(context.Background(), StoreObjectReq{Bucket: []byte("b"), Key: []byte("k")})

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, 0, srv.Requests(), "nothing is sent")
}

func TestClient_ServerErrorKeepsConnection(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	req := StoreObjectReq{Bucket: []byte("b"), Key: []byte("k"), Content: Content{Value: []byte("v")}}
	_, err := client.StoreObject(ctx, req)
	require.NoError(t, err)

	req.IfNoneMatch = pbc.Bool(true)
	_, err = client.StoreObject(ctx, req)
	requireServerError(t, err, "match_found")
	assert.False(t, ShouldCloseConnection(err))

	require.NoError(t, client.Ping(ctx))
	assert.Equal(t, 1, srv.Accepted())
}

func TestClient_Delete(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	_, err := client.StoreObject(ctx, StoreObjectReq{Bucket: []byte("b"), Key: []byte("k"), Content: Content{Value: []byte("v")}})
	require.NoError(t, err)

	require.NoError(t, client.DeleteObject(ctx, DeleteObjectReq{Bucket: []byte("b"), Key: []byte("k")}))

	resp, err := client.FetchObject(ctx, FetchObjectReq{Bucket: []byte("b"), Key: []byte("k")})
	require.NoError(t, err)
	assert.Empty(t, resp.Content)

	require.NoError(t, client.DeleteObject(ctx, DeleteObjectReq{Bucket: []byte("b"), Key: []byte("k")}), "deleting a missing key succeeds")
}

func TestClient_BucketProperties(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	props, err := client.GetBucketProperties(ctx, []byte("b"))
	require.NoError(t, err)
	require.NotNil(t, props.NVal)
	assert.Equal(t, uint32(3), *props.NVal)

	err = client.SetBucketProperties(ctx, []byte("b"), BucketProps{
		NVal:      pbc.Uint32(2),
		AllowMult: pbc.Bool(true),
		Backend:   []byte("leveldb"),
	})
	require.NoError(t, err)

	props, err = client.GetBucketProperties(ctx, []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), *props.NVal)
	assert.True(t, *props.AllowMult)
	assert.Equal(t, []byte("leveldb"), props.Backend)
	assert.True(t, *props.NotfoundOK, "untouched properties keep their defaults")

	require.NoError(t, client.ResetBucket(ctx, nil, []byte("b")))

	props, err = client.GetBucketProperties(ctx, []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, uint32(3), *props.NVal)
	assert.Nil(t, props.Backend)
}

func TestClient_BucketTypeProperties(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	_, err := client.GetBucketTypeProperties(ctx, []byte("maps"))
	requireServerError(t, err, "no_type")

	err = client.SetBucketTypeProperties(ctx, []byte("maps"), BucketProps{Datatype: []byte("map")})
	require.NoError(t, err)

	props, err := client.GetBucketTypeProperties(ctx, []byte("maps"))
	require.NoError(t, err)
	assert.Equal(t, []byte("map"), props.Datatype)

	_, err = client.StoreObject(ctx, StoreObjectReq{
		Type:    []byte("maps"),
		Bucket:  []byte("b"),
		Key:     []byte("k"),
		Content: Content{Value: []byte("v")},
	})
	require.NoError(t, err)

	stream, err := client.StreamKeysOfType(ctx, []byte("maps"), []byte("b"))
	require.NoError(t, err)
	defer stream.Close()

	keys, err := stream.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("k")}, keys)
}

func TestClient_FetchPreflist(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	preflist, err := client.FetchPreflist(ctx, []byte("b"), []byte("k"))
	require.NoError(t, err)
	require.Len(t, preflist, 3)

	partitions := map[int64]bool{}
	for _, item := range preflist {
		assert.True(t, item.Primary)
		assert.NotEmpty(t, item.Node)
		partitions[item.Partition] = true
	}
	assert.Len(t, partitions, 3)

	again, err := client.FetchPreflist(ctx, []byte("b"), []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, preflist, again)

	require.NoError(t, client.SetBucketProperties(ctx, []byte("b"), BucketProps{NVal: pbc.Uint32(5)}))
	preflist, err = client.FetchPreflist(ctx, []byte("b"), []byte("k"))
	require.NoError(t, err)
	assert.Len(t, preflist, 5)
}

func TestClient_FetchPreflistFallback(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)

	for _, node := range srv.Nodes[:2] {
		srv.SetNodeDown(node, true)
	}

	preflist, err := client.FetchPreflist(context.Background(), []byte("b"), []byte("k"))
	require.NoError(t, err)

	var fallbacks int
	for _, item := range preflist {
		if !item.Primary {
			fallbacks++
			assert.Equal(t, srv.Nodes[2], string(item.Node))
		}
	}
	assert.Equal(t, 2, fallbacks)
}

func TestClient_YokozunaSchema(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	schema := []byte(`<?xml version="1.0"?><schema name="people"/>`)
	require.NoError(t, client.SetYokozunaSchema(ctx, []byte("people"), schema))

	content, err := client.GetYokozunaSchema(ctx, []byte("people"))
	require.NoError(t, err)
	assert.Equal(t, schema, content)

	_, err = client.GetYokozunaSchema(ctx, []byte("missing"))
	requireServerError(t, err, "notfound")
}

func TestClient_YokozunaIndex(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	require.NoError(t, client.SetYokozunaIndex(ctx, YokozunaIndex{Name: []byte("idx1")}))
	require.NoError(t, client.SetYokozunaIndex(ctx, YokozunaIndex{Name: []byte("idx2"), NVal: pbc.Uint32(2)}))

	indexes, err := client.GetYokozunaIndex(ctx, []byte("idx1"))
	require.NoError(t, err)
	require.Len(t, indexes, 1)
	assert.Equal(t, []byte("idx1"), indexes[0].Name)
	assert.Equal(t, []byte("_yz_default"), indexes[0].Schema)

	indexes, err = client.GetYokozunaIndex(ctx, nil)
	require.NoError(t, err)
	require.Len(t, indexes, 2)
	assert.Equal(t, uint32(2), *indexes[1].NVal)

	require.NoError(t, client.DeleteYokozunaIndex(ctx, []byte("idx1")))

	_, err = client.GetYokozunaIndex(ctx, []byte("idx1"))
	requireServerError(t, err, "notfound")

	err = client.DeleteYokozunaIndex(ctx, []byte("idx1"))
	requireServerError(t, err, "notfound")

	err = client.SetYokozunaIndex(ctx, YokozunaIndex{Name: []byte("idx3"), Schema: []byte("nope")})
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
}

func TestClient_Search(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	require.NoError(t, client.SetYokozunaIndex(ctx, YokozunaIndex{Name: []byte("fruit")}))
	require.NoError(t, client.SetBucketProperties(ctx, []byte("basket"), BucketProps{SearchIndex: []byte("fruit")}))

	for key, value := range map[string]string{"a": "apple pie", "b": "banana", "c": "apple juice"} {
		_, err := client.StoreObject(ctx, StoreObjectReq{Bucket: []byte("basket"), Key: []byte(key), Content: Content{Value: []byte(value)}})
		require.NoError(t, err)
	}

	resp, err := client.Search(ctx, SearchQueryReq{Q: []byte("value:apple"), Index: []byte("fruit")})
	require.NoError(t, err)
	require.NotNil(t, resp.NumFound)
	assert.Equal(t, uint32(2), *resp.NumFound)
	require.Len(t, resp.Docs, 2)

	key, ok := resp.Docs[0].Get("_yz_rk")
	require.True(t, ok)
	assert.Equal(t, []byte("a"), key)

	resp, err = client.Search(ctx, SearchQueryReq{Q: []byte("*:*"), Index: []byte("fruit"), Rows: pbc.Uint32(1)})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), *resp.NumFound)
	assert.Len(t, resp.Docs, 1)

	_, err = client.Search(ctx, SearchQueryReq{Q: []byte("*:*"), Index: []byte("nope")})
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
}

func TestClient_ListBucketsAndKeys(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	for _, bucket := range []string{"b1", "b2", "b3"} {
		for _, key := range []string{"k1", "k2", "k3", "k4", "k5"} {
			_, err := client.StoreObject(ctx, StoreObjectReq{Bucket: []byte(bucket), Key: []byte(key), Content: Content{Value: []byte("v")}})
			require.NoError(t, err)
		}
	}

	buckets, err := client.ListBuckets(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("b1"), []byte("b2"), []byte("b3")}, buckets)

	keys, err := client.ListKeys(ctx, []byte("b2"))
	require.NoError(t, err)
	assert.Len(t, keys, 5)

	keys, err = client.ListKeys(ctx, []byte("empty"))
	require.NoError(t, err)
	assert.Empty(t, keys)

	stats := client.Stats()
	assert.Equal(t, uint64(3), stats.StreamsOpened)
	assert.Equal(t, 4, srv.Accepted(), "each listing dials its own connection")
}

func TestClient_UnexpectedReplyNeedsReconnect(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	srv.Handle(pbc.CodePingReq, func(w io.Writer, _ []byte) error {
		_, err := w.Write(testutils.Frame(pbc.CodeGetResp, nil))
		return err
	})

	err := client.Ping(ctx)
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	require.True(t, ShouldCloseConnection(err))

	require.NoError(t, client.Reconnect())
	require.NoError(t, client.Ping(ctx))
	assert.Equal(t, 2, srv.Accepted())
}

func TestClient_ScriptedServerError(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)

	srv.FailNext(pbc.CodeGetServerInfoReq, 7, "overloaded")

	_, err := client.ServerInfo(context.Background())

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, uint32(7), serverErr.Code)
	assert.Equal(t, "riak: server error 7: overloaded", err.Error())

	_, err = client.ServerInfo(context.Background())
	require.NoError(t, err)
}

func TestClient_SetTimeout(t *testing.T) {
	srv := startFakeServer(t)
	client := newTestClient(t, srv)

	client.SetTimeout(50 * time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, client.Connection().Timeout())

	srv.Handle(pbc.CodePingReq, func(w io.Writer, _ []byte) error {
		time.Sleep(300 * time.Millisecond)
		return nil
	})

	err := client.Ping(context.Background())
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
}

func TestServerTimeout(t *testing.T) {
	assert.Nil(t, serverTimeout(0))
	assert.Equal(t, uint32(1500), *serverTimeout(1500 * time.Millisecond))
	assert.Equal(t, uint32(3600000), *serverTimeout(DefaultTimeout))
}
