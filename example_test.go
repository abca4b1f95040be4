package riak_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/tautek/riak"
	"github.com/tautek/riak/internal/testutils"
)

func Example() {
	srv, err := testutils.NewFakeServer()
	if err != nil {
		log.Fatal(err)
	}
	defer srv.Close()

	ctx := context.Background()

	client, err := riak.Connect(ctx, srv.Addr())
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	_, err = client.StoreObject(ctx, riak.StoreObjectReq{
		Bucket: []byte("users"),
		Key:    []byte("alice"),
		Content: riak.Content{
			Value:       []byte(`{"name":"Alice"}`),
			ContentType: []byte("application/json"),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	resp, err := client.FetchObject(ctx, riak.FetchObjectReq{Bucket: []byte("users"), Key: []byte("alice")})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(resp.Content[0].Value))

	// Output: {"name":"Alice"}
}

func ExampleClient_StreamKeys() {
	srv, err := testutils.NewFakeServer()
	if err != nil {
		log.Fatal(err)
	}
	defer srv.Close()

	ctx := context.Background()

	client, err := riak.Connect(ctx, srv.Addr())
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	for _, key := range []string{"a", "b", "c"} {
		_, err := client.StoreObject(ctx, riak.StoreObjectReq{
			Bucket:  []byte("letters"),
			Key:     []byte(key),
			Content: riak.Content{Value: []byte(key)},
		})
		if err != nil {
			log.Fatal(err)
		}
	}

	stream, err := client.StreamKeys(ctx, []byte("letters"))
	if err != nil {
		log.Fatal(err)
	}
	defer stream.Close()

	for {
		batch, err := stream.Next(ctx)
		if errors.Is(err, riak.ErrEndOfStream) {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%d keys: %q\n", len(batch), batch)
	}

	// Output:
	// 2 keys: ["a" "b"]
	// 1 keys: ["c"]
}

func ExampleServerError() {
	srv, err := testutils.NewFakeServer()
	if err != nil {
		log.Fatal(err)
	}
	defer srv.Close()

	ctx := context.Background()

	client, err := riak.Connect(ctx, srv.Addr())
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	_, err = client.GetYokozunaSchema(ctx, []byte("missing"))

	var serverErr *riak.ServerError
	if errors.As(err, &serverErr) {
		fmt.Printf("server said: %s\n", serverErr.Data)
		fmt.Println("reconnect needed:", riak.ShouldCloseConnection(err))
	}

	// Output:
	// server said: notfound
	// reconnect needed: false
}
