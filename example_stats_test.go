package riak_test

import (
	"context"
	"fmt"
	"log"

	"github.com/tautek/riak"
	"github.com/tautek/riak/internal/testutils"
)

// Stats can be read from a monitoring goroutine while the client is in use.
func ExampleClient_Stats() {
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

	_ = client.Ping(ctx)
	_, _ = client.FetchObject(ctx, riak.FetchObjectReq{Bucket: []byte("b"), Key: []byte("missing")})
	_, _ = client.GetYokozunaSchema(ctx, []byte("missing"))

	stats := client.Stats()
	fmt.Printf("Exchanges: %d\n", stats.Exchanges)
	fmt.Printf("Server errors: %d\n", stats.ServerErrors)
	fmt.Printf("Errors: %d\n", stats.Errors)

	// Output:
	// Exchanges: 2
	// Server errors: 1
	// Errors: 1
}
