package riak_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/tautek/riak"
	"github.com/tautek/riak/internal/testutils"
)

func ExampleNewCircuitBreakerSettings() {
	srv, err := testutils.NewFakeServer()
	if err != nil {
		log.Fatal(err)
	}
	defer srv.Close()

	settings := riak.NewCircuitBreakerSettings(3, time.Minute, 10*time.Second)
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		fmt.Printf("breaker: %s -> %s\n", from, to)
	}

	ctx := context.Background()
	client, err := riak.NewClient(ctx, riak.Config{
		Address:        srv.Addr(),
		CircuitBreaker: settings,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	// A closed socket fails every exchange until the breaker opens.
	_ = client.Connection().Close()
	for range 4 {
		err = client.Ping(ctx)
	}
	fmt.Println(err)

	// Output:
	// breaker: closed -> open
	// riak: i/o error during circuit breaker: circuit breaker is open
}
