package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tautek/riak"
	"github.com/tautek/riak/internal/testutils"
)

type OperationType string

const (
	FetchHit    OperationType = "fetch-hit"
	StoreFetch  OperationType = "store-fetch"
	FetchMiss   OperationType = "fetch-miss"
	StoreDelete OperationType = "store-delete"
	ListKeys    OperationType = "list-keys"
	All         OperationType = "all"
)

const benchBucket = "riak-bench"

type BenchmarkResult struct {
	Operation    OperationType
	Duration     time.Duration
	TotalOps     int64
	Successes    int64
	Failures     int64
	AvgLatency   time.Duration
	OpsPerSecond float64
	Correctness  bool
	ErrorMessage string
	Stats        riak.ClientStats
}

// worker runs one iteration on its own client. It returns false when the
// result it saw is wrong, as opposed to failed, and the last error seen.
type worker func(ctx context.Context, client *riak.Client, workerID, iteration int, rec *recorder) (bool, error)

func main() {
	var (
		operation   = flag.String("operation", "all", "Operation type: fetch-hit, store-fetch, fetch-miss, store-delete, list-keys, or all")
		duration    = flag.Duration("duration", 5*time.Second, "Duration to run benchmarks")
		concurrency = flag.Int("concurrency", 1, "Number of concurrent workers, each with its own connection")
		address     = flag.String("address", "localhost:8087", "Riak protocol buffers address")
		valueSize   = flag.Int("value-size", 128, "Size of stored values in bytes")
		timeout     = flag.Duration("timeout", 5*time.Second, "Socket timeout")
		fake        = flag.Bool("fake", false, "Run against an in-process fake node instead of -address")
		metricsAddr = flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :9090")
	)
	flag.Parse()

	if *fake {
		srv, err := testutils.NewFakeServer()
		if err != nil {
			log.Fatalf("Failed to start fake node: %v", err)
		}
		defer srv.Close()
		*address = srv.Addr()
	}

	fmt.Printf("Riak Benchmark Tool\n")
	fmt.Printf("===================\n")
	fmt.Printf("Operation: %s\n", *operation)
	fmt.Printf("Duration: %v\n", *duration)
	fmt.Printf("Concurrency: %d\n", *concurrency)
	fmt.Printf("Address: %s\n", *address)
	fmt.Println()

	cfg := riak.Config{Address: *address, Timeout: *timeout}

	fmt.Print("Testing connection...")
	ctx := context.Background()
	client, err := riak.NewClient(ctx, cfg)
	if err == nil {
		err = client.Ping(ctx)
		client.Close()
	}
	if err != nil {
		fmt.Printf(" failed: %v\n", err)
		fmt.Printf("Make sure Riak is listening on %s, or pass -fake\n", *address)
		return
	}
	fmt.Println(" success!")
	fmt.Println()

	b := &bench{cfg: cfg, duration: *duration, concurrency: *concurrency, value: bytes.Repeat([]byte("v"), *valueSize)}

	if *metricsAddr != "" {
		b.metrics = newBenchMetrics()
		go func() {
			if err := b.metrics.serve(*metricsAddr); err != nil {
				log.Printf("Metrics server failed: %v", err)
			}
		}()
		fmt.Printf("Serving metrics on %s/metrics\n", *metricsAddr)
	}

	if OperationType(*operation) == All {
		for _, op := range []OperationType{FetchHit, StoreFetch, FetchMiss, StoreDelete, ListKeys} {
			fmt.Printf("\n--- Running %s benchmark ---\n", op)
			printResult(b.run(op))
			time.Sleep(500 * time.Millisecond)
		}
		return
	}
	printResult(b.run(OperationType(*operation)))
}

type bench struct {
	cfg         riak.Config
	duration    time.Duration
	concurrency int
	value       []byte
	metrics     *benchMetrics
}

func (b *bench) run(op OperationType) *BenchmarkResult {
	switch op {
	case FetchHit:
		return b.fetchHit()
	case StoreFetch:
		return b.execute(op, b.storeFetch)
	case FetchMiss:
		return b.execute(op, b.fetchMiss)
	case StoreDelete:
		return b.execute(op, b.storeDelete)
	case ListKeys:
		return b.execute(op, b.listKeys)
	}
	return &BenchmarkResult{
		Operation:    op,
		ErrorMessage: fmt.Sprintf("Unknown operation: %s", op),
	}
}

// recorder accumulates counters shared by all workers.
type recorder struct {
	totalOps, successes, failures, totalLatency int64

	op      OperationType
	metrics *benchMetrics
}

func (r *recorder) time(fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	r.metrics.observe(r.op, elapsed, err)
	atomic.AddInt64(&r.totalOps, 1)
	atomic.AddInt64(&r.totalLatency, int64(elapsed))
	if err != nil {
		atomic.AddInt64(&r.failures, 1)
	} else {
		atomic.AddInt64(&r.successes, 1)
	}
	return err
}

// execute runs fn in concurrency workers until the duration elapsed. A worker
// whose connection broke reconnects before its next iteration.
func (b *bench) execute(op OperationType, fn worker) *BenchmarkResult {
	ctx := context.Background()
	result := &BenchmarkResult{Operation: op, Correctness: true}
	rec := &recorder{op: op, metrics: b.metrics}

	var mu sync.Mutex
	var wg sync.WaitGroup
	startTime := time.Now()

	for i := 0; i < b.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			client, err := riak.NewClient(ctx, b.cfg)
			if err != nil {
				mu.Lock()
				result.Correctness = false
				result.ErrorMessage = fmt.Sprintf("worker %d: %v", workerID, err)
				mu.Unlock()
				return
			}
			defer func() {
				stats := client.Stats()
				client.Close()
				b.metrics.addClientStats(op, stats)
				mu.Lock()
				addStats(&result.Stats, stats)
				mu.Unlock()
			}()

			for iteration := 0; time.Since(startTime) < b.duration; iteration++ {
				correct, err := fn(ctx, client, workerID, iteration, rec)
				if !correct {
					mu.Lock()
					result.Correctness = false
					result.ErrorMessage = "Value mismatch"
					mu.Unlock()
				}
				if riak.ShouldCloseConnection(err) {
					_ = client.Reconnect()
				}
			}
		}(i)
	}

	wg.Wait()

	result.Duration = time.Since(startTime)
	result.TotalOps = rec.totalOps
	result.Successes = rec.successes
	result.Failures = rec.failures

	if rec.totalOps > 0 {
		result.AvgLatency = time.Duration(rec.totalLatency / rec.totalOps)
		result.OpsPerSecond = float64(rec.totalOps) / result.Duration.Seconds()
	}

	return result
}

func (b *bench) key(workerID, iteration int, prefix string) []byte {
	return []byte(fmt.Sprintf("%s-%d-%d", prefix, workerID, iteration))
}

func (b *bench) store(ctx context.Context, client *riak.Client, key, value []byte) error {
	_, err := client.StoreObject(ctx, riak.StoreObjectReq{
		Bucket:  []byte(benchBucket),
		Key:     key,
		Content: riak.Content{Value: value, ContentType: []byte("application/octet-stream")},
	})
	return err
}

func (b *bench) fetch(ctx context.Context, client *riak.Client, key []byte) ([]byte, bool, error) {
	resp, err := client.FetchObject(ctx, riak.FetchObjectReq{Bucket: []byte(benchBucket), Key: key})
	if err != nil || len(resp.Content) == 0 {
		return nil, false, err
	}
	return resp.Content[0].Value, true, nil
}

// Fetch-hit: 1 store then 100 fetches of the same key.
func (b *bench) fetchHit() *BenchmarkResult {
	ctx := context.Background()
	key := []byte("fetch-hit-key")

	fmt.Printf("Storing initial value for fetch-hit test...\n")
	client, err := riak.NewClient(ctx, b.cfg)
	if err == nil {
		err = b.store(ctx, client, key, b.value)
		client.Close()
	}
	if err != nil {
		return &BenchmarkResult{
			Operation:    FetchHit,
			ErrorMessage: fmt.Sprintf("Failed to store initial value: %v", err),
		}
	}

	fmt.Printf("Starting fetch-hit benchmark with %d workers for %v...\n", b.concurrency, b.duration)
	return b.execute(FetchHit, func(ctx context.Context, client *riak.Client, _, _ int, rec *recorder) (bool, error) {
		correct := true
		for range 100 {
			var value []byte
			var found bool
			err := rec.time(func() (err error) {
				value, found, err = b.fetch(ctx, client, key)
				return err
			})
			if err != nil {
				return correct, err
			}
			if !found || !bytes.Equal(value, b.value) {
				correct = false
			}
		}
		return correct, nil
	})
}

// Store-fetch: 1 store then 1 fetch of a fresh key.
func (b *bench) storeFetch(ctx context.Context, client *riak.Client, workerID, iteration int, rec *recorder) (bool, error) {
	key := b.key(workerID, iteration, "store-fetch")
	value := append(append([]byte{}, key...), b.value...)

	if err := rec.time(func() error { return b.store(ctx, client, key, value) }); err != nil {
		return true, err
	}

	var got []byte
	var found bool
	err := rec.time(func() (err error) {
		got, found, err = b.fetch(ctx, client, key)
		return err
	})
	if err != nil {
		return true, err
	}
	return found && bytes.Equal(got, value), nil
}

// Fetch-miss: 1 fetch of a key that was never stored.
func (b *bench) fetchMiss(ctx context.Context, client *riak.Client, workerID, iteration int, rec *recorder) (bool, error) {
	key := b.key(workerID, iteration, "nonexistent")

	var found bool
	err := rec.time(func() (err error) {
		_, found, err = b.fetch(ctx, client, key)
		return err
	})
	return err != nil || !found, err
}

// Store-delete: 1 store then 1 delete.
func (b *bench) storeDelete(ctx context.Context, client *riak.Client, workerID, iteration int, rec *recorder) (bool, error) {
	key := b.key(workerID, iteration, "delete")

	if err := rec.time(func() error { return b.store(ctx, client, key, b.value) }); err != nil {
		return true, err
	}
	err := rec.time(func() error {
		return client.DeleteObject(ctx, riak.DeleteObjectReq{Bucket: []byte(benchBucket), Key: key})
	})
	return true, err
}

// List-keys: 1 full key listing of the bench bucket.
func (b *bench) listKeys(ctx context.Context, client *riak.Client, _, _ int, rec *recorder) (bool, error) {
	err := rec.time(func() error {
		_, err := client.ListKeys(ctx, []byte(benchBucket))
		return err
	})
	return true, err
}

func addStats(dst *riak.ClientStats, s riak.ClientStats) {
	dst.Exchanges += s.Exchanges
	dst.StreamsOpened += s.StreamsOpened
	dst.StreamBatches += s.StreamBatches
	dst.ServerErrors += s.ServerErrors
	dst.Errors += s.Errors
	dst.Reconnects += s.Reconnects
	dst.BytesSent += s.BytesSent
	dst.BytesReceived += s.BytesReceived
}

func printResult(result *BenchmarkResult) {
	fmt.Printf("Operation: %s\n", result.Operation)
	fmt.Printf("Duration: %v\n", result.Duration)
	fmt.Printf("Total Operations: %d\n", result.TotalOps)
	fmt.Printf("Successes: %d\n", result.Successes)
	fmt.Printf("Failures: %d\n", result.Failures)
	if result.TotalOps > 0 {
		fmt.Printf("Success Rate: %.2f%%\n", float64(result.Successes)/float64(result.TotalOps)*100)
		fmt.Printf("Ops/sec: %.2f\n", result.OpsPerSecond)
		fmt.Printf("Avg Latency: %v\n", result.AvgLatency)
	}
	fmt.Printf("Bytes: sent=%d received=%d reconnects=%d server errors=%d\n",
		result.Stats.BytesSent, result.Stats.BytesReceived, result.Stats.Reconnects, result.Stats.ServerErrors)
	fmt.Printf("Correctness: %t\n", result.Correctness)
	if result.ErrorMessage != "" {
		fmt.Printf("Error: %s\n", result.ErrorMessage)
	}
	fmt.Println()
}
