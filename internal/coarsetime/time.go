// Package coarsetime is a clock refreshed every 50ms by a background
// goroutine, for connection idle bookkeeping where an atomic load is enough.
package coarsetime

import (
	"sync/atomic"
	"time"
)

const tick = 50 * time.Millisecond

var nanos atomic.Int64

func init() {
	nanos.Store(time.Now().UnixNano())

	go func() {
		for t := range time.Tick(tick) {
			nanos.Store(t.UnixNano())
		}
	}()
}

// Now returns the last refreshed time.
func Now() time.Time {
	return time.Unix(0, nanos.Load())
}

// Since returns the coarse time elapsed since t, never negative.
func Since(t time.Time) time.Duration {
	return max(Now().Sub(t), 0)
}
