package coarsetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNow_Advances(t *testing.T) {
	start := Now()
	assert.WithinDuration(t, time.Now(), start, 2*tick)

	time.Sleep(3 * tick)
	assert.True(t, Now().After(start))
}

func TestSince(t *testing.T) {
	assert.Equal(t, time.Duration(0), Since(time.Now().Add(time.Hour)))
	assert.GreaterOrEqual(t, Since(time.Now().Add(-time.Second)), 900*time.Millisecond)
}

func BenchmarkNow(b *testing.B) {
	var t time.Time

	b.Run("time", func(b *testing.B) {
		for b.Loop() {
			t = time.Now()
		}
	})

	b.Run("coarsetime", func(b *testing.B) {
		for b.Loop() {
			t = Now()
		}
	})

	_ = t
}
