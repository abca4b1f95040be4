package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJump(t *testing.T) {
	assert.Equal(t, 0, jump(12345, 0))
	assert.Equal(t, 0, jump(12345, 1))

	for key := uint64(0); key < 1000; key++ {
		b := jump(key, 64)
		assert.GreaterOrEqual(t, b, 0)
		assert.Less(t, b, 64)
	}

	// growing the bucket count only moves keys to the new bucket
	for key := uint64(0); key < 1000; key++ {
		before := jump(key, 10)
		after := jump(key, 11)
		if before != after {
			assert.Equal(t, 10, after)
		}
	}
}

func TestRing_Owner(t *testing.T) {
	ring := Ring{Partitions: 64}

	a := ring.Owner([]byte("bucket"), []byte("key"))
	assert.Equal(t, a, ring.Owner([]byte("bucket"), []byte("key")))
	assert.Less(t, a, 64)

	assert.Equal(t, 0, Ring{}.Owner([]byte("bucket"), []byte("key")))
}

func TestRing_Preflist(t *testing.T) {
	ring := Ring{Partitions: 4}

	partitions := ring.Preflist([]byte("bucket"), []byte("key"), 6)
	require.Len(t, partitions, 6)

	owner := ring.Owner([]byte("bucket"), []byte("key"))
	assert.Equal(t, owner, partitions[0])
	for i, p := range partitions {
		assert.Equal(t, (owner+i)%4, p)
	}

	assert.Nil(t, Ring{}.Preflist([]byte("bucket"), []byte("key"), 3))
}
