package internal

import "github.com/zeebo/xxh3"

// Ring places bucket/key pairs on a fixed number of partitions with xxh3
// and Jump consistent hashing (https://arxiv.org/abs/1406.2294).
type Ring struct {
	Partitions int
}

// Owner returns the partition owning bucket/key.
func (r Ring) Owner(bucket, key []byte) int {
	h := xxh3.New()
	_, _ = h.Write(bucket)
	_, _ = h.Write([]byte{'/'})
	_, _ = h.Write(key)
	return jump(h.Sum64(), r.Partitions)
}

// Preflist returns n consecutive partitions, starting at the owner of
// bucket/key and wrapping around the ring.
func (r Ring) Preflist(bucket, key []byte, n int) []int {
	if r.Partitions <= 0 {
		return nil
	}
	owner := r.Owner(bucket, key)
	partitions := make([]int, n)
	for i := range partitions {
		partitions[i] = (owner + i) % r.Partitions
	}
	return partitions
}

func jump(key uint64, buckets int) int {
	if buckets <= 0 {
		return 0
	}

	b, j := int64(-1), int64(0)
	for j < int64(buckets) {
		b = j
		key = key*2862933555777941757 + 1
		j = int64(float64(b+1) * (float64(int64(1)<<31) / float64((key>>33)+1)))
	}
	return int(b)
}
