// Package lru is a sharded LRU cache keyed by uint64 hashes with a byte
// budget split evenly across shards. Values carry a caller-supplied cost,
// typically the byte size of whatever produced them.
package lru

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

var ErrIllegalCapacity = errors.New("illegal lru cache capacity")
var ErrInvalidSharding = errors.New("invalid sharding")

type OnEvict[V any] func(key uint64, value V)

type Cache[V any] struct {
	maxBytes uint64
	capacity uint64
	shards   []*shard[V]
}

func New[V any](shards int, maxTotalBytes uint64, onEvict OnEvict[V]) (*Cache[V], error) {
	if maxTotalBytes <= 2 {
		return nil, ErrIllegalCapacity
	}

	if shards < 2 {
		return nil, ErrInvalidSharding
	}

	c := Cache[V]{
		maxBytes: maxTotalBytes,
		capacity: uint64(shards),
		shards:   make([]*shard[V], shards),
	}

	shardMaxBytes := maxTotalBytes / c.capacity
	for i := range c.shards {
		c.shards[i] = newShard[V](shardMaxBytes, onEvict)
	}

	return &c, nil
}

// Add stores value with its cost under key and reports whether an
// eviction happened to make room.
func (c *Cache[V]) Add(key uint64, value V, cost uint64) bool {
	return c.getShard(key).add(key, value, cost)
}

func (c *Cache[V]) Get(key uint64) (V, bool) {
	return c.getShard(key).get(key)
}

func (c *Cache[V]) Remove(key uint64) {
	c.getShard(key).remove(key)
}

func (c *Cache[V]) Purge() {
	var wg sync.WaitGroup

	wg.Add(len(c.shards))
	for i := range c.shards {
		go func(i int) {
			defer wg.Done()
			c.shards[i].purge()
		}(i)
	}

	wg.Wait()
}

func (c *Cache[V]) Count() int {
	count := 0
	for i := range c.shards {
		count += c.shards[i].count()
	}
	return count
}

func (c *Cache[V]) Keys() []uint64 {
	keys := make([]uint64, 0, c.Count())

	for i := range c.shards {
		keys = append(keys, c.shards[i].keys()...)
	}

	return keys
}

func (c *Cache[V]) getShard(key uint64) *shard[V] {
	bs := make([]byte, 8)
	binary.LittleEndian.PutUint64(bs, key)
	hash := xxhash.Sum64(bs)
	return c.shards[hash%c.capacity]
}
