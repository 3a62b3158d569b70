package lru

import (
	"container/list"
	"sync"
)

type shard[V any] struct {
	mu         sync.RWMutex
	lmu        sync.Mutex
	totalBytes uint64
	elemsCount int
	maxBytes   uint64
	evictList  *list.List
	elems      map[uint64]*list.Element
	onEvict    OnEvict[V]
}

type entry[V any] struct {
	key   uint64
	value V
	cost  uint64
}

func newShard[V any](maxBytes uint64, onEvict OnEvict[V]) *shard[V] {
	return &shard[V]{
		maxBytes:  maxBytes,
		evictList: list.New(),
		elems:     make(map[uint64]*list.Element),
		onEvict:   onEvict,
	}
}

func (s *shard[V]) get(key uint64) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	elem, ok := s.elems[key]
	if !ok {
		var zero V
		return zero, false
	}

	s.lmu.Lock()
	s.evictList.MoveToFront(elem)
	s.lmu.Unlock()
	return elem.Value.(*entry[V]).value, true
}

// add stores value under key and returns true if eviction happened.
func (s *shard[V]) add(key uint64, value V, cost uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// remove the oldest entries until the new value fits
	var evicted bool
	for s.totalBytes+cost > s.maxBytes {
		evictedKey, evictedValue, ok := s.removeOldestUnderLock()
		if !ok {
			break
		}
		evicted = true
		if s.onEvict != nil {
			s.onEvict(evictedKey, evictedValue)
		}
	}

	if elem, ok := s.elems[key]; ok {
		s.lmu.Lock()
		s.evictList.MoveToFront(elem)
		s.lmu.Unlock()

		ent := elem.Value.(*entry[V])
		s.totalBytes -= ent.cost
		ent.value = value
		ent.cost = cost
		s.totalBytes += cost
		return evicted
	}

	s.lmu.Lock()
	elem := s.evictList.PushFront(&entry[V]{
		key:   key,
		value: value,
		cost:  cost,
	})
	s.lmu.Unlock()

	s.totalBytes += cost
	s.elemsCount++
	s.elems[key] = elem
	return evicted
}

func (s *shard[V]) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k := range s.elems {
		delete(s.elems, k)
	}

	s.totalBytes = 0
	s.elemsCount = 0

	s.lmu.Lock()
	s.evictList.Init()
	s.lmu.Unlock()
}

func (s *shard[V]) remove(key uint64) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.elems[key]
	if !ok {
		var zero V
		return zero, false
	}

	_, value := s.removeElementUnderLock(elem)
	return value, true
}

func (s *shard[V]) removeOldestUnderLock() (uint64, V, bool) {
	s.lmu.Lock()
	elem := s.evictList.Back()
	s.lmu.Unlock()

	if elem == nil {
		var zero V
		return 0, zero, false
	}

	k, v := s.removeElementUnderLock(elem)
	return k, v, true
}

func (s *shard[V]) removeElementUnderLock(elem *list.Element) (uint64, V) {
	s.lmu.Lock()
	s.evictList.Remove(elem)
	s.lmu.Unlock()

	ent := elem.Value.(*entry[V])
	delete(s.elems, ent.key)
	s.totalBytes -= ent.cost
	s.elemsCount--
	return ent.key, ent.value
}

func (s *shard[V]) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elemsCount
}

func (s *shard[V]) keys() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]uint64, 0, s.elemsCount)
	for k := range s.elems {
		keys = append(keys, k)
	}
	return keys
}
