package cache

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// node is a single entry in a shard's insertion-ordered list.
type node struct {
	key   string
	entry Entry
	prev  *node
	next  *node
}

func (n *node) reset() {
	n.key = ""
	n.entry = Entry{}
	n.prev = nil
	n.next = nil
}

// shard is a bounded insertion-ordered map. head is the newest entry and
// tail the oldest; the tail is evicted when the shard is full.
type shard struct {
	mu    sync.Mutex
	items map[string]*node
	head  *node
	tail  *node
	max   int
	pool  *sync.Pool
}

func (s *shard) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (s *shard) pushFront(n *node) {
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

// remove must be called with s.mu held.
func (s *shard) remove(n *node) {
	s.unlink(n)
	delete(s.items, n.key)
	n.reset()
	s.pool.Put(n)
}

func (s *shard) get(key string, now time.Time) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[key]
	if !ok {
		return Entry{}, false
	}
	if n.entry.Expired(now) {
		s.remove(n)
		return Entry{}, false
	}
	return n.entry, true
}

// set stores an entry as the newest insertion and reports whether an older
// entry was evicted to make room.
func (s *shard) set(key string, e Entry) (evicted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.items[key]; ok {
		n.entry = e
		s.unlink(n)
		s.pushFront(n)
		return false
	}
	if len(s.items) >= s.max && s.tail != nil {
		s.remove(s.tail)
		evicted = true
	}
	n := s.pool.Get().(*node)
	n.key = key
	n.entry = e
	s.items[key] = n
	s.pushFront(n)
	return evicted
}

func (s *shard) purge(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for n := s.tail; n != nil; {
		prev := n.prev
		if n.entry.Expired(now) {
			s.remove(n)
			purged++
		}
		n = prev
	}
	return purged
}

func (s *shard) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// memoryTier spreads keys over independent shards so unrelated keys never
// contend on the same lock.
type memoryTier struct {
	shards []*shard
}

func newMemoryTier(capacity, shardCount int) *memoryTier {
	if shardCount > capacity {
		shardCount = capacity
	}
	// The first capacity%shardCount shards take one extra slot so the
	// shard maxima add up to capacity.
	base, extra := capacity/shardCount, capacity%shardCount
	pool := &sync.Pool{New: func() interface{} { return &node{} }}
	m := &memoryTier{shards: make([]*shard, shardCount)}
	for i := range m.shards {
		per := base
		if i < extra {
			per++
		}
		m.shards[i] = &shard{
			items: make(map[string]*node, per),
			max:   per,
			pool:  pool,
		}
	}
	return m
}

func (m *memoryTier) shardFor(key string) *shard {
	return m.shards[xxhash.Sum64String(key)%uint64(len(m.shards))]
}

func (m *memoryTier) get(key string, now time.Time) (Entry, bool) {
	return m.shardFor(key).get(key, now)
}

func (m *memoryTier) set(key string, e Entry) bool {
	return m.shardFor(key).set(key, e)
}

func (m *memoryTier) purge(now time.Time) int {
	total := 0
	for _, s := range m.shards {
		total += s.purge(now)
	}
	return total
}

func (m *memoryTier) len() int {
	total := 0
	for _, s := range m.shards {
		total += s.len()
	}
	return total
}
