// Package snapshot keeps the last successfully loaded view per session and
// tracks which sessions have a load in flight.
package snapshot

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultSize = 4096

type entry[T any] struct {
	gen   uint64
	value T
}

type Store[T any] struct {
	cache *lru.Cache[string, entry[T]]

	mu       sync.Mutex
	next     uint64
	inflight map[string]int
}

func New[T any](size int) (*Store[T], error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[string, entry[T]](size)
	if err != nil {
		return nil, err
	}
	return &Store[T]{cache: c, inflight: make(map[string]int)}, nil
}

// Load is one in-flight read of a key. Loads are ordered by when they began.
type Load[T any] struct {
	store *Store[T]
	key   string
	gen   uint64
	once  sync.Once
}

// Begin marks a load as started for key.
func (s *Store[T]) Begin(key string) *Load[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.inflight[key]++
	return &Load[T]{store: s, key: key, gen: s.next}
}

// Done ends the load. Calling it more than once is a no-op.
func (l *Load[T]) Done() {
	l.once.Do(func() {
		s := l.store
		s.mu.Lock()
		defer s.mu.Unlock()
		s.inflight[l.key]--
		if s.inflight[l.key] <= 0 {
			delete(s.inflight, l.key)
		}
	})
}

// Put records v as the key's snapshot unless something that began after this
// load has already been stored. It reports whether v was kept.
func (l *Load[T]) Put(v T) bool {
	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.cache.Peek(l.key); ok && cur.gen > l.gen {
		return false
	}
	s.cache.Add(l.key, entry[T]{gen: l.gen, value: v})
	return true
}

func (s *Store[T]) Loading(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight[key] > 0
}

// Put overwrites the key's snapshot and supersedes every load already in flight.
func (s *Store[T]) Put(key string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.cache.Add(key, entry[T]{gen: s.next, value: v})
}

func (s *Store[T]) Get(key string) (T, bool) {
	e, ok := s.cache.Get(key)
	return e.value, ok
}
