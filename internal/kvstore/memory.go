package kvstore

import (
	"sync"

	"github.com/pkg/errors"
)

var ErrWriteFailed = errors.New("write failed")

// MemoryStore is a volatile Store, used by tests and as the fallback when
// the configured backend cannot be opened
type MemoryStore struct {
	notifier
	mu         sync.RWMutex
	data       map[string][]byte
	failWrites bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notifier: newNotifier(), data: map[string][]byte{}}
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	if s.failWrites {
		s.mu.Unlock()
		return ErrWriteFailed
	}
	s.data[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	s.publish(key, value)
	return nil
}

// FailWrites makes every following Set return ErrWriteFailed
func (s *MemoryStore) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

func (s *MemoryStore) Close() error {
	return nil
}
