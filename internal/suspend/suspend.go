package suspend

import (
	"sync"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/kvstore"
)

// Queue holds carts set aside before finalization, in insertion order.
// Entries have no priority and never expire.
type Queue struct {
	mu    sync.RWMutex
	kv    kvstore.Store
	items []domain.SuspendedSale
}

func New(kv kvstore.Store) *Queue {
	return &Queue{kv: kv}
}

// Load reads the persisted queue; absent or corrupt values leave it empty
func (q *Queue) Load() {
	var items []domain.SuspendedSale
	if !kvstore.LoadJSON(q.kv, domain.KeySuspended, &items) {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = items
}

func (q *Queue) persist() {
	_ = kvstore.SaveJSON(q.kv, domain.KeySuspended, q.items)
}

func (q *Queue) Push(s domain.SuspendedSale) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, s.Clone())
	q.persist()
}

func (q *Queue) Get(id string) (domain.SuspendedSale, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if i := q.indexOf(id); i >= 0 {
		return q.items[i].Clone(), true
	}
	return domain.SuspendedSale{}, false
}

// Take removes and returns the entry with id
func (q *Queue) Take(id string) (domain.SuspendedSale, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := q.indexOf(id)
	if i < 0 {
		return domain.SuspendedSale{}, false
	}
	s := q.items[i]
	q.items = append(q.items[:i:i], q.items[i+1:]...)
	q.persist()
	return s, true
}

// Delete removes the entry with id, a no-op when absent
func (q *Queue) Delete(id string) bool {
	_, ok := q.Take(id)
	return ok
}

func (q *Queue) List() []domain.SuspendedSale {
	q.mu.RLock()
	defer q.mu.RUnlock()
	result := make([]domain.SuspendedSale, len(q.items))
	for i, s := range q.items {
		result[i] = s.Clone()
	}
	return result
}

func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

func (q *Queue) indexOf(id string) int {
	for i, s := range q.items {
		if s.ID == id {
			return i
		}
	}
	return -1
}
