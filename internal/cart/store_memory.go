package cart

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps carts in memory for tests and the self-contained
// deployment mode.
type MemoryStore struct {
	mu        sync.RWMutex
	byUser    map[int64]Cart
	bySession map[string]Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byUser:    make(map[int64]Cart),
		bySession: make(map[string]Cart),
	}
}

func (s *MemoryStore) FindByUser(_ context.Context, userID int64) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.byUser[userID]; ok {
		return cloneCart(c), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindBySession(_ context.Context, sessionID string) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.bySession[sessionID]; ok {
		return cloneCart(c), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Save(_ context.Context, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.UpdatedAt = time.Now()
	stored := *cloneCart(*c)
	if c.UserID != 0 {
		s.byUser[c.UserID] = stored
	} else {
		s.bySession[c.SessionID] = stored
	}
	return nil
}

func (s *MemoryStore) DeleteByUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byUser, userID)
	return nil
}

func cloneCart(c Cart) *Cart {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return &c
}
