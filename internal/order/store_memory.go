package order

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps orders in memory for tests and the self-contained
// deployment mode.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, orders: make(map[int64]Order)}
}

func (s *MemoryStore) Create(_ context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = s.nextID
	s.nextID++
	o.CreatedAt = time.Now()
	s.orders[o.ID] = *cloneOrder(*o)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if o, ok := s.orders[id]; ok {
		return cloneOrder(o), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListByUser(_ context.Context, userID int64) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []Order
	for _, o := range s.orders {
		if o.UserID == userID {
			orders = append(orders, *cloneOrder(o))
		}
	}
	sortNewestFirst(orders)
	return orders, nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, *cloneOrder(o))
	}
	sortNewestFirst(orders)
	return orders, nil
}

func (s *MemoryStore) Update(_ context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		return ErrNotFound
	}
	s.orders[o.ID] = *cloneOrder(*o)
	return nil
}

func sortNewestFirst(orders []Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func cloneOrder(o Order) *Order {
	items := make([]Item, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return &o
}
