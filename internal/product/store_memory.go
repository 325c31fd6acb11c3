package product

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps the catalog in memory for tests and the
// self-contained deployment mode.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	products map[int64]Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, products: make(map[int64]Product)}
}

func (s *MemoryStore) Create(_ context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextID
	s.nextID++
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Product
	keyword := strings.ToLower(filter.Keyword)
	for _, p := range s.products {
		if keyword == "" || strings.Contains(strings.ToLower(p.Name), keyword) {
			matched = append(matched, p)
		}
	}
	// Newest first, matching the reference listing order.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *MemoryStore) Update(_ context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now()
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}
