package memory

import (
	"sync"

	"github.com/mrops-br/catalog-api/internal/domain"
)

// Store holds categories and products behind a single lock so that
// cross-collection checks (name uniqueness, category references) and the
// writes they guard happen atomically.
type Store struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category
	products   map[string]*domain.Product
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		categories: make(map[string]*domain.Category),
		products:   make(map[string]*domain.Product),
	}
}

func (s *Store) categoryNameTaken(name, exceptID string) bool {
	for id, c := range s.categories {
		if id != exceptID && c.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) categoryReferenced(id string) bool {
	for _, p := range s.products {
		if p.CategoryID == id {
			return true
		}
	}
	return false
}

// expand returns a detached copy of p with its category reference filled.
func (s *Store) expand(p *domain.Product) *domain.Product {
	out := *p
	out.Category = nil
	if c, ok := s.categories[p.CategoryID]; ok {
		cc := *c
		out.Category = &cc
	}
	return &out
}
