package domain

import (
	"context"
	"strings"
)

// ProductFilter narrows a product listing. Zero fields match everything.
type ProductFilter struct {
	CategoryID string
	Active     *bool
	// Name is matched as a case-insensitive literal substring.
	Name string
}

// Matches reports whether p passes the filter. Backends that cannot push
// the filter down to the store use it directly.
func (f ProductFilter) Matches(p *Product) bool {
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.Active != nil && p.Active != *f.Active {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
		return false
	}
	return true
}

// CategoryRepository defines the contract for category storage
type CategoryRepository interface {
	// Create stores a new category. A duplicate name yields a conflict.
	Create(ctx context.Context, category *Category) error
	FindAll(ctx context.Context) ([]*Category, error)
	FindByID(ctx context.Context, id string) (*Category, error)
	// Update loads the category, applies mutate and persists the result
	// as one unit. A rename onto an existing name yields a conflict.
	Update(ctx context.Context, id string, mutate func(*Category) error) (*Category, error)
	// Delete removes the category unless a product references it. The
	// reference check and the removal are atomic.
	Delete(ctx context.Context, id string) (*Category, error)
}

// ProductRepository defines the contract for product storage. Returned
// products carry their expanded Category.
type ProductRepository interface {
	// Create stores a new product. The referenced category must exist at
	// the moment of insertion, otherwise ErrUnknownCategory is returned.
	Create(ctx context.Context, product *Product) error
	Find(ctx context.Context, filter ProductFilter) ([]*Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, id string, mutate func(*Product) error) (*Product, error)
	Delete(ctx context.Context, id string) (*Product, error)
}
