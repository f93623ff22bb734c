package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents the product entity
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Active      bool
	CategoryID  string
	// Category is the expanded reference. Nil when the referenced
	// category could not be resolved.
	Category  *Category
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductAttributes holds the caller supplied fields of a new product.
type ProductAttributes struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    *int
	Active      *bool
	CategoryID  string
}

// NewProduct creates a new product with validation. Quantity defaults to 0
// and Active to true.
func NewProduct(attrs ProductAttributes) (*Product, error) {
	now := time.Now().UTC()
	product := &Product{
		ID:          NewID(),
		Name:        attrs.Name,
		Description: attrs.Description,
		Price:       attrs.Price,
		Active:      true,
		CategoryID:  attrs.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if attrs.Quantity != nil {
		product.Quantity = *attrs.Quantity
	}
	if attrs.Active != nil {
		product.Active = *attrs.Active
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrInvalidProductName
	}
	if !p.Price.IsPositive() {
		return ErrInvalidProductPrice
	}
	if !IsValidID(p.CategoryID) {
		return ErrInvalidCategoryID
	}
	return nil
}

// ProductPatch is a partial product update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
	Active      *bool
	CategoryID  *string
}

// Apply merges the patch into p and validates the result.
func (p *Product) Apply(patch ProductPatch) error {
	next := *p
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Price != nil {
		next.Price = *patch.Price
	}
	if patch.Quantity != nil {
		next.Quantity = *patch.Quantity
	}
	if patch.Active != nil {
		next.Active = *patch.Active
	}
	if patch.CategoryID != nil && *patch.CategoryID != p.CategoryID {
		next.CategoryID = *patch.CategoryID
		next.Category = nil
	}

	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now().UTC()
	*p = next
	return nil
}
