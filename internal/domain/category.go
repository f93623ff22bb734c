package domain

import (
	"time"
)

// Category represents a product category entity
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCategory creates a new category with validation
func NewCategory(name string) (*Category, error) {
	now := time.Now().UTC()
	category := &Category{
		ID:        NewID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	return category, nil
}

// Validate performs business validation on the category
func (c *Category) Validate() error {
	if c.Name == "" {
		return ErrCategoryNameRequired
	}
	return nil
}

// Rename changes the category name and bumps UpdatedAt.
func (c *Category) Rename(name string) error {
	if name == "" {
		return ErrCategoryNameRequired
	}
	c.Name = name
	c.UpdatedAt = time.Now().UTC()
	return nil
}
