package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	categoryID := NewID()
	zero := 0
	inactive := false

	testCases := []struct {
		name        string
		attrs       ProductAttributes
		expectedErr error
		check       func(t *testing.T, p *Product)
	}{
		{
			name:  "Defaults applied",
			attrs: ProductAttributes{Name: "Widget", Price: decimal.NewFromFloat(9.99), CategoryID: categoryID},
			check: func(t *testing.T, p *Product) {
				assert.True(t, p.Active, "Active should default to true")
				assert.Equal(t, 0, p.Quantity)
				assert.True(t, IsValidID(p.ID))
				assert.False(t, p.CreatedAt.IsZero())
			},
		},
		{
			name:  "Explicit zero values kept",
			attrs: ProductAttributes{Name: "Widget", Price: decimal.NewFromInt(1), CategoryID: categoryID, Quantity: &zero, Active: &inactive},
			check: func(t *testing.T, p *Product) {
				assert.False(t, p.Active)
				assert.Equal(t, 0, p.Quantity)
			},
		},
		{
			name:        "Zero price rejected",
			attrs:       ProductAttributes{Name: "Widget", Price: decimal.Zero, CategoryID: categoryID},
			expectedErr: ErrInvalidProductPrice,
		},
		{
			name:        "Negative price rejected",
			attrs:       ProductAttributes{Name: "Widget", Price: decimal.NewFromInt(-1), CategoryID: categoryID},
			expectedErr: ErrInvalidProductPrice,
		},
		{
			name:        "Empty name rejected",
			attrs:       ProductAttributes{Name: "", Price: decimal.NewFromInt(1), CategoryID: categoryID},
			expectedErr: ErrInvalidProductName,
		},
		{
			name:  "Whitespace name accepted",
			attrs: ProductAttributes{Name: "  ", Price: decimal.NewFromInt(1), CategoryID: categoryID},
			check: func(t *testing.T, p *Product) {
				assert.Equal(t, "  ", p.Name)
			},
		},
		{
			name:        "Malformed category rejected",
			attrs:       ProductAttributes{Name: "Widget", Price: decimal.NewFromInt(1), CategoryID: "books"},
			expectedErr: ErrInvalidCategoryID,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewProduct(tc.attrs)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.ErrorIs(t, err, ErrValidation)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			tc.check(t, p)
		})
	}
}

func TestProductApply(t *testing.T) {
	p, err := NewProduct(ProductAttributes{Name: "Widget", Price: decimal.NewFromInt(5), CategoryID: NewID()})
	require.NoError(t, err)
	p.Category = &Category{ID: p.CategoryID, Name: "Tools"}

	t.Run("Partial update keeps other fields", func(t *testing.T) {
		next := *p
		name := "Widget Pro"
		require.NoError(t, next.Apply(ProductPatch{Name: &name}))
		assert.Equal(t, "Widget Pro", next.Name)
		assert.True(t, next.Price.Equal(decimal.NewFromInt(5)))
		assert.NotNil(t, next.Category, "Category stays expanded when unchanged")
	})

	t.Run("Invalid patch leaves product untouched", func(t *testing.T) {
		next := *p
		price := decimal.NewFromInt(-3)
		err := next.Apply(ProductPatch{Price: &price})
		assert.ErrorIs(t, err, ErrInvalidProductPrice)
		assert.True(t, next.Price.Equal(decimal.NewFromInt(5)))
	})

	t.Run("Category change drops expansion", func(t *testing.T) {
		next := *p
		other := NewID()
		require.NoError(t, next.Apply(ProductPatch{CategoryID: &other}))
		assert.Equal(t, other, next.CategoryID)
		assert.Nil(t, next.Category)
	})
}

func TestProductFilterMatches(t *testing.T) {
	categoryID := NewID()
	active := true
	inactive := false
	p := &Product{Name: "Widget Pro", Active: true, CategoryID: categoryID}

	assert.True(t, ProductFilter{}.Matches(p))
	assert.True(t, ProductFilter{Name: "widget"}.Matches(p))
	assert.True(t, ProductFilter{Name: "GET P"}.Matches(p))
	assert.False(t, ProductFilter{Name: "gadget"}.Matches(p))
	assert.True(t, ProductFilter{Active: &active}.Matches(p))
	assert.False(t, ProductFilter{Active: &inactive}.Matches(p))
	assert.True(t, ProductFilter{CategoryID: categoryID}.Matches(p))
	assert.False(t, ProductFilter{CategoryID: NewID()}.Matches(p))
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID(NewID()))
	assert.False(t, IsValidID(""))
	assert.False(t, IsValidID("64b7f0c2e1a2b3c4d5e6f7a8"))
	assert.False(t, IsValidID("{"+NewID()+"}"))
}
