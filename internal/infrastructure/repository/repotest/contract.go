// Package repotest holds behaviour checks shared by every repository
// backend.
package repotest

import (
	"context"
	"testing"

	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty pair of repositories sharing one store.
type Factory func(t *testing.T) (domain.CategoryRepository, domain.ProductRepository)

// Run exercises the repository contract against the backend built by newRepos.
func Run(t *testing.T, newRepos Factory) {
	t.Run("CategoryCreateAndFind", func(t *testing.T) { testCategoryCreateAndFind(t, newRepos) })
	t.Run("CategoryDuplicateName", func(t *testing.T) { testCategoryDuplicateName(t, newRepos) })
	t.Run("CategoryUpdate", func(t *testing.T) { testCategoryUpdate(t, newRepos) })
	t.Run("CategoryDelete", func(t *testing.T) { testCategoryDelete(t, newRepos) })
	t.Run("ProductCreate", func(t *testing.T) { testProductCreate(t, newRepos) })
	t.Run("ProductPricePrecision", func(t *testing.T) { testProductPricePrecision(t, newRepos) })
	t.Run("ProductFind", func(t *testing.T) { testProductFind(t, newRepos) })
	t.Run("ProductUpdate", func(t *testing.T) { testProductUpdate(t, newRepos) })
	t.Run("ProductDelete", func(t *testing.T) { testProductDelete(t, newRepos) })
}

func mustCategory(t *testing.T, repo domain.CategoryRepository, name string) *domain.Category {
	t.Helper()
	c, err := domain.NewCategory(name)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func mustProduct(t *testing.T, repo domain.ProductRepository, name string, active bool, categoryID string) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(domain.ProductAttributes{
		Name:       name,
		Price:      decimal.RequireFromString("12.50"),
		Active:     &active,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func testCategoryCreateAndFind(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	categories, _ := newRepos(t)

	books := mustCategory(t, categories, "Books")
	mustCategory(t, categories, "Games")

	found, err := categories.FindByID(ctx, books.ID)
	require.NoError(t, err)
	assert.Equal(t, "Books", found.Name)

	all, err := categories.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = categories.FindByID(ctx, domain.NewID())
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func testCategoryDuplicateName(t *testing.T, newRepos Factory) {
	categories, _ := newRepos(t)
	mustCategory(t, categories, "Books")

	dup, err := domain.NewCategory("Books")
	require.NoError(t, err)
	err = categories.Create(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrConflict)

	other, err := domain.NewCategory("books")
	require.NoError(t, err)
	assert.NoError(t, categories.Create(context.Background(), other), "Names are case-sensitive")
}

func testCategoryUpdate(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	categories, _ := newRepos(t)
	books := mustCategory(t, categories, "Books")
	mustCategory(t, categories, "Games")

	updated, err := categories.Update(ctx, books.ID, func(c *domain.Category) error { return c.Rename("Novels") })
	require.NoError(t, err)
	assert.Equal(t, "Novels", updated.Name)
	assert.Equal(t, books.ID, updated.ID)

	_, err = categories.Update(ctx, books.ID, func(c *domain.Category) error { return c.Rename("Games") })
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = categories.Update(ctx, domain.NewID(), func(c *domain.Category) error { return c.Rename("X") })
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	found, err := categories.FindByID(ctx, books.ID)
	require.NoError(t, err)
	assert.Equal(t, "Novels", found.Name)
}

func testCategoryDelete(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	categories, products := newRepos(t)
	books := mustCategory(t, categories, "Books")
	empty := mustCategory(t, categories, "Empty")
	mustProduct(t, products, "Dune", true, books.ID)

	_, err := categories.Delete(ctx, books.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryInUse)

	deleted, err := categories.Delete(ctx, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, "Empty", deleted.Name)

	_, err = categories.FindByID(ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	_, err = categories.Delete(ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func testProductCreate(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	categories, products := newRepos(t)
	books := mustCategory(t, categories, "Books")

	p := mustProduct(t, products, "Dune", true, books.ID)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Books", p.Category.Name)

	orphan, err := domain.NewProduct(domain.ProductAttributes{
		Name:       "Orphan",
		Price:      decimal.NewFromInt(1),
		CategoryID: domain.NewID(),
	})
	require.NoError(t, err)
	assert.ErrorIs(t, products.Create(ctx, orphan), domain.ErrUnknownCategory)

	found, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, found.Name)
	assert.True(t, p.Price.Equal(found.Price))
	assert.Equal(t, p.Active, found.Active)
	assert.Equal(t, p.Quantity, found.Quantity)
	require.NotNil(t, found.Category)
	assert.Equal(t, books.ID, found.Category.ID)
	assert.Equal(t, "Books", found.Category.Name)
}

func testProductPricePrecision(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	categories, products := newRepos(t)
	books := mustCategory(t, categories, "Books")

	for _, raw := range []string{"0.001", "12.345", "12345678901.99"} {
		t.Run(raw, func(t *testing.T) {
			price := decimal.RequireFromString(raw)
			p, err := domain.NewProduct(domain.ProductAttributes{
				Name:       "Priced " + raw,
				Price:      price,
				CategoryID: books.ID,
			})
			require.NoError(t, err)
			require.NoError(t, products.Create(ctx, p))

			found, err := products.FindByID(ctx, p.ID)
			require.NoError(t, err)
			assert.True(t, price.Equal(found.Price), "stored %s, read back %s", price, found.Price)
		})
	}
}

func testProductFind(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	categories, products := newRepos(t)
	books := mustCategory(t, categories, "Books")
	tools := mustCategory(t, categories, "Tools")
	mustProduct(t, products, "Widget Pro", true, tools.ID)
	mustProduct(t, products, "Old widget", false, tools.ID)
	mustProduct(t, products, "Dune", true, books.ID)
	mustProduct(t, products, "100%_sure", true, books.ID)
	mustProduct(t, products, "Éclair Deluxe", true, books.ID)

	active := true
	inactive := false

	testCases := []struct {
		name     string
		filter   domain.ProductFilter
		expected []string
	}{
		{name: "No filter", filter: domain.ProductFilter{}, expected: []string{"Widget Pro", "Old widget", "Dune", "100%_sure", "Éclair Deluxe"}},
		{name: "Name substring case-insensitive", filter: domain.ProductFilter{Name: "WIDGET"}, expected: []string{"Widget Pro", "Old widget"}},
		{name: "Active only", filter: domain.ProductFilter{Active: &active, CategoryID: tools.ID}, expected: []string{"Widget Pro"}},
		{name: "Inactive only", filter: domain.ProductFilter{Active: &inactive}, expected: []string{"Old widget"}},
		{name: "Category", filter: domain.ProductFilter{CategoryID: books.ID}, expected: []string{"Dune", "100%_sure", "Éclair Deluxe"}},
		{name: "Non-ASCII name lower case", filter: domain.ProductFilter{Name: "éclair"}, expected: []string{"Éclair Deluxe"}},
		{name: "Non-ASCII name upper case", filter: domain.ProductFilter{Name: "ÉCLAIR DE"}, expected: []string{"Éclair Deluxe"}},
		{name: "Wildcards are literal", filter: domain.ProductFilter{Name: "0%_"}, expected: []string{"100%_sure"}},
		{name: "Underscore is literal", filter: domain.ProductFilter{Name: "d_ne"}, expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			found, err := products.Find(ctx, tc.filter)
			require.NoError(t, err)
			names := make([]string, 0, len(found))
			for _, p := range found {
				names = append(names, p.Name)
				require.NotNil(t, p.Category, "Listed products carry their category")
			}
			assert.ElementsMatch(t, tc.expected, names)
		})
	}
}

func testProductUpdate(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	categories, products := newRepos(t)
	tools := mustCategory(t, categories, "Tools")
	p := mustProduct(t, products, "Widget", true, tools.ID)

	name := "Widget Pro"
	quantity := 7
	updated, err := products.Update(ctx, p.ID, func(current *domain.Product) error {
		return current.Apply(domain.ProductPatch{Name: &name, Quantity: &quantity})
	})
	require.NoError(t, err)
	assert.Equal(t, "Widget Pro", updated.Name)
	assert.Equal(t, 7, updated.Quantity)
	assert.True(t, updated.Active)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "Tools", updated.Category.Name)

	price := decimal.NewFromInt(-1)
	_, err = products.Update(ctx, p.ID, func(current *domain.Product) error {
		return current.Apply(domain.ProductPatch{Price: &price})
	})
	assert.ErrorIs(t, err, domain.ErrInvalidProductPrice)

	found, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, found.Price.Equal(p.Price), "Rejected update is not persisted")

	_, err = products.Update(ctx, domain.NewID(), func(*domain.Product) error { return nil })
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func testProductDelete(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	categories, products := newRepos(t)
	tools := mustCategory(t, categories, "Tools")
	p := mustProduct(t, products, "Widget", true, tools.ID)

	deleted, err := products.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, deleted.ID)

	_, err = products.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = products.Delete(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = categories.Delete(ctx, tools.ID)
	assert.NoError(t, err, "Category is free once its products are gone")
}
